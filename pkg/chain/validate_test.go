package chain

import (
	"strings"
	"testing"

	"github.com/redgraph/chainmap/pkg/topology"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantMsg string
	}{
		{
			name:  "valid draft",
			draft: Draft{Name: "dmz pivot", Color: "#FF5555"},
		},
		{
			name:  "minimum name length",
			draft: Draft{Name: "abc", Color: "#00ff00"},
		},
		{
			name:  "mixed case hex",
			draft: Draft{Name: "lateral move", Color: "#aAbBcC"},
		},
		{
			name:    "name too short",
			draft:   Draft{Name: "AB", Color: "#FF5555"},
			wantMsg: "name too short",
		},
		{
			name:    "name empty",
			draft:   Draft{Name: "", Color: "#FF5555"},
			wantMsg: "name too short",
		},
		{
			name:    "name too long",
			draft:   Draft{Name: strings.Repeat("x", 101), Color: "#FF5555"},
			wantMsg: "name too long",
		},
		{
			name:    "color not hex",
			draft:   Draft{Name: "dmz pivot", Color: "notacolor"},
			wantMsg: "invalid color format",
		},
		{
			name:    "color missing hash",
			draft:   Draft{Name: "dmz pivot", Color: "FF5555"},
			wantMsg: "invalid color format",
		},
		{
			name:    "color short form rejected",
			draft:   Draft{Name: "dmz pivot", Color: "#F55"},
			wantMsg: "invalid color format",
		},
		{
			name:    "color empty",
			draft:   Draft{Name: "dmz pivot", Color: ""},
			wantMsg: "invalid color format",
		},
		{
			name:    "name checked before color",
			draft:   Draft{Name: "AB", Color: "notacolor"},
			wantMsg: "name too short",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("expected valid draft, got %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected validation failure, got nil")
			}
			var verr *ValidationError
			if !IsValidation(err) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			verr = err.(*ValidationError)
			if verr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", verr.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidate_IgnoresSteps(t *testing.T) {
	// Steps with empty notes and no branch description are legal; the
	// gate only checks chain metadata.
	d := Draft{Name: "dmz pivot", Color: "#FF5555"}
	d.AppendStep(topology.NodeRef{ID: "h1", Kind: topology.KindHost})

	if err := d.Validate(); err != nil {
		t.Fatalf("expected valid draft, got %v", err)
	}
}
