package chain

import (
	"errors"
	"testing"

	"github.com/redgraph/chainmap/pkg/topology"
)

func hostRef(id string) topology.NodeRef {
	return topology.NodeRef{ID: id, Kind: topology.KindHost}
}

func serviceRef(id string) topology.NodeRef {
	return topology.NodeRef{ID: id, Kind: topology.KindService}
}

func testDraft(refs ...topology.NodeRef) *Draft {
	d := &Draft{ID: "chain-1", ProjectID: "proj-1", Name: "perimeter breach", Color: "#FF5555"}
	for _, ref := range refs {
		d.AppendStep(ref)
	}
	return d
}

// assertDense fails unless sequence orders are exactly 1..n in slice order
func assertDense(t *testing.T, d *Draft) {
	t.Helper()
	for i, step := range d.Steps {
		if step.SequenceOrder != i+1 {
			t.Fatalf("step %d has sequence order %d, want %d", i, step.SequenceOrder, i+1)
		}
	}
}

func TestAppendStep(t *testing.T) {
	d := testDraft()

	s1 := d.AppendStep(hostRef("host-a"))
	s2 := d.AppendStep(serviceRef("svc-b"))

	if s1.SequenceOrder != 1 || s2.SequenceOrder != 2 {
		t.Errorf("expected orders 1 and 2, got %d and %d", s1.SequenceOrder, s2.SequenceOrder)
	}
	if s1.ID == "" || s1.ID == s2.ID {
		t.Error("appended steps must have distinct non-empty IDs")
	}
	if s1.MethodNotes != "" || s1.IsBranchPoint {
		t.Error("new steps must start with empty notes and no branch flag")
	}
	if s2.EntityRef != serviceRef("svc-b") {
		t.Errorf("step entity ref = %+v, want svc-b service ref", s2.EntityRef)
	}
	assertDense(t, d)
}

func TestRemoveStep(t *testing.T) {
	// Removing the first of [A, B(branch), C] leaves [B, C] renumbered,
	// with B's branch flag intact.
	d := testDraft(hostRef("A"), hostRef("B"), hostRef("C"))
	if err := d.ToggleBranchPoint(d.Steps[1].ID); err != nil {
		t.Fatalf("ToggleBranchPoint failed: %v", err)
	}

	if err := d.RemoveStep(d.Steps[0].ID); err != nil {
		t.Fatalf("RemoveStep failed: %v", err)
	}

	if len(d.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(d.Steps))
	}
	if d.Steps[0].EntityRef.ID != "B" || d.Steps[0].SequenceOrder != 1 {
		t.Errorf("expected B at order 1, got %s at %d", d.Steps[0].EntityRef.ID, d.Steps[0].SequenceOrder)
	}
	if !d.Steps[0].IsBranchPoint {
		t.Error("branch flag must survive renumbering")
	}
	if d.Steps[1].EntityRef.ID != "C" || d.Steps[1].SequenceOrder != 2 {
		t.Errorf("expected C at order 2, got %s at %d", d.Steps[1].EntityRef.ID, d.Steps[1].SequenceOrder)
	}
}

func TestRemoveStep_LastStep(t *testing.T) {
	d := testDraft(hostRef("only"))
	stepID := d.Steps[0].ID

	err := d.RemoveStep(stepID)
	if !errors.Is(err, ErrLastStep) {
		t.Fatalf("expected ErrLastStep, got %v", err)
	}

	// Chain must be untouched
	if len(d.Steps) != 1 || d.Steps[0].ID != stepID || d.Steps[0].SequenceOrder != 1 {
		t.Error("failed removal must not mutate the chain")
	}

	// The guard wins even when the id is unknown
	if err := d.RemoveStep("no-such-step"); !errors.Is(err, ErrLastStep) {
		t.Errorf("expected ErrLastStep for unknown id on single-step chain, got %v", err)
	}
}

func TestRemoveStep_NotFound(t *testing.T) {
	d := testDraft(hostRef("A"), hostRef("B"))
	if err := d.RemoveStep("no-such-step"); !errors.Is(err, ErrStepNotFound) {
		t.Errorf("expected ErrStepNotFound, got %v", err)
	}
	assertDense(t, d)
}

func TestMoveStep(t *testing.T) {
	tests := []struct {
		name      string
		moveIdx   int
		target    int
		wantOrder []string
		wantErr   error
	}{
		{
			name:      "tail to head",
			moveIdx:   2,
			target:    1,
			wantOrder: []string{"C", "A", "B"},
		},
		{
			name:      "head to tail",
			moveIdx:   0,
			target:    3,
			wantOrder: []string{"B", "C", "A"},
		},
		{
			name:      "move to same position",
			moveIdx:   1,
			target:    2,
			wantOrder: []string{"A", "B", "C"},
		},
		{
			name:    "position zero",
			moveIdx: 0,
			target:  0,
			wantErr: ErrInvalidPosition,
		},
		{
			name:    "position past end",
			moveIdx: 0,
			target:  4,
			wantErr: ErrInvalidPosition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDraft(hostRef("A"), hostRef("B"), hostRef("C"))

			err := d.MoveStep(d.Steps[tt.moveIdx].ID, tt.target)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("MoveStep failed: %v", err)
			}

			for i, want := range tt.wantOrder {
				if d.Steps[i].EntityRef.ID != want {
					t.Errorf("position %d: got %s, want %s", i, d.Steps[i].EntityRef.ID, want)
				}
			}
			assertDense(t, d)
		})
	}
}

func TestSetMethodNotes(t *testing.T) {
	d := testDraft(hostRef("A"))

	if err := d.SetMethodNotes(d.Steps[0].ID, "abused default creds"); err != nil {
		t.Fatalf("SetMethodNotes failed: %v", err)
	}
	if d.Steps[0].MethodNotes != "abused default creds" {
		t.Errorf("notes = %q", d.Steps[0].MethodNotes)
	}

	// Overwrite with empty clears
	if err := d.SetMethodNotes(d.Steps[0].ID, ""); err != nil {
		t.Fatalf("SetMethodNotes failed: %v", err)
	}
	if d.Steps[0].MethodNotes != "" {
		t.Error("empty notes must overwrite prior notes")
	}

	if err := d.SetMethodNotes("missing", "x"); !errors.Is(err, ErrStepNotFound) {
		t.Errorf("expected ErrStepNotFound, got %v", err)
	}
}

func TestBranchPoint(t *testing.T) {
	d := testDraft(hostRef("A"))
	step := d.Steps[0]

	// Description requires the flag
	err := d.SetBranchDescription(step.ID, "could also pivot to db tier")
	if !errors.Is(err, ErrNotBranchPoint) {
		t.Fatalf("expected ErrNotBranchPoint, got %v", err)
	}

	if err := d.ToggleBranchPoint(step.ID); err != nil {
		t.Fatalf("ToggleBranchPoint failed: %v", err)
	}
	if err := d.SetBranchDescription(step.ID, "could also pivot to db tier"); err != nil {
		t.Fatalf("SetBranchDescription failed: %v", err)
	}
	if step.BranchDescription != "could also pivot to db tier" {
		t.Errorf("description = %q", step.BranchDescription)
	}

	// Clearing the flag clears the description
	if err := d.ToggleBranchPoint(step.ID); err != nil {
		t.Fatalf("ToggleBranchPoint failed: %v", err)
	}
	if step.IsBranchPoint || step.BranchDescription != "" {
		t.Error("clearing the branch flag must clear the description")
	}
}

func TestNormalize(t *testing.T) {
	// Orders from storage may be sparse or shuffled; Normalize restores
	// the 1..n invariant while preserving relative order.
	d := &Draft{
		Steps: []*Step{
			{ID: "s3", EntityRef: hostRef("C"), SequenceOrder: 9},
			{ID: "s1", EntityRef: hostRef("A"), SequenceOrder: 2},
			{ID: "s2", EntityRef: hostRef("B"), SequenceOrder: 5},
		},
	}
	d.Normalize()

	want := []string{"A", "B", "C"}
	for i, id := range want {
		if d.Steps[i].EntityRef.ID != id {
			t.Errorf("position %d: got %s, want %s", i, d.Steps[i].EntityRef.ID, id)
		}
	}
	assertDense(t, d)
}

func TestClone(t *testing.T) {
	d := testDraft(hostRef("A"), hostRef("B"))
	clone := d.Clone()

	clone.Name = "changed"
	clone.Steps[0].MethodNotes = "changed"
	if err := clone.RemoveStep(clone.Steps[1].ID); err != nil {
		t.Fatalf("RemoveStep on clone failed: %v", err)
	}

	if d.Name != "perimeter breach" {
		t.Error("clone name edit leaked into original")
	}
	if d.Steps[0].MethodNotes != "" {
		t.Error("clone step edit leaked into original")
	}
	if len(d.Steps) != 2 {
		t.Error("clone removal leaked into original")
	}
}
