package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redgraph/chainmap/pkg/api"
	"github.com/redgraph/chainmap/pkg/chain"
	"github.com/redgraph/chainmap/pkg/editor"
	"github.com/redgraph/chainmap/pkg/selection"
	"github.com/redgraph/chainmap/pkg/store"
	"github.com/redgraph/chainmap/pkg/topology"
)

// The client is editor.Persistence; keep the compiler honest.
var _ editor.Persistence = (*Client)(nil)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	s := api.NewServer(api.Options{
		Chains:    store.NewMemoryStore(),
		Inventory: topology.NewInventory(),
	})
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return New(ts.URL)
}

func seedDraft() *chain.Draft {
	d := &chain.Draft{Name: "dmz breach", Color: "#FF5555"}
	d.AppendStep(topology.NodeRef{ID: "h1", Kind: topology.KindHost})
	d.AppendStep(topology.NodeRef{ID: "s1", Kind: topology.KindService})
	return d
}

func TestChainRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateChain(ctx, "proj-1", seedDraft())
	if err != nil {
		t.Fatalf("CreateChain failed: %v", err)
	}
	if created.ID == "" || created.ProjectID != "proj-1" {
		t.Fatalf("created = %+v", created)
	}

	fetched, err := c.FetchChain(ctx, created.ID)
	if err != nil {
		t.Fatalf("FetchChain failed: %v", err)
	}
	if fetched.Name != "dmz breach" || len(fetched.Steps) != 2 {
		t.Errorf("fetched = %+v", fetched)
	}
	if fetched.Steps[0].SequenceOrder != 1 || fetched.Steps[1].SequenceOrder != 2 {
		t.Error("fetched steps must be normalized")
	}

	// A fetched chain saves back unchanged, then with edits
	fetched.Name = "renamed"
	updated, err := c.UpdateChain(ctx, created.ID, fetched)
	if err != nil {
		t.Fatalf("UpdateChain failed: %v", err)
	}
	if updated.Name != "renamed" || updated.ID != created.ID {
		t.Errorf("updated = %+v", updated)
	}

	summaries, err := c.FetchChainsForProject(ctx, "proj-1")
	if err != nil {
		t.Fatalf("FetchChainsForProject failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Name != "renamed" || summaries[0].StepCount != 2 {
		t.Errorf("summaries = %+v", summaries)
	}

	if err := c.DeleteChain(ctx, created.ID); err != nil {
		t.Fatalf("DeleteChain failed: %v", err)
	}
	if _, err := c.FetchChain(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestNotFoundMapping(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.FetchChain(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FetchChain: expected ErrNotFound, got %v", err)
	}
	if err := c.DeleteChain(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteChain: expected ErrNotFound, got %v", err)
	}
	if _, err := c.UpdateChain(ctx, "missing", seedDraft()); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateChain: expected ErrNotFound, got %v", err)
	}
}

func TestValidationMapping(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	bad := seedDraft()
	bad.Name = "AB"
	_, err := c.CreateChain(ctx, "proj-1", bad)
	if !chain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	var verr *chain.ValidationError
	errors.As(err, &verr)
	if verr.Message != "name too short" {
		t.Errorf("message = %q", verr.Message)
	}
}

func TestNetworkErrorMapping(t *testing.T) {
	ctx := context.Background()

	// Nothing listens here
	c := New("http://127.0.0.1:1")
	if _, err := c.FetchChain(ctx, "x"); !errors.Is(err, ErrNetwork) {
		t.Errorf("transport failure: expected ErrNetwork, got %v", err)
	}

	// 5xx responses also map to ErrNetwork
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c = New(ts.URL)
	if _, err := c.FetchChain(ctx, "x"); !errors.Is(err, ErrNetwork) {
		t.Errorf("server error: expected ErrNetwork, got %v", err)
	}
}

func TestTopologyThroughClient(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	host, err := c.CreateHost(ctx, "proj-1", "10.0.0.5", "web01")
	if err != nil {
		t.Fatalf("CreateHost failed: %v", err)
	}
	if _, err := c.CreateService(ctx, host.ID, 443, "tcp", "https"); err != nil {
		t.Fatalf("CreateService failed: %v", err)
	}
	if _, err := c.CreateService(ctx, "missing", 80, "tcp", "http"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	nodes, err := c.FetchTopology(ctx, "proj-1")
	if err != nil {
		t.Fatalf("FetchTopology failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	if nodes[0].Ref.Kind != topology.KindHost || nodes[1].Ref.Kind != topology.KindService {
		t.Errorf("node order: %+v", nodes)
	}
}

func TestEditorAgainstClient(t *testing.T) {
	// Full stack: controller -> client -> HTTP -> store
	c := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateChain(ctx, "proj-1", seedDraft())
	if err != nil {
		t.Fatalf("CreateChain failed: %v", err)
	}

	ctrl := editor.NewController(c, selection.NewStore(), nil)
	if err := ctrl.Open(ctx, created.ID); err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := ctrl.EnterPickMode(); err != nil {
		t.Fatalf("EnterPickMode failed: %v", err)
	}
	step := ctrl.HandleNodeClick(topology.NodeRef{ID: "h9", Kind: topology.KindHost})
	if step == nil || step.SequenceOrder != 3 {
		t.Fatalf("pick produced %+v", step)
	}

	saved, err := ctrl.Save(ctx)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(saved.Steps) != 3 {
		t.Errorf("saved %d steps, want 3", len(saved.Steps))
	}

	stored, err := c.FetchChain(ctx, created.ID)
	if err != nil {
		t.Fatalf("FetchChain failed: %v", err)
	}
	if len(stored.Steps) != 3 || stored.Steps[2].EntityRef.ID != "h9" {
		t.Errorf("stored = %+v", stored)
	}
}
