package topology

import (
	"errors"
	"testing"
)

func TestAddHost(t *testing.T) {
	inv := NewInventory()

	host, err := inv.AddHost("proj-1", "10.0.0.5", "web01", "linux")
	if err != nil {
		t.Fatalf("AddHost failed: %v", err)
	}
	if host.ID == "" {
		t.Error("host must get an ID")
	}
	if host.Ref().Kind != KindHost {
		t.Errorf("ref kind = %s", host.Ref().Kind)
	}

	got, err := inv.GetHost(host.ID)
	if err != nil || got.Address != "10.0.0.5" {
		t.Errorf("GetHost = %+v, %v", got, err)
	}

	if _, err := inv.AddHost("proj-1", "", "noaddr", ""); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestAddService(t *testing.T) {
	inv := NewInventory()
	host, _ := inv.AddHost("proj-1", "10.0.0.5", "", "")

	svc, err := inv.AddService(host.ID, 22, "tcp", "ssh", "OpenSSH 9.6")
	if err != nil {
		t.Fatalf("AddService failed: %v", err)
	}
	if svc.HostID != host.ID {
		t.Errorf("service host = %s, want %s", svc.HostID, host.ID)
	}

	tests := []struct {
		name    string
		hostID  string
		port    int
		wantErr error
	}{
		{"unknown host", "missing", 80, ErrHostNotFound},
		{"port zero", host.ID, 0, ErrInvalidPort},
		{"port too high", host.ID, 70000, ErrInvalidPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := inv.AddService(tt.hostID, tt.port, "tcp", "", ""); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	inv := NewInventory()
	host, _ := inv.AddHost("proj-1", "10.0.0.5", "web01", "")
	svc, _ := inv.AddService(host.ID, 443, "tcp", "https", "")

	node, err := inv.Resolve(host.Ref())
	if err != nil {
		t.Fatalf("Resolve host failed: %v", err)
	}
	if node.Label != "web01 (10.0.0.5)" {
		t.Errorf("host label = %q", node.Label)
	}

	node, err = inv.Resolve(svc.Ref())
	if err != nil {
		t.Fatalf("Resolve service failed: %v", err)
	}
	if node.Label != "443/tcp https" {
		t.Errorf("service label = %q", node.Label)
	}
	if node.HostID != host.ID {
		t.Error("service node must carry its parent host")
	}

	if _, err := inv.Resolve(NodeRef{ID: "missing", Kind: KindHost}); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if _, err := inv.Resolve(NodeRef{ID: host.ID, Kind: "router"}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}

	if !inv.Exists(host.Ref()) || inv.Exists(NodeRef{ID: "missing", Kind: KindService}) {
		t.Error("Exists disagrees with Resolve")
	}
}

func TestProjectNodes(t *testing.T) {
	inv := NewInventory()

	// Inserted out of address order on purpose
	h2, _ := inv.AddHost("proj-1", "10.0.0.20", "", "")
	h1, _ := inv.AddHost("proj-1", "10.0.0.3", "", "")
	inv.AddHost("proj-2", "192.168.1.1", "", "")
	inv.AddService(h1.ID, 22, "tcp", "ssh", "")
	inv.AddService(h1.ID, 80, "tcp", "http", "")

	nodes := inv.ProjectNodes("proj-1")
	if len(nodes) != 4 {
		t.Fatalf("got %d nodes, want 4", len(nodes))
	}

	// Numeric IP ordering: 10.0.0.3 before 10.0.0.20, services under
	// their host in insertion order
	wantRefs := []NodeRef{h1.Ref(), {Kind: KindService}, {Kind: KindService}, h2.Ref()}
	if nodes[0].Ref != wantRefs[0] {
		t.Errorf("first node = %+v, want host 10.0.0.3", nodes[0])
	}
	if nodes[1].Ref.Kind != KindService || nodes[2].Ref.Kind != KindService {
		t.Error("services must follow their host")
	}
	if nodes[1].Label != "22/tcp ssh" || nodes[2].Label != "80/tcp http" {
		t.Errorf("service order: %q then %q", nodes[1].Label, nodes[2].Label)
	}
	if nodes[3].Ref != h2.Ref() {
		t.Errorf("last node = %+v, want host 10.0.0.20", nodes[3])
	}

	if inv.HostCount("proj-1") != 2 {
		t.Errorf("host count = %d, want 2", inv.HostCount("proj-1"))
	}
	if len(inv.ProjectNodes("empty-project")) != 0 {
		t.Error("unknown project must yield no nodes")
	}
}

func TestLessAddress(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"10.0.0.3", "10.0.0.20", true},
		{"10.0.0.20", "10.0.0.3", false},
		{"10.0.0.1", "10.0.0.1", false},
		{"192.168.1.1", "10.0.0.1", false},
		{"alpha.example", "beta.example", true},
		{"10.0.0.1", "host.example", true}, // mixed falls back to lexicographic
	}
	for _, tt := range tests {
		if got := lessAddress(tt.a, tt.b); got != tt.want {
			t.Errorf("lessAddress(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
