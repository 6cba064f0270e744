package topology

// EntityKind identifies what kind of topology entity a node reference
// points at.
type EntityKind string

const (
	KindHost    EntityKind = "host"
	KindService EntityKind = "service"
)

// Valid returns true for the entity kinds this package knows about
func (k EntityKind) Valid() bool {
	return k == KindHost || k == KindService
}

// NodeRef is an opaque reference to a topology entity. It is owned by the
// topology layer; other packages carry it but never interpret the ID.
type NodeRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

// Host is a discovered host in a reconnaissance project
type Host struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Address   string `json:"address"`
	Hostname  string `json:"hostname,omitempty"`
	OS        string `json:"os,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Ref returns the node reference for the host
func (h *Host) Ref() NodeRef {
	return NodeRef{ID: h.ID, Kind: KindHost}
}

// Service is a discovered service bound to a host
type Service struct {
	ID       string `json:"id"`
	HostID   string `json:"hostId"`
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
	Name     string `json:"name,omitempty"`
	Banner   string `json:"banner,omitempty"`
}

// Ref returns the node reference for the service
func (s *Service) Ref() NodeRef {
	return NodeRef{ID: s.ID, Kind: KindService}
}

// Node is the flattened graph-view representation of a host or service,
// as consumed by the topology renderer and the chain editor.
type Node struct {
	Ref    NodeRef `json:"ref"`
	Label  string  `json:"label"`
	HostID string  `json:"hostId,omitempty"` // parent host for services
}
