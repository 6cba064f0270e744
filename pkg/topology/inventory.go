package topology

import (
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Inventory holds the discovered hosts and services of every project.
// It backs both the topology API and the chain editor's node lookups.
type Inventory struct {
	hosts    map[string]*Host      // hostID -> Host
	services map[string]*Service   // serviceID -> Service
	byProj   map[string][]string   // projectID -> hostIDs in insertion order
	byHost   map[string][]string   // hostID -> serviceIDs in insertion order
	mu       sync.RWMutex
}

// NewInventory creates an empty inventory
func NewInventory() *Inventory {
	return &Inventory{
		hosts:    make(map[string]*Host),
		services: make(map[string]*Service),
		byProj:   make(map[string][]string),
		byHost:   make(map[string][]string),
	}
}

// AddHost records a discovered host and returns it with an assigned ID
func (inv *Inventory) AddHost(projectID, address, hostname, os string) (*Host, error) {
	if address == "" {
		return nil, ErrInvalidAddress
	}
	host := &Host{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Address:   address,
		Hostname:  hostname,
		OS:        os,
		CreatedAt: time.Now().UnixMilli(),
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	inv.hosts[host.ID] = host
	inv.byProj[projectID] = append(inv.byProj[projectID], host.ID)
	return host, nil
}

// AddService records a discovered service on an existing host
func (inv *Inventory) AddService(hostID string, port int, protocol, name, banner string) (*Service, error) {
	if port < 1 || port > 65535 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	if _, ok := inv.hosts[hostID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrHostNotFound, hostID)
	}

	svc := &Service{
		ID:       uuid.New().String(),
		HostID:   hostID,
		Port:     port,
		Protocol: protocol,
		Name:     name,
		Banner:   banner,
	}
	inv.services[svc.ID] = svc
	inv.byHost[hostID] = append(inv.byHost[hostID], svc.ID)
	return svc, nil
}

// GetHost retrieves a host by ID
func (inv *Inventory) GetHost(hostID string) (*Host, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	host, ok := inv.hosts[hostID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHostNotFound, hostID)
	}
	return host, nil
}

// GetService retrieves a service by ID
func (inv *Inventory) GetService(serviceID string) (*Service, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	svc, ok := inv.services[serviceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}
	return svc, nil
}

// Resolve turns a node reference into its graph-view node
func (inv *Inventory) Resolve(ref NodeRef) (*Node, error) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	switch ref.Kind {
	case KindHost:
		host, ok := inv.hosts[ref.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, ref.ID)
		}
		return hostNode(host), nil
	case KindService:
		svc, ok := inv.services[ref.ID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, ref.ID)
		}
		return serviceNode(svc), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, ref.Kind)
	}
}

// Exists reports whether a node reference points at a known entity
func (inv *Inventory) Exists(ref NodeRef) bool {
	_, err := inv.Resolve(ref)
	return err == nil
}

// ProjectNodes returns the graph-view nodes of a project: hosts first,
// each followed by its services, hosts sorted by address.
func (inv *Inventory) ProjectNodes(projectID string) []*Node {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	hostIDs := inv.byProj[projectID]
	hosts := make([]*Host, 0, len(hostIDs))
	for _, id := range hostIDs {
		hosts = append(hosts, inv.hosts[id])
	}
	sort.Slice(hosts, func(i, j int) bool {
		return lessAddress(hosts[i].Address, hosts[j].Address)
	})

	nodes := make([]*Node, 0, len(hosts))
	for _, host := range hosts {
		nodes = append(nodes, hostNode(host))
		for _, svcID := range inv.byHost[host.ID] {
			nodes = append(nodes, serviceNode(inv.services[svcID]))
		}
	}
	return nodes
}

// HostCount returns the number of hosts in a project
func (inv *Inventory) HostCount(projectID string) int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.byProj[projectID])
}

func hostNode(h *Host) *Node {
	label := h.Address
	if h.Hostname != "" {
		label = fmt.Sprintf("%s (%s)", h.Hostname, h.Address)
	}
	return &Node{Ref: h.Ref(), Label: label}
}

func serviceNode(s *Service) *Node {
	label := fmt.Sprintf("%d/%s", s.Port, s.Protocol)
	if s.Name != "" {
		label = fmt.Sprintf("%s %s", label, s.Name)
	}
	return &Node{Ref: s.Ref(), Label: label, HostID: s.HostID}
}

// lessAddress orders IPv4 addresses numerically and everything else
// lexicographically, so host lists read the way scan output does.
func lessAddress(a, b string) bool {
	ipA := net.ParseIP(a)
	ipB := net.ParseIP(b)
	if ipA != nil && ipB != nil {
		if ip4A, ip4B := ipA.To16(), ipB.To16(); ip4A != nil && ip4B != nil {
			for i := range ip4A {
				if ip4A[i] != ip4B[i] {
					return ip4A[i] < ip4B[i]
				}
			}
			return false
		}
	}
	return a < b
}
