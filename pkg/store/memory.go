package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/redgraph/chainmap/pkg/chain"
)

// MemoryStore keeps chains in RWMutex-guarded maps. Chains are stored as
// private deep copies; callers never alias store state.
type MemoryStore struct {
	chains map[string]*chain.Draft // chainID -> chain
	byProj map[string][]string     // projectID -> chainIDs in creation order
	mu     sync.RWMutex
}

// NewMemoryStore creates an empty in-memory chain store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chains: make(map[string]*chain.Draft),
		byProj: make(map[string][]string),
	}
}

// Create stores a new chain, assigning its identity
func (s *MemoryStore) Create(ctx context.Context, draft *chain.Draft) (*chain.Draft, error) {
	if len(draft.Steps) == 0 {
		return nil, ErrEmptyChain
	}

	stored := draft.Clone()
	stored.Normalize()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.chains[stored.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrChainExists, stored.ID)
	}

	s.chains[stored.ID] = stored
	s.byProj[stored.ProjectID] = append(s.byProj[stored.ProjectID], stored.ID)
	return stored.Clone(), nil
}

// Get returns the chain with steps sorted by sequence order
func (s *MemoryStore) Get(ctx context.Context, chainID string) (*chain.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.chains[chainID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, chainID)
	}
	return stored.Clone(), nil
}

// ListByProject returns chain summaries in creation order
func (s *MemoryStore) ListByProject(ctx context.Context, projectID string) ([]chain.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byProj[projectID]
	summaries := make([]chain.Summary, 0, len(ids))
	for _, id := range ids {
		summaries = append(summaries, s.chains[id].Summary())
	}
	return summaries, nil
}

// Update replaces the chain's metadata and steps. Identity and project
// scoping stay as stored, whatever the payload claims.
func (s *MemoryStore) Update(ctx context.Context, chainID string, draft *chain.Draft) (*chain.Draft, error) {
	if len(draft.Steps) == 0 {
		return nil, ErrEmptyChain
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.chains[chainID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, chainID)
	}

	stored := draft.Clone()
	stored.ID = existing.ID
	stored.ProjectID = existing.ProjectID
	stored.Normalize()
	s.chains[chainID] = stored
	return stored.Clone(), nil
}

// Delete removes the chain and its steps
func (s *MemoryStore) Delete(ctx context.Context, chainID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.chains[chainID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrChainNotFound, chainID)
	}

	delete(s.chains, chainID)
	ids := s.byProj[stored.ProjectID]
	if i := slices.Index(ids, chainID); i >= 0 {
		s.byProj[stored.ProjectID] = slices.Delete(ids, i, i+1)
	}
	return nil
}

// Count returns the number of stored chains
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chains)
}
