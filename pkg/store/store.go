// Package store persists attack chains. MemoryStore is the single-binary
// default (with compressed snapshots for restarts); PGStore keeps the same
// contract on PostgreSQL.
package store

import (
	"context"
	"errors"

	"github.com/redgraph/chainmap/pkg/chain"
)

var (
	ErrChainNotFound = errors.New("chain not found")
	ErrChainExists   = errors.New("chain already exists")
	ErrEmptyChain    = errors.New("chain must have at least one step")
)

// ChainStore is the persistence contract the API server runs on
type ChainStore interface {
	// Create stores a new chain, assigning its identity, and returns the
	// stored chain
	Create(ctx context.Context, draft *chain.Draft) (*chain.Draft, error)
	// Get returns the chain with steps sorted by sequence order
	Get(ctx context.Context, chainID string) (*chain.Draft, error)
	// ListByProject returns chain summaries in creation order
	ListByProject(ctx context.Context, projectID string) ([]chain.Summary, error)
	// Update replaces the chain's metadata and steps and returns the
	// stored result. Identity and project scoping are immutable.
	Update(ctx context.Context, chainID string, draft *chain.Draft) (*chain.Draft, error)
	// Delete removes the chain and its steps
	Delete(ctx context.Context, chainID string) error
}
