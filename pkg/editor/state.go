// Package editor orchestrates the chain-editing lifecycle: it loads a
// chain into an editable draft, routes graph-node clicks into either
// selection updates or pick-mode step insertion, runs the validation gate,
// and hands validated drafts to the persistence collaborator.
package editor

import (
	"context"
	"errors"

	"github.com/redgraph/chainmap/pkg/chain"
)

// State is the editor lifecycle state
type State string

const (
	StateClosed  State = "closed"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateSaving  State = "saving"
)

// Lifecycle errors
var (
	ErrAlreadyOpen  = errors.New("editor already has a chain open")
	ErrNotReady     = errors.New("editor is not open for editing")
	ErrSaveInFlight = errors.New("a save is already in flight")
)

// Persistence is the external collaborator that loads and saves chains.
// Implementations map their transport failures onto the NotFound /
// network error taxonomy; the editor only surfaces them.
type Persistence interface {
	FetchChain(ctx context.Context, chainID string) (*chain.Draft, error)
	UpdateChain(ctx context.Context, chainID string, draft *chain.Draft) (*chain.Draft, error)
}

// SavedFunc is invoked with the server's returned chain after a
// successful save, before the editor closes
type SavedFunc func(saved *chain.Draft)
