package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/redgraph/chainmap/pkg/chain"
	"github.com/redgraph/chainmap/pkg/logging"
	"github.com/redgraph/chainmap/pkg/selection"
	"github.com/redgraph/chainmap/pkg/topology"
)

// Controller drives the open/edit/save/cancel lifecycle of one chain
// editor session. Pick mode is an orthogonal sub-state of Ready: while
// active, the next node click becomes a new step instead of a selection
// change.
type Controller struct {
	persistence Persistence
	selection   *selection.Store
	logger      logging.Logger

	state   State
	pick    bool
	draft   *chain.Draft
	onSaved SavedFunc

	mu sync.Mutex
}

// NewController creates a closed editor controller
func NewController(p Persistence, sel *selection.Store, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Controller{
		persistence: p,
		selection:   sel,
		logger:      logger.With(logging.Component("editor")),
		state:       StateClosed,
	}
}

// OnSaved registers a callback receiving the server's chain after a
// successful save
func (c *Controller) OnSaved(fn SavedFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSaved = fn
}

// State returns the current lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// PickActive reports whether pick mode is awaiting a node click
func (c *Controller) PickActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pick
}

// Draft returns the draft under edit, or nil when the editor is closed
// or still loading
func (c *Controller) Draft() *chain.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Open fetches the chain and enters Ready with a fresh draft. A fetch
// failure closes the editor again and returns the error; no draft is
// created.
func (c *Controller) Open(ctx context.Context, chainID string) error {
	c.mu.Lock()
	if c.state != StateClosed {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.state = StateLoading
	c.mu.Unlock()

	fetched, err := c.persistence.FetchChain(ctx, chainID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateClosed
		c.logger.Error("chain load failed", logging.ChainID(chainID), logging.Error(err))
		return fmt.Errorf("loading chain %s: %w", chainID, err)
	}

	draft := fetched.Clone()
	draft.Normalize()
	c.draft = draft
	c.state = StateReady
	c.pick = false
	c.logger.Info("chain opened", logging.ChainID(chainID), logging.Int("steps", len(draft.Steps)))
	return nil
}

// EnterPickMode arms pick mode: the next node click appends a step
func (c *Controller) EnterPickMode() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return ErrNotReady
	}
	c.pick = true
	return nil
}

// CancelPickMode disarms pick mode without touching the draft
func (c *Controller) CancelPickMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pick = false
}

// HandleNodeClick routes a node click from the topology renderer. With
// pick mode armed it is consumed as a step insertion: a step for the
// clicked node is appended at the tail and pick mode disarms. Otherwise
// it becomes an ordinary single-node selection. The returned step is nil
// when the click was a generic selection change.
func (c *Controller) HandleNodeClick(ref topology.NodeRef) *chain.Step {
	c.mu.Lock()
	if c.state == StateReady && c.pick {
		step := c.draft.AppendStep(ref)
		c.pick = false
		c.mu.Unlock()
		c.logger.Debug("step appended via pick",
			logging.NodeID(ref.ID), logging.Int("order", step.SequenceOrder))
		return step
	}
	c.mu.Unlock()

	c.selection.SelectNode(ref.ID)
	return nil
}

// RemoveStep removes a step from the draft, keeping the order dense
func (c *Controller) RemoveStep(stepID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return ErrNotReady
	}
	return c.draft.RemoveStep(stepID)
}

// MoveStep moves a step to the 1-based target position
func (c *Controller) MoveStep(stepID string, target int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return ErrNotReady
	}
	return c.draft.MoveStep(stepID, target)
}

// SetMethodNotes edits one step's technique notes
func (c *Controller) SetMethodNotes(stepID, notes string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return ErrNotReady
	}
	return c.draft.SetMethodNotes(stepID, notes)
}

// SetBranchDescription edits one step's branch description
func (c *Controller) SetBranchDescription(stepID, description string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return ErrNotReady
	}
	return c.draft.SetBranchDescription(stepID, description)
}

// ToggleBranchPoint flips one step's branch flag
func (c *Controller) ToggleBranchPoint(stepID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return ErrNotReady
	}
	return c.draft.ToggleBranchPoint(stepID)
}

// SetMetadata updates the draft's display metadata. Values are checked by
// the validation gate at save time, not here.
func (c *Controller) SetMetadata(name, description, color string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return ErrNotReady
	}
	c.draft.Name = name
	c.draft.Description = description
	c.draft.Color = color
	return nil
}

// Save validates the draft and persists it. A validation failure keeps
// the editor in Ready and returns the failure without calling the
// persistence collaborator. A persistence failure also returns to Ready
// with the pre-save draft intact. On success the saved chain is passed to
// the OnSaved callback and the editor closes.
func (c *Controller) Save(ctx context.Context) (*chain.Draft, error) {
	c.mu.Lock()
	if c.state == StateSaving {
		c.mu.Unlock()
		return nil, ErrSaveInFlight
	}
	if c.state != StateReady {
		c.mu.Unlock()
		return nil, ErrNotReady
	}

	if err := c.draft.Validate(); err != nil {
		c.mu.Unlock()
		c.logger.Warn("chain save rejected", logging.ChainID(c.draft.ID), logging.Error(err))
		return nil, err
	}

	draft := c.draft
	onSaved := c.onSaved
	c.state = StateSaving
	c.mu.Unlock()

	saved, err := c.persistence.UpdateChain(ctx, draft.ID, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateReady
		c.logger.Error("chain save failed", logging.ChainID(draft.ID), logging.Error(err))
		return nil, fmt.Errorf("saving chain %s: %w", draft.ID, err)
	}

	saved.Normalize()
	if onSaved != nil {
		onSaved(saved)
	}
	c.draft = nil
	c.pick = false
	c.state = StateClosed
	c.logger.Info("chain saved", logging.ChainID(saved.ID), logging.Int("steps", len(saved.Steps)))
	return saved, nil
}

// Cancel discards the draft unconditionally and closes the editor.
// Refused while a save is in flight.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateSaving:
		return ErrSaveInFlight
	case StateReady:
		c.draft = nil
		c.pick = false
		c.state = StateClosed
	}
	return nil
}
