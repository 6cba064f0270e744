// Package chain implements the attack-chain model: an ordered, editable
// sequence of steps anchored to topology nodes, plus the sequencing rules
// that keep the order dense while steps are added, removed, or moved.
package chain

import (
	"slices"

	"github.com/google/uuid"
	"github.com/redgraph/chainmap/pkg/topology"
)

// Step is one attack-path step. A step is exclusively owned by its parent
// draft; it references a topology entity and never anything else.
type Step struct {
	ID                string           `json:"id"`
	EntityRef         topology.NodeRef `json:"entityRef"`
	SequenceOrder     int              `json:"sequenceOrder"`
	MethodNotes       string           `json:"methodNotes,omitempty"`
	IsBranchPoint     bool             `json:"isBranchPoint"`
	BranchDescription string           `json:"branchDescription,omitempty"`
}

// Draft is the editable chain. Steps are kept sorted by SequenceOrder,
// and SequenceOrder values always form the contiguous range 1..len(Steps)
// after any mutation completes.
type Draft struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"projectId"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Color       string  `json:"color"`
	Steps       []*Step `json:"steps"`
}

// Summary is the listing view of a chain
type Summary struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	StepCount int    `json:"stepCount"`
}

// Summary returns the listing view of the draft
func (d *Draft) Summary() Summary {
	return Summary{
		ID:        d.ID,
		ProjectID: d.ProjectID,
		Name:      d.Name,
		Color:     d.Color,
		StepCount: len(d.Steps),
	}
}

// Clone returns a deep copy of the draft. Editing always happens on a
// clone so a cancelled or failed edit never touches the fetched chain.
func (d *Draft) Clone() *Draft {
	clone := *d
	clone.Steps = make([]*Step, len(d.Steps))
	for i, step := range d.Steps {
		copied := *step
		clone.Steps[i] = &copied
	}
	return &clone
}

// Normalize sorts steps by their stored sequence order and renumbers them
// into the contiguous range 1..len(steps). Storage order is never
// authoritative; call this on anything that crossed the wire.
func (d *Draft) Normalize() {
	slices.SortStableFunc(d.Steps, func(a, b *Step) int {
		return a.SequenceOrder - b.SequenceOrder
	})
	for i, step := range d.Steps {
		step.SequenceOrder = i + 1
	}
}

// NewStep builds a step for the given entity with a fresh identity.
// The caller assigns the sequence order.
func NewStep(ref topology.NodeRef) *Step {
	return &Step{
		ID:        uuid.New().String(),
		EntityRef: ref,
	}
}
