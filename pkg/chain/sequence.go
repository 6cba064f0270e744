package chain

import (
	"fmt"
	"slices"

	"github.com/redgraph/chainmap/pkg/topology"
)

// The sequencing engine: every operation here is a pure transformation of
// the draft. No I/O, and the dense 1..n order invariant holds whenever an
// operation returns.

// AppendStep adds a new step for the given entity at the tail of the
// chain, with empty notes and no branch flag.
func (d *Draft) AppendStep(ref topology.NodeRef) *Step {
	step := NewStep(ref)
	step.SequenceOrder = len(d.Steps) + 1
	d.Steps = append(d.Steps, step)
	return step
}

// RemoveStep removes the identified step and renumbers the remainder.
// Removing step k shifts every step after k down by exactly one position;
// no other relative ordering changes. The sole remaining step can never
// be removed: that fails with ErrLastStep and mutates nothing.
func (d *Draft) RemoveStep(stepID string) error {
	if len(d.Steps) == 1 {
		return ErrLastStep
	}

	i, _, err := d.findStep(stepID)
	if err != nil {
		return err
	}

	d.Steps = slices.Delete(d.Steps, i, i+1)
	d.resequence()
	return nil
}

// MoveStep reassigns the identified step to the 1-based target position,
// shifting the intervening steps by one in the direction vacated.
func (d *Draft) MoveStep(stepID string, target int) error {
	if target < 1 || target > len(d.Steps) {
		return fmt.Errorf("%w: %d (chain has %d steps)", ErrInvalidPosition, target, len(d.Steps))
	}

	i, step, err := d.findStep(stepID)
	if err != nil {
		return err
	}

	d.Steps = slices.Delete(d.Steps, i, i+1)
	d.Steps = slices.Insert(d.Steps, target-1, step)
	d.resequence()
	return nil
}

// SetMethodNotes replaces the free-text technique notes of one step
func (d *Draft) SetMethodNotes(stepID, notes string) error {
	_, step, err := d.findStep(stepID)
	if err != nil {
		return err
	}
	step.MethodNotes = notes
	return nil
}

// SetBranchDescription replaces the branch description of one step.
// The step must currently be flagged as a branch point.
func (d *Draft) SetBranchDescription(stepID, description string) error {
	_, step, err := d.findStep(stepID)
	if err != nil {
		return err
	}
	if !step.IsBranchPoint {
		return fmt.Errorf("%w: %s", ErrNotBranchPoint, stepID)
	}
	step.BranchDescription = description
	return nil
}

// ToggleBranchPoint flips the branch flag of one step. Clearing the flag
// also clears the branch description; setting it leaves any prior
// description untouched.
func (d *Draft) ToggleBranchPoint(stepID string) error {
	_, step, err := d.findStep(stepID)
	if err != nil {
		return err
	}
	step.IsBranchPoint = !step.IsBranchPoint
	if !step.IsBranchPoint {
		step.BranchDescription = ""
	}
	return nil
}

// Step returns the step with the given id
func (d *Draft) Step(stepID string) (*Step, error) {
	_, step, err := d.findStep(stepID)
	return step, err
}

func (d *Draft) findStep(stepID string) (int, *Step, error) {
	for i, step := range d.Steps {
		if step.ID == stepID {
			return i, step, nil
		}
	}
	return 0, nil, fmt.Errorf("%w: %s", ErrStepNotFound, stepID)
}

// resequence renumbers the (already ordered) steps into 1..n
func (d *Draft) resequence() {
	for i, step := range d.Steps {
		step.SequenceOrder = i + 1
	}
}
