package selection

import (
	"slices"
	"testing"
)

func TestSelectNode(t *testing.T) {
	s := NewStore()
	s.SelectMultiple([]string{"a", "b", "c"})

	s.SelectNode("x")

	got := s.Selected()
	if !slices.Equal(got, []string{"x"}) {
		t.Errorf("selection = %v, want [x]", got)
	}
}

func TestToggleNode(t *testing.T) {
	s := NewStore()
	s.SelectMultiple([]string{"a", "b", "c"})

	// Toggling a selected id removes it, preserving the others' order
	s.ToggleNode("b")
	if got := s.Selected(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("after remove toggle: %v, want [a c]", got)
	}

	// Toggling an unselected id appends it
	s.ToggleNode("d")
	if got := s.Selected(); !slices.Equal(got, []string{"a", "c", "d"}) {
		t.Errorf("after add toggle: %v, want [a c d]", got)
	}
}

func TestToggleNode_SelfInverse(t *testing.T) {
	s := NewStore()
	s.SelectMultiple([]string{"a", "b", "c"})
	before := s.Selected()

	s.ToggleNode("b")
	s.ToggleNode("b")

	after := s.Selected()
	slices.Sort(before)
	slices.Sort(after)
	if !slices.Equal(before, after) {
		t.Errorf("double toggle changed membership: %v vs %v", before, after)
	}
}

func TestClearSelection(t *testing.T) {
	s := NewStore()
	s.SelectMultiple([]string{"a", "b"})

	sub := s.Subscribe()
	defer sub.Unsubscribe()

	s.ClearSelection()
	if got := s.Selected(); len(got) != 0 {
		t.Errorf("selection = %v, want empty", got)
	}
	select {
	case ev := <-sub.Channel():
		if ev.Kind != SelectionChanged || len(ev.SelectedIDs) != 0 {
			t.Errorf("unexpected event %+v", ev)
		}
	default:
		t.Fatal("expected a selection event")
	}

	// Clearing an empty selection is a no-op and emits nothing
	s.ClearSelection()
	select {
	case ev := <-sub.Channel():
		t.Fatalf("clear of empty selection must not emit, got %+v", ev)
	default:
	}
}

func TestHoverIndependentOfSelection(t *testing.T) {
	s := NewStore()
	s.SelectMultiple([]string{"a", "b"})

	s.SetHoveredNode("z")
	if got := s.Selected(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("hover mutated selection: %v", got)
	}

	s.SelectNode("c")
	if hovered, ok := s.Hovered(); !ok || hovered != "z" {
		t.Errorf("selection mutated hover: %q %v", hovered, ok)
	}

	s.ClearHoveredNode()
	if _, ok := s.Hovered(); ok {
		t.Error("hover should be cleared")
	}
	if got := s.Selected(); !slices.Equal(got, []string{"c"}) {
		t.Errorf("hover clear mutated selection: %v", got)
	}
}

func TestSubscribe(t *testing.T) {
	s := NewStore()
	sub := s.Subscribe()
	defer sub.Unsubscribe()

	s.SelectNode("a")
	s.SetHoveredNode("b")

	ev := <-sub.Channel()
	if ev.Kind != SelectionChanged || !slices.Equal(ev.SelectedIDs, []string{"a"}) {
		t.Errorf("first event = %+v", ev)
	}

	ev = <-sub.Channel()
	if ev.Kind != HoverChanged || ev.HoveredID != "b" {
		t.Errorf("second event = %+v", ev)
	}
	// Hover events still carry the selection snapshot
	if !slices.Equal(ev.SelectedIDs, []string{"a"}) {
		t.Errorf("hover event selection snapshot = %v", ev.SelectedIDs)
	}
}

func TestUnsubscribe(t *testing.T) {
	s := NewStore()
	sub := s.Subscribe()
	sub.Unsubscribe()

	// Channel must be closed and mutations must not panic
	if _, ok := <-sub.Channel(); ok {
		t.Error("expected closed channel after unsubscribe")
	}
	s.SelectNode("a")

	// Double unsubscribe is safe
	sub.Unsubscribe()
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	s := NewStore()
	sub := s.Subscribe()
	defer sub.Unsubscribe()

	// Overflow the buffer; mutations must never block
	for i := 0; i < 200; i++ {
		s.ToggleNode("n")
	}

	drained := 0
	for {
		select {
		case <-sub.Channel():
			drained++
			continue
		default:
		}
		break
	}
	if drained == 0 || drained > 64 {
		t.Errorf("drained %d events, want 1..64", drained)
	}
}
