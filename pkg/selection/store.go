// Package selection holds the shared graph-selection state: which topology
// nodes are currently selected and which one is hovered. The topology
// renderer and the chain editor both read it; construct one Store per
// application session and inject it into both.
package selection

import (
	"slices"
	"sync"
)

// EventKind distinguishes selection changes from hover changes
type EventKind string

const (
	SelectionChanged EventKind = "selection_changed"
	HoverChanged     EventKind = "hover_changed"
)

// Event is a snapshot of the store state after a mutation
type Event struct {
	Kind        EventKind
	SelectedIDs []string
	HoveredID   string
}

// Store is the process-wide selection state. Selection and hover are
// independent: mutating one never touches the other. All operations are
// total; none can fail.
type Store struct {
	selected []string // ordered; no duplicates
	hovered  string   // empty means no hover
	subs     map[*Subscription]bool
	mu       sync.RWMutex
}

// Subscription delivers store events to one observer
type Subscription struct {
	channel   chan Event
	store     *Store
	closeOnce sync.Once
}

// NewStore creates an empty selection store
func NewStore() *Store {
	return &Store{subs: make(map[*Subscription]bool)}
}

// Subscribe registers an observer. Events are delivered on a buffered
// channel; a slow observer drops events rather than blocking mutations.
func (s *Store) Subscribe() *Subscription {
	sub := &Subscription{
		channel: make(chan Event, 64),
		store:   s,
	}

	s.mu.Lock()
	s.subs[sub] = true
	s.mu.Unlock()

	return sub
}

// Channel returns the subscription's event channel
func (sub *Subscription) Channel() <-chan Event {
	return sub.channel
}

// Unsubscribe removes the subscription and closes its channel
func (sub *Subscription) Unsubscribe() {
	sub.store.mu.Lock()
	delete(sub.store.subs, sub)
	sub.store.mu.Unlock()

	sub.closeOnce.Do(func() { close(sub.channel) })
}

// SelectNode replaces the selection with the single given id
func (s *Store) SelectNode(id string) {
	s.mu.Lock()
	s.selected = []string{id}
	s.mu.Unlock()
	s.notify(SelectionChanged)
}

// ToggleNode removes the id if selected, otherwise appends it. The
// relative order of the other selected ids is preserved either way.
func (s *Store) ToggleNode(id string) {
	s.mu.Lock()
	if i := slices.Index(s.selected, id); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
	} else {
		s.selected = append(s.selected, id)
	}
	s.mu.Unlock()
	s.notify(SelectionChanged)
}

// SelectMultiple replaces the selection wholesale with the given ordered
// ids (which may be empty)
func (s *Store) SelectMultiple(ids []string) {
	s.mu.Lock()
	s.selected = slices.Clone(ids)
	s.mu.Unlock()
	s.notify(SelectionChanged)
}

// SelectAll is an alias for SelectMultiple, matching the renderer's
// select-all gesture
func (s *Store) SelectAll(ids []string) {
	s.SelectMultiple(ids)
}

// ClearSelection empties the selection. No-op (and no event) if the
// selection is already empty.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	if len(s.selected) == 0 {
		s.mu.Unlock()
		return
	}
	s.selected = nil
	s.mu.Unlock()
	s.notify(SelectionChanged)
}

// SetHoveredNode sets the hovered id
func (s *Store) SetHoveredNode(id string) {
	s.mu.Lock()
	s.hovered = id
	s.mu.Unlock()
	s.notify(HoverChanged)
}

// ClearHoveredNode clears the hover
func (s *Store) ClearHoveredNode() {
	s.SetHoveredNode("")
}

// Selected returns a copy of the ordered selection
func (s *Store) Selected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.selected)
}

// IsSelected reports whether the id is currently selected
func (s *Store) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.selected, id)
}

// Hovered returns the hovered id, or "" and false when nothing is hovered
func (s *Store) Hovered() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hovered, s.hovered != ""
}

// notify delivers a state snapshot to every subscriber. A snapshot of the
// subscriber set is taken under lock; sends happen outside it.
func (s *Store) notify(kind EventKind) {
	s.mu.RLock()
	event := Event{
		Kind:        kind,
		SelectedIDs: slices.Clone(s.selected),
		HoveredID:   s.hovered,
	}
	subs := make([]*Subscription, 0, len(s.subs))
	for sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.channel <- event:
		default:
			// observer is behind; drop rather than block
		}
	}
}
