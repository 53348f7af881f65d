// Package session holds the per-activation edit state of the page editor:
// the server property store with the two uri slots, and the latches the
// change-reaction engine depends on.
package session

import (
	"errors"
	"sync"
)

// ErrEmptyValue is returned when a property is set to an empty string.
// Required values are never silently cleared.
var ErrEmptyValue = errors.New("session: property value must not be empty")

// Property keys of the two uri slots.
const (
	keyContextURI     = "ContextUri"
	keyCurrentItemURI = "CurrentItemUri"
)

// State is the edit state of one editing session. All methods are safe for
// concurrent use; the hazards here are temporal (notifications interleaving
// with messages across round trips), not parallel.
type State struct {
	mu    sync.Mutex
	props map[string]string

	currentItemDeleted bool
	refreshAsked       bool
	awaitingReload     bool
	designing          bool
}

// NewState returns an empty session state.
func NewState() *State {
	return &State{props: map[string]string{}}
}

// Get returns a stored property, or "" when unset.
func (s *State) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.props[key]
}

// Set stores a property. Empty values are rejected with ErrEmptyValue.
func (s *State) Set(key, value string) error {
	if value == "" {
		return ErrEmptyValue
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.props[key] = value
	return nil
}

// ContextURI returns the uri selected in the treecrumb. When no selection
// was made it falls back to the uri of the item open in the editor; command
// context resolution depends on exactly this fallback.
func (s *State) ContextURI() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if uri := s.props[keyContextURI]; uri != "" {
		return uri
	}
	return s.props[keyCurrentItemURI]
}

// SetContextURI stores the treecrumb selection.
func (s *State) SetContextURI(uri string) error {
	return s.Set(keyContextURI, uri)
}

// CurrentItemURI returns the uri of the item open in the editor. It is not
// affected by treecrumb selection.
func (s *State) CurrentItemURI() string {
	return s.Get(keyCurrentItemURI)
}

// SetCurrentItemURI stores the uri of the open item. Set once per
// activation, from the query string.
func (s *State) SetCurrentItemURI(uri string) error {
	return s.Set(keyCurrentItemURI, uri)
}

// MarkCurrentItemDeleted latches the deleted flag. The flag is monotonic:
// once the open item is gone the page is being torn down and later deletion
// notifications are no-ops.
func (s *State) MarkCurrentItemDeleted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentItemDeleted = true
}

// CurrentItemDeleted reports whether the open item was deleted.
func (s *State) CurrentItemDeleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentItemDeleted
}

// SetRefreshAsked records whether the refresh confirmation was already shown
// in this activation. It is reset on every activation.
func (s *State) SetRefreshAsked(asked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshAsked = asked
}

// RefreshAsked reports whether the refresh confirmation was already shown.
func (s *State) RefreshAsked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshAsked
}

// SetAwaitingReload records that a reload confirmation is pending a client
// round trip.
func (s *State) SetAwaitingReload(awaiting bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaitingReload = awaiting
}

// AwaitingReload reports whether a reload confirmation is pending.
func (s *State) AwaitingReload() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaitingReload
}

// SetDesigning records the page-designer sub-mode; saves are not reacted to
// while designing.
func (s *State) SetDesigning(designing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.designing = designing
}

// Designing reports the page-designer sub-mode.
func (s *State) Designing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.designing
}

// Snapshot returns a copy of the state for diagnostics.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	props := make(map[string]string, len(s.props))
	for key, value := range s.props {
		props[key] = value
	}
	return Snapshot{
		Properties:         props,
		CurrentItemDeleted: s.currentItemDeleted,
		RefreshAsked:       s.refreshAsked,
		AwaitingReload:     s.awaitingReload,
		Designing:          s.designing,
	}
}

// Snapshot is a point-in-time copy of a session's edit state.
type Snapshot struct {
	Properties         map[string]string
	CurrentItemDeleted bool
	RefreshAsked       bool
	AwaitingReload     bool
	Designing          bool
}

// Manager owns the states of all active sessions.
type Manager struct {
	mu     sync.Mutex
	states map[string]*State
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{states: map[string]*State{}}
}

// Get returns the state of a session, creating it on first use.
func (m *Manager) Get(sessionID string) *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[sessionID]
	if !ok {
		state = NewState()
		m.states[sessionID] = state
	}
	return state
}

// Drop removes a session's state.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sessionID)
}
