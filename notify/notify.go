// Package notify distributes repository change notifications to editing
// sessions. A Broker implements content.ChangeListener and fans every change
// out to the per-session Sources attached to it; each Source holds the typed
// handlers of the page activation that owns it and a session-scoped Disabled
// gate.
package notify

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foomo/ribbon/content"
)

// Event payloads, one per change kind.

type CreatedEvent struct {
	Item *content.Item
}

type DeletedEvent struct {
	Item     *content.Item
	ParentID uuid.UUID
}

type MovedEvent struct {
	Item        *content.Item
	OldParentID uuid.UUID
}

type RenamedEvent struct {
	Item    *content.Item
	OldName string
}

type CopiedEvent struct {
	Item *content.Item
	Copy *content.Item
}

type SavedEvent struct {
	Item *content.Item
	// Renamed is set when the save was the side effect of a rename, which the
	// renamed handler already covers.
	Renamed bool
}

// Handlers is the set of callbacks a page activation attaches to its Source.
// Nil callbacks are skipped.
type Handlers struct {
	Created func(CreatedEvent)
	Deleted func(DeletedEvent)
	Moved   func(MovedEvent)
	Renamed func(RenamedEvent)
	Copied  func(CopiedEvent)
	Saved   func(SavedEvent)
}

// Source is the change-notification endpoint of one editing session.
type Source struct {
	logger *zap.Logger

	mu       sync.Mutex
	disabled bool
	owners   map[string]Handlers
}

// NewSource returns an empty source.
func NewSource(logger *zap.Logger) *Source {
	return &Source{
		logger: logger,
		owners: map[string]Handlers{},
	}
}

// Attach registers the handlers under an owner key. Attaching the same owner
// again replaces the previous handlers, so re-activation never
// double-subscribes.
func (s *Source) Attach(owner string, handlers Handlers) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owners[owner] = handlers
}

// Detach removes an owner's handlers.
func (s *Source) Detach(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.owners, owner)
}

// SetDisabled toggles delivery for this session. The flag takes effect for
// every notification dispatched after the call returns, including ones
// already queued behind it.
func (s *Source) SetDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disabled = disabled
}

// Disabled reports whether delivery is switched off.
func (s *Source) Disabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}

// snapshot returns the handlers to deliver to, or nil when delivery is off.
func (s *Source) snapshot() []Handlers {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled {
		return nil
	}
	all := make([]Handlers, 0, len(s.owners))
	for _, handlers := range s.owners {
		all = append(all, handlers)
	}
	return all
}

// ItemCreated delivers a created notification.
func (s *Source) ItemCreated(ev CreatedEvent) {
	if !s.validItem(ev.Item, "created") {
		return
	}
	for _, handlers := range s.snapshot() {
		if handlers.Created != nil {
			handlers.Created(ev)
		}
	}
}

// ItemDeleted delivers a deleted notification.
func (s *Source) ItemDeleted(ev DeletedEvent) {
	if !s.validItem(ev.Item, "deleted") {
		return
	}
	for _, handlers := range s.snapshot() {
		if handlers.Deleted != nil {
			handlers.Deleted(ev)
		}
	}
}

// ItemMoved delivers a moved notification.
func (s *Source) ItemMoved(ev MovedEvent) {
	if !s.validItem(ev.Item, "moved") {
		return
	}
	for _, handlers := range s.snapshot() {
		if handlers.Moved != nil {
			handlers.Moved(ev)
		}
	}
}

// ItemRenamed delivers a renamed notification.
func (s *Source) ItemRenamed(ev RenamedEvent) {
	if !s.validItem(ev.Item, "renamed") {
		return
	}
	for _, handlers := range s.snapshot() {
		if handlers.Renamed != nil {
			handlers.Renamed(ev)
		}
	}
}

// ItemCopied delivers a copied notification.
func (s *Source) ItemCopied(ev CopiedEvent) {
	if !s.validItem(ev.Item, "copied") {
		return
	}
	for _, handlers := range s.snapshot() {
		if handlers.Copied != nil {
			handlers.Copied(ev)
		}
	}
}

// ItemSaved delivers a saved notification.
func (s *Source) ItemSaved(ev SavedEvent) {
	if !s.validItem(ev.Item, "saved") {
		return
	}
	for _, handlers := range s.snapshot() {
		if handlers.Saved != nil {
			handlers.Saved(ev)
		}
	}
}

// validItem guards against notifications without a subject item. Such an
// event is a programming error on the producer side; it is logged and
// dropped rather than crashing the session.
func (s *Source) validItem(item *content.Item, kind string) bool {
	if item != nil {
		return true
	}
	s.logger.Error("change notification without item", zap.String("kind", kind))
	return false
}

// Broker fans repository changes out to session sources. It implements
// content.ChangeListener so a mutable repository can feed it directly.
type Broker struct {
	mu      sync.RWMutex
	sources map[string]*Source
}

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{sources: map[string]*Source{}}
}

// Register attaches a session source under its session id. Registering the
// same id again replaces the previous source.
func (b *Broker) Register(sessionID string, source *Source) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sources[sessionID] = source
}

// Unregister removes a session source.
func (b *Broker) Unregister(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sources, sessionID)
}

func (b *Broker) each(fn func(*Source)) {
	b.mu.RLock()
	sources := make([]*Source, 0, len(b.sources))
	for _, source := range b.sources {
		sources = append(sources, source)
	}
	b.mu.RUnlock()
	for _, source := range sources {
		fn(source)
	}
}

func (b *Broker) ItemCreated(item *content.Item) {
	b.each(func(s *Source) { s.ItemCreated(CreatedEvent{Item: item}) })
}

func (b *Broker) ItemDeleted(item *content.Item, parentID uuid.UUID) {
	b.each(func(s *Source) { s.ItemDeleted(DeletedEvent{Item: item, ParentID: parentID}) })
}

func (b *Broker) ItemMoved(item *content.Item, oldParentID uuid.UUID) {
	b.each(func(s *Source) { s.ItemMoved(MovedEvent{Item: item, OldParentID: oldParentID}) })
}

func (b *Broker) ItemRenamed(item *content.Item, oldName string) {
	b.each(func(s *Source) { s.ItemRenamed(RenamedEvent{Item: item, OldName: oldName}) })
}

func (b *Broker) ItemCopied(item *content.Item, copy *content.Item) {
	b.each(func(s *Source) { s.ItemCopied(CopiedEvent{Item: item, Copy: copy}) })
}

func (b *Broker) ItemSaved(item *content.Item, renamed bool) {
	b.each(func(s *Source) { s.ItemSaved(SavedEvent{Item: item, Renamed: renamed}) })
}
