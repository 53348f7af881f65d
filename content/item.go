// Package content defines the repository port the editor controller reads
// items through, together with an in-memory tree implementation and a loader
// for foomo contentserver exports. The controller never writes items; all
// structural changes arrive as change notifications.
package content

import (
	"github.com/google/uuid"

	"github.com/foomo/ribbon/itemuri"
)

// Item is one language projection of a node in the content tree.
type Item struct {
	ID              uuid.UUID
	Database        string
	Language        string
	Version         int
	ParentID        uuid.UUID // uuid.Nil on the absolute root
	Name            string
	DisplayName     string
	Icon            string
	Hidden          bool
	HasChildren     bool
	HasPresentation bool
}

// URI returns the reference identifying this projection.
func (it *Item) URI() *itemuri.ItemUri {
	return itemuri.New(it.ID, it.Language, it.Version, it.Database)
}

// Repository is the synchronous read interface onto the content store.
// Lookups return nil for items that do not exist or are not readable; they
// never return an error for a missing item.
type Repository interface {
	// GetItem resolves a full reference. A VersionLatest reference resolves
	// the newest version of the projection.
	GetItem(uri *itemuri.ItemUri) *Item

	// GetItemInLanguage resolves an item by id in the given language,
	// at the latest version.
	GetItemInLanguage(id uuid.UUID, database, language string) *Item

	// ItemByPath resolves a "/name/name/..." path from the root.
	ItemByPath(path, database, language string) *Item

	// Parent returns the parent projection in the item's language, or nil on
	// the absolute root.
	Parent(item *Item) *Item

	// Children returns the children in the item's language, in tree order.
	Children(item *Item) []*Item

	// StagedChildren returns the children visible through the fixed
	// content-staging view. The result may be smaller than Children and may
	// be empty even when HasChildren is set.
	StagedChildren(item *Item) []*Item

	// Root returns the absolute root of a database, or nil for an unknown
	// database.
	Root(database string) *Item
}

// ChangeListener receives structural change notifications from a mutable
// repository. The notify package provides the fan-out implementation.
type ChangeListener interface {
	ItemCreated(item *Item)
	ItemDeleted(item *Item, parentID uuid.UUID)
	ItemMoved(item *Item, oldParentID uuid.UUID)
	ItemRenamed(item *Item, oldName string)
	ItemCopied(item *Item, copy *Item)
	ItemSaved(item *Item, renamed bool)
}
