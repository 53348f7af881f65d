package content

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/foomo/ribbon/itemuri"
)

// Memory is an in-memory content tree for a single database. Mutators emit
// change notifications to an attached ChangeListener, which is how the
// editor's change-reaction engine is driven.
type Memory struct {
	mu       sync.RWMutex
	database string
	language string
	rootID   uuid.UUID
	nodes    map[uuid.UUID]*memNode
	listener ChangeListener
}

type memNode struct {
	id              uuid.UUID
	parent          uuid.UUID
	children        []uuid.UUID
	name            string
	icon            string
	hidden          bool
	staged          bool
	hasPresentation bool
	langs           map[string]*projection
}

type projection struct {
	displayName string
	latest      int
}

// ItemSpec describes an item to add to a Memory tree.
type ItemSpec struct {
	ID              uuid.UUID // generated when zero
	Parent          uuid.UUID // Memory root when zero
	Name            string
	DisplayName     string // Name when empty
	Languages       []string
	Icon            string
	Hidden          bool
	Unstaged        bool // excluded from the content-staging view
	HasPresentation bool
}

// NewMemory returns an empty tree for the given database. The default
// language is used for the projections attached to change notifications.
func NewMemory(database, defaultLanguage string) *Memory {
	rootID := uuid.New()
	return &Memory{
		database: database,
		language: defaultLanguage,
		rootID:   rootID,
		nodes: map[uuid.UUID]*memNode{
			rootID: {
				id:     rootID,
				name:   "root",
				staged: true,
				langs:  map[string]*projection{defaultLanguage: {displayName: "root", latest: 1}},
			},
		},
	}
}

// SetListener attaches the change notification sink. Pass nil to detach.
func (m *Memory) SetListener(listener ChangeListener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listener = listener
}

// RootID returns the id of the absolute root.
func (m *Memory) RootID() uuid.UUID {
	return m.rootID
}

// Database returns the database name of this tree.
func (m *Memory) Database() string {
	return m.database
}

// --- Repository ---

func (m *Memory) GetItem(uri *itemuri.ItemUri) *Item {
	if uri == nil || uri.Database != m.database {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.project(m.nodes[uri.ID], uri.Language, uri.Version)
}

func (m *Memory) GetItemInLanguage(id uuid.UUID, database, language string) *Item {
	if database != m.database {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.project(m.nodes[id], language, itemuri.VersionLatest)
}

func (m *Memory) ItemByPath(path, database, language string) *Item {
	if database != m.database {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	node := m.nodes[m.rootID]
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		if segment == "" {
			continue
		}
		var next *memNode
		for _, childID := range node.children {
			child := m.nodes[childID]
			if child != nil && strings.EqualFold(child.name, segment) {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		node = next
	}
	return m.project(node, language, itemuri.VersionLatest)
}

func (m *Memory) Parent(item *Item) *Item {
	if item == nil || item.ParentID == uuid.Nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.project(m.nodes[item.ParentID], item.Language, itemuri.VersionLatest)
}

func (m *Memory) Children(item *Item) []*Item {
	return m.children(item, false)
}

func (m *Memory) StagedChildren(item *Item) []*Item {
	return m.children(item, true)
}

func (m *Memory) Root(database string) *Item {
	if database != m.database {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.project(m.nodes[m.rootID], m.language, itemuri.VersionLatest)
}

func (m *Memory) children(item *Item, stagedOnly bool) []*Item {
	if item == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	node := m.nodes[item.ID]
	if node == nil {
		return nil
	}
	var items []*Item
	for _, childID := range node.children {
		child := m.nodes[childID]
		if child == nil || (stagedOnly && !child.staged) {
			continue
		}
		if projected := m.project(child, item.Language, itemuri.VersionLatest); projected != nil {
			items = append(items, projected)
		}
	}
	return items
}

// project builds the Item view of a node in a language. Callers hold m.mu.
func (m *Memory) project(node *memNode, language string, version int) *Item {
	if node == nil {
		return nil
	}
	proj := node.langs[language]
	if proj == nil {
		return nil
	}
	if version == itemuri.VersionLatest {
		version = proj.latest
	} else if version > proj.latest {
		return nil
	}
	return &Item{
		ID:              node.id,
		Database:        m.database,
		Language:        language,
		Version:         version,
		ParentID:        node.parent,
		Name:            node.name,
		DisplayName:     proj.displayName,
		Icon:            node.icon,
		Hidden:          node.hidden,
		HasChildren:     len(node.children) > 0,
		HasPresentation: node.hasPresentation,
	}
}

// --- Mutators ---

// AddItem inserts an item and emits a created notification. It returns the
// projection in the tree's default language.
func (m *Memory) AddItem(spec ItemSpec) *Item {
	m.mu.Lock()
	id := spec.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	parentID := spec.Parent
	if parentID == uuid.Nil {
		parentID = m.rootID
	}
	displayName := spec.DisplayName
	if displayName == "" {
		displayName = spec.Name
	}
	languages := spec.Languages
	if len(languages) == 0 {
		languages = []string{m.language}
	}
	node := &memNode{
		id:              id,
		parent:          parentID,
		name:            spec.Name,
		icon:            spec.Icon,
		hidden:          spec.Hidden,
		staged:          !spec.Unstaged,
		hasPresentation: spec.HasPresentation,
		langs:           map[string]*projection{},
	}
	for _, language := range languages {
		node.langs[language] = &projection{displayName: displayName, latest: 1}
	}
	m.nodes[id] = node
	if parent := m.nodes[parentID]; parent != nil {
		parent.children = append(parent.children, id)
	}
	item := m.eventItem(node)
	listener := m.listener
	m.mu.Unlock()

	if listener != nil && item != nil {
		listener.ItemCreated(item)
	}
	return item
}

// Delete removes an item and its subtree and emits a deleted notification
// carrying the removed item and its former parent id.
func (m *Memory) Delete(id uuid.UUID) {
	m.mu.Lock()
	node := m.nodes[id]
	if node == nil || id == m.rootID {
		m.mu.Unlock()
		return
	}
	item := m.eventItem(node)
	parentID := node.parent
	if parent := m.nodes[parentID]; parent != nil {
		parent.children = removeID(parent.children, id)
	}
	m.deleteSubtree(id)
	listener := m.listener
	m.mu.Unlock()

	if listener != nil && item != nil {
		listener.ItemDeleted(item, parentID)
	}
}

// Move reparents an item and emits a moved notification.
func (m *Memory) Move(id, newParentID uuid.UUID) {
	m.mu.Lock()
	node := m.nodes[id]
	newParent := m.nodes[newParentID]
	if node == nil || newParent == nil || id == m.rootID {
		m.mu.Unlock()
		return
	}
	oldParentID := node.parent
	if parent := m.nodes[oldParentID]; parent != nil {
		parent.children = removeID(parent.children, id)
	}
	node.parent = newParentID
	newParent.children = append(newParent.children, id)
	item := m.eventItem(node)
	listener := m.listener
	m.mu.Unlock()

	if listener != nil && item != nil {
		listener.ItemMoved(item, oldParentID)
	}
}

// Rename changes an item's name and display name in every language and emits
// renamed and saved notifications, the saved one flagged as a rename.
func (m *Memory) Rename(id uuid.UUID, newName string) {
	m.mu.Lock()
	node := m.nodes[id]
	if node == nil || id == m.rootID {
		m.mu.Unlock()
		return
	}
	oldName := node.name
	node.name = newName
	for _, proj := range node.langs {
		proj.displayName = newName
	}
	item := m.eventItem(node)
	listener := m.listener
	m.mu.Unlock()

	if listener != nil && item != nil {
		listener.ItemRenamed(item, oldName)
		listener.ItemSaved(item, true)
	}
}

// Copy duplicates an item (without its subtree) under a target parent and
// emits a copied notification.
func (m *Memory) Copy(id, targetParentID uuid.UUID) *Item {
	m.mu.Lock()
	node := m.nodes[id]
	target := m.nodes[targetParentID]
	if node == nil || target == nil {
		m.mu.Unlock()
		return nil
	}
	copyID := uuid.New()
	copied := &memNode{
		id:              copyID,
		parent:          targetParentID,
		name:            node.name,
		icon:            node.icon,
		hidden:          node.hidden,
		staged:          node.staged,
		hasPresentation: node.hasPresentation,
		langs:           map[string]*projection{},
	}
	for language, proj := range node.langs {
		copied.langs[language] = &projection{displayName: proj.displayName, latest: 1}
	}
	m.nodes[copyID] = copied
	target.children = append(target.children, copyID)
	item := m.eventItem(node)
	copyItem := m.eventItem(copied)
	listener := m.listener
	m.mu.Unlock()

	if listener != nil && item != nil {
		listener.ItemCopied(item, copyItem)
	}
	return copyItem
}

// Save bumps the latest version of a language projection and emits a saved
// notification.
func (m *Memory) Save(id uuid.UUID, language string) {
	m.mu.Lock()
	node := m.nodes[id]
	if node == nil {
		m.mu.Unlock()
		return
	}
	proj := node.langs[language]
	if proj == nil {
		m.mu.Unlock()
		return
	}
	proj.latest++
	item := m.project(node, language, itemuri.VersionLatest)
	listener := m.listener
	m.mu.Unlock()

	if listener != nil && item != nil {
		listener.ItemSaved(item, false)
	}
}

// SetStaged includes or excludes an item from the content-staging view.
func (m *Memory) SetStaged(id uuid.UUID, staged bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if node := m.nodes[id]; node != nil {
		node.staged = staged
	}
}

// eventItem picks the projection attached to change notifications: the
// default language when present, otherwise the first language. Callers hold
// m.mu.
func (m *Memory) eventItem(node *memNode) *Item {
	if node.langs[m.language] != nil {
		return m.project(node, m.language, itemuri.VersionLatest)
	}
	languages := make([]string, 0, len(node.langs))
	for language := range node.langs {
		languages = append(languages, language)
	}
	sort.Strings(languages)
	if len(languages) == 0 {
		return nil
	}
	return m.project(node, languages[0], itemuri.VersionLatest)
}

func (m *Memory) deleteSubtree(id uuid.UUID) {
	node := m.nodes[id]
	if node == nil {
		return
	}
	for _, childID := range node.children {
		m.deleteSubtree(childID)
	}
	delete(m.nodes, id)
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			out = append(out, candidate)
		}
	}
	return out
}
