// Package ribbon implements the server-side controller of the page editor's
// toolbar, treecrumb and notification panel. A Form is bound to one editing
// session: it owns the session's edit state, reacts to repository change
// notifications, dispatches inbound client messages and renders the three
// surfaces.
package ribbon

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foomo/ribbon/command"
	"github.com/foomo/ribbon/content"
	"github.com/foomo/ribbon/itemuri"
	"github.com/foomo/ribbon/notify"
	"github.com/foomo/ribbon/policy"
	"github.com/foomo/ribbon/session"
	"github.com/foomo/ribbon/sheer"
)

// ErrItemNotFound is returned by Activate when the query string reference
// does not resolve; the caller redirects to the error page.
var ErrItemNotFound = errors.New("ribbon: item could not be found")

// User-visible messages.
const (
	MsgNotAvailable   = "The page editor is not yet available."
	MsgItemNotFound   = "The item could not be found. You may not have read access or it may have been deleted by another user."
	MsgItemDeleted    = "The item does not exist. It may have been deleted by another user."
	MsgConfirmRefresh = "An item was deleted. Do you want to refresh the page?"
)

// Session property keys for request-scoped render inputs captured at
// activation.
const (
	propMode        = "Mode"
	propDebug       = "Debug"
	propPageSite    = "PageSite"
	propActiveStrip = "ActiveStrip"
)

// notifyOwner keys this form's handlers in its notification source. A fixed
// key per session makes re-activation replace instead of double-subscribe.
const notifyOwner = "webedit-ribbon"

// Form is the controller of one editing session.
type Form struct {
	logger        *zap.Logger
	repo          content.Repository
	commands      command.Registry
	policies      policy.Checker
	client        sheer.Emitter
	notifications *notify.Source
	settings      Settings
	state         *session.State
}

// NewForm binds a controller to a session.
func NewForm(
	logger *zap.Logger,
	repo content.Repository,
	commands command.Registry,
	policies policy.Checker,
	client sheer.Emitter,
	notifications *notify.Source,
	settings Settings,
	state *session.State,
) *Form {
	return &Form{
		logger:        logger,
		repo:          repo,
		commands:      commands,
		policies:      policies,
		client:        client,
		notifications: notifications,
		settings:      settings,
		state:         state,
	}
}

// Page is the rendered activation result.
type Page struct {
	RibbonHTML        string
	TreecrumbHTML     string
	NotificationsHTML string
}

// Activate handles a page activation. On first load the query string must
// carry an item reference and the three surfaces are rendered; on a postback
// (the session already has an open item) the open item is re-validated and a
// stale-item notice is pushed when it no longer resolves.
//
// activeStrip is the toolbar strip the client had open, from its cookie.
func (f *Form) Activate(query url.Values, activeStrip string) (*Page, error) {
	f.state.SetRefreshAsked(false)
	f.attachNotifications()

	if f.state.CurrentItemURI() != "" {
		return nil, f.activatePostback()
	}

	uri, err := itemuri.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	if err := f.state.SetCurrentItemURI(uri.String()); err != nil {
		return nil, err
	}
	f.captureRenderInputs(query, activeStrip)

	item := f.repo.GetItem(uri)
	if item == nil {
		return nil, ErrItemNotFound
	}
	return &Page{
		RibbonHTML:        f.RenderRibbon(item),
		TreecrumbHTML:     f.RenderTreecrumb(item),
		NotificationsHTML: f.RenderNotifications(item),
	}, nil
}

func (f *Form) activatePostback() error {
	uri := itemuri.Parse(f.state.CurrentItemURI())
	if uri == nil {
		return nil
	}
	if f.repo.GetItem(uri) == nil {
		f.client.Eval(fmt.Sprintf("scShowItemDeletedNotification(%s)", escapeJS(MsgItemDeleted)))
	}
	return nil
}

// captureRenderInputs stores the request-scoped inputs the renderers need on
// later round trips, when no query string is available.
func (f *Form) captureRenderInputs(query url.Values, activeStrip string) {
	_ = f.state.Set(propMode, string(ParseMode(query.Get("mode"))))
	if query.Get("debug") == "1" {
		_ = f.state.Set(propDebug, "1")
	}
	if site := query.Get("sc_pagesite"); site != "" {
		_ = f.state.Set(propPageSite, site)
	}
	if activeStrip != "" {
		_ = f.state.Set(propActiveStrip, activeStrip)
	}
	f.state.SetDesigning(query.Get("designing") == "1")
}

func (f *Form) mode() Mode {
	return ParseMode(f.state.Get(propMode))
}

// SetMode overrides the editing mode. Used by surfaces that render without
// an activation query.
func (f *Form) SetMode(mode Mode) {
	_ = f.state.Set(propMode, string(mode))
}

// attachNotifications wires the change-reaction handlers to the session's
// notification source.
func (f *Form) attachNotifications() {
	f.notifications.Attach(notifyOwner, notify.Handlers{
		Created: f.createdNotification,
		Deleted: f.deletedNotification,
		Moved:   f.movedNotification,
		Renamed: f.renamedNotification,
		Copied:  f.copiedNotification,
		Saved:   f.savedNotification,
	})
}

// VerifyLoaded reports whether the editor finished loading: without a
// context uri no message may be processed.
func (f *Form) VerifyLoaded() bool {
	return f.state.ContextURI() != ""
}

// HandleMessage routes one inbound client message. Messages arriving before
// the editor is loaded are rejected with an alert and never dispatched.
func (f *Form) HandleMessage(msg command.Message) error {
	if !f.VerifyLoaded() {
		f.client.Alert(MsgNotAvailable)
		return nil
	}
	if msg.Name == "item:save" {
		disable, _ := strconv.ParseBool(msg.Argument("disableNotifications"))
		f.notifications.SetDisabled(disable)
		msg.Name = "webedit:save"
	}
	switch msg.Name {
	case "ribbon:update":
		uri := f.state.ContextURI()
		if id := msg.Argument("id"); id != "" {
			itemID, err := uuid.Parse(id)
			if err != nil {
				f.logger.Warn("ribbon:update with malformed id", zap.String("id", id))
				return nil
			}
			version, _ := strconv.Atoi(msg.Argument("ver"))
			uri = itemuri.New(itemID, msg.Argument("lang"), version, msg.Argument("db")).String()
		}
		f.Update(uri)
		return nil
	case "item:refresh":
		f.Update(f.state.ContextURI())
		return nil
	}
	return f.commands.Dispatch(msg, f.currentItem(msg))
}

// currentItem resolves the item a generic message targets: the open item,
// optionally narrowed to a named child by the message's id argument. It
// returns nil when the open item cannot be resolved; the command pipeline
// decides whether a nil subject is an error.
func (f *Form) currentItem(msg command.Message) *content.Item {
	current := f.state.CurrentItemURI()
	if current == "" {
		return nil
	}
	uri := itemuri.Parse(current)
	if uri == nil {
		return nil
	}
	item := f.repo.GetItem(uri)
	id := msg.Argument("id")
	if id == "" || item == nil {
		return item
	}
	if childID, err := uuid.Parse(id); err == nil {
		return f.repo.GetItemInLanguage(childID, item.Database, item.Language)
	}
	return f.repo.ItemByPath(id, item.Database, item.Language)
}

// Update changes the treecrumb selection to the given uri, re-renders the
// toolbar for the open item and the treecrumb for the selection, and tells
// the client to re-layout. Any resolution failure aborts silently; an
// inconsistent state self-corrects on the next interaction.
func (f *Form) Update(uriString string) {
	uri := itemuri.Parse(uriString)
	if uri == nil {
		return
	}
	if err := f.state.SetContextURI(uri.String()); err != nil {
		return
	}
	item := f.repo.GetItem(uri)
	if item == nil || f.state.CurrentItemURI() == "" {
		return
	}
	currentURI := itemuri.Parse(f.state.CurrentItemURI())
	if currentURI == nil {
		return
	}
	current := f.repo.GetItem(currentURI)
	if current == nil {
		return
	}
	f.client.Update("RibbonPane", f.RenderRibbon(current))
	f.client.Update("Treecrumb", f.RenderTreecrumb(item))
	f.client.Eval("scAdjustPositioning()")
}

// ShowSubitems opens a popup menu with the children of the given uri.
// Selecting an entry posts an Update for that child.
func (f *Form) ShowSubitems(uriString string) {
	uri := itemuri.Parse(uriString)
	if uri == nil {
		return
	}
	if err := f.state.SetContextURI(uri.String()); err != nil {
		return
	}
	item := f.repo.GetItem(uri)
	if item == nil {
		return
	}
	var menu []sheer.MenuOption
	for _, child := range f.repo.Children(item) {
		if child.Hidden && !f.settings.ShowHiddenItems {
			continue
		}
		menu = append(menu, sheer.MenuOption{
			Title: child.DisplayName,
			Icon:  child.Icon,
			Click: fmt.Sprintf("Update(%q)", child.URI().String()),
		})
	}
	f.client.ShowPopup(menu)
}

// itemURL returns the editor url of an item.
func (f *Form) itemURL(item *content.Item) string {
	base := f.settings.SiteBase
	if base == "" {
		base = "/"
	}
	values := item.URI().Query()
	if mode := f.state.Get(propMode); mode != "" {
		values.Set("mode", mode)
	}
	return base + "?" + values.Encode()
}

// escapeJS quotes a string for embedding in a javascript snippet.
func escapeJS(s string) string {
	return strconv.Quote(s)
}
