package ribbon

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/foomo/ribbon/content"
	"github.com/foomo/ribbon/itemuri"
	"github.com/foomo/ribbon/notify"
)

const jsReload = "window.parent.location.reload(true)"

// reload schedules a full page reload on the client.
func (f *Form) reload() {
	f.client.Eval(jsReload)
}

// reloadAfterDelete reloads after a deletion elsewhere in the tree. With
// ConfirmBeforeReload set it asks the user first and completes on the next
// round trip; the default is an immediate reload.
func (f *Form) reloadAfterDelete() {
	if f.settings.ConfirmBeforeReload {
		f.confirmAndReload()
		return
	}
	f.reload()
}

// confirmAndReload starts the two-round-trip confirmation protocol. The
// question is asked at most once per activation.
func (f *Form) confirmAndReload() {
	if f.state.CurrentItemDeleted() {
		return
	}
	if f.state.RefreshAsked() {
		return
	}
	f.client.Confirm(MsgConfirmRefresh)
	f.state.SetRefreshAsked(true)
	f.state.SetAwaitingReload(true)
}

// HandleConfirmResult completes a pending reload confirmation with the
// client's answer. Any answer other than "no" reloads.
func (f *Form) HandleConfirmResult(result string) {
	if f.state.CurrentItemDeleted() {
		return
	}
	if !f.state.AwaitingReload() {
		return
	}
	f.state.SetAwaitingReload(false)
	if result != "" && result != "no" {
		f.reload()
	}
}

// redirect sends the client to an item's editor url.
func (f *Form) redirect(item *content.Item) {
	f.client.Eval(fmt.Sprintf("window.parent.location.href='%s'", f.itemURL(item)))
}

// createdNotification reacts to an item creation. The treecrumb cannot know
// whether the new item affects it, so it reloads.
func (f *Form) createdNotification(notify.CreatedEvent) {
	f.reload()
}

// copiedNotification reacts to an item copy; conservative reload, like
// created.
func (f *Form) copiedNotification(notify.CopiedEvent) {
	f.reload()
}

// deletedNotification reacts to an item deletion. Deleting the open item
// redirects to a fallback target and latches the session as torn down; a
// deletion elsewhere reloads, because cached trail state may be stale.
func (f *Form) deletedNotification(ev notify.DeletedEvent) {
	if f.state.CurrentItemDeleted() {
		return
	}
	uri := itemuri.Parse(f.state.CurrentItemURI())
	if uri == nil {
		f.logger.Error("deleted notification without a parseable current item uri")
		return
	}

	// Probe the open item in the deleted item's language. Failing here is
	// independent evidence the open item is already gone.
	if f.repo.GetItemInLanguage(uri.ID, uri.Database, ev.Item.Language) == nil {
		f.reload()
	}

	parent := f.repo.GetItemInLanguage(ev.ParentID, ev.Item.Database, ev.Item.Language)
	if parent == nil {
		return
	}
	if uri.SameItem(ev.Item.URI()) {
		f.state.MarkCurrentItemDeleted()
		f.redirect(f.fallbackTarget(parent))
		return
	}
	if f.repo.GetItem(uri) != nil && !f.state.CurrentItemDeleted() {
		f.reloadAfterDelete()
	}
}

// fallbackTarget picks where to send the client after the open item was
// deleted: the parent when it renders, otherwise the site's content root in
// the same language, otherwise the parent anyway.
func (f *Form) fallbackTarget(parent *content.Item) *content.Item {
	if parent.HasPresentation {
		return parent
	}
	if f.settings.ContentStartPath == "" {
		return parent
	}
	start := f.repo.ItemByPath(f.settings.ContentStartPath, parent.Database, parent.Language)
	if start == nil {
		return parent
	}
	return start
}

// movedNotification reacts to an item move. Moving anything else reloads;
// moving the open item redirects to its new location and switches further
// notifications off, so the move's secondary events cannot start a reload
// storm.
func (f *Form) movedNotification(ev notify.MovedEvent) {
	current := f.state.CurrentItemURI()
	if current == "" {
		return
	}
	uri := itemuri.Parse(current)
	if uri == nil {
		return
	}
	if !uri.SameItem(ev.Item.URI()) {
		f.reload()
		return
	}
	item := f.repo.GetItem(uri)
	if item == nil {
		f.logger.Error("item not found after moving", zap.String("uri", uri.String()))
		return
	}
	f.redirect(item)
	f.notifications.SetDisabled(true)
}

// renamedNotification reacts to a rename. Renaming the open item redirects
// to its re-resolved location; everything else, including a failed
// re-resolution, falls back to a reload.
func (f *Form) renamedNotification(ev notify.RenamedEvent) {
	uri := itemuri.Parse(f.state.CurrentItemURI())
	if uri != nil && uri.SameItem(ev.Item.URI()) {
		if item := f.repo.GetItemInLanguage(ev.Item.ID, ev.Item.Database, uri.Language); item != nil {
			f.redirect(item)
			return
		}
	}
	f.reload()
}

// savedNotification reacts to a save. Saves made while designing do not
// reload, and saves that were really renames are covered by the renamed
// handler.
func (f *Form) savedNotification(ev notify.SavedEvent) {
	if !f.state.Designing() && !ev.Renamed {
		f.reload()
	}
}
