package ribbon

import (
	"fmt"
	"html"
	"strings"

	"github.com/google/uuid"

	"github.com/foomo/ribbon/command"
	"github.com/foomo/ribbon/content"
)

// RenderTreecrumb renders the ancestor trail of an item: the recursive node
// chain, the "go to page" control and, outside preview mode, the "open in
// editor" control. Simple users and debug pages get no treecrumb.
func (f *Form) RenderTreecrumb(item *content.Item) string {
	if f.settings.SimpleUser || f.state.Get(propDebug) == "1" {
		return ""
	}
	var b strings.Builder
	f.renderTreecrumb(&b, item)
	f.renderTreecrumbGo(&b, item)
	if f.mode() != ModePreview {
		f.renderTreecrumbEdit(&b, item)
	}
	return b.String()
}

// renderTreecrumb renders root-to-leaf: ancestors first, then this node's
// label and expansion glyph. The absolute root itself is never part of the
// trail.
func (f *Form) renderTreecrumb(b *strings.Builder, item *content.Item) {
	parent := f.repo.Parent(item)
	if parent != nil && !f.isRoot(parent) {
		f.renderTreecrumb(b, parent)
	}
	f.renderTreecrumbLabel(b, item)
	f.renderTreecrumbGlyph(b, item)
}

// renderTreecrumbLabel renders the clickable node label. The immediate child
// of the absolute root gets no label.
func (f *Form) renderTreecrumbLabel(b *strings.Builder, item *content.Item) {
	parent := f.repo.Parent(item)
	if parent == nil || f.isRoot(parent) {
		return
	}
	click := fmt.Sprintf(`javascript:scForm.postRequest("","","",%s)`,
		escapeJS(fmt.Sprintf("Update(%q)", item.URI().String())))
	fmt.Fprintf(b, `<a class="scTreecrumbNode" href="#" onclick='%s'>`, click)
	class := "scTreecrumbNodeLabel"
	if item.URI().String() == f.state.CurrentItemURI() {
		class += " scTreecrumbNodeCurrentItem"
	}
	fmt.Fprintf(b, `<span class="%s">%s</span></a>`, class, html.EscapeString(item.DisplayName))
}

// renderTreecrumbGlyph renders the children chevron. It needs an active
// output device, and it trusts the staging view over the item's own
// HasChildren flag: a stale count without actual staged children renders
// nothing.
func (f *Form) renderTreecrumbGlyph(b *strings.Builder, item *content.Item) {
	if !item.HasChildren {
		return
	}
	if f.settings.Device == "" {
		return
	}
	children := f.repo.StagedChildren(item)
	if len(children) == 0 {
		return
	}
	anchorID := strings.ReplaceAll(uuid.New().String(), "-", "")
	click := fmt.Sprintf(`javascript:scContent.showOutOfFrameGallery(this, event, "Gallery.ItemChildren", {height: 30, width: 30}, {itemuri: %q});`,
		item.URI().String())
	fmt.Fprintf(b, `<a id="L%s" class="scTreecrumbChevron" href="#" onclick='%s'>`, anchorID, click)
	writeIcon(b, "images/ribboncrumb16x16.png", "scTreecrumbChevronGlyph", false)
	b.WriteString(`</a>`)
}

// renderTreecrumbGo renders the trailing "go to page" control, active only
// when the item has a presentation.
func (f *Form) renderTreecrumbGo(b *strings.Builder, item *content.Item) {
	b.WriteString(`<div class="scTreecrumbDivider"></div>`)
	active := item.HasPresentation
	if active {
		fmt.Fprintf(b, `<a href="%s" class="scTreecrumbGo" target="_parent">`, html.EscapeString(f.itemURL(item)))
	} else {
		b.WriteString(`<span class="scTreecrumbGo">`)
	}
	writeIcon(b, "apps/16x16/arrow_right_green.png", "scTreecrumbGoIcon", !active)
	fmt.Fprintf(b, " Go%s", closeTag(active))
}

// renderTreecrumbEdit renders the trailing "open in editor" control, gated
// by the navigation-bar edit policy and by the ui state of the open command.
func (f *Form) renderTreecrumbEdit(b *strings.Builder, item *content.Item) {
	allowed := f.policies.IsAllowed("page editor/navigation bar/can edit")
	if allowed && f.commands.Has("webedit:open") {
		state := f.commands.QueryState("webedit:open", command.Context{Item: item})
		allowed = state != command.StateHidden && state != command.StateDisabled
	}
	if allowed {
		click := fmt.Sprintf("webedit:open(id=%s)", item.ID)
		fmt.Fprintf(b, `<a href="javascript:void(0)" onclick="javascript:return scForm.postEvent(this, event, '%s')" class="scTreecrumbGo">`, click)
	} else {
		b.WriteString(`<span class="scTreecrumbGo">`)
	}
	writeIcon(b, "apps/16x16/edit.png", "scTreecrumbGoIcon", !allowed)
	fmt.Fprintf(b, " Edit%s", closeTag(allowed))
}

func (f *Form) isRoot(item *content.Item) bool {
	root := f.repo.Root(item.Database)
	return root != nil && root.ID == item.ID
}

func writeIcon(b *strings.Builder, src, class string, disabled bool) {
	if disabled {
		class += " scDisabled"
	}
	fmt.Fprintf(b, `<img src="/icons/%s" class="%s" alt=""/>`, src, class)
}

func closeTag(active bool) string {
	if active {
		return "</a>"
	}
	return "</span>"
}
