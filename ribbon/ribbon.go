package ribbon

import (
	"fmt"
	"html"
	"strings"

	"github.com/foomo/ribbon/command"
	"github.com/foomo/ribbon/content"
)

// selectRibbonPath maps mode and user class onto a toolbar definition
// source. The mapping is total: unknown modes are the debug toolbar.
func selectRibbonPath(paths RibbonPaths, mode Mode, simpleUser bool) string {
	switch mode {
	case ModePreview:
		return paths.Preview
	case ModeEdit:
		if simpleUser {
			return paths.Simple
		}
		return paths.Full
	default:
		return paths.Debug
	}
}

// RenderRibbon renders the toolbar container for an item: the definition
// source selected by mode and user class, the active strip (preview pins the
// version strip, otherwise the strip the client had open), and the command
// context carrying the item and the page site of the inbound request.
func (f *Form) RenderRibbon(item *content.Item) string {
	mode := f.mode()
	activeStrip := f.state.Get(propActiveStrip)
	if mode == ModePreview {
		activeStrip = "VersionStrip"
	}
	ctx := command.Context{
		Item:         item,
		Parameters:   map[string]string{"sc_pagesite": f.state.Get(propPageSite)},
		RibbonSource: selectRibbonPath(f.settings.Ribbons, mode, f.settings.SimpleUser),
	}
	return renderRibbonControl(ctx, activeStrip)
}

// renderRibbonControl emits the toolbar container. The strip contents are
// built client-side from the definition source; the container carries the
// command context.
func renderRibbonControl(ctx command.Context, activeStrip string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<div id="Ribbon" data-source="%s"`, html.EscapeString(ctx.RibbonSource))
	if activeStrip != "" {
		fmt.Fprintf(&b, ` data-activestrip="%s"`, html.EscapeString(activeStrip))
	}
	if ctx.Item != nil {
		fmt.Fprintf(&b, ` data-itemuri="%s"`, html.EscapeString(ctx.Item.URI().String()))
	}
	if site := ctx.Parameters["sc_pagesite"]; site != "" {
		fmt.Fprintf(&b, ` data-pagesite="%s"`, html.EscapeString(site))
	}
	b.WriteString(`></div>`)
	return b.String()
}
