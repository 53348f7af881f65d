package ribbon

// Mode is the editing mode the page was opened in.
type Mode string

const (
	ModePreview Mode = "preview"
	ModeEdit    Mode = "edit"
	ModeDebug   Mode = "debug"
)

// ParseMode maps the activation query's mode flag onto a Mode. Anything but
// preview or edit falls back to debug.
func ParseMode(raw string) Mode {
	switch raw {
	case "preview":
		return ModePreview
	case "edit":
		return ModeEdit
	default:
		return ModeDebug
	}
}

// RibbonPaths are the definition sources of the four toolbar variants.
type RibbonPaths struct {
	Preview string `yaml:"preview"`
	Simple  string `yaml:"simple"`
	Full    string `yaml:"full"`
	Debug   string `yaml:"debug"`
}

// Settings configures the editor controller for one site.
type Settings struct {
	// SiteName identifies the site in command contexts.
	SiteName string `yaml:"siteName"`
	// SiteBase is the base url item links point at.
	SiteBase string `yaml:"siteBase"`
	// ContentStartPath is the content root of the site; the fallback target
	// after deleting the open item when its parent has no presentation.
	ContentStartPath string `yaml:"contentStartPath"`
	// Device names the active output device. When empty, no device is
	// rendering and the treecrumb suppresses its expansion glyphs.
	Device string `yaml:"device"`
	// SimpleUser selects the restricted toolbar and hides the treecrumb.
	SimpleUser bool `yaml:"simpleUser"`
	// ShowHiddenItems includes hidden items in the subitems popup.
	ShowHiddenItems bool `yaml:"showHiddenItems"`
	// ConfirmBeforeReload asks the user before reloading after a deletion
	// elsewhere in the tree, instead of reloading immediately.
	ConfirmBeforeReload bool `yaml:"confirmBeforeReload"`
	// Ribbons are the toolbar definition sources.
	Ribbons RibbonPaths `yaml:"ribbons"`
}

// DefaultSettings returns settings for a single-site deployment.
func DefaultSettings() Settings {
	return Settings{
		SiteName:         "website",
		SiteBase:         "/",
		ContentStartPath: "/content/home",
		Device:           "default",
		Ribbons: RibbonPaths{
			Preview: "/apps/webedit/ribbons/preview",
			Simple:  "/apps/webedit/ribbons/simple",
			Full:    "/apps/webedit/ribbons/webedit",
			Debug:   "/apps/webedit/ribbons/debug",
		},
	}
}
