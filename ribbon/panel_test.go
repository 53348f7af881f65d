package ribbon

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func registerNotifications(fx *fixture, notifications ...Notification) {
	fx.commands.RegisterPipeline(NotificationsPipeline, func(args any) error {
		args.(*NotificationsArgs).Notifications = notifications
		return nil
	})
}

func TestNotificationsGrouping(t *testing.T) {
	fx := newFixture(t, testSettings())
	registerNotifications(fx,
		Notification{Severity: SeverityInformation, Description: "fyi"},
		Notification{Severity: SeverityError, Description: "broken one"},
		Notification{Severity: SeverityWarning, Description: "careful"},
		Notification{Severity: SeverityError, Description: "broken two"},
	)
	page := fx.activate(t, fx.about, "edit", nil)

	rendered := page.NotificationsHTML
	order := []string{"broken one", "broken two", "careful", "fyi"}
	last := -1
	for _, description := range order {
		index := strings.Index(rendered, description)
		require.Greater(t, index, last, "errors come first, in stable order: %s", description)
		last = index
	}
	require.Contains(t, rendered, `class="scPageEditorNotification Error First"`)
	require.Contains(t, rendered, `class="scPageEditorNotification Information Last"`)
	require.NotContains(t, rendered, "Warning First")
	require.NotContains(t, rendered, "Warning Last")
}

func TestNotificationsSingleEntryIsFirstAndLast(t *testing.T) {
	fx := newFixture(t, testSettings())
	registerNotifications(fx, Notification{Severity: SeverityWarning, Description: "careful"})
	page := fx.activate(t, fx.about, "edit", nil)

	require.Contains(t, page.NotificationsHTML, `class="scPageEditorNotification Warning First Last"`)
}

func TestNotificationsOnlyInEditMode(t *testing.T) {
	fx := newFixture(t, testSettings())
	registerNotifications(fx, Notification{Severity: SeverityError, Description: "broken"})
	page := fx.activate(t, fx.about, "preview", nil)

	require.Empty(t, page.NotificationsHTML)
}

func TestNotificationsEmptyPipeline(t *testing.T) {
	fx := newFixture(t, testSettings())
	page := fx.activate(t, fx.about, "edit", nil)
	require.Empty(t, page.NotificationsHTML)
}

func TestNotificationDefaultIcons(t *testing.T) {
	fx := newFixture(t, testSettings())
	registerNotifications(fx,
		Notification{Severity: SeverityError, Description: "broken"},
		Notification{Severity: SeverityWarning, Description: "careful", Icon: "custom/16x16/lock.png"},
	)
	page := fx.activate(t, fx.about, "edit", nil)

	require.Contains(t, page.NotificationsHTML, "/icons/custom/16x16/error.png")
	require.Contains(t, page.NotificationsHTML, "/icons/custom/16x16/lock.png")
	require.NotContains(t, page.NotificationsHTML, "/icons/custom/16x16/warning.png")
}

func TestNotificationOptions(t *testing.T) {
	fx := newFixture(t, testSettings())
	registerNotifications(fx, Notification{
		Severity:    SeverityWarning,
		Description: "item is locked",
		Options:     []NotificationOption{{Command: "webedit:unlock", Title: "Unlock"}},
	})
	page := fx.activate(t, fx.about, "edit", nil)

	require.Contains(t, page.NotificationsHTML, "scForm.postEvent(this, event, 'webedit:unlock')")
	require.Contains(t, page.NotificationsHTML, `class="OptionTitle">Unlock</a>`)
}

func TestNotificationsEscapeDescriptions(t *testing.T) {
	fx := newFixture(t, testSettings())
	registerNotifications(fx, Notification{Severity: SeverityError, Description: `<script>alert(1)</script>`})
	page := fx.activate(t, fx.about, "edit", nil)

	require.NotContains(t, page.NotificationsHTML, "<script>")
	require.Contains(t, page.NotificationsHTML, "&lt;script&gt;")
}
