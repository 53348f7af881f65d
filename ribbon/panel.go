package ribbon

import (
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/foomo/ribbon/content"
)

// Severity of an editor notification.
type Severity string

const (
	SeverityError       Severity = "Error"
	SeverityWarning     Severity = "Warning"
	SeverityInformation Severity = "Information"
)

// Notification is one entry of the editor's notification panel.
type Notification struct {
	Severity    Severity
	Icon        string // default icon of the severity when empty
	Description string
	Options     []NotificationOption
}

// NotificationOption is an action link attached to a notification.
type NotificationOption struct {
	Command string
	Title   string
}

// NotificationsPipeline is the pipeline collecting the notifications of an
// item. It receives a *NotificationsArgs.
const NotificationsPipeline = "getPageEditorNotifications"

// NotificationsArgs is the argument record of NotificationsPipeline.
type NotificationsArgs struct {
	Item          *content.Item
	Notifications []Notification
}

// RenderNotifications renders the notification panel for an item. The panel
// only exists in edit mode and stays hidden when the pipeline returns
// nothing.
func (f *Form) RenderNotifications(item *content.Item) string {
	if f.mode() != ModeEdit {
		return ""
	}
	args := &NotificationsArgs{Item: item}
	if err := f.commands.Run(NotificationsPipeline, args); err != nil {
		f.logger.Error("notifications pipeline failed", zap.Error(err))
		return ""
	}
	if len(args.Notifications) == 0 {
		return ""
	}
	grouped := groupNotifications(args.Notifications)
	var b strings.Builder
	for i, notification := range grouped {
		marker := ""
		if i == 0 {
			marker += " First"
		}
		if i == len(grouped)-1 {
			marker += " Last"
		}
		renderNotification(&b, notification, marker)
	}
	return b.String()
}

// groupNotifications orders notifications by severity, errors first, keeping
// the original relative order within each severity.
func groupNotifications(notifications []Notification) []Notification {
	grouped := make([]Notification, 0, len(notifications))
	for _, severity := range []Severity{SeverityError, SeverityWarning, SeverityInformation} {
		for _, notification := range notifications {
			if notification.Severity == severity {
				grouped = append(grouped, notification)
			}
		}
	}
	return grouped
}

func notificationIcon(severity Severity) string {
	switch severity {
	case SeverityError:
		return "custom/16x16/error.png"
	case SeverityInformation:
		return "custom/16x16/info.png"
	default:
		return "custom/16x16/warning.png"
	}
}

func renderNotification(b *strings.Builder, notification Notification, marker string) {
	icon := notification.Icon
	if icon == "" {
		icon = notificationIcon(notification.Severity)
	}
	fmt.Fprintf(b, `<div class="scPageEditorNotification %s%s">`, notification.Severity, marker)
	fmt.Fprintf(b, `<img class="Icon" src="/icons/%s"/>`, icon)
	fmt.Fprintf(b, `<div class="Description">%s</div>`, html.EscapeString(notification.Description))
	for _, option := range notification.Options {
		fmt.Fprintf(b, `<a onclick="javascript: return scForm.postEvent(this, event, '%s')" href="#" class="OptionTitle">%s</a>`,
			option.Command, html.EscapeString(option.Title))
	}
	b.WriteString(`<br style="clear: both"/></div>`)
}
