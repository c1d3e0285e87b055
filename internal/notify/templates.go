package notify

import "strings"

// Template keys understood by the notifiers.
const (
	TemplateTicketCreatedAdmin    = "ticket.created.admin"
	TemplateTicketMessageAdmin    = "ticket.message.admin"
	TemplateTicketReplyUser       = "ticket.reply.user"
	TemplateTicketTakenUser       = "ticket.taken.user"
	TemplateTicketClosedUser      = "ticket.closed.user"
	TemplateTicketAutoClosedUser  = "ticket.auto_closed.user"
	TemplateTicketAutoClosedAdmin = "ticket.auto_closed.admin"
	TemplateTicketRatedAdmin      = "ticket.rated.admin"
	TemplateFeedbackAdmin         = "feedback.received.admin"
	TemplateFeedbackThanksUser    = "feedback.thanked.user"
	TemplateAlertError            = "alert.error"
	TemplateAlertStartup          = "alert.startup"
	TemplateAlertShutdown         = "alert.shutdown"
	TemplateAlertBackup           = "alert.backup"
)

var templates = map[string]string{
	TemplateTicketCreatedAdmin: "🆕 New ticket {ref}\nFrom: {subject_id}\n\n{text}",
	TemplateTicketMessageAdmin: "💬 New message on ticket {ref}\nFrom: {subject_id}\n\n{text}",
	TemplateTicketReplyUser:    "💬 Support replied on your ticket {ref}:\n\n{text}",
	TemplateTicketTakenUser:    "👀 Your ticket {ref} is being worked on.",
	TemplateTicketClosedUser:   "✅ Your ticket {ref} has been closed. Send a new message to open another one.",
	TemplateTicketAutoClosedUser: "⏰ Your ticket {ref} was closed automatically because we did not hear " +
		"back from you. If the issue persists, just send a new message to open a fresh ticket.",
	TemplateTicketAutoClosedAdmin: "⏰ Ticket {ref} auto-closed after {waited} without a user reply.",
	TemplateTicketRatedAdmin:      "⭐ Ticket {ref} rated {stars}/3 by {subject_id}.",
	TemplateFeedbackAdmin:         "📝 New {kind} from {subject_id}:\n\n{text}",
	TemplateFeedbackThanksUser:    "🙏 Thanks for your {kind}!",
	TemplateAlertError:            "⚠️ {signature}\n{error}{suppressed}",
	TemplateAlertStartup: "🚀 Helpdesk started\n\n📊 Tickets: {total} total, {active} active\n" +
		"⏳ Awaiting auto-close: {waiting}",
	TemplateAlertShutdown: "🛑 Helpdesk stopping\n\n📊 Tickets: {total} total, {active} active",
	TemplateAlertBackup:   "💾 Backup created: {file} ({size})",
}

// Render substitutes {name} placeholders in the template for the key.
// Unknown keys render as the key itself so a missing template is visible
// rather than silent.
func Render(templateKey string, params map[string]string) string {
	text, ok := templates[templateKey]
	if !ok {
		return templateKey
	}
	for name, value := range params {
		text = strings.ReplaceAll(text, "{"+name+"}", value)
	}
	return text
}
