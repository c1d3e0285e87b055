package notify

import (
	"strings"
	"testing"
)

func TestRenderSubstitutesParams(t *testing.T) {
	text := Render(TemplateTicketAutoClosedAdmin, map[string]string{
		"ref":    "T-AAAA0001",
		"waited": "24h0m0s",
	})
	if !strings.Contains(text, "T-AAAA0001") || !strings.Contains(text, "24h0m0s") {
		t.Fatalf("rendered = %q", text)
	}
	if strings.Contains(text, "{") {
		t.Fatalf("unsubstituted placeholder in %q", text)
	}
}

func TestRenderUnknownKeyIsVisible(t *testing.T) {
	if got := Render("no.such.template", nil); got != "no.such.template" {
		t.Fatalf("got %q", got)
	}
}

func TestEveryTemplateKeyHasText(t *testing.T) {
	keys := []string{
		TemplateTicketCreatedAdmin,
		TemplateTicketMessageAdmin,
		TemplateTicketReplyUser,
		TemplateTicketTakenUser,
		TemplateTicketClosedUser,
		TemplateTicketAutoClosedUser,
		TemplateTicketAutoClosedAdmin,
		TemplateTicketRatedAdmin,
		TemplateFeedbackAdmin,
		TemplateFeedbackThanksUser,
		TemplateAlertError,
		TemplateAlertStartup,
		TemplateAlertShutdown,
		TemplateAlertBackup,
	}
	for _, key := range keys {
		if _, ok := templates[key]; !ok {
			t.Errorf("template %q has no text", key)
		}
	}
}
