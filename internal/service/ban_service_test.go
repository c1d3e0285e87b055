package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/config"
)

func newBanServiceForTest(t *testing.T) *BanService {
	t.Helper()
	svc, err := NewBanService(config.BanConfig{
		File:          filepath.Join(t.TempDir(), "banned.txt"),
		DefaultReason: "abuse",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("new ban service: %v", err)
	}
	return svc
}

func TestBanUnbanRoundTrip(t *testing.T) {
	svc := newBanServiceForTest(t)

	if svc.IsBanned(42) {
		t.Fatal("fresh list should be empty")
	}
	if err := svc.Ban(42, "spamming the bot"); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if !svc.IsBanned(42) {
		t.Fatal("subject should be banned")
	}
	reason, ok := svc.Reason(42)
	if !ok || reason != "spamming the bot" {
		t.Fatalf("reason = %q, %v", reason, ok)
	}

	if err := svc.Unban(42); err != nil {
		t.Fatalf("unban: %v", err)
	}
	if svc.IsBanned(42) {
		t.Fatal("subject should be unbanned")
	}
	// Unbanning again is a no-op.
	if err := svc.Unban(42); err != nil {
		t.Fatalf("second unban: %v", err)
	}
}

func TestBanWithEmptyReasonUsesDefault(t *testing.T) {
	svc := newBanServiceForTest(t)
	if err := svc.Ban(42, "  "); err != nil {
		t.Fatalf("ban: %v", err)
	}
	reason, _ := svc.Reason(42)
	if reason != "abuse" {
		t.Fatalf("reason = %q, want default", reason)
	}
}

func TestBanListPersistsAcrossReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "banned.txt")
	cfg := config.BanConfig{File: path, DefaultReason: "abuse"}

	svc, err := NewBanService(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new ban service: %v", err)
	}
	if err := svc.Ban(42, "spam"); err != nil {
		t.Fatalf("ban: %v", err)
	}
	if err := svc.Ban(7, "link in name"); err != nil {
		t.Fatalf("ban: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read ban file: %v", err)
	}
	if !strings.Contains(string(raw), "42|spam") {
		t.Fatalf("ban file missing entry: %q", raw)
	}

	reloaded, err := NewBanService(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("reload ban service: %v", err)
	}
	if !reloaded.IsBanned(42) || !reloaded.IsBanned(7) {
		t.Fatal("bans lost across reload")
	}
	bans := reloaded.List()
	if len(bans) != 2 || bans[0].SubjectID != 7 {
		t.Fatalf("list = %+v", bans)
	}
}

func TestBanListSkipsMalformedAndCommentLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "banned.txt")
	content := "# known spammers\n42|spam\nnot-a-number|x\n\n7\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write ban file: %v", err)
	}

	svc, err := NewBanService(config.BanConfig{File: path, DefaultReason: "abuse"}, zap.NewNop())
	if err != nil {
		t.Fatalf("new ban service: %v", err)
	}
	if !svc.IsBanned(42) {
		t.Fatal("valid entry lost")
	}
	// An id without a reason falls back to the default.
	reason, ok := svc.Reason(7)
	if !ok || reason != "abuse" {
		t.Fatalf("reason = %q, %v", reason, ok)
	}
	if len(svc.List()) != 2 {
		t.Fatalf("list = %+v", svc.List())
	}
}

func TestNameHasLink(t *testing.T) {
	svc, err := NewBanService(config.BanConfig{
		File:            filepath.Join(t.TempDir(), "banned.txt"),
		DefaultReason:   "abuse",
		BanOnNameLink:   true,
		NameLinkPattern: `(https?://|t\.me/|@\w{5,})`,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("new ban service: %v", err)
	}

	if !svc.NameHasLink("Buy now T.ME/cheapstuff") {
		t.Fatal("t.me link should match case-insensitively")
	}
	if !svc.NameHasLink("visit https://example.com") {
		t.Fatal("https link should match")
	}
	if svc.NameHasLink("Jane Doe") {
		t.Fatal("plain name should not match")
	}

	disabled := newBanServiceForTest(t)
	if disabled.NameHasLink("https://example.com") {
		t.Fatal("check disabled, should never match")
	}
}
