package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/domain"
)

func newFileStoreAt(t *testing.T, dir string) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(dir, "data.json"), zap.NewNop())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return s
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	s := newFileStoreAt(t, dir)
	ticket := domain.NewTicket("tid-1", "T-AAAA0001", 42, created)
	_ = ticket.AdminReply(created.Add(time.Hour))
	if err := s.Put(ctx, ticket); err != nil {
		t.Fatalf("put: %v", err)
	}
	fb := &domain.Feedback{
		ID: "rev_00000001", SubjectID: 42,
		Kind: domain.FeedbackKindReview, Text: "great", CreatedAt: created,
	}
	if err := s.PutFeedback(ctx, fb); err != nil {
		t.Fatalf("put feedback: %v", err)
	}

	// A fresh instance over the same path sees the same records, with
	// timestamps intact for the eligibility predicate.
	reopened := newFileStoreAt(t, dir)
	got, err := reopened.Get(ctx, "tid-1")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Status != domain.TicketStatusInProgress || got.LastActor != domain.ActorAdmin {
		t.Fatalf("got %+v", got)
	}
	if !got.LastAdminMessageAt.Equal(created.Add(time.Hour)) {
		t.Fatalf("last admin message at = %s", got.LastAdminMessageAt)
	}
	feedbacks, err := reopened.ListFeedback(ctx)
	if err != nil {
		t.Fatalf("list feedback after reopen: %v", err)
	}
	if len(feedbacks) != 1 || feedbacks[0].ID != "rev_00000001" {
		t.Fatalf("feedbacks = %+v", feedbacks)
	}
}

func TestFileStoreWriteKeepsBackup(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	s := newFileStoreAt(t, dir)
	if err := s.Put(ctx, domain.NewTicket("tid-1", "T-AAAA0001", 42, created)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, domain.NewTicket("tid-2", "T-AAAA0002", 7, created)); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "data.json.bak")); err != nil {
		t.Fatalf("backup file missing after second write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestFileStoreFallsBackToBackupOnCorruptMain(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	s := newFileStoreAt(t, dir)
	if err := s.Put(ctx, domain.NewTicket("tid-1", "T-AAAA0001", 42, created)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, domain.NewTicket("tid-2", "T-AAAA0002", 7, created)); err != nil {
		t.Fatalf("put: %v", err)
	}

	path := filepath.Join(dir, "data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt main file: %v", err)
	}

	reopened := newFileStoreAt(t, dir)
	if _, err := reopened.Get(ctx, "tid-1"); err != nil {
		t.Fatalf("get from backup: %v", err)
	}
}

func TestFileStoreStartsEmptyWhenNothingReadable(t *testing.T) {
	dir := t.TempDir()
	s := newFileStoreAt(t, dir)
	tickets, err := s.List(context.Background(), TicketFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tickets) != 0 {
		t.Fatalf("tickets = %d, want 0", len(tickets))
	}
}
