package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/domain"
)

// fileDocument is the on-disk layout of the JSON store.
type fileDocument struct {
	Tickets   map[string]domain.Ticket   `json:"tickets"`
	Feedbacks map[string]domain.Feedback `json:"feedbacks"`
}

// FileStore persists the whole dataset in a single JSON file. Every write
// goes through write-new-then-swap so the main file is always a complete
// document; the previous version is kept as a .bak fallback for load.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	doc    fileDocument
}

// NewFileStore loads the document at path, falling back to the .bak copy
// when the main file is missing or corrupt. An absent file starts empty.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		logger: logger,
		doc: fileDocument{
			Tickets:   make(map[string]domain.Ticket),
			Feedbacks: make(map[string]domain.Feedback),
		},
	}

	doc, err := loadDocument(path)
	if err != nil {
		logger.Warn("loading data file failed, trying backup",
			zap.String("path", path), zap.Error(err))
		doc, err = loadDocument(path + ".bak")
		if err != nil {
			logger.Warn("backup unreadable, starting with empty store",
				zap.String("path", path+".bak"), zap.Error(err))
			return s, nil
		}
	}
	if doc.Tickets != nil {
		s.doc.Tickets = doc.Tickets
	}
	if doc.Feedbacks != nil {
		s.doc.Feedbacks = doc.Feedbacks
	}
	logger.Info("data file loaded",
		zap.String("path", path),
		zap.Int("tickets", len(s.doc.Tickets)),
		zap.Int("feedbacks", len(s.doc.Feedbacks)))
	return s, nil
}

func loadDocument(path string) (fileDocument, error) {
	var doc fileDocument
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

// flush writes the current document atomically: temp file first, then the
// old file becomes .bak, then the temp replaces the main path. Callers
// hold s.mu.
func (s *FileStore) flush() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if _, err := os.Stat(s.path); err == nil {
		if err := os.Rename(s.path, s.path+".bak"); err != nil {
			s.logger.Warn("keeping previous data file as backup failed", zap.Error(err))
		}
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket, ok := s.doc.Tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := ticket
	return &copied, nil
}

func (s *FileStore) Put(ctx context.Context, ticket *domain.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, existed := s.doc.Tickets[ticket.ID]
	s.doc.Tickets[ticket.ID] = *ticket
	if err := s.flush(); err != nil {
		if existed {
			s.doc.Tickets[ticket.ID] = previous
		} else {
			delete(s.doc.Tickets, ticket.ID)
		}
		return err
	}
	return nil
}

func (s *FileStore) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []domain.Ticket
	for id := range s.doc.Tickets {
		ticket := s.doc.Tickets[id]
		if filter.Matches(&ticket) {
			result = append(result, ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *FileStore) GetFeedback(ctx context.Context, id string) (*domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fb, ok := s.doc.Feedbacks[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := fb
	return &copied, nil
}

func (s *FileStore) PutFeedback(ctx context.Context, fb *domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous, existed := s.doc.Feedbacks[fb.ID]
	s.doc.Feedbacks[fb.ID] = *fb
	if err := s.flush(); err != nil {
		if existed {
			s.doc.Feedbacks[fb.ID] = previous
		} else {
			delete(s.doc.Feedbacks, fb.ID)
		}
		return err
	}
	return nil
}

func (s *FileStore) ListFeedback(ctx context.Context) ([]domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.Feedback, 0, len(s.doc.Feedbacks))
	for id := range s.doc.Feedbacks {
		result = append(result, s.doc.Feedbacks[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
