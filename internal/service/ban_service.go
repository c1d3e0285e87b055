package service

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/config"
	"github.com/support-kit/helpdesk-bot/internal/domain"
)

// BanService keeps the ban list in memory and persists it as a plain
// "subject_id|reason" text file, one entry per line. Banned subjects
// cannot open tickets or submit feedback.
type BanService struct {
	mu          sync.Mutex
	path        string
	defaultWhy  string
	linkPattern *regexp.Regexp
	banOnLink   bool
	banned      map[int64]string
	logger      *zap.Logger
}

// NewBanService loads the ban list from cfg.File. A missing file starts
// an empty list; malformed lines are skipped with a warning.
func NewBanService(cfg config.BanConfig, logger *zap.Logger) (*BanService, error) {
	s := &BanService{
		path:       cfg.File,
		defaultWhy: cfg.DefaultReason,
		banOnLink:  cfg.BanOnNameLink,
		banned:     make(map[int64]string),
		logger:     logger,
	}
	if cfg.BanOnNameLink && cfg.NameLinkPattern != "" {
		pattern, err := regexp.Compile("(?i)" + cfg.NameLinkPattern)
		if err != nil {
			return nil, fmt.Errorf("compile NAME_LINK_PATTERN: %w", err)
		}
		s.linkPattern = pattern
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *BanService) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("ban file not found, starting empty", zap.String("path", s.path))
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idPart, reason, _ := strings.Cut(line, "|")
		subjectID, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
		if err != nil {
			s.logger.Warn("skipping malformed ban entry", zap.String("line", line))
			continue
		}
		reason = strings.TrimSpace(reason)
		if reason == "" {
			reason = s.defaultWhy
		}
		s.banned[subjectID] = reason
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	s.logger.Info("ban list loaded",
		zap.String("path", s.path), zap.Int("entries", len(s.banned)))
	return nil
}

// save rewrites the ban file. Callers hold s.mu.
func (s *BanService) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	var b strings.Builder
	ids := make([]int64, 0, len(s.banned))
	for id := range s.banned {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		fmt.Fprintf(&b, "%d|%s\n", id, s.banned[id])
	}
	return os.WriteFile(s.path, []byte(b.String()), 0o644)
}

// IsBanned reports whether the subject is on the ban list.
func (s *BanService) IsBanned(subjectID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.banned[subjectID]
	return ok
}

// Reason returns the ban reason for the subject, if banned.
func (s *BanService) Reason(subjectID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reason, ok := s.banned[subjectID]
	return reason, ok
}

// Ban adds or updates a ban entry and persists the list.
func (s *BanService) Ban(subjectID int64, reason string) error {
	if strings.TrimSpace(reason) == "" {
		reason = s.defaultWhy
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.banned[subjectID] = reason
	if err := s.save(); err != nil {
		delete(s.banned, subjectID)
		return err
	}
	s.logger.Info("subject banned", zap.Int64("subject_id", subjectID), zap.String("reason", reason))
	return nil
}

// Unban removes a ban entry. Unbanning an unknown subject is a no-op.
func (s *BanService) Unban(subjectID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reason, ok := s.banned[subjectID]
	if !ok {
		s.logger.Warn("unban of subject that is not banned", zap.Int64("subject_id", subjectID))
		return nil
	}
	delete(s.banned, subjectID)
	if err := s.save(); err != nil {
		s.banned[subjectID] = reason
		return err
	}
	s.logger.Info("subject unbanned", zap.Int64("subject_id", subjectID))
	return nil
}

// List returns all bans sorted by subject id.
func (s *BanService) List() []domain.Ban {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]domain.Ban, 0, len(s.banned))
	for id, reason := range s.banned {
		result = append(result, domain.Ban{SubjectID: id, Reason: reason})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubjectID < result[j].SubjectID })
	return result
}

// NameHasLink checks a display name against the configured link pattern.
// Disabled checks always pass.
func (s *BanService) NameHasLink(name string) bool {
	if !s.banOnLink || s.linkPattern == nil || name == "" {
		return false
	}
	return s.linkPattern.MatchString(name)
}
