package backup

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/config"
)

// Info describes a finished backup archive.
type Info struct {
	Path      string
	SizeBytes int64
	Files     int
	CreatedAt time.Time
}

// Archiver snapshots the data directory into tar.gz archives and prunes
// archives older than the retention window. The backup directory itself
// is excluded from the snapshot.
type Archiver struct {
	cfg    config.BackupConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewArchiver constructs the archiver. now may be nil for time.Now.
func NewArchiver(cfg config.BackupConfig, logger *zap.Logger, now func() time.Time) *Archiver {
	if now == nil {
		now = time.Now
	}
	return &Archiver{cfg: cfg, logger: logger, now: now}
}

// Create writes a new archive of the source directory.
func (a *Archiver) Create(ctx context.Context) (Info, error) {
	now := a.now()
	name := a.cfg.FilePrefix + now.Format("20060102_150405") + ".tar.gz"
	if err := os.MkdirAll(a.cfg.Dir, 0o755); err != nil {
		return Info{}, err
	}
	archivePath := filepath.Join(a.cfg.Dir, name)

	f, err := os.Create(archivePath)
	if err != nil {
		return Info{}, err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	files := 0
	backupDir, _ := filepath.Abs(a.cfg.Dir)
	walkErr := filepath.Walk(a.cfg.SourceDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		abs, _ := filepath.Abs(path)
		if fi.IsDir() {
			if abs == backupDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".tmp") {
			return nil
		}

		rel, err := filepath.Rel(a.cfg.SourceDir, path)
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(fi, "")
		if err != nil {
			return err
		}
		header.Name = rel
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, src)
		src.Close()
		if err != nil {
			return err
		}
		files++
		return nil
	})

	if err := tw.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := gz.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := f.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		os.Remove(archivePath)
		return Info{}, fmt.Errorf("create backup: %w", walkErr)
	}

	stat, err := os.Stat(archivePath)
	if err != nil {
		return Info{}, err
	}
	info := Info{Path: archivePath, SizeBytes: stat.Size(), Files: files, CreatedAt: now}
	a.logger.Info("backup created",
		zap.String("path", info.Path),
		zap.Int("files", info.Files),
		zap.Int64("size_bytes", info.SizeBytes))
	return info, nil
}

// CleanupOld removes archives older than the retention window and
// returns how many were deleted.
func (a *Archiver) CleanupOld() (int, error) {
	entries, err := os.ReadDir(a.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := a.now().AddDate(0, 0, -a.cfg.RetentionDays)
	removed := 0
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), a.cfg.FilePrefix) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(a.cfg.Dir, name)
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		if fi.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				a.logger.Warn("removing old backup failed",
					zap.String("path", path), zap.Error(err))
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		a.logger.Info("old backups removed", zap.Int("count", removed))
	}
	return removed, nil
}

// FormatSize renders a byte count the way the alert banner shows it.
func FormatSize(bytes int64) string {
	switch {
	case bytes < 1024:
		return fmt.Sprintf("%dB", bytes)
	case bytes < 1024*1024:
		return fmt.Sprintf("%.2fKB", float64(bytes)/1024)
	default:
		return fmt.Sprintf("%.2fMB", float64(bytes)/(1024*1024))
	}
}
