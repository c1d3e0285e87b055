package alert

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/notify"
)

// Config controls operator alerting.
type Config struct {
	Enabled         bool
	RecipientID     int64
	Window          time.Duration
	StartupEnabled  bool
	ShutdownEnabled bool
}

// StatsSummary is the slice of ticket statistics carried on lifecycle
// banners.
type StatsSummary struct {
	Total             int
	Active            int
	AwaitingAutoClose int
}

// Service sends throttled operational alerts to the admin recipient.
// Duplicate errors inside the window are counted, not sent; the count is
// appended once the window reopens.
type Service struct {
	throttle *Throttle
	notifier notify.Notifier
	logger   *zap.Logger
	cfg      Config
}

// NewService constructs the service.
func NewService(throttle *Throttle, notifier notify.Notifier, logger *zap.Logger, cfg Config) *Service {
	return &Service{throttle: throttle, notifier: notifier, logger: logger, cfg: cfg}
}

// ReportError routes an operational error through the throttle and sends
// an alert when one is due. Alerting failures are logged, never raised:
// the error path must not produce errors of its own.
func (s *Service) ReportError(ctx context.Context, signature string, reported error) {
	s.logger.Error("operational error",
		zap.String("signature", signature), zap.Error(reported))

	if !s.cfg.Enabled {
		return
	}

	decision := s.throttle.NotifyIfDue(signature, s.cfg.Window)
	if !decision.ShouldSend {
		s.logger.Debug("alert suppressed",
			zap.String("signature", signature),
			zap.Int("suppressed", decision.Suppressed))
		return
	}

	suppressedNote := ""
	if decision.PriorSuppressed > 0 {
		suppressedNote = fmt.Sprintf("\n(%d similar errors suppressed)", decision.PriorSuppressed)
	}
	params := map[string]string{
		"signature":  signature,
		"error":      reported.Error(),
		"suppressed": suppressedNote,
	}
	if err := s.notifier.Notify(ctx, s.cfg.RecipientID, notify.TemplateAlertError, params); err != nil {
		s.logger.Error("sending error alert failed", zap.Error(err))
	}
}

// Startup sends the startup banner when enabled.
func (s *Service) Startup(ctx context.Context, stats StatsSummary) {
	if !s.cfg.Enabled || !s.cfg.StartupEnabled {
		return
	}
	params := map[string]string{
		"total":   strconv.Itoa(stats.Total),
		"active":  strconv.Itoa(stats.Active),
		"waiting": strconv.Itoa(stats.AwaitingAutoClose),
	}
	if err := s.notifier.Notify(ctx, s.cfg.RecipientID, notify.TemplateAlertStartup, params); err != nil {
		s.logger.Error("sending startup alert failed", zap.Error(err))
	}
}

// Shutdown sends the shutdown banner when enabled.
func (s *Service) Shutdown(ctx context.Context, stats StatsSummary) {
	if !s.cfg.Enabled || !s.cfg.ShutdownEnabled {
		return
	}
	params := map[string]string{
		"total":  strconv.Itoa(stats.Total),
		"active": strconv.Itoa(stats.Active),
	}
	if err := s.notifier.Notify(ctx, s.cfg.RecipientID, notify.TemplateAlertShutdown, params); err != nil {
		s.logger.Error("sending shutdown alert failed", zap.Error(err))
	}
}

// BackupCreated announces a finished backup archive.
func (s *Service) BackupCreated(ctx context.Context, file, size string) {
	if !s.cfg.Enabled {
		return
	}
	params := map[string]string{"file": file, "size": size}
	if err := s.notifier.Notify(ctx, s.cfg.RecipientID, notify.TemplateAlertBackup, params); err != nil {
		s.logger.Error("sending backup alert failed", zap.Error(err))
	}
}
