package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/support-kit/helpdesk-bot/internal/alert"
	httptransport "github.com/support-kit/helpdesk-bot/internal/api/http"
	"github.com/support-kit/helpdesk-bot/internal/api/http/handlers"
	"github.com/support-kit/helpdesk-bot/internal/auth"
	"github.com/support-kit/helpdesk-bot/internal/backup"
	"github.com/support-kit/helpdesk-bot/internal/config"
	"github.com/support-kit/helpdesk-bot/internal/events"
	"github.com/support-kit/helpdesk-bot/internal/limiter"
	"github.com/support-kit/helpdesk-bot/internal/notify"
	"github.com/support-kit/helpdesk-bot/internal/observability"
	"github.com/support-kit/helpdesk-bot/internal/persistence"
	"github.com/support-kit/helpdesk-bot/internal/scheduler"
	"github.com/support-kit/helpdesk-bot/internal/service"
	"github.com/support-kit/helpdesk-bot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	var (
		dataStore store.Store
		pg        *persistence.Postgres
	)
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		dataStore = store.NewMemoryStore()
	case config.StoreDriverFile:
		fileStore, err := store.NewFileStore(cfg.Store.DataFile, logger)
		if err != nil {
			logger.Fatal("failed to open data file", zap.Error(err))
		}
		dataStore = fileStore
	case config.StoreDriverPostgres:
		pg, err = persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		dataStore = store.NewPostgresStore(pg.PoolHandle())
	}
	logger.Info("store ready", zap.String("driver", cfg.Store.Driver))

	var (
		cooldowns limiter.Limiter
		redisConn *persistence.Redis
	)
	if cfg.Cooldown.Driver == config.CooldownDriverRedis {
		redisConn = persistence.NewRedis(cfg.Redis, logger)
		defer redisConn.Close()
		cooldowns = limiter.NewRedisLimiter(redisConn.Client)
	} else {
		cooldowns = limiter.NewMemoryLimiter(nil)
	}

	var notifier notify.Notifier
	if cfg.Telegram.Token != "" {
		telegramNotifier, err := notify.NewTelegramNotifier(cfg.Telegram.Token, logger)
		if err != nil {
			logger.Fatal("failed to init telegram notifier", zap.Error(err))
		}
		notifier = telegramNotifier
	} else {
		logger.Warn("TELEGRAM_TOKEN not set, notifications go to the log")
		notifier = notify.NewLogNotifier(logger)
	}

	alerts := alert.NewService(alert.NewThrottle(nil), notifier, logger, alert.Config{
		Enabled:         cfg.Alert.Enabled,
		RecipientID:     cfg.Telegram.AdminChatID,
		Window:          cfg.Alert.Window,
		StartupEnabled:  cfg.Alert.StartupEnabled,
		ShutdownEnabled: cfg.Alert.ShutdownEnabled,
	})

	dispatcher := events.NewInMemoryDispatcher()

	bans, err := service.NewBanService(cfg.Ban, logger)
	if err != nil {
		logger.Fatal("failed to load ban list", zap.Error(err))
	}

	tickets := service.NewTicketService(service.TicketDependencies{
		Store:          dataStore,
		Dispatcher:     dispatcher,
		Bans:           bans,
		Logger:         logger,
		AutoCloseAfter: cfg.Ticket.AutoCloseAfter,
	})
	feedback := service.NewFeedbackService(service.FeedbackDependencies{
		Store:      dataStore,
		Limiter:    cooldowns,
		Dispatcher: dispatcher,
		Bans:       bans,
		Window:     cfg.Cooldown.FeedbackWindow,
		Logger:     logger,
	})
	stats := service.NewStatsService(dataStore, nil, cfg.Ticket.AutoCloseAfter)
	autoClose := service.NewAutoCloseService(tickets, dataStore, alerts, metrics, logger)

	notifications := service.NewNotificationService(dispatcher, notifier, alerts, cfg.Telegram.AdminChatID, logger)
	notifications.RegisterHandlers()

	sched := scheduler.New(logger, nil)
	sched.AddInterval("ticket_autoclose", cfg.Ticket.SweepInterval, true, func(ctx context.Context) error {
		_, err := autoClose.Sweep(ctx)
		return err
	})
	if cfg.Backup.Enabled {
		archiver := backup.NewArchiver(cfg.Backup, logger, nil)
		if err := sched.AddCron("backup", cfg.Backup.Cron, func(ctx context.Context) error {
			info, err := archiver.Create(ctx)
			if err != nil {
				alerts.ReportError(ctx, "backup.create", err)
				return err
			}
			alerts.BackupCreated(ctx, info.Path, backup.FormatSize(info.SizeBytes))
			if _, err := archiver.CleanupOld(); err != nil {
				alerts.ReportError(ctx, "backup.cleanup", err)
			}
			return nil
		}); err != nil {
			logger.Fatal("failed to register backup job", zap.Error(err))
		}
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisConn),
		Auth:           handlers.NewAuthHandler(tokens, cfg.Auth.AdminPasswordHash),
		Tickets:        handlers.NewTicketsHandler(tickets, cfg.Ticket.AskMinLength),
		Admin:          handlers.NewAdminHandler(tickets, stats, sched),
		Feedback:       handlers.NewFeedbackHandler(feedback),
		Bans:           handlers.NewBansHandler(bans),
		AuthMiddleware: authMiddleware,
	})

	if snapshot, err := stats.Collect(ctx); err == nil {
		alerts.Startup(ctx, snapshot.Summary())
	} else {
		logger.Warn("collecting startup stats failed", zap.Error(err))
	}

	go sched.Run(ctx)
	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("helpdesk service started",
		zap.String("addr", cfg.App.Addr()),
		zap.Duration("auto_close_after", cfg.Ticket.AutoCloseAfter),
		zap.Duration("sweep_interval", cfg.Ticket.SweepInterval))

	waitForShutdown(logger)

	if snapshot, err := stats.Collect(ctx); err == nil {
		alerts.Shutdown(ctx, snapshot.Summary())
	}
	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
