package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"truthtracker/internal/auth"
	"truthtracker/internal/config"
	"truthtracker/internal/infrastructure/fetcher"
	"truthtracker/internal/infrastructure/llm"
	"truthtracker/internal/infrastructure/scheduler"
	"truthtracker/internal/infrastructure/storage"
	"truthtracker/internal/infrastructure/telegram"
	"truthtracker/internal/infrastructure/webserver"
	"truthtracker/internal/logging"
	"truthtracker/internal/ports"
	"truthtracker/internal/source"
	"truthtracker/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *storage.Mongo
	server    *webserver.Server
	scheduler *usecase.Scheduler
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	registry := source.NewRegistry()
	registry.Register(fetcher.NewFeedFetcher(nil, cfg.Sync.RelayEndpoint, cfg.AllowedHosts))
	registry.Register(fetcher.NewAPIFetcher(nil))
	registry.Register(fetcher.NewScrapeFetcher(nil))

	promiseSource := fetcher.NewMultiSource(
		registry,
		cfg.PromiseSources,
		cfg.Sync.SourceDelay.Std(),
		logging.Component(baseLogger, "source.promises"),
	)
	incidentSource := fetcher.NewIncidentSource(
		nil,
		cfg.IncidentSources,
		cfg.Sync.RelayEndpoint,
		cfg.AllowedHosts,
		cfg.Sync.PerSourceCap,
		2*cfg.Sync.SourceDelay.Std(),
		logging.Component(baseLogger, "source.incidents"),
	)

	completion := llm.NewOpenAIClient(cfg.OpenAI)

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	promiseSync := usecase.NewPromiseSync(usecase.PromiseSyncDeps{
		Source:       promiseSource,
		Extractor:    llm.NewExtractor(completion, logging.Component(baseLogger, "llm.extractor")),
		Dedup:        llm.NewDedup(completion, cfg.Sync.CompareLimit, logging.Component(baseLogger, "llm.dedup")),
		Promises:     store.Promises(),
		Logs:         store.SyncLogs(),
		Notifier:     notifier,
		HistoryLimit: cfg.Sync.HistoryLimit,
		ModelDelay:   cfg.Sync.ModelDelay.Std(),
		Logger:       logging.Component(baseLogger, "sync.promises"),
	})

	incidentSync := usecase.NewIncidentSync(usecase.IncidentSyncDeps{
		Source:    incidentSource,
		Incidents: store.Incidents(),
		Logs:      store.SyncLogs(),
		Notifier:  notifier,
		Logger:    logging.Component(baseLogger, "sync.incidents"),
	})

	server := webserver.New(webserver.Deps{
		PromiseSync:  promiseSync,
		IncidentSync: incidentSync,
		Incidents:    store.Incidents(),
		Logs:         store.SyncLogs(),
		Policy:       auth.NewTokenPolicy(cfg.AdminTokens),
		AllowedHosts: cfg.AllowedHosts,
		RelayPath:    cfg.Server.RelayPath,
		Logger:       logging.Component(baseLogger, "webserver"),
	})

	var sched *usecase.Scheduler
	if cfg.Scheduler.Enabled {
		driver := scheduler.NewTickerScheduler(cfg.Scheduler.Interval.Std())
		sched = usecase.NewScheduler(driver, promiseSync, incidentSync, logging.Component(baseLogger, "scheduler"))
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		store:     store,
		server:    server,
		scheduler: sched,
	}, nil
}

// Run starts the background scheduler (when enabled) and serves HTTP until
// the context is cancelled or the listener fails.
func (a *Application) Run(ctx context.Context) error {
	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Run(a.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return a.shutdown()
	}
}

func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.scheduler != nil {
		_ = a.scheduler.Stop(shutdownCtx)
	}
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	if err := a.store.Close(shutdownCtx); err != nil {
		return fmt.Errorf("close storage: %w", err)
	}
	return nil
}
