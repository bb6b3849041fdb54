// cmd/digest/wiring.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"tariff_digest/internal/app"
	"tariff_digest/internal/domain/calendar"
	"tariff_digest/internal/domain/report"
	"tariff_digest/internal/infra/config"
	idb "tariff_digest/internal/infra/database"
	"tariff_digest/internal/infra/holidays"
	"tariff_digest/internal/infra/logger"
	"tariff_digest/internal/infra/page"
	"tariff_digest/internal/infra/source"
	"tariff_digest/internal/infra/telegram"
)

// application holds the wired components of one process invocation.
type application struct {
	cfg        *config.AppConfig
	logger     *logrus.Entry
	db         *sql.DB
	repo       report.Repository
	calendar   *calendar.Calendar
	rebuild    *app.RebuildService
	backfill   *app.BackfillService
	dispatcher *app.Dispatcher
}

func (a *application) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

func setup(ctx context.Context) (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("could not load application configuration: %w", err)
	}
	log := logger.Init(cfg)
	log.WithFields(logrus.Fields{
		"timezone": cfg.Location.String(),
		"driver":   cfg.DatabaseDriver,
		"output":   cfg.OutputDir,
	}).Info("Configuration loaded")

	cal, err := holidays.Load(cfg.HolidaysFile, cfg.HolidayJurisdiction)
	if err != nil {
		return nil, err
	}
	from, to := cal.YearRange()
	log.Infof("Holiday calendar %q loaded for %d..%d", cal.Jurisdiction(), from, to)

	db, dialect, err := idb.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	if err := idb.Migrate(ctx, db, dialect); err != nil {
		db.Close()
		return nil, err
	}
	repo := idb.NewReportRepository(db, dialect)

	httpCfg := source.HTTPConfig{
		Client:    &http.Client{Timeout: cfg.FetchTimeout},
		UserAgent: cfg.UserAgent,
		Query:     cfg.SourceQuery,
	}
	var fetchers []source.Fetcher
	for _, u := range cfg.SourceFeeds {
		fetchers = append(fetchers, source.NewFeedFetcher(u, httpCfg))
	}
	for _, p := range cfg.SourcePages {
		fetchers = append(fetchers, source.NewPageFetcher(p.URL, p.Selector, httpCfg))
	}
	if len(fetchers) == 0 {
		log.Warn("No SOURCE_FEEDS or SOURCE_PAGES configured, reports will be empty")
	}
	renderer := page.NewRenderer(source.NewMultiFetcher(log, fetchers...), cfg.OutputDir, cfg.SiteTitle, log)

	resolver := app.NewWindowResolver(cal, cfg.Location, cfg.MaxLookbackDays)
	rebuild := app.NewRebuildService(repo, resolver, renderer, log)

	opts := []app.DispatcherOption{app.WithForcedDate(cfg.ForcedReportDate)}
	if cfg.BusinessDaysOnly {
		opts = append(opts, app.WithBusinessDaysOnly(cal))
	}

	return &application{
		cfg:        cfg,
		logger:     log,
		db:         db,
		repo:       repo,
		calendar:   cal,
		rebuild:    rebuild,
		backfill:   app.NewBackfillService(rebuild, log),
		dispatcher: app.NewDispatcher(rebuild, cfg.Location, newNotifierFactory(cfg, log), log, opts...),
	}, nil
}

// newNotifierFactory defers reading Telegram credentials until a report has
// actually been built by the default flow.
func newNotifierFactory(cfg *config.AppConfig, log *logrus.Entry) app.NotifierFactory {
	return func() (app.Notifier, error) {
		token, chatID, err := cfg.TelegramCredentials()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", report.ErrNotification, err)
		}
		client, err := telegram.NewTelebotAdapter(token)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", report.ErrNotification, err)
		}
		return app.NewNotificationService(client, chatID, cfg.PageBaseURL, cfg.SiteTitle, log), nil
	}
}
