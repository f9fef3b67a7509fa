package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/airaware/internal/airquality"
	"github.com/i474232898/airaware/internal/airquality/providers"
	"github.com/i474232898/airaware/internal/config"
	"github.com/i474232898/airaware/internal/metrics"
	"github.com/i474232898/airaware/internal/pipeline"
	"github.com/i474232898/airaware/internal/session"
	"github.com/i474232898/airaware/internal/store"
)

// App holds the wired components shared by every command.
type App struct {
	Config   *config.AppConfig
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Store    store.Backend
	Resolver airquality.Resolver
	Fetcher  airquality.Fetcher

	// RankingFetcher has its own circuit breaker, separate from Fetcher.
	RankingFetcher airquality.Fetcher

	Session      *session.Manager
	Orchestrator *pipeline.Orchestrator
}

// Overrides replaces individual components, mainly for tests.
type Overrides struct {
	Store    store.Backend
	Resolver airquality.Resolver
	Fetcher  airquality.Fetcher
}

// New builds the component graph from cfg.
func New(ctx context.Context, cfg *config.AppConfig, ov Overrides) (*App, error) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	backend := ov.Store
	if backend == nil {
		opts, err := storeOptions(cfg)
		if err != nil {
			return nil, err
		}
		backend, err = store.Open(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", opts.Driver, err)
		}
	}

	httpCfg := providers.NewHTTPConfig(&http.Client{}, cfg.FetchTimeout, cfg.MaxRetries, m)

	resolver := ov.Resolver
	if resolver == nil {
		switch cfg.GeocoderProvider {
		case "google":
			resolver = providers.NewGoogleGeocoder(cfg.GoogleAPIKey, cfg.FetchTimeout, m)
		default:
			resolver = providers.NewOpenMeteoGeocoder(httpCfg)
		}
	}
	fetcher := ov.Fetcher
	rankingFetcher := ov.Fetcher
	if fetcher == nil {
		fetcher = providers.NewOpenMeteoAirQuality(httpCfg)
		rankingFetcher = providers.NewOpenMeteoAirQuality(httpCfg)
	}

	sess := session.NewManager(backend, nil, m)

	var geo pipeline.Geolocator
	if cfg.Geolocation != nil {
		geo = pipeline.StaticGeolocator(*cfg.Geolocation)
	}

	orch := pipeline.New(resolver, fetcher, sess, pipeline.Options{
		DefaultCity:    cfg.DefaultCity,
		Geolocator:     geo,
		RankingCities:  cfg.RankingCities,
		RankingFetcher: rankingFetcher,
		Metrics:        m,
	})

	slog.Debug("components wired",
		"store", cfg.StoreDriver,
		"resolver", resolver.Name(),
		"fetcher", fetcher.Name(),
	)

	return &App{
		Config:         cfg,
		Registry:       reg,
		Metrics:        m,
		Store:          backend,
		Resolver:       resolver,
		Fetcher:        fetcher,
		RankingFetcher: rankingFetcher,
		Session:        sess,
		Orchestrator:   orch,
	}, nil
}

// LoadSession reads the persisted session and applies the daily reset,
// without touching the network. Failures are logged and defaults stand.
func (a *App) LoadSession(ctx context.Context) {
	if _, err := a.Session.Load(ctx); err != nil {
		slog.Warn("continuing with default session", "error", err)
	}
	if _, err := a.Orchestrator.CheckDailyReset(ctx); err != nil {
		slog.Warn("daily reset not persisted", "error", err)
	}
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

func storeOptions(cfg *config.AppConfig) (store.Options, error) {
	opts := store.Options{
		Driver:      cfg.StoreDriver,
		Path:        cfg.StorePath,
		DatabaseURL: cfg.DatabaseURL,
	}
	if opts.Path != "" || (opts.Driver != "file" && opts.Driver != "sqlite" && opts.Driver != "") {
		return opts, nil
	}

	dir, err := DefaultStateDir()
	if err != nil {
		return opts, err
	}
	opts.Path = dir
	if opts.Driver == "sqlite" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return opts, fmt.Errorf("create state dir: %w", err)
		}
		opts.Path = filepath.Join(dir, "airaware.db")
	}
	return opts, nil
}

// DefaultStateDir is where session state lives when no path is configured.
func DefaultStateDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(base, "airaware"), nil
}
