package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/airaware/internal/airquality/providers"
	"github.com/i474232898/airaware/internal/config"
	"github.com/i474232898/airaware/internal/session"
	"github.com/i474232898/airaware/internal/store"
)

func baseConfig() *config.AppConfig {
	return &config.AppConfig{
		DefaultCity:      "London",
		FetchTimeout:     time.Second,
		StoreDriver:      "memory",
		GeocoderProvider: "openmeteo",
		Listen:           "127.0.0.1:0",
		DailyResetAt:     "00:00",
	}
}

func TestNewWiresDefaults(t *testing.T) {
	a, err := New(context.Background(), baseConfig(), Overrides{})
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &store.MemoryStore{}, a.Store)
	assert.IsType(t, &providers.OpenMeteoGeocoder{}, a.Resolver)
	assert.IsType(t, &providers.OpenMeteoAirQuality{}, a.RankingFetcher)
	assert.NotSame(t, a.Fetcher, a.RankingFetcher, "ranking has its own breaker")
	assert.NotNil(t, a.Orchestrator)
	assert.Equal(t, session.DefaultCategory, a.Orchestrator.Session().Category)
}

func TestNewFileStoreAtConfiguredPath(t *testing.T) {
	cfg := baseConfig()
	cfg.StoreDriver = "file"
	cfg.StorePath = filepath.Join(t.TempDir(), "state")

	a, err := New(context.Background(), cfg, Overrides{})
	require.NoError(t, err)
	defer a.Close()
	assert.IsType(t, &store.FileStore{}, a.Store)
}

func TestNewSelectsGoogleGeocoder(t *testing.T) {
	cfg := baseConfig()
	cfg.GeocoderProvider = "google"
	cfg.GoogleAPIKey = "key"

	a, err := New(context.Background(), cfg, Overrides{})
	require.NoError(t, err)
	defer a.Close()
	assert.IsType(t, &providers.GoogleGeocoder{}, a.Resolver)
	assert.IsType(t, &providers.OpenMeteoAirQuality{}, a.Fetcher)
}

func TestLoadSessionAppliesDailyReset(t *testing.T) {
	st := store.NewMemoryStore(0)
	require.NoError(t, st.Save(context.Background(), session.StorageKey,
		[]byte(`{"completedExercises":["wl1"],"lastVisitDate":"2000-01-01","category":"yoga"}`)))

	a, err := New(context.Background(), baseConfig(), Overrides{Store: st})
	require.NoError(t, err)

	a.LoadSession(context.Background())
	s := a.Orchestrator.Session()
	assert.Equal(t, "yoga", s.Category)
	assert.Empty(t, s.Completed)
	assert.NotEqual(t, "2000-01-01", s.LastVisitDate)
}

func TestStoreOptionsDefaultsPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg := baseConfig()
	cfg.StoreDriver = "sqlite"
	opts, err := storeOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, "airaware.db", filepath.Base(opts.Path))

	cfg.StoreDriver = "memory"
	opts, err = storeOptions(cfg)
	require.NoError(t, err)
	assert.Empty(t, opts.Path)
}
