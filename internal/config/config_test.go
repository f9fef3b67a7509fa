package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/airaware/internal/airquality"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "London", cfg.DefaultCity)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Zero(t, cfg.MaxRetries)
	assert.Equal(t, "file", cfg.StoreDriver)
	assert.Equal(t, "openmeteo", cfg.GeocoderProvider)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "00:00", cfg.DailyResetAt)
	assert.Nil(t, cfg.Geolocation)
	require.Len(t, cfg.RankingCities, 8)
	assert.Equal(t, "New York", cfg.RankingCities[0].Name)
	assert.Equal(t, "Los Angeles", cfg.RankingCities[7].Name)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AIRAWARE_DEFAULT_CITY", "Paris")
	t.Setenv("AIRAWARE_FETCH_TIMEOUT", "3s")
	t.Setenv("AIRAWARE_MAX_RETRIES", "2")
	t.Setenv("AIRAWARE_STORE_DRIVER", "memory")
	t.Setenv("AIRAWARE_GEOLOCATION", "48.85,2.35")
	t.Setenv("AIRAWARE_RANKING_CITIES", "Oslo:59.91:10.75")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Paris", cfg.DefaultCity)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.Equal(t, "memory", cfg.StoreDriver)
	require.NotNil(t, cfg.Geolocation)
	assert.Equal(t, airquality.Coordinates{Latitude: 48.85, Longitude: 2.35}, *cfg.Geolocation)
	assert.Equal(t, []airquality.City{{Name: "Oslo", Coordinates: airquality.Coordinates{Latitude: 59.91, Longitude: 10.75}}}, cfg.RankingCities)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "airaware.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_city: Tokyo\nstore_driver: sqlite\nstore_path: /tmp/aa.db\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", cfg.DefaultCity)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, "/tmp/aa.db", cfg.StorePath)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad timeout":       {"AIRAWARE_FETCH_TIMEOUT": "soon"},
		"bad reset time":    {"AIRAWARE_DAILY_RESET_AT": "midnight"},
		"unknown driver":    {"AIRAWARE_STORE_DRIVER": "redis"},
		"postgres no url":   {"AIRAWARE_STORE_DRIVER": "postgres"},
		"google no key":     {"AIRAWARE_GEOCODER_PROVIDER": "google"},
		"latitude range":    {"AIRAWARE_GEOLOCATION": "95,10"},
		"bad ranking entry": {"AIRAWARE_RANKING_CITIES": "Oslo"},
		"negative retries":  {"AIRAWARE_MAX_RETRIES": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRankingCities(t *testing.T) {
	cities, err := ParseRankingCities(" Delhi:28.61:77.20 , Sydney:-33.86:151.20")
	require.NoError(t, err)
	require.Len(t, cities, 2)
	assert.Equal(t, "Delhi", cities[0].Name)
	assert.Equal(t, -33.86, cities[1].Coordinates.Latitude)

	cities, err = ParseRankingCities("")
	require.NoError(t, err)
	assert.Empty(t, cities)

	_, err = ParseRankingCities("Nowhere:abc:1")
	assert.Error(t, err)
}
