package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/airaware/internal/airquality"
)

// EnvPrefix namespaces every environment override, e.g. AIRAWARE_DEFAULT_CITY.
const EnvPrefix = "AIRAWARE"

// DefaultRankingCities is the fixed comparison set shown on the rankings board.
const DefaultRankingCities = "New York:40.71:-74.00,London:51.50:-0.12,Beijing:39.90:116.40," +
	"Delhi:28.61:77.20,Tokyo:35.68:139.69,Paris:48.85:2.35," +
	"Dubai:25.20:55.27,Los Angeles:34.05:-118.24"

type AppConfig struct {
	DefaultCity   string            `validate:"required"`
	RankingCities []airquality.City `validate:"dive"`

	// Outbound request budget. MaxRetries 0 means a single attempt.
	FetchTimeout time.Duration `validate:"gt=0"`
	MaxRetries   int           `validate:"gte=0,lte=5"`

	StoreDriver string `validate:"oneof=file sqlite postgres memory"`
	StorePath   string
	DatabaseURL string `validate:"required_if=StoreDriver postgres"`

	GeocoderProvider string `validate:"oneof=openmeteo google"`
	GoogleAPIKey     string `validate:"required_if=GeocoderProvider google"`

	Listen       string `validate:"required,hostname_port"`
	DailyResetAt string `validate:"required"`
	Debug        bool

	// Geolocation is the fixed device position, nil when unavailable.
	Geolocation *airquality.Coordinates
}

var validate = validator.New()

// Load reads configuration from .env, an optional config file and AIRAWARE_*
// environment variables, in increasing precedence. cfgFile may be empty.
func Load(cfgFile string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_city", "London")
	v.SetDefault("ranking_cities", DefaultRankingCities)
	v.SetDefault("fetch_timeout", "10s")
	v.SetDefault("max_retries", 0)
	v.SetDefault("store_driver", "file")
	v.SetDefault("store_path", "")
	v.SetDefault("database_url", "")
	v.SetDefault("geocoder_provider", "openmeteo")
	v.SetDefault("google_api_key", "")
	v.SetDefault("listen", "127.0.0.1:8080")
	v.SetDefault("daily_reset_at", "00:00")
	v.SetDefault("debug", false)
	v.SetDefault("geolocation", "")
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		DefaultCity:      strings.TrimSpace(v.GetString("default_city")),
		MaxRetries:       v.GetInt("max_retries"),
		StoreDriver:      strings.ToLower(v.GetString("store_driver")),
		StorePath:        v.GetString("store_path"),
		DatabaseURL:      v.GetString("database_url"),
		GeocoderProvider: strings.ToLower(v.GetString("geocoder_provider")),
		GoogleAPIKey:     v.GetString("google_api_key"),
		Listen:           v.GetString("listen"),
		DailyResetAt:     v.GetString("daily_reset_at"),
		Debug:            v.GetBool("debug"),
	}

	timeout, err := time.ParseDuration(v.GetString("fetch_timeout"))
	if err != nil {
		return nil, fmt.Errorf("invalid fetch_timeout: %w", err)
	}
	cfg.FetchTimeout = timeout

	if _, err := time.Parse("15:04", cfg.DailyResetAt); err != nil {
		return nil, fmt.Errorf("invalid daily_reset_at %q: want HH:MM", cfg.DailyResetAt)
	}

	cities, err := ParseRankingCities(v.GetString("ranking_cities"))
	if err != nil {
		return nil, err
	}
	cfg.RankingCities = cities

	if raw := strings.TrimSpace(v.GetString("geolocation")); raw != "" {
		lat, lon, err := parseLatLon(raw, ",")
		if err != nil {
			return nil, fmt.Errorf("invalid geolocation: %w", err)
		}
		cfg.Geolocation = &airquality.Coordinates{Latitude: lat, Longitude: lon}
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ParseRankingCities parses "Name:lat:lon,Name:lat:lon". An empty string
// yields no cities.
func ParseRankingCities(s string) ([]airquality.City, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var cities []airquality.City
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		name, coords, ok := strings.Cut(entry, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid ranking city %q: want Name:lat:lon", entry)
		}
		lat, lon, err := parseLatLon(coords, ":")
		if err != nil {
			return nil, fmt.Errorf("invalid ranking city %q: %w", entry, err)
		}
		cities = append(cities, airquality.City{
			Name:        strings.TrimSpace(name),
			Coordinates: airquality.Coordinates{Latitude: lat, Longitude: lon},
		})
	}
	return cities, nil
}

func parseLatLon(s, sep string) (float64, float64, error) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want lat%slon, got %q", sep, s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude: %w", err)
	}
	c := airquality.Coordinates{Latitude: lat, Longitude: lon}
	if err := validate.Struct(c); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
