package providers

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/airaware/internal/airquality"
	"github.com/i474232898/airaware/internal/common"
	"github.com/i474232898/airaware/internal/metrics"
)

// The geocoder package keeps its API key in a package variable, so calls are
// serialised. Its HTTP client has no timeout: a hung call holds googleMu and
// stalls every later resolve until it returns, even though each caller gives
// up after its own timeout.
var googleMu sync.Mutex

// GoogleGeocoder implements airquality.Resolver with the Google Geocoding API.
type GoogleGeocoder struct {
	name    string
	apiKey  string
	timeout time.Duration
	metrics *metrics.Metrics

	geocode func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

func NewGoogleGeocoder(apiKey string, timeout time.Duration, m *metrics.Metrics) *GoogleGeocoder {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &GoogleGeocoder{
		name:    "google-geocoding",
		apiKey:  apiKey,
		timeout: timeout,
		metrics: m,
		geocode: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}
}

func (p *GoogleGeocoder) Name() string {
	return p.name
}

type googleResult struct {
	loc   geocoder.Location
	addrs []geocoder.Address
	err   error
}

// Resolve geocodes the query as a city name, then reverse-geocodes the match to
// obtain the canonical city and country for the display label.
func (p *GoogleGeocoder) Resolve(ctx context.Context, query string) (airquality.LocationResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return airquality.LocationResult{}, &airquality.NotFoundError{Query: query}
	}
	if p.apiKey == "" {
		return airquality.LocationResult{}, &airquality.TransportError{
			Op:  "geocoding",
			Err: errors.New("google geocoder api key is not configured"),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan googleResult, 1)
	go func() {
		googleMu.Lock()
		defer googleMu.Unlock()
		geocoder.ApiKey = p.apiKey

		loc, err := p.geocode(geocoder.Address{City: query})
		if err != nil {
			done <- googleResult{err: err}
			return
		}
		addrs, err := p.reverse(loc)
		if err != nil {
			slog.Debug("google reverse geocoding failed, labelling with query", "query", query, "error", err)
		}
		done <- googleResult{loc: loc, addrs: addrs}
	}()

	var res googleResult
	select {
	case <-ctx.Done():
		p.metrics.ObserveUpstream("geocoding", "transport_error", time.Since(start))
		return airquality.LocationResult{}, &airquality.TransportError{Op: "geocoding", Err: ctx.Err()}
	case res = <-done:
	}

	if res.err != nil {
		if isZeroResults(res.err) {
			p.metrics.ObserveUpstream("geocoding", "not_found", time.Since(start))
			return airquality.LocationResult{}, &airquality.NotFoundError{Query: query}
		}
		p.metrics.ObserveUpstream("geocoding", "transport_error", time.Since(start))
		return airquality.LocationResult{}, &airquality.TransportError{Op: "geocoding", Err: res.err}
	}
	p.metrics.ObserveUpstream("geocoding", "ok", time.Since(start))

	name, region := query, ""
	if len(res.addrs) > 0 {
		if res.addrs[0].City != "" {
			name = res.addrs[0].City
		}
		region = res.addrs[0].Country
	}

	return airquality.LocationResult{
		Coordinates: airquality.Coordinates{
			Latitude:  res.loc.Latitude,
			Longitude: res.loc.Longitude,
		},
		DisplayLabel:  displayLabel(name, region),
		CanonicalName: name,
	}, nil
}

func isZeroResults(err error) bool {
	return common.HasAny(strings.ToLower(err.Error()), "zero_results", "no results")
}
