package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/i474232898/airaware/internal/airquality"
)

const openMeteoGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// OpenMeteoGeocoder implements airquality.Resolver against the Open-Meteo
// geocoding API.
type OpenMeteoGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoGeocoder(cfg HTTPClientConfig) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		name:    "openmeteo-geocoding",
		baseURL: openMeteoGeocodingURL,
		httpCfg: cfg,
		circuit: newCircuitBreaker("openmeteo-geocoding"),
	}
}

// WithBaseURL points the geocoder at another endpoint, e.g. a test server.
func (p *OpenMeteoGeocoder) WithBaseURL(u string) *OpenMeteoGeocoder {
	p.baseURL = u
	return p
}

func (p *OpenMeteoGeocoder) Name() string {
	return p.name
}

type geocodingPayload struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

// Resolve asks for exactly one best match and uses it.
func (p *OpenMeteoGeocoder) Resolve(ctx context.Context, query string) (airquality.LocationResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return airquality.LocationResult{}, &airquality.NotFoundError{Query: query}
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", query)
		values.Set("count", "1")
		values.Set("language", "en")
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload geocodingPayload
	if err := getJSON(ctx, "geocoding", p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return airquality.LocationResult{}, err
	}

	if len(payload.Results) == 0 {
		return airquality.LocationResult{}, &airquality.NotFoundError{Query: query}
	}

	best := payload.Results[0]
	region := best.Country
	if region == "" {
		region = best.Admin1
	}

	return airquality.LocationResult{
		Coordinates: airquality.Coordinates{
			Latitude:  best.Latitude,
			Longitude: best.Longitude,
		},
		DisplayLabel:  displayLabel(best.Name, region),
		CanonicalName: best.Name,
	}, nil
}

func displayLabel(name, region string) string {
	if region == "" {
		return name
	}
	return name + ", " + region
}
