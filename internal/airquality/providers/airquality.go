package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sony/gobreaker"

	"github.com/i474232898/airaware/internal/airquality"
)

const openMeteoAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"

// OpenMeteoAirQuality implements airquality.Fetcher against the Open-Meteo
// air-quality API.
type OpenMeteoAirQuality struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoAirQuality(cfg HTTPClientConfig) *OpenMeteoAirQuality {
	return &OpenMeteoAirQuality{
		name:    "openmeteo-air-quality",
		baseURL: openMeteoAirQualityURL,
		httpCfg: cfg,
		circuit: newCircuitBreaker("openmeteo-air-quality"),
	}
}

// WithBaseURL points the fetcher at another endpoint, e.g. a test server.
func (p *OpenMeteoAirQuality) WithBaseURL(u string) *OpenMeteoAirQuality {
	p.baseURL = u
	return p
}

func (p *OpenMeteoAirQuality) Name() string {
	return p.name
}

type airQualityPayload struct {
	Current *struct {
		USAQI *float64 `json:"us_aqi"`
		PM10  *float64 `json:"pm10"`
		PM2_5 *float64 `json:"pm2_5"`
	} `json:"current"`
}

func (p *OpenMeteoAirQuality) FetchCurrent(ctx context.Context, coords airquality.Coordinates) (airquality.AirReading, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
		values.Set("current", "us_aqi,pm10,pm2_5")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload airQualityPayload
	if err := getJSON(ctx, "air_quality", p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return airquality.AirReading{}, err
	}

	reading, err := payload.reading()
	if err != nil {
		return airquality.AirReading{}, &airquality.TransportError{Op: "air_quality", Err: err}
	}
	return reading, nil
}

func (p airQualityPayload) reading() (airquality.AirReading, error) {
	if p.Current == nil {
		return airquality.AirReading{}, fmt.Errorf("%w: missing current block", errMalformed)
	}
	if p.Current.USAQI == nil {
		return airquality.AirReading{}, fmt.Errorf("%w: missing us_aqi", errMalformed)
	}

	r := airquality.AirReading{AQI: int(math.Round(*p.Current.USAQI))}
	if p.Current.PM10 != nil {
		r.PM10 = *p.Current.PM10
	}
	if p.Current.PM2_5 != nil {
		r.PM2_5 = *p.Current.PM2_5
	}

	if r.AQI < 0 || r.PM10 < 0 || r.PM2_5 < 0 {
		return airquality.AirReading{}, fmt.Errorf("%w: negative reading", errMalformed)
	}
	return r, nil
}
