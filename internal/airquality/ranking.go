package airquality

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/airaware/internal/metrics"
)

// Aggregator ranks a set of cities by their current AQI.
type Aggregator struct {
	fetcher Fetcher
	metrics *metrics.Metrics
}

// NewAggregator creates an Aggregator. m may be nil.
func NewAggregator(fetcher Fetcher, m *metrics.Metrics) *Aggregator {
	return &Aggregator{fetcher: fetcher, metrics: m}
}

// Rank fetches every city concurrently and returns them most polluted first.
// Cities with equal AQI keep their input order. If any fetch fails the whole
// batch fails with an *AggregationError. Every call performs fresh fetches.
func (a *Aggregator) Rank(ctx context.Context, cities []City) ([]RankedCityEntry, error) {
	start := time.Now()

	var (
		wg       sync.WaitGroup
		readings = make([]AirReading, len(cities))
		errs     = make([]error, len(cities))
	)

	for i, c := range cities {
		wg.Add(1)
		go func() {
			defer wg.Done()
			readings[i], errs[i] = a.fetcher.FetchCurrent(ctx, c.Coordinates)
		}()
	}
	wg.Wait()

	var failures []CityFailure
	for i, err := range errs {
		if err != nil {
			slog.Warn("ranking fetch failed", "city", cities[i].Name, "error", err)
			failures = append(failures, CityFailure{City: cities[i].Name, Err: err})
		}
	}
	if len(failures) > 0 {
		a.metrics.ObserveRanking("failed", time.Since(start))
		return nil, &AggregationError{Failures: failures}
	}

	ranked := make([]RankedCityEntry, len(cities))
	for i, c := range cities {
		ranked[i] = RankedCityEntry{
			Name: c.Name,
			AQI:  readings[i].AQI,
			Tier: Classify(readings[i].AQI),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].AQI > ranked[j].AQI
	})

	a.metrics.ObserveRanking("ok", time.Since(start))
	slog.Debug("ranking completed", "cities", len(ranked), "elapsed", time.Since(start))
	return ranked, nil
}
