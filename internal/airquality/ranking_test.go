package airquality

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	byLat map[float64]int
	fail  map[float64]error
	delay time.Duration

	mu       sync.Mutex
	inFlight int
	peak     int
	calls    atomic.Int32
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) FetchCurrent(ctx context.Context, c Coordinates) (AirReading, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err := f.fail[c.Latitude]; err != nil {
		return AirReading{}, err
	}
	return AirReading{AQI: f.byLat[c.Latitude]}, nil
}

func cities(n int) []City {
	out := make([]City, n)
	for i := range out {
		out[i] = City{Name: string(rune('A' + i)), Coordinates: Coordinates{Latitude: float64(i)}}
	}
	return out
}

func TestRankWorstFirst(t *testing.T) {
	f := &fakeFetcher{byLat: map[float64]int{0: 42, 1: 180, 2: 90}}
	ranked, err := NewAggregator(f, nil).Rank(context.Background(), cities(3))
	require.NoError(t, err)

	require.Len(t, ranked, 3)
	assert.Equal(t, []int{180, 90, 42}, []int{ranked[0].AQI, ranked[1].AQI, ranked[2].AQI})
	assert.Equal(t, []Tier{TierUnhealthy, TierModerate, TierGood}, []Tier{ranked[0].Tier, ranked[1].Tier, ranked[2].Tier})
	assert.Equal(t, []string{"B", "C", "A"}, []string{ranked[0].Name, ranked[1].Name, ranked[2].Name})
}

func TestRankIsStableOnTies(t *testing.T) {
	f := &fakeFetcher{byLat: map[float64]int{0: 60, 1: 90, 2: 60, 3: 60, 4: 10}}
	ranked, err := NewAggregator(f, nil).Rank(context.Background(), cities(5))
	require.NoError(t, err)

	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"B", "A", "C", "D", "E"}, names)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].AQI, ranked[i].AQI)
	}
}

func TestRankFetchesConcurrently(t *testing.T) {
	f := &fakeFetcher{byLat: map[float64]int{}, delay: 50 * time.Millisecond}
	_, err := NewAggregator(f, nil).Rank(context.Background(), cities(8))
	require.NoError(t, err)
	assert.Equal(t, 8, f.peak)
}

func TestRankFailsAtomically(t *testing.T) {
	boom := &TransportError{Op: "air_quality", Err: errors.New("boom")}
	f := &fakeFetcher{
		byLat: map[float64]int{0: 1, 2: 3},
		fail:  map[float64]error{1: boom, 3: boom},
	}
	ranked, err := NewAggregator(f, nil).Rank(context.Background(), cities(4))
	assert.Nil(t, ranked)

	var agg *AggregationError
	require.ErrorAs(t, err, &agg)
	require.Len(t, agg.Failures, 2)
	assert.Equal(t, "B", agg.Failures[0].City)
	assert.Equal(t, "D", agg.Failures[1].City)

	var te *TransportError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, int32(4), f.calls.Load(), "every fetch is awaited")
}

func TestRankDoesNotCache(t *testing.T) {
	f := &fakeFetcher{byLat: map[float64]int{0: 5}}
	a := NewAggregator(f, nil)
	_, _ = a.Rank(context.Background(), cities(1))
	_, _ = a.Rank(context.Background(), cities(1))
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestRankEmpty(t *testing.T) {
	ranked, err := NewAggregator(&fakeFetcher{}, nil).Rank(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, ranked)
}
