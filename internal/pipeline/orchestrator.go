package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/airaware/internal/airquality"
	"github.com/i474232898/airaware/internal/clock"
	"github.com/i474232898/airaware/internal/metrics"
	"github.com/i474232898/airaware/internal/session"
)

// DeviceLocationLabel labels readings taken at the device position.
const DeviceLocationLabel = "Your Location"

// DefaultCity is used when geolocation is unavailable or fails.
const DefaultCity = "London"

// Report is the committed result of a successful request, ready for display.
type Report struct {
	RequestID     string                 `json:"requestId"`
	Label         string                 `json:"label"`
	CanonicalName string                 `json:"canonicalName,omitempty"`
	Coordinates   airquality.Coordinates `json:"coordinates"`
	Reading       airquality.AirReading  `json:"reading"`
	Tier          airquality.Tier        `json:"tier"`
	TierLabel     string                 `json:"tierLabel"`
	Guidance      airquality.Guidance    `json:"guidance"`
	FetchedAt     time.Time              `json:"fetchedAt"`
}

// Options configures an Orchestrator. Zero values pick sensible defaults.
type Options struct {
	DefaultCity   string
	Geolocator    Geolocator
	Catalog       *session.Catalog
	RankingCities []airquality.City
	Clock         clock.Clock
	Metrics       *metrics.Metrics

	// RankingFetcher serves ranking batches. It defaults to the search fetcher;
	// a separate instance keeps a failing batch from tripping the breaker
	// that searches go through.
	RankingFetcher airquality.Fetcher

	// OnTransition, if set, is called on every state change, in order, after
	// the orchestrator's lock is released. It may call back into the
	// Orchestrator.
	OnTransition func(Transition)
}

// Orchestrator sequences resolution, fetching and classification, commits
// results into the session, and exposes the command interface used by the
// presentation layer. At most one air-quality request is in flight: starting a
// new one cancels the previous one.
type Orchestrator struct {
	resolver   airquality.Resolver
	fetcher    airquality.Fetcher
	aggregator *airquality.Aggregator
	session    *session.Manager

	defaultCity   string
	geolocator    Geolocator
	catalog       *session.Catalog
	rankingCities []airquality.City
	clock         clock.Clock
	metrics       *metrics.Metrics
	onTransition  func(Transition)

	mu        sync.Mutex
	state     State
	gen       uint64
	requestID string
	cancel    context.CancelFunc
	last      *Report

	// Transitions awaiting delivery to onTransition, and whether some
	// caller is delivering them.
	pending    []Transition
	delivering bool
}

func New(resolver airquality.Resolver, fetcher airquality.Fetcher, sess *session.Manager, opts Options) *Orchestrator {
	rankingFetcher := opts.RankingFetcher
	if rankingFetcher == nil {
		rankingFetcher = fetcher
	}
	o := &Orchestrator{
		resolver:      resolver,
		fetcher:       fetcher,
		aggregator:    airquality.NewAggregator(rankingFetcher, opts.Metrics),
		session:       sess,
		defaultCity:   opts.DefaultCity,
		geolocator:    opts.Geolocator,
		catalog:       opts.Catalog,
		rankingCities: opts.RankingCities,
		clock:         opts.Clock,
		metrics:       opts.Metrics,
		onTransition:  opts.OnTransition,
	}
	if o.defaultCity == "" {
		o.defaultCity = DefaultCity
	}
	if o.catalog == nil {
		o.catalog = session.DefaultCatalog()
	}
	if o.clock == nil {
		o.clock = clock.SystemClock{}
	}
	return o
}

// State returns the current pipeline state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Current returns the last committed report, if any.
func (o *Orchestrator) Current() (Report, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.last == nil {
		return Report{}, false
	}
	return *o.last, true
}

// Start runs the startup sequence: load the session, roll the exercise list
// over to today, then show the saved city or fall back to geolocation.
func (o *Orchestrator) Start(ctx context.Context) (Report, error) {
	st, err := o.session.Load(ctx)
	if err != nil {
		slog.Warn("continuing with default session", "error", err)
	}
	if _, err := o.session.CheckDailyReset(ctx, clock.Today(o.clock)); err != nil {
		slog.Warn("daily reset not persisted", "error", err)
	}

	if st.CurrentCity != "" {
		return o.Search(ctx, st.CurrentCity)
	}
	return o.UseGeolocation(ctx)
}

// Search resolves query, fetches its air quality and, on success, remembers
// the canonical city name in the session.
func (o *Orchestrator) Search(ctx context.Context, query string) (Report, error) {
	rctx, gen, id := o.begin(ctx)
	defer o.finish(gen)
	return o.search(rctx, gen, id, "search", query)
}

// UseGeolocation fetches air quality at the configured device position, or
// for the default city when no position is available.
func (o *Orchestrator) UseGeolocation(ctx context.Context) (Report, error) {
	return o.UseGeolocationWith(ctx, o.geolocator)
}

// UseGeolocationWith is UseGeolocation with an explicit position source. A
// nil geo means the capability is unavailable.
func (o *Orchestrator) UseGeolocationWith(ctx context.Context, geo Geolocator) (Report, error) {
	rctx, gen, id := o.begin(ctx)
	defer o.finish(gen)

	if geo == nil {
		slog.Info("geolocation unavailable, using default city", "request_id", id, "city", o.defaultCity)
		return o.search(rctx, gen, id, "geolocation_fallback", o.defaultCity)
	}

	coords, err := geo.Locate(rctx)
	if !o.isCurrent(gen) {
		o.metrics.ObservePipeline("geolocation", "superseded")
		return Report{}, ErrSuperseded
	}
	if err != nil {
		slog.Info("geolocation failed, using default city", "request_id", id, "city", o.defaultCity, "error", err)
		return o.search(rctx, gen, id, "geolocation_fallback", o.defaultCity)
	}

	return o.fetch(rctx, gen, id, "geolocation", airquality.LocationResult{
		Coordinates:  coords,
		DisplayLabel: DeviceLocationLabel,
	})
}

func (o *Orchestrator) search(ctx context.Context, gen uint64, id, trigger, query string) (Report, error) {
	if !o.transition(gen, Resolving) {
		return Report{}, ErrSuperseded
	}

	loc, err := o.resolver.Resolve(ctx, query)
	if err != nil {
		return Report{}, o.fail(gen, id, trigger, err)
	}
	return o.fetch(ctx, gen, id, trigger, loc)
}

func (o *Orchestrator) fetch(ctx context.Context, gen uint64, id, trigger string, loc airquality.LocationResult) (Report, error) {
	if !o.transition(gen, Fetching) {
		return Report{}, ErrSuperseded
	}

	reading, err := o.fetcher.FetchCurrent(ctx, loc.Coordinates)
	if err != nil {
		return Report{}, o.fail(gen, id, trigger, err)
	}

	tier := airquality.Classify(reading.AQI)
	report := Report{
		RequestID:     id,
		Label:         loc.DisplayLabel,
		CanonicalName: loc.CanonicalName,
		Coordinates:   loc.Coordinates,
		Reading:       reading,
		Tier:          tier,
		TierLabel:     tier.Label(),
		Guidance:      airquality.GuidanceFor(tier),
		FetchedAt:     o.clock.Now(),
	}

	o.mu.Lock()
	defer o.unlockAndNotify()
	if gen != o.gen {
		o.metrics.ObservePipeline(trigger, "superseded")
		return Report{}, ErrSuperseded
	}

	o.last = &report
	// Device positions have no canonical city to remember.
	if loc.CanonicalName != "" {
		if err := o.session.SetCurrentCity(ctx, loc.CanonicalName); err != nil {
			slog.Warn("current city not persisted", "request_id", id, "error", err)
		}
	}
	o.setStateLocked(Done)
	o.metrics.ObservePipeline(trigger, "done")
	slog.Info("air quality loaded", "request_id", id, "label", report.Label, "aqi", reading.AQI, "tier", tier.String())
	return report, nil
}

func (o *Orchestrator) fail(gen uint64, id, trigger string, err error) error {
	o.mu.Lock()
	defer o.unlockAndNotify()

	if gen != o.gen {
		o.metrics.ObservePipeline(trigger, "superseded")
		return ErrSuperseded
	}

	o.setStateLocked(Failed)
	o.metrics.ObservePipeline(trigger, "failed")

	var nf *airquality.NotFoundError
	if errors.As(err, &nf) {
		slog.Info("location not found", "request_id", id, "query", nf.Query)
	} else {
		slog.Warn("air quality request failed", "request_id", id, "trigger", trigger, "error", err)
	}
	return &RequestError{RequestID: id, Trigger: trigger, Err: err}
}

// begin starts a new request generation, cancelling any request in flight.
func (o *Orchestrator) begin(parent context.Context) (context.Context, uint64, string) {
	ctx, cancel := context.WithCancel(parent)

	o.mu.Lock()
	defer o.unlockAndNotify()

	if o.cancel != nil {
		slog.Debug("superseding in-flight request", "request_id", o.requestID)
		o.cancel()
	}
	o.gen++
	o.requestID = uuid.NewString()
	o.cancel = cancel
	o.setStateLocked(Idle)
	return ctx, o.gen, o.requestID
}

// finish returns the pipeline to Idle if gen is still the current request.
func (o *Orchestrator) finish(gen uint64) {
	o.mu.Lock()
	defer o.unlockAndNotify()

	if gen != o.gen {
		return
	}
	o.cancel()
	o.cancel = nil
	o.setStateLocked(Idle)
}

func (o *Orchestrator) isCurrent(gen uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gen == o.gen
}

func (o *Orchestrator) transition(gen uint64, to State) bool {
	o.mu.Lock()
	defer o.unlockAndNotify()
	if gen != o.gen {
		return false
	}
	o.setStateLocked(to)
	return true
}

func (o *Orchestrator) setStateLocked(to State) {
	if o.state == to {
		return
	}
	from := o.state
	o.state = to
	if o.onTransition != nil {
		o.pending = append(o.pending, Transition{RequestID: o.requestID, From: from, To: to})
	}
}

// unlockAndNotify releases mu, then delivers queued transitions. One caller
// at a time delivers, so callbacks see transitions in commit order and never
// run with mu held.
func (o *Orchestrator) unlockAndNotify() {
	if len(o.pending) == 0 || o.delivering {
		o.mu.Unlock()
		return
	}
	o.delivering = true

	for {
		batch := o.pending
		o.pending = nil
		o.mu.Unlock()

		for _, tr := range batch {
			o.onTransition(tr)
		}

		o.mu.Lock()
		if len(o.pending) == 0 {
			o.delivering = false
			o.mu.Unlock()
			return
		}
	}
}
