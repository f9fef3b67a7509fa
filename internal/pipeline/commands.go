package pipeline

import (
	"context"
	"fmt"

	"github.com/i474232898/airaware/internal/airquality"
	"github.com/i474232898/airaware/internal/clock"
	"github.com/i474232898/airaware/internal/session"
)

// Exercises returns the checklist for the selected category.
func (o *Orchestrator) Exercises() session.View {
	return o.session.View(o.catalog)
}

// Catalog returns the exercise catalog the orchestrator renders against.
func (o *Orchestrator) Catalog() *session.Catalog {
	return o.catalog
}

// ToggleExercise flips one exercise and returns the updated checklist. A
// *session.PersistError is returned alongside a valid view when the change
// could not be saved.
func (o *Orchestrator) ToggleExercise(ctx context.Context, id string) (session.View, error) {
	_, err := o.session.ToggleExercise(ctx, id)
	return o.Exercises(), err
}

// ResetExercises clears today's progress.
func (o *Orchestrator) ResetExercises(ctx context.Context) (session.View, error) {
	err := o.session.ResetExercises(ctx)
	return o.Exercises(), err
}

// SelectCategory switches the visible category. Keys missing from the
// catalog are rejected without touching the session.
func (o *Orchestrator) SelectCategory(ctx context.Context, key string) (session.View, error) {
	if !o.catalog.Has(key) {
		return o.Exercises(), fmt.Errorf("%w: %q", ErrUnknownCategory, key)
	}
	err := o.session.SetCategory(ctx, key)
	return o.Exercises(), err
}

// CheckDailyReset rolls the checklist over if the calendar day changed.
func (o *Orchestrator) CheckDailyReset(ctx context.Context) (bool, error) {
	return o.session.CheckDailyReset(ctx, clock.Today(o.clock))
}

// Rankings ranks the configured city set, most polluted first.
func (o *Orchestrator) Rankings(ctx context.Context) ([]airquality.RankedCityEntry, error) {
	return o.aggregator.Rank(ctx, o.rankingCities)
}

// Session exposes a copy of the current session state.
func (o *Orchestrator) Session() session.State {
	return o.session.Snapshot()
}
