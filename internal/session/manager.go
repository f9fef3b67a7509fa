package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/i474232898/airaware/internal/clock"
	"github.com/i474232898/airaware/internal/metrics"
	"github.com/i474232898/airaware/internal/store"
)

// Store is the durable backend for the session record.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// PersistError reports that a mutation was applied in memory but could not be
// written to the store. It is never fatal.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist session after %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// Manager owns the single SessionState of a user. Every mutating method
// writes the whole record through to the store before returning.
type Manager struct {
	mu      sync.Mutex
	store   Store
	clock   clock.Clock
	metrics *metrics.Metrics
	state   State
}

// NewManager creates a Manager holding default state. Call Load before use.
func NewManager(st Store, clk clock.Clock, m *metrics.Metrics) *Manager {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Manager{
		store:   st,
		clock:   clk,
		metrics: m,
		state:   Defaults(),
	}
}

// Load reads the persisted record and merges it over defaults. An absent
// record is not an error. A failing or corrupt store leaves defaults in place
// and returns the error for reporting.
func (m *Manager) Load(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.store.Load(ctx, StorageKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		m.state = Defaults()
		return m.state.Clone(), nil
	case err != nil:
		m.state = Defaults()
		slog.Warn("session load failed, using defaults", "error", err)
		return m.state.Clone(), fmt.Errorf("load session: %w", err)
	}

	st, err := Decode(data)
	m.state = st
	if err != nil {
		slog.Warn("session record unreadable, using defaults", "error", err)
		return m.state.Clone(), err
	}
	return m.state.Clone(), nil
}

// Snapshot returns a deep copy of the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Today returns the current calendar date according to the manager's clock.
func (m *Manager) Today() string {
	return clock.Today(m.clock)
}

// CheckDailyReset clears the completed set when today differs from the last
// visit date. It reports whether a reset happened.
func (m *Manager) CheckDailyReset(ctx context.Context, today string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.LastVisitDate == today {
		return false, nil
	}
	m.state.Completed = ExerciseSet{}
	m.state.LastVisitDate = today
	m.metrics.IncDailyResets()
	slog.Info("daily exercise reset", "date", today)
	return true, m.persist(ctx, "daily reset")
}

// ToggleExercise flips membership of id in the completed set. Any id is
// accepted; it is not checked against the catalog.
func (m *Manager) ToggleExercise(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	done := !m.state.Completed.Has(id)
	if done {
		m.state.Completed[id] = struct{}{}
	} else {
		delete(m.state.Completed, id)
	}
	return done, m.persist(ctx, "toggle exercise")
}

// ResetExercises clears the completed set.
func (m *Manager) ResetExercises(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Completed = ExerciseSet{}
	return m.persist(ctx, "reset exercises")
}

func (m *Manager) SetCategory(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Category = key
	return m.persist(ctx, "set category")
}

func (m *Manager) SetCurrentCity(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.CurrentCity = name
	return m.persist(ctx, "set current city")
}

// View renders the checklist for the selected category.
func (m *Manager) View(c *Catalog) View {
	return BuildView(m.Snapshot(), c)
}

// persist must be called with mu held.
func (m *Manager) persist(ctx context.Context, op string) error {
	data, err := Encode(m.state)
	if err == nil {
		err = m.store.Save(ctx, StorageKey, data)
	}
	if err != nil {
		m.metrics.IncPersistErrors()
		slog.Error("session persist failed", "op", op, "error", err)
		return &PersistError{Op: op, Err: err}
	}
	return nil
}
