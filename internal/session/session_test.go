package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/airaware/internal/clock"
	"github.com/i474232898/airaware/internal/metrics"
	"github.com/i474232898/airaware/internal/store"
)

type failingStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (f *failingStore) Load(context.Context, string) ([]byte, error) {
	return nil, f.loadErr
}

func (f *failingStore) Save(context.Context, string, []byte) error {
	f.saves++
	return f.saveErr
}

func newManager(t *testing.T, st Store) *Manager {
	t.Helper()
	m := NewManager(st, clock.Fixed(time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local)), nil)
	_, err := m.Load(context.Background())
	require.NoError(t, err)
	return m
}

func TestLoadWithoutRecordUsesDefaults(t *testing.T) {
	m := newManager(t, store.NewMemoryStore(0))
	s := m.Snapshot()
	assert.Equal(t, Defaults(), s)
	assert.Equal(t, "weight-loss", s.Category)
	assert.Empty(t, s.CurrentCity)
	assert.Empty(t, s.LastVisitDate)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(0)
	require.NoError(t, st.Save(ctx, StorageKey, []byte(`{"currentCity":"Tokyo","extra":true}`)))

	m := NewManager(st, nil, nil)
	s, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", s.CurrentCity)
	assert.Equal(t, DefaultCategory, s.Category)
	assert.Empty(t, s.Completed)
}

func TestLoadCorruptRecordFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(0)
	require.NoError(t, st.Save(ctx, StorageKey, []byte(`{"completedExercises":"wl1"`)))

	s, err := NewManager(st, nil, nil).Load(ctx)
	assert.Error(t, err)
	assert.Equal(t, Defaults(), s)
}

func TestLoadStoreFailureIsReported(t *testing.T) {
	boom := errors.New("disk gone")
	s, err := NewManager(&failingStore{loadErr: boom}, nil, nil).Load(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, Defaults(), s)
}

func TestRoundTrip(t *testing.T) {
	cases := map[string]State{
		"defaults": Defaults(),
		"full": {
			CurrentCity:   "Paris",
			Completed:     ExerciseSet{"wl1": {}, "br2": {}, "not-in-catalog": {}},
			LastVisitDate: "2026-10-19",
			Category:      "yoga",
		},
		"city only": {
			CurrentCity: "Delhi",
			Completed:   ExerciseSet{},
			Category:    DefaultCategory,
		},
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := Encode(want)
			require.NoError(t, err)
			got, err := Decode(data)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestEncodeShape(t *testing.T) {
	data, err := Encode(Defaults())
	require.NoError(t, err)
	assert.JSONEq(t, `{"currentCity":null,"completedExercises":[],"lastVisitDate":null,"category":"weight-loss"}`, string(data))
}

func TestCheckDailyReset(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(0)
	m := newManager(t, st)

	reset, err := m.CheckDailyReset(ctx, "2026-10-19")
	require.NoError(t, err)
	assert.True(t, reset)

	_, err = m.ToggleExercise(ctx, "wl1")
	require.NoError(t, err)
	writes := len(st.Revisions(StorageKey))

	reset, err = m.CheckDailyReset(ctx, "2026-10-19")
	require.NoError(t, err)
	assert.False(t, reset)
	assert.True(t, m.Snapshot().Completed.Has("wl1"), "same day keeps progress")
	assert.Len(t, st.Revisions(StorageKey), writes, "no-op reset does not write")

	reset, err = m.CheckDailyReset(ctx, "2026-10-20")
	require.NoError(t, err)
	assert.True(t, reset)
	s := m.Snapshot()
	assert.Empty(t, s.Completed)
	assert.Equal(t, "2026-10-20", s.LastVisitDate)
}

func TestToggleIsItsOwnInverse(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, store.NewMemoryStore(0))

	for _, id := range []string{"wl1", "br3", "anything at all", ""} {
		before := m.Snapshot().Completed.Has(id)

		done, err := m.ToggleExercise(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, !before, done)

		done, err = m.ToggleExercise(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, before, done)
		assert.Equal(t, before, m.Snapshot().Completed.Has(id))
	}
}

func TestMutationsWriteThrough(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore(0)
	m := newManager(t, st)

	_, err := m.ToggleExercise(ctx, "wl2")
	require.NoError(t, err)
	require.NoError(t, m.SetCategory(ctx, "breathing"))
	require.NoError(t, m.SetCurrentCity(ctx, "Dubai"))
	require.NoError(t, m.ResetExercises(ctx))

	assert.Len(t, st.Revisions(StorageKey), 4)

	reloaded := NewManager(st, nil, nil)
	s, err := reloaded.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.Snapshot(), s)
	assert.Equal(t, "breathing", s.Category)
	assert.Equal(t, "Dubai", s.CurrentCity)
	assert.Empty(t, s.Completed)
}

func TestPersistFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	st := &failingStore{loadErr: store.ErrNotFound, saveErr: errors.New("quota exceeded")}
	reg := prometheus.NewRegistry()
	met := metrics.New(reg)
	m := NewManager(st, nil, met)
	_, err := m.Load(ctx)
	require.NoError(t, err)

	done, err := m.ToggleExercise(ctx, "in1")
	var pe *PersistError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "toggle exercise", pe.Op)
	assert.True(t, done)
	assert.True(t, m.Snapshot().Completed.Has("in1"), "in-memory effect still applies")

	err = m.SetCategory(ctx, "indoor")
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, "indoor", m.Snapshot().Category)

	assert.Equal(t, 2, st.saves)
	assert.Equal(t, 2.0, testutil.ToFloat64(met.PersistErrors))
}

func TestSnapshotIsACopy(t *testing.T) {
	m := newManager(t, store.NewMemoryStore(0))
	s := m.Snapshot()
	s.Completed["wl1"] = struct{}{}
	assert.False(t, m.Snapshot().Completed.Has("wl1"))
}

func TestToday(t *testing.T) {
	m := newManager(t, store.NewMemoryStore(0))
	assert.Equal(t, "2026-10-19", m.Today())
}
