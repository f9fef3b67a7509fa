package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResetter struct {
	calls atomic.Int32
	err   error
}

func (r *countingResetter) CheckDailyReset(context.Context) (bool, error) {
	r.calls.Add(1)
	return true, r.err
}

func TestSchedulerRunsReset(t *testing.T) {
	r := &countingResetter{}
	s := New(r, "00:00")
	require.NoError(t, s.Start())
	defer s.Stop()

	s.RunNow()
	require.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerSurvivesResetError(t *testing.T) {
	r := &countingResetter{err: errors.New("disk full")}
	s := New(r, "23:59")
	require.NoError(t, s.Start())
	defer s.Stop()

	s.RunNow()
	require.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	s.RunNow()
	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestSchedulerRejectsBadTime(t *testing.T) {
	s := New(&countingResetter{}, "25:99")
	assert.Error(t, s.Start())
}
