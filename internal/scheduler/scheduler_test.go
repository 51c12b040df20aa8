package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-news-mood/internal/app"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) (app.State, error) {
	r.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return app.State{}, errors.New("refresh must run with a deadline")
	}
	return app.State{}, r.err
}

func TestSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	r := &countingRefresher{}
	s := New(r, time.Second, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)
}

func TestSchedulerSurvivesRefreshErrors(t *testing.T) {
	r := &countingRefresher{err: errors.New("upstream down")}
	s := New(r, time.Second, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)
}

func TestNewDefaultsInterval(t *testing.T) {
	s := New(&countingRefresher{}, 0, nil)
	assert.Equal(t, defaultInterval, s.interval)
}
