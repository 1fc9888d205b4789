package scheduler

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifeed/internal/domain"
)

type fakePoller struct {
	mu    sync.Mutex
	calls int
}

func (f *fakePoller) Poll(context.Context) (*domain.PollStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &domain.PollStats{}, nil
}

func (f *fakePoller) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeIntervals struct {
	mu       sync.Mutex
	interval time.Duration
	reads    int
}

func (f *fakeIntervals) PollInterval(_ context.Context, fallback time.Duration) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.interval == 0 {
		return fallback, nil
	}
	return f.interval, nil
}

func (f *fakeIntervals) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestStart_PollsImmediately(t *testing.T) {
	poller := &fakePoller{}
	intervals := &fakeIntervals{interval: time.Hour}
	sched := NewScheduler(poller, intervals, time.Hour, 0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- sched.Start(ctx) }()

	// The first cycle runs before any sleep; with an hour-long interval
	// a prompt first poll is the only way the counter moves.
	require.Eventually(t, func() bool { return poller.count() == 1 },
		2*time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestStart_RereadsIntervalEachCycle(t *testing.T) {
	poller := &fakePoller{}
	intervals := &fakeIntervals{interval: time.Millisecond}
	sched := NewScheduler(poller, intervals, time.Hour, 0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- sched.Start(ctx) }()

	require.Eventually(t, func() bool { return poller.count() >= 3 },
		2*time.Second, 5*time.Millisecond)

	cancel()
	<-errCh

	// One interval read per completed cycle.
	assert.GreaterOrEqual(t, intervals.readCount(), 3)
}

func TestStart_CancellationStopsLoop(t *testing.T) {
	poller := &fakePoller{}
	intervals := &fakeIntervals{interval: time.Hour}
	sched := NewScheduler(poller, intervals, time.Hour, 0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- sched.Start(ctx) }()

	require.Eventually(t, func() bool { return poller.count() == 1 },
		2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancellation")
	}
	assert.Equal(t, 1, poller.count())
}

func TestStart_FallbackWhenIntervalReadFails(t *testing.T) {
	poller := &fakePoller{}
	sched := NewScheduler(poller, failingIntervals{}, time.Millisecond, 0, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- sched.Start(ctx) }()

	// The loop keeps cycling on the fallback interval despite read errors.
	require.Eventually(t, func() bool { return poller.count() >= 2 },
		2*time.Second, 5*time.Millisecond)

	cancel()
	<-errCh
}

type failingIntervals struct{}

func (failingIntervals) PollInterval(context.Context, time.Duration) (time.Duration, error) {
	return 0, context.DeadlineExceeded
}
