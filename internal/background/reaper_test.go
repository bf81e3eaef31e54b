package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockStaleEngagementStore struct {
	mu            sync.Mutex
	Cutoffs       []time.Time
	FailStaleFunc func(ctx context.Context, cutoff time.Time) (int64, error)
}

func (m *MockStaleEngagementStore) FailStale(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	m.Cutoffs = append(m.Cutoffs, cutoff)
	m.mu.Unlock()
	if m.FailStaleFunc == nil {
		return 0, nil
	}
	return m.FailStaleFunc(ctx, cutoff)
}

func (m *MockStaleEngagementStore) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Cutoffs)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEngagementReaper_CutoffUsesStaleAfter(t *testing.T) {
	store := &MockStaleEngagementStore{}
	reaper := NewEngagementReaper(store, testLogger(), time.Hour, 90*time.Minute)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reaper.now = func() time.Time { return now }

	reaper.reap(context.Background())

	require.Len(t, store.Cutoffs, 1)
	assert.Equal(t, now.Add(-90*time.Minute), store.Cutoffs[0])
}

func TestEngagementReaper_StoreErrorIsSwallowed(t *testing.T) {
	store := &MockStaleEngagementStore{
		FailStaleFunc: func(ctx context.Context, cutoff time.Time) (int64, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return 0, errors.New("db down")
		},
	}
	reaper := NewEngagementReaper(store, testLogger(), time.Hour, time.Hour)

	assert.NotPanics(t, func() { reaper.reap(context.Background()) })
	assert.Equal(t, 1, store.calls())
}

func TestEngagementReaper_RunsOnStartAndStops(t *testing.T) {
	store := &MockStaleEngagementStore{}
	reaper := NewEngagementReaper(store, testLogger(), 10*time.Millisecond, time.Hour)

	done := make(chan struct{})
	go func() {
		reaper.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.calls() >= 2 }, time.Second, 5*time.Millisecond)

	reaper.Stop()
	reaper.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}

func TestEngagementReaper_StopsOnContextCancel(t *testing.T) {
	store := &MockStaleEngagementStore{}
	reaper := NewEngagementReaper(store, testLogger(), time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.calls() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop")
	}
}
