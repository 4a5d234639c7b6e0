package feed

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"interaction-service/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRegistry_OpenReturnsSameSession(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	viewer := uuid.New()

	s1, created := r.Open(viewer)
	require.True(t, created)
	s1.Load([]models.InteractionRecord{{ID: "p1"}})
	_, err := s1.Tap("p1", 0)
	require.NoError(t, err)

	s2, created := r.Open(viewer)
	assert.False(t, created)
	assert.Same(t, s1, s2)

	res, err := s2.Tap("p1", 100)
	require.NoError(t, err)
	assert.True(t, res.HeartBurst, "tap state must survive reopening the feed")
}

func TestRegistry_GetAndClose(t *testing.T) {
	var sizes []int
	r := NewRegistry(RegistryConfig{OnResize: func(n int) { sizes = append(sizes, n) }})
	viewer := uuid.New()

	_, err := r.Get(viewer)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	r.Open(viewer)
	s, err := r.Get(viewer)
	require.NoError(t, err)
	assert.Equal(t, viewer, s.ViewerID())

	assert.True(t, r.Close(viewer))
	assert.False(t, r.Close(viewer))
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, []int{1, 0}, sizes)
}

func TestRegistry_SweepEvictsIdleSessions(t *testing.T) {
	clock := &fakeClock{now: t0}
	r := NewRegistry(RegistryConfig{SessionTTL: time.Minute})
	r.now = clock.Now

	idle := uuid.New()
	active := uuid.New()
	r.Open(idle)
	activeSession, _ := r.Open(active)
	activeSession.Load([]models.InteractionRecord{{ID: "p1"}})

	clock.Advance(45 * time.Second)
	_, err := activeSession.Tap("p1", 0)
	require.NoError(t, err)

	clock.Advance(30 * time.Second)
	assert.Equal(t, 1, r.Sweep())

	_, err = r.Get(idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = r.Get(active)
	assert.NoError(t, err)
}

func TestRegistry_OnEvict(t *testing.T) {
	clock := &fakeClock{now: t0}
	var evicted []uuid.UUID
	r := NewRegistry(RegistryConfig{
		SessionTTL: time.Minute,
		OnEvict:    func(id uuid.UUID) { evicted = append(evicted, id) },
	})
	r.now = clock.Now

	closed, idle, active := uuid.New(), uuid.New(), uuid.New()
	r.Open(closed)
	r.Open(idle)
	require.True(t, r.Close(closed))
	assert.Equal(t, []uuid.UUID{closed}, evicted)

	clock.Advance(2 * time.Minute)
	r.Open(active)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, []uuid.UUID{closed, idle}, evicted)

	assert.False(t, r.Close(closed))
	assert.Len(t, evicted, 2, "closing twice evicts once")
}

func TestRegistry_RunStopsWithContext(t *testing.T) {
	clock := &fakeClock{now: t0}
	r := NewRegistry(RegistryConfig{SessionTTL: time.Millisecond})
	r.now = clock.Now
	r.Open(uuid.New())
	clock.Advance(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
