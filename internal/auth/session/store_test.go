package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	st := NewStore(&fakeProvider{})

	a := st.Create()
	b := st.Create()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, st.Len())

	got, ok := st.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = st.Get("missing")
	assert.False(t, ok)

	var seen []string
	st.Range(func(s *Session) bool {
		seen = append(seen, s.ID())
		return true
	})
	assert.ElementsMatch(t, []string{a.ID(), b.ID()}, seen)

	count := 0
	st.Range(func(*Session) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)

	require.NoError(t, a.Exchange(context.Background(), "abc"))
	ctx := a.Context()
	st.Delete(a.ID())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	_, ok = st.Get(a.ID())
	assert.False(t, ok)
	assert.Equal(t, 1, st.Len())

	st.Delete("missing")
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
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClockedStore() (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	st := NewStore(&fakeProvider{})
	st.now = clock.Now
	return st, clock
}

func TestStore_DeleteIdle(t *testing.T) {
	st, clock := newClockedStore()

	active := st.Create()
	idle := st.Create()
	require.NoError(t, idle.Exchange(context.Background(), "abc"))
	idleCtx := idle.Context()

	clock.Advance(time.Hour)
	_, ok := st.Get(active.ID())
	require.True(t, ok)
	assert.Equal(t, clock.Now(), active.LastSeen())

	removed := st.DeleteIdle(clock.Now().Add(-30 * time.Minute))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, st.Len())

	_, ok = st.Get(idle.ID())
	assert.False(t, ok)
	assert.ErrorIs(t, idleCtx.Err(), context.Canceled, "removing a session stops its poller")
	assert.Equal(t, Unauthenticated, idle.State())

	_, ok = st.Get(active.ID())
	assert.True(t, ok)
}

func TestCleanupManager_Cleanup(t *testing.T) {
	st, clock := newClockedStore()
	cm := NewCleanupManager(st, time.Minute, 10*time.Minute)

	for i := 0; i < 5; i++ {
		st.Create()
	}
	assert.Equal(t, 0, cm.Cleanup())

	clock.Advance(11 * time.Minute)
	kept := st.Create()
	assert.Equal(t, 5, cm.Cleanup())
	assert.Equal(t, 1, st.Len())
	_, ok := st.Get(kept.ID())
	assert.True(t, ok)
}

func TestCleanupManager_Loop(t *testing.T) {
	st, clock := newClockedStore()
	cm := NewCleanupManager(st, 5*time.Millisecond, time.Minute)

	st.Create()
	clock.Advance(2 * time.Minute)

	cm.Start(context.Background())
	require.Eventually(t, func() bool { return st.Len() == 0 }, time.Second, 5*time.Millisecond)

	cm.Stop()
	cm.Stop()
	st.Create()
	clock.Advance(2 * time.Minute)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, st.Len(), "no cleanup after Stop")
}

func TestCleanupManager_Disabled(t *testing.T) {
	st, clock := newClockedStore()
	cm := NewCleanupManager(st, 0, 0)

	st.Create()
	clock.Advance(48 * time.Hour)
	cm.Start(context.Background())
	cm.Stop()
	assert.Equal(t, 1, st.Len())
}
