package cache

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

type row struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

func TestCache_TTLBoundary(t *testing.T) {
	clock := newFakeClock()
	c := New(30*time.Second, WithClock(clock.Now))

	want := []row{{ID: "a", Order: 1}, {ID: "b", Order: 2}}
	c.Set("k", want)

	t.Run("hit just before ttl", func(t *testing.T) {
		clock.Advance(30*time.Second - time.Nanosecond)
		var got []row
		require.True(t, c.Get("k", &got))
		assert.Equal(t, want, got)
	})

	t.Run("miss at ttl and entry evicted", func(t *testing.T) {
		clock.Advance(time.Nanosecond)
		var got []row
		assert.False(t, c.Get("k", &got))
		assert.Equal(t, 0, c.Len())
	})
}

func TestCache_SetRestampsEntry(t *testing.T) {
	clock := newFakeClock()
	c := New(10*time.Second, WithClock(clock.Now))

	c.Set("k", 1)
	clock.Advance(8 * time.Second)
	c.Set("k", 2)
	clock.Advance(8 * time.Second)

	var got int
	require.True(t, c.Get("k", &got))
	assert.Equal(t, 2, got)
}

func TestCache_Clear(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", "x")
	c.Set("b", "y")
	require.Equal(t, 2, c.Len())

	c.Clear()

	var s string
	assert.False(t, c.Get("a", &s))
	assert.False(t, c.Get("b", &s))
	assert.Equal(t, 0, c.Len())
}

func TestCache_SetIfCurrentSkipsAfterClear(t *testing.T) {
	c := New(time.Minute)

	gen := c.Generation()
	assert.True(t, c.SetIfCurrent(gen, "k", []row{{ID: "fresh"}}))

	stale := c.Generation()
	c.Clear()
	assert.False(t, c.SetIfCurrent(stale, "k", []row{{ID: "stale"}}), "a clear in between discards the value")

	var got []row
	assert.False(t, c.Get("k", &got))
	assert.Zero(t, c.Len())

	assert.True(t, c.SetIfCurrent(c.Generation(), "k", []row{{ID: "next"}}))
	require.True(t, c.Get("k", &got))
	assert.Equal(t, "next", got[0].ID)
}

func TestCache_DecodeFailureIsMiss(t *testing.T) {
	c := New(time.Minute)
	c.Set("k", "not a number")

	var n int
	assert.False(t, c.Get("k", &n))
	assert.Equal(t, 0, c.Len(), "undecodable entry is evicted")
}

func TestCache_LargeValue(t *testing.T) {
	c := New(time.Minute)
	big := strings.Repeat("x", 200*1024)
	c.Set("big", big)

	var got string
	require.True(t, c.Get("big", &got))
	assert.Equal(t, big, got)
}

func TestCache_DefaultTTL(t *testing.T) {
	assert.Equal(t, DefaultTTL, New(0).TTL())
	assert.Equal(t, DefaultTTL, New(-time.Second).TTL())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "SELECT 1:[]", Key("SELECT 1"))
	assert.Equal(t, `SELECT ?:["a",1]`, Key("SELECT ?", "a", 1))
	assert.NotEqual(t, Key("q", "a"), Key("q", "b"))
}
