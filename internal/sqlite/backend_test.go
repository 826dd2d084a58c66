// Tests for the SQLite store lifecycle and the shared query primitives.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mesh-intelligence/navsphere/internal/cache"
	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// setupStore attaches a store in a temp directory and detaches it when the
// test ends.
func setupStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	s := NewStore(opts...)
	require.NoError(t, s.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	t.Cleanup(func() { s.Detach() })
	return s
}

// faultyHandle passes statements through to the database until it is armed,
// then fails the statement that matches prefix on its nth occurrence.
type faultyHandle struct {
	Handle

	mu     sync.Mutex
	armed  bool
	prefix string
	nth    int
	seen   int
	execs  []string
}

var errInjected = errors.New("injected failure")

func (h *faultyHandle) arm(prefix string, nth int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.armed, h.prefix, h.nth, h.seen = true, prefix, nth, 0
	h.execs = nil
}

func (h *faultyHandle) ExecContext(ctx context.Context, q string, args ...any) (sql.Result, error) {
	h.mu.Lock()
	if h.armed {
		h.execs = append(h.execs, q)
		if strings.HasPrefix(q, h.prefix) {
			h.seen++
			if h.seen == h.nth {
				h.mu.Unlock()
				return nil, errInjected
			}
		}
	}
	h.mu.Unlock()
	return h.Handle.ExecContext(ctx, q, args...)
}

func (h *faultyHandle) statements() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.execs...)
}

func setupFaultyStore(t *testing.T) (*Store, *faultyHandle) {
	t.Helper()
	fh := &faultyHandle{}
	s := setupStore(t, WithHandle(func(db *sql.DB) Handle {
		fh.Handle = db
		return fh
	}))
	return s, fh
}

// clearingHandle clears the store's cache after each query has run, the
// way a mutation finishing on another goroutine would.
type clearingHandle struct {
	Handle
	clear func()
}

func (h *clearingHandle) QueryContext(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	rows, err := h.Handle.QueryContext(ctx, q, args...)
	h.clear()
	return rows, err
}

func TestStore_Attach(t *testing.T) {
	dir := t.TempDir()
	s := NewStore()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	require.NoError(t, s.Attach(config))
	defer s.Detach()

	_, err := os.Stat(filepath.Join(dir, DatabaseFile))
	assert.NoError(t, err, "database file should exist")

	assert.ErrorIs(t, s.Attach(config), types.ErrAlreadyAttached)
}

func TestStore_AttachCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := NewStore()
	require.NoError(t, s.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer s.Detach()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_AttachRejectsInvalidConfig(t *testing.T) {
	s := NewStore()
	assert.ErrorIs(t, s.Attach(types.Config{}), types.ErrBackendEmpty)
	assert.ErrorIs(t, s.Attach(types.Config{Backend: "mysql"}), types.ErrBackendUnknown)
}

func TestStore_SchemaIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	config := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	first := NewStore()
	require.NoError(t, first.Attach(config))
	require.NoError(t, first.UpsertSiteConfig(context.Background(), types.SiteConfig{
		Basic: types.BasicConfig{Title: "kept"},
	}))
	require.NoError(t, first.Detach())

	second := NewStore()
	require.NoError(t, second.Attach(config))
	defer second.Detach()

	cfg, err := second.SiteConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "kept", cfg.Basic.Title)
}

func TestStore_Detach(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))

	require.NoError(t, s.Detach())
	assert.NoError(t, s.Detach(), "second Detach should not error")

	ctx := context.Background()
	_, err := s.NavigationTree(ctx)
	assert.ErrorIs(t, err, types.ErrDetached)
	assert.ErrorIs(t, s.ReplaceNavigationTree(ctx, types.EmptyNavigation()), types.ErrDetached)
	_, err = s.ListResourceMetadata(ctx)
	assert.ErrorIs(t, err, types.ErrDetached)
}

func TestStore_Ping(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.AppendResourceMetadata(ctx, "public/assets/a.png", "c1")
	require.NoError(t, err)

	h, err := s.Ping(ctx)
	require.NoError(t, err)
	assert.True(t, h.OK)
	assert.Equal(t, 1, h.Counts[tableResourceMetadata])
	assert.Equal(t, 0, h.Counts[tableNavigationItems])
	assert.Len(t, h.Counts, 4)
}

func TestQuery_ServesFromCacheUntilMutation(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	_, err := s.AppendResourceMetadata(ctx, "a.png", "")
	require.NoError(t, err)

	got, err := s.ListResourceMetadata(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// A write that bypasses the store is invisible while the entry is fresh.
	_, err = s.db.ExecContext(ctx, insertResourceMetadata, "out-of-band", "b.png", nil, formatTime(time.Now()))
	require.NoError(t, err)

	got, err = s.ListResourceMetadata(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1, "cached result expected")

	// Any mutation through the store clears the cache.
	_, err = s.AppendResourceMetadata(ctx, "c.png", "")
	require.NoError(t, err)

	got, err = s.ListResourceMetadata(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestQuery_ExpiredEntryIsRefetched(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := cache.New(time.Second, cache.WithClock(func() time.Time { return now }))
	s := setupStore(t, WithCache(c))
	ctx := context.Background()

	_, err := s.ListResourceMetadata(ctx)
	require.NoError(t, err)

	_, err = s.db.ExecContext(ctx, insertResourceMetadata, "x", "x.png", nil, formatTime(now))
	require.NoError(t, err)

	got, err := s.ListResourceMetadata(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	now = now.Add(time.Second)
	got, err = s.ListResourceMetadata(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestQuery_ClearDuringReadIsNotCached(t *testing.T) {
	c := cache.New(time.Minute)
	s := setupStore(t, WithCache(c), WithHandle(func(db *sql.DB) Handle {
		return &clearingHandle{Handle: db, clear: c.Clear}
	}))
	ctx := context.Background()

	_, err := s.ListResourceMetadata(ctx)
	require.NoError(t, err)
	assert.Zero(t, c.Len(), "rows read before a clear must not be cached")

	_, err = s.db.ExecContext(ctx, insertResourceMetadata, "x", "x.png", nil, formatTime(time.Now()))
	require.NoError(t, err)

	got, err := s.ListResourceMetadata(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMutate_FailureIsStoreErrorAndClearsCache(t *testing.T) {
	s, fh := setupFaultyStore(t)
	ctx := context.Background()

	_, err := s.ListResourceMetadata(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, s.cache.Len())

	fh.arm("INSERT INTO resource_metadata", 1)
	_, err = s.AppendResourceMetadata(ctx, "a.png", "")

	var se *types.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert resource metadata", se.Op)
	assert.ErrorIs(t, err, types.ErrStore)
	assert.ErrorIs(t, err, errInjected)
	assert.Equal(t, 0, s.cache.Len())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestRecord_Normalization(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 8, time.UTC)
	r := record{
		"s":     "text",
		"n":     int64(7),
		"nstr":  " 9 ",
		"b":     int64(1),
		"bstr":  "false",
		"t":     formatTime(ts),
		"tsql":  "2026-03-04 05:06:07",
		"ttime": ts,
		"null":  nil,
	}

	assert.Equal(t, "text", r.str("s"))
	assert.Equal(t, "7", r.str("n"))
	assert.Equal(t, "", r.str("null"))
	assert.Nil(t, r.nullStr("null"))
	assert.Equal(t, "text", *r.nullStr("s"))
	assert.Equal(t, 7, r.integer("n"))
	assert.Equal(t, 9, r.integer("nstr"))
	assert.True(t, r.boolean("b"))
	assert.False(t, r.boolean("bstr"))
	assert.False(t, r.boolean("null"))
	assert.Equal(t, ts, r.timeAt("t"))
	assert.Equal(t, time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC), r.timeAt("tsql"))
	assert.Equal(t, ts, r.timeAt("ttime"))
	assert.True(t, r.timeAt("null").IsZero())
}
