// Package sqlite implements the relational NavSphere backend: four tables
// (navigation_items, resources, site_config, resource_metadata) behind
// parameterized query and mutate primitives, a read-through cache, and the
// tree-level operations built on them.
//
// The store issues each logical operation as a sequence of single-statement
// writes and never opens a transaction, so it behaves the same on stores
// whose transaction support is limited.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/navsphere/internal/cache"
	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// DatabaseFile is the SQLite file created under Config.DataDir.
const DatabaseFile = "navsphere.db"

// Handle is the statement interface the store needs from the database. It is
// satisfied by *sql.DB.
type Handle interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var _ types.Backend = (*Store)(nil)

// Store implements types.Backend on SQLite.
type Store struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	handle   Handle

	cache  *cache.Cache
	log    *zap.Logger
	now    func() time.Time
	newID  func() string
	wrapDB func(*sql.DB) Handle
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithCache injects the read cache. When absent, Attach creates one with the
// configured TTL.
func WithCache(c *cache.Cache) Option {
	return func(s *Store) { s.cache = c }
}

// WithClock replaces time.Now for row timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithHandle wraps the opened database before the store uses it. Tests use
// it to observe or fail individual statements.
func WithHandle(wrap func(*sql.DB) Handle) Option {
	return func(s *Store) { s.wrapDB = wrap }
}

// NewStore creates a detached store. Call Attach before use.
func NewStore(opts ...Option) *Store {
	s := &Store{
		log:   zap.NewNop(),
		now:   time.Now,
		newID: newUUID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach opens DataDir/navsphere.db, creating the directory and schema as
// needed. Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	dsn := "file:" + filepath.Join(dataDir, DatabaseFile) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	var h Handle = db
	if s.wrapDB != nil {
		h = s.wrapDB(db)
	}

	if err := initSchema(context.Background(), h, s.log); err != nil {
		db.Close()
		return err
	}

	if s.cache == nil {
		s.cache = cache.New(config.EffectiveCacheTTL())
	}
	s.cache.Clear()

	s.db = db
	s.handle = h
	s.config = config
	s.attached = true

	s.log.Debug("sqlite store attached",
		zap.String("data_dir", dataDir),
		zap.Duration("cache_ttl", s.cache.TTL()),
	)
	return nil
}

// Detach closes the database. It is idempotent; after Detach every
// operation returns ErrDetached.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return nil
	}
	s.attached = false
	s.handle = nil
	s.cache.Clear()

	if s.db != nil {
		db := s.db
		s.db = nil
		if err := db.Close(); err != nil {
			return fmt.Errorf("close database: %w", err)
		}
	}
	return nil
}

// acquire returns the statement handle while holding the attach read lock.
// The caller must call the returned release function.
func (s *Store) acquire() (Handle, func(), error) {
	s.mu.RLock()
	if !s.attached {
		s.mu.RUnlock()
		return nil, nil, types.ErrDetached
	}
	return s.handle, s.mu.RUnlock, nil
}

// timestamp returns the current time in the fixed-width stored form.
func (s *Store) timestamp() string {
	return formatTime(s.now())
}

// newUUID generates a UUID v7 string: a millisecond timestamp followed by
// random bits.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
