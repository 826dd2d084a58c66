// Package filestore implements the file commit NavSphere backend. Each
// document lives as pretty-printed JSON in a content directory; every write
// also stores the bytes as a content-addressed blob and appends a commit
// record to a log, so the history of every document can be replayed.
//
// Layout under the content root:
//
//	navsphere/content/navigation.json
//	navsphere/content/navigation-default.json
//	navsphere/content/site.json
//	navsphere/content/resource-metadata.json
//	public/assets/img_<ms>.<ext>
//	objects/<sha256>
//	commits.jsonl
package filestore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// Document paths relative to the content root.
const (
	NavigationPath        = "navsphere/content/navigation.json"
	DefaultNavigationPath = "navsphere/content/navigation-default.json"
	SitePath              = "navsphere/content/site.json"
	ResourceMetadataPath  = "navsphere/content/resource-metadata.json"
	AssetsDir             = "public/assets"

	objectsDir = "objects"
	commitLog  = "commits.jsonl"
)

var _ types.Backend = (*Store)(nil)

// Store implements types.Backend on a billy filesystem.
type Store struct {
	mu       sync.RWMutex
	attached bool
	fs       billy.Filesystem

	// writeMu serializes commits so read-modify-write documents and the
	// parent chain stay consistent.
	writeMu sync.Mutex

	log    *zap.Logger
	now    func() time.Time
	preset billy.Filesystem
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock replaces time.Now for commit times and asset names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithFilesystem makes Attach use fs instead of opening Config.ContentDir
// on disk. Tests pass memfs.New().
func WithFilesystem(fs billy.Filesystem) Option {
	return func(s *Store) { s.preset = fs }
}

// NewStore creates a detached store. Call Attach before use.
func NewStore(opts ...Option) *Store {
	s := &Store{
		log: zap.NewNop(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach roots the store at Config.ContentDir and creates the directories it
// writes to. Returns ErrAlreadyAttached if already attached.
func (s *Store) Attach(config types.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attached {
		return types.ErrAlreadyAttached
	}

	fs := s.preset
	if fs == nil {
		if config.ContentDir == "" {
			return types.ErrContentDirEmpty
		}
		fs = osfs.New(config.ContentDir)
	}
	for _, dir := range []string{"navsphere/content", AssetsDir, objectsDir} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	s.fs = fs
	s.attached = true
	s.log.Debug("file store attached", zap.String("root", fs.Root()))
	return nil
}

// Detach releases the filesystem. It is idempotent.
func (s *Store) Detach() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attached = false
	s.fs = nil
	return nil
}

// acquire returns the filesystem while holding the attach read lock. The
// caller must call release.
func (s *Store) acquire(ctx context.Context) (billy.Filesystem, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	s.mu.RLock()
	if !s.attached {
		s.mu.RUnlock()
		return nil, nil, types.ErrDetached
	}
	return s.fs, s.mu.RUnlock, nil
}
