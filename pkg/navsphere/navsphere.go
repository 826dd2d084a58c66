// Package navsphere is the public entry point to the NavSphere storage
// core. Open selects and attaches the configured backends and returns a
// types.Service; implementation details stay internal.
package navsphere

import (
	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/internal/selector"
	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// Version is the release version reported by the CLI.
const Version = "0.3.0"

// Store is an open Service. Call Close when done.
type Store interface {
	types.Service
	Close() error
}

// Open attaches the backends named by config and returns the Service over
// them. A nil logger discards everything.
//
// Example:
//
//	store, err := navsphere.Open(types.Config{
//	    Backend:    types.BackendSQLite,
//	    DataDir:    ".navsphere-db",
//	    ContentDir: "content",
//	    Fallback:   true,
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//	tree := store.GetNavigationTree(ctx)
func Open(config types.Config, log *zap.Logger) (Store, error) {
	st, err := selector.Open(config, log)
	if err != nil {
		return nil, err
	}
	return st, nil
}
