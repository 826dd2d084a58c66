package selector

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/internal/filestore"
	"github.com/mesh-intelligence/navsphere/internal/sqlite"
	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// Stack is an opened Service together with the concrete backends behind
// it, for callers that need backend-specific operations.
type Stack struct {
	*Service

	// SQLite is set when the sqlite backend is selected.
	SQLite *sqlite.Store
	// Files is set when the file backend is selected or serves as the
	// fallback.
	Files *filestore.Store
}

// Open attaches the backends named by config. With Backend "sqlite" and
// Fallback set, the file store is attached as the read fallback.
func Open(config types.Config, log *zap.Logger) (*Stack, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	st := &Stack{}
	if config.Backend == types.BackendSQLite {
		st.SQLite = sqlite.NewStore(sqlite.WithLogger(log.Named("sqlite")))
		if err := st.SQLite.Attach(config); err != nil {
			return nil, fmt.Errorf("attach sqlite: %w", err)
		}
	}
	if config.Backend == types.BackendFile || config.Fallback {
		st.Files = filestore.NewStore(filestore.WithLogger(log.Named("files")))
		if err := st.Files.Attach(config); err != nil {
			st.Close()
			return nil, fmt.Errorf("attach file store: %w", err)
		}
	}

	var primary, fallback types.Backend
	switch {
	case st.SQLite != nil && st.Files != nil:
		primary, fallback = st.SQLite, st.Files
	case st.SQLite != nil:
		primary = st.SQLite
	default:
		primary = st.Files
	}
	st.Service = New(primary, fallback, log.Named("selector"))

	log.Debug("storage opened",
		zap.String("backend", config.Backend),
		zap.Bool("fallback", fallback != nil),
	)
	return st, nil
}

// Close detaches every backend.
func (st *Stack) Close() error {
	var errs []error
	if st.SQLite != nil {
		errs = append(errs, st.SQLite.Detach())
	}
	if st.Files != nil {
		errs = append(errs, st.Files.Detach())
	}
	return errors.Join(errs...)
}
