// Package cli implements the navsphere command-line interface.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/internal/config"
	"github.com/mesh-intelligence/navsphere/internal/logging"
	"github.com/mesh-intelligence/navsphere/internal/paths"
	"github.com/mesh-intelligence/navsphere/internal/selector"
	"github.com/mesh-intelligence/navsphere/pkg/navsphere"
	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir  string
	dataDir    string
	contentDir string
	backend    string
	logLevel   string
}

// app carries state shared by the commands of one root command.
type app struct {
	flags    rootFlags
	settings config.Settings
	log      *zap.Logger
}

// NewRootCmd creates the top-level "navsphere" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	root := &cobra.Command{
		Use:     "navsphere",
		Short:   "Manage a NavSphere navigation store",
		Long:    "navsphere reads and writes the navigation tree, site configuration, and\nasset metadata held in a SQLite database or a file commit store.",
		Version: navsphere.Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "SQLite data directory (default: $(CWD)/.navsphere-db)")
	pf.StringVar(&a.flags.contentDir, "content-dir", "", "file store root (default: $(CWD)/.navsphere-content)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: sqlite or file (default: from config.yaml)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newDoctorCmd(a),
		newNavCmd(a),
		newSiteCmd(a),
		newAssetsCmd(a),
		newMigrateCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps bad input to exitUserError and everything else to
// exitSysError.
func exitCode(err error) int {
	if errors.Is(err, types.ErrValidation) || errors.Is(err, errUsage) {
		return exitUserError
	}
	return exitSysError
}

var errUsage = errors.New("usage error")

// setup loads config.yaml, applies flag overrides, resolves directories,
// and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := config.Load(configDir)
	if err != nil {
		return err
	}
	a.settings = config.Decode(v)
	return a.resolve(cmd)
}

func (a *app) resolve(cmd *cobra.Command) error {
	s := &a.settings
	if a.flags.backend != "" {
		s.Store.Backend = a.flags.backend
	}
	if a.flags.logLevel != "" {
		s.Log.Level = a.flags.logLevel
	}

	var err error
	if s.Store.DataDir, err = paths.ResolveDataDir(a.flags.dataDir, s.Store.DataDir); err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	if s.Store.ContentDir, err = paths.ResolveContentDir(a.flags.contentDir, s.Store.ContentDir); err != nil {
		return fmt.Errorf("resolve content dir: %w", err)
	}

	log, err := logging.New(s.Log)
	if err != nil {
		return err
	}
	a.log = log
	a.log.Debug("configuration resolved",
		zap.String("command", cmd.CommandPath()),
		zap.String("backend", s.Store.Backend),
		zap.String("data_dir", s.Store.DataDir),
		zap.String("content_dir", s.Store.ContentDir),
		zap.Bool("fallback", s.Store.Fallback),
	)
	return nil
}

// open attaches the configured backends. The caller must Close the stack.
func (a *app) open() (*selector.Stack, error) {
	return a.openWith(a.settings.Store)
}

func (a *app) openWith(cfg types.Config) (*selector.Stack, error) {
	st, err := selector.Open(cfg, a.log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return st, nil
}

// openFiles opens the stack with the file store attached, whatever the
// configured backend.
func (a *app) openFiles() (*selector.Stack, error) {
	cfg := a.settings.Store
	if cfg.Backend == types.BackendSQLite {
		cfg.Fallback = true
	}
	return a.openWith(cfg)
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// readInput returns the contents of name, or standard input when name is
// "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// decodeInput reads name and unmarshals it into v. Malformed JSON is a
// validation error.
func decodeInput(cmd *cobra.Command, name string, v any) error {
	data, err := readInput(cmd, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &types.ValidationError{Field: "input", Reason: err.Error()}
	}
	return nil
}
