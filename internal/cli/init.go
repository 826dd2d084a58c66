package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/navsphere/internal/config"
	"github.com/mesh-intelligence/navsphere/internal/paths"
)

// configFile holds the structure init writes to config.yaml.
type configFile struct {
	Backend    string `yaml:"backend"`
	DataDir    string `yaml:"data_dir,omitempty"`
	ContentDir string `yaml:"content_dir,omitempty"`
	CacheTTL   string `yaml:"cache_ttl"`
	Fallback   bool   `yaml:"fallback"`
	Log        struct {
		Level  string `yaml:"level"`
		Output string `yaml:"output"`
	} `yaml:"log"`
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize navsphere storage",
		Long: `Create the configuration directory and config.yaml, then attach the
configured backends once so the SQLite schema and the file store layout exist.

Flags given to init are recorded in the new config.yaml. An existing
config.yaml is left unchanged.`,
		Args: cobra.NoArgs,
		// init writes config.yaml itself before loading it.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(cmd)
		},
	}
}

func (a *app) runInit(cmd *cobra.Command) error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := a.writeConfigIfMissing(config.Path(configDir)); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	if err := a.setup(cmd, nil); err != nil {
		return err
	}
	st, err := a.open()
	if err != nil {
		return err
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("finalize storage: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "navsphere initialized (%s backend)\nconfig: %s\n",
		a.settings.Store.Backend, config.Path(configDir))
	return nil
}

// writeConfigIfMissing creates config.yaml from the defaults and any flags
// given. If the file already exists it is left alone.
func (a *app) writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	var cfg configFile
	if err := yaml.Unmarshal([]byte(config.DefaultYAML), &cfg); err != nil {
		return fmt.Errorf("parse default config: %w", err)
	}
	if a.flags.backend != "" {
		cfg.Backend = a.flags.backend
	}
	cfg.DataDir = a.flags.dataDir
	cfg.ContentDir = a.flags.contentDir
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
