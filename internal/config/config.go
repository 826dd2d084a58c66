// Package config loads navsphere settings from config.yaml and the
// environment with viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/navsphere/internal/logging"
	"github.com/mesh-intelligence/navsphere/pkg/types"
)

const (
	fileName = "config"
	fileType = "yaml"
	fileExt  = "config.yaml"

	envPrefix = "NAVSPHERE"
)

// Config keys.
const (
	KeyBackend    = "backend"
	KeyDataDir    = "data_dir"
	KeyContentDir = "content_dir"
	KeyCacheTTL   = "cache_ttl"
	KeyFallback   = "fallback"
	KeyLogLevel   = "log.level"
	KeyLogOutput  = "log.output"
	KeyLogPath    = "log.path"
)

// DefaultYAML is written to config.yaml on first run.
const DefaultYAML = `# navsphere configuration

# Storage backend: sqlite or file.
backend: sqlite

# SQLite directory and file commit store root. Relative paths resolve
# against the working directory; flags override both.
# data_dir:
# content_dir:

# Read cache lifetime for the sqlite backend.
cache_ttl: 30s

# Serve reads from the file store when the sqlite backend fails.
fallback: false

log:
  level: warn
  output: stderr
  # path: ./logs
`

// Settings is the decoded configuration.
type Settings struct {
	Store types.Config
	Log   logging.Conf
}

// Path returns the config.yaml location inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, fileExt)
}

// Load reads config.yaml from configDir, creating the directory and a
// default file on first run. NAVSPHERE_* variables override file values,
// e.g. NAVSPHERE_LOG_LEVEL for log.level.
func Load(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(fileName)
	v.SetConfigType(fileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func setDefaults(v *viper.Viper) {
	d := logging.Defaults()
	v.SetDefault(KeyBackend, types.BackendSQLite)
	v.SetDefault(KeyDataDir, "")
	v.SetDefault(KeyContentDir, "")
	v.SetDefault(KeyCacheTTL, types.DefaultCacheTTL)
	v.SetDefault(KeyFallback, false)
	v.SetDefault(KeyLogLevel, d.Level)
	v.SetDefault(KeyLogOutput, d.Output)
	v.SetDefault(KeyLogPath, d.Path)
}

// Decode converts loaded values to Settings. Directory values are returned
// as written; callers resolve them with the paths package.
func Decode(v *viper.Viper) Settings {
	log := logging.Defaults()
	log.Level = v.GetString(KeyLogLevel)
	log.Output = v.GetString(KeyLogOutput)
	log.Path = v.GetString(KeyLogPath)

	return Settings{
		Store: types.Config{
			Backend:    strings.ToLower(strings.TrimSpace(v.GetString(KeyBackend))),
			DataDir:    v.GetString(KeyDataDir),
			ContentDir: v.GetString(KeyContentDir),
			CacheTTL:   v.GetDuration(KeyCacheTTL),
			Fallback:   v.GetBool(KeyFallback),
		},
		Log: log,
	}
}

func ensureDefaultFile(configDir string) error {
	path := Path(configDir)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(DefaultYAML), 0o644)
}
