package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for opening a Service.
type Config struct {
	Backend    string        `json:"backend" yaml:"backend"`
	DataDir    string        `json:"data_dir" yaml:"data_dir"`
	ContentDir string        `json:"content_dir" yaml:"content_dir"`
	CacheTTL   time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
	Fallback   bool          `json:"fallback" yaml:"fallback"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// DefaultCacheTTL is the read cache lifetime when Config.CacheTTL is zero.
const DefaultCacheTTL = 30 * time.Second

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrCacheTTLNegative = errors.New("cache ttl must not be negative")
	ErrContentDirEmpty  = errors.New("content dir is required for the file backend or fallback")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendFile:   true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.CacheTTL < 0 {
		return ErrCacheTTLNegative
	}
	if (c.Backend == BackendFile || c.Fallback) && c.ContentDir == "" {
		return ErrContentDirEmpty
	}
	return nil
}

// EffectiveCacheTTL returns CacheTTL, or DefaultCacheTTL when unset.
func (c Config) EffectiveCacheTTL() time.Duration {
	if c.CacheTTL == 0 {
		return DefaultCacheTTL
	}
	return c.CacheTTL
}
