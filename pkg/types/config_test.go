package types

import (
	"errors"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "sqlite with empty DataDir is valid at config level",
			config:  Config{Backend: "sqlite", DataDir: ""},
			wantErr: nil,
		},
		{
			name:    "negative cache ttl is rejected",
			config:  Config{Backend: "sqlite", CacheTTL: -time.Second},
			wantErr: ErrCacheTTLNegative,
		},
		{
			name:    "file backend requires a content dir",
			config:  Config{Backend: "file"},
			wantErr: ErrContentDirEmpty,
		},
		{
			name:    "fallback requires a content dir",
			config:  Config{Backend: "sqlite", Fallback: true},
			wantErr: ErrContentDirEmpty,
		},
		{
			name:    "file backend with content dir",
			config:  Config{Backend: "file", ContentDir: "/tmp/content"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigEffectiveCacheTTL(t *testing.T) {
	if got := (Config{}).EffectiveCacheTTL(); got != DefaultCacheTTL {
		t.Errorf("expected default %v, got %v", DefaultCacheTTL, got)
	}
	if got := (Config{CacheTTL: 5 * time.Second}).EffectiveCacheTTL(); got != 5*time.Second {
		t.Errorf("expected 5s, got %v", got)
	}
}
