package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPlatform points the platform lookups at fixed directories for one test.
func stubPlatform(t *testing.T, home, userConfig string, err error) {
	t.Helper()
	saved := platformDir
	t.Cleanup(func() { platformDir = saved })
	platformDir.homeDir = func() (string, error) { return home, err }
	platformDir.userConfigDir = func() (string, error) { return userConfig, err }
}

func TestDefaultDirs(t *testing.T) {
	stubPlatform(t, "/home/nav", "/appdata", nil)

	tests := []struct {
		name    string
		xdgVar  string
		xdgVal  string
		resolve func() (string, error)
		linux   string
		other   string
	}{
		{
			name:    "config from XDG",
			xdgVar:  "XDG_CONFIG_HOME",
			xdgVal:  "/xdg/config",
			resolve: DefaultConfigDir,
			linux:   "/xdg/config/navsphere",
			other:   "/appdata/navsphere",
		},
		{
			name:    "config under home",
			xdgVar:  "XDG_CONFIG_HOME",
			resolve: DefaultConfigDir,
			linux:   "/home/nav/.config/navsphere",
			other:   "/appdata/navsphere",
		},
		{
			name:    "data from XDG",
			xdgVar:  "XDG_DATA_HOME",
			xdgVal:  "/xdg/data",
			resolve: DefaultDataDir,
			linux:   "/xdg/data/navsphere",
			other:   "/appdata/navsphere",
		},
		{
			name:    "data under home",
			xdgVar:  "XDG_DATA_HOME",
			resolve: DefaultDataDir,
			linux:   "/home/nav/.local/share/navsphere",
			other:   "/appdata/navsphere",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.xdgVar, tt.xdgVal)
			got, err := tt.resolve()
			require.NoError(t, err)

			want := tt.other
			if runtime.GOOS == "linux" {
				want = tt.linux
			}
			assert.Equal(t, filepath.FromSlash(want), got)
		})
	}
}

func TestDefaultDirs_LookupError(t *testing.T) {
	boom := errors.New("no home")
	stubPlatform(t, "", "", boom)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv(EnvConfigDir, "")

	_, err := ResolveConfigDir("")
	assert.ErrorIs(t, err, boom)
}

func TestResolveConfigDir(t *testing.T) {
	stubPlatform(t, "/home/nav", "/appdata", nil)
	t.Setenv("XDG_CONFIG_HOME", "")

	tests := []struct {
		name   string
		flag   string
		envVal string
		want   string // empty means the platform default
	}{
		{name: "flag wins over env", flag: "/explicit/config", envVal: "/env/config", want: "/explicit/config"},
		{name: "env wins when flag empty", envVal: "/env/config", want: "/env/config"},
		{name: "platform default when both empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvConfigDir, tt.envVal)
			got, err := ResolveConfigDir(tt.flag)
			require.NoError(t, err)

			if tt.want == "" {
				def, err := DefaultConfigDir()
				require.NoError(t, err)
				assert.Equal(t, def, got)
				return
			}
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestResolveLocalDirs(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	resolvers := []struct {
		name        string
		env         string
		defaultName string
		resolve     func(flag, configValue string) (string, error)
	}{
		{name: "data", env: EnvDataDir, defaultName: DefaultDataDirName, resolve: ResolveDataDir},
		{name: "content", env: EnvContentDir, defaultName: DefaultContentDirName, resolve: ResolveContentDir},
	}

	tests := []struct {
		name        string
		flag        string
		configValue string
		envVal      string
		want        string // empty means the CWD default
	}{
		{name: "flag wins over all", flag: "/flag/dir", configValue: "/config/dir", envVal: "/env/dir", want: "/flag/dir"},
		{name: "config.yaml wins over env", configValue: "/config/dir", envVal: "/env/dir", want: "/config/dir"},
		{name: "env wins when flag and config empty", envVal: "/env/dir", want: "/env/dir"},
		{name: "CWD default when all empty"},
	}

	for _, r := range resolvers {
		for _, tt := range tests {
			t.Run(r.name+"/"+tt.name, func(t *testing.T) {
				t.Setenv(r.env, tt.envVal)
				got, err := r.resolve(tt.flag, tt.configValue)
				require.NoError(t, err)

				want := filepath.FromSlash(tt.want)
				if tt.want == "" {
					want = filepath.Join(cwd, r.defaultName)
				}
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestResolveContentDir_IgnoresDataDirEnv(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Setenv(EnvDataDir, "/env/data")
	t.Setenv(EnvContentDir, "")

	got, err := ResolveContentDir("", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, DefaultContentDirName), got)

	data, err := ResolveDataDir("", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/env/data"), data)
}

func TestResolveContentDir_DistinctFromDataDir(t *testing.T) {
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvContentDir, "")

	data, err := ResolveDataDir("", "")
	require.NoError(t, err)
	content, err := ResolveContentDir("", "")
	require.NoError(t, err)
	assert.NotEqual(t, data, content, "the two stores never share a default root")
	assert.Equal(t, filepath.Dir(data), filepath.Dir(content))
}

func TestResolve_RelativeBecomesAbsolute(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		envVal  string
		resolve func() (string, error)
	}{
		{
			name:    "config flag",
			env:     EnvConfigDir,
			resolve: func() (string, error) { return ResolveConfigDir("relative/path") },
		},
		{
			name:    "config env",
			env:     EnvConfigDir,
			envVal:  "relative/env",
			resolve: func() (string, error) { return ResolveConfigDir("") },
		},
		{
			name:    "data flag",
			env:     EnvDataDir,
			resolve: func() (string, error) { return ResolveDataDir("relative/path", "") },
		},
		{
			name:    "content config value",
			env:     EnvContentDir,
			resolve: func() (string, error) { return ResolveContentDir("", "relative/config") },
		},
		{
			name:    "content env",
			env:     EnvContentDir,
			envVal:  "relative/content",
			resolve: func() (string, error) { return ResolveContentDir("", "") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.env, tt.envVal)
			got, err := tt.resolve()
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(got), "expected absolute path, got %s", got)
		})
	}
}
