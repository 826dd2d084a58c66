package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mesh-intelligence/navsphere/pkg/types"
)

func TestOpen_SelectsBackends(t *testing.T) {
	tests := []struct {
		name       string
		config     func(dir string) types.Config
		wantSQLite bool
		wantFiles  bool
	}{
		{
			name: "sqlite only",
			config: func(dir string) types.Config {
				return types.Config{Backend: types.BackendSQLite, DataDir: dir}
			},
			wantSQLite: true,
		},
		{
			name: "sqlite with file fallback",
			config: func(dir string) types.Config {
				return types.Config{Backend: types.BackendSQLite, DataDir: dir, ContentDir: dir + "/content", Fallback: true}
			},
			wantSQLite: true,
			wantFiles:  true,
		},
		{
			name: "file only",
			config: func(dir string) types.Config {
				return types.Config{Backend: types.BackendFile, ContentDir: dir}
			},
			wantFiles: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := Open(tt.config(t.TempDir()), zaptest.NewLogger(t))
			require.NoError(t, err)
			defer st.Close()

			assert.Equal(t, tt.wantSQLite, st.SQLite != nil)
			assert.Equal(t, tt.wantFiles, st.Files != nil)
			assert.Equal(t, tt.wantSQLite && tt.wantFiles, st.Fallback() != nil)
		})
	}
}

func TestOpen_InvalidConfig(t *testing.T) {
	_, err := Open(types.Config{Backend: types.BackendFile}, nil)
	assert.ErrorIs(t, err, types.ErrContentDirEmpty)
}

// A detached primary behaves like a failed database: reads come from the
// file store, writes fail.
func TestOpen_FallbackServesReads(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(types.Config{
		Backend:    types.BackendSQLite,
		DataDir:    dir,
		ContentDir: dir + "/content",
		Fallback:   true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	require.NoError(t, st.Files.UpsertSiteConfig(ctx, types.SiteConfig{Basic: types.BasicConfig{Title: "from files"}}))
	require.NoError(t, st.Files.ReplaceNavigationTree(ctx, types.NavigationData{
		NavigationItems: []types.NavigationItem{{ID: "f", Title: "F", Enabled: true}},
	}))

	require.NoError(t, st.SQLite.Detach())

	assert.Equal(t, "from files", st.GetSiteConfig(ctx).Basic.Title)
	nav := st.GetNavigationTree(ctx)
	require.Len(t, nav.NavigationItems, 1)
	assert.Equal(t, "f", nav.NavigationItems[0].ID)

	_, err = st.UpsertSiteConfig(ctx, types.SiteConfig{})
	assert.ErrorIs(t, err, types.ErrDetached)
}
