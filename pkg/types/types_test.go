package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigationItemUnmarshalDefaults(t *testing.T) {
	var data NavigationData
	err := json.Unmarshal([]byte(`{"navigationItems":[{"id":"1","title":"Tools",
		"items":[{"id":"1_1","title":"Repo","href":"https://x"}],
		"subCategories":[{"id":"1a","title":"Sub"}]}]}`), &data)
	require.NoError(t, err)
	require.Len(t, data.NavigationItems, 1)

	root := data.NavigationItems[0]
	assert.True(t, root.Enabled, "absent enabled decodes as true")
	require.Len(t, root.Items, 1)
	assert.True(t, root.Items[0].Enabled)

	require.Len(t, root.SubCategories, 1)
	sub := root.SubCategories[0]
	assert.True(t, sub.Enabled)
	assert.NotNil(t, sub.Items, "absent items decodes as empty")
	assert.NotNil(t, sub.SubCategories)
}

func TestNavigationItemUnmarshalExplicitDisabled(t *testing.T) {
	var item NavigationItem
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","title":"X","enabled":false,
		"items":[{"id":"r","title":"R","href":"h","enabled":false}]}`), &item))
	assert.False(t, item.Enabled)
	assert.False(t, item.Items[0].Enabled)
}

func TestSiteConfigNormalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SiteConfig
		want    SiteConfig
		wantErr error
	}{
		{
			name: "empty fields take defaults",
			cfg:  SiteConfig{},
			want: DefaultSiteConfig(),
		},
		{
			name: "explicit values kept",
			cfg: SiteConfig{
				Appearance: AppearanceConfig{Theme: ThemeDark},
				Navigation: NavigationConfig{LinkTarget: LinkTargetSelf},
			},
			want: SiteConfig{
				Appearance: AppearanceConfig{Theme: ThemeDark},
				Navigation: NavigationConfig{LinkTarget: LinkTargetSelf},
			},
		},
		{
			name:    "unknown theme",
			cfg:     SiteConfig{Appearance: AppearanceConfig{Theme: "sepia"}},
			wantErr: ErrInvalidTheme,
		},
		{
			name:    "unknown link target",
			cfg:     SiteConfig{Navigation: NavigationConfig{LinkTarget: "_top"}},
			wantErr: ErrInvalidLinkTarget,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Normalize()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.cfg)
		})
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("disk I/O error")

	storeErr := &StoreError{Op: "insert navigation item", Err: cause}
	assert.ErrorIs(t, storeErr, ErrStore)
	assert.ErrorIs(t, storeErr, cause)
	assert.NotErrorIs(t, storeErr, ErrPartialReplace)

	partial := &PartialReplaceError{Stage: "insert", Written: 2, Total: 5, Err: storeErr}
	wrapped := fmt.Errorf("replace: %w", partial)
	assert.ErrorIs(t, wrapped, ErrPartialReplace)
	assert.ErrorIs(t, wrapped, ErrStore)
	assert.ErrorIs(t, wrapped, cause)

	var pe *PartialReplaceError
	require.ErrorAs(t, wrapped, &pe)
	assert.Equal(t, 2, pe.Written)
	assert.Contains(t, pe.Error(), "2 of 5")

	assert.ErrorIs(t, ErrEmptyIDSet, ErrValidation)
	assert.NotErrorIs(t, ErrEmptyIDSet, ErrStore)
}

func TestValidateResourceMetadata(t *testing.T) {
	tests := []struct {
		name    string
		entries []ResourceMetadataEntry
		wantErr error
	}{
		{name: "empty log", entries: nil},
		{name: "unique ids", entries: []ResourceMetadataEntry{{ID: "a", Path: "a"}, {ID: "b", Path: "b"}}},
		{name: "missing id", entries: []ResourceMetadataEntry{{Path: "a"}}, wantErr: ErrMissingID},
		{name: "missing path", entries: []ResourceMetadataEntry{{ID: "a"}}, wantErr: ErrMissingPath},
		{name: "repeated id", entries: []ResourceMetadataEntry{{ID: "a", Path: "x"}, {ID: "a", Path: "y"}}, wantErr: ErrDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateResourceMetadata(tt.entries)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
