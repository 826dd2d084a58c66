package sqlite

import (
	"context"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/pkg/types"
)

const (
	siteConfigColumns = "title, description, keywords, logo, favicon, theme, link_target"

	selectSiteConfig = "SELECT " + siteConfigColumns + " FROM site_config WHERE id = 1"
	existsSiteConfig = "SELECT 1 AS present FROM site_config WHERE id = 1"

	// The insert turns into an update when another writer created the row
	// after the existence check.
	insertSiteConfig = "INSERT INTO site_config (id, " + siteConfigColumns + ", updated_at) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)" +
		` ON CONFLICT(id) DO UPDATE SET title = excluded.title, description = excluded.description,
    keywords = excluded.keywords, logo = excluded.logo, favicon = excluded.favicon, theme = excluded.theme,
    link_target = excluded.link_target, updated_at = excluded.updated_at`
	updateSiteConfig = `UPDATE site_config SET title = ?, description = ?, keywords = ?, logo = ?,
    favicon = ?, theme = ?, link_target = ?, updated_at = ? WHERE id = 1`
)

func decodeSiteConfig(r record) types.SiteConfig {
	cfg := types.SiteConfig{
		Basic: types.BasicConfig{
			Title:       r.str("title"),
			Description: r.str("description"),
			Keywords:    r.str("keywords"),
		},
		Appearance: types.AppearanceConfig{
			Logo:    r.str("logo"),
			Favicon: r.str("favicon"),
			Theme:   r.str("theme"),
		},
		Navigation: types.NavigationConfig{
			LinkTarget: r.str("link_target"),
		},
	}
	if cfg.Appearance.Theme == "" {
		cfg.Appearance.Theme = types.ThemeSystem
	}
	if cfg.Navigation.LinkTarget == "" {
		cfg.Navigation.LinkTarget = types.LinkTargetBlank
	}
	return cfg
}

// SiteConfig returns the stored configuration, or DefaultSiteConfig when the
// row has never been written.
func (s *Store) SiteConfig(ctx context.Context) (types.SiteConfig, error) {
	rows, err := query(ctx, s, "select site config", decodeSiteConfig, selectSiteConfig)
	if err != nil {
		return types.SiteConfig{}, err
	}
	if len(rows) == 0 {
		return types.DefaultSiteConfig(), nil
	}
	return rows[0], nil
}

// UpsertSiteConfig writes the singleton row, updating it when present and
// inserting it otherwise. At most one row ever exists.
func (s *Store) UpsertSiteConfig(ctx context.Context, cfg types.SiteConfig) error {
	if err := cfg.Normalize(); err != nil {
		return err
	}

	existing, err := queryUncached(ctx, s, "check site config", existsSiteConfig)
	if err != nil {
		return err
	}

	stmt, op := insertSiteConfig, "insert site config"
	if len(existing) > 0 {
		stmt, op = updateSiteConfig, "update site config"
	}
	_, err = mutate(ctx, s, op, stmt,
		cfg.Basic.Title, cfg.Basic.Description, cfg.Basic.Keywords,
		cfg.Appearance.Logo, cfg.Appearance.Favicon, cfg.Appearance.Theme,
		cfg.Navigation.LinkTarget, s.timestamp())
	if err != nil {
		return err
	}

	s.log.Debug("site config saved", zap.String("op", op))
	return nil
}
