package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/internal/tree"
	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// migrateReport is the migrate command's JSON output.
type migrateReport struct {
	Success          bool `json:"success"`
	Categories       int  `json:"categories"`
	Resources        int  `json:"resources"`
	ResourceMetadata int  `json:"resourceMetadata"`

	Reset []string `json:"reset,omitempty"`
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Copy all data from the file store into the SQLite database",
		Long: `migrate copies the full navigation tree (disabled entries included), the site
configuration, and the asset metadata from the file store into SQLite. Existing
SQLite data is replaced. Metadata ids are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.settings.Store
			cfg.Backend = types.BackendSQLite
			cfg.Fallback = true

			st, err := a.openWith(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			report, err := migrate(cmd.Context(), st.Files, st.SQLite)
			if err != nil {
				return err
			}
			a.log.Info("migration complete",
				zap.Int("categories", report.Categories),
				zap.Int("resources", report.Resources),
				zap.Int("resource_metadata", report.ResourceMetadata),
				zap.Strings("reset", report.Reset),
			)
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}

// migrate copies every document from src into dst. All three documents are
// read and checked before the first write, so a document dst would reject
// stops the migration with dst unchanged.
func migrate(ctx context.Context, src, dst types.Backend) (migrateReport, error) {
	var report migrateReport

	nav, err := src.ExportNavigationTree(ctx)
	if err != nil {
		return report, fmt.Errorf("read navigation: %w", err)
	}
	if _, _, err := tree.Flatten(nav.NavigationItems); err != nil {
		return report, fmt.Errorf("check navigation: %w", err)
	}

	site, err := src.SiteConfig(ctx)
	if err != nil {
		return report, fmt.Errorf("read site config: %w", err)
	}
	site, report.Reset = resetUnknownSiteValues(site)

	entries, err := src.ListResourceMetadata(ctx)
	if err != nil {
		return report, fmt.Errorf("read resource metadata: %w", err)
	}
	if err := types.ValidateResourceMetadata(entries); err != nil {
		return report, fmt.Errorf("check resource metadata: %w", err)
	}

	if err := dst.ReplaceNavigationTree(ctx, nav); err != nil {
		return report, fmt.Errorf("write navigation: %w", err)
	}
	report.Categories, report.Resources = countTree(nav.NavigationItems)

	if err := dst.UpsertSiteConfig(ctx, site); err != nil {
		return report, fmt.Errorf("write site config: %w", err)
	}

	if err := dst.ReplaceResourceMetadata(ctx, entries); err != nil {
		return report, fmt.Errorf("write resource metadata: %w", err)
	}
	report.ResourceMetadata = len(entries)
	report.Success = true
	return report, nil
}

// resetUnknownSiteValues replaces a theme or link target the database would
// reject with its default, and names the fields it changed. Older site
// documents stored these as free text.
func resetUnknownSiteValues(site types.SiteConfig) (types.SiteConfig, []string) {
	var reset []string
	if t := site.Appearance.Theme; t != "" && !types.IsValidTheme(t) {
		site.Appearance.Theme = types.ThemeSystem
		reset = append(reset, "appearance.theme")
	}
	if lt := site.Navigation.LinkTarget; lt != "" && !types.IsValidLinkTarget(lt) {
		site.Navigation.LinkTarget = types.LinkTargetBlank
		reset = append(reset, "navigation.linkTarget")
	}
	return site, reset
}

func countTree(nodes []types.NavigationItem) (categories, resources int) {
	for _, n := range nodes {
		c, r := countTree(n.SubCategories)
		categories += 1 + c
		resources += len(n.Items) + r
	}
	return categories, resources
}
