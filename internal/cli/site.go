package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/navsphere/pkg/types"
)

func newSiteCmd(a *app) *cobra.Command {
	site := &cobra.Command{
		Use:   "site",
		Short: "Read and write the site configuration",
	}
	site.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the site configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := a.open()
				if err != nil {
					return err
				}
				defer st.Close()
				return writeJSON(cmd.OutOrStdout(), st.GetSiteConfig(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:     "set <file|->",
			Short:   "Store a site configuration JSON document",
			Example: `  echo '{"basic":{"title":"Links"},"appearance":{"theme":"dark"}}' | navsphere site set -`,
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var cfg types.SiteConfig
				if err := decodeInput(cmd, args[0], &cfg); err != nil {
					return err
				}

				st, err := a.open()
				if err != nil {
					return err
				}
				defer st.Close()

				ok, err := st.UpsertSiteConfig(cmd.Context(), cfg)
				if err != nil {
					return fmt.Errorf("save site config: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), map[string]bool{"success": ok})
			},
		},
	)
	return site
}
