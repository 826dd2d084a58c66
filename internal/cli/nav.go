package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/navsphere/pkg/types"
)

func newNavCmd(a *app) *cobra.Command {
	nav := &cobra.Command{
		Use:   "nav",
		Short: "Read and replace the navigation tree",
	}
	nav.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the public navigation tree (enabled entries only)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := a.open()
				if err != nil {
					return err
				}
				defer st.Close()
				return writeJSON(cmd.OutOrStdout(), st.GetNavigationTree(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "export",
			Short: "Print the full navigation tree including disabled entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := a.open()
				if err != nil {
					return err
				}
				defer st.Close()

				data, err := st.Primary().ExportNavigationTree(cmd.Context())
				if err != nil {
					return fmt.Errorf("export navigation: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), data)
			},
		},
		&cobra.Command{
			Use:   "replace <file|->",
			Short: "Replace the navigation tree with a JSON document",
			Long: `replace validates the document, then deletes the stored tree and writes the
new one. If the SQLite backend fails part way the tree is incomplete; run the
same replace again to repair it.`,
			Example: "  navsphere nav replace navigation.json\n  cat navigation.json | navsphere nav replace -",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var data types.NavigationData
				if err := decodeInput(cmd, args[0], &data); err != nil {
					return err
				}
				return a.replaceNavigation(cmd, data)
			},
		},
		&cobra.Command{
			Use:   "restore",
			Short: "Replace the navigation tree with navigation-default.json from the file store",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := a.openFiles()
				if err != nil {
					return err
				}
				data, err := st.Files.DefaultNavigation(cmd.Context())
				st.Close()
				if err != nil {
					return fmt.Errorf("read default navigation: %w", err)
				}
				return a.replaceNavigation(cmd, data)
			},
		},
	)
	return nav
}

func (a *app) replaceNavigation(cmd *cobra.Command, data types.NavigationData) error {
	st, err := a.open()
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := st.ReplaceNavigationTree(cmd.Context(), data)
	if err != nil {
		var partial *types.PartialReplaceError
		if errors.As(err, &partial) {
			a.log.Error("navigation left incomplete", zap.Int("written", partial.Written), zap.Int("total", partial.Total))
			return fmt.Errorf("%w; run the replace again to repair the tree", err)
		}
		return fmt.Errorf("replace navigation: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), res)
}
