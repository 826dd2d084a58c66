package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/navsphere/pkg/types"
)

// uploadResult is the assets add command's JSON output.
type uploadResult struct {
	Success  bool                        `json:"success"`
	ImageURL string                      `json:"imageUrl"`
	Metadata types.ResourceMetadataEntry `json:"metadata"`
}

func newAssetsCmd(a *app) *cobra.Command {
	assets := &cobra.Command{
		Use:   "assets",
		Short: "Upload assets and manage their metadata",
	}
	assets.AddCommand(
		&cobra.Command{
			Use:   "add <file>",
			Short: "Commit a file to the file store and record its metadata",
			Long: `add commits the file as public/assets/img_<unix ms>.<ext> in the file store,
then records the asset path and commit id in the configured backend.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := readInput(cmd, args[0])
				if err != nil {
					return err
				}

				st, err := a.openFiles()
				if err != nil {
					return err
				}
				defer st.Close()

				ctx := cmd.Context()
				asset, err := st.Files.UploadAsset(ctx, data, filepath.Ext(args[0]))
				if err != nil {
					return fmt.Errorf("upload asset: %w", err)
				}
				entry, err := st.AppendResourceMetadata(ctx, asset.Path, asset.Commit.ID)
				if err != nil {
					return fmt.Errorf("record asset: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), uploadResult{Success: true, ImageURL: asset.Path, Metadata: entry})
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List asset metadata, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := a.open()
				if err != nil {
					return err
				}
				defer st.Close()

				entries, err := st.ListResourceMetadata(cmd.Context())
				if err != nil {
					return fmt.Errorf("list assets: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), types.ResourceMetadataDocument{Metadata: entries})
			},
		},
		&cobra.Command{
			Use:   "delete <id>...",
			Short: "Delete asset metadata by id",
			Long:  "delete removes metadata entries only; committed asset files stay in the file store history.",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := a.open()
				if err != nil {
					return err
				}
				defer st.Close()

				res, err := st.DeleteResourceMetadata(cmd.Context(), args)
				if err != nil {
					return fmt.Errorf("delete assets: %w", err)
				}
				return writeJSON(cmd.OutOrStdout(), res)
			},
		},
	)
	return assets
}
