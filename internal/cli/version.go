package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/navsphere/pkg/navsphere"
)

const modulePath = "github.com/mesh-intelligence/navsphere"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the navsphere version",
		Args:  cobra.NoArgs,
		// version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "navsphere v%s\nmodule: %s\n", navsphere.Version, modulePath)
			return nil
		},
	}
}
