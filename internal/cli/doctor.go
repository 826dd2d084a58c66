package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/navsphere/internal/filestore"
	"github.com/mesh-intelligence/navsphere/internal/sqlite"
)

// doctorReport is the doctor command's JSON output.
type doctorReport struct {
	Backend  string            `json:"backend"`
	SQLite   *sqlite.Health    `json:"sqlite,omitempty"`
	FileHead *filestore.Commit `json:"fileHead,omitempty"`
}

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the configured storage answers",
		Long:  "doctor attaches the configured backends, pings the SQLite database and\nreports row counts per table, and reports the file store's latest commit.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.open()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			report := doctorReport{Backend: a.settings.Store.Backend}
			if st.SQLite != nil {
				h, err := st.SQLite.Ping(ctx)
				if err != nil {
					return fmt.Errorf("sqlite: %w", err)
				}
				report.SQLite = &h
			}
			if st.Files != nil {
				head, err := st.Files.Head(ctx)
				if err != nil {
					return fmt.Errorf("file store: %w", err)
				}
				report.FileHead = &head
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}
