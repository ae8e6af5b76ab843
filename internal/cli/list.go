package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tusharj03/EMT-AI-Agent/internal/output"
)

func NewListCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded encounters",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)

			recordings := deps.App.Store.List()
			if len(recordings) == 0 {
				formatter.Info("No recordings found")
				return nil
			}

			formatter.RecordingListHeader()
			for _, rec := range recordings {
				formatter.RecordingListItem(rec)
			}
			return nil
		},
	}

	return cmd
}
