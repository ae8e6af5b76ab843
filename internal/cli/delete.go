package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tusharj03/EMT-AI-Agent/internal/output"
)

func NewDeleteCmd(deps *Dependencies) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "delete [recording-id]",
		Short: "Delete a recording, or all recordings with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(os.Stdout)
			ctx := cmd.Context()

			if all {
				if err := deps.App.Store.DeleteAll(ctx); err != nil {
					return err
				}
				formatter.Success("All recordings deleted")
				return nil
			}

			if len(args) == 0 {
				formatter.Error("Provide a recording id or --all")
				return nil
			}
			if err := deps.App.Store.Delete(ctx, args[0]); err != nil {
				return err
			}
			formatter.Success("Recording deleted")
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Delete every recording")

	return cmd
}
