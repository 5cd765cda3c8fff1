package cli

import (
	"fmt"

	"github.com/VladislavFirsov/claude-workflow/pkg/cli/internal/output"
	"github.com/spf13/cobra"
)

var abortCmd = &cobra.Command{
	Use:   "abort <run-id>",
	Short: "Request cancellation of a run",
	Long: `Ask the sidecar to cancel a run. The sidecar winds the run down
asynchronously; poll with 'workflowctl status' to see it reach the
aborted state. Aborting a run that is already winding down is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := args[0]

		client := newRuntimeClient()
		if err := client.AbortRun(cmd.Context(), runID); err != nil {
			return commandError(err)
		}
		log.Info("abort requested", "run_id", runID)

		if jsonOutput {
			return output.JSON(map[string]any{"run_id": runID, "abort_requested": true})
		}
		fmt.Printf("abort requested run_id=%s\n", runID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(abortCmd)
}
