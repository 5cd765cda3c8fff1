package cli

import (
	"errors"
	"time"

	"github.com/VladislavFirsov/claude-workflow/pkg/cli/internal/output"
	"github.com/VladislavFirsov/claude-workflow/pkg/workflow"
	"github.com/spf13/cobra"
)

var (
	runFile     string
	runRunID    string
	runWatch    bool
	runInterval time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load a workflow definition and start a run",
	Long: `Load a workflow definition, validate it, convert it into a start-run
request, and submit it to the runtime sidecar.

With --watch the command polls the run until it reaches a terminal state
and exits non-zero unless the run completed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Load validates; anything structurally broken stops here.
		def, err := workflow.Load(runFile)
		if err != nil {
			return err
		}

		// Unknown roles still run, just on the default model. Usually a typo.
		for _, step := range def.Workflow.Steps {
			if _, known := def.ModelForRole(step.Role); !known {
				output.Warn("unknown role %q, using default model", step.Role)
			}
		}

		client := newRuntimeClient()
		doc, err := client.StartRun(cmd.Context(), def.StartRequest(runRunID))
		if err != nil {
			return commandError(err)
		}
		log.Info("run started", "workflow", def.Workflow.Name, "file", runFile)

		view, err := renderRun(doc)
		if err != nil {
			return err
		}
		if !runWatch {
			return nil
		}

		final, err := watchRun(cmd.Context(), client, view.ID, runInterval)
		if err != nil {
			return err
		}
		if final.State != "completed" {
			return errors.New("run " + final.State)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runFile, "file", "f", "", "Path to a workflow definition (JSON or YAML)")
	runCmd.Flags().StringVar(&runRunID, "id", "", "Run ID (default: the workflow name)")
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "Poll the run until it finishes")
	runCmd.Flags().DurationVar(&runInterval, "interval", 2*time.Second, "Poll interval used with --watch")
	_ = runCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(runCmd)
}
