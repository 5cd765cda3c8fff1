package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/VladislavFirsov/claude-workflow/pkg/runtime"
	"github.com/ohler55/ojg/jp"
	"github.com/spf13/cobra"
)

var (
	statusWatch    bool
	statusInterval time.Duration
	statusJSONPath string
)

var statusCmd = &cobra.Command{
	Use:   "status <run-id>",
	Short: "Show the current status of a run",
	Long: `Fetch and print the status of a run.

With --watch the command polls until the run reaches a terminal state.
With --jsonpath the raw status document is queried instead of printed,
one line per match; strings print bare, everything else prints as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := args[0]
		client := newRuntimeClient()

		if statusWatch {
			// A failed run is still a successfully reported status, so
			// unlike 'run --watch' the exit code stays zero.
			_, err := watchRun(cmd.Context(), client, runID, statusInterval)
			return err
		}

		doc, err := client.GetStatus(cmd.Context(), runID)
		if err != nil {
			return commandError(err)
		}

		if statusJSONPath != "" {
			return printJSONPath(doc, statusJSONPath)
		}

		_, err = renderRun(doc)
		return err
	},
}

// printJSONPath evaluates a JSONPath expression against the run document
// and prints every match.
func printJSONPath(doc runtime.Document, path string) error {
	expr, err := jp.ParseString(path)
	if err != nil {
		return fmt.Errorf("invalid JSONPath expression %q: %w", path, err)
	}

	results := expr.Get(map[string]any(doc))
	if len(results) == 0 {
		return errors.New("no values match " + path)
	}

	for _, result := range results {
		if s, ok := result.(string); ok {
			fmt.Println(s)
			continue
		}
		data, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to encode match: %w", err)
		}
		fmt.Println(string(data))
	}
	return nil
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Poll the run until it finishes")
	statusCmd.Flags().DurationVar(&statusInterval, "interval", 2*time.Second, "Poll interval used with --watch")
	statusCmd.Flags().StringVar(&statusJSONPath, "jsonpath", "", "JSONPath expression to extract from the status document")
	rootCmd.AddCommand(statusCmd)
}
