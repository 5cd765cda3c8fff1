package cli

import (
	"errors"
	"fmt"

	"github.com/VladislavFirsov/claude-workflow/pkg/cli/internal/output"
	"github.com/VladislavFirsov/claude-workflow/pkg/workflow"
	"github.com/spf13/cobra"
)

// validateResult is one file's outcome for --json output.
type validateResult struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate <pattern>...",
	Short: "Validate workflow definition files",
	Long: `Check workflow definition files against the schema and the semantic
rules: unique step IDs, resolvable and acyclic dependencies, and the
role requirements of the workflow type.

Patterns support ** for recursive matching:

  workflowctl validate 'workflows/**/*.yaml'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var paths []string
		for _, pattern := range args {
			matches, err := workflow.Glob(pattern)
			if err != nil {
				return err
			}
			paths = append(paths, matches...)
		}
		if len(paths) == 0 {
			return errors.New("no workflow files matched")
		}

		results := make([]validateResult, 0, len(paths))
		invalid := 0
		for _, path := range paths {
			if err := validateFile(path); err != nil {
				invalid++
				results = append(results, validateResult{Path: path, Error: err.Error()})
				if !jsonOutput {
					fmt.Printf("%s: %v\n", path, err)
				}
				continue
			}
			results = append(results, validateResult{Path: path, Valid: true})
			if !jsonOutput {
				fmt.Printf("%s: ok\n", path)
			}
		}

		if jsonOutput {
			if err := output.JSON(results); err != nil {
				return err
			}
		}
		if invalid > 0 {
			return fmt.Errorf("%d of %d files invalid", invalid, len(paths))
		}
		return nil
	},
}

// validateFile runs the schema lint first so structural problems surface
// with JSON pointers; Load then applies the semantic checks.
func validateFile(path string) error {
	if err := workflow.Lint(path); err != nil {
		return err
	}
	_, err := workflow.Load(path)
	return err
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
