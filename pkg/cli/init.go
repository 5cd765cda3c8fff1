package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/VladislavFirsov/claude-workflow/pkg/workflow"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	initOutput      string
	initForce       bool
	initInteractive bool
)

// initTemplate is the starter definition: the canonical spec workflow
// with the four required roles and explicit policy defaults.
const initTemplate = `# workflow.yaml
# Generated by: workflowctl init
#
# Validate: workflowctl validate workflow.yaml
# Run:      workflowctl run --file workflow.yaml

workflow:
  name: my-workflow
  type: spec-default
  steps:
    - id: analyze
      role: spec-analyst
      outputs:
        - requirements.md
    - id: design
      role: spec-architect
      depends_on:
        - analyze
      outputs:
        - architecture.md
    - id: implement
      role: spec-developer
      depends_on:
        - design
    - id: validate
      role: spec-validator
      depends_on:
        - implement
  policy:
    timeout_ms: 300000
    max_parallelism: 1
    budget_limit:
      amount: 10.0
      currency: USD
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter workflow definition",
	Long: `Create a workflow definition file with the canonical role chain:
analyze, design, implement, validate.

Interactive mode prompts for the workflow name and type instead of
writing the fixed starter.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(initOutput); err == nil && !initForce {
			return fmt.Errorf("file already exists: %s\n\nUse --force to overwrite", initOutput)
		}

		data := []byte(initTemplate)
		if initInteractive {
			var err error
			data, err = runInteractiveInit()
			if err != nil {
				return err
			}
		}

		if err := os.WriteFile(initOutput, data, 0o644); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}

		fmt.Printf("Created %s\n", initOutput)
		fmt.Println()
		fmt.Println("Next steps:")
		fmt.Printf("  workflowctl validate %s\n", initOutput)
		fmt.Printf("  workflowctl run --file %s --watch\n", initOutput)
		return nil
	},
}

// runInteractiveInit prompts for the workflow shape and renders it as
// YAML with the same header the static template carries.
func runInteractiveInit() ([]byte, error) {
	name := "my-workflow"
	workflowType := workflow.TypeSpecDefault
	withPolicy := true

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Workflow name").
				Placeholder("my-feature").
				Value(&name).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Workflow type").
				Options(
					huh.NewOption("spec-default (canonical role chain)", workflow.TypeSpecDefault),
					huh.NewOption("custom (no role checks)", workflow.TypeCustom),
				).
				Value(&workflowType),
			huh.NewConfirm().
				Title("Include an execution policy block?").
				Value(&withPolicy),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}

	def := &workflow.Definition{
		Workflow: workflow.Workflow{
			Name:  name,
			Type:  workflowType,
			Steps: starterSteps(),
		},
	}
	if withPolicy {
		def.Workflow.Policy = &workflow.Policy{
			TimeoutMS:      workflow.DefaultTimeoutMS,
			MaxParallelism: workflow.DefaultMaxParallelism,
			BudgetLimit: &workflow.BudgetLimit{
				Amount:   workflow.DefaultBudgetAmount,
				Currency: workflow.DefaultBudgetCurrency,
			},
		}
	}

	body, err := yaml.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("failed to generate YAML: %w", err)
	}

	header := fmt.Sprintf(`# %s
# Generated by: workflowctl init
#
# Validate: workflowctl validate %s
# Run:      workflowctl run --file %s

`, initOutput, initOutput, initOutput)
	return append([]byte(header), body...), nil
}

// starterSteps returns the canonical analyze/design/implement/validate
// chain.
func starterSteps() []workflow.Step {
	return []workflow.Step{
		{ID: "analyze", Role: string(workflow.RoleSpecAnalyst), Outputs: []string{"requirements.md"}},
		{ID: "design", Role: string(workflow.RoleSpecArchitect), DependsOn: []string{"analyze"}, Outputs: []string{"architecture.md"}},
		{ID: "implement", Role: string(workflow.RoleSpecDeveloper), DependsOn: []string{"design"}},
		{ID: "validate", Role: string(workflow.RoleSpecValidator), DependsOn: []string{"implement"}},
	}
}

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "workflow.yaml", "Output filename")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
	initCmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Prompt for the workflow shape")
	rootCmd.AddCommand(initCmd)
}
