package cli

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/VladislavFirsov/claude-workflow/internal/cliconfig"
	"github.com/VladislavFirsov/claude-workflow/pkg/cli/internal/output"
	"github.com/spf13/cobra"
)

// contextJSON is the JSON projection of a saved context.
type contextJSON struct {
	RuntimeURL  string `json:"runtimeUrl"`
	Description string `json:"description,omitempty"`
}

func contextToJSON(ctx *cliconfig.Context) *contextJSON {
	return &contextJSON{
		RuntimeURL:  ctx.RuntimeURL,
		Description: ctx.Description,
	}
}

func contextsToJSON(contexts map[string]*cliconfig.Context) map[string]*contextJSON {
	result := make(map[string]*contextJSON, len(contexts))
	for name, ctx := range contexts {
		result[name] = contextToJSON(ctx)
	}
	return result
}

var contextCmd = &cobra.Command{
	Use:   "context",
	Short: "Manage saved runtime sidecar contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContextShow()
	},
}

var contextShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active context",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContextShow()
	},
}

func init() {
	rootCmd.AddCommand(contextCmd)
	contextCmd.AddCommand(contextShowCmd)
}

// runContextShow displays the active context, noting when the
// environment picked it instead of the saved current_context.
func runContextShow() error {
	cfg, err := cliconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	envContext := cliconfig.GetContextFromEnv()
	effectiveContext := cfg.CurrentContext
	envOverride := false

	if envContext != "" {
		effectiveContext = envContext
		envOverride = true
	}

	ctx := cfg.Contexts[effectiveContext]
	if ctx == nil {
		if envOverride {
			return fmt.Errorf("context %q (from %s) not found", envContext, cliconfig.EnvContext)
		}
		fmt.Println("No current context set")
		fmt.Println("\nRun 'workflowctl context add <name>' to create a context")
		return nil
	}

	if jsonOutput {
		result := struct {
			Name    string       `json:"name"`
			Context *contextJSON `json:"context"`
		}{
			Name:    effectiveContext,
			Context: contextToJSON(ctx),
		}
		return output.JSON(result)
	}

	fmt.Printf("Current context: %s", effectiveContext)
	if envOverride {
		fmt.Printf("  (from %s)", cliconfig.EnvContext)
	}
	fmt.Println()

	fmt.Printf("  Runtime URL:  %s\n", ctx.RuntimeURL)
	if envURL := cliconfig.GetRuntimeURLFromEnv(); envURL != "" {
		fmt.Printf("  Override:     %s  (from %s)\n", envURL, cliconfig.EnvRuntimeURL)
	}
	if ctx.Description != "" {
		fmt.Printf("  Description:  %s\n", ctx.Description)
	}

	fmt.Println("\nRun 'workflowctl context list' to see all contexts")
	return nil
}

var contextUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Switch to a different context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := cliconfig.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := cfg.SetCurrentContext(name); err != nil {
			var available []string
			for n := range cfg.Contexts {
				available = append(available, n)
			}
			sort.Strings(available)
			return fmt.Errorf("%w\n\nAvailable contexts: %s", err, strings.Join(available, ", "))
		}

		if err := cliconfig.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Switched to context %q\n", name)
		fmt.Printf("  Runtime URL: %s\n", cfg.Contexts[name].RuntimeURL)
		return nil
	},
}

func init() {
	contextCmd.AddCommand(contextUseCmd)
}

var (
	contextAddRuntimeURL  string
	contextAddDescription string
	contextAddUseCurrent  bool
)

var contextAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new context",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) > 0 {
			name = args[0]
		}

		if name == "" {
			return errors.New("context name cannot be empty")
		}
		if len(name) > 64 {
			return errors.New("context name cannot exceed 64 characters")
		}
		if strings.ContainsAny(name, " \t\n/\\") {
			return errors.New("context name cannot contain whitespace or path separators")
		}

		// If the URL was not provided, prompt interactively
		if contextAddRuntimeURL == "" {
			fmt.Printf("Adding context %q\n", name)
			fmt.Print("Runtime URL (e.g., http://localhost:8080): ")
			reader := bufio.NewReader(os.Stdin)
			input, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			contextAddRuntimeURL = strings.TrimSpace(input)
			if contextAddRuntimeURL == "" {
				return errors.New("runtime URL is required")
			}
		}

		parsedURL, err := url.Parse(contextAddRuntimeURL)
		if err != nil {
			return fmt.Errorf("invalid runtime URL: %w", err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return errors.New("invalid runtime URL: must start with http:// or https://")
		}
		if parsedURL.Host == "" {
			return errors.New("invalid runtime URL: missing host")
		}
		if parsedURL.User != nil {
			return errors.New("invalid runtime URL: embedded credentials (user:pass@host) are not allowed")
		}

		cfg, err := cliconfig.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := &cliconfig.Context{
			RuntimeURL:  contextAddRuntimeURL,
			Description: contextAddDescription,
		}

		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		if contextAddUseCurrent {
			cfg.CurrentContext = name
		}

		if err := cliconfig.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		if jsonOutput {
			result := struct {
				Name    string       `json:"name"`
				Context *contextJSON `json:"context"`
				Current bool         `json:"current"`
			}{
				Name:    name,
				Context: contextToJSON(ctx),
				Current: cfg.CurrentContext == name,
			}
			return output.JSON(result)
		}

		fmt.Printf("Added context %q\n", name)
		if contextAddUseCurrent {
			fmt.Printf("Switched to context %q\n", name)
		}
		return nil
	},
}

func init() {
	contextAddCmd.Flags().StringVarP(&contextAddRuntimeURL, "url", "u", "", "Runtime sidecar URL (e.g., http://localhost:8080)")
	contextAddCmd.Flags().StringVarP(&contextAddDescription, "description", "d", "", "Description for this context")
	contextAddCmd.Flags().BoolVar(&contextAddUseCurrent, "use", false, "Switch to this context after adding")
	contextCmd.AddCommand(contextAddCmd)
}

var contextListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cliconfig.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if jsonOutput {
			result := struct {
				CurrentContext string                  `json:"currentContext"`
				Contexts       map[string]*contextJSON `json:"contexts"`
			}{
				CurrentContext: cfg.CurrentContext,
				Contexts:       contextsToJSON(cfg.Contexts),
			}
			return output.JSON(result)
		}

		if len(cfg.Contexts) == 0 {
			fmt.Println("No contexts configured")
			fmt.Println("\nRun 'workflowctl context add <name>' to create a context")
			return nil
		}

		names := make([]string, 0, len(cfg.Contexts))
		for name := range cfg.Contexts {
			names = append(names, name)
		}
		sort.Strings(names)

		w := output.Table()
		_, _ = fmt.Fprintln(w, "CURRENT\tNAME\tRUNTIME URL\tDESCRIPTION")

		for _, name := range names {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}

			description := ctx.Description
			if len(description) > 30 {
				description = description[:27] + "..."
			}
			if description == "" {
				description = "-"
			}

			runtimeURL := ctx.RuntimeURL
			if len(runtimeURL) > 35 {
				runtimeURL = runtimeURL[:32] + "..."
			}

			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", current, name, runtimeURL, description)
		}

		return w.Flush()
	},
}

func init() {
	contextCmd.AddCommand(contextListCmd)
}

var contextRemoveForce bool

var contextRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a context",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg, err := cliconfig.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx, exists := cfg.Contexts[name]
		if !exists {
			return fmt.Errorf("context not found: %s", name)
		}

		// Confirm unless forced
		if !contextRemoveForce {
			fmt.Printf("Remove context %q?\n", name)
			fmt.Printf("  Runtime URL: %s\n", ctx.RuntimeURL)
			fmt.Print("Type 'yes' to confirm: ")

			reader := bufio.NewReader(os.Stdin)
			input, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			if strings.TrimSpace(input) != "yes" {
				fmt.Println("Aborted")
				return nil
			}
		}

		if err := cfg.RemoveContext(name); err != nil {
			return err
		}

		if err := cliconfig.Save(cfg); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Removed context %q\n", name)
		return nil
	},
}

func init() {
	contextRemoveCmd.Flags().BoolVarP(&contextRemoveForce, "force", "f", false, "Remove without confirmation")
	contextCmd.AddCommand(contextRemoveCmd)
}
