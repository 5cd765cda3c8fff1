package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/VladislavFirsov/claude-workflow/internal/cliconfig"
	"github.com/VladislavFirsov/claude-workflow/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	// Persistent flags available to all subcommands
	runtimeURL string
	jsonOutput bool
	verbose    bool

	// log is rebuilt in PersistentPreRun once flags are parsed. Commands
	// stay quiet on stderr unless logging is asked for.
	log = logging.Nop()

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "workflowctl",
	Short: "workflowctl submits and tracks Claude workflows on a runtime sidecar",
	Long: `workflowctl loads declarative workflow definitions, submits them to a
runtime sidecar over its REST API, and tracks runs until they finish.

The sidecar URL is resolved from --runtime-url, the WORKFLOW_RUNTIME_URL
environment variable, or the active context, in that order. Contexts are
stored at ~/.workflowctl/config.yaml.`,
	// No Run function here means 'workflowctl' with no args will print help text by default.
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = newLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the command logger from the environment and --verbose.
// With neither set, commands log nothing.
func newLogger() *slog.Logger {
	level := os.Getenv(cliconfig.EnvLogLevel)
	if level == "" && !verbose {
		return logging.Nop()
	}
	cfg := logging.Config{
		Level:  logging.ParseLevel(level),
		Format: logging.ParseFormat(os.Getenv(cliconfig.EnvLogFormat)),
		Output: os.Stderr,
	}
	if verbose {
		cfg.Level = slog.LevelDebug
	}
	return logging.New(cfg)
}

func init() {
	// Define persistent flags that apply globally to all workflowctl commands
	rootCmd.PersistentFlags().StringVar(&runtimeURL, "runtime-url", cliconfig.ResolveRuntimeURL(""), "Runtime sidecar base URL (default: http://localhost:8080)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug detail to stderr")
}
