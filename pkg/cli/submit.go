package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/VladislavFirsov/claude-workflow/pkg/runtime"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var submitFile string

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a raw start-run document to the sidecar",
	Long: `Submit a start-run request document exactly as written, skipping
workflow loading and validation. Useful for hand-built requests and for
replaying documents captured from another client.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(submitFile)
		if err != nil {
			return err
		}

		client := newRuntimeClient()
		resp, err := client.StartRun(cmd.Context(), doc)
		if err != nil {
			return commandError(err)
		}
		log.Info("run submitted", "file", submitFile)

		_, err = renderRun(resp)
		return err
	},
}

// readDocument loads a JSON or YAML document from path. The extension
// picks the decoder; anything that is not .yaml/.yml is treated as JSON.
func readDocument(path string) (runtime.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc runtime.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: invalid YAML: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%s: invalid JSON: %w", path, err)
		}
	}
	return doc, nil
}

func init() {
	submitCmd.Flags().StringVarP(&submitFile, "file", "f", "", "Path to a start-run request document (JSON or YAML)")
	_ = submitCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(submitCmd)
}
