package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/VladislavFirsov/claude-workflow/pkg/cli/internal/output"
	"github.com/VladislavFirsov/claude-workflow/pkg/runtime"
)

// runView is the slice of a run document the CLI renders.
type runView struct {
	ID    string              `json:"id"`
	State string              `json:"state"`
	Tasks map[string]taskView `json:"tasks,omitempty"`
	Error *errorView          `json:"error,omitempty"`
}

type taskView struct {
	State string     `json:"state"`
	Error *errorView `json:"error,omitempty"`
}

type errorView struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeRun projects a raw run document onto the fields the CLI prints.
// Fields the sidecar adds later pass through untouched in --json mode.
func decodeRun(doc runtime.Document) (runView, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return runView{}, fmt.Errorf("failed to decode run document: %w", err)
	}
	var view runView
	if err := json.Unmarshal(raw, &view); err != nil {
		return runView{}, fmt.Errorf("failed to decode run document: %w", err)
	}
	return view, nil
}

// renderRun prints a run document in the selected output format and
// returns the decoded view so callers can branch on the run state.
func renderRun(doc runtime.Document) (runView, error) {
	view, err := decodeRun(doc)
	if err != nil {
		return runView{}, err
	}
	if jsonOutput {
		return view, output.JSON(doc)
	}
	printRun(view)
	return view, nil
}

// printRun writes the human-readable summary: one line for the run, one
// line listing task states, one line for a run-level error.
func printRun(view runView) {
	fmt.Printf("run_id=%s state=%s\n", view.ID, view.State)

	if len(view.Tasks) > 0 {
		ids := make([]string, 0, len(view.Tasks))
		for id := range view.Tasks {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		parts := make([]string, 0, len(ids))
		for _, id := range ids {
			task := view.Tasks[id]
			if task.State == "failed" && task.Error != nil {
				parts = append(parts, fmt.Sprintf("%s=failed(%s)", id, task.Error.Code))
			} else {
				parts = append(parts, fmt.Sprintf("%s=%s", id, task.State))
			}
		}
		fmt.Printf("tasks: %s\n", strings.Join(parts, ", "))
	}

	if view.Error != nil {
		fmt.Printf("error: [%s] %s\n", view.Error.Code, view.Error.Message)
	}
}

// isTerminal reports whether a run state will never change again.
func isTerminal(state string) bool {
	switch state {
	case "completed", "failed", "aborted":
		return true
	}
	return false
}

// watchRun polls a run until it reaches a terminal state, printing a
// summary after each poll.
func watchRun(ctx context.Context, client *runtime.Client, runID string, interval time.Duration) (runView, error) {
	for {
		doc, err := client.GetStatus(ctx, runID)
		if err != nil {
			return runView{}, commandError(err)
		}
		view, err := renderRun(doc)
		if err != nil {
			return runView{}, err
		}
		if isTerminal(view.State) {
			return view, nil
		}
		time.Sleep(interval)
	}
}
