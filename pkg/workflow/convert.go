package workflow

import (
	"encoding/json"
	"fmt"

	"github.com/VladislavFirsov/claude-workflow/pkg/runtime"
)

// DefaultModel is used when neither the definition's models map nor the
// built-in role table knows the step's role.
const DefaultModel = "claude-sonnet-4-20250514"

// Execution policy defaults applied when the definition leaves fields
// unset.
const (
	DefaultTimeoutMS      int64   = 300000 // 5 minutes
	DefaultMaxParallelism int     = 1      // sequential
	DefaultBudgetAmount   float64 = 10.0
	DefaultBudgetCurrency string  = "USD"
)

// roleModels maps known agent roles to their model IDs.
var roleModels = map[string]string{
	"spec-analyst":   "claude-sonnet-4-20250514",
	"spec-architect": "claude-sonnet-4-20250514",
	"spec-developer": "claude-sonnet-4-20250514",
	"spec-validator": "claude-sonnet-4-20250514",
	"spec-tester":    "claude-sonnet-4-20250514",
	"spec-reviewer":  "claude-sonnet-4-20250514",
}

// ModelForRole resolves the model for a role: the definition's models
// map wins, then the built-in role table, then DefaultModel. The
// second return value is false only on the DefaultModel fallback, so
// callers can warn about unknown roles.
func (d *Definition) ModelForRole(role string) (string, bool) {
	if model, ok := d.Workflow.Models[role]; ok {
		return model, true
	}
	if model, ok := roleModels[role]; ok {
		return model, true
	}
	return DefaultModel, false
}

// StartRequest converts the definition into a start-run request
// document for the sidecar. An empty runID defaults to the workflow
// name; the sidecar generates one if that is empty too.
func (d *Definition) StartRequest(runID string) runtime.Document {
	if runID == "" {
		runID = d.Workflow.Name
	}

	tasks := make([]any, 0, len(d.Workflow.Steps))
	for _, step := range d.Workflow.Steps {
		model, _ := d.ModelForRole(step.Role)
		task := map[string]any{
			"id":     step.ID,
			"prompt": fmt.Sprintf("Execute %s step: %s", step.Role, step.ID),
			"model":  model,
		}
		if len(step.DependsOn) > 0 {
			task["deps"] = step.DependsOn
		}
		metadata := map[string]string{"role": step.Role}
		if len(step.Outputs) > 0 {
			// Outputs ride along as a JSON-encoded string so metadata
			// stays a flat string map on the wire.
			outputs, _ := json.Marshal(step.Outputs)
			metadata["outputs"] = string(outputs)
		}
		task["metadata"] = metadata
		tasks = append(tasks, task)
	}

	policy := map[string]any{
		"timeout_ms":      DefaultTimeoutMS,
		"max_parallelism": DefaultMaxParallelism,
		"budget_limit": map[string]any{
			"amount":   DefaultBudgetAmount,
			"currency": DefaultBudgetCurrency,
		},
	}
	if p := d.Workflow.Policy; p != nil {
		if p.TimeoutMS > 0 {
			policy["timeout_ms"] = p.TimeoutMS
		}
		if p.MaxParallelism > 0 {
			policy["max_parallelism"] = p.MaxParallelism
		}
		if b := p.BudgetLimit; b != nil {
			budget := policy["budget_limit"].(map[string]any)
			if b.Amount > 0 {
				budget["amount"] = b.Amount
			}
			if b.Currency != "" {
				budget["currency"] = b.Currency
			}
		}
	}

	return runtime.Document{
		"id":     runID,
		"policy": policy,
		"tasks":  tasks,
	}
}
