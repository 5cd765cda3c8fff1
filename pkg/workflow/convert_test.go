package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartRequest_Defaults(t *testing.T) {
	def := customDef(Step{ID: "fetch", Role: "crawler"})

	req := def.StartRequest("")

	// Run ID falls back to the workflow name.
	assert.Equal(t, "test", req["id"])

	policy, ok := req["policy"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, DefaultTimeoutMS, policy["timeout_ms"])
	assert.Equal(t, DefaultMaxParallelism, policy["max_parallelism"])
	budget, ok := policy["budget_limit"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, DefaultBudgetAmount, budget["amount"])
	assert.Equal(t, DefaultBudgetCurrency, budget["currency"])
}

func TestStartRequest_ExplicitRunID(t *testing.T) {
	def := customDef(Step{ID: "fetch", Role: "crawler"})
	req := def.StartRequest("run-7")
	assert.Equal(t, "run-7", req["id"])
}

func TestStartRequest_Tasks(t *testing.T) {
	def := customDef(
		Step{ID: "fetch", Role: "crawler"},
		Step{ID: "summarize", Role: "writer", DependsOn: []string{"fetch"}, Outputs: []string{"summary.md", "notes.md"}},
	)

	req := def.StartRequest("run-1")
	tasks, ok := req["tasks"].([]any)
	require.True(t, ok)
	require.Len(t, tasks, 2)

	first := tasks[0].(map[string]any)
	assert.Equal(t, "fetch", first["id"])
	assert.Equal(t, "Execute crawler step: fetch", first["prompt"])
	_, hasDeps := first["deps"]
	assert.False(t, hasDeps, "independent steps carry no deps field")

	second := tasks[1].(map[string]any)
	assert.Equal(t, []string{"fetch"}, second["deps"])
	metadata := second["metadata"].(map[string]string)
	assert.Equal(t, "writer", metadata["role"])
	assert.JSONEq(t, `["summary.md","notes.md"]`, metadata["outputs"])
}

func TestStartRequest_PolicyOverrides(t *testing.T) {
	def := customDef(Step{ID: "fetch", Role: "crawler"})
	def.Workflow.Policy = &Policy{
		TimeoutMS:   60000,
		BudgetLimit: &BudgetLimit{Amount: 2.5},
	}

	req := def.StartRequest("run-1")
	policy := req["policy"].(map[string]any)

	assert.Equal(t, int64(60000), policy["timeout_ms"])
	// Unset fields keep their defaults, including inside budget_limit.
	assert.Equal(t, DefaultMaxParallelism, policy["max_parallelism"])
	budget := policy["budget_limit"].(map[string]any)
	assert.Equal(t, 2.5, budget["amount"])
	assert.Equal(t, DefaultBudgetCurrency, budget["currency"])
}

func TestModelForRole(t *testing.T) {
	def := customDef(Step{ID: "fetch", Role: "crawler"})
	def.Workflow.Models = map[string]string{"crawler": "claude-haiku-3-5"}

	tests := []struct {
		role      string
		wantModel string
		wantKnown bool
	}{
		{"crawler", "claude-haiku-3-5", true},    // definition override
		{"spec-analyst", DefaultModel, true},     // built-in table
		{"unheard-of-role", DefaultModel, false}, // fallback
	}
	for _, tt := range tests {
		model, known := def.ModelForRole(tt.role)
		assert.Equal(t, tt.wantModel, model, "role %s", tt.role)
		assert.Equal(t, tt.wantKnown, known, "role %s", tt.role)
	}
}
