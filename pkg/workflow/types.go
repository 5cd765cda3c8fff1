// Package workflow provides declarative workflow definitions: loading,
// validation, and conversion into runtime start-run requests.
package workflow

// Definition is the root of a workflow definition file.
type Definition struct {
	Workflow Workflow `json:"workflow" yaml:"workflow"`
}

// Workflow is a named DAG of steps plus optional model and policy
// overrides.
type Workflow struct {
	Name   string            `json:"name" yaml:"name"`
	Type   string            `json:"type,omitempty" yaml:"type,omitempty"`
	Steps  []Step            `json:"steps" yaml:"steps"`
	Models map[string]string `json:"models,omitempty" yaml:"models,omitempty"`
	Policy *Policy           `json:"policy,omitempty" yaml:"policy,omitempty"`
}

// Step is a single unit of work, executed by an agent role.
type Step struct {
	ID        string   `json:"id" yaml:"id"`
	Role      string   `json:"role" yaml:"role"`
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Outputs   []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// Policy overrides the runtime's execution policy for a run. Zero
// fields fall back to defaults at conversion time.
type Policy struct {
	TimeoutMS      int64        `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
	MaxParallelism int          `json:"max_parallelism,omitempty" yaml:"max_parallelism,omitempty"`
	BudgetLimit    *BudgetLimit `json:"budget_limit,omitempty" yaml:"budget_limit,omitempty"`
}

// BudgetLimit caps the total spend of a run.
type BudgetLimit struct {
	Amount   float64 `json:"amount" yaml:"amount"`
	Currency string  `json:"currency" yaml:"currency"`
}

// Workflow types. The type selects the role validation mode: spec-default
// demands the canonical role chain, custom skips role checks entirely,
// and the empty type only requires that all required roles appear.
const (
	TypeSpecDefault = "spec-default"
	TypeCustom      = "custom"
)

// Role is an agent role identifier.
type Role string

// Canonical roles for the default spec workflow.
const (
	RoleSpecAnalyst   Role = "spec-analyst"
	RoleSpecArchitect Role = "spec-architect"
	RoleSpecDeveloper Role = "spec-developer"
	RoleSpecValidator Role = "spec-validator"
	RoleSpecTester    Role = "spec-tester"
	RoleSpecReviewer  Role = "spec-reviewer"
)

// RequiredRoles returns the roles every spec workflow must carry, in
// canonical execution order.
func RequiredRoles() []Role {
	return []Role{
		RoleSpecAnalyst,
		RoleSpecArchitect,
		RoleSpecDeveloper,
		RoleSpecValidator,
	}
}

// OptionalRoles returns the roles a spec-default workflow may append
// after the validator step.
func OptionalRoles() []Role {
	return []Role{
		RoleSpecTester,
		RoleSpecReviewer,
	}
}
