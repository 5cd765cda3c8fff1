package workflow

import "fmt"

// Validate checks the definition's structural invariants and, depending
// on the workflow type, its role layout. It returns the first failure
// found, wrapped around one of the validation sentinels.
func (d *Definition) Validate() error {
	w := d.Workflow

	if w.Name == "" {
		return ErrNameEmpty
	}
	if len(w.Steps) == 0 {
		return ErrNoSteps
	}

	stepIDs := make(map[string]bool, len(w.Steps))
	roleSet := make(map[Role]bool)
	for i, step := range w.Steps {
		if step.ID == "" {
			return fmt.Errorf("step[%d]: %w", i, ErrStepIDEmpty)
		}
		if stepIDs[step.ID] {
			return fmt.Errorf("step.id=%s: %w", step.ID, ErrStepIDDuplicate)
		}
		stepIDs[step.ID] = true

		if step.Role == "" {
			return fmt.Errorf("step[%d] id=%s: %w", i, step.ID, ErrStepRoleEmpty)
		}
		roleSet[Role(step.Role)] = true
	}

	for _, step := range w.Steps {
		for _, depID := range step.DependsOn {
			if !stepIDs[depID] {
				return fmt.Errorf("step.id=%s depends_on=%s: %w", step.ID, depID, ErrDependencyNotFound)
			}
		}
	}

	if err := detectCycle(w.Steps); err != nil {
		return err
	}

	switch w.Type {
	case TypeSpecDefault:
		return validateSpecDefault(w.Steps)
	case TypeCustom:
		// Arbitrary DAGs, no role constraints.
		return nil
	default:
		return validateRequiredRolesPresent(roleSet)
	}
}

// Cycle detection runs DFS over the dependency graph with the usual
// three-color marking: 0 white (unvisited), 1 gray (on the current
// path), 2 black (done). A back edge to a gray node is a cycle.
func detectCycle(steps []Step) error {
	// Forward edges: depID -> stepID means stepID runs after depID.
	adjacency := make(map[string][]string, len(steps))
	for _, step := range steps {
		if _, exists := adjacency[step.ID]; !exists {
			adjacency[step.ID] = nil
		}
	}
	for _, step := range steps {
		for _, depID := range step.DependsOn {
			adjacency[depID] = append(adjacency[depID], step.ID)
		}
	}

	colors := make(map[string]int, len(steps))
	for _, step := range steps {
		if colors[step.ID] == 0 {
			if hasCycle(step.ID, colors, adjacency) {
				return fmt.Errorf("starting from step.id=%s: %w", step.ID, ErrCycleDetected)
			}
		}
	}
	return nil
}

func hasCycle(node string, colors map[string]int, adj map[string][]string) bool {
	colors[node] = 1
	for _, next := range adj[node] {
		if colors[next] == 1 {
			return true
		}
		if colors[next] == 0 && hasCycle(next, colors, adj) {
			return true
		}
	}
	colors[node] = 2
	return false
}

// validateRequiredRolesPresent checks that every required role appears
// somewhere. Order does not matter; this is the lenient default mode.
func validateRequiredRolesPresent(roleSet map[Role]bool) error {
	for _, required := range RequiredRoles() {
		if !roleSet[required] {
			return fmt.Errorf("role=%s: %w", required, ErrRequiredRoleMissing)
		}
	}
	return nil
}

// validateSpecDefault enforces the canonical spec workflow shape:
// required roles exactly once, in order, each chained onto the previous
// one, and optional roles hanging off the validator step.
func validateSpecDefault(steps []Step) error {
	requiredRoles := RequiredRoles()
	requiredSet := make(map[Role]bool, len(requiredRoles))
	for _, r := range requiredRoles {
		requiredSet[r] = true
	}
	optionalSet := make(map[Role]bool)
	for _, r := range OptionalRoles() {
		optionalSet[r] = true
	}

	for _, step := range steps {
		role := Role(step.Role)
		if !requiredSet[role] && !optionalSet[role] {
			return fmt.Errorf("step.id=%s role=%s: %w", step.ID, step.Role, ErrUnknownRole)
		}
	}

	roleCounts := make(map[Role]int)
	for _, step := range steps {
		if role := Role(step.Role); requiredSet[role] {
			roleCounts[role]++
		}
	}
	for _, required := range requiredRoles {
		switch count := roleCounts[required]; {
		case count == 0:
			return fmt.Errorf("role=%s: %w", required, ErrRequiredRoleMissing)
		case count > 1:
			return fmt.Errorf("role=%s: %w", required, ErrRequiredRoleDuplicate)
		}
	}

	var requiredSteps []Step
	for _, step := range steps {
		if requiredSet[Role(step.Role)] {
			requiredSteps = append(requiredSteps, step)
		}
	}
	for i, step := range requiredSteps {
		if actual := Role(step.Role); actual != requiredRoles[i] {
			return fmt.Errorf("step.id=%s: expected role=%s at position %d, got %s: %w",
				step.ID, requiredRoles[i], i, actual, ErrRequiredRoleOrder)
		}
	}

	stepByRole := make(map[Role]Step, len(requiredSteps))
	for _, step := range requiredSteps {
		stepByRole[Role(step.Role)] = step
	}
	for i := 1; i < len(requiredRoles); i++ {
		current := stepByRole[requiredRoles[i]]
		prev := stepByRole[requiredRoles[i-1]]
		if !dependsOn(current, prev.ID) {
			return fmt.Errorf("step.id=%s (role=%s) must depend on step.id=%s (role=%s): %w",
				current.ID, requiredRoles[i], prev.ID, requiredRoles[i-1], ErrInvalidDependencyChain)
		}
	}

	validatorStep := stepByRole[RoleSpecValidator]
	for _, step := range steps {
		if optionalSet[Role(step.Role)] && !dependsOn(step, validatorStep.ID) {
			return fmt.Errorf("step.id=%s (role=%s) must depend on %s: %w",
				step.ID, step.Role, validatorStep.ID, ErrOptionalRolePlacement)
		}
	}
	return nil
}

func dependsOn(step Step, id string) bool {
	for _, depID := range step.DependsOn {
		if depID == id {
			return true
		}
	}
	return false
}
