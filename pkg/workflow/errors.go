package workflow

import "errors"

// Loading errors.
var (
	ErrFileNotFound      = errors.New("definition file not found")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrEmptyFile         = errors.New("definition file is empty")
	ErrInvalidJSON       = errors.New("invalid JSON syntax")
	ErrInvalidYAML       = errors.New("invalid YAML syntax")
	ErrUnsupportedFormat = errors.New("unsupported definition file format")
)

// Validation errors. Validate wraps these with the position of the
// offending step, so callers match with errors.Is.
var (
	ErrNameEmpty              = errors.New("workflow.name is required")
	ErrNoSteps                = errors.New("workflow.steps must not be empty")
	ErrStepIDEmpty            = errors.New("step.id is required")
	ErrStepIDDuplicate        = errors.New("duplicate step.id")
	ErrStepRoleEmpty          = errors.New("step.role is required")
	ErrDependencyNotFound     = errors.New("depends_on references unknown step id")
	ErrCycleDetected          = errors.New("cycle detected in step dependencies")
	ErrRequiredRoleMissing    = errors.New("required role is missing")
	ErrRequiredRoleDuplicate  = errors.New("required role appears more than once")
	ErrRequiredRoleOrder      = errors.New("required roles must be in canonical order")
	ErrUnknownRole            = errors.New("unknown role for spec-default workflow")
	ErrInvalidDependencyChain = errors.New("required step must depend on previous required step")
	ErrOptionalRolePlacement  = errors.New("optional role must depend on spec-validator")
)
