package cli

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/VladislavFirsov/claude-workflow/pkg/runtime"
)

// newRuntimeClient builds an SDK client against the resolved sidecar URL.
func newRuntimeClient() *runtime.Client {
	return runtime.New(runtimeURL)
}

// commandError wraps an SDK failure so Execute prints exactly one
// formatted message.
func commandError(err error) error {
	return errors.New(formatError(err))
}

// formatError renders an SDK failure as the message a command reports.
func formatError(err error) string {
	var apiErr *runtime.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == "http_error" {
			// Message already reads "HTTP <status>: <body>".
			return "error: " + apiErr.Message
		}
		return fmt.Sprintf("error: [%s] %s", apiErr.Code, apiErr.Message)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Sprintf(`error: cannot reach runtime sidecar at %s

Suggestions:
  • Check that the runtime sidecar is running
  • Inspect the active context with: workflowctl context show
  • Pass --runtime-url or set WORKFLOW_RUNTIME_URL to override`, runtimeURL)
	}

	return "error: " + err.Error()
}
