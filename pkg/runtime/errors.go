package runtime

import "fmt"

// APIError is a failure reported by the sidecar on a >=400 response.
// Code and Message come from the sidecar's error body when it is a
// JSON object; otherwise Code is "http_error" and Message carries the
// status and raw body. HTTPStatus is always the response status code.
type APIError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
