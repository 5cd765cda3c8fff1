// Package runtime is a synchronous HTTP client for the workflow runtime
// sidecar's v1 REST API.
//
// The client exposes the sidecar's three run operations (start, status,
// abort) and nothing else. Request and response payloads are opaque
// Documents: the client moves JSON between the caller and the sidecar
// without inspecting, validating, or caching it. Retry, timeout, and
// connection policy belong to the caller, via context.Context and an
// optional caller-supplied http.Client.
//
//	client := runtime.New("http://localhost:8080")
//	status, err := client.GetStatus(ctx, "run-123")
//
// A Client is immutable after construction and safe for concurrent use.
package runtime
