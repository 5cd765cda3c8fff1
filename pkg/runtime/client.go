package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Every request carries the protocol version so the sidecar can reject
// clients it no longer understands.
const (
	versionHeader   = "X-Runtime-Version"
	protocolVersion = "v1"
)

// Document is a decoded JSON object exchanged with the sidecar. The
// client treats documents as opaque payload: callers own their shape.
type Document map[string]any

// Client is an HTTP client for a workflow runtime sidecar. It holds the
// normalized base URL and nothing else; all methods are safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client. Timeouts, proxies,
// and connection pooling are configured there by the caller; the
// default client applies no timeout.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a client for the sidecar at baseURL. A single trailing
// slash is stripped; the URL is otherwise used verbatim. No network
// activity happens until the first call.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StartRun submits a run request document and returns the sidecar's
// response document. The request is sent as-is; the sidecar is the one
// that validates it.
func (c *Client) StartRun(ctx context.Context, req Document) (Document, error) {
	resp, err := c.post(ctx, "/api/v1/runs", req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.parseError(resp)
	}
	return decodeDocument(resp.Body)
}

// GetStatus fetches the current status document for a run. The run ID
// is interpolated into the request path verbatim.
func (c *Client) GetStatus(ctx context.Context, runID string) (Document, error) {
	resp, err := c.get(ctx, "/api/v1/runs/"+runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.parseError(resp)
	}
	return decodeDocument(resp.Body)
}

// AbortRun requests cancellation of a run. The response body is
// discarded; a nil error means the sidecar accepted the abort.
func (c *Client) AbortRun(ctx context.Context, runID string) error {
	resp, err := c.postEmpty(ctx, "/api/v1/runs/"+runID+"/abort")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.parseError(resp)
	}
	return nil
}

// HTTP helpers

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, body Document) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// postEmpty sends a body-less POST. No Content-Type header: there is no
// content to describe.
func (c *Client) postEmpty(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set(versionHeader, protocolVersion)
	return c.httpClient.Do(req)
}

// parseError turns a >=400 response into an *APIError. Structured
// sidecar errors carry {"code","message"}; anything else is preserved
// raw under the synthetic code "http_error".
func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return &APIError{
			Code:       "http_error",
			Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, body),
			HTTPStatus: resp.StatusCode,
		}
	}

	apiErr := &APIError{
		Code:       "unknown",
		Message:    string(body),
		HTTPStatus: resp.StatusCode,
	}
	if code, ok := fields["code"].(string); ok {
		apiErr.Code = code
	}
	if msg, ok := fields["message"].(string); ok {
		apiErr.Message = msg
	}
	return apiErr
}

// decodeDocument reads a success body. An empty body is a valid
// response (the sidecar has nothing to say) and yields an empty
// document.
func decodeDocument(r io.Reader) (Document, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) == 0 {
		return Document{}, nil
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return doc, nil
}
