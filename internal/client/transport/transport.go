// Package transport performs typed JSON requests against the policy-log
// REST service.
//
// The session header travels on the context, the same way outgoing gRPC
// metadata would: callers wrap ctx with WithAuthorization and the transport
// copies the value onto the request.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/policylogs/internal/common"
	"github.com/dmitrijs2005/policylogs/internal/logging"
	"github.com/google/uuid"
)

var (
	// ErrTransport wraps connection failures, timeouts and cancellations.
	ErrTransport = errors.New("transport failure")
	// ErrDecode wraps 2xx responses whose body does not match the target.
	ErrDecode = errors.New("response decode failure")
	// ErrRequest wraps local failures before anything is sent, such as a
	// body that cannot be encoded or a malformed method.
	ErrRequest = errors.New("invalid request")
)

// maxErrorBody limits how much of a failed response is kept for messages.
const maxErrorBody = 4 << 10

// Request describes one REST call. Path is relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Transport performs a request and decodes a 2xx JSON body into out.
// A nil out discards the body.
type Transport interface {
	Do(ctx context.Context, req *Request, out any) error
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

type authKey struct{}

// WithAuthorization returns a context whose requests carry value in the
// Authorization header. An empty value removes it.
func WithAuthorization(ctx context.Context, value string) context.Context {
	return context.WithValue(ctx, authKey{}, value)
}

// AuthorizationFrom returns the value set by WithAuthorization, or "".
func AuthorizationFrom(ctx context.Context) string {
	v, _ := ctx.Value(authKey{}).(string)
	return v
}

// HTTPTransport is a Transport over net/http. Each request gets a fresh
// X-Request-ID and is logged at debug level.
type HTTPTransport struct {
	baseURL *url.URL
	client  *http.Client
	logger  logging.Logger
}

// NewHTTPTransport builds a transport for baseURL (e.g.
// "http://localhost:8000/api/"). timeout bounds each request.
func NewHTTPTransport(baseURL string, timeout time.Duration, logger logging.Logger) (*HTTPTransport, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url %q: scheme must be http or https", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &HTTPTransport{
		baseURL: u,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// HTTPClient exposes the underlying client, e.g. for document downloads
// that should share its timeout.
func (t *HTTPTransport) HTTPClient() *http.Client {
	return t.client
}

func (t *HTTPTransport) endpoint(req *Request) string {
	ref := &url.URL{Path: strings.TrimPrefix(req.Path, "/")}
	u := t.baseURL.ResolveReference(ref)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}
	return u.String()
}

// Do sends req and decodes a 2xx JSON body into out, which may be nil.
// Non-2xx answers come back as *StatusError.
func (t *HTTPTransport) Do(ctx context.Context, req *Request, out any) error {
	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("%w: encode body: %w", ErrRequest, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, t.endpoint(req), body)
	if err != nil {
		return fmt.Errorf("%w: build: %w", ErrRequest, err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(common.RequestIDHeaderName, requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if auth := AuthorizationFrom(ctx); auth != "" {
		httpReq.Header.Set(common.AuthHeaderName, auth)
	}

	started := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		t.logger.Debug(ctx, "request failed",
			"method", req.Method, "path", req.Path, "request_id", requestID, "err", err)
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	t.logger.Debug(ctx, "request done",
		"method", req.Method, "path", req.Path, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: b}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		if out != nil {
			return fmt.Errorf("%w: empty body", ErrDecode)
		}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}
