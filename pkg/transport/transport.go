// Package transport sends JSON requests to the salon backend. It owns
// timeouts, credentials and tracing; it never retries.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Alijeyrad/salon_storefront/config"
	"github.com/Alijeyrad/salon_storefront/pkg/reqctx"
)

const (
	ContentTypeJSON       = "application/json"
	ContentTypeMergePatch = "application/merge-patch+json"

	HeaderRequestID = "X-Request-Id"

	maxErrorBody = 64 << 10
)

// ErrUnreachable wraps failures where no HTTP response was received.
var ErrUnreachable = errors.New("backend unreachable")

// Request is one call to the backend. Path is already escaped, so segments
// built with url.PathEscape reach the backend unchanged. Body is JSON
// encoded when non-nil.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string
}

// Requester is the transport collaborator consumed by the resource client.
type Requester interface {
	Do(ctx context.Context, req Request, out any) error
}

// Failure is a response with a status of 400 or above. Body holds the raw
// response so callers can look for structured violations.
type Failure struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s %s: backend responded %d", f.Method, f.Path, f.StatusCode)
}

type Client struct {
	base      *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
}

func New(cfg config.BackendConfig, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		userAgent: cfg.UserAgent,
		logger:    logger,
	}, nil
}

func (c *Client) Do(ctx context.Context, r Request, out any) error {
	httpReq, err := c.newRequest(ctx, r)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.WarnContext(ctx, "backend request failed",
			"method", r.Method, "path", r.Path,
			"request_id", reqctx.RequestIDFromContext(ctx), "err", err)
		return fmt.Errorf("%w: %s %s: %v", ErrUnreachable, r.Method, r.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.DebugContext(ctx, "backend rejected request",
			"method", r.Method, "path", r.Path, "status", resp.StatusCode,
			"request_id", reqctx.RequestIDFromContext(ctx))
		return &Failure{Method: r.Method, Path: r.Path, StatusCode: resp.StatusCode, Body: body}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", r.Method, r.Path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, r Request) (*http.Request, error) {
	path, err := url.PathUnescape(r.Path)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", r.Method, r.Path, err)
	}
	u := *c.base
	u.Path = c.base.Path + path
	u.RawPath = c.base.EscapedPath() + r.Path
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		buf, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", r.Method, r.Path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", r.Method, r.Path, err)
	}

	req.Header.Set("Accept", ContentTypeJSON)
	if body != nil {
		req.Header.Set("Content-Type", ContentTypeJSON)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if rid := reqctx.RequestIDFromContext(ctx); rid != "" {
		req.Header.Set(HeaderRequestID, rid)
	}
	if op, ok := reqctx.OperatorFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+op.Token)
	}
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}
