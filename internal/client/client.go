// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package client is the authenticated request pipeline to the Cuentas Claras
REST backend.

Every outbound call goes through [Client.Do], which attaches the bearer token
held by the [session.Store] and transparently recovers from an expired token.

# Request Lifecycle

	Sent ──2xx──────────────────────────────▶ Success
	  │
	  ├──4xx/5xx/network (not 401)──────────▶ Failed (original error)
	  │
	  └──401──▶ Refreshing ──ok──▶ Retried ──2xx──▶ Success
	                │                 └──401──────▶ Failed (UNAUTHENTICATED)
	                └──fail──▶ session cleared ───▶ Failed (REFRESH_FAILED)

At most one refresh call is in flight at any time. Requests that hit a 401
while a refresh is running wait for it and observe the same outcome.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/cuentasclaras/cuentasclaras/internal/platform/apperr"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/constants"
	"github.com/cuentasclaras/cuentasclaras/internal/platform/ctxutil"
	"github.com/cuentasclaras/cuentasclaras/internal/session"
	"github.com/cuentasclaras/cuentasclaras/pkg/uuidv7"
)

// maxErrorBody caps how much of an error response is read for decoding.
const maxErrorBody = 1 << 20

// # Configuration

// Options configures a [Client].
type Options struct {
	// BaseURL is the API root, e.g. "https://app.cuentasclaras.cl/api".
	BaseURL string

	// Session is the token source and the target of refresh and logout.
	Session *session.Store

	// HTTPClient overrides the default client (cookie jar + Timeout).
	HTTPClient *http.Client

	// Timeout bounds one HTTP exchange of the default client.
	Timeout time.Duration

	// RefreshPath is the refresh endpoint relative to BaseURL.
	RefreshPath string

	// Limiter, when set, throttles every outbound call including refreshes.
	Limiter *rate.Limiter

	Logger *slog.Logger
}

// # Client

// Client performs authenticated JSON calls. It is safe for concurrent use.
type Client struct {
	baseURL     string
	refreshPath string
	http        *http.Client
	session     *session.Store
	limiter     *rate.Limiter
	logger      *slog.Logger

	// mu guards episode. Checking for an in-flight refresh and starting one
	// happen in a single critical section.
	mu      sync.Mutex
	episode *episode
}

/*
New validates options and builds a [Client].

Parameters:
  - options: Options

Returns:
  - *Client: A ready client
  - error: Invalid base URL or missing session store
*/
func New(options Options) (*Client, error) {
	if options.Session == nil {
		return nil, errors.New("client: session store is required")
	}

	base, err := url.Parse(options.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("client: invalid base URL %q", options.BaseURL)
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		timeout := options.Timeout
		if timeout <= 0 {
			timeout = constants.DefaultRequestTimeout
		}

		// The jar carries the refresh cookie for cookie-based deployments.
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client: cookie jar: %w", err)
		}
		httpClient = &http.Client{Timeout: timeout, Jar: jar}
	}

	refreshPath := options.RefreshPath
	if refreshPath == "" {
		refreshPath = constants.DefaultRefreshPath
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:     strings.TrimRight(options.BaseURL, "/"),
		refreshPath: refreshPath,
		http:        httpClient,
		session:     options.Session,
		limiter:     options.Limiter,
		logger:      logger,
	}, nil
}

// Session returns the store the client reads tokens from.
func (c *Client) Session() *session.Store {
	return c.session
}

// # Requests

// Request describes one call relative to the base URL.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// Anonymous omits the bearer header and never triggers a refresh
	// (login, password reset).
	Anonymous bool
}

/*
Do performs req and decodes a 2xx JSON body into out (which may be nil).

Description: Runs the lifecycle described in the package documentation. The
only 401 ever absorbed is the first one of a request; a retried request that is
rejected again fails with UNAUTHENTICATED and never starts a second refresh.

Parameters:
  - ctx: context.Context
  - req: Request
  - out: any (pointer to decode into, or nil)

Returns:
  - error: *apperr.AppError (REFRESH_FAILED, UNAUTHENTICATED, FORBIDDEN,
    VALIDATION_ERROR, NOT_FOUND, CONFLICT or REQUEST_FAILED)
*/
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	body, err := encodeBody(req.Body)
	if err != nil {
		return err
	}

	requestID := ctxutil.GetRequestID(ctx)
	if requestID == "" {
		requestID = uuidv7.New()
	}

	// ── 1. Sent ───────────────────────────────────────────────────────────
	token := ""
	if !req.Anonymous {
		token = c.session.Token()
	}

	err = c.send(ctx, req, body, token, requestID, out)
	if err == nil || !apperr.Is(err, apperr.CodeAuthExpired) {
		return err
	}
	if req.Anonymous {
		return rejected(err)
	}

	// ── 2. Refreshing ─────────────────────────────────────────────────────
	fresh, err := c.refresh(ctx, token)
	if err != nil {
		return err
	}

	// ── 3. Retried (exactly once) ─────────────────────────────────────────
	err = c.send(ctx, req, body, fresh, requestID, out)
	if apperr.Is(err, apperr.CodeAuthExpired) {
		return rejected(err)
	}
	return err
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path}, out)
}

// # Transport

// send performs a single HTTP exchange. A 401 is reported as AUTH_EXPIRED.
func (c *Client) send(ctx context.Context, req Request, body []byte, token, requestID string, out any) error {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, reader)
	if err != nil {
		return apperr.RequestFailed(0, "Invalid request", err)
	}

	httpReq.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)
	httpReq.Header.Set(constants.HeaderXRequestID, requestID)
	if body != nil {
		httpReq.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	if token != "" {
		httpReq.Header.Set(constants.HeaderAuthorization, constants.BearerScheme+" "+token)
	}

	return c.exchange(ctx, httpReq, out)
}

// exchange waits for the limiter, dispatches httpReq and decodes the result.
func (c *Client) exchange(ctx context.Context, httpReq *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperr.RequestFailed(0, "Request throttled", err)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("request_failed",
			slog.String("method", httpReq.Method),
			slog.String("path", httpReq.URL.Path),
			slog.String("request_id", httpReq.Header.Get(constants.HeaderXRequestID)),
			slog.Any("error", err),
		)
		return apperr.RequestFailed(0, "Backend unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request_completed",
		slog.String("method", httpReq.Method),
		slog.String("path", httpReq.URL.Path),
		slog.String("request_id", httpReq.Header.Get(constants.HeaderXRequestID)),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	return decodeResponse(resp, out)
}

// # Encoding

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, apperr.RequestFailed(0, "Invalid request body", err)
	}
	return data, nil
}

// errorEnvelope is the backend's error shape. Some endpoints use "message"
// instead of "error".
type errorEnvelope struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details"`
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		var envelope errorEnvelope
		message := ""
		if json.Unmarshal(data, &envelope) == nil {
			message = envelope.Error
			if message == "" {
				message = envelope.Message
			}
		}

		return apperr.FromStatus(resp.StatusCode, message, envelope.Details)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.RequestFailed(resp.StatusCode, "Invalid response body", err)
	}
	return nil
}

// rejected turns an AUTH_EXPIRED that cannot be recovered into the terminal
// UNAUTHENTICATED error.
func rejected(err error) error {
	message := "Authentication required"
	if ae := apperr.As(err); ae != nil && ae.Message != "" {
		message = ae.Message
	}

	terminal := apperr.Unauthenticated(message)
	terminal.Cause = err
	return terminal
}

// # Envelopes

// Envelope is the backend's single-resource response shape.
type Envelope[T any] struct {
	Data T `json:"data"`
}
