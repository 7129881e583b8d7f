// Package client issues MealMax API calls. It performs no success checking of
// its own beyond transport errors; callers inspect the decoded Result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mealmax/mealmax-smoke/internal/api/types"
)

// Call describes one HTTP request against the service.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

func (c Call) String() string {
	if len(c.Query) > 0 {
		return c.Method + " " + c.Path + "?" + c.Query.Encode()
	}
	return c.Method + " " + c.Path
}

// Response is the raw outcome of a call that reached the server.
type Response struct {
	StatusCode int
	Body       []byte
}

// Result decodes the body into the common MealMax envelope.
func (r *Response) Result() (types.Result, error) {
	return types.Decode(r.Body)
}

// TransportError means the request never produced an HTTP response.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type Client struct {
	base string
	hc   *http.Client
}

// New returns a client for the service at baseURL. A nil hc uses an
// http.Client with no timeout.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), hc: hc}
}

func (c *Client) BaseURL() string { return c.base }

// Do sends call and reads the whole response body. Non-2xx statuses are not
// errors here; MealMax reports failures in the body.
func (c *Client) Do(ctx context.Context, call Call) (*Response, error) {
	u := c.base + call.Path
	if len(call.Query) > 0 {
		u += "?" + call.Query.Encode()
	}

	var body io.Reader
	if call.Body != nil {
		data, err := json.Marshal(call.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", call, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, u, body)
	if err != nil {
		return nil, &TransportError{Method: call.Method, Path: call.Path, Err: err}
	}
	if call.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &TransportError{Method: call.Method, Path: call.Path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: call.Method, Path: call.Path, Err: fmt.Errorf("read body: %w", err)}
	}

	slog.Debug("request",
		"method", call.Method,
		"path", call.Path,
		"status", resp.StatusCode,
		"ms", time.Since(start).Milliseconds(),
	)
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
