// Package aspace talks to the ArchivesSpace backend API.
//
// Client handles authentication and URL resolution; Operations is the record-level
// wrapper the drivers use (get, create, update, list ids).
package aspace

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/aalvaropc/topcontainers/internal/domain"
	"github.com/aalvaropc/topcontainers/internal/infra/httpclient"
)

// SessionHeader carries the token returned by the login endpoint.
const SessionHeader = "X-ArchivesSpace-Session"

const maxErrorBody = 512

type Client struct {
	base     *url.URL
	user     string
	password string
	exec     *httpclient.Executor
	log      *slog.Logger
	session  string
}

type Option func(*Client)

func WithExecutor(e *httpclient.Executor) Option {
	return func(c *Client) { c.exec = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient binds a client to an instance's base URL and credentials. No request is made
// until the first call (or Authorize).
func NewClient(inst domain.Instance, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(inst.BaseURL))
	if err != nil || base.Scheme == "" || base.Host == "" {
		if err == nil {
			err = errors.New("base url must be absolute")
		}
		return nil, &domain.OpError{
			Op:   "aspace.client",
			Kind: domain.KindInvalidConfig,
			Path: inst.BaseURL,
			Err:  err,
		}
	}

	c := &Client{
		base:     base,
		user:     inst.User,
		password: inst.Password,
		exec:     httpclient.NewExecutor(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("logger", "aspace.client")
	return c, nil
}

// Authorize logs in and keeps the session token for subsequent calls.
func (c *Client) Authorize(ctx context.Context) error {
	const op = "aspace.login"

	loginURL := c.resolve("users/" + c.user + "/login")
	resp, err := c.send(ctx, httpclient.Request{
		Method: http.MethodPost,
		URL:    loginURL,
		Query:  url.Values{"password": {c.password}},
	}, op)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return statusError(op, http.MethodPost, loginURL, resp)
	}

	var out struct {
		Session string `json:"session"`
	}
	if err := json.Unmarshal(resp.BodyBytes, &out); err != nil || out.Session == "" {
		if err == nil {
			err = errors.New("no session in login response")
		}
		return &domain.OpError{Op: op, Kind: domain.KindDecode, Err: err}
	}

	c.session = out.Session
	c.log.Info("Authenticated", "user", c.user, "url", c.base.String())
	return nil
}

// Get issues a GET against a path relative to the base URL.
func (c *Client) Get(ctx context.Context, uri string, query url.Values) (httpclient.ResponseData, error) {
	return c.do(ctx, httpclient.Request{
		Method: http.MethodGet,
		URL:    c.resolve(uri),
		Query:  query,
	}, "aspace.get")
}

// Post issues a POST of a JSON body against a path relative to the base URL.
func (c *Client) Post(ctx context.Context, uri string, body any) (httpclient.ResponseData, error) {
	return c.do(ctx, httpclient.Request{
		Method: http.MethodPost,
		URL:    c.resolve(uri),
		JSON:   body,
	}, "aspace.post")
}

func (c *Client) do(ctx context.Context, r httpclient.Request, op string) (httpclient.ResponseData, error) {
	if c.session == "" {
		if err := c.Authorize(ctx); err != nil {
			return httpclient.ResponseData{}, err
		}
	}
	r.Headers = map[string]string{SessionHeader: c.session}
	return c.send(ctx, r, op)
}

func (c *Client) send(ctx context.Context, r httpclient.Request, op string) (httpclient.ResponseData, error) {
	req, err := httpclient.BuildRequest(ctx, r)
	if err != nil {
		return httpclient.ResponseData{}, err
	}

	resp, err := c.exec.Do(ctx, req)
	if err != nil {
		return resp, &domain.OpError{
			Op:   op,
			Kind: domain.KindTransport,
			Path: r.URL,
			Err:  err,
		}
	}
	c.log.Debug("request", "method", r.Method, "url", r.URL, "status", resp.Status, "duration", resp.Duration)
	return resp, nil
}

// resolve joins uri onto the base URL, keeping any base path ("/api").
func (c *Client) resolve(uri string) string {
	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(uri, "/")
	u.RawPath = ""
	return u.String()
}

func statusError(op, method, rawURL string, resp httpclient.ResponseData) error {
	body := strings.TrimSpace(string(resp.BodyBytes))
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return &domain.OpError{
		Op:   op,
		Kind: domain.KindHTTP,
		Path: rawURL,
		Err: &domain.HTTPError{
			Method:     method,
			URL:        rawURL,
			StatusCode: resp.Status,
			Body:       body,
		},
	}
}
