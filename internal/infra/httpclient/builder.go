package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aalvaropc/topcontainers/internal/domain"
)

// Request describes one call against the remote API. At most one of JSON and Form is used.
type Request struct {
	Method  string
	URL     string
	Query   url.Values
	Headers map[string]string
	JSON    any
	Form    url.Values
}

// BuildRequest builds an *http.Request from a Request.
func BuildRequest(ctx context.Context, r Request) (*http.Request, error) {
	if strings.TrimSpace(r.URL) == "" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Err:  domain.ErrInvalidConfig,
		}
	}

	u, err := url.Parse(r.URL)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: r.URL,
			Err:  err,
		}
	}
	if len(r.Query) > 0 {
		q := u.Query()
		for k, vs := range r.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	contentType := ""

	switch {
	case r.JSON != nil:
		payload, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, &domain.OpError{
				Op:   "httpclient.build",
				Kind: domain.KindInvalidConfig,
				Path: r.URL,
				Err:  err,
			}
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	case r.Form != nil:
		body = strings.NewReader(r.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: r.URL,
			Err:  err,
		}
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	return req, nil
}
