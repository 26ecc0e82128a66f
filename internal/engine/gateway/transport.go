package gateway

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"alidayu/internal/engine/signing"
)

// Post sends params as a form body to path, resolved against the base URL
// per RFC 3986: "batch" replaces the last segment, "/x" replaces the path.
// The response is decoded and returned as is.
func (c *Client) Post(ctx context.Context, path string, params signing.Params, header http.Header) (Response, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, &TransportError{Method: http.MethodPost, URL: target, Err: err}
	}
	copyHeader(req.Header, header)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	return c.send(req)
}

// Get sends params as the query string of path.
func (c *Client) Get(ctx context.Context, path string, params signing.Params, header http.Header) (Response, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(target)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: target, Err: err}
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: target, Err: err}
	}
	copyHeader(req.Header, header)

	return c.send(req)
}

// call signs params and posts them to the base URL.
func (c *Client) call(ctx context.Context, params signing.Params) (Response, error) {
	return c.Post(ctx, "", params.Signed(c.appSecret, c.signMethod), nil)
}

func (c *Client) send(req *http.Request) (Response, error) {
	// Logged without the query so sign and app_key stay out of the logs.
	target := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("http_method", req.Method).Str("url", target).Msg("gateway request failed")
		return nil, &TransportError{Method: req.Method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: target, StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug().
		Str("http_method", req.Method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("gateway request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Method: req.Method, URL: target, StatusCode: resp.StatusCode}
	}

	return decode(c.format, body)
}

func (c *Client) resolve(path string) (string, error) {
	if path == "" {
		return c.baseURL, nil
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", &ConfigurationError{Field: "base_url", Reason: err.Error()}
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", invalid("path %q: %v", path, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
