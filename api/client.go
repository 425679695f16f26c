package api

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

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL    = "http://localhost:5000"
	defaultUserAgent  = "roombook/1.0"
	SessionCookieName = "session"
)

type Client struct {
	HTTP          *http.Client
	BaseURL       string
	UserAgent     string
	SessionCookie string
	// Location is used for the zone-less timestamps the backend returns.
	Location *time.Location
	Limiter  *rate.Limiter
	Logger   *zap.Logger
}

func NewClient() *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: 15 * time.Second},
		BaseURL:   defaultBaseURL,
		UserAgent: defaultUserAgent,
		Location:  time.Local,
	}
}

func (c *Client) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Client) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, payload any) (*http.Request, error) {
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	path = strings.TrimPrefix(path, "/")
	base.Path = strings.TrimSuffix(base.Path, "/") + "/" + path
	if query != nil {
		base.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, base.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.SessionCookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: c.SessionCookie})
	}
	return req, nil
}

// doJSON sends req and decodes a 2xx body into dest. Transport failures come
// back as *NetworkError, non-2xx responses as *RequestError.
func (c *Client) doJSON(req *http.Request, dest any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(req.Context()); err != nil {
			return &NetworkError{Err: err}
		}
	}

	started := time.Now()
	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.logger().Warn("api request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	c.logger().Debug("api request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return newRequestError(resp, body)
	}

	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// doResult is doJSON for endpoints answering with a success envelope.
func (c *Client) doResult(req *http.Request) (Result, error) {
	var result Result
	if err := c.doJSON(req, &result); err != nil {
		return Result{}, err
	}
	if !result.Success {
		return result, &RequestError{Status: http.StatusOK, Message: result.Error}
	}
	return result, nil
}

func newRequestError(resp *http.Response, body []byte) *RequestError {
	var envelope Result
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != "" {
		return &RequestError{Status: resp.StatusCode, Message: envelope.Error}
	}
	message := strings.TrimSpace(string(body))
	if message == "" || strings.HasPrefix(message, "<") {
		message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return &RequestError{Status: resp.StatusCode, Message: message}
}
