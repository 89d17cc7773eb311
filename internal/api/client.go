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

	"bmxshop/internal/config"
)

// CredentialSource supplies the bearer credential for protected calls
// and performs the single permitted refresh when a call is rejected
// with 401. The session manager implements this.
type CredentialSource interface {
	// Credential returns the current bearer token, or "" when
	// anonymous.
	Credential() string

	// RefreshCredential attempts to obtain a fresh credential. It is
	// invoked at most once per request.
	RefreshCredential(ctx context.Context) error
}

// Client is the REST client for the shop backend. All resource
// services hang off it.
type Client struct {
	baseURL string
	http    *http.Client
	probe   *http.Client
	logger  *zap.Logger
	creds   CredentialSource
	avail   *AvailabilityCache
}

// New builds a client from configuration. The logger may be nil.
func New(cfg config.APIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		probe:   &http.Client{Timeout: cfg.ProbeTimeout},
		logger:  logger,
	}
	c.avail = newAvailabilityCache(cfg.ProbeFreshness, c.probeOnce, time.Now)
	return c
}

// SetCredentialSource wires the session manager in after construction
// (the manager itself needs the client for its auth calls).
func (c *Client) SetCredentialSource(cs CredentialSource) { c.creds = cs }

// Availability returns the process-wide server availability cache.
func (c *Client) Availability() *AvailabilityCache { return c.avail }

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// probeOnce issues the lightweight availability probe. Any HTTP
// response at all, including error statuses, means the server is up;
// only a transport-level failure counts as down.
func (c *Client) probeOnce(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/roles", nil)
	if err != nil {
		return err
	}
	resp, err := c.probe.Do(req)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// do issues one request. A non-nil body is sent as JSON; a non-nil out
// receives the decoded 2xx response body. Non-2xx responses are
// classified into the package error taxonomy; transport failures wrap
// ErrServerUnavailable.
func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	return c.send(ctx, method, path, payload, out, authed)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, out any, authed bool) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if tok := c.credential(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	c.logger.Debug("api request", zap.String("method", method), zap.String("path", path))

	resp, err := c.http.Do(req)
	if err != nil {
		c.avail.markUnreachable(err)
		return fmt.Errorf("%w: %s %s: %v", ErrServerUnavailable, method, path, unwrapURLError(err))
	}
	defer resp.Body.Close()
	c.avail.markReachable()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("api error response",
			zap.String("path", path), zap.Int("status", resp.StatusCode))
		return classifyStatus(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response from %s: %w", path, err)
		}
	}
	return nil
}

func (c *Client) credential() string {
	if c.creds == nil {
		return ""
	}
	return c.creds.Credential()
}

// doAuthed runs a protected call under the refresh-and-retry protocol:
// attach the current credential; on 401 attempt exactly one refresh;
// on refresh success retry the original request exactly once; on
// refresh failure surface terminal ErrSessionExpired. Non-401 failures
// propagate immediately unmodified.
func (c *Client) doAuthed(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	err := c.send(ctx, method, path, payload, out, true)
	if !isExpiredCredential(err) {
		return err
	}

	if c.creds == nil {
		return ErrSessionExpired
	}
	c.logger.Debug("credential rejected, attempting refresh", zap.String("path", path))
	if refreshErr := c.creds.RefreshCredential(ctx); refreshErr != nil {
		c.logger.Warn("credential refresh failed", zap.Error(refreshErr))
		return fmt.Errorf("%w: %v", ErrSessionExpired, refreshErr)
	}

	// One retry with the new credential; whatever it returns is final.
	return c.send(ctx, method, path, payload, out, true)
}

func isExpiredCredential(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusUnauthorized
}

func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
