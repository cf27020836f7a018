// internal/clients/account/client.go
package account

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	stderrors "newme-engine/internal/common/errors"
	httpclient "newme-engine/internal/common/http"
	"newme-engine/internal/common/logger"
	"newme-engine/internal/common/metrics"
	"newme-engine/internal/models"
)

// Client talks to the account service, which owns authentication, profiles
// and the entitlement ledger. The engine never reimplements those rules; it
// only forwards the caller's bearer token and consumes the verdict.
type Client struct {
	baseURL string
	http    *httpclient.Client
	logger  logger.Logger
}

func New(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpclient.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"client": "account"}),
	}
}

// CheckAccess fetches the caller's eligibility snapshot. A rejected token
// surfaces as LOGIN_REQUIRED; any other failure is indeterminate and maps to
// ACCESS_CHECK_FAILED so callers fall back to the most restrictive state.
func (c *Client) CheckAccess(ctx context.Context, token string) (models.TestAccess, error) {
	var access models.TestAccess
	err := c.get(ctx, "/api/test-access/check", token, &access)
	if err != nil {
		return models.TestAccess{}, c.translate("check access", err)
	}
	return access, nil
}

// RecordFreeTest marks the free attempt as consumed for the given category.
// Errors are returned raw; the start flow treats this call as best effort.
func (c *Client) RecordFreeTest(ctx context.Context, token, category string) error {
	endpoint := fmt.Sprintf("%s/api/test-access/record-free-test?category=%s",
		c.baseURL, url.QueryEscape(category))

	start := time.Now()
	var ack struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	err := c.http.PostJSON(ctx, endpoint, token, nil, &ack)
	observe(start, err)
	if err != nil {
		return err
	}
	if !ack.Success {
		return fmt.Errorf("record free test rejected: %s", ack.Message)
	}
	return nil
}

// Profile fetches the caller's profile, including the payment status the
// paid-access check keys on.
func (c *Client) Profile(ctx context.Context, token string) (models.Profile, error) {
	var profile models.Profile
	err := c.get(ctx, "/api/auth/profile", token, &profile)
	if err != nil {
		return models.Profile{}, c.translate("fetch profile", err)
	}
	return profile, nil
}

func (c *Client) get(ctx context.Context, path, token string, out interface{}) error {
	start := time.Now()
	err := c.http.GetJSON(ctx, c.baseURL+path, token, out)
	observe(start, err)
	return err
}

func (c *Client) translate(op string, err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
		return stderrors.NewLoginRequiredError(op + ": token rejected")
	}
	c.logger.Warn("account call failed", map[string]interface{}{
		"operation": op,
		"error":     err.Error(),
	})
	return stderrors.NewAccessCheckFailedError(err)
}

func observe(start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.CollaboratorCallDuration.WithLabelValues("account", status).Observe(time.Since(start).Seconds())
}
