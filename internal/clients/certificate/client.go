// internal/clients/certificate/client.go
package certificate

import (
	"context"
	"time"

	httpclient "newme-engine/internal/common/http"
	"newme-engine/internal/common/logger"
	"newme-engine/internal/common/metrics"
)

// Eligibility is the certificate service's verdict for the caller.
type Eligibility struct {
	CanDownloadCertificate bool   `json:"canDownloadCertificate"`
	Message                string `json:"message"`
}

// Client asks the certificate service whether the caller may download a
// certificate. The check is best effort: when the service is unreachable the
// caller is reported as not eligible and the submission still succeeds.
type Client struct {
	baseURL string
	http    *httpclient.Client
	logger  logger.Logger
}

func New(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpclient.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"client": "certificate"}),
	}
}

// CheckEligibility never returns an error; failures degrade to not eligible.
func (c *Client) CheckEligibility(ctx context.Context, token string) Eligibility {
	start := time.Now()
	var eligibility Eligibility
	err := c.http.GetJSON(ctx, c.baseURL+"/api/certificates/check-eligibility", token, &eligibility)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.CollaboratorCallDuration.WithLabelValues("certificate", status).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("eligibility check failed", map[string]interface{}{
			"error": err.Error(),
		})
		return Eligibility{CanDownloadCertificate: false}
	}
	return eligibility
}
