// internal/clients/analysis/client.go
package analysis

import (
	"context"
	"fmt"
	"time"

	stderrors "newme-engine/internal/common/errors"
	httpclient "newme-engine/internal/common/http"
	"newme-engine/internal/common/logger"
	"newme-engine/internal/common/metrics"
	"newme-engine/internal/models"
)

// Client submits an aggregated result for AI enrichment. The enrichment is
// strictly additive: the caller already holds a complete Result and serves it
// unchanged when this call fails or the collaborator reports no success.
type Client struct {
	baseURL string
	http    *httpclient.Client
	logger  logger.Logger
}

func New(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpclient.NewClient(timeout),
		logger:  log.WithFields(map[string]interface{}{"client": "analysis"}),
	}
}

// Analyze requests the AI reading for a finished test. The returned Analysis
// carries the upstream-designated dominant element; the engine never
// recomputes dominance from the element scores.
func (c *Client) Analyze(ctx context.Context, token string, req models.AnalysisRequest) (*models.Analysis, error) {
	start := time.Now()
	var result models.Analysis
	err := c.http.PostJSON(ctx, c.baseURL+"/api/ai-analysis/analyze", token, req, &result)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.CollaboratorCallDuration.WithLabelValues("analysis", status).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Warn("analysis call failed", map[string]interface{}{
			"testType": string(req.TestType),
			"error":    err.Error(),
		})
		return nil, stderrors.NewAnalysisFailedError(err)
	}

	if !result.Success {
		c.logger.Warn("analysis reported no result", map[string]interface{}{
			"testType": string(req.TestType),
			"message":  result.Message,
			"detail":   result.Error,
		})
		return nil, stderrors.NewAnalysisFailedError(fmt.Errorf("analysis unsuccessful: %s", result.Message))
	}

	return &result, nil
}
