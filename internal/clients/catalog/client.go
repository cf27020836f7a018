// internal/clients/catalog/client.go
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"

	stderrors "newme-engine/internal/common/errors"
	httpclient "newme-engine/internal/common/http"
	"newme-engine/internal/common/logger"
	"newme-engine/internal/common/metrics"
	"newme-engine/internal/models"
)

// Client fetches the active question set for a test type. The catalog service
// is the single source of questions; a failed or invalid fetch means the test
// cannot start. There are no partial sets.
type Client struct {
	baseURL  string
	http     *httpclient.Client
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

// New builds a catalog client. redisClient may be nil to disable caching.
func New(baseURL string, timeout time.Duration, redisClient *redis.Client, cacheTTL time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     httpclient.NewClient(timeout),
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   log.WithFields(map[string]interface{}{"client": "catalog"}),
	}
}

// questionWire tolerates the catalog's loose payload: documents carry either
// an "id" or a Mongo-style "_id", and older entries omit "type".
type questionWire struct {
	ID         string              `json:"id"`
	MongoID    string              `json:"_id"`
	Text       string              `json:"text"`
	Type       models.QuestionType `json:"type"`
	Category   string              `json:"category"`
	Options    []models.Option     `json:"options"`
	IsRequired bool                `json:"isRequired"`
}

var questionSchema = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"text"},
		"properties": map[string]interface{}{
			"id":       map[string]interface{}{"type": "string"},
			"_id":      map[string]interface{}{"type": "string"},
			"text":     map[string]interface{}{"type": "string", "minLength": 1},
			"type":     map[string]interface{}{"type": "string"},
			"category": map[string]interface{}{"type": "string"},
			"options": map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":     "object",
					"required": []interface{}{"text"},
					"properties": map[string]interface{}{
						"text": map[string]interface{}{"type": "string"},
					},
				},
			},
		},
	},
}

// Questions returns the active catalog for testType, newest cache copy first.
// The set is cached per test type; the catalog is immutable for the lifetime
// of a session so a short TTL is safe.
func (c *Client) Questions(ctx context.Context, testType models.TestType) ([]models.Question, error) {
	cacheKey := "questions:" + string(testType)
	if c.redis != nil {
		if val, err := c.redis.Get(ctx, cacheKey).Result(); err == nil {
			var questions []models.Question
			if err := json.Unmarshal([]byte(val), &questions); err == nil && len(questions) > 0 {
				return questions, nil
			}
		}
	}

	questions, err := c.fetch(ctx, testType)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, stderrors.NewCatalogEmptyError(string(testType))
	}

	if c.redis != nil {
		if data, err := json.Marshal(questions); err == nil {
			c.redis.Set(ctx, cacheKey, data, c.cacheTTL)
		}
	}

	return questions, nil
}

func (c *Client) fetch(ctx context.Context, testType models.TestType) ([]models.Question, error) {
	endpoint := fmt.Sprintf("%s/api/questions?testType=%s&isActive=true",
		c.baseURL, url.QueryEscape(string(testType)))

	start := time.Now()
	var raw json.RawMessage
	err := c.http.GetJSON(ctx, endpoint, "", &raw)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.CollaboratorCallDuration.WithLabelValues("catalog", status).Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Error("question fetch failed", map[string]interface{}{
			"testType": string(testType),
			"error":    err.Error(),
		})
		return nil, stderrors.NewCatalogFetchFailedError(err)
	}

	if err := validatePayload(raw); err != nil {
		c.logger.Error("question payload rejected", map[string]interface{}{
			"testType": string(testType),
			"error":    err.Error(),
		})
		return nil, stderrors.NewCatalogInvalidError(err.Error())
	}

	var wire []questionWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, stderrors.NewCatalogInvalidError(err.Error())
	}

	questions := make([]models.Question, 0, len(wire))
	for _, w := range wire {
		id := w.ID
		if id == "" {
			id = w.MongoID
		}
		qType := w.Type
		if qType == "" {
			qType = models.QuestionMultipleChoice
		}
		questions = append(questions, models.Question{
			ID:         id,
			Text:       w.Text,
			Type:       qType,
			Category:   w.Category,
			Options:    w.Options,
			IsRequired: w.IsRequired,
		})
	}
	return questions, nil
}

func validatePayload(data json.RawMessage) error {
	schemaLoader := gojsonschema.NewGoLoader(questionSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("payload validation failed: %v", errs)
	}

	return nil
}
