// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	commonaws "newme-engine/internal/common/aws"
	"newme-engine/internal/common/logger"
	"newme-engine/internal/models"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

const (
	templateResultSummary    = "result-summary"
	templateCertificateReady = "certificate-ready"
)

// Notifier sends the post-submission result email. Sending is best effort:
// callers log failures and keep serving the result.
type Notifier struct {
	enabled   bool
	fromEmail string
	sesClient SESService
	logger    logger.Logger
	templates map[string]map[string]string
}

func New(ctx context.Context, enabled bool, region, fromEmail string, log logger.Logger) (*Notifier, error) {
	notifier := &Notifier{
		enabled:   enabled,
		fromEmail: fromEmail,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		templates: loadTemplates(),
	}
	if !enabled {
		return notifier, nil
	}

	sesClient, err := commonaws.NewSESClient(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("init SES client: %w", err)
	}
	notifier.sesClient = sesClient
	return notifier, nil
}

// NewWithClient wires an explicit SES client, used by tests.
func NewWithClient(client SESService, fromEmail string, log logger.Logger) *Notifier {
	return &Notifier{
		enabled:   true,
		fromEmail: fromEmail,
		sesClient: client,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
		templates: loadTemplates(),
	}
}

// SendResultEmail mails the caller their score summary. Returns whether an
// email went out; errors are swallowed after logging.
func (n *Notifier) SendResultEmail(ctx context.Context, toEmail, fullName string, result models.Result, certificateReady bool) bool {
	if !n.enabled || toEmail == "" {
		return false
	}

	templateID := templateResultSummary
	if certificateReady {
		templateID = templateCertificateReady
	}
	template := n.templates[templateID]

	data := map[string]interface{}{
		"fullName":   fullName,
		"testType":   string(result.TestType),
		"totalScore": result.TotalScore,
		"maxScore":   result.MaxScore,
		"percentage": result.Percentage,
	}
	subject := renderTemplate(template["subject"], data)
	body := renderTemplate(template["body"], data)

	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.fromEmail),
	})
	if err != nil {
		n.logger.Error("email send failed", map[string]interface{}{
			"error": err.Error(),
			"email": toEmail,
		})
		return false
	}
	return true
}

// Simplified template rendering with placeholder removal for missing values
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if i, ok := v.(int); ok {
			value = fmt.Sprintf("%d", i)
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}

func loadTemplates() map[string]map[string]string {
	return map[string]map[string]string{
		templateResultSummary: {
			"subject": "Hasil Test NEWME CLASS Anda",
			"body":    "Halo {{fullName}}, hasil test {{testType}} Anda: {{totalScore}} dari {{maxScore}} ({{percentage}}%).",
		},
		templateCertificateReady: {
			"subject": "Hasil Test & Sertifikat NEWME CLASS Anda",
			"body":    "Halo {{fullName}}, hasil test {{testType}} Anda: {{totalScore}} dari {{maxScore}} ({{percentage}}%). Sertifikat Anda siap diunduh!",
		},
	}
}
