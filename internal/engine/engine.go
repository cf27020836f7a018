// Package engine orchestrates the test lifecycle: gated start, answer
// collection, and submission with best-effort enrichments.
package engine

import (
	"context"

	"newme-engine/internal/access"
	"newme-engine/internal/clients/certificate"
	stderrors "newme-engine/internal/common/errors"
	"newme-engine/internal/common/logger"
	"newme-engine/internal/common/metrics"
	"newme-engine/internal/models"
	"newme-engine/internal/results"
	"newme-engine/internal/scoring"
	"newme-engine/internal/session"
)

// Collaborator slices, narrowed to what the engine consumes so tests can
// substitute fakes.
type CatalogService interface {
	Questions(ctx context.Context, testType models.TestType) ([]models.Question, error)
}

type AnalysisService interface {
	Analyze(ctx context.Context, token string, req models.AnalysisRequest) (*models.Analysis, error)
}

type CertificateService interface {
	CheckEligibility(ctx context.Context, token string) certificate.Eligibility
}

type ResultStore interface {
	Save(ctx context.Context, userEmail, category string, result models.Result) (*results.Record, error)
	History(ctx context.Context, userEmail string) ([]results.Record, error)
}

type ResultNotifier interface {
	SendResultEmail(ctx context.Context, toEmail, fullName string, result models.Result, certificateReady bool) bool
}

type Engine struct {
	gate         *access.Gate
	accounts     access.AccountService
	catalog      CatalogService
	sessions     *session.Manager
	results      ResultStore
	analysis     AnalysisService
	certificates CertificateService
	notifier     ResultNotifier
	logger       logger.Logger
}

func New(
	gate *access.Gate,
	accounts access.AccountService,
	catalog CatalogService,
	sessions *session.Manager,
	store ResultStore,
	analysis AnalysisService,
	certificates CertificateService,
	notifier ResultNotifier,
	log logger.Logger,
) *Engine {
	return &Engine{
		gate:         gate,
		accounts:     accounts,
		catalog:      catalog,
		sessions:     sessions,
		results:      store,
		analysis:     analysis,
		certificates: certificates,
		notifier:     notifier,
		logger:       log.WithFields(map[string]interface{}{"component": "engine"}),
	}
}

// StartResponse is the answer to a granted test start.
type StartResponse struct {
	SessionID     string               `json:"sessionId"`
	TestType      models.TestType      `json:"testType"`
	Questions     []models.Question    `json:"questions"`
	RecordOutcome models.RecordOutcome `json:"recordOutcome"`
	Message       string               `json:"message,omitempty"`
}

// StartTest runs the gate, fetches the catalog and opens a session. Nothing
// is mutated on a rejected start; the free-test record call inside the gate
// is the one deliberate exception and is best effort.
func (e *Engine) StartTest(ctx context.Context, token string, testType models.TestType, category string) (*StartResponse, error) {
	decision, err := e.gate.Authorize(ctx, token, testType, category)
	if err != nil {
		return nil, err
	}

	questions, err := e.catalog.Questions(ctx, decision.TestType)
	if err != nil {
		return nil, err
	}

	userEmail := ""
	if profile, err := e.accounts.Profile(ctx, token); err == nil {
		userEmail = profile.Email
	} else {
		e.logger.Warn("profile unavailable at start", map[string]interface{}{
			"error": err.Error(),
		})
	}

	sess, err := e.sessions.Create(ctx, userEmail, decision.TestType, category, questions, decision.RecordOutcome)
	if err != nil {
		return nil, stderrors.Normalize(err)
	}

	metrics.TestsStarted.WithLabelValues(string(decision.TestType)).Inc()
	e.logger.Info("test started", map[string]interface{}{
		"sessionId":     sess.ID,
		"testType":      string(decision.TestType),
		"questionCount": len(questions),
		"recordOutcome": string(decision.RecordOutcome),
	})

	return &StartResponse{
		SessionID:     sess.ID,
		TestType:      decision.TestType,
		Questions:     questions,
		RecordOutcome: decision.RecordOutcome,
		Message:       decision.Message,
	}, nil
}

// Session returns the current session state.
func (e *Engine) Session(ctx context.Context, sessionID string) (*session.TestSession, error) {
	return e.sessions.Get(ctx, sessionID)
}

// Answer records one answer. Re-answering overwrites; the set of answered
// questions never shrinks.
func (e *Engine) Answer(ctx context.Context, sessionID, questionID, value string) (*session.TestSession, error) {
	return e.sessions.Update(ctx, sessionID, func(s *session.TestSession) {
		s.Answer(questionID, value)
	})
}

// Navigate moves the cursor by delta, clamped to the question range.
func (e *Engine) Navigate(ctx context.Context, sessionID string, delta int) (*session.TestSession, error) {
	return e.sessions.Update(ctx, sessionID, func(s *session.TestSession) {
		s.Seek(s.CurrentIndex + delta)
	})
}

// Restart clears all answers and rewinds the cursor, keeping the session and
// its question set.
func (e *Engine) Restart(ctx context.Context, sessionID string) (*session.TestSession, error) {
	return e.sessions.Update(ctx, sessionID, func(s *session.TestSession) {
		s.Reset()
	})
}

// SubmitResponse carries the aggregated result plus whatever enrichments
// were available at submit time.
type SubmitResponse struct {
	Result             models.Result       `json:"result"`
	ResultID           string              `json:"resultId"`
	Analysis           *models.Analysis    `json:"analysis,omitempty"`
	DominantElement    string              `json:"dominantElement,omitempty"`
	DominantScore      models.ElementScore `json:"dominantScore"`
	CertificateReady   bool                `json:"certificateReady"`
	CertificateMessage string              `json:"certificateMessage,omitempty"`
	EmailSent          bool                `json:"emailSent"`
}

// Submit closes the session: completeness guard, aggregation, persistence,
// then best-effort enrichment. Only the guard, the aggregation and the result
// insert can fail the call; a dead AI or certificate service degrades the
// response instead.
func (e *Engine) Submit(ctx context.Context, token, sessionID string) (*SubmitResponse, error) {
	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !scoring.CanSubmit(sess.Questions, sess.Answers) {
		return nil, stderrors.NewTestIncompleteError(scoring.UnansweredCount(sess.Questions, sess.Answers))
	}

	result := scoring.Aggregate(sess.Questions, sess.Answers, sess.TestType)
	metrics.TestsSubmitted.WithLabelValues(string(sess.TestType)).Inc()

	record, err := e.results.Save(ctx, sess.UserEmail, sess.Category, result)
	if err != nil {
		return nil, err
	}

	response := &SubmitResponse{
		Result:   result,
		ResultID: record.ID,
	}

	analysisReq := models.AnalysisRequest{
		TestType:       sess.TestType,
		Answers:        scoring.FormatAnswers(sess.Questions, sess.Answers),
		CategoryScores: result.CategoryScores,
		TotalScore:     result.TotalScore,
		MaxScore:       result.MaxScore,
		Percentage:     result.Percentage,
	}
	if analysis, err := e.analysis.Analyze(ctx, token, analysisReq); err != nil {
		metrics.AnalysisDegraded.Inc()
		e.logger.Warn("serving result without AI analysis", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	} else {
		response.Analysis = analysis
		if name, score, ok := scoring.DominantElement(analysis.ElementScores, analysis.DominantElement); ok {
			response.DominantElement = name
			response.DominantScore = score
		}
	}

	eligibility := e.certificates.CheckEligibility(ctx, token)
	response.CertificateReady = eligibility.CanDownloadCertificate
	response.CertificateMessage = eligibility.Message

	if sess.TestType == models.TestTypePaid {
		fullName := ""
		if profile, err := e.accounts.Profile(ctx, token); err == nil {
			fullName = profile.FullName
		}
		response.EmailSent = e.notifier.SendResultEmail(ctx, sess.UserEmail, fullName, result, response.CertificateReady)
	}

	if err := e.sessions.Destroy(ctx, sessionID); err != nil {
		e.logger.Warn("session cleanup failed", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}

	e.logger.Info("test submitted", map[string]interface{}{
		"sessionId":  sessionID,
		"testType":   string(sess.TestType),
		"percentage": result.Percentage,
		"enriched":   response.Analysis != nil,
	})

	return response, nil
}

// History returns the caller's persisted results, newest first.
func (e *Engine) History(ctx context.Context, token string) ([]results.Record, error) {
	profile, err := e.accounts.Profile(ctx, token)
	if err != nil {
		return nil, err
	}
	return e.results.History(ctx, profile.Email)
}
