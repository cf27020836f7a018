// Package errors provides standardized error handling for the test engine.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeLoginRequired     ErrorCode = "LOGIN_REQUIRED"
	ErrCodeFreeTestUsed      ErrorCode = "FREE_TEST_USED"
	ErrCodePaymentRequired   ErrorCode = "PAYMENT_REQUIRED"
	ErrCodeAccessCheckFailed ErrorCode = "ACCESS_CHECK_FAILED"

	ErrCodeCatalogFetchFailed ErrorCode = "CATALOG_FETCH_FAILED"
	ErrCodeCatalogInvalid     ErrorCode = "CATALOG_INVALID"
	ErrCodeCatalogEmpty       ErrorCode = "CATALOG_EMPTY"

	ErrCodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeTestIncomplete  ErrorCode = "TEST_INCOMPLETE"

	ErrCodeResultStoreFailed ErrorCode = "RESULT_STORE_FAILED"
	ErrCodeAnalysisFailed    ErrorCode = "ANALYSIS_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewLoginRequiredError is returned for anonymous test starts and for
// indeterminate access checks, which default to the most restrictive state.
func NewLoginRequiredError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLoginRequired,
		Message:   "Silakan login terlebih dahulu untuk mengambil test",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFreeTestUsedError creates a non-retryable error for consumed free access.
func NewFreeTestUsedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeFreeTestUsed,
		Message:   "Anda sudah mengambil test gratis. Upgrade ke premium untuk test unlimited!",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPaymentRequiredError creates a non-retryable error for paid starts
// without a confirmed payment.
func NewPaymentRequiredError(paymentStatus string) *StandardError {
	return &StandardError{
		Code:      ErrCodePaymentRequired,
		Message:   "Silakan selesaikan pembayaran untuk mengakses test berbayar",
		Details:   fmt.Sprintf("paymentStatus: %s", paymentStatus),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAccessCheckFailedError creates a retryable entitlement-service error.
func NewAccessCheckFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAccessCheckFailed,
		Message:   "Could not determine test access",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogFetchFailedError creates a retryable catalog-service error.
func NewCatalogFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogFetchFailed,
		Message:   "Gagal memuat pertanyaan",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogInvalidError creates a non-retryable error for payloads that do
// not match the question schema. A partial or malformed set is never used.
func NewCatalogInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogInvalid,
		Message:   "Question catalog payload failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogEmptyError creates a non-retryable error for an empty active set.
func NewCatalogEmptyError(testType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogEmpty,
		Message:   "No active questions for the requested test type",
		Details:   fmt.Sprintf("testType: %s", testType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSessionNotFoundError creates a non-retryable error for unknown or
// expired test sessions.
func NewSessionNotFoundError(sessionID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSessionNotFound,
		Message:   "Test session not found",
		Details:   fmt.Sprintf("sessionId: %s", sessionID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTestIncompleteError reports the exact unanswered count to the caller.
func NewTestIncompleteError(unanswered int) *StandardError {
	return &StandardError{
		Code:      ErrCodeTestIncomplete,
		Message:   fmt.Sprintf("Masih ada %d pertanyaan yang belum dijawab", unanswered),
		Details:   fmt.Sprintf("unanswered: %d", unanswered),
		Retryable: false,
		Metadata:  map[string]interface{}{"unanswered": unanswered},
		Timestamp: time.Now().UTC(),
	}
}

// NewResultStoreFailedError creates a retryable persistence error.
func NewResultStoreFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeResultStoreFailed,
		Message:   "Failed to record test result",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAnalysisFailedError creates a retryable AI-analysis error. Callers treat
// this as degradation, not failure: the raw result is still returned.
func NewAnalysisFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAnalysisFailed,
		Message:   "AI analysis unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP status codes for the
// engine's own API surface.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeLoginRequired:      http.StatusUnauthorized,
	ErrCodeFreeTestUsed:       http.StatusForbidden,
	ErrCodePaymentRequired:    http.StatusPaymentRequired,
	ErrCodeAccessCheckFailed:  http.StatusServiceUnavailable,
	ErrCodeCatalogFetchFailed: http.StatusBadGateway,
	ErrCodeCatalogInvalid:     http.StatusBadGateway,
	ErrCodeCatalogEmpty:       http.StatusNotFound,
	ErrCodeSessionNotFound:    http.StatusNotFound,
	ErrCodeTestIncomplete:     http.StatusBadRequest,
	ErrCodeResultStoreFailed:  http.StatusInternalServerError,
	ErrCodeAnalysisFailed:     http.StatusBadGateway,
	ErrCodeInternal:           http.StatusInternalServerError,
}

// HTTPStatus returns the HTTP status for a StandardError.
func HTTPStatus(err *StandardError) int {
	if status, ok := HTTPStatusMapping[err.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Normalize ensures any error is a StandardError.
func Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return NewInternalError(err)
}

// ==========================
// 4. Utility Functions
// ==========================

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == code
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "LOGIN") || strings.Contains(codeStr, "ACCESS") ||
		strings.Contains(codeStr, "PAYMENT") || strings.Contains(codeStr, "FREE_TEST"):
		return "ACCESS"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "INCOMPLETE"):
		return "SESSION"
	case strings.Contains(codeStr, "RESULT"):
		return "RESULTS"
	case strings.Contains(codeStr, "ANALYSIS"):
		return "AI"
	default:
		return "OTHER"
	}
}
