// Package access implements the test-access gate. The entitlement service
// stays authoritative; this gate only interprets its snapshot and applies the
// start rules.
package access

import (
	"context"

	stderrors "newme-engine/internal/common/errors"
	"newme-engine/internal/common/logger"
	"newme-engine/internal/common/metrics"
	"newme-engine/internal/models"
)

// AccountService is the slice of the account/entitlement collaborator the
// gate needs. The concrete client translates transport failures into
// StandardError codes before they reach the gate.
type AccountService interface {
	CheckAccess(ctx context.Context, token string) (models.TestAccess, error)
	RecordFreeTest(ctx context.Context, token, category string) error
	Profile(ctx context.Context, token string) (models.Profile, error)
}

// Decision is the outcome of an authorized test start.
type Decision struct {
	TestType      models.TestType
	RecordOutcome models.RecordOutcome
	Message       string
}

type Gate struct {
	accounts AccountService
	logger   logger.Logger
}

func NewGate(accounts AccountService, log logger.Logger) *Gate {
	return &Gate{
		accounts: accounts,
		logger:   log.WithFields(map[string]interface{}{"component": "access-gate"}),
	}
}

// Authorize decides whether the caller may start a test of the given type.
// Anonymous callers are always redirected to login; no state is mutated on a
// rejected start.
func (g *Gate) Authorize(ctx context.Context, token string, testType models.TestType, category string) (*Decision, error) {
	if token == "" {
		metrics.AccessDenied.WithLabelValues("anonymous").Inc()
		return nil, stderrors.NewLoginRequiredError("no token presented")
	}

	if testType == models.TestTypePaid {
		return g.authorizePaid(ctx, token)
	}
	return g.authorizeFree(ctx, token, category)
}

func (g *Gate) authorizePaid(ctx context.Context, token string) (*Decision, error) {
	profile, err := g.accounts.Profile(ctx, token)
	if err != nil {
		// Indeterminate access grants nothing.
		metrics.AccessDenied.WithLabelValues("check_failed").Inc()
		return nil, err
	}

	if !profile.HasPaid() {
		metrics.AccessDenied.WithLabelValues("payment_required").Inc()
		return nil, stderrors.NewPaymentRequiredError(profile.PaymentStatus)
	}

	// Paid access is independent of free-test history.
	return &Decision{
		TestType:      models.TestTypePaid,
		RecordOutcome: models.RecordNotAttempted,
	}, nil
}

func (g *Gate) authorizeFree(ctx context.Context, token, category string) (*Decision, error) {
	snapshot, err := g.accounts.CheckAccess(ctx, token)
	if err != nil {
		metrics.AccessDenied.WithLabelValues("check_failed").Inc()
		return nil, err
	}

	if snapshot.HasTakenFreeTest {
		metrics.AccessDenied.WithLabelValues("free_consumed").Inc()
		return nil, stderrors.NewFreeTestUsedError(snapshot.Message)
	}

	decision := &Decision{
		TestType:      models.TestTypeFree,
		RecordOutcome: models.RecordNotAttempted,
		Message:       snapshot.Message,
	}

	if snapshot.CanTakeFreeTest {
		// Best effort: the start proceeds whether or not the record call
		// lands. Under network failure the server may never mark the free
		// test as consumed; that inconsistency is accepted and surfaced
		// through the outcome instead of blocking the user.
		if err := g.accounts.RecordFreeTest(ctx, token, category); err != nil {
			g.logger.Warn("failed to record free test", map[string]interface{}{
				"category": category,
				"error":    err.Error(),
			})
			decision.RecordOutcome = models.RecordFailed
		} else {
			decision.RecordOutcome = models.RecordRecorded
		}
	}

	return decision, nil
}

// Evaluate derives the eligibility snapshot from raw entitlement state,
// mirroring the server's rules. The engine uses it only to interpret
// profile data in tests and diagnostics; the server snapshot wins at runtime.
func Evaluate(paymentStatus string, hasTakenFreeTest bool) models.TestAccess {
	hasPaid := models.Profile{PaymentStatus: paymentStatus}.HasPaid()

	switch {
	case hasTakenFreeTest && !hasPaid:
		return models.TestAccess{
			HasTakenFreeTest: true,
			Message:          "Anda sudah mengambil test gratis. Upgrade ke premium untuk test unlimited!",
		}
	case hasTakenFreeTest && hasPaid:
		return models.TestAccess{
			HasTakenFreeTest: true,
			CanTakePaidTest:  true,
			Message:          "Anda memiliki akses premium. Silakan ambil test berbayar!",
		}
	default:
		return models.TestAccess{
			CanTakeFreeTest: true,
			CanTakePaidTest: hasPaid,
			Message:         "Selamat! Anda dapat mengambil test gratis.",
		}
	}
}
