package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "newme-engine/internal/common/errors"
	"newme-engine/internal/common/logger"
	"newme-engine/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeAccounts struct {
	access       models.TestAccess
	accessErr    error
	profile      models.Profile
	profileErr   error
	recordErr    error
	recordCalls  int
	recordedCats []string
}

func (f *fakeAccounts) CheckAccess(_ context.Context, _ string) (models.TestAccess, error) {
	return f.access, f.accessErr
}

func (f *fakeAccounts) RecordFreeTest(_ context.Context, _ string, category string) error {
	f.recordCalls++
	f.recordedCats = append(f.recordedCats, category)
	return f.recordErr
}

func (f *fakeAccounts) Profile(_ context.Context, _ string) (models.Profile, error) {
	return f.profile, f.profileErr
}

func newGate(t *testing.T, accounts *fakeAccounts) *Gate {
	return NewGate(accounts, logger.NewTestLogger(t))
}

// ==========================
// Gate Tests
// ==========================

func TestGate_AnonymousIsRedirectedToLogin(t *testing.T) {
	accounts := &fakeAccounts{}
	gate := newGate(t, accounts)

	for _, tt := range []models.TestType{models.TestTypeFree, models.TestTypePaid} {
		_, err := gate.Authorize(context.Background(), "", tt, "personality")
		require.Error(t, err)
		assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeLoginRequired))
	}
	// No state mutation on anonymous attempts.
	assert.Zero(t, accounts.recordCalls)
}

func TestGate_FreeAvailable(t *testing.T) {
	accounts := &fakeAccounts{
		access: models.TestAccess{CanTakeFreeTest: true},
	}
	gate := newGate(t, accounts)

	decision, err := gate.Authorize(context.Background(), "token", models.TestTypeFree, "talent")
	require.NoError(t, err)
	assert.Equal(t, models.RecordRecorded, decision.RecordOutcome)
	assert.Equal(t, []string{"talent"}, accounts.recordedCats)
}

func TestGate_FreeRecordFailureDoesNotBlock(t *testing.T) {
	accounts := &fakeAccounts{
		access:    models.TestAccess{CanTakeFreeTest: true},
		recordErr: errors.New("connection refused"),
	}
	gate := newGate(t, accounts)

	decision, err := gate.Authorize(context.Background(), "token", models.TestTypeFree, "personality")
	require.NoError(t, err)
	assert.Equal(t, models.RecordFailed, decision.RecordOutcome)
}

func TestGate_FreeConsumed(t *testing.T) {
	accounts := &fakeAccounts{
		access: models.TestAccess{HasTakenFreeTest: true},
	}
	gate := newGate(t, accounts)

	_, err := gate.Authorize(context.Background(), "token", models.TestTypeFree, "personality")
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeFreeTestUsed))
	assert.Zero(t, accounts.recordCalls)
}

func TestGate_AccessCheckFailureIsIndeterminate(t *testing.T) {
	accounts := &fakeAccounts{
		accessErr: stderrors.NewAccessCheckFailedError(errors.New("dial tcp: timeout")),
	}
	gate := newGate(t, accounts)

	_, err := gate.Authorize(context.Background(), "token", models.TestTypeFree, "personality")
	require.Error(t, err)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeAccessCheckFailed))
	assert.Zero(t, accounts.recordCalls)
}

func TestGate_PaidStatuses(t *testing.T) {
	tests := []struct {
		paymentStatus string
		allowed       bool
	}{
		{paymentStatus: "paid", allowed: true},
		{paymentStatus: "approved", allowed: true},
		{paymentStatus: "pending", allowed: false},
		{paymentStatus: "rejected", allowed: false},
		{paymentStatus: "unpaid", allowed: false},
		{paymentStatus: "", allowed: false},
		{paymentStatus: "PAID", allowed: false}, // exact strings only
	}

	for _, tc := range tests {
		t.Run("status_"+tc.paymentStatus, func(t *testing.T) {
			accounts := &fakeAccounts{
				profile: models.Profile{PaymentStatus: tc.paymentStatus},
			}
			gate := newGate(t, accounts)

			decision, err := gate.Authorize(context.Background(), "token", models.TestTypePaid, "personality")
			if tc.allowed {
				require.NoError(t, err)
				assert.Equal(t, models.TestTypePaid, decision.TestType)
				assert.Equal(t, models.RecordNotAttempted, decision.RecordOutcome)
			} else {
				require.Error(t, err)
				assert.True(t, stderrors.IsCode(err, stderrors.ErrCodePaymentRequired))
			}
		})
	}
}

func TestGate_PaidIndependentOfFreeHistory(t *testing.T) {
	accounts := &fakeAccounts{
		access:  models.TestAccess{HasTakenFreeTest: true},
		profile: models.Profile{PaymentStatus: "approved"},
	}
	gate := newGate(t, accounts)

	decision, err := gate.Authorize(context.Background(), "token", models.TestTypePaid, "personality")
	require.NoError(t, err)
	assert.Equal(t, models.TestTypePaid, decision.TestType)
}

// ==========================
// Eligibility Matrix
// ==========================

func TestEvaluate_AccessMatrix(t *testing.T) {
	tests := []struct {
		name          string
		paymentStatus string
		hasTakenFree  bool
		expected      models.TestAccess
	}{
		{
			name:          "fresh unpaid user",
			paymentStatus: "unpaid",
			hasTakenFree:  false,
			expected:      models.TestAccess{CanTakeFreeTest: true},
		},
		{
			name:          "approved user after free test",
			paymentStatus: "approved",
			hasTakenFree:  true,
			expected:      models.TestAccess{HasTakenFreeTest: true, CanTakePaidTest: true},
		},
		{
			name:          "pending payment after free test is locked",
			paymentStatus: "pending",
			hasTakenFree:  true,
			expected:      models.TestAccess{HasTakenFreeTest: true},
		},
		{
			name:          "paid user before free test",
			paymentStatus: "paid",
			hasTakenFree:  false,
			expected:      models.TestAccess{CanTakeFreeTest: true, CanTakePaidTest: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(tc.paymentStatus, tc.hasTakenFree)
			assert.Equal(t, tc.expected.CanTakeFreeTest, got.CanTakeFreeTest)
			assert.Equal(t, tc.expected.HasTakenFreeTest, got.HasTakenFreeTest)
			assert.Equal(t, tc.expected.CanTakePaidTest, got.CanTakePaidTest)
			assert.NotEmpty(t, got.Message)
		})
	}

	t.Run("free and consumed are mutually exclusive", func(t *testing.T) {
		for _, status := range []string{"unpaid", "pending", "paid", "approved"} {
			for _, taken := range []bool{false, true} {
				got := Evaluate(status, taken)
				assert.False(t, got.CanTakeFreeTest && got.HasTakenFreeTest)
			}
		}
	})
}
