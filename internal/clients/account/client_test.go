package account

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "newme-engine/internal/common/errors"
	"newme-engine/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, 5*time.Second, logger.NewTestLogger(t))
}

// ==========================
// CheckAccess
// ==========================

func TestCheckAccess_ForwardsBearerToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/test-access/check", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"canTakeFreeTest": true,
			"hasTakenFreeTest": false,
			"canTakePaidTest": false,
			"message": "Selamat! Anda dapat mengambil test gratis."
		}`))
	})

	access, err := client.CheckAccess(context.Background(), "token-123")
	require.NoError(t, err)
	assert.True(t, access.CanTakeFreeTest)
	assert.False(t, access.HasTakenFreeTest)
}

func TestCheckAccess_RejectedToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	})

	_, err := client.CheckAccess(context.Background(), "expired")
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeLoginRequired))
}

func TestCheckAccess_ServiceDown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream timeout", http.StatusGatewayTimeout)
	})

	_, err := client.CheckAccess(context.Background(), "token-123")
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeAccessCheckFailed))
}

func TestCheckAccess_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := New(server.URL, time.Second, logger.NewNoOpLogger())

	_, err := client.CheckAccess(context.Background(), "token-123")
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeAccessCheckFailed))
}

// ==========================
// RecordFreeTest
// ==========================

func TestRecordFreeTest_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/test-access/record-free-test", r.URL.Path)
		assert.Equal(t, "personality", r.URL.Query().Get("category"))
		w.Write([]byte(`{"success": true, "message": "Test gratis berhasil direkam"}`))
	})

	err := client.RecordFreeTest(context.Background(), "token-123", "personality")
	assert.NoError(t, err)
}

func TestRecordFreeTest_AlreadyRecorded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Anda sudah mengambil test gratis untuk kategori ini"}`, http.StatusBadRequest)
	})

	// Errors come back raw so the caller can log and continue.
	err := client.RecordFreeTest(context.Background(), "token-123", "personality")
	require.Error(t, err)
	assert.False(t, stderrors.IsCode(err, stderrors.ErrCodeAccessCheckFailed))
}

func TestRecordFreeTest_UnsuccessfulAck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "rejected"}`))
	})

	err := client.RecordFreeTest(context.Background(), "token-123", "talent")
	assert.ErrorContains(t, err, "rejected")
}

// ==========================
// Profile
// ==========================

func TestProfile_PaymentStatus(t *testing.T) {
	tests := []struct {
		name          string
		paymentStatus string
		wantPaid      bool
	}{
		{name: "paid", paymentStatus: "paid", wantPaid: true},
		{name: "approved", paymentStatus: "approved", wantPaid: true},
		{name: "pending", paymentStatus: "pending", wantPaid: false},
		{name: "unpaid", paymentStatus: "unpaid", wantPaid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/auth/profile", r.URL.Path)
				w.Write([]byte(`{
					"email": "user@example.com",
					"fullName": "Test User",
					"paymentStatus": "` + tt.paymentStatus + `"
				}`))
			})

			profile, err := client.Profile(context.Background(), "token-123")
			require.NoError(t, err)
			assert.Equal(t, tt.wantPaid, profile.HasPaid())
		})
	}
}

func TestProfile_RejectedToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	})

	_, err := client.Profile(context.Background(), "bad")
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeLoginRequired))
}
