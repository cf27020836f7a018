// internal/models/access.go
package models

// TestAccess is the server-computed eligibility snapshot. It is read-only
// from the engine's perspective; the entitlement service stays authoritative.
type TestAccess struct {
	CanTakeFreeTest  bool   `json:"canTakeFreeTest"`
	HasTakenFreeTest bool   `json:"hasTakenFreeTest"`
	CanTakePaidTest  bool   `json:"canTakePaidTest"`
	Message          string `json:"message"`
}

// Profile is the slice of the account profile the gate needs.
type Profile struct {
	Email         string `json:"email"`
	FullName      string `json:"fullName"`
	PaymentStatus string `json:"paymentStatus"`
}

// HasPaid treats "paid" and "approved" as equivalent confirmed-payment
// signals. Any other status string does not grant paid access.
func (p Profile) HasPaid() bool {
	return p.PaymentStatus == "paid" || p.PaymentStatus == "approved"
}

// RecordOutcome reports what happened to the best-effort record-free-test
// call. The start flow never blocks on it; the server remains authoritative.
type RecordOutcome string

const (
	RecordRecorded     RecordOutcome = "recorded"
	RecordFailed       RecordOutcome = "failed"
	RecordNotAttempted RecordOutcome = "not_attempted"
)
