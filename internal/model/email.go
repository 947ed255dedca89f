package model

import "time"

// ComposedEmail is an outreach email ready to verify and send.
type ComposedEmail struct {
	To      string
	Subject string
	Body    string
}

// VerificationResult is the outcome of recipient verification.
type VerificationResult struct {
	Reason  string
	Valid   bool
	Caution bool
}

// Send result reasons.
const (
	ReasonSent               = "sent"
	ReasonDailyLimitReached  = "daily_limit_reached"
	ReasonVerificationFailed = "verification_failed"
	ReasonSendFailed         = "send_failed"
	ReasonNoEmail            = "no_email"
)

// SendResult reports a single send attempt.
type SendResult struct {
	SentAt    time.Time
	MessageID string
	Reason    string
	Message   string
	Success   bool
}

// SendError is one entry in the rolling send-failure log.
type SendError struct {
	Timestamp    time.Time `json:"timestamp"`
	Email        string    `json:"email"`
	Organization string    `json:"organization"`
	Subject      string    `json:"subject,omitempty"`
	Error        string    `json:"error"`
}
