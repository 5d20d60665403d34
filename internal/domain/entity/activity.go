package entity

import "time"

type ActivityType string

const (
	ActivityAccountCreated       ActivityType = "account_created"
	ActivityLoginSuccessful      ActivityType = "login_successful"
	ActivityLoginFailed          ActivityType = "login_failed"
	ActivityPasswordReset        ActivityType = "password_reset"
	ActivityPasswordResetRequest ActivityType = "password_reset_request"
)

// ActivityLogEntry is an append-only audit record. Details never carry
// passwords, tokens or hashes.
type ActivityLogEntry struct {
	UserID       string            `json:"user_id"`
	ActivityType ActivityType      `json:"activity_type"`
	Timestamp    time.Time         `json:"timestamp"`
	Details      map[string]string `json:"details,omitempty"`
}
