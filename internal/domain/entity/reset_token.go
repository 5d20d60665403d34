package entity

import "time"

// ResetToken is a persisted password-reset grant. Only the SHA-256 digest of
// the opaque token is stored.
type ResetToken struct {
	TokenHash string
	UserID    string
	Email     string
	Source    Source
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
}

// Usable reports whether the token may still be redeemed at now.
func (t ResetToken) Usable(now time.Time) bool {
	return !t.Used && !now.After(t.ExpiresAt)
}

// TokenClaims is what a verified reset token resolves to.
type TokenClaims struct {
	UserID string
	Email  string
	Source Source
}

// IssuedToken is returned to the caller once; the plaintext is never stored.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// ResetNotice is handed to the out-of-band mail collaborator.
type ResetNotice struct {
	Email       string    `json:"email"`
	ResetLink   string    `json:"reset_link"`
	ExpiresAt   time.Time `json:"expires_at"`
	RequestedAt time.Time `json:"requested_at"`
}
