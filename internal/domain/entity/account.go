package entity

import (
	"strings"
	"time"
)

// Account is a locally managed credential record used while the managed
// identity backend is unavailable. PasswordHash is a bcrypt hash; its $2a$/$2b$
// prefix tags the algorithm.
type Account struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	FullName     string    `json:"full_name"`
	CreatedAt    time.Time `json:"created_at"`
	UserID       string    `json:"user_id"`
}

// AccountSummary is the password-free projection of an Account.
type AccountSummary struct {
	UserID   string
	Email    string
	FullName string
}

// Summary drops the password hash.
func (a Account) Summary() AccountSummary {
	return AccountSummary{UserID: a.UserID, Email: a.Email, FullName: a.FullName}
}

// NormalizeEmail is the case-insensitive key used for every account lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
