package entity

import "time"

// SessionRecord caches identity fields at issuance so requests do not have to
// query the stores again. Cached fields can go stale until the next login.
type SessionRecord struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	Email        string       `json:"email"`
	FullName     string       `json:"full_name"`
	Role         string       `json:"role"`
	AuthProvider AuthProvider `json:"auth_provider"`
	Source       Source       `json:"source"`
	IssuedAt     time.Time    `json:"issued_at"`
	ExpiresAt    time.Time    `json:"expires_at"`
	// Persistent is set for "remember me" sessions; others end with the browser
	// session and ExpiresAt is only the server-side cap.
	Persistent bool `json:"persistent"`
}

func (s SessionRecord) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
