package entity

// AuthenticatedUser is the canonical result of a successful resolution. It is
// built fresh per login and only ever projected into a session.
type AuthenticatedUser struct {
	UserID       string       `json:"user_id"`
	Email        string       `json:"email"`
	FullName     string       `json:"full_name"`
	Role         string       `json:"role"`
	AuthProvider AuthProvider `json:"auth_provider"`
	Source       Source       `json:"source"`
}
