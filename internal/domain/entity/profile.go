package entity

import "time"

const (
	RoleUser = "user"
	RoleDemo = "demo"
)

type Preferences struct {
	Notifications bool   `json:"notifications"`
	Theme         string `json:"theme"`
}

// DefaultPreferences are applied to newly created profiles.
func DefaultPreferences() Preferences {
	return Preferences{Notifications: true, Theme: "light"}
}

// Profile is the denormalized record kept for a managed identity, keyed by
// the backend uid. It stores only what the backend does not.
type Profile struct {
	UID          string
	Email        string
	DisplayName  string
	PhotoURL     string
	AuthProvider AuthProvider
	Role         string
	Preferences  Preferences
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
}

// NewProfile seeds a profile from a backend identity.
func NewProfile(id ManagedIdentity, now time.Time) Profile {
	return Profile{
		UID:          id.UID,
		Email:        id.Email,
		DisplayName:  id.DisplayName,
		PhotoURL:     id.PhotoURL,
		AuthProvider: id.AuthProvider,
		Role:         RoleUser,
		Preferences:  DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
