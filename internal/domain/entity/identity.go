package entity

// AuthProvider names the credential type an identity signs in with.
type AuthProvider string

const (
	ProviderEmailPassword AuthProvider = "email_password"
	ProviderGoogle        AuthProvider = "google"
	ProviderDemo          AuthProvider = "demo"
)

// ThirdParty reports whether the provider is passwordless from our side.
func (p AuthProvider) ThirdParty() bool { return p == ProviderGoogle }

// Source names the store that produced an identity.
type Source string

const (
	SourceManaged Source = "managed"
	SourceLocal   Source = "local"
	SourceDemo    Source = "demo"
)

// ManagedIdentity is an identity owned by the external identity backend.
// Backend-specific fields beyond these are dropped by the adapter.
type ManagedIdentity struct {
	UID           string
	Email         string
	EmailVerified bool
	DisplayName   string
	PhotoURL      string
	AuthProvider  AuthProvider
}

// NewAccount is the input for creating a managed account.
type NewAccount struct {
	Email       string
	Password    string
	DisplayName string
}

// AccountUpdate carries optional changes for a managed account; empty fields
// are left untouched.
type AccountUpdate struct {
	Password    string
	DisplayName string
	PhotoURL    string
}
