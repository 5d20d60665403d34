package application

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
	"github.com/oksasatya/aquatech-dashboard/pkg/validation"
)

// Reason codes recorded with login_failed.
const (
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonWrongAuthMethod    = "wrong_auth_method"
	ReasonWrongProvider      = "wrong_provider"
	ReasonInvalidAssertion   = "invalid_assertion"
)

const (
	DemoUserID   = "demo_user"
	DemoUserName = "Demo User"
)

// DemoAccount is the static credential accepted when every store has failed.
type DemoAccount struct {
	Enabled  bool
	Email    string
	Password string
}

func DefaultDemoAccount() DemoAccount {
	return DemoAccount{Enabled: true, Email: "demo@aquatech.com", Password: "Demo123!"}
}

func (d DemoAccount) matches(email, password string) bool {
	if !d.Enabled || d.Email == "" {
		return false
	}
	if entity.NormalizeEmail(email) != entity.NormalizeEmail(d.Email) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(d.Password)) == 1
}

// LoginInput carries either an email/password pair or a third-party
// assertion. An assertion takes precedence when both are set.
type LoginInput struct {
	Email     string
	Password  string
	Assertion string
}

// AuthResolver runs one login attempt through the managed backend, the local
// credential store and the demo account, in that order. Only an unreachable
// backend lets the attempt move on; any other failure is final.
type AuthResolver struct {
	backend  repository.IdentityProvider
	profiles repository.ProfileRepository
	local    repository.CredentialStore
	demo     DemoAccount
	audit    *ActivityAudit
	logger   *logrus.Logger
	now      func() time.Time
}

func NewAuthResolver(
	backend repository.IdentityProvider,
	profiles repository.ProfileRepository,
	local repository.CredentialStore,
	demo DemoAccount,
	audit *ActivityAudit,
	logger *logrus.Logger,
) *AuthResolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthResolver{
		backend:  backend,
		profiles: profiles,
		local:    local,
		demo:     demo,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve returns a complete user or an error, never both.
func (r *AuthResolver) Resolve(ctx context.Context, in LoginInput) (*entity.AuthenticatedUser, error) {
	if strings.TrimSpace(in.Assertion) != "" {
		return r.resolveAssertion(ctx, in.Assertion)
	}

	email := entity.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.NewValidationError("", "Please fill in all fields")
	}
	if !validation.IsEmail(email) {
		return nil, domain.NewValidationError("email", "Please enter a valid email address")
	}

	user, err := r.tryManaged(ctx, email, in.Password)
	if !errors.Is(err, domain.ErrBackendUnreachable) {
		return user, err
	}
	r.logger.WithError(err).Warn("identity backend unreachable, using local accounts")

	if user, ok := r.tryLocal(ctx, email, in.Password); ok {
		return user, nil
	}
	if user, ok := r.tryDemo(ctx, email, in.Password); ok {
		return user, nil
	}
	r.rejected(ctx, email, email, ReasonInvalidCredentials)
	return nil, domain.ErrInvalidCredentials
}

func (r *AuthResolver) resolveAssertion(ctx context.Context, assertion string) (*entity.AuthenticatedUser, error) {
	id, err := r.backend.VerifyAssertion(ctx, assertion)
	switch {
	case errors.Is(err, domain.ErrBackendUnreachable):
		// no local equivalent exists for a third-party sign-in
		r.logger.WithError(err).Warn("identity backend unreachable for assertion login")
		return nil, err
	case errors.Is(err, domain.ErrWrongProvider):
		r.rejected(ctx, "", "", ReasonWrongProvider)
		return nil, err
	case err != nil:
		r.rejected(ctx, "", "", ReasonInvalidAssertion)
		return nil, err
	}

	existing, perr := r.profiles.GetByUID(ctx, id.UID)
	return r.resolvedManaged(ctx, id, entity.ProviderGoogle, existing, perr), nil
}

// tryManaged returns domain.ErrBackendUnreachable when the caller should fall
// through to the local store.
func (r *AuthResolver) tryManaged(ctx context.Context, email, password string) (*entity.AuthenticatedUser, error) {
	found, err := r.backend.Lookup(ctx, email)
	if errors.Is(err, domain.ErrBackendUnreachable) {
		return nil, err
	}
	if err != nil {
		r.rejected(ctx, email, email, ReasonInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}

	provider := found.AuthProvider
	existing, perr := r.profiles.GetByUID(ctx, found.UID)
	if perr == nil && existing.AuthProvider != "" {
		provider = existing.AuthProvider
	}
	if provider.ThirdParty() {
		r.rejected(ctx, found.UID, email, ReasonWrongAuthMethod)
		return nil, domain.ErrWrongAuthMethod
	}

	verified, err := r.backend.VerifyPassword(ctx, email, password)
	if errors.Is(err, domain.ErrBackendUnreachable) {
		return nil, err
	}
	if err != nil {
		r.rejected(ctx, found.UID, email, ReasonInvalidCredentials)
		return nil, domain.ErrInvalidCredentials
	}
	if verified.UID == "" {
		verified.UID = found.UID
	}
	if verified.PhotoURL == "" {
		verified.PhotoURL = found.PhotoURL
	}
	verified.EmailVerified = found.EmailVerified
	return r.resolvedManaged(ctx, verified, provider, existing, perr), nil
}

// resolvedManaged creates the profile on first sight and otherwise refreshes
// its display fields. Profile storage failures do not fail the login.
func (r *AuthResolver) resolvedManaged(ctx context.Context, id *entity.ManagedIdentity, provider entity.AuthProvider, existing *entity.Profile, lookupErr error) *entity.AuthenticatedUser {
	now := r.now().UTC()
	profile := existing
	switch {
	case lookupErr == nil:
		refresh := repository.ProfileRefresh{Email: id.Email, DisplayName: id.DisplayName, PhotoURL: id.PhotoURL}
		if err := r.profiles.RecordLogin(ctx, id.UID, refresh, now); err != nil {
			r.logger.WithError(err).WithField("uid", id.UID).Warn("update profile last_login failed")
		}
	case errors.Is(lookupErr, domain.ErrAccountNotFound):
		id.AuthProvider = provider
		p := entity.NewProfile(*id, now)
		p.LastLogin = &now
		if err := r.profiles.Create(ctx, &p); err != nil {
			r.logger.WithError(err).WithField("uid", id.UID).Warn("create profile failed")
		}
		profile = &p
	default:
		r.logger.WithError(lookupErr).WithField("uid", id.UID).Warn("load profile failed")
	}

	user := &entity.AuthenticatedUser{
		UserID:       id.UID,
		Email:        id.Email,
		FullName:     id.DisplayName,
		Role:         entity.RoleUser,
		AuthProvider: provider,
		Source:       entity.SourceManaged,
	}
	if profile != nil {
		if profile.Role != "" {
			user.Role = profile.Role
		}
		if user.FullName == "" {
			user.FullName = profile.DisplayName
		}
	}
	r.audit.Record(ctx, user.UserID, entity.ActivityLoginSuccessful, map[string]string{
		"email":  user.Email,
		"source": string(entity.SourceManaged),
	})
	return user
}

func (r *AuthResolver) tryLocal(ctx context.Context, email, password string) (*entity.AuthenticatedUser, bool) {
	acc, err := r.local.Authenticate(ctx, email, password)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			r.logger.WithError(err).Error("local credential store failed")
		}
		return nil, false
	}
	// local accounts are not mutated on login; this entry is their last_login
	r.audit.Record(ctx, acc.UserID, entity.ActivityLoginSuccessful, map[string]string{
		"email":  acc.Email,
		"source": string(entity.SourceLocal),
	})
	return &entity.AuthenticatedUser{
		UserID:       acc.UserID,
		Email:        acc.Email,
		FullName:     acc.FullName,
		Role:         entity.RoleUser,
		AuthProvider: entity.ProviderEmailPassword,
		Source:       entity.SourceLocal,
	}, true
}

func (r *AuthResolver) tryDemo(ctx context.Context, email, password string) (*entity.AuthenticatedUser, bool) {
	if !r.demo.matches(email, password) {
		return nil, false
	}
	r.audit.Record(ctx, DemoUserID, entity.ActivityLoginSuccessful, map[string]string{
		"source": string(entity.SourceDemo),
	})
	return &entity.AuthenticatedUser{
		UserID:       DemoUserID,
		Email:        entity.NormalizeEmail(r.demo.Email),
		FullName:     DemoUserName,
		Role:         entity.RoleDemo,
		AuthProvider: entity.ProviderDemo,
		Source:       entity.SourceDemo,
	}, true
}

func (r *AuthResolver) rejected(ctx context.Context, userID, email, reason string) {
	details := map[string]string{"reason": reason}
	if email != "" {
		details["email"] = email
	}
	r.audit.Record(ctx, userID, entity.ActivityLoginFailed, details)
}
