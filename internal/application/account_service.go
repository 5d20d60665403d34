package application

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
	"github.com/oksasatya/aquatech-dashboard/pkg/validation"
)

type AccountConfig struct {
	// ResetURL is the page that accepts ?token= for registry-issued tokens.
	ResetURL string
	// ResetViaProvider lets the managed backend mint reset links for its own
	// accounts.
	ResetViaProvider bool
}

// AccountService implements signup and the password reset flows on top of
// the same stores the AuthResolver reads.
type AccountService struct {
	backend  repository.IdentityProvider
	profiles repository.ProfileRepository
	local    repository.CredentialStore
	tokens   *ResetTokenRegistry
	notifier repository.ResetNotifier
	audit    *ActivityAudit
	logger   *logrus.Logger
	cfg      AccountConfig
	now      func() time.Time
}

func NewAccountService(
	backend repository.IdentityProvider,
	profiles repository.ProfileRepository,
	local repository.CredentialStore,
	tokens *ResetTokenRegistry,
	notifier repository.ResetNotifier,
	audit *ActivityAudit,
	logger *logrus.Logger,
	cfg AccountConfig,
) *AccountService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AccountService{
		backend:  backend,
		profiles: profiles,
		local:    local,
		tokens:   tokens,
		notifier: notifier,
		audit:    audit,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

type SignupInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FullName        string
}

type SignupResult struct {
	UserID string
	Source entity.Source
}

func (s *AccountService) Signup(ctx context.Context, in SignupInput) (SignupResult, error) {
	email := entity.NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if email == "" || in.Password == "" || in.ConfirmPassword == "" || fullName == "" {
		return SignupResult{}, domain.NewValidationError("", "Please fill in all required fields")
	}
	if !validation.IsEmail(email) {
		return SignupResult{}, domain.NewValidationError("email", "Please enter a valid email address")
	}
	if in.Password != in.ConfirmPassword {
		return SignupResult{}, domain.NewValidationError("confirm_password", "Passwords do not match")
	}
	if msg := validation.CheckPassword(in.Password); msg != "" {
		return SignupResult{}, domain.NewValidationError("password", msg)
	}

	res, err := s.signupManaged(ctx, email, in.Password, fullName)
	if errors.Is(err, domain.ErrBackendUnreachable) {
		s.logger.WithError(err).Warn("identity backend unreachable, creating local account")
		var uid string
		uid, err = s.local.Create(ctx, email, in.Password, fullName)
		res = SignupResult{UserID: uid, Source: entity.SourceLocal}
	}
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return SignupResult{}, domain.ErrDuplicateAccount
		}
		return SignupResult{}, err
	}

	s.audit.Record(ctx, res.UserID, entity.ActivityAccountCreated, map[string]string{
		"email":  email,
		"source": string(res.Source),
	})
	return res, nil
}

func (s *AccountService) signupManaged(ctx context.Context, email, password, fullName string) (SignupResult, error) {
	id, err := s.backend.CreateAccount(ctx, entity.NewAccount{Email: email, Password: password, DisplayName: fullName})
	if err != nil {
		return SignupResult{}, err
	}
	if id.DisplayName == "" {
		id.DisplayName = fullName
	}
	id.AuthProvider = entity.ProviderEmailPassword
	p := entity.NewProfile(*id, s.now().UTC())
	if err := s.profiles.Create(ctx, &p); err != nil {
		s.logger.WithError(err).WithField("uid", id.UID).Warn("create profile failed")
	}
	return SignupResult{UserID: id.UID, Source: entity.SourceManaged}, nil
}

// ForgotPassword returns the reset link for email, or "" when there is none
// to send. Unknown accounts are not an error.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = entity.NormalizeEmail(email)
	if email == "" {
		return "", domain.NewValidationError("email", "Please enter your email address")
	}
	if !validation.IsEmail(email) {
		return "", domain.NewValidationError("email", "Please enter a valid email address")
	}

	grant, err := s.issueReset(ctx, email)
	if err != nil || grant == nil {
		return "", err
	}

	s.audit.Record(ctx, grant.userID, entity.ActivityPasswordResetRequest, map[string]string{
		"email":  email,
		"source": string(grant.source),
	})
	if grant.link != "" && s.notifier != nil {
		notice := entity.ResetNotice{Email: email, ResetLink: grant.link, ExpiresAt: grant.expiresAt, RequestedAt: s.now().UTC()}
		if err := s.notifier.NotifyReset(ctx, notice); err != nil {
			s.logger.WithError(err).WithField("user_id", grant.userID).Warn("queue reset notice failed")
		}
	}
	return grant.link, nil
}

type resetGrant struct {
	userID    string
	source    entity.Source
	link      string
	expiresAt time.Time
}

// issueReset finds the owning store for email and mints a link. A nil grant
// means there is nothing to send.
func (s *AccountService) issueReset(ctx context.Context, email string) (*resetGrant, error) {
	found, err := s.backend.Lookup(ctx, email)
	switch {
	case err == nil:
		provider := found.AuthProvider
		if p, perr := s.profiles.GetByUID(ctx, found.UID); perr == nil && p.AuthProvider != "" {
			provider = p.AuthProvider
		}
		if provider.ThirdParty() {
			s.logger.WithField("uid", found.UID).Info("reset requested for third-party account, ignoring")
			return nil, nil
		}
		if s.cfg.ResetViaProvider {
			link, lerr := s.backend.IssueResetLink(ctx, email)
			if lerr == nil {
				return &resetGrant{userID: found.UID, source: entity.SourceManaged, link: link}, nil
			}
			s.logger.WithError(lerr).Warn("provider reset link failed, issuing local token")
		}
		return s.issueToken(ctx, found.UID, email, entity.SourceManaged)

	case errors.Is(err, domain.ErrBackendUnreachable):
		acc, ferr := s.local.FindByEmail(ctx, email)
		if errors.Is(ferr, domain.ErrAccountNotFound) {
			return nil, nil
		}
		if ferr != nil {
			return nil, ferr
		}
		return s.issueToken(ctx, acc.UserID, email, entity.SourceLocal)

	default:
		// not found or rejected: stay silent
		return nil, nil
	}
}

func (s *AccountService) issueToken(ctx context.Context, userID, email string, source entity.Source) (*resetGrant, error) {
	tok, err := s.tokens.Issue(ctx, userID, email, source)
	if err != nil {
		return nil, err
	}
	return &resetGrant{userID: userID, source: source, link: s.resetLink(tok.Token), expiresAt: tok.ExpiresAt}, nil
}

func (s *AccountService) resetLink(token string) string {
	sep := "?"
	if strings.Contains(s.cfg.ResetURL, "?") {
		sep = "&"
	}
	return s.cfg.ResetURL + sep + "token=" + url.QueryEscape(token)
}

func (s *AccountService) VerifyResetToken(ctx context.Context, token string) (entity.TokenClaims, error) {
	return s.tokens.Verify(ctx, token)
}

type ResetInput struct {
	Token           string
	NewPassword     string
	ConfirmPassword string
}

// ResetPassword consumes the token before touching the password, so a failed
// update needs a fresh link.
func (s *AccountService) ResetPassword(ctx context.Context, in ResetInput) error {
	if in.Token == "" || in.NewPassword == "" || in.ConfirmPassword == "" {
		return domain.NewValidationError("", "Please fill in all fields")
	}
	if in.NewPassword != in.ConfirmPassword {
		return domain.NewValidationError("confirm_password", "Passwords do not match")
	}
	if msg := validation.CheckPassword(in.NewPassword); msg != "" {
		return domain.NewValidationError("new_password", msg)
	}

	claims, err := s.tokens.Consume(ctx, in.Token)
	if err != nil {
		return err
	}
	switch claims.Source {
	case entity.SourceManaged:
		err = s.backend.UpdateAccount(ctx, claims.UserID, entity.AccountUpdate{Password: in.NewPassword})
	case entity.SourceLocal:
		err = s.local.UpdatePassword(ctx, claims.UserID, in.NewPassword)
	default:
		err = domain.ErrAccountNotFound
	}
	if err != nil {
		s.logger.WithError(err).WithField("user_id", claims.UserID).Error("password update after token consume failed")
		return err
	}

	s.audit.Record(ctx, claims.UserID, entity.ActivityPasswordReset, map[string]string{
		"email":  claims.Email,
		"source": string(claims.Source),
	})
	return nil
}

// DeleteAccount removes a managed account and its profile. Local and demo
// accounts are never deleted.
func (s *AccountService) DeleteAccount(ctx context.Context, sess *entity.SessionRecord) error {
	if sess.Source != entity.SourceManaged {
		return domain.NewValidationError("", "This account cannot be deleted")
	}
	if err := s.backend.DeleteAccount(ctx, sess.UserID); err != nil {
		return err
	}
	if err := s.profiles.Delete(ctx, sess.UserID); err != nil {
		s.logger.WithError(err).WithField("uid", sess.UserID).Warn("delete profile failed")
	}
	return nil
}
