package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

const (
	providerIDPassword = "password"
	providerIDGoogle   = "google.com"

	requestTypePasswordReset = "PASSWORD_RESET"
)

type FirebaseConfig struct {
	ProjectID       string
	APIKey          string
	CredentialsFile string
	Timeout         time.Duration
	// ActionURL receives the oobCode of provider-issued reset links.
	ActionURL string
	CertsURL  string
}

// FirebaseBackend talks to Firebase Authentication through the Identity
// Toolkit v3 relying-party API.
type FirebaseBackend struct {
	rp        *identitytoolkit.RelyingpartyService
	verifier  *AssertionVerifier
	timeout   time.Duration
	actionURL string
	logger    *logrus.Logger
}

// NewFirebaseBackend builds the backend. Extra client options are appended
// after the ones derived from cfg, so callers may override the endpoint or
// HTTP client.
func NewFirebaseBackend(ctx context.Context, cfg FirebaseConfig, logger *logrus.Logger, opts ...option.ClientOption) (*FirebaseBackend, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("firebase project id is required")
	}
	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}
	clientOpts = append(clientOpts, opts...)

	svc, err := identitytoolkit.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.ActionURL == "" {
		cfg.ActionURL = fmt.Sprintf("https://%s.firebaseapp.com/__/auth/action", cfg.ProjectID)
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &FirebaseBackend{
		rp:        svc.Relyingparty,
		verifier:  NewAssertionVerifier(cfg.ProjectID, cfg.CertsURL, nil),
		timeout:   cfg.Timeout,
		actionURL: cfg.ActionURL,
		logger:    logger,
	}, nil
}

func (b *FirebaseBackend) fail(op string, err error) error {
	classified := classify(op, err)
	entry := b.logger.WithField("op", op)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		entry = entry.WithFields(logrus.Fields{"status": gerr.Code, "backend_message": gerr.Message})
	} else {
		entry = entry.WithError(err)
	}
	if errors.Is(classified, domain.ErrBackendUnreachable) {
		entry.Warn("identity backend unreachable")
	} else {
		entry.Debug("identity backend rejected request")
	}
	return classified
}

func (b *FirebaseBackend) CreateAccount(ctx context.Context, in entity.NewAccount) (*entity.ManagedIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	res, err := b.rp.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       in.Email,
		Password:    in.Password,
		DisplayName: in.DisplayName,
	}).Context(ctx).Do()
	if err != nil {
		return nil, b.fail("signupNewUser", err)
	}
	return &entity.ManagedIdentity{
		UID:          res.LocalId,
		Email:        firstNonEmpty(res.Email, in.Email),
		DisplayName:  firstNonEmpty(res.DisplayName, in.DisplayName),
		AuthProvider: entity.ProviderEmailPassword,
	}, nil
}

func (b *FirebaseBackend) VerifyPassword(ctx context.Context, email, password string) (*entity.ManagedIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	res, err := b.rp.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, b.fail("verifyPassword", err)
	}
	return &entity.ManagedIdentity{
		UID:          res.LocalId,
		Email:        firstNonEmpty(res.Email, email),
		DisplayName:  res.DisplayName,
		PhotoURL:     res.PhotoUrl,
		AuthProvider: entity.ProviderEmailPassword,
	}, nil
}

func (b *FirebaseBackend) VerifyAssertion(ctx context.Context, assertion string) (*entity.ManagedIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.verifier.Verify(ctx, assertion)
}

// IssueResetLink asks the backend for a reset code. When the backend mails the
// user itself no code comes back and the link is empty.
func (b *FirebaseBackend) IssueResetLink(ctx context.Context, email string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	res, err := b.rp.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		Email:       email,
		RequestType: requestTypePasswordReset,
	}).Context(ctx).Do()
	if err != nil {
		return "", b.fail("getOobConfirmationCode", err)
	}
	if res.OobCode == "" {
		return "", nil
	}
	q := url.Values{"mode": {"resetPassword"}, "oobCode": {res.OobCode}}
	return b.actionURL + "?" + q.Encode(), nil
}

func (b *FirebaseBackend) UpdateAccount(ctx context.Context, uid string, upd entity.AccountUpdate) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	_, err := b.rp.SetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartySetAccountInfoRequest{
		LocalId:     uid,
		Password:    upd.Password,
		DisplayName: upd.DisplayName,
		PhotoUrl:    upd.PhotoURL,
	}).Context(ctx).Do()
	if err != nil {
		return b.fail("setAccountInfo", err)
	}
	return nil
}

func (b *FirebaseBackend) DeleteAccount(ctx context.Context, uid string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	_, err := b.rp.DeleteAccount(&identitytoolkit.IdentitytoolkitRelyingpartyDeleteAccountRequest{
		LocalId: uid,
	}).Context(ctx).Do()
	if err != nil {
		return b.fail("deleteAccount", err)
	}
	return nil
}

func (b *FirebaseBackend) Lookup(ctx context.Context, email string) (*entity.ManagedIdentity, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	res, err := b.rp.GetAccountInfo(&identitytoolkit.IdentitytoolkitRelyingpartyGetAccountInfoRequest{
		Email: []string{email},
	}).Context(ctx).Do()
	if err != nil {
		return nil, b.fail("getAccountInfo", err)
	}
	if len(res.Users) == 0 || res.Users[0] == nil {
		return nil, domain.Rejected(domain.ErrAccountNotFound, reasonEmailNotFound)
	}
	u := res.Users[0]
	return &entity.ManagedIdentity{
		UID:           u.LocalId,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
		PhotoURL:      u.PhotoUrl,
		AuthProvider:  providerOf(u),
	}, nil
}

// providerOf prefers password sign-in when an account has both.
func providerOf(u *identitytoolkit.UserInfo) entity.AuthProvider {
	google := false
	for _, p := range u.ProviderUserInfo {
		if p == nil {
			continue
		}
		switch p.ProviderId {
		case providerIDPassword:
			return entity.ProviderEmailPassword
		case providerIDGoogle:
			google = true
		}
	}
	if google {
		return entity.ProviderGoogle
	}
	return entity.ProviderEmailPassword
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

var _ repository.IdentityProvider = (*FirebaseBackend)(nil)
