package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
)

const (
	DefaultCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

	googleSignInProvider = "google.com"
	defaultCertsMaxAge   = time.Hour
)

type firebaseClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Firebase      struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
	jwt.RegisteredClaims
}

// AssertionVerifier checks Firebase ID tokens issued after a third-party
// sign-in. Signing certificates are fetched from certsURL and cached for the
// max-age the endpoint advertises.
type AssertionVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client
	now       func() time.Time

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

func NewAssertionVerifier(projectID, certsURL string, client *http.Client) *AssertionVerifier {
	if certsURL == "" {
		certsURL = DefaultCertsURL
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &AssertionVerifier{projectID: projectID, certsURL: certsURL, client: client, now: time.Now}
}

func (v *AssertionVerifier) issuer() string {
	return "https://securetoken.google.com/" + v.projectID
}

// Verify validates the token and projects it onto a ManagedIdentity.
func (v *AssertionVerifier) Verify(ctx context.Context, assertion string) (*entity.ManagedIdentity, error) {
	if strings.TrimSpace(assertion) == "" {
		return nil, domain.Rejected(nil, "MISSING_ASSERTION")
	}
	keys, err := v.publicKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch signing certs: %v", domain.ErrBackendUnreachable, err)
	}

	claims := &firebaseClaims{}
	_, err = jwt.ParseWithClaims(assertion, claims, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := keys[kid]
		if !ok {
			return nil, errors.New("unknown signing key")
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(v.issuer()),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, domain.Rejected(nil, "INVALID_ID_TOKEN")
	}
	if claims.Subject == "" {
		return nil, domain.Rejected(nil, "MISSING_SUBJECT")
	}
	if claims.Firebase.SignInProvider != googleSignInProvider {
		return nil, fmt.Errorf("%w: %q", domain.ErrWrongProvider, claims.Firebase.SignInProvider)
	}

	return &entity.ManagedIdentity{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		DisplayName:   claims.Name,
		PhotoURL:      claims.Picture,
		AuthProvider:  entity.ProviderGoogle,
	}, nil
}

func (v *AssertionVerifier) publicKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.keys != nil && v.now().Before(v.expires) {
		return v.keys, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	var pems map[string]string
	if err := json.NewDecoder(res.Body).Decode(&pems); err != nil {
		return nil, err
	}
	keys := make(map[string]*rsa.PublicKey, len(pems))
	for kid, pem := range pems {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("cert %s: %w", kid, err)
		}
		keys[kid] = key
	}
	v.keys = keys
	v.expires = v.now().Add(maxAge(res.Header.Get("Cache-Control")))
	return keys, nil
}

func maxAge(cacheControl string) time.Duration {
	for _, part := range strings.Split(cacheControl, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "max-age=") {
			continue
		}
		if secs, err := strconv.Atoi(strings.TrimPrefix(part, "max-age=")); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultCertsMaxAge
}
