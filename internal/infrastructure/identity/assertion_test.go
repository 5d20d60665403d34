package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
)

const testProject = "aquatech-test"

type certServer struct {
	key     *rsa.PrivateKey
	srv     *httptest.Server
	fetches atomic.Int32
}

func newCertServer(t *testing.T) *certServer {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "securetoken.system.gserviceaccount.com"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	certPEM := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))

	cs := &certServer{key: key}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.fetches.Add(1)
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate, no-transform")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"kid-1": certPEM})
	}))
	t.Cleanup(cs.srv.Close)
	return cs
}

func (cs *certServer) sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = "kid-1"
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func googleClaims(now time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://securetoken.google.com/" + testProject,
		"aud":            testProject,
		"sub":            "uid-g1",
		"iat":            now.Add(-time.Minute).Unix(),
		"exp":            now.Add(time.Hour).Unix(),
		"email":          "fish@example.com",
		"email_verified": true,
		"name":           "Fish Keeper",
		"picture":        "https://img.example.com/fish.png",
		"firebase":       map[string]any{"sign_in_provider": "google.com"},
	}
}

func newVerifier(cs *certServer, now time.Time) *AssertionVerifier {
	v := NewAssertionVerifier(testProject, cs.srv.URL, cs.srv.Client())
	v.now = func() time.Time { return now }
	return v
}

func TestAssertionVerifier_Valid(t *testing.T) {
	cs := newCertServer(t)
	now := time.Now()
	v := newVerifier(cs, now)

	id, err := v.Verify(context.Background(), cs.sign(t, cs.key, googleClaims(now)))
	require.NoError(t, err)
	assert.Equal(t, "uid-g1", id.UID)
	assert.Equal(t, "fish@example.com", id.Email)
	assert.True(t, id.EmailVerified)
	assert.Equal(t, "Fish Keeper", id.DisplayName)
	assert.Equal(t, "https://img.example.com/fish.png", id.PhotoURL)
	assert.Equal(t, entity.ProviderGoogle, id.AuthProvider)
}

func TestAssertionVerifier_WrongProvider(t *testing.T) {
	cs := newCertServer(t)
	now := time.Now()
	v := newVerifier(cs, now)

	claims := googleClaims(now)
	claims["firebase"] = map[string]any{"sign_in_provider": "password"}
	_, err := v.Verify(context.Background(), cs.sign(t, cs.key, claims))
	require.ErrorIs(t, err, domain.ErrWrongProvider)
}

func TestAssertionVerifier_Rejections(t *testing.T) {
	cs := newCertServer(t)
	now := time.Now()
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cases := map[string]func(jwt.MapClaims) (jwt.MapClaims, *rsa.PrivateKey){
		"expired": func(c jwt.MapClaims) (jwt.MapClaims, *rsa.PrivateKey) {
			c["iat"] = now.Add(-2 * time.Hour).Unix()
			c["exp"] = now.Add(-time.Hour).Unix()
			return c, cs.key
		},
		"wrong audience": func(c jwt.MapClaims) (jwt.MapClaims, *rsa.PrivateKey) {
			c["aud"] = "someone-else"
			return c, cs.key
		},
		"wrong issuer": func(c jwt.MapClaims) (jwt.MapClaims, *rsa.PrivateKey) {
			c["iss"] = "https://accounts.google.com"
			return c, cs.key
		},
		"missing subject": func(c jwt.MapClaims) (jwt.MapClaims, *rsa.PrivateKey) {
			delete(c, "sub")
			return c, cs.key
		},
		"foreign key": func(c jwt.MapClaims) (jwt.MapClaims, *rsa.PrivateKey) {
			return c, other
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			claims, key := mutate(googleClaims(now))
			_, err := newVerifier(cs, now).Verify(context.Background(), cs.sign(t, key, claims))
			require.ErrorIs(t, err, domain.ErrBackendRejected)
			assert.NotErrorIs(t, err, domain.ErrBackendUnreachable)
		})
	}

	_, err = newVerifier(cs, now).Verify(context.Background(), "not-a-jwt")
	require.ErrorIs(t, err, domain.ErrBackendRejected)
}

func TestAssertionVerifier_CachesCerts(t *testing.T) {
	cs := newCertServer(t)
	now := time.Now()
	v := newVerifier(cs, now)
	token := cs.sign(t, cs.key, googleClaims(now))

	for i := 0; i < 3; i++ {
		_, err := v.Verify(context.Background(), token)
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, cs.fetches.Load())

	v.now = func() time.Time { return now.Add(30 * time.Minute) }
	_, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.EqualValues(t, 1, cs.fetches.Load())

	v.now = func() time.Time { return now.Add(61 * time.Minute) }
	_, _ = v.Verify(context.Background(), token)
	assert.EqualValues(t, 2, cs.fetches.Load())
}

func TestAssertionVerifier_CertFetchFailureIsUnreachable(t *testing.T) {
	cs := newCertServer(t)
	now := time.Now()
	v := newVerifier(cs, now)
	token := cs.sign(t, cs.key, googleClaims(now))
	cs.srv.Close()

	_, err := v.Verify(context.Background(), token)
	require.ErrorIs(t, err, domain.ErrBackendUnreachable)
}

func TestMaxAge(t *testing.T) {
	assert.Equal(t, 19800*time.Second, maxAge("public, max-age=19800, must-revalidate"))
	assert.Equal(t, defaultCertsMaxAge, maxAge("no-cache"))
	assert.Equal(t, defaultCertsMaxAge, maxAge("max-age=abc"))
}
