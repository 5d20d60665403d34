package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
)

// toolkit fakes the relying-party endpoints, keyed by method name.
type toolkit map[string]func(w http.ResponseWriter, body map[string]any)

func (tk toolkit) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, ok := tk[path.Base(r.URL.Path)]
	if !ok {
		http.NotFound(w, r)
		return
	}
	body := map[string]any{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	h(w, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeToolkitError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"code":    status,
			"message": message,
			"errors":  []map[string]any{{"message": message, "domain": "global", "reason": "invalid"}},
		},
	})
}

func newBackend(t *testing.T, h http.Handler) (*FirebaseBackend, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	b, err := NewFirebaseBackend(context.Background(), FirebaseConfig{
		ProjectID: testProject,
		Timeout:   300 * time.Millisecond,
	}, logger, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return b, srv
}

func TestFirebase_CreateAccount(t *testing.T) {
	var got map[string]any
	b, _ := newBackend(t, toolkit{
		"signupNewUser": func(w http.ResponseWriter, body map[string]any) {
			got = body
			writeJSON(w, http.StatusOK, map[string]any{"localId": "uid-1", "email": "a@x.com", "displayName": "Alice"})
		},
	})

	id, err := b.CreateAccount(context.Background(), entity.NewAccount{Email: "a@x.com", Password: "Passw0rd", DisplayName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "uid-1", id.UID)
	assert.Equal(t, entity.ProviderEmailPassword, id.AuthProvider)
	assert.Equal(t, "a@x.com", got["email"])
	assert.Equal(t, "Alice", got["displayName"])
}

func TestFirebase_CreateAccountDuplicate(t *testing.T) {
	b, _ := newBackend(t, toolkit{
		"signupNewUser": func(w http.ResponseWriter, _ map[string]any) {
			writeToolkitError(w, http.StatusBadRequest, "EMAIL_EXISTS")
		},
	})

	_, err := b.CreateAccount(context.Background(), entity.NewAccount{Email: "a@x.com", Password: "Passw0rd"})
	require.ErrorIs(t, err, domain.ErrDuplicateAccount)
	require.ErrorIs(t, err, domain.ErrBackendRejected)
	assert.NotErrorIs(t, err, domain.ErrBackendUnreachable)
}

func TestFirebase_VerifyPassword(t *testing.T) {
	b, _ := newBackend(t, toolkit{
		"verifyPassword": func(w http.ResponseWriter, body map[string]any) {
			if body["password"] != "Passw0rd" {
				writeToolkitError(w, http.StatusBadRequest, "INVALID_PASSWORD")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"localId": "uid-1", "email": "a@x.com", "displayName": "Alice", "registered": true,
			})
		},
	})

	id, err := b.VerifyPassword(context.Background(), "a@x.com", "Passw0rd")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", id.UID)
	assert.Equal(t, "Alice", id.DisplayName)

	_, err = b.VerifyPassword(context.Background(), "a@x.com", "passw0rd")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	require.ErrorIs(t, err, domain.ErrBackendRejected)
}

func TestFirebase_TransientFailuresAreUnreachable(t *testing.T) {
	for _, status := range []int{http.StatusInternalServerError, http.StatusServiceUnavailable, http.StatusTooManyRequests} {
		t.Run(fmt.Sprint(status), func(t *testing.T) {
			b, _ := newBackend(t, toolkit{
				"verifyPassword": func(w http.ResponseWriter, _ map[string]any) {
					writeToolkitError(w, status, "BACKEND_ERROR")
				},
			})
			_, err := b.VerifyPassword(context.Background(), "a@x.com", "Passw0rd")
			require.ErrorIs(t, err, domain.ErrBackendUnreachable)
			assert.NotErrorIs(t, err, domain.ErrBackendRejected)
		})
	}
}

func TestFirebase_ConnectionRefusedIsUnreachable(t *testing.T) {
	b, srv := newBackend(t, toolkit{})
	srv.Close()

	_, err := b.Lookup(context.Background(), "a@x.com")
	require.ErrorIs(t, err, domain.ErrBackendUnreachable)
}

func TestFirebase_TimeoutIsUnreachable(t *testing.T) {
	b, _ := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))

	start := time.Now()
	_, err := b.VerifyPassword(context.Background(), "a@x.com", "Passw0rd")
	require.ErrorIs(t, err, domain.ErrBackendUnreachable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFirebase_Lookup(t *testing.T) {
	b, _ := newBackend(t, toolkit{
		"getAccountInfo": func(w http.ResponseWriter, body map[string]any) {
			emails, _ := body["email"].([]any)
			if len(emails) == 0 || emails[0] != "g@x.com" {
				writeJSON(w, http.StatusOK, map[string]any{"kind": "identitytoolkit#GetAccountInfoResponse"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"users": []map[string]any{{
					"localId":          "uid-g",
					"email":            "g@x.com",
					"emailVerified":    true,
					"displayName":      "Gina",
					"providerUserInfo": []map[string]any{{"providerId": "google.com"}},
				}},
			})
		},
	})

	id, err := b.Lookup(context.Background(), "g@x.com")
	require.NoError(t, err)
	assert.Equal(t, "uid-g", id.UID)
	assert.True(t, id.EmailVerified)
	assert.Equal(t, entity.ProviderGoogle, id.AuthProvider)

	_, err = b.Lookup(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.NotErrorIs(t, err, domain.ErrBackendUnreachable)
}

func TestFirebase_IssueResetLink(t *testing.T) {
	b, _ := newBackend(t, toolkit{
		"getOobConfirmationCode": func(w http.ResponseWriter, body map[string]any) {
			if body["requestType"] != "PASSWORD_RESET" {
				writeToolkitError(w, http.StatusBadRequest, "INVALID_REQ_TYPE")
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"email": body["email"], "oobCode": "code-123"})
		},
	})

	link, err := b.IssueResetLink(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "https://"+testProject+".firebaseapp.com/__/auth/action?"))
	assert.Contains(t, link, "oobCode=code-123")
	assert.Contains(t, link, "mode=resetPassword")
}

func TestFirebase_UpdateAndDelete(t *testing.T) {
	var updated, deleted map[string]any
	b, _ := newBackend(t, toolkit{
		"setAccountInfo": func(w http.ResponseWriter, body map[string]any) {
			updated = body
			writeJSON(w, http.StatusOK, map[string]any{"localId": body["localId"]})
		},
		"deleteAccount": func(w http.ResponseWriter, body map[string]any) {
			deleted = body
			writeJSON(w, http.StatusOK, map[string]any{"kind": "identitytoolkit#DeleteAccountResponse"})
		},
	})

	require.NoError(t, b.UpdateAccount(context.Background(), "uid-1", entity.AccountUpdate{Password: "N3wPassword"}))
	assert.Equal(t, "uid-1", updated["localId"])
	assert.Equal(t, "N3wPassword", updated["password"])

	require.NoError(t, b.DeleteAccount(context.Background(), "uid-1"))
	assert.Equal(t, "uid-1", deleted["localId"])
}

func TestNullBackend(t *testing.T) {
	ctx := context.Background()
	var nb NullBackend

	_, err := nb.VerifyPassword(ctx, "a@x.com", "x")
	require.ErrorIs(t, err, domain.ErrBackendUnreachable)
	_, err = nb.VerifyAssertion(ctx, "tok")
	require.ErrorIs(t, err, domain.ErrBackendUnreachable)
	_, err = nb.Lookup(ctx, "a@x.com")
	require.ErrorIs(t, err, domain.ErrBackendUnreachable)
	_, err = nb.CreateAccount(ctx, entity.NewAccount{})
	require.ErrorIs(t, err, domain.ErrBackendUnreachable)
	_, err = nb.IssueResetLink(ctx, "a@x.com")
	require.ErrorIs(t, err, domain.ErrBackendUnreachable)
	require.ErrorIs(t, nb.UpdateAccount(ctx, "u", entity.AccountUpdate{}), domain.ErrBackendUnreachable)
	require.ErrorIs(t, nb.DeleteAccount(ctx, "u"), domain.ErrBackendUnreachable)
}

func TestReasonCode(t *testing.T) {
	assert.Equal(t, "WEAK_PASSWORD", reasonCode("WEAK_PASSWORD : Password should be at least 6 characters"))
	assert.Equal(t, "EMAIL_EXISTS", reasonCode("EMAIL_EXISTS"))
	assert.Equal(t, reasonUnknownBackendErr, reasonCode("  "))
}
