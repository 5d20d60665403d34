package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokens_RoundTrip(t *testing.T) {
	m := NewSessionTokens("secret")
	now := time.Now()

	tok, err := m.Sign("sid-1", now, now.Add(time.Hour))
	require.NoError(t, err)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", claims.SessionID)
}

func TestSessionTokens_Rejects(t *testing.T) {
	m := NewSessionTokens("secret")
	now := time.Now()

	expired, err := m.Sign("sid-1", now.Add(-2*time.Hour), now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = m.Parse(expired)
	require.Error(t, err)

	other, err := NewSessionTokens("other").Sign("sid-1", now, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = m.Parse(other)
	require.Error(t, err)

	_, err = m.Parse("garbage")
	require.Error(t, err)
}
