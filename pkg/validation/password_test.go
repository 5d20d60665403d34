package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	cases := map[string]string{
		"Passw0rd":     "",
		"Demo123!":     "",
		"Sh0rt":        "Password must be at least 8 characters long",
		"alllower1":    "Password must contain at least one uppercase letter",
		"ALLUPPER1":    "Password must contain at least one lowercase letter",
		"NoDigitsHere": "Password must contain at least one digit",
	}
	for pw, want := range cases {
		assert.Equal(t, want, CheckPassword(pw), pw)
	}

	long := "A1" + strings.Repeat("a", 71)
	assert.Equal(t, "Password must be at most 72 bytes long", CheckPassword(long))
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("a@x.com"))
	assert.False(t, IsEmail("not-an-email"))
	assert.False(t, IsEmail(""))
}
