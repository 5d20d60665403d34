package validation

import (
	"github.com/go-playground/validator/v10"
)

const maxPasswordBytes = 72

var engine = newEngine()

func newEngine() *validator.Validate {
	v := validator.New()
	configure(v)
	return v
}

var passwordRules = []struct {
	tag     string
	message string
}{
	{"min=8", "Password must be at least 8 characters long"},
	{"bcryptlen", "Password must be at most 72 bytes long"},
	{"containsany=ABCDEFGHIJKLMNOPQRSTUVWXYZ", "Password must contain at least one uppercase letter"},
	{"containsany=abcdefghijklmnopqrstuvwxyz", "Password must contain at least one lowercase letter"},
	{"containsany=0123456789", "Password must contain at least one digit"},
}

// CheckPassword returns the first policy rule pw breaks, or "" if it passes.
func CheckPassword(pw string) string {
	if engine.Var(pw, "strongpwd") == nil {
		return ""
	}
	for _, r := range passwordRules {
		if engine.Var(pw, r.tag) != nil {
			return r.message
		}
	}
	return "Password does not meet the policy"
}

// IsEmail reports whether s is a syntactically valid address.
func IsEmail(s string) bool {
	return engine.Var(s, "required,email") == nil
}
