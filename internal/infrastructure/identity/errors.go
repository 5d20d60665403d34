package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
)

// Reason codes reported by the Identity Toolkit in error messages.
const (
	reasonEmailExists       = "EMAIL_EXISTS"
	reasonEmailNotFound     = "EMAIL_NOT_FOUND"
	reasonUserNotFound      = "USER_NOT_FOUND"
	reasonInvalidPassword   = "INVALID_PASSWORD"
	reasonInvalidLogin      = "INVALID_LOGIN_CREDENTIALS"
	reasonUserDisabled      = "USER_DISABLED"
	reasonUnknownBackendErr = "UNKNOWN"
)

// reasonCode extracts the leading code of messages such as
// "WEAK_PASSWORD : Password should be at least 6 characters".
func reasonCode(msg string) string {
	msg = strings.TrimSpace(msg)
	if i := strings.IndexAny(msg, " :"); i >= 0 {
		msg = msg[:i]
	}
	if msg == "" {
		return reasonUnknownBackendErr
	}
	return msg
}

// classify maps a client error onto the domain taxonomy. Anything that does
// not come back as an HTTP 4xx response is treated as unreachable.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s: timeout", domain.ErrBackendUnreachable, op)
		}
		return fmt.Errorf("%w: %s: %v", domain.ErrBackendUnreachable, op, err)
	}
	if gerr.Code >= http.StatusInternalServerError || gerr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s: status %d", domain.ErrBackendUnreachable, op, gerr.Code)
	}

	reason := reasonCode(gerr.Message)
	switch reason {
	case reasonEmailExists:
		return domain.Rejected(domain.ErrDuplicateAccount, reason)
	case reasonEmailNotFound, reasonUserNotFound:
		return domain.Rejected(domain.ErrAccountNotFound, reason)
	case reasonInvalidPassword, reasonInvalidLogin, reasonUserDisabled:
		return domain.Rejected(domain.ErrInvalidCredentials, reason)
	}
	return domain.Rejected(nil, reason)
}
