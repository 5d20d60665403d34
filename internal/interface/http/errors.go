package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/pkg/response"
	"github.com/oksasatya/aquatech-dashboard/pkg/validation"
)

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrDuplicateAccount):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrWrongAuthMethod),
		errors.Is(err, domain.ErrWrongProvider),
		errors.Is(err, domain.ErrBackendRejected),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrBackendUnreachable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an error envelope with a user-safe message.
func fail(c *gin.Context, err error) {
	var details any
	var verr *domain.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		details = map[string]string{verr.Field: verr.Message}
	}
	resp := response.Error[any](c, statusFor(err), domain.UserMessage(err), details)
	c.JSON(resp.Status, resp)
}

func badPayload(c *gin.Context, err error) {
	resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
	c.JSON(resp.Status, resp)
}
