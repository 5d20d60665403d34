package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/aquatech-dashboard/internal/application"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/pkg/helpers"
	"github.com/oksasatya/aquatech-dashboard/pkg/response"
)

const (
	CtxUserIDKey  = "userID"
	CtxSessionKey = "session"
)

// RequireSession loads the session named by the cookie and stores it in the
// Gin context. Requests without a live session get 401.
func RequireSession(sessions *application.SessionIssuer, cookies *helpers.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := cookies.Session(c)
		if token == "" {
			resp := response.Error[any](c, http.StatusUnauthorized, "Please log in to access this page", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		sess, err := sessions.Lookup(c.Request.Context(), token)
		if err != nil {
			cookies.Clear(c)
			resp := response.Error[any](c, http.StatusUnauthorized, "Your session has expired, please log in again", nil)
			c.AbortWithStatusJSON(resp.Status, resp)
			return
		}
		c.Set(CtxUserIDKey, sess.UserID)
		c.Set(CtxSessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session installed by RequireSession.
func SessionFrom(c *gin.Context) *entity.SessionRecord {
	v, ok := c.Get(CtxSessionKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*entity.SessionRecord)
	return sess
}
