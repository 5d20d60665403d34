package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/aquatech-dashboard/internal/application"
	handlers "github.com/oksasatya/aquatech-dashboard/internal/interface/http"
	"github.com/oksasatya/aquatech-dashboard/internal/interface/middleware"
	"github.com/oksasatya/aquatech-dashboard/pkg/helpers"
)

// AuthModule serves login, signup, password reset and session routes under
// /api/auth.
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Sessions *application.SessionIssuer
	Cookies  *helpers.Manager
	RDB      *redis.Client
}

func NewAuthModule(h *handlers.AuthHandler, sessions *application.SessionIssuer, cookies *helpers.Manager, rdb *redis.Client) *AuthModule {
	return &AuthModule{Handler: h, Sessions: sessions, Cookies: cookies, RDB: rdb}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	signupLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetInitLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetConfirmLimiter := middleware.RateLimit(m.RDB, 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	a := rg.Group("/auth")
	a.POST("/login", loginLimiter, m.Handler.Login)
	a.POST("/signup", signupLimiter, m.Handler.Signup)
	a.POST("/forgot-password", resetInitLimiter, m.Handler.ForgotPassword)
	a.GET("/reset-password/:token", resetConfirmLimiter, m.Handler.VerifyResetToken)
	a.POST("/reset-password", resetConfirmLimiter, m.Handler.ResetPassword)
	a.POST("/logout", m.Handler.Logout)

	protected := a.Group("/")
	protected.Use(middleware.RequireSession(m.Sessions, m.Cookies))
	protected.Use(middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		protected.GET("/me", m.Handler.Me)
		protected.DELETE("/account", m.Handler.DeleteAccount)
	}
}
