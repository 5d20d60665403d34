package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/aquatech-dashboard/internal/application"
	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/interface/middleware"
	"github.com/oksasatya/aquatech-dashboard/pkg/helpers"
	"github.com/oksasatya/aquatech-dashboard/pkg/response"
)

type AuthHandler struct {
	Resolver *application.AuthResolver
	Accounts *application.AccountService
	Sessions *application.SessionIssuer
	Cookies  *helpers.Manager
	Logger   *logrus.Logger
	// ExposeResetLink returns the reset link in the forgot-password response.
	// Only for demos without a mail worker.
	ExposeResetLink bool
}

func NewAuthHandler(
	resolver *application.AuthResolver,
	accounts *application.AccountService,
	sessions *application.SessionIssuer,
	cookies *helpers.Manager,
	logger *logrus.Logger,
	exposeResetLink bool,
) *AuthHandler {
	return &AuthHandler{
		Resolver:        resolver,
		Accounts:        accounts,
		Sessions:        sessions,
		Cookies:         cookies,
		Logger:          logger,
		ExposeResetLink: exposeResetLink,
	}
}

type loginRequest struct {
	Email     string `json:"email" binding:"max=320"`
	Password  string `json:"password" binding:"max=1024"`
	Assertion string `json:"assertion" binding:"max=8192"`
	Remember  bool   `json:"remember"`
}

type signupRequest struct {
	Email           string `json:"email" binding:"max=320"`
	Password        string `json:"password" binding:"max=1024"`
	ConfirmPassword string `json:"confirm_password" binding:"max=1024"`
	FullName        string `json:"full_name" binding:"max=200"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"max=320"`
}

type resetPasswordRequest struct {
	Token           string `json:"token" binding:"max=512"`
	NewPassword     string `json:"new_password" binding:"max=1024"`
	ConfirmPassword string `json:"confirm_password" binding:"max=1024"`
}

func userView(u *entity.AuthenticatedUser) gin.H {
	return gin.H{
		"user_id":       u.UserID,
		"email":         u.Email,
		"full_name":     u.FullName,
		"role":          u.Role,
		"auth_provider": u.AuthProvider,
		"source":        u.Source,
	}
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	user, err := h.Resolver.Resolve(c.Request.Context(), application.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		Assertion: req.Assertion,
	})
	if err != nil {
		fail(c, err)
		return
	}

	sess, token, err := h.Sessions.Issue(c.Request.Context(), user, req.Remember)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", user.UserID).Error("issue session failed")
		resp := response.Error[any](c, http.StatusServiceUnavailable, "Unable to start a session, please try again", nil)
		c.JSON(resp.Status, resp)
		return
	}
	h.Cookies.SetSession(c, token, sess.Persistent, sess.ExpiresAt)

	msg := "Welcome back, " + user.FullName + "!"
	if user.Source == entity.SourceDemo {
		msg = "Welcome to the demo dashboard!"
	}
	resp := response.Success(c, http.StatusOK, userView(user), msg, gin.H{
		"expires_at": sess.ExpiresAt,
		"persistent": sess.Persistent,
	})
	c.JSON(resp.Status, resp)
}

// Signup POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	res, err := h.Accounts.Signup(c.Request.Context(), application.SignupInput{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		FullName:        req.FullName,
	})
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success(c, http.StatusCreated, gin.H{"user_id": res.UserID, "source": res.Source}, "Account created successfully! Please log in.", nil)
	c.JSON(resp.Status, resp)
}

const forgotPasswordMessage = "If an account exists with this email, a password reset link has been sent"

// ForgotPassword POST /api/auth/forgot-password
//
// The response is the same whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	link, err := h.Accounts.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			fail(c, err)
			return
		}
		h.Logger.WithError(err).Error("forgot password failed")
		link = ""
	}
	data := gin.H{}
	if h.ExposeResetLink && link != "" {
		data["reset_link"] = link
	}
	resp := response.Success(c, http.StatusOK, data, forgotPasswordMessage, nil)
	c.JSON(resp.Status, resp)
}

// VerifyResetToken GET /api/auth/reset-password/:token
func (h *AuthHandler) VerifyResetToken(c *gin.Context) {
	claims, err := h.Accounts.VerifyResetToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		resp := response.Error[any](c, statusFor(err), domain.UserMessage(err), gin.H{"valid": false})
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, gin.H{"valid": true, "email": claims.Email}, "token is valid", nil)
	c.JSON(resp.Status, resp)
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	err := h.Accounts.ResetPassword(c.Request.Context(), application.ResetInput{
		Token:           req.Token,
		NewPassword:     req.NewPassword,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		fail(c, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, nil, "Password has been reset successfully. Please log in.", nil)
	c.JSON(resp.Status, resp)
}

// Logout POST /api/auth/logout. Succeeds with or without a session.
func (h *AuthHandler) Logout(c *gin.Context) {
	if id := h.Sessions.SessionID(h.Cookies.Session(c)); id != "" {
		if err := h.Sessions.Destroy(c.Request.Context(), id); err != nil {
			h.Logger.WithError(err).Warn("destroy session failed")
		}
	}
	h.Cookies.Clear(c)
	resp := response.Success(c, http.StatusOK, gin.H{"logged_out": true}, "You have been logged out", nil)
	c.JSON(resp.Status, resp)
}

// Me GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	s := middleware.SessionFrom(c)
	if s == nil {
		fail(c, domain.ErrSessionNotFound)
		return
	}
	resp := response.Success(c, http.StatusOK, gin.H{
		"user_id":       s.UserID,
		"email":         s.Email,
		"full_name":     s.FullName,
		"role":          s.Role,
		"auth_provider": s.AuthProvider,
		"source":        s.Source,
		"expires_at":    s.ExpiresAt,
	}, "profile", nil)
	c.JSON(resp.Status, resp)
}

// DeleteAccount DELETE /api/auth/account
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	s := middleware.SessionFrom(c)
	if s == nil {
		fail(c, domain.ErrSessionNotFound)
		return
	}
	if err := h.Accounts.DeleteAccount(c.Request.Context(), s); err != nil {
		fail(c, err)
		return
	}
	if err := h.Sessions.Destroy(c.Request.Context(), s.ID); err != nil {
		h.Logger.WithError(err).Warn("destroy session failed")
	}
	h.Cookies.Clear(c)
	resp := response.Success(c, http.StatusOK, gin.H{"deleted": true}, "Your account has been deleted", nil)
	c.JSON(resp.Status, resp)
}
