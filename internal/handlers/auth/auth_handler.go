// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	domain "leadscout-service/internal/domain/auth"
	"leadscout-service/internal/middleware"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/response"
	service "leadscout-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService *service.Service
}

func NewAuthHandler(authService *service.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates an account and signs the user in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid registration payload", err)
		return
	}
	req.IPAddress = c.ClientIP()

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			response.Error(c, http.StatusConflict, "email already registered", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "registration failed", err)
		return
	}

	response.Success(c, http.StatusCreated, "account created", result)
}

// Login authenticates credentials and returns a token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid login payload", err)
		return
	}
	req.IPAddress = c.ClientIP()

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrRateLimited):
			response.Error(c, http.StatusTooManyRequests, "too many login attempts", nil)
		case xerrors.Is(err, xerrors.ErrAccountDisabled):
			response.Forbidden(c, "account is disabled")
		case xerrors.Is(err, xerrors.ErrUnauthorized):
			response.Unauthorized(c, "invalid email or password")
		default:
			response.Error(c, http.StatusInternalServerError, "login failed", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "login successful", result)
}

// Refresh rotates a refresh token into a new pair.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req domain.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid refresh payload", err)
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrTokenRevoked),
			xerrors.Is(err, xerrors.ErrSessionExpired),
			xerrors.Is(err, xerrors.ErrAccountDisabled):
			response.Unauthorized(c, "session expired, please sign in again")
		default:
			response.Error(c, http.StatusInternalServerError, "refresh failed", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "token refreshed", result)
}

// Logout revokes the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.GetClaims(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		response.Error(c, http.StatusInternalServerError, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logged out", nil)
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	info, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "account not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load account", err)
		return
	}

	response.Success(c, http.StatusOK, "account retrieved", info)
}

// ForgotPassword issues a single-use reset token. The response never reveals
// whether the email exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req domain.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid payload", err)
		return
	}

	token, err := h.authService.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrRateLimited) {
			response.Error(c, http.StatusTooManyRequests, "too many reset requests", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to start reset", err)
		return
	}

	// TODO: deliver the token by email once an outbound mail provider is wired.
	data := gin.H{}
	if token != "" && gin.Mode() != gin.ReleaseMode {
		data["resetToken"] = token
	}

	response.Success(c, http.StatusOK, "if the account exists, a reset link has been sent", data)
}

// ResetPassword redeems a reset token.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req domain.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid payload", err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if xerrors.Is(err, xerrors.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, "invalid or expired reset token", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to reset password", err)
		return
	}

	response.Success(c, http.StatusOK, "password updated, please sign in", nil)
}
