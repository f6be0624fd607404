// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"

	"lexsite-service/internal/domain/session"
	"lexsite-service/internal/middleware"
	xerrors "lexsite-service/internal/pkg/errors"
	"lexsite-service/internal/pkg/response"
	authUsecase "lexsite-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	loginPath   string
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, loginPath string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		loginPath:   loginPath,
		logger:      logger,
	}
}

// ========== Login ==========

// Login handles admin login (public endpoint)
func (h *AuthHandler) Login(c *gin.Context) {
	var req session.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	loginResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("login failed",
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		if errors.Is(err, xerrors.ErrNoRoleProfile) {
			response.Error(c, http.StatusForbidden, "account is not an admin", err)
			return
		}
		response.Error(c, http.StatusUnauthorized, "login failed", xerrors.ErrUnauthorized)
		return
	}

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// ========== Session ==========

// Session returns the state of the current session controller
func (h *AuthHandler) Session(c *gin.Context) {
	ctl := middleware.MustGetController(c)
	response.Success(c, http.StatusOK, "session state", ctl.Info())
}

// Refresh extends the session TTL without a remote round trip
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := middleware.MustGetToken(c)
	h.authService.RefreshSession(c.Request.Context(), token)
	response.Success(c, http.StatusOK, "session refreshed", nil)
}

// Retry re-runs session reconciliation after an error state. Not
// behind the auth middleware: a controller stuck in the error state
// would never make it past it.
func (h *AuthHandler) Retry(c *gin.Context) {
	token := middleware.ExtractToken(c)
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
		return
	}

	ctl, err := h.authService.Retry(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, xerrors.ErrSessionExpired) {
			response.Expired(c, h.loginPath)
			return
		}
		response.Error(c, http.StatusServiceUnavailable, "session retry failed", err)
		return
	}

	response.Success(c, http.StatusOK, "session state", ctl.Info())
}

// ========== Logout ==========

// Logout tears the session down on both sides
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.MustGetToken(c)
	h.authService.SignOut(c.Request.Context(), token)
	response.Success(c, http.StatusOK, "logout successful", nil)
}
