// internal/middleware/auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	xerrors "lexsite-service/internal/pkg/errors"
	"lexsite-service/internal/pkg/response"
	"lexsite-service/internal/service/auth"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	authService *auth.AuthService
	loginPath   string
}

func NewAuthMiddleware(authService *auth.AuthService, loginPath string) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		loginPath:   loginPath,
	}
}

// Auth resolves the bearer token to a live session controller. Every
// authenticated request counts as activity, so the controller's
// activity monitor is touched here.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		ctl, err := m.authService.Resolve(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, xerrors.ErrSessionExpired) {
				response.Expired(c, m.loginPath)
				return
			}
			response.Error(c, http.StatusUnauthorized, "invalid or expired session", err)
			return
		}

		ctl.SetCurrentPath(c.Request.URL.Path)
		ctl.Touch()

		c.Set("session_token", token)
		c.Set("session_controller", ctl)
		if p := ctl.Principal(); p != nil {
			c.Set("principal_id", p.ID)
		}
		if rp := ctl.RoleProfile(); rp != nil {
			c.Set("role_profile", rp)
			c.Set("role", rp.Role)
		}

		c.Next()
	}
}

// AdminOnly requires an admin or super_admin role profile.
// MUST be used after Auth()
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctl, ok := GetController(c)
		if !ok {
			response.Error(c, http.StatusForbidden, "authentication required", nil)
			return
		}
		if !ctl.IsAdmin() {
			response.Forbidden(c, "admin access required")
			return
		}
		c.Next()
	}
}

// SuperAdminOnly requires the super_admin role.
// MUST be used after Auth()
func (m *AuthMiddleware) SuperAdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctl, ok := GetController(c)
		if !ok {
			response.Error(c, http.StatusForbidden, "authentication required", nil)
			return
		}
		if !ctl.IsSuperAdmin() {
			response.Forbidden(c, "super admin access required")
			return
		}
		c.Next()
	}
}

// ExtractToken pulls the bearer token from the Authorization header.
func ExtractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	// WebSocket clients cannot set headers; allow a query fallback.
	return c.Query("token")
}
