// internal/middleware/helpers.go
package middleware

import (
	"lexsite-service/internal/domain/session"
	"lexsite-service/internal/pkg/authsession"

	"github.com/gin-gonic/gin"
)

// GetController returns the session controller stored by Auth().
func GetController(c *gin.Context) (*authsession.Controller, bool) {
	v, exists := c.Get("session_controller")
	if !exists {
		return nil, false
	}
	ctl, ok := v.(*authsession.Controller)
	return ctl, ok
}

// MustGetController gets the controller from context or panics
func MustGetController(c *gin.Context) *authsession.Controller {
	ctl, ok := GetController(c)
	if !ok {
		panic("session_controller not found in context")
	}
	return ctl
}

// GetToken returns the raw bearer token stored by Auth().
func GetToken(c *gin.Context) (string, bool) {
	v, exists := c.Get("session_token")
	if !exists {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}

// MustGetToken gets the token from context or panics
func MustGetToken(c *gin.Context) string {
	token, ok := GetToken(c)
	if !ok {
		panic("session_token not found in context")
	}
	return token
}

// GetRoleProfile returns the role profile stored by Auth().
func GetRoleProfile(c *gin.Context) *session.RoleProfile {
	v, exists := c.Get("role_profile")
	if !exists {
		return nil
	}
	rp, ok := v.(*session.RoleProfile)
	if !ok {
		return nil
	}
	return rp
}

// IsAuthenticated checks if request carries a resolved session
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("session_controller")
	return exists
}
