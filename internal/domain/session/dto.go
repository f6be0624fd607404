// internal/domain/session/dto.go
package session

import "time"

// LoginRequest carries admin login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginResponse is returned on a successful admin login.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	Principal   Principal   `json:"principal"`
	RoleProfile RoleProfile `json:"role_profile"`
}

// SessionInfo is the projection of controller state returned by the
// current-session endpoint.
type SessionInfo struct {
	State        string       `json:"state"`
	Principal    *Principal   `json:"principal,omitempty"`
	RoleProfile  *RoleProfile `json:"role_profile,omitempty"`
	IsAdmin      bool         `json:"is_admin"`
	IsSuperAdmin bool         `json:"is_super_admin"`
	LastError    string       `json:"last_error,omitempty"`
}
