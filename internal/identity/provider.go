// internal/identity/provider.go
package identity

import (
	"context"
	"fmt"
	"time"
)

// Auth state change events delivered to subscribers.
const (
	EventSignedIn  = "SIGNED_IN"
	EventSignedOut = "SIGNED_OUT"
)

// User is the provider's identity record, reduced to the fields the
// application reads.
type User struct {
	ID        string                 `json:"id"`
	Email     string                 `json:"email"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Metadata  map[string]interface{} `json:"user_metadata,omitempty"`
}

// Session is an active remote session: a bearer token plus the user it
// belongs to.
type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// ProviderError carries the hosted backend's structured error shape.
type ProviderError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("identity provider error [%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("identity provider error: %s", e.Message)
}

// StateChangeFunc receives auth state transitions. The session is nil
// for sign-out events.
type StateChangeFunc func(event string, session *Session)

// Provider is the hosted authentication backend, consumed as an opaque
// collaborator.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*User, error)
	GetSession(ctx context.Context, accessToken string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
	OnAuthStateChange(fn StateChangeFunc) (unsubscribe func())
}
