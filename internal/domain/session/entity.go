// internal/domain/session/entity.go
package session

import "time"

// Role values carried by a role profile.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Principal is the minimal identity snapshot taken from the identity
// provider's session. It is a shallow copy, never the provider's full
// user object.
type Principal struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleProfile is the application-level authorization record linked to
// a principal via PrincipalID.
type RoleProfile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
	PrincipalID string `json:"principal_id"`
}

// IsAdmin reports whether the profile grants admin access.
func (r *RoleProfile) IsAdmin() bool {
	return r.Role == RoleAdmin || r.Role == RoleSuperAdmin
}

// IsSuperAdmin reports whether the profile grants super-admin access.
func (r *RoleProfile) IsSuperAdmin() bool {
	return r.Role == RoleSuperAdmin
}

// Record is the persisted session record. It is either absent or
// fully populated; a partially written record is never stored.
type Record struct {
	Principal   Principal   `json:"principal"`
	RoleProfile RoleProfile `json:"role_profile"`
	IssuedAt    int64       `json:"issued_at"` // milliseconds since epoch
}

// IssuedTime returns IssuedAt as a time.Time.
func (r *Record) IssuedTime() time.Time {
	return time.UnixMilli(r.IssuedAt)
}

// Expired reports whether the record has outlived ttl at instant now.
// A record exactly at the TTL boundary counts as expired.
func (r *Record) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(r.IssuedTime()) >= ttl
}
