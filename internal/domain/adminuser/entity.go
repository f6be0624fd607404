// internal/domain/adminuser/entity.go
package adminuser

import "time"

// AdminUser is the role-profile row backing an admin principal. The
// PrincipalID column references the identity provider's user id and is
// unique; role-profile lookups expect at most one row per principal.
type AdminUser struct {
	ID          string    `json:"id" db:"id"`
	Email       string    `json:"email" db:"email"`
	FullName    string    `json:"full_name" db:"full_name"`
	Role        string    `json:"role" db:"role"`
	PrincipalID string    `json:"principal_id" db:"principal_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateAdminUserRequest creates both a provider account and the
// role-profile row.
type CreateAdminUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin super_admin"`
}

type UpdateAdminUserRequest struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role" binding:"omitempty,oneof=admin super_admin"`
}
