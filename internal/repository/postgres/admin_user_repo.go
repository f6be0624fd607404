// internal/repository/postgres/admin_user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"lexsite-service/internal/domain/adminuser"
	xerrors "lexsite-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AdminUserRepository struct {
	db *pgxpool.Pool
}

func NewAdminUserRepository(db *pgxpool.Pool) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// Create inserts a role-profile row.
func (r *AdminUserRepository) Create(ctx context.Context, u *adminuser.AdminUser) error {
	query := `
		INSERT INTO admin_users (id, email, full_name, role, principal_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		u.ID, u.Email, u.FullName, u.Role, u.PrincipalID,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

// FindByPrincipalID resolves the role profile backing a principal.
// Returns ErrNotFound when no row matches; uniqueness of principal_id
// is enforced by the schema.
func (r *AdminUserRepository) FindByPrincipalID(ctx context.Context, principalID string) (*adminuser.AdminUser, error) {
	query := `
		SELECT id, email, full_name, role, principal_id, created_at, updated_at
		FROM admin_users
		WHERE principal_id = $1
	`

	var u adminuser.AdminUser
	err := r.db.QueryRow(ctx, query, principalID).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.PrincipalID, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find admin user: %w", err)
	}

	return &u, nil
}

// FindByID retrieves a role profile by its own id.
func (r *AdminUserRepository) FindByID(ctx context.Context, id string) (*adminuser.AdminUser, error) {
	query := `
		SELECT id, email, full_name, role, principal_id, created_at, updated_at
		FROM admin_users
		WHERE id = $1
	`

	var u adminuser.AdminUser
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.PrincipalID, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find admin user: %w", err)
	}

	return &u, nil
}

// List returns all role profiles, most recent first.
func (r *AdminUserRepository) List(ctx context.Context) ([]adminuser.AdminUser, error) {
	query := `
		SELECT id, email, full_name, role, principal_id, created_at, updated_at
		FROM admin_users
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin users: %w", err)
	}
	defer rows.Close()

	var users []adminuser.AdminUser
	for rows.Next() {
		var u adminuser.AdminUser
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.PrincipalID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin user: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Update patches full_name and/or role.
func (r *AdminUserRepository) Update(ctx context.Context, id string, fullName, role *string) (*adminuser.AdminUser, error) {
	query := `
		UPDATE admin_users
		SET full_name = COALESCE($2, full_name),
		    role = COALESCE($3, role),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, email, full_name, role, principal_id, created_at, updated_at
	`

	var u adminuser.AdminUser
	err := r.db.QueryRow(ctx, query, id, fullName, role).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.PrincipalID, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update admin user: %w", err)
	}

	return &u, nil
}

// Delete removes a role profile.
func (r *AdminUserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM admin_users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete admin user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// ExistsByEmail reports whether a role profile already uses email.
func (r *AdminUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM admin_users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}
