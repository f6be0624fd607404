// internal/service/adminuser/adminuser.go
package adminuser

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"lexsite-service/internal/domain/adminuser"
	"lexsite-service/internal/domain/session"
	"lexsite-service/internal/identity"
	xerrors "lexsite-service/internal/pkg/errors"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type AdminUserRepo interface {
	Create(ctx context.Context, u *adminuser.AdminUser) error
	FindByID(ctx context.Context, id string) (*adminuser.AdminUser, error)
	List(ctx context.Context) ([]adminuser.AdminUser, error)
	Update(ctx context.Context, id string, fullName, role *string) (*adminuser.AdminUser, error)
	Delete(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// AdminUserService manages admin role profiles. Creating an admin is a
// two-step operation: provision the account with the identity provider,
// then insert the role-profile row the session controller resolves at
// login.
type AdminUserService struct {
	repo     AdminUserRepo
	provider identity.Provider
	logger   *zap.Logger
}

func NewAdminUserService(repo AdminUserRepo, provider identity.Provider, logger *zap.Logger) *AdminUserService {
	return &AdminUserService{repo: repo, provider: provider, logger: logger}
}

func (s *AdminUserService) List(ctx context.Context) ([]adminuser.AdminUser, error) {
	return s.repo.List(ctx)
}

func (s *AdminUserService) Get(ctx context.Context, id string) (*adminuser.AdminUser, error) {
	return s.repo.FindByID(ctx, id)
}

// Create provisions an identity account and its role-profile row.
func (s *AdminUserService) Create(ctx context.Context, req *adminuser.CreateAdminUserRequest) (*adminuser.AdminUser, error) {
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check admin email: %w", err)
	}
	if exists {
		return nil, xerrors.ErrDuplicateEntry
	}

	principal, err := s.provider.SignUp(ctx, req.Email, req.Password, map[string]interface{}{
		"full_name": req.FullName,
	})
	if err != nil {
		return nil, fmt.Errorf("identity signup failed: %w", err)
	}

	u := &adminuser.AdminUser{
		ID:          ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		Email:       req.Email,
		FullName:    req.FullName,
		Role:        req.Role,
		PrincipalID: principal.ID,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create role profile: %w", err)
	}

	s.logger.Info("admin user created",
		zap.String("admin_id", u.ID),
		zap.String("role", u.Role))
	return u, nil
}

func (s *AdminUserService) Update(ctx context.Context, id string, req *adminuser.UpdateAdminUserRequest) (*adminuser.AdminUser, error) {
	return s.repo.Update(ctx, id, req.FullName, req.Role)
}

// Delete removes a role profile. The caller's own profile is protected
// so a super admin cannot lock everyone out.
func (s *AdminUserService) Delete(ctx context.Context, id string, actor *session.RoleProfile) error {
	if actor != nil && actor.ID == id {
		return xerrors.ErrSelfDelete
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("admin user deleted", zap.String("admin_id", id))
	return nil
}
