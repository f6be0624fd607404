// internal/service/auth/auth.go
package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"lexsite-service/internal/config"
	"lexsite-service/internal/domain/adminuser"
	"lexsite-service/internal/domain/session"
	"lexsite-service/internal/identity"
	"lexsite-service/internal/pkg/authsession"
	xerrors "lexsite-service/internal/pkg/errors"
	"lexsite-service/internal/pkg/retry"
	"lexsite-service/internal/pkg/sessionstore"
	"lexsite-service/internal/storage"
	ws "lexsite-service/internal/websocket"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// RoleProfileRepo is the slice of the admin-user repository the auth
// service needs.
type RoleProfileRepo interface {
	FindByPrincipalID(ctx context.Context, principalID string) (*adminuser.AdminUser, error)
	Create(ctx context.Context, u *adminuser.AdminUser) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// AuthService owns admin sessions: it signs admins in against the
// identity provider, resolves role profiles, and manages one session
// controller per live token.
type AuthService struct {
	provider    identity.Provider
	roleRepo    RoleProfileRepo
	kv          storage.KV
	registry    *authsession.Registry
	hub         *ws.Hub
	cfg         config.AppConfig
	lookupRetry retry.Policy
	logger      *zap.Logger
}

func NewAuthService(
	provider identity.Provider,
	roleRepo RoleProfileRepo,
	kv storage.KV,
	registry *authsession.Registry,
	hub *ws.Hub,
	cfg config.AppConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		provider:    provider,
		roleRepo:    roleRepo,
		kv:          kv,
		registry:    registry,
		hub:         hub,
		cfg:         cfg,
		lookupRetry: retry.DefaultLookup,
		logger:      logger,
	}
}

// Login authenticates against the identity provider and establishes a
// session controller for the returned token. An identity without a
// role profile is signed out again and rejected; it is not an admin.
func (s *AuthService) Login(ctx context.Context, req *session.LoginRequest) (*session.LoginResponse, error) {
	remote, err := s.provider.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Info("admin login rejected", zap.String("email", req.Email), zap.Error(err))
		return nil, xerrors.ErrUnauthorized
	}

	profile, err := s.lookupRoleProfile(ctx, remote.User.ID)
	if err != nil {
		return nil, fmt.Errorf("role profile lookup failed: %w", err)
	}
	if profile == nil {
		// Valid identity, but not an admin.
		if err := s.provider.SignOut(ctx, remote.AccessToken); err != nil {
			s.logger.Warn("failed to sign out non-admin identity", zap.Error(err))
		}
		return nil, xerrors.ErrNoRoleProfile
	}

	principal := session.Principal{
		ID:        remote.User.ID,
		Email:     remote.User.Email,
		CreatedAt: remote.User.CreatedAt,
		UpdatedAt: remote.User.UpdatedAt,
	}

	ctl := s.newController(remote.AccessToken)
	s.storeFor(remote.AccessToken).Save(ctx, principal, *profile)
	ctl.Initialize(ctx)

	if ctl.State() != authsession.StateAuthenticated {
		ctl.Close()
		return nil, xerrors.ErrUnauthorized
	}
	s.registry.Put(remote.AccessToken, ctl)

	s.logger.Info("admin logged in",
		zap.String("principal_id", principal.ID),
		zap.String("role", profile.Role),
	)

	return &session.LoginResponse{
		AccessToken: remote.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   remote.ExpiresAt,
		Principal:   principal,
		RoleProfile: *profile,
	}, nil
}

// Resolve returns the session controller for a token, initializing one
// on first sight. Callers get ErrSessionExpired for tokens whose
// reconciliation lands in the unauthenticated state.
func (s *AuthService) Resolve(ctx context.Context, token string) (*authsession.Controller, error) {
	if token == "" {
		return nil, xerrors.ErrUnauthorized
	}

	if ctl, ok := s.registry.Get(token); ok {
		switch ctl.State() {
		case authsession.StateAuthenticated, authsession.StateLoading:
			return ctl, nil
		case authsession.StateError:
			err := ctl.LastError()
			return ctl, err
		default:
			s.registry.Remove(token)
			return nil, xerrors.ErrSessionExpired
		}
	}

	ctl := s.newController(token)
	ctl.Initialize(ctx)

	switch ctl.State() {
	case authsession.StateAuthenticated:
		s.registry.Put(token, ctl)
		return ctl, nil
	case authsession.StateError:
		err := ctl.LastError()
		ctl.Close()
		return nil, err
	default:
		ctl.Close()
		return nil, xerrors.ErrSessionExpired
	}
}

// SignOut tears the session down. Local state is cleared even when the
// remote call fails.
func (s *AuthService) SignOut(ctx context.Context, token string) {
	if ctl, ok := s.registry.Get(token); ok {
		ctl.SignOut(ctx)
		return
	}

	// Unknown token: still clear both sides.
	if err := s.provider.SignOut(ctx, token); err != nil {
		s.logger.Warn("remote sign-out failed", zap.Error(err))
	}
	s.storeFor(token).Clear(ctx)
}

// Retry clears the persisted record and re-runs reconciliation.
func (s *AuthService) Retry(ctx context.Context, token string) (*authsession.Controller, error) {
	if ctl, ok := s.registry.Get(token); ok {
		ctl.Retry(ctx)
		return ctl, nil
	}
	return s.Resolve(ctx, token)
}

// RefreshSession extends the session TTL without a remote call.
func (s *AuthService) RefreshSession(ctx context.Context, token string) {
	if ctl, ok := s.registry.Get(token); ok {
		ctl.RefreshSession(ctx)
	}
}

// EnsureSuperAdminExists provisions the bootstrap super admin account
// and its role profile. Safe to call on every startup.
func (s *AuthService) EnsureSuperAdminExists(ctx context.Context, email, password, fullName string) error {
	exists, err := s.roleRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check super admin: %w", err)
	}
	if exists {
		return nil
	}

	user, err := s.provider.SignUp(ctx, email, password, map[string]interface{}{"full_name": fullName})
	if err != nil {
		var perr *identity.ProviderError
		if !errors.As(err, &perr) || perr.Code != "user_already_exists" {
			return fmt.Errorf("failed to create super admin identity: %w", err)
		}
		// Identity already exists; recover its id via a sign-in.
		remote, err := s.provider.SignInWithPassword(ctx, email, password)
		if err != nil {
			return fmt.Errorf("super admin identity exists but credentials do not match: %w", err)
		}
		defer s.provider.SignOut(ctx, remote.AccessToken)
		user = &remote.User
	}

	profile := &adminuser.AdminUser{
		ID:          ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String(),
		Email:       email,
		FullName:    fullName,
		Role:        session.RoleSuperAdmin,
		PrincipalID: user.ID,
	}
	if err := s.roleRepo.Create(ctx, profile); err != nil {
		return fmt.Errorf("failed to create super admin role profile: %w", err)
	}

	s.logger.Info("super admin provisioned", zap.String("email", email))
	return nil
}

// ---- internals ----

func (s *AuthService) storeFor(token string) *sessionstore.Store {
	return sessionstore.New(s.kv, sessionstore.Key(token), s.cfg.SessionTTL, s.logger)
}

func (s *AuthService) newController(token string) *authsession.Controller {
	return authsession.NewController(authsession.Config{
		Store:            s.storeFor(token),
		Provider:         s.provider,
		AccessToken:      token,
		LookupRole:       s.rawRoleLookup,
		LookupRetry:      s.lookupRetry,
		InitTimeout:      s.cfg.SessionInitWait,
		PollInterval:     s.cfg.ValidityPoll,
		ActivityDebounce: s.cfg.ActivityDebounce,
		AdminPathPrefix:  s.cfg.AdminPathPrefix,
		LoginPath:        s.cfg.AdminLoginPath,
		Navigate: func(path string) {
			s.hub.Navigate(token, path)
		},
		OnSessionEnd: func() {
			s.hub.ForceLogout(token, "session ended")
			s.registry.Remove(token)
		},
		Logger: s.logger,
	})
}

// rawRoleLookup is a single lookup attempt; retrying is the caller's
// concern. A missing row maps to (nil, nil) per the controller's
// contract.
func (s *AuthService) rawRoleLookup(ctx context.Context, principalID string) (*session.RoleProfile, error) {
	u, err := s.roleRepo.FindByPrincipalID(ctx, principalID)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session.RoleProfile{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		PrincipalID: u.PrincipalID,
	}, nil
}

func (s *AuthService) lookupRoleProfile(ctx context.Context, principalID string) (*session.RoleProfile, error) {
	var profile *session.RoleProfile
	err := s.lookupRetry.Do(ctx, func(ctx context.Context) error {
		p, err := s.rawRoleLookup(ctx, principalID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	return profile, err
}
