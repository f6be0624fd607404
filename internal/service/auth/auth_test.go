package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"lexsite-service/internal/config"
	"lexsite-service/internal/domain/adminuser"
	"lexsite-service/internal/domain/session"
	"lexsite-service/internal/identity"
	"lexsite-service/internal/pkg/authsession"
	xerrors "lexsite-service/internal/pkg/errors"
	"lexsite-service/internal/storage"
	ws "lexsite-service/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRoleRepo struct {
	mu          sync.Mutex
	byPrincipal map[string]*adminuser.AdminUser
	createCalls int
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{byPrincipal: make(map[string]*adminuser.AdminUser)}
}

func (r *fakeRoleRepo) FindByPrincipalID(ctx context.Context, principalID string) (*adminuser.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byPrincipal[principalID]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRoleRepo) Create(ctx context.Context, u *adminuser.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	cp := *u
	r.byPrincipal[u.PrincipalID] = &cp
	return nil
}

func (r *fakeRoleRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byPrincipal {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

type authFixture struct {
	svc      *AuthService
	provider *identity.LocalProvider
	roleRepo *fakeRoleRepo
	registry *authsession.Registry
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	cfg := config.AppConfig{
		SessionTTL:       2 * time.Hour,
		SessionInitWait:  2 * time.Second,
		ValidityPoll:     time.Hour,
		ActivityDebounce: time.Hour,
		AdminPathPrefix:  "/admin",
		AdminLoginPath:   "/admin/login",
	}

	provider := identity.NewLocalProvider(4 * time.Hour)
	roleRepo := newFakeRoleRepo()
	registry := authsession.NewRegistry()
	t.Cleanup(registry.CloseAll)

	svc := NewAuthService(
		provider,
		roleRepo,
		storage.NewMemoryKV(),
		registry,
		ws.NewHub(zap.NewNop()),
		cfg,
		zap.NewNop(),
	)
	return &authFixture{svc: svc, provider: provider, roleRepo: roleRepo, registry: registry}
}

func (f *authFixture) seedAdmin(t *testing.T, email, password, role string) *identity.User {
	t.Helper()
	user, err := f.provider.SignUp(context.Background(), email, password, nil)
	require.NoError(t, err)
	require.NoError(t, f.roleRepo.Create(context.Background(), &adminuser.AdminUser{
		ID:          "profile-" + user.ID,
		Email:       email,
		FullName:    "Test Admin",
		Role:        role,
		PrincipalID: user.ID,
	}))
	return user
}

func TestLoginEstablishesSession(t *testing.T) {
	f := newAuthFixture(t)
	user := f.seedAdmin(t, "admin@firm.test", "str0ngpass", session.RoleAdmin)

	resp, err := f.svc.Login(context.Background(), &session.LoginRequest{
		Email:    "admin@firm.test",
		Password: "str0ngpass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, user.ID, resp.Principal.ID)
	assert.Equal(t, session.RoleAdmin, resp.RoleProfile.Role)

	ctl, ok := f.registry.Get(resp.AccessToken)
	require.True(t, ok)
	assert.Equal(t, authsession.StateAuthenticated, ctl.State())
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t, "admin@firm.test", "str0ngpass", session.RoleAdmin)

	_, err := f.svc.Login(context.Background(), &session.LoginRequest{
		Email:    "admin@firm.test",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestLoginRejectsIdentityWithoutRoleProfile(t *testing.T) {
	f := newAuthFixture(t)

	// Valid identity account, but no role-profile row.
	_, err := f.provider.SignUp(context.Background(), "visitor@firm.test", "str0ngpass", nil)
	require.NoError(t, err)

	_, err = f.svc.Login(context.Background(), &session.LoginRequest{
		Email:    "visitor@firm.test",
		Password: "str0ngpass",
	})
	assert.ErrorIs(t, err, xerrors.ErrNoRoleProfile)
}

func TestResolveReusesLiveController(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t, "admin@firm.test", "str0ngpass", session.RoleAdmin)

	resp, err := f.svc.Login(context.Background(), &session.LoginRequest{
		Email:    "admin@firm.test",
		Password: "str0ngpass",
	})
	require.NoError(t, err)

	first, err := f.svc.Resolve(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	second, err := f.svc.Resolve(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestResolveColdTokenFallsBackToProvider(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t, "admin@firm.test", "str0ngpass", session.RoleAdmin)

	// Sign in directly with the provider, bypassing Login, so neither
	// the registry nor the persisted store knows the token yet.
	remote, err := f.provider.SignInWithPassword(context.Background(), "admin@firm.test", "str0ngpass")
	require.NoError(t, err)

	ctl, err := f.svc.Resolve(context.Background(), remote.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, authsession.StateAuthenticated, ctl.State())
	assert.True(t, ctl.IsAdmin())
}

func TestResolveUnknownToken(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.Resolve(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, xerrors.ErrSessionExpired)

	_, err = f.svc.Resolve(context.Background(), "")
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestSignOutEndsSessionEverywhere(t *testing.T) {
	f := newAuthFixture(t)
	f.seedAdmin(t, "admin@firm.test", "str0ngpass", session.RoleAdmin)

	resp, err := f.svc.Login(context.Background(), &session.LoginRequest{
		Email:    "admin@firm.test",
		Password: "str0ngpass",
	})
	require.NoError(t, err)

	f.svc.SignOut(context.Background(), resp.AccessToken)

	_, ok := f.registry.Get(resp.AccessToken)
	assert.False(t, ok, "controller should leave the registry on sign-out")

	_, err = f.provider.GetSession(context.Background(), resp.AccessToken)
	assert.Error(t, err, "remote session should be revoked")

	_, err = f.svc.Resolve(context.Background(), resp.AccessToken)
	assert.ErrorIs(t, err, xerrors.ErrSessionExpired)
}

func TestEnsureSuperAdminExists(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.EnsureSuperAdminExists(ctx, "root@firm.test", "str0ngpass", "Root Admin"))
	assert.Equal(t, 1, f.roleRepo.createCalls)

	// Second boot is a no-op.
	require.NoError(t, f.svc.EnsureSuperAdminExists(ctx, "root@firm.test", "str0ngpass", "Root Admin"))
	assert.Equal(t, 1, f.roleRepo.createCalls)

	resp, err := f.svc.Login(ctx, &session.LoginRequest{Email: "root@firm.test", Password: "str0ngpass"})
	require.NoError(t, err)
	assert.True(t, resp.RoleProfile.IsSuperAdmin())
}

func TestEnsureSuperAdminRecoversExistingIdentity(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	// Identity exists without a role profile, as after a half-finished
	// bootstrap.
	_, err := f.provider.SignUp(ctx, "root@firm.test", "str0ngpass", nil)
	require.NoError(t, err)

	require.NoError(t, f.svc.EnsureSuperAdminExists(ctx, "root@firm.test", "str0ngpass", "Root Admin"))
	assert.Equal(t, 1, f.roleRepo.createCalls)
}
