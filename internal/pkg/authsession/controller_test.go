package authsession_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lexsite-service/internal/domain/session"
	"lexsite-service/internal/identity"
	xerrors "lexsite-service/internal/pkg/errors"
	"lexsite-service/internal/pkg/authsession"
	"lexsite-service/internal/pkg/retry"
	"lexsite-service/internal/pkg/sessionstore"
	"lexsite-service/internal/storage"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testToken = "tok-controller"

// fakeProvider is an in-memory stand-in for the hosted identity
// backend.
type fakeProvider struct {
	mu        sync.Mutex
	sessions  map[string]*identity.Session
	getErr    error
	getDelay  time.Duration
	getCalls  int
	signOutErr error
	subs      []identity.StateChangeFunc
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{sessions: make(map[string]*identity.Session)}
}

func (f *fakeProvider) addSession(token string, user identity.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[token] = &identity.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        user,
	}
}

func (f *fakeProvider) GetSession(ctx context.Context, token string) (*identity.Session, error) {
	f.mu.Lock()
	f.getCalls++
	err := f.getErr
	delay := f.getDelay
	s := f.sessions[token]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, &identity.ProviderError{Message: "session not found", Code: "session_not_found"}
	}
	copy := *s
	return &copy, nil
}

func (f *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*identity.Session, error) {
	return nil, &identity.ProviderError{Message: "not supported in fake"}
}

func (f *fakeProvider) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*identity.User, error) {
	return nil, &identity.ProviderError{Message: "not supported in fake"}
}

func (f *fakeProvider) SignOut(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return f.signOutErr
}

func (f *fakeProvider) OnAuthStateChange(fn identity.StateChangeFunc) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	return func() {}
}

func (f *fakeProvider) emit(event, token string) {
	f.mu.Lock()
	subs := append([]identity.StateChangeFunc(nil), f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(event, &identity.Session{AccessToken: token})
	}
}

type controllerFixture struct {
	kv        *storage.MemoryKV
	store     *sessionstore.Store
	provider  *fakeProvider
	profiles  map[string]*session.RoleProfile
	navCalls  atomic.Int32
	navPath   string
	endCalls  atomic.Int32
	ctl       *authsession.Controller
	now       time.Time
	navMu     sync.Mutex
}

func newControllerFixture(t *testing.T, opts ...func(*authsession.Config)) *controllerFixture {
	t.Helper()

	f := &controllerFixture{
		kv:       storage.NewMemoryKV(),
		provider: newFakeProvider(),
		profiles: make(map[string]*session.RoleProfile),
		now:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.kv.SetClock(clock)

	f.store = sessionstore.New(f.kv, sessionstore.Key(testToken), 2*time.Hour, zap.NewNop())
	f.store.SetClock(clock)

	cfg := authsession.Config{
		Store:       f.store,
		Provider:    f.provider,
		AccessToken: testToken,
		LookupRole: func(ctx context.Context, principalID string) (*session.RoleProfile, error) {
			return f.profiles[principalID], nil
		},
		LookupRetry:     retry.Policy{MaxAttempts: 3},
		InitTimeout:     time.Second,
		PollInterval:    10 * time.Millisecond,
		AdminPathPrefix: "/admin",
		LoginPath:       "/admin/login",
		Navigate: func(path string) {
			f.navMu.Lock()
			f.navPath = path
			f.navMu.Unlock()
			f.navCalls.Add(1)
		},
		OnSessionEnd: func() { f.endCalls.Add(1) },
		Logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	f.ctl = authsession.NewController(cfg)
	t.Cleanup(f.ctl.Close)
	return f
}

func (f *controllerFixture) adminUser() identity.User {
	return identity.User{
		ID:        "principal-1",
		Email:     "counsel@firm.example",
		CreatedAt: f.now.Add(-30 * 24 * time.Hour),
		UpdatedAt: f.now.Add(-time.Hour),
	}
}

func (f *controllerFixture) adminProfile() *session.RoleProfile {
	return &session.RoleProfile{
		ID:          "rp-1",
		Email:       "counsel@firm.example",
		FullName:    "Jordan Counsel",
		Role:        session.RoleAdmin,
		PrincipalID: "principal-1",
	}
}

func TestFreshLoadNoSessionEndsUnauthenticated(t *testing.T) {
	f := newControllerFixture(t)

	f.ctl.Initialize(context.Background())

	require.Equal(t, authsession.StateUnauthenticated, f.ctl.State())
	require.False(t, f.ctl.IsLoading())
	require.NoError(t, f.ctl.LastError())
	require.Nil(t, f.ctl.Principal())
}

func TestFastPathFromPersistedRecord(t *testing.T) {
	f := newControllerFixture(t)
	f.store.Save(context.Background(), session.Principal{
		ID:    "principal-1",
		Email: "counsel@firm.example",
	}, *f.adminProfile())

	f.ctl.Initialize(context.Background())

	require.Equal(t, authsession.StateAuthenticated, f.ctl.State())
	require.True(t, f.ctl.IsAdmin())
	require.False(t, f.ctl.IsSuperAdmin())
	// The remote provider is never consulted on the fast path.
	require.Zero(t, f.provider.getCalls)
}

func TestExpiredPersistedRecordFallsThroughToRemote(t *testing.T) {
	f := newControllerFixture(t)
	f.store.Save(context.Background(), session.Principal{ID: "principal-1"}, *f.adminProfile())
	f.now = f.now.Add(3 * time.Hour) // TTL is 2h

	f.provider.addSession(testToken, f.adminUser())
	f.profiles["principal-1"] = f.adminProfile()

	f.ctl.Initialize(context.Background())

	require.Equal(t, authsession.StateAuthenticated, f.ctl.State())
	require.Equal(t, 1, f.provider.getCalls)

	// Slow path wrote the record back; principal survives.
	record, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "principal-1", record.Principal.ID)
}

func TestRemoteSessionWithoutRoleProfile(t *testing.T) {
	f := newControllerFixture(t)
	f.provider.addSession(testToken, f.adminUser())
	// No role profile registered for principal-1.

	require.NotPanics(t, func() {
		f.ctl.Initialize(context.Background())
	})

	require.Equal(t, authsession.StateUnauthenticated, f.ctl.State())
	record, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestProviderErrorSurfacesAsErrorState(t *testing.T) {
	f := newControllerFixture(t)
	f.provider.getErr = &identity.ProviderError{Message: "upstream 503", Code: "service_unavailable"}

	f.ctl.Initialize(context.Background())

	require.Equal(t, authsession.StateError, f.ctl.State())
	require.Error(t, f.ctl.LastError())
}

func TestRetryAfterErrorRecovers(t *testing.T) {
	f := newControllerFixture(t)
	f.provider.getErr = &identity.ProviderError{Message: "upstream 503"}

	f.ctl.Initialize(context.Background())
	require.Equal(t, authsession.StateError, f.ctl.State())

	f.provider.getErr = nil
	f.provider.addSession(testToken, f.adminUser())
	f.profiles["principal-1"] = f.adminProfile()

	f.ctl.Retry(context.Background())

	require.Equal(t, authsession.StateAuthenticated, f.ctl.State())
	require.NoError(t, f.ctl.LastError())
}

func TestInitTimeoutForcesErrorState(t *testing.T) {
	f := newControllerFixture(t, func(cfg *authsession.Config) {
		cfg.InitTimeout = 30 * time.Millisecond
	})
	f.provider.getDelay = 500 * time.Millisecond
	f.provider.addSession(testToken, f.adminUser())

	f.ctl.Initialize(context.Background())

	require.Equal(t, authsession.StateError, f.ctl.State())
	require.ErrorIs(t, f.ctl.LastError(), xerrors.ErrInitTimeout)
}

func TestSignOutIsUnconditionallyLocal(t *testing.T) {
	f := newControllerFixture(t)
	f.provider.addSession(testToken, f.adminUser())
	f.profiles["principal-1"] = f.adminProfile()
	f.ctl.Initialize(context.Background())
	require.Equal(t, authsession.StateAuthenticated, f.ctl.State())

	// Remote sign-out fails; local teardown must happen anyway.
	f.provider.signOutErr = &identity.ProviderError{Message: "network down"}
	f.ctl.SignOut(context.Background())

	require.Equal(t, authsession.StateUnauthenticated, f.ctl.State())
	record, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, record)
	require.Equal(t, int32(1), f.endCalls.Load())
}

func TestRefreshSessionExtendsWindow(t *testing.T) {
	f := newControllerFixture(t)
	f.provider.addSession(testToken, f.adminUser())
	f.profiles["principal-1"] = f.adminProfile()
	f.ctl.Initialize(context.Background())

	// 1h50m in: refresh resets the window.
	f.now = f.now.Add(110 * time.Minute)
	f.ctl.RefreshSession(context.Background())

	// 15 more minutes would have exceeded the original TTL.
	f.now = f.now.Add(15 * time.Minute)
	record, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, record)
}

func TestRefreshSessionIgnoredWhenNotAuthenticated(t *testing.T) {
	f := newControllerFixture(t)
	f.ctl.Initialize(context.Background())
	require.Equal(t, authsession.StateUnauthenticated, f.ctl.State())

	f.ctl.RefreshSession(context.Background())

	record, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestValidityPollDetectsExternalExpiry(t *testing.T) {
	f := newControllerFixture(t)
	f.provider.addSession(testToken, f.adminUser())
	f.profiles["principal-1"] = f.adminProfile()
	f.ctl.Initialize(context.Background())
	f.ctl.SetCurrentPath("/admin/dashboard")

	// Record expires out from under the controller.
	f.store.Clear(context.Background())

	require.Eventually(t, func() bool {
		return f.ctl.State() == authsession.StateUnauthenticated
	}, time.Second, 5*time.Millisecond)

	// Redirect fired exactly once, to the login path.
	require.Equal(t, int32(1), f.navCalls.Load())
	f.navMu.Lock()
	require.Equal(t, "/admin/login", f.navPath)
	f.navMu.Unlock()
	require.Equal(t, int32(1), f.endCalls.Load())
}

func TestValidityPollNoRedirectOffAdminPath(t *testing.T) {
	f := newControllerFixture(t)
	f.provider.addSession(testToken, f.adminUser())
	f.profiles["principal-1"] = f.adminProfile()
	f.ctl.Initialize(context.Background())
	f.ctl.SetCurrentPath("/practice-areas")

	f.store.Clear(context.Background())

	require.Eventually(t, func() bool {
		return f.ctl.State() == authsession.StateUnauthenticated
	}, time.Second, 5*time.Millisecond)

	require.Zero(t, f.navCalls.Load())
}

func TestValidityPollNoRedirectOnLoginPath(t *testing.T) {
	f := newControllerFixture(t)
	f.provider.addSession(testToken, f.adminUser())
	f.profiles["principal-1"] = f.adminProfile()
	f.ctl.Initialize(context.Background())
	f.ctl.SetCurrentPath("/admin/login")

	f.store.Clear(context.Background())

	require.Eventually(t, func() bool {
		return f.ctl.State() == authsession.StateUnauthenticated
	}, time.Second, 5*time.Millisecond)

	require.Zero(t, f.navCalls.Load())
}

func TestRemoteSignOutEventEndsSession(t *testing.T) {
	f := newControllerFixture(t)
	f.provider.addSession(testToken, f.adminUser())
	f.profiles["principal-1"] = f.adminProfile()
	f.ctl.Initialize(context.Background())
	f.ctl.SetCurrentPath("/admin/blogs")

	f.provider.emit(identity.EventSignedOut, testToken)

	require.Equal(t, authsession.StateUnauthenticated, f.ctl.State())
	record, err := f.store.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, record)
	require.Equal(t, int32(1), f.navCalls.Load())
}

func TestRemoteSignOutForOtherTokenIgnored(t *testing.T) {
	f := newControllerFixture(t)
	f.provider.addSession(testToken, f.adminUser())
	f.profiles["principal-1"] = f.adminProfile()
	f.ctl.Initialize(context.Background())

	f.provider.emit(identity.EventSignedOut, "some-other-token")

	require.Equal(t, authsession.StateAuthenticated, f.ctl.State())
	require.Zero(t, f.endCalls.Load())
}

func TestSuperAdminProjection(t *testing.T) {
	f := newControllerFixture(t)
	profile := f.adminProfile()
	profile.Role = session.RoleSuperAdmin
	f.provider.addSession(testToken, f.adminUser())
	f.profiles["principal-1"] = profile

	f.ctl.Initialize(context.Background())

	require.True(t, f.ctl.IsAdmin())
	require.True(t, f.ctl.IsSuperAdmin())

	info := f.ctl.Info()
	require.Equal(t, authsession.StateAuthenticated, info.State)
	require.True(t, info.IsSuperAdmin)
	require.NotNil(t, info.Principal)
	require.Equal(t, "principal-1", info.Principal.ID)
}
