// internal/pkg/authsession/controller.go
package authsession

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"lexsite-service/internal/domain/session"
	"lexsite-service/internal/identity"
	xerrors "lexsite-service/internal/pkg/errors"
	"lexsite-service/internal/pkg/retry"
	"lexsite-service/internal/pkg/sessionstore"

	"go.uber.org/zap"
)

// Controller states.
const (
	StateUninitialized   = "uninitialized"
	StateLoading         = "loading"
	StateAuthenticated   = "authenticated"
	StateUnauthenticated = "unauthenticated"
	StateError           = "error"
)

const (
	DefaultInitTimeout  = 15 * time.Second
	DefaultPollInterval = 30 * time.Second
)

// RoleLookupFunc resolves the role profile for a principal id. A nil
// profile with a nil error means no matching row exists.
type RoleLookupFunc func(ctx context.Context, principalID string) (*session.RoleProfile, error)

// NavigateFunc is invoked when an expired session must bounce the
// client to the sign-in screen.
type NavigateFunc func(path string)

// Config wires a Controller to its collaborators.
type Config struct {
	Store       *sessionstore.Store
	Provider    identity.Provider
	AccessToken string
	LookupRole  RoleLookupFunc
	LookupRetry retry.Policy

	InitTimeout      time.Duration
	PollInterval     time.Duration
	ActivityDebounce time.Duration

	AdminPathPrefix string
	LoginPath       string
	Navigate        NavigateFunc

	// OnSessionEnd fires once when the controller leaves the
	// authenticated state for good (sign-out or detected expiry).
	OnSessionEnd func()

	Logger *zap.Logger
}

// Controller is the single source of truth for one admin session. It
// reconciles the persisted record (fast path) with the remote identity
// provider (slow path), polls for expiry while authenticated, and
// exposes role-derived capability checks.
type Controller struct {
	cfg Config

	mu          sync.Mutex
	state       string
	principal   *session.Principal
	profile     *session.RoleProfile
	lastErr     error
	currentPath string

	pollCancel  context.CancelFunc
	unsubscribe func()
	activity    *ActivityMonitor
}

func NewController(cfg Config) *Controller {
	if cfg.InitTimeout <= 0 {
		cfg.InitTimeout = DefaultInitTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ActivityDebounce <= 0 {
		cfg.ActivityDebounce = DefaultDebounce
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	c := &Controller{
		cfg:   cfg,
		state: StateUninitialized,
	}

	c.unsubscribe = cfg.Provider.OnAuthStateChange(func(event string, sess *identity.Session) {
		// Sign-out events for other tokens are not ours to act on.
		if event == identity.EventSignedOut && sess != nil && sess.AccessToken == cfg.AccessToken {
			c.handleRemoteSignOut()
		}
	})

	return c
}

// Initialize runs the loading reconciliation: persisted record first,
// remote provider second. A reconciliation that has not settled within
// the init timeout forces the error state so callers are never stuck
// loading.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	c.state = StateLoading
	c.lastErr = nil
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.InitTimeout)
	defer cancel()

	c.reconcile(ctx)
}

func (c *Controller) reconcile(ctx context.Context) {
	// Fast path: a still-valid persisted record.
	record, err := c.cfg.Store.Load(ctx)
	if err == nil && record != nil {
		c.becomeAuthenticated(&record.Principal, &record.RoleProfile)
		return
	}
	if timedOut(ctx) {
		c.becomeError(xerrors.ErrInitTimeout)
		return
	}

	// Slow path: ask the remote provider.
	remote, err := c.cfg.Provider.GetSession(ctx, c.cfg.AccessToken)
	if err != nil {
		if timedOut(ctx) {
			c.becomeError(xerrors.ErrInitTimeout)
			return
		}
		var perr *identity.ProviderError
		if errors.As(err, &perr) && perr.Code == "session_not_found" {
			c.becomeUnauthenticated(false)
			return
		}
		c.cfg.Logger.Warn("remote session lookup failed", zap.Error(err))
		c.becomeError(err)
		return
	}
	if remote == nil {
		c.becomeUnauthenticated(false)
		return
	}

	profile, err := c.lookupRole(ctx, remote.User.ID)
	if err != nil {
		if timedOut(ctx) {
			c.becomeError(xerrors.ErrInitTimeout)
			return
		}
		c.cfg.Logger.Warn("role profile lookup failed", zap.Error(err))
		c.becomeError(err)
		return
	}
	if profile == nil {
		// No role profile: same path as "not an admin".
		c.cfg.Store.Clear(ctx)
		c.becomeUnauthenticated(false)
		return
	}

	principal := principalFromUser(&remote.User)
	c.cfg.Store.Save(ctx, *principal, *profile)
	c.becomeAuthenticated(principal, profile)
}

func (c *Controller) lookupRole(ctx context.Context, principalID string) (*session.RoleProfile, error) {
	var profile *session.RoleProfile
	err := c.cfg.LookupRetry.Do(ctx, func(ctx context.Context) error {
		p, err := c.cfg.LookupRole(ctx, principalID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	return profile, err
}

// SignOut tears the session down. The remote sign-out is attempted,
// but local clearing is unconditional: a failed remote call must not
// leave stale local session state behind.
func (c *Controller) SignOut(ctx context.Context) {
	if err := c.cfg.Provider.SignOut(ctx, c.cfg.AccessToken); err != nil {
		c.cfg.Logger.Warn("remote sign-out failed, clearing local session anyway", zap.Error(err))
	}
	c.cfg.Store.Clear(ctx)
	c.becomeUnauthenticated(false)
}

// Retry clears the persisted record and re-runs the reconciliation.
func (c *Controller) Retry(ctx context.Context) {
	c.cfg.Store.Clear(ctx)
	c.Initialize(ctx)
}

// RefreshSession re-saves the current record with a fresh IssuedAt,
// extending the TTL window without contacting the remote provider.
// A no-op unless authenticated.
func (c *Controller) RefreshSession(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateAuthenticated || c.principal == nil || c.profile == nil {
		c.mu.Unlock()
		return
	}
	principal, profile := *c.principal, *c.profile
	c.mu.Unlock()

	c.cfg.Store.Save(ctx, principal, profile)
}

// Touch reports user activity to the renewal monitor.
func (c *Controller) Touch() {
	c.mu.Lock()
	monitor := c.activity
	c.mu.Unlock()
	if monitor != nil {
		monitor.Touch()
	}
}

// SetCurrentPath records the path the admin client is on; the expiry
// redirect decision reads it.
func (c *Controller) SetCurrentPath(path string) {
	c.mu.Lock()
	c.currentPath = path
	c.mu.Unlock()
}

// Close cancels the validity poll, the activity monitor, and the
// provider subscription. Required on teardown; the timers must never
// fire against a torn-down controller.
func (c *Controller) Close() {
	c.stopWatchers()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}

// ---- Projections ----

func (c *Controller) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) IsLoading() bool {
	return c.State() == StateLoading
}

func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Controller) Principal() *session.Principal {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.principal == nil {
		return nil
	}
	p := *c.principal
	return &p
}

func (c *Controller) RoleProfile() *session.RoleProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return nil
	}
	p := *c.profile
	return &p
}

func (c *Controller) IsAdmin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateAuthenticated && c.profile != nil && c.profile.IsAdmin()
}

func (c *Controller) IsSuperAdmin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateAuthenticated && c.profile != nil && c.profile.IsSuperAdmin()
}

// Info returns the projection served by the current-session endpoint.
func (c *Controller) Info() session.SessionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	info := session.SessionInfo{State: c.state}
	if c.principal != nil {
		p := *c.principal
		info.Principal = &p
	}
	if c.profile != nil {
		p := *c.profile
		info.RoleProfile = &p
		if c.state == StateAuthenticated {
			info.IsAdmin = p.IsAdmin()
			info.IsSuperAdmin = p.IsSuperAdmin()
		}
	}
	if c.lastErr != nil {
		info.LastError = c.lastErr.Error()
	}
	return info
}

// ---- State transitions ----

func (c *Controller) becomeAuthenticated(principal *session.Principal, profile *session.RoleProfile) {
	c.mu.Lock()
	c.state = StateAuthenticated
	c.principal = principal
	c.profile = profile
	c.lastErr = nil
	c.mu.Unlock()

	c.startWatchers()
}

func (c *Controller) becomeUnauthenticated(redirect bool) {
	c.stopWatchers()

	c.mu.Lock()
	wasAuthenticated := c.state == StateAuthenticated
	c.state = StateUnauthenticated
	c.principal = nil
	c.profile = nil
	c.lastErr = nil
	path := c.currentPath
	c.mu.Unlock()

	if !wasAuthenticated {
		return
	}

	if redirect && c.cfg.Navigate != nil && c.onAdminPath(path) {
		c.cfg.Navigate(c.cfg.LoginPath)
	}
	if c.cfg.OnSessionEnd != nil {
		c.cfg.OnSessionEnd()
	}
}

func (c *Controller) becomeError(err error) {
	c.stopWatchers()

	c.mu.Lock()
	c.state = StateError
	c.lastErr = err
	c.mu.Unlock()
}

func (c *Controller) handleRemoteSignOut() {
	c.mu.Lock()
	authenticated := c.state == StateAuthenticated
	c.mu.Unlock()
	if !authenticated {
		return
	}

	c.cfg.Store.Clear(context.Background())
	c.becomeUnauthenticated(true)
}

// onAdminPath reports whether path is admin-gated and not the login
// screen itself.
func (c *Controller) onAdminPath(path string) bool {
	if c.cfg.AdminPathPrefix == "" {
		return false
	}
	return strings.HasPrefix(path, c.cfg.AdminPathPrefix) && path != c.cfg.LoginPath
}

// ---- Watchers ----

func (c *Controller) startWatchers() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pollCancel != nil {
		return // already running
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.pollCancel = cancel
	go c.pollValidity(ctx)

	c.activity = NewActivityMonitor(c.cfg.ActivityDebounce, func() {
		c.RefreshSession(context.Background())
	})
	c.activity.Start()
}

func (c *Controller) stopWatchers() {
	c.mu.Lock()
	cancel := c.pollCancel
	monitor := c.activity
	c.pollCancel = nil
	c.activity = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if monitor != nil {
		monitor.Stop()
	}
}

// pollValidity re-checks the persisted record every poll interval while
// authenticated. A record expired or cleared out from under the
// controller ends the session and redirects admin-gated clients to the
// login screen exactly once.
func (c *Controller) pollValidity(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		authenticated := c.state == StateAuthenticated
		c.mu.Unlock()
		if !authenticated {
			return
		}

		record, err := c.cfg.Store.Load(ctx)
		if err != nil {
			continue
		}
		if record == nil {
			c.becomeUnauthenticated(true)
			return
		}
	}
}

func principalFromUser(u *identity.User) *session.Principal {
	return &session.Principal{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func timedOut(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}
