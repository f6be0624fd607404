// internal/identity/local_provider.go
package identity

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type localAccount struct {
	user         User
	passwordHash []byte
}

type localSession struct {
	session   Session
	expiresAt time.Time
}

// LocalProvider is an in-process identity backend for development and
// tests. Accounts live in memory; tokens are opaque random strings.
type LocalProvider struct {
	mu       sync.Mutex
	accounts map[string]*localAccount // keyed by email
	sessions map[string]*localSession // keyed by access token
	tokenTTL time.Duration
	events   *broadcaster
	now      func() time.Time
}

func NewLocalProvider(tokenTTL time.Duration) *LocalProvider {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &LocalProvider{
		accounts: make(map[string]*localAccount),
		sessions: make(map[string]*localSession),
		tokenTTL: tokenTTL,
		events:   newBroadcaster(),
		now:      time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (p *LocalProvider) SetClock(now func() time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.now = now
}

func (p *LocalProvider) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &ProviderError{Message: "failed to hash password", Details: err.Error()}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[email]; exists {
		return nil, &ProviderError{Message: "user already registered", Code: "user_already_exists"}
	}

	now := p.now()
	user := User{
		ID:        uuid.NewString(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  metadata,
	}
	p.accounts[email] = &localAccount{user: user, passwordHash: hash}
	return &user, nil
}

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	p.mu.Lock()
	account, ok := p.accounts[email]
	p.mu.Unlock()

	if !ok {
		return nil, &ProviderError{Message: "invalid login credentials", Code: "invalid_credentials"}
	}
	if err := bcrypt.CompareHashAndPassword(account.passwordHash, []byte(password)); err != nil {
		return nil, &ProviderError{Message: "invalid login credentials", Code: "invalid_credentials"}
	}

	token := newOpaqueToken()
	session := Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   p.now().Add(p.tokenTTL),
		User:        account.user,
	}

	p.mu.Lock()
	p.sessions[token] = &localSession{session: session, expiresAt: session.ExpiresAt}
	p.mu.Unlock()

	p.events.emit(EventSignedIn, &session)
	return &session, nil
}

func (p *LocalProvider) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	p.mu.Lock()
	ls, ok := p.sessions[accessToken]
	now := p.now()
	if ok && !now.Before(ls.expiresAt) {
		delete(p.sessions, accessToken)
		ok = false
	}
	p.mu.Unlock()

	if !ok {
		return nil, &ProviderError{Message: "session not found", Code: "session_not_found"}
	}
	session := ls.session
	return &session, nil
}

func (p *LocalProvider) SignOut(ctx context.Context, accessToken string) error {
	p.mu.Lock()
	delete(p.sessions, accessToken)
	p.mu.Unlock()

	p.events.emit(EventSignedOut, &Session{AccessToken: accessToken})
	return nil
}

func (p *LocalProvider) OnAuthStateChange(fn StateChangeFunc) func() {
	return p.events.subscribe(fn)
}

func newOpaqueToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
