// internal/identity/http_provider.go
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// HTTPProvider talks to a GoTrue-style hosted auth API. Tokens are
// HS256 JWTs signed with the project secret; GetSession verifies the
// token locally before asking the backend for the user record.
type HTTPProvider struct {
	baseURL   string
	apiKey    string
	jwtSecret []byte
	client    *http.Client
	logger    *zap.Logger
	events    *broadcaster
}

func NewHTTPProvider(baseURL, apiKey, jwtSecret string, logger *zap.Logger) *HTTPProvider {
	return &HTTPProvider{
		baseURL:   baseURL,
		apiKey:    apiKey,
		jwtSecret: []byte(jwtSecret),
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
		events:    newBroadcaster(),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	User        User   `json:"user"`
}

func (p *HTTPProvider) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	var resp tokenResponse
	if err := p.post(ctx, "/auth/v1/token?grant_type=password", "", body, &resp); err != nil {
		return nil, err
	}

	session := &Session{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		ExpiresAt:   time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		User:        resp.User,
	}

	p.events.emit(EventSignedIn, session)
	return session, nil
}

func (p *HTTPProvider) SignUp(ctx context.Context, email, password string, metadata map[string]interface{}) (*User, error) {
	body := map[string]interface{}{"email": email, "password": password}
	if metadata != nil {
		body["data"] = metadata
	}

	var user User
	if err := p.post(ctx, "/auth/v1/signup", "", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *HTTPProvider) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	expiresAt, err := p.verifyToken(accessToken)
	if err != nil {
		// Expired or garbage tokens mean "no session", not a failure.
		return nil, &ProviderError{Message: "invalid access token", Code: "session_not_found", Details: err.Error()}
	}

	var user User
	if err := p.get(ctx, "/auth/v1/user", accessToken, &user); err != nil {
		return nil, err
	}

	return &Session{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func (p *HTTPProvider) SignOut(ctx context.Context, accessToken string) error {
	err := p.post(ctx, "/auth/v1/logout", accessToken, nil, nil)
	// Sign-out listeners fire regardless; local state must not outlive
	// the user's intent even when the remote call fails.
	p.events.emit(EventSignedOut, &Session{AccessToken: accessToken})
	return err
}

func (p *HTTPProvider) OnAuthStateChange(fn StateChangeFunc) func() {
	return p.events.subscribe(fn)
}

// verifyToken checks the HS256 signature and returns the token expiry.
func (p *HTTPProvider) verifyToken(accessToken string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(accessToken, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.jwtSecret, nil
	})
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("token has no expiry")
	}
	return claims.ExpiresAt.Time, nil
}

func (p *HTTPProvider) post(ctx context.Context, path, bearer string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return p.do(req, bearer, out)
}

func (p *HTTPProvider) get(ctx context.Context, path, bearer string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return p.do(req, bearer, out)
}

func (p *HTTPProvider) do(req *http.Request, bearer string, out interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", p.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		perr := &ProviderError{}
		if json.Unmarshal(data, perr) != nil || perr.Message == "" {
			perr.Message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return perr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
