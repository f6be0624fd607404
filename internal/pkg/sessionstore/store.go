// internal/pkg/sessionstore/store.go
package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lexsite-service/internal/domain/session"
	"lexsite-service/internal/storage"

	"go.uber.org/zap"
)

// DefaultTTL is the base lifetime of a persisted session record.
const DefaultTTL = 2 * time.Hour

// Store persists exactly one session record under a fixed key in the
// durable storage scope. Save and Clear never fail their caller;
// storage errors are logged and swallowed. Load treats expired or
// malformed records as absent and clears the slot.
type Store struct {
	kv     storage.KV
	key    string
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func New(kv storage.KV, key string, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		kv:     kv,
		key:    key,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// TTL returns the configured record lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Save overwrites the slot with a fresh record. The record carries
// IssuedAt = now, so a Save is also a TTL extension.
func (s *Store) Save(ctx context.Context, principal session.Principal, profile session.RoleProfile) {
	record := session.Record{
		Principal:   principal,
		RoleProfile: profile,
		IssuedAt:    s.now().UnixMilli(),
	}

	data, err := json.Marshal(&record)
	if err != nil {
		s.logger.Error("failed to marshal session record", zap.Error(err))
		return
	}

	// The storage TTL is a backstop; Load enforces the real window
	// from IssuedAt.
	if err := s.kv.Set(ctx, s.key, data, s.ttl); err != nil {
		s.logger.Error("failed to persist session record",
			zap.String("key", s.key),
			zap.Error(err),
		)
	}
}

// Load returns the stored record while it is still inside the TTL
// window. Absent, expired, or malformed records all come back as
// (nil, nil); expired and malformed slots are cleared on the way out.
func (s *Store) Load(ctx context.Context) (*session.Record, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Warn("failed to read session record, treating as absent",
			zap.String("key", s.key),
			zap.Error(err),
		)
		s.Clear(ctx)
		return nil, nil
	}

	var record session.Record
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn("malformed session record, clearing",
			zap.String("key", s.key),
			zap.Error(err),
		)
		s.Clear(ctx)
		return nil, nil
	}

	if record.Principal.ID == "" || record.RoleProfile.ID == "" {
		// A record is never valid partially populated.
		s.Clear(ctx)
		return nil, nil
	}

	if record.Expired(s.now(), s.ttl) {
		s.Clear(ctx)
		return nil, nil
	}

	return &record, nil
}

// Refresh re-saves an existing record with a fresh IssuedAt, extending
// the TTL window without touching the remote provider.
func (s *Store) Refresh(ctx context.Context, record *session.Record) {
	if record == nil {
		return
	}
	s.Save(ctx, record.Principal, record.RoleProfile)
}

// Clear removes the slot. Idempotent; errors are logged only.
func (s *Store) Clear(ctx context.Context) {
	if err := s.kv.Del(ctx, s.key); err != nil {
		s.logger.Error("failed to clear session record",
			zap.String("key", s.key),
			zap.Error(err),
		)
	}
}

// Key builds the storage key for a session token.
func Key(token string) string {
	return fmt.Sprintf("adminsession:%s", token)
}
