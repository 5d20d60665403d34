package redisstore

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/aquatech-dashboard/internal/domain"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

func sessionKey(id string) string {
	return "session:" + id
}

// SessionStore keeps each session as a hash that Redis expires at the
// record's ExpiresAt.
type SessionStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, rec entity.SessionRecord) error {
	key := sessionKey(rec.ID)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"id":            rec.ID,
		"user_id":       rec.UserID,
		"email":         rec.Email,
		"full_name":     rec.FullName,
		"role":          rec.Role,
		"auth_provider": string(rec.AuthProvider),
		"source":        string(rec.Source),
		"issued_at":     rec.IssuedAt.UTC().Format(time.RFC3339Nano),
		"expires_at":    rec.ExpiresAt.UTC().Format(time.RFC3339Nano),
		"persistent":    strconv.FormatBool(rec.Persistent),
	})
	pipe.ExpireAt(ctx, key, rec.ExpiresAt)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, id string) (*entity.SessionRecord, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	data, err := s.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, domain.ErrSessionNotFound
	}

	rec := &entity.SessionRecord{
		ID:           data["id"],
		UserID:       data["user_id"],
		Email:        data["email"],
		FullName:     data["full_name"],
		Role:         data["role"],
		AuthProvider: entity.AuthProvider(data["auth_provider"]),
		Source:       entity.Source(data["source"]),
	}
	rec.Persistent, _ = strconv.ParseBool(data["persistent"])
	if rec.IssuedAt, err = time.Parse(time.RFC3339Nano, data["issued_at"]); err != nil {
		return nil, domain.ErrSessionNotFound
	}
	if rec.ExpiresAt, err = time.Parse(time.RFC3339Nano, data["expires_at"]); err != nil {
		return nil, domain.ErrSessionNotFound
	}
	// key TTL and ExpiresAt should agree, but do not trust the TTL alone
	if rec.Expired(s.now()) {
		return nil, domain.ErrSessionNotFound
	}
	return rec, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.rdb.Del(ctx, sessionKey(id)).Err()
}

var _ repository.SessionStore = (*SessionStore)(nil)
