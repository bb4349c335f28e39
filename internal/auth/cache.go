package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// PrincipalStore resolves a user id from a token to the current principal.
type PrincipalStore interface {
	Lookup(ctx context.Context, userID int64) (*Principal, error)
}

const principalTTL = 10 * time.Minute

// CachedStore puts a redis cache in front of another PrincipalStore.
// Redis failures fall through to the backing store.
type CachedStore struct {
	next PrincipalStore
	rdb  *redis.Client
	log  *slog.Logger
}

func NewCachedStore(next PrincipalStore, rdb *redis.Client, log *slog.Logger) *CachedStore {
	return &CachedStore{next: next, rdb: rdb, log: log}
}

func principalKey(userID int64) string { return fmt.Sprintf("user:%d:principal", userID) }

func (s *CachedStore) Lookup(ctx context.Context, userID int64) (*Principal, error) {
	key := principalKey(userID)
	raw, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p Principal
		if json.Unmarshal(raw, &p) == nil {
			return &p, nil
		}
		s.log.Warn("bad cached principal", "user_id", userID)
	case !errors.Is(err, redis.Nil):
		s.log.Error("redis get failed", "user_id", userID, "err", err)
	}

	p, err := s.next.Lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		if err := s.rdb.Set(ctx, key, b, principalTTL).Err(); err != nil {
			s.log.Error("redis set failed", "user_id", userID, "err", err)
		}
	}
	return p, nil
}

// Forget drops the cached principal, e.g. after a role change.
func (s *CachedStore) Forget(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, principalKey(userID)).Err()
}
