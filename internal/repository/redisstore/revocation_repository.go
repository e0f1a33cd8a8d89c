package redisstore

import (
	"context"
	"time"

	"note-summary-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session:revoked:"

// RevocationRepository shares revoked sessions across every instance behind the same Redis.
type RevocationRepository struct {
	rdb *redis.Client
}

var _ contract.RevocationRepository = (*RevocationRepository)(nil)

func NewRevocationRepository(rdb *redis.Client) *RevocationRepository {
	return &RevocationRepository{rdb: rdb}
}

func (r *RevocationRepository) Revoke(ctx context.Context, sessionId string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedKeyPrefix+sessionId, 1, ttl).Err()
}

func (r *RevocationRepository) IsRevoked(ctx context.Context, sessionId string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedKeyPrefix+sessionId).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
