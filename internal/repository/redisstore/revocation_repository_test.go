package redisstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return s, rdb
}

func TestRevocationRepository_RevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	s, rdb := newTestClient(t)
	repo := NewRevocationRepository(rdb)

	require.NoError(t, repo.Revoke(ctx, "sess-1", time.Now().Add(30*time.Minute)))

	revoked, err := repo.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, s.Exists(revokedKeyPrefix+"sess-1"))

	s.FastForward(31 * time.Minute)

	revoked, err = repo.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationRepository_RedisDown(t *testing.T) {
	ctx := context.Background()
	s, rdb := newTestClient(t)
	repo := NewRevocationRepository(rdb)

	s.Close()

	_, err := repo.IsRevoked(ctx, "sess-1")
	assert.Error(t, err)
}
