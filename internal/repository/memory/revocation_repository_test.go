package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevocationRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewRevocationRepository()

	revoked, err := repo.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "sess-1", time.Now().Add(time.Hour)))
	revoked, err = repo.IsRevoked(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// already expired sessions are not worth remembering
	require.NoError(t, repo.Revoke(ctx, "sess-2", time.Now().Add(-time.Minute)))
	revoked, err = repo.IsRevoked(ctx, "sess-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}
