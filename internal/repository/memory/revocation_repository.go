package memory

import (
	"context"
	"time"

	"note-summary-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

type RevocationRepository struct {
	cache *cache.Cache
}

var _ contract.RevocationRepository = (*RevocationRepository)(nil)

func NewRevocationRepository() *RevocationRepository {
	// Entries carry their own expiry; purge expired items every 10 minutes
	c := cache.New(cache.NoExpiration, 10*time.Minute)
	return &RevocationRepository{
		cache: c,
	}
}

func (r *RevocationRepository) Revoke(ctx context.Context, sessionId string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	r.cache.Set(sessionId, struct{}{}, ttl)
	return nil
}

func (r *RevocationRepository) IsRevoked(ctx context.Context, sessionId string) (bool, error) {
	_, found := r.cache.Get(sessionId)
	return found, nil
}
