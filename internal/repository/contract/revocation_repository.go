package contract

import (
	"context"
	"time"
)

// RevocationRepository remembers revoked session ids until they would have expired anyway.
type RevocationRepository interface {
	Revoke(ctx context.Context, sessionId string, until time.Time) error
	IsRevoked(ctx context.Context, sessionId string) (bool, error)
}
