// Package session issues, validates and revokes user sessions, and lets
// long-lived components follow sign-in and sign-out as events.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the proof of an authenticated identity carried by a request.
type Session struct {
	Id        string
	UserId    uuid.UUID
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Token     string
}

type contextKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
