package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"note-summary-be/internal/entity"
	"note-summary-be/internal/repository/contract"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRevoked      = errors.New("session revoked")
)

type claims struct {
	UserId string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret      []byte
	ttl         time.Duration
	revocations contract.RevocationRepository
	broker      *Broker
	now         func() time.Time
}

func NewManager(secret string, ttl time.Duration, revocations contract.RevocationRepository, broker *Broker) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		secret:      []byte(secret),
		ttl:         ttl,
		revocations: revocations,
		broker:      broker,
		now:         time.Now,
	}
}

func (m *Manager) Broker() *Broker {
	return m.broker
}

// Issue signs a fresh session for the user and announces the sign-in.
func (m *Manager) Issue(ctx context.Context, user *entity.User) (*Session, error) {
	now := m.now().UTC().Truncate(time.Second)
	s := &Session{
		Id:        uuid.NewString(),
		UserId:    user.Id,
		Email:     user.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserId: s.UserId.String(),
		Email:  s.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.Id,
			Subject:   s.UserId.String(),
			IssuedAt:  jwt.NewNumericDate(s.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}
	s.Token = signed

	m.broker.Publish(Event{Type: EventSignedIn, Session: s, OccurredAt: now})
	return s, nil
}

// Validate parses the token and rejects bad signatures, expired tokens and revoked sessions.
func (m *Manager) Validate(ctx context.Context, tokenStr string) (*Session, error) {
	if tokenStr == "" {
		return nil, ErrUnauthorized
	}

	var c claims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}

	userId, err := uuid.Parse(c.UserId)
	if err != nil || c.ID == "" {
		return nil, ErrUnauthorized
	}

	revoked, err := m.revocations.IsRevoked(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, ErrRevoked
	}

	s := &Session{
		Id:     c.ID,
		UserId: userId,
		Email:  c.Email,
		Token:  tokenStr,
	}
	if c.IssuedAt != nil {
		s.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s, nil
}

// Revoke ends the session and announces the sign-out.
func (m *Manager) Revoke(ctx context.Context, s *Session) error {
	if err := m.revocations.Revoke(ctx, s.Id, s.ExpiresAt); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	m.broker.Publish(Event{Type: EventSignedOut, Session: s, OccurredAt: m.now()})
	return nil
}
