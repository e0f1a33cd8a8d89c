package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"note-summary-be/internal/dto"
	"note-summary-be/internal/entity"
	"note-summary-be/internal/pkg/logger"
	"note-summary-be/internal/repository/contract"
	"note-summary-be/internal/repository/specification"
	"note-summary-be/internal/repository/unitofwork"
	"note-summary-be/internal/session"
	"note-summary-be/pkg/events"

	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, s *session.Session) error
	Session(ctx context.Context, s *session.Session) (*dto.SessionResponse, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	sessions       *session.Manager
	eventPublisher events.Publisher
	logger         logger.ILogger
	bcryptCost     int
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	sessions *session.Manager,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		sessions:       sessions,
		eventPublisher: eventPublisher,
		logger:         logger,
		bcryptCost:     bcrypt.DefaultCost,
	}
}

func toUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		Id:        u.Id,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	email := normalizeEmail(req.Email)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     strings.TrimSpace(req.FullName),
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		// A concurrent registration can pass the lookup above and still lose
		// on the unique index.
		if errors.Is(err, contract.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		s.logger.Error("AuthService", "Register failed", map[string]interface{}{
			"email": email,
			"error": err,
		})
		return nil, err
	}

	s.logger.Info("AuthService", "User registered", map[string]interface{}{
		"user_id": user.Id.String(),
	})

	res := toUserResponse(user)
	return &res, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByEmail{Email: normalizeEmail(req.Email)})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess, err := s.sessions.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.UserLogin, map[string]interface{}{
		"user_id":    user.Id.String(),
		"session_id": sess.Id,
	})

	return &dto.LoginResponse{
		AccessToken: sess.Token,
		ExpiresAt:   sess.ExpiresAt,
		User:        toUserResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return ErrUnauthorized
	}

	if err := s.sessions.Revoke(ctx, sess); err != nil {
		s.logger.Error("AuthService", "Logout failed", map[string]interface{}{
			"session_id": sess.Id,
			"error":      err,
		})
		return err
	}

	s.publish(ctx, events.UserLogout, map[string]interface{}{
		"user_id":    sess.UserId.String(),
		"session_id": sess.Id,
	})
	return nil
}

func (s *authService) Session(ctx context.Context, sess *session.Session) (*dto.SessionResponse, error) {
	if sess == nil {
		return nil, ErrUnauthorized
	}
	return &dto.SessionResponse{
		SessionId: sess.Id,
		UserId:    sess.UserId,
		Email:     sess.Email,
		IssuedAt:  sess.IssuedAt,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

func (s *authService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.logger.Warn("AuthService", fmt.Sprintf("Failed to publish %s event", eventType), map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// IsAuthError reports whether err should be answered with 401.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) || errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, session.ErrUnauthorized) || errors.Is(err, session.ErrRevoked)
}
