package usecase

import (
	"context"
	"fmt"

	"exam-registration/internal/data/entity"
	"exam-registration/internal/data/repository"
	"exam-registration/pkg/jwt"

	"go.uber.org/zap"
)

type SessionService interface {
	Mint(email string, userID int64) (*jwt.Token, error)
	Validate(token string) (*jwt.Claims, error)
	ResolveAccount(ctx context.Context, claims *jwt.Claims) (*entity.User, error)
}

type sessionService struct {
	users   repository.UserRepository
	manager *jwt.Manager
	log     *zap.Logger
}

func NewSessionService(users repository.UserRepository, manager *jwt.Manager, log *zap.Logger) SessionService {
	return &sessionService{
		users:   users,
		manager: manager,
		log:     log.With(zap.String("service", "session")),
	}
}

func (s *sessionService) Mint(email string, userID int64) (*jwt.Token, error) {
	token, err := s.manager.Sign(email, userID)
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *sessionService) Validate(token string) (*jwt.Claims, error) {
	claims, err := s.manager.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *sessionService) ResolveAccount(ctx context.Context, claims *jwt.Claims) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	// deleted after the token was minted
	if user == nil {
		return nil, ErrAccountNotFound
	}
	return user, nil
}
