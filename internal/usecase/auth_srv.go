package usecase

import (
	"context"
	"errors"
	"fmt"

	"exam-registration/internal/data/entity"
	"exam-registration/internal/data/repository"
	"exam-registration/internal/dto/request"
	"exam-registration/internal/dto/response"
	"exam-registration/pkg/clock"
	"exam-registration/pkg/mailer"
	"exam-registration/pkg/utils"

	"go.uber.org/zap"
)

type AuthService interface {
	SendOTP(ctx context.Context, req *request.SendOTPRequest) (*response.SendOTPResponse, error)
	VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.TokenResponse, error)
	Me(ctx context.Context, userID int64) (*response.UserResponse, error)
}

type authService struct {
	repo     *repository.Repository
	otp      OTPService
	sessions SessionService
	mailer   mailer.Sender
	config   *utils.Config
	clock    clock.Clocker
	log      *zap.Logger
}

func NewAuthService(
	repo *repository.Repository,
	otp OTPService,
	sessions SessionService,
	sender mailer.Sender,
	config *utils.Config,
	clock clock.Clocker,
	log *zap.Logger,
) AuthService {
	return &authService{
		repo:     repo,
		otp:      otp,
		sessions: sessions,
		mailer:   sender,
		config:   config,
		clock:    clock,
		log:      log.With(zap.String("service", "auth")),
	}
}

func (s *authService) SendOTP(ctx context.Context, req *request.SendOTPRequest) (*response.SendOTPResponse, error) {
	email := utils.NormalizeEmail(req.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	// 1. Account + code in one transaction
	var issued *IssuedCode
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		user, created, err := s.repo.User.GetOrCreate(ctx, email, s.clock.Now())
		if err != nil {
			return err
		}
		if created {
			s.log.Info("Account created on first OTP request", zap.Int64("user_id", user.ID))
		}

		issued, err = s.otp.Issue(ctx, email, &user.ID)
		return err
	})
	if errors.Is(err, ErrOTPRateLimited) {
		return nil, err
	}
	if err != nil {
		s.log.Error("Failed to issue OTP", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("issue OTP: %w", err)
	}

	// 2. Deliver; a failure is reported, never retried
	if err := s.mailer.SendCode(ctx, email, issued.Code); err != nil {
		s.log.Error("Failed to deliver OTP", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	return &response.SendOTPResponse{
		Message: "OTP sent successfully",
		Email:   email,
	}, nil
}

func (s *authService) VerifyOTP(ctx context.Context, req *request.VerifyOTPRequest) (*response.TokenResponse, error) {
	email := utils.NormalizeEmail(req.Email)
	if len(req.OTP) != s.config.OTP.Length {
		return nil, fmt.Errorf("%w: otp must be %d digits", ErrValidation, s.config.OTP.Length)
	}

	// verify, mark verified and consume under one lock so a code is redeemed once
	outcome := OutcomeNotFound
	var user *entity.User
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		outcome, err = s.otp.Verify(ctx, email, req.OTP)
		if err != nil || outcome != OutcomeValid {
			return err
		}

		user, _, err = s.repo.User.GetOrCreate(ctx, email, s.clock.Now())
		if err != nil {
			return err
		}
		if !user.IsVerified {
			if err := s.repo.User.MarkVerified(ctx, user.ID, s.clock.Now()); err != nil {
				return err
			}
			user.IsVerified = true
		}

		return s.otp.Consume(ctx, email, req.OTP)
	})
	if err != nil {
		s.log.Error("Failed to verify OTP", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("verify OTP: %w", err)
	}
	if outcome != OutcomeValid {
		s.log.Warn("OTP verification rejected", zap.String("email", email), zap.Stringer("outcome", outcome))
		return nil, outcome.Err()
	}

	token, err := s.sessions.Mint(user.Email, user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info("User verified and logged in", zap.Int64("user_id", user.ID), zap.String("email", email))

	return &response.TokenResponse{
		AccessToken: token.Value,
		TokenType:   "bearer",
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

func (s *authService) Me(ctx context.Context, userID int64) (*response.UserResponse, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load account", zap.Error(err), zap.Int64("user_id", userID))
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}
