package usecase

import (
	"context"
	"fmt"
	"time"

	"exam-registration/internal/data/entity"
	"exam-registration/internal/data/repository"
	"exam-registration/pkg/clock"
	"exam-registration/pkg/utils"

	"go.uber.org/zap"
)

// Outcome is the result of checking a submitted code.
type Outcome int

const (
	OutcomeNotFound Outcome = iota
	OutcomeValid
	OutcomeInvalid
	OutcomeExpired
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeExpired:
		return "expired"
	default:
		return "not_found"
	}
}

// Err maps a non-valid outcome to its sentinel error.
func (o Outcome) Err() error {
	switch o {
	case OutcomeValid:
		return nil
	case OutcomeInvalid:
		return ErrOTPInvalid
	case OutcomeExpired:
		return ErrOTPExpired
	default:
		return ErrOTPNotFound
	}
}

// IssuedCode is the plain code handed to the delivery channel.
type IssuedCode struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

type OTPService interface {
	// Issue creates a new code for email unless one was issued within the cooldown.
	Issue(ctx context.Context, email string, userID *int64) (*IssuedCode, error)
	// Verify checks code against the newest code for email.
	Verify(ctx context.Context, email, code string) (Outcome, error)
	// Consume deletes every stored code for email that matches code.
	Consume(ctx context.Context, email, code string) error
}

type otpService struct {
	repo     *repository.Repository
	config   utils.OTPConfig
	clock    clock.Clocker
	generate func(length int) (string, error)
	log      *zap.Logger
}

func NewOTPService(
	repo *repository.Repository,
	config utils.OTPConfig,
	clock clock.Clocker,
	log *zap.Logger,
) OTPService {
	return &otpService{
		repo:     repo,
		config:   config,
		clock:    clock,
		generate: utils.GenerateOTP,
		log:      log.With(zap.String("service", "otp")),
	}
}

func (s *otpService) Issue(ctx context.Context, email string, userID *int64) (*IssuedCode, error) {
	var issued *IssuedCode

	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.OTP.LockEmail(ctx, email); err != nil {
			return err
		}

		now := s.clock.Now()

		// 1. Cooldown from the newest code, expired or not
		latest, err := s.repo.OTP.FindLatestByEmail(ctx, email)
		if err != nil {
			return err
		}
		if latest != nil && now.Sub(latest.CreatedAt) < s.config.Cooldown() {
			s.log.Warn("OTP requested within cooldown", zap.String("email", email))
			return ErrOTPRateLimited
		}

		// 2. Purge expired codes; unexpired older ones stay
		purged, err := s.repo.OTP.DeleteExpiredByEmail(ctx, email, now)
		if err != nil {
			return err
		}

		// 3. Generate and store
		code, err := s.generate(s.config.Length)
		if err != nil {
			return err
		}
		hash, err := utils.HashCode(code, s.config.HashCost)
		if err != nil {
			return fmt.Errorf("hash OTP: %w", err)
		}

		otp := &entity.OTP{
			BaseSimple: entity.BaseSimple{CreatedAt: now},
			UserID:     userID,
			Email:      email,
			CodeHash:   hash,
			ExpiresAt:  now.Add(s.config.Expiry()),
		}
		if err := s.repo.OTP.Create(ctx, otp); err != nil {
			return err
		}

		s.log.Info("OTP issued",
			zap.String("email", email),
			zap.Int64("otp_id", otp.ID),
			zap.Int64("purged", purged),
			zap.Time("expires_at", otp.ExpiresAt))
		s.log.Debug("OTP code", zap.String("email", email), zap.String("otp_code", code))

		issued = &IssuedCode{Email: email, Code: code, ExpiresAt: otp.ExpiresAt}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return issued, nil
}

func (s *otpService) Verify(ctx context.Context, email, code string) (Outcome, error) {
	outcome := OutcomeNotFound

	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.OTP.LockEmail(ctx, email); err != nil {
			return err
		}

		latest, err := s.repo.OTP.FindLatestByEmail(ctx, email)
		if err != nil {
			return err
		}
		if latest == nil {
			s.log.Warn("No OTP exists for email", zap.String("email", email))
			outcome = OutcomeNotFound
			return nil
		}

		if latest.IsExpired(s.clock.Now()) {
			if err := s.repo.OTP.DeleteByID(ctx, latest.ID); err != nil {
				return err
			}
			s.log.Warn("OTP expired", zap.String("email", email), zap.Int64("otp_id", latest.ID))
			outcome = OutcomeExpired
			return nil
		}

		if !utils.CheckCodeHash(code, latest.CodeHash) {
			attempts, err := s.repo.OTP.IncrementFailedAttempts(ctx, latest.ID)
			if err != nil {
				return err
			}
			s.log.Warn("Invalid OTP code",
				zap.String("email", email),
				zap.Int("attempt", attempts))

			if attempts >= s.config.MaxAttempts {
				if err := s.repo.OTP.DeleteByID(ctx, latest.ID); err != nil {
					return err
				}
				s.log.Warn("OTP invalidated after too many failed attempts",
					zap.String("email", email),
					zap.Int("attempts", attempts))
			}
			outcome = OutcomeInvalid
			return nil
		}

		// left in place for Consume
		s.log.Info("OTP verified", zap.String("email", email))
		outcome = OutcomeValid
		return nil
	})
	if err != nil {
		return OutcomeNotFound, err
	}

	return outcome, nil
}

func (s *otpService) Consume(ctx context.Context, email, code string) error {
	return s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.OTP.LockEmail(ctx, email); err != nil {
			return err
		}

		otps, err := s.repo.OTP.FindByEmail(ctx, email)
		if err != nil {
			return err
		}

		for _, otp := range otps {
			if !utils.CheckCodeHash(code, otp.CodeHash) {
				continue
			}
			if err := s.repo.OTP.DeleteByID(ctx, otp.ID); err != nil {
				return err
			}
		}

		return nil
	})
}
