package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"exam-registration/internal/data/entity"
	"exam-registration/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type OTPRepository interface {
	// LockEmail serializes code mutations for one email until the surrounding transaction ends.
	LockEmail(ctx context.Context, email string) error
	Create(ctx context.Context, otp *entity.OTP) error
	// FindLatestByEmail returns the newest code for email (created_at, then id), or nil.
	FindLatestByEmail(ctx context.Context, email string) (*entity.OTP, error)
	FindByEmail(ctx context.Context, email string) ([]*entity.OTP, error)
	// IncrementFailedAttempts bumps the counter and returns the new value.
	IncrementFailedAttempts(ctx context.Context, id int64) (int, error)
	DeleteByID(ctx context.Context, id int64) error
	DeleteExpiredByEmail(ctx context.Context, email string, now time.Time) (int64, error)
}

type otpRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOTPRepository(db database.PgxIface, log *zap.Logger) OTPRepository {
	return &otpRepository{
		db:  db,
		log: log.With(zap.String("repository", "otp")),
	}
}

const otpColumns = `id, user_id, email, code_hash, expires_at, failed_attempts, created_at`

func scanOTP(row pgx.Row) (*entity.OTP, error) {
	var otp entity.OTP
	err := row.Scan(
		&otp.ID,
		&otp.UserID,
		&otp.Email,
		&otp.CodeHash,
		&otp.ExpiresAt,
		&otp.FailedAttempts,
		&otp.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *otpRepository) LockEmail(ctx context.Context, email string) error {
	if _, err := conn(ctx, r.db).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, email); err != nil {
		r.log.Error("Failed to lock email", zap.Error(err), zap.String("email", email))
		return fmt.Errorf("lock otp email %s: %w", email, err)
	}
	return nil
}

func (r *otpRepository) Create(ctx context.Context, otp *entity.OTP) error {
	query := `
		INSERT INTO otp_codes (user_id, email, code_hash, expires_at, failed_attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := conn(ctx, r.db).QueryRow(ctx, query,
		otp.UserID,
		otp.Email,
		otp.CodeHash,
		otp.ExpiresAt,
		otp.FailedAttempts,
		otp.CreatedAt,
	).Scan(&otp.ID)

	if err != nil {
		r.log.Error("Failed to create OTP", zap.Error(err), zap.String("email", otp.Email))
		return fmt.Errorf("create OTP for %s: %w", otp.Email, err)
	}

	return nil
}

func (r *otpRepository) FindLatestByEmail(ctx context.Context, email string) (*entity.OTP, error) {
	query := `
		SELECT ` + otpColumns + `
		FROM otp_codes
		WHERE email = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
		FOR UPDATE
	`

	otp, err := scanOTP(conn(ctx, r.db).QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find latest OTP", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("find latest OTP for %s: %w", email, err)
	}

	return otp, nil
}

func (r *otpRepository) FindByEmail(ctx context.Context, email string) ([]*entity.OTP, error) {
	query := `
		SELECT ` + otpColumns + `
		FROM otp_codes
		WHERE email = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := conn(ctx, r.db).Query(ctx, query, email)
	if err != nil {
		r.log.Error("Failed to list OTPs", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("list OTPs for %s: %w", email, err)
	}
	defer rows.Close()

	var otps []*entity.OTP
	for rows.Next() {
		otp, err := scanOTP(rows)
		if err != nil {
			return nil, fmt.Errorf("scan OTP row: %w", err)
		}
		otps = append(otps, otp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate OTP rows: %w", err)
	}

	return otps, nil
}

func (r *otpRepository) IncrementFailedAttempts(ctx context.Context, id int64) (int, error) {
	query := `
		UPDATE otp_codes
		SET failed_attempts = failed_attempts + 1
		WHERE id = $1
		RETURNING failed_attempts
	`

	var attempts int
	err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(&attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("OTP %d not found", id)
	}
	if err != nil {
		r.log.Error("Failed to increment OTP attempts", zap.Error(err), zap.Int64("otp_id", id))
		return 0, fmt.Errorf("increment attempts for OTP %d: %w", id, err)
	}

	return attempts, nil
}

func (r *otpRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM otp_codes WHERE id = $1`, id); err != nil {
		r.log.Error("Failed to delete OTP", zap.Error(err), zap.Int64("otp_id", id))
		return fmt.Errorf("delete OTP %d: %w", id, err)
	}
	return nil
}

func (r *otpRepository) DeleteExpiredByEmail(ctx context.Context, email string, now time.Time) (int64, error) {
	result, err := conn(ctx, r.db).Exec(ctx,
		`DELETE FROM otp_codes WHERE email = $1 AND expires_at < $2`, email, now)
	if err != nil {
		r.log.Error("Failed to purge expired OTPs", zap.Error(err), zap.String("email", email))
		return 0, fmt.Errorf("purge expired OTPs for %s: %w", email, err)
	}
	return result.RowsAffected(), nil
}
