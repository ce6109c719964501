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

type UserRepository interface {
	// GetOrCreate returns the account for email, inserting an unverified one if absent.
	GetOrCreate(ctx context.Context, email string, now time.Time) (*entity.User, bool, error)
	FindByID(ctx context.Context, id int64) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindAllWithRegistration(ctx context.Context) ([]*entity.UserWithRegistration, error)
	MarkVerified(ctx context.Context, id int64, now time.Time) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const userColumns = `id, email, is_verified, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (ur *userRepository) GetOrCreate(ctx context.Context, email string, now time.Time) (*entity.User, bool, error) {
	query := `
		INSERT INTO users (email, is_verified, created_at, updated_at)
		VALUES ($1, false, $2, $2)
		ON CONFLICT (email) DO NOTHING
		RETURNING ` + userColumns

	user, err := scanUser(conn(ctx, ur.db).QueryRow(ctx, query, email, now))
	if err == nil {
		ur.log.Info("User created", zap.Int64("user_id", user.ID), zap.String("email", email))
		return user, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		ur.log.Error("Failed to create user", zap.Error(err), zap.String("email", email))
		return nil, false, fmt.Errorf("create user %s: %w", email, mapError(err))
	}

	// already present
	user, err = ur.FindByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		return nil, false, fmt.Errorf("user %s vanished after conflict", email)
	}
	return user, false, nil
}

func (ur *userRepository) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(conn(ctx, ur.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by ID", zap.Error(err), zap.Int64("user_id", id))
		return nil, fmt.Errorf("find user by ID %d: %w", id, err)
	}

	return user, nil
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(conn(ctx, ur.db).QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return user, nil
}

// FindAllWithRegistration lists every account, newest first, with its registration if any.
func (ur *userRepository) FindAllWithRegistration(ctx context.Context) ([]*entity.UserWithRegistration, error) {
	query := `
		SELECT u.id, u.email, u.is_verified, u.created_at, u.updated_at,
		       r.id, r.roll_no, r.name, r.father_name, r.medium, r.course,
		       r.exam_centre, r.exam_date, r.exam_time, r.admit_card_sent,
		       r.created_at, r.updated_at
		FROM users u
		LEFT JOIN registrations r ON r.user_id = u.id
		ORDER BY u.id DESC
	`

	rows, err := conn(ctx, ur.db).Query(ctx, query)
	if err != nil {
		ur.log.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*entity.UserWithRegistration
	for rows.Next() {
		var (
			row           entity.UserWithRegistration
			regID         *int64
			rollNo        *string
			name          *string
			fatherName    *string
			medium        *string
			course        *string
			examCentre    *string
			examDate      *string
			examTime      *string
			admitCardSent *bool
			regCreatedAt  *time.Time
			regUpdatedAt  *time.Time
		)
		err := rows.Scan(
			&row.ID, &row.Email, &row.IsVerified, &row.CreatedAt, &row.UpdatedAt,
			&regID, &rollNo, &name, &fatherName, &medium, &course,
			&examCentre, &examDate, &examTime, &admitCardSent,
			&regCreatedAt, &regUpdatedAt,
		)
		if err != nil {
			ur.log.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("scan user row: %w", err)
		}

		if regID != nil {
			row.Registration = &entity.Registration{
				Base: entity.Base{
					ID:        *regID,
					CreatedAt: *regCreatedAt,
					UpdatedAt: *regUpdatedAt,
				},
				UserID:        row.ID,
				RollNo:        *rollNo,
				Name:          *name,
				FatherName:    *fatherName,
				Medium:        *medium,
				Course:        *course,
				ExamCentre:    *examCentre,
				ExamDate:      *examDate,
				ExamTime:      *examTime,
				AdmitCardSent: *admitCardSent,
			}
		}
		users = append(users, &row)
	}

	if err := rows.Err(); err != nil {
		ur.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	return users, nil
}

func (ur *userRepository) MarkVerified(ctx context.Context, id int64, now time.Time) error {
	query := `UPDATE users SET is_verified = true, updated_at = $2 WHERE id = $1`

	result, err := conn(ctx, ur.db).Exec(ctx, query, id, now)
	if err != nil {
		ur.log.Error("Failed to mark user verified", zap.Error(err), zap.Int64("user_id", id))
		return fmt.Errorf("mark user %d verified: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", id)
	}

	return nil
}

// Delete removes the account; its codes and registration cascade.
func (ur *userRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := conn(ctx, ur.db).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		ur.log.Error("Failed to delete user", zap.Error(err), zap.Int64("user_id", id))
		return false, fmt.Errorf("delete user %d: %w", id, err)
	}

	return result.RowsAffected() > 0, nil
}
