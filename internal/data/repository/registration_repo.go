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

type RegistrationRepository interface {
	// Upsert inserts the record or updates the form fields of the existing one.
	// The stored roll number is never overwritten. created reports an insert.
	Upsert(ctx context.Context, reg *entity.Registration) (created bool, err error)
	FindByUserID(ctx context.Context, userID int64) (*entity.Registration, error)
	MarkAdmitCardSent(ctx context.Context, userID int64, now time.Time) error
}

type registrationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRegistrationRepository(db database.PgxIface, log *zap.Logger) RegistrationRepository {
	return &registrationRepository{
		db:  db,
		log: log.With(zap.String("repository", "registration")),
	}
}

const registrationColumns = `id, user_id, roll_no, name, father_name, medium, course,
	exam_centre, exam_date, exam_time, admit_card_sent, created_at, updated_at`

func scanRegistration(row pgx.Row) (*entity.Registration, error) {
	var reg entity.Registration
	err := row.Scan(
		&reg.ID,
		&reg.UserID,
		&reg.RollNo,
		&reg.Name,
		&reg.FatherName,
		&reg.Medium,
		&reg.Course,
		&reg.ExamCentre,
		&reg.ExamDate,
		&reg.ExamTime,
		&reg.AdmitCardSent,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepository) Upsert(ctx context.Context, reg *entity.Registration) (bool, error) {
	query := `
		INSERT INTO registrations (
			user_id, roll_no, name, father_name, medium, course,
			exam_centre, exam_date, exam_time, admit_card_sent, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			name        = EXCLUDED.name,
			father_name = EXCLUDED.father_name,
			medium      = EXCLUDED.medium,
			course      = EXCLUDED.course,
			exam_centre = EXCLUDED.exam_centre,
			exam_date   = EXCLUDED.exam_date,
			exam_time   = EXCLUDED.exam_time,
			updated_at  = EXCLUDED.updated_at
		RETURNING ` + registrationColumns + `, (xmax = 0) AS inserted
	`

	var created bool
	err := conn(ctx, r.db).QueryRow(ctx, query,
		reg.UserID,
		reg.RollNo,
		reg.Name,
		reg.FatherName,
		reg.Medium,
		reg.Course,
		reg.ExamCentre,
		reg.ExamDate,
		reg.ExamTime,
		reg.UpdatedAt,
	).Scan(
		&reg.ID,
		&reg.UserID,
		&reg.RollNo,
		&reg.Name,
		&reg.FatherName,
		&reg.Medium,
		&reg.Course,
		&reg.ExamCentre,
		&reg.ExamDate,
		&reg.ExamTime,
		&reg.AdmitCardSent,
		&reg.CreatedAt,
		&reg.UpdatedAt,
		&created,
	)
	if err != nil {
		r.log.Error("Failed to upsert registration", zap.Error(err), zap.Int64("user_id", reg.UserID))
		return false, fmt.Errorf("upsert registration for user %d: %w", reg.UserID, mapError(err))
	}

	return created, nil
}

func (r *registrationRepository) FindByUserID(ctx context.Context, userID int64) (*entity.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE user_id = $1`

	reg, err := scanRegistration(conn(ctx, r.db).QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find registration", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("find registration for user %d: %w", userID, err)
	}

	return reg, nil
}

func (r *registrationRepository) MarkAdmitCardSent(ctx context.Context, userID int64, now time.Time) error {
	query := `UPDATE registrations SET admit_card_sent = true, updated_at = $2 WHERE user_id = $1`

	result, err := conn(ctx, r.db).Exec(ctx, query, userID, now)
	if err != nil {
		r.log.Error("Failed to mark admit card sent", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("mark admit card sent for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("registration for user %d not found", userID)
	}

	return nil
}
