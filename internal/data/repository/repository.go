package repository

import (
	"errors"

	"exam-registration/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// ErrConflict is returned when a write violates a unique constraint.
var ErrConflict = errors.New("resource conflict")

type Repository struct {
	User         UserRepository
	OTP          OTPRepository
	Registration RegistrationRepository
	Tx           Transactor
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		OTP:          NewOTPRepository(db, log),
		Registration: NewRegistrationRepository(db, log),
		Tx:           NewTransactor(db, log),
	}
}

// mapError translates driver errors the callers branch on.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return errors.Join(ErrConflict, err)
	}
	return err
}
