package usecase

import (
	"context"
	"errors"
	"fmt"

	"exam-registration/internal/data/repository"
	"exam-registration/internal/dto/response"
	"exam-registration/pkg/admitcard"
	"exam-registration/pkg/clock"
	"exam-registration/pkg/mailer"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type AdminService interface {
	ListUsers(ctx context.Context) ([]response.AdminUserResponse, error)
	AdmitCard(ctx context.Context, userID int64) (*response.Document, error)
	SendAdmitCard(ctx context.Context, userID int64) (*response.MessageResponse, error)
	BulkSendAdmitCards(ctx context.Context, userIDs []int64) (*response.BulkSendResponse, error)
	DeleteUser(ctx context.Context, userID int64) error
	BulkDeleteUsers(ctx context.Context, userIDs []int64) (*response.BulkDeleteResponse, error)
}

type adminService struct {
	repo  *repository.Repository
	cards *admitCards
	log   *zap.Logger
}

func NewAdminService(
	repo *repository.Repository,
	renderer admitcard.Renderer,
	sender mailer.Sender,
	clock clock.Clocker,
	log *zap.Logger,
) AdminService {
	log = log.With(zap.String("service", "admin"))
	return &adminService{
		repo:  repo,
		cards: newAdmitCards(repo, renderer, sender, clock, log),
		log:   log,
	}
}

func (s *adminService) ListUsers(ctx context.Context) ([]response.AdminUserResponse, error) {
	rows, err := s.repo.User.FindAllWithRegistration(ctx)
	if err != nil {
		return nil, err
	}

	users := make([]response.AdminUserResponse, 0, len(rows))
	for _, row := range rows {
		users = append(users, response.AdminUserToResponse(row))
	}
	return users, nil
}

func (s *adminService) AdmitCard(ctx context.Context, userID int64) (*response.Document, error) {
	reg, err := s.repo.Registration.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}

	return s.cards.render(reg)
}

func (s *adminService) SendAdmitCard(ctx context.Context, userID int64) (*response.MessageResponse, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	reg, err := s.repo.Registration.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}

	if err := s.cards.deliver(ctx, user, reg); err != nil {
		return nil, err
	}

	return &response.MessageResponse{Message: fmt.Sprintf("Admit card sent to %s", user.Email)}, nil
}

// BulkSendAdmitCards mails each requested card once. Users without an account or a
// registration are skipped; render, delivery and store failures are reported as failed.
func (s *adminService) BulkSendAdmitCards(ctx context.Context, userIDs []int64) (*response.BulkSendResponse, error) {
	result := &response.BulkSendResponse{
		Sent:    []int64{},
		Skipped: []int64{},
		Failed:  []int64{},
	}

	for _, id := range lo.Uniq(userIDs) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, err := s.SendAdmitCard(ctx, id)
		switch {
		case err == nil:
			result.Sent = append(result.Sent, id)
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrRegistrationNotFound):
			result.Skipped = append(result.Skipped, id)
		default:
			s.log.Warn("Bulk send failed for user", zap.Error(err), zap.Int64("user_id", id))
			result.Failed = append(result.Failed, id)
		}
	}

	s.log.Info("Bulk admit card send finished",
		zap.Int("sent", len(result.Sent)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)))

	return result, nil
}

func (s *adminService) DeleteUser(ctx context.Context, userID int64) error {
	deleted, err := s.repo.User.Delete(ctx, userID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}

	s.log.Info("User deleted", zap.Int64("user_id", userID))
	return nil
}

func (s *adminService) BulkDeleteUsers(ctx context.Context, userIDs []int64) (*response.BulkDeleteResponse, error) {
	result := &response.BulkDeleteResponse{
		Deleted:  []int64{},
		NotFound: []int64{},
	}

	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, id := range lo.Uniq(userIDs) {
			deleted, err := s.repo.User.Delete(ctx, id)
			if err != nil {
				return err
			}
			if deleted {
				result.Deleted = append(result.Deleted, id)
			} else {
				result.NotFound = append(result.NotFound, id)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Bulk delete finished",
		zap.Int("deleted", len(result.Deleted)),
		zap.Int("not_found", len(result.NotFound)))

	return result, nil
}
