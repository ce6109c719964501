package usecase

import (
	"context"
	"errors"
	"fmt"

	"exam-registration/internal/data/entity"
	"exam-registration/internal/data/repository"
	"exam-registration/internal/dto/request"
	"exam-registration/internal/dto/response"
	"exam-registration/pkg/admitcard"
	"exam-registration/pkg/clock"
	"exam-registration/pkg/mailer"
	"exam-registration/pkg/utils"

	"go.uber.org/zap"
)

type RegistrationService interface {
	// Submit creates or updates the caller's registration. created is false on update.
	Submit(ctx context.Context, userID int64, req *request.RegistrationRequest) (*response.RegistrationResponse, bool, error)
	Get(ctx context.Context, userID int64) (*response.RegistrationResponse, error)
	AdmitCard(ctx context.Context, userID int64) (*response.Document, error)
	SendAdmitCard(ctx context.Context, userID int64) (*response.MessageResponse, error)
}

type registrationService struct {
	repo   *repository.Repository
	cards  *admitCards
	config utils.ExamConfig
	clock  clock.Clocker
	log    *zap.Logger
}

func NewRegistrationService(
	repo *repository.Repository,
	renderer admitcard.Renderer,
	sender mailer.Sender,
	config utils.ExamConfig,
	clock clock.Clocker,
	log *zap.Logger,
) RegistrationService {
	log = log.With(zap.String("service", "registration"))
	return &registrationService{
		repo:   repo,
		cards:  newAdmitCards(repo, renderer, sender, clock, log),
		config: config,
		clock:  clock,
		log:    log,
	}
}

func (s *registrationService) Submit(ctx context.Context, userID int64, req *request.RegistrationRequest) (*response.RegistrationResponse, bool, error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, false, fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
	}

	reg := &entity.Registration{
		Base:       entity.Base{UpdatedAt: s.clock.Now()},
		UserID:     userID,
		RollNo:     utils.GenerateRollNumber(s.config.RollPrefix, userID),
		Name:       req.Name,
		FatherName: req.FatherName,
		Medium:     req.Medium,
		Course:     req.Course,
		ExamCentre: req.ExamCentre,
		ExamDate:   req.ExamDate,
		ExamTime:   req.ExamTime,
	}

	var created bool
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.repo.Registration.Upsert(ctx, reg)
		return err
	})
	if errors.Is(err, repository.ErrConflict) {
		s.log.Warn("Roll number already taken", zap.Int64("user_id", userID), zap.String("roll_no", reg.RollNo))
		return nil, false, fmt.Errorf("%w: roll number %s already assigned", ErrConflict, reg.RollNo)
	}
	if err != nil {
		return nil, false, err
	}

	if created {
		s.log.Info("Registration created", zap.Int64("user_id", userID), zap.String("roll_no", reg.RollNo))
	} else {
		s.log.Info("Registration updated", zap.Int64("user_id", userID), zap.String("roll_no", reg.RollNo))
	}

	resp := response.RegistrationToResponse(reg)
	return &resp, created, nil
}

func (s *registrationService) Get(ctx context.Context, userID int64) (*response.RegistrationResponse, error) {
	reg, err := s.repo.Registration.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}

	resp := response.RegistrationToResponse(reg)
	return &resp, nil
}

func (s *registrationService) AdmitCard(ctx context.Context, userID int64) (*response.Document, error) {
	reg, err := s.repo.Registration.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrRegistrationNotFound
	}

	return s.cards.render(reg)
}

func (s *registrationService) SendAdmitCard(ctx context.Context, userID int64) (*response.MessageResponse, error) {
	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountNotFound
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

// ==================== ADMIT CARDS ====================

// admitCards renders and mails cards for both the candidate and admin flows.
type admitCards struct {
	repo     *repository.Repository
	renderer admitcard.Renderer
	mailer   mailer.Sender
	clock    clock.Clocker
	log      *zap.Logger
}

func newAdmitCards(
	repo *repository.Repository,
	renderer admitcard.Renderer,
	sender mailer.Sender,
	clock clock.Clocker,
	log *zap.Logger,
) *admitCards {
	return &admitCards{repo: repo, renderer: renderer, mailer: sender, clock: clock, log: log}
}

func (c *admitCards) render(reg *entity.Registration) (*response.Document, error) {
	pdf, err := c.renderer.Render(admitcard.Fields{
		RollNo:     reg.RollNo,
		Name:       reg.Name,
		FatherName: reg.FatherName,
		Medium:     reg.Medium,
		Course:     reg.Course,
		ExamDate:   reg.ExamDate,
		ExamTime:   reg.ExamTime,
		ExamCentre: reg.ExamCentre,
	})
	if err != nil {
		c.log.Error("Failed to generate admit card", zap.Error(err), zap.String("roll_no", reg.RollNo))
		return nil, fmt.Errorf("generate admit card: %w", err)
	}

	return &response.Document{Filename: mailer.AttachmentName(reg.RollNo), Content: pdf}, nil
}

// deliver mails the card and records that it was sent.
func (c *admitCards) deliver(ctx context.Context, user *entity.User, reg *entity.Registration) error {
	doc, err := c.render(reg)
	if err != nil {
		return err
	}

	if err := c.mailer.SendDocument(ctx, user.Email, reg.Name, reg.RollNo, doc.Content); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}

	if err := c.repo.Registration.MarkAdmitCardSent(ctx, reg.UserID, c.clock.Now()); err != nil {
		c.log.Error("Admit card sent but flag not stored", zap.Error(err), zap.Int64("user_id", reg.UserID))
		return err
	}

	c.log.Info("Admit card sent", zap.String("email", user.Email), zap.String("roll_no", reg.RollNo))
	return nil
}
