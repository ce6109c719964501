package usecase

import (
	"exam-registration/internal/data/repository"
	"exam-registration/pkg/admitcard"
	"exam-registration/pkg/clock"
	"exam-registration/pkg/jwt"
	"exam-registration/pkg/mailer"
	"exam-registration/pkg/utils"

	"go.uber.org/zap"
)

// Deps are the collaborators the services share.
type Deps struct {
	Repo     *repository.Repository
	Tokens   *jwt.Manager
	Mailer   mailer.Sender
	Renderer admitcard.Renderer
	Clock    clock.Clocker
}

type Service struct {
	OTP          OTPService
	Session      SessionService
	Auth         AuthService
	Registration RegistrationService
	Admin        AdminService
	ExamSlot     ExamSlotService
}

func NewService(deps Deps, config *utils.Config, log *zap.Logger) *Service {
	otp := NewOTPService(deps.Repo, config.OTP, deps.Clock, log)
	session := NewSessionService(deps.Repo.User, deps.Tokens, log)

	return &Service{
		OTP:          otp,
		Session:      session,
		Auth:         NewAuthService(deps.Repo, otp, session, deps.Mailer, config, deps.Clock, log),
		Registration: NewRegistrationService(deps.Repo, deps.Renderer, deps.Mailer, config.Exam, deps.Clock, log),
		Admin:        NewAdminService(deps.Repo, deps.Renderer, deps.Mailer, deps.Clock, log),
		ExamSlot:     NewExamSlotService(config.Exam.SlotsPath, log),
	}
}
