package adaptor

import (
	"exam-registration/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Auth         *AuthHandler
	Registration *RegistrationHandler
	Admin        *AdminHandler
	Config       *ConfigHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(service.Auth, log),
		Registration: NewRegistrationHandler(service.Registration, log),
		Admin:        NewAdminHandler(service.Admin, log),
		Config:       NewConfigHandler(service.ExamSlot, log),
	}
}
