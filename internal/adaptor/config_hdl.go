package adaptor

import (
	"net/http"

	"exam-registration/internal/usecase"
	"exam-registration/pkg/utils"

	"go.uber.org/zap"
)

type ConfigHandler struct {
	service usecase.ExamSlotService
	log     *zap.Logger
}

func NewConfigHandler(service usecase.ExamSlotService, log *zap.Logger) *ConfigHandler {
	return &ConfigHandler{
		service: service,
		log:     log,
	}
}

// ExamSlots handles GET /config/exam-slots
func (h *ConfigHandler) ExamSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := h.service.Slots(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "load exam slots")
		return
	}

	utils.ResponseSuccess(w, "Exam slots retrieved successfully", slots)
}
