package wire

import (
	"exam-registration/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireConfig(r chi.Router, configHandler *adaptor.ConfigHandler) {
	r.Get("/config/exam-slots", configHandler.ExamSlots)
}
