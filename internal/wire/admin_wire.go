package wire

import (
	"net/http"

	"exam-registration/internal/adaptor"
	"exam-registration/pkg/middleware"
	"exam-registration/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// wireAdmin configures operator routes; the caller must hold a session for EMAIL_FROM
func wireAdmin(
	r chi.Router,
	adminHandler *adaptor.AdminHandler,
	authenticated func(http.Handler) http.Handler,
	bounded func(http.Handler) http.Handler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.With(
		authenticated,                            // Check valid session
		middleware.Admin(config.Email.From, log), // Check operator identity
	).Route("/admin/users", func(r chi.Router) {
		// one SMTP round trip per user, so no request deadline
		r.Post("/bulk-send", adminHandler.BulkSend)

		r.Group(func(r chi.Router) {
			r.Use(bounded)
			r.Get("/", adminHandler.ListUsers)
			r.Post("/bulk-delete", adminHandler.BulkDelete)
			r.Get("/{id}/admit-card", adminHandler.AdmitCard)
			r.Post("/{id}/send-admit-card", adminHandler.SendAdmitCard)
			r.Delete("/{id}", adminHandler.DeleteUser)
		})
	})
}
