package wire

import (
	"net/http"

	"exam-registration/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireRegistration configures the candidate routes; all require a session
func wireRegistration(
	r chi.Router,
	registrationHandler *adaptor.RegistrationHandler,
	authenticated func(http.Handler) http.Handler,
) {
	r.With(authenticated).Route("/registration", func(r chi.Router) {
		r.Post("/", registrationHandler.Submit)
		r.Get("/", registrationHandler.Get)
		r.Get("/admit-card", registrationHandler.AdmitCard)
		r.Post("/admit-card/send", registrationHandler.SendAdmitCard)
	})
}
