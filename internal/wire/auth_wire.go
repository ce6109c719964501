package wire

import (
	"net/http"
	"time"

	"exam-registration/internal/adaptor"
	"exam-registration/pkg/middleware"
	"exam-registration/pkg/ratelimit"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// per client IP
const (
	sendOTPLimit   = 5
	verifyOTPLimit = 10
	otpRouteWindow = time.Minute
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	authenticated func(http.Handler) http.Handler,
	limiter ratelimit.Limiter,
	log *zap.Logger,
) {
	r.Route("/auth", func(r chi.Router) {
		// ==================== PUBLIC ROUTES ====================
		r.With(middleware.RateLimit(limiter, "send-otp", sendOTPLimit, otpRouteWindow, log)).
			Post("/send-otp", authHandler.SendOTP)
		r.With(middleware.RateLimit(limiter, "verify-otp", verifyOTPLimit, otpRouteWindow, log)).
			Post("/verify-otp", authHandler.VerifyOTP)

		// ==================== PROTECTED ROUTES ====================
		r.With(authenticated).Get("/me", authHandler.Me)
	})
}
