package adaptor

import (
	"errors"
	"net/http"
	"strconv"

	"exam-registration/internal/usecase"
	"exam-registration/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// handleServiceError maps usecase sentinels to HTTP responses
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrOTPRateLimited):
		log.Warn(operation+" failed - rate limited", zap.Error(err))
		utils.ResponseTooManyRequests(w, err.Error())

	case errors.Is(err, usecase.ErrOTPInvalid),
		errors.Is(err, usecase.ErrOTPExpired),
		errors.Is(err, usecase.ErrOTPNotFound):
		log.Warn(operation+" failed - OTP rejected", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidToken),
		errors.Is(err, usecase.ErrAccountNotFound),
		errors.Is(err, usecase.ErrUnauthorized):
		log.Warn(operation+" failed - unauthorized", zap.Error(err))
		utils.ResponseUnauthorized(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrRegistrationNotFound),
		errors.Is(err, usecase.ErrUserNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrDeliveryFailed):
		log.Error(operation+" failed - delivery", zap.Error(err))
		utils.ResponseInternalError(w, usecase.ErrDeliveryFailed.Error())

	case errors.Is(err, usecase.ErrExamSlotsUnavailable):
		log.Error(operation+" failed - exam slots", zap.Error(err))
		utils.ResponseInternalError(w, err.Error())

	default:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// pathUserID reads the {id} URL parameter
func pathUserID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
