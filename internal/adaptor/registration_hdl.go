package adaptor

import (
	"encoding/json"
	"net/http"

	"exam-registration/internal/dto/request"
	"exam-registration/internal/usecase"
	"exam-registration/pkg/utils"

	"go.uber.org/zap"
)

type RegistrationHandler struct {
	service usecase.RegistrationService
	log     *zap.Logger
}

func NewRegistrationHandler(service usecase.RegistrationService, log *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		service: service,
		log:     log,
	}
}

// Submit handles POST /registration/
func (h *RegistrationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	req.Normalize()
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	registration, created, err := h.service.Submit(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "submit registration")
		return
	}

	if created {
		utils.ResponseCreated(w, "Registration created successfully", registration)
		return
	}
	utils.ResponseSuccess(w, "Registration updated successfully", registration)
}

// Get handles GET /registration/
func (h *RegistrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	registration, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get registration")
		return
	}

	utils.ResponseSuccess(w, "Registration retrieved successfully", registration)
}

// AdmitCard handles GET /registration/admit-card
func (h *RegistrationHandler) AdmitCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	doc, err := h.service.AdmitCard(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "download admit card")
		return
	}

	utils.ResponsePDF(w, doc.Filename, doc.Content)
}

// SendAdmitCard handles POST /registration/admit-card/send
func (h *RegistrationHandler) SendAdmitCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	msg, err := h.service.SendAdmitCard(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "send admit card")
		return
	}

	utils.ResponseSuccess(w, msg.Message, msg)
}
