package adaptor

import (
	"encoding/json"
	"net/http"

	"exam-registration/internal/dto/request"
	"exam-registration/internal/usecase"
	"exam-registration/pkg/utils"

	"go.uber.org/zap"
)

type AdminHandler struct {
	service usecase.AdminService
	log     *zap.Logger
}

func NewAdminHandler(service usecase.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log,
	}
}

// ListUsers handles GET /admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list users")
		return
	}

	utils.ResponseSuccess(w, "Users retrieved successfully", users)
}

// AdmitCard handles GET /admin/users/{id}/admit-card
func (h *AdminHandler) AdmitCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		utils.ResponseBadRequest(w, "Invalid user ID", nil)
		return
	}

	doc, err := h.service.AdmitCard(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "download admit card")
		return
	}

	utils.ResponsePDF(w, doc.Filename, doc.Content)
}

// SendAdmitCard handles POST /admin/users/{id}/send-admit-card
func (h *AdminHandler) SendAdmitCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		utils.ResponseBadRequest(w, "Invalid user ID", nil)
		return
	}

	msg, err := h.service.SendAdmitCard(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "send admit card")
		return
	}

	utils.ResponseSuccess(w, msg.Message, msg)
}

// BulkSend handles POST /admin/users/bulk-send
func (h *AdminHandler) BulkSend(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeIDs(w, r)
	if !ok {
		return
	}

	result, err := h.service.BulkSendAdmitCards(r.Context(), req.UserIDs)
	if err != nil {
		handleServiceError(w, h.log, err, "bulk send admit cards")
		return
	}

	utils.ResponseSuccess(w, "Bulk send finished", result)
}

// DeleteUser handles DELETE /admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUserID(r)
	if !ok {
		utils.ResponseBadRequest(w, "Invalid user ID", nil)
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		handleServiceError(w, h.log, err, "delete user")
		return
	}

	utils.ResponseSuccess(w, "User deleted successfully", nil)
}

// BulkDelete handles POST /admin/users/bulk-delete
func (h *AdminHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeIDs(w, r)
	if !ok {
		return
	}

	result, err := h.service.BulkDeleteUsers(r.Context(), req.UserIDs)
	if err != nil {
		handleServiceError(w, h.log, err, "bulk delete users")
		return
	}

	utils.ResponseSuccess(w, "Bulk delete finished", result)
}

func (h *AdminHandler) decodeIDs(w http.ResponseWriter, r *http.Request) (*request.BulkUserIDsRequest, bool) {
	var req request.BulkUserIDsRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return nil, false
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return nil, false
	}

	return &req, true
}
