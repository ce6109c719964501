package response

import (
	"time"

	"exam-registration/internal/data/entity"
)

type RegistrationDetail struct {
	RollNo        string `json:"roll_no"`
	Name          string `json:"name"`
	FatherName    string `json:"father_name"`
	Medium        string `json:"medium"`
	Course        string `json:"course"`
	ExamCentre    string `json:"exam_centre"`
	ExamDate      string `json:"exam_date"`
	ExamTime      string `json:"exam_time"`
	AdmitCardSent bool   `json:"admit_card_sent"`
}

type AdminUserResponse struct {
	ID           int64               `json:"id"`
	Email        string              `json:"email"`
	IsVerified   bool                `json:"is_verified"`
	CreatedAt    time.Time           `json:"created_at"`
	Registration *RegistrationDetail `json:"registration"`
}

func AdminUserToResponse(row *entity.UserWithRegistration) AdminUserResponse {
	resp := AdminUserResponse{
		ID:         row.ID,
		Email:      row.Email,
		IsVerified: row.IsVerified,
		CreatedAt:  row.CreatedAt,
	}

	if reg := row.Registration; reg != nil {
		resp.Registration = &RegistrationDetail{
			RollNo:        reg.RollNo,
			Name:          reg.Name,
			FatherName:    reg.FatherName,
			Medium:        reg.Medium,
			Course:        reg.Course,
			ExamCentre:    reg.ExamCentre,
			ExamDate:      reg.ExamDate,
			ExamTime:      reg.ExamTime,
			AdmitCardSent: reg.AdmitCardSent,
		}
	}

	return resp
}

type MessageResponse struct {
	Message string `json:"message"`
}

type BulkSendResponse struct {
	Sent    []int64 `json:"sent"`
	Skipped []int64 `json:"skipped"`
	Failed  []int64 `json:"failed"`
}

type BulkDeleteResponse struct {
	Deleted  []int64 `json:"deleted"`
	NotFound []int64 `json:"not_found"`
}
