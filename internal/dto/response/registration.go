package response

import (
	"time"

	"exam-registration/internal/data/entity"
)

type RegistrationResponse struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	RollNo        string    `json:"roll_no"`
	Name          string    `json:"name"`
	FatherName    string    `json:"father_name"`
	Medium        string    `json:"medium"`
	Course        string    `json:"course"`
	ExamCentre    string    `json:"exam_centre"`
	ExamDate      string    `json:"exam_date"`
	ExamTime      string    `json:"exam_time"`
	AdmitCardSent bool      `json:"admit_card_sent"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func RegistrationToResponse(reg *entity.Registration) RegistrationResponse {
	return RegistrationResponse{
		ID:            reg.ID,
		UserID:        reg.UserID,
		RollNo:        reg.RollNo,
		Name:          reg.Name,
		FatherName:    reg.FatherName,
		Medium:        reg.Medium,
		Course:        reg.Course,
		ExamCentre:    reg.ExamCentre,
		ExamDate:      reg.ExamDate,
		ExamTime:      reg.ExamTime,
		AdmitCardSent: reg.AdmitCardSent,
		CreatedAt:     reg.CreatedAt,
		UpdatedAt:     reg.UpdatedAt,
	}
}

// Document is a rendered file ready to stream.
type Document struct {
	Filename string
	Content  []byte
}
