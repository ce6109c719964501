package request

import "strings"

type RegistrationRequest struct {
	Name       string `json:"name" validate:"required,max=200,personname"`
	FatherName string `json:"father_name" validate:"required,max=200,personname"`
	Medium     string `json:"medium" validate:"required,max=100,medium"`
	Course     string `json:"course" validate:"required,max=100,course"`
	ExamCentre string `json:"exam_centre" validate:"required,max=200"`
	ExamDate   string `json:"exam_date" validate:"required,max=100"`
	ExamTime   string `json:"exam_time" validate:"required,max=200"`
}

// Normalize trims every field before validation.
func (r *RegistrationRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.FatherName = strings.TrimSpace(r.FatherName)
	r.Medium = strings.TrimSpace(r.Medium)
	r.Course = strings.TrimSpace(r.Course)
	r.ExamCentre = strings.TrimSpace(r.ExamCentre)
	r.ExamDate = strings.TrimSpace(r.ExamDate)
	r.ExamTime = strings.TrimSpace(r.ExamTime)
}
