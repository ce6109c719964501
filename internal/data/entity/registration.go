package entity

type Registration struct {
	Base
	UserID        int64  `db:"user_id"`
	RollNo        string `db:"roll_no"`
	Name          string `db:"name"`
	FatherName    string `db:"father_name"`
	Medium        string `db:"medium"`
	Course        string `db:"course"`
	ExamCentre    string `db:"exam_centre"`
	ExamDate      string `db:"exam_date"`
	ExamTime      string `db:"exam_time"`
	AdmitCardSent bool   `db:"admit_card_sent"`
}
