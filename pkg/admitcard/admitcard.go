// Package admitcard renders the A4 admit card handed to registered candidates.
package admitcard

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

// Fields are the registration values printed on the card.
type Fields struct {
	RollNo     string
	Name       string
	FatherName string
	Medium     string
	Course     string
	ExamDate   string
	ExamTime   string
	ExamCentre string
}

// Renderer produces a PDF document from registration fields.
type Renderer interface {
	Render(fields Fields) ([]byte, error)
}

// Layout holds the static text of the card.
type Layout struct {
	Header       string
	Title        string
	Subtitle     string
	Instructions []string
}

// DefaultLayout is the card used for the 2026 scholarship test.
var DefaultLayout = Layout{
	Header:   "SVPS    PW VIDYAPEETH",
	Title:    "PHYSICS WALLAH NATIONAL SCHOLARSHIP CUM ADMISSION TEST - 2026",
	Subtitle: "PWNSAT (Admit Card)",
	Instructions: []string{
		"1. This admit card must be brought to the examination centre.",
		"2. Arrive at the examination centre 30 minutes before the examination starts.",
		"3. Carry a valid identity proof (Aadhar/School ID) along with this admit card.",
		"4. Write your roll number on all answer sheets.",
		"5. Follow all instructions given by the invigilator.",
		"6. Any malpractice will result in disqualification.",
		"7. Mobile phones and electronic devices are strictly prohibited inside the exam hall.",
	},
}

const (
	marginSide = 8.0
	marginTop  = 5.0
	labelWidth = 50.0
	valueWidth = 120.0
	rowHeight  = 10.0
)

type rgb struct{ r, g, b int }

var (
	red      = rgb{0xC4, 0x1E, 0x3A}
	darkText = rgb{0x33, 0x33, 0x33}
	black    = rgb{0, 0, 0}
)

// PDF renders cards with fpdf core fonts.
type PDF struct {
	layout Layout
	now    func() time.Time
}

func New(layout Layout, now func() time.Time) *PDF {
	return &PDF{layout: layout, now: now}
}

func (p *PDF) Render(f Fields) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginSide, marginTop, marginSide)
	pdf.SetAutoPageBreak(true, marginSide)
	pdf.SetTitle(fmt.Sprintf("Admit Card %s", f.RollNo), true)
	pdf.SetCreationDate(p.now())
	pdf.AddPage()

	// core fonts are cp1252
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 2*marginSide

	setColor := func(c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }

	// header
	setColor(red)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW, 12, tr(p.layout.Header), "", 1, "C", false, 0, "")

	setColor(darkText)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW, 8, tr(p.layout.Title), "", 1, "C", false, 0, "")

	setColor(red)
	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(contentW, 14, tr(p.layout.Subtitle), "", 1, "C", false, 0, "")

	// photo box
	const boxW, boxH = 40.0, 30.0
	boxX := marginSide + (contentW-boxW)/2
	boxY := pdf.GetY() + 2
	pdf.SetDrawColor(black.r, black.g, black.b)
	pdf.SetLineWidth(0.3)
	pdf.Rect(boxX, boxY, boxW, boxH, "D")

	setColor(darkText)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(boxX, boxY+5)
	pdf.MultiCell(boxW, 4, "Affix your\nrecent passport\nsize colour\nphotograph\nhere.", "", "C", false)
	pdf.SetXY(marginSide, boxY+boxH+5)

	// field rows with underlined values
	rows := []struct{ label, value string }{
		{"Roll No.", f.RollNo},
		{"Name of the Student", f.Name},
		{"Father's Name", f.FatherName},
		{"Medium", f.Medium},
		{"Course Opted for", f.Course},
		{"Date of Exam", f.ExamDate},
		{"Exam Time", f.ExamTime},
		{"Exam Centre", f.ExamCentre},
	}
	for _, row := range rows {
		if row.label == "Exam Time" && row.value == "" {
			continue
		}
		setColor(black)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(labelWidth, rowHeight, tr(row.label), "", 0, "L", false, 0, "")

		setColor(darkText)
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(valueWidth, rowHeight, tr(row.value), "B", 1, "L", false, 0, "")
	}

	pdf.Ln(6)

	// instructions
	setColor(red)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 7, "INSTRUCTIONS FOR CANDIDATES", "", 1, "L", false, 0, "")

	setColor(darkText)
	pdf.SetFont("Helvetica", "", 9)
	for _, line := range p.layout.Instructions {
		pdf.SetX(marginSide + 3)
		pdf.MultiCell(contentW-3, 5, tr(line), "", "L", false)
	}

	pdf.Ln(14)

	// signatures
	half := contentW / 2
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(half, 6, "_______________________", "", 0, "C", false, 0, "")
	pdf.CellFormat(half, 6, "_______________________", "", 1, "C", false, 0, "")
	pdf.CellFormat(half, 6, "Student's Signature", "", 0, "C", false, 0, "")
	pdf.CellFormat(half, 6, "Authorized Signature", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render admit card %s: %w", f.RollNo, err)
	}

	return buf.Bytes(), nil
}
