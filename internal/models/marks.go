package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// WeekEntry is one lab session's marks for one student. Rubric
// components are nullable: rows written before the rubric existed
// carry only Total. Within a ledger the session date is unique.
type WeekEntry struct {
	LedgerID  string    `db:"ledger_id" json:"-"`
	Date      time.Time `db:"session_date" json:"date"`
	Pr        *int      `db:"pr" json:"pr,omitempty"`
	PE        *int      `db:"pe" json:"pe,omitempty"`
	P         *int      `db:"p_score" json:"p,omitempty"`
	R         *int      `db:"r_score" json:"r,omitempty"`
	C         *int      `db:"c_score" json:"c,omitempty"`
	Total     int       `db:"total" json:"total"`
	EnteredBy string    `db:"entered_by" json:"entered_by"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MarkInput is one student's row in a faculty mark submission.
// Marks is the legacy single-scalar field; clients still send it and
// it maps onto Total when no rubric component is present.
type MarkInput struct {
	StudentID string `json:"student_id" validate:"required"`
	Pr        *int   `json:"pr" validate:"omitempty,min=0,max=5"`
	PE        *int   `json:"pe" validate:"omitempty,min=0,max=5"`
	P         *int   `json:"p" validate:"omitempty,min=0,max=10"`
	R         *int   `json:"r" validate:"omitempty,min=0,max=5"`
	C         *int   `json:"c" validate:"omitempty,min=0,max=5"`
	Total     *int   `json:"total" validate:"omitempty,min=0,max=30"`
	Marks     *int   `json:"marks" validate:"omitempty,min=0,max=30"`
}

func (m *MarkInput) Validate() error {
	validate := validator.New()
	return validate.Struct(m)
}

// HistoryRow is one flattened (student, session date) mark row for the
// faculty history view.
type HistoryRow struct {
	StudentID   string    `db:"student_id" json:"student_id"`
	StudentName string    `db:"student_name" json:"student_name"`
	Username    string    `db:"username" json:"username"`
	Date        time.Time `db:"session_date" json:"date"`
	Pr          *int      `db:"pr" json:"pr,omitempty"`
	PE          *int      `db:"pe" json:"pe,omitempty"`
	P           *int      `db:"p_score" json:"p,omitempty"`
	R           *int      `db:"r_score" json:"r,omitempty"`
	C           *int      `db:"c_score" json:"c,omitempty"`
	Total       int       `db:"total" json:"total"`
	Marks       int       `db:"-" json:"marks"`
}

// StudentSessionRow is one of a student's own sessions with its lab
// and assignment context resolved, feeding the grouped-by-lab view.
type StudentSessionRow struct {
	LabID       string    `db:"lab_id" json:"lab_id"`
	LabName     string    `db:"lab_name" json:"lab_name"`
	FacultyName string    `db:"faculty_name" json:"faculty_name"`
	DayOfWeek   string    `db:"day_of_week" json:"day_of_week"`
	Date        time.Time `db:"session_date" json:"date"`
	Total       int       `db:"total" json:"total"`
	EnteredBy   string    `db:"entered_by_name" json:"entered_by"`
	WeeksTotal  int       `db:"weeks_total" json:"-"`
}
