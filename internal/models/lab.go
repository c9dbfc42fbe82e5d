package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Lab struct {
	ID         string `db:"id" json:"id"`
	LabCode    string `db:"lab_code" json:"lab_code" validate:"required,max=12"`
	LabName    string `db:"lab_name" json:"lab_name" validate:"required"`
	Semester   int    `db:"semester" json:"semester" validate:"required,min=1,max=8"`
	Department string `db:"department" json:"department"`
}

// LabAssignment binds a lab to a faculty member for one section (and
// optionally one batch) over a date range. GeneratedDates is the
// materialized weekday schedule; it is written once at creation and
// defines week numbering for the lifetime of the assignment.
type LabAssignment struct {
	ID           string      `db:"id" json:"id"`
	LabID        string      `db:"lab_id" json:"lab_id" validate:"required"`
	FacultyID    string      `db:"faculty_id" json:"faculty_id" validate:"required"`
	Section      string      `db:"section" json:"section" validate:"required"`
	Batch        string      `db:"batch" json:"batch" validate:"omitempty,oneof=Batch-1 Batch-2 All"`
	AcademicYear string      `db:"academic_year" json:"academic_year" validate:"required"`
	SemesterType string      `db:"semester_type" json:"semester_type" validate:"required,oneof=Odd Even"`
	StartDate    time.Time   `db:"start_date" json:"start_date"`
	EndDate      time.Time   `db:"end_date" json:"end_date"`
	DayOfWeek    string      `db:"day_of_week" json:"day_of_week" validate:"required"`
	Dates        []time.Time `db:"-" json:"generated_dates"`
}

// AssignmentDetail is the denormalized read shape: an assignment with
// its lab and faculty resolved at query time.
type AssignmentDetail struct {
	LabAssignment
	LabCode     string `db:"lab_code" json:"lab_code"`
	LabName     string `db:"lab_name" json:"lab_name"`
	LabSemester int    `db:"lab_semester" json:"lab_semester"`
	FacultyName string `db:"faculty_name" json:"faculty_name"`
}

func (l *Lab) Validate() error {
	validate := validator.New()
	return validate.Struct(l)
}

func (a *LabAssignment) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}
