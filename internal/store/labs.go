package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
)

func (s *BaseStore) CreateLab(lab *models.Lab) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO labs (id, lab_code, lab_name, semester, department)
		VALUES (:id, :lab_code, :lab_name, :semester, :department)
	`, lab)
	if err != nil {
		return fmt.Errorf("failed to create lab: %w", err)
	}
	return nil
}

func (s *BaseStore) GetLab(id string) (*models.Lab, error) {
	var lab models.Lab
	query := s.Converter(`
		SELECT id, lab_code, lab_name, semester, department
		FROM labs
		WHERE id = ?
	`)

	err := s.DB.Get(&lab, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("lab %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}
	return &lab, nil
}

// ListLabs returns the catalog, narrowed to one semester when
// semester > 0.
func (s *BaseStore) ListLabs(semester int) ([]models.Lab, error) {
	query := `
		SELECT id, lab_code, lab_name, semester, department
		FROM labs
	`
	args := []interface{}{}
	if semester > 0 {
		query += ` WHERE semester = ?`
		args = append(args, semester)
	}
	query += ` ORDER BY semester, lab_code`

	var labs []models.Lab
	err := s.DB.Select(&labs, s.Converter(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list labs: %w", err)
	}
	return labs, nil
}

// CreateAssignment persists the assignment together with its generated
// date snapshot in one transaction. The snapshot is never rewritten:
// ordinal position defines week numbering for the assignment's
// lifetime.
func (s *BaseStore) CreateAssignment(assignment *models.LabAssignment) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`
		INSERT INTO lab_assignments (id, lab_id, faculty_id, section, batch, academic_year, semester_type, start_date, end_date, day_of_week)
		VALUES (:id, :lab_id, :faculty_id, :section, :batch, :academic_year, :semester_type, :start_date, :end_date, :day_of_week)
	`, assignment)
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}

	insertDate := s.Converter(`
		INSERT INTO assignment_dates (assignment_id, ordinal, session_date)
		VALUES (?, ?, ?)
	`)
	for i, d := range assignment.Dates {
		if _, err := tx.Exec(insertDate, assignment.ID, i+1, d); err != nil {
			return fmt.Errorf("failed to store schedule date %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment: %w", err)
	}
	return nil
}

func (s *BaseStore) GetAssignment(id string) (*models.LabAssignment, error) {
	var assignment models.LabAssignment
	query := s.Converter(`
		SELECT id, lab_id, faculty_id, section, batch, academic_year, semester_type, start_date, end_date, day_of_week
		FROM lab_assignments
		WHERE id = ?
	`)

	err := s.DB.Get(&assignment, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("assignment %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	dates, err := s.assignmentDates(id)
	if err != nil {
		return nil, err
	}
	assignment.Dates = dates

	return &assignment, nil
}

func (s *BaseStore) assignmentDates(assignmentID string) ([]time.Time, error) {
	var dates []time.Time
	query := s.Converter(`
		SELECT session_date
		FROM assignment_dates
		WHERE assignment_id = ?
		ORDER BY ordinal ASC
	`)
	err := s.DB.Select(&dates, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment dates: %w", err)
	}
	return dates, nil
}

const assignmentDetailQuery = `
	SELECT
		a.id,
		a.lab_id,
		a.faculty_id,
		a.section,
		a.batch,
		a.academic_year,
		a.semester_type,
		a.start_date,
		a.end_date,
		a.day_of_week,
		l.lab_code,
		l.lab_name,
		l.semester AS lab_semester,
		u.name AS faculty_name
	FROM lab_assignments a
	JOIN labs l ON l.id = a.lab_id
	JOIN users u ON u.id = a.faculty_id
`

func (s *BaseStore) ListAssignments() ([]models.AssignmentDetail, error) {
	var details []models.AssignmentDetail
	err := s.DB.Select(&details, assignmentDetailQuery+` ORDER BY a.academic_year, l.lab_code, a.section`)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	if err := s.attachDates(details); err != nil {
		return nil, err
	}
	return details, nil
}

func (s *BaseStore) ListAssignmentsByFaculty(facultyID string) ([]models.AssignmentDetail, error) {
	var details []models.AssignmentDetail
	query := s.Converter(assignmentDetailQuery + `
		WHERE a.faculty_id = ?
		ORDER BY a.academic_year, l.lab_code, a.section
	`)
	err := s.DB.Select(&details, query, facultyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list faculty assignments: %w", err)
	}

	if err := s.attachDates(details); err != nil {
		return nil, err
	}
	return details, nil
}

func (s *BaseStore) attachDates(details []models.AssignmentDetail) error {
	for i := range details {
		dates, err := s.assignmentDates(details[i].ID)
		if err != nil {
			return err
		}
		details[i].Dates = dates
	}
	return nil
}
