package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
)

// UpsertWeekEntry writes one session's marks for one student. The
// ledger row for (student, assignment) is created on first contact;
// the week row is keyed by session date, so resubmitting the same
// date overwrites in place and never duplicates. Both conflict
// targets are unique constraints, which keeps concurrent submissions
// for the same key serialized at the database.
func (s *BaseStore) UpsertWeekEntry(studentID, assignmentID string, entry *models.WeekEntry) error {
	tx, err := s.DB.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(s.Converter(`
		INSERT INTO mark_ledger (id, student_id, assignment_id, entered_by)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (student_id, assignment_id) DO NOTHING
	`), uuid.New().String(), studentID, assignmentID, entry.EnteredBy)
	if err != nil {
		return fmt.Errorf("failed to ensure ledger entry: %w", err)
	}

	var ledgerID string
	err = tx.Get(&ledgerID, s.Converter(`
		SELECT id FROM mark_ledger
		WHERE student_id = ? AND assignment_id = ?
	`), studentID, assignmentID)
	if err != nil {
		return fmt.Errorf("failed to locate ledger entry: %w", err)
	}

	entry.LedgerID = ledgerID
	entry.UpdatedAt = s.clock()

	_, err = tx.NamedExec(`
		INSERT INTO week_entries (ledger_id, session_date, pr, pe, p_score, r_score, c_score, total, entered_by, updated_at)
		VALUES (:ledger_id, :session_date, :pr, :pe, :p_score, :r_score, :c_score, :total, :entered_by, :updated_at)
		ON CONFLICT (ledger_id, session_date) DO UPDATE SET
		pr = excluded.pr,
		pe = excluded.pe,
		p_score = excluded.p_score,
		r_score = excluded.r_score,
		c_score = excluded.c_score,
		total = excluded.total,
		entered_by = excluded.entered_by,
		updated_at = excluded.updated_at
	`, entry)
	if err != nil {
		return fmt.Errorf("failed to upsert week entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit week entry: %w", err)
	}
	return nil
}

func (s *BaseStore) FetchHistory(assignmentID string) ([]models.HistoryRow, error) {
	var rows []models.HistoryRow
	query := s.Converter(`
		SELECT
			m.student_id,
			u.name AS student_name,
			u.username,
			w.session_date,
			w.pr,
			w.pe,
			w.p_score,
			w.r_score,
			w.c_score,
			w.total
		FROM week_entries w
		JOIN mark_ledger m ON m.id = w.ledger_id
		JOIN users u ON u.id = m.student_id
		WHERE m.assignment_id = ?
		ORDER BY w.session_date ASC, u.username ASC
	`)

	err := s.DB.Select(&rows, query, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mark history: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) FetchStudentSessions(studentID string) ([]models.StudentSessionRow, error) {
	var rows []models.StudentSessionRow
	query := s.Converter(`
		SELECT
			l.id AS lab_id,
			l.lab_name,
			fu.name AS faculty_name,
			a.day_of_week,
			w.session_date,
			w.total,
			COALESCE(eu.name, '') AS entered_by_name,
			(SELECT COUNT(*) FROM assignment_dates d WHERE d.assignment_id = a.id) AS weeks_total
		FROM week_entries w
		JOIN mark_ledger m ON m.id = w.ledger_id
		JOIN lab_assignments a ON a.id = m.assignment_id
		JOIN labs l ON l.id = a.lab_id
		JOIN users fu ON fu.id = a.faculty_id
		LEFT JOIN users eu ON eu.id = w.entered_by
		WHERE m.student_id = ?
		ORDER BY w.session_date ASC
	`)

	err := s.DB.Select(&rows, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student sessions: %w", err)
	}
	return rows, nil
}
