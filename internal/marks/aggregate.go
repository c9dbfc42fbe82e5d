package marks

import (
	"fmt"
	"sort"
	"time"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
)

type SessionView struct {
	Date      time.Time `json:"date"`
	Marks     int       `json:"marks"`
	EnteredBy string    `json:"entered_by"`
}

// LabSummary groups a student's sessions by lab. Sessions from
// different assignments of the same lab merge into one chronological
// list.
type LabSummary struct {
	LabID       string        `json:"lab_id"`
	LabName     string        `json:"lab_name"`
	FacultyName string        `json:"faculty_name"`
	DayOfWeek   string        `json:"day_of_week"`
	WeeksTotal  int           `json:"weeks_total"`
	Sessions    []SessionView `json:"sessions"`
}

// Completion is the share of scheduled weeks with marks entered.
func (s *LabSummary) Completion() float64 {
	if s.WeeksTotal == 0 {
		return 0
	}
	return float64(len(s.Sessions)) / float64(s.WeeksTotal)
}

// History returns the assignment's mark rows flattened to one row per
// (student, session date), ascending by date. The legacy scalar field
// mirrors the total so old clients keep working.
func (l *Ledger) History(assignmentID string) ([]models.HistoryRow, error) {
	if _, err := l.store.GetAssignment(assignmentID); err != nil {
		return nil, fmt.Errorf("failed to resolve assignment: %w", err)
	}

	rows, err := l.store.FetchHistory(assignmentID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Username < rows[j].Username
	})

	for i := range rows {
		rows[i].Marks = rows[i].Total
	}
	return rows, nil
}

// StudentView groups all of a student's week entries by lab, each
// group's sessions merged and re-sorted chronologically regardless of
// which assignment produced them.
func (l *Ledger) StudentView(studentID string) ([]LabSummary, error) {
	rows, err := l.store.FetchStudentSessions(studentID)
	if err != nil {
		return nil, err
	}

	byLab := make(map[string]*LabSummary)
	var order []string
	for _, row := range rows {
		summary, ok := byLab[row.LabID]
		if !ok {
			summary = &LabSummary{
				LabID:       row.LabID,
				LabName:     row.LabName,
				FacultyName: row.FacultyName,
				DayOfWeek:   row.DayOfWeek,
			}
			byLab[row.LabID] = summary
			order = append(order, row.LabID)
		}
		if row.WeeksTotal > summary.WeeksTotal {
			summary.WeeksTotal = row.WeeksTotal
		}
		summary.Sessions = append(summary.Sessions, SessionView{
			Date:      row.Date,
			Marks:     row.Total,
			EnteredBy: row.EnteredBy,
		})
	}

	summaries := make([]LabSummary, 0, len(order))
	for _, labID := range order {
		summary := byLab[labID]
		sort.SliceStable(summary.Sessions, func(i, j int) bool {
			return summary.Sessions[i].Date.Before(summary.Sessions[j].Date)
		})
		summaries = append(summaries, *summary)
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LabName < summaries[j].LabName
	})
	return summaries, nil
}
