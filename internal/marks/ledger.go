// internal/marks/ledger.go
package marks

import (
	"fmt"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
	"github.com/shrimpsizemoose/kardemumma/internal/schedule"
)

// Store is the slice of the mark store the ledger needs.
type Store interface {
	GetAssignment(id string) (*models.LabAssignment, error)
	UpsertWeekEntry(studentID, assignmentID string, entry *models.WeekEntry) error
	FetchHistory(assignmentID string) ([]models.HistoryRow, error)
	FetchStudentSessions(studentID string) ([]models.StudentSessionRow, error)
}

type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

type SubmitResult struct {
	StudentID string `json:"student_id"`
	Error     string `json:"error,omitempty"`
}

// SubmitReport carries per-student outcomes: one bad row does not
// abort the rest of the batch.
type SubmitReport struct {
	Saved   int            `json:"saved"`
	Failed  int            `json:"failed"`
	Results []SubmitResult `json:"results"`
}

// ComputeTotal resolves the effective total for one submission row.
// An explicit total always wins. Otherwise any supplied rubric
// component makes the total the sum of supplied components, missing
// ones counting as zero. A bare legacy scalar maps straight onto the
// total.
func ComputeTotal(in models.MarkInput) int {
	if in.Total != nil {
		return *in.Total
	}

	components := []*int{in.Pr, in.PE, in.P, in.R, in.C}
	supplied := false
	sum := 0
	for _, c := range components {
		if c != nil {
			supplied = true
			sum += *c
		}
	}
	if supplied {
		return sum
	}

	if in.Marks != nil {
		return *in.Marks
	}
	return 0
}

// EntryFromScalar translates a legacy single-scalar mark into the
// current rubric shape: the scalar becomes the total and no component
// is recorded.
func EntryFromScalar(date time.Time, marks int, enteredBy string) *models.WeekEntry {
	return &models.WeekEntry{
		Date:      schedule.Normalize(date),
		Total:     marks,
		EnteredBy: enteredBy,
	}
}

func entryFromInput(date time.Time, enteredBy string, in models.MarkInput) *models.WeekEntry {
	return &models.WeekEntry{
		Date:      date,
		Pr:        in.Pr,
		PE:        in.PE,
		P:         in.P,
		R:         in.R,
		C:         in.C,
		Total:     ComputeTotal(in),
		EnteredBy: enteredBy,
	}
}

// Submit upserts one session's marks for a batch of students. The
// session is identified by its calendar day: submitting the same
// date again overwrites the existing week entries instead of
// appending new ones.
func (l *Ledger) Submit(assignmentID, enteredBy string, date time.Time, inputs []models.MarkInput) (*SubmitReport, error) {
	if _, err := l.store.GetAssignment(assignmentID); err != nil {
		return nil, fmt.Errorf("failed to resolve assignment: %w", err)
	}

	day := schedule.Normalize(date)
	report := &SubmitReport{}

	for _, in := range inputs {
		result := SubmitResult{StudentID: in.StudentID}

		if err := in.Validate(); err != nil {
			result.Error = fmt.Sprintf("%v: %v", models.ErrValidation, err)
			report.Failed++
			report.Results = append(report.Results, result)
			continue
		}

		entry := entryFromInput(day, enteredBy, in)
		if err := l.store.UpsertWeekEntry(in.StudentID, assignmentID, entry); err != nil {
			logger.Error.Printf("Failed to save marks for student %s on %s: %v", in.StudentID, schedule.DayKey(day), err)
			result.Error = "failed to save marks"
			report.Failed++
			report.Results = append(report.Results, result)
			continue
		}

		report.Saved++
		report.Results = append(report.Results, result)
	}

	return report, nil
}
