package marks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestHistory(t *testing.T) {
	store := new(MockStore)
	store.On("GetAssignment", "a1").Return(&models.LabAssignment{ID: "a1"}, nil).Once()
	// Rows come back in insertion order; History must re-sort by date.
	store.On("FetchHistory", "a1").Return([]models.HistoryRow{
		{StudentID: "s1", Username: "101", Date: day(2025, 2, 10), Total: 20},
		{StudentID: "s1", Username: "101", Date: day(2025, 1, 20), Total: 15},
		{StudentID: "s1", Username: "101", Date: day(2025, 1, 27), Total: 18},
	}, nil).Once()

	rows, err := NewLedger(store).History("a1")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, day(2025, 1, 20), rows[0].Date)
	assert.Equal(t, day(2025, 1, 27), rows[1].Date)
	assert.Equal(t, day(2025, 2, 10), rows[2].Date)

	for _, row := range rows {
		assert.Equal(t, row.Total, row.Marks, "scalar alias must mirror total")
	}
	store.AssertExpectations(t)
}

func TestHistory_UnknownAssignment(t *testing.T) {
	store := new(MockStore)
	store.On("GetAssignment", "ghost").Return(nil, models.ErrNotFound).Once()

	_, err := NewLedger(store).History("ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestStudentView(t *testing.T) {
	store := new(MockStore)
	store.On("FetchStudentSessions", "s1").Return([]models.StudentSessionRow{
		{LabID: "lab2", LabName: "OS Lab", FacultyName: "Dr. B", DayOfWeek: "Friday", Date: day(2025, 1, 10), Total: 12, EnteredBy: "Dr. B", WeeksTotal: 10},
		{LabID: "lab1", LabName: "DBMS Lab", FacultyName: "Dr. A", DayOfWeek: "Monday", Date: day(2025, 1, 20), Total: 25, EnteredBy: "Dr. A", WeeksTotal: 12},
		{LabID: "lab1", LabName: "DBMS Lab", FacultyName: "Dr. A", DayOfWeek: "Monday", Date: day(2025, 1, 6), Total: 22, EnteredBy: "Dr. A", WeeksTotal: 12},
	}, nil).Once()

	summaries, err := NewLedger(store).StudentView("s1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	// Sorted by lab name, sessions chronological within each lab.
	assert.Equal(t, "DBMS Lab", summaries[0].LabName)
	require.Len(t, summaries[0].Sessions, 2)
	assert.Equal(t, day(2025, 1, 6), summaries[0].Sessions[0].Date)
	assert.Equal(t, day(2025, 1, 20), summaries[0].Sessions[1].Date)
	assert.Equal(t, 22, summaries[0].Sessions[0].Marks)
	assert.Equal(t, 12, summaries[0].WeeksTotal)
	assert.InDelta(t, 2.0/12.0, summaries[0].Completion(), 1e-9)

	assert.Equal(t, "OS Lab", summaries[1].LabName)
	require.Len(t, summaries[1].Sessions, 1)
	assert.Equal(t, "Dr. B", summaries[1].Sessions[0].EnteredBy)
	store.AssertExpectations(t)
}

func TestStudentView_Empty(t *testing.T) {
	store := new(MockStore)
	store.On("FetchStudentSessions", "s9").Return([]models.StudentSessionRow{}, nil).Once()

	summaries, err := NewLedger(store).StudentView("s9")
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
