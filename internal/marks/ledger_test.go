package marks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetAssignment(id string) (*models.LabAssignment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LabAssignment), args.Error(1)
}

func (m *MockStore) UpsertWeekEntry(studentID, assignmentID string, entry *models.WeekEntry) error {
	args := m.Called(studentID, assignmentID, entry)
	return args.Error(0)
}

func (m *MockStore) FetchHistory(assignmentID string) ([]models.HistoryRow, error) {
	args := m.Called(assignmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryRow), args.Error(1)
}

func (m *MockStore) FetchStudentSessions(studentID string) ([]models.StudentSessionRow, error) {
	args := m.Called(studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StudentSessionRow), args.Error(1)
}

func intp(v int) *int { return &v }

func TestComputeTotal(t *testing.T) {
	testCases := []struct {
		name     string
		input    models.MarkInput
		expected int
	}{
		{
			name:     "all five components sum up",
			input:    models.MarkInput{Pr: intp(5), PE: intp(4), P: intp(8), R: intp(5), C: intp(3)},
			expected: 25,
		},
		{
			name:     "explicit total overrides the sum",
			input:    models.MarkInput{Pr: intp(5), PE: intp(4), P: intp(8), R: intp(5), C: intp(3), Total: intp(20)},
			expected: 20,
		},
		{
			name:     "missing components count as zero",
			input:    models.MarkInput{Pr: intp(5), P: intp(7)},
			expected: 12,
		},
		{
			name:     "legacy scalar maps onto total",
			input:    models.MarkInput{Marks: intp(18)},
			expected: 18,
		},
		{
			name:     "components win over legacy scalar",
			input:    models.MarkInput{Pr: intp(2), Marks: intp(18)},
			expected: 2,
		},
		{
			name:     "zero component still counts as supplied",
			input:    models.MarkInput{Pr: intp(0)},
			expected: 0,
		},
		{
			name:     "nothing supplied",
			input:    models.MarkInput{},
			expected: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ComputeTotal(tc.input))
		})
	}
}

func TestEntryFromScalar(t *testing.T) {
	entry := EntryFromScalar(time.Date(2025, 2, 10, 14, 30, 0, 0, time.UTC), 22, "f1")
	assert.Equal(t, 22, entry.Total)
	assert.Nil(t, entry.Pr)
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), entry.Date)
}

func TestSubmit(t *testing.T) {
	assignment := &models.LabAssignment{ID: "a1", LabID: "lab1"}
	sessionDate := time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)
	midnight := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	t.Run("saves each student and normalizes the date", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetAssignment", "a1").Return(assignment, nil).Once()
		store.On("UpsertWeekEntry", "s1", "a1", mock.MatchedBy(func(e *models.WeekEntry) bool {
			return e.Date.Equal(midnight) && e.Total == 25 && e.EnteredBy == "f1"
		})).Return(nil).Once()
		store.On("UpsertWeekEntry", "s2", "a1", mock.MatchedBy(func(e *models.WeekEntry) bool {
			return e.Date.Equal(midnight) && e.Total == 18
		})).Return(nil).Once()

		report, err := NewLedger(store).Submit("a1", "f1", sessionDate, []models.MarkInput{
			{StudentID: "s1", Pr: intp(5), PE: intp(4), P: intp(8), R: intp(5), C: intp(3)},
			{StudentID: "s2", Marks: intp(18)},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, report.Saved)
		assert.Equal(t, 0, report.Failed)
		store.AssertExpectations(t)
	})

	t.Run("one bad row does not abort the batch", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetAssignment", "a1").Return(assignment, nil).Once()
		store.On("UpsertWeekEntry", "s2", "a1", mock.Anything).Return(nil).Once()

		report, err := NewLedger(store).Submit("a1", "f1", sessionDate, []models.MarkInput{
			{StudentID: "s1", Pr: intp(9)}, // out of range, never reaches the store
			{StudentID: "s2", Marks: intp(10)},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, report.Saved)
		assert.Equal(t, 1, report.Failed)
		require.Len(t, report.Results, 2)
		assert.NotEmpty(t, report.Results[0].Error)
		assert.Empty(t, report.Results[1].Error)
		store.AssertExpectations(t)
	})

	t.Run("unknown assignment writes nothing", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetAssignment", "ghost").Return(nil, models.ErrNotFound).Once()

		_, err := NewLedger(store).Submit("ghost", "f1", sessionDate, []models.MarkInput{
			{StudentID: "s1", Marks: intp(10)},
		})
		assert.ErrorIs(t, err, models.ErrNotFound)
		store.AssertNotCalled(t, "UpsertWeekEntry", mock.Anything, mock.Anything, mock.Anything)
	})
}
