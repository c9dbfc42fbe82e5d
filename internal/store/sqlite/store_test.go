// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
)

// setupTestDB creates an in-memory SQLite database with the portal schema
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

type testData struct {
	store      *SQLiteStore
	faculty    *models.User
	lab        *models.Lab
	assignment *models.LabAssignment
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedStudent(t *testing.T, s *SQLiteStore, id, username, section, batch string, semester int) *models.User {
	t.Helper()
	student := &models.User{
		ID:           id,
		Name:         "Student " + username,
		Username:     username,
		PasswordHash: "x",
		Role:         models.RoleStudent,
		Department:   "CSE",
		Semester:     semester,
		Section:      section,
		Batch:        batch,
	}
	require.NoError(t, s.CreateUser(student))
	return student
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)

	faculty := &models.User{
		ID:           "f1",
		Name:         "Dr. A",
		Username:     "dr.a",
		PasswordHash: "x",
		Role:         models.RoleFaculty,
		Department:   "CSE",
	}
	require.NoError(t, s.CreateUser(faculty))

	lab := &models.Lab{
		ID:         "lab1",
		LabCode:    "CS301L",
		LabName:    "DBMS Lab",
		Semester:   3,
		Department: "CSE",
	}
	require.NoError(t, s.CreateLab(lab))

	assignment := &models.LabAssignment{
		ID:           "a1",
		LabID:        lab.ID,
		FacultyID:    faculty.ID,
		Section:      "A",
		Batch:        models.BatchAll,
		AcademicYear: "2025-26",
		SemesterType: "Odd",
		StartDate:    day(2025, 1, 1),
		EndDate:      day(2025, 1, 31),
		DayOfWeek:    "Monday",
		Dates: []time.Time{
			day(2025, 1, 6),
			day(2025, 1, 13),
			day(2025, 1, 20),
			day(2025, 1, 27),
		},
	}
	require.NoError(t, s.CreateAssignment(assignment))

	return &testData{
		store:      s,
		faculty:    faculty,
		lab:        lab,
		assignment: assignment,
	}, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	dup := &models.User{
		ID:           "f2",
		Name:         "Impostor",
		Username:     "dr.a",
		PasswordHash: "x",
		Role:         models.RoleFaculty,
	}
	err := td.store.CreateUser(dup)
	assert.ErrorIs(t, err, models.ErrConflict)

	// original record untouched
	got, err := td.store.GetUserByUsername("dr.a")
	require.NoError(t, err)
	assert.Equal(t, "f1", got.ID)
}

func TestDeleteUser(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	seedStudent(t, td.store, "s1", "101", "A", "", 3)

	t.Run("delete existing", func(t *testing.T) {
		require.NoError(t, td.store.DeleteUser("s1"))
		_, err := td.store.GetUser("s1")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("delete missing", func(t *testing.T) {
		err := td.store.DeleteUser("ghost")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestAssignmentRoundtrip(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	got, err := td.store.GetAssignment("a1")
	require.NoError(t, err)
	require.Len(t, got.Dates, 4)

	// snapshot order defines week numbering
	for i, d := range got.Dates {
		assert.True(t, d.Equal(td.assignment.Dates[i]), "week %d mismatch: %s", i+1, d)
	}

	t.Run("missing assignment", func(t *testing.T) {
		_, err := td.store.GetAssignment("ghost")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("detail view resolves lab and faculty", func(t *testing.T) {
		details, err := td.store.ListAssignments()
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.Equal(t, "DBMS Lab", details[0].LabName)
		assert.Equal(t, "Dr. A", details[0].FacultyName)
		assert.Len(t, details[0].Dates, 4)
	})

	t.Run("by faculty", func(t *testing.T) {
		mine, err := td.store.ListAssignmentsByFaculty("f1")
		require.NoError(t, err)
		assert.Len(t, mine, 1)

		none, err := td.store.ListAssignmentsByFaculty("f2")
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestListStudents_BatchFilter(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	seedStudent(t, td.store, "s1", "103", "A", "Batch-1", 3)
	seedStudent(t, td.store, "s2", "101", "A", "Batch-2", 3)
	seedStudent(t, td.store, "s3", "102", "A", "", 3)
	seedStudent(t, td.store, "s4", "104", "B", "Batch-1", 3)

	t.Run("no filter returns whole section sorted by username", func(t *testing.T) {
		students, err := td.store.ListStudents(3, "A", "")
		require.NoError(t, err)
		require.Len(t, students, 3)
		assert.Equal(t, "101", students[0].Username)
		assert.Equal(t, "102", students[1].Username)
		assert.Equal(t, "103", students[2].Username)
	})

	t.Run("batch filter keeps unassigned students", func(t *testing.T) {
		students, err := td.store.ListStudents(3, "A", "Batch-2")
		require.NoError(t, err)
		require.Len(t, students, 2)
		assert.Equal(t, "101", students[0].Username)
		assert.Equal(t, "102", students[1].Username)
	})

	t.Run("All is not a filter", func(t *testing.T) {
		students, err := td.store.ListStudents(3, "A", models.BatchAll)
		require.NoError(t, err)
		assert.Len(t, students, 3)
	})
}

func TestUpsertWeekEntry_Idempotent(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	seedStudent(t, td.store, "s1", "101", "A", "", 3)

	pr, pe, p, rr, c := 5, 4, 8, 5, 3
	entry := &models.WeekEntry{
		Date:      day(2025, 1, 6),
		Pr:        &pr,
		PE:        &pe,
		P:         &p,
		R:         &rr,
		C:         &c,
		Total:     25,
		EnteredBy: "f1",
	}

	require.NoError(t, td.store.UpsertWeekEntry("s1", "a1", entry))
	require.NoError(t, td.store.UpsertWeekEntry("s1", "a1", entry))

	var ledgers int
	require.NoError(t, td.store.DB.Get(&ledgers, `SELECT COUNT(*) FROM mark_ledger`))
	assert.Equal(t, 1, ledgers, "one ledger row per (student, assignment)")

	var weeks int
	require.NoError(t, td.store.DB.Get(&weeks, `SELECT COUNT(*) FROM week_entries`))
	assert.Equal(t, 1, weeks, "resubmission must not duplicate the week")
}

func TestUpsertWeekEntry_OverwritesInPlace(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	seedStudent(t, td.store, "s1", "101", "A", "", 3)

	first := &models.WeekEntry{Date: day(2025, 1, 6), Total: 18, EnteredBy: "f1"}
	require.NoError(t, td.store.UpsertWeekEntry("s1", "a1", first))

	pr := 5
	second := &models.WeekEntry{Date: day(2025, 1, 6), Pr: &pr, Total: 5, EnteredBy: "f1"}
	require.NoError(t, td.store.UpsertWeekEntry("s1", "a1", second))

	rows, err := td.store.FetchHistory("a1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].Total)
	require.NotNil(t, rows[0].Pr)
	assert.Equal(t, 5, *rows[0].Pr)
}

func TestFetchHistory_Order(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	seedStudent(t, td.store, "s1", "101", "A", "", 3)

	// deliberately out of order
	for _, d := range []time.Time{day(2025, 2, 10), day(2025, 1, 20), day(2025, 1, 27)} {
		entry := &models.WeekEntry{Date: d, Total: 10, EnteredBy: "f1"}
		require.NoError(t, td.store.UpsertWeekEntry("s1", "a1", entry))
	}

	rows, err := td.store.FetchHistory("a1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.True(t, rows[0].Date.Equal(day(2025, 1, 20)))
	assert.True(t, rows[1].Date.Equal(day(2025, 1, 27)))
	assert.True(t, rows[2].Date.Equal(day(2025, 2, 10)))
	assert.Equal(t, "Student 101", rows[0].StudentName)
}

func TestFetchStudentSessions(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	seedStudent(t, td.store, "s1", "101", "A", "", 3)

	entry := &models.WeekEntry{Date: day(2025, 1, 6), Total: 22, EnteredBy: "f1"}
	require.NoError(t, td.store.UpsertWeekEntry("s1", "a1", entry))

	rows, err := td.store.FetchStudentSessions("s1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "lab1", rows[0].LabID)
	assert.Equal(t, "DBMS Lab", rows[0].LabName)
	assert.Equal(t, "Dr. A", rows[0].FacultyName)
	assert.Equal(t, "Dr. A", rows[0].EnteredBy)
	assert.Equal(t, 22, rows[0].Total)
	assert.Equal(t, 4, rows[0].WeeksTotal)
}
