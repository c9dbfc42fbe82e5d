package store

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
)

// MarkStore is the persistence surface for the portal: users, the lab
// catalog, assignments with their materialized schedules, and the
// per-student week-entry ledger.
type MarkStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateUser(user *models.User) error
	GetUser(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	ListUsers() ([]models.User, error)
	ListStudents(semester int, section, batch string) ([]models.User, error)
	DeleteUser(id string) error
	UpdateUserPassword(id, passwordHash string) error
	UpdateUserBatch(id, batch string) error

	CreateLab(lab *models.Lab) error
	GetLab(id string) (*models.Lab, error)
	ListLabs(semester int) ([]models.Lab, error)

	CreateAssignment(assignment *models.LabAssignment) error
	GetAssignment(id string) (*models.LabAssignment, error)
	ListAssignments() ([]models.AssignmentDetail, error)
	ListAssignmentsByFaculty(facultyID string) ([]models.AssignmentDetail, error)

	UpsertWeekEntry(studentID, assignmentID string, entry *models.WeekEntry) error
	FetchHistory(assignmentID string) ([]models.HistoryRow, error)
	FetchStudentSessions(studentID string) ([]models.StudentSessionRow, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
	Now       func() time.Time
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *BaseStore) clock() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}
