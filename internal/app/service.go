package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
	"github.com/shrimpsizemoose/kardemumma/internal/schedule"
	"github.com/shrimpsizemoose/kardemumma/internal/store"
)

type Service struct {
	Config   *Config
	Store    store.MarkStore
	Sessions *SessionManager
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	sessions, err := NewSessionManager(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}

	return &Service{
		Config:   config,
		Store:    store,
		Sessions: sessions,
	}, nil
}

// AssignmentRequest is the admin payload for binding a lab to a
// faculty member on a weekly schedule.
type AssignmentRequest struct {
	LabID        string `json:"lab_id"`
	FacultyID    string `json:"faculty_id"`
	Section      string `json:"section"`
	Batch        string `json:"batch"`
	AcademicYear string `json:"academic_year"`
	SemesterType string `json:"semester_type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DayOfWeek    string `json:"day_of_week"`
}

// CreateAssignment validates the lab and faculty references, generates
// the weekday schedule, and persists the assignment with its date
// snapshot. The snapshot defines week numbering from then on.
func (s *Service) CreateAssignment(req AssignmentRequest) (*models.LabAssignment, error) {
	if _, err := s.Store.GetLab(req.LabID); err != nil {
		return nil, fmt.Errorf("invalid lab: %w", err)
	}

	faculty, err := s.Store.GetUser(req.FacultyID)
	if err != nil {
		return nil, fmt.Errorf("invalid faculty: %w", err)
	}
	if faculty.Role != models.RoleFaculty {
		return nil, fmt.Errorf("user %s is not faculty: %w", req.FacultyID, models.ErrValidation)
	}

	start, err := time.Parse(schedule.DayKeyFormat, req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("bad start date %q: %w", req.StartDate, models.ErrValidation)
	}
	end, err := time.Parse(schedule.DayKeyFormat, req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("bad end date %q: %w", req.EndDate, models.ErrValidation)
	}

	dates, err := schedule.GenerateDates(start, end, req.DayOfWeek)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidRange) || errors.Is(err, schedule.ErrInvalidWeekday) {
			return nil, fmt.Errorf("%v: %w", err, models.ErrValidation)
		}
		return nil, err
	}

	batch := req.Batch
	if batch == "" {
		batch = models.BatchAll
	}

	assignment := &models.LabAssignment{
		ID:           uuid.New().String(),
		LabID:        req.LabID,
		FacultyID:    req.FacultyID,
		Section:      req.Section,
		Batch:        batch,
		AcademicYear: req.AcademicYear,
		SemesterType: req.SemesterType,
		StartDate:    schedule.Normalize(start),
		EndDate:      schedule.Normalize(end),
		DayOfWeek:    req.DayOfWeek,
		Dates:        dates,
	}
	if err := assignment.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrValidation)
	}

	if err := s.Store.CreateAssignment(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

func (s *Service) CreateLab(lab *models.Lab) (*models.Lab, error) {
	lab.ID = uuid.New().String()
	if err := lab.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrValidation)
	}
	if err := s.Store.CreateLab(lab); err != nil {
		return nil, err
	}
	return lab, nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("sessions: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
