package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/shrimpsizemoose/trekker/logger"
	"golang.org/x/crypto/bcrypt"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const bcryptCost = 10

// NewUser is the admin payload for provisioning one account.
type NewUser struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Semester   int    `json:"semester"`
	Section    string `json:"section"`
	Batch      string `json:"batch"`
}

func (s *Service) CreateUser(in NewUser) (*models.User, error) {
	if in.Password == "" {
		return nil, fmt.Errorf("password is required: %w", models.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         in.Role,
		Department:   in.Department,
		Semester:     in.Semester,
		Section:      in.Section,
		Batch:        in.Batch,
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrValidation)
	}

	if err := s.Store.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. An admin deleting their own account
// is rejected and nothing changes.
func (s *Service) DeleteUser(callerID, userID string) error {
	if callerID == userID {
		return fmt.Errorf("cannot delete your own account: %w", models.ErrConflict)
	}
	return s.Store.DeleteUser(userID)
}

type ImportResult struct {
	Username string `json:"username"`
	Error    string `json:"error,omitempty"`
}

type ImportReport struct {
	Imported int            `json:"imported"`
	Failed   int            `json:"failed"`
	Results  []ImportResult `json:"results"`
}

// BulkImportUsers provisions accounts row by row; a bad row is
// reported and skipped, not fatal to the rest.
func (s *Service) BulkImportUsers(rows []NewUser) *ImportReport {
	report := &ImportReport{}
	for _, row := range rows {
		result := ImportResult{Username: row.Username}
		if _, err := s.CreateUser(row); err != nil {
			result.Error = err.Error()
			report.Failed++
		} else {
			report.Imported++
		}
		report.Results = append(report.Results, result)
	}
	return report
}

func (s *Service) BulkImportLabs(labs []models.Lab) *ImportReport {
	report := &ImportReport{}
	for i := range labs {
		lab := labs[i]
		result := ImportResult{Username: lab.LabCode}
		if _, err := s.CreateLab(&lab); err != nil {
			result.Error = err.Error()
			report.Failed++
		} else {
			report.Imported++
		}
		report.Results = append(report.Results, result)
	}
	return report
}

// Login checks the password and opens a session. The user comes back
// so callers can echo the profile (sans hash) to the client.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.Store.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.Sessions.Issue(ctx, user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// UpdatePassword rotates a user's password after verifying the
// current one.
func (s *Service) UpdatePassword(userID, currentPassword, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("new password is required: %w", models.ErrValidation)
	}

	user, err := s.Store.GetUser(userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.Store.UpdateUserPassword(userID, string(hash))
}

// RedistributeBatches splits every (semester, section) student roster
// in half into Batch-1 and Batch-2, ordered by username (numerically
// when usernames are numeric). giveExtraTo decides which batch takes
// the odd student. Offline maintenance only; safe to re-run.
func (s *Service) RedistributeBatches(giveExtraTo string) error {
	users, err := s.Store.ListUsers()
	if err != nil {
		return err
	}

	type combo struct {
		semester int
		section  string
	}
	rosters := make(map[combo][]models.User)
	for _, u := range users {
		if u.Role != models.RoleStudent {
			continue
		}
		key := combo{semester: u.Semester, section: u.Section}
		rosters[key] = append(rosters[key], u)
	}

	var combos []combo
	for key := range rosters {
		combos = append(combos, key)
	}
	sort.Slice(combos, func(i, j int) bool {
		if combos[i].semester != combos[j].semester {
			return combos[i].semester < combos[j].semester
		}
		return combos[i].section < combos[j].section
	})

	for _, key := range combos {
		students := rosters[key]
		sort.SliceStable(students, func(i, j int) bool {
			return usernameLess(students[i], students[j])
		})

		n := len(students)
		firstCount := n / 2
		if n%2 == 1 && giveExtraTo == "Batch-1" {
			firstCount++
		}

		for i, student := range students {
			batch := "Batch-2"
			if i < firstCount {
				batch = "Batch-1"
			}
			if err := s.Store.UpdateUserBatch(student.ID, batch); err != nil {
				return fmt.Errorf("failed to assign %s to %s: %w", student.Username, batch, err)
			}
		}

		logger.Info.Printf(
			"Semester %d | Section %s: %d students, Batch-1: %d, Batch-2: %d",
			key.semester, key.section, n, firstCount, n-firstCount,
		)
	}

	return nil
}

func usernameLess(a, b models.User) bool {
	na, errA := strconv.Atoi(a.Username)
	nb, errB := strconv.Atoi(b.Username)
	if errA == nil && errB == nil {
		return na < nb
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.Username < b.Username
}
