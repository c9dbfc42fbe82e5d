package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
)

func (s *BaseStore) CreateUser(user *models.User) error {
	existing, err := s.GetUserByUsername(user.Username)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}
	if existing != nil {
		return fmt.Errorf("username %q already exists: %w", user.Username, models.ErrConflict)
	}

	_, err = s.DB.NamedExec(`
		INSERT INTO users (id, name, username, password_hash, role, department, semester, section, batch)
		VALUES (:id, :name, :username, :password_hash, :role, :department, :semester, :section, :batch)
	`, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *BaseStore) GetUser(id string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, name, username, password_hash, role, department, semester, section, batch
		FROM users
		WHERE id = ?
	`)

	err := s.DB.Get(&user, query, id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, name, username, password_hash, role, department, semester, section, batch
		FROM users
		WHERE username = ?
	`)

	err := s.DB.Get(&user, query, username)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("username %s: %w", username, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.DB.Select(&users, `
		SELECT id, name, username, password_hash, role, department, semester, section, batch
		FROM users
		ORDER BY role, username
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListStudents returns student users for one (semester, section),
// optionally narrowed to one batch. Students with no batch set predate
// the batch split and are matched by any filter.
func (s *BaseStore) ListStudents(semester int, section, batch string) ([]models.User, error) {
	query := `
		SELECT id, name, username, password_hash, role, department, semester, section, batch
		FROM users
		WHERE role = 'student'
		AND semester = ?
		AND section = ?
	`
	args := []interface{}{semester, section}

	if batch != "" && batch != models.BatchAll {
		query += ` AND (batch = ? OR batch = '')`
		args = append(args, batch)
	}
	query += ` ORDER BY username`

	var students []models.User
	err := s.DB.Select(&students, s.Converter(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *BaseStore) DeleteUser(id string) error {
	res, err := s.DB.Exec(s.Converter(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *BaseStore) UpdateUserPassword(id, passwordHash string) error {
	res, err := s.DB.Exec(
		s.Converter(`UPDATE users SET password_hash = ? WHERE id = ?`),
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func (s *BaseStore) UpdateUserBatch(id, batch string) error {
	_, err := s.DB.Exec(
		s.Converter(`UPDATE users SET batch = ? WHERE id = ?`),
		batch, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update batch: %w", err)
	}
	return nil
}
