package models

import (
	"github.com/go-playground/validator/v10"
)

const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

// BatchAll means the assignment (or a roster query) is not restricted
// to one half of the section.
const BatchAll = "All"

type User struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Username     string `db:"username" json:"username" validate:"required"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         string `db:"role" json:"role" validate:"required,oneof=admin faculty student"`
	Department   string `db:"department" json:"department"`
	Semester     int    `db:"semester" json:"semester" validate:"min=0,max=8"`
	Section      string `db:"section" json:"section"`
	Batch        string `db:"batch" json:"batch" validate:"omitempty,oneof=Batch-1 Batch-2 All"`
}

func (u *User) Validate() error {
	validate := validator.New()
	return validate.Struct(u)
}
