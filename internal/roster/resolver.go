// internal/roster/resolver.go
package roster

import (
	"fmt"

	"github.com/shrimpsizemoose/kardemumma/internal/models"
)

// Directory is the slice of the store the resolver needs.
type Directory interface {
	GetAssignment(id string) (*models.LabAssignment, error)
	GetLab(id string) (*models.Lab, error)
	ListStudents(semester int, section, batch string) ([]models.User, error)
}

type Resolver struct {
	dir Directory
}

func NewResolver(dir Directory) *Resolver {
	return &Resolver{dir: dir}
}

// ResolveStudents returns the students eligible for a session of the
// assignment, sorted by username. The semester comes from the
// assignment's lab, the section from the override or the assignment,
// and the batch filter by precedence: an explicit override that is not
// "All" wins, else the assignment's stored batch if not "All", else no
// filter.
func (r *Resolver) ResolveStudents(assignmentID, sectionOverride, batchOverride string) ([]models.User, error) {
	assignment, err := r.dir.GetAssignment(assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assignment: %w", err)
	}

	lab, err := r.dir.GetLab(assignment.LabID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lab for assignment %s: %w", assignmentID, err)
	}

	section := assignment.Section
	if sectionOverride != "" {
		section = sectionOverride
	}

	batch := ""
	switch {
	case batchOverride != "" && batchOverride != models.BatchAll:
		batch = batchOverride
	case assignment.Batch != "" && assignment.Batch != models.BatchAll:
		batch = assignment.Batch
	}

	students, err := r.dir.ListStudents(lab.Semester, section, batch)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}
