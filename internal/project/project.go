package project

import (
	"time"

	projectDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/project"
)

const (
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusOnHold    = "ON_HOLD"
)

// Project is a billable unit of work owned by a department; employees log
// timesheets against projects they are assigned to.
type Project struct {
	ID           int64     `json:"id"`
	DepartmentID int64     `json:"department_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Status       string    `json:"status"`
	ManagerID    int64     `json:"manager_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Assignment links a user to a project; at most one per user/project pair.
type Assignment struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	ProjectID     int64  `json:"project_id"`
	RoleInProject string `json:"role_in_project"`
}

func ToDataModel(p *Project) *projectDatamodel.Project {
	return &projectDatamodel.Project{
		ID:           p.ID,
		DepartmentID: p.DepartmentID,
		Name:         p.Name,
		Description:  p.Description,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Status:       p.Status,
		ManagerID:    p.ManagerID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func FromDataModel(p *projectDatamodel.Project) *Project {
	return &Project{
		ID:           p.ID,
		DepartmentID: p.DepartmentID,
		Name:         p.Name,
		Description:  p.Description,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Status:       p.Status,
		ManagerID:    p.ManagerID,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

func FromDataModelSlice(projects []*projectDatamodel.Project) []*Project {
	result := make([]*Project, len(projects))
	for i, p := range projects {
		result[i] = FromDataModel(p)
	}
	return result
}

func AssignmentFromDataModel(a *projectDatamodel.ProjectAssignment) *Assignment {
	return &Assignment{
		ID:            a.ID,
		UserID:        a.UserID,
		ProjectID:     a.ProjectID,
		RoleInProject: a.RoleInProject,
	}
}
