package project

import "time"

type Project struct {
	ID           int64     `gorm:"primaryKey"`
	DepartmentID int64     `gorm:"column:department_id;not null"`
	Name         string    `gorm:"column:name;uniqueIndex;not null"`
	Description  string    `gorm:"column:description"`
	StartDate    time.Time `gorm:"column:start_date;type:date;not null"`
	EndDate      time.Time `gorm:"column:end_date;type:date;not null"`
	Status       string    `gorm:"column:status;not null;default:ACTIVE"`
	ManagerID    int64     `gorm:"column:manager_id;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

func (Project) TableName() string {
	return "projects"
}

type ProjectAssignment struct {
	ID            int64  `gorm:"primaryKey"`
	UserID        int64  `gorm:"column:user_id;not null;uniqueIndex:idx_project_assignment"`
	ProjectID     int64  `gorm:"column:project_id;not null;uniqueIndex:idx_project_assignment"`
	RoleInProject string `gorm:"column:role_in_project;not null;default:DEVELOPER"`
}

func (ProjectAssignment) TableName() string {
	return "project_assignments"
}
