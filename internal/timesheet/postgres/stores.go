package postgres

import (
	"github.com/tms/timesheet-management/internal"
	projectDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/project"
	"github.com/tms/timesheet-management/internal/timesheet"
	"gorm.io/gorm"
)

// UserStore resolves timesheet owners along with their approval chain.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// GetOwner loads the user and resolves the manager of their department in one
// query. ManagerID stays nil when the user has no department or the department
// has no manager.
func (s *UserStore) GetOwner(userID int64) (*timesheet.Owner, error) {
	var owner timesheet.Owner
	err := s.db.
		Table("users").
		Select("users.id, users.name, users.email, users.department_id, departments.manager_id").
		Joins("LEFT JOIN departments ON departments.id = users.department_id").
		Where("users.id = ?", userID).
		Scan(&owner).Error
	if err != nil {
		return nil, err
	}
	if owner.ID == 0 {
		return nil, internal.ErrUserNotFound
	}
	return &owner, nil
}

// ProjectStore resolves project references and assignment membership.
type ProjectStore struct {
	db *gorm.DB
}

func NewProjectStore(db *gorm.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) GetRef(projectID int64) (*timesheet.ProjectRef, error) {
	var dm projectDatamodel.Project
	err := s.db.Where("id = ?", projectID).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrProjectNotFound
		}
		return nil, err
	}
	return &timesheet.ProjectRef{ID: dm.ID, Name: dm.Name}, nil
}

func (s *ProjectStore) IsAssigned(userID, projectID int64) (bool, error) {
	var count int64
	err := s.db.Model(&projectDatamodel.ProjectAssignment{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
