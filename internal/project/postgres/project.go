package postgres

import (
	"time"

	"github.com/tms/timesheet-management/internal"
	projectDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/project"
	userDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/user"
	"github.com/tms/timesheet-management/internal/project"
	"gorm.io/gorm"
)

// ProjectRepository implements the project.Repository interface using GORM.
type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Create(p *project.Project) error {
	dm := project.ToDataModel(p)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	p.ID = dm.ID
	p.CreatedAt = dm.CreatedAt
	p.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *ProjectRepository) GetByID(id int64) (*project.Project, error) {
	var dm projectDatamodel.Project
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrProjectNotFound
		}
		return nil, err
	}
	return project.FromDataModel(&dm), nil
}

func (r *ProjectRepository) GetByName(name string) (*project.Project, error) {
	var dm projectDatamodel.Project
	err := r.db.Where("name = ?", name).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrProjectNotFound
		}
		return nil, err
	}
	return project.FromDataModel(&dm), nil
}

func (r *ProjectRepository) List() ([]*project.Project, error) {
	var dms []*projectDatamodel.Project
	err := r.db.Order("start_date DESC").Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return project.FromDataModelSlice(dms), nil
}

func (r *ProjectRepository) ListByDepartment(departmentID int64) ([]*project.Project, error) {
	var dms []*projectDatamodel.Project
	err := r.db.Where("department_id = ?", departmentID).
		Order("start_date DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return project.FromDataModelSlice(dms), nil
}

func (r *ProjectRepository) Update(p *project.Project) error {
	p.UpdatedAt = time.Now()
	return r.db.Save(project.ToDataModel(p)).Error
}

func (r *ProjectRepository) Assign(a *project.Assignment) error {
	dm := &projectDatamodel.ProjectAssignment{
		UserID:        a.UserID,
		ProjectID:     a.ProjectID,
		RoleInProject: a.RoleInProject,
	}
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	a.ID = dm.ID
	return nil
}

func (r *ProjectRepository) Unassign(userID, projectID int64) error {
	return r.db.Where("user_id = ? AND project_id = ?", userID, projectID).
		Delete(&projectDatamodel.ProjectAssignment{}).Error
}

func (r *ProjectRepository) IsAssigned(userID, projectID int64) (bool, error) {
	var count int64
	err := r.db.Model(&projectDatamodel.ProjectAssignment{}).
		Where("user_id = ? AND project_id = ?", userID, projectID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ProjectRepository) ListAssignments(projectID int64) ([]*project.Assignment, error) {
	var dms []*projectDatamodel.ProjectAssignment
	err := r.db.Where("project_id = ?", projectID).Find(&dms).Error
	if err != nil {
		return nil, err
	}
	assignments := make([]*project.Assignment, len(dms))
	for i, dm := range dms {
		assignments[i] = project.AssignmentFromDataModel(dm)
	}
	return assignments, nil
}

// MemberStore implements project.MemberStore against the users table.
type MemberStore struct {
	db *gorm.DB
}

func NewMemberStore(db *gorm.DB) *MemberStore {
	return &MemberStore{db: db}
}

func (s *MemberStore) GetDepartmentID(userID int64) (*int64, error) {
	var dm userDatamodel.User
	err := s.db.Select("id, department_id").Where("id = ?", userID).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return dm.DepartmentID, nil
}
