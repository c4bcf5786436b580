package postgres

import (
	"time"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/auth"
	departmentDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/department"
	userDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/user"
	"github.com/tms/timesheet-management/internal/department"
	"gorm.io/gorm"
)

// DepartmentRepository implements the department.Repository interface using GORM.
type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(d *department.Department) error {
	dm := department.ToDataModel(d)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	d.ID = dm.ID
	d.CreatedAt = dm.CreatedAt
	d.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *DepartmentRepository) GetByID(id int64) (*department.Department, error) {
	var dm departmentDatamodel.Department
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, err
	}
	return department.FromDataModel(&dm), nil
}

func (r *DepartmentRepository) GetByName(name string) (*department.Department, error) {
	var dm departmentDatamodel.Department
	err := r.db.Where("name = ?", name).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, err
	}
	return department.FromDataModel(&dm), nil
}

func (r *DepartmentRepository) List() ([]*department.Department, error) {
	var dms []*departmentDatamodel.Department
	err := r.db.Order("name ASC").Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return department.FromDataModelSlice(dms), nil
}

func (r *DepartmentRepository) Update(d *department.Department) error {
	d.UpdatedAt = time.Now()
	return r.db.Save(department.ToDataModel(d)).Error
}

func (r *DepartmentRepository) Delete(id int64) error {
	return r.db.Delete(&departmentDatamodel.Department{}, id).Error
}

func (r *DepartmentRepository) CountMembers(id int64) (int64, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).
		Where("department_id = ?", id).
		Count(&count).Error
	return count, err
}

// ManagerStore implements department.ManagerStore against the users table.
type ManagerStore struct {
	db *gorm.DB
}

func NewManagerStore(db *gorm.DB) *ManagerStore {
	return &ManagerStore{db: db}
}

func (s *ManagerStore) IsManager(userID int64) (bool, error) {
	var count int64
	err := s.db.Model(&userDatamodel.User{}).
		Where("id = ? AND role = ?", userID, auth.RoleManager).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
