package postgres

import (
	"time"

	"github.com/tms/timesheet-management/internal"
	departmentDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/department"
	userDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/user"
	"github.com/tms/timesheet-management/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements the user.Repository interface using GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *user.User) error {
	dm := user.ToDataModel(u)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	u.ID = dm.ID
	u.CreatedAt = dm.CreatedAt
	u.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var dm userDatamodel.User
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&dm), nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var dm userDatamodel.User
	err := r.db.Where("email = ?", email).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&dm), nil
}

func (r *UserRepository) List() ([]*user.User, error) {
	var dms []*userDatamodel.User
	err := r.db.Order("name ASC").Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return user.FromDataModelSlice(dms), nil
}

func (r *UserRepository) Update(u *user.User) error {
	u.UpdatedAt = time.Now()
	return r.db.Save(user.ToDataModel(u)).Error
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Delete(&userDatamodel.User{}, id).Error
}

// DepartmentStore implements user.DepartmentStore.
type DepartmentStore struct {
	db *gorm.DB
}

func NewDepartmentStore(db *gorm.DB) *DepartmentStore {
	return &DepartmentStore{db: db}
}

func (s *DepartmentStore) Exists(departmentID int64) (bool, error) {
	var count int64
	err := s.db.Model(&departmentDatamodel.Department{}).
		Where("id = ?", departmentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *DepartmentStore) SetManager(departmentID int64, managerID *int64) error {
	return s.db.Model(&departmentDatamodel.Department{}).
		Where("id = ?", departmentID).
		Updates(map[string]interface{}{
			"manager_id": managerID,
			"updated_at": time.Now(),
		}).Error
}

func (s *DepartmentStore) GetManagerID(departmentID int64) (*int64, error) {
	var dm departmentDatamodel.Department
	err := s.db.Where("id = ?", departmentID).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrDepartmentNotFound
		}
		return nil, err
	}
	return dm.ManagerID, nil
}
