package postgres

import (
	"time"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/approval"
	approvalDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/approval"
	timesheetDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/timesheet"
	"gorm.io/gorm"
)

// ApprovalRepository implements the approval.Repository interface using GORM.
type ApprovalRepository struct {
	db *gorm.DB
}

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

func (r *ApprovalRepository) GetByID(id int64) (*approval.Approval, error) {
	var dm approvalDatamodel.Approval
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrApprovalNotFound
		}
		return nil, err
	}
	return approval.FromDataModel(&dm), nil
}

func (r *ApprovalRepository) ListByManager(managerID int64) ([]*approval.Approval, error) {
	var dms []*approvalDatamodel.Approval
	err := r.db.Where("manager_id = ?", managerID).
		Order("created_at DESC, id DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return approval.FromDataModelSlice(dms), nil
}

func (r *ApprovalRepository) Save(a *approval.Approval) error {
	dm := approval.ToDataModel(a)
	dm.UpdatedAt = time.Now()
	if err := r.db.Save(dm).Error; err != nil {
		return err
	}
	a.ID = dm.ID
	a.CreatedAt = dm.CreatedAt
	a.UpdatedAt = dm.UpdatedAt
	return nil
}

// TimesheetSyncStore implements approval.TimesheetStore: it mirrors the
// adjudicated status onto the paired timesheet and resolves display details
// for approval views.
type TimesheetSyncStore struct {
	db *gorm.DB
}

func NewTimesheetSyncStore(db *gorm.DB) *TimesheetSyncStore {
	return &TimesheetSyncStore{db: db}
}

func (s *TimesheetSyncStore) SetApprovalStatus(timesheetID int64, status string) error {
	result := s.db.Model(&timesheetDatamodel.Timesheet{}).
		Where("id = ?", timesheetID).
		Updates(map[string]interface{}{
			"approval_status": status,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrTimesheetNotFound
	}
	return nil
}

func (s *TimesheetSyncStore) GetDetail(timesheetID int64) (*approval.TimesheetDetail, error) {
	var detail approval.TimesheetDetail
	err := s.db.
		Table("timesheets").
		Select(`timesheets.id AS timesheet_id,
			users.name AS employee_name,
			projects.name AS project_name,
			timesheets.activity_type,
			timesheets.hours_worked,
			timesheets.work_date`).
		Joins("JOIN users ON users.id = timesheets.user_id").
		Joins("LEFT JOIN projects ON projects.id = timesheets.project_id").
		Where("timesheets.id = ?", timesheetID).
		Scan(&detail).Error
	if err != nil {
		return nil, err
	}
	if detail.TimesheetID == 0 {
		return nil, internal.ErrTimesheetNotFound
	}
	return &detail, nil
}

// TxManager implements approval.TxManager on top of a GORM transaction.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) Do(fn func(approval.TxRepos) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(approval.TxRepos{
			Approvals:  NewApprovalRepository(tx),
			Timesheets: NewTimesheetSyncStore(tx),
		})
	})
}
