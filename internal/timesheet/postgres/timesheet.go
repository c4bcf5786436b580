package postgres

import (
	"time"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/approval"
	approvalDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/approval"
	timesheetDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/timesheet"
	"github.com/tms/timesheet-management/internal/timesheet"
	"gorm.io/gorm"
)

// TimesheetRepository implements the timesheet.Repository interface using GORM.
type TimesheetRepository struct {
	db *gorm.DB
}

func NewTimesheetRepository(db *gorm.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

func (r *TimesheetRepository) Create(ts *timesheet.Timesheet) error {
	dm := timesheet.ToDataModel(ts)
	if err := r.db.Create(dm).Error; err != nil {
		return err
	}
	ts.ID = dm.ID
	ts.CreatedAt = dm.CreatedAt
	ts.UpdatedAt = dm.UpdatedAt
	return nil
}

func (r *TimesheetRepository) GetByID(id int64) (*timesheet.Timesheet, error) {
	var dm timesheetDatamodel.Timesheet
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrTimesheetNotFound
		}
		return nil, err
	}
	return timesheet.FromDataModel(&dm), nil
}

func (r *TimesheetRepository) ListAll() ([]*timesheet.Timesheet, error) {
	var dms []*timesheetDatamodel.Timesheet
	err := r.db.Order("work_date DESC, id DESC").Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return timesheet.FromDataModelSlice(dms), nil
}

func (r *TimesheetRepository) ListByUser(userID int64) ([]*timesheet.Timesheet, error) {
	var dms []*timesheetDatamodel.Timesheet
	err := r.db.Where("user_id = ?", userID).
		Order("work_date DESC, id DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return timesheet.FromDataModelSlice(dms), nil
}

func (r *TimesheetRepository) ListByUserAndStatus(userID int64, status string) ([]*timesheet.Timesheet, error) {
	var dms []*timesheetDatamodel.Timesheet
	err := r.db.Where("user_id = ? AND approval_status = ?", userID, status).
		Order("work_date DESC, id DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return timesheet.FromDataModelSlice(dms), nil
}

// ListPendingForManager returns pending timesheets whose paired approval is
// assigned to the manager, oldest first so the queue is FIFO.
func (r *TimesheetRepository) ListPendingForManager(managerID int64) ([]*timesheet.Timesheet, error) {
	var dms []*timesheetDatamodel.Timesheet
	err := r.db.
		Joins("JOIN approvals ON approvals.timesheet_id = timesheets.id").
		Where("approvals.manager_id = ? AND timesheets.approval_status = ?", managerID, approval.StatusPending).
		Order("timesheets.work_date ASC, timesheets.id ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return timesheet.FromDataModelSlice(dms), nil
}

func (r *TimesheetRepository) Update(ts *timesheet.Timesheet) error {
	ts.UpdatedAt = time.Now()
	return r.db.Save(timesheet.ToDataModel(ts)).Error
}

func (r *TimesheetRepository) Delete(id int64) error {
	return r.db.Delete(&timesheetDatamodel.Timesheet{}, id).Error
}

// ApprovalSyncRepository implements timesheet.ApprovalStore: the approval
// persistence slice the consistency engine drives during timesheet writes.
type ApprovalSyncRepository struct {
	db *gorm.DB
}

func NewApprovalSyncRepository(db *gorm.DB) *ApprovalSyncRepository {
	return &ApprovalSyncRepository{db: db}
}

func (r *ApprovalSyncRepository) GetByTimesheetID(timesheetID int64) (*approval.Approval, error) {
	var dm approvalDatamodel.Approval
	err := r.db.Where("timesheet_id = ?", timesheetID).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return approval.FromDataModel(&dm), nil
}

func (r *ApprovalSyncRepository) Save(a *approval.Approval) error {
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

func (r *ApprovalSyncRepository) DeleteByTimesheetID(timesheetID int64) error {
	return r.db.Where("timesheet_id = ?", timesheetID).Delete(&approvalDatamodel.Approval{}).Error
}

// TxManager implements timesheet.TxManager on top of a GORM transaction; the
// callback sees repositories bound to the transaction handle.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) Do(fn func(timesheet.TxRepos) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(timesheet.TxRepos{
			Timesheets: NewTimesheetRepository(tx),
			Approvals:  NewApprovalSyncRepository(tx),
		})
	})
}
