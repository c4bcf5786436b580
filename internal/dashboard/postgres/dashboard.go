package postgres

import (
	"github.com/tms/timesheet-management/internal/approval"
	"github.com/tms/timesheet-management/internal/auth"
	approvalDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/approval"
	"gorm.io/gorm"
)

// ManagerStatsStore implements dashboard.ManagerStatsStore with aggregate
// queries; nothing here is loaded row by row.
type ManagerStatsStore struct {
	db *gorm.DB
}

func NewManagerStatsStore(db *gorm.DB) *ManagerStatsStore {
	return &ManagerStatsStore{db: db}
}

// CountTeamMembers counts the EMPLOYEE-role users in the departments the
// manager runs. Admins and fellow managers in the department are not team
// members.
func (s *ManagerStatsStore) CountTeamMembers(managerID int64) (int64, error) {
	var count int64
	err := s.db.
		Table("users").
		Joins("JOIN departments ON departments.id = users.department_id").
		Where("departments.manager_id = ? AND users.role = ?", managerID, auth.RoleEmployee).
		Count(&count).Error
	return count, err
}

// CountProjects counts the projects of the departments the manager runs,
// whoever owns them.
func (s *ManagerStatsStore) CountProjects(managerID int64) (int64, error) {
	var count int64
	err := s.db.
		Table("projects").
		Joins("JOIN departments ON departments.id = projects.department_id").
		Where("departments.manager_id = ?", managerID).
		Count(&count).Error
	return count, err
}

func (s *ManagerStatsStore) CountApprovalsActioned(managerID int64) (int64, error) {
	var count int64
	err := s.db.Model(&approvalDatamodel.Approval{}).
		Where("manager_id = ? AND status <> ?", managerID, approval.StatusPending).
		Count(&count).Error
	return count, err
}

func (s *ManagerStatsStore) CountPendingApprovals(managerID int64) (int64, error) {
	var count int64
	err := s.db.Model(&approvalDatamodel.Approval{}).
		Where("manager_id = ? AND status = ?", managerID, approval.StatusPending).
		Count(&count).Error
	return count, err
}
