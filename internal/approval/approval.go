package approval

import (
	"strings"
	"time"

	approvalDatamodel "github.com/tms/timesheet-management/internal/core/datamodel/approval"
)

// Shared status domain for approvals and their paired timesheets.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// IsValidStatus reports whether s is one of the three known statuses,
// case-insensitively.
func IsValidStatus(s string) bool {
	switch strings.ToUpper(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// NormalizeActionStatus upper-cases an adjudication status. Only APPROVED and
// REJECTED are valid adjudication outcomes; PENDING is never chosen by a caller.
func NormalizeActionStatus(s string) (string, bool) {
	normalized := strings.ToUpper(s)
	if normalized == StatusApproved || normalized == StatusRejected {
		return normalized, true
	}
	return "", false
}

// Approval is the adjudication record paired one-to-one with a timesheet. It is
// owned by the consistency engine: nothing else writes it, and it never
// outlives its timesheet.
type Approval struct {
	ID          int64      `json:"id"`
	TimesheetID int64      `json:"timesheet_id"`
	ManagerID   int64      `json:"manager_id"`
	Status      string     `json:"status"`
	Comments    *string    `json:"comments,omitempty"`
	ActionDate  *time.Time `json:"action_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsActioned reports whether a manager has adjudicated this approval.
func (a *Approval) IsActioned() bool {
	return a.Status != StatusPending
}

// TimesheetDetail is the read-model slice of timesheet data the approval
// views need; resolved by the store, never persisted here.
type TimesheetDetail struct {
	TimesheetID  int64
	EmployeeName string
	ProjectName  *string
	ActivityType *string
	HoursWorked  float64
	WorkDate     time.Time
}

// ApprovalView is the denormalized projection returned to manager dashboards.
// Comments are duplicated as remarks and the activity label is folded into the
// project-name field for display; pure view mapping, no persisted state.
type ApprovalView struct {
	ID            int64      `json:"id"`
	TimesheetID   int64      `json:"timesheet_id"`
	ManagerID     int64      `json:"manager_id"`
	Status        string     `json:"status"`
	Comments      *string    `json:"comments,omitempty"`
	ActionDate    *time.Time `json:"action_date,omitempty"`
	EmployeeName  string     `json:"employee_name"`
	ProjectName   string     `json:"project_name"`
	HoursWorked   float64    `json:"hours_worked"`
	SubmittedDate string     `json:"submitted_date"`
	Remarks       *string    `json:"remarks,omitempty"`
}

// BuildView projects an approval and its timesheet detail into the display shape.
func BuildView(a *Approval, detail *TimesheetDetail) ApprovalView {
	view := ApprovalView{
		ID:          a.ID,
		TimesheetID: a.TimesheetID,
		ManagerID:   a.ManagerID,
		Status:      a.Status,
		Comments:    a.Comments,
		ActionDate:  a.ActionDate,
		Remarks:     a.Comments,
	}

	if detail == nil {
		return view
	}

	view.EmployeeName = detail.EmployeeName
	view.HoursWorked = detail.HoursWorked
	view.SubmittedDate = detail.WorkDate.Format("2006-01-02")

	switch {
	case detail.ProjectName != nil:
		view.ProjectName = *detail.ProjectName
	case detail.ActivityType != nil:
		view.ProjectName = *detail.ActivityType
	}

	return view
}

func ToDataModel(a *Approval) *approvalDatamodel.Approval {
	return &approvalDatamodel.Approval{
		ID:          a.ID,
		TimesheetID: a.TimesheetID,
		ManagerID:   a.ManagerID,
		Status:      a.Status,
		Comments:    a.Comments,
		ActionDate:  a.ActionDate,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func FromDataModel(a *approvalDatamodel.Approval) *Approval {
	return &Approval{
		ID:          a.ID,
		TimesheetID: a.TimesheetID,
		ManagerID:   a.ManagerID,
		Status:      a.Status,
		Comments:    a.Comments,
		ActionDate:  a.ActionDate,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func FromDataModelSlice(approvals []*approvalDatamodel.Approval) []*Approval {
	result := make([]*Approval, len(approvals))
	for i, a := range approvals {
		result[i] = FromDataModel(a)
	}
	return result
}
