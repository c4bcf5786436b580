package dashboard

// EmployeeStats summarizes an employee's own timesheet activity: current-week
// and current-month logged hours plus counts per approval status.
type EmployeeStats struct {
	WeeklyHours   float64 `json:"weekly_hours"`
	MonthlyHours  float64 `json:"monthly_hours"`
	PendingCount  int     `json:"pending_count"`
	ApprovedCount int     `json:"approved_count"`
	RejectedCount int     `json:"rejected_count"`
	TotalEntries  int     `json:"total_entries"`
}

// ManagerStats summarizes a manager's span of control and adjudication load.
type ManagerStats struct {
	TeamCount         int64 `json:"team_count"`
	ProjectsCount     int64 `json:"projects_count"`
	ApprovalsActioned int64 `json:"approvals_actioned"`
	PendingApprovals  int64 `json:"pending_approvals"`
}
