package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/approval"
)

func TestApprovalRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ApprovalRepository Suite")
}

type SQLiteUser struct {
	ID    int64  `gorm:"primaryKey"`
	Name  string `gorm:"column:name"`
	Email string `gorm:"column:email;uniqueIndex"`
}

func (SQLiteUser) TableName() string { return "users" }

type SQLiteProject struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"column:name;uniqueIndex"`
}

func (SQLiteProject) TableName() string { return "projects" }

type SQLiteTimesheet struct {
	ID             int64     `gorm:"primaryKey"`
	UserID         int64     `gorm:"column:user_id"`
	ProjectID      *int64    `gorm:"column:project_id"`
	ActivityType   *string   `gorm:"column:activity_type"`
	WorkDate       time.Time `gorm:"column:work_date"`
	HoursWorked    float64   `gorm:"column:hours_worked"`
	Description    string    `gorm:"column:description"`
	ApprovalStatus string    `gorm:"column:approval_status"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (SQLiteTimesheet) TableName() string { return "timesheets" }

type SQLiteApproval struct {
	ID          int64      `gorm:"primaryKey"`
	TimesheetID int64      `gorm:"column:timesheet_id;uniqueIndex"`
	ManagerID   int64      `gorm:"column:manager_id"`
	Status      string     `gorm:"column:status"`
	Comments    *string    `gorm:"column:comments"`
	ActionDate  *time.Time `gorm:"column:action_date"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (SQLiteApproval) TableName() string { return "approvals" }

var _ = Describe("ApprovalRepository", func() {
	var (
		db    *gorm.DB
		repo  *ApprovalRepository
		store *TimesheetSyncStore
	)

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{}, &SQLiteProject{}, &SQLiteTimesheet{}, &SQLiteApproval{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewApprovalRepository(db)
		store = NewTimesheetSyncStore(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("Save and GetByID", func() {
		It("round-trips an approval", func() {
			a := &approval.Approval{TimesheetID: 7, ManagerID: 20, Status: approval.StatusPending}
			Expect(repo.Save(a)).To(Succeed())
			Expect(a.ID).NotTo(BeZero())

			got, err := repo.GetByID(a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.TimesheetID).To(Equal(int64(7)))
			Expect(got.Status).To(Equal(approval.StatusPending))
		})

		It("persists adjudication fields", func() {
			remarks := "looks good"
			actionDate := time.Date(2025, 6, 18, 14, 0, 0, 0, time.UTC)
			a := &approval.Approval{
				TimesheetID: 7,
				ManagerID:   20,
				Status:      approval.StatusApproved,
				Comments:    &remarks,
				ActionDate:  &actionDate,
			}
			Expect(repo.Save(a)).To(Succeed())

			got, err := repo.GetByID(a.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Status).To(Equal(approval.StatusApproved))
			Expect(*got.Comments).To(Equal(remarks))
			Expect(got.ActionDate).NotTo(BeNil())
		})

		It("returns the domain not-found error for a missing id", func() {
			_, err := repo.GetByID(999)
			Expect(err).To(Equal(internal.ErrApprovalNotFound))
		})
	})

	Describe("ListByManager", func() {
		It("returns only the manager's approvals", func() {
			Expect(repo.Save(&approval.Approval{TimesheetID: 1, ManagerID: 20, Status: approval.StatusPending})).To(Succeed())
			Expect(repo.Save(&approval.Approval{TimesheetID: 2, ManagerID: 20, Status: approval.StatusApproved})).To(Succeed())
			Expect(repo.Save(&approval.Approval{TimesheetID: 3, ManagerID: 21, Status: approval.StatusPending})).To(Succeed())

			list, err := repo.ListByManager(20)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
		})
	})

	Describe("TimesheetSyncStore", func() {
		BeforeEach(func() {
			projectID := int64(5)
			Expect(db.Create(&SQLiteUser{ID: 10, Name: "Eng Employee", Email: "employee@mail.com"}).Error).To(Succeed())
			Expect(db.Create(&SQLiteProject{ID: projectID, Name: "Internal Platform"}).Error).To(Succeed())
			Expect(db.Create(&SQLiteTimesheet{
				ID:             7,
				UserID:         10,
				ProjectID:      &projectID,
				WorkDate:       time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
				HoursWorked:    8,
				ApprovalStatus: approval.StatusPending,
			}).Error).To(Succeed())
		})

		It("mirrors a status onto the timesheet", func() {
			Expect(store.SetApprovalStatus(7, approval.StatusApproved)).To(Succeed())

			var ts SQLiteTimesheet
			Expect(db.First(&ts, 7).Error).To(Succeed())
			Expect(ts.ApprovalStatus).To(Equal(approval.StatusApproved))
		})

		It("fails for a missing timesheet", func() {
			err := store.SetApprovalStatus(999, approval.StatusApproved)
			Expect(err).To(Equal(internal.ErrTimesheetNotFound))
		})

		It("resolves employee and project names for views", func() {
			detail, err := store.GetDetail(7)
			Expect(err).NotTo(HaveOccurred())
			Expect(detail.EmployeeName).To(Equal("Eng Employee"))
			Expect(detail.ProjectName).NotTo(BeNil())
			Expect(*detail.ProjectName).To(Equal("Internal Platform"))
			Expect(detail.HoursWorked).To(Equal(8.0))
		})
	})

	Describe("TxManager", func() {
		It("rolls back the approval when the timesheet mirror fails", func() {
			tx := NewTxManager(db)

			err := tx.Do(func(r approval.TxRepos) error {
				if err := r.Approvals.Save(&approval.Approval{TimesheetID: 7, ManagerID: 20, Status: approval.StatusApproved}); err != nil {
					return err
				}
				// No timesheet row exists, so the mirror write must fail.
				return r.Timesheets.SetApprovalStatus(999, approval.StatusApproved)
			})
			Expect(err).To(HaveOccurred())

			var count int64
			Expect(db.Model(&SQLiteApproval{}).Count(&count).Error).To(Succeed())
			Expect(count).To(BeZero())
		})
	})
})
