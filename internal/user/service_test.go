package user_test

import (
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/auth"
	"github.com/tms/timesheet-management/internal/user"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "UserService Suite")
}

type mockUserRepository struct {
	users   map[int64]*user.User
	byEmail map[string]*user.User
	nextID  int64
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		users:   make(map[int64]*user.User),
		byEmail: make(map[string]*user.User),
		nextID:  1,
	}
}

func (m *mockUserRepository) Create(u *user.User) error {
	u.ID = m.nextID
	m.nextID++
	copied := *u
	m.users[u.ID] = &copied
	m.byEmail[u.Email] = &copied
	return nil
}

func (m *mockUserRepository) GetByID(id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) GetByEmail(email string) (*user.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) List() ([]*user.User, error) {
	result := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *mockUserRepository) Update(u *user.User) error {
	old, ok := m.users[u.ID]
	if !ok {
		return internal.ErrUserNotFound
	}
	delete(m.byEmail, old.Email)
	copied := *u
	m.users[u.ID] = &copied
	m.byEmail[u.Email] = &copied
	return nil
}

func (m *mockUserRepository) Delete(id int64) error {
	if u, ok := m.users[id]; ok {
		delete(m.byEmail, u.Email)
		delete(m.users, id)
	}
	return nil
}

type mockDepartmentStore struct {
	departments map[int64]*int64
}

func (m *mockDepartmentStore) Exists(departmentID int64) (bool, error) {
	_, ok := m.departments[departmentID]
	return ok, nil
}

func (m *mockDepartmentStore) SetManager(departmentID int64, managerID *int64) error {
	m.departments[departmentID] = managerID
	return nil
}

func (m *mockDepartmentStore) GetManagerID(departmentID int64) (*int64, error) {
	mgr, ok := m.departments[departmentID]
	if !ok {
		return nil, internal.ErrDepartmentNotFound
	}
	return mgr, nil
}

type plainHasher struct{}

func (plainHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

var _ = Describe("UserService", func() {
	var (
		repo        *mockUserRepository
		departments *mockDepartmentStore
		service     *user.Service

		admin    auth.Identity
		employee auth.Identity
	)

	const departmentID = int64(1)

	BeforeEach(func() {
		repo = newMockUserRepository()
		departments = &mockDepartmentStore{departments: map[int64]*int64{departmentID: nil}}

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		service = user.NewService(repo, departments, plainHasher{}, logger)

		admin = auth.Identity{UserID: 1, Email: "admin@mail.com", Role: auth.RoleAdmin}
		employee = auth.Identity{UserID: 10, Email: "employee@mail.com", Role: auth.RoleEmployee}
	})

	validCreate := func() user.CreateUserDTO {
		dept := departmentID
		return user.CreateUserDTO{
			Name:         "New Employee",
			Email:        "new@mail.com",
			Password:     "password123",
			Role:         "EMPLOYEE",
			DepartmentID: &dept,
		}
	}

	Describe("Create", func() {
		It("creates an active user with a hashed password", func() {
			u, err := service.Create(admin, validCreate())
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).NotTo(BeZero())
			Expect(u.IsActive).To(BeTrue())
			Expect(u.PasswordHash).To(Equal("hashed:password123"))
		})

		It("rejects non-admin callers", func() {
			_, err := service.Create(employee, validCreate())
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.AsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeForbidden))
		})

		It("rejects a duplicate email", func() {
			_, err := service.Create(admin, validCreate())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(admin, validCreate())
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.AsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})

		It("rejects an unknown department", func() {
			missing := int64(404)
			dto := validCreate()
			dto.DepartmentID = &missing

			_, err := service.Create(admin, dto)
			Expect(err).To(Equal(internal.ErrDepartmentNotFound))
		})

		It("normalizes the role and defaults to EMPLOYEE", func() {
			dto := validCreate()
			dto.Role = ""
			u, err := service.Create(admin, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(auth.RoleEmployee))
		})

		It("auto-assigns a manager to a manager-less department", func() {
			dto := validCreate()
			dto.Role = "manager"
			u, err := service.Create(admin, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(auth.RoleManager))

			mgr, err := departments.GetManagerID(departmentID)
			Expect(err).NotTo(HaveOccurred())
			Expect(mgr).NotTo(BeNil())
			Expect(*mgr).To(Equal(u.ID))
		})

		It("leaves an occupied manager slot alone", func() {
			existing := int64(99)
			departments.departments[departmentID] = &existing

			dto := validCreate()
			dto.Role = "MANAGER"
			_, err := service.Create(admin, dto)
			Expect(err).NotTo(HaveOccurred())

			mgr, _ := departments.GetManagerID(departmentID)
			Expect(*mgr).To(Equal(existing))
		})
	})

	Describe("Deactivate", func() {
		It("soft-disables the account", func() {
			u, err := service.Create(admin, validCreate())
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Deactivate(admin, u.ID)).To(Succeed())

			got, err := repo.GetByID(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.IsActive).To(BeFalse())
		})
	})

	Describe("GetByID", func() {
		It("lets non-admins read only themselves", func() {
			u, err := service.Create(admin, validCreate())
			Expect(err).NotTo(HaveOccurred())

			_, err = service.GetByID(employee, u.ID)
			Expect(err).To(Equal(internal.ErrNotResourceOwner))

			self := auth.Identity{UserID: u.ID, Email: u.Email, Role: auth.RoleEmployee}
			got, err := service.GetByID(self, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(u.ID))
		})
	})
})
