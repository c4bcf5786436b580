package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/tms/timesheet-management/internal/approval"
	"github.com/tms/timesheet-management/internal/auth"
	"github.com/tms/timesheet-management/internal/dashboard"
	"github.com/tms/timesheet-management/internal/department"
	"github.com/tms/timesheet-management/internal/project"
	"github.com/tms/timesheet-management/internal/timesheet"
	"github.com/tms/timesheet-management/internal/transport/middleware"
	"github.com/tms/timesheet-management/internal/transport/swagger"
	"github.com/tms/timesheet-management/internal/user"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Department *department.Handler
	Project    *project.Handler
	Timesheet  *timesheet.Handler
	Approval   *approval.Handler
	Dashboard  *dashboard.Handler
}

// RegisterAllRoutes wires the full API surface under /api/v1. Route groups
// carry role gates; ownership and assigned-manager checks live in the services.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.CORS)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/auth/me", h.Auth.Me)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/{id}", h.User.GetUser)

				ur.Group(func(mr chi.Router) {
					mr.Use(rbac.RequireManagerOrAdmin())
					mr.Get("/", h.User.ListUsers)
				})

				ur.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Post("/", h.User.CreateUser)
					ar.Patch("/{id}", h.User.UpdateUser)
					ar.Delete("/{id}", h.User.DeactivateUser)
				})
			})

			pr.Route("/departments", func(dr chi.Router) {
				dr.Get("/", h.Department.ListDepartments)
				dr.Get("/{id}", h.Department.GetDepartment)

				dr.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Post("/", h.Department.CreateDepartment)
					ar.Patch("/{id}", h.Department.UpdateDepartment)
					ar.Delete("/{id}", h.Department.DeleteDepartment)
				})
			})

			pr.Route("/projects", func(jr chi.Router) {
				jr.Get("/", h.Project.ListProjects)
				jr.Get("/{id}", h.Project.GetProject)

				jr.Group(func(mr chi.Router) {
					mr.Use(rbac.RequireManagerOrAdmin())
					mr.Post("/", h.Project.CreateProject)
					mr.Patch("/{id}", h.Project.UpdateProject)
					mr.Get("/{id}/assignments", h.Project.ListAssignments)
					mr.Post("/{id}/assignments", h.Project.AssignUser)
					mr.Delete("/{id}/assignments/{userID}", h.Project.UnassignUser)
				})
			})

			pr.Route("/timesheets", func(tr chi.Router) {
				tr.Post("/", h.Timesheet.CreateTimesheet)
				tr.Get("/", h.Timesheet.ListTimesheets)
				tr.Get("/pending", h.Timesheet.ListPendingTimesheets)
				tr.Get("/{id}", h.Timesheet.GetTimesheet)
				tr.Patch("/{id}", h.Timesheet.UpdateTimesheet)
				tr.Delete("/{id}", h.Timesheet.DeleteTimesheet)

				tr.Group(func(mr chi.Router) {
					mr.Use(rbac.RequireManagerOrAdmin())
					mr.Get("/team/pending", h.Timesheet.ListTeamPending)
				})
			})

			pr.Route("/approvals", func(ar chi.Router) {
				ar.Use(rbac.RequireManagerOrAdmin())
				ar.Get("/", h.Approval.ListApprovals)
				ar.Get("/{id}", h.Approval.GetApproval)
				ar.Patch("/{id}", h.Approval.UpdateApprovalStatus)
			})

			pr.Route("/dashboard", func(dr chi.Router) {
				dr.Get("/employee", h.Dashboard.EmployeeStats)

				dr.Group(func(mr chi.Router) {
					mr.Use(rbac.RequireManagerOrAdmin())
					mr.Get("/manager", h.Dashboard.ManagerStats)
				})
			})
		})
	})
}
