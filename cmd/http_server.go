package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/tms/timesheet-management/internal"
	"github.com/tms/timesheet-management/internal/approval"
	approvalPostgres "github.com/tms/timesheet-management/internal/approval/postgres"
	"github.com/tms/timesheet-management/internal/auth"
	authPostgres "github.com/tms/timesheet-management/internal/auth/postgres"
	"github.com/tms/timesheet-management/internal/dashboard"
	dashboardPostgres "github.com/tms/timesheet-management/internal/dashboard/postgres"
	"github.com/tms/timesheet-management/internal/department"
	departmentPostgres "github.com/tms/timesheet-management/internal/department/postgres"
	"github.com/tms/timesheet-management/internal/project"
	projectPostgres "github.com/tms/timesheet-management/internal/project/postgres"
	"github.com/tms/timesheet-management/internal/timesheet"
	timesheetPostgres "github.com/tms/timesheet-management/internal/timesheet/postgres"
	"github.com/tms/timesheet-management/internal/transport/rest"
	"github.com/tms/timesheet-management/internal/user"
	userPostgres "github.com/tms/timesheet-management/internal/user/postgres"
	"github.com/tms/timesheet-management/pkg/logger"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) error {
	gdb := deps.Gorm
	lg := deps.Logger
	cfg := deps.Config

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gdb), tokenGen, cfg.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	userService := user.NewService(
		userPostgres.NewUserRepository(gdb),
		userPostgres.NewDepartmentStore(gdb),
		authService,
		lg,
	)

	departmentService := department.NewService(
		departmentPostgres.NewDepartmentRepository(gdb),
		departmentPostgres.NewManagerStore(gdb),
		lg,
	)

	projectService := project.NewService(
		projectPostgres.NewProjectRepository(gdb),
		projectPostgres.NewMemberStore(gdb),
		lg,
	)

	timesheetService := timesheet.NewService(
		timesheetPostgres.NewTimesheetRepository(gdb),
		timesheetPostgres.NewApprovalSyncRepository(gdb),
		timesheetPostgres.NewUserStore(gdb),
		timesheetPostgres.NewProjectStore(gdb),
		timesheetPostgres.NewTxManager(gdb),
		lg,
	)

	approvalService := approval.NewService(
		approvalPostgres.NewApprovalRepository(gdb),
		approvalPostgres.NewTimesheetSyncStore(gdb),
		approvalPostgres.NewTxManager(gdb),
		lg,
	)

	dashboardService := dashboard.NewService(
		timesheetPostgres.NewTimesheetRepository(gdb),
		dashboardPostgres.NewManagerStatsStore(gdb),
		lg,
	)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, rest.Handlers{
		Auth:       authHandler,
		User:       user.NewHandler(userService),
		Department: department.NewHandler(departmentService),
		Project:    project.NewHandler(projectService),
		Timesheet:  timesheet.NewHandler(timesheetService),
		Approval:   approval.NewHandler(approvalService),
		Dashboard:  dashboard.NewHandler(dashboardService),
	}, lg)

	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.L(),
		DB:     db,
		Gorm:   gdb,
		Router: chi.NewRouter(),
	}, nil
}

// initDB opens the pgx stdlib connection pool shared by gorm and the health check.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
