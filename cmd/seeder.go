package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"approvals", "timesheets", "project_assignments", "projects", "users", "departments"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		seedDepartment(db, "Engineering")
		var deptID int64
		if err := db.Raw("SELECT id FROM departments WHERE name = ?", "Engineering").Row().Scan(&deptID); err != nil {
			log.Fatalf("failed to lookup department: %v", err)
		}

		seedUser(db, "admin@mail.com", "Site Admin", "ADMIN", string(hash), nil)
		seedUser(db, "manager@mail.com", "Eng Manager", "MANAGER", string(hash), &deptID)
		seedUser(db, "employee@mail.com", "Eng Employee", "EMPLOYEE", string(hash), &deptID)

		var managerID int64
		if err := db.Raw("SELECT id FROM users WHERE email = ?", "manager@mail.com").Row().Scan(&managerID); err != nil {
			log.Fatalf("failed to lookup manager: %v", err)
		}
		if err := db.Exec("UPDATE departments SET manager_id = ? WHERE id = ? AND manager_id IS NULL", managerID, deptID).Error; err != nil {
			log.Fatalf("failed to assign department manager: %v", err)
		}

		var projectExists int
		if err := db.Raw("SELECT 1 FROM projects WHERE name = ?", "Internal Platform").Row().Scan(&projectExists); err != nil {
			if err := db.Exec(`INSERT INTO projects (department_id, name, description, start_date, end_date, status, manager_id, created_at, updated_at)
				VALUES (?, ?, ?, now(), now() + interval '90 days', 'ACTIVE', ?, now(), now())`,
				deptID, "Internal Platform", "Core platform work", managerID).Error; err != nil {
				log.Fatalf("failed to insert project: %v", err)
			}
			fmt.Println("Seeded project: Internal Platform")
		}

		var employeeID, projectID int64
		if err := db.Raw("SELECT id FROM users WHERE email = ?", "employee@mail.com").Row().Scan(&employeeID); err != nil {
			log.Fatalf("failed to lookup employee: %v", err)
		}
		if err := db.Raw("SELECT id FROM projects WHERE name = ?", "Internal Platform").Row().Scan(&projectID); err != nil {
			log.Fatalf("failed to lookup project: %v", err)
		}

		var assignmentExists int
		if err := db.Raw("SELECT 1 FROM project_assignments WHERE user_id = ? AND project_id = ?", employeeID, projectID).Row().Scan(&assignmentExists); err != nil {
			if err := db.Exec("INSERT INTO project_assignments (user_id, project_id, role_in_project) VALUES (?, ?, 'DEVELOPER')", employeeID, projectID).Error; err != nil {
				log.Fatalf("failed to insert assignment: %v", err)
			}
			fmt.Println("Assigned employee to project")
		}

		fmt.Println("Seed data ready")
	},
}

func seedDepartment(db *gorm.DB, name string) {
	var exists int
	if err := db.Raw("SELECT 1 FROM departments WHERE name = ?", name).Row().Scan(&exists); err == nil {
		return
	}
	if err := db.Exec("INSERT INTO departments (name, created_at, updated_at) VALUES (?, now(), now())", name).Error; err != nil {
		log.Fatalf("failed to insert department %s: %v", name, err)
	}
	fmt.Println("Seeded department:", name)
}

func seedUser(db *gorm.DB, email, name, role, hash string, departmentID *int64) {
	var exists int
	if err := db.Raw("SELECT 1 FROM users WHERE email = ?", email).Row().Scan(&exists); err == nil {
		return
	}
	if err := db.Exec(`INSERT INTO users (email, name, password_hash, role, department_id, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, true, now(), now())`, email, name, hash, role, departmentID).Error; err != nil {
		log.Fatalf("failed to insert user %s: %v", email, err)
	}
	fmt.Println("Seeded user:", email)
}
