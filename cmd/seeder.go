package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with a demo organization for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"delegations", "leave_requests", "leave_balances", "leave_types", "menu_permissions", "employee_roles", "roles", "employees"} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		const orgID = 1

		// director -> manager -> two reports, plus a peer manager
		seedEmployees := []struct {
			Name     string
			Email    string
			Superior *int64
		}{
			{"Dewi Director", "dewi@demo.local", nil},
			{"Sari Manager", "sari@demo.local", int64Ptr(1)},
			{"Budi Staff", "budi@demo.local", int64Ptr(2)},
			{"Citra Staff", "citra@demo.local", int64Ptr(2)},
			{"Putra Manager", "putra@demo.local", int64Ptr(1)},
		}

		for _, e := range seedEmployees {
			var exists int
			row := db.Raw("SELECT 1 FROM employees WHERE email = ?", e.Email).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO employees (org_id, name, email, password_hash, superior_emp_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, 'active', now(), now())",
				orgID, e.Name, e.Email, string(hash), e.Superior).Error; err != nil {
				log.Fatalf("failed to insert employee %s: %v", e.Email, err)
			}
			fmt.Println("Seeded employee:", e.Email)
		}

		seedRoles := []struct {
			Name       string
			All        bool
			Team       bool
			Individual bool
		}{
			{"hr_admin", true, false, false},
			{"manager", false, true, false},
			{"staff", false, false, true},
		}

		for _, r := range seedRoles {
			var roleID int64
			row := db.Raw("SELECT id FROM roles WHERE org_id = ? AND name = ?", orgID, r.Name).Row()
			if err := row.Scan(&roleID); err != nil {
				if err := db.Exec("INSERT INTO roles (org_id, name, created_at) VALUES (?, ?, now())", orgID, r.Name).Error; err != nil {
					log.Fatalf("failed to insert role %s: %v", r.Name, err)
				}
				if err := db.Raw("SELECT id FROM roles WHERE org_id = ? AND name = ?", orgID, r.Name).Row().Scan(&roleID); err != nil {
					log.Fatalf("role not found after insert %s: %v", r.Name, err)
				}
				// one grant per menu so every capability is exercisable
				for menuID := 1; menuID <= 3; menuID++ {
					if err := db.Exec(
						"INSERT INTO menu_permissions (role_id, menu_id, submenu_id, all_data, team_data, individual_data) VALUES (?, ?, NULL, ?, ?, ?)",
						roleID, menuID, r.All, r.Team, r.Individual).Error; err != nil {
						log.Fatalf("failed to insert menu permission for role %s: %v", r.Name, err)
					}
				}
			}
			fmt.Println("Seeded role:", r.Name)
		}

		roleByEmployee := map[string]string{
			"dewi@demo.local":  "hr_admin",
			"sari@demo.local":  "manager",
			"budi@demo.local":  "staff",
			"citra@demo.local": "staff",
			"putra@demo.local": "manager",
		}

		for email, roleName := range roleByEmployee {
			var empID, roleID int64
			if err := db.Raw("SELECT emp_id FROM employees WHERE email = ?", email).Row().Scan(&empID); err != nil {
				log.Fatalf("failed to look up employee %s: %v", email, err)
			}
			if err := db.Raw("SELECT id FROM roles WHERE org_id = ? AND name = ?", orgID, roleName).Row().Scan(&roleID); err != nil {
				log.Fatalf("failed to look up role %s: %v", roleName, err)
			}

			var exists int
			if err := db.Raw("SELECT 1 FROM employee_roles WHERE emp_id = ? AND org_id = ? AND role_id = ?", empID, orgID, roleID).Row().Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec("INSERT INTO employee_roles (emp_id, org_id, role_id, created_at) VALUES (?, ?, ?, now())", empID, orgID, roleID).Error; err != nil {
				log.Fatalf("failed to assign role %s to %s: %v", roleName, email, err)
			}
		}

		var leaveTypeID int64
		if err := db.Raw("SELECT id FROM leave_types WHERE org_id = ? AND name = ?", orgID, "Annual Leave").Row().Scan(&leaveTypeID); err != nil {
			if err := db.Exec("INSERT INTO leave_types (org_id, name, is_active) VALUES (?, 'Annual Leave', true)", orgID).Error; err != nil {
				log.Fatalf("failed to insert leave type: %v", err)
			}
			if err := db.Raw("SELECT id FROM leave_types WHERE org_id = ? AND name = ?", orgID, "Annual Leave").Row().Scan(&leaveTypeID); err != nil {
				log.Fatalf("leave type not found after insert: %v", err)
			}
		}

		// 24 half-day units = 12 days of annual leave
		if err := db.Exec(`
			INSERT INTO leave_balances (emp_id, org_id, leave_id, remaining_units, updated_at)
			SELECT emp_id, org_id, ?, 24, now() FROM employees WHERE org_id = ?
			ON CONFLICT (emp_id, org_id, leave_id) DO NOTHING`,
			leaveTypeID, orgID).Error; err != nil {
			log.Fatalf("failed to seed balances: %v", err)
		}

		fmt.Println("Seed complete. Login with any seeded email and password:", password)
	},
}

func int64Ptr(v int64) *int64 {
	return &v
}
