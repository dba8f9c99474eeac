package postgres

import (
	"database/sql"
	"fmt"

	"github.com/tenangdev/leave-management/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByEmail(email string) (string, *auth.Credential, error) {
	var passwordHash string
	cred := &auth.Credential{Email: email}
	query := `SELECT emp_id, org_id, password_hash, status = 'active' FROM employees WHERE email = ?`

	row := r.db.Raw(query, email).Row()
	if err := row.Scan(&cred.EmpID, &cred.OrgID, &passwordHash, &cred.IsActive); err != nil {
		if err == sql.ErrNoRows {
			return "", nil, fmt.Errorf("employee not found")
		}
		return "", nil, err
	}
	return passwordHash, cred, nil
}

func (r *Repository) GetCredentialByEmpID(empID int64) (*auth.Credential, error) {
	cred := &auth.Credential{}
	query := `SELECT emp_id, org_id, email, status = 'active' FROM employees WHERE emp_id = ?`

	row := r.db.Raw(query, empID).Row()
	if err := row.Scan(&cred.EmpID, &cred.OrgID, &cred.Email, &cred.IsActive); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("employee not found")
		}
		return nil, err
	}
	return cred, nil
}

var _ auth.RepositoryAPI = (*Repository)(nil)
