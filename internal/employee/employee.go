package employee

import (
	"context"
	"time"
)

// Employee rows are owned by the org-admin subsystem; this service only
// ever reads them.
type Employee struct {
	EmpID         int64     `json:"emp_id" gorm:"column:emp_id;primaryKey"`
	OrgID         int64     `json:"org_id" gorm:"column:org_id;not null"`
	Name          string    `json:"name" gorm:"column:name"`
	Email         string    `json:"email" gorm:"column:email"`
	SuperiorEmpID *int64    `json:"superior_emp_id,omitempty" gorm:"column:superior_emp_id"`
	Status        string    `json:"status" gorm:"column:status"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

func (e *Employee) IsActive() bool {
	return e.Status == StatusActive
}

type RepositoryAPI interface {
	GetByID(ctx context.Context, empID, orgID int64) (*Employee, error)
	ExistsInOrg(ctx context.Context, empID, orgID int64) (bool, error)
	ActiveIDsByOrg(ctx context.Context, orgID int64) ([]int64, error)
}
