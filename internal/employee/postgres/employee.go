package postgres

import (
	"context"

	"github.com/tenangdev/leave-management/internal"
	"github.com/tenangdev/leave-management/internal/employee"
	"gorm.io/gorm"
)

// EmployeeRepository implements the employee.RepositoryAPI interface using GORM
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) employee.RepositoryAPI {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) GetByID(ctx context.Context, empID, orgID int64) (*employee.Employee, error) {
	var emp employee.Employee
	err := r.db.WithContext(ctx).
		Where("emp_id = ? AND org_id = ?", empID, orgID).
		First(&emp).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) ExistsInOrg(ctx context.Context, empID, orgID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&employee.Employee{}).
		Where("emp_id = ? AND org_id = ? AND status = ?", empID, orgID, employee.StatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *EmployeeRepository) ActiveIDsByOrg(ctx context.Context, orgID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&employee.Employee{}).
		Where("org_id = ? AND status = ?", orgID, employee.StatusActive).
		Order("emp_id").
		Pluck("emp_id", &ids).Error
	return ids, err
}
