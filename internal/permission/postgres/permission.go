package postgres

import (
	"context"

	"github.com/tenangdev/leave-management/internal/permission"
	"gorm.io/gorm"
)

// PermissionStore implements the permission.Store interface using GORM
type PermissionStore struct {
	db *gorm.DB
}

func NewPermissionStore(db *gorm.DB) permission.Store {
	return &PermissionStore{db: db}
}

func (s *PermissionStore) RoleIDsFor(ctx context.Context, empID, orgID int64) ([]int64, error) {
	var roleIDs []int64
	err := s.db.WithContext(ctx).
		Table("employee_roles").
		Where("emp_id = ? AND org_id = ?", empID, orgID).
		Pluck("role_id", &roleIDs).Error
	return roleIDs, err
}

func (s *PermissionStore) PermissionsForRoles(ctx context.Context, roleIDs []int64, menuID int64) ([]permission.MenuPermission, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}

	var rows []permission.MenuPermission
	err := s.db.WithContext(ctx).
		Where("role_id IN ? AND menu_id = ?", roleIDs, menuID).
		Find(&rows).Error
	return rows, err
}
