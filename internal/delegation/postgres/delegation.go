package postgres

import (
	"context"

	"github.com/tenangdev/leave-management/internal/delegation"
	"gorm.io/gorm"
)

// DelegationRepository implements the delegation.RepositoryAPI interface using GORM
type DelegationRepository struct {
	db *gorm.DB
}

func NewDelegationRepository(db *gorm.DB) delegation.RepositoryAPI {
	return &DelegationRepository{db: db}
}

func (r *DelegationRepository) Insert(ctx context.Context, d *delegation.Delegation) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DelegationRepository) DeactivateMatching(ctx context.Context, orgID, senderEmpID, receiverEmpID, menuID int64, submenuID *int64, exceptID string) error {
	query := r.db.WithContext(ctx).
		Model(&delegation.Delegation{}).
		Where("org_id = ? AND sender_emp_id = ? AND receiver_emp_id = ? AND menu_id = ?", orgID, senderEmpID, receiverEmpID, menuID).
		Where("is_active = ?", true).
		Where("id <> ?", exceptID)

	if submenuID == nil {
		query = query.Where("submenu_id IS NULL")
	} else {
		query = query.Where("submenu_id = ?", *submenuID)
	}

	return query.Update("is_active", false).Error
}

func (r *DelegationRepository) ActiveReceivedBy(ctx context.Context, receiverEmpID, orgID, menuID int64) ([]*delegation.Delegation, error) {
	var rows []*delegation.Delegation
	err := r.db.WithContext(ctx).
		Where("receiver_emp_id = ? AND org_id = ? AND menu_id = ? AND is_active = ?", receiverEmpID, orgID, menuID, true).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *DelegationRepository) ListBySender(ctx context.Context, senderEmpID, orgID int64) ([]*delegation.Delegation, error) {
	var rows []*delegation.Delegation
	err := r.db.WithContext(ctx).
		Where("sender_emp_id = ? AND org_id = ?", senderEmpID, orgID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *DelegationRepository) ListByReceiver(ctx context.Context, receiverEmpID, orgID int64) ([]*delegation.Delegation, error) {
	var rows []*delegation.Delegation
	err := r.db.WithContext(ctx).
		Where("receiver_emp_id = ? AND org_id = ?", receiverEmpID, orgID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}
