package delegation

import (
	"context"
	"time"
)

// Delegation is one grant of a sender's team-scope authority to a
// receiver for a single capability. The table is an append-only log:
// every Delegate call inserts a row, and "current state" is always a
// derived view over the active rows, never an in-place update.
type Delegation struct {
	ID            string     `json:"id" gorm:"column:id;primaryKey"`
	OrgID         int64      `json:"org_id" gorm:"column:org_id;not null"`
	SenderEmpID   int64      `json:"sender_emp_id" gorm:"column:sender_emp_id;not null"`
	ReceiverEmpID int64      `json:"receiver_emp_id" gorm:"column:receiver_emp_id;not null"`
	MenuID        int64      `json:"menu_id" gorm:"column:menu_id;not null"`
	SubmenuID     *int64     `json:"submenu_id,omitempty" gorm:"column:submenu_id"`
	StartDate     time.Time  `json:"start_date" gorm:"column:start_date"`
	EndDate       *time.Time `json:"end_date,omitempty" gorm:"column:end_date"`
	IsActive      bool       `json:"is_active" gorm:"column:is_active"`
	CreatedAt     time.Time  `json:"created_at" gorm:"column:created_at"`
}

func (Delegation) TableName() string {
	return "delegations"
}

// ActiveOn reports whether the grant is exercisable at t: flagged active
// and inside its date window. EndDate nil means open-ended.
func (d *Delegation) ActiveOn(t time.Time) bool {
	if !d.IsActive {
		return false
	}
	if t.Before(d.StartDate) {
		return false
	}
	if d.EndDate != nil && t.After(*d.EndDate) {
		return false
	}
	return true
}

// CoversSubmenu applies the optional-equal rule: a row with NULL submenu
// covers every submenu of its menu.
func (d *Delegation) CoversSubmenu(submenuID *int64) bool {
	if d.SubmenuID == nil || submenuID == nil {
		return true
	}
	return *d.SubmenuID == *submenuID
}

type RepositoryAPI interface {
	Insert(ctx context.Context, d *Delegation) error
	// DeactivateMatching marks every active row for the same
	// (sender, receiver, menu, submenu) tuple inactive, except the row
	// identified by exceptID.
	DeactivateMatching(ctx context.Context, orgID, senderEmpID, receiverEmpID, menuID int64, submenuID *int64, exceptID string) error
	ActiveReceivedBy(ctx context.Context, receiverEmpID, orgID, menuID int64) ([]*Delegation, error)
	ListBySender(ctx context.Context, senderEmpID, orgID int64) ([]*Delegation, error)
	ListByReceiver(ctx context.Context, receiverEmpID, orgID int64) ([]*Delegation, error)
}
