package delegation

import (
	"time"

	"github.com/tenangdev/leave-management/internal"
)

// DelegateDTO is the transport shape for creating a delegation action.
// Active=false records a deactivation: the row is still inserted so the
// log stays append-only.
type DelegateDTO struct {
	ReceiverEmpID int64      `json:"receiver_emp_id"`
	MenuID        int64      `json:"menu_id"`
	SubmenuID     *int64     `json:"submenu_id,omitempty"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	Active        bool       `json:"active"`
}

func (d DelegateDTO) Validate() error {
	if d.ReceiverEmpID <= 0 {
		return internal.NewValidationError("receiver_emp_id is required", internal.ErrCodeValidationFailed)
	}
	if d.MenuID <= 0 {
		return internal.NewValidationError("menu_id is required", internal.ErrCodeValidationFailed)
	}
	if d.StartDate.IsZero() {
		return internal.NewValidationError("start_date is required", internal.ErrCodeValidationFailed)
	}
	if d.EndDate != nil && d.EndDate.Before(d.StartDate) {
		return internal.ErrInvalidDateRange
	}
	return nil
}
