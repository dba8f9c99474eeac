package leave

import (
	"time"

	"github.com/tenangdev/leave-management/internal"
)

// CreateRequestDTO is the submission payload. Requests land in pending;
// the authoritative balance check happens only at decide time.
type CreateRequestDTO struct {
	LeaveID   int64     `json:"leave_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	DayPart   string    `json:"day_part"`
}

func (d CreateRequestDTO) Validate() error {
	if d.LeaveID <= 0 {
		return internal.NewValidationError("leave_id is required", internal.ErrCodeValidationFailed)
	}
	if d.StartDate.IsZero() || d.EndDate.IsZero() {
		return internal.NewValidationError("start_date and end_date are required", internal.ErrCodeValidationFailed)
	}
	if _, err := InclusiveDays(d.StartDate, d.EndDate); err != nil {
		return err
	}
	if d.DayPart != DayPartFull && d.DayPart != DayPartHalf {
		return internal.NewValidationError("day_part must be either 'full' or 'half'", internal.ErrCodeValidationFailed)
	}
	return nil
}

// DecideDTO carries an approver's verdict on a pending request.
type DecideDTO struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

func (d DecideDTO) Validate() error {
	if d.Decision != DecisionAccept && d.Decision != DecisionReject {
		return internal.NewValidationError("decision must be either 'accept' or 'reject'", internal.ErrCodeInvalidDecision)
	}
	return nil
}
