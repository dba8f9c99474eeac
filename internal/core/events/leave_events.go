package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	LeaveDecidedEventType      = "leave.decided"
	DelegationCreatedEventType = "delegation.created"
)

// NewLeaveDecidedEvent is published after a decision transaction commits,
// so listeners (notifications, audit) only ever see durable outcomes.
func NewLeaveDecidedEvent(requestID, empID, orgID, approverEmpID int64, status string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      LeaveDecidedEventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"request_id":      requestID,
			"emp_id":          empID,
			"org_id":          orgID,
			"approver_emp_id": approverEmpID,
			"status":          status,
		},
	}
}

func NewDelegationCreatedEvent(delegationID string, senderEmpID, receiverEmpID, orgID, menuID int64, active bool) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      DelegationCreatedEventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"delegation_id":   delegationID,
			"sender_emp_id":   senderEmpID,
			"receiver_emp_id": receiverEmpID,
			"org_id":          orgID,
			"menu_id":         menuID,
			"active":          active,
		},
	}
}
