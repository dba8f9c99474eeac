package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tenangdev/leave-management/internal"
	"github.com/tenangdev/leave-management/internal/permission"
)

// MenuIDLeaves is the capability id for the leave-approval surface,
// seeded by the menus migration.
const MenuIDLeaves int64 = 1

// LeavesCapability is the capability every leave operation is gated on.
var LeavesCapability = permission.Capability{MenuID: MenuIDLeaves}

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

const (
	DayPartFull = "full"
	DayPartHalf = "half"
)

const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// ApproverRoleDelegate is recorded when the approver reached the
// requester only through a delegated grant.
const ApproverRoleDelegate = "delegate"

// LeaveRequest is the sole mutable record of the workflow; pending is the
// only state a decision can act on.
type LeaveRequest struct {
	ID            int64      `json:"id" gorm:"column:id;primaryKey"`
	EmpID         int64      `json:"emp_id" gorm:"column:emp_id;not null"`
	OrgID         int64      `json:"org_id" gorm:"column:org_id;not null"`
	LeaveID       int64      `json:"leave_id" gorm:"column:leave_id;not null"`
	StartDate     time.Time  `json:"start_date" gorm:"column:start_date;type:date"`
	EndDate       time.Time  `json:"end_date" gorm:"column:end_date;type:date"`
	DayPart       string     `json:"day_part" gorm:"column:day_part"`
	Status        string     `json:"status" gorm:"column:status;default:pending"`
	ApproverEmpID *int64     `json:"approver_emp_id,omitempty" gorm:"column:approver_emp_id"`
	ApproverRole  *string    `json:"approver_role,omitempty" gorm:"column:approver_role"`
	DecidedAt     *time.Time `json:"decided_at,omitempty" gorm:"column:decided_at"`
	CreatedAt     time.Time  `json:"created_at" gorm:"column:created_at"`
	UpdatedAt     time.Time  `json:"updated_at" gorm:"column:updated_at"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

func (r *LeaveRequest) CanBeDecided() bool {
	return r.Status == StatusPending
}

// Units returns the ledger cost of the request in half-day units: a full
// day costs 2, a half day costs 1, over the inclusive day count.
func (r *LeaveRequest) Units() (decimal.Decimal, error) {
	days, err := InclusiveDays(r.StartDate, r.EndDate)
	if err != nil {
		return decimal.Zero, err
	}
	perDay := int64(1)
	if r.DayPart == DayPartFull {
		perDay = 2
	}
	return decimal.NewFromInt(int64(days) * perDay), nil
}

// InclusiveDays counts calendar days from start through end. Dates are
// normalized to UTC midnights first so the count survives DST shifts and
// stray time-of-day components.
func InclusiveDays(start, end time.Time) (int, error) {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if endDay.Before(startDay) {
		return 0, internal.ErrInvalidDateRange
	}
	return int(endDay.Sub(startDay).Hours()/24) + 1, nil
}

// LeaveBalance is the contended ledger row: mutated only inside a decide
// transaction, never allowed below zero.
type LeaveBalance struct {
	ID             int64           `json:"id" gorm:"column:id;primaryKey"`
	EmpID          int64           `json:"emp_id" gorm:"column:emp_id;not null"`
	OrgID          int64           `json:"org_id" gorm:"column:org_id;not null"`
	LeaveID        int64           `json:"leave_id" gorm:"column:leave_id;not null"`
	RemainingUnits decimal.Decimal `json:"remaining_units" gorm:"column:remaining_units;type:numeric"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

// LeaveType is a generic configurable value owned by org admin.
type LeaveType struct {
	ID       int64  `json:"id" gorm:"column:id;primaryKey"`
	OrgID    int64  `json:"org_id" gorm:"column:org_id;not null"`
	Name     string `json:"name" gorm:"column:name"`
	IsActive bool   `json:"is_active" gorm:"column:is_active"`
}

func (LeaveType) TableName() string {
	return "leave_types"
}

// TxAPI is the slice of repository operations available inside one decide
// transaction.
type TxAPI interface {
	DebitBalance(empID, orgID, leaveID int64, units decimal.Decimal) error
	UpdateRequestDecision(id int64, status string, approverEmpID int64, approverRole string, decidedAt time.Time) error
}

type RepositoryAPI interface {
	CreateRequest(ctx context.Context, req *LeaveRequest) error
	GetRequestByID(ctx context.Context, id int64) (*LeaveRequest, error)
	RequestsForEmployees(ctx context.Context, orgID int64, empIDs []int64, status string, limit, offset int) ([]*LeaveRequest, error)
	Balance(ctx context.Context, empID, orgID, leaveID int64) (*LeaveBalance, error)
	// DecideTx loads and row-locks the request, then runs fn inside one
	// database transaction. Any error from fn rolls the whole
	// transaction back.
	DecideTx(ctx context.Context, requestID int64, fn func(tx TxAPI, req *LeaveRequest) error) error
}
