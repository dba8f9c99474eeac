package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"github.com/tenangdev/leave-management/internal"
	"github.com/tenangdev/leave-management/internal/leave"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaveRepository implements the leave.RepositoryAPI interface using GORM
type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.RepositoryAPI {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) CreateRequest(ctx context.Context, req *leave.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *LeaveRepository) GetRequestByID(ctx context.Context, id int64) (*leave.LeaveRequest, error) {
	var req leave.LeaveRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *LeaveRepository) RequestsForEmployees(ctx context.Context, orgID int64, empIDs []int64, status string, limit, offset int) ([]*leave.LeaveRequest, error) {
	if len(empIDs) == 0 {
		return []*leave.LeaveRequest{}, nil
	}

	query := r.db.WithContext(ctx).
		Where("org_id = ? AND emp_id IN ?", orgID, empIDs)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var requests []*leave.LeaveRequest
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&requests).Error
	return requests, err
}

func (r *LeaveRepository) Balance(ctx context.Context, empID, orgID, leaveID int64) (*leave.LeaveBalance, error) {
	var balance leave.LeaveBalance
	err := r.db.WithContext(ctx).
		Where("emp_id = ? AND org_id = ? AND leave_id = ?", empID, orgID, leaveID).
		First(&balance).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, internal.ErrBalanceNotFound
		}
		return nil, err
	}
	return &balance, nil
}

// DecideTx locks the request row up front, so concurrent decisions on the
// same request serialize at the database and the loser reads the
// already-terminal row. Transient connection failures and deadlocks get a
// small bounded retry before surfacing as Unavailable.
func (r *LeaveRepository) DecideTx(ctx context.Context, requestID int64, fn func(tx leave.TxAPI, req *leave.LeaveRequest) error) error {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(100*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := r.decideOnce(ctx, requestID, fn)
		if isTransient(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if isTransient(err) {
		return internal.NewUnavailableError("storage unavailable while deciding leave request", err)
	}
	return err
}

func (r *LeaveRepository) decideOnce(ctx context.Context, requestID int64, fn func(tx leave.TxAPI, req *leave.LeaveRequest) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req leave.LeaveRequest
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", requestID).
			First(&req).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return internal.ErrRequestNotFound
			}
			return err
		}

		return fn(&decideTx{tx: tx}, &req)
	})
}

// decideTx exposes the in-transaction operations to the workflow service.
type decideTx struct {
	tx *gorm.DB
}

// DebitBalance locks the balance row, then checks and decrements in one
// critical section. Concurrent debits for the same employee and leave
// type serialize here, which is what keeps the balance non-negative
// under racing approvals.
func (t *decideTx) DebitBalance(empID, orgID, leaveID int64, units decimal.Decimal) error {
	var balance leave.LeaveBalance
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("emp_id = ? AND org_id = ? AND leave_id = ?", empID, orgID, leaveID).
		First(&balance).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return internal.ErrBalanceNotFound
		}
		return err
	}

	if balance.RemainingUnits.LessThan(units) {
		return internal.ErrInsufficientBalance
	}

	return t.tx.Model(&leave.LeaveBalance{}).
		Where("id = ?", balance.ID).
		Updates(map[string]interface{}{
			"remaining_units": balance.RemainingUnits.Sub(units),
			"updated_at":      time.Now(),
		}).Error
}

// UpdateRequestDecision flips the status. The pending guard in the WHERE
// clause backs up the row lock: if another transaction slipped a terminal
// state in, zero rows match and the decision is reported as lost.
func (t *decideTx) UpdateRequestDecision(id int64, status string, approverEmpID int64, approverRole string, decidedAt time.Time) error {
	result := t.tx.Model(&leave.LeaveRequest{}).
		Where("id = ? AND status = ?", id, leave.StatusPending).
		Updates(map[string]interface{}{
			"status":          status,
			"approver_emp_id": approverEmpID,
			"approver_role":   approverRole,
			"decided_at":      decidedAt,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return internal.ErrDecisionConflict
	}
	return nil
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// connection exceptions (class 08), serialization failures, deadlocks
		return strings.HasPrefix(pgErr.Code, "08") || pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
