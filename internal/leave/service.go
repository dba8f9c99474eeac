package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/tenangdev/leave-management/internal"
	"github.com/tenangdev/leave-management/internal/authorization"
	"github.com/tenangdev/leave-management/internal/core/events"
	"github.com/tenangdev/leave-management/internal/permission"
)

type Authorizer interface {
	VisibleEmployeeSet(ctx context.Context, actorEmpID, orgID int64, cap permission.Capability) (authorization.VisibleSet, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Service drives the approval workflow and the ledger behind it.
type Service struct {
	repo   RepositoryAPI
	authz  Authorizer
	events EventPublisher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, authz Authorizer, events EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		authz:  authz,
		events: events,
		logger: logger,
	}
}

// SubmitRequest creates a pending request for the actor. The balance is
// only estimated here; a request that passes this check can still fail
// at decide time if concurrent approvals drained the balance.
func (s *Service) SubmitRequest(ctx context.Context, actor *internal.Actor, dto CreateRequestDTO) (*LeaveRequest, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("leave request validation failed", "error", err, "emp_id", actor.EmpID)
		return nil, err
	}

	req := &LeaveRequest{
		EmpID:     actor.EmpID,
		OrgID:     actor.OrgID,
		LeaveID:   dto.LeaveID,
		StartDate: dto.StartDate,
		EndDate:   dto.EndDate,
		DayPart:   dto.DayPart,
		Status:    StatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	units, err := req.Units()
	if err != nil {
		return nil, err
	}

	balance, err := s.repo.Balance(ctx, actor.EmpID, actor.OrgID, dto.LeaveID)
	if err != nil {
		s.logger.Error("failed to estimate balance", "error", err, "emp_id", actor.EmpID, "leave_id", dto.LeaveID)
		return nil, err
	}
	if balance.RemainingUnits.LessThan(units) {
		s.logger.Warn("leave request refused: balance estimate too low",
			"emp_id", actor.EmpID,
			"leave_id", dto.LeaveID,
			"requested_units", units.String(),
			"remaining_units", balance.RemainingUnits.String())
		return nil, internal.ErrInsufficientBalance
	}

	if err := s.repo.CreateRequest(ctx, req); err != nil {
		s.logger.Error("failed to create leave request", "error", err, "emp_id", actor.EmpID)
		return nil, err
	}

	s.logger.Info("leave request submitted",
		"request_id", req.ID,
		"emp_id", actor.EmpID,
		"leave_id", dto.LeaveID,
		"units", units.String())

	return req, nil
}

// Decide transitions a pending request to accepted or rejected. The
// request row is locked for the duration of the transaction, so of two
// concurrent deciders one commits and the other observes the terminal
// state. An accept debits the ledger in the same transaction as the
// status flip: the two are never observable apart.
func (s *Service) Decide(ctx context.Context, actor *internal.Actor, requestID int64, dto DecideDTO) (*LeaveRequest, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	var decided *LeaveRequest
	err := s.repo.DecideTx(ctx, requestID, func(tx TxAPI, req *LeaveRequest) error {
		if !req.CanBeDecided() {
			return internal.ErrAlreadyDecided
		}

		visible, err := s.authz.VisibleEmployeeSet(ctx, actor.EmpID, req.OrgID, LeavesCapability)
		if err != nil {
			return err
		}
		if !visible.Authorized() || !visible.Contains(req.EmpID) {
			s.logger.Warn("decision refused: requester outside visible set",
				"actor_emp_id", actor.EmpID,
				"request_id", requestID,
				"request_emp_id", req.EmpID,
				"scope", string(visible.Scope))
			return internal.ErrUnauthorizedAccess
		}

		approverRole := string(visible.Scope)
		if visible.ViaDelegationOnly(req.EmpID) {
			approverRole = ApproverRoleDelegate
		}

		now := time.Now()
		status := StatusRejected
		if dto.Decision == DecisionAccept {
			status = StatusAccepted
			units, err := req.Units()
			if err != nil {
				return err
			}
			if err := tx.DebitBalance(req.EmpID, req.OrgID, req.LeaveID, units); err != nil {
				return err
			}
		}

		if err := tx.UpdateRequestDecision(req.ID, status, actor.EmpID, approverRole, now); err != nil {
			return err
		}

		req.Status = status
		req.ApproverEmpID = &actor.EmpID
		req.ApproverRole = &approverRole
		req.DecidedAt = &now
		decided = req
		return nil
	})
	if err != nil {
		if _, ok := internal.IsAppError(err); !ok {
			s.logger.Error("decision transaction failed", "error", err, "request_id", requestID)
		}
		return nil, err
	}

	s.logger.Info("leave request decided",
		"request_id", decided.ID,
		"emp_id", decided.EmpID,
		"status", decided.Status,
		"approver_emp_id", actor.EmpID)

	if s.events != nil {
		_ = s.events.Publish(ctx, events.NewLeaveDecidedEvent(decided.ID, decided.EmpID, decided.OrgID, actor.EmpID, decided.Status))
	}

	return decided, nil
}

// Balance reads the ledger for an employee the actor may see. Reading
// your own balance needs no scope at all.
func (s *Service) Balance(ctx context.Context, actor *internal.Actor, empID, leaveID int64) (*LeaveBalance, error) {
	if empID != actor.EmpID {
		visible, err := s.authz.VisibleEmployeeSet(ctx, actor.EmpID, actor.OrgID, LeavesCapability)
		if err != nil {
			return nil, err
		}
		if !visible.Authorized() || !visible.Contains(empID) {
			return nil, internal.ErrUnauthorizedAccess
		}
	}
	return s.repo.Balance(ctx, empID, actor.OrgID, leaveID)
}

// VisibleRequests lists requests of every employee in the actor's
// visible set, optionally filtered by status.
func (s *Service) VisibleRequests(ctx context.Context, actor *internal.Actor, status string, limit, offset int) ([]*LeaveRequest, error) {
	visible, err := s.authz.VisibleEmployeeSet(ctx, actor.EmpID, actor.OrgID, LeavesCapability)
	if err != nil {
		return nil, err
	}
	if !visible.Authorized() {
		return nil, internal.ErrUnauthorizedAccess
	}

	empIDs := make([]int64, 0, visible.Size())
	for id := range visible.Own {
		empIDs = append(empIDs, id)
	}
	for id := range visible.Delegated {
		if !visible.Own[id] {
			empIDs = append(empIDs, id)
		}
	}

	return s.repo.RequestsForEmployees(ctx, actor.OrgID, empIDs, status, limit, offset)
}
