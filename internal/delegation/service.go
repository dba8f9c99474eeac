package delegation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tenangdev/leave-management/internal"
	"github.com/tenangdev/leave-management/internal/core/events"
	"github.com/tenangdev/leave-management/internal/permission"
)

type ScopeResolver interface {
	ScopeFor(ctx context.Context, empID, orgID int64, cap permission.Capability) (permission.Scope, error)
}

type EmployeeDirectory interface {
	ExistsInOrg(ctx context.Context, empID, orgID int64) (bool, error)
}

// Service records delegation actions and serves the derived active view.
type Service struct {
	repo      RepositoryAPI
	scopes    ScopeResolver
	employees EmployeeDirectory
	events    *events.EventBus
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo RepositoryAPI, scopes ScopeResolver, employees EmployeeDirectory, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		scopes:    scopes,
		employees: employees,
		events:    bus,
		logger:    logger,
		now:       time.Now,
	}
}

// Delegate records a delegation action for senderEmpID. Delegation hands
// over scope breadth, not the underlying capability: the receiver must
// already hold at least individual scope for it, and the sender must hold
// something to hand over.
func (s *Service) Delegate(ctx context.Context, senderEmpID, orgID int64, dto DelegateDTO) (*Delegation, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("delegation validation failed", "error", err, "sender_emp_id", senderEmpID)
		return nil, err
	}

	exists, err := s.employees.ExistsInOrg(ctx, dto.ReceiverEmpID, orgID)
	if err != nil {
		s.logger.Error("failed to look up receiver", "error", err, "receiver_emp_id", dto.ReceiverEmpID)
		return nil, err
	}
	if !exists {
		return nil, internal.ErrReceiverNotFound
	}

	cap := permission.Capability{MenuID: dto.MenuID, SubmenuID: dto.SubmenuID}

	receiverScope, err := s.scopes.ScopeFor(ctx, dto.ReceiverEmpID, orgID, cap)
	if err != nil {
		return nil, err
	}
	if !receiverScope.AtLeast(permission.ScopeIndividual) {
		s.logger.Warn("delegation refused: receiver lacks capability",
			"receiver_emp_id", dto.ReceiverEmpID,
			"capability", cap.String())
		return nil, internal.ErrReceiverLacksCapability
	}

	senderScope, err := s.scopes.ScopeFor(ctx, senderEmpID, orgID, cap)
	if err != nil {
		return nil, err
	}
	if senderScope == permission.ScopeNone {
		s.logger.Warn("delegation refused: sender lacks capability",
			"sender_emp_id", senderEmpID,
			"capability", cap.String())
		return nil, internal.ErrSenderLacksCapability
	}

	record := &Delegation{
		ID:            uuid.NewString(),
		OrgID:         orgID,
		SenderEmpID:   senderEmpID,
		ReceiverEmpID: dto.ReceiverEmpID,
		MenuID:        dto.MenuID,
		SubmenuID:     dto.SubmenuID,
		StartDate:     dto.StartDate,
		EndDate:       dto.EndDate,
		IsActive:      dto.Active,
		CreatedAt:     s.now(),
	}

	if err := s.repo.Insert(ctx, record); err != nil {
		s.logger.Error("failed to insert delegation", "error", err, "sender_emp_id", senderEmpID)
		return nil, err
	}

	// A deactivation action also sweeps the other active rows for the
	// same tuple, leaving the full history behind.
	if !dto.Active {
		if err := s.repo.DeactivateMatching(ctx, orgID, senderEmpID, dto.ReceiverEmpID, dto.MenuID, dto.SubmenuID, record.ID); err != nil {
			s.logger.Error("failed to deactivate matching delegations", "error", err, "delegation_id", record.ID)
			return nil, err
		}
	}

	s.logger.Info("delegation recorded",
		"delegation_id", record.ID,
		"sender_emp_id", senderEmpID,
		"receiver_emp_id", dto.ReceiverEmpID,
		"capability", cap.String(),
		"active", dto.Active)

	if s.events != nil {
		_ = s.events.Publish(ctx, events.NewDelegationCreatedEvent(record.ID, senderEmpID, dto.ReceiverEmpID, orgID, dto.MenuID, dto.Active))
	}

	return record, nil
}

// ActiveSendersFor returns the senders whose authority the receiver may
// currently exercise for the capability. The raw table holds the full
// action history; this is the latest-action-per-tuple view, so an old
// active row that was later deactivated never resurfaces.
func (s *Service) ActiveSendersFor(ctx context.Context, receiverEmpID, orgID int64, cap permission.Capability) ([]int64, error) {
	rows, err := s.repo.ActiveReceivedBy(ctx, receiverEmpID, orgID, cap.MenuID)
	if err != nil {
		s.logger.Error("failed to fetch received delegations", "error", err, "receiver_emp_id", receiverEmpID)
		return nil, err
	}

	now := s.now()
	senders := make(map[int64]bool)
	var result []int64
	for _, row := range rows {
		if !row.ActiveOn(now) || !row.CoversSubmenu(cap.SubmenuID) {
			continue
		}
		if !senders[row.SenderEmpID] {
			senders[row.SenderEmpID] = true
			result = append(result, row.SenderEmpID)
		}
	}
	return result, nil
}

func (s *Service) ListSent(ctx context.Context, senderEmpID, orgID int64) ([]*Delegation, error) {
	return s.repo.ListBySender(ctx, senderEmpID, orgID)
}

func (s *Service) ListReceived(ctx context.Context, receiverEmpID, orgID int64) ([]*Delegation, error) {
	return s.repo.ListByReceiver(ctx, receiverEmpID, orgID)
}
