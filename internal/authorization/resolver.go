package authorization

import (
	"context"
	"log/slog"

	"github.com/tenangdev/leave-management/internal/permission"
)

type ScopeResolver interface {
	ScopeFor(ctx context.Context, empID, orgID int64, cap permission.Capability) (permission.Scope, error)
}

type HierarchyResolver interface {
	SubordinatesOf(ctx context.Context, empID, orgID int64) ([]int64, error)
}

type DelegationSource interface {
	ActiveSendersFor(ctx context.Context, receiverEmpID, orgID int64, cap permission.Capability) ([]int64, error)
}

type EmployeeDirectory interface {
	ActiveIDsByOrg(ctx context.Context, orgID int64) ([]int64, error)
}

// VisibleSet is the set of employees an actor may act on for one
// capability, split by how each entry was earned. Scope none with an
// empty set means unauthorized, not "empty but valid"; callers judge
// that via Authorized.
type VisibleSet struct {
	Scope     permission.Scope
	Own       map[int64]bool
	Delegated map[int64]bool
}

func (v VisibleSet) Contains(empID int64) bool {
	return v.Own[empID] || v.Delegated[empID]
}

// ViaDelegationOnly reports whether the actor reaches empID solely
// through a delegated grant.
func (v VisibleSet) ViaDelegationOnly(empID int64) bool {
	return v.Delegated[empID] && !v.Own[empID]
}

func (v VisibleSet) Authorized() bool {
	return v.Scope != permission.ScopeNone
}

func (v VisibleSet) Size() int {
	n := len(v.Own)
	for id := range v.Delegated {
		if !v.Own[id] {
			n++
		}
	}
	return n
}

// Resolver composes scope resolution, the subordinate closure, and the
// delegation registry into the one authorization gate. Every read or
// write over employee-scoped resources must pass through
// VisibleEmployeeSet; nothing else decides access.
type Resolver struct {
	scopes      ScopeResolver
	hierarchy   HierarchyResolver
	delegations DelegationSource
	employees   EmployeeDirectory
	logger      *slog.Logger
}

func NewResolver(scopes ScopeResolver, hierarchy HierarchyResolver, delegations DelegationSource, employees EmployeeDirectory, logger *slog.Logger) *Resolver {
	return &Resolver{
		scopes:      scopes,
		hierarchy:   hierarchy,
		delegations: delegations,
		employees:   employees,
		logger:      logger,
	}
}

func (r *Resolver) VisibleEmployeeSet(ctx context.Context, actorEmpID, orgID int64, cap permission.Capability) (VisibleSet, error) {
	scope, err := r.scopes.ScopeFor(ctx, actorEmpID, orgID, cap)
	if err != nil {
		return VisibleSet{}, err
	}

	set := VisibleSet{
		Scope:     scope,
		Own:       make(map[int64]bool),
		Delegated: make(map[int64]bool),
	}

	switch scope {
	case permission.ScopeAll:
		ids, err := r.employees.ActiveIDsByOrg(ctx, orgID)
		if err != nil {
			r.logger.Error("failed to list org employees", "error", err, "org_id", orgID)
			return VisibleSet{}, err
		}
		for _, id := range ids {
			set.Own[id] = true
		}
	case permission.ScopeTeam:
		set.Own[actorEmpID] = true
		subs, err := r.hierarchy.SubordinatesOf(ctx, actorEmpID, orgID)
		if err != nil {
			return VisibleSet{}, err
		}
		for _, id := range subs {
			set.Own[id] = true
		}
	case permission.ScopeIndividual:
		set.Own[actorEmpID] = true
	}

	// Delegated authority applies whatever the actor's own scope turned
	// out to be. Only the sender's own tree is unioned in: a delegation
	// never chains through another delegation, and the actor is never
	// counted as part of a sender's tree.
	senders, err := r.delegations.ActiveSendersFor(ctx, actorEmpID, orgID, cap)
	if err != nil {
		return VisibleSet{}, err
	}
	for _, senderID := range senders {
		if senderID != actorEmpID {
			set.Delegated[senderID] = true
		}
		subs, err := r.hierarchy.SubordinatesOf(ctx, senderID, orgID)
		if err != nil {
			return VisibleSet{}, err
		}
		for _, id := range subs {
			if id == actorEmpID {
				continue
			}
			set.Delegated[id] = true
		}
	}

	r.logger.Debug("resolved visible employee set",
		"actor_emp_id", actorEmpID,
		"org_id", orgID,
		"capability", cap.String(),
		"scope", string(scope),
		"size", set.Size())

	return set, nil
}
