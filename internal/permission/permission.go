package permission

import (
	"context"
	"fmt"
	"log/slog"
)

// Scope is the breadth of employees whose records an actor may act on.
type Scope string

const (
	ScopeNone       Scope = "none"
	ScopeIndividual Scope = "individual"
	ScopeTeam       Scope = "team"
	ScopeAll        Scope = "all"
)

var scopeRank = map[Scope]int{
	ScopeNone:       0,
	ScopeIndividual: 1,
	ScopeTeam:       2,
	ScopeAll:        3,
}

// AtLeast reports whether s grants at least as much breadth as other.
func (s Scope) AtLeast(other Scope) bool {
	return scopeRank[s] >= scopeRank[other]
}

// Capability identifies one permission unit, e.g. the Leaves menu or a
// Timesheets submenu.
type Capability struct {
	MenuID    int64
	SubmenuID *int64
}

func (c Capability) String() string {
	if c.SubmenuID != nil {
		return fmt.Sprintf("menu=%d/submenu=%d", c.MenuID, *c.SubmenuID)
	}
	return fmt.Sprintf("menu=%d", c.MenuID)
}

// MenuPermission is one role's grant row for a capability. Owned by the
// role-admin subsystem; read-only here.
type MenuPermission struct {
	RoleID         int64  `gorm:"column:role_id"`
	MenuID         int64  `gorm:"column:menu_id"`
	SubmenuID      *int64 `gorm:"column:submenu_id"`
	AllData        bool   `gorm:"column:all_data"`
	TeamData       bool   `gorm:"column:team_data"`
	IndividualData bool   `gorm:"column:individual_data"`
}

func (MenuPermission) TableName() string {
	return "menu_permissions"
}

// Matches applies the optional-equal submenu rule: a row with NULL
// submenu is a whole-menu grant and matches any submenu query, and a
// query without a submenu matches every row of the menu.
func (p MenuPermission) Matches(cap Capability) bool {
	if p.MenuID != cap.MenuID {
		return false
	}
	if p.SubmenuID == nil || cap.SubmenuID == nil {
		return true
	}
	return *p.SubmenuID == *cap.SubmenuID
}

type Store interface {
	RoleIDsFor(ctx context.Context, empID, orgID int64) ([]int64, error)
	PermissionsForRoles(ctx context.Context, roleIDs []int64, menuID int64) ([]MenuPermission, error)
}

// Resolver aggregates an employee's role permission rows into a single
// scope for a capability.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

func NewResolver(store Store, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// ScopeFor ORs the flags of every matching row across every role the
// employee holds, then picks the widest scope: all > team > individual >
// none. An employee with several roles is never granted less than their
// union implies.
func (r *Resolver) ScopeFor(ctx context.Context, empID, orgID int64, cap Capability) (Scope, error) {
	roleIDs, err := r.store.RoleIDsFor(ctx, empID, orgID)
	if err != nil {
		r.logger.Error("failed to fetch role assignments", "error", err, "emp_id", empID, "org_id", orgID)
		return ScopeNone, err
	}
	if len(roleIDs) == 0 {
		return ScopeNone, nil
	}

	rows, err := r.store.PermissionsForRoles(ctx, roleIDs, cap.MenuID)
	if err != nil {
		r.logger.Error("failed to fetch menu permissions", "error", err, "emp_id", empID, "capability", cap.String())
		return ScopeNone, err
	}

	var allData, teamData, individualData bool
	for _, row := range rows {
		if !row.Matches(cap) {
			continue
		}
		allData = allData || row.AllData
		teamData = teamData || row.TeamData
		individualData = individualData || row.IndividualData
	}

	switch {
	case allData:
		return ScopeAll, nil
	case teamData:
		return ScopeTeam, nil
	case individualData:
		return ScopeIndividual, nil
	default:
		return ScopeNone, nil
	}
}
