package permission_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tenangdev/leave-management/internal/permission"
)

// Mock permission store for testing
type mockPermissionStore struct {
	rolesByEmp map[int64][]int64
	rows       []permission.MenuPermission
	rolesErr   error
	rowsErr    error
}

func (m *mockPermissionStore) RoleIDsFor(ctx context.Context, empID, orgID int64) ([]int64, error) {
	if m.rolesErr != nil {
		return nil, m.rolesErr
	}
	return m.rolesByEmp[empID], nil
}

func (m *mockPermissionStore) PermissionsForRoles(ctx context.Context, roleIDs []int64, menuID int64) ([]permission.MenuPermission, error) {
	if m.rowsErr != nil {
		return nil, m.rowsErr
	}
	roleSet := make(map[int64]bool, len(roleIDs))
	for _, id := range roleIDs {
		roleSet[id] = true
	}
	var out []permission.MenuPermission
	for _, row := range m.rows {
		if roleSet[row.RoleID] && row.MenuID == menuID {
			out = append(out, row)
		}
	}
	return out, nil
}

func submenuID(v int64) *int64 { return &v }

var _ = Describe("PermissionScopeResolver", func() {
	var (
		resolver *permission.Resolver
		store    *mockPermissionStore
		ctx      context.Context
		leaves   permission.Capability
	)

	BeforeEach(func() {
		store = &mockPermissionStore{rolesByEmp: make(map[int64][]int64)}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver = permission.NewResolver(store, logger)
		ctx = context.Background()
		leaves = permission.Capability{MenuID: 1}
	})

	Describe("ScopeFor", func() {
		Context("when the employee has no roles", func() {
			It("should return none", func() {
				scope, err := resolver.ScopeFor(ctx, 7, 10, leaves)

				Expect(err).ToNot(HaveOccurred())
				Expect(scope).To(Equal(permission.ScopeNone))
			})
		})

		Context("when no row matches the capability", func() {
			It("should return none", func() {
				store.rolesByEmp[7] = []int64{1}
				store.rows = []permission.MenuPermission{
					{RoleID: 1, MenuID: 2, TeamData: true},
				}

				scope, err := resolver.ScopeFor(ctx, 7, 10, leaves)

				Expect(err).ToNot(HaveOccurred())
				Expect(scope).To(Equal(permission.ScopeNone))
			})
		})

		Context("when rows match but grant no flags", func() {
			It("should return none even though a grant row exists", func() {
				store.rolesByEmp[7] = []int64{1}
				store.rows = []permission.MenuPermission{
					{RoleID: 1, MenuID: 1},
				}

				scope, err := resolver.ScopeFor(ctx, 7, 10, leaves)

				Expect(err).ToNot(HaveOccurred())
				Expect(scope).To(Equal(permission.ScopeNone))
			})
		})

		Context("with a single role", func() {
			It("should resolve individual scope", func() {
				store.rolesByEmp[7] = []int64{1}
				store.rows = []permission.MenuPermission{
					{RoleID: 1, MenuID: 1, IndividualData: true},
				}

				scope, err := resolver.ScopeFor(ctx, 7, 10, leaves)

				Expect(err).ToNot(HaveOccurred())
				Expect(scope).To(Equal(permission.ScopeIndividual))
			})

			It("should prefer the widest flag on a single row", func() {
				store.rolesByEmp[7] = []int64{1}
				store.rows = []permission.MenuPermission{
					{RoleID: 1, MenuID: 1, TeamData: true, IndividualData: true},
				}

				scope, err := resolver.ScopeFor(ctx, 7, 10, leaves)

				Expect(err).ToNot(HaveOccurred())
				Expect(scope).To(Equal(permission.ScopeTeam))
			})
		})

		Context("with multiple roles", func() {
			It("should take the union across roles and return the widest scope", func() {
				store.rolesByEmp[7] = []int64{1, 2}
				store.rows = []permission.MenuPermission{
					{RoleID: 1, MenuID: 1, IndividualData: true},
					{RoleID: 2, MenuID: 1, AllData: true},
				}

				scope, err := resolver.ScopeFor(ctx, 7, 10, leaves)

				Expect(err).ToNot(HaveOccurred())
				Expect(scope).To(Equal(permission.ScopeAll))
			})

			It("should never shrink below what any single role grants", func() {
				store.rolesByEmp[7] = []int64{1, 2}
				store.rows = []permission.MenuPermission{
					{RoleID: 1, MenuID: 1, TeamData: true},
					{RoleID: 2, MenuID: 1},
				}

				scope, err := resolver.ScopeFor(ctx, 7, 10, leaves)

				Expect(err).ToNot(HaveOccurred())
				Expect(scope).To(Equal(permission.ScopeTeam))
			})
		})

		Context("submenu matching", func() {
			It("should treat a NULL-submenu row as a whole-menu grant", func() {
				store.rolesByEmp[7] = []int64{1}
				store.rows = []permission.MenuPermission{
					{RoleID: 1, MenuID: 2, TeamData: true},
				}

				scope, err := resolver.ScopeFor(ctx, 7, 10, permission.Capability{MenuID: 2, SubmenuID: submenuID(1)})

				Expect(err).ToNot(HaveOccurred())
				Expect(scope).To(Equal(permission.ScopeTeam))
			})

			It("should not match a row scoped to a different submenu", func() {
				store.rolesByEmp[7] = []int64{1}
				store.rows = []permission.MenuPermission{
					{RoleID: 1, MenuID: 2, SubmenuID: submenuID(5), AllData: true},
				}

				scope, err := resolver.ScopeFor(ctx, 7, 10, permission.Capability{MenuID: 2, SubmenuID: submenuID(1)})

				Expect(err).ToNot(HaveOccurred())
				Expect(scope).To(Equal(permission.ScopeNone))
			})

			It("should match submenu-scoped rows when the query names no submenu", func() {
				store.rolesByEmp[7] = []int64{1}
				store.rows = []permission.MenuPermission{
					{RoleID: 1, MenuID: 2, SubmenuID: submenuID(5), IndividualData: true},
				}

				scope, err := resolver.ScopeFor(ctx, 7, 10, permission.Capability{MenuID: 2})

				Expect(err).ToNot(HaveOccurred())
				Expect(scope).To(Equal(permission.ScopeIndividual))
			})
		})

		Context("when the store fails", func() {
			It("should return none with the role lookup error", func() {
				store.rolesErr = errors.New("timeout")

				scope, err := resolver.ScopeFor(ctx, 7, 10, leaves)

				Expect(err).To(HaveOccurred())
				Expect(scope).To(Equal(permission.ScopeNone))
			})

			It("should return none with the permission lookup error", func() {
				store.rolesByEmp[7] = []int64{1}
				store.rowsErr = errors.New("timeout")

				scope, err := resolver.ScopeFor(ctx, 7, 10, leaves)

				Expect(err).To(HaveOccurred())
				Expect(scope).To(Equal(permission.ScopeNone))
			})
		})
	})

	Describe("Scope.AtLeast", func() {
		It("should order scopes all > team > individual > none", func() {
			Expect(permission.ScopeAll.AtLeast(permission.ScopeTeam)).To(BeTrue())
			Expect(permission.ScopeTeam.AtLeast(permission.ScopeIndividual)).To(BeTrue())
			Expect(permission.ScopeIndividual.AtLeast(permission.ScopeNone)).To(BeTrue())
			Expect(permission.ScopeNone.AtLeast(permission.ScopeIndividual)).To(BeFalse())
			Expect(permission.ScopeIndividual.AtLeast(permission.ScopeTeam)).To(BeFalse())
		})
	})
})
