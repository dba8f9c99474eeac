package authorization_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tenangdev/leave-management/internal/authorization"
	"github.com/tenangdev/leave-management/internal/permission"
)

// Mock scope resolver for testing
type mockScopeResolver struct {
	scopes map[int64]permission.Scope
	err    error
}

func (m *mockScopeResolver) ScopeFor(ctx context.Context, empID, orgID int64, cap permission.Capability) (permission.Scope, error) {
	if m.err != nil {
		return permission.ScopeNone, m.err
	}
	if scope, ok := m.scopes[empID]; ok {
		return scope, nil
	}
	return permission.ScopeNone, nil
}

// Mock hierarchy resolver for testing
type mockHierarchyResolver struct {
	subordinates map[int64][]int64
	err          error
}

func (m *mockHierarchyResolver) SubordinatesOf(ctx context.Context, empID, orgID int64) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.subordinates[empID], nil
}

// Mock delegation source for testing
type mockDelegationSource struct {
	sendersByReceiver map[int64][]int64
	err               error
}

func (m *mockDelegationSource) ActiveSendersFor(ctx context.Context, receiverEmpID, orgID int64, cap permission.Capability) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.sendersByReceiver[receiverEmpID], nil
}

// Mock employee directory for testing
type mockEmployeeDirectory struct {
	activeIDs []int64
	err       error
}

func (m *mockEmployeeDirectory) ActiveIDsByOrg(ctx context.Context, orgID int64) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.activeIDs, nil
}

var _ = Describe("AuthorizationResolver", func() {
	var (
		resolver    *authorization.Resolver
		scopes      *mockScopeResolver
		tree        *mockHierarchyResolver
		delegations *mockDelegationSource
		directory   *mockEmployeeDirectory
		ctx         context.Context
		leavesCap   permission.Capability
	)

	BeforeEach(func() {
		scopes = &mockScopeResolver{scopes: make(map[int64]permission.Scope)}
		tree = &mockHierarchyResolver{subordinates: make(map[int64][]int64)}
		delegations = &mockDelegationSource{sendersByReceiver: make(map[int64][]int64)}
		directory = &mockEmployeeDirectory{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver = authorization.NewResolver(scopes, tree, delegations, directory, logger)
		ctx = context.Background()
		leavesCap = permission.Capability{MenuID: 1}
	})

	Describe("VisibleEmployeeSet", func() {
		Context("with all scope", func() {
			It("should contain every active employee in the organization", func() {
				scopes.scopes[1] = permission.ScopeAll
				directory.activeIDs = []int64{1, 2, 3, 4, 5}

				set, err := resolver.VisibleEmployeeSet(ctx, 1, 10, leavesCap)

				Expect(err).ToNot(HaveOccurred())
				Expect(set.Authorized()).To(BeTrue())
				Expect(set.Size()).To(Equal(5))
				Expect(set.Contains(5)).To(BeTrue())
			})
		})

		Context("with team scope", func() {
			It("should contain the actor plus their subordinate closure", func() {
				scopes.scopes[2] = permission.ScopeTeam
				tree.subordinates[2] = []int64{3, 4}

				set, err := resolver.VisibleEmployeeSet(ctx, 2, 10, leavesCap)

				Expect(err).ToNot(HaveOccurred())
				Expect(set.Contains(2)).To(BeTrue())
				Expect(set.Contains(3)).To(BeTrue())
				Expect(set.Contains(4)).To(BeTrue())
				Expect(set.Contains(5)).To(BeFalse())
				Expect(set.Size()).To(Equal(3))
			})
		})

		Context("with individual scope", func() {
			It("should contain only the actor", func() {
				scopes.scopes[3] = permission.ScopeIndividual

				set, err := resolver.VisibleEmployeeSet(ctx, 3, 10, leavesCap)

				Expect(err).ToNot(HaveOccurred())
				Expect(set.Contains(3)).To(BeTrue())
				Expect(set.Size()).To(Equal(1))
			})
		})

		Context("with no scope", func() {
			It("should be empty and report unauthorized", func() {
				set, err := resolver.VisibleEmployeeSet(ctx, 9, 10, leavesCap)

				Expect(err).ToNot(HaveOccurred())
				Expect(set.Authorized()).To(BeFalse())
				Expect(set.Size()).To(Equal(0))
			})
		})

		Context("with a received delegation", func() {
			It("should union the sender and the sender's subtree into the delegated set", func() {
				scopes.scopes[5] = permission.ScopeIndividual
				delegations.sendersByReceiver[5] = []int64{2}
				tree.subordinates[2] = []int64{3, 4}

				set, err := resolver.VisibleEmployeeSet(ctx, 5, 10, leavesCap)

				Expect(err).ToNot(HaveOccurred())
				Expect(set.Contains(5)).To(BeTrue())
				Expect(set.Contains(2)).To(BeTrue())
				Expect(set.Contains(3)).To(BeTrue())
				Expect(set.Contains(4)).To(BeTrue())
				Expect(set.ViaDelegationOnly(3)).To(BeTrue())
				Expect(set.ViaDelegationOnly(5)).To(BeFalse())
			})

			It("should exclude the actor from the sender's tree", func() {
				// The receiver is inside the sender's own subtree.
				scopes.scopes[3] = permission.ScopeIndividual
				delegations.sendersByReceiver[3] = []int64{2}
				tree.subordinates[2] = []int64{3, 4}

				set, err := resolver.VisibleEmployeeSet(ctx, 3, 10, leavesCap)

				Expect(err).ToNot(HaveOccurred())
				Expect(set.ViaDelegationOnly(3)).To(BeFalse())
				Expect(set.Contains(3)).To(BeTrue())
				Expect(set.Contains(4)).To(BeTrue())
			})

			It("should not chain through the sender's own received delegations", func() {
				// 2 delegated to 5, and 8 delegated to 2. Employee 5 gains
				// nothing from 8: only 2's own tree is unioned in.
				scopes.scopes[5] = permission.ScopeIndividual
				delegations.sendersByReceiver[5] = []int64{2}
				delegations.sendersByReceiver[2] = []int64{8}
				tree.subordinates[2] = []int64{3}
				tree.subordinates[8] = []int64{9}

				set, err := resolver.VisibleEmployeeSet(ctx, 5, 10, leavesCap)

				Expect(err).ToNot(HaveOccurred())
				Expect(set.Contains(3)).To(BeTrue())
				Expect(set.Contains(8)).To(BeFalse())
				Expect(set.Contains(9)).To(BeFalse())
			})

			It("should keep counting an employee reachable both ways once", func() {
				scopes.scopes[2] = permission.ScopeTeam
				tree.subordinates[2] = []int64{3}
				delegations.sendersByReceiver[2] = []int64{6}
				tree.subordinates[6] = []int64{3, 7}

				set, err := resolver.VisibleEmployeeSet(ctx, 2, 10, leavesCap)

				Expect(err).ToNot(HaveOccurred())
				Expect(set.Size()).To(Equal(4)) // 2 and 3 own; 6 and 7 delegated; 3 reachable both ways
				Expect(set.ViaDelegationOnly(3)).To(BeFalse())
				Expect(set.ViaDelegationOnly(7)).To(BeTrue())
			})

			It("should still fill the delegated set when the actor's own scope is none", func() {
				delegations.sendersByReceiver[9] = []int64{2}
				tree.subordinates[2] = []int64{3}

				set, err := resolver.VisibleEmployeeSet(ctx, 9, 10, leavesCap)

				Expect(err).ToNot(HaveOccurred())
				Expect(set.Authorized()).To(BeFalse())
				Expect(set.Contains(2)).To(BeTrue())
				Expect(set.Contains(3)).To(BeTrue())
			})
		})

		Context("when a collaborator fails", func() {
			It("should propagate scope resolution errors", func() {
				scopes.err = errors.New("db down")

				_, err := resolver.VisibleEmployeeSet(ctx, 1, 10, leavesCap)

				Expect(err).To(HaveOccurred())
			})

			It("should propagate hierarchy errors", func() {
				scopes.scopes[2] = permission.ScopeTeam
				tree.err = errors.New("db down")

				_, err := resolver.VisibleEmployeeSet(ctx, 2, 10, leavesCap)

				Expect(err).To(HaveOccurred())
			})

			It("should propagate delegation lookup errors", func() {
				scopes.scopes[3] = permission.ScopeIndividual
				delegations.err = errors.New("db down")

				_, err := resolver.VisibleEmployeeSet(ctx, 3, 10, leavesCap)

				Expect(err).To(HaveOccurred())
			})
		})
	})
})
