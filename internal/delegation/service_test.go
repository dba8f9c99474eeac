package delegation_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tenangdev/leave-management/internal"
	"github.com/tenangdev/leave-management/internal/core/events"
	"github.com/tenangdev/leave-management/internal/delegation"
	"github.com/tenangdev/leave-management/internal/permission"
)

// Mock repository for testing
type mockDelegationRepository struct {
	rows          []*delegation.Delegation
	insertErr     error
	deactivateErr error
	listErr       error
}

func (m *mockDelegationRepository) Insert(ctx context.Context, d *delegation.Delegation) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.rows = append(m.rows, d)
	return nil
}

func (m *mockDelegationRepository) DeactivateMatching(ctx context.Context, orgID, senderEmpID, receiverEmpID, menuID int64, submenuID *int64, exceptID string) error {
	if m.deactivateErr != nil {
		return m.deactivateErr
	}
	for _, row := range m.rows {
		if row.ID == exceptID || !row.IsActive {
			continue
		}
		if row.OrgID != orgID || row.SenderEmpID != senderEmpID || row.ReceiverEmpID != receiverEmpID || row.MenuID != menuID {
			continue
		}
		if (row.SubmenuID == nil) != (submenuID == nil) {
			continue
		}
		if row.SubmenuID != nil && *row.SubmenuID != *submenuID {
			continue
		}
		row.IsActive = false
	}
	return nil
}

func (m *mockDelegationRepository) ActiveReceivedBy(ctx context.Context, receiverEmpID, orgID, menuID int64) ([]*delegation.Delegation, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*delegation.Delegation
	for _, row := range m.rows {
		if row.ReceiverEmpID == receiverEmpID && row.OrgID == orgID && row.MenuID == menuID && row.IsActive {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockDelegationRepository) ListBySender(ctx context.Context, senderEmpID, orgID int64) ([]*delegation.Delegation, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*delegation.Delegation
	for _, row := range m.rows {
		if row.SenderEmpID == senderEmpID && row.OrgID == orgID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockDelegationRepository) ListByReceiver(ctx context.Context, receiverEmpID, orgID int64) ([]*delegation.Delegation, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*delegation.Delegation
	for _, row := range m.rows {
		if row.ReceiverEmpID == receiverEmpID && row.OrgID == orgID {
			out = append(out, row)
		}
	}
	return out, nil
}

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

// Mock employee directory for testing
type mockEmployeeDirectory struct {
	employees map[int64]bool
	err       error
}

func (m *mockEmployeeDirectory) ExistsInOrg(ctx context.Context, empID, orgID int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.employees[empID], nil
}

var _ = Describe("DelegationService", func() {
	var (
		service   *delegation.Service
		mockRepo  *mockDelegationRepository
		scopes    *mockScopeResolver
		directory *mockEmployeeDirectory
		ctx       context.Context

		senderID   int64
		receiverID int64
		orgID      int64
	)

	BeforeEach(func() {
		mockRepo = &mockDelegationRepository{}
		scopes = &mockScopeResolver{scopes: make(map[int64]permission.Scope)}
		directory = &mockEmployeeDirectory{employees: make(map[int64]bool)}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		bus := events.NewEventBus(logger)
		service = delegation.NewService(mockRepo, scopes, directory, bus, logger)
		ctx = context.Background()

		senderID = 2
		receiverID = 5
		orgID = 10

		directory.employees[receiverID] = true
		scopes.scopes[senderID] = permission.ScopeTeam
		scopes.scopes[receiverID] = permission.ScopeIndividual
	})

	validDTO := func() delegation.DelegateDTO {
		return delegation.DelegateDTO{
			ReceiverEmpID: 5,
			MenuID:        1,
			StartDate:     time.Now().Add(-time.Hour),
			Active:        true,
		}
	}

	Describe("Delegate", func() {
		Context("with a valid grant", func() {
			It("should append an active row", func() {
				result, err := service.Delegate(ctx, senderID, orgID, validDTO())

				Expect(err).ToNot(HaveOccurred())
				Expect(result.ID).ToNot(BeEmpty())
				Expect(result.SenderEmpID).To(Equal(senderID))
				Expect(result.ReceiverEmpID).To(Equal(receiverID))
				Expect(result.IsActive).To(BeTrue())
				Expect(mockRepo.rows).To(HaveLen(1))
			})
		})

		Context("when the receiver does not exist in the organization", func() {
			It("should refuse with receiver not found", func() {
				directory.employees[receiverID] = false

				_, err := service.Delegate(ctx, senderID, orgID, validDTO())

				Expect(err).To(MatchError(internal.ErrReceiverNotFound))
				Expect(mockRepo.rows).To(BeEmpty())
			})
		})

		Context("when the receiver has no grant on the capability", func() {
			It("should refuse with receiver lacks capability", func() {
				scopes.scopes[receiverID] = permission.ScopeNone

				_, err := service.Delegate(ctx, senderID, orgID, validDTO())

				Expect(err).To(MatchError(internal.ErrReceiverLacksCapability))
				Expect(mockRepo.rows).To(BeEmpty())
			})
		})

		Context("when the sender has no scope on the capability", func() {
			It("should refuse with sender lacks capability", func() {
				scopes.scopes[senderID] = permission.ScopeNone

				_, err := service.Delegate(ctx, senderID, orgID, validDTO())

				Expect(err).To(MatchError(internal.ErrSenderLacksCapability))
				Expect(mockRepo.rows).To(BeEmpty())
			})
		})

		Context("when end date precedes start date", func() {
			It("should refuse with invalid date range", func() {
				dto := validDTO()
				end := dto.StartDate.Add(-24 * time.Hour)
				dto.EndDate = &end

				_, err := service.Delegate(ctx, senderID, orgID, dto)

				Expect(err).To(MatchError(internal.ErrInvalidDateRange))
			})
		})

		Context("when recording a deactivation", func() {
			It("should insert the action and retire earlier active rows for the tuple", func() {
				_, err := service.Delegate(ctx, senderID, orgID, validDTO())
				Expect(err).ToNot(HaveOccurred())

				dto := validDTO()
				dto.Active = false
				result, err := service.Delegate(ctx, senderID, orgID, dto)

				Expect(err).ToNot(HaveOccurred())
				Expect(result.IsActive).To(BeFalse())
				// Both rows remain: the log is append-only.
				Expect(mockRepo.rows).To(HaveLen(2))
				Expect(mockRepo.rows[0].IsActive).To(BeFalse())
			})

			It("should leave grants for other capabilities untouched", func() {
				_, err := service.Delegate(ctx, senderID, orgID, validDTO())
				Expect(err).ToNot(HaveOccurred())

				other := validDTO()
				other.MenuID = 2
				other.Active = false
				_, err = service.Delegate(ctx, senderID, orgID, other)

				Expect(err).ToNot(HaveOccurred())
				Expect(mockRepo.rows[0].IsActive).To(BeTrue())
			})
		})

		Context("when the repository fails", func() {
			It("should propagate the insert error", func() {
				mockRepo.insertErr = errors.New("insert failed")

				_, err := service.Delegate(ctx, senderID, orgID, validDTO())

				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("ActiveSendersFor", func() {
		leavesCap := permission.Capability{MenuID: 1}

		It("should return senders with currently exercisable grants", func() {
			_, err := service.Delegate(ctx, senderID, orgID, validDTO())
			Expect(err).ToNot(HaveOccurred())

			senders, err := service.ActiveSendersFor(ctx, receiverID, orgID, leavesCap)

			Expect(err).ToNot(HaveOccurred())
			Expect(senders).To(Equal([]int64{senderID}))
		})

		It("should exclude grants outside their date window", func() {
			dto := validDTO()
			dto.StartDate = time.Now().Add(24 * time.Hour)
			_, err := service.Delegate(ctx, senderID, orgID, dto)
			Expect(err).ToNot(HaveOccurred())

			senders, err := service.ActiveSendersFor(ctx, receiverID, orgID, leavesCap)

			Expect(err).ToNot(HaveOccurred())
			Expect(senders).To(BeEmpty())
		})

		It("should exclude expired grants", func() {
			dto := validDTO()
			dto.StartDate = time.Now().Add(-48 * time.Hour)
			end := time.Now().Add(-24 * time.Hour)
			dto.EndDate = &end
			_, err := service.Delegate(ctx, senderID, orgID, dto)
			Expect(err).ToNot(HaveOccurred())

			senders, err := service.ActiveSendersFor(ctx, receiverID, orgID, leavesCap)

			Expect(err).ToNot(HaveOccurred())
			Expect(senders).To(BeEmpty())
		})

		It("should not resurface a grant after its deactivation", func() {
			_, err := service.Delegate(ctx, senderID, orgID, validDTO())
			Expect(err).ToNot(HaveOccurred())

			dto := validDTO()
			dto.Active = false
			_, err = service.Delegate(ctx, senderID, orgID, dto)
			Expect(err).ToNot(HaveOccurred())

			senders, err := service.ActiveSendersFor(ctx, receiverID, orgID, leavesCap)

			Expect(err).ToNot(HaveOccurred())
			Expect(senders).To(BeEmpty())
		})

		It("should list a sender once even with several active grants", func() {
			_, err := service.Delegate(ctx, senderID, orgID, validDTO())
			Expect(err).ToNot(HaveOccurred())
			sub := int64(5)
			dto := validDTO()
			dto.SubmenuID = &sub
			_, err = service.Delegate(ctx, senderID, orgID, dto)
			Expect(err).ToNot(HaveOccurred())

			senders, err := service.ActiveSendersFor(ctx, receiverID, orgID, leavesCap)

			Expect(err).ToNot(HaveOccurred())
			Expect(senders).To(Equal([]int64{senderID}))
		})

		It("should apply the optional-equal submenu rule", func() {
			sub := int64(5)
			dto := validDTO()
			dto.SubmenuID = &sub
			_, err := service.Delegate(ctx, senderID, orgID, dto)
			Expect(err).ToNot(HaveOccurred())

			other := int64(6)
			senders, err := service.ActiveSendersFor(ctx, receiverID, orgID, permission.Capability{MenuID: 1, SubmenuID: &other})
			Expect(err).ToNot(HaveOccurred())
			Expect(senders).To(BeEmpty())

			senders, err = service.ActiveSendersFor(ctx, receiverID, orgID, permission.Capability{MenuID: 1, SubmenuID: &sub})
			Expect(err).ToNot(HaveOccurred())
			Expect(senders).To(Equal([]int64{senderID}))
		})
	})
})
