package hierarchy_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tenangdev/leave-management/internal/hierarchy"
)

// Mock edge store for testing
type mockEdgeStore struct {
	edges     map[int64][]int64
	edgesErr  error
	callCount int
}

func (m *mockEdgeStore) ReportingEdges(ctx context.Context, orgID int64) (map[int64][]int64, error) {
	m.callCount++
	if m.edgesErr != nil {
		return nil, m.edgesErr
	}
	return m.edges, nil
}

var _ = Describe("HierarchyResolver", func() {
	var (
		resolver *hierarchy.Resolver
		store    *mockEdgeStore
		logger   *slog.Logger
		ctx      context.Context
	)

	BeforeEach(func() {
		store = &mockEdgeStore{edges: make(map[int64][]int64)}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver = hierarchy.NewResolver(store, logger)
		ctx = context.Background()
	})

	Describe("SubordinatesOf", func() {
		Context("with a multi-level chain", func() {
			It("should return the full transitive closure excluding the root", func() {
				// Given: 1 -> 2 -> 3 -> 4
				store.edges = map[int64][]int64{
					1: {2},
					2: {3},
					3: {4},
				}

				// When
				subs, err := resolver.SubordinatesOf(ctx, 1, 10)

				// Then
				Expect(err).ToNot(HaveOccurred())
				Expect(subs).To(Equal([]int64{2, 3, 4}))
			})

			It("should return only the subtree below a mid-level manager", func() {
				store.edges = map[int64][]int64{
					1: {2, 5},
					2: {3, 4},
				}

				subs, err := resolver.SubordinatesOf(ctx, 2, 10)

				Expect(err).ToNot(HaveOccurred())
				Expect(subs).To(Equal([]int64{3, 4}))
			})
		})

		Context("with a leaf employee", func() {
			It("should return an empty closure", func() {
				store.edges = map[int64][]int64{
					1: {2},
				}

				subs, err := resolver.SubordinatesOf(ctx, 2, 10)

				Expect(err).ToNot(HaveOccurred())
				Expect(subs).To(BeEmpty())
			})
		})

		Context("when the data contains a cycle", func() {
			It("should terminate and visit each employee once", func() {
				// Given: 1 -> 2 -> 3 -> 1 (corrupt data)
				store.edges = map[int64][]int64{
					1: {2},
					2: {3},
					3: {1},
				}

				subs, err := resolver.SubordinatesOf(ctx, 1, 10)

				Expect(err).ToNot(HaveOccurred())
				Expect(subs).To(Equal([]int64{2, 3}))
			})

			It("should never re-add the root even when an edge points back to it", func() {
				store.edges = map[int64][]int64{
					1: {2},
					2: {1, 3},
				}

				subs, err := resolver.SubordinatesOf(ctx, 1, 10)

				Expect(err).ToNot(HaveOccurred())
				Expect(subs).To(Equal([]int64{2, 3}))
			})
		})

		Context("when an employee is reachable through two paths", func() {
			It("should list them exactly once", func() {
				// Given: 1 -> {2, 3}, both 2 and 3 point at 4
				store.edges = map[int64][]int64{
					1: {2, 3},
					2: {4},
					3: {4},
				}

				subs, err := resolver.SubordinatesOf(ctx, 1, 10)

				Expect(err).ToNot(HaveOccurred())
				Expect(subs).To(Equal([]int64{2, 3, 4}))
			})
		})

		Context("when the edge fetch fails", func() {
			It("should propagate the error", func() {
				store.edgesErr = errors.New("connection refused")

				subs, err := resolver.SubordinatesOf(ctx, 1, 10)

				Expect(err).To(HaveOccurred())
				Expect(subs).To(BeNil())
			})
		})
	})
})
