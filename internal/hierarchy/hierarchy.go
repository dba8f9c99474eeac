package hierarchy

import (
	"context"
	"log/slog"
	"sort"
)

// EdgeStore supplies the "superior -> direct reports" adjacency for an
// organization in one batched fetch, so the traversal runs in memory
// instead of one query per hierarchy level.
type EdgeStore interface {
	ReportingEdges(ctx context.Context, orgID int64) (map[int64][]int64, error)
}

// Resolver computes the transitive closure of subordinates for an
// employee within an organization.
type Resolver struct {
	store  EdgeStore
	logger *slog.Logger
}

func NewResolver(store EdgeStore, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

// SubordinatesOf returns every employee reachable from empID by following
// reporting edges, excluding empID itself. The visited set is carried
// through the whole walk: bad data can wire the hierarchy into a cycle or
// make an employee reachable via two paths, and neither may hang the
// traversal or duplicate output.
func (r *Resolver) SubordinatesOf(ctx context.Context, empID, orgID int64) ([]int64, error) {
	edges, err := r.store.ReportingEdges(ctx, orgID)
	if err != nil {
		r.logger.Error("failed to fetch reporting edges", "error", err, "org_id", orgID)
		return nil, err
	}

	visited := map[int64]bool{empID: true}
	var result []int64

	queue := append([]int64(nil), edges[empID]...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true
		result = append(result, current)

		queue = append(queue, edges[current]...)
	}

	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result, nil
}
