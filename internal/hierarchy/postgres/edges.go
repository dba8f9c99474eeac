package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/tenangdev/leave-management/internal/employee"
	"github.com/tenangdev/leave-management/internal/hierarchy"
)

// EdgeStore loads the reporting adjacency of one organization with a
// single query against the employees table.
type EdgeStore struct {
	db *sqlx.DB
}

func NewEdgeStore(db *sqlx.DB) hierarchy.EdgeStore {
	return &EdgeStore{db: db}
}

type reportingEdge struct {
	EmpID         int64 `db:"emp_id"`
	SuperiorEmpID int64 `db:"superior_emp_id"`
}

func (s *EdgeStore) ReportingEdges(ctx context.Context, orgID int64) (map[int64][]int64, error) {
	var rows []reportingEdge
	query := `SELECT emp_id, superior_emp_id
	          FROM employees
	          WHERE org_id = $1 AND status = $2 AND superior_emp_id IS NOT NULL`

	if err := s.db.SelectContext(ctx, &rows, query, orgID, employee.StatusActive); err != nil {
		return nil, err
	}

	edges := make(map[int64][]int64, len(rows))
	for _, row := range rows {
		edges[row.SuperiorEmpID] = append(edges[row.SuperiorEmpID], row.EmpID)
	}
	return edges, nil
}
