package persistence

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentforge/candidate-os/internal/domain/query"
	"github.com/talentforge/candidate-os/pkg/apperror"
	"github.com/talentforge/candidate-os/pkg/logger"
)

// postgresQueryExecutor runs gate-validated plans read-only. Rows come back
// in the store's natural result order; no ranking is applied here.
type postgresQueryExecutor struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresQueryExecutor(db *pgxpool.Pool, log logger.Logger) query.Executor {
	return &postgresQueryExecutor{db: db, logger: log}
}

func (e *postgresQueryExecutor) Execute(ctx context.Context, plan query.Plan) (*query.Result, error) {
	rows, err := e.db.Query(ctx, plan.SQL)
	if err != nil {
		return nil, apperror.NewQueryFailed("store rejected the gated query", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result := &query.Result{Columns: columns, Rows: make([]query.Row, 0)}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, apperror.NewQueryFailed("failed to read result row", err)
		}
		row := make(query.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewQueryFailed("error iterating result rows", err)
	}
	return result, nil
}
