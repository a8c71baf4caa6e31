package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"watchdog/pkg/contracts/domain"
)

// LoadSQL runs a query against a Postgres database and returns the result
// set as a batch. Column order follows the query's select list; NULLs load
// as nil and other values keep their driver types, which the rule predicates
// coerce as needed.
func LoadSQL(ctx context.Context, connString, query string) (*domain.Batch, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	descs := rows.FieldDescriptions()
	columns := make([]string, len(descs))
	for i, d := range descs {
		columns[i] = string(d.Name)
	}

	batch := domain.NewBatch(columns)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(domain.Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		batch.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	slog.InfoContext(ctx, "loaded SQL batch",
		slog.Int("columns", len(batch.Columns)),
		slog.Int("rows", batch.Len()))
	return batch, nil
}
