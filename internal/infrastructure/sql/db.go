package sql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"           // registers "postgres"
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
)

// DB wraps *sql.DB for the item reader.
type DB struct {
	*sql.DB
}

// Open connects with one of the registered drivers ("postgres" or "sqlite3").
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case "postgres", "sqlite3":
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return &DB{DB: db}, nil
}

// Execute runs a query and returns rows as a slice of maps keyed by column.
func (d *DB) Execute(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]map[string]any, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range ptrs {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rowMap := make(map[string]any, len(cols))
		for i, col := range cols {
			rowMap[col] = vals[i]
		}
		results = append(results, rowMap)
	}
	return results, rows.Err()
}
