// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// symbolsTable is the table a SQLite doc index must provide.
const symbolsTable = "documented_symbols"

// loadSQLite opens the database read-only and returns documented_symbols.name.
func loadSQLite(ctx context.Context, path string) ([]string, error) {
	// sql.Open is lazy; report a missing file here rather than at query time.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT name FROM `+symbolsTable+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", symbolsTable, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", symbolsTable, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s: %w", symbolsTable, err)
	}
	return names, nil
}
