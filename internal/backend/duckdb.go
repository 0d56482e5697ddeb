// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/brad-richardson/overturemaps-go/internal/common"
	"github.com/brad-richardson/overturemaps-go/internal/config"
	"github.com/brad-richardson/overturemaps-go/internal/geo"
)

// duckdbEngine executes filtered reads against remote parquet so only
// matching rows cross the wire. DuckDB parallelizes its own range reads
// internally; rows still come back in the file's storage order because no
// ORDER BY is ever issued and result streaming preserves scan order.
type duckdbEngine struct {
	db *sql.DB
}

// newDuckDBEngine is the probe: any failure here (missing extension,
// sandboxed environment, unsupported platform) makes the caller fall back.
func newDuckDBEngine(cfg config.Config) (*duckdbEngine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, err
	}
	// remote parquet needs httpfs; unsigned requests suffice for the
	// public buckets
	if _, err := db.Exec("INSTALL httpfs; LOAD httpfs;"); err != nil {
		_ = db.Close()
		return nil, err
	}
	setup := fmt.Sprintf("SET s3_region='%s'; SET threads=%d;", cfg.S3.Region, cfg.Backend.Concurrency)
	if _, err := db.Exec(setup); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &duckdbEngine{db: db}, nil
}

func (e *duckdbEngine) Name() string           { return "duckdb" }
func (e *duckdbEngine) PushesPredicates() bool { return true }

func (e *duckdbEngine) Close() error {
	return e.db.Close()
}

func (e *duckdbEngine) RowByID(ctx context.Context, fileURL, id string) (Row, error) {
	rows, err := e.db.QueryContext(ctx,
		"SELECT * FROM read_parquet(?) WHERE id = ? LIMIT 1", fileURL, id)
	if err != nil {
		return nil, classifyQueryError(err, fileURL)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, classifyQueryError(err, fileURL)
		}
		return nil, nil
	}
	row, err := scanRow(rows)
	if err != nil {
		return nil, classifyQueryError(err, fileURL)
	}
	return row, nil
}

func (e *duckdbEngine) RowsByBbox(ctx context.Context, fileURL string, bbox geo.BoundingBox, limit int) (RowIterator, error) {
	// same strict-overlap predicate the client applies, evaluated by the
	// engine before any row crosses the wire
	query := `SELECT * FROM read_parquet(?)
		WHERE bbox.xmin < ? AND bbox.xmax > ? AND bbox.ymin < ? AND bbox.ymax > ?`
	args := []any{fileURL, bbox.XMax, bbox.XMin, bbox.YMax, bbox.YMin}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classifyQueryError(err, fileURL)
	}
	return &sqlRowIterator{rows: rows, fileURL: fileURL}, nil
}

func (e *duckdbEngine) Schema(ctx context.Context, fileURL string) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, "DESCRIBE SELECT * FROM read_parquet(?)", fileURL)
	if err != nil {
		return nil, classifyQueryError(err, fileURL)
	}
	defer func() { _ = rows.Close() }()

	var cols []string
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, classifyQueryError(err, fileURL)
		}
		if name, ok := row["column_name"].(string); ok {
			cols = append(cols, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, classifyQueryError(err, fileURL)
	}
	return cols, nil
}

// sqlRowIterator adapts sql.Rows to the RowIterator contract.
type sqlRowIterator struct {
	rows    *sql.Rows
	fileURL string
}

func (it *sqlRowIterator) Next() (Row, error) {
	if !it.rows.Next() {
		if err := it.rows.Err(); err != nil {
			return nil, classifyQueryError(err, it.fileURL)
		}
		return nil, io.EOF
	}
	row, err := scanRow(it.rows)
	if err != nil {
		return nil, classifyQueryError(err, it.fileURL)
	}
	return row, nil
}

func (it *sqlRowIterator) Close() error {
	return it.rows.Close()
}

// scanRow reads the current result row into a generic map. DuckDB maps
// STRUCT columns to map[string]any and BLOB columns to []byte, which is
// what the row helpers expect.
func scanRow(rows *sql.Rows) (Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	row := make(Row, len(cols))
	for i, col := range cols {
		row[col] = vals[i]
	}
	return row, nil
}

// classifyQueryError maps engine failures onto the error taxonomy: binder
// and conversion errors mean the file's layout is not what we expect,
// anything else is treated as the upstream being unreachable.
func classifyQueryError(err error, fileURL string) error {
	msg := err.Error()
	if strings.Contains(msg, "Binder Error") || strings.Contains(msg, "Conversion Error") || strings.Contains(msg, "Invalid Input Error") {
		return fmt.Errorf("%w: querying %s: %v", common.ErrSchema, fileURL, err)
	}
	return fmt.Errorf("%w: querying %s: %v", common.ErrUpstream, fileURL, err)
}
