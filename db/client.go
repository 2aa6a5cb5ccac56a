package db

import (
	"database/sql"
)

// QueryParam represents a parameter for database queries
type QueryParam interface{}

// Querier is satisfied by both *sql.DB and *sql.Tx
type Querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
	Exec(query string, args ...any) (sql.Result, error)
}

func (d *DB) logQuery(kind string, sql string, params []QueryParam) {
	if !d.logQueries {
		return
	}
	logger.Debug().
		Str("kind", kind).
		Str("sql", sql).
		Interface("params", params).
		Msg("db query")
}

func toArgs(params []QueryParam) []any {
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = p
	}
	return args
}

// Select runs a SELECT query returning multiple rows
// The scanner function is called for each row to map results
func Select[T any](q Querier, query string, params []QueryParam, scanner func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := q.Query(query, toArgs(params)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []T
	for rows.Next() {
		item, err := scanner(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// SelectOne runs a SELECT query returning a single row (or nil if not found)
func SelectOne[T any](q Querier, query string, params []QueryParam, scanner func(*sql.Row) (T, error)) (*T, error) {
	row := q.QueryRow(query, toArgs(params)...)
	result, err := scanner(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// RunResult represents the result of a Run operation
type RunResult struct {
	LastInsertID int64
	RowsAffected int64
}

// RunWithResult executes a query and returns simplified result
func RunWithResult(q Querier, query string, params ...QueryParam) (*RunResult, error) {
	result, err := q.Exec(query, toArgs(params)...)
	if err != nil {
		return nil, err
	}

	lastID, _ := result.LastInsertId()
	affected, _ := result.RowsAffected()

	return &RunResult{
		LastInsertID: lastID,
		RowsAffected: affected,
	}, nil
}

// Count returns the count of rows matching the query
func Count(q Querier, query string, params ...QueryParam) (int64, error) {
	var count int64
	if err := q.QueryRow(query, toArgs(params)...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
