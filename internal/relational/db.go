// Package relational is the relational-store collaborator: the companies
// schema, the seeded vocabulary tables, the unknown-extraction log, and
// search_logs. Per spec §1 this schema is an external collaborator — the
// spec fixes its contract, it is not re-derived here beyond what the query
// pipeline needs to read.
package relational

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the relational connection pool. It is process-wide and safe for
// concurrent use by multiple requests, same as the search-engine client and
// the LLM client (spec §5).
type DB struct {
	conn *sql.DB
}

// Open opens (and, if empty, migrates) the relational store at dsn. dsn is a
// modernc.org/sqlite data source — typically a file path, or ":memory:" in
// tests.
func Open(ctx context.Context, dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("relational: open %s: %w", dsn, err)
	}
	conn.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; keep it simple and safe.

	db := &DB{conn: conn}
	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("relational: migrate: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec migration statement: %w", err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		synonyms TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS funding_stages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		order_index INTEGER NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS industries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		synonyms TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS target_markets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		synonyms TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS business_models (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		synonyms TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS revenue_models (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		synonyms TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		website_url TEXT NOT NULL DEFAULT '',
		employee_count INTEGER,
		funding_amount_usd INTEGER,
		location_id INTEGER REFERENCES locations(id),
		funding_stage_id INTEGER REFERENCES funding_stages(id)
	)`,
	`CREATE TABLE IF NOT EXISTS company_industries (
		company_id INTEGER NOT NULL REFERENCES companies(id),
		industry_id INTEGER NOT NULL REFERENCES industries(id),
		PRIMARY KEY (company_id, industry_id)
	)`,
	`CREATE TABLE IF NOT EXISTS company_target_markets (
		company_id INTEGER NOT NULL REFERENCES companies(id),
		target_market_id INTEGER NOT NULL REFERENCES target_markets(id),
		PRIMARY KEY (company_id, target_market_id)
	)`,
	`CREATE TABLE IF NOT EXISTS company_business_models (
		company_id INTEGER NOT NULL REFERENCES companies(id),
		business_model_id INTEGER NOT NULL REFERENCES business_models(id),
		PRIMARY KEY (company_id, business_model_id)
	)`,
	`CREATE TABLE IF NOT EXISTS company_revenue_models (
		company_id INTEGER NOT NULL REFERENCES companies(id),
		revenue_model_id INTEGER NOT NULL REFERENCES revenue_models(id),
		PRIMARY KEY (company_id, revenue_model_id)
	)`,
	`CREATE TABLE IF NOT EXISTS llm_extractions (
		raw_value TEXT NOT NULL,
		segment TEXT NOT NULL,
		count INTEGER NOT NULL DEFAULT 1,
		first_seen TIMESTAMP NOT NULL,
		last_seen TIMESTAMP NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		matched_to TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (raw_value, segment)
	)`,
	`CREATE TABLE IF NOT EXISTS search_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		query TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
}

// LogSearch appends a row to the append-only search_logs table (spec §6).
func (db *DB) LogSearch(ctx context.Context, query string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO search_logs (query, created_at) VALUES (?, datetime('now'))`, query)
	return err
}
