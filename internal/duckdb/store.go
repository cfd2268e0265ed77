// Package duckdb persists the genomic landscape and prioritization results in
// DuckDB. Features are bulk-loaded with the Appender API and read back into
// the in-memory cache at startup.
package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory databases.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS genes (
		gene_id VARCHAR PRIMARY KEY,
		symbol VARCHAR,
		biotype VARCHAR,
		contig VARCHAR,
		strand TINYINT,
		start_pos BIGINT,
		end_pos BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS transcripts (
		transcript_id VARCHAR PRIMARY KEY,
		gene_id VARCHAR,
		biotype VARCHAR,
		contig VARCHAR,
		strand TINYINT,
		start_pos BIGINT,
		end_pos BIGINT,
		cds_start BIGINT,
		cds_end BIGINT,
		is_canonical BOOLEAN,
		is_mane_select BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS exons (
		transcript_id VARCHAR,
		exon_number INTEGER,
		start_pos BIGINT,
		end_pos BIGINT,
		PRIMARY KEY (transcript_id, exon_number)
	)`,
	`CREATE TABLE IF NOT EXISTS enhancers (
		enhancer_id VARCHAR PRIMARY KEY,
		contig VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		developmental BOOLEAN
	)`,
	`CREATE TABLE IF NOT EXISTS enhancer_tissues (
		enhancer_id VARCHAR,
		term_id VARCHAR,
		label VARCHAR,
		specificity DOUBLE
	)`,
	`CREATE TABLE IF NOT EXISTS tad_boundaries (
		boundary_id VARCHAR PRIMARY KEY,
		contig VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		stability DOUBLE
	)`,
	`CREATE TABLE IF NOT EXISTS sources (
		kind VARCHAR PRIMARY KEY,
		path VARCHAR,
		size BIGINT,
		mod_time TIMESTAMP,
		loaded_at TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS sv_priorities (
		run_id VARCHAR,
		seq BIGINT,
		variant_id VARCHAR,
		contig VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		sv_type VARCHAR,
		score DOUBLE,
		known BOOLEAN,
		created_at TIMESTAMP,
		PRIMARY KEY (run_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS gene_priorities (
		run_id VARCHAR,
		seq BIGINT,
		gene_id VARCHAR,
		score DOUBLE
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// appendRows bulk-inserts into table through a DuckDB Appender. fill calls
// the provided append function once per row.
func (s *Store) appendRows(table string, fill func(appendRow func(args ...driver.Value) error) error) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}
	defer appender.Close()

	if err := fill(appender.AppendRow); err != nil {
		return fmt.Errorf("append %s: %w", table, err)
	}
	return appender.Flush()
}

// deleteAll empties the given tables in one transaction.
func (s *Store) deleteAll(tables ...string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, t := range tables {
		if _, err := tx.Exec("DELETE FROM " + t); err != nil {
			tx.Rollback()
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}
	return tx.Commit()
}
