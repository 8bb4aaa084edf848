// Package database is the local SQLite activity store: the structured log
// sink and the per-file audit trail. File and user data live in the backend.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"store-it/internal/database/migrations"
	"store-it/internal/domain/entities"
	"store-it/internal/migration"

	_ "modernc.org/sqlite"
)

// Database wraps the SQLite handle.
type Database struct {
	db *sql.DB
}

var defaultDB *Database

// Open opens (creating if needed) the database at path and applies the
// embedded migrations. ":memory:" is accepted for tests.
func Open(ctx context.Context, path string) (*Database, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("database path is required")
	}
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := migration.Apply(ctx, db, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Database{db: db}, nil
}

// InitDatabase opens path and installs it as the process-wide default.
func InitDatabase(ctx context.Context, path string) (*Database, error) {
	d, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defaultDB = d
	return d, nil
}

// GetDatabase returns the default database instance
func GetDatabase() *Database {
	return defaultDB
}

// LogFileOperation appends one row to the file audit trail.
func (d *Database) LogFileOperation(ctx context.Context, entry entities.FileAudit) (int64, error) {
	if strings.TrimSpace(entry.FileID) == "" {
		return 0, errors.New("file id is required")
	}
	if entry.OperationTime.IsZero() {
		entry.OperationTime = time.Now()
	}
	details := "{}"
	if len(entry.Details) > 0 {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return 0, fmt.Errorf("encode audit details: %w", err)
		}
		details = string(b)
	}

	res, err := d.db.ExecContext(ctx, `
	INSERT INTO file_audit_logs (file_id, operation, operator, operation_time, details)
	VALUES (?, ?, ?, ?, ?)`,
		entry.FileID, entry.Operation, entry.Operator,
		entry.OperationTime.UTC().Format(time.RFC3339Nano), details,
	)
	if err != nil {
		return 0, fmt.Errorf("insert file audit: %w", err)
	}
	return res.LastInsertId()
}

// FileOperations returns the newest audit rows of fileID first. A limit of
// zero or less returns every row.
func (d *Database) FileOperations(ctx context.Context, fileID string, limit int) ([]entities.FileAudit, error) {
	q := `
	SELECT id, file_id, operation, operator, operation_time, details
	FROM file_audit_logs
	WHERE file_id = ?
	ORDER BY operation_time DESC, id DESC`
	args := []any{fileID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query file audit: %w", err)
	}
	defer rows.Close()

	out := []entities.FileAudit{}
	for rows.Next() {
		var (
			a       entities.FileAudit
			when    string
			details sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.FileID, &a.Operation, &a.Operator, &when, &details); err != nil {
			return nil, fmt.Errorf("scan file audit: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, when); err == nil {
			a.OperationTime = t
		}
		if details.Valid && details.String != "" && details.String != "{}" {
			_ = json.Unmarshal([]byte(details.String), &a.Details)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetDB returns the underlying sql.DB instance
func (d *Database) GetDB() *sql.DB {
	return d.db
}

// Close closes the database connection
func (d *Database) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}
