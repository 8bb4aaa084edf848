// Package sqlite implements the repositories kept in the local activity store.
package sqlite

import (
	"context"
	"errors"

	dbpkg "store-it/internal/database"
	"store-it/internal/domain/entities"
	"store-it/internal/domain/repositories"
)

var ErrDBUnavailable = errors.New("activity store unavailable")

// AuditRepo reads and writes file_audit_logs. With a nil database it falls
// back to the process default opened by database.InitDatabase.
type AuditRepo struct {
	db *dbpkg.Database
}

var _ repositories.AuditRepository = (*AuditRepo)(nil)

func NewAuditRepo(db *dbpkg.Database) *AuditRepo { return &AuditRepo{db: db} }

func (r *AuditRepo) database() (*dbpkg.Database, error) {
	if r.db != nil {
		return r.db, nil
	}
	if db := dbpkg.GetDatabase(); db != nil {
		return db, nil
	}
	return nil, ErrDBUnavailable
}

func (r *AuditRepo) Record(ctx context.Context, entry entities.FileAudit) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	_, err = db.LogFileOperation(ctx, entry)
	return err
}

func (r *AuditRepo) ListByFile(ctx context.Context, fileID string, limit int) ([]entities.FileAudit, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return db.FileOperations(ctx, fileID, limit)
}
