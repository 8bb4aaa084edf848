package repositories

import (
	"context"
	"io"

	"store-it/internal/domain/entities"
)

// ObjectStorage is the bucket holding file contents.
type ObjectStorage interface {
	Put(ctx context.Context, name string, size int64, r io.Reader) (*entities.StoredObject, error)
	Delete(ctx context.Context, objectID string) error
	ViewURL(objectID string) string
	DownloadURL(objectID string) string
}

// AccountService issues email codes and manages sessions. Methods taking a
// secret act as that session; the others use server credentials.
type AccountService interface {
	SendEmailToken(ctx context.Context, email string) (accountID string, err error)
	CreateSession(ctx context.Context, accountID, code string) (*entities.Session, error)
	Current(ctx context.Context, secret string) (*entities.Account, error)
	DeleteCurrentSession(ctx context.Context, secret string) error
}

// AuditRepository keeps the local file activity trail.
type AuditRepository interface {
	Record(ctx context.Context, entry entities.FileAudit) error
	ListByFile(ctx context.Context, fileID string, limit int) ([]entities.FileAudit, error)
}
