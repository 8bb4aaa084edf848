package repositories

import (
	"context"

	"store-it/internal/domain/entities"
)

type FileRepository interface {
	Create(ctx context.Context, file *entities.File) (*entities.File, error)
	GetByID(ctx context.Context, id string) (*entities.File, error)
	List(ctx context.Context, filter entities.FileFilter) (*entities.FileList, error)
	UpdateName(ctx context.Context, id, name string) (*entities.File, error)
	UpdateUsers(ctx context.Context, id string, emails []string) (*entities.File, error)
	Delete(ctx context.Context, id string) error
}
