package appwrite

import (
	"context"
	"fmt"
	"io"

	"store-it/internal/appwrite"
	"store-it/internal/domain/entities"
	"store-it/internal/domain/repositories"
)

// BucketStore keeps file contents in the configured storage bucket.
type BucketStore struct {
	storage  *appwrite.Storage
	bucketID string
}

var _ repositories.ObjectStorage = (*BucketStore)(nil)

func NewBucketStore(client *appwrite.Client, bucketID string) *BucketStore {
	return &BucketStore{storage: client.Storage(), bucketID: bucketID}
}

func (b *BucketStore) Put(ctx context.Context, name string, size int64, r io.Reader) (*entities.StoredObject, error) {
	f, err := b.storage.CreateFile(ctx, b.bucketID, appwrite.UniqueID(), appwrite.InputFile{Name: name, Size: size, Reader: r})
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", name, err)
	}
	return &entities.StoredObject{ID: f.ID, Name: f.Name, Size: f.SizeOriginal, MimeType: f.MimeType}, nil
}

func (b *BucketStore) Delete(ctx context.Context, objectID string) error {
	if err := b.storage.DeleteFile(ctx, b.bucketID, objectID); err != nil {
		return fmt.Errorf("delete object %s: %w", objectID, err)
	}
	return nil
}

func (b *BucketStore) ViewURL(objectID string) string {
	return b.storage.ViewURL(b.bucketID, objectID)
}

func (b *BucketStore) DownloadURL(objectID string) string {
	return b.storage.DownloadURL(b.bucketID, objectID)
}
