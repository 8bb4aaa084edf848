package appwrite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"store-it/internal/appwrite"
	"store-it/internal/appwrite/query"
	"store-it/internal/domain/entities"
	domainerrors "store-it/internal/domain/errors"
	"store-it/internal/domain/repositories"
)

// DefaultSort orders listings newest first.
const DefaultSort = "$createdAt-desc"

type FileRepo struct {
	dbs *appwrite.Databases
	ids Collections
}

var _ repositories.FileRepository = (*FileRepo)(nil)

func NewFileRepo(client *appwrite.Client, ids Collections) *FileRepo {
	return &FileRepo{dbs: client.Databases(), ids: ids}
}

// fileDocument mirrors the files collection. Owner is a relationship and
// comes back either as a bare id or as the expanded user document.
type fileDocument struct {
	ID           string          `json:"$id"`
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	Extension    string          `json:"extension"`
	Size         int64           `json:"size"`
	URL          string          `json:"url"`
	Owner        json.RawMessage `json:"owner"`
	AccountID    string          `json:"accountId"`
	Users        []string        `json:"users"`
	BucketFileID string          `json:"bucketFileId"`
	CreatedAt    time.Time       `json:"$createdAt"`
	UpdatedAt    time.Time       `json:"$updatedAt"`
}

func decodeOwner(raw json.RawMessage) (entities.OwnerRef, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return entities.OwnerRef{}, nil
	}
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return entities.OwnerRef{ID: id}, nil
	}
	var ref entities.OwnerRef
	if err := json.Unmarshal(raw, &ref); err != nil {
		return entities.OwnerRef{}, fmt.Errorf("decode owner: %w", err)
	}
	return ref, nil
}

func toFile(doc *appwrite.Document) (*entities.File, error) {
	var fd fileDocument
	if err := doc.Decode(&fd); err != nil {
		return nil, fmt.Errorf("decode file document %s: %w", doc.ID, err)
	}
	owner, err := decodeOwner(fd.Owner)
	if err != nil {
		return nil, err
	}
	users := fd.Users
	if users == nil {
		users = []string{}
	}
	return &entities.File{
		ID:           fd.ID,
		Name:         fd.Name,
		Type:         fd.Type,
		Extension:    fd.Extension,
		Size:         fd.Size,
		URL:          fd.URL,
		Owner:        owner,
		AccountID:    fd.AccountID,
		Users:        users,
		BucketFileID: fd.BucketFileID,
		CreatedAt:    fd.CreatedAt,
		UpdatedAt:    fd.UpdatedAt,
	}, nil
}

// BuildFileQueries turns a filter into backend queries: files owned by or
// shared with the user, optionally narrowed by type and name, capped by
// limit and ordered by "<attribute>-<asc|desc>".
func BuildFileQueries(f entities.FileFilter) []query.Query {
	var qs []query.Query
	if f.OwnedOnly {
		qs = append(qs, query.Equal("owner", f.OwnerID))
	} else {
		qs = append(qs, query.Or(
			query.Equal("owner", f.OwnerID),
			query.Equal("users", f.Email),
		))
	}
	if len(f.Types) > 0 {
		qs = append(qs, query.Equal("type", f.Types...))
	}
	if f.SearchText != "" {
		qs = append(qs, query.Contains("name", f.SearchText))
	}
	if f.Limit > 0 {
		qs = append(qs, query.Limit(f.Limit))
	}
	if f.Sort != "" {
		attr, dir := SplitSort(f.Sort)
		if dir == "asc" {
			qs = append(qs, query.OrderAsc(attr))
		} else {
			qs = append(qs, query.OrderDesc(attr))
		}
	}
	return qs
}

// SplitSort splits "<attribute>-<direction>" at the last dash.
func SplitSort(sort string) (attribute, direction string) {
	i := strings.LastIndex(sort, "-")
	if i < 0 {
		return sort, ""
	}
	return sort[:i], sort[i+1:]
}

func (r *FileRepo) Create(ctx context.Context, file *entities.File) (*entities.File, error) {
	users := file.Users
	if users == nil {
		users = []string{}
	}
	data := map[string]any{
		"type":         file.Type,
		"name":         file.Name,
		"url":          file.URL,
		"extension":    file.Extension,
		"size":         file.Size,
		"owner":        file.Owner.ID,
		"accountId":    file.AccountID,
		"users":        users,
		"bucketFileId": file.BucketFileID,
	}
	doc, err := r.dbs.CreateDocument(ctx, r.ids.DatabaseID, r.ids.FilesCollectionID, appwrite.UniqueID(), data, nil)
	if err != nil {
		return nil, fmt.Errorf("create file document: %w", err)
	}
	return toFile(doc)
}

func (r *FileRepo) GetByID(ctx context.Context, id string) (*entities.File, error) {
	doc, err := r.dbs.GetDocument(ctx, r.ids.DatabaseID, r.ids.FilesCollectionID, id)
	if err != nil {
		if appwrite.IsNotFound(err) {
			return nil, domainerrors.Wrap(domainerrors.ErrFileNotFound, err)
		}
		return nil, fmt.Errorf("get file document %s: %w", id, err)
	}
	return toFile(doc)
}

func (r *FileRepo) List(ctx context.Context, filter entities.FileFilter) (*entities.FileList, error) {
	list, err := r.dbs.ListDocuments(ctx, r.ids.DatabaseID, r.ids.FilesCollectionID, query.Strings(BuildFileQueries(filter)))
	if err != nil {
		return nil, fmt.Errorf("list file documents: %w", err)
	}
	out := &entities.FileList{Total: list.Total, Documents: make([]entities.File, 0, len(list.Documents))}
	for i := range list.Documents {
		f, err := toFile(&list.Documents[i])
		if err != nil {
			return nil, err
		}
		out.Documents = append(out.Documents, *f)
	}
	return out, nil
}

func (r *FileRepo) update(ctx context.Context, id string, data map[string]any) (*entities.File, error) {
	doc, err := r.dbs.UpdateDocument(ctx, r.ids.DatabaseID, r.ids.FilesCollectionID, id, data)
	if err != nil {
		if appwrite.IsNotFound(err) {
			return nil, domainerrors.Wrap(domainerrors.ErrFileNotFound, err)
		}
		return nil, fmt.Errorf("update file document %s: %w", id, err)
	}
	return toFile(doc)
}

func (r *FileRepo) UpdateName(ctx context.Context, id, name string) (*entities.File, error) {
	return r.update(ctx, id, map[string]any{"name": name})
}

func (r *FileRepo) UpdateUsers(ctx context.Context, id string, emails []string) (*entities.File, error) {
	if emails == nil {
		emails = []string{}
	}
	return r.update(ctx, id, map[string]any{"users": emails})
}

func (r *FileRepo) Delete(ctx context.Context, id string) error {
	if err := r.dbs.DeleteDocument(ctx, r.ids.DatabaseID, r.ids.FilesCollectionID, id); err != nil {
		if appwrite.IsNotFound(err) {
			return domainerrors.Wrap(domainerrors.ErrFileNotFound, err)
		}
		return fmt.Errorf("delete file document %s: %w", id, err)
	}
	return nil
}
