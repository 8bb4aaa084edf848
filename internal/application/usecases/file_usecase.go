package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"store-it/internal/authz"
	"store-it/internal/domain/entities"
	domainerrors "store-it/internal/domain/errors"
	"store-it/internal/domain/repositories"
	"store-it/internal/filetype"
	"store-it/internal/logger"
)

const (
	// DefaultSort orders listings newest first.
	DefaultSort = "$createdAt-desc"
	// SummaryLimit caps the documents read when totalling storage.
	SummaryLimit = 5000
)

// Authorizer decides per-file actions.
type Authorizer interface {
	Can(user *entities.User, file *entities.File, action string) (bool, error)
}

// Revalidator tells the audience, by email, that the page at path has
// stale data.
type Revalidator interface {
	Revalidate(path string, audience []string)
}

type FileUseCaseConfig struct {
	MaxFileSize  int64
	StorageQuota int64
	Concurrency  int
}

// FileUseCase implements the file actions for a signed-in user.
type FileUseCase struct {
	files       repositories.FileRepository
	storage     repositories.ObjectStorage
	audit       repositories.AuditRepository
	authz       Authorizer
	revalidator Revalidator
	cfg         FileUseCaseConfig
}

func NewFileUseCase(
	files repositories.FileRepository,
	storage repositories.ObjectStorage,
	audit repositories.AuditRepository,
	authorizer Authorizer,
	revalidator Revalidator,
	cfg FileUseCaseConfig,
) *FileUseCase {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &FileUseCase{
		files:       files,
		storage:     storage,
		audit:       audit,
		authz:       authorizer,
		revalidator: revalidator,
		cfg:         cfg,
	}
}

// UploadInput is one file to upload. Open is called once, when the upload
// starts.
type UploadInput struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// UploadResult reports the outcome of one upload in UploadMany.
type UploadResult struct {
	Name string         `json:"name"`
	File *entities.File `json:"file,omitempty"`
	Err  error          `json:"-"`
}

func backendErr(message string, cause error) error {
	return domainerrors.Wrap(domainerrors.WithMessage(domainerrors.ErrBackend, message), cause)
}

func requireUser(user *entities.User) error {
	if user == nil || user.ID == "" {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

// Upload stores the content in the bucket and then records its document.
// When the document cannot be created the stored object is deleted once,
// best effort, so no orphan is left behind.
func (uc *FileUseCase) Upload(ctx context.Context, owner *entities.User, in UploadInput, path string) (*entities.File, error) {
	if err := requireUser(owner); err != nil {
		return nil, err
	}
	if uc.cfg.MaxFileSize > 0 && in.Size > uc.cfg.MaxFileSize {
		return nil, domainerrors.New(domainerrors.ErrFileTooLarge.Code,
			fmt.Sprintf("%s is too large. Max file size is %s.", in.Name, maxSizeLabel(uc.cfg.MaxFileSize)),
			map[string]any{"name": in.Name, "size": in.Size, "max": uc.cfg.MaxFileSize})
	}
	if in.Open == nil {
		return nil, domainerrors.WithMessage(domainerrors.ErrValidation, "file content is required")
	}

	rc, err := in.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", in.Name, err)
	}
	defer rc.Close()

	obj, err := uc.storage.Put(ctx, in.Name, in.Size, rc)
	if err != nil {
		logFailure(ctx, logger.EventBackendError, "Failed to upload file", err, map[string]any{"name": in.Name})
		return nil, backendErr("Failed to upload file", err)
	}

	category, ext := filetype.Classify(obj.Name)
	doc := &entities.File{
		Type:         category,
		Name:         obj.Name,
		URL:          uc.storage.ViewURL(obj.ID),
		Extension:    ext,
		Size:         obj.Size,
		Owner:        entities.OwnerRef{ID: owner.ID, FullName: owner.FullName, Email: owner.Email},
		AccountID:    owner.AccountID,
		Users:        []string{},
		BucketFileID: obj.ID,
	}
	created, err := uc.files.Create(ctx, doc)
	if err != nil {
		uc.rollbackUpload(ctx, owner, obj, err)
		return nil, backendErr("Failed to upload file", err)
	}

	uc.record(ctx, created.ID, entities.AuditUpload, owner.ID, map[string]any{
		"name": created.Name, "size": created.Size, "bucketFileId": obj.ID,
	})
	logger.GetLogger().InfoCtx(logger.EventFileUpload, fmt.Sprintf("File upload: %s (%d bytes)", created.Name, created.Size),
		map[string]any{"file_id": created.ID, "type": created.Type}, "", logger.RequestID(ctx), owner.ID)
	uc.revalidate(path, owner)
	return created, nil
}

func (uc *FileUseCase) rollbackUpload(ctx context.Context, owner *entities.User, obj *entities.StoredObject, cause error) {
	details := map[string]any{"bucket_file_id": obj.ID, "name": obj.Name, "cause": cause.Error()}
	if err := uc.storage.Delete(ctx, obj.ID); err != nil {
		details["rollback_error"] = err.Error()
		logger.GetLogger().ErrorCtx(logger.EventUploadRollback, "upload rollback failed; bucket object orphaned",
			details, domainerrors.ErrBackend.Code, logger.RequestID(ctx), owner.ID)
	} else {
		logger.GetLogger().WarnCtx(logger.EventUploadRollback, "document creation failed; bucket object deleted",
			details, domainerrors.ErrBackend.Code, logger.RequestID(ctx), owner.ID)
	}
	uc.record(ctx, obj.ID, entities.AuditRollback, owner.ID, details)
}

// UploadMany runs independent uploads concurrently. Results keep the input
// order; one failure does not stop the others.
func (uc *FileUseCase) UploadMany(ctx context.Context, owner *entities.User, inputs []UploadInput, path string) []UploadResult {
	results := make([]UploadResult, len(inputs))
	var g errgroup.Group
	g.SetLimit(uc.cfg.Concurrency)
	for i, in := range inputs {
		g.Go(func() error {
			f, err := uc.Upload(ctx, owner, in, "")
			results[i] = UploadResult{Name: in.Name, File: f, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	for _, r := range results {
		if r.Err == nil {
			uc.revalidate(path, owner)
			break
		}
	}
	return results
}

// ListParams narrows a listing.
type ListParams struct {
	Types      []string
	SearchText string
	Sort       string
	Limit      int
}

// List returns the files user owns or that are shared with them.
func (uc *FileUseCase) List(ctx context.Context, user *entities.User, p ListParams) (*entities.FileList, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	sort := p.Sort
	if sort == "" {
		sort = DefaultSort
	}
	list, err := uc.files.List(ctx, entities.FileFilter{
		OwnerID:    user.ID,
		Email:      NormalizeEmail(user.Email),
		Types:      p.Types,
		SearchText: strings.TrimSpace(p.SearchText),
		Sort:       sort,
		Limit:      p.Limit,
	})
	if err != nil {
		logFailure(ctx, logger.EventBackendError, "Failed to get files", err, nil)
		return nil, backendErr("Failed to get files", err)
	}
	return list, nil
}

// authorize loads fileID and checks action for user.
func (uc *FileUseCase) authorize(ctx context.Context, user *entities.User, fileID, action string) (*entities.File, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	f, err := uc.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrFileNotFound) {
			return nil, err
		}
		logFailure(ctx, logger.EventBackendError, "Failed to get file", err, map[string]any{"file_id": fileID})
		return nil, backendErr("Failed to get file", err)
	}
	ok, err := uc.authz.Can(user, f, action)
	if err != nil {
		return nil, fmt.Errorf("authorize %s: %w", action, err)
	}
	if !ok {
		logger.GetLogger().WarnCtx(logger.EventAccessDenied, "file action denied",
			map[string]any{"file_id": fileID, "action": action, "relation": authz.Relation(user, f)},
			domainerrors.ErrInsufficientAuth.Code, logger.RequestID(ctx), user.ID)
		// files the user cannot even view are reported as missing
		if allowed, _ := uc.authz.Can(user, f, authz.ActionView); !allowed {
			return nil, domainerrors.ErrFileNotFound
		}
		return nil, domainerrors.ErrInsufficientAuth
	}
	return f, nil
}

// Get returns one file the user can view.
func (uc *FileUseCase) Get(ctx context.Context, user *entities.User, fileID string) (*entities.File, error) {
	return uc.authorize(ctx, user, fileID, authz.ActionView)
}

// DownloadURL returns the bucket download link of a file the user may
// download.
func (uc *FileUseCase) DownloadURL(ctx context.Context, user *entities.User, fileID string) (string, error) {
	f, err := uc.authorize(ctx, user, fileID, authz.ActionDownload)
	if err != nil {
		return "", err
	}
	return uc.storage.DownloadURL(f.BucketFileID), nil
}

// Rename sets the file name to "<name>.<extension>".
func (uc *FileUseCase) Rename(ctx context.Context, user *entities.User, fileID, name, extension, path string) (*entities.File, error) {
	f, err := uc.authorize(ctx, user, fileID, authz.ActionRename)
	if err != nil {
		return nil, err
	}
	newName := strings.TrimSpace(name)
	if ext := strings.TrimPrefix(strings.TrimSpace(extension), "."); ext != "" {
		newName += "." + ext
	}
	updated, err := uc.files.UpdateName(ctx, fileID, newName)
	if err != nil {
		logFailure(ctx, logger.EventBackendError, "Failed to rename file", err, map[string]any{"file_id": fileID})
		return nil, backendErr("Failed to rename file", err)
	}
	uc.record(ctx, fileID, entities.AuditRename, user.ID, map[string]any{"from": f.Name, "to": newName})
	logger.GetLogger().InfoCtx(logger.EventFileRename, "file renamed", map[string]any{"file_id": fileID, "name": newName},
		"", logger.RequestID(ctx), user.ID)
	uc.revalidate(path, user, f.Users)
	return updated, nil
}

// Share replaces the list of emails the file is shared with.
func (uc *FileUseCase) Share(ctx context.Context, user *entities.User, fileID string, emails []string, path string) (*entities.File, error) {
	f, err := uc.authorize(ctx, user, fileID, authz.ActionShare)
	if err != nil {
		return nil, err
	}
	emails = NormalizeEmails(emails)
	updated, err := uc.files.UpdateUsers(ctx, fileID, emails)
	if err != nil {
		logFailure(ctx, logger.EventBackendError, "Failed to update file users", err, map[string]any{"file_id": fileID})
		return nil, backendErr("Failed to update file users", err)
	}
	uc.record(ctx, fileID, entities.AuditShare, user.ID, map[string]any{"from": f.Users, "to": emails})
	logger.GetLogger().InfoCtx(logger.EventFileShare, "file sharing updated",
		map[string]any{"file_id": fileID, "users": len(emails)}, "", logger.RequestID(ctx), user.ID)
	// users dropped from the list refresh too
	uc.revalidate(path, user, f.Users, emails)
	return updated, nil
}

// NormalizeEmails trims, lower-cases and de-duplicates addresses, dropping
// empty ones and keeping first-seen order.
func NormalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	seen := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = NormalizeEmail(e)
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Delete removes the document and then its bucket object. A bucketFileID
// that disagrees with the stored one is rejected.
func (uc *FileUseCase) Delete(ctx context.Context, user *entities.User, fileID, bucketFileID, path string) error {
	f, err := uc.authorize(ctx, user, fileID, authz.ActionDelete)
	if err != nil {
		return err
	}
	if bucketFileID != "" && bucketFileID != f.BucketFileID {
		return domainerrors.New(domainerrors.ErrValidation.Code, "bucketFileId does not match the file",
			map[string]any{"bucketFileId": bucketFileID})
	}
	if err := uc.files.Delete(ctx, fileID); err != nil {
		logFailure(ctx, logger.EventBackendError, "Failed to delete file", err, map[string]any{"file_id": fileID})
		return backendErr("Failed to delete file", err)
	}
	if err := uc.storage.Delete(ctx, f.BucketFileID); err != nil {
		logFailure(ctx, logger.EventBackendError, "Failed to delete file", err,
			map[string]any{"file_id": fileID, "bucket_file_id": f.BucketFileID})
		return backendErr("Failed to delete file", err)
	}
	uc.record(ctx, fileID, entities.AuditDelete, user.ID, map[string]any{"name": f.Name, "bucketFileId": f.BucketFileID})
	logger.GetLogger().InfoCtx(logger.EventFileDelete, "file deleted", map[string]any{"file_id": fileID},
		"", logger.RequestID(ctx), user.ID)
	uc.revalidate(path, user, f.Users)
	return nil
}

// TotalSpaceUsed totals the sizes of the files user owns per category and
// tracks the latest update in each.
func (uc *FileUseCase) TotalSpaceUsed(ctx context.Context, user *entities.User) (*entities.SpaceSummary, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	list, err := uc.files.List(ctx, entities.FileFilter{OwnerID: user.ID, OwnedOnly: true, Limit: SummaryLimit})
	if err != nil {
		logFailure(ctx, logger.EventBackendError, "Error calculating total space used", err, nil)
		return nil, backendErr("Error calculating total space used", err)
	}
	return Aggregate(list.Documents, uc.cfg.StorageQuota), nil
}

// Aggregate sums file sizes per category. Unknown types count as Other.
func Aggregate(files []entities.File, quota int64) *entities.SpaceSummary {
	s := &entities.SpaceSummary{Categories: make(map[string]entities.CategoryUsage, len(filetype.All)), All: quota}
	for _, c := range filetype.All {
		s.Categories[c] = entities.CategoryUsage{}
	}
	for _, f := range files {
		c := f.Type
		if !filetype.IsCategory(c) {
			c = filetype.Other
		}
		u := s.Categories[c]
		u.Size += f.Size
		if f.UpdatedAt.After(u.LatestDate) {
			u.LatestDate = f.UpdatedAt
		}
		s.Categories[c] = u
		s.Used += f.Size
	}
	return s
}

// UsageSection is one card of the dashboard summary.
type UsageSection struct {
	Title      string    `json:"title"`
	Size       int64     `json:"size"`
	SizeLabel  string    `json:"sizeLabel"`
	LatestDate time.Time `json:"latestDate"`
	URL        string    `json:"url"`
}

// UsageSummary is the dashboard view of a SpaceSummary.
type UsageSummary struct {
	Sections   []UsageSection `json:"sections"`
	Used       int64          `json:"used"`
	UsedLabel  string         `json:"usedLabel"`
	All        int64          `json:"all"`
	AllLabel   string         `json:"allLabel"`
	Percentage float64        `json:"percentage"`
}

// Summarize groups category totals into the Documents, Images, Media and
// Others sections.
func Summarize(total *entities.SpaceSummary) UsageSummary {
	out := UsageSummary{
		Used:      total.Used,
		UsedLabel: humanize.IBytes(uint64(total.Used)),
		All:       total.All,
		AllLabel:  humanize.IBytes(uint64(total.All)),
	}
	if total.All > 0 {
		out.Percentage = float64(total.Used) / float64(total.All) * 100
	}
	titler := cases.Title(language.English)
	for _, section := range filetype.Sections {
		var sec UsageSection
		for _, c := range filetype.TypesForSection(section) {
			u := total.Categories[c]
			sec.Size += u.Size
			if u.LatestDate.After(sec.LatestDate) {
				sec.LatestDate = u.LatestDate
			}
		}
		sec.Title = titler.String(section)
		sec.SizeLabel = humanize.IBytes(uint64(sec.Size))
		sec.URL = "/" + section
		out.Sections = append(out.Sections, sec)
	}
	return out
}

// Activity returns the local audit trail of a file, newest first.
func (uc *FileUseCase) Activity(ctx context.Context, user *entities.User, fileID string, limit int) ([]entities.FileAudit, error) {
	if _, err := uc.authorize(ctx, user, fileID, authz.ActionActivity); err != nil {
		return nil, err
	}
	if uc.audit == nil {
		return []entities.FileAudit{}, nil
	}
	entries, err := uc.audit.ListByFile(ctx, fileID, limit)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.ErrInternal, err)
	}
	return entries, nil
}

func (uc *FileUseCase) record(ctx context.Context, fileID, op, operator string, details map[string]any) {
	if uc.audit == nil {
		return
	}
	err := uc.audit.Record(ctx, entities.FileAudit{
		FileID:        fileID,
		Operation:     op,
		Operator:      operator,
		OperationTime: time.Now(),
		Details:       details,
	})
	if err != nil {
		logger.GetLogger().LogError("failed to record file audit", err, map[string]any{"file_id": fileID, "operation": op})
	}
}

// revalidate notifies actor and everyone in the shared lists.
func (uc *FileUseCase) revalidate(path string, actor *entities.User, shared ...[]string) {
	if uc.revalidator == nil || path == "" {
		return
	}
	audience := []string{actor.Email}
	for _, list := range shared {
		audience = append(audience, list...)
	}
	uc.revalidator.Revalidate(path, NormalizeEmails(audience))
}

// maxSizeLabel renders 50 MiB as "50MB", the way the limit is advertised.
func maxSizeLabel(n int64) string {
	const mib = 1024 * 1024
	if n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return strings.ReplaceAll(humanize.IBytes(uint64(n)), " ", "")
}
