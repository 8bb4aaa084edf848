package usecases

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"store-it/internal/authz"
	"store-it/internal/domain/entities"
	domainerrors "store-it/internal/domain/errors"
	"store-it/internal/filetype"
	"store-it/internal/logger"
)

func TestMain(m *testing.M) {
	logger.SetLogger(logger.New(nil, io.Discard))
	os.Exit(m.Run())
}

var (
	ada = &entities.User{ID: "user-ada", Email: "ada@example.com", FullName: "Ada", AccountID: "acct-ada"}
	bob = &entities.User{ID: "user-bob", Email: "bob@example.com", FullName: "Bob", AccountID: "acct-bob"}
	eve = &entities.User{ID: "user-eve", Email: "eve@example.com", FullName: "Eve", AccountID: "acct-eve"}
)

type fileFixture struct {
	files   *fakeFiles
	storage *fakeStorage
	audit   *fakeAudit
	reval   *fakeRevalidator
	uc      *FileUseCase
}

func newFileFixture(t *testing.T) *fileFixture {
	t.Helper()
	a, err := authz.New()
	if err != nil {
		t.Fatalf("authz: %v", err)
	}
	fx := &fileFixture{
		files:   newFakeFiles(),
		storage: newFakeStorage(),
		audit:   &fakeAudit{},
		reval:   &fakeRevalidator{},
	}
	fx.uc = NewFileUseCase(fx.files, fx.storage, fx.audit, a, fx.reval, FileUseCaseConfig{
		MaxFileSize:  50 * 1024 * 1024,
		StorageQuota: 2 * 1024 * 1024 * 1024,
		Concurrency:  2,
	})
	return fx
}

func input(name, body string) UploadInput {
	return UploadInput{
		Name: name,
		Size: int64(len(body)),
		Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(body)), nil },
	}
}

func TestUploadCreatesDocument(t *testing.T) {
	fx := newFileFixture(t)
	f, err := fx.uc.Upload(context.Background(), ada, input("Report.PDF", "hello"), "/documents")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if f.Type != filetype.Document || f.Extension != "pdf" || f.Size != 5 {
		t.Errorf("unexpected document %+v", f)
	}
	if f.Owner.ID != ada.ID || f.AccountID != ada.AccountID || f.BucketFileID != "obj-1" {
		t.Errorf("unexpected ownership %+v", f)
	}
	if f.URL != "https://backend.test/view/obj-1" || f.Users == nil || len(f.Users) != 0 {
		t.Errorf("unexpected url/users %+v", f)
	}
	if len(fx.reval.paths) != 1 || fx.reval.paths[0] != "/documents" {
		t.Errorf("expected revalidation of /documents, got %v", fx.reval.paths)
	}
	if strings.Join(fx.reval.audiences[0], ",") != "ada@example.com" {
		t.Errorf("upload should only notify the owner, got %v", fx.reval.audiences[0])
	}
	if ops := fx.audit.ops(); len(ops) != 1 || ops[0] != entities.AuditUpload {
		t.Errorf("unexpected audit %v", ops)
	}
}

func TestUploadTooLarge(t *testing.T) {
	fx := newFileFixture(t)
	in := UploadInput{Name: "movie.mkv", Size: 50*1024*1024 + 1, Open: func() (io.ReadCloser, error) {
		t.Fatal("content must not be opened")
		return nil, nil
	}}
	_, err := fx.uc.Upload(context.Background(), ada, in, "/")
	if !errors.Is(err, domainerrors.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if err.Error() != "movie.mkv is too large. Max file size is 50MB." {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestUploadRollsBackObjectWhenDocumentFails(t *testing.T) {
	fx := newFileFixture(t)
	fx.files.createErr = errBackendDown

	_, err := fx.uc.Upload(context.Background(), ada, input("a.txt", "abc"), "/documents")
	if !errors.Is(err, domainerrors.ErrBackend) || !errors.Is(err, errBackendDown) {
		t.Fatalf("expected wrapped backend error, got %v", err)
	}
	if err.Error() != "Failed to upload file" {
		t.Errorf("backend message leaked: %q", err.Error())
	}
	if fx.storage.count() != 0 || len(fx.storage.deleted) != 1 {
		t.Errorf("expected the stored object to be deleted once, deleted=%v", fx.storage.deleted)
	}
	if len(fx.reval.paths) != 0 {
		t.Error("failed upload must not revalidate")
	}
	if ops := fx.audit.ops(); len(ops) != 1 || ops[0] != entities.AuditRollback {
		t.Errorf("expected rollback audit, got %v", ops)
	}
}

func TestUploadRollbackFailureStillReturnsOriginalError(t *testing.T) {
	fx := newFileFixture(t)
	fx.files.createErr = errBackendDown
	fx.storage.deleteErr = errors.New("delete failed")

	_, err := fx.uc.Upload(context.Background(), ada, input("a.txt", "abc"), "")
	if !errors.Is(err, errBackendDown) {
		t.Fatalf("expected document error, got %v", err)
	}
	if len(fx.storage.deleted) != 1 {
		t.Errorf("rollback is attempted exactly once, got %d", len(fx.storage.deleted))
	}
}

func TestUploadStorageFailureCreatesNoDocument(t *testing.T) {
	fx := newFileFixture(t)
	fx.storage.putErr = errBackendDown
	if _, err := fx.uc.Upload(context.Background(), ada, input("a.txt", "abc"), ""); !errors.Is(err, domainerrors.ErrBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if len(fx.files.docs) != 0 {
		t.Error("no document expected")
	}
}

func TestUploadRequiresUser(t *testing.T) {
	fx := newFileFixture(t)
	if _, err := fx.uc.Upload(context.Background(), nil, input("a.txt", "abc"), ""); !errors.Is(err, domainerrors.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUploadManyIsIndependent(t *testing.T) {
	fx := newFileFixture(t)
	inputs := []UploadInput{
		input("a.png", "1"),
		{Name: "huge.bin", Size: 60 * 1024 * 1024, Open: func() (io.ReadCloser, error) { return nil, errors.New("unused") }},
		input("c.mp3", "333"),
	}
	results := fx.uc.UploadMany(context.Background(), ada, inputs, "/images")
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].File.Type != filetype.Image {
		t.Errorf("first upload: %+v", results[0])
	}
	if !errors.Is(results[1].Err, domainerrors.ErrFileTooLarge) {
		t.Errorf("second upload should be too large: %v", results[1].Err)
	}
	if results[2].Err != nil || results[2].File.Type != filetype.Audio {
		t.Errorf("third upload: %+v", results[2])
	}
	if len(fx.reval.paths) != 1 {
		t.Errorf("expected a single revalidation, got %v", fx.reval.paths)
	}
}

func TestListPassesFilter(t *testing.T) {
	fx := newFileFixture(t)
	fx.files.put(entities.File{ID: "f1", Name: "trip.mp4", Type: filetype.Video, Owner: entities.OwnerRef{ID: ada.ID}})
	fx.files.put(entities.File{ID: "f2", Name: "notes.txt", Type: filetype.Document, Owner: entities.OwnerRef{ID: bob.ID},
		Users: []string{"ada@example.com"}})
	fx.files.put(entities.File{ID: "f3", Name: "secret.txt", Type: filetype.Document, Owner: entities.OwnerRef{ID: eve.ID}})

	list, err := fx.uc.List(context.Background(), ada, ListParams{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("expected own + shared files, got %+v", list.Documents)
	}
	if fx.files.lastList.Sort != DefaultSort || fx.files.lastList.Email != "ada@example.com" {
		t.Errorf("unexpected filter %+v", fx.files.lastList)
	}

	list, err = fx.uc.List(context.Background(), ada, ListParams{Types: filetype.TypesForSection("media"), SearchText: " trip ", Sort: "name-asc", Limit: 10})
	if err != nil || list.Total != 1 || list.Documents[0].ID != "f1" {
		t.Fatalf("filtered list: %+v %v", list, err)
	}
	if fx.files.lastList.SearchText != "trip" || fx.files.lastList.Limit != 10 {
		t.Errorf("unexpected filter %+v", fx.files.lastList)
	}
}

func TestListRequiresUser(t *testing.T) {
	fx := newFileFixture(t)
	_, err := fx.uc.List(context.Background(), nil, ListParams{})
	if !errors.Is(err, domainerrors.ErrUserNotFound) || err.Error() != "User not found" {
		t.Fatalf("expected User not found, got %v", err)
	}
}

func TestRename(t *testing.T) {
	fx := newFileFixture(t)
	fx.files.put(entities.File{ID: "f1", Name: "old.pdf", Extension: "pdf", Owner: entities.OwnerRef{ID: ada.ID}, Users: []string{"bob@example.com"}})

	f, err := fx.uc.Rename(context.Background(), ada, "f1", "new", "pdf", "/documents")
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if f.Name != "new.pdf" {
		t.Errorf("expected new.pdf, got %s", f.Name)
	}
	if strings.Join(fx.reval.audiences[0], ",") != "ada@example.com,bob@example.com" {
		t.Errorf("rename should notify owner and shared users, got %v", fx.reval.audiences[0])
	}
	if _, err := fx.uc.Rename(context.Background(), bob, "f1", "x", "pdf", ""); !errors.Is(err, domainerrors.ErrInsufficientAuth) {
		t.Errorf("shared user must not rename, got %v", err)
	}
	if _, err := fx.uc.Rename(context.Background(), eve, "f1", "x", "pdf", ""); !errors.Is(err, domainerrors.ErrFileNotFound) {
		t.Errorf("stranger should see not found, got %v", err)
	}
}

func TestRenameWithoutExtensionKeepsBareName(t *testing.T) {
	fx := newFileFixture(t)
	fx.files.put(entities.File{ID: "f1", Name: "Makefile.txt", Extension: "txt", Owner: entities.OwnerRef{ID: ada.ID}})

	for _, ext := range []string{"", " ", "."} {
		f, err := fx.uc.Rename(context.Background(), ada, "f1", "Makefile", ext, "")
		if err != nil {
			t.Fatalf("Rename(%q): %v", ext, err)
		}
		if f.Name != "Makefile" {
			t.Errorf("extension %q: expected bare name, got %q", ext, f.Name)
		}
	}
}

func TestDownloadURL(t *testing.T) {
	fx := newFileFixture(t)
	fx.files.put(entities.File{ID: "f1", Name: "a.pdf", BucketFileID: "obj-9", Owner: entities.OwnerRef{ID: ada.ID}, Users: []string{"bob@example.com"}})

	for _, u := range []*entities.User{ada, bob} {
		url, err := fx.uc.DownloadURL(context.Background(), u, "f1")
		if err != nil || url != "https://backend.test/download/obj-9" {
			t.Errorf("%s: got %q, %v", u.Email, url, err)
		}
	}
	if _, err := fx.uc.DownloadURL(context.Background(), eve, "f1"); !errors.Is(err, domainerrors.ErrFileNotFound) {
		t.Errorf("stranger should see not found, got %v", err)
	}
}

func TestShareNormalizesEmails(t *testing.T) {
	fx := newFileFixture(t)
	fx.files.put(entities.File{ID: "f1", Name: "a.pdf", Owner: entities.OwnerRef{ID: ada.ID}, Users: []string{}})

	f, err := fx.uc.Share(context.Background(), ada, "f1", []string{" Bob@Example.com", "bob@example.com", "", "eve@example.com"}, "/")
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if strings.Join(f.Users, ",") != "bob@example.com,eve@example.com" {
		t.Errorf("unexpected users %v", f.Users)
	}
	if strings.Join(fx.reval.audiences[0], ",") != "ada@example.com,bob@example.com,eve@example.com" {
		t.Errorf("unexpected audience %v", fx.reval.audiences[0])
	}

	got, err := fx.uc.Get(context.Background(), bob, "f1")
	if err != nil || got.ID != "f1" {
		t.Fatalf("shared user should view the file: %v", err)
	}

	// bob drops off the list but still has to refresh
	if _, err := fx.uc.Share(context.Background(), ada, "f1", []string{"eve@example.com"}, "/"); err != nil {
		t.Fatalf("Share: %v", err)
	}
	if strings.Join(fx.reval.audiences[1], ",") != "ada@example.com,bob@example.com,eve@example.com" {
		t.Errorf("removed users should be notified, got %v", fx.reval.audiences[1])
	}
}

func TestDelete(t *testing.T) {
	fx := newFileFixture(t)
	uploaded, err := fx.uc.Upload(context.Background(), ada, input("a.txt", "abc"), "")
	if err != nil {
		t.Fatal(err)
	}

	err = fx.uc.Delete(context.Background(), ada, uploaded.ID, "wrong-id", "/documents")
	if !errors.Is(err, domainerrors.ErrValidation) {
		t.Fatalf("mismatched bucket id should be rejected, got %v", err)
	}
	if err := fx.uc.Delete(context.Background(), ada, uploaded.ID, uploaded.BucketFileID, "/documents"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fx.files.docs) != 0 || fx.storage.count() != 0 {
		t.Error("document and object should both be gone")
	}
	if _, err := fx.uc.Get(context.Background(), ada, uploaded.ID); !errors.Is(err, domainerrors.ErrFileNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestAggregate(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(48 * time.Hour)
	files := []entities.File{
		{Type: filetype.Document, Size: 100, UpdatedAt: t1},
		{Type: filetype.Document, Size: 50, UpdatedAt: t2},
		{Type: filetype.Video, Size: 1000, UpdatedAt: t1},
		{Type: filetype.Audio, Size: 10, UpdatedAt: t2},
		{Type: "unknown", Size: 1, UpdatedAt: t1},
	}
	s := Aggregate(files, 2048)
	if s.Used != 1161 || s.All != 2048 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if doc := s.Categories[filetype.Document]; doc.Size != 150 || !doc.LatestDate.Equal(t2) {
		t.Errorf("unexpected document usage %+v", doc)
	}
	if img := s.Categories[filetype.Image]; img.Size != 0 || !img.LatestDate.IsZero() {
		t.Errorf("empty category should be zero, got %+v", img)
	}
	if s.Categories[filetype.Other].Size != 1 {
		t.Errorf("unknown type should count as other")
	}

	sum := Summarize(s)
	if len(sum.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(sum.Sections))
	}
	media := sum.Sections[2]
	if media.Title != "Media" || media.Size != 1010 || !media.LatestDate.Equal(t2) || media.URL != "/media" {
		t.Errorf("unexpected media section %+v", media)
	}
	if sum.Sections[0].Title != "Documents" || sum.Sections[0].SizeLabel != "150 B" {
		t.Errorf("unexpected documents section %+v", sum.Sections[0])
	}
	if sum.AllLabel != "2.0 KiB" {
		t.Errorf("unexpected all label %q", sum.AllLabel)
	}
}

func TestTotalSpaceUsedCountsOwnedOnly(t *testing.T) {
	fx := newFileFixture(t)
	fx.files.put(entities.File{ID: "f1", Type: filetype.Image, Size: 10, Owner: entities.OwnerRef{ID: ada.ID}})
	fx.files.put(entities.File{ID: "f2", Type: filetype.Image, Size: 99, Owner: entities.OwnerRef{ID: bob.ID}, Users: []string{ada.Email}})

	s, err := fx.uc.TotalSpaceUsed(context.Background(), ada)
	if err != nil {
		t.Fatalf("TotalSpaceUsed: %v", err)
	}
	if s.Used != 10 || !fx.files.lastList.OwnedOnly || fx.files.lastList.Limit != SummaryLimit {
		t.Errorf("unexpected summary %+v filter %+v", s, fx.files.lastList)
	}

	fx.files.listErr = errBackendDown
	if _, err := fx.uc.TotalSpaceUsed(context.Background(), ada); !errors.Is(err, domainerrors.ErrBackend) {
		t.Errorf("expected backend error, got %v", err)
	}
}

func TestActivity(t *testing.T) {
	fx := newFileFixture(t)
	f, err := fx.uc.Upload(context.Background(), ada, input("a.txt", "abc"), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fx.uc.Rename(context.Background(), ada, f.ID, "b", "txt", ""); err != nil {
		t.Fatal(err)
	}
	entries, err := fx.uc.Activity(context.Background(), ada, f.ID, 10)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(entries) != 2 || entries[0].Operation != entities.AuditRename {
		t.Errorf("unexpected activity %+v", entries)
	}
	if _, err := fx.uc.Activity(context.Background(), bob, f.ID, 10); err == nil {
		t.Error("non-owner must not read activity")
	}
}
