package usecases

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"store-it/internal/domain/entities"
	domainerrors "store-it/internal/domain/errors"
)

var errBackendDown = errors.New("backend unavailable")

type fakeFiles struct {
	mu        sync.Mutex
	docs      map[string]*entities.File
	seq       int
	createErr error
	listErr   error
	lastList  entities.FileFilter
}

func newFakeFiles() *fakeFiles { return &fakeFiles{docs: map[string]*entities.File{}} }

func (f *fakeFiles) Create(_ context.Context, file *entities.File) (*entities.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	cp := *file
	cp.ID = fmt.Sprintf("file-%d", f.seq)
	cp.Owner = entities.OwnerRef{ID: file.Owner.ID}
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.docs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeFiles) put(file entities.File) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[file.ID] = &file
}

func (f *fakeFiles) GetByID(_ context.Context, id string) (*entities.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, domainerrors.ErrFileNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeFiles) List(_ context.Context, filter entities.FileFilter) (*entities.FileList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = filter
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := &entities.FileList{Documents: []entities.File{}}
	for _, d := range f.docs {
		visible := d.Owner.ID == filter.OwnerID || (!filter.OwnedOnly && d.SharedWith(filter.Email))
		if !visible {
			continue
		}
		if len(filter.Types) > 0 && !contains(filter.Types, d.Type) {
			continue
		}
		if filter.SearchText != "" && !strings.Contains(d.Name, filter.SearchText) {
			continue
		}
		out.Documents = append(out.Documents, *d)
	}
	sort.Slice(out.Documents, func(i, j int) bool { return out.Documents[i].ID < out.Documents[j].ID })
	out.Total = len(out.Documents)
	return out, nil
}

func (f *fakeFiles) UpdateName(_ context.Context, id, name string) (*entities.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, domainerrors.ErrFileNotFound
	}
	d.Name = name
	cp := *d
	return &cp, nil
}

func (f *fakeFiles) UpdateUsers(_ context.Context, id string, emails []string) (*entities.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, domainerrors.ErrFileNotFound
	}
	d.Users = append([]string{}, emails...)
	cp := *d
	return &cp, nil
}

func (f *fakeFiles) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return domainerrors.ErrFileNotFound
	}
	delete(f.docs, id)
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	seq       int
	putErr    error
	deleteErr error
	deleted   []string
}

func newFakeStorage() *fakeStorage { return &fakeStorage{objects: map[string][]byte{}} }

func (s *fakeStorage) Put(_ context.Context, name string, size int64, r io.Reader) (*entities.StoredObject, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return nil, s.putErr
	}
	s.seq++
	id := fmt.Sprintf("obj-%d", s.seq)
	s.objects[id] = b
	return &entities.StoredObject{ID: id, Name: name, Size: int64(len(b))}, nil
}

func (s *fakeStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.objects, id)
	return nil
}

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *fakeStorage) ViewURL(id string) string     { return "https://backend.test/view/" + id }
func (s *fakeStorage) DownloadURL(id string) string { return "https://backend.test/download/" + id }

type fakeAudit struct {
	mu      sync.Mutex
	entries []entities.FileAudit
}

func (a *fakeAudit) Record(_ context.Context, e entities.FileAudit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *fakeAudit) ListByFile(_ context.Context, fileID string, limit int) ([]entities.FileAudit, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []entities.FileAudit{}
	for i := len(a.entries) - 1; i >= 0; i-- {
		if a.entries[i].FileID == fileID {
			out = append(out, a.entries[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *fakeAudit) ops() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var ops []string
	for _, e := range a.entries {
		ops = append(ops, e.Operation)
	}
	return ops
}

type fakeRevalidator struct {
	mu        sync.Mutex
	paths     []string
	audiences [][]string
}

func (r *fakeRevalidator) Revalidate(path string, audience []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
	r.audiences = append(r.audiences, audience)
}

type fakeAccounts struct {
	sent       []string
	tokenErr   error
	sessionErr error
	current    map[string]*entities.Account
	deleted    []string
	deleteErr  error
	nextID     string
}

func (a *fakeAccounts) SendEmailToken(_ context.Context, email string) (string, error) {
	if a.tokenErr != nil {
		return "", a.tokenErr
	}
	a.sent = append(a.sent, email)
	if a.nextID != "" {
		return a.nextID, nil
	}
	return "acct-" + email, nil
}

func (a *fakeAccounts) CreateSession(_ context.Context, accountID, code string) (*entities.Session, error) {
	if a.sessionErr != nil {
		return nil, a.sessionErr
	}
	return &entities.Session{ID: "sess-1", AccountID: accountID, Secret: "secret-" + code}, nil
}

func (a *fakeAccounts) Current(_ context.Context, secret string) (*entities.Account, error) {
	if acct, ok := a.current[secret]; ok {
		return acct, nil
	}
	return nil, errBackendDown
}

func (a *fakeAccounts) DeleteCurrentSession(_ context.Context, secret string) error {
	a.deleted = append(a.deleted, secret)
	return a.deleteErr
}

type fakeUsers struct {
	byEmail   map[string]*entities.User
	created   []*entities.User
	lookupErr error
	createErr error
}

func newFakeUsers(users ...*entities.User) *fakeUsers {
	f := &fakeUsers{byEmail: map[string]*entities.User{}}
	for _, u := range users {
		f.byEmail[u.Email] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.byEmail[email], nil
}

func (f *fakeUsers) GetByAccountID(_ context.Context, accountID string) (*entities.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	for _, u := range f.byEmail {
		if u.AccountID == accountID {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) Create(_ context.Context, u *entities.User) (*entities.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	cp := *u
	cp.ID = "user-" + u.Email
	f.created = append(f.created, &cp)
	f.byEmail[cp.Email] = &cp
	return &cp, nil
}
