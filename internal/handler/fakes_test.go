package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"store-it/internal/domain/entities"
	domainerrors "store-it/internal/domain/errors"
)

const validCode = "123456"

type memAccounts struct {
	mu       sync.Mutex
	sessions map[string]string // secret -> account id
	emails   map[string]string // account id -> email
}

func newMemAccounts() *memAccounts {
	return &memAccounts{sessions: map[string]string{}, emails: map[string]string{}}
}

func (a *memAccounts) SendEmailToken(_ context.Context, email string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := "acct-" + strings.SplitN(email, "@", 2)[0]
	a.emails[id] = email
	return id, nil
}

func (a *memAccounts) CreateSession(_ context.Context, accountID, code string) (*entities.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if code != validCode {
		return nil, errors.New("invalid token")
	}
	secret := "secret-" + accountID
	a.sessions[secret] = accountID
	return &entities.Session{ID: "sess-" + accountID, AccountID: accountID, Secret: secret}, nil
}

func (a *memAccounts) Current(_ context.Context, secret string) (*entities.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id, ok := a.sessions[secret]
	if !ok {
		return nil, errors.New("session expired")
	}
	return &entities.Account{ID: id, Email: a.emails[id]}, nil
}

func (a *memAccounts) DeleteCurrentSession(_ context.Context, secret string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, secret)
	return nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*entities.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*entities.User{}} }

func (u *memUsers) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.users[email], nil
}

func (u *memUsers) GetByAccountID(_ context.Context, accountID string) (*entities.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, x := range u.users {
		if x.AccountID == accountID {
			return x, nil
		}
	}
	return nil, nil
}

func (u *memUsers) Create(_ context.Context, user *entities.User) (*entities.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	cp := *user
	cp.ID = "user-" + user.AccountID
	u.users[cp.Email] = &cp
	return &cp, nil
}

type memFiles struct {
	mu        sync.Mutex
	docs      map[string]*entities.File
	seq       int
	createErr error
}

func newMemFiles() *memFiles { return &memFiles{docs: map[string]*entities.File{}} }

func (f *memFiles) Create(_ context.Context, file *entities.File) (*entities.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.seq++
	cp := *file
	cp.ID = fmt.Sprintf("doc-%d", f.seq)
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	f.docs[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *memFiles) GetByID(_ context.Context, id string) (*entities.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[id]
	if !ok {
		return nil, domainerrors.ErrFileNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *memFiles) List(_ context.Context, filter entities.FileFilter) (*entities.FileList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &entities.FileList{Documents: []entities.File{}}
	for _, d := range f.docs {
		if d.Owner.ID == filter.OwnerID || (!filter.OwnedOnly && d.SharedWith(filter.Email)) {
			out.Documents = append(out.Documents, *d)
		}
	}
	out.Total = len(out.Documents)
	return out, nil
}

func (f *memFiles) UpdateName(_ context.Context, id, name string) (*entities.File, error) {
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

func (f *memFiles) UpdateUsers(_ context.Context, id string, emails []string) (*entities.File, error) {
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

func (f *memFiles) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[id]; !ok {
		return domainerrors.ErrFileNotFound
	}
	delete(f.docs, id)
	return nil
}

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	seq     int
}

func newMemStorage() *memStorage { return &memStorage{objects: map[string][]byte{}} }

func (s *memStorage) Put(_ context.Context, name string, _ int64, r io.Reader) (*entities.StoredObject, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	id := fmt.Sprintf("obj-%d", s.seq)
	s.objects[id] = b
	return &entities.StoredObject{ID: id, Name: name, Size: int64(len(b))}, nil
}

func (s *memStorage) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, id)
	return nil
}

func (s *memStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *memStorage) ViewURL(id string) string     { return "https://backend.test/view/" + id }
func (s *memStorage) DownloadURL(id string) string { return "https://backend.test/download/" + id }

type memAudit struct {
	mu      sync.Mutex
	entries []entities.FileAudit
}

func (a *memAudit) Record(_ context.Context, e entities.FileAudit) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

func (a *memAudit) ListByFile(_ context.Context, fileID string, limit int) ([]entities.FileAudit, error) {
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
