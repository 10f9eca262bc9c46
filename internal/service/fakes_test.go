package service

import (
	"context"
	"sort"
	"sync"

	"github.com/skyvault/skyvault/internal/model"
	"github.com/skyvault/skyvault/internal/repository"
)

// In-memory repository doubles honoring the same error contracts as
// the sqlx implementations.

type memFileRepo struct {
	mu    sync.Mutex
	files map[string]map[string]*model.File // userID -> path -> record
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{files: map[string]map[string]*model.File{}}
}

func (r *memFileRepo) Create(_ context.Context, file *model.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byPath, ok := r.files[file.UserID]
	if !ok {
		byPath = map[string]*model.File{}
		r.files[file.UserID] = byPath
	}
	if _, exists := byPath[file.Path]; exists {
		return repository.ErrFileExists
	}
	cp := *file
	byPath[file.Path] = &cp
	return nil
}

func (r *memFileRepo) Update(_ context.Context, path, userID string, patch repository.FilePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.files[userID][path]
	if !ok {
		return repository.ErrFileNotFound
	}
	if patch.Path != nil && *patch.Path != path {
		// (user, path) is the primary key; a rename onto an occupied
		// path violates it just like the real store.
		if _, taken := r.files[userID][*patch.Path]; taken {
			return repository.ErrFileExists
		}
		delete(r.files[userID], path)
		rec.Path = *patch.Path
		r.files[userID][rec.Path] = rec
	}
	rec.UpdatedAt = patch.UpdatedAt
	return nil
}

func (r *memFileRepo) Delete(_ context.Context, path, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[userID][path]; !ok {
		return repository.ErrFileNotFound
	}
	delete(r.files[userID], path)
	return nil
}

func (r *memFileRepo) ByPath(_ context.Context, path, userID string) (*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.files[userID][path]
	if !ok {
		return nil, repository.ErrFileNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memFileRepo) OwnedBy(_ context.Context, userID string) ([]*model.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.File
	for _, rec := range r.files[userID] {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (r *memFileRepo) Owns(_ context.Context, userID, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.files[userID][path]
	return ok, nil
}

type shareKey struct {
	filePath, ownerID, userID string
}

type memShareRepo struct {
	mu     sync.Mutex
	grants map[shareKey]*model.ShareGrant
	files  *memFileRepo // for joining owner records in ReceivedBy
}

func newMemShareRepo(files *memFileRepo) *memShareRepo {
	return &memShareRepo{grants: map[shareKey]*model.ShareGrant{}, files: files}
}

func (r *memShareRepo) Create(_ context.Context, grant *model.ShareGrant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := shareKey{grant.FilePath, grant.OwnerID, grant.UserID}
	if _, exists := r.grants[k]; exists {
		return repository.ErrShareExists
	}
	cp := *grant
	r.grants[k] = &cp
	return nil
}

func (r *memShareRepo) ByKey(_ context.Context, filePath, ownerID, userID string) (*model.ShareGrant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	grant, ok := r.grants[shareKey{filePath, ownerID, userID}]
	if !ok {
		return nil, repository.ErrShareNotFound
	}
	cp := *grant
	return &cp, nil
}

func (r *memShareRepo) ReceivedBy(ctx context.Context, userID string) ([]*model.SharedFile, error) {
	r.mu.Lock()
	grants := []*model.ShareGrant{}
	for _, g := range r.grants {
		if g.UserID == userID {
			cp := *g
			grants = append(grants, &cp)
		}
	}
	r.mu.Unlock()

	out := []*model.SharedFile{}
	for _, g := range grants {
		rec, err := r.files.ByPath(ctx, g.FilePath, g.OwnerID)
		if err != nil {
			continue
		}
		out = append(out, &model.SharedFile{File: *rec, Permission: g.Permission})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Path < out[j].Path
	})
	return out, nil
}

func (r *memShareRepo) GranteesOf(_ context.Context, filePath, ownerID string) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.User{}
	for _, g := range r.grants {
		if g.FilePath == filePath && g.OwnerID == ownerID {
			out = append(out, &model.User{ID: g.UserID})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memShareRepo) UpdatePermission(_ context.Context, filePath, ownerID, userID string, permission model.Permission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	grant, ok := r.grants[shareKey{filePath, ownerID, userID}]
	if !ok {
		return repository.ErrShareNotFound
	}
	grant.Permission = permission
	return nil
}

func (r *memShareRepo) Delete(_ context.Context, filePath, ownerID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := shareKey{filePath, ownerID, userID}
	if _, ok := r.grants[k]; !ok {
		return repository.ErrShareNotFound
	}
	delete(r.grants, k)
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*model.User{}}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *memUserRepo) ByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) ByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}
