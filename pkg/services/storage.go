package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/firekit/firekit/pkg/activator"
	"github.com/firekit/firekit/pkg/backend"
	"github.com/firekit/firekit/pkg/storage"
)

// Storage keeps files under a per-user prefix.
type Storage struct {
	store   storage.Storage
	project string
	uid     string
}

// NewStorage creates the storage service for one user. An empty uid makes
// every operation fail with ErrUnauthenticated.
func NewStorage(store storage.Storage, projectID, uid string) *Storage {
	return &Storage{store: store, project: projectID, uid: uid}
}

func newStorage(ctx context.Context, sess *backend.Session, mod *backend.Module, _ activator.InjectFunc) (any, error) {
	if mod.Storage == nil {
		return nil, fmt.Errorf("%w: storage", backend.ErrNotConfigured)
	}
	return NewStorage(mod.Storage, sess.ProjectID, verifiedUID(ctx, sess, mod)), nil
}

// Prefix returns the key prefix of the current user.
func (s *Storage) Prefix() (string, error) {
	if s.uid == "" {
		return "", ErrUnauthenticated
	}
	return strings.Join([]string{
		storage.SanitizeSegment(s.project),
		"users",
		storage.SanitizeSegment(s.uid),
	}, "/") + "/", nil
}

func (s *Storage) key(name string) (string, error) {
	prefix, err := s.Prefix()
	if err != nil {
		return "", err
	}
	clean := storage.SanitizeSegment(name)
	if clean == "" {
		return "", fmt.Errorf("%w: %q", storage.ErrInvalidKey, name)
	}
	return prefix + clean, nil
}

// Upload stores r under name, replacing an existing file.
func (s *Storage) Upload(ctx context.Context, name string, r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error) {
	key, err := s.key(name)
	if err != nil {
		return nil, err
	}
	return s.store.Put(ctx, r, size, append(opts, storage.WithKey(key))...)
}

// Download returns the body of name; the caller closes it.
func (s *Storage) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	key, err := s.key(name)
	if err != nil {
		return nil, err
	}
	return s.store.Get(ctx, key)
}

// Delete removes name.
func (s *Storage) Delete(ctx context.Context, name string) error {
	key, err := s.key(name)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, key)
}

// List returns the user's files with keys relative to the user prefix.
func (s *Storage) List(ctx context.Context) ([]storage.FileInfo, error) {
	prefix, err := s.Prefix()
	if err != nil {
		return nil, err
	}
	files, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].Key = strings.TrimPrefix(files[i].Key, prefix)
	}
	return files, nil
}

// URL returns an access URL for name.
func (s *Storage) URL(ctx context.Context, name string, opts ...storage.URLOption) (string, error) {
	key, err := s.key(name)
	if err != nil {
		return "", err
	}
	return s.store.URL(ctx, key, opts...)
}
