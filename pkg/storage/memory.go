package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"
)

type memoryObject struct {
	modified    time.Time
	contentType string
	acl         ACL
	data        []byte
}

// Memory is an in-process Storage for development and tests.
type Memory struct {
	objects map[string]memoryObject
	baseURL string
	maxSize int64
	mu      sync.RWMutex
}

// NewMemory creates an empty in-memory store serving URLs under baseURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{
		objects: make(map[string]memoryObject),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		maxSize: DefaultMaxUploadSize,
	}
}

// Put implements Storage.
func (m *Memory) Put(_ context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	o := &putOptions{acl: ACLPrivate}
	for _, opt := range opts {
		opt(o)
	}
	limit := m.maxSize
	if o.maxSize > 0 {
		limit = min(limit, o.maxSize)
	}
	if size > limit {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, size, limit)
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read input: %v", ErrUploadFailed, err)
	}
	switch {
	case len(data) == 0:
		return nil, ErrEmptyFile
	case int64(len(data)) > limit:
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, limit)
	}

	ct := o.contentType
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	key := o.key
	if key == "" {
		key = buildKey(o.owner, o.prefix, ct)
	} else if err := ValidateKey(key); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: data, contentType: ct, acl: o.acl, modified: time.Now()}

	return &FileInfo{Key: key, Size: int64(len(data)), ContentType: ct, ACL: o.acl}, nil
}

// Get implements Storage.
func (m *Memory) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete implements Storage.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// List implements Storage. Results are sorted by key.
func (m *Memory) List(_ context.Context, prefix string) ([]FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []FileInfo
	for k, obj := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, FileInfo{
				Key:          k,
				Size:         int64(len(obj.data)),
				ContentType:  obj.contentType,
				ACL:          obj.acl,
				LastModified: obj.modified,
			})
		}
	}
	slices.SortFunc(out, func(a, b FileInfo) int { return strings.Compare(a.Key, b.Key) })
	return out, nil
}

// URL implements Storage. Memory URLs are never signed.
func (m *Memory) URL(_ context.Context, key string, _ ...URLOption) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return m.baseURL + "/" + (&url.URL{Path: key}).EscapedPath(), nil
}

var _ Storage = (*Memory)(nil)
