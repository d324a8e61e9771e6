package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	crmapp "github.com/aprovacrm/backend/internal/application/crm"
)

// MemoryStorage keeps objects in process memory. It is used when object
// storage is disabled in config. Presigned URLs point at BaseURL and are
// not served by anything.
type MemoryStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		BaseURL: "http://storage.local",
		objects: make(map[string]memoryObject),
	}
}

func (m *MemoryStorage) GenerateUploadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	return m.signedURL("upload", key, expiresIn)
}

func (m *MemoryStorage) GenerateDownloadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	return m.signedURL("download", key, expiresIn)
}

func (m *MemoryStorage) signedURL(op, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errEmptyKey
	}
	if expiresIn <= 0 {
		expiresIn = defaultPresignExpiration
	}
	exp := time.Now().Add(expiresIn)
	return fmt.Sprintf("%s/%s/%s?expires=%d", m.BaseURL, op, url.PathEscape(key), exp.Unix()), exp, nil
}

// Upload stores a copy of body
func (m *MemoryStorage) Upload(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if key == "" {
		return errEmptyKey
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return fmt.Errorf("failed to read upload body: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	return nil
}

// Put stores data directly, standing in for a client PUT to a presigned URL
func (m *MemoryStorage) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: data}
}

func (m *MemoryStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

func (m *MemoryStorage) DeleteObject(_ context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Get returns a stored object's bytes
func (m *MemoryStorage) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.data, ok
}

var _ crmapp.ObjectStorage = (*MemoryStorage)(nil)
