package blobstore

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Memory is an in-process Store for local development and tests. It records
// every delete so callers can assert on them.
type Memory struct {
	mu      sync.Mutex
	urls    urlMapper
	objects map[string][]byte
	types   map[string]string
	deleted []string
}

func NewMemory(baseURL string) *Memory {
	return &Memory{
		urls:    newURLMapper(baseURL),
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *Memory) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, body, size); err != nil && err != io.EOF {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	m.types[key] = contentType
	return m.urls.publicURL(key), nil
}

func (m *Memory) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, url)
	m.mu.Unlock()

	key, err := m.urls.keyFor(url)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	delete(m.types, key)
	return nil
}

// Object returns the stored bytes and content type for key.
func (m *Memory) Object(key string) ([]byte, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, m.types[key], ok
}

// Keys lists every stored key.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

// Deleted returns every URL passed to Delete, in call order.
func (m *Memory) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}
