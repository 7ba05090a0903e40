package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process store used by tests and the "memory" driver.
// PutErr and DeleteErr inject failures.
type Memory struct {
	mu      sync.Mutex
	objects map[string]memObject
	baseURL string

	PutErr    func(key string) error
	DeleteErr func(key string) error
}

type memObject struct {
	data        []byte
	contentType string
}

// NewMemory returns an empty store whose URLs start with baseURL.
func NewMemory(baseURL string) *Memory {
	return &Memory{objects: make(map[string]memObject), baseURL: baseURL}
}

// Put stores a copy of body.
func (m *Memory) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if m.PutErr != nil {
		if err := m.PutErr(key); err != nil {
			return err
		}
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("memory put %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{data: data, contentType: contentType}
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	if m.DeleteErr != nil {
		if err := m.DeleteErr(key); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// URL returns baseURL/key.
func (m *Memory) URL(key string) string {
	return joinURL(m.baseURL, key)
}

// Open returns a reader over a copy of the stored bytes.
func (m *Memory) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(bytes.Clone(obj.data))), nil
}

// List returns sorted keys under prefix.
func (m *Memory) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Has reports whether key is stored.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// ContentType returns the content type recorded for key.
func (m *Memory) ContentType(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return "", errors.Join(ErrNotFound, fmt.Errorf("key %q", key))
	}
	return obj.contentType, nil
}
