package objectstore

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-process Store.
type Memory struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]memObject

	// FailPut/FailDelete/FailPrefix, when set, are returned by the
	// matching call. Tests use them to exercise best-effort paths.
	FailPut    error
	FailDelete error
	FailPrefix error
}

type memObject struct {
	data        []byte
	contentType string
}

// NewMemory returns an empty store whose URLs start with baseURL.
func NewMemory(baseURL string) *Memory {
	if baseURL == "" {
		baseURL = "memory://objects"
	}
	return &Memory{baseURL: strings.TrimRight(baseURL, "/"), objects: map[string]memObject{}}
}

func (m *Memory) Put(ctx context.Context, key string, r io.Reader, opts *PutOptions) error {
	if m.FailPut != nil {
		return m.FailPut
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	obj := memObject{data: b}
	if opts != nil {
		obj.contentType = opts.ContentType
	}
	m.mu.Lock()
	m.objects[key] = obj
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	if m.FailDelete != nil {
		return m.FailDelete
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *Memory) EnsurePrefix(ctx context.Context, prefix string) error {
	if m.FailPrefix != nil {
		return m.FailPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	m.mu.Lock()
	m.objects[prefix] = memObject{}
	m.mu.Unlock()
	return nil
}

func (m *Memory) URL(key string) string {
	return m.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Get returns the stored bytes and content type for key.
func (m *Memory) Get(key string) ([]byte, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, "", ErrNotFound
	}
	return obj.data, obj.contentType, nil
}

// Has reports whether key exists.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// Keys returns all keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
