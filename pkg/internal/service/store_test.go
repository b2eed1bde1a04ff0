package service_test

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/lostyway/cloud-file-storage/pkg/internal/apperr"
	"github.com/lostyway/cloud-file-storage/pkg/internal/storage/objstore"
)

// memStore 内存对象存储，模拟 S3 的前缀列举语义.
type memStore struct {
	mu           sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (m *memStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return apperr.StorageIO(err, "read upload body")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[key] = data
	m.contentTypes[key] = contentType

	return nil
}

func (m *memStore) Stat(ctx context.Context, key string) (objstore.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[key]
	if !ok {
		return objstore.ObjectInfo{}, apperr.NotFound("object %s not found", key)
	}

	return objstore.ObjectInfo{Size: int64(len(data)), ContentType: m.contentTypes[key]}, nil
}

func (m *memStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[key]
	if !ok {
		return nil, apperr.NotFound("object %s not found", key)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) List(ctx context.Context, prefix string, opts objstore.ListOptions) <-chan objstore.Item {
	m.mu.Lock()

	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}

	m.mu.Unlock()
	sort.Strings(keys)

	ch := make(chan objstore.Item)

	go func() {
		defer close(ch)

		sent := 0
		seenDirs := map[string]bool{}

		emit := func(item objstore.Item) bool {
			select {
			case ch <- item:
				sent++
				return opts.Max == 0 || sent < opts.Max
			case <-ctx.Done():
				return false
			}
		}

		for _, k := range keys {
			if opts.Recursive {
				m.mu.Lock()
				size := int64(len(m.objects[k]))
				m.mu.Unlock()

				if !emit(objstore.Item{Key: k, Size: size}) {
					return
				}

				continue
			}

			// 非递归：第一层之下的键折叠为公共前缀
			rel := strings.TrimPrefix(k, prefix)
			if rel == "" {
				if !emit(objstore.Item{Key: k}) {
					return
				}

				continue
			}

			if idx := strings.IndexByte(rel, '/'); idx >= 0 {
				dir := prefix + rel[:idx+1]
				if seenDirs[dir] {
					continue
				}

				seenDirs[dir] = true

				if !emit(objstore.Item{Key: dir, IsDir: true}) {
					return
				}

				continue
			}

			m.mu.Lock()
			size := int64(len(m.objects[k]))
			m.mu.Unlock()

			if !emit(objstore.Item{Key: k, Size: size}) {
				return
			}
		}
	}()

	return ch
}

func (m *memStore) Copy(ctx context.Context, src, dst string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.objects[src]
	if !ok {
		return apperr.NotFound("object %s not found", src)
	}

	m.objects[dst] = append([]byte(nil), data...)
	m.contentTypes[dst] = m.contentTypes[src]

	return nil
}

func (m *memStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)
	delete(m.contentTypes, key)

	return nil
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.objects[key]

	return ok
}

var _ objstore.Store = (*memStore)(nil)
