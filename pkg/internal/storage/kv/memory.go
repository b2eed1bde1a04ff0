package kv

import (
	"context"
	"sync"
	"time"

	"github.com/lostyway/cloud-file-storage/pkg/configs"
)

const janitorInterval = time.Minute

// memoryEntry 带过期时间的值. expires 为零值表示不过期.
type memoryEntry struct {
	value   []byte
	expires time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expires.IsZero() && now.After(e.expires)
}

// MemoryKV 基于互斥锁 map 的内存 KV 实现，过期键由后台清扫器回收.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]memoryEntry
	stop chan struct{}
	once sync.Once
}

// NewMemoryKV 创建内存 KV 实例.
func NewMemoryKV(ctx context.Context, _ *configs.CacheConfig) (KVStore, error) {
	m := &MemoryKV{
		data: make(map[string]memoryEntry),
		stop: make(chan struct{}),
	}

	go m.janitor()

	return m, nil
}

// janitor 周期性回收过期键.
func (m *MemoryKV) janitor() {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			m.mu.Lock()
			for k, e := range m.data {
				if e.expired(now) {
					delete(m.data, k)
				}
			}
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

// Get 获取键的值，过期视为缺失.
func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, exists := m.data[key]
	m.mu.RUnlock()

	if !exists || entry.expired(time.Now()) {
		return nil, ErrNotFound
	}

	// 返回副本
	result := make([]byte, len(entry.value))
	copy(result, entry.value)

	return result, nil
}

// Set 设置键的值.
func (m *MemoryKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	data := make([]byte, len(value))
	copy(data, value)

	entry := memoryEntry{value: data}
	if ttl > 0 {
		entry.expires = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.data[key] = entry
	m.mu.Unlock()

	return nil
}

// Delete 删除键.
func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()

	return nil
}

// Exists 检查键是否存在.
func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	entry, exists := m.data[key]
	m.mu.RUnlock()

	return exists && !entry.expired(time.Now()), nil
}

// Close 停止清扫器.
func (m *MemoryKV) Close() error {
	m.once.Do(func() { close(m.stop) })
	return nil
}

func init() {
	RegisterKVFactory(configs.KVTypeMemory, NewMemoryKV)
}
