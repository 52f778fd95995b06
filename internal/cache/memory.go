package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value   int64
	expires time.Time
}

// Memory est la variante locale, utilisée en STORE_DRIVER=memory et sans REDIS_HOST.
type Memory struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string]entry), now: time.Now}
}

// get suppose m.mu verrouillé et purge l'entrée expirée.
func (m *Memory) get(key string) (entry, bool) {
	e, ok := m.items[key]
	if ok && !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.items, key)
		return entry{}, false
	}
	return e, ok
}

func (m *Memory) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := "ratelimit:" + key
	e, ok := m.get(k)
	if !ok {
		e = entry{expires: m.now().Add(window)}
	}
	e.value++
	m.items[k] = e
	return e.value, nil
}

func (m *Memory) BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items["blacklist:"+tokenID] = entry{value: 1, expires: m.now().Add(ttl)}
	return nil
}

func (m *Memory) IsTokenBlacklisted(ctx context.Context, tokenID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.get("blacklist:" + tokenID)
	return ok
}

func (m *Memory) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := "once:" + key
	if _, ok := m.get(k); ok {
		return false, nil
	}
	m.items[k] = entry{value: 1, expires: m.now().Add(ttl)}
	return true, nil
}

func (m *Memory) Forget(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, "once:"+key)
	return nil
}
