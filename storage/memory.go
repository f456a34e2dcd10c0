package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps analyses in process memory. Contents are lost on restart.
type MemoryStore struct {
	mutex    sync.RWMutex
	analyses map[int64]Record
	urlToID  map[string]int64
	nextID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		analyses: make(map[int64]Record),
		urlToID:  make(map[string]int64),
		nextID:   1,
	}
}

func (m *MemoryStore) Save(_ context.Context, rec Record) (Record, error) {
	key := NormalizeURL(rec.URL)

	m.mutex.Lock()
	defer m.mutex.Unlock()

	id, exists := m.urlToID[key]
	if !exists {
		id = m.nextID
		m.nextID++
		m.urlToID[key] = id
	}

	rec.ID = id
	if rec.AnalyzedAt.IsZero() {
		rec.AnalyzedAt = time.Now().UTC()
	}
	m.analyses[id] = rec
	return rec, nil
}

func (m *MemoryStore) Get(_ context.Context, id int64) (Record, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	rec, ok := m.analyses[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *MemoryStore) GetByURL(ctx context.Context, rawURL string) (Record, error) {
	m.mutex.RLock()
	id, ok := m.urlToID[NormalizeURL(rawURL)]
	m.mutex.RUnlock()

	if !ok {
		return Record{}, ErrNotFound
	}
	return m.Get(ctx, id)
}

func (m *MemoryStore) Recent(_ context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	m.mutex.RLock()
	records := make([]Record, 0, len(m.analyses))
	for _, rec := range m.analyses {
		records = append(records, rec)
	}
	m.mutex.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].ID > records[j].ID
	})
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
