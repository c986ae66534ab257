package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory keeps records in process memory.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]Record
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		data: make(map[string][]Record),
		now:  time.Now,
	}
}

func (m *Memory) List(ctx context.Context, collection string) ([]Record, error) {
	if err := ValidateCollection(collection); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.data[collection]
	out := make([]Record, len(recs))
	copy(out, recs)
	return out, nil
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Record, error) {
	if err := ValidateCollection(collection); err != nil {
		return Record{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.data[collection] {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (m *Memory) Create(ctx context.Context, collection string, data map[string]any) (Record, error) {
	if err := ValidateCollection(collection); err != nil {
		return Record{}, err
	}
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:         uuid.NewString(),
		Collection: collection,
		Data:       copyData(data),
		CreatedAt:  m.now().UTC(),
	}

	m.mu.Lock()
	m.data[collection] = append(m.data[collection], rec)
	m.mu.Unlock()

	return rec, nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ValidateCollection(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.data[collection]
	for i, r := range recs {
		if r.ID == id {
			m.data[collection] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
