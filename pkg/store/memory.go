package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store, suitable for tests and single instance
// deployments.
type Memory struct {
	mu      sync.RWMutex
	records map[string]map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]map[string]string)}
}

func (m *Memory) Get(ctx context.Context, recordID, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if err := checkRecord(recordID); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.records[recordID][key]
	return value, ok, nil
}

func (m *Memory) GetAll(ctx context.Context, recordID string, keys []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkRecord(recordID); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	record := m.records[recordID]
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := record[key]; ok {
			out[key] = value
		}
	}
	return out, nil
}

func (m *Memory) SetMany(ctx context.Context, recordID string, values map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkRecord(recordID); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[recordID]
	if !ok {
		record = make(map[string]string, len(values))
		m.records[recordID] = record
	}
	for key, value := range values {
		record[key] = value
	}
	return nil
}
