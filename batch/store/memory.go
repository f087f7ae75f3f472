// Package store provides batch.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/stipend-engine/batch"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	batches map[batch.BatchID]batch.PaymentBatch
}

func NewMemory() *Memory {
	return &Memory{batches: make(map[batch.BatchID]batch.PaymentBatch)}
}

var _ batch.Store = (*Memory)(nil)

func (m *Memory) Save(_ context.Context, b batch.PaymentBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[b.ID] = b
	return nil
}

func (m *Memory) Get(_ context.Context, id batch.BatchID) (*batch.PaymentBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.batches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *Memory) List(_ context.Context) ([]batch.PaymentBatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]batch.PaymentBatch, 0, len(m.batches))
	for _, b := range m.batches {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedDate.Equal(result[j].CreatedDate) {
			return result[i].CreatedDate.Before(result[j].CreatedDate)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (m *Memory) Delete(_ context.Context, id batch.BatchID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.batches, id)
	return nil
}
