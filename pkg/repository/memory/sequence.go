package memory

import (
	"context"
	"sync"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

type sequenceRepository struct {
	mu       sync.Mutex
	counters map[string]map[types.SequenceKind]int64
}

func newSequenceRepository() *sequenceRepository {
	return &sequenceRepository{
		counters: make(map[string]map[types.SequenceKind]int64),
	}
}

func (r *sequenceRepository) Next(ctx context.Context, organizationID string, kind types.SequenceKind) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.counters[organizationID]; !exists {
		r.counters[organizationID] = make(map[types.SequenceKind]int64)
	}
	r.counters[organizationID][kind]++
	return r.counters[organizationID][kind], nil
}
