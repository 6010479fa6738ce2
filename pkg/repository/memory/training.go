package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/model"
)

type trainingRepository struct {
	mu      sync.RWMutex
	records map[string]map[int64]*model.TrainingRecord
	nextID  map[string]int64
}

func newTrainingRepository() *trainingRepository {
	return &trainingRepository{
		records: make(map[string]map[int64]*model.TrainingRecord),
		nextID:  make(map[string]int64),
	}
}

func (r *trainingRepository) Create(ctx context.Context, organizationID string, record *model.TrainingRecord) (*model.TrainingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[organizationID]; !exists {
		r.records[organizationID] = make(map[int64]*model.TrainingRecord)
		r.nextID[organizationID] = 1
	}

	now := time.Now().UTC()
	created := *record
	created.ID = r.nextID[organizationID]
	created.OrganizationID = organizationID
	created.CreatedAt = now
	created.UpdatedAt = now
	r.nextID[organizationID]++

	r.records[organizationID][created.ID] = &created
	result := created
	return &result, nil
}

func (r *trainingRepository) Get(ctx context.Context, organizationID string, id int64) (*model.TrainingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[organizationID][id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "training record not found", goerr.V("id", id))
	}

	result := *record
	return &result, nil
}

func (r *trainingRepository) List(ctx context.Context, organizationID string) ([]*model.TrainingRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*model.TrainingRecord, 0, len(r.records[organizationID]))
	for _, record := range r.records[organizationID] {
		c := *record
		records = append(records, &c)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})

	return records, nil
}
