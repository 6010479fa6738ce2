package interfaces

import (
	"context"

	"github.com/secmon-lab/themis/pkg/domain/model"
)

type TrainingRepository interface {
	Create(ctx context.Context, organizationID string, record *model.TrainingRecord) (*model.TrainingRecord, error)
	Get(ctx context.Context, organizationID string, id int64) (*model.TrainingRecord, error)
	List(ctx context.Context, organizationID string) ([]*model.TrainingRecord, error)
}
