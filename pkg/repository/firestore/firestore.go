package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = interfaces.ErrNotFound

type Firestore struct {
	client        *firestore.Client
	store         *store
	threat        *threatRepository
	risk          *riskRepository
	action        *actionRepository
	training      *trainingRepository
	control       *controlRepository
	nonConformity *nonConformityRepository
	audit         *auditRepository
	auditLog      *auditLogRepository
	sequence      *sequenceRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes every root collection, used to isolate test runs
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.store.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	s := &store{client: client}
	f := &Firestore{
		client:        client,
		store:         s,
		threat:        &threatRepository{store: s},
		risk:          &riskRepository{store: s},
		action:        &actionRepository{store: s},
		training:      &trainingRepository{store: s},
		control:       &controlRepository{store: s},
		nonConformity: &nonConformityRepository{store: s},
		audit:         &auditRepository{store: s},
		auditLog:      &auditLogRepository{store: s},
		sequence:      &sequenceRepository{store: s},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Threat() interfaces.ThreatRepository {
	return f.threat
}

func (f *Firestore) Risk() interfaces.RiskRepository {
	return f.risk
}

func (f *Firestore) Action() interfaces.ActionRepository {
	return f.action
}

func (f *Firestore) Training() interfaces.TrainingRepository {
	return f.training
}

func (f *Firestore) Control() interfaces.ControlRepository {
	return f.control
}

func (f *Firestore) NonConformity() interfaces.NonConformityRepository {
	return f.nonConformity
}

func (f *Firestore) Audit() interfaces.AuditRepository {
	return f.audit
}

func (f *Firestore) AuditLog() interfaces.AuditLogRepository {
	return f.auditLog
}

func (f *Firestore) Sequence() interfaces.SequenceRepository {
	return f.sequence
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
