package memory

import (
	"github.com/secmon-lab/themis/pkg/domain/interfaces"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = interfaces.ErrNotFound

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
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

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		threat:        newThreatRepository(),
		risk:          newRiskRepository(),
		action:        newActionRepository(),
		training:      newTrainingRepository(),
		control:       newControlRepository(),
		nonConformity: newNonConformityRepository(),
		audit:         newAuditRepository(),
		auditLog:      newAuditLogRepository(),
		sequence:      newSequenceRepository(),
	}
}

func (m *Memory) Threat() interfaces.ThreatRepository {
	return m.threat
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) Action() interfaces.ActionRepository {
	return m.action
}

func (m *Memory) Training() interfaces.TrainingRepository {
	return m.training
}

func (m *Memory) Control() interfaces.ControlRepository {
	return m.control
}

func (m *Memory) NonConformity() interfaces.NonConformityRepository {
	return m.nonConformity
}

func (m *Memory) Audit() interfaces.AuditRepository {
	return m.audit
}

func (m *Memory) AuditLog() interfaces.AuditLogRepository {
	return m.auditLog
}

func (m *Memory) Sequence() interfaces.SequenceRepository {
	return m.sequence
}

func (m *Memory) Close() error {
	return nil
}
