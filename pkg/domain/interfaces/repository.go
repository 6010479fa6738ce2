package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Threat() ThreatRepository
	Risk() RiskRepository
	Action() ActionRepository
	Training() TrainingRepository
	Control() ControlRepository
	NonConformity() NonConformityRepository
	Audit() AuditRepository
	AuditLog() AuditLogRepository
	Sequence() SequenceRepository

	Close() error
}
