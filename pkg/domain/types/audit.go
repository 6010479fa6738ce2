package types

// AuditAction is the kind of change recorded in the audit trail
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

// String returns the string representation of the audit action
func (a AuditAction) String() string {
	return string(a)
}

// EntityType names a record type in audit events
type EntityType string

const (
	EntityThreat            EntityType = "threat"
	EntityRisk              EntityType = "risk"
	EntityImprovementAction EntityType = "improvement_action"
	EntityTrainingRecord    EntityType = "training_record"
	EntityAudit             EntityType = "audit"
)

// String returns the string representation of the entity type
func (e EntityType) String() string {
	return string(e)
}

// AuditStatus is the lifecycle status of an internal audit
type AuditStatus string

const (
	AuditStatusPlanned    AuditStatus = "planned"
	AuditStatusInProgress AuditStatus = "in_progress"
	AuditStatusCompleted  AuditStatus = "completed"
)

// String returns the string representation of the audit status
func (s AuditStatus) String() string {
	return string(s)
}
