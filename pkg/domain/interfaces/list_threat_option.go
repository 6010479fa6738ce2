package interfaces

import "github.com/secmon-lab/themis/pkg/domain/types"

// ListThreatOption is a functional option for filtering threats in List
type ListThreatOption func(*listThreatConfig)

type listThreatConfig struct {
	category *types.ThreatCategory
	nis2Type *types.NIS2IncidentType
}

// WithCategory filters threats by category
func WithCategory(category types.ThreatCategory) ListThreatOption {
	return func(c *listThreatConfig) {
		c.category = &category
	}
}

// WithNIS2Type filters threats by NIS2 incident type
func WithNIS2Type(nis2Type types.NIS2IncidentType) ListThreatOption {
	return func(c *listThreatConfig) {
		c.nis2Type = &nis2Type
	}
}

// BuildListThreatConfig builds a listThreatConfig from options
func BuildListThreatConfig(opts ...ListThreatOption) *listThreatConfig {
	cfg := &listThreatConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Category returns the category filter value, or nil if not set
func (c *listThreatConfig) Category() *types.ThreatCategory {
	return c.category
}

// NIS2Type returns the NIS2 filter value, or nil if not set
func (c *listThreatConfig) NIS2Type() *types.NIS2IncidentType {
	return c.nis2Type
}

// Match reports whether a threat satisfies every filter
func (c *listThreatConfig) Match(category types.ThreatCategory, nis2Type types.NIS2IncidentType) bool {
	if c.category != nil && *c.category != category {
		return false
	}
	if c.nis2Type != nil && *c.nis2Type != nis2Type {
		return false
	}
	return true
}
