package model

import (
	"sort"
	"time"
)

// DefaultSuggestionDisplayLimit is how many entries of each list are shown
const DefaultSuggestionDisplayLimit = 5

// SuggestionBundle holds audit scope candidates
type SuggestionBundle struct {
	EvaluatedAt             time.Time
	ControlsToVerify        []*Control
	HighRisksUnverified     []*Risk
	NonConformitiesToVerify []*NonConformity
}

// BuildSuggestions filters the three collections into candidate lists.
// Controls are ordered by reference, risks by descending inherent score and
// non-conformities by ID.
func BuildSuggestions(now time.Time, controls []*Control, risks []*Risk, ncs []*NonConformity) *SuggestionBundle {
	bundle := &SuggestionBundle{
		EvaluatedAt:             now,
		ControlsToVerify:        []*Control{},
		HighRisksUnverified:     []*Risk{},
		NonConformitiesToVerify: []*NonConformity{},
	}

	for _, c := range controls {
		if c.NeedsVerification(now) {
			bundle.ControlsToVerify = append(bundle.ControlsToVerify, c)
		}
	}
	sort.Slice(bundle.ControlsToVerify, func(i, j int) bool {
		return bundle.ControlsToVerify[i].Reference < bundle.ControlsToVerify[j].Reference
	})

	for _, r := range risks {
		if r.IsHighUnverified() {
			bundle.HighRisksUnverified = append(bundle.HighRisksUnverified, r)
		}
	}
	sort.Slice(bundle.HighRisksUnverified, func(i, j int) bool {
		a, b := bundle.HighRisksUnverified[i], bundle.HighRisksUnverified[j]
		if a.InherentScore != b.InherentScore {
			return a.InherentScore > b.InherentScore
		}
		return a.ID < b.ID
	})

	for _, nc := range ncs {
		if nc.ReadyForVerification() {
			bundle.NonConformitiesToVerify = append(bundle.NonConformitiesToVerify, nc)
		}
	}
	sort.Slice(bundle.NonConformitiesToVerify, func(i, j int) bool {
		return bundle.NonConformitiesToVerify[i].ID < bundle.NonConformitiesToVerify[j].ID
	})

	return bundle
}

// ControlScope merges the full, untruncated candidate lists into an audit scope
func (b *SuggestionBundle) ControlScope() []string {
	return MergeControlScope(b.ControlsToVerify, b.HighRisksUnverified, b.NonConformitiesToVerify)
}

// Display returns a copy with each list truncated to limit entries
func (b *SuggestionBundle) Display(limit int) *SuggestionBundle {
	if limit <= 0 {
		limit = DefaultSuggestionDisplayLimit
	}
	return &SuggestionBundle{
		EvaluatedAt:             b.EvaluatedAt,
		ControlsToVerify:        truncate(b.ControlsToVerify, limit),
		HighRisksUnverified:     truncate(b.HighRisksUnverified, limit),
		NonConformitiesToVerify: truncate(b.NonConformitiesToVerify, limit),
	}
}

// MergeControlScope returns the sorted union of the control references of the
// controls, the related controls of the risks and the related control of the
// non-conformities. References are compared by exact string equality.
func MergeControlScope(controls []*Control, risks []*Risk, ncs []*NonConformity) []string {
	set := make(map[string]struct{})
	for _, c := range controls {
		if c.Reference != "" {
			set[c.Reference] = struct{}{}
		}
	}
	for _, r := range risks {
		for _, ref := range r.RelatedControls {
			if ref != "" {
				set[ref] = struct{}{}
			}
		}
	}
	for _, nc := range ncs {
		if nc.RelatedControl != "" {
			set[nc.RelatedControl] = struct{}{}
		}
	}

	scope := make([]string, 0, len(set))
	for ref := range set {
		scope = append(scope, ref)
	}
	sort.Strings(scope)
	return scope
}

func truncate[T any](items []T, limit int) []T {
	if len(items) <= limit {
		return append([]T{}, items...)
	}
	return append([]T{}, items[:limit]...)
}
