// Package service implements the lab-report clinical analysis engine:
// value classification, alias-driven metric extraction, concurrent panel
// orchestration and deterministic summary generation.
package service

import (
	"math"

	"github.com/healthhive/healthhive/internal/domain"
)

// Evaluate classifies a single numeric value against a reference definition
// and patient demographics.
//
// The check order is a contract: critical thresholds always dominate
// demographic ranges, and a best-effort demographic fallback is preferred
// over refusing to classify. Ambiguity resolves to a status, never an error.
func Evaluate(value float64, ref *domain.ReferenceDefinition, meta domain.PatientMeta) domain.MetricStatus {
	if ref == nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return domain.StatusUnknown
	}

	if ref.CriticalLow != nil && value <= *ref.CriticalLow {
		return domain.StatusCriticalLow
	}
	if ref.CriticalHigh != nil && value >= *ref.CriticalHigh {
		return domain.StatusCriticalHigh
	}

	if len(ref.AgeGroups) == 0 {
		return domain.StatusReviewRequired
	}

	// First matching bracket wins; fall back to the first configured range
	// when no bracket covers the patient's demographics.
	active := ref.AgeGroups[0]
	for _, group := range ref.AgeGroups {
		if group.AppliesTo(meta) {
			active = group
			break
		}
	}

	switch {
	case value < active.MinNormal:
		return domain.StatusLow
	case value > active.MaxNormal:
		return domain.StatusHigh
	default:
		return domain.StatusNormal
	}
}
