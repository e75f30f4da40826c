// Package domain contains the core business entities and types for clinical
// lab-report analysis: reference ranges, extracted metrics, panel results and
// risk summaries.
package domain

import "errors"

// Panel identifies a named group of related clinical tests. Every reference
// definition belongs to exactly one panel, and extraction runs per panel.
type Panel string

const (
	PanelCBC   Panel = "CBC"
	PanelRFT   Panel = "RFT"
	PanelLFT   Panel = "LFT"
	PanelLipid Panel = "LIPID"
)

// Panels lists all panels known to the engine, in catalog order.
var Panels = []Panel{PanelCBC, PanelRFT, PanelLFT, PanelLipid}

// Gender is the demographic axis used for reference-range lookup.
// GenderAll marks a range that applies to every patient.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderAll    Gender = "All"
)

// MetricStatus is the classification of a single extracted value against its
// reference definition. Classification ambiguity is always resolved into a
// status, never into an error, so downstream summary generation is total.
type MetricStatus string

const (
	StatusNormal           MetricStatus = "Normal"
	StatusHigh             MetricStatus = "High"
	StatusLow              MetricStatus = "Low"
	StatusCriticalHigh     MetricStatus = "Critical High"
	StatusCriticalLow      MetricStatus = "Critical Low"
	StatusUnknown          MetricStatus = "Unknown"
	StatusReviewRequired   MetricStatus = "Review Required"
	StatusReferenceMissing MetricStatus = "Reference Missing"
)

// RiskLevel is the overall risk bucket derived from the aggregate risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
)

// Validation errors for clinical data integrity.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidPanel  = errors.New("invalid panel")
	ErrInvalidGender = errors.New("invalid gender")
)

// IsValid reports whether the panel is one the engine knows how to analyze.
func (p Panel) IsValid() bool {
	switch p {
	case PanelCBC, PanelRFT, PanelLFT, PanelLipid:
		return true
	default:
		return false
	}
}

// String returns the string representation of the panel.
func (p Panel) String() string {
	return string(p)
}

// DisplayName returns the human-readable panel name used in reports.
func (p Panel) DisplayName() string {
	switch p {
	case PanelCBC:
		return "Complete Blood Count"
	case PanelRFT:
		return "Renal Function Test"
	case PanelLFT:
		return "Liver Function Test"
	case PanelLipid:
		return "Lipid Profile"
	default:
		return string(p)
	}
}

// IsValid reports whether the gender is a recognized demographic value.
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderAll:
		return true
	default:
		return false
	}
}

// Matches reports whether a range configured for gender g applies to a
// patient of gender patient. A range marked All applies to everyone.
func (g Gender) Matches(patient Gender) bool {
	return g == GenderAll || g == patient
}

// IsValid reports whether the status is part of the classification taxonomy.
func (s MetricStatus) IsValid() bool {
	switch s {
	case StatusNormal, StatusHigh, StatusLow, StatusCriticalHigh, StatusCriticalLow,
		StatusUnknown, StatusReviewRequired, StatusReferenceMissing:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s MetricStatus) String() string {
	return string(s)
}

// IsCritical reports whether the status indicates a critical threshold breach.
// Critical statuses carry extra weight in the risk score.
func (s MetricStatus) IsCritical() bool {
	return s == StatusCriticalHigh || s == StatusCriticalLow
}

// IsAbnormal reports whether the status counts toward the summary's
// abnormality list. Reference Missing is explicitly exempt: a value we could
// not classify must not inflate the patient's risk score.
func (s MetricStatus) IsAbnormal() bool {
	return s != StatusNormal && s != StatusReferenceMissing
}

// LogFields returns structured logging fields for audit trails.
func (s MetricStatus) LogFields() map[string]any {
	return map[string]any{
		"status":      string(s),
		"is_abnormal": s.IsAbnormal(),
		"is_critical": s.IsCritical(),
	}
}

// String returns the string representation of the risk level.
func (r RiskLevel) String() string {
	return string(r)
}

// IsValid reports whether the risk level is recognized.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskModerate, RiskHigh:
		return true
	default:
		return false
	}
}

// rank orders risk levels for comparison; higher means more severe.
func (r RiskLevel) rank() int {
	switch r {
	case RiskHigh:
		return 2
	case RiskModerate:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r is at least as severe as other.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.rank() >= other.rank()
}
