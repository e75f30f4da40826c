package domain

import (
	"fmt"
	"time"
)

// AgeGroupRange is one demographic normal-value interval for a test.
// Ranges may overlap; lookup walks them in declaration order and the first
// match wins, so more specific brackets should be listed first.
type AgeGroupRange struct {
	MinAge    int     `json:"min_age"`
	MaxAge    int     `json:"max_age"`
	Gender    Gender  `json:"gender"`
	MinNormal float64 `json:"min_normal"`
	MaxNormal float64 `json:"max_normal"`
}

// AppliesTo reports whether the range covers the given patient demographics.
func (r AgeGroupRange) AppliesTo(meta PatientMeta) bool {
	return meta.Age >= r.MinAge && meta.Age <= r.MaxAge && r.Gender.Matches(meta.Gender)
}

// ReferenceDefinition describes one lab test: how to recognize it in free
// text (aliases), which panel owns it, and how to classify its values.
// Definitions are maintained by clinical configuration and are read-only
// during an analysis run.
type ReferenceDefinition struct {
	TestCode  string          `json:"test_code"`
	TestName  string          `json:"test_name"`
	Aliases   []string        `json:"aliases"`
	Panel     Panel           `json:"panel"`
	Unit      string          `json:"unit"`
	AgeGroups []AgeGroupRange `json:"age_groups"`

	// Absolute thresholds that dominate demographic ranges when breached.
	CriticalLow  *float64 `json:"critical_low,omitempty"`
	CriticalHigh *float64 `json:"critical_high,omitempty"`
}

// Validate ensures the definition is usable by the extraction pipeline.
func (d *ReferenceDefinition) Validate() error {
	if d.TestCode == "" {
		return fmt.Errorf("reference definition validation: test code is required")
	}
	if d.TestName == "" {
		return fmt.Errorf("reference definition validation: test name is required")
	}
	if len(d.Aliases) == 0 {
		return fmt.Errorf("reference definition validation: at least one alias is required for %s", d.TestCode)
	}
	if !d.Panel.IsValid() {
		return fmt.Errorf("reference definition validation: %w: %q", ErrInvalidPanel, d.Panel)
	}
	for _, g := range d.AgeGroups {
		if !g.Gender.IsValid() {
			return fmt.Errorf("reference definition validation: %w: %q", ErrInvalidGender, g.Gender)
		}
		if g.MinAge > g.MaxAge {
			return fmt.Errorf("reference definition validation: inverted age bracket %d-%d for %s", g.MinAge, g.MaxAge, d.TestCode)
		}
	}
	return nil
}

// PatientMeta carries the demographics needed for range lookup. Supplied per
// analysis request and never persisted by the engine.
type PatientMeta struct {
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
}

// ExtractedMetric is one successfully matched and classified value.
// Immutable once created by a panel analyzer.
type ExtractedMetric struct {
	TestCode string       `json:"test_code"`
	TestName string       `json:"test_name"`
	Value    float64      `json:"value"`
	Unit     string       `json:"unit"`
	Status   MetricStatus `json:"status"`
}

// PanelResult groups the metrics extracted for one detected panel.
// The orchestrator never returns a panel with zero metrics.
type PanelResult struct {
	Panel   Panel             `json:"panel"`
	Metrics []ExtractedMetric `json:"metrics"`
}

// AbnormalityRecord is the summary's projection of a non-normal metric.
type AbnormalityRecord struct {
	TestName string       `json:"test_name"`
	Value    float64      `json:"value"`
	Unit     string       `json:"unit"`
	Status   MetricStatus `json:"status"`
}

// Summary is the aggregate risk assessment over all panels of one report.
// RiskScore is clamped to [0, 10].
type Summary struct {
	Abnormalities []AbnormalityRecord `json:"abnormalities"`
	RiskScore     int                 `json:"risk_score"`
	RiskLevel     RiskLevel           `json:"risk_level"`
	Paragraph     string              `json:"paragraph"`
}

// LabReport is a persisted analysis result tied to a patient.
type LabReport struct {
	ID        string        `json:"id"`
	PatientID string        `json:"patient_id"`
	Panels    []PanelResult `json:"panels"`
	Summary   *Summary      `json:"summary,omitempty"`
	Status    ReportStatus  `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ReportStatus tracks the lifecycle of a persisted lab report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportCompleted ReportStatus = "completed"
)

// IsValid reports whether the report status is recognized.
func (s ReportStatus) IsValid() bool {
	return s == ReportPending || s == ReportCompleted
}

// LabTest is one orderable test in the storefront catalog. Distinct from
// ReferenceDefinition: this is commerce metadata, not clinical ranges.
type LabTest struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Category        string    `json:"category"`
	Price           int       `json:"price"`
	Description     string    `json:"description"`
	TurnaroundTime  string    `json:"turnaround_time"`
	FastingRequired bool      `json:"fasting_required"`
	CreatedAt       time.Time `json:"created_at"`
}

// LabBooking records a patient's booking of a catalog test.
type LabBooking struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	LabTestID   string    `json:"lab_test_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate ensures a booking request is complete.
func (b *LabBooking) Validate() error {
	if b.PatientID == "" {
		return fmt.Errorf("booking validation: patient ID is required")
	}
	if b.LabTestID == "" {
		return fmt.Errorf("booking validation: lab test ID is required")
	}
	if b.ScheduledAt.IsZero() {
		return fmt.Errorf("booking validation: scheduled time is required")
	}
	return nil
}
