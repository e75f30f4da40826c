package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/healthhive/healthhive/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

// hbReference mirrors a typical hemoglobin catalog row: adult male and
// female brackets plus absolute critical thresholds.
func hbReference() *domain.ReferenceDefinition {
	return &domain.ReferenceDefinition{
		TestCode: "HB",
		TestName: "Hemoglobin",
		Aliases:  []string{"Hemoglobin", "Hb", "HGB"},
		Panel:    domain.PanelCBC,
		Unit:     "g/dL",
		AgeGroups: []domain.AgeGroupRange{
			{MinAge: 18, MaxAge: 120, Gender: domain.GenderMale, MinNormal: 13, MaxNormal: 17},
			{MinAge: 18, MaxAge: 120, Gender: domain.GenderFemale, MinNormal: 12, MaxNormal: 15.5},
		},
		CriticalLow:  floatPtr(7),
		CriticalHigh: floatPtr(20),
	}
}

func TestEvaluate(t *testing.T) {
	adultMale := domain.PatientMeta{Age: 30, Gender: domain.GenderMale}
	adultFemale := domain.PatientMeta{Age: 30, Gender: domain.GenderFemale}

	tests := []struct {
		name  string
		value float64
		ref   *domain.ReferenceDefinition
		meta  domain.PatientMeta
		want  domain.MetricStatus
	}{
		{"normal male", 14.0, hbReference(), adultMale, domain.StatusNormal},
		{"low male", 9.0, hbReference(), adultMale, domain.StatusLow},
		{"high male", 17.5, hbReference(), adultMale, domain.StatusHigh},
		{"gender specific range", 16.0, hbReference(), adultFemale, domain.StatusHigh},
		{"boundary min is normal", 13.0, hbReference(), adultMale, domain.StatusNormal},
		{"boundary max is normal", 17.0, hbReference(), adultMale, domain.StatusNormal},
		{"critical low at threshold", 7.0, hbReference(), adultMale, domain.StatusCriticalLow},
		{"critical low below threshold", 5.2, hbReference(), adultMale, domain.StatusCriticalLow},
		{"critical high at threshold", 20.0, hbReference(), adultMale, domain.StatusCriticalHigh},
		{"nil reference", 14.0, nil, adultMale, domain.StatusUnknown},
		{"nan value", math.NaN(), hbReference(), adultMale, domain.StatusUnknown},
		{"infinite value", math.Inf(1), hbReference(), adultMale, domain.StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.value, tt.ref, tt.meta))
		})
	}
}

// Critical thresholds must dominate demographic ranges: a value inside a
// normal bracket but beyond a critical threshold is still critical.
func TestEvaluateCriticalDominatesRange(t *testing.T) {
	ref := hbReference()
	ref.CriticalHigh = floatPtr(16) // inside the male normal bracket

	got := Evaluate(16.5, ref, domain.PatientMeta{Age: 30, Gender: domain.GenderMale})
	assert.Equal(t, domain.StatusCriticalHigh, got)
}

// A patient no bracket covers still gets classified against the first
// configured range, as a best-effort default.
func TestEvaluateDemographicFallback(t *testing.T) {
	ref := hbReference()
	child := domain.PatientMeta{Age: 5, Gender: domain.GenderMale}

	// 12.0 is below the first (male 13-17) bracket.
	assert.Equal(t, domain.StatusLow, Evaluate(12.0, ref, child))
	// 14.0 sits inside it.
	assert.Equal(t, domain.StatusNormal, Evaluate(14.0, ref, child))
}

// Declaration order decides ties between overlapping brackets.
func TestEvaluateFirstMatchingRangeWins(t *testing.T) {
	ref := &domain.ReferenceDefinition{
		TestCode: "GLU",
		TestName: "Glucose",
		Aliases:  []string{"Glucose"},
		Panel:    domain.PanelRFT,
		Unit:     "mg/dL",
		AgeGroups: []domain.AgeGroupRange{
			{MinAge: 0, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 70, MaxNormal: 100},
			{MinAge: 18, MaxAge: 120, Gender: domain.GenderAll, MinNormal: 60, MaxNormal: 110},
		},
	}

	// 105 is high per the first bracket even though the overlapping second
	// bracket would call it normal.
	got := Evaluate(105, ref, domain.PatientMeta{Age: 40, Gender: domain.GenderMale})
	assert.Equal(t, domain.StatusHigh, got)
}

func TestEvaluateNoRangesConfigured(t *testing.T) {
	ref := &domain.ReferenceDefinition{
		TestCode: "ESR",
		TestName: "ESR",
		Aliases:  []string{"ESR"},
		Panel:    domain.PanelCBC,
		Unit:     "mm/hr",
	}

	got := Evaluate(12, ref, domain.PatientMeta{Age: 30, Gender: domain.GenderMale})
	assert.Equal(t, domain.StatusReviewRequired, got)
}

// Critical checks run before the range lookup, so they apply even when no
// demographic ranges exist.
func TestEvaluateCriticalWithoutRanges(t *testing.T) {
	ref := &domain.ReferenceDefinition{
		TestCode:     "ESR",
		TestName:     "ESR",
		Aliases:      []string{"ESR"},
		Panel:        domain.PanelCBC,
		Unit:         "mm/hr",
		CriticalHigh: floatPtr(100),
	}

	got := Evaluate(150, ref, domain.PatientMeta{Age: 30, Gender: domain.GenderMale})
	assert.Equal(t, domain.StatusCriticalHigh, got)
}
