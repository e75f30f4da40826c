package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthhive/healthhive/internal/domain"
)

func cbcPanel(metrics ...domain.ExtractedMetric) domain.PanelResult {
	return domain.PanelResult{Panel: domain.PanelCBC, Metrics: metrics}
}

func metric(name string, value float64, status domain.MetricStatus) domain.ExtractedMetric {
	return domain.ExtractedMetric{TestCode: name, TestName: name, Value: value, Unit: "mg/dL", Status: status}
}

func TestSummarizeAllNormal(t *testing.T) {
	svc := NewSummaryService(testLogger())

	summary := svc.Summarize([]domain.PanelResult{
		cbcPanel(metric("Hemoglobin", 14, domain.StatusNormal), metric("WBC", 7000, domain.StatusNormal)),
	})

	assert.Empty(t, summary.Abnormalities)
	assert.Equal(t, 0, summary.RiskScore)
	assert.Equal(t, domain.RiskLow, summary.RiskLevel)
	assert.Contains(t, summary.Paragraph, "within normal biological reference ranges")
}

func TestSummarizeEmptyPanelList(t *testing.T) {
	svc := NewSummaryService(testLogger())

	summary := svc.Summarize([]domain.PanelResult{})

	assert.Empty(t, summary.Abnormalities)
	assert.Equal(t, 0, summary.RiskScore)
	assert.Equal(t, domain.RiskLow, summary.RiskLevel)
	assert.Contains(t, summary.Paragraph, "within normal biological reference ranges")
}

func TestSummarizeSingleAbnormality(t *testing.T) {
	svc := NewSummaryService(testLogger())

	summary := svc.Summarize([]domain.PanelResult{
		cbcPanel(metric("Hemoglobin", 9, domain.StatusLow)),
	})

	require.Len(t, summary.Abnormalities, 1)
	assert.Equal(t, 1, summary.RiskScore)
	assert.Equal(t, domain.RiskModerate, summary.RiskLevel)
	assert.Contains(t, summary.Paragraph, "1 abnormal value(s)")
	assert.Contains(t, summary.Paragraph, "Hemoglobin")
	assert.NotContains(t, summary.Paragraph, "URGENT")
}

func TestSummarizeCriticalAbnormality(t *testing.T) {
	svc := NewSummaryService(testLogger())

	summary := svc.Summarize([]domain.PanelResult{
		{Panel: domain.PanelRFT, Metrics: []domain.ExtractedMetric{
			metric("Serum Creatinine", 12.5, domain.StatusCriticalHigh),
		}},
	})

	require.Len(t, summary.Abnormalities, 1)
	assert.Equal(t, 3, summary.RiskScore)
	assert.Equal(t, domain.RiskHigh, summary.RiskLevel)
	assert.Contains(t, summary.Paragraph, "URGENT")
	assert.Contains(t, summary.Paragraph, "1 metric(s)")
	assert.Contains(t, summary.Paragraph, "Serum Creatinine")
}

// Reference Missing is visible to callers but exempt from the risk calculus.
func TestSummarizeReferenceMissingExempt(t *testing.T) {
	svc := NewSummaryService(testLogger())

	summary := svc.Summarize([]domain.PanelResult{
		cbcPanel(metric("Hemoglobin", 14, domain.StatusNormal), metric("TSH", 2.4, domain.StatusReferenceMissing)),
	})

	assert.Empty(t, summary.Abnormalities)
	assert.Equal(t, 0, summary.RiskScore)
	assert.Equal(t, domain.RiskLow, summary.RiskLevel)
}

// Review Required and Unknown do count as abnormalities.
func TestSummarizeNonNumericStatusesCount(t *testing.T) {
	svc := NewSummaryService(testLogger())

	summary := svc.Summarize([]domain.PanelResult{
		cbcPanel(metric("ESR", 12, domain.StatusReviewRequired)),
	})

	require.Len(t, summary.Abnormalities, 1)
	assert.Equal(t, 1, summary.RiskScore)
	assert.Equal(t, domain.RiskModerate, summary.RiskLevel)
}

func TestSummarizeRiskScoreClamped(t *testing.T) {
	svc := NewSummaryService(testLogger())

	metrics := make([]domain.ExtractedMetric, 0, 5)
	for i := 0; i < 5; i++ {
		metrics = append(metrics, metric("Test", 999, domain.StatusCriticalHigh))
	}
	summary := svc.Summarize([]domain.PanelResult{cbcPanel(metrics...)})

	assert.Equal(t, 10, summary.RiskScore)
	assert.Equal(t, domain.RiskHigh, summary.RiskLevel)
}

// Adding a critical metric to a fixed panel list never lowers the score or
// the level.
func TestSummarizeMonotonicity(t *testing.T) {
	svc := NewSummaryService(testLogger())

	base := []domain.PanelResult{
		cbcPanel(metric("Hemoglobin", 9, domain.StatusLow), metric("WBC", 12000, domain.StatusHigh)),
	}
	before := svc.Summarize(base)

	extended := []domain.PanelResult{
		cbcPanel(append(append([]domain.ExtractedMetric{}, base[0].Metrics...),
			metric("Platelet Count", 20000, domain.StatusCriticalLow))...),
	}
	after := svc.Summarize(extended)

	assert.GreaterOrEqual(t, after.RiskScore, before.RiskScore)
	assert.True(t, after.RiskLevel.AtLeast(before.RiskLevel))
}

func TestSummarizeJoinsAbnormalNames(t *testing.T) {
	svc := NewSummaryService(testLogger())

	summary := svc.Summarize([]domain.PanelResult{
		cbcPanel(metric("Hemoglobin", 9, domain.StatusLow)),
		{Panel: domain.PanelLipid, Metrics: []domain.ExtractedMetric{
			metric("Total Cholesterol", 240, domain.StatusHigh),
		}},
	})

	assert.Contains(t, summary.Paragraph, "Hemoglobin, Total Cholesterol")
	assert.True(t, strings.HasSuffix(summary.Paragraph, "Clinical evaluation and continuous monitoring recommended."))
}

// End-to-end over the real extraction pipeline.
func TestAnalyzeAndSummarizeScenarios(t *testing.T) {
	analysis := NewAnalysisService(testCatalog(), testLogger())
	summaries := NewSummaryService(testLogger())

	t.Run("low hemoglobin", func(t *testing.T) {
		panels, err := analysis.Analyze(context.Background(), "Hemoglobin: 9.0 g/dL", adultMale())
		require.NoError(t, err)

		summary := summaries.Summarize(panels)
		require.Len(t, summary.Abnormalities, 1)
		assert.Equal(t, 1, summary.RiskScore)
		assert.Equal(t, domain.RiskModerate, summary.RiskLevel)
	})

	t.Run("critical creatinine", func(t *testing.T) {
		panels, err := analysis.Analyze(context.Background(), "Creatinine 12.5", adultMale())
		require.NoError(t, err)

		summary := summaries.Summarize(panels)
		assert.Equal(t, 3, summary.RiskScore)
		assert.Equal(t, domain.RiskHigh, summary.RiskLevel)
		assert.Contains(t, summary.Paragraph, "URGENT")
		assert.Contains(t, summary.Paragraph, "1 metric(s)")
	})

	t.Run("nothing recognized", func(t *testing.T) {
		panels, err := analysis.Analyze(context.Background(), "Handwritten clinician notes only", adultMale())
		require.NoError(t, err)
		assert.Empty(t, panels)

		summary := summaries.Summarize(panels)
		assert.Equal(t, 0, summary.RiskScore)
		assert.Equal(t, domain.RiskLow, summary.RiskLevel)
		assert.Contains(t, summary.Paragraph, "within normal biological reference ranges")
	})
}
