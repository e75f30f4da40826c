package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/healthhive/healthhive/internal/domain"
)

// Risk weights and bounds for the aggregate score.
const (
	criticalWeight = 3
	abnormalWeight = 1
	maxRiskScore   = 10
	highRiskFloor  = 4
)

const normalParagraph = "All analyzed metrics fall within normal biological reference ranges. " +
	"No immediate clinical action is required based on these specific parameters."

// SummaryService turns a panel list into a bounded risk score and a
// deterministic clinical narrative. It is pure: same panels in, same summary
// out, no side effects beyond logging.
type SummaryService struct {
	log *logrus.Logger
}

// NewSummaryService creates a summary generator.
func NewSummaryService(logger *logrus.Logger) *SummaryService {
	return &SummaryService{log: logger}
}

// Summarize aggregates abnormalities across all panels. Critical statuses
// weigh three points, other abnormal statuses one; Reference Missing is
// exempt from the calculus entirely.
func (s *SummaryService) Summarize(panels []domain.PanelResult) *domain.Summary {
	abnormalities := make([]domain.AbnormalityRecord, 0)
	riskScore := 0
	criticalCount := 0

	for _, panel := range panels {
		for _, metric := range panel.Metrics {
			if !metric.Status.IsAbnormal() {
				continue
			}
			abnormalities = append(abnormalities, domain.AbnormalityRecord{
				TestName: metric.TestName,
				Value:    metric.Value,
				Unit:     metric.Unit,
				Status:   metric.Status,
			})
			if metric.Status.IsCritical() {
				riskScore += criticalWeight
				criticalCount++
			} else {
				riskScore += abnormalWeight
			}
		}
	}

	if riskScore > maxRiskScore {
		riskScore = maxRiskScore
	}

	riskLevel := domain.RiskLow
	switch {
	case riskScore >= highRiskFloor:
		riskLevel = domain.RiskHigh
	case riskScore > 0:
		riskLevel = domain.RiskModerate
	}

	summary := &domain.Summary{
		Abnormalities: abnormalities,
		RiskScore:     riskScore,
		RiskLevel:     riskLevel,
		Paragraph:     renderParagraph(abnormalities, criticalCount),
	}

	s.log.WithFields(logrus.Fields{
		"abnormal_count": len(abnormalities),
		"critical_count": criticalCount,
		"risk_score":     riskScore,
		"risk_level":     riskLevel,
	}).Info("Clinical summary generated")

	return summary
}

// renderParagraph produces the narrative text. Fully deterministic for a
// given abnormality list.
func renderParagraph(abnormalities []domain.AbnormalityRecord, criticalCount int) string {
	if len(abnormalities) == 0 {
		return normalParagraph
	}

	names := make([]string, len(abnormalities))
	for i, a := range abnormalities {
		names[i] = a.TestName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Patient exhibits %d abnormal value(s). ", len(abnormalities))
	if criticalCount > 0 {
		fmt.Fprintf(&b, "URGENT: %d metric(s) are in the critical range requiring immediate clinical correlation. ", criticalCount)
	}
	fmt.Fprintf(&b, "Specifically, abnormalities were detected in: %s. Clinical evaluation and continuous monitoring recommended.",
		strings.Join(names, ", "))
	return b.String()
}
