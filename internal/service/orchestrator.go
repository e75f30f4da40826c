package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/healthhive/healthhive/internal/domain"
)

// panelKeywords maps each panel to the presence keywords that trigger its
// analyzer. Detection only decides which analyzers run; extraction itself is
// driven by the catalog's alias lists.
var panelKeywords = map[domain.Panel]*regexp.Regexp{
	domain.PanelCBC:   regexp.MustCompile(`(?i)Hemoglobin|WBC|RBC|Complete Blood Count|Leukocyte`),
	domain.PanelRFT:   regexp.MustCompile(`(?i)Creatinine|Urea|BUN|Uric Acid|Renal|Kidney`),
	domain.PanelLFT:   regexp.MustCompile(`(?i)ALT|AST|Bilirubin|Alkaline Phosphatase|Liver|LFT|SGPT|SGOT`),
	domain.PanelLipid: regexp.MustCompile(`(?i)Cholesterol|HDL|LDL|Triglycerides|Lipid`),
}

// AnalysisService is the engine's orchestrator. It detects which panels a
// report mentions, fans their analyzers out concurrently against the shared
// read-only catalog, and gathers the non-empty results.
type AnalysisService struct {
	analyzers map[domain.Panel]*PanelAnalyzer
	catalog   domain.ReferenceCatalog
	log       *logrus.Logger
}

// NewAnalysisService creates the orchestrator with one analyzer per known panel.
func NewAnalysisService(catalog domain.ReferenceCatalog, logger *logrus.Logger) *AnalysisService {
	analyzers := make(map[domain.Panel]*PanelAnalyzer, len(domain.Panels))
	for _, panel := range domain.Panels {
		analyzers[panel] = NewPanelAnalyzer(panel, catalog, logger)
	}
	return &AnalysisService{
		analyzers: analyzers,
		catalog:   catalog,
		log:       logger,
	}
}

// DetectPanels returns the panels whose keyword sets appear in the text, in
// catalog order. Detection is independent of and precedes extraction.
func (s *AnalysisService) DetectPanels(text string) []domain.Panel {
	detected := make([]domain.Panel, 0, len(domain.Panels))
	for _, panel := range domain.Panels {
		if panelKeywords[panel].MatchString(text) {
			detected = append(detected, panel)
		}
	}
	return detected
}

// Analyze runs the full extraction pipeline over raw report text.
//
// Detected panels are analyzed concurrently; any catalog failure aborts the
// whole call, since partial clinical data with no indication of failure is
// unsafe. Panels with zero extracted metrics are dropped. Callers must not
// depend on panel order; metric order within a panel is stable.
func (s *AnalysisService) Analyze(ctx context.Context, rawText string, meta domain.PatientMeta) ([]domain.PanelResult, error) {
	detected := s.DetectPanels(rawText)
	if len(detected) == 0 {
		s.log.Debug("No panel keywords detected in report text")
		return []domain.PanelResult{}, nil
	}

	s.log.WithFields(logrus.Fields{
		"panels":         detected,
		"patient_age":    meta.Age,
		"patient_gender": meta.Gender,
	}).Info("Starting lab report analysis")

	results := make([]*domain.PanelResult, len(detected))
	g, ctx := errgroup.WithContext(ctx)
	for i, panel := range detected {
		i, panel := i, panel
		g.Go(func() error {
			result, err := s.analyzers[panel].Analyze(ctx, rawText, meta)
			if err != nil {
				return fmt.Errorf("analyzing %s panel: %w", panel, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	panels := make([]domain.PanelResult, 0, len(results))
	for _, result := range results {
		if len(result.Metrics) > 0 {
			panels = append(panels, *result)
		}
	}

	s.log.WithFields(logrus.Fields{
		"panels_detected": len(detected),
		"panels_returned": len(panels),
	}).Info("Lab report analysis complete")

	return panels, nil
}

// EvaluateValues classifies pre-structured results keyed by test code, for
// reports entered as key/value pairs rather than free text. A code with no
// catalog definition yields a metric with status Reference Missing; only
// infrastructure failures are errors.
func (s *AnalysisService) EvaluateValues(ctx context.Context, values map[string]float64, meta domain.PatientMeta) ([]domain.PanelResult, error) {
	byPanel := make(map[domain.Panel][]domain.ExtractedMetric)

	// Map iteration order is random; sort codes so repeated calls produce
	// structurally identical results.
	codes := make([]string, 0, len(values))
	for code := range values {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		value := values[code]
		ref, err := s.catalog.GetReferenceByCode(ctx, code)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			byPanel[""] = append(byPanel[""], domain.ExtractedMetric{
				TestCode: code,
				TestName: code,
				Value:    value,
				Unit:     "Unknown",
				Status:   domain.StatusReferenceMissing,
			})
			continue
		case err != nil:
			return nil, fmt.Errorf("looking up reference for %s: %w", code, err)
		}

		byPanel[ref.Panel] = append(byPanel[ref.Panel], domain.ExtractedMetric{
			TestCode: ref.TestCode,
			TestName: ref.TestName,
			Value:    value,
			Unit:     ref.Unit,
			Status:   Evaluate(value, ref, meta),
		})
	}

	panels := make([]domain.PanelResult, 0, len(byPanel))
	for _, panel := range domain.Panels {
		if metrics, ok := byPanel[panel]; ok {
			panels = append(panels, domain.PanelResult{Panel: panel, Metrics: metrics})
		}
	}
	// Unrecognized codes surface under an unnamed panel so callers still see
	// them flagged Reference Missing.
	if orphans, ok := byPanel[""]; ok {
		panels = append(panels, domain.PanelResult{Panel: "", Metrics: orphans})
	}

	return panels, nil
}
