package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/healthhive/healthhive/internal/domain"
)

// valuePattern is the numeric tail shared by every alias pattern: an optional
// inline H/L flag some lab printers emit, an optional colon/dash separator,
// then a number that may carry comma thousands separators.
const valuePattern = `\s*(?:[HL]\s*)?[:\-]?\s*([\d,]+\.?\d*)`

// PanelAnalyzer extracts the metrics of one clinical panel from raw report
// text. Extraction is entirely alias-driven: patterns are compiled from the
// reference catalog's alias lists, so adding a new recognized synonym is a
// data change, not a code change.
type PanelAnalyzer struct {
	panel   domain.Panel
	catalog domain.ReferenceCatalog
	log     *logrus.Logger
}

// NewPanelAnalyzer creates an analyzer for the given panel.
func NewPanelAnalyzer(panel domain.Panel, catalog domain.ReferenceCatalog, logger *logrus.Logger) *PanelAnalyzer {
	return &PanelAnalyzer{
		panel:   panel,
		catalog: catalog,
		log:     logger,
	}
}

// Panel returns the panel this analyzer owns.
func (a *PanelAnalyzer) Panel() domain.Panel {
	return a.panel
}

// Analyze extracts and classifies every catalog-known metric it can find in
// the text. A test whose aliases never appear is silently omitted; a matched
// number that fails to parse is likewise omitted. Only a catalog read failure
// is an error.
func (a *PanelAnalyzer) Analyze(ctx context.Context, text string, meta domain.PatientMeta) (*domain.PanelResult, error) {
	references, err := a.catalog.GetReferencesByPanel(ctx, a.panel)
	if err != nil {
		return nil, fmt.Errorf("loading %s references: %w", a.panel, err)
	}

	metrics := make([]domain.ExtractedMetric, 0, len(references))
	for i := range references {
		ref := &references[i]

		re, err := compileAliasPattern(ref.Aliases)
		if err != nil {
			// Aliases are escaped before compilation, so this indicates a
			// corrupt catalog row rather than bad report text.
			return nil, fmt.Errorf("compiling alias pattern for %s: %w", ref.TestCode, err)
		}

		match := re.FindStringSubmatch(text)
		if match == nil {
			continue
		}

		value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil {
			a.log.WithFields(logrus.Fields{
				"panel":     a.panel,
				"test_code": ref.TestCode,
				"raw_value": match[1],
			}).Warn("Matched value failed to parse, omitting metric")
			continue
		}

		metrics = append(metrics, domain.ExtractedMetric{
			TestCode: ref.TestCode,
			TestName: ref.TestName,
			Value:    value,
			Unit:     ref.Unit,
			Status:   Evaluate(value, ref, meta),
		})
	}

	a.log.WithFields(logrus.Fields{
		"panel":        a.panel,
		"metric_count": len(metrics),
	}).Debug("Panel extraction complete")

	return &domain.PanelResult{Panel: a.panel, Metrics: metrics}, nil
}

// compileAliasPattern builds the case-insensitive extraction pattern for one
// test from its alias list. Aliases are plain strings maintained by clinical
// staff, so each one is escaped before it reaches the pattern compiler.
func compileAliasPattern(aliases []string) (*regexp.Regexp, error) {
	escaped := make([]string, len(aliases))
	for i, alias := range aliases {
		escaped[i] = regexp.QuoteMeta(alias)
	}
	return regexp.Compile(`(?i)(?:` + strings.Join(escaped, "|") + `)` + valuePattern)
}
