package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthhive/healthhive/internal/domain"
)

// countingCatalog counts hits against the backing store.
type countingCatalog struct {
	domain.ReferenceCatalog
	panelCalls int
}

func (c *countingCatalog) GetReferencesByPanel(ctx context.Context, panel domain.Panel) ([]domain.ReferenceDefinition, error) {
	c.panelCalls++
	return c.ReferenceCatalog.GetReferencesByPanel(ctx, panel)
}

func TestCachedCatalogServesFromMemory(t *testing.T) {
	backing := &countingCatalog{ReferenceCatalog: testCatalog()}
	cached, err := NewCachedCatalog(backing, CachedCatalogConfig{}, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	first, err := cached.GetReferencesByPanel(ctx, domain.PanelCBC)
	require.NoError(t, err)
	second, err := cached.GetReferencesByPanel(ctx, domain.PanelCBC)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, backing.panelCalls)

	direct, err := testCatalog().GetReferencesByPanel(ctx, domain.PanelCBC)
	require.NoError(t, err)
	assert.Equal(t, direct, first)
}

func TestCachedCatalogInvalidate(t *testing.T) {
	backing := &countingCatalog{ReferenceCatalog: testCatalog()}
	cached, err := NewCachedCatalog(backing, CachedCatalogConfig{}, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = cached.GetReferencesByPanel(ctx, domain.PanelRFT)
	require.NoError(t, err)

	cached.Invalidate(ctx, domain.PanelRFT)

	_, err = cached.GetReferencesByPanel(ctx, domain.PanelRFT)
	require.NoError(t, err)
	assert.Equal(t, 2, backing.panelCalls)
}

func TestCachedCatalogBackingFailurePropagates(t *testing.T) {
	cached, err := NewCachedCatalog(&memCatalog{err: errCatalogDown}, CachedCatalogConfig{}, testLogger())
	require.NoError(t, err)

	_, err = cached.GetReferencesByPanel(context.Background(), domain.PanelCBC)
	require.Error(t, err)
	assert.ErrorIs(t, err, errCatalogDown)
}

func TestCachedCatalogGetReferenceByCode(t *testing.T) {
	cached, err := NewCachedCatalog(testCatalog(), CachedCatalogConfig{}, testLogger())
	require.NoError(t, err)

	ctx := context.Background()
	ref, err := cached.GetReferenceByCode(ctx, "CREAT")
	require.NoError(t, err)
	assert.Equal(t, "Serum Creatinine", ref.TestName)
	assert.Equal(t, domain.PanelRFT, ref.Panel)

	_, err = cached.GetReferenceByCode(ctx, "TSH")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// The analysis engine runs unchanged over the cached catalog.
func TestAnalyzeOverCachedCatalog(t *testing.T) {
	cached, err := NewCachedCatalog(testCatalog(), CachedCatalogConfig{}, testLogger())
	require.NoError(t, err)

	svc := NewAnalysisService(cached, testLogger())
	panels, err := svc.Analyze(context.Background(), "Hemoglobin: 9.0 g/dL", adultMale())
	require.NoError(t, err)
	require.Len(t, panels, 1)
	assert.Equal(t, domain.StatusLow, panels[0].Metrics[0].Status)
}
