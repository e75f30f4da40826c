package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthhive/healthhive/internal/domain"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "healthhive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreSeedsCatalog(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	seen := 0
	for _, panel := range domain.Panels {
		refs, err := store.GetReferencesByPanel(ctx, panel)
		require.NoError(t, err)
		assert.NotEmpty(t, refs, "panel %s should be seeded", panel)
		for _, ref := range refs {
			assert.Equal(t, panel, ref.Panel)
			assert.NoError(t, ref.Validate())
		}
		seen += len(refs)
	}
	assert.Equal(t, len(DefaultCatalog()), seen)
}

func TestSQLiteStoreSeedIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "healthhive.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// reopening must not duplicate catalog rows
	store, err = NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	refs, err := store.GetReferencesByPanel(context.Background(), domain.PanelCBC)
	require.NoError(t, err)
	assert.Len(t, refs, 4)
}

func TestSQLiteStoreGetReferenceByCode(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	ref, err := store.GetReferenceByCode(ctx, "HB")
	require.NoError(t, err)
	assert.Equal(t, "Hemoglobin", ref.TestName)
	assert.Equal(t, domain.PanelCBC, ref.Panel)
	assert.Contains(t, ref.Aliases, "HGB")
	require.NotNil(t, ref.CriticalLow)
	assert.Equal(t, 7.0, *ref.CriticalLow)
	require.Len(t, ref.AgeGroups, 3)
	assert.Equal(t, domain.GenderAll, ref.AgeGroups[0].Gender)

	_, err = store.GetReferenceByCode(ctx, "TSH")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStoreReportRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	report := &domain.LabReport{
		PatientID: "patient-42",
		Panels: []domain.PanelResult{
			{
				Panel: domain.PanelCBC,
				Metrics: []domain.ExtractedMetric{
					{TestCode: "HB", TestName: "Hemoglobin", Value: 14.2, Unit: "g/dL", Status: domain.StatusNormal},
				},
			},
		},
		Summary: &domain.Summary{
			RiskScore: 0,
			RiskLevel: domain.RiskLow,
			Paragraph: "All analyzed metrics are within normal reference ranges.",
		},
		Status: domain.ReportCompleted,
	}

	require.NoError(t, store.SaveReport(ctx, report))
	assert.NotEmpty(t, report.ID)
	assert.False(t, report.CreatedAt.IsZero())

	got, err := store.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.PatientID, got.PatientID)
	assert.Equal(t, report.Panels, got.Panels)
	require.NotNil(t, got.Summary)
	assert.Equal(t, report.Summary.Paragraph, got.Summary.Paragraph)
	assert.Equal(t, domain.ReportCompleted, got.Status)
}

func TestSQLiteStoreGetReportNotFound(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.GetReport(context.Background(), "missing-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLiteStoreGetReportsByPatient(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	for n := 0; n < 3; n++ {
		require.NoError(t, store.SaveReport(ctx, &domain.LabReport{
			PatientID: "patient-7",
			Status:    domain.ReportPending,
		}))
	}
	require.NoError(t, store.SaveReport(ctx, &domain.LabReport{
		PatientID: "patient-8",
		Status:    domain.ReportPending,
	}))

	reports, err := store.GetReportsByPatient(ctx, "patient-7")
	require.NoError(t, err)
	assert.Len(t, reports, 3)
	for _, report := range reports {
		assert.Equal(t, "patient-7", report.PatientID)
	}

	reports, err = store.GetReportsByPatient(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestSQLiteStoreDefaultsOnSave(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	report := &domain.LabReport{PatientID: "patient-1"}
	require.NoError(t, store.SaveReport(ctx, report))

	got, err := store.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportPending, got.Status)
	assert.Nil(t, got.Summary)
	assert.Empty(t, got.Panels)
}

func TestSQLiteStoreQueryFailures(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := newSQLiteStoreFromDB(db)
	dbErr := errors.New("disk I/O error")

	mock.ExpectQuery("SELECT test_code").WillReturnError(dbErr)
	_, err = store.GetReferencesByPanel(context.Background(), domain.PanelCBC)
	assert.ErrorIs(t, err, dbErr)

	mock.ExpectQuery("SELECT id, patient_id").WillReturnError(dbErr)
	_, err = store.GetReportsByPatient(context.Background(), "patient-1")
	assert.ErrorIs(t, err, dbErr)

	mock.ExpectExec("INSERT INTO lab_reports").WillReturnError(dbErr)
	err = store.SaveReport(context.Background(), &domain.LabReport{PatientID: "patient-1"})
	assert.ErrorIs(t, err, dbErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStoreMalformedRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := newSQLiteStoreFromDB(db)

	rows := sqlmock.NewRows([]string{
		"test_code", "test_name", "aliases", "panel", "unit", "age_groups", "critical_low", "critical_high",
	}).AddRow("HB", "Hemoglobin", "not-json", "CBC", "g/dL", "[]", nil, nil)

	mock.ExpectQuery("SELECT test_code").WillReturnRows(rows)
	_, err = store.GetReferencesByPanel(context.Background(), domain.PanelCBC)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshaling aliases")

	assert.NoError(t, mock.ExpectationsWereMet())
}
