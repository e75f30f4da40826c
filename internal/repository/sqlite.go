package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/healthhive/healthhive/internal/domain"
)

// SQLiteStore is the standalone-mode persistence layer: reference catalog
// and lab reports in a single local file, no external services. It
// implements domain.ReferenceCatalog and domain.ReportStore.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore opens (or creates) the database file, applies the schema
// and seeds the reference catalog when empty.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL mode for better concurrency between analysis reads and report writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	store := &SQLiteStore{db: db, dbPath: dbPath}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	if err := store.seedCatalogIfEmpty(); err != nil {
		db.Close()
		return nil, fmt.Errorf("seeding catalog: %w", err)
	}
	return store, nil
}

// newSQLiteStoreFromDB wires a store over an existing handle; used by tests.
func newSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lab_references (
		test_code     TEXT PRIMARY KEY,
		test_name     TEXT NOT NULL,
		aliases       TEXT NOT NULL,
		panel         TEXT NOT NULL,
		unit          TEXT NOT NULL,
		age_groups    TEXT NOT NULL DEFAULT '[]',
		critical_low  REAL,
		critical_high REAL
	);

	CREATE INDEX IF NOT EXISTS idx_lab_references_panel ON lab_references(panel);

	CREATE TABLE IF NOT EXISTS lab_reports (
		id         TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL,
		panels     TEXT NOT NULL DEFAULT '[]',
		summary    TEXT,
		status     TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_lab_reports_patient ON lab_reports(patient_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// seedCatalogIfEmpty loads the built-in reference catalog on first run.
// The rows match the Postgres migration seed.
func (s *SQLiteStore) seedCatalogIfEmpty() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM lab_references").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt := `
		INSERT INTO lab_references (test_code, test_name, aliases, panel, unit, age_groups, critical_low, critical_high)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for _, ref := range DefaultCatalog() {
		aliases, err := json.Marshal(ref.Aliases)
		if err != nil {
			return err
		}
		ageGroups, err := json.Marshal(ref.AgeGroups)
		if err != nil {
			return err
		}
		var criticalLow, criticalHigh any
		if ref.CriticalLow != nil {
			criticalLow = *ref.CriticalLow
		}
		if ref.CriticalHigh != nil {
			criticalHigh = *ref.CriticalHigh
		}
		if _, err := tx.Exec(stmt, ref.TestCode, ref.TestName, string(aliases), ref.Panel.String(), ref.Unit, string(ageGroups), criticalLow, criticalHigh); err != nil {
			return fmt.Errorf("seeding %s: %w", ref.TestCode, err)
		}
	}
	return tx.Commit()
}

// GetReferencesByPanel implements domain.ReferenceCatalog.
func (s *SQLiteStore) GetReferencesByPanel(ctx context.Context, panel domain.Panel) ([]domain.ReferenceDefinition, error) {
	query := `
		SELECT test_code, test_name, aliases, panel, unit, age_groups, critical_low, critical_high
		FROM lab_references
		WHERE panel = ?
		ORDER BY test_code`

	rows, err := s.db.QueryContext(ctx, query, panel.String())
	if err != nil {
		return nil, fmt.Errorf("querying references for panel %s: %w", panel, err)
	}
	defer rows.Close()

	var refs []domain.ReferenceDefinition
	for rows.Next() {
		ref, err := scanSQLiteReference(rows)
		if err != nil {
			return nil, err
		}
		refs = append(refs, *ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reference rows: %w", err)
	}
	return refs, nil
}

// GetReferenceByCode implements domain.ReferenceCatalog.
func (s *SQLiteStore) GetReferenceByCode(ctx context.Context, testCode string) (*domain.ReferenceDefinition, error) {
	query := `
		SELECT test_code, test_name, aliases, panel, unit, age_groups, critical_low, critical_high
		FROM lab_references
		WHERE test_code = ?`

	ref, err := scanSQLiteReference(s.db.QueryRowContext(ctx, query, testCode))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("reference %s: %w", testCode, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting reference by code: %w", err)
	}
	return ref, nil
}

// SaveReport implements domain.ReportStore.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *domain.LabReport) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if !report.Status.IsValid() {
		report.Status = domain.ReportPending
	}

	panels, err := json.Marshal(report.Panels)
	if err != nil {
		return fmt.Errorf("marshaling report panels: %w", err)
	}
	summary, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("marshaling report summary: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO lab_reports (id, patient_id, panels, summary, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.PatientID, string(panels), string(summary), string(report.Status), now, now)
	if err != nil {
		return fmt.Errorf("saving lab report: %w", err)
	}
	report.CreatedAt = now
	report.UpdatedAt = now
	return nil
}

// GetReport implements domain.ReportStore.
func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*domain.LabReport, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_id, panels, summary, status, created_at, updated_at
		FROM lab_reports
		WHERE id = ?`, id)

	report, err := scanSQLiteReport(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("lab report %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("getting lab report: %w", err)
	}
	return report, nil
}

// GetReportsByPatient implements domain.ReportStore.
func (s *SQLiteStore) GetReportsByPatient(ctx context.Context, patientID string) ([]*domain.LabReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, panels, summary, status, created_at, updated_at
		FROM lab_reports
		WHERE patient_id = ?
		ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("querying reports by patient: %w", err)
	}
	defer rows.Close()

	var reports []*domain.LabReport
	for rows.Next() {
		report, err := scanSQLiteReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report rows: %w", err)
	}
	return reports, nil
}

// sqlScanner covers sql.Row and sql.Rows.
type sqlScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteReference(row sqlScanner) (*domain.ReferenceDefinition, error) {
	var ref domain.ReferenceDefinition
	var aliases, ageGroups string
	var criticalLow, criticalHigh sql.NullFloat64

	if err := row.Scan(&ref.TestCode, &ref.TestName, &aliases, &ref.Panel, &ref.Unit, &ageGroups, &criticalLow, &criticalHigh); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(aliases), &ref.Aliases); err != nil {
		return nil, fmt.Errorf("unmarshaling aliases for %s: %w", ref.TestCode, err)
	}
	if err := json.Unmarshal([]byte(ageGroups), &ref.AgeGroups); err != nil {
		return nil, fmt.Errorf("unmarshaling age groups for %s: %w", ref.TestCode, err)
	}
	if criticalLow.Valid {
		ref.CriticalLow = &criticalLow.Float64
	}
	if criticalHigh.Valid {
		ref.CriticalHigh = &criticalHigh.Float64
	}
	return &ref, nil
}

func scanSQLiteReport(row sqlScanner) (*domain.LabReport, error) {
	var report domain.LabReport
	var panels string
	var summary sql.NullString

	if err := row.Scan(&report.ID, &report.PatientID, &panels, &summary, &report.Status, &report.CreatedAt, &report.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(panels), &report.Panels); err != nil {
		return nil, fmt.Errorf("unmarshaling report panels: %w", err)
	}
	if summary.Valid && summary.String != "null" {
		report.Summary = &domain.Summary{}
		if err := json.Unmarshal([]byte(summary.String), report.Summary); err != nil {
			return nil, fmt.Errorf("unmarshaling report summary: %w", err)
		}
	}
	return &report, nil
}
