package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/healthhive/healthhive/internal/domain"
)

// ReportRepository persists analyzed lab reports. Panels and summary are
// stored as JSONB documents: the engine's output shape is the record of
// truth and is never queried field-by-field.
type ReportRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewReportRepository creates a new lab report repository.
func NewReportRepository(db *pgxpool.Pool, logger *logrus.Logger) *ReportRepository {
	return &ReportRepository{db: db, log: logger}
}

// SaveReport inserts a new report, assigning an ID when absent.
func (r *ReportRepository) SaveReport(ctx context.Context, report *domain.LabReport) error {
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

	query := `
		INSERT INTO lab_reports (id, patient_id, panels, summary, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		report.ID,
		report.PatientID,
		panels,
		summary,
		report.Status,
	).Scan(&report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"report_id":  report.ID,
			"patient_id": report.PatientID,
			"error":      err,
		}).Error("Failed to save lab report")
		return fmt.Errorf("saving lab report: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"report_id":  report.ID,
		"patient_id": report.PatientID,
		"status":     report.Status,
	}).Info("Lab report saved")

	return nil
}

// GetReport retrieves a report by ID.
func (r *ReportRepository) GetReport(ctx context.Context, id string) (*domain.LabReport, error) {
	query := `
		SELECT id, patient_id, panels, summary, status, created_at, updated_at
		FROM lab_reports
		WHERE id = $1`

	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("lab report %s: %w", id, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"report_id": id,
			"error":     err,
		}).Error("Failed to get lab report")
		return nil, fmt.Errorf("getting lab report: %w", err)
	}
	return report, nil
}

// GetReportsByPatient returns a patient's reports, newest first.
func (r *ReportRepository) GetReportsByPatient(ctx context.Context, patientID string) ([]*domain.LabReport, error) {
	query := `
		SELECT id, patient_id, panels, summary, status, created_at, updated_at
		FROM lab_reports
		WHERE patient_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("querying reports by patient: %w", err)
	}
	defer rows.Close()

	var reports []*domain.LabReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating report rows: %w", err)
	}
	return reports, nil
}

// rowScanner covers pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.LabReport, error) {
	var report domain.LabReport
	var panels, summary []byte
	var createdAt, updatedAt time.Time

	if err := row.Scan(
		&report.ID,
		&report.PatientID,
		&panels,
		&summary,
		&report.Status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(panels, &report.Panels); err != nil {
		return nil, fmt.Errorf("unmarshaling report panels: %w", err)
	}
	if len(summary) > 0 && string(summary) != "null" {
		report.Summary = &domain.Summary{}
		if err := json.Unmarshal(summary, report.Summary); err != nil {
			return nil, fmt.Errorf("unmarshaling report summary: %w", err)
		}
	}
	report.CreatedAt = createdAt
	report.UpdatedAt = updatedAt
	return &report, nil
}
