package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/healthhive/healthhive/internal/domain"
)

// LabTestRepository serves the orderable test catalog and patient bookings.
type LabTestRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewLabTestRepository creates a new lab test repository.
func NewLabTestRepository(db *pgxpool.Pool, logger *logrus.Logger) *LabTestRepository {
	return &LabTestRepository{db: db, log: logger}
}

// ListLabTests returns the full storefront catalog.
func (r *LabTestRepository) ListLabTests(ctx context.Context) ([]domain.LabTest, error) {
	query := `
		SELECT id, name, category, price, description, turnaround_time, fasting_required, created_at
		FROM lab_tests
		ORDER BY category, name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying lab tests: %w", err)
	}
	defer rows.Close()

	var tests []domain.LabTest
	for rows.Next() {
		var t domain.LabTest
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Category,
			&t.Price,
			&t.Description,
			&t.TurnaroundTime,
			&t.FastingRequired,
			&t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning lab test row: %w", err)
		}
		tests = append(tests, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lab test rows: %w", err)
	}
	return tests, nil
}

// CreateBooking records a patient's booking of a catalog test.
func (r *LabTestRepository) CreateBooking(ctx context.Context, booking *domain.LabBooking) error {
	if err := booking.Validate(); err != nil {
		return err
	}
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}

	query := `
		INSERT INTO lab_bookings (id, patient_id, lab_test_id, scheduled_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		booking.ID,
		booking.PatientID,
		booking.LabTestID,
		booking.ScheduledAt,
	).Scan(&booking.CreatedAt)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id":  booking.PatientID,
			"lab_test_id": booking.LabTestID,
			"error":       err,
		}).Error("Failed to create lab booking")
		return fmt.Errorf("creating lab booking: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"patient_id": booking.PatientID,
	}).Info("Lab booking created")

	return nil
}

// GetBookingsByPatient returns a patient's bookings in schedule order.
func (r *LabTestRepository) GetBookingsByPatient(ctx context.Context, patientID string) ([]*domain.LabBooking, error) {
	query := `
		SELECT id, patient_id, lab_test_id, scheduled_at, created_at
		FROM lab_bookings
		WHERE patient_id = $1
		ORDER BY scheduled_at`

	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("querying bookings by patient: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.LabBooking
	for rows.Next() {
		var b domain.LabBooking
		if err := rows.Scan(&b.ID, &b.PatientID, &b.LabTestID, &b.ScheduledAt, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning booking row: %w", err)
		}
		bookings = append(bookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating booking rows: %w", err)
	}
	return bookings, nil
}
