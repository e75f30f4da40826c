package domain

import (
	"context"
)

// ReferenceCatalog is the read accessor over the clinical reference data.
// The engine never writes to the catalog; implementations may be backed by
// Postgres, SQLite or a fixed in-memory table for tests. A failed catalog
// read is an infrastructure error and must abort the whole analysis run.
type ReferenceCatalog interface {
	// GetReferencesByPanel returns the definitions owned by the given panel,
	// in stable catalog order.
	GetReferencesByPanel(ctx context.Context, panel Panel) ([]ReferenceDefinition, error)

	// GetReferenceByCode returns the definition for a single test code.
	// Returns ErrNotFound when the code is not configured.
	GetReferenceByCode(ctx context.Context, testCode string) (*ReferenceDefinition, error)
}

// ReportStore persists analyzed lab reports.
type ReportStore interface {
	SaveReport(ctx context.Context, report *LabReport) error
	GetReport(ctx context.Context, id string) (*LabReport, error)
	GetReportsByPatient(ctx context.Context, patientID string) ([]*LabReport, error)
}

// LabTestStore serves the orderable test catalog and bookings.
type LabTestStore interface {
	ListLabTests(ctx context.Context) ([]LabTest, error)
	CreateBooking(ctx context.Context, booking *LabBooking) error
	GetBookingsByPatient(ctx context.Context, patientID string) ([]*LabBooking, error)
}
