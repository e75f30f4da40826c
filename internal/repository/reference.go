// Package repository provides Postgres-backed persistence for the reference
// catalog, lab reports and the storefront.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/healthhive/healthhive/internal/domain"
)

// ReferenceRepository implements domain.ReferenceCatalog over Postgres.
// The engine only reads from it; writes happen through migrations and
// clinical configuration tooling.
type ReferenceRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewReferenceRepository creates a new reference catalog repository.
func NewReferenceRepository(db *pgxpool.Pool, logger *logrus.Logger) *ReferenceRepository {
	return &ReferenceRepository{db: db, log: logger}
}

// GetReferencesByPanel returns the panel's definitions in stable catalog
// order, each with its demographic ranges in declaration order.
func (r *ReferenceRepository) GetReferencesByPanel(ctx context.Context, panel domain.Panel) ([]domain.ReferenceDefinition, error) {
	query := `
		SELECT test_code, test_name, aliases, panel, unit, critical_low, critical_high
		FROM lab_references
		WHERE panel = $1
		ORDER BY test_code`

	rows, err := r.db.Query(ctx, query, panel.String())
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"panel": panel,
			"error": err,
		}).Error("Failed to query references by panel")
		return nil, fmt.Errorf("querying references for panel %s: %w", panel, err)
	}
	defer rows.Close()

	var refs []domain.ReferenceDefinition
	index := make(map[string]int)
	for rows.Next() {
		var ref domain.ReferenceDefinition
		if err := rows.Scan(
			&ref.TestCode,
			&ref.TestName,
			&ref.Aliases,
			&ref.Panel,
			&ref.Unit,
			&ref.CriticalLow,
			&ref.CriticalHigh,
		); err != nil {
			return nil, fmt.Errorf("scanning reference row: %w", err)
		}
		index[ref.TestCode] = len(refs)
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reference rows: %w", err)
	}

	if len(refs) == 0 {
		return refs, nil
	}

	if err := r.attachRanges(ctx, refs, index, `
		SELECT rr.test_code, rr.min_age, rr.max_age, rr.gender, rr.min_normal, rr.max_normal
		FROM lab_reference_ranges rr
		JOIN lab_references lr ON lr.test_code = rr.test_code
		WHERE lr.panel = $1
		ORDER BY rr.test_code, rr.position`, panel.String()); err != nil {
		return nil, err
	}

	return refs, nil
}

// GetReferenceByCode returns a single definition with its ranges.
func (r *ReferenceRepository) GetReferenceByCode(ctx context.Context, testCode string) (*domain.ReferenceDefinition, error) {
	query := `
		SELECT test_code, test_name, aliases, panel, unit, critical_low, critical_high
		FROM lab_references
		WHERE test_code = $1`

	var ref domain.ReferenceDefinition
	err := r.db.QueryRow(ctx, query, testCode).Scan(
		&ref.TestCode,
		&ref.TestName,
		&ref.Aliases,
		&ref.Panel,
		&ref.Unit,
		&ref.CriticalLow,
		&ref.CriticalHigh,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("reference %s: %w", testCode, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"test_code": testCode,
			"error":     err,
		}).Error("Failed to get reference by code")
		return nil, fmt.Errorf("getting reference by code: %w", err)
	}

	refs := []domain.ReferenceDefinition{ref}
	if err := r.attachRanges(ctx, refs, map[string]int{ref.TestCode: 0}, `
		SELECT test_code, min_age, max_age, gender, min_normal, max_normal
		FROM lab_reference_ranges
		WHERE test_code = $1
		ORDER BY position`, testCode); err != nil {
		return nil, err
	}

	return &refs[0], nil
}

// attachRanges loads demographic ranges and appends them, preserving the
// stored positional order, onto the referenced definitions.
func (r *ReferenceRepository) attachRanges(ctx context.Context, refs []domain.ReferenceDefinition, index map[string]int, query string, args ...any) error {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying reference ranges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var testCode string
		var rng domain.AgeGroupRange
		if err := rows.Scan(&testCode, &rng.MinAge, &rng.MaxAge, &rng.Gender, &rng.MinNormal, &rng.MaxNormal); err != nil {
			return fmt.Errorf("scanning reference range row: %w", err)
		}
		if i, ok := index[testCode]; ok {
			refs[i].AgeGroups = append(refs[i].AgeGroups, rng)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating reference range rows: %w", err)
	}
	return nil
}
