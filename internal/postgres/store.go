// Package postgres persists batch-run outcomes: accepted registrations,
// rejection reasons, and per-run summaries.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukerupert/regcheck/internal/domain"
	"github.com/dukerupert/regcheck/internal/pipeline"
)

// Store writes run outcomes to Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateRun opens a run row for a batch over the named source and returns
// its id for the per-row inserts that follow.
func (s *Store) CreateRun(ctx context.Context, source string) (uuid.UUID, error) {
	var id pgtype.UUID
	err := s.pool.QueryRow(ctx,
		`INSERT INTO runs (source) VALUES ($1) RETURNING id`,
		source,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, domain.Internal(err, "store.create_run", "failed to create run")
	}
	return uuid.UUID(id.Bytes), nil
}

// FinishRun stamps the run's end time and final tallies.
func (s *Store) FinishRun(ctx context.Context, runID uuid.UUID, summary pipeline.Summary) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE runs
		    SET finished_at = now(), total_rows = $2, accepted_rows = $3, rejected_rows = $4
		  WHERE id = $1`,
		pgUUID(runID), summary.Total, summary.Accepted, summary.Rejected,
	)
	if err != nil {
		return domain.Internal(err, "store.finish_run", "failed to finish run")
	}
	return nil
}

// InsertRegistration persists one accepted row.
func (s *Store) InsertRegistration(ctx context.Context, runID uuid.UUID, line int, reg domain.Registration) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO registrations
		    (id, run_id, line_number, license_plate, raw_plate, make_model, year,
		     registered_name, street_address, city, state, zip, registered_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		pgUUID(reg.ID), pgUUID(runID), line,
		reg.LicensePlate, reg.RawPlate, reg.MakeModel, reg.Year,
		reg.RegisteredName, reg.StreetAddress, reg.City, reg.State, reg.Zip,
		reg.RegisteredDate,
	)
	if err != nil {
		return domain.Internal(err, "store.insert_registration",
			fmt.Sprintf("failed to save registration for line %d", line))
	}
	return nil
}

// InsertRejection records one rejected row with its reason and, when the
// line decoded at all, the record as decoded.
func (s *Store) InsertRejection(ctx context.Context, runID uuid.UUID, line int, rec domain.Record, rowErr error) error {
	var record []byte
	if rec != nil {
		b, err := json.Marshal(rec)
		if err == nil {
			record = b
		}
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO rejections (run_id, line_number, code, message, record)
		 VALUES ($1, $2, $3, $4, $5)`,
		pgUUID(runID), line, domain.ErrorCode(rowErr), domain.ErrorMessage(rowErr), record,
	)
	if err != nil {
		return domain.Internal(err, "store.insert_rejection",
			fmt.Sprintf("failed to save rejection for line %d", line))
	}
	return nil
}

// Ping verifies database connectivity, for health checks.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return domain.Internal(err, "store.ping", "database unreachable")
	}
	return nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: id != uuid.Nil}
}
