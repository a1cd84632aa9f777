package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/pacstays/internal/db"
	"github.com/gyeh/pacstays/internal/model"
	embedsql "github.com/gyeh/pacstays/internal/sql"
)

// Publish swaps both serving tables to this run's rows in a single
// transaction: delete prior rows, COPY the replacements, stamp the run
// row published. Both output sets are already built before the
// transaction opens, so readers see either the previous publish or this
// one in full, never a partial overwrite.
func Publish(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, runID uuid.UUID, res *BuildResult) error {
	start := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin publish tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, embedsql.DeleteStayDetail); err != nil {
		return fmt.Errorf("clear stay detail: %w", err)
	}
	if _, err := tx.Exec(ctx, embedsql.DeleteVisitDetail); err != nil {
		return fmt.Errorf("clear visit detail: %w", err)
	}

	nStays, err := tx.CopyFrom(ctx,
		pgx.Identifier{"serving", "stay_claim_detail"},
		model.StayDetailColumns(),
		db.NewSliceSource(res.StayRows),
	)
	if err != nil {
		return fmt.Errorf("copy stay detail: %w", err)
	}

	nVisits, err := tx.CopyFrom(ctx,
		pgx.Identifier{"serving", "hospital_visit_detail"},
		model.VisitDetailColumns(),
		db.NewSliceSource(res.VisitRows),
	)
	if err != nil {
		return fmt.Errorf("copy visit detail: %w", err)
	}

	if _, err := tx.Exec(ctx, embedsql.FinishRun,
		runID, time.Now().UTC(),
		res.Summary.CoverageStart, res.Summary.CoverageEnd,
		nStays, nVisits,
	); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit publish tx: %w", err)
	}

	res.Summary.RowsPublishedStays = nStays
	res.Summary.RowsPublishedVisits = nVisits
	res.Summary.DurationPublish = time.Since(start)

	log.Info().
		Int64("stay_rows", nStays).
		Int64("visit_rows", nVisits).
		Dur("duration", res.Summary.DurationPublish).
		Msg("publish complete")
	return nil
}

// RegisterRun inserts the run registry row in 'running' state.
func RegisterRun(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID, startedAt time.Time) error {
	if _, err := pool.Exec(ctx, embedsql.InsertRun, runID, startedAt); err != nil {
		return fmt.Errorf("register run: %w", err)
	}
	return nil
}

// UpdateRunStatus moves the run registry row to a new status; errMsg is
// recorded for failed runs and nil otherwise.
func UpdateRunStatus(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID, status string, errMsg *string) error {
	_, err := pool.Exec(ctx, embedsql.UpdateRunStatus, runID, status, errMsg)
	return err
}
