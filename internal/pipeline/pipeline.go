// Package pipeline orchestrates one dashboard run: load the snapshot,
// build the stay and visit sets in memory, publish both serving tables
// atomically. Stages are barriers; each completes before the next starts
// because later stages recompute aggregates over the whole corrected set.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/gyeh/pacstays/internal/config"
	"github.com/gyeh/pacstays/internal/model"
)

// PipelineError wraps an error with the phase where it occurred.
type PipelineError struct {
	Phase string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Run executes the full pipeline: load → build → publish. On any failure
// the run registry row is marked failed and the previously published
// serving rows stay untouched.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config) (*model.RunSummary, error) {
	totalStart := time.Now()
	runID := uuid.New()
	runAt := time.Now().UTC()
	log = log.With().Str("run_id", runID.String()).Logger()

	if err := RegisterRun(ctx, pool, runID, runAt); err != nil {
		return nil, &PipelineError{Phase: "register", Err: err}
	}

	loadStart := time.Now()
	in, err := Load(ctx, pool, log, cfg.ClaimsFile)
	if err != nil {
		markFailed(ctx, pool, log, runID, err)
		return nil, &PipelineError{Phase: "load", Err: err}
	}
	loadDur := time.Since(loadStart)

	res := Build(log, cfg, in, runID, runAt)
	res.Summary.DurationLoad = loadDur

	if err := UpdateRunStatus(ctx, pool, runID, "built", nil); err != nil {
		markFailed(ctx, pool, log, runID, err)
		return nil, &PipelineError{Phase: "build", Err: err}
	}

	if cfg.DryRun {
		res.Summary.DurationTotal = time.Since(totalStart)
		log.Info().Msg("dry run: skipping publish")
		return &res.Summary, nil
	}

	if err := Publish(ctx, pool, log, runID, res); err != nil {
		markFailed(ctx, pool, log, runID, err)
		return nil, &PipelineError{Phase: "publish", Err: err}
	}

	res.Summary.DurationTotal = time.Since(totalStart)
	log.Info().
		Int64("stays", res.Summary.StaysFinal).
		Int64("stay_rows", res.Summary.RowsPublishedStays).
		Int64("visit_rows", res.Summary.RowsPublishedVisits).
		Dur("total_duration", res.Summary.DurationTotal).
		Msg("run complete")
	return &res.Summary, nil
}

func markFailed(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, runID uuid.UUID, cause error) {
	msg := cause.Error()
	if err := UpdateRunStatus(ctx, pool, runID, "failed", &msg); err != nil {
		log.Warn().Err(err).Msg("could not mark run failed")
	}
}
