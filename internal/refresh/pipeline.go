package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/clinicops/refclean/internal/config"
	"github.com/clinicops/refclean/internal/model"
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

// Run executes a full refresh: snapshot → compute → write-back. The run is
// registered in ops.refresh_runs with status transitions; concurrent runs
// against the same database are the caller's responsibility to serialize.
func Run(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, cfg *config.Config) (*model.RefreshSummary, error) {
	totalStart := time.Now()
	runID := uuid.New()
	log = log.With().Str("run_id", runID.String()).Logger()

	if err := registerRun(ctx, pool, runID); err != nil {
		return nil, &PipelineError{Phase: "register", Err: err}
	}

	fail := func(phase string, err error) (*model.RefreshSummary, error) {
		msg := err.Error()
		_ = updateRunStatus(ctx, pool, runID, "failed", &msg)
		return nil, &PipelineError{Phase: phase, Err: err}
	}

	// Phase 1: snapshot
	log.Info().Msg("reading raw snapshot")
	if err := updateRunStatus(ctx, pool, runID, "reading", nil); err != nil {
		return nil, &PipelineError{Phase: "snapshot", Err: err}
	}
	snapStart := time.Now()
	snap, err := LoadSnapshot(ctx, pool, log)
	if err != nil {
		return fail("snapshot", err)
	}

	// Phase 2: compute
	if err := updateRunStatus(ctx, pool, runID, "computing", nil); err != nil {
		return nil, &PipelineError{Phase: "compute", Err: err}
	}
	sum := Compute(snap, cfg.Normalizer(), log)
	sum.RunID = runID.String()
	sum.DurationSnapshot = time.Since(snapStart) - sum.DurationCompute

	// Phase 3: write-back (skipped on dry runs)
	if cfg.DryRun {
		log.Info().Msg("dry run, derived tables untouched")
		if err := updateRunStatus(ctx, pool, runID, "dry_run", nil); err != nil {
			return nil, &PipelineError{Phase: "write", Err: err}
		}
		sum.DurationTotal = time.Since(totalStart)
		return sum, nil
	}

	if err := updateRunStatus(ctx, pool, runID, "writing", nil); err != nil {
		return nil, &PipelineError{Phase: "write", Err: err}
	}
	writeDur, err := WriteDerived(ctx, pool, log, snap)
	if err != nil {
		return fail("write", err)
	}
	sum.DurationWrite = writeDur

	if err := finishRun(ctx, pool, runID, sum); err != nil {
		return fail("finish", err)
	}

	sum.DurationTotal = time.Since(totalStart)
	log.Info().
		Int64("episodes", sum.Episodes).
		Int64("transactions", sum.Transactions).
		Str("total_duration", sum.DurationTotal.String()).
		Msg("refresh complete")

	return sum, nil
}
