package refresh

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicops/refclean/internal/model"
	embedsql "github.com/clinicops/refclean/internal/sql"
)

// registerRun inserts the ops.refresh_runs row for this run.
func registerRun(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID) error {
	_, err := pool.Exec(ctx, embedsql.RegisterRefreshRun, runID)
	return err
}

// updateRunStatus records a phase transition. errMsg is nil except on
// failure.
func updateRunStatus(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID, status string, errMsg *string) error {
	_, err := pool.Exec(ctx, embedsql.UpdateRefreshStatus, runID, status, errMsg)
	return err
}

// finishRun marks the run complete and stores its counters.
func finishRun(ctx context.Context, pool *pgxpool.Pool, runID uuid.UUID, sum *model.RefreshSummary) error {
	_, err := pool.Exec(ctx, embedsql.FinishRefreshRun,
		runID,
		sum.Referrals,
		sum.Transactions,
		sum.Denials,
		sum.Episodes,
		sum.UnattributedTransactions,
		sum.UnattributedDenials,
		sum.DegenerateEpisodes,
		sum.SelfPayEpisodes,
		sum.CrosswalkMisses,
	)
	return err
}
