package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/clinicops/refclean/internal/db"
	"github.com/clinicops/refclean/internal/model"
	embedsql "github.com/clinicops/refclean/internal/sql"
)

// WriteDerived rebuilds the derived tables from the computed snapshot:
// TRUNCATE then COPY, so a rerun over unchanged input produces identical
// tables. Runs ANALYZE afterwards so the reporting queries see fresh
// statistics.
func WriteDerived(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, snap *Snapshot) (time.Duration, error) {
	start := time.Now()

	if _, err := pool.Exec(ctx, embedsql.TruncateDerived); err != nil {
		return 0, fmt.Errorf("truncate derived: %w", err)
	}

	n, err := db.CopyAll(ctx, pool,
		pgx.Identifier{"derived", "episodes"},
		model.EpisodeColumns(),
		snap.Referrals,
		(*model.Referral).EpisodeCopyValues,
	)
	if err != nil {
		return 0, fmt.Errorf("copy episodes: %w", err)
	}
	log.Info().Int64("rows", n).Msg("episodes written")

	n, err = db.CopyAll(ctx, pool,
		pgx.Identifier{"derived", "transactions"},
		model.DerivedTransactionColumns(),
		snap.Transactions,
		(*model.Transaction).DerivedCopyValues,
	)
	if err != nil {
		return 0, fmt.Errorf("copy transactions: %w", err)
	}
	log.Info().Int64("rows", n).Msg("transactions written")

	n, err = db.CopyAll(ctx, pool,
		pgx.Identifier{"derived", "denials"},
		model.DerivedDenialColumns(),
		snap.Denials,
		(*model.Denial).DerivedCopyValues,
	)
	if err != nil {
		return 0, fmt.Errorf("copy denials: %w", err)
	}
	log.Info().Int64("rows", n).Msg("denials written")

	if _, err := pool.Exec(ctx, embedsql.AnalyzeDerived); err != nil {
		return 0, fmt.Errorf("analyze derived: %w", err)
	}

	dur := time.Since(start)
	log.Info().Dur("duration", dur).Msg("derived tables rebuilt")
	return dur, nil
}
