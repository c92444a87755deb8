// Package export writes the derived episode table to a Parquet file for
// downstream analytics tooling.
package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goparquet "github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"

	"github.com/clinicops/refclean/internal/normalize"
	embedsql "github.com/clinicops/refclean/internal/sql"
)

const writeBatchSize = 4096

// EpisodeRow is the Parquet schema for one derived episode. Dates are
// ISO-8601 strings and money is in whole dollars, matching what the
// analytics consumers expect.
type EpisodeRow struct {
	PatientID          string  `parquet:"patient_id"`
	PatientName        *string `parquet:"patient_name,optional"`
	ReferralDate       string  `parquet:"referral_date"`
	State              *string `parquet:"state,optional"`
	DiseaseSite        *string `parquet:"disease_site,optional"`
	ReferringHospital  *string `parquet:"referring_hospital,optional"`
	ReferringPhysician *string `parquet:"referring_physician,optional"`
	AttendingPhysician *string `parquet:"attending_physician,optional"`
	TreatmentStatus    *string `parquet:"treatment_status,optional"`
	FundingType        *string `parquet:"funding_type,optional"`
	InsuranceCategory  *string `parquet:"insurance_category,optional"`
	PrimaryInsurance   *string `parquet:"primary_insurance,optional"`
	SecondaryInsurance *string `parquet:"secondary_insurance,optional"`

	PatientKey       string  `parquet:"patient_key"`
	VisitNumber      int32   `parquet:"visit_number"`
	EpisodeEnd       *string `parquet:"episode_end,optional"`
	TransMRN         string  `parquet:"trans_mrn"`
	ZeroLength       bool    `parquet:"zero_length"`
	RemainingBalance float64 `parquet:"remaining_balance"`
	UpdatedPrimary   string  `parquet:"updated_primary"`
	UpdatedSecondary *string `parquet:"updated_secondary,optional"`
	InsuranceAbv     *string `parquet:"insurance_abv,optional"`
	InsuranceCat     *string `parquet:"insurance_cat,optional"`
	PayerRollUp      *string `parquet:"payer_roll_up,optional"`
}

// Result holds metrics from one export.
type Result struct {
	Rows     int64
	Duration time.Duration
}

// Episodes writes every row of derived.episodes to path in patient-key,
// visit-number order.
func Episodes(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, path string) (*Result, error) {
	start := time.Now()

	rows, err := pool.Query(ctx, embedsql.ExportEpisodes)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	writer := goparquet.NewGenericWriter[EpisodeRow](f)

	var total int64
	batch := make([]EpisodeRow, 0, writeBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := writer.Write(batch); err != nil {
			return fmt.Errorf("write parquet: %w", err)
		}
		total += int64(len(batch))
		batch = batch[:0]
		return nil
	}

	for rows.Next() {
		var (
			row          EpisodeRow
			referralDate time.Time
			episodeEnd   *time.Time
			balanceCents int64
		)
		err := rows.Scan(
			&row.PatientID, &row.PatientName, &referralDate, &row.State,
			&row.DiseaseSite, &row.ReferringHospital, &row.ReferringPhysician,
			&row.AttendingPhysician, &row.TreatmentStatus, &row.FundingType,
			&row.InsuranceCategory, &row.PrimaryInsurance, &row.SecondaryInsurance,
			&row.PatientKey, &row.VisitNumber, &episodeEnd, &row.TransMRN,
			&row.ZeroLength, &balanceCents, &row.UpdatedPrimary,
			&row.UpdatedSecondary, &row.InsuranceAbv, &row.InsuranceCat,
			&row.PayerRollUp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		row.ReferralDate = referralDate.Format("2006-01-02")
		if episodeEnd != nil {
			s := episodeEnd.Format("2006-01-02")
			row.EpisodeEnd = &s
		}
		row.RemainingBalance = normalize.CentsToDollars(balanceCents)

		batch = append(batch, row)
		if len(batch) == writeBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episodes: %w", err)
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close output: %w", err)
	}

	dur := time.Since(start)
	log.Info().
		Str("path", path).
		Int64("rows", total).
		Str("duration", dur.String()).
		Msg("export complete")

	return &Result{Rows: total, Duration: dur}, nil
}
