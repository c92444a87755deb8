package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/clinicops/refclean/internal/crosswalk"
	"github.com/clinicops/refclean/internal/model"
	embedsql "github.com/clinicops/refclean/internal/sql"
)

// Snapshot is the full read of the raw tables a refresh run operates on.
// The pipeline is a pure function from one Snapshot to the derived tables;
// nothing is read from the database after this point.
type Snapshot struct {
	Referrals    []*model.Referral
	Transactions []*model.Transaction
	Denials      []*model.Denial
	Crosswalk    *crosswalk.Table
}

// LoadSnapshot bulk-reads referrals, transactions, denials, and the payer
// crosswalk.
func LoadSnapshot(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) (*Snapshot, error) {
	start := time.Now()
	snap := &Snapshot{}

	if err := loadReferrals(ctx, pool, snap); err != nil {
		return nil, fmt.Errorf("load referrals: %w", err)
	}
	if err := loadTransactions(ctx, pool, snap); err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if err := loadDenials(ctx, pool, snap); err != nil {
		return nil, fmt.Errorf("load denials: %w", err)
	}
	if err := loadCrosswalk(ctx, pool, snap); err != nil {
		return nil, fmt.Errorf("load crosswalk: %w", err)
	}

	log.Info().
		Int("referrals", len(snap.Referrals)).
		Int("transactions", len(snap.Transactions)).
		Int("denials", len(snap.Denials)).
		Int("crosswalk_entries", snap.Crosswalk.Len()).
		Dur("duration", time.Since(start)).
		Msg("snapshot loaded")

	return snap, nil
}

func loadReferrals(ctx context.Context, pool *pgxpool.Pool, snap *Snapshot) error {
	rows, err := pool.Query(ctx, embedsql.SelectReferrals)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		r := &model.Referral{}
		if err := rows.Scan(
			&r.ReferralID,
			&r.PatientID,
			&r.PatientName,
			&r.ReferralDate,
			&r.State,
			&r.DiseaseSite,
			&r.ReferringHospital,
			&r.ReferringPhysician,
			&r.AttendingPhysician,
			&r.TreatmentStatus,
			&r.FundingType,
			&r.InsuranceCategory,
			&r.PrimaryInsurance,
			&r.SecondaryInsurance,
		); err != nil {
			return err
		}
		snap.Referrals = append(snap.Referrals, r)
	}
	return rows.Err()
}

func loadTransactions(ctx context.Context, pool *pgxpool.Pool, snap *Snapshot) error {
	rows, err := pool.Query(ctx, embedsql.SelectTransactions)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		t := &model.Transaction{}
		if err := rows.Scan(
			&t.TxID,
			&t.PatientNumber,
			&t.PatientName,
			&t.FromDOS,
			&t.Voucher,
			&t.ProcedureCode,
			&t.DiagnosisCode,
			&t.InsuranceName,
			&t.Units,
			&t.ChargesCents,
			&t.ContractualAdjustmentCents,
			&t.RefundsCents,
			&t.PersonalPaymentsCents,
			&t.InsurancePaymentsCents,
			&t.IntlPaymentsCents,
			&t.CollectionAgencyPaymentsCents,
			&t.CharityCents,
			&t.BalanceTransferCents,
			&t.IntlAdjustmentCents,
			&t.BankruptcyCents,
			&t.DeemedUncollectibleCents,
			&t.CharityWriteOffCents,
			&t.IndigentCharityCents,
			&t.BundledNCCIEditCents,
			&t.ChargeErrorCents,
			&t.GlobalPeriodCents,
			&t.AppealsExhaustedCents,
			&t.ChargesNotReceivedTimelyCents,
			&t.DeceasedPatientCents,
			&t.FinancialHardshipCents,
			&t.MUEMaxUnitsCents,
			&t.NoAuthorizationCents,
			&t.NoncoveredServiceCents,
			&t.NoTransferAgreementCents,
			&t.OutOfNetworkCents,
			&t.PromptPayCents,
			&t.SmallBalanceCents,
			&t.CollectionAgencyAdjustmentCents,
			&t.CollectionAgencyFeeCents,
		); err != nil {
			return err
		}
		snap.Transactions = append(snap.Transactions, t)
	}
	return rows.Err()
}

func loadDenials(ctx context.Context, pool *pgxpool.Pool, snap *Snapshot) error {
	rows, err := pool.Query(ctx, embedsql.SelectDenials)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		d := &model.Denial{}
		if err := rows.Scan(&d.DenialID, &d.PatientAccount, &d.DenialDate); err != nil {
			return err
		}
		snap.Denials = append(snap.Denials, d)
	}
	return rows.Err()
}

func loadCrosswalk(ctx context.Context, pool *pgxpool.Pool, snap *Snapshot) error {
	rows, err := pool.Query(ctx, embedsql.SelectCrosswalk)
	if err != nil {
		return err
	}
	defer rows.Close()

	var entries []model.CrosswalkEntry
	for rows.Next() {
		var e model.CrosswalkEntry
		if err := rows.Scan(&e.ProductDetail, &e.Abbreviation, &e.Category, &e.RollUp); err != nil {
			return err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	snap.Crosswalk = crosswalk.New(entries)
	return nil
}
