// Package csvload bulk-loads raw CSV exports into the raw tables via the
// COPY protocol. Files are identified by SHA-256 in ops.raw_loads so an
// already-loaded export is skipped unless forced.
package csvload

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/clinicops/refclean/internal/db"
	"github.com/clinicops/refclean/internal/model"
	"github.com/clinicops/refclean/internal/normalize"
	embedsql "github.com/clinicops/refclean/internal/sql"
)

const copyBatchSize = 1024

// Kind selects which raw table a file loads into.
type Kind string

const (
	KindReferrals    Kind = "referrals"
	KindTransactions Kind = "transactions"
	KindDenials      Kind = "denials"
	KindCrosswalk    Kind = "crosswalk"
)

// ParseKind validates a --kind flag value.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindReferrals, KindTransactions, KindDenials, KindCrosswalk:
		return Kind(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("unknown kind %q (want referrals, transactions, denials, or crosswalk)", s)
}

// Result holds metrics from one file load.
type Result struct {
	FileSHA256   string
	RowsRead     int64
	RowsLoaded   int64
	RowsRejected int64
	Skipped      bool
	Duration     time.Duration
}

type target struct {
	table   pgx.Identifier
	columns []string
	convert func(*rowReader, []string) ([]any, error)
}

func targetFor(kind Kind) target {
	switch kind {
	case KindReferrals:
		return target{
			table:   pgx.Identifier{"raw", "referrals"},
			columns: model.RawReferralColumns(),
			convert: convertReferral,
		}
	case KindTransactions:
		return target{
			table:   pgx.Identifier{"raw", "transactions"},
			columns: model.RawTransactionColumns(),
			convert: convertTransaction,
		}
	case KindDenials:
		return target{
			table:   pgx.Identifier{"raw", "denials"},
			columns: model.RawDenialColumns(),
			convert: convertDenial,
		}
	default:
		return target{
			table:   pgx.Identifier{"ref", "payer_crosswalk"},
			columns: model.CrosswalkColumns(),
			convert: convertCrosswalk,
		}
	}
}

// LoadFile streams a CSV export into its raw table. When truncate is set
// the target table is emptied first (the usual mode for full-snapshot
// exports). Rows missing their required identifier or date are rejected
// and counted, not fatal.
func LoadFile(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger, path string, kind Kind, truncate, force bool) (*Result, error) {
	start := time.Now()

	sha, err := normalize.FileHash(path)
	if err != nil {
		return nil, fmt.Errorf("hash file: %w", err)
	}

	if !force {
		var loadID, prevRows int64
		err := pool.QueryRow(ctx, embedsql.LookupRawLoad, sha).Scan(&loadID, &prevRows)
		if err == nil {
			log.Info().
				Str("file", filepath.Base(path)).
				Str("sha256", sha).
				Int64("rows_loaded", prevRows).
				Msg("file already loaded, skipping (use --force to reload)")
			return &Result{FileSHA256: sha, RowsLoaded: prevRows, Skipped: true}, nil
		}
		if err != pgx.ErrNoRows {
			return nil, fmt.Errorf("lookup raw load: %w", err)
		}
	}

	rr, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer rr.Close()

	tgt := targetFor(kind)
	if err := rr.requireHeader(tgt); err != nil {
		return nil, err
	}

	if truncate {
		if _, err := pool.Exec(ctx, "TRUNCATE "+tgt.table.Sanitize()); err != nil {
			return nil, fmt.Errorf("truncate %s: %w", tgt.table.Sanitize(), err)
		}
	}

	// Cancelled when COPY returns so a mid-send producer never blocks the
	// errCh wait below.
	copyCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan []any, copyBatchSize)
	errCh := make(chan error, 1)
	var rowsRead, rowsRejected int64

	// Producer: CSV record → COPY values.
	go func() {
		defer close(ch)
		for {
			rec, readErr := rr.reader.Read()
			if readErr == io.EOF {
				errCh <- nil
				return
			}
			if readErr != nil {
				errCh <- fmt.Errorf("read csv at row %d: %w", rowsRead+1, readErr)
				return
			}
			rowsRead++

			values, convErr := tgt.convert(rr, rec)
			if convErr != nil {
				rowsRejected++
				log.Warn().Err(convErr).Int64("row", rowsRead).Msg("row rejected")
				continue
			}
			select {
			case ch <- values:
			case <-copyCtx.Done():
				errCh <- copyCtx.Err()
				return
			}
		}
	}()

	source := db.NewChannelSource(ch, func(v []any) []any { return v })
	rowsLoaded, copyErr := pool.CopyFrom(copyCtx, tgt.table, tgt.columns, source)

	cancel()
	prodErr := <-errCh
	if copyErr != nil {
		return nil, fmt.Errorf("load copy: %w", copyErr)
	}
	if prodErr != nil && !errors.Is(prodErr, context.Canceled) {
		return nil, fmt.Errorf("load producer: %w", prodErr)
	}

	if _, err := pool.Exec(ctx, embedsql.RegisterRawLoad, filepath.Base(path), sha, string(kind), rowsLoaded); err != nil {
		return nil, fmt.Errorf("register raw load: %w", err)
	}

	dur := time.Since(start)
	log.Info().
		Str("file", filepath.Base(path)).
		Str("kind", string(kind)).
		Int64("rows_read", rowsRead).
		Int64("rows_loaded", rowsLoaded).
		Int64("rows_rejected", rowsRejected).
		Str("duration", dur.String()).
		Msg("load complete")

	return &Result{
		FileSHA256:   sha,
		RowsRead:     rowsRead,
		RowsLoaded:   rowsLoaded,
		RowsRejected: rowsRejected,
		Duration:     dur,
	}, nil
}

// rowReader wraps a csv.Reader with a header index keyed by the collapsed
// column name (lowercased, spaces and hyphens removed), since the exports
// are inconsistent about spacing.
type rowReader struct {
	file   *os.File
	reader *csv.Reader
	colIdx map[string]int
}

func openCSV(path string) (*rowReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}

	buf := bufio.NewReaderSize(f, 256*1024)

	// Skip UTF-8 BOM if present.
	if bom, err := buf.Peek(3); err == nil && len(bom) == 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	r := csv.NewReader(buf)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		colIdx[collapseHeader(h)] = i
	}
	return &rowReader{file: f, reader: r, colIdx: colIdx}, nil
}

func (rr *rowReader) Close() error {
	return rr.file.Close()
}

func collapseHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "-", "")
	h = strings.ReplaceAll(h, "_", "")
	return h
}

// requireHeader checks the columns each kind cannot load without.
func (rr *rowReader) requireHeader(tgt target) error {
	var required []string
	switch tgt.table[1] {
	case "referrals":
		required = []string{"patientid", "referraldate"}
	case "transactions":
		required = []string{"patientnumber", "fromdos"}
	case "denials":
		required = []string{"patientaccount", "denialdate"}
	default:
		required = []string{"productdetail"}
	}
	for _, name := range required {
		if _, ok := rr.colIdx[name]; !ok {
			return fmt.Errorf("csv missing required column %q", name)
		}
	}
	return nil
}

// str returns the trimmed cell for the collapsed column name, or "".
func (rr *rowReader) str(rec []string, name string) string {
	i, ok := rr.colIdx[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// optStr returns nil for blank cells.
func (rr *rowReader) optStr(rec []string, name string) *string {
	s := rr.str(rec, name)
	if s == "" {
		return nil
	}
	return &s
}

// cents parses a currency cell; blank or malformed is 0.
func (rr *rowReader) cents(rec []string, name string) int64 {
	return normalize.ParseCents(rr.str(rec, name))
}

// float parses a numeric cell; blank or malformed is 0.
func (rr *rowReader) float(rec []string, name string) float64 {
	v, err := strconv.ParseFloat(rr.str(rec, name), 64)
	if err != nil {
		return 0
	}
	return v
}

// date parses a required date cell.
func (rr *rowReader) date(rec []string, name string) (time.Time, error) {
	s := rr.str(rec, name)
	t := normalize.ParseDate(s)
	if t == nil {
		return time.Time{}, fmt.Errorf("unparseable %s %q", name, s)
	}
	return *t, nil
}

func convertReferral(rr *rowReader, rec []string) ([]any, error) {
	id := rr.str(rec, "patientid")
	if id == "" {
		return nil, fmt.Errorf("blank patient id")
	}
	date, err := rr.date(rec, "referraldate")
	if err != nil {
		return nil, err
	}
	r := &model.Referral{
		PatientID:          id,
		PatientName:        rr.optStr(rec, "patientname"),
		ReferralDate:       date,
		State:              rr.optStr(rec, "state"),
		DiseaseSite:        rr.optStr(rec, "diseasesite"),
		ReferringHospital:  rr.optStr(rec, "referringhospital"),
		ReferringPhysician: rr.optStr(rec, "referringphysician"),
		AttendingPhysician: rr.optStr(rec, "attendingphysician"),
		TreatmentStatus:    rr.optStr(rec, "treatmentstatus"),
		FundingType:        rr.optStr(rec, "fundingtype"),
		InsuranceCategory:  rr.optStr(rec, "insurancecategory"),
		PrimaryInsurance:   rr.optStr(rec, "primaryinsurance"),
		SecondaryInsurance: rr.optStr(rec, "secondaryinsurance"),
	}
	return r.RawCopyValues(), nil
}

func convertTransaction(rr *rowReader, rec []string) ([]any, error) {
	num := rr.str(rec, "patientnumber")
	if num == "" {
		return nil, fmt.Errorf("blank patient number")
	}
	dos, err := rr.date(rec, "fromdos")
	if err != nil {
		return nil, err
	}
	t := &model.Transaction{
		PatientNumber: num,
		PatientName:   rr.optStr(rec, "patientfullname"),
		FromDOS:       dos,
		Voucher:       rr.optStr(rec, "voucher"),
		ProcedureCode: rr.optStr(rec, "procedurecode"),
		DiagnosisCode: rr.optStr(rec, "diagnosiscode"),
		InsuranceName: rr.str(rec, "insurancename"),
		Units:         rr.float(rec, "units"),

		ChargesCents:               rr.cents(rec, "charges"),
		ContractualAdjustmentCents: rr.cents(rec, "contractualadjustment"),
		RefundsCents:               rr.cents(rec, "refunds"),

		PersonalPaymentsCents:         rr.cents(rec, "personalpayments"),
		InsurancePaymentsCents:        rr.cents(rec, "insurancepayments"),
		IntlPaymentsCents:             rr.cents(rec, "intlpayments"),
		CollectionAgencyPaymentsCents: rr.cents(rec, "collectionagencypayments"),

		CharityCents:                    rr.cents(rec, "charity"),
		BalanceTransferCents:            rr.cents(rec, "balancetransfer"),
		IntlAdjustmentCents:             rr.cents(rec, "intladjustment"),
		BankruptcyCents:                 rr.cents(rec, "bankruptcy"),
		DeemedUncollectibleCents:        rr.cents(rec, "deemeduncollectible"),
		CharityWriteOffCents:            rr.cents(rec, "charitywriteoff"),
		IndigentCharityCents:            rr.cents(rec, "indigentcharity"),
		BundledNCCIEditCents:            rr.cents(rec, "bundledncciedit"),
		ChargeErrorCents:                rr.cents(rec, "chargeerror"),
		GlobalPeriodCents:               rr.cents(rec, "globalperiodnotbillable"),
		AppealsExhaustedCents:           rr.cents(rec, "appealsexhausted"),
		ChargesNotReceivedTimelyCents:   rr.cents(rec, "chargesnotreceivedtimely"),
		DeceasedPatientCents:            rr.cents(rec, "deceasedpatient"),
		FinancialHardshipCents:          rr.cents(rec, "financialhardship"),
		MUEMaxUnitsCents:                rr.cents(rec, "muemaxunitsexceeded"),
		NoAuthorizationCents:            rr.cents(rec, "noauthorizationobtained"),
		NoncoveredServiceCents:          rr.cents(rec, "noncoveredservice"),
		NoTransferAgreementCents:        rr.cents(rec, "notransferagreement"),
		OutOfNetworkCents:               rr.cents(rec, "outofnetwork"),
		PromptPayCents:                  rr.cents(rec, "promptpayadjustment"),
		SmallBalanceCents:               rr.cents(rec, "smallbalanceadjustment"),
		CollectionAgencyAdjustmentCents: rr.cents(rec, "collectionagencyadjustment"),
		CollectionAgencyFeeCents:        rr.cents(rec, "collectionagencyfee"),
	}
	return t.RawCopyValues(), nil
}

func convertDenial(rr *rowReader, rec []string) ([]any, error) {
	acct := rr.str(rec, "patientaccount")
	if acct == "" {
		return nil, fmt.Errorf("blank patient account")
	}
	date, err := rr.date(rec, "denialdate")
	if err != nil {
		return nil, err
	}
	d := &model.Denial{PatientAccount: acct, DenialDate: date}
	return d.RawCopyValues(), nil
}

func convertCrosswalk(rr *rowReader, rec []string) ([]any, error) {
	detail := rr.str(rec, "productdetail")
	if detail == "" {
		return nil, fmt.Errorf("blank product detail")
	}
	e := &model.CrosswalkEntry{
		ProductDetail: detail,
		Abbreviation:  rr.str(rec, "insuranceabv"),
		Category:      rr.str(rec, "category"),
		RollUp:        rr.str(rec, "payerrollup"),
	}
	return e.RawCopyValues(), nil
}
