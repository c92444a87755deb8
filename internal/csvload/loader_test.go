package csvload

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "export.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"referrals", "Transactions", "DENIALS", "crosswalk"} {
		if _, err := ParseKind(s); err != nil {
			t.Errorf("ParseKind(%q): %v", s, err)
		}
	}
	if _, err := ParseKind("payments"); err == nil {
		t.Error("ParseKind(payments): expected error")
	}
}

func TestCollapseHeader(t *testing.T) {
	cases := map[string]string{
		"Patient ID":      "patientid",
		"  Referral Date": "referraldate",
		"Payer Roll-Up":   "payerrollup",
		"patient_number":  "patientnumber",
	}
	for in, want := range cases {
		if got := collapseHeader(in); got != want {
			t.Errorf("collapseHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenCSV_SkipsBOM(t *testing.T) {
	path := writeCSV(t, "\xEF\xBB\xBFPatient ID,Referral Date\n12345,2023-01-01\n")
	rr, err := openCSV(path)
	if err != nil {
		t.Fatalf("openCSV: %v", err)
	}
	defer rr.Close()

	if _, ok := rr.colIdx["patientid"]; !ok {
		t.Errorf("BOM not stripped from first header: %v", rr.colIdx)
	}
}

func TestConvertReferral(t *testing.T) {
	path := writeCSV(t, "Patient ID,Patient Name,Referral Date,Primary Insurance\n"+
		"8612345,DOE JOHN,01/15/2023,Blue Cross\n"+
		",MISSING ID,01/15/2023,\n"+
		"99,BAD DATE,not-a-date,\n")
	rr, err := openCSV(path)
	if err != nil {
		t.Fatalf("openCSV: %v", err)
	}
	defer rr.Close()
	if err := rr.requireHeader(targetFor(KindReferrals)); err != nil {
		t.Fatalf("requireHeader: %v", err)
	}

	rec, _ := rr.reader.Read()
	values, err := convertReferral(rr, rec)
	if err != nil {
		t.Fatalf("convertReferral: %v", err)
	}
	// Raw identifier is preserved as-is; normalization happens at refresh.
	if values[0] != "8612345" {
		t.Errorf("patient id = %v, want 8612345", values[0])
	}
	if got := values[2].(time.Time); got.Year() != 2023 || got.Month() != 1 || got.Day() != 15 {
		t.Errorf("referral date = %v, want 2023-01-15", got)
	}

	rec, _ = rr.reader.Read()
	if _, err := convertReferral(rr, rec); err == nil {
		t.Error("blank patient id accepted")
	}

	rec, _ = rr.reader.Read()
	if _, err := convertReferral(rr, rec); err == nil {
		t.Error("unparseable date accepted")
	}
}

func TestConvertTransaction_MoneyParsing(t *testing.T) {
	path := writeCSV(t, "PatientNumber,FromDOS,InsuranceName,Units,Charges,ContractualAdjustment,Refunds\n"+
		"8612345,2023-02-01,Aetna,2.5,\"$1,234.56\",(34.56),\n")
	rr, err := openCSV(path)
	if err != nil {
		t.Fatalf("openCSV: %v", err)
	}
	defer rr.Close()

	rec, _ := rr.reader.Read()
	values, err := convertTransaction(rr, rec)
	if err != nil {
		t.Fatalf("convertTransaction: %v", err)
	}

	cols := targetFor(KindTransactions).columns
	if len(values) != len(cols) {
		t.Fatalf("got %d values for %d columns", len(values), len(cols))
	}
	byCol := make(map[string]any, len(cols))
	for i, c := range cols {
		byCol[c] = values[i]
	}

	if byCol["units"] != 2.5 {
		t.Errorf("units = %v, want 2.5", byCol["units"])
	}
	if byCol["charges_cents"] != int64(123456) {
		t.Errorf("charges = %v, want 123456", byCol["charges_cents"])
	}
	if byCol["contractual_adjustment_cents"] != int64(-3456) {
		t.Errorf("contractual adjustment = %v, want -3456", byCol["contractual_adjustment_cents"])
	}
	// Missing cell parses as zero, never fails the row.
	if byCol["refunds_cents"] != int64(0) {
		t.Errorf("refunds = %v, want 0", byCol["refunds_cents"])
	}
}

func TestConvertCrosswalk(t *testing.T) {
	path := writeCSV(t, "Product Detail,InsuranceAbv,Category,Payer Roll-Up\n"+
		"Blue Cross PPO,BCBS,Commercial,BCBS\n")
	rr, err := openCSV(path)
	if err != nil {
		t.Fatalf("openCSV: %v", err)
	}
	defer rr.Close()

	rec, _ := rr.reader.Read()
	values, err := convertCrosswalk(rr, rec)
	if err != nil {
		t.Fatalf("convertCrosswalk: %v", err)
	}
	if values[0] != "Blue Cross PPO" || values[1] != "BCBS" {
		t.Errorf("unexpected crosswalk values: %v", values)
	}
}

func TestRequireHeader_MissingColumn(t *testing.T) {
	path := writeCSV(t, "Patient Name,State\nDOE JOHN,NY\n")
	rr, err := openCSV(path)
	if err != nil {
		t.Fatalf("openCSV: %v", err)
	}
	defer rr.Close()

	if err := rr.requireHeader(targetFor(KindReferrals)); err == nil {
		t.Error("expected error for csv missing patient id column")
	}
}
