package refresh

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicops/refclean/internal/aggregate"
	"github.com/clinicops/refclean/internal/crosswalk"
	"github.com/clinicops/refclean/internal/model"
	"github.com/clinicops/refclean/internal/normalize"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testReferral(id, date string) *model.Referral {
	return &model.Referral{PatientID: id, ReferralDate: day(date)}
}

func testTx(patient, dos, insurer string, units float64, chargeCents int64) *model.Transaction {
	return &model.Transaction{
		PatientNumber: patient,
		FromDOS:       day(dos),
		InsuranceName: insurer,
		Units:         units,
		ChargesCents:  chargeCents,
	}
}

// Two referrals, three transactions, per the canonical worked example: the
// first episode collects the two InsurerA transactions, the second the
// InsurerB one dated after the boundary.
func TestCompute_EndToEnd(t *testing.T) {
	snap := &Snapshot{
		Referrals: []*model.Referral{
			testReferral("P1", "2023-01-01"),
			testReferral("P1", "2023-03-01"),
		},
		Transactions: []*model.Transaction{
			testTx("P1", "2023-01-10", "InsurerA", 1, 10000),
			testTx("P1", "2023-02-01", "InsurerA", 1, 5000),
			testTx("P1", "2023-03-15", "InsurerB", 1, 2000),
		},
		Denials: []*model.Denial{
			{PatientAccount: "P1", DenialDate: day("2023-03-20")},
		},
		Crosswalk: crosswalk.New([]model.CrosswalkEntry{
			{ProductDetail: "InsurerA", Abbreviation: "IA", Category: "Commercial", RollUp: "GroupA"},
		}),
	}

	sum := Compute(snap, normalize.Default, zerolog.Nop())

	if sum.Episodes != 2 {
		t.Fatalf("episodes = %d, want 2", sum.Episodes)
	}
	if sum.UnattributedTransactions != 0 {
		t.Errorf("unattributed transactions = %d, want 0", sum.UnattributedTransactions)
	}

	ep1, ep2 := snap.Referrals[0], snap.Referrals[1]

	if ep1.VisitNumber != 1 || ep2.VisitNumber != 2 {
		t.Fatalf("visit numbers = %d, %d, want 1, 2", ep1.VisitNumber, ep2.VisitNumber)
	}
	if ep1.TransMRN != "P1-1" || ep2.TransMRN != "P1-2" {
		t.Errorf("trans mrns = %q, %q, want P1-1, P1-2", ep1.TransMRN, ep2.TransMRN)
	}
	if ep1.EpisodeEnd == nil || !ep1.EpisodeEnd.Equal(day("2023-03-01")) {
		t.Errorf("episode 1 end = %v, want 2023-03-01", ep1.EpisodeEnd)
	}
	if ep2.EpisodeEnd != nil {
		t.Errorf("episode 2 end = %v, want open", *ep2.EpisodeEnd)
	}

	// Balances: no payments or adjustments, so remaining == charges.
	if ep1.RemainingBalanceCents != 15000 {
		t.Errorf("episode 1 balance = %d, want 15000", ep1.RemainingBalanceCents)
	}
	if ep2.RemainingBalanceCents != 2000 {
		t.Errorf("episode 2 balance = %d, want 2000", ep2.RemainingBalanceCents)
	}

	if ep1.UpdatedPrimary != "InsurerA" || ep1.UpdatedSecondary != nil {
		t.Errorf("episode 1 insurers = %q, %v, want InsurerA, nil", ep1.UpdatedPrimary, ep1.UpdatedSecondary)
	}
	if ep2.UpdatedPrimary != "InsurerB" || ep2.UpdatedSecondary != nil {
		t.Errorf("episode 2 insurers = %q, %v, want InsurerB, nil", ep2.UpdatedPrimary, ep2.UpdatedSecondary)
	}

	// Crosswalk enrichment: InsurerA resolves, InsurerB misses.
	if ep1.InsuranceAbv == nil || *ep1.InsuranceAbv != "IA" {
		t.Errorf("episode 1 abbreviation = %v, want IA", ep1.InsuranceAbv)
	}
	if ep2.InsuranceAbv != nil {
		t.Errorf("episode 2 abbreviation = %v, want nil", *ep2.InsuranceAbv)
	}
	// One miss for the episode, one for its transaction.
	if sum.CrosswalkMisses != 2 {
		t.Errorf("crosswalk misses = %d, want 2", sum.CrosswalkMisses)
	}

	// Propagation onto transactions.
	tx1 := snap.Transactions[0]
	if tx1.TransMRN == nil || *tx1.TransMRN != "P1-1" {
		t.Errorf("tx1 trans mrn = %v, want P1-1", tx1.TransMRN)
	}
	if tx1.PrimaryInsurance == nil || *tx1.PrimaryInsurance != "InsurerA" {
		t.Errorf("tx1 primary = %v, want InsurerA", tx1.PrimaryInsurance)
	}
	if tx1.PayerRollUp == nil || *tx1.PayerRollUp != "GroupA" {
		t.Errorf("tx1 roll-up = %v, want GroupA", tx1.PayerRollUp)
	}
	tx3 := snap.Transactions[2]
	if tx3.VisitNumber == nil || *tx3.VisitNumber != 2 {
		t.Errorf("tx3 visit = %v, want 2", tx3.VisitNumber)
	}

	// Denial attribution.
	d := snap.Denials[0]
	if d.PatientKey != "P1" || d.VisitNumber == nil || *d.VisitNumber != 2 {
		t.Errorf("denial = key %q visit %v, want P1 visit 2", d.PatientKey, d.VisitNumber)
	}
	if sum.UnattributedDenials != 0 {
		t.Errorf("unattributed denials = %d, want 0", sum.UnattributedDenials)
	}
}

// The billing export identifies the patient with the prefixed form; both
// systems must converge on one key for the join to land.
func TestCompute_CrossSystemIdentifiers(t *testing.T) {
	snap := &Snapshot{
		Referrals:    []*model.Referral{testReferral("12345", "2023-01-01")},
		Transactions: []*model.Transaction{testTx("8612345", "2023-02-01", "InsurerA", 1, 1000)},
		Crosswalk:    crosswalk.New(nil),
	}
	sum := Compute(snap, normalize.Default, zerolog.Nop())

	if sum.UnattributedTransactions != 0 {
		t.Fatalf("unattributed transactions = %d, want 0", sum.UnattributedTransactions)
	}
	if snap.Referrals[0].RemainingBalanceCents != 1000 {
		t.Errorf("balance = %d, want 1000", snap.Referrals[0].RemainingBalanceCents)
	}
}

func TestCompute_SelfPayAndUnattributed(t *testing.T) {
	snap := &Snapshot{
		Referrals: []*model.Referral{testReferral("P1", "2023-01-01")},
		Transactions: []*model.Transaction{
			// Before the first episode: stays unattributed.
			testTx("P1", "2022-06-01", "InsurerA", 1, 4000),
			// Unknown patient.
			testTx("P9", "2023-06-01", "InsurerA", 1, 3000),
		},
		Denials: []*model.Denial{
			{PatientAccount: "P9", DenialDate: day("2023-06-01")},
		},
		Crosswalk: crosswalk.New(nil),
	}
	sum := Compute(snap, normalize.Default, zerolog.Nop())

	if sum.UnattributedTransactions != 2 {
		t.Errorf("unattributed transactions = %d, want 2", sum.UnattributedTransactions)
	}
	if sum.UnattributedDenials != 1 {
		t.Errorf("unattributed denials = %d, want 1", sum.UnattributedDenials)
	}

	ep := snap.Referrals[0]
	if ep.UpdatedPrimary != aggregate.SelfPay {
		t.Errorf("primary = %q, want %q", ep.UpdatedPrimary, aggregate.SelfPay)
	}
	if ep.RemainingBalanceCents != 0 {
		t.Errorf("balance = %d, want 0", ep.RemainingBalanceCents)
	}
	if sum.SelfPayEpisodes != 1 {
		t.Errorf("self-pay episodes = %d, want 1", sum.SelfPayEpisodes)
	}
	// Self-pay with no secondary: crosswalk pass skips it entirely.
	if sum.CrosswalkMisses != 0 {
		t.Errorf("crosswalk misses = %d, want 0", sum.CrosswalkMisses)
	}
}

func TestCompute_DegenerateEpisode(t *testing.T) {
	snap := &Snapshot{
		Referrals: []*model.Referral{
			testReferral("P1", "2023-01-01"),
			testReferral("P1", "2023-01-01"),
		},
		Crosswalk: crosswalk.New(nil),
	}
	sum := Compute(snap, normalize.Default, zerolog.Nop())

	if sum.DegenerateEpisodes != 1 {
		t.Errorf("degenerate episodes = %d, want 1", sum.DegenerateEpisodes)
	}
	if !snap.Referrals[0].ZeroLength || snap.Referrals[1].ZeroLength {
		t.Errorf("zero-length flags = %v, %v, want true, false",
			snap.Referrals[0].ZeroLength, snap.Referrals[1].ZeroLength)
	}
}

// Running compute twice over the same already-derived rows must produce
// identical derived fields.
func TestCompute_Idempotent(t *testing.T) {
	build := func() *Snapshot {
		return &Snapshot{
			Referrals: []*model.Referral{
				testReferral("86-12345", "2023-01-01"),
				testReferral("8612345", "2023-03-01"),
			},
			Transactions: []*model.Transaction{
				testTx("12345", "2023-01-10", "InsurerA", 2, 7500),
			},
			Crosswalk: crosswalk.New(nil),
		}
	}

	once := build()
	Compute(once, normalize.Default, zerolog.Nop())

	twice := build()
	Compute(twice, normalize.Default, zerolog.Nop())
	Compute(twice, normalize.Default, zerolog.Nop())

	for i := range once.Referrals {
		a, b := once.Referrals[i], twice.Referrals[i]
		if a.PatientKey != b.PatientKey || a.VisitNumber != b.VisitNumber ||
			a.TransMRN != b.TransMRN || a.RemainingBalanceCents != b.RemainingBalanceCents ||
			a.UpdatedPrimary != b.UpdatedPrimary {
			t.Errorf("referral %d diverged after recompute: %+v vs %+v", i, a, b)
		}
	}
}
