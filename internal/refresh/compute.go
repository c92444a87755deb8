package refresh

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicops/refclean/internal/aggregate"
	"github.com/clinicops/refclean/internal/episode"
	"github.com/clinicops/refclean/internal/model"
	"github.com/clinicops/refclean/internal/normalize"
)

// Compute runs the in-memory core of the pipeline against a snapshot:
// identifier normalization, episode partitioning, the interval join,
// ranked aggregation, and propagation of the results onto episodes,
// transactions, and denials. It mutates the snapshot's rows in place and
// returns the run's data-quality counters. No condition here aborts the
// run; incomplete matches surface as null fields and counters.
func Compute(snap *Snapshot, norm *normalize.PatientNormalizer, log zerolog.Logger) *model.RefreshSummary {
	start := time.Now()
	sum := &model.RefreshSummary{
		Referrals:    int64(len(snap.Referrals)),
		Transactions: int64(len(snap.Transactions)),
		Denials:      int64(len(snap.Denials)),
	}

	// Canonical patient keys across both source systems. The denial export
	// identifies patients by the billing account column, which runs through
	// the same normalizer.
	for _, r := range snap.Referrals {
		r.PatientKey = norm.Normalize(r.PatientID)
	}
	for _, t := range snap.Transactions {
		t.PatientKey = norm.Normalize(t.PatientNumber)
		normalize.ComputeBalances(t)
	}
	for _, d := range snap.Denials {
		d.PatientKey = norm.Normalize(d.PatientAccount)
	}

	// Partition each patient's timeline into episodes.
	spans := episode.Partition(snap.Referrals)
	sum.Episodes = int64(len(spans))
	for _, sp := range spans {
		sp.Ref.VisitNumber = sp.Seq
		sp.Ref.EpisodeEnd = sp.End
		sp.Ref.TransMRN = model.LinkKey(sp.PatientKey, sp.Seq)
		sp.Ref.ZeroLength = sp.ZeroLength()
		if sp.Ref.ZeroLength {
			sum.DegenerateEpisodes++
			log.Warn().
				Str("patient_key", sp.PatientKey).
				Int32("visit_number", sp.Seq).
				Time("referral_date", sp.Start).
				Msg("degenerate zero-length episode (same-date referrals)")
		}
	}

	// Interval join: every dated record lands in at most one episode.
	ix := episode.NewIndex(spans)
	assigned := make(map[string][]*model.Transaction)
	for _, t := range snap.Transactions {
		sp, ok := ix.Assign(t.PatientKey, t.FromDOS)
		if !ok {
			sum.UnattributedTransactions++
			continue
		}
		seq := sp.Seq
		link := model.LinkKey(sp.PatientKey, seq)
		t.VisitNumber = &seq
		t.TransMRN = &link
		assigned[link] = append(assigned[link], t)
	}
	for _, d := range snap.Denials {
		sp, ok := ix.Assign(d.PatientKey, d.DenialDate)
		if !ok {
			sum.UnattributedDenials++
			continue
		}
		seq := sp.Seq
		d.VisitNumber = &seq
	}

	// Ranked aggregation per episode, propagated back onto the episode and
	// its transactions.
	for _, sp := range spans {
		txs := assigned[sp.Ref.TransMRN]
		agg := aggregate.Rank(txs)

		sp.Ref.RemainingBalanceCents = agg.TotalBalanceCents
		sp.Ref.UpdatedPrimary = agg.Primary
		sp.Ref.UpdatedSecondary = agg.Secondary
		if agg.Primary == aggregate.SelfPay {
			sum.SelfPayEpisodes++
		}

		for _, t := range txs {
			p := agg.Primary
			t.PrimaryInsurance = &p
			t.SecondaryInsurance = agg.Secondary
		}
	}

	// Second pass: crosswalk enrichment. Misses leave the fields null and
	// are surfaced through the reconciliation counters only.
	for _, r := range snap.Referrals {
		name := r.UpdatedPrimary
		if name == aggregate.SelfPay && r.UpdatedSecondary != nil {
			// Self-pay episodes with an inferred secondary still get
			// categorized by the secondary insurer.
			name = *r.UpdatedSecondary
		}
		if name == aggregate.SelfPay {
			continue
		}
		e, ok := snap.Crosswalk.Lookup(name)
		if !ok {
			sum.CrosswalkMisses++
			continue
		}
		r.InsuranceAbv = optStr(e.Abbreviation)
		r.InsuranceCat = optStr(e.Category)
		r.PayerRollUp = optStr(e.RollUp)
	}
	for _, t := range snap.Transactions {
		if t.PrimaryInsurance == nil || *t.PrimaryInsurance == aggregate.SelfPay {
			continue
		}
		e, ok := snap.Crosswalk.Lookup(*t.PrimaryInsurance)
		if !ok {
			sum.CrosswalkMisses++
			continue
		}
		t.InsuranceCat = optStr(e.Category)
		t.PayerRollUp = optStr(e.RollUp)
	}

	sum.DurationCompute = time.Since(start)
	log.Info().
		Int64("episodes", sum.Episodes).
		Int64("unattributed_transactions", sum.UnattributedTransactions).
		Int64("unattributed_denials", sum.UnattributedDenials).
		Int64("degenerate_episodes", sum.DegenerateEpisodes).
		Int64("self_pay_episodes", sum.SelfPayEpisodes).
		Int64("crosswalk_misses", sum.CrosswalkMisses).
		Dur("duration", sum.DurationCompute).
		Msg("compute complete")

	return sum
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
