// Package episode partitions a patient's referral timeline into ordered,
// non-overlapping episodes and assigns dated records to them via a
// half-open interval join.
package episode

import (
	"sort"
	"time"

	"github.com/clinicops/refclean/internal/model"
)

// Span is one episode interval: [Start, End), with a nil End meaning the
// open-ended last episode of the patient. Seq is 1-based within patient,
// ordered by start date.
type Span struct {
	PatientKey string
	Seq        int32
	Start      time.Time
	End        *time.Time
	Ref        *model.Referral
}

// ZeroLength reports whether the span can never receive an assignment
// under the half-open rule. Happens when two referrals share a start date.
func (s *Span) ZeroLength() bool {
	return s.End != nil && !s.Start.Before(*s.End)
}

// Partition groups referrals by patient key and produces each patient's
// ordered episode spans. Within a patient, referrals sort by start date
// ascending with input order as the tie-break, so same-date referrals get
// consecutive sequence numbers and degenerate zero-length spans rather
// than being merged. Each span's end is the next span's start; the last
// span is open-ended. Referrals must already carry their normalized
// PatientKey.
func Partition(referrals []*model.Referral) []Span {
	byPatient := make(map[string][]*model.Referral)
	var keys []string
	for _, r := range referrals {
		if _, ok := byPatient[r.PatientKey]; !ok {
			keys = append(keys, r.PatientKey)
		}
		byPatient[r.PatientKey] = append(byPatient[r.PatientKey], r)
	}
	sort.Strings(keys)

	spans := make([]Span, 0, len(referrals))
	for _, key := range keys {
		group := byPatient[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ReferralDate.Before(group[j].ReferralDate)
		})
		for i, r := range group {
			sp := Span{
				PatientKey: key,
				Seq:        int32(i + 1),
				Start:      r.ReferralDate,
				Ref:        r,
			}
			if i+1 < len(group) {
				next := group[i+1].ReferralDate
				sp.End = &next
			}
			spans = append(spans, sp)
		}
	}
	return spans
}
