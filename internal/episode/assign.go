package episode

import (
	"sort"
	"time"
)

// Index is a per-patient interval lookup over episode spans. Transactions
// outnumber episodes by orders of magnitude, so assignment is a binary
// search over each patient's sorted spans rather than a cross product.
type Index struct {
	byPatient map[string][]Span
}

// NewIndex builds an Index from Partition output. Spans for each patient
// must be in sequence order, which Partition guarantees.
func NewIndex(spans []Span) *Index {
	byPatient := make(map[string][]Span)
	for _, sp := range spans {
		byPatient[sp.PatientKey] = append(byPatient[sp.PatientKey], sp)
	}
	return &Index{byPatient: byPatient}
}

// Assign finds the unique span containing date for the given patient key:
// start <= date < end, with a nil end satisfying any date. Returns false
// when the patient has no episodes or the date precedes the first episode
// start; such records stay unattributed for manual review.
func (ix *Index) Assign(patientKey string, date time.Time) (Span, bool) {
	spans := ix.byPatient[patientKey]
	if len(spans) == 0 {
		return Span{}, false
	}

	// First span starting after date; the candidate is the one before it.
	// With duplicate start dates this lands on the last of the group, so
	// the preceding zero-length spans are skipped naturally.
	i := sort.Search(len(spans), func(i int) bool {
		return spans[i].Start.After(date)
	})
	if i == 0 {
		return Span{}, false
	}
	cand := spans[i-1]
	if cand.End != nil && !date.Before(*cand.End) {
		return Span{}, false
	}
	return cand, true
}

// Spans returns the patient's spans in sequence order, or nil.
func (ix *Index) Spans(patientKey string) []Span {
	return ix.byPatient[patientKey]
}
