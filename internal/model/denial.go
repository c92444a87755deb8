package model

import "time"

// Denial is one insurance-denial event. The denial export identifies the
// patient by the billing account column rather than the referral-system
// identifier, so attribution joins through the normalized PatientKey.
type Denial struct {
	DenialID       int64
	PatientAccount string
	DenialDate     time.Time

	// Derived
	PatientKey  string
	VisitNumber *int32
}

// RawDenialColumns returns the raw.denials column order used by COPY.
func RawDenialColumns() []string {
	return []string{"patient_account", "denial_date"}
}

// RawCopyValues returns the raw field values in RawDenialColumns order.
func (d *Denial) RawCopyValues() []any {
	return []any{d.PatientAccount, d.DenialDate}
}

// DerivedDenialColumns returns the derived.denials column order.
func DerivedDenialColumns() []string {
	return []string{"patient_account", "denial_date", "patient_key", "visit_number"}
}

// DerivedCopyValues returns all values in DerivedDenialColumns order.
func (d *Denial) DerivedCopyValues() []any {
	return []any{d.PatientAccount, d.DenialDate, d.PatientKey, d.VisitNumber}
}
