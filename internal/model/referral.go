package model

import (
	"fmt"
	"time"
)

// TransMRNSeparator joins the patient key and episode sequence number into
// the composite link key consumed by downstream reporting.
const TransMRNSeparator = "-"

// Referral is one row of raw.referrals plus the episode fields derived by
// the refresh pipeline. The derived table is rebuilt in full on every run.
type Referral struct {
	ReferralID int64

	// Raw export fields
	PatientID          string
	PatientName        *string
	ReferralDate       time.Time
	State              *string
	DiseaseSite        *string
	ReferringHospital  *string
	ReferringPhysician *string
	AttendingPhysician *string
	TreatmentStatus    *string
	FundingType        *string
	InsuranceCategory  *string
	PrimaryInsurance   *string
	SecondaryInsurance *string

	// Derived episode fields
	PatientKey            string
	VisitNumber           int32
	EpisodeEnd            *time.Time // nil = open-ended last episode
	TransMRN              string
	ZeroLength            bool
	RemainingBalanceCents int64
	UpdatedPrimary        string
	UpdatedSecondary      *string
	InsuranceAbv          *string
	InsuranceCat          *string
	PayerRollUp           *string
}

// LinkKey builds the composite episode link key "patientKey-seq".
func LinkKey(patientKey string, seq int32) string {
	return fmt.Sprintf("%s%s%d", patientKey, TransMRNSeparator, seq)
}

// RawReferralColumns returns the raw.referrals column order used by COPY.
func RawReferralColumns() []string {
	return []string{
		"patient_id",
		"patient_name",
		"referral_date",
		"state",
		"disease_site",
		"referring_hospital",
		"referring_physician",
		"attending_physician",
		"treatment_status",
		"funding_type",
		"insurance_category",
		"primary_insurance",
		"secondary_insurance",
	}
}

// RawCopyValues returns the raw field values in RawReferralColumns order.
func (r *Referral) RawCopyValues() []any {
	return []any{
		r.PatientID,
		r.PatientName,
		r.ReferralDate,
		r.State,
		r.DiseaseSite,
		r.ReferringHospital,
		r.ReferringPhysician,
		r.AttendingPhysician,
		r.TreatmentStatus,
		r.FundingType,
		r.InsuranceCategory,
		r.PrimaryInsurance,
		r.SecondaryInsurance,
	}
}

// EpisodeColumns returns the derived.episodes column order used by COPY.
func EpisodeColumns() []string {
	return append(RawReferralColumns(),
		"patient_key",
		"visit_number",
		"episode_end",
		"trans_mrn",
		"zero_length",
		"remaining_balance_cents",
		"updated_primary",
		"updated_secondary",
		"insurance_abv",
		"insurance_cat",
		"payer_roll_up",
	)
}

// EpisodeCopyValues returns all values in EpisodeColumns order.
func (r *Referral) EpisodeCopyValues() []any {
	return append(r.RawCopyValues(),
		r.PatientKey,
		r.VisitNumber,
		r.EpisodeEnd,
		r.TransMRN,
		r.ZeroLength,
		r.RemainingBalanceCents,
		r.UpdatedPrimary,
		r.UpdatedSecondary,
		r.InsuranceAbv,
		r.InsuranceCat,
		r.PayerRollUp,
	)
}
