package model

import "time"

// Transaction is one billed line-item from the billing-system export plus
// the computed balance fields and the episode attribution added by the
// refresh pipeline. Money is int64 cents throughout; missing amounts load
// as 0 so the balance arithmetic never sees nulls.
type Transaction struct {
	TxID int64

	// Raw export fields
	PatientNumber string
	PatientName   *string
	FromDOS       time.Time
	Voucher       *string
	ProcedureCode *string
	DiagnosisCode *string
	InsuranceName string
	Units         float64

	ChargesCents               int64
	ContractualAdjustmentCents int64
	RefundsCents               int64

	// Payment categories
	PersonalPaymentsCents         int64
	InsurancePaymentsCents        int64
	IntlPaymentsCents             int64
	CollectionAgencyPaymentsCents int64

	// Named adjustment / write-off categories
	CharityCents                    int64
	BalanceTransferCents            int64
	IntlAdjustmentCents             int64
	BankruptcyCents                 int64
	DeemedUncollectibleCents        int64
	CharityWriteOffCents            int64
	IndigentCharityCents            int64
	BundledNCCIEditCents            int64
	ChargeErrorCents                int64
	GlobalPeriodCents               int64
	AppealsExhaustedCents           int64
	ChargesNotReceivedTimelyCents   int64
	DeceasedPatientCents            int64
	FinancialHardshipCents          int64
	MUEMaxUnitsCents                int64
	NoAuthorizationCents            int64
	NoncoveredServiceCents          int64
	NoTransferAgreementCents        int64
	OutOfNetworkCents               int64
	PromptPayCents                  int64
	SmallBalanceCents               int64
	CollectionAgencyAdjustmentCents int64
	CollectionAgencyFeeCents        int64

	// Computed balance fields
	AllowedCents          int64
	TotalPaymentsCents    int64
	TotalAdjustmentsCents int64
	RemainingBalanceCents int64

	// Derived attribution fields; nil when the service date precedes the
	// patient's first episode or the patient has no episodes at all.
	PatientKey         string
	VisitNumber        *int32
	TransMRN           *string
	PrimaryInsurance   *string
	SecondaryInsurance *string
	InsuranceCat       *string
	PayerRollUp        *string
}

// PaymentTotalCents sums all payment category columns.
func (t *Transaction) PaymentTotalCents() int64 {
	return t.PersonalPaymentsCents +
		t.InsurancePaymentsCents +
		t.IntlPaymentsCents +
		t.CollectionAgencyPaymentsCents
}

// AdjustmentTotalCents sums the named adjustment categories.
func (t *Transaction) AdjustmentTotalCents() int64 {
	return t.CharityCents +
		t.BalanceTransferCents +
		t.IntlAdjustmentCents +
		t.BankruptcyCents +
		t.DeemedUncollectibleCents +
		t.CharityWriteOffCents +
		t.IndigentCharityCents +
		t.BundledNCCIEditCents +
		t.ChargeErrorCents +
		t.GlobalPeriodCents +
		t.AppealsExhaustedCents +
		t.ChargesNotReceivedTimelyCents +
		t.DeceasedPatientCents +
		t.FinancialHardshipCents +
		t.MUEMaxUnitsCents +
		t.NoAuthorizationCents +
		t.NoncoveredServiceCents +
		t.NoTransferAgreementCents +
		t.OutOfNetworkCents +
		t.PromptPayCents +
		t.SmallBalanceCents +
		t.CollectionAgencyAdjustmentCents +
		t.CollectionAgencyFeeCents
}

// RawTransactionColumns returns the raw.transactions column order used by COPY.
func RawTransactionColumns() []string {
	return []string{
		"patient_number",
		"patient_name",
		"from_dos",
		"voucher",
		"procedure_code",
		"diagnosis_code",
		"insurance_name",
		"units",
		"charges_cents",
		"contractual_adjustment_cents",
		"refunds_cents",
		"personal_payments_cents",
		"insurance_payments_cents",
		"intl_payments_cents",
		"collection_agency_payments_cents",
		"charity_cents",
		"balance_transfer_cents",
		"intl_adjustment_cents",
		"bankruptcy_cents",
		"deemed_uncollectible_cents",
		"charity_write_off_cents",
		"indigent_charity_cents",
		"bundled_ncci_edit_cents",
		"charge_error_cents",
		"global_period_cents",
		"appeals_exhausted_cents",
		"charges_not_received_timely_cents",
		"deceased_patient_cents",
		"financial_hardship_cents",
		"mue_max_units_cents",
		"no_authorization_cents",
		"noncovered_service_cents",
		"no_transfer_agreement_cents",
		"out_of_network_cents",
		"prompt_pay_cents",
		"small_balance_cents",
		"collection_agency_adjustment_cents",
		"collection_agency_fee_cents",
	}
}

// RawCopyValues returns the raw field values in RawTransactionColumns order.
func (t *Transaction) RawCopyValues() []any {
	return []any{
		t.PatientNumber,
		t.PatientName,
		t.FromDOS,
		t.Voucher,
		t.ProcedureCode,
		t.DiagnosisCode,
		t.InsuranceName,
		t.Units,
		t.ChargesCents,
		t.ContractualAdjustmentCents,
		t.RefundsCents,
		t.PersonalPaymentsCents,
		t.InsurancePaymentsCents,
		t.IntlPaymentsCents,
		t.CollectionAgencyPaymentsCents,
		t.CharityCents,
		t.BalanceTransferCents,
		t.IntlAdjustmentCents,
		t.BankruptcyCents,
		t.DeemedUncollectibleCents,
		t.CharityWriteOffCents,
		t.IndigentCharityCents,
		t.BundledNCCIEditCents,
		t.ChargeErrorCents,
		t.GlobalPeriodCents,
		t.AppealsExhaustedCents,
		t.ChargesNotReceivedTimelyCents,
		t.DeceasedPatientCents,
		t.FinancialHardshipCents,
		t.MUEMaxUnitsCents,
		t.NoAuthorizationCents,
		t.NoncoveredServiceCents,
		t.NoTransferAgreementCents,
		t.OutOfNetworkCents,
		t.PromptPayCents,
		t.SmallBalanceCents,
		t.CollectionAgencyAdjustmentCents,
		t.CollectionAgencyFeeCents,
	}
}

// DerivedTransactionColumns returns the derived.transactions column order.
func DerivedTransactionColumns() []string {
	return append(RawTransactionColumns(),
		"patient_key",
		"allowed_cents",
		"total_payments_cents",
		"total_adjustments_cents",
		"remaining_balance_cents",
		"visit_number",
		"trans_mrn",
		"primary_insurance",
		"secondary_insurance",
		"insurance_cat",
		"payer_roll_up",
	)
}

// DerivedCopyValues returns all values in DerivedTransactionColumns order.
func (t *Transaction) DerivedCopyValues() []any {
	return append(t.RawCopyValues(),
		t.PatientKey,
		t.AllowedCents,
		t.TotalPaymentsCents,
		t.TotalAdjustmentsCents,
		t.RemainingBalanceCents,
		t.VisitNumber,
		t.TransMRN,
		t.PrimaryInsurance,
		t.SecondaryInsurance,
		t.InsuranceCat,
		t.PayerRollUp,
	)
}
