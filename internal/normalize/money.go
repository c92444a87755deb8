package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/clinicops/refclean/internal/model"
)

// DollarsToCents converts a float64 dollar amount to int64 cents.
// Uses math.Round to avoid truncation bias.
func DollarsToCents(v float64) int64 {
	return int64(math.Round(v * 100))
}

// CentsToDollars converts int64 cents back to a float64 dollar amount.
func CentsToDollars(c int64) float64 {
	return float64(c) / 100
}

// ParseCents parses a currency cell from a spreadsheet export into cents.
// Handles "$", thousands separators, and accounting-style parentheses for
// negatives. Blank or unparseable cells are 0: the balance arithmetic
// treats missing amounts as zero rather than failing the batch.
func ParseCents(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if neg {
		v = -v
	}
	return DollarsToCents(v)
}

// ComputeBalances fills the computed financial fields on a transaction:
//
//	allowed   = charges - contractual adjustment
//	remaining = allowed - total payments - refunds - total adjustments
func ComputeBalances(t *model.Transaction) {
	t.AllowedCents = t.ChargesCents - t.ContractualAdjustmentCents
	t.TotalPaymentsCents = t.PaymentTotalCents()
	t.TotalAdjustmentsCents = t.AdjustmentTotalCents()
	t.RemainingBalanceCents = t.AllowedCents - t.TotalPaymentsCents - t.RefundsCents - t.TotalAdjustmentsCents
}
