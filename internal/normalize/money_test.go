package normalize

import (
	"testing"

	"github.com/clinicops/refclean/internal/model"
)

func TestParseCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"   ", 0},
		{"0", 0},
		{"1", 100},
		{"1.5", 150},
		{"1.23", 123},
		{"-1.23", -123},
		{"$1,234.56", 123456},
		{"(45.00)", -4500},
		{"($45.00)", -4500},
		{"not a number", 0},
		{"0.005", 1}, // rounds, never truncates
	}
	for _, c := range cases {
		if got := ParseCents(c.in); got != c.want {
			t.Errorf("ParseCents(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestDollarsToCentsRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.01, 1.23, -99.99, 123456.78} {
		c := DollarsToCents(v)
		if got := CentsToDollars(c); got != v {
			t.Errorf("round trip %v: cents %d, back %v", v, c, got)
		}
	}
}

func TestComputeBalances(t *testing.T) {
	tx := &model.Transaction{
		ChargesCents:               20000,
		ContractualAdjustmentCents: 5000,
		RefundsCents:               100,

		PersonalPaymentsCents:  1000,
		InsurancePaymentsCents: 8000,

		CharityCents:      500,
		OutOfNetworkCents: 400,
	}
	ComputeBalances(tx)

	if tx.AllowedCents != 15000 {
		t.Errorf("allowed = %d, want 15000", tx.AllowedCents)
	}
	if tx.TotalPaymentsCents != 9000 {
		t.Errorf("total payments = %d, want 9000", tx.TotalPaymentsCents)
	}
	if tx.TotalAdjustmentsCents != 900 {
		t.Errorf("total adjustments = %d, want 900", tx.TotalAdjustmentsCents)
	}
	// 15000 - 9000 - 100 - 900
	if tx.RemainingBalanceCents != 5000 {
		t.Errorf("remaining = %d, want 5000", tx.RemainingBalanceCents)
	}
}

func TestComputeBalances_ZeroTransaction(t *testing.T) {
	tx := &model.Transaction{}
	ComputeBalances(tx)
	if tx.AllowedCents != 0 || tx.TotalPaymentsCents != 0 ||
		tx.TotalAdjustmentsCents != 0 || tx.RemainingBalanceCents != 0 {
		t.Errorf("zero transaction produced nonzero balances: %+v", tx)
	}
}
