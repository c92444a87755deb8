package model

// CrosswalkEntry maps an insurer's free-text product name to its
// standardized abbreviation, category, and reporting roll-up group.
// The table is a static read-only input maintained outside this pipeline.
type CrosswalkEntry struct {
	ProductDetail string
	Abbreviation  string
	Category      string
	RollUp        string
}

// CrosswalkColumns returns the ref.payer_crosswalk column order used by COPY.
func CrosswalkColumns() []string {
	return []string{"product_detail", "insurance_abv", "category", "payer_roll_up"}
}

// RawCopyValues returns the values in CrosswalkColumns order.
func (e *CrosswalkEntry) RawCopyValues() []any {
	return []any{e.ProductDetail, e.Abbreviation, e.Category, e.RollUp}
}
