package crosswalk

import (
	"testing"

	"github.com/clinicops/refclean/internal/model"
)

func TestLookup_CaseAndWhitespaceInsensitive(t *testing.T) {
	tbl := New([]model.CrosswalkEntry{
		{ProductDetail: "Blue Cross  PPO", Abbreviation: "BCBS", Category: "Commercial", RollUp: "BCBS"},
	})

	for _, name := range []string{
		"Blue Cross PPO",
		"blue cross ppo",
		"  BLUE   CROSS   PPO  ",
	} {
		e, ok := tbl.Lookup(name)
		if !ok {
			t.Errorf("Lookup(%q): miss", name)
			continue
		}
		if e.Abbreviation != "BCBS" {
			t.Errorf("Lookup(%q): abbreviation = %q, want BCBS", name, e.Abbreviation)
		}
	}
}

func TestLookup_Miss(t *testing.T) {
	tbl := New([]model.CrosswalkEntry{{ProductDetail: "Aetna HMO"}})
	if _, ok := tbl.Lookup("Cigna"); ok {
		t.Error("expected miss for unknown insurer")
	}
	if _, ok := tbl.Lookup(""); ok {
		t.Error("expected miss for empty name")
	}
}

func TestNew_LaterDuplicateWins(t *testing.T) {
	tbl := New([]model.CrosswalkEntry{
		{ProductDetail: "Aetna HMO", Category: "Old"},
		{ProductDetail: "AETNA HMO", Category: "New"},
	})
	if tbl.Len() != 1 {
		t.Fatalf("len = %d, want 1", tbl.Len())
	}
	e, ok := tbl.Lookup("Aetna HMO")
	if !ok || e.Category != "New" {
		t.Errorf("got %+v ok=%v, want later duplicate", e, ok)
	}
}

func TestNew_SkipsBlankProductDetail(t *testing.T) {
	tbl := New([]model.CrosswalkEntry{{ProductDetail: "   "}})
	if tbl.Len() != 0 {
		t.Errorf("len = %d, want 0", tbl.Len())
	}
}
