// Package aggregate computes per-episode financial totals and the ranked
// insurer inference.
package aggregate

import (
	"sort"
	"strings"

	"github.com/clinicops/refclean/internal/model"
)

// SelfPay is the primary-insurer sentinel for episodes with no insurer
// activity at all.
const SelfPay = "Self-Pay"

// Result is the aggregate outcome for one episode.
type Result struct {
	TotalBalanceCents int64
	Primary           string
	Secondary         *string
}

// insurerGroup accumulates per-insurer usage within one episode.
type insurerGroup struct {
	name  string
	units float64
	count int64
}

// Rank sums the remaining balance over the episode's assigned transactions
// and ranks insurer usage to infer the primary and secondary insurer.
//
// Groups are ranked by units descending, then occurrence count ascending.
// The ascending count tie-break reproduces the source system's documented
// behavior; see the rank test before changing it. Name ascending breaks
// any remaining tie so reruns are deterministic.
//
// No transactions, or only blank insurer names at rank 1, yields the
// Self-Pay sentinel. Secondary is the rank-2 group, skipping blank names;
// nil when fewer than two named groups exist.
func Rank(txs []*model.Transaction) Result {
	res := Result{Primary: SelfPay}
	if len(txs) == 0 {
		return res
	}

	byName := make(map[string]*insurerGroup)
	for _, t := range txs {
		res.TotalBalanceCents += t.RemainingBalanceCents

		name := strings.TrimSpace(t.InsuranceName)
		g, ok := byName[name]
		if !ok {
			g = &insurerGroup{name: name}
			byName[name] = g
		}
		g.units += t.Units
		g.count++
	}

	groups := make([]*insurerGroup, 0, len(byName))
	for _, g := range byName {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].units != groups[j].units {
			return groups[i].units > groups[j].units
		}
		if groups[i].count != groups[j].count {
			return groups[i].count < groups[j].count
		}
		return groups[i].name < groups[j].name
	})

	if groups[0].name != "" {
		res.Primary = groups[0].name
	}

	for _, g := range groups[1:] {
		if g.name == "" {
			continue
		}
		sec := g.name
		res.Secondary = &sec
		break
	}
	return res
}
