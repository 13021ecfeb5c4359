// Package planner chooses the cheapest access path for a predicate mask
// and sort order, per a table's registered indexes, and composes
// per-filter plan items into a whole-query cost estimate.
package planner

import (
	"math"

	"github.com/kasuganosora/tablecore/pkg/index"
)

// PlanItem is the outcome of GetBestPlanItem: the chosen index plus the
// cost it reported. JoinPlan is opaque to this package — the join
// enumerator attaches it and this package only propagates it.
type PlanItem struct {
	Index    index.Index
	Cost     index.Cost
	JoinPlan interface{}
}

// Filter is one predicate the planner evaluates against a table's
// indexes: a per-column mask, the requested sort order, and the set of
// columns the query needs (used to detect covering-index lookups).
type Filter struct {
	Masks       []index.Mask
	SortOrder   index.SortOrder
	AllColumns  map[int]bool
	IndexHints  map[int]bool // disallowed index positions for this filter, nil = no hints
	evaluatable bool
}

// GetBestPlanItem implements spec.md §4.5's getBestPlanItem: the scan
// index (position 0) is always a candidate, costed with nil masks; every
// other index is costed with the filter's actual masks, skipped if
// disallowed by an index hint. Ties are broken by first-seen order —
// the loop only replaces the incumbent on a strictly lower cost.
func GetBestPlanItem(session index.Session, indexes []index.Index, filter *Filter) PlanItem {
	if len(indexes) == 0 {
		return PlanItem{Cost: index.Cost{Value: math.Inf(1), Explain: "no indexes registered"}}
	}

	best := PlanItem{
		Index: indexes[0],
		Cost:  indexes[0].GetCost(session, nil, nil, filter.AllColumns),
	}

	for i := 1; i < len(indexes); i++ {
		if filter.IndexHints != nil && filter.IndexHints[i] {
			continue
		}
		cost := indexes[i].GetCost(session, filter.Masks, filter.SortOrder, filter.AllColumns)
		if cost.Value < best.Cost.Value {
			best = PlanItem{Index: indexes[i], Cost: cost}
		}
	}

	return best
}

// Plan is an ordered list of filters (the chosen join order) plus the
// indexes available to each — one access path per filter.
type Plan struct {
	Session  index.Session
	Filters  []*Filter
	Indexes  [][]index.Index // Indexes[i] are the candidate indexes for Filters[i]
	Items    []PlanItem       // filled in by CalculateCost
}

// CalculateCost implements spec.md §4.5's Plan.calculateCost: walk the
// filters in their chosen order, marking each as evaluatable alongside
// every filter already chosen, take its best plan item, and multiply the
// running cost by (1 + itemCost). A filter containing a join condition
// that never becomes evaluatable under this ordering makes the whole
// plan infeasible (+Inf). Evaluatable state is restored on return so the
// same Plan can be recosted under a different trial ordering.
func (p *Plan) CalculateCost(isEvaluatable func(f *Filter, chosen []*Filter) bool) float64 {
	defer func() {
		for _, f := range p.Filters {
			f.evaluatable = false
		}
	}()

	p.Items = make([]PlanItem, len(p.Filters))
	cost := 1.0
	var chosen []*Filter

	for i, f := range p.Filters {
		f.evaluatable = true
		chosen = append(chosen, f)

		if isEvaluatable != nil && !isEvaluatable(f, chosen) {
			return math.Inf(1)
		}

		item := GetBestPlanItem(p.Session, p.Indexes[i], f)
		p.Items[i] = item
		if math.IsInf(item.Cost.Value, 1) {
			return math.Inf(1)
		}
		cost *= 1 + item.Cost.Value
	}

	return cost
}

// RemoveUnusableIndexConditions prunes, for every filter but the last,
// any Mask bit that the chosen PlanItem's index cannot actually use
// (i.e. the column the bit names is not a key column of the winning
// index). The last filter's single-pass evaluation needs no further
// pruning, matching spec.md §4.5.
func (p *Plan) RemoveUnusableIndexConditions() {
	for i := 0; i < len(p.Filters)-1; i++ {
		f := p.Filters[i]
		item := p.Items[i]
		if item.Index == nil {
			continue
		}
		for col := range f.AllColumns {
			if item.Index.ColumnIndex(col) == -1 && col < len(f.Masks) {
				f.Masks[col] = index.MaskNone
			}
		}
	}
}
