package planner

import (
	"sort"
	"time"

	"github.com/kasuganosora/tablecore/pkg/index"
)

// QueryInfo describes one observed query for advisory analysis: a DBA
// surface feeds these in from a query log, independent of any live
// execution.
type QueryInfo struct {
	SQL           string
	Frequency     int
	ExecutionTime time.Duration
	FilterColumns []int
	SortColumns   []int
}

// IndexRecommendation is a suggestion to create an index, never acted on
// automatically — GetBestPlanItem never consults this package.
type IndexRecommendation struct {
	TableName string
	Columns   []int
	Benefit   float64
	Cost      float64
	Priority  string
	Reason    string
}

// SimulatedIndexStats is the result of a what-if SimulateIndex call.
type SimulatedIndexStats struct {
	SelectivityEstimate float64
	CardinalityEstimate int64
	BenefitScore        float64
}

// Advisor is a read-only index-recommendation surface: it observes query
// shape and existing index costs and suggests candidates, but never
// influences GetBestPlanItem itself.
type Advisor struct {
	tableName   string
	rowCount    func() int64
	existing    []index.Index
}

// NewAdvisor builds an advisor bound to one table's row-count and
// registered-index accessors.
func NewAdvisor(tableName string, rowCount func() int64, existing []index.Index) *Advisor {
	return &Advisor{tableName: tableName, rowCount: rowCount, existing: existing}
}

// AnalyzeQueries scores each distinct filter-column set across queries
// by frequency * execution time, and recommends an index for any column
// set not already covered by an existing index's leading column.
func (a *Advisor) AnalyzeQueries(queries []QueryInfo) []IndexRecommendation {
	weight := make(map[string]float64)
	cols := make(map[string][]int)

	for _, q := range queries {
		if len(q.FilterColumns) == 0 {
			continue
		}
		key := columnsKey(q.FilterColumns)
		weight[key] += float64(q.Frequency) * float64(q.ExecutionTime)
		cols[key] = q.FilterColumns
	}

	var recs []IndexRecommendation
	for key, w := range weight {
		colset := cols[key]
		if a.coveredByExisting(colset) {
			continue
		}
		benefit := w
		rec := IndexRecommendation{
			TableName: a.tableName,
			Columns:   colset,
			Benefit:   benefit,
			Cost:      float64(a.rowCount()),
			Priority:  priorityOf(benefit),
			Reason:    "repeated filter not served by any existing index's leading column",
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool { return recs[i].Benefit > recs[j].Benefit })
	return recs
}

func (a *Advisor) coveredByExisting(columns []int) bool {
	if len(columns) == 0 {
		return true
	}
	for _, idx := range a.existing {
		if idx.IsFirstColumn(columns[0]) {
			return true
		}
	}
	return false
}

func priorityOf(benefit float64) string {
	switch {
	case benefit > 1000:
		return "high"
	case benefit > 100:
		return "medium"
	default:
		return "low"
	}
}

// GetIndexBenefit estimates the benefit of an index over columns: 0 when
// columns is empty, when an existing index already leads with columns[0],
// or when the table has at most one row; otherwise n/floor(log2(n)) for
// a row count of n.
func (a *Advisor) GetIndexBenefit(columns []int) float64 {
	if len(columns) == 0 || a.coveredByExisting(columns) {
		return 0
	}
	n := float64(a.rowCount())
	if n <= 1 {
		return 0
	}
	return n / logBase2Floor(n)
}

// SimulateIndex reports what-if statistics for an index over columns
// without creating it.
func (a *Advisor) SimulateIndex(columns []int) *SimulatedIndexStats {
	n := a.rowCount()
	benefit := a.GetIndexBenefit(columns)
	selectivity := 1.0
	if n > 0 {
		selectivity = 1.0 / float64(n)
	}
	return &SimulatedIndexStats{
		SelectivityEstimate: selectivity,
		CardinalityEstimate: n,
		BenefitScore:        benefit,
	}
}

func columnsKey(columns []int) string {
	key := ""
	for _, c := range columns {
		key += string(rune('a' + c%26))
	}
	return key
}

func logBase2Floor(n float64) float64 {
	if n <= 1 {
		return 1
	}
	h := 0.0
	for v := n; v > 1; v /= 2 {
		h++
	}
	return h
}
