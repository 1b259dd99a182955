package compare

import (
	"sort"

	"ocrstat/domain/core"
	"ocrstat/domain/measure"
)

// ResultTable is the ordered collection of evaluated combinations for one
// analysis run. Built once, then written out; rows are never mutated after
// assembly.
type ResultTable struct {
	AnalysisID  core.AnalysisID `json:"analysis_id"`
	FactorNames []string        `json:"factor_names"`
	Rows        []Row           `json:"rows"`
	CreatedAt   core.Timestamp  `json:"created_at"`
}

// NewResultTable creates an empty table for the given grouping factors.
func NewResultTable(factorNames []string) *ResultTable {
	return &ResultTable{
		AnalysisID:  core.NewAnalysisID(),
		FactorNames: factorNames,
		Rows:        []Row{},
		CreatedAt:   core.Now(),
	}
}

// Append adds one evaluated combination.
func (t *ResultTable) Append(key measure.SampleKey, outcome Outcome) {
	t.Rows = append(t.Rows, Row{Key: key, Outcome: outcome})
}

// Sort orders rows lexicographically by group key, then metric. The engine
// calls this once after collection so output is reproducible regardless of
// worker scheduling.
func (t *ResultTable) Sort() {
	sort.Slice(t.Rows, func(i, j int) bool {
		return t.Rows[i].Key.Less(t.Rows[j].Key)
	})
}

// Len returns the number of evaluated combinations.
func (t *ResultTable) Len() int { return len(t.Rows) }
