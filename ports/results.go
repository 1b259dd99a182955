// Package ports defines the interfaces between the comparison pipeline and
// its storage and transport adapters.
package ports

import (
	"context"

	"ocrstat/domain/compare"
	"ocrstat/domain/core"
)

// AnalysisSummary is the listing view of one stored analysis run.
type AnalysisSummary struct {
	ID          core.AnalysisID `json:"id" db:"id"`
	FactorNames []string        `json:"factor_names"`
	Alpha       float64         `json:"alpha" db:"alpha"`
	RowCount    int             `json:"row_count" db:"row_count"`
	CreatedAt   core.Timestamp  `json:"created_at"`
}

// ResultRepository persists result tables per analysis run.
type ResultRepository interface {
	Save(ctx context.Context, table *compare.ResultTable, alpha float64) error
	GetByID(ctx context.Context, id core.AnalysisID) (*compare.ResultTable, error)
	List(ctx context.Context, limit int) ([]AnalysisSummary, error)
}
