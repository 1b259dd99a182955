// Package postgres persists analysis results. One row per evaluated
// combination; absent p-values and effect sizes map to SQL NULL, never zero.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"ocrstat/domain/compare"
	"ocrstat/domain/core"
	"ocrstat/domain/measure"
	"ocrstat/ports"
)

// ResultRepositoryImpl implements ports.ResultRepository for PostgreSQL
type ResultRepositoryImpl struct {
	db *sqlx.DB
}

var _ ports.ResultRepository = (*ResultRepositoryImpl)(nil)

// NewResultRepository creates a new PostgreSQL result repository. The concrete
// type is returned because callers also need EnsureSchema, which is a
// postgres bootstrap concern and not part of the port.
func NewResultRepository(db *sqlx.DB) *ResultRepositoryImpl {
	return &ResultRepositoryImpl{db: db}
}

// EnsureSchema creates the result tables when missing.
func (r *ResultRepositoryImpl) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analyses (
			id UUID PRIMARY KEY,
			factor_names TEXT NOT NULL,
			alpha DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE TABLE IF NOT EXISTS comparison_results (
			analysis_id UUID NOT NULL REFERENCES analyses(id) ON DELETE CASCADE,
			group_key TEXT NOT NULL,
			metric TEXT NOT NULL,
			test_kind TEXT NOT NULL,
			p_value DOUBLE PRECISION,
			effect_size DOUBLE PRECISION,
			effect_size_kind TEXT NOT NULL,
			sample_size INT NOT NULL,
			PRIMARY KEY (analysis_id, group_key, metric)
		)`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save stores the table and its rows in one transaction.
func (r *ResultRepositoryImpl) Save(ctx context.Context, table *compare.ResultTable, alpha float64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analyses (id, factor_names, alpha, created_at)
		VALUES ($1, $2, $3, $4)`,
		table.AnalysisID.String(), strings.Join(table.FactorNames, ","), alpha, table.CreatedAt.Time())
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}

	for _, row := range table.Rows {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO comparison_results (
				analysis_id, group_key, metric, test_kind,
				p_value, effect_size, effect_size_kind, sample_size
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			table.AnalysisID.String(),
			row.Key.Group.String(),
			string(row.Key.Metric),
			string(row.Outcome.TestKind),
			nullable(row.Outcome.PValue),
			nullable(row.Outcome.EffectSize),
			string(row.Outcome.EffectKind),
			row.Outcome.SampleSize,
		)
		if err != nil {
			return fmt.Errorf("insert result row: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID reconstructs a stored result table, rows in their canonical order.
func (r *ResultRepositoryImpl) GetByID(ctx context.Context, id core.AnalysisID) (*compare.ResultTable, error) {
	var meta struct {
		FactorNames string       `db:"factor_names"`
		CreatedAt   sql.NullTime `db:"created_at"`
	}
	err := r.db.GetContext(ctx, &meta,
		`SELECT factor_names, created_at FROM analyses WHERE id = $1`, id.String())
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", core.ErrAnalysisNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis: %w", err)
	}

	var rows []struct {
		GroupKey   string          `db:"group_key"`
		Metric     string          `db:"metric"`
		TestKind   string          `db:"test_kind"`
		PValue     sql.NullFloat64 `db:"p_value"`
		EffectSize sql.NullFloat64 `db:"effect_size"`
		EffectKind string          `db:"effect_size_kind"`
		SampleSize int             `db:"sample_size"`
	}
	err = r.db.SelectContext(ctx, &rows, `
		SELECT group_key, metric, test_kind, p_value, effect_size, effect_size_kind, sample_size
		FROM comparison_results WHERE analysis_id = $1
		ORDER BY group_key, metric`, id.String())
	if err != nil {
		return nil, fmt.Errorf("get result rows: %w", err)
	}

	table := &compare.ResultTable{
		AnalysisID:  id,
		FactorNames: strings.Split(meta.FactorNames, ","),
		Rows:        make([]compare.Row, 0, len(rows)),
		CreatedAt:   core.NewTimestamp(meta.CreatedAt.Time),
	}
	for _, row := range rows {
		table.Rows = append(table.Rows, compare.Row{
			Key: measure.SampleKey{
				Group:  measure.GroupKey(row.GroupKey),
				Metric: measure.Metric(row.Metric),
			},
			Outcome: compare.Outcome{
				PValue:     fromNullable(row.PValue),
				EffectSize: fromNullable(row.EffectSize),
				EffectKind: compare.EffectKind(row.EffectKind),
				TestKind:   compare.TestKind(row.TestKind),
				SampleSize: row.SampleSize,
			},
		})
	}
	return table, nil
}

// List returns the most recent analyses.
func (r *ResultRepositoryImpl) List(ctx context.Context, limit int) ([]ports.AnalysisSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []struct {
		ID          string       `db:"id"`
		FactorNames string       `db:"factor_names"`
		Alpha       float64      `db:"alpha"`
		RowCount    int          `db:"row_count"`
		CreatedAt   sql.NullTime `db:"created_at"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT a.id, a.factor_names, a.alpha, a.created_at,
		       (SELECT COUNT(*) FROM comparison_results c WHERE c.analysis_id = a.id) AS row_count
		FROM analyses a
		ORDER BY a.created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list analyses: %w", err)
	}

	summaries := make([]ports.AnalysisSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, ports.AnalysisSummary{
			ID:          core.AnalysisID(row.ID),
			FactorNames: strings.Split(row.FactorNames, ","),
			Alpha:       row.Alpha,
			RowCount:    row.RowCount,
			CreatedAt:   core.NewTimestamp(row.CreatedAt.Time),
		})
	}
	return summaries, nil
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
