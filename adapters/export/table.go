// Package export flattens a result table into its external representations:
// delimited text with explicit missing markers, and a rendered report.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"ocrstat/domain/compare"
)

// MissingMarker stands in for absent p-values and effect sizes. Never zero
// and never the empty string: a NoVariation outcome carries a real 0, an
// Undefined outcome carries nothing, and consumers must be able to tell them
// apart.
const MissingMarker = "NA"

// Header returns the flat column names for a table grouped by the given
// factors.
func Header(factorNames []string) []string {
	header := make([]string, 0, len(factorNames)+6)
	header = append(header, factorNames...)
	return append(header, "metric", "test_kind", "p_value", "effect_size", "effect_size_kind", "sample_size")
}

// Records flattens every row. Float values keep full precision; rounding is
// left to presentation layers.
func Records(table *compare.ResultTable) [][]string {
	records := make([][]string, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := make([]string, 0, len(table.FactorNames)+6)
		rec = append(rec, row.Key.Group.Parts()...)
		rec = append(rec,
			string(row.Key.Metric),
			string(row.Outcome.TestKind),
			formatFloat(row.Outcome.PValue),
			formatFloat(row.Outcome.EffectSize),
			string(row.Outcome.EffectKind),
			strconv.Itoa(row.Outcome.SampleSize),
		)
		records = append(records, rec)
	}
	return records
}

// WriteCSV writes the header and all rows to w.
func WriteCSV(table *compare.ResultTable, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(table.FactorNames)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range Records(table) {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to path, creating or truncating it.
func WriteCSVFile(table *compare.ResultTable, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteCSV(table, f)
}

func formatFloat(v *float64) string {
	if v == nil {
		return MissingMarker
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}
