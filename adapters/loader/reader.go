// Package loader reads the experiment-runner run table (CSV or Excel) and
// partitions its measurement rows into the grouped sample form the
// comparison engine consumes.
package loader

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"ocrstat/domain/core"
	"ocrstat/domain/measure"
)

// Factor column names of the run table, in canonical key order.
const (
	FactorDocumentType = "document_type"
	FactorDataset      = "dataset"
	FactorSampleSize   = "sample_size"
	FactorLanguage     = "language"
)

// FactorColumns returns the run table's grouping factor columns in canonical
// order.
func FactorColumns() []string {
	return []string{FactorDocumentType, FactorDataset, FactorSampleSize, FactorLanguage}
}

// Row is one usable measurement run: the variant label, the categorical
// factor values, and one finite value per tracked metric. Row order follows
// the run table, which is the pairing order within each group.
type Row struct {
	RunID   string
	Variant measure.Variant
	Factors map[string]string
	Values  map[measure.Metric]float64
}

// runTableRow mirrors the experiment-runner run table schema. Metric columns
// stay strings so finite-value validation happens here, not in the csv layer.
type runTableRow struct {
	RunID        string `csv:"__run_id"`
	Done         string `csv:"__done"`
	OCRLibrary   string `csv:"ocr_library"`
	DocumentType string `csv:"document_type"`
	Dataset      string `csv:"dataset"`
	SampleSize   string `csv:"sample_size"`
	Language     string `csv:"language"`
	Energy       string `csv:"energy"`
	Runtime      string `csv:"runtime"`
	Memory       string `csv:"memory"`
}

// Reader loads a run table from CSV or Excel, selected by file extension.
type Reader struct {
	filePath string
	fileType string // "csv" or "xlsx"
	log      *logrus.Entry
}

// NewReader creates a reader for the given run table file.
func NewReader(filePath string) *Reader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &Reader{
		filePath: filePath,
		fileType: fileType,
		log:      logrus.WithField("component", "loader"),
	}
}

// Load reads the run table and returns its usable rows. Runs not marked DONE
// and rows with missing or non-finite metric values are dropped with a
// warning; the engine's clean-input precondition holds for everything
// returned. An empty result is an error.
func (r *Reader) Load() ([]Row, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("run table not found: %s", r.filePath)
	}

	var raw []*runTableRow
	var err error
	switch r.fileType {
	case "csv":
		raw, err = r.readCSV()
	default:
		raw, err = r.readExcel()
	}
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(raw))
	dropped := 0
	for _, rec := range raw {
		row, ok := r.toRow(rec)
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, row)
	}
	if dropped > 0 {
		r.log.WithField("dropped", dropped).Warn("skipped incomplete run table rows")
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptyRunTable, r.filePath)
	}

	r.log.WithFields(logrus.Fields{"rows": len(rows), "file": r.filePath}).Info("run table loaded")
	return rows, nil
}

func (r *Reader) readCSV() ([]*runTableRow, error) {
	f, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("open run table: %w", err)
	}
	defer f.Close()

	var rows []*runTableRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parse run table csv: %w", err)
	}
	return rows, nil
}

func (r *Reader) readExcel() ([]*runTableRow, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("open run table workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(cells) < 2 {
		return nil, fmt.Errorf("%w: %s", core.ErrEmptyRunTable, r.filePath)
	}

	col := make(map[string]int, len(cells[0]))
	for i, name := range cells[0] {
		col[strings.TrimSpace(name)] = i
	}
	pick := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	rows := make([]*runTableRow, 0, len(cells)-1)
	for _, row := range cells[1:] {
		rows = append(rows, &runTableRow{
			RunID:        pick(row, "__run_id"),
			Done:         pick(row, "__done"),
			OCRLibrary:   pick(row, "ocr_library"),
			DocumentType: pick(row, "document_type"),
			Dataset:      pick(row, "dataset"),
			SampleSize:   pick(row, "sample_size"),
			Language:     pick(row, "language"),
			Energy:       pick(row, "energy"),
			Runtime:      pick(row, "runtime"),
			Memory:       pick(row, "memory"),
		})
	}
	return rows, nil
}

// toRow validates one raw record. Finite metric values are a hard guarantee
// of the loader; factor values must not contain the group key separator.
func (r *Reader) toRow(rec *runTableRow) (Row, bool) {
	if rec.Done != "" && !strings.EqualFold(rec.Done, "done") {
		return Row{}, false
	}
	if rec.OCRLibrary == "" {
		return Row{}, false
	}

	values := make(map[measure.Metric]float64, 3)
	for metric, raw := range map[measure.Metric]string{
		measure.MetricEnergy:  rec.Energy,
		measure.MetricRuntime: rec.Runtime,
		measure.MetricMemory:  rec.Memory,
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Row{}, false
		}
		values[metric] = v
	}

	factors := map[string]string{
		FactorDocumentType: strings.TrimSpace(rec.DocumentType),
		FactorDataset:      strings.TrimSpace(rec.Dataset),
		FactorSampleSize:   strings.TrimSpace(rec.SampleSize),
		FactorLanguage:     strings.TrimSpace(rec.Language),
	}
	for _, v := range factors {
		if strings.Contains(v, measure.GroupKeySeparator) {
			return Row{}, false
		}
	}

	return Row{
		RunID:   rec.RunID,
		Variant: measure.Variant(strings.TrimSpace(rec.OCRLibrary)),
		Factors: factors,
		Values:  values,
	}, true
}
