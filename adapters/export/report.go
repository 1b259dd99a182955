package export

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/montanaflynn/stats"

	"ocrstat/domain/compare"
)

// Markdown renders a human-readable summary of one analysis run. Display
// values are rounded here; the CSV export keeps full precision.
func Markdown(table *compare.ResultTable, alpha float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Comparison results %s\n\n", table.AnalysisID)
	fmt.Fprintf(&b, "Grouping: %s. Combinations evaluated: %d.\n\n",
		strings.Join(table.FactorNames, " x "), table.Len())

	counts := make(map[compare.TestKind]int)
	significant := 0
	var pValues []float64
	for _, row := range table.Rows {
		counts[row.Outcome.TestKind]++
		if p := row.Outcome.PValue; p != nil {
			pValues = append(pValues, *p)
			if *p < alpha {
				significant++
			}
		}
	}

	fmt.Fprintf(&b, "- parametric paired: %d\n", counts[compare.TestParametricPaired])
	fmt.Fprintf(&b, "- non-parametric paired: %d\n", counts[compare.TestNonParametricPaired])
	fmt.Fprintf(&b, "- two-level rank sum: %d\n", counts[compare.TestTwoLevelRankSum])
	fmt.Fprintf(&b, "- untested (degenerate): %d\n", counts[compare.TestUndefined])
	fmt.Fprintf(&b, "- significant at alpha=%g: %d\n", alpha, significant)
	if len(pValues) > 0 {
		median, _ := stats.Median(pValues)
		fmt.Fprintf(&b, "- median p-value: %.4g\n", median)
	}
	b.WriteString("\n")

	b.WriteString("| " + strings.Join(Header(table.FactorNames), " | ") + " |\n")
	b.WriteString(strings.Repeat("| --- ", len(table.FactorNames)+6) + "|\n")
	for _, row := range table.Rows {
		cells := append([]string{}, row.Key.Group.Parts()...)
		cells = append(cells,
			string(row.Key.Metric),
			string(row.Outcome.TestKind),
			displayFloat(row.Outcome.PValue),
			displayFloat(row.Outcome.EffectSize),
			string(row.Outcome.EffectKind),
			fmt.Sprintf("%d", row.Outcome.SampleSize),
		)
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return b.String()
}

// HTML renders the markdown report to a standalone HTML fragment.
func HTML(table *compare.ResultTable, alpha float64) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(Markdown(table, alpha)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

func displayFloat(v *float64) string {
	if v == nil {
		return MissingMarker
	}
	return fmt.Sprintf("%.4g", *v)
}
