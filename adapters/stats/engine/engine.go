// Package engine orchestrates the test selector across the full
// cross-product of grouping factors, one independent comparison per
// (group, metric) combination.
package engine

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"ocrstat/adapters/stats/paired"
	"ocrstat/domain/compare"
	"ocrstat/domain/measure"
)

// Engine evaluates every combination independently. Combinations share no
// mutable state, so they run on a bounded worker pool with each worker
// writing only its own pre-allocated row slot.
type Engine struct {
	selector *paired.Selector
	workers  int
	log      *logrus.Entry
}

// NewEngine builds an engine around the given selector. workers <= 0 selects
// one worker per CPU.
func NewEngine(selector *paired.Selector, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		selector: selector,
		workers:  workers,
		log:      logrus.WithField("component", "engine"),
	}
}

// Run evaluates paired samples: the two named variants compared within each
// group, paired by run order. Output rows are ordered lexicographically by
// group key, then metric, regardless of scheduling.
func (e *Engine) Run(ctx context.Context, samples map[measure.SampleKey]measure.PairedSample, factorNames []string) (*compare.ResultTable, error) {
	keys := sortedKeys(samples)
	return e.run(ctx, keys, factorNames, func(key measure.SampleKey) (compare.Outcome, error) {
		s := samples[key]
		return e.selector.Compare(s.VariantA, s.VariantB)
	})
}

// RunTwoLevel evaluates unpaired two-level contrasts: within each group the
// two factor levels are independent samples of possibly different sizes.
func (e *Engine) RunTwoLevel(ctx context.Context, samples map[measure.SampleKey]measure.TwoLevelSample, factorNames []string) (*compare.ResultTable, error) {
	keys := make([]measure.SampleKey, 0, len(samples))
	for key := range samples {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	return e.run(ctx, keys, factorNames, func(key measure.SampleKey) (compare.Outcome, error) {
		s := samples[key]
		return e.selector.CompareTwoLevel(s.LevelA, s.LevelB)
	})
}

// run fans the combinations out over the worker pool. A precondition
// violation in any combination cancels the batch; everything else is a
// defined outcome and the batch always completes.
func (e *Engine) run(ctx context.Context, keys []measure.SampleKey, factorNames []string, evaluate func(measure.SampleKey) (compare.Outcome, error)) (*compare.ResultTable, error) {
	started := time.Now()
	rows := make([]compare.Row, len(keys))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, key := range keys {
		i, key := i, key
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			outcome, err := evaluate(key)
			if err != nil {
				e.log.WithFields(logrus.Fields{
					"group":  key.Group.String(),
					"metric": string(key.Metric),
				}).WithError(err).Error("comparison failed")
				return err
			}
			rows[i] = compare.Row{Key: key, Outcome: outcome}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := compare.NewResultTable(factorNames)
	table.Rows = rows
	table.Sort()

	e.log.WithFields(logrus.Fields{
		"combinations": len(rows),
		"elapsed":      time.Since(started).Round(time.Millisecond),
	}).Info("comparison sweep complete")
	return table, nil
}

func sortedKeys(samples map[measure.SampleKey]measure.PairedSample) []measure.SampleKey {
	keys := make([]measure.SampleKey, 0, len(samples))
	for key := range samples {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
