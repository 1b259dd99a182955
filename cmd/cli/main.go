package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ocrstat/adapters/api"
	"ocrstat/adapters/export"
	"ocrstat/adapters/loader"
	"ocrstat/adapters/postgres"
	"ocrstat/adapters/stats/engine"
	"ocrstat/adapters/stats/paired"
	"ocrstat/domain/compare"
	"ocrstat/domain/measure"
	"ocrstat/internal/config"
	"ocrstat/internal/logging"
)

func main() {
	// A missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	rootCmd := &cobra.Command{
		Use:   "ocrstat",
		Short: "Adaptive statistical comparison of paired OCR measurements",
	}
	rootCmd.AddCommand(
		newAnalyzeCmd(cfg),
		newContrastCmd(cfg),
		newServeCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newAnalyzeCmd runs the paired design: the two OCR variants compared within
// each group, paired by run order.
func newAnalyzeCmd(cfg *config.Config) *cobra.Command {
	var (
		runTable string
		factors  []string
		variantA string
		variantB string
		alpha    float64
		outDir   string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare the two variants within each group, paired by run order",
		RunE: func(cmd *cobra.Command, args []string) error {
			selector, err := paired.NewSelector(alpha)
			if err != nil {
				return err
			}

			rows, err := loader.NewReader(runTable).Load()
			if err != nil {
				return err
			}
			samples, err := loader.PartitionPaired(rows, factors,
				measureVariant(variantA), measureVariant(variantB))
			if err != nil {
				return err
			}

			table, err := engine.NewEngine(selector, cfg.Analysis.Workers).
				Run(cmd.Context(), samples, factors)
			if err != nil {
				return err
			}

			return writeOutputs(cmd.Context(), cfg, table, alpha, outDir, "paired")
		},
	}

	cmd.Flags().StringVar(&runTable, "run-table", cfg.Analysis.RunTable, "run table file (.csv or .xlsx)")
	cmd.Flags().StringSliceVar(&factors, "factors", cfg.Analysis.Factors, "grouping factor columns")
	cmd.Flags().StringVar(&variantA, "variant-a", string(cfg.Analysis.VariantA), "first variant label")
	cmd.Flags().StringVar(&variantB, "variant-b", string(cfg.Analysis.VariantB), "second variant label")
	cmd.Flags().Float64Var(&alpha, "alpha", cfg.Analysis.Alpha, "normality classification threshold")
	cmd.Flags().StringVar(&outDir, "out", cfg.Analysis.OutDir, "output directory")
	return cmd
}

// newContrastCmd runs the unpaired design: two levels of one factor compared
// within each group, no pairing and no normality gate.
func newContrastCmd(cfg *config.Config) *cobra.Command {
	var (
		runTable    string
		factors     []string
		levelFactor string
		levelA      string
		levelB      string
		alpha       float64
		outDir      string
	)

	cmd := &cobra.Command{
		Use:   "contrast",
		Short: "Compare two levels of one factor within each group (unpaired)",
		RunE: func(cmd *cobra.Command, args []string) error {
			selector, err := paired.NewSelector(alpha)
			if err != nil {
				return err
			}

			rows, err := loader.NewReader(runTable).Load()
			if err != nil {
				return err
			}
			samples, err := loader.PartitionTwoLevel(rows, factors, levelFactor, levelA, levelB)
			if err != nil {
				return err
			}

			table, err := engine.NewEngine(selector, cfg.Analysis.Workers).
				RunTwoLevel(cmd.Context(), samples, factors)
			if err != nil {
				return err
			}

			return writeOutputs(cmd.Context(), cfg, table, alpha, outDir, "contrast")
		},
	}

	cmd.Flags().StringVar(&runTable, "run-table", cfg.Analysis.RunTable, "run table file (.csv or .xlsx)")
	cmd.Flags().StringSliceVar(&factors, "factors", cfg.Analysis.Factors, "grouping factor columns")
	cmd.Flags().StringVar(&levelFactor, "level-factor", loader.FactorSampleSize, "two-level factor to contrast")
	cmd.Flags().StringVar(&levelA, "level-a", "1", "first level value")
	cmd.Flags().StringVar(&levelB, "level-b", "20", "second level value")
	cmd.Flags().Float64Var(&alpha, "alpha", cfg.Analysis.Alpha, "normality classification threshold")
	cmd.Flags().StringVar(&outDir, "out", cfg.Analysis.OutDir, "output directory")
	return cmd
}

// newServeCmd exposes stored analyses over HTTP.
func newServeCmd(cfg *config.Config) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored analysis results over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Database.URL == "" {
				return fmt.Errorf("DATABASE_URL is required for serve")
			}
			db, err := sqlx.Connect("postgres", cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()

			repo := postgres.NewResultRepository(db)
			if err := repo.EnsureSchema(cmd.Context()); err != nil {
				return err
			}

			return api.NewServer(repo, cfg.Analysis.Alpha).Run(":" + port)
		},
	}

	cmd.Flags().StringVar(&port, "port", cfg.Server.Port, "listen port")
	return cmd
}

func measureVariant(s string) measure.Variant { return measure.Variant(s) }

// writeOutputs exports the table to CSV and markdown, and persists it when a
// database is configured.
func writeOutputs(ctx context.Context, cfg *config.Config, table *compare.ResultTable, alpha float64, outDir, prefix string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	csvPath := filepath.Join(outDir, prefix+"_results.csv")
	if err := export.WriteCSVFile(table, csvPath); err != nil {
		return err
	}
	mdPath := filepath.Join(outDir, prefix+"_report.md")
	if err := os.WriteFile(mdPath, []byte(export.Markdown(table, alpha)), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"analysis": table.AnalysisID.String(),
		"rows":     table.Len(),
		"csv":      csvPath,
		"report":   mdPath,
	}).Info("analysis written")

	if cfg.Database.URL == "" {
		return nil
	}
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	repo := postgres.NewResultRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	return repo.Save(ctx, table, alpha)
}
