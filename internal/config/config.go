package config

import (
	"os"
	"strconv"
	"strings"

	"ocrstat/adapters/loader"
	"ocrstat/adapters/stats/normality"
	"ocrstat/domain/core"
	"ocrstat/domain/measure"
)

// Config represents the complete application configuration
type Config struct {
	Analysis AnalysisConfig
	Database DatabaseConfig
	Server   ServerConfig
	LogLevel string
}

// AnalysisConfig holds the comparison pipeline settings
type AnalysisConfig struct {
	Alpha    float64
	VariantA measure.Variant
	VariantB measure.Variant
	Factors  []string
	RunTable string
	OutDir   string
	Workers  int
}

// DatabaseConfig holds optional result persistence settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds the results API settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it.
// An alpha outside (0,1) is fatal here, before any comparison runs.
func Load() (*Config, error) {
	alpha := getEnvFloatOrDefault("OCRSTAT_ALPHA", normality.DefaultAlpha)
	if alpha <= 0 || alpha >= 1 {
		return nil, core.NewAlphaError(alpha)
	}

	factors := splitList(getEnvOrDefault("OCRSTAT_FACTORS",
		strings.Join([]string{loader.FactorDataset, loader.FactorSampleSize}, ",")))

	return &Config{
		Analysis: AnalysisConfig{
			Alpha:    alpha,
			VariantA: measure.Variant(getEnvOrDefault("OCRSTAT_VARIANT_A", "paddle")),
			VariantB: measure.Variant(getEnvOrDefault("OCRSTAT_VARIANT_B", "tesseract")),
			Factors:  factors,
			RunTable: getEnvOrDefault("OCRSTAT_RUN_TABLE", "run_table.csv"),
			OutDir:   getEnvOrDefault("OCRSTAT_OUT_DIR", "results"),
			Workers:  getEnvIntOrDefault("OCRSTAT_WORKERS", 0),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
