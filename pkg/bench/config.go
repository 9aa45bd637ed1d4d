// Package bench runs the query benchmark suite and renders its reports.
package bench

import (
	"github.com/TFMV/gauntlet/pkg/analyzer"
	"github.com/TFMV/gauntlet/pkg/errors"
	"github.com/TFMV/gauntlet/pkg/models"
)

// Config controls a benchmark run. Zero fields are filled with defaults by
// Validate.
type Config struct {
	// Iterations is how many times each query runs per dataset size.
	Iterations int `json:"iterations" mapstructure:"iterations"`
	// DatasetSizes are the row counts to benchmark against, in run order.
	DatasetSizes []int `json:"dataset_sizes" mapstructure:"dataset_sizes"`
	// Queries is the workload, run in order for every dataset size.
	Queries []models.BenchmarkQuery `json:"queries" mapstructure:"queries"`
	// MemoryLimitBytes is the pass/fail ceiling on average memory used.
	MemoryLimitBytes int64 `json:"memory_limit_bytes" mapstructure:"memory_limit_bytes"`
	// TimeLimitMs is the pass/fail ceiling on average execution time.
	TimeLimitMs int64 `json:"time_limit_ms" mapstructure:"time_limit_ms"`
	// TableName is the synthetic table registered for each dataset size.
	TableName string `json:"table_name" mapstructure:"table_name"`
}

// DefaultConfig returns the standard workload: three queries of increasing
// complexity over three dataset sizes, five iterations each.
func DefaultConfig() Config {
	return Config{
		Iterations:   5,
		DatasetSizes: []int{10_000, 100_000, 1_000_000},
		Queries: []models.BenchmarkQuery{
			{
				Name:         "simple_aggregation",
				SQL:          "SELECT COUNT(*) FROM benchmark_data",
				ExpectedTier: analyzer.TierSimple,
				MinSpeedup:   5.0,
			},
			{
				Name:         "group_by_aggregation",
				SQL:          "SELECT category, COUNT(*), AVG(value) FROM benchmark_data GROUP BY category",
				ExpectedTier: analyzer.TierMedium,
				MinSpeedup:   8.0,
			},
			{
				Name:         "complex_analytics",
				SQL:          "SELECT category, SUM(amount), AVG(value), COUNT(*) FROM benchmark_data WHERE flag = true GROUP BY category ORDER BY SUM(amount) DESC",
				ExpectedTier: analyzer.TierComplex,
				MinSpeedup:   10.0,
			},
		},
		MemoryLimitBytes: 2 * 1024 * 1024 * 1024,
		TimeLimitMs:      100,
		TableName:        "benchmark_data",
	}
}

// Validate fills unset fields with defaults and rejects values that would
// make a run meaningless.
func (c *Config) Validate() error {
	def := DefaultConfig()

	if c.Iterations < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "iterations must be positive, got %d", c.Iterations)
	}
	if c.Iterations == 0 {
		c.Iterations = def.Iterations
	}
	if len(c.DatasetSizes) == 0 {
		c.DatasetSizes = def.DatasetSizes
	}
	for _, size := range c.DatasetSizes {
		if size <= 0 {
			return errors.Newf(errors.CodeInvalidConfig, "dataset size must be positive, got %d", size)
		}
	}
	if len(c.Queries) == 0 {
		c.Queries = def.Queries
	}
	for _, q := range c.Queries {
		if q.Name == "" || q.SQL == "" {
			return errors.New(errors.CodeInvalidConfig, "benchmark queries need a name and SQL")
		}
	}
	if c.MemoryLimitBytes < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "memory limit must be positive, got %d", c.MemoryLimitBytes)
	}
	if c.MemoryLimitBytes == 0 {
		c.MemoryLimitBytes = def.MemoryLimitBytes
	}
	if c.TimeLimitMs < 0 {
		return errors.Newf(errors.CodeInvalidConfig, "time limit must be positive, got %d", c.TimeLimitMs)
	}
	if c.TimeLimitMs == 0 {
		c.TimeLimitMs = def.TimeLimitMs
	}
	if c.TableName == "" {
		c.TableName = def.TableName
	}
	return nil
}
