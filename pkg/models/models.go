// Package models provides data structures used throughout the benchmark engine.
package models

import (
	"github.com/TFMV/gauntlet/pkg/analyzer"
)

// BenchmarkQuery is a labeled query in the benchmark workload.
// It is immutable once constructed.
type BenchmarkQuery struct {
	// Name identifies the query in logs and reports.
	Name string `json:"name"`
	// SQL is the raw query text, never validated for syntax here.
	SQL string `json:"sql"`
	// ExpectedTier is the declared complexity tier used to pick the
	// baseline multiplier.
	ExpectedTier analyzer.Tier `json:"expected_tier"`
	// MinSpeedup is the minimum expected speedup over baseline.
	MinSpeedup float64 `json:"min_speedup"`
}

// ExecutionResult is what the execution collaborator returns for a single
// query invocation.
type ExecutionResult struct {
	Rows            int64 `json:"rows"`
	ExecutionTimeMs int64 `json:"execution_time_ms"`
	MemoryUsedBytes int64 `json:"memory_used_bytes"`
}

// QueryPerformance is one successful benchmark sample with derived metrics.
type QueryPerformance struct {
	ExecutionTimeMs int64 `json:"execution_time_ms"`
	MemoryUsedBytes int64 `json:"memory_used_bytes"`
	RowsProcessed   int64 `json:"rows_processed"`
	// RowsPerSecond is throughput; 0 when execution time is 0.
	RowsPerSecond float64 `json:"rows_per_second"`
	// RowsPerMB is memory density; 0 when memory used is 0.
	RowsPerMB float64 `json:"rows_per_mb"`
}

// NewQueryPerformance builds a sample from a collaborator result,
// computing the derived throughput and memory density.
func NewQueryPerformance(res *ExecutionResult) QueryPerformance {
	p := QueryPerformance{
		ExecutionTimeMs: res.ExecutionTimeMs,
		MemoryUsedBytes: res.MemoryUsedBytes,
		RowsProcessed:   res.Rows,
	}
	if res.ExecutionTimeMs > 0 {
		p.RowsPerSecond = float64(res.Rows) * 1000.0 / float64(res.ExecutionTimeMs)
	}
	if res.MemoryUsedBytes > 0 {
		p.RowsPerMB = float64(res.Rows) * 1024.0 * 1024.0 / float64(res.MemoryUsedBytes)
	}
	return p
}

// PerformanceMetrics are the aggregate metrics for one (query, dataset size)
// pair, recomputed per pair.
type PerformanceMetrics struct {
	AvgSpeedup            float64 `json:"avg_speedup"`
	MemoryEfficiency      float64 `json:"memory_efficiency"`
	ThroughputImprovement float64 `json:"throughput_improvement"`
	SuccessRate           float64 `json:"success_rate"`
	MeetsRequirements     bool    `json:"meets_requirements"`
}

// BenchmarkResult holds the samples and aggregate metrics for one
// (query, dataset size) pair. It is never mutated after creation.
type BenchmarkResult struct {
	Query       BenchmarkQuery     `json:"query"`
	DatasetSize int                `json:"dataset_size"`
	Samples     []QueryPerformance `json:"samples"`
	Metrics     PerformanceMetrics `json:"metrics"`
}

// EngineStats are observability-only counters the collaborator accumulates
// across executions.
type EngineStats struct {
	TotalQueries       uint64  `json:"total_queries"`
	AvgExecutionTimeMs float64 `json:"avg_execution_time_ms"`
	PeakMemoryBytes    int64   `json:"peak_memory_bytes"`
	RegisteredTables   int     `json:"registered_tables"`
}
