// Package main provides the entry point for the gauntlet benchmark tool.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/TFMV/gauntlet/pkg/analyzer"
	"github.com/TFMV/gauntlet/pkg/bench"
	"github.com/TFMV/gauntlet/pkg/engine"
	"github.com/TFMV/gauntlet/pkg/infrastructure/metrics"
	"github.com/TFMV/gauntlet/pkg/models"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "gauntlet",
	Short: "Gauntlet query benchmark tool",
	Long: `A benchmark harness and query complexity analyzer for DuckDB.

Gauntlet classifies SQL queries into complexity tiers, estimates their
resource cost, and benchmarks them against synthetic datasets.`,
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the benchmark suite",
	Long: `Run the configured benchmark workload and write a report.

Example:
  gauntlet bench --config ./gauntlet.yaml
  gauntlet bench --iterations 3 --dataset-sizes 10000,100000 --format markdown`,
	RunE: runBench,
}

var classifyCmd = &cobra.Command{
	Use:   "classify [sql]",
	Short: "Classify a query and estimate its cost",
	Long: `Classify a SQL query into a complexity tier and estimate its
memory and time cost for a given row count. The query is read from the
arguments, or from stdin when no argument is given.

Example:
  gauntlet classify "SELECT a, COUNT(*) FROM t GROUP BY a" --rows 100000
  cat query.sql | gauntlet classify`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringP("config", "c", "", "config file path")
	benchCmd.Flags().String("database", "", "DuckDB database path (empty for in-memory)")
	benchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	benchCmd.Flags().Int("iterations", 0, "iterations per query (0 for default)")
	benchCmd.Flags().IntSlice("dataset-sizes", nil, "dataset row counts to benchmark")
	benchCmd.Flags().Int64("memory-limit", 0, "memory limit in bytes (0 for default)")
	benchCmd.Flags().Int64("time-limit-ms", 0, "time limit in milliseconds (0 for default)")
	benchCmd.Flags().String("table", "", "benchmark table name")
	benchCmd.Flags().Bool("metrics", false, "enable Prometheus metrics")
	benchCmd.Flags().String("metrics-address", ":9090", "metrics server address")
	benchCmd.Flags().StringP("output", "o", "", "report output file (default stdout)")
	benchCmd.Flags().StringP("format", "f", "json", "report format (json, csv, markdown)")

	if err := viper.BindPFlags(benchCmd.Flags()); err != nil {
		panic(fmt.Errorf("failed to bind flags: %w", err))
	}
	viper.SetEnvPrefix("GAUNTLET")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().Int64("rows", 1_000_000, "estimated row count for the cost estimate")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Gauntlet\n")
			fmt.Printf("Version:    %s\n", version)
			fmt.Printf("Commit:     %s\n", commit)
			fmt.Printf("Build Date: %s\n", buildDate)
		},
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := setupLogging(viper.GetString("log-level"))
	logger.Info().
		Str("version", version).
		Msg("Starting benchmark run")

	var metricsCollector metrics.Collector
	var metricsServer *metrics.MetricsServer
	if viper.GetBool("metrics") {
		prom := metrics.NewPrometheusCollector()
		metricsCollector = prom
		metricsServer = metrics.NewMetricsServer(viper.GetString("metrics-address"), prom.Registry())
		go func() {
			logger.Info().Str("address", viper.GetString("metrics-address")).Msg("Starting metrics server")
			if err := metricsServer.Start(); err != nil {
				logger.Error().Err(err).Msg("Failed to start metrics server")
			}
		}()
	} else {
		metricsCollector = metrics.NewNoOpCollector()
	}

	executor, err := engine.NewDuckDBExecutor(viper.GetString("database"), logger)
	if err != nil {
		return fmt.Errorf("failed to create executor: %w", err)
	}
	defer executor.Close()

	suite, err := bench.NewSuite(cfg, executor, logger, metricsCollector)
	if err != nil {
		return fmt.Errorf("failed to create suite: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	results, err := suite.Run(ctx)
	if err != nil {
		return fmt.Errorf("benchmark run failed: %w", err)
	}

	stats := executor.Stats()
	logger.Info().
		Uint64("total_queries", stats.TotalQueries).
		Float64("avg_execution_time_ms", stats.AvgExecutionTimeMs).
		Str("peak_memory", bench.FormatBytes(stats.PeakMemoryBytes)).
		Str("elapsed", bench.FormatDuration(time.Since(started))).
		Msg("Benchmark run complete")

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping metrics server")
		}
	}

	return writeReport(bench.NewReport(results, started), viper.GetString("output"), viper.GetString("format"))
}

func runClassify(cmd *cobra.Command, args []string) error {
	var sql string
	if len(args) > 0 {
		sql = strings.Join(args, " ")
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read query from stdin: %w", err)
		}
		sql = string(data)
	}
	if strings.TrimSpace(sql) == "" {
		return fmt.Errorf("no query given")
	}

	rows, err := cmd.Flags().GetInt64("rows")
	if err != nil {
		return err
	}
	if rows < 0 {
		return fmt.Errorf("rows must not be negative, got %d", rows)
	}

	tier := analyzer.Classify(sql)
	subqueries := analyzer.CountSubqueries(analyzer.Normalize(sql))
	memoryBytes, timeMs := analyzer.Estimate(tier, rows)

	fmt.Printf("Tier:             %s\n", tier)
	fmt.Printf("Subqueries:       %d\n", subqueries)
	fmt.Printf("Estimated memory: %s (%d rows)\n", bench.FormatBytes(memoryBytes), rows)
	fmt.Printf("Estimated time:   %dms\n", timeMs)
	return nil
}

// loadConfig builds the benchmark config from the config file and flags.
// Flags win over file values; defaults fill the rest in Validate.
func loadConfig() (bench.Config, error) {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return bench.Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := bench.Config{
		Iterations:       viper.GetInt("iterations"),
		DatasetSizes:     viper.GetIntSlice("dataset-sizes"),
		MemoryLimitBytes: viper.GetInt64("memory-limit"),
		TimeLimitMs:      viper.GetInt64("time-limit-ms"),
		TableName:        viper.GetString("table"),
	}

	queries, err := loadQueries()
	if err != nil {
		return bench.Config{}, err
	}
	cfg.Queries = queries
	return cfg, nil
}

// loadQueries reads the workload from the config file's queries key.
// Tiers are given by name there.
func loadQueries() ([]models.BenchmarkQuery, error) {
	var raw []struct {
		Name         string  `mapstructure:"name"`
		SQL          string  `mapstructure:"sql"`
		ExpectedTier string  `mapstructure:"expected_tier"`
		MinSpeedup   float64 `mapstructure:"min_speedup"`
	}
	if err := viper.UnmarshalKey("queries", &raw); err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}

	queries := make([]models.BenchmarkQuery, 0, len(raw))
	for _, q := range raw {
		tier, err := analyzer.ParseTier(q.ExpectedTier)
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", q.Name, err)
		}
		queries = append(queries, models.BenchmarkQuery{
			Name:         q.Name,
			SQL:          q.SQL,
			ExpectedTier: tier,
			MinSpeedup:   q.MinSpeedup,
		})
	}
	return queries, nil
}

func writeReport(report *bench.Report, output, format string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "json":
		return report.WriteJSON(w)
	case "csv":
		return report.WriteCSV(w)
	case "markdown", "md":
		return report.WriteMarkdown(w)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func setupLogging(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond

	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
		zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
			short := file
			for i := len(file) - 1; i > 0; i-- {
				if file[i] == '/' {
					short = file[i+1:]
					break
				}
			}
			return fmt.Sprintf("%s:%d", short, line)
		}
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stderr).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", "gauntlet")

	if logLevel == zerolog.DebugLevel {
		logger = logger.Caller()
	}

	return logger.Logger()
}
