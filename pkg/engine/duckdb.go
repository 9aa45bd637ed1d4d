package engine

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	_ "github.com/marcboeker/go-duckdb/v2"
	"github.com/rs/zerolog"

	"github.com/TFMV/gauntlet/pkg/errors"
	"github.com/TFMV/gauntlet/pkg/infrastructure/converter"
	gmemory "github.com/TFMV/gauntlet/pkg/infrastructure/memory"
	"github.com/TFMV/gauntlet/pkg/models"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DuckDBExecutor runs queries against an embedded DuckDB database and
// materializes results through Arrow so memory usage is observable.
type DuckDBExecutor struct {
	db     *sql.DB
	alloc  *gmemory.TrackedAllocator
	logger zerolog.Logger

	// mu serializes executions so the allocator's peak reflects a single
	// query and stats updates stay consistent.
	mu          sync.Mutex
	totalTimeMs int64
	stats       models.EngineStats
	tables      map[string]int
}

// NewDuckDBExecutor opens a DuckDB database at the given DSN. An empty DSN
// opens an in-memory database.
func NewDuckDBExecutor(dsn string, logger zerolog.Logger) (*DuckDBExecutor, error) {
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConnectionFailed, "failed to open database")
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.CodeConnectionFailed, "failed to connect to database")
	}

	return &DuckDBExecutor{
		db:     db,
		alloc:  gmemory.NewTrackedAllocator(memory.NewGoAllocator()),
		logger: logger.With().Str("component", "duckdb-executor").Logger(),
		tables: make(map[string]int),
	}, nil
}

// RegisterTable creates or replaces a synthetic dataset with the given row
// count. The schema mirrors the benchmark workload: a sequential id, a
// uniform value, one of a hundred categories, an amount, a timestamp spread
// over a year, and a boolean flag.
func (e *DuckDBExecutor) RegisterTable(ctx context.Context, name string, rows int) error {
	if rows <= 0 {
		return errors.Newf(errors.CodeInvalidRequest, "cannot register empty dataset %q: %d rows", name, rows)
	}
	if !identifierPattern.MatchString(name) {
		return errors.Newf(errors.CodeInvalidRequest, "invalid table name %q", name)
	}

	ddl := fmt.Sprintf(`CREATE OR REPLACE TABLE %s AS
SELECT
    range AS id,
    random() * 1000.0 AS value,
    'category_' || (range %% 100) AS category,
    round(random() * 9900 + 100, 2)::DOUBLE AS amount,
    TIMESTAMP '2021-01-01' + CAST(random() * 31536000 AS BIGINT) * INTERVAL 1 SECOND AS ts,
    random() < 0.5 AS flag
FROM range(%d)`, name, rows)

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	if _, err := e.db.ExecContext(ctx, ddl); err != nil {
		return wrapQueryError(ctx, err, "failed to register table "+name)
	}
	e.tables[name] = rows
	e.stats.RegisteredTables = len(e.tables)

	e.logger.Info().
		Str("table", name).
		Int("rows", rows).
		Dur("elapsed", time.Since(start)).
		Msg("registered benchmark table")
	return nil
}

// Execute runs a query, drains the full result set into Arrow records, and
// reports row count, wall time, and the allocator's peak during the scan.
func (e *DuckDBExecutor) Execute(ctx context.Context, query string) (*models.ExecutionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapQueryError(ctx, err, "failed to execute query")
	}

	e.alloc.ResetPeak()
	reader, err := converter.NewBatchReader(e.alloc, rows, e.logger)
	if err != nil {
		rows.Close()
		return nil, errors.Wrap(err, errors.CodeQueryFailed, "failed to read result schema")
	}

	var total int64
	for reader.Next() {
		total += reader.Record().NumRows()
	}
	readErr := reader.Err()
	reader.Release()
	if readErr != nil {
		return nil, wrapQueryError(ctx, readErr, "failed to scan query results")
	}

	elapsed := time.Since(start)
	result := &models.ExecutionResult{
		Rows:            total,
		ExecutionTimeMs: elapsed.Milliseconds(),
		MemoryUsedBytes: e.alloc.PeakBytes(),
	}

	e.stats.TotalQueries++
	e.totalTimeMs += result.ExecutionTimeMs
	e.stats.AvgExecutionTimeMs = float64(e.totalTimeMs) / float64(e.stats.TotalQueries)
	if result.MemoryUsedBytes > e.stats.PeakMemoryBytes {
		e.stats.PeakMemoryBytes = result.MemoryUsedBytes
	}

	e.logger.Debug().
		Int64("rows", total).
		Dur("elapsed", elapsed).
		Int64("memory_bytes", result.MemoryUsedBytes).
		Msg("query executed")
	return result, nil
}

// Stats returns a snapshot of the executor's counters.
func (e *DuckDBExecutor) Stats() models.EngineStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Close shuts down the underlying database.
func (e *DuckDBExecutor) Close() error {
	return e.db.Close()
}

// wrapQueryError maps driver failures onto typed codes so callers can react
// to timeouts, missing tables, and memory pressure without string matching.
func wrapQueryError(ctx context.Context, err error, message string) error {
	if ctx.Err() == context.DeadlineExceeded {
		return errors.Wrap(err, errors.CodeDeadlineExceeded, message)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "does not exist"):
		return errors.Wrap(err, errors.CodeTableNotFound, message)
	case strings.Contains(msg, "out of memory"):
		return errors.Wrap(err, errors.CodeMemoryExceeded, message)
	default:
		return errors.Wrap(err, errors.CodeQueryFailed, message)
	}
}
