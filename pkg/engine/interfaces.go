// Package engine defines the execution collaborator contract and its
// DuckDB-backed implementation.
package engine

import (
	"context"

	"github.com/TFMV/gauntlet/pkg/models"
)

// Executor is the execution collaborator the benchmark harness drives.
// Execute must be safely repeatable across iterations; implementations may
// accumulate observability-only counters but no correctness-affecting state.
type Executor interface {
	// Execute runs a query and reports rows, time, and memory used.
	Execute(ctx context.Context, query string) (*models.ExecutionResult, error)

	// RegisterTable prepares a synthetic dataset of the given row count
	// under the given name. Registering zero rows is a typed failure,
	// never a silent success.
	RegisterTable(ctx context.Context, name string, rows int) error

	// Stats returns the executor's accumulated counters.
	Stats() models.EngineStats

	// Close releases the executor's resources.
	Close() error
}
