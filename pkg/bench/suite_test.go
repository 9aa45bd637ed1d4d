package bench

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/gauntlet/pkg/analyzer"
	"github.com/TFMV/gauntlet/pkg/errors"
	"github.com/TFMV/gauntlet/pkg/models"
)

type outcome struct {
	res *models.ExecutionResult
	err error
}

// fakeExecutor replays scripted outcomes per query and records call order.
type fakeExecutor struct {
	script      map[string][]outcome
	registered  []string
	executed    []string
	registerErr error
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{script: make(map[string][]outcome)}
}

func (f *fakeExecutor) queue(sql string, o outcome) {
	f.script[sql] = append(f.script[sql], o)
}

func (f *fakeExecutor) Execute(_ context.Context, sql string) (*models.ExecutionResult, error) {
	f.executed = append(f.executed, sql)
	queued := f.script[sql]
	if len(queued) == 0 {
		return &models.ExecutionResult{Rows: 100, ExecutionTimeMs: 10, MemoryUsedBytes: 1 << 20}, nil
	}
	next := queued[0]
	f.script[sql] = queued[1:]
	return next.res, next.err
}

func (f *fakeExecutor) RegisterTable(_ context.Context, name string, rows int) error {
	if f.registerErr != nil {
		return f.registerErr
	}
	f.registered = append(f.registered, fmt.Sprintf("%s:%d", name, rows))
	return nil
}

func (f *fakeExecutor) Stats() models.EngineStats { return models.EngineStats{} }
func (f *fakeExecutor) Close() error              { return nil }

func singleQueryConfig(tier analyzer.Tier, minSpeedup float64) Config {
	return Config{
		Iterations:   5,
		DatasetSizes: []int{1000},
		Queries: []models.BenchmarkQuery{
			{Name: "probe", SQL: "SELECT COUNT(*) FROM t", ExpectedTier: tier, MinSpeedup: minSpeedup},
		},
		MemoryLimitBytes: 2 << 30,
		TimeLimitMs:      100,
		TableName:        "t",
	}
}

func TestSuiteRun_AllIterationsSucceed(t *testing.T) {
	exec := newFakeExecutor()
	suite, err := NewSuite(singleQueryConfig(analyzer.TierSimple, 5.0), exec, zerolog.Nop(), nil)
	require.NoError(t, err)

	results, err := suite.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Len(t, res.Samples, 5)
	assert.Equal(t, 1.0, res.Metrics.SuccessRate)
	assert.InDelta(t, 5.0, res.Metrics.AvgSpeedup, 1e-9)
	assert.Equal(t, res.Metrics.AvgSpeedup, res.Metrics.ThroughputImprovement)
	assert.Equal(t, 1.0, res.Metrics.MemoryEfficiency)
	assert.True(t, res.Metrics.MeetsRequirements)
}

func TestSuiteRun_PartialFailures(t *testing.T) {
	exec := newFakeExecutor()
	sql := "SELECT COUNT(*) FROM t"
	ok := outcome{res: &models.ExecutionResult{Rows: 100, ExecutionTimeMs: 20, MemoryUsedBytes: 1 << 20}}
	fail := outcome{err: errors.New(errors.CodeQueryFailed, "boom")}
	for _, o := range []outcome{ok, fail, ok, fail, ok} {
		exec.queue(sql, o)
	}

	suite, err := NewSuite(singleQueryConfig(analyzer.TierMedium, 8.0), exec, zerolog.Nop(), nil)
	require.NoError(t, err)

	results, err := suite.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Len(t, res.Samples, 3)
	assert.InDelta(t, 0.6, res.Metrics.SuccessRate, 1e-9)
	assert.InDelta(t, 8.0, res.Metrics.AvgSpeedup, 1e-9)
	assert.True(t, res.Metrics.MeetsRequirements)
}

func TestSuiteRun_AllIterationsFail(t *testing.T) {
	exec := newFakeExecutor()
	sql := "SELECT COUNT(*) FROM t"
	for i := 0; i < 5; i++ {
		exec.queue(sql, outcome{err: errors.New(errors.CodeQueryFailed, "boom")})
	}

	suite, err := NewSuite(singleQueryConfig(analyzer.TierSimple, 5.0), exec, zerolog.Nop(), nil)
	require.NoError(t, err)

	results, err := suite.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, errors.IsAggregationFailure(err))
	assert.Equal(t, errors.CodeAggregationFailed, errors.GetCode(err))
}

func TestSuiteRun_Ordering(t *testing.T) {
	exec := newFakeExecutor()
	cfg := Config{
		Iterations:   1,
		DatasetSizes: []int{10, 20},
		Queries: []models.BenchmarkQuery{
			{Name: "first", SQL: "SELECT 1", ExpectedTier: analyzer.TierSimple, MinSpeedup: 1},
			{Name: "second", SQL: "SELECT 2", ExpectedTier: analyzer.TierSimple, MinSpeedup: 1},
		},
		MemoryLimitBytes: 2 << 30,
		TimeLimitMs:      100,
		TableName:        "t",
	}

	suite, err := NewSuite(cfg, exec, zerolog.Nop(), nil)
	require.NoError(t, err)

	results, err := suite.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"t:10", "t:20"}, exec.registered)
	assert.Equal(t, []string{"SELECT 1", "SELECT 2", "SELECT 1", "SELECT 2"}, exec.executed)

	require.Len(t, results, 4)
	assert.Equal(t, "first", results[0].Query.Name)
	assert.Equal(t, 10, results[0].DatasetSize)
	assert.Equal(t, "second", results[1].Query.Name)
	assert.Equal(t, 10, results[1].DatasetSize)
	assert.Equal(t, "first", results[2].Query.Name)
	assert.Equal(t, 20, results[2].DatasetSize)
	assert.Equal(t, "second", results[3].Query.Name)
	assert.Equal(t, 20, results[3].DatasetSize)
}

func TestSuiteRun_RegisterFailureAborts(t *testing.T) {
	exec := newFakeExecutor()
	exec.registerErr = errors.New(errors.CodeConnectionFailed, "database gone")

	suite, err := NewSuite(singleQueryConfig(analyzer.TierSimple, 5.0), exec, zerolog.Nop(), nil)
	require.NoError(t, err)

	results, err := suite.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, results)
	assert.Empty(t, exec.executed)
}

func TestSuiteRun_TimeLimitFailsRequirements(t *testing.T) {
	exec := newFakeExecutor()
	sql := "SELECT COUNT(*) FROM t"
	for i := 0; i < 5; i++ {
		exec.queue(sql, outcome{res: &models.ExecutionResult{Rows: 100, ExecutionTimeMs: 200, MemoryUsedBytes: 1 << 20}})
	}

	suite, err := NewSuite(singleQueryConfig(analyzer.TierSimple, 5.0), exec, zerolog.Nop(), nil)
	require.NoError(t, err)

	results, err := suite.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.False(t, results[0].Metrics.MeetsRequirements)
}

func TestNewSuite_NilExecutor(t *testing.T) {
	_, err := NewSuite(DefaultConfig(), nil, zerolog.Nop(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}
