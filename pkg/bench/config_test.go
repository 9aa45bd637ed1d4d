package bench

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/gauntlet/pkg/errors"
)

func TestConfigValidate_FillsDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 5, cfg.Iterations)
	assert.Equal(t, []int{10_000, 100_000, 1_000_000}, cfg.DatasetSizes)
	require.Len(t, cfg.Queries, 3)
	assert.Equal(t, "simple_aggregation", cfg.Queries[0].Name)
	assert.Equal(t, "group_by_aggregation", cfg.Queries[1].Name)
	assert.Equal(t, "complex_analytics", cfg.Queries[2].Name)
	assert.Equal(t, int64(2*1024*1024*1024), cfg.MemoryLimitBytes)
	assert.Equal(t, int64(100), cfg.TimeLimitMs)
	assert.Equal(t, "benchmark_data", cfg.TableName)
}

func TestConfigValidate_KeepsExplicitValues(t *testing.T) {
	cfg := Config{Iterations: 2, DatasetSizes: []int{50}, TimeLimitMs: 500}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2, cfg.Iterations)
	assert.Equal(t, []int{50}, cfg.DatasetSizes)
	assert.Equal(t, int64(500), cfg.TimeLimitMs)
}

func TestConfigValidate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative iterations", Config{Iterations: -1}},
		{"zero dataset size", Config{DatasetSizes: []int{0}}},
		{"negative memory limit", Config{MemoryLimitBytes: -5}},
		{"negative time limit", Config{TimeLimitMs: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
		})
	}
}
