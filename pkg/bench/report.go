package bench

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/TFMV/gauntlet/pkg/models"
)

// Report is the serializable outcome of one benchmark run.
type Report struct {
	RunID     uuid.UUID                `json:"run_id"`
	StartedAt time.Time                `json:"started_at"`
	Duration  time.Duration            `json:"duration"`
	Results   []models.BenchmarkResult `json:"results"`
}

// NewReport stamps the results with a fresh run ID.
func NewReport(results []models.BenchmarkResult, startedAt time.Time) *Report {
	return &Report{
		RunID:     uuid.New(),
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Results:   results,
	}
}

// WriteJSON writes the report to w in indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteCSV writes one row per (query, dataset size) pair.
func (r *Report) WriteCSV(w io.Writer) error {
	c := csv.NewWriter(w)
	header := []string{
		"query", "dataset_size", "samples", "avg_time_ms", "avg_memory_bytes",
		"avg_speedup", "success_rate", "meets_requirements",
	}
	if err := c.Write(header); err != nil {
		return err
	}
	for _, res := range r.Results {
		avgTime, avgMemory := averages(res.Samples)
		record := []string{
			res.Query.Name,
			fmt.Sprintf("%d", res.DatasetSize),
			fmt.Sprintf("%d", len(res.Samples)),
			fmt.Sprintf("%.2f", avgTime),
			fmt.Sprintf("%.0f", avgMemory),
			fmt.Sprintf("%.2f", res.Metrics.AvgSpeedup),
			fmt.Sprintf("%.2f", res.Metrics.SuccessRate),
			fmt.Sprintf("%t", res.Metrics.MeetsRequirements),
		}
		if err := c.Write(record); err != nil {
			return err
		}
	}
	c.Flush()
	return c.Error()
}

// WriteMarkdown renders the report as a simple Markdown table.
func (r *Report) WriteMarkdown(w io.Writer) error {
	fmt.Fprintf(w, "# Benchmark Report %s\n\n", r.RunID)
	fmt.Fprintf(w, "Started %s, took %s.\n\n", r.StartedAt.Format(time.RFC3339), FormatDuration(r.Duration))

	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintf(tw, "Query\tRows\tAvg Time\tAvg Memory\tSpeedup\tSuccess\tPass\n")
	fmt.Fprintf(tw, "-----\t----\t--------\t----------\t-------\t-------\t----\n")
	for _, res := range r.Results {
		avgTime, avgMemory := averages(res.Samples)
		fmt.Fprintf(tw, "%s\t%d\t%.2fms\t%s\t%.2fx\t%.0f%%\t%t\n",
			res.Query.Name,
			res.DatasetSize,
			avgTime,
			FormatBytes(int64(avgMemory)),
			res.Metrics.AvgSpeedup,
			res.Metrics.SuccessRate*100,
			res.Metrics.MeetsRequirements,
		)
	}
	return tw.Flush()
}

func averages(samples []models.QueryPerformance) (timeMs, memory float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	for _, s := range samples {
		timeMs += float64(s.ExecutionTimeMs)
		memory += float64(s.MemoryUsedBytes)
	}
	n := float64(len(samples))
	return timeMs / n, memory / n
}
