package analyzer

// Calibration table mapping tiers to per-row memory cost and
// per-thousand-row time cost.
var (
	bytesPerRow = map[Tier]int64{
		TierSimple:  100,
		TierMedium:  200,
		TierComplex: 500,
	}

	msPerThousandRows = map[Tier]int64{
		TierSimple:  1,
		TierMedium:  5,
		TierComplex: 20,
	}
)

// EstimateMemory returns the estimated memory budget in bytes for executing
// a query of the given tier over estimatedRows rows.
func EstimateMemory(tier Tier, estimatedRows int64) int64 {
	if estimatedRows < 0 {
		estimatedRows = 0
	}
	return estimatedRows * bytesPerRow[tier]
}

// EstimateTime returns the estimated execution time in milliseconds for a
// query of the given tier over estimatedRows rows, floored at 1ms.
func EstimateTime(tier Tier, estimatedRows int64) int64 {
	if estimatedRows < 0 {
		estimatedRows = 0
	}
	thousands := (estimatedRows + 999) / 1000
	ms := thousands * msPerThousandRows[tier]
	if ms < 1 {
		return 1
	}
	return ms
}

// Estimate maps a tier and row estimate to a (memory, time) budget.
func Estimate(tier Tier, estimatedRows int64) (memoryBytes, timeMs int64) {
	return EstimateMemory(tier, estimatedRows), EstimateTime(tier, estimatedRows)
}
