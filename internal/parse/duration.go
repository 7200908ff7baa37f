package parse

import "sort"

// MaxGapMs caps each inter-event gap so idle time between resumes is not counted.
const MaxGapMs = 5 * 60 * 1000

// EstimateDuration returns active milliseconds across timestamps: the sum of
// consecutive gaps with each gap capped at MaxGapMs. Callers drop
// non-positive timestamps first.
func EstimateDuration(timestampsMs []int64) int64 {
	if len(timestampsMs) < 2 {
		return 0
	}
	sorted := make([]int64, len(timestampsMs))
	copy(sorted, timestampsMs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total int64
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i] - sorted[i-1]
		if gap > MaxGapMs {
			gap = MaxGapMs
		}
		total += gap
	}
	return total
}
