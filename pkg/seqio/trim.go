package seqio

import "math"

const (
	trimCutoff     = 0.05
	trimMinSegment = 20
)

// MottTrim returns the half-open window [start, end) kept by Richard Mott's
// modified trimming: each base scores cutoff - 10^(-q/10), the running sum is
// floored at zero, the window starts where the sum first stays non-negative
// after the first base and ends at the first position of the maximum sum.
// Reads of trimMinSegment bases or fewer, or without qualities, are kept whole.
func MottTrim(quals []int, n int) (start, end int) {
	if n <= trimMinSegment || len(quals) != n {
		return 0, n
	}

	cum := make([]float64, n) // cum[0] stays 0: the first base is always trimmed
	started := false
	for i := 1; i < n; i++ {
		s := cum[i-1] + trimCutoff - math.Pow(10, float64(quals[i])/-10.0)
		if s < 0 {
			continue
		}
		cum[i] = s
		if !started {
			start, started = i, true
		}
	}

	for i := 1; i < n; i++ {
		if cum[i] > cum[end] {
			end = i
		}
	}
	if end < start {
		return start, start
	}
	return start, end
}

// Trimmed applies MottTrim to the trace and returns the kept bases.
func (t *Trace) Trimmed() string {
	start, end := MottTrim(t.Qualities, len(t.Bases))
	return t.Bases[start:end]
}
