package align

import (
	"fmt"
	"strings"
)

// Result is one local alignment. Offsets are 0-based and half open into the
// original (unaligned) sequences.
type Result struct {
	AlignedQuery     string  `json:"aligned_query"`
	AlignedReference string  `json:"aligned_reference"`
	Score            float64 `json:"score"`
	QueryStart       int     `json:"query_start"`
	QueryEnd         int     `json:"query_end"`
	RefStart         int     `json:"ref_start"`
	RefEnd           int     `json:"ref_end"`
}

func (r *Result) Len() int { return len(r.AlignedQuery) }

func (r *Result) Empty() bool { return len(r.AlignedQuery) == 0 }

// PercentIdentity of the aligned region, see PercentIdentity.
func (r *Result) PercentIdentity() float64 {
	return PercentIdentity(r.AlignedQuery, r.AlignedReference)
}

// CIGAR uses the extended operators: '=' match, 'X' mismatch,
// 'I' query base against a gap, 'D' reference base against a gap.
func (r *Result) CIGAR() string {
	var (
		b     strings.Builder
		op    byte
		count int
	)
	flush := func() {
		if count > 0 {
			fmt.Fprintf(&b, "%d%c", count, op)
		}
	}
	for i := 0; i < len(r.AlignedQuery); i++ {
		qc, rc := r.AlignedQuery[i], r.AlignedReference[i]
		var cur byte
		switch {
		case rc == Gap:
			cur = 'I'
		case qc == Gap:
			cur = 'D'
		case equalFold(qc, rc):
			cur = '='
		default:
			cur = 'X'
		}
		if cur != op {
			flush()
			op, count = cur, 0
		}
		count++
	}
	flush()
	return b.String()
}

// Format renders the alignment as query / match bar / reference lines with
// 1-based start coordinates, followed by the score.
func (r *Result) Format() string {
	if r.Empty() {
		return fmt.Sprintf("(no local alignment)\n  Score=%g\n", r.Score)
	}

	var bar strings.Builder
	for i := 0; i < len(r.AlignedQuery); i++ {
		qc, rc := r.AlignedQuery[i], r.AlignedReference[i]
		switch {
		case qc == Gap || rc == Gap:
			bar.WriteByte(' ')
		case equalFold(qc, rc):
			bar.WriteByte('|')
		default:
			bar.WriteByte('.')
		}
	}

	qLabel := fmt.Sprintf("%d ", r.QueryStart+1)
	rLabel := fmt.Sprintf("%d ", r.RefStart+1)
	width := len(qLabel)
	if len(rLabel) > width {
		width = len(rLabel)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s%s\n", width, qLabel, r.AlignedQuery)
	fmt.Fprintf(&b, "%-*s%s\n", width, "", bar.String())
	fmt.Fprintf(&b, "%-*s%s\n", width, rLabel, r.AlignedReference)
	fmt.Fprintf(&b, "  Score=%g\n", r.Score)
	return b.String()
}
