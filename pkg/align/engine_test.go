package align

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultAligner(t *testing.T) *Aligner {
	t.Helper()
	a, err := NewAligner(DefaultScheme())
	require.NoError(t, err)
	return a
}

func TestAlignScenarios(t *testing.T) {
	tests := []struct {
		name         string
		query, ref   string
		wantScore    float64
		wantIdentity float64
		wantQuery    string
		wantRef      string
		wantQStart   int
		wantQEnd     int
		wantRStart   int
		wantREnd     int
	}{
		{
			name:  "identical",
			query: "ACGT", ref: "ACGT",
			wantScore: 8, wantIdentity: 100,
			wantQuery: "ACGT", wantRef: "ACGT",
			wantQEnd: 4, wantREnd: 4,
		},
		{
			name:  "single mismatch",
			query: "ACGT", ref: "ACCT",
			wantScore: 5, wantIdentity: 75,
			wantQuery: "ACGT", wantRef: "ACCT",
			wantQEnd: 4, wantREnd: 4,
		},
		{
			name:  "empty query",
			query: "", ref: "ACGT",
			wantScore: 0, wantIdentity: 0,
		},
		{
			name:  "empty reference",
			query: "ACGT", ref: "",
			wantScore: 0, wantIdentity: 0,
		},
		{
			name:  "local hit inside flanks",
			query: "AAAACGTAAAA", ref: "CGT",
			wantScore: 6, wantIdentity: 100,
			wantQuery: "CGT", wantRef: "CGT",
			wantQStart: 4, wantQEnd: 7, wantRStart: 0, wantREnd: 3,
		},
		{
			name:  "no positive cell",
			query: "AAAA", ref: "CCCC",
			wantScore: 0, wantIdentity: 0,
		},
		{
			name:  "lower case input",
			query: "acgt", ref: "ACGT",
			wantScore: 8, wantIdentity: 100,
			wantQuery: "ACGT", wantRef: "ACGT",
			wantQEnd: 4, wantREnd: 4,
		},
		{
			name:      "affine gap in query",
			query:     "AAAAAAAAAACCCCCCCCCC",
			ref:       "AAAAAAAAAAGTGCCCCCCCCCC",
			wantScore: 34, wantIdentity: 100,
			wantQuery: "AAAAAAAAAA---CCCCCCCCCC",
			wantRef:   "AAAAAAAAAAGTGCCCCCCCCCC",
			wantQEnd:  20, wantREnd: 23,
		},
		{
			name:      "affine gap in reference",
			query:     "AAAAAAAAAAGTGCCCCCCCCCC",
			ref:       "AAAAAAAAAACCCCCCCCCC",
			wantScore: 34, wantIdentity: 100,
			wantQuery: "AAAAAAAAAAGTGCCCCCCCCCC",
			wantRef:   "AAAAAAAAAA---CCCCCCCCCC",
			wantQEnd:  23, wantREnd: 20,
		},
	}

	a := newDefaultAligner(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := a.Align(tt.query, tt.ref)
			require.NoError(t, err)

			assert.Equal(t, tt.wantScore, res.Score)
			assert.InDelta(t, tt.wantIdentity, res.PercentIdentity(), 1e-9)
			assert.Equal(t, tt.wantQuery, res.AlignedQuery)
			assert.Equal(t, tt.wantRef, res.AlignedReference)
			assert.Equal(t, tt.wantQStart, res.QueryStart)
			assert.Equal(t, tt.wantQEnd, res.QueryEnd)
			assert.Equal(t, tt.wantRStart, res.RefStart)
			assert.Equal(t, tt.wantREnd, res.RefEnd)
		})
	}
}

func TestAlignEarliestOptimalCell(t *testing.T) {
	a := newDefaultAligner(t)

	res, err := a.Align("ACGT", "ACGTTTACGT")
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Score)
	assert.Equal(t, 0, res.RefStart)
	assert.Equal(t, 4, res.RefEnd)

	res, err = a.Align("ACGTTTACGT", "ACGT")
	require.NoError(t, err)
	assert.Equal(t, 0, res.QueryStart)
	assert.Equal(t, 4, res.QueryEnd)
}

func TestAlignNPolicy(t *testing.T) {
	symbol := newDefaultAligner(t)
	res, err := symbol.Align("ANGT", "ACGT")
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Score)

	res, err = symbol.Align("ANGT", "ANGT")
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Score)

	scheme := DefaultScheme()
	scheme.NPolicy = NWildcard
	wild, err := NewAligner(scheme)
	require.NoError(t, err)

	res, err = wild.Align("ANGT", "ACGT")
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Score)
	// identity is plain symbol equality under either policy
	assert.InDelta(t, 75.0, res.PercentIdentity(), 1e-9)
}

func TestAlignOutOfAlphabetSymbols(t *testing.T) {
	a := newDefaultAligner(t)
	res, err := a.Align("ACXT", "ACXT")
	require.NoError(t, err)
	assert.Equal(t, 8.0, res.Score)

	res, err = a.Align("ACXT", "ACYT")
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Score)
}

func TestAlignMatrixTooLarge(t *testing.T) {
	a, err := NewAligner(DefaultScheme(), WithMaxCells(10))
	require.NoError(t, err)

	_, err = a.Align("ACGTA", "ACGTA")
	require.ErrorIs(t, err, ErrMatrixTooLarge)

	// empty input never allocates
	res, err := a.Align("", strings.Repeat("A", 100))
	require.NoError(t, err)
	assert.True(t, res.Empty())
}

func TestAlignRejectsGapSymbol(t *testing.T) {
	a := newDefaultAligner(t)

	_, err := a.Align("ACG--TACGT", "ACGTACGT")
	require.ErrorIs(t, err, ErrGapInSequence)

	_, err = a.Align("ACGT", "AC-GT")
	require.ErrorIs(t, err, ErrGapInSequence)
}

func TestDefaultMaxCellsFitsSangerReads(t *testing.T) {
	a := newDefaultAligner(t)
	read := strings.Repeat("ACGT", 400)

	res, err := a.Align(read, read)
	require.NoError(t, err)
	assert.Equal(t, 3200.0, res.Score)

	long := strings.Repeat("ACGT", 1024)
	_, err = a.Align(long, long)
	require.ErrorIs(t, err, ErrMatrixTooLarge)
}

func TestNewAlignerRejectsBadScheme(t *testing.T) {
	s := DefaultScheme()
	s.Match = 0
	_, err := NewAligner(s)
	require.ErrorIs(t, err, ErrInvalidScheme)
}

// rescore recomputes an alignment's score column by column.
func rescore(s Scheme, aq, ar string) float64 {
	total := 0.0
	var prev byte // 'x' gap in reference, 'y' gap in query
	for i := 0; i < len(aq); i++ {
		switch {
		case ar[i] == Gap:
			if prev == 'x' {
				total += s.GapExtend
			} else {
				total += s.GapOpen
			}
			prev = 'x'
		case aq[i] == Gap:
			if prev == 'y' {
				total += s.GapExtend
			} else {
				total += s.GapOpen
			}
			prev = 'y'
		default:
			total += s.substitution(aq[i], ar[i])
			prev = 0
		}
	}
	return total
}

func ungap(s string) string {
	return strings.ReplaceAll(s, string(Gap), "")
}

func randomSeq(rng *rand.Rand, n int) string {
	const alphabet = "ACGTN"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}

func TestAlignProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := newDefaultAligner(t)
	scheme := a.Scheme()

	for n := 0; n < 300; n++ {
		q := randomSeq(rng, rng.Intn(40))
		r := randomSeq(rng, rng.Intn(40))

		res, err := a.Align(q, r)
		require.NoError(t, err)

		require.Equal(t, len(res.AlignedQuery), len(res.AlignedReference), "q=%s r=%s", q, r)
		require.GreaterOrEqual(t, res.Score, 0.0)

		for i := 0; i < res.Len(); i++ {
			require.False(t, res.AlignedQuery[i] == Gap && res.AlignedReference[i] == Gap)
		}
		require.Equal(t, q[res.QueryStart:res.QueryEnd], ungap(res.AlignedQuery))
		require.Equal(t, r[res.RefStart:res.RefEnd], ungap(res.AlignedReference))
		require.InDelta(t, res.Score, rescore(scheme, res.AlignedQuery, res.AlignedReference), 1e-9)

		swapped, err := a.Align(r, q)
		require.NoError(t, err)
		require.Equal(t, res.Score, swapped.Score, "score must not depend on argument order")

		self, err := a.Align(q, q)
		require.NoError(t, err)
		require.Equal(t, scheme.Match*float64(len(q)), self.Score)
		if len(q) > 0 {
			require.Equal(t, 100.0, self.PercentIdentity())
		}
	}
}

func TestIdentitySymmetric(t *testing.T) {
	a := newDefaultAligner(t)
	pairs := [][2]string{
		{"ACGT", "ACCT"},
		{"AAAACGTAAAA", "CGT"},
		{"AAAAAAAAAACCCCCCCCCC", "AAAAAAAAAAGTGCCCCCCCCCC"},
		{"GATTACAGATTACA", "GATTTCAGATTACA"},
	}
	for _, p := range pairs {
		fwd, err := a.Align(p[0], p[1])
		require.NoError(t, err)
		rev, err := a.Align(p[1], p[0])
		require.NoError(t, err)
		assert.InDelta(t, fwd.PercentIdentity(), rev.PercentIdentity(), 1e-9, "%s vs %s", p[0], p[1])
	}
}
