// Package align implements Smith-Waterman local alignment with affine gap
// costs (Gotoh's three-state formulation) and the percent-identity score
// derived from its output.
package align

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Gap is the symbol written into aligned strings where one side has no base.
const Gap = '-'

// DefaultMaxCells bounds (|query|+1)*(|reference|+1), roughly 2000 x 2000.
// Each cell costs 27 bytes across the three score and pointer arenas.
const DefaultMaxCells = 1 << 22

var (
	ErrMatrixTooLarge = errors.New("alignment matrix too large")
	// ErrGapInSequence rejects input carrying the Gap symbol, which would be
	// indistinguishable from an inserted gap in the Result.
	ErrGapInSequence = errors.New("input sequence contains the gap symbol")
)

// Traceback pointers.
const (
	fromStop uint8 = iota // M only: the alignment starts at this cell
	fromM
	fromIx
	fromIy
)

var negInf = math.Inf(-1)

// Aligner computes local alignments under a fixed, validated Scheme.
// It keeps no per-alignment state and is safe for concurrent use.
type Aligner struct {
	scheme   Scheme
	maxCells int
}

type Option func(*Aligner)

// WithMaxCells overrides DefaultMaxCells. Values <= 0 are ignored.
func WithMaxCells(n int) Option {
	return func(a *Aligner) {
		if n > 0 {
			a.maxCells = n
		}
	}
}

// NewAligner validates the scheme once; Align never fails on a bad scheme afterwards.
func NewAligner(scheme Scheme, opts ...Option) (*Aligner, error) {
	if err := scheme.Validate(); err != nil {
		return nil, err
	}
	a := &Aligner{scheme: scheme, maxCells: DefaultMaxCells}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Aligner) Scheme() Scheme { return a.scheme }

// matrices is the arena for one alignment: row-major (rows = query, cols = reference).
type matrices struct {
	cols       int
	m, ix, iy  []float64
	pm, pX, pY []uint8
}

func newMatrices(rows, cols int) *matrices {
	n := rows * cols
	return &matrices{
		cols: cols,
		m:    make([]float64, n),
		ix:   make([]float64, n),
		iy:   make([]float64, n),
		pm:   make([]uint8, n),
		pX:   make([]uint8, n),
		pY:   make([]uint8, n),
	}
}

func (mx *matrices) at(i, j int) int { return i*mx.cols + j }

// Align returns the single highest-scoring local alignment of query against reference.
//
// When several cells share the optimal score, the one with the smallest query
// index and then the smallest reference index wins (earliest row-major cell);
// inside a cell M is preferred over Ix over Iy. During traceback a predecessor
// tie prefers ending the alignment, then M, Ix, Iy. An empty input, or one with
// no positive-scoring cell, gives an empty Result with all offsets at zero.
// Input containing Gap fails with ErrGapInSequence.
func (a *Aligner) Align(query, reference string) (*Result, error) {
	q := strings.ToUpper(query)
	r := strings.ToUpper(reference)

	if strings.IndexByte(q, Gap) >= 0 || strings.IndexByte(r, Gap) >= 0 {
		return nil, fmt.Errorf("%w: '%c'", ErrGapInSequence, Gap)
	}

	if len(q) == 0 || len(r) == 0 {
		return &Result{}, nil
	}

	rows, cols := len(q)+1, len(r)+1
	if rows > a.maxCells/cols {
		return nil, fmt.Errorf("%w: %d x %d cells exceeds %d", ErrMatrixTooLarge, rows, cols, a.maxCells)
	}

	mx := newMatrices(rows, cols)
	s := a.scheme

	for j := 0; j < cols; j++ {
		mx.ix[j], mx.iy[j] = negInf, negInf
	}

	best, bi, bj := 0.0, 0, 0
	for i := 1; i < rows; i++ {
		row := mx.at(i, 0)
		mx.ix[row], mx.iy[row] = negInf, negInf

		for j := 1; j < cols; j++ {
			k := row + j
			diag := k - cols - 1
			up := k - cols
			left := k - 1

			// M
			pre, ptr := 0.0, fromStop
			if mx.m[diag] > pre {
				pre, ptr = mx.m[diag], fromM
			}
			if mx.ix[diag] > pre {
				pre, ptr = mx.ix[diag], fromIx
			}
			if mx.iy[diag] > pre {
				pre, ptr = mx.iy[diag], fromIy
			}
			mx.m[k] = pre + s.substitution(q[i-1], r[j-1])
			mx.pm[k] = ptr

			// Ix: query base against a gap
			open, ext := mx.m[up]+s.GapOpen, mx.ix[up]+s.GapExtend
			if open >= ext {
				mx.ix[k], mx.pX[k] = open, fromM
			} else {
				mx.ix[k], mx.pX[k] = ext, fromIx
			}

			// Iy: gap against a reference base
			open, ext = mx.m[left]+s.GapOpen, mx.iy[left]+s.GapExtend
			if open >= ext {
				mx.iy[k], mx.pY[k] = open, fromM
			} else {
				mx.iy[k], mx.pY[k] = ext, fromIy
			}

			if v := cellMax(mx, k); v > best {
				best, bi, bj = v, i, j
			}
		}
	}

	if best <= 0 {
		return &Result{}, nil
	}
	return traceback(mx, q, r, bi, bj, best), nil
}

func cellMax(mx *matrices, k int) float64 {
	return math.Max(mx.m[k], math.Max(mx.ix[k], mx.iy[k]))
}

func traceback(mx *matrices, q, r string, endI, endJ int, score float64) *Result {
	k := mx.at(endI, endJ)
	state := fromM
	switch {
	case mx.m[k] == score:
	case mx.ix[k] == score:
		state = fromIx
	default:
		state = fromIy
	}

	// Pairs are collected end-first and reversed at the end.
	aq := make([]byte, 0, endI+endJ)
	ar := make([]byte, 0, endI+endJ)

	i, j := endI, endJ
	for i > 0 && j > 0 {
		k = mx.at(i, j)
		switch state {
		case fromM:
			aq = append(aq, q[i-1])
			ar = append(ar, r[j-1])
			state = mx.pm[k]
			i--
			j--
		case fromIx:
			aq = append(aq, q[i-1])
			ar = append(ar, Gap)
			state = mx.pX[k]
			i--
		case fromIy:
			aq = append(aq, Gap)
			ar = append(ar, r[j-1])
			state = mx.pY[k]
			j--
		}
		if state == fromStop {
			break
		}
	}

	reverse(aq)
	reverse(ar)

	return &Result{
		AlignedQuery:     string(aq),
		AlignedReference: string(ar),
		Score:            score,
		QueryStart:       i,
		QueryEnd:         endI,
		RefStart:         j,
		RefEnd:           endJ,
	}
}

func reverse(b []byte) {
	for l, r := 0, len(b)-1; l < r; l, r = l+1, r-1 {
		b[l], b[r] = b[r], b[l]
	}
}
