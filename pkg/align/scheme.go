package align

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidScheme is returned for a scoring scheme that cannot drive a local alignment.
var ErrInvalidScheme = errors.New("invalid scoring scheme")

// NPolicy decides how the ambiguous base N is scored.
type NPolicy int

const (
	// NSymbol treats N as an ordinary symbol: it only matches another N.
	NSymbol NPolicy = iota
	// NWildcard scores N as a match against any base.
	NWildcard
)

func (p NPolicy) String() string {
	switch p {
	case NSymbol:
		return "symbol"
	case NWildcard:
		return "wildcard"
	default:
		return fmt.Sprintf("NPolicy(%d)", int(p))
	}
}

// ParseNPolicy accepts "symbol" or "wildcard" (case-insensitive).
func ParseNPolicy(s string) (NPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "symbol":
		return NSymbol, nil
	case "wildcard":
		return NWildcard, nil
	default:
		return NSymbol, fmt.Errorf("%w: unknown n_policy %q", ErrInvalidScheme, s)
	}
}

// Scheme holds the substitution scores and affine gap costs of one alignment.
// Penalties are expressed as non-positive numbers that are added to the score.
type Scheme struct {
	Match     float64 `json:"match" mapstructure:"match"`
	Mismatch  float64 `json:"mismatch" mapstructure:"mismatch"`
	GapOpen   float64 `json:"gap_open" mapstructure:"gap_open"`
	GapExtend float64 `json:"gap_extend" mapstructure:"gap_extend"`
	NPolicy   NPolicy `json:"-" mapstructure:"-"`
}

// DefaultScheme is {match: 2, mismatch: -1, gap_open: -5, gap_extend: -0.5}.
func DefaultScheme() Scheme {
	return Scheme{
		Match:     2,
		Mismatch:  -1,
		GapOpen:   -5,
		GapExtend: -0.5,
		NPolicy:   NSymbol,
	}
}

// Validate reports the first parameter that makes the scheme unusable.
func (s Scheme) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"match", s.Match},
		{"mismatch", s.Mismatch},
		{"gap_open", s.GapOpen},
		{"gap_extend", s.GapExtend},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidScheme, f.name, f.value)
		}
	}

	switch {
	case s.Match <= 0:
		return fmt.Errorf("%w: match must be > 0, got %v", ErrInvalidScheme, s.Match)
	case s.Mismatch > 0:
		return fmt.Errorf("%w: mismatch must be <= 0, got %v", ErrInvalidScheme, s.Mismatch)
	case s.GapOpen > 0:
		return fmt.Errorf("%w: gap_open must be <= 0, got %v", ErrInvalidScheme, s.GapOpen)
	case s.GapExtend > 0:
		return fmt.Errorf("%w: gap_extend must be <= 0, got %v", ErrInvalidScheme, s.GapExtend)
	}

	if s.NPolicy != NSymbol && s.NPolicy != NWildcard {
		return fmt.Errorf("%w: unknown n_policy %d", ErrInvalidScheme, int(s.NPolicy))
	}
	return nil
}

// substitution scores one query symbol against one reference symbol.
// Inputs are expected upper case.
func (s Scheme) substitution(a, b byte) float64 {
	if a == b {
		return s.Match
	}
	if s.NPolicy == NWildcard && (a == 'N' || b == 'N') {
		return s.Match
	}
	return s.Mismatch
}

func (s Scheme) String() string {
	return fmt.Sprintf("{match: %g, mismatch: %g, gap_open: %g, gap_extend: %g, n: %s}",
		s.Match, s.Mismatch, s.GapOpen, s.GapExtend, s.NPolicy)
}
