// Package seqio reads and writes the nucleotide sequences that feed the
// aligner: FASTA records and ABIF capillary trace files.
package seqio

import (
	"errors"
	"strings"
)

var (
	// ErrNoRecords is returned when a FASTA source holds no record at all.
	ErrNoRecords = errors.New("no FASTA record found")
	// ErrMalformedTrace covers every structural problem in an ABIF container.
	ErrMalformedTrace = errors.New("malformed ABIF trace")
)

// Sequence is a named, upper-cased nucleotide string. Build it with NewSequence.
type Sequence struct {
	ID          string
	Description string
	residues    string
}

func NewSequence(id, description, residues string) Sequence {
	return Sequence{
		ID:          id,
		Description: description,
		residues:    normalize(residues),
	}
}

func (s Sequence) Residues() string { return s.residues }

func (s Sequence) Len() int { return len(s.residues) }

// normalize upper-cases and drops whitespace that survived line joining, as
// well as the gap and terminator symbols of alignment-style FASTA ('-', '.',
// '*'). The aligner reserves '-' for the gaps it inserts.
func normalize(residues string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			return -1
		case r == '-' || r == '.' || r == '*':
			return -1
		case 'a' <= r && r <= 'z':
			return r - ('a' - 'A')
		default:
			return r
		}
	}, residues)
}
