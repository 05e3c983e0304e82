package seqio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/yumyai/sangercheck/internal/util"
)

// LoadOptions tunes how Load turns a file into a Sequence.
type LoadOptions struct {
	// TrimTrace applies Mott quality trimming to trace files.
	TrimTrace bool
}

// IsTrace reports whether the path names an ABIF trace by extension.
func IsTrace(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ab1", ".abi", ".ab":
		return true
	}
	return false
}

// Load reads one sequence from path: a trace file gives its called bases,
// any other file is read as FASTA and its first record is returned.
func Load(path string, opts LoadOptions) (Sequence, error) {
	if !IsTrace(path) {
		return ReadFirstFASTA(path)
	}

	t, err := ReadTraceFile(path)
	if err != nil {
		return Sequence{}, err
	}
	bases := t.Bases
	if opts.TrimTrace {
		bases = t.Trimmed()
	}
	return NewSequence(util.Stem(path), traceDescription(path), bases), nil
}

func traceDescription(path string) string {
	return fmt.Sprintf("Sanger read from %s", filepath.Base(path))
}
