package model

import "path/filepath"

// DefaultPairs is the BZN6R2 sample set, relative to the processed data directory.
var DefaultPairs = []Pair{
	{Read: "BZN6R2_1_sample_1.1-of-2.fasta", Reference: "BZN6R2_1_sample_1.fasta"},
	{Read: "BZN6R2_2_sample_2.1-of-2.fasta", Reference: "BZN6R2_2_sample_2.fasta"},
	{Read: "BZN6R2_3_sample_3.1-of-2.fasta", Reference: "BZN6R2_3_sample_3.fasta"},
}

// Under resolves relative read/reference paths against dir.
func (p Pair) Under(dir string) Pair {
	if dir == "" {
		return p
	}
	if !filepath.IsAbs(p.Read) {
		p.Read = filepath.Join(dir, p.Read)
	}
	if !filepath.IsAbs(p.Reference) {
		p.Reference = filepath.Join(dir, p.Reference)
	}
	return p
}

// ResolvePairs applies Under to every pair.
func ResolvePairs(dir string, pairs []Pair) []Pair {
	out := make([]Pair, len(pairs))
	for i, p := range pairs {
		out[i] = p.Under(dir)
	}
	return out
}
