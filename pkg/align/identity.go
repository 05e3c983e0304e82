package align

// PercentIdentity is 100 * matches / aligned over the columns where neither
// side is a gap. Matching is case-insensitive. It returns 0 when no column is
// aligned. If the strings differ in length only the common prefix is read.
func PercentIdentity(alignedQuery, alignedRef string) float64 {
	n := len(alignedQuery)
	if len(alignedRef) < n {
		n = len(alignedRef)
	}

	matches, aligned := 0, 0
	for i := 0; i < n; i++ {
		a, b := alignedQuery[i], alignedRef[i]
		if a == Gap || b == Gap {
			continue
		}
		aligned++
		if equalFold(a, b) {
			matches++
		}
	}

	if aligned == 0 {
		return 0.0
	}
	return 100.0 * float64(matches) / float64(aligned)
}

func equalFold(a, b byte) bool {
	return upper(a) == upper(b)
}

func upper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
