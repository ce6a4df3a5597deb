package highlight

// Similarity computes 2*LCS(a,b) / (len(a)+len(b)), the similarity measure
// used by the DOM-path and context-search strategies (§4.4.4); the
// text-position strategy matches exact substrings only. Character equality is
// codepoint-exact, so comparisons run over runes, not bytes.
//
// Conventions: both empty strings compare equal (1.0); exactly one empty
// compares unrelated (0.0); identical strings compare equal (1.0) without
// running the DP (an early-out, not a special case of the formula).
func Similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	l := lcsLength(ra, rb)
	return 2 * float64(l) / float64(len(ra)+len(rb))
}

// lcsLength computes the length of the longest common subsequence of a and b
// by dynamic programming, using two rolling rows (O(|a|·|b|) time, O(min(|a|,
// |b|)) space).
//
// The rolling rows are swapped at the end of every outer iteration, so after
// the loop exits prev (not curr) holds the row the last iteration just
// finished writing. Reading curr instead reports the previous row's result —
// off by one iteration on every input, not just odd-length ones.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
