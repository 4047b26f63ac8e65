package articles

import (
	"golang.org/x/text/unicode/norm"
)

// TitleSimilarity returns a similarity ratio in [0, 1] between two titles
// using Ratcliff/Obershelp sequence matching on NFKC-normalized runes.
// The NFKC fold collapses full-width/half-width variants common in Japanese
// feed titles before comparison. An empty title is maximally dissimilar to a
// non-empty one (ratio 0); two empty titles score 0 as well, so blank
// articles are never collapsed into each other.
//
// The algorithm is kept behind this named function so the threshold and
// matching strategy can be tuned without touching call sites.
func TitleSimilarity(a, b string) float64 {
	ra := []rune(norm.NFKC.String(a))
	rb := []rune(norm.NFKC.String(b))
	total := len(ra) + len(rb)
	if total == 0 {
		return 0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	matched := matchingRunes(ra, rb)
	return 2 * float64(matched) / float64(total)
}

// matchingRunes implements the Ratcliff/Obershelp recursion: find the longest
// common substring, then recurse on the pieces to its left and right.
func matchingRunes(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	matched := size
	matched += matchingRunes(a[:ai], b[:bi])
	matched += matchingRunes(a[ai+size:], b[bi+size:])
	return matched
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	// Dynamic-programming over a single row; lengths here are short titles,
	// so the quadratic scan is fine.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					ai = i - size
					bi = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return ai, bi, size
}
