package textmatch

// Distance returns the Levenshtein edit distance between a and b: the
// minimum number of single-byte insertions, deletions and substitutions
// needed to turn a into b. Standard two-row dynamic programming, O(|a|·|b|).
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

// DistanceAtMost is Distance with a cutoff: it returns the exact distance
// when it is <= max, and max+1 otherwise. It abandons the DP table as soon
// as a whole row exceeds max, which is what keeps the candidate scan
// affordable on long pages.
func DistanceAtMost(a, b string, max int) int {
	if max < 0 {
		max = 0
	}
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	if diff > max {
		return max + 1
	}
	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			if curr[j] < rowMin {
				rowMin = curr[j]
			}
		}
		if rowMin > max {
			return max + 1
		}
		prev, curr = curr, prev
	}

	if d := prev[len(b)]; d <= max {
		return d
	}
	return max + 1
}
