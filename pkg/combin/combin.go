// Package combin enumerates column combinations for the key finder and FD
// discoverer, which both need the same deterministic, non-shuffled ordering.
package combin

// Combinations returns every size-k combination of pool, in lexicographic
// order by pool index. Returns nil if k is out of [1, len(pool)].
func Combinations(pool []string, k int) [][]string {
	n := len(pool)
	if k <= 0 || k > n {
		return nil
	}

	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}

	var out [][]string
	for {
		combo := make([]string, k)
		for i, p := range idx {
			combo[i] = pool[p]
		}
		out = append(out, combo)

		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return out
}
