package match

// Ratio computes a normalized character-sequence similarity in [0, 1]:
// twice the total length of matching blocks divided by the combined length
// of both strings. Matching blocks are found greedily, longest first, so
// scores line up with the match_score values in cache files written by
// earlier tooling.
func Ratio(a, b string) float64 {
	ar := []rune(a)
	br := []rune(b)
	total := len(ar) + len(br)
	if total == 0 {
		return 1
	}
	matched := matchingTotal(ar, br, 0, len(ar), 0, len(br))
	return 2 * float64(matched) / float64(total)
}

type span struct {
	alo, ahi, blo, bhi int
}

func matchingTotal(a, b []rune, alo, ahi, blo, bhi int) int {
	total := 0
	queue := []span{{alo, ahi, blo, bhi}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, size := longestMatch(a, b, s.alo, s.ahi, s.blo, s.bhi)
		if size == 0 {
			continue
		}
		total += size
		queue = append(queue,
			span{s.alo, i, s.blo, j},
			span{i + size, s.ahi, j + size, s.bhi},
		)
	}
	return total
}

// longestMatch finds the longest block of runes common to a[alo:ahi] and
// b[blo:bhi], preferring the earliest occurrence in a, then in b.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, size int) {
	positions := make(map[rune][]int, bhi-blo)
	for j := blo; j < bhi; j++ {
		positions[b[j]] = append(positions[b[j]], j)
	}

	besti, bestj = alo, blo
	lengths := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range positions[a[i]] {
			k := lengths[j-1] + 1
			next[j] = k
			if k > size {
				besti, bestj, size = i-k+1, j-k+1, k
			}
		}
		lengths = next
	}
	return besti, bestj, size
}
