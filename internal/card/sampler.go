package card

import "math/rand"

// Sample returns min(count, len(cards)) cards drawn uniformly at random
// without replacement: a Fisher-Yates shuffle over a copy of the candidate
// set, then a prefix. The input slice is never reordered.
//
// The candidate set must already be filtered; Sample applies no filtering of
// its own.
func Sample(rng *rand.Rand, cards []Card, count int) []Card {
	if count <= 0 {
		return []Card{}
	}

	shuffled := make([]Card, len(cards))
	copy(shuffled, cards)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	if count > len(shuffled) {
		count = len(shuffled)
	}
	return shuffled[:count]
}
