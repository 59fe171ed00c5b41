package topology

import "math/rand"

// shuffle performs an in-place Fisher–Yates permutation of items, using a
// caller-supplied source of randomness (PRNG seeding is an external
// collaborator, spec.md §1).
//
// This preserves the reference implementation's off-by-one: i ranges down
// to 1 and j is drawn from [0, i) instead of [0, i], so index i is never
// offered as its own swap partner. spec.md §9 documents this as a known,
// slight bias and asks that it be preserved rather than "fixed" silently.
func shuffle[T any](r *rand.Rand, items []T) {
	for i := len(items) - 1; i >= 1; i-- {
		j := r.Intn(i)
		items[i], items[j] = items[j], items[i]
	}
}
