package topology

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShuffle_SingleElementIsUntouched(t *testing.T) {
	items := []int{42}
	shuffle(rand.New(rand.NewSource(1)), items)
	assert.Equal(t, []int{42}, items)
}

func TestShuffle_IsAPermutationOfTheInput(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}
	want := append([]int(nil), items...)

	shuffle(rand.New(rand.NewSource(7)), items)

	assert.ElementsMatch(t, want, items)
}

func TestShuffle_LastIndexNeverSwapsWithItself(t *testing.T) {
	// The off-by-one (i drawn from [0, i) rather than [0, i]) means index i
	// is never offered as its own swap partner — with a source that always
	// returns 0, every element at position i>=1 swaps with position 0.
	items := []int{0, 1, 2, 3}
	shuffle(rand.New(zeroSource{}), items)
	assert.Equal(t, []int{1, 2, 3, 0}, items)
}

// zeroSource is a rand.Source that always yields 0, making shuffle's draws
// deterministic for the off-by-one assertion above.
type zeroSource struct{}

func (zeroSource) Int63() int64 { return 0 }
func (zeroSource) Seed(int64)   {}
