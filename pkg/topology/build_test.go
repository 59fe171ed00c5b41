package topology

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miro-H/cachesc/pkg/cachectx"
)

func TestBuildVirtual_ProducesAValidFullRing(t *testing.T) {
	ctx, err := cachectx.MakeContext(cachectx.L1)
	require.NoError(t, err)

	s := BuildVirtual(ctx, nil, rand.New(rand.NewSource(1)))
	defer s.Release()

	require.NoError(t, Verify(ctx, s.Entry, ctx.Sets*ctx.Associativity))
}

func TestBuildVirtual_PartialSetListOnlyLinksRequestedSets(t *testing.T) {
	ctx, err := cachectx.MakeContext(cachectx.L1)
	require.NoError(t, err)

	want := []int{2, 5, 9}
	s := BuildForSets(ctx, want, nil, rand.New(rand.NewSource(1)))
	defer s.Release()

	wantLines := len(want) * ctx.Associativity
	require.NoError(t, Verify(ctx, s.Entry, wantLines))

	seen := make(map[int32]bool)
	cur := s.Entry
	for {
		seen[cur.SetIndex] = true
		cur = cur.Next
		if cur == s.Entry {
			break
		}
	}
	assert.Len(t, seen, len(want))
	for _, w := range want {
		assert.True(t, seen[int32(w)], "set %d should be present in the built ring", w)
	}
}

func TestBuildVirtual_DifferentSeedsBothProduceValidRings(t *testing.T) {
	ctx, err := cachectx.MakeContext(cachectx.L1)
	require.NoError(t, err)

	a := BuildForSets(ctx, []int{0}, nil, rand.New(rand.NewSource(1)))
	defer a.Release()
	b := BuildForSets(ctx, []int{0}, nil, rand.New(rand.NewSource(2)))
	defer b.Release()

	// Both are valid rings of the same single set regardless of member order.
	require.NoError(t, Verify(ctx, a.Entry, ctx.Associativity))
	require.NoError(t, Verify(ctx, b.Entry, ctx.Associativity))
}
