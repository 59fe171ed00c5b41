package victim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miro-H/cachesc/pkg/cachectx"
	"github.com/Miro-H/cachesc/pkg/topology"
)

func TestPrepare_VirtualLineLandsInTheRequestedSet(t *testing.T) {
	ctx, err := cachectx.MakeContext(cachectx.L1)
	require.NoError(t, err)

	v := Prepare(ctx, 3, nil, rand.New(rand.NewSource(1)))
	defer Release(v)

	require.NotNil(t, v.Entry)
	assert.EqualValues(t, 3, v.Entry.SetIndex)
	// VIRTUAL victims share their one aligned block with the rest of the
	// set's associativity-many ways (spec.md §4.10: release reclaims the
	// whole block, so the other ways are never split off).
	assert.NoError(t, topology.Verify(ctx, v.Entry, ctx.Associativity))
}

func TestPrepare_RejectsOutOfRangeSet(t *testing.T) {
	ctx, err := cachectx.MakeContext(cachectx.L1)
	require.NoError(t, err)

	assert.Panics(t, func() {
		Prepare(ctx, ctx.Sets, nil, rand.New(rand.NewSource(1)))
	})
}

func TestRelease_IsSafeAfterPrepare(t *testing.T) {
	ctx, err := cachectx.MakeContext(cachectx.L1)
	require.NoError(t, err)

	v := Prepare(ctx, 0, nil, rand.New(rand.NewSource(2)))
	assert.NotPanics(t, func() { Release(v) })
	assert.Nil(t, v.Entry)
}
