package primeprobe

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miro-H/cachesc/pkg/cachectx"
	"github.com/Miro-H/cachesc/pkg/topology"
)

func TestPrime_ReturnsEntryPrev(t *testing.T) {
	ctx, err := cachectx.MakeContext(cachectx.L1)
	require.NoError(t, err)

	s := topology.BuildForSets(ctx, []int{0, 1}, nil, rand.New(rand.NewSource(1)))
	defer s.Release()

	got := Prime(s.Entry)
	assert.Same(t, s.Entry.Prev, got)
}

func TestPrimeRev_ReturnsEntryNext(t *testing.T) {
	ctx, err := cachectx.MakeContext(cachectx.L1)
	require.NoError(t, err)

	s := topology.BuildForSets(ctx, []int{0, 1}, nil, rand.New(rand.NewSource(1)))
	defer s.Release()

	got := PrimeRev(s.Entry)
	assert.Same(t, s.Entry.Next, got)
}

func TestProbe_TimesEverySetHead(t *testing.T) {
	ctx, err := cachectx.MakeContext(cachectx.L1)
	require.NoError(t, err)

	want := []int{0, 1, 2}
	s := topology.BuildForSets(ctx, want, nil, rand.New(rand.NewSource(1)))
	defer s.Release()

	Prime(s.Entry)
	Probe(cachectx.L1, s.Entry)

	out := make([]uint32, ctx.Sets)
	require.NotPanics(t, func() { SetTimes(s.Entry, out) })
	assert.Len(t, out, ctx.Sets)
	for _, w := range want {
		assert.NotZero(t, out[w], "set %d should have been timed", w)
	}
}

func TestProbeLines_FillsPerLineTiming(t *testing.T) {
	ctx, err := cachectx.MakeContext(cachectx.L1)
	require.NoError(t, err)

	s := topology.BuildForSets(ctx, []int{0}, nil, rand.New(rand.NewSource(1)))
	defer s.Release()

	Prime(s.Entry)
	ProbeLines(s.Entry)

	out := make([]uint32, ctx.Associativity)
	PerLineTimes(s.Entry, out)
	assert.Len(t, out, ctx.Associativity)
	for i, v := range out {
		assert.NotZero(t, v, "line %d should have been timed", i)
	}
}
