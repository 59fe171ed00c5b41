package cachectx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeContext_L1IsVirtualAndDerivesFields(t *testing.T) {
	ctx, err := MakeContext(L1)
	require.NoError(t, err)

	assert.Equal(t, Virtual, ctx.Addressing)
	assert.Equal(t, L1Sets, ctx.Sets)
	assert.Equal(t, L1Associativity, ctx.Associativity)
	assert.Equal(t, CachelineSize, ctx.LineSize)
	assert.Equal(t, L1Sets*L1Associativity, ctx.NumLines)
	assert.Equal(t, CachelineSize*L1Associativity, ctx.SetBytes)
	assert.Equal(t, L1Sets*CachelineSize*L1Associativity, ctx.CacheBytes)
}

func TestMakeContext_L2IsPhysical(t *testing.T) {
	ctx, err := MakeContext(L2)
	require.NoError(t, err)

	assert.Equal(t, Physical, ctx.Addressing)
	assert.Equal(t, L2Sets, ctx.Sets)
	assert.Equal(t, L2Associativity, ctx.Associativity)
}

func TestMakeContext_UnknownLevelErrors(t *testing.T) {
	_, err := MakeContext(Level(99))
	assert.Error(t, err)
}

func TestRelease_IsANoOpThatAcceptsAnyContext(t *testing.T) {
	ctx, err := MakeContext(L1)
	require.NoError(t, err)
	assert.NotPanics(t, func() { Release(ctx) })
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "L1", L1.String())
	assert.Equal(t, "L2", L2.String())
	assert.Contains(t, Level(7).String(), "Level(7)")
}
