package topology

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Miro-H/cachesc/internal/xlate"
	"github.com/Miro-H/cachesc/pkg/cachectx"
)

// TestBuildPhysicalUnprivileged_SingleExplicitSetNeverOverrunsLabels is the
// regression test for the victim.Prepare path (spec.md §8 scenario 3: "L2
// single eviction (unprivileged)"): a one-element set list used to index
// labels[] out of range on the very first page that started a second
// per-offset ring, which happens on essentially every run since
// CacheGroupSize per-page offsets vastly outnumber one requested set.
func TestBuildPhysicalUnprivileged_SingleExplicitSetNeverOverrunsLabels(t *testing.T) {
	ctx, err := cachectx.MakeContext(cachectx.L2)
	require.NoError(t, err)

	var s *Structure
	require.NotPanics(t, func() {
		s = BuildPhysicalUnprivileged(ctx, []int{5}, rand.New(rand.NewSource(1)))
	})
	defer s.Release()

	require.NoError(t, Verify(ctx, s.Entry, ctx.Associativity))

	cur := s.Entry
	for {
		assert.EqualValues(t, 5, cur.SetIndex)
		cur = cur.Next
		if cur == s.Entry {
			break
		}
	}
}

// TestBuildPhysicalPrivileged_BuildsARequestedSet only runs with the
// privilege to resolve physical frame numbers (spec.md §4.6); it is
// skipped rather than failed when the pagemap probe reports no access,
// which is the ordinary unprivileged-process case this test environment
// is most likely running under.
func TestBuildPhysicalPrivileged_BuildsARequestedSet(t *testing.T) {
	ctx, err := cachectx.MakeContext(cachectx.L2)
	require.NoError(t, err)

	tr, err := xlate.Open(cachectx.PageSize)
	if err != nil {
		t.Skipf("pagemap unavailable: %v", err)
	}
	defer tr.Close()
	if !xlate.CanTranslate(tr) {
		t.Skip("no privilege to resolve physical frame numbers")
	}

	s := BuildPhysicalPrivileged(ctx, tr, []int{7}, rand.New(rand.NewSource(1)))
	defer s.Release()

	require.NoError(t, Verify(ctx, s.Entry, ctx.Associativity))
}
