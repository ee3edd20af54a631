package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeRing_Bowtie(t *testing.T) {
	loops := nodeRing([]vec{{0, 0}, {2, 2}, {2, 0}, {0, 2}})
	require.Len(t, loops, 2)
	for _, l := range loops {
		assert.Len(t, l, 3)
		assert.InDelta(t, 1.0, math.Abs(signedArea(l)), 1e-12)
		assert.Contains(t, l, vec{1, 1})
	}
}

func TestNodeRing_SimpleRingUnchanged(t *testing.T) {
	r := []vec{{0, 0}, {4, 0}, {4, 4}, {0, 4}}
	loops := nodeRing(r)
	require.Len(t, loops, 1)
	assert.Equal(t, r, loops[0])
}

func TestSplitLoops_TouchingVertex(t *testing.T) {
	// Two triangles sharing the vertex (1,1), walked as one figure eight.
	r := []vec{{0, 0}, {1, 1}, {2, 0}, {3, 0}, {1, 1}, {0, 2}}
	loops := splitLoops(r)
	require.Len(t, loops, 2)
	assert.Equal(t, []vec{{1, 1}, {2, 0}, {3, 0}}, loops[0])
	assert.Equal(t, []vec{{0, 0}, {1, 1}, {0, 2}}, loops[1])
}

func TestSplitLoops_DropsDegenerate(t *testing.T) {
	loops := splitLoops([]vec{{0, 0}, {1, 0}, {0, 0}})
	assert.Empty(t, loops)
}

func TestDropCollinear(t *testing.T) {
	got := dropCollinear([]vec{{0, 0}, {2, 0}, {4, 0}, {4, 4}, {0, 4}})
	assert.Equal(t, []vec{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, got)

	assert.Nil(t, dropCollinear([]vec{{0, 0}, {1, 0}, {2, 0}}))
}
