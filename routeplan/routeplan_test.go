package routeplan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func undirected(t *testing.T, p *Planner, u, v int, w float64) {
	t.Helper()
	require.NoError(t, p.SetWeight(u, v, w))
	require.NoError(t, p.SetWeight(v, u, w))
}

func TestSimplePath(t *testing.T) {
	p := New(3)
	undirected(t, p, 0, 1, 1)
	undirected(t, p, 1, 2, 1)
	require.NoError(t, p.Plan())

	path, length, err := p.Route(0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, length)
	assert.Equal(t, []int{0, 1, 2}, path)
}

func TestShortestOverLonger(t *testing.T) {
	p := New(4)
	undirected(t, p, 0, 1, 1)
	undirected(t, p, 1, 3, 1)
	undirected(t, p, 0, 2, 1)
	undirected(t, p, 2, 3, 1)
	undirected(t, p, 0, 3, 10) // direct but expensive
	require.NoError(t, p.Plan())

	_, length, err := p.Route(0, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, length, "shortest route has 3 nodes via a 2-hop path")
}

func TestUnreachable(t *testing.T) {
	p := New(3)
	undirected(t, p, 0, 1, 1)
	// node 2 is isolated.
	require.NoError(t, p.Plan())

	_, _, err := p.Route(0, 2)
	assert.ErrorIs(t, err, Unreachable)
}

func TestSelfRoute(t *testing.T) {
	p := New(2)
	undirected(t, p, 0, 1, 1)
	require.NoError(t, p.Plan())

	path, length, err := p.Route(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, length)
	assert.Equal(t, []int{0}, path)
}

func TestNegativeWeightRejected(t *testing.T) {
	p := New(2)
	assert.Error(t, p.SetWeight(0, 1, -1))
}

func TestSetWeightAfterPlanFails(t *testing.T) {
	p := New(2)
	undirected(t, p, 0, 1, 1)
	require.NoError(t, p.Plan())
	assert.ErrorIs(t, p.SetWeight(0, 1, 2), ErrFinalized)
}

func TestTieBreakLowerNodeID(t *testing.T) {
	// Node 3 reachable from both 1 and 2 at equal cost; the algorithm
	// should prefer whichever relax happens via the lower predecessor
	// id when costs tie, producing a deterministic path.
	p := New(4)
	undirected(t, p, 0, 1, 1)
	undirected(t, p, 0, 2, 1)
	undirected(t, p, 1, 3, 1)
	undirected(t, p, 2, 3, 1)
	require.NoError(t, p.Plan())

	path, _, err := p.Route(0, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, path[1], "tie should break toward lower predecessor id")
}
