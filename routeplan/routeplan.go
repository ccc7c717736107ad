// Package routeplan computes all-pairs shortest paths over a weighted
// graph of node ids, using a per-source Dijkstra over container/heap
// (no third-party graph library appears anywhere in the example
// corpus, so this follows the standard library's documented
// heap.Interface pattern directly).
package routeplan

import (
	"container/heap"
	"errors"
	"fmt"
)

// Unreachable is returned by Route when no path connects s to t.
var Unreachable = errors.New("routeplan: no path between nodes")

// ErrNegativeWeight is returned by SetWeight for w < 0.
var ErrNegativeWeight = errors.New("routeplan: negative edge weight")

// ErrFinalized is returned by SetWeight once Plan has run.
var ErrFinalized = errors.New("routeplan: weights finalized")

// Planner computes shortest paths over a fixed set of node ids
// [0,n). Callers set symmetric weights for undirected edges by
// calling SetWeight for both (u,v) and (v,u). After Plan, weights are
// immutable and Route serves precomputed paths.
type Planner struct {
	n        int
	adj      []map[int]float64
	finalized bool
	dist     [][]float64
	parent   [][]int
}

// New returns a Planner over n nodes, ids 0..n-1.
func New(n int) *Planner {
	adj := make([]map[int]float64, n)
	for i := range adj {
		adj[i] = make(map[int]float64)
	}
	return &Planner{n: n, adj: adj}
}

// SetWeight sets or overwrites the directed edge u->v with weight w.
// For an undirected edge the caller calls this twice, once per
// direction. w must be non-negative.
func (p *Planner) SetWeight(u, v int, w float64) error {
	if p.finalized {
		return ErrFinalized
	}
	if w < 0 {
		return fmt.Errorf("%w: %g", ErrNegativeWeight, w)
	}
	if u < 0 || u >= p.n || v < 0 || v >= p.n {
		return fmt.Errorf("routeplan: node id out of range [0,%d)", p.n)
	}
	p.adj[u][v] = w
	return nil
}

// Plan finalizes the graph and precomputes shortest paths from every
// source. After Plan returns, SetWeight fails.
func (p *Planner) Plan() error {
	if p.finalized {
		return nil
	}
	p.finalized = true
	p.dist = make([][]float64, p.n)
	p.parent = make([][]int, p.n)
	for s := 0; s < p.n; s++ {
		p.dist[s], p.parent[s] = dijkstra(p.n, p.adj, s)
	}
	return nil
}

// Route returns the node-id sequence from s to t, including both
// endpoints, and its length (the number of nodes in the sequence,
// i.e. len(path)). A path always has length >= 1; length < 2 for
// s != t is a programming bug. If no path exists it returns
// Unreachable.
func (p *Planner) Route(s, t int) ([]int, int, error) {
	if !p.finalized {
		return nil, 0, errors.New("routeplan: Plan has not run")
	}
	if s < 0 || s >= p.n || t < 0 || t >= p.n {
		return nil, 0, fmt.Errorf("routeplan: node id out of range [0,%d)", p.n)
	}
	if p.parent[s][t] == -1 && s != t {
		return nil, 0, Unreachable
	}
	path := []int{t}
	cur := t
	for cur != s {
		cur = p.parent[s][cur]
		if cur == -1 {
			return nil, 0, Unreachable
		}
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, len(path), nil
}

// heapItem is one entry of the priority queue: a candidate shortest
// distance to node id, used with container/heap.
type heapItem struct {
	node int
	dist float64
}

type priorityQueue []heapItem

func (pq priorityQueue) Len() int { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].dist != pq[j].dist {
		return pq[i].dist < pq[j].dist
	}
	// ties broken by lower node id.
	return pq[i].node < pq[j].node
}
func (pq priorityQueue) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)   { *pq = append(*pq, x.(heapItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// dijkstra computes single-source shortest distances and parent
// pointers from s over adj, an n-node adjacency map.
func dijkstra(n int, adj []map[int]float64, s int) (dist []float64, parent []int) {
	dist = make([]float64, n)
	parent = make([]int, n)
	visited := make([]bool, n)
	for i := range dist {
		dist[i] = inf
		parent[i] = -1
	}
	dist[s] = 0

	pq := &priorityQueue{{node: s, dist: 0}}
	heap.Init(pq)
	for pq.Len() > 0 {
		top := heap.Pop(pq).(heapItem)
		u := top.node
		if visited[u] {
			continue
		}
		visited[u] = true
		for v, w := range adj[u] {
			if visited[v] {
				continue
			}
			nd := dist[u] + w
			if nd < dist[v] || (nd == dist[v] && u < parent[v]) {
				dist[v] = nd
				parent[v] = u
				heap.Push(pq, heapItem{node: v, dist: nd})
			}
		}
	}
	return dist, parent
}

const inf = 1 << 62
