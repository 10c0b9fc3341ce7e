// This file adapts a *Tour to the sibling core package's generic graph type,
// grounded on core/types.go's NewGraph/AddVertex and core/methods_edges.go's
// AddEdge, so callers that want to hand a found tour to the teacher's generic
// graph tooling (e.g. for visualization elsewhere in the ecosystem) can do so
// without reimplementing adjacency construction.
package lk

import "github.com/lkheuristic/tsplk/core"

// ToGraph builds an undirected, weighted *core.Graph whose vertices are t's
// node ids and whose edges are t's current succ-chain, with each edge weight
// set to the rounded integer cost under t's distance matrix.
//
// Complexity: O(n).
func ToGraph(t *Tour) (*core.Graph, error) {
	g := core.NewGraph(core.WithWeighted())

	ids := t.IDs()
	for _, id := range ids {
		if err := g.AddVertex(id); err != nil {
			return nil, err
		}
	}

	n := t.Len()
	cur := 0
	for i := 0; i < n; i++ {
		next := t.nodes[cur].succ
		w, err := t.dist.At(cur, next)
		if err != nil {
			return nil, err
		}
		if _, err := g.AddEdge(ids[cur], ids[next], int64(w+0.5)); err != nil {
			return nil, err
		}
		cur = next
	}
	return g, nil
}
