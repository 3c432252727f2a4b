// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package graphutil

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fromAdjacency(adj [][]int) *IntGraph {
	g := NewIntGraph(len(adj))
	for x, succs := range adj {
		for _, y := range succs {
			g.AddEdge(x, y)
		}
	}
	return g.Finish()
}

// checkCalleeFirst verifies that sccs is a partition of the nodes of g into strongly connected sets, and that no
// component reaches a component that appears after it.
func checkCalleeFirst(g *IntGraph, sccs [][]int) error {
	covered := map[int]bool{}
	reach := make([]map[int]bool, g.Order())
	for x := range reach {
		reach[x] = map[int]bool{}
		for _, y := range g.ReachableFrom([]int{x}) {
			reach[x][y] = true
		}
	}
	for i, scc := range sccs {
		for _, x := range scc {
			if covered[x] {
				return fmt.Errorf("node %d appears twice", x)
			}
			covered[x] = true
			for _, y := range scc {
				if !reach[x][y] {
					return fmt.Errorf("%d does not reach %d in the same component", x, y)
				}
			}
			for _, later := range sccs[i+1:] {
				for _, y := range later {
					if reach[x][y] {
						return fmt.Errorf("%d reaches %d in a later component", x, y)
					}
				}
			}
		}
	}
	if len(covered) != g.Order() {
		return fmt.Errorf("%d nodes covered out of %d", len(covered), g.Order())
	}
	return nil
}

func randomAdjacency(size int, seed int64) [][]int {
	r := rand.New(rand.NewSource(seed))
	adj := make([][]int, size)
	for i := range adj {
		for j := 0; j < 3; j++ {
			if r.Float32() < 0.7 {
				adj[i] = append(adj[i], r.Intn(size))
			}
		}
	}
	return adj
}

func TestStronglyConnectedComponents(t *testing.T) {
	graphs := [][][]int{
		{{0}},
		{{}},
		{{0, 1}, {}},
		{{1, 2}, {3}, {1}, {}},
		{{1, 2}, {3}, {1, 0}, {}},
		{{3, 1}, {0}, {1}, {3}},
	}
	for i := 0; i < 100; i++ {
		graphs = append(graphs, randomAdjacency(10, 68348438+int64(i)))
	}
	for i := 0; i < 10; i++ {
		graphs = append(graphs, randomAdjacency(50, 184618+int64(i)))
	}
	for _, adj := range graphs {
		g := fromAdjacency(adj)
		sccs := StronglyConnectedComponents(g.NodeIDs(), g.Successors)
		assert.NoError(t, checkCalleeFirst(g, sccs), "graph %v", adj)
	}
}

func TestStronglyConnectedComponentsLongChain(t *testing.T) {
	// a chain long enough to overflow a recursive implementation's stack budget in practice
	n := 200000
	adj := make([][]int, n)
	for i := 0; i+1 < n; i++ {
		adj[i] = []int{i + 1}
	}
	adj[n-1] = []int{0}
	g := fromAdjacency(adj)
	sccs := StronglyConnectedComponents(g.NodeIDs(), g.Successors)
	assert.Len(t, sccs, 1)
	assert.Len(t, sccs[0], n)
}

func TestReachableFrom(t *testing.T) {
	g := fromAdjacency([][]int{{1}, {2}, {}, {0}, {4}})
	assert.Equal(t, []int{0, 1, 2}, g.ReachableFrom([]int{0}))
	assert.Equal(t, []int{0, 1, 2, 3}, g.ReachableFrom([]int{3}))
	assert.Equal(t, []int{2, 4}, g.ReachableFrom([]int{4, 2}))
	assert.Empty(t, g.ReachableFrom(nil))
}

func TestIntGraphGonumView(t *testing.T) {
	g := fromAdjacency([][]int{{1, 1, 2}, {}, {0}})
	g.Labels = []string{"a", "b", "c"}
	assert.Equal(t, []int{1, 2}, g.Succs[0])
	assert.Equal(t, []int{2}, g.Preds[0])
	assert.True(t, g.HasEdgeFromTo(0, 2))
	assert.False(t, g.HasEdgeFromTo(1, 0))
	assert.True(t, g.HasEdgeBetween(1, 0))
	assert.Nil(t, g.Edge(1, 0))
	e := g.Edge(2, 0)
	if assert.NotNil(t, e) {
		assert.Equal(t, "c", fmt.Sprintf("%v", e.From()))
		assert.Equal(t, int64(0), e.To().ID())
	}
	assert.Equal(t, 2, g.From(0).Len())
	assert.Equal(t, 3, g.Nodes().Len())
	assert.Nil(t, g.Node(7))
}
