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
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/traverse"
)

// IntGraph is a directed graph over the dense node ids 0..Order()-1. It is the common representation the analyses
// hand to graph libraries: it implements yourbasic's graph.Iterator (Order, Visit) and Gonum's graph.Directed.
// Labels, when non-nil, are used by String() on nodes.
type IntGraph struct {
	// Succs is the adjacency list: Succs[x] lists the targets of the edges out of x, sorted, without duplicates.
	Succs [][]int

	// Preds is the reversed adjacency list, computed by Finish.
	Preds [][]int

	// Labels are optional node names
	Labels []string
}

// NewIntGraph returns a graph with n nodes and no edges.
func NewIntGraph(n int) *IntGraph {
	return &IntGraph{Succs: make([][]int, n), Preds: make([][]int, n)}
}

// AddEdge adds the edge x -> y. Call Finish once all edges have been added.
func (g *IntGraph) AddEdge(x, y int) {
	g.Succs[x] = append(g.Succs[x], y)
}

// Finish sorts and de-duplicates the adjacency lists and builds the predecessor lists.
func (g *IntGraph) Finish() *IntGraph {
	g.Preds = make([][]int, len(g.Succs))
	for x, succs := range g.Succs {
		sort.Ints(succs)
		j := 0
		for i, y := range succs {
			if i > 0 && succs[i-1] == y {
				continue
			}
			succs[j] = y
			j++
		}
		g.Succs[x] = succs[:j]
		for _, y := range g.Succs[x] {
			g.Preds[y] = append(g.Preds[y], x)
		}
	}
	return g
}

// Successors returns the successors of x
func (g *IntGraph) Successors(x int) []int {
	return g.Succs[x]
}

// NodeIDs returns all the node ids in increasing order
func (g *IntGraph) NodeIDs() []int {
	ids := make([]int, len(g.Succs))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// *************** yourbasic graph.Iterator implementation **********************

// Order implements the order of the graph.Iterator interface for the IntGraph
func (g *IntGraph) Order() int {
	return len(g.Succs)
}

// Visit implements the graph.Iterator interface for the IntGraph
func (g *IntGraph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if v < 0 || v >= len(g.Succs) {
		return false
	}
	for _, w := range g.Succs[v] {
		if do(w, 1) {
			return true
		}
	}
	return false
}

// *************** Gonum graph.Directed implementation **********************

// Node implements the Graph interface
func (g *IntGraph) Node(id int64) graph.Node {
	if id < 0 || id >= int64(len(g.Succs)) {
		return nil
	}
	return g.node(int(id))
}

func (g *IntGraph) node(id int) Node {
	label := ""
	if id < len(g.Labels) {
		label = g.Labels[id]
	}
	return Node{Id: int64(id), Label: label}
}

func (g *IntGraph) nodes(ids []int) graph.Nodes {
	ns := make([]graph.Node, len(ids))
	for i, id := range ids {
		ns[i] = g.node(id)
	}
	return iterator.NewOrderedNodes(ns)
}

// Nodes returns the set of nodes in the graph
func (g *IntGraph) Nodes() graph.Nodes {
	return g.nodes(g.NodeIDs())
}

// From returns the set of nodes reachable in one step from the id
func (g *IntGraph) From(id int64) graph.Nodes {
	if id < 0 || id >= int64(len(g.Succs)) {
		return g.nodes(nil)
	}
	return g.nodes(g.Succs[id])
}

// To returns the set of nodes that reach id in one step
func (g *IntGraph) To(id int64) graph.Nodes {
	if id < 0 || id >= int64(len(g.Preds)) {
		return g.nodes(nil)
	}
	return g.nodes(g.Preds[id])
}

// HasEdgeFromTo returns whether the directed edge u -> v exists
func (g *IntGraph) HasEdgeFromTo(uid, vid int64) bool {
	if uid < 0 || uid >= int64(len(g.Succs)) {
		return false
	}
	succs := g.Succs[uid]
	i := sort.SearchInts(succs, int(vid))
	return i < len(succs) && succs[i] == int(vid)
}

// HasEdgeBetween returns a boolean indicating whether an edge exists between the two node identifiers
func (g *IntGraph) HasEdgeBetween(xid, yid int64) bool {
	return g.HasEdgeFromTo(xid, yid) || g.HasEdgeFromTo(yid, xid)
}

// Edge returns the edge between the two identifiers (nil if none exists)
func (g *IntGraph) Edge(uid, vid int64) graph.Edge {
	if g.HasEdgeFromTo(uid, vid) {
		return Edge{F: g.node(int(uid)), T: g.node(int(vid))}
	}
	return nil
}

// ReachableFrom returns the sorted ids of all the nodes reachable from the roots, roots included, using Gonum's
// breadth-first traversal.
func (g *IntGraph) ReachableFrom(roots []int) []int {
	seen := make([]bool, len(g.Succs))
	var bf traverse.BreadthFirst
	bf.Visit = func(n graph.Node) { seen[n.ID()] = true }
	for _, r := range roots {
		if r < 0 || r >= len(g.Succs) || seen[r] {
			continue
		}
		bf.Walk(g, g.node(r), nil)
	}
	var res []int
	for id, ok := range seen {
		if ok {
			res = append(res, id)
		}
	}
	return res
}

// Node implements graph.Node
type Node struct {
	Id    int64
	Label string
}

// ID returns the id of the node
func (n Node) ID() int64 { return n.Id }

func (n Node) String() string { return n.Label }

// Edge implements graph.Edge
type Edge struct {
	F, T Node
}

// From returns the origin of the edge
func (e Edge) From() graph.Node { return e.F }

// To returns the destination of the edge
func (e Edge) To() graph.Node { return e.T }

// ReversedEdge returns a new value representing the reversed edge
func (e Edge) ReversedEdge() graph.Edge { return Edge{F: e.T, T: e.F} }
