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

	"github.com/yourbasic/graph"
)

// FindAllElementaryCycles returns all the elementary cycles of g (Johnson's algorithm). Each cycle starts and ends
// with the same node, its smallest node id. Strongly connected components are computed with yourbasic's
// StrongComponents on the subgraph of nodes with an id larger than the current start node.
func FindAllElementaryCycles(g *IntGraph) [][]int {
	s := &state{
		blocked: map[int]bool{},
		blist:   map[int]map[int]bool{},
		stack:   []int{},
		cycles:  [][]int{},
	}
	start := 0
	for start < g.Order() {
		sub := inducedFrom(g, start)
		least := -1
		for _, component := range graph.StrongComponents(sub) {
			if len(component) < 2 && !(len(component) == 1 && sub.HasEdgeFromTo(int64(component[0]),
				int64(component[0]))) {
				continue
			}
			sort.Ints(component)
			if least < 0 || component[0] < least {
				least = component[0]
			}
		}
		if least < 0 {
			break
		}
		s.stack = []int{}
		s.blocked = map[int]bool{}
		s.blist = map[int]map[int]bool{}
		s.circuit(least, least, sub)
		start = least + 1
	}
	return s.cycles
}

// HasCycle returns true when g is not a DAG. Self loops count as cycles.
func HasCycle(g *IntGraph) bool {
	_, ok := graph.TopSort(g)
	return !ok
}

// inducedFrom returns the subgraph of g containing only the nodes with id >= from; node ids are preserved.
func inducedFrom(g *IntGraph, from int) *IntGraph {
	sub := NewIntGraph(g.Order())
	for x := from; x < g.Order(); x++ {
		for _, y := range g.Succs[x] {
			if y >= from {
				sub.AddEdge(x, y)
			}
		}
	}
	return sub.Finish()
}

type state struct {
	blocked map[int]bool
	blist   map[int]map[int]bool
	stack   []int
	cycles  [][]int
}

func (s *state) unblock(u int) {
	s.blocked[u] = false
	for w := range s.blist[u] {
		delete(s.blist[u], w)
		if s.blocked[w] {
			s.unblock(w)
		}
	}
}

func (s *state) circuit(v int, start int, g *IntGraph) bool {
	f := false
	s.stack = append(s.stack, v)
	s.blocked[v] = true
	for _, w := range g.Succs[v] {
		if w == start {
			cycle := make([]int, len(s.stack), len(s.stack)+1)
			copy(cycle, s.stack)
			cycle = append(cycle, w)
			s.cycles = append(s.cycles, cycle)
			f = true
		} else if !s.blocked[w] {
			if s.circuit(w, start, g) {
				f = true
			}
		}
	}

	if f {
		s.unblock(v)
	} else {
		for _, w := range g.Succs[v] {
			if s.blist[w] == nil {
				s.blist[w] = map[int]bool{}
			}
			s.blist[w][v] = true
		}
	}
	s.stack = s.stack[:len(s.stack)-1]
	return f
}
