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

package graphutil_test

import (
	"testing"

	"github.com/awslabs/ar-script-analyzer/internal/graphutil"
	"github.com/stretchr/testify/assert"
)

func buildGraph(n int, edges [][2]int) *graphutil.IntGraph {
	g := graphutil.NewIntGraph(n)
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	return g.Finish()
}

func TestFindAllElementaryCycles(t *testing.T) {
	g := buildGraph(5, [][2]int{{0, 1}, {1, 2}, {2, 0}, {1, 0}, {3, 3}, {3, 4}})
	cycles := graphutil.FindAllElementaryCycles(g)
	assert.ElementsMatch(t, [][]int{{0, 1, 2, 0}, {0, 1, 0}, {3, 3}}, cycles)
}

func TestFindAllElementaryCyclesAcyclic(t *testing.T) {
	g := buildGraph(4, [][2]int{{0, 1}, {1, 2}, {0, 2}, {2, 3}})
	assert.Empty(t, graphutil.FindAllElementaryCycles(g))
	assert.False(t, graphutil.HasCycle(g))
}

func TestHasCycle(t *testing.T) {
	assert.True(t, graphutil.HasCycle(buildGraph(3, [][2]int{{0, 1}, {1, 2}, {2, 1}})))
	assert.True(t, graphutil.HasCycle(buildGraph(1, [][2]int{{0, 0}})))
	assert.False(t, graphutil.HasCycle(buildGraph(0, nil)))
}
