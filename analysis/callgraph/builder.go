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

package callgraph

import (
	"sort"

	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/internal/graphutil"
)

// Builder accumulates the edges and live methods discovered by a call graph construction. It is used by the CHA and
// RTA constructions of this package and by the pointer analysis, which resolves the call sites on the fly.
type Builder struct {
	scene   *ir.Scene
	kind    ResolutionKind
	entries []ir.MethodID
	edges   map[edgeKey]Edge
	live    []bool
}

// NewBuilder returns a builder for the scene. The non-static call sites will have the resolution kind given.
// If entries is empty, the entry points of the scene are used.
func NewBuilder(scene *ir.Scene, entries []ir.MethodID, kind ResolutionKind) *Builder {
	if len(entries) == 0 {
		entries = scene.EntryPoints()
	}
	return &Builder{
		scene:   scene,
		kind:    kind,
		entries: append([]ir.MethodID(nil), entries...),
		edges:   map[edgeKey]Edge{},
		live:    make([]bool, len(scene.Methods())),
	}
}

// Entries returns the entry points of the construction
func (b *Builder) Entries() []ir.MethodID {
	return b.entries
}

// MarkLive marks the method reachable. Returns true if the method was not live before.
func (b *Builder) MarkLive(m ir.MethodID) bool {
	if b.live[m] {
		return false
	}
	b.live[m] = true
	return true
}

// IsLive returns true if the method has been marked live
func (b *Builder) IsLive(m ir.MethodID) bool {
	return b.live[m]
}

// AddEdge adds the edge. Static call sites get the StaticResolved kind, the others the kind of the builder.
// Returns true if the edge is new.
func (b *Builder) AddEdge(e Edge) bool {
	if !e.Callback {
		e.Via = ir.NoMethod
		e.Effect = -1
	}
	e.Kind = b.siteKind(e.Site)
	k := e.key()
	if _, ok := b.edges[k]; ok {
		return false
	}
	b.edges[k] = e
	return true
}

func (b *Builder) siteKind(site ir.StmtRef) ResolutionKind {
	if call, ok := b.scene.Statement(site).(*ir.Call); ok && call.Kind == ir.Static {
		return StaticResolved
	}
	return b.kind
}

// Build freezes the call graph. The diagnostics are computed from the final edges: live virtual or dynamic sites
// without callee are unresolved, and calls to native methods without summary are unmodeled.
func (b *Builder) Build() *CallGraph {
	cg := &CallGraph{
		Scene:     b.scene,
		bySite:    map[ir.StmtRef][]int{},
		out:       map[ir.MethodID][]int{},
		in:        map[ir.MethodID][]int{},
		siteKinds: map[ir.StmtRef]ResolutionKind{},
		live:      b.live,
		entries:   b.entries,
	}
	cg.edges = make([]Edge, 0, len(b.edges))
	for _, e := range b.edges {
		cg.edges = append(cg.edges, e)
	}
	sort.Slice(cg.edges, func(i, j int) bool { return cg.edges[i].less(cg.edges[j]) })

	methods := b.scene.Methods()
	cg.graph = graphutil.NewIntGraph(len(methods))
	cg.graph.Labels = make([]string, len(methods))
	for i, m := range methods {
		cg.graph.Labels[i] = m.QualifiedName
	}
	for i, e := range cg.edges {
		cg.bySite[e.Site] = append(cg.bySite[e.Site], i)
		cg.out[e.Caller] = append(cg.out[e.Caller], i)
		cg.in[e.Callee] = append(cg.in[e.Callee], i)
		cg.graph.AddEdge(int(e.Caller), int(e.Callee))
	}
	cg.graph.Finish()

	for _, m := range methods {
		if !b.live[m.ID] || !m.HasBody() {
			continue
		}
		for i, stmt := range m.Body {
			call, ok := stmt.(*ir.Call)
			if !ok {
				continue
			}
			site := ir.StmtRef{Method: m.ID, Index: i}
			cg.siteKinds[site] = b.siteKind(site)
			direct := 0
			for _, e := range cg.EdgesAt(site) {
				if e.Callback {
					continue
				}
				direct++
				callee := b.scene.MethodByID(e.Callee)
				if _, modeled := b.scene.Summary(e.Callee); callee.Native && !modeled {
					cg.diagnostics = append(cg.diagnostics,
						Diagnostic{Site: site, Kind: UnmodeledBuiltinCall, Method: e.Callee})
				}
			}
			if direct == 0 && call.Kind != ir.Static {
				cg.diagnostics = append(cg.diagnostics, Diagnostic{Site: site, Kind: UnresolvedReceiver,
					Method: ir.NoMethod})
			}
		}
	}
	return cg
}
