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
	"fmt"
	"sort"

	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/internal/funcutil"
	"github.com/awslabs/ar-script-analyzer/internal/graphutil"
)

// ResolutionKind records how the callees of a call site were computed
type ResolutionKind int

const (
	// StaticResolved sites have exactly one callee, known at build time
	StaticResolved ResolutionKind = iota
	// CHA sites are resolved with the class hierarchy only
	CHA
	// CHARTA sites are resolved with the class hierarchy, restricted to the instantiated classes
	CHARTA
	// PointerResolved sites are resolved with the points-to sets of the receivers and function values
	PointerResolved
)

func (k ResolutionKind) String() string {
	switch k {
	case StaticResolved:
		return "static"
	case CHA:
		return "cha"
	case CHARTA:
		return "cha+rta"
	case PointerResolved:
		return "pointer"
	}
	return "unknown"
}

// Edge is a call edge from a call site to a callee.
// Callback edges represent the calls a native method performs on one of its function-valued operands: the site is the
// call to the native method Via, and Effect is the index of the Invoke effect in the summary of Via.
type Edge struct {
	Site     ir.StmtRef
	Caller   ir.MethodID
	Callee   ir.MethodID
	Kind     ResolutionKind
	Callback bool
	Via      ir.MethodID
	Effect   int
}

func (e Edge) less(o Edge) bool {
	if e.Site != o.Site {
		return e.Site.Less(o.Site)
	}
	if e.Callback != o.Callback {
		return !e.Callback
	}
	if e.Callee != o.Callee {
		return e.Callee < o.Callee
	}
	if e.Via != o.Via {
		return e.Via < o.Via
	}
	return e.Effect < o.Effect
}

type edgeKey struct {
	site   ir.StmtRef
	callee ir.MethodID
	via    ir.MethodID
	effect int
}

func (e Edge) key() edgeKey {
	if !e.Callback {
		return edgeKey{site: e.Site, callee: e.Callee, via: ir.NoMethod, effect: -1}
	}
	return edgeKey{site: e.Site, callee: e.Callee, via: e.Via, effect: e.Effect}
}

// DiagnosticKind is the kind of resolution gap reported at a call site
type DiagnosticKind int

const (
	// UnresolvedReceiver is reported for a live virtual or dynamic call site without any callee
	UnresolvedReceiver DiagnosticKind = iota
	// UnmodeledBuiltinCall is reported when a site calls a native method that has no summary
	UnmodeledBuiltinCall
)

func (k DiagnosticKind) String() string {
	switch k {
	case UnresolvedReceiver:
		return "unresolved-receiver"
	case UnmodeledBuiltinCall:
		return "unmodeled-builtin-call"
	}
	return "unknown"
}

// Diagnostic is a resolution gap at a call site. Diagnostics are not errors: the analyses are sound for the code
// they cover.
type Diagnostic struct {
	Site   ir.StmtRef
	Kind   DiagnosticKind
	Method ir.MethodID
}

// CallGraph is the frozen call graph of a scene. Edges are sorted by site, then callee, and all the queries return
// results in a deterministic order.
type CallGraph struct {
	Scene       *ir.Scene
	edges       []Edge
	bySite      map[ir.StmtRef][]int
	out         map[ir.MethodID][]int
	in          map[ir.MethodID][]int
	siteKinds   map[ir.StmtRef]ResolutionKind
	live        []bool
	entries     []ir.MethodID
	diagnostics []Diagnostic
	graph       *graphutil.IntGraph
}

// Edges returns all the edges of the call graph
func (cg *CallGraph) Edges() []Edge {
	return cg.edges
}

// EdgesAt returns the edges out of a call site, including callback edges
func (cg *CallGraph) EdgesAt(site ir.StmtRef) []Edge {
	return cg.collect(cg.bySite[site])
}

// OutEdges returns the edges out of the call sites of the method
func (cg *CallGraph) OutEdges(method ir.MethodID) []Edge {
	return cg.collect(cg.out[method])
}

// InEdges returns the edges into the method
func (cg *CallGraph) InEdges(method ir.MethodID) []Edge {
	return cg.collect(cg.in[method])
}

func (cg *CallGraph) collect(idx []int) []Edge {
	res := make([]Edge, len(idx))
	for i, e := range idx {
		res[i] = cg.edges[e]
	}
	return res
}

// Callees returns the methods called directly at the site, callbacks excluded
func (cg *CallGraph) Callees(site ir.StmtRef) []ir.MethodID {
	var res []ir.MethodID
	for _, i := range cg.bySite[site] {
		if !cg.edges[i].Callback {
			res = append(res, cg.edges[i].Callee)
		}
	}
	return sortedMethods(res)
}

// CalleesOf returns the methods called by the method, callbacks included
func (cg *CallGraph) CalleesOf(method ir.MethodID) []ir.MethodID {
	var res []ir.MethodID
	for _, i := range cg.out[method] {
		res = append(res, cg.edges[i].Callee)
	}
	return sortedMethods(res)
}

// CallersOf returns the methods calling the method
func (cg *CallGraph) CallersOf(method ir.MethodID) []ir.MethodID {
	var res []ir.MethodID
	for _, i := range cg.in[method] {
		res = append(res, cg.edges[i].Caller)
	}
	return sortedMethods(res)
}

func sortedMethods(ms []ir.MethodID) []ir.MethodID {
	sort.Slice(ms, func(i, j int) bool { return ms[i] < ms[j] })
	return funcutil.Dedup(ms)
}

// SiteKind returns the resolution kind of a call site of a live method
func (cg *CallGraph) SiteKind(site ir.StmtRef) (ResolutionKind, bool) {
	k, ok := cg.siteKinds[site]
	return k, ok
}

// IsLive returns true if the method is reachable from the entry points
func (cg *CallGraph) IsLive(method ir.MethodID) bool {
	return int(method) < len(cg.live) && cg.live[method]
}

// LiveMethods returns the methods reachable from the entry points, in increasing id order
func (cg *CallGraph) LiveMethods() []ir.MethodID {
	var res []ir.MethodID
	for id, ok := range cg.live {
		if ok {
			res = append(res, ir.MethodID(id))
		}
	}
	return res
}

// EntryPoints returns the methods the call graph was built from
func (cg *CallGraph) EntryPoints() []ir.MethodID {
	return cg.entries
}

// Diagnostics returns the resolution gaps, sorted by site
func (cg *CallGraph) Diagnostics() []Diagnostic {
	return cg.diagnostics
}

// Graph returns the method-level call graph: node i is the method with id i. The graph implements Gonum's
// graph.Directed and yourbasic's graph.Iterator.
func (cg *CallGraph) Graph() *graphutil.IntGraph {
	return cg.graph
}

// Reachable returns the methods reachable from the roots through call edges, roots included
func (cg *CallGraph) Reachable(roots ...ir.MethodID) []ir.MethodID {
	ids := make([]int, len(roots))
	for i, r := range roots {
		ids[i] = int(r)
	}
	reached := cg.graph.ReachableFrom(ids)
	res := make([]ir.MethodID, len(reached))
	for i, id := range reached {
		res[i] = ir.MethodID(id)
	}
	return res
}

// SCCs returns the strongly connected components of the live methods, callees first: a component only calls
// methods in itself or in components that appear before it.
func (cg *CallGraph) SCCs() [][]ir.MethodID {
	succ := func(m ir.MethodID) []ir.MethodID { return cg.CalleesOf(m) }
	sccs := graphutil.StronglyConnectedComponents(cg.LiveMethods(), succ)
	for _, scc := range sccs {
		sort.Slice(scc, func(i, j int) bool { return scc[i] < scc[j] })
	}
	return sccs
}

// RecursiveComponents returns the components of SCCs that contain a cycle: several methods, or a method calling
// itself.
func (cg *CallGraph) RecursiveComponents() [][]ir.MethodID {
	var res [][]ir.MethodID
	for _, scc := range cg.SCCs() {
		if len(scc) > 1 || funcutil.Contains(cg.CalleesOf(scc[0]), scc[0]) {
			res = append(res, scc)
		}
	}
	return res
}

// EdgeString returns a readable representation of an edge
func (cg *CallGraph) EdgeString(e Edge) string {
	s := fmt.Sprintf("%s -> %s [%s", cg.Scene.StmtString(e.Site), cg.Scene.MethodByID(e.Callee), e.Kind)
	if e.Callback {
		s += fmt.Sprintf(", callback via %s#%d", cg.Scene.MethodByID(e.Via), e.Effect)
	}
	return s + "]"
}

// DiagnosticString returns a readable representation of a diagnostic
func (cg *CallGraph) DiagnosticString(d Diagnostic) string {
	s := fmt.Sprintf("%s %s", cg.Scene.StmtString(d.Site), d.Kind)
	if d.Method != ir.NoMethod {
		s += " " + cg.Scene.MethodByID(d.Method).String()
	}
	return s
}
