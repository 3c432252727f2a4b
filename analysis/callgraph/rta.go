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
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"golang.org/x/tools/container/intsets"
)

// BuildCHA builds the call graph of the methods reachable from the entries with class hierarchy analysis: a virtual
// call may dispatch to any class in the subtype closure of the receiver's declared type (any class when the receiver
// is untyped), and a dynamic call may invoke any method bound by a Closure statement with the call's arity.
// If entries is empty, the entry points of the scene are used.
func BuildCHA(scene *ir.Scene, entries []ir.MethodID) *CallGraph {
	return newHierarchyAnalysis(scene, entries, false).run()
}

// BuildRTA builds the call graph with rapid type analysis: the CHA candidates are restricted to the classes
// instantiated by a live method, and the dynamic calls to the methods bound by a Closure statement of a live method.
//
// The construction tabulates the cross-product of the instantiated classes with the virtual call sites, and of the
// address-taken methods with the dynamic call sites. As each new class is instantiated, its methods become reachable
// from the known call sites, and as each new call site is discovered, each instantiated class's method becomes
// reachable from it.
func BuildRTA(scene *ir.Scene, entries []ir.MethodID) *CallGraph {
	return newHierarchyAnalysis(scene, entries, true).run()
}

// virtualSite is a virtual call site of a live method. classes is the set of classes the receiver may have according
// to its declared type, or nil when any class is possible.
type virtualSite struct {
	ref     ir.StmtRef
	sel     ir.Selector
	classes *intsets.Sparse
}

// dynamicSite is a call to a function value: a dynamic call, or the invocation of a callback by a native method.
type dynamicSite struct {
	ref    ir.StmtRef
	arity  int
	via    ir.MethodID
	effect int
}

func (d dynamicSite) accepts(m *ir.MethodDecl) bool {
	if d.via == ir.NoMethod {
		return len(m.Params) == d.arity
	}
	// callbacks may ignore trailing arguments
	return len(m.Params) <= d.arity
}

type hierarchyAnalysis struct {
	scene        *ir.Scene
	rta          bool
	builder      *Builder
	queue        []ir.MethodID
	instantiated intsets.Sparse
	addressTaken intsets.Sparse
	virtualSites []virtualSite
	dynamicSites []dynamicSite
}

func newHierarchyAnalysis(scene *ir.Scene, entries []ir.MethodID, rta bool) *hierarchyAnalysis {
	kind := CHA
	if rta {
		kind = CHARTA
	}
	h := &hierarchyAnalysis{
		scene:   scene,
		rta:     rta,
		builder: NewBuilder(scene, entries, kind),
	}
	if !rta {
		for _, c := range scene.Classes() {
			if !c.Interface {
				h.instantiated.Insert(int(c.ID))
			}
		}
		for _, m := range scene.AddressTaken() {
			h.addressTaken.Insert(int(m))
		}
	}
	return h
}

func (h *hierarchyAnalysis) run() *CallGraph {
	for _, e := range h.builder.Entries() {
		h.addLive(e)
	}
	for len(h.queue) > 0 {
		m := h.queue[0]
		h.queue = h.queue[1:]
		h.visit(h.scene.MethodByID(m))
	}
	return h.builder.Build()
}

func (h *hierarchyAnalysis) addLive(m ir.MethodID) {
	if h.builder.MarkLive(m) {
		h.queue = append(h.queue, m)
	}
}

func (h *hierarchyAnalysis) visit(m *ir.MethodDecl) {
	if !m.HasBody() {
		if site, ok := h.scene.NativeSite(m.ID); ok {
			h.instantiate(h.scene.Site(site).Class)
		}
		return
	}
	for i, stmt := range m.Body {
		ref := ir.StmtRef{Method: m.ID, Index: i}
		switch st := stmt.(type) {
		case *ir.New:
			h.instantiate(st.Allocated)
		case *ir.Closure:
			h.takeAddress(st.Target)
		case *ir.Call:
			switch st.Kind {
			case ir.Static:
				h.addEdge(Edge{Site: ref, Caller: m.ID, Callee: st.Callee})
			case ir.Virtual:
				h.addVirtualSite(m, ref, st)
			case ir.Dynamic:
				h.addDynamicSite(dynamicSite{ref: ref, arity: len(st.Args), via: ir.NoMethod, effect: -1})
			}
		}
	}
}

func (h *hierarchyAnalysis) addVirtualSite(m *ir.MethodDecl, ref ir.StmtRef, call *ir.Call) {
	site := virtualSite{ref: ref, sel: call.Selector()}
	if typ, ok := m.DeclaredType(call.Recv); ok {
		site.classes = &intsets.Sparse{}
		for _, c := range h.scene.SubtypesOf(typ) {
			site.classes.Insert(int(c))
		}
	}
	h.virtualSites = append(h.virtualSites, site)
	for _, c := range h.instantiated.AppendTo(nil) {
		h.dispatch(site, ir.ClassID(c))
	}
}

func (h *hierarchyAnalysis) addDynamicSite(site dynamicSite) {
	h.dynamicSites = append(h.dynamicSites, site)
	for _, m := range h.addressTaken.AppendTo(nil) {
		h.invoke(site, ir.MethodID(m))
	}
}

func (h *hierarchyAnalysis) instantiate(c ir.ClassID) {
	if c == ir.NoClass || !h.instantiated.Insert(int(c)) {
		return
	}
	for _, site := range h.virtualSites {
		h.dispatch(site, c)
	}
}

func (h *hierarchyAnalysis) takeAddress(m ir.MethodID) {
	if !h.addressTaken.Insert(int(m)) {
		return
	}
	for _, site := range h.dynamicSites {
		h.invoke(site, m)
	}
}

func (h *hierarchyAnalysis) dispatch(site virtualSite, c ir.ClassID) {
	if site.classes != nil && !site.classes.Has(int(c)) {
		return
	}
	if callee, ok := h.scene.Dispatch(c, site.sel); ok {
		h.addEdge(Edge{Site: site.ref, Caller: site.ref.Method, Callee: callee})
	}
}

func (h *hierarchyAnalysis) invoke(site dynamicSite, m ir.MethodID) {
	if !site.accepts(h.scene.MethodByID(m)) {
		return
	}
	if site.via == ir.NoMethod {
		h.addEdge(Edge{Site: site.ref, Caller: site.ref.Method, Callee: m})
	} else {
		h.addEdge(Edge{Site: site.ref, Caller: site.ref.Method, Callee: m, Callback: true, Via: site.via,
			Effect: site.effect})
	}
}

func (h *hierarchyAnalysis) addEdge(e Edge) {
	if !h.builder.AddEdge(e) {
		return
	}
	h.addLive(e.Callee)
	if e.Callback {
		return
	}
	// the callbacks of a native method are dynamic sites located at the call to the native method
	summary, ok := h.scene.Summary(e.Callee)
	if !ok {
		return
	}
	for _, i := range summary.Invokes() {
		h.addDynamicSite(dynamicSite{ref: e.Site, arity: len(summary.Effects[i].Args), via: e.Callee, effect: i})
	}
}
