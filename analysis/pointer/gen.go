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
package pointer

// This file defines the constraint generation phase: the constraints of a method are generated when the method
// becomes live, and the binding constraints of a call edge when the edge is discovered.

import (
	"fmt"

	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/analysis/summaries"
)

func (a *analysis) addConstraint(c constraint) {
	a.constraints = append(a.constraints, c)
}

func (a *analysis) copy(dst, src NodeID) {
	if dst != src && dst != noNode && src != noNode {
		a.addConstraint(&copyConstraint{dst: dst, src: src})
	}
}

// addLive marks the method live and generates the constraints of its body the first time
func (a *analysis) addLive(m ir.MethodID) {
	if !a.builder.MarkLive(m) {
		return
	}
	decl := a.scene.MethodByID(m)
	a.log.Tracef("live method %s", decl)
	if decl.HasBody() {
		a.genMethod(decl)
	}
}

func (a *analysis) genMethod(m *ir.MethodDecl) {
	local := func(v string) NodeID { return a.nodes.local(m.ID, v) }
	for i, stmt := range m.Body {
		switch st := stmt.(type) {
		case *ir.Assign:
			a.copy(local(st.Dst), local(st.Src))
		case *ir.Load:
			a.addConstraint(&loadConstraint{field: st.Field, dst: local(st.Dst), src: local(st.Base)})
		case *ir.Store:
			a.addConstraint(&storeConstraint{field: st.Field, dst: local(st.Base), src: local(st.Src)})
		case *ir.StaticLoad:
			a.copy(local(st.Dst), a.nodes.static(ir.StaticFieldRef{Class: st.Decl, Field: st.Field}))
		case *ir.StaticStore:
			a.copy(a.nodes.static(ir.StaticFieldRef{Class: st.Decl, Field: st.Field}), local(st.Src))
		case *ir.New:
			a.addConstraint(&addrConstraint{dst: local(st.Dst), site: st.Site})
		case *ir.Closure:
			a.addConstraint(&addrConstraint{dst: local(st.Dst), site: st.Site})
			for _, c := range st.Captures {
				a.copy(a.nodes.local(st.Target, c), local(c))
			}
		case *ir.Return:
			if st.Value != "" {
				a.copy(a.nodes.ret(m.ID), local(st.Value))
			}
		case *ir.Call:
			a.genCall(ir.StmtRef{Method: m.ID, Index: i}, st)
		}
	}
}

func (a *analysis) genCall(site ir.StmtRef, call *ir.Call) {
	switch call.Kind {
	case ir.Static:
		a.callEdge(site, call, call.Callee)
		callee := a.scene.MethodByID(call.Callee)
		if call.Recv != "" && !callee.Static && callee.HasBody() {
			a.copy(a.nodes.local(callee.ID, ir.This), a.nodes.local(site.Method, call.Recv))
		}
	case ir.Virtual:
		a.addConstraint(&invokeConstraint{site: site, call: call, recv: a.nodes.local(site.Method, call.Recv)})
	case ir.Dynamic:
		a.addConstraint(&dynamicConstraint{
			site:   site,
			fn:     a.nodes.local(site.Method, call.Func),
			args:   a.argNodes(site, call),
			result: a.resultNode(site, call),
			via:    ir.NoMethod,
			effect: -1,
		})
	}
}

func (a *analysis) argNodes(site ir.StmtRef, call *ir.Call) []NodeID {
	args := make([]NodeID, len(call.Args))
	for i, v := range call.Args {
		args[i] = a.nodes.local(site.Method, v)
	}
	return args
}

func (a *analysis) resultNode(site ir.StmtRef, call *ir.Call) NodeID {
	if call.Dst == "" {
		return noNode
	}
	return a.nodes.local(site.Method, call.Dst)
}

// callEdge adds the edge from a call statement to callee. When the edge is new, the callee becomes live and the
// arguments and result are bound, or the model of the callee is applied if it is a native method.
func (a *analysis) callEdge(site ir.StmtRef, call *ir.Call, callee ir.MethodID) {
	if !a.builder.AddEdge(callgraph.Edge{Site: site, Caller: site.Method, Callee: callee}) {
		return
	}
	a.addLive(callee)
	decl := a.scene.MethodByID(callee)
	if decl.Native {
		a.genModel(site, call, decl)
		return
	}
	a.bind(decl, a.argNodes(site, call), a.resultNode(site, call))
}

// closureEdge adds the edge from a dynamic call, or a callback invocation, to the method bound by a closure
func (a *analysis) closureEdge(c *dynamicConstraint, target *ir.MethodDecl) {
	e := callgraph.Edge{Site: c.site, Caller: c.site.Method, Callee: target.ID}
	if c.via != ir.NoMethod {
		e.Callback, e.Via, e.Effect = true, c.via, c.effect
	}
	if !a.builder.AddEdge(e) {
		return
	}
	a.addLive(target.ID)
	a.bind(target, c.args, c.result)
}

func (a *analysis) bind(callee *ir.MethodDecl, args []NodeID, result NodeID) {
	for i, p := range callee.Params {
		if i < len(args) {
			a.copy(a.nodes.local(callee.ID, p.Name), args[i])
		}
	}
	if result != noNode && callee.HasBody() {
		a.copy(result, a.nodes.ret(callee.ID))
	}
}

// modelApplication generates the constraints of the summary of a native method at one call site
type modelApplication struct {
	a      *analysis
	site   ir.StmtRef
	call   *ir.Call
	callee *ir.MethodDecl
	result NodeID
}

// genModel generates the constraints of the effects of the summary of the native method called at site. Native
// methods without summary have no effect.
func (a *analysis) genModel(site ir.StmtRef, call *ir.Call, callee *ir.MethodDecl) {
	summary, ok := a.scene.Summary(callee.ID)
	if !ok {
		a.log.Debugf("no model for %s called at %s", callee, a.scene.StmtString(site))
		return
	}
	app := &modelApplication{a: a, site: site, call: call, callee: callee, result: a.resultNode(site, call)}
	for i, e := range summary.Effects {
		switch e.Kind {
		case summaries.Copy:
			app.write(e.Dst, app.read(e.Src, fmt.Sprintf("#%d", i)))
		case summaries.Alloc:
			obj, ok := a.scene.NativeSite(callee.ID)
			if !ok {
				continue
			}
			t := a.nodes.temp(site, callee.ID, fmt.Sprintf("#%d new", i))
			a.addConstraint(&addrConstraint{dst: t, site: obj})
			app.write(e.Dst, t)
		case summaries.Invoke:
			fn := app.read(e.Src, fmt.Sprintf("#%d fn", i))
			if fn == noNode {
				continue
			}
			args := make([]NodeID, len(e.Args))
			for j, arg := range e.Args {
				args[j] = app.read(arg, fmt.Sprintf("#%d arg%d", i, j))
			}
			result := noNode
			if !e.Dst.IsNone() {
				result = a.nodes.temp(site, callee.ID, fmt.Sprintf("#%d ret", i))
				app.write(e.Dst, result)
			}
			a.addConstraint(&dynamicConstraint{site: site, fn: fn, args: args, result: result, via: callee.ID,
				effect: i})
		}
	}
}

// operand returns the node of an operand at the call site. A dropped result gets a temporary node, so that the
// effects on the returned object are still applied.
func (app *modelApplication) operand(o summaries.Operand) NodeID {
	caller := app.site.Method
	switch {
	case o == summaries.NoOperand:
		return noNode
	case o == summaries.Receiver:
		if app.call.Recv == "" {
			return noNode
		}
		return app.a.nodes.local(caller, app.call.Recv)
	case o == summaries.Result:
		if app.result == noNode {
			app.result = app.a.nodes.temp(app.site, app.callee.ID, "result")
		}
		return app.result
	case int(o) < len(app.call.Args):
		return app.a.nodes.local(caller, app.call.Args[o])
	}
	return noNode
}

func (app *modelApplication) read(v summaries.Value, what string) NodeID {
	base := app.operand(v.Operand)
	if base == noNode || v.Field == "" {
		return base
	}
	t := app.a.nodes.temp(app.site, app.callee.ID, what)
	app.a.addConstraint(&loadConstraint{field: v.Field, dst: t, src: base})
	return t
}

func (app *modelApplication) write(v summaries.Value, src NodeID) {
	if src == noNode {
		return
	}
	base := app.operand(v.Operand)
	if base == noNode {
		return
	}
	if v.Field == "" {
		app.a.copy(base, src)
		return
	}
	app.a.addConstraint(&storeConstraint{field: v.Field, dst: base, src: src})
}
