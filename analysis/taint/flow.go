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
package taint

// This file defines the flow functions of the taint problem.

import (
	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/analysis/summaries"
)

// normalFlow returns the facts holding after a statement that is not a call, when e.d2 holds before it
func (s *solver) normalFlow(e pathEdge, ref ir.StmtRef, stmt ir.Statement) []Fact {
	d := e.d2
	if d.IsZero() {
		return append([]Fact{zeroFact}, s.generate(e, ref, stmt)...)
	}
	v := d.Path.Var
	keep := v != stmt.Def()
	var out []Fact
	switch st := stmt.(type) {
	case *ir.Assign:
		if v == st.Src {
			out = append(out, d.WithPath(d.Path.Rebase(st.Dst)))
		}
	case *ir.Load:
		if v == st.Base && s.mayHaveField(ref.Method, st.Base, st.Field) {
			if rest, ok := d.Path.Strip(st.Field); ok {
				out = append(out, d.WithPath(rest.Rebase(st.Dst)))
			}
		}
	case *ir.Store:
		if v == st.Src {
			keys := s.heapKeys(ref.Method, st.Base, st.Field)
			if len(keys) > 0 {
				p := NewAccessPath(st.Base).Append(st.Field, s.k).Concat(d.Path, s.k)
				out = append(out, d.WithPath(p))
			}
			for _, key := range keys {
				s.write(s.heapTable(key), d.WithPath(d.Path.Suffix()))
			}
			if d.IsTainted() && s.isSinkField(ref.Method, st.Base, st.Field) {
				s.report(d, ref, e)
			}
		}
	case *ir.StaticStore:
		if v == st.Src {
			s.write(s.staticTable(ir.StaticFieldRef{Class: st.Decl, Field: st.Field}), d.WithPath(d.Path.Suffix()))
			if d.IsTainted() && s.spec.IsSinkField(st.Class, st.Field) {
				s.report(d, ref, e)
			}
		}
	case *ir.Closure:
		for _, c := range st.Captures {
			if v == c {
				// captured variables are copied to the locals of the same name
				s.write(s.captureTable(st.Target), d)
			}
		}
	case *ir.Return:
		if v == st.Value {
			out = append(out, d.WithPath(d.Path.Rebase(retVar)))
		}
	}
	if keep {
		out = append(out, d)
	}
	return out
}

// generate returns the facts created by a statement from the zero fact: the field sources, and the taint read from
// the heap and static tables
func (s *solver) generate(e pathEdge, ref ir.StmtRef, stmt ir.Statement) []Fact {
	var out []Fact
	switch st := stmt.(type) {
	case *ir.Load:
		if s.isSourceField(ref.Method, st.Base, st.Field) {
			out = append(out, Fact{Path: NewAccessPath(st.Dst), Kind: Tainted, Origin: ref})
		}
		for _, key := range s.heapKeys(ref.Method, st.Base, st.Field) {
			for _, h := range s.read(s.heapTable(key), e) {
				out = append(out, h.WithPath(h.Path.Rebase(st.Dst)))
			}
		}
	case *ir.StaticLoad:
		if s.spec.IsSourceField(st.Class, st.Field) || s.spec.IsSourceField(s.scene.ClassByID(st.Decl).Name, st.Field) {
			out = append(out, Fact{Path: NewAccessPath(st.Dst), Kind: Tainted, Origin: ref})
		}
		for _, h := range s.read(s.staticTable(ir.StaticFieldRef{Class: st.Decl, Field: st.Field}), e) {
			out = append(out, h.WithPath(h.Path.Rebase(st.Dst)))
		}
	}
	return out
}

// rootedAtOperand returns true if the fact is about the receiver or one of the arguments of the call
func rootedAtOperand(d Fact, call *ir.Call) bool {
	if d.IsZero() {
		return false
	}
	if call.Recv != "" && d.Path.Var == call.Recv {
		return true
	}
	for _, a := range call.Args {
		if d.Path.Var == a {
			return true
		}
	}
	return false
}

func (s *solver) processCall(e pathEdge, ref ir.StmtRef, call *ir.Call) {
	d := e.d2
	if d.IsTainted() && rootedAtOperand(d, call) && s.isSinkCall(ref, call) {
		s.report(d, ref, e)
	}
	sanitizer := s.isSanitizerCall(ref, call)

	// call-to-return
	var out []Fact
	if d.IsZero() {
		out = append(out, zeroFact)
		if s.isSourceCall(ref, call) {
			if call.Dst != "" {
				out = append(out, Fact{Path: NewAccessPath(call.Dst), Kind: Tainted, Origin: ref})
			}
			if s.taintArgs {
				for _, a := range call.Args {
					out = append(out, Fact{Path: AccessPath{Var: a, Truncated: true}, Kind: Tainted, Origin: ref})
				}
			}
		}
	} else if d.Path.Var != call.Dst {
		out = append(out, d)
	}

	if sanitizer {
		if rootedAtOperand(d, call) && call.Dst != "" {
			out = append(out, Fact{Path: NewAccessPath(call.Dst), Kind: Sanitized, Origin: d.Origin})
		}
	} else {
		direct := 0
		for _, edge := range s.cg.EdgesAt(ref) {
			if edge.Callback {
				s.callbackFlow(e, call, edge)
				continue
			}
			direct++
			callee := s.scene.MethodByID(edge.Callee)
			switch {
			case callee.HasBody():
				s.callFlow(e, call, edge, callee)
			case callee.Native:
				if summary, ok := s.scene.Summary(callee.ID); ok {
					out = append(out, s.modelFlow(e, call, summary)...)
				} else {
					out = append(out, passThrough(d, call)...)
				}
			default:
				out = append(out, passThrough(d, call)...)
			}
		}
		if direct == 0 {
			out = append(out, passThrough(d, call)...)
		}
	}

	for _, succ := range s.scene.Successors(ref) {
		for _, f := range out {
			s.propagate(pathEdge{method: e.method, d1: e.d1, n: succ.Index, d2: f}, &e)
		}
	}
}

// passThrough is the flow of calls without a body to analyze: the taint of any operand flows to the result
func passThrough(d Fact, call *ir.Call) []Fact {
	if call.Dst == "" || !rootedAtOperand(d, call) {
		return nil
	}
	return []Fact{d.WithPath(NewAccessPath(call.Dst))}
}

// callFlow maps the fact at the call site to the start facts of a callee with a body
func (s *solver) callFlow(e pathEdge, call *ir.Call, edge callgraph.Edge, callee *ir.MethodDecl) {
	d := e.d2
	if d.IsZero() {
		s.enterCallee(e, edge, zeroFact)
		return
	}
	for i, p := range callee.Params {
		if i < len(call.Args) && call.Args[i] == d.Path.Var {
			s.enterCallee(e, edge, d.WithPath(d.Path.Rebase(p.Name)))
		}
	}
	if call.Recv != "" && call.Recv == d.Path.Var && !callee.Static {
		s.enterCallee(e, edge, d.WithPath(d.Path.Rebase(ir.This)))
	}
}

// callbackFlow maps the fact at the call to a native method to the start facts of a closure the native method calls,
// following the arguments of the invoke effect of the native method's model
func (s *solver) callbackFlow(e pathEdge, call *ir.Call, edge callgraph.Edge) {
	callee := s.scene.MethodByID(edge.Callee)
	if !callee.HasBody() {
		return
	}
	if e.d2.IsZero() {
		s.enterCallee(e, edge, zeroFact)
	}
	effect := s.effectOf(edge)
	for j, arg := range effect.Args {
		if j >= len(callee.Params) {
			break
		}
		for _, v := range s.readValue(e, call, arg) {
			s.enterCallee(e, edge, v.WithPath(v.Path.Rebase(callee.Params[j].Name)))
		}
	}
}

// modelFlow returns the facts created at the return site of a call to a native method by the copy effects of its
// model
func (s *solver) modelFlow(e pathEdge, call *ir.Call, summary summaries.Summary) []Fact {
	var out []Fact
	for _, effect := range summary.Effects {
		if effect.Kind != summaries.Copy {
			continue
		}
		values := s.readValue(e, call, effect.Src)
		if len(values) > 0 {
			out = append(out, s.writeValue(e.stmt(), call, effect.Dst, values)...)
		}
	}
	return out
}

func operandVar(call *ir.Call, o summaries.Operand) string {
	switch {
	case o == summaries.Receiver:
		return call.Recv
	case o == summaries.Result:
		return call.Dst
	case o >= 0 && int(o) < len(call.Args):
		return call.Args[o]
	}
	return ""
}

// readValue returns the facts about a value of a model when e.d2 holds at the call, rooted at the heap. The zero
// fact reads the heap table of the value's field.
func (s *solver) readValue(e pathEdge, call *ir.Call, v summaries.Value) []Fact {
	base := operandVar(call, v.Operand)
	if base == "" {
		return nil
	}
	d := e.d2
	if d.IsZero() {
		if v.Field == "" {
			return nil
		}
		var out []Fact
		for _, key := range s.heapKeys(e.method, base, v.Field) {
			out = append(out, s.read(s.heapTable(key), e)...)
		}
		return out
	}
	if d.Path.Var != base {
		return nil
	}
	if v.Field == "" {
		return []Fact{d.WithPath(d.Path.Suffix())}
	}
	if !s.mayHaveField(e.method, base, v.Field) {
		return nil
	}
	if rest, ok := d.Path.Strip(v.Field); ok {
		return []Fact{d.WithPath(rest.Suffix())}
	}
	return nil
}

// writeValue writes the facts rooted at the heap to a value of a model at the call site, and returns the local facts
// created
func (s *solver) writeValue(site ir.StmtRef, call *ir.Call, v summaries.Value, facts []Fact) []Fact {
	base := operandVar(call, v.Operand)
	if base == "" {
		return nil
	}
	var out []Fact
	for _, f := range facts {
		if v.Field == "" {
			out = append(out, f.WithPath(f.Path.Rebase(base)))
			continue
		}
		keys := s.heapKeys(site.Method, base, v.Field)
		if len(keys) == 0 {
			continue
		}
		out = append(out, f.WithPath(NewAccessPath(base).Append(v.Field, s.k).Concat(f.Path, s.k)))
		for _, key := range keys {
			s.write(s.heapTable(key), f)
		}
	}
	return out
}
