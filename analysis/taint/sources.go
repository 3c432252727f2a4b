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

import (
	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/analysis/pointer"
	"github.com/awslabs/ar-script-analyzer/internal/funcutil"
)

// problem is one taint tracking problem on a scene whose call graph and points-to sets have been computed
type problem struct {
	spec  config.TaintSpec
	scene *ir.Scene
	cg    *callgraph.CallGraph
	pts   *pointer.Store
}

// calleeIdentifiers returns the (class, method) names a call may run. Calls without resolved callee are
// identified by their syntax: the class of a static call, the declared type of a receiver, the name of a function
// value.
func (p *problem) calleeIdentifiers(site ir.StmtRef, call *ir.Call) [][2]string {
	var ids [][2]string
	for _, m := range p.cg.Callees(site) {
		ids = append(ids, [2]string{p.scene.ClassOf(m).Name, p.scene.MethodByID(m).Name})
	}
	if len(ids) > 0 {
		return ids
	}
	switch call.Kind {
	case ir.Static:
		return [][2]string{{call.Class, call.Name}}
	case ir.Virtual:
		class := ""
		if c, ok := p.scene.MethodByID(site.Method).DeclaredType(call.Recv); ok {
			class = p.scene.ClassByID(c).Name
		}
		return [][2]string{{class, call.Name}}
	default:
		return [][2]string{{"", call.Func}}
	}
}

// matchingCallee returns the qualified name of the first callee of the call matching the predicate
func (p *problem) matchingCallee(site ir.StmtRef, call *ir.Call,
	pred func(class, method string) bool) funcutil.Optional[string] {
	for _, id := range p.calleeIdentifiers(site, call) {
		if pred(id[0], id[1]) {
			return funcutil.Some(id[0] + "." + id[1])
		}
	}
	return funcutil.None[string]()
}

func (p *problem) isSourceCall(site ir.StmtRef, call *ir.Call) bool {
	return p.matchingCallee(site, call, p.spec.IsSourceMethod).IsSome()
}

func (p *problem) isSinkCall(site ir.StmtRef, call *ir.Call) bool {
	return p.matchingCallee(site, call, p.spec.IsSinkMethod).IsSome()
}

func (p *problem) isSanitizerCall(site ir.StmtRef, call *ir.Call) bool {
	return p.matchingCallee(site, call, p.spec.IsSanitizerMethod).IsSome()
}

// baseClasses returns the names of the classes of the objects variable v of the method may point to, and of its
// declared type
func (p *problem) baseClasses(method ir.MethodID, v string) []string {
	var names []string
	if c, ok := p.scene.MethodByID(method).DeclaredType(v); ok {
		names = append(names, p.scene.ClassByID(c).Name)
	}
	for _, site := range p.pts.Local(method, v) {
		if obj := p.scene.Site(site); !obj.IsClosure() {
			names = append(names, p.scene.ClassByID(obj.Class).Name)
		}
	}
	if len(names) == 0 {
		names = append(names, "")
	}
	return names
}

// isSourceField returns true if reading the field of the objects v points to is a source
func (p *problem) isSourceField(method ir.MethodID, v string, field string) bool {
	return funcutil.Exists(p.baseClasses(method, v), func(c string) bool { return p.spec.IsSourceField(c, field) })
}

// isSinkField returns true if writing to the field of the objects v points to is a sink
func (p *problem) isSinkField(method ir.MethodID, v string, field string) bool {
	return funcutil.Exists(p.baseClasses(method, v), func(c string) bool { return p.spec.IsSinkField(c, field) })
}
