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

import (
	"fmt"

	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"golang.org/x/tools/container/intsets"
)

// noNode marks a value that is dropped, e.g. the result of a call that is not assigned
const noNode NodeID = -1

type constraint interface {
	// For a complex constraint, returns the NodeID of the pointer
	// to which it is attached. For addr and copy, returns dst.
	ptr() NodeID

	// solve is called for complex constraints when the pts for
	// the node to which they are attached has changed.
	solve(a *analysis, delta *intsets.Sparse)

	String() string
}

// dst = new C, dst = closure C::m
// pts(dst) ⊇ {site}
// A base constraint used to initialize the solver's pt sets
type addrConstraint struct {
	dst  NodeID // (ptr)
	site ir.SiteID
}

func (c *addrConstraint) ptr() NodeID                      { return c.dst }
func (c *addrConstraint) solve(*analysis, *intsets.Sparse) {}
func (c *addrConstraint) String() string                   { return fmt.Sprintf("n%d = &o%d", c.dst, c.site) }

// dst = src
// A simple constraint represented directly as a copyTo graph edge.
type copyConstraint struct {
	dst NodeID // (ptr)
	src NodeID
}

func (c *copyConstraint) ptr() NodeID                      { return c.dst }
func (c *copyConstraint) solve(*analysis, *intsets.Sparse) {}
func (c *copyConstraint) String() string                   { return fmt.Sprintf("n%d = n%d", c.dst, c.src) }

// dst = src.field
// A complex constraint attached to src (the pointer)
type loadConstraint struct {
	field string
	dst   NodeID
	src   NodeID // (ptr)
}

func (c *loadConstraint) ptr() NodeID { return c.src }
func (c *loadConstraint) String() string {
	return fmt.Sprintf("n%d = n%d.%s", c.dst, c.src, c.field)
}

func (c *loadConstraint) solve(a *analysis, delta *intsets.Sparse) {
	var changed bool
	for _, x := range delta.AppendTo(nil) {
		site := ir.SiteID(x)
		if !a.hasField(site, c.field) {
			continue
		}
		if a.onlineCopy(c.dst, a.nodes.field(site, c.field)) {
			changed = true
		}
	}
	if changed {
		a.addWork(c.dst)
	}
}

// dst.field = src
// A complex constraint attached to dst (the pointer)
type storeConstraint struct {
	field string
	dst   NodeID // (ptr)
	src   NodeID
}

func (c *storeConstraint) ptr() NodeID { return c.dst }
func (c *storeConstraint) String() string {
	return fmt.Sprintf("n%d.%s = n%d", c.dst, c.field, c.src)
}

func (c *storeConstraint) solve(a *analysis, delta *intsets.Sparse) {
	for _, x := range delta.AppendTo(nil) {
		site := ir.SiteID(x)
		if !a.hasField(site, c.field) {
			continue
		}
		f := a.nodes.field(site, c.field)
		if a.onlineCopy(f, c.src) {
			a.addWork(f)
		}
	}
}

// recv.m(args...)
// A complex constraint attached to recv: each object the receiver points to selects the callee by dispatch, and is
// bound to the receiver of that callee.
type invokeConstraint struct {
	site ir.StmtRef
	call *ir.Call
	recv NodeID // (ptr)
}

func (c *invokeConstraint) ptr() NodeID { return c.recv }
func (c *invokeConstraint) String() string {
	return fmt.Sprintf("invoke n%d.%s", c.recv, c.call.Selector())
}

func (c *invokeConstraint) solve(a *analysis, delta *intsets.Sparse) {
	sel := c.call.Selector()
	for _, x := range delta.AppendTo(nil) {
		obj := a.scene.Site(ir.SiteID(x))
		if obj.IsClosure() {
			continue
		}
		callee, ok := a.scene.Dispatch(obj.Class, sel)
		if !ok {
			continue
		}
		a.callEdge(c.site, c.call, callee)
		if m := a.scene.MethodByID(callee); m.HasBody() {
			this := a.nodes.local(callee, ir.This)
			if a.addLabel(this, obj.ID) {
				a.addWork(this)
			}
		}
	}
}

// result = fn(args...)
// A complex constraint attached to fn, the function value. When via is a native method, the constraint is the
// invocation of a callback by the model of via at the call site.
type dynamicConstraint struct {
	site   ir.StmtRef
	fn     NodeID // (ptr)
	args   []NodeID
	result NodeID
	via    ir.MethodID
	effect int
}

func (c *dynamicConstraint) ptr() NodeID { return c.fn }
func (c *dynamicConstraint) String() string {
	return fmt.Sprintf("n%d = call n%d/%d", c.result, c.fn, len(c.args))
}

func (c *dynamicConstraint) solve(a *analysis, delta *intsets.Sparse) {
	for _, x := range delta.AppendTo(nil) {
		obj := a.scene.Site(ir.SiteID(x))
		if !obj.IsClosure() {
			continue
		}
		target := a.scene.MethodByID(obj.Closure)
		if c.via == ir.NoMethod && len(target.Params) != len(c.args) {
			continue
		}
		// callbacks may ignore trailing arguments
		if c.via != ir.NoMethod && len(target.Params) > len(c.args) {
			continue
		}
		a.closureEdge(c, target)
	}
}
