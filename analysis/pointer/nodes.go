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

// NodeID is the index of a node of the constraint graph
type NodeID int

// NodeKind is the kind of value a node stands for
type NodeKind int

const (
	// LocalNode is a local variable of a method, parameters and receiver included
	LocalNode NodeKind = iota
	// FieldNode is an instance field of an abstract object
	FieldNode
	// StaticNode is a static field, identified by its declaring class
	StaticNode
	// ReturnNode holds the values returned by a method
	ReturnNode
	// TempNode is an intermediate value of a native method model at one call site
	TempNode
)

func (k NodeKind) String() string {
	switch k {
	case LocalNode:
		return "local"
	case FieldNode:
		return "field"
	case StaticNode:
		return "static"
	case ReturnNode:
		return "return"
	case TempNode:
		return "temp"
	}
	return "unknown"
}

// Node is a node of the constraint graph
type Node struct {
	ID   NodeID
	Kind NodeKind
	// Method is the method of local and return nodes, and the caller of temp nodes
	Method ir.MethodID
	// Var is the variable name of local nodes, or the field name of field and static nodes
	Var string
	// Site is the abstract object of field nodes
	Site ir.SiteID
	// Class is the declaring class of static nodes
	Class ir.ClassID

	label string
}

// Label returns a readable name of the node that is stable across runs
func (n *Node) Label() string {
	return n.label
}

func (n *Node) String() string {
	return n.label
}

// solverState is the state of a node during solving
type solverState struct {
	complex []constraint   // complex constraints attached to this node
	copyTo  intsets.Sparse // simple copy constraint edges
	pts     intsets.Sparse // points-to set of this node, as a set of site ids
	prevPTS intsets.Sparse // pts(n) in previous iteration (for difference propagation)
}

type localKey struct {
	method ir.MethodID
	name   string
}

type fieldKey struct {
	site  ir.SiteID
	field string
}

// nodes is the arena of the nodes of the constraint graph, with the indexes to find nodes by key
type nodes struct {
	scene   *ir.Scene
	all     []*Node
	solve   []*solverState
	locals  map[localKey]NodeID
	returns map[ir.MethodID]NodeID
	fields  map[fieldKey]NodeID
	statics map[ir.StaticFieldRef]NodeID
}

func newNodes(scene *ir.Scene) *nodes {
	return &nodes{
		scene:   scene,
		locals:  map[localKey]NodeID{},
		returns: map[ir.MethodID]NodeID{},
		fields:  map[fieldKey]NodeID{},
		statics: map[ir.StaticFieldRef]NodeID{},
	}
}

func (ns *nodes) add(n *Node) NodeID {
	n.ID = NodeID(len(ns.all))
	ns.all = append(ns.all, n)
	ns.solve = append(ns.solve, &solverState{})
	return n.ID
}

func (ns *nodes) local(m ir.MethodID, name string) NodeID {
	k := localKey{method: m, name: name}
	if id, ok := ns.locals[k]; ok {
		return id
	}
	id := ns.add(&Node{Kind: LocalNode, Method: m, Var: name, Site: ir.NoSite, Class: ir.NoClass,
		label: fmt.Sprintf("%s:%s", ns.scene.MethodByID(m), name)})
	ns.locals[k] = id
	return id
}

func (ns *nodes) ret(m ir.MethodID) NodeID {
	if id, ok := ns.returns[m]; ok {
		return id
	}
	id := ns.add(&Node{Kind: ReturnNode, Method: m, Site: ir.NoSite, Class: ir.NoClass,
		label: fmt.Sprintf("%s:$ret", ns.scene.MethodByID(m))})
	ns.returns[m] = id
	return id
}

func (ns *nodes) field(site ir.SiteID, field string) NodeID {
	k := fieldKey{site: site, field: field}
	if id, ok := ns.fields[k]; ok {
		return id
	}
	id := ns.add(&Node{Kind: FieldNode, Method: ir.NoMethod, Var: field, Site: site, Class: ir.NoClass,
		label: fmt.Sprintf("%s.%s", ns.scene.Site(site), field)})
	ns.fields[k] = id
	return id
}

func (ns *nodes) static(ref ir.StaticFieldRef) NodeID {
	if id, ok := ns.statics[ref]; ok {
		return id
	}
	id := ns.add(&Node{Kind: StaticNode, Method: ir.NoMethod, Var: ref.Field, Site: ir.NoSite, Class: ref.Class,
		label: fmt.Sprintf("%s::%s", ns.scene.ClassByID(ref.Class), ref.Field)})
	ns.statics[ref] = id
	return id
}

// temp returns a fresh node for an intermediate value of the model of callee at site
func (ns *nodes) temp(site ir.StmtRef, callee ir.MethodID, what string) NodeID {
	return ns.add(&Node{Kind: TempNode, Method: site.Method, Var: what, Site: ir.NoSite, Class: ir.NoClass,
		label: fmt.Sprintf("%s[%s %s]", ns.scene.StmtString(site), ns.scene.MethodByID(callee), what)})
}
