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

package ir

import (
	"github.com/awslabs/ar-script-analyzer/analysis/summaries"
)

// Scene is a frozen program: classes, methods with their bodies, and allocation sites, all linked and indexed by
// dense ids. A scene is read-only and safe for concurrent use.
type Scene struct {
	classes      []*ClassDecl
	methods      []*MethodDecl
	sites        []*AllocationSite
	classByName  map[string]ClassID
	methodByName map[string]MethodID
	siteAt       map[StmtRef]SiteID
	nativeSite   map[MethodID]SiteID
	dispatch     []map[Selector]MethodID
	subtypes     [][]ClassID
	entries      []MethodID
	addressTaken []MethodID
	hasBuiltins  bool
}

// Classes returns all the classes of the scene, indexed by their ids
func (s *Scene) Classes() []*ClassDecl {
	return s.classes
}

// Methods returns all the methods of the scene, indexed by their ids
func (s *Scene) Methods() []*MethodDecl {
	return s.methods
}

// AllocationSites returns all the allocation sites of the scene, indexed by their ids
func (s *Scene) AllocationSites() []*AllocationSite {
	return s.sites
}

// Class returns the class with that name
func (s *Scene) Class(name string) (*ClassDecl, bool) {
	id, ok := s.classByName[name]
	if !ok {
		return nil, false
	}
	return s.classes[id], true
}

// ClassByID returns the class with that id
func (s *Scene) ClassByID(id ClassID) *ClassDecl {
	return s.classes[id]
}

// Method returns the method with the qualified name Class.method
func (s *Scene) Method(qualifiedName string) (*MethodDecl, bool) {
	id, ok := s.methodByName[qualifiedName]
	if !ok {
		return nil, false
	}
	return s.methods[id], true
}

// MethodByID returns the method with that id
func (s *Scene) MethodByID(id MethodID) *MethodDecl {
	return s.methods[id]
}

// MethodsOf returns the methods declared by the class
func (s *Scene) MethodsOf(class ClassID) []*MethodDecl {
	c := s.classes[class]
	res := make([]*MethodDecl, len(c.Methods))
	for i, id := range c.Methods {
		res[i] = s.methods[id]
	}
	return res
}

// ClassOf returns the class declaring the method
func (s *Scene) ClassOf(method MethodID) *ClassDecl {
	return s.classes[s.methods[method].Class]
}

// SubtypesOf returns the sorted ids of the subtypes of the class, including itself. The subtypes of an interface
// include the classes implementing it.
func (s *Scene) SubtypesOf(class ClassID) []ClassID {
	return s.subtypes[class]
}

// IsSubtype returns true if sub is a subtype of super
func (s *Scene) IsSubtype(sub ClassID, super ClassID) bool {
	for _, c := range s.subtypes[super] {
		if c == sub {
			return true
		}
	}
	return false
}

// Site returns the allocation site with that id
func (s *Scene) Site(id SiteID) *AllocationSite {
	return s.sites[id]
}

// SiteAt returns the allocation site of a New or Closure statement
func (s *Scene) SiteAt(ref StmtRef) (SiteID, bool) {
	id, ok := s.siteAt[ref]
	return id, ok
}

// NativeSite returns the allocation site of a native method whose model allocates an object
func (s *Scene) NativeSite(method MethodID) (SiteID, bool) {
	id, ok := s.nativeSite[method]
	return id, ok
}

// StatementsOf returns the body of the method, in declaration order
func (s *Scene) StatementsOf(method MethodID) []Statement {
	return s.methods[method].Body
}

// Statement returns the statement referenced, or nil for the exit node of a method
func (s *Scene) Statement(ref StmtRef) Statement {
	body := s.methods[ref.Method].Body
	if ref.Index < 0 || ref.Index >= len(body) {
		return nil
	}
	return body[ref.Index]
}

// Successors returns the control flow successors of a statement. The exit node has no successor.
func (s *Scene) Successors(ref StmtRef) []StmtRef {
	body := s.methods[ref.Method].Body
	if ref.Index >= len(body) {
		return nil
	}
	switch st := body[ref.Index].(type) {
	case *Return:
		return []StmtRef{{Method: ref.Method, Index: len(body)}}
	case *Branch:
		res := make([]StmtRef, 0, len(st.Targets))
		seen := map[int]bool{}
		for _, t := range st.Targets {
			if !seen[t] {
				seen[t] = true
				res = append(res, StmtRef{Method: ref.Method, Index: t})
			}
		}
		return res
	default:
		return []StmtRef{{Method: ref.Method, Index: ref.Index + 1}}
	}
}

// Dispatch returns the method a call with selector sel on an object of the class runs: the first non-abstract
// instance method with that selector on the superclass chain.
func (s *Scene) Dispatch(class ClassID, sel Selector) (MethodID, bool) {
	id, ok := s.dispatch[class][sel]
	return id, ok
}

// DeclaresField returns true if instances of the class have the field: the class or one of its superclasses declares
// it, or it is a synthetic field, or the class inherits from a native class.
func (s *Scene) DeclaresField(class ClassID, field string) bool {
	if summaries.IsSyntheticField(field) {
		return true
	}
	for c := class; c != NoClass; c = s.classes[c].SuperID {
		decl := s.classes[c]
		if decl.Native {
			return true
		}
		if f, ok := decl.Field(field); ok && !f.Static {
			return true
		}
	}
	return false
}

// StaticField returns the class declaring the static field, looking up the superclasses of class
func (s *Scene) StaticField(class ClassID, field string) (ClassID, bool) {
	return s.lookupStaticField(s.classes[class].Name, field)
}

// StaticFields returns the (declaring class, field) pairs of all the static fields, in declaration order
func (s *Scene) StaticFields() []StaticFieldRef {
	var res []StaticFieldRef
	for _, c := range s.classes {
		for _, f := range c.Fields {
			if f.Static {
				res = append(res, StaticFieldRef{Class: c.ID, Field: f.Name})
			}
		}
	}
	return res
}

// StaticFieldRef is a static field identified by its declaring class
type StaticFieldRef struct {
	Class ClassID
	Field string
}

// EntryPoints returns the entry points of the program
func (s *Scene) EntryPoints() []MethodID {
	return s.entries
}

// AddressTaken returns the methods bound by some Closure statement, in increasing id order
func (s *Scene) AddressTaken() []MethodID {
	return s.addressTaken
}

// HasBuiltins returns true if the scene contains the runtime library classes
func (s *Scene) HasBuiltins() bool {
	return s.hasBuiltins
}

// Summary returns the model of a native method, if there is one
func (s *Scene) Summary(method MethodID) (summaries.Summary, bool) {
	m := s.methods[method]
	if !m.Native {
		return summaries.Summary{}, false
	}
	return summaries.SummaryOf(s.classes[m.Class].Name, m.Name)
}

// StmtString returns the stable name Class.method@index of a statement
func (s *Scene) StmtString(ref StmtRef) string {
	return siteLabel(s.methods[ref.Method], ref.Index)
}
