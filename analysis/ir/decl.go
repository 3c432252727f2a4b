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

import "fmt"

// FieldDecl declares a field of a class
type FieldDecl struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type,omitempty"`
	Static bool   `yaml:"static,omitempty"`
}

// Param is a formal parameter of a method
type Param struct {
	Name string
	Type string
}

// ClassDecl is a class or interface of the scene. The exported fields before ID are set by the producer of the
// scene; the others are computed by Freeze.
type ClassDecl struct {
	Name       string
	Super      string
	Interfaces []string
	Interface  bool
	// Native classes belong to the runtime library. Their methods have no body, and they accept any field.
	Native bool
	// Builtin marks the classes added by Builder.WithBuiltins
	Builtin bool
	Fields  []FieldDecl

	ID           ClassID
	SuperID      ClassID
	InterfaceIDs []ClassID
	Methods      []MethodID
}

func (c *ClassDecl) String() string {
	return c.Name
}

// Field returns the field declared by the class itself with that name
func (c *ClassDecl) Field(name string) (FieldDecl, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDecl{}, false
}

// MethodDecl is a method of the scene. Body is the list of statements of the method; the control flow falls
// through from one statement to the next, except for Branch and Return statements.
type MethodDecl struct {
	Name       string
	Params     []Param
	ReturnType string
	// Locals maps local variables to their declared type (a class name, or any other string for untyped values)
	Locals   map[string]string
	Static   bool
	Abstract bool
	Native   bool
	Body     []Statement

	ID    MethodID
	Class ClassID
	// QualifiedName is Class.Name
	QualifiedName string
	// localTypes are the class-typed variables: parameters, declared locals and this
	localTypes map[string]ClassID
}

func (m *MethodDecl) String() string {
	return m.QualifiedName
}

// Selector returns the selector that dispatches to the method
func (m *MethodDecl) Selector() Selector {
	return Selector{Name: m.Name, Arity: len(m.Params)}
}

// HasBody returns true if the method has statements the analyses can visit. Native and abstract methods do not.
func (m *MethodDecl) HasBody() bool {
	return !m.Native && !m.Abstract
}

// Exit returns the reference to the exit node of the method
func (m *MethodDecl) Exit() StmtRef {
	return StmtRef{Method: m.ID, Index: len(m.Body)}
}

// ParamNames returns the names of the parameters, in order
func (m *MethodDecl) ParamNames() []string {
	names := make([]string, len(m.Params))
	for i, p := range m.Params {
		names[i] = p.Name
	}
	return names
}

// DeclaredType returns the class declared for variable v in the method, if the declared type is a class of the scene
func (m *MethodDecl) DeclaredType(v string) (ClassID, bool) {
	c, ok := m.localTypes[v]
	return c, ok
}

// AllocationSite is an abstract heap object: one New or Closure statement, or the allocation performed by a native
// method. Closure sites have no class and are bound to a method.
type AllocationSite struct {
	ID SiteID
	// Class is the allocated class, or NoClass for closures
	Class ClassID
	// Stmt is the allocating statement. The index is -1 for the sites of native methods.
	Stmt StmtRef
	// Closure is the method a function value is bound to
	Closure MethodID

	label string
}

// Label returns the stable name Class.method@index of the site
func (s *AllocationSite) Label() string {
	return s.label
}

func (s *AllocationSite) String() string {
	return s.label
}

// IsClosure returns true if the site allocates function values
func (s *AllocationSite) IsClosure() bool {
	return s.Closure != NoMethod
}

func siteLabel(m *MethodDecl, index int) string {
	if index < 0 {
		return fmt.Sprintf("%s@native", m.QualifiedName)
	}
	return fmt.Sprintf("%s@%d", m.QualifiedName, index)
}
