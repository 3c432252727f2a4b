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
	"errors"
	"fmt"
	"runtime"
	"sort"

	"github.com/awslabs/ar-script-analyzer/analysis/summaries"
	"github.com/awslabs/ar-script-analyzer/internal/graphutil"
	"golang.org/x/sync/errgroup"
)

// Builder accumulates the declarations of a scene. Errors are collected and returned by Freeze. A builder must not
// be used after Freeze.
type Builder struct {
	classes     []*ClassDecl
	classIndex  map[string]ClassID
	methods     []*MethodDecl
	methodIndex map[string]MethodID
	entries     [][2]string
	builtins    bool
	errs        []error
}

// NewBuilder returns an empty builder
func NewBuilder() *Builder {
	return &Builder{
		classIndex:  map[string]ClassID{},
		methodIndex: map[string]MethodID{},
	}
}

// WithBuiltins adds the native classes of the runtime library (Object, Array, Set, Map, Promise) to the scene.
func (b *Builder) WithBuiltins() *Builder {
	if b.builtins {
		return b
	}
	b.builtins = true
	for _, model := range summaries.BuiltinClasses {
		b.AddClass(ClassDecl{Name: model.Name, Super: model.Super, Native: true, Builtin: true})
		for _, m := range model.Methods {
			params := make([]Param, m.Arity)
			for i := range params {
				params[i] = Param{Name: fmt.Sprintf("a%d", i)}
			}
			b.AddMethod(model.Name, MethodDecl{Name: m.Name, Params: params, Native: true})
		}
	}
	return b
}

// AddClass declares a class. Only the fields set by the producer of the scene are read from c.
func (b *Builder) AddClass(c ClassDecl) ClassID {
	if _, ok := b.classIndex[c.Name]; ok {
		b.errs = append(b.errs, &DuplicateDeclError{Kind: "class", Name: c.Name})
		return NoClass
	}
	id := ClassID(len(b.classes))
	decl := &ClassDecl{
		Name:       c.Name,
		Super:      c.Super,
		Interfaces: append([]string(nil), c.Interfaces...),
		Interface:  c.Interface,
		Native:     c.Native,
		Builtin:    c.Builtin,
		ID:         id,
		SuperID:    NoClass,
	}
	b.classes = append(b.classes, decl)
	b.classIndex[c.Name] = id
	for _, f := range c.Fields {
		b.AddField(c.Name, f)
	}
	return id
}

// AddField declares a field of a class declared earlier
func (b *Builder) AddField(class string, f FieldDecl) {
	id, ok := b.classIndex[class]
	if !ok {
		b.errs = append(b.errs, &LinkError{Where: "field " + f.Name, Ref: "class " + class})
		return
	}
	c := b.classes[id]
	if _, dup := c.Field(f.Name); dup {
		b.errs = append(b.errs, &DuplicateDeclError{Kind: "field", Name: class + "." + f.Name})
		return
	}
	c.Fields = append(c.Fields, f)
}

// AddMethod declares a method of a class declared earlier. The body can be given in m or set later with SetBody.
func (b *Builder) AddMethod(class string, m MethodDecl) MethodID {
	cid, ok := b.classIndex[class]
	if !ok {
		b.errs = append(b.errs, &LinkError{Where: "method " + m.Name, Ref: "class " + class})
		return NoMethod
	}
	qualified := class + "." + m.Name
	if _, dup := b.methodIndex[qualified]; dup {
		b.errs = append(b.errs, &DuplicateDeclError{Kind: "method", Name: qualified})
		return NoMethod
	}
	c := b.classes[cid]
	id := MethodID(len(b.methods))
	decl := m
	decl.ID = id
	decl.Class = cid
	decl.QualifiedName = qualified
	decl.Native = m.Native || c.Native
	decl.Params = append([]Param(nil), m.Params...)
	decl.Body = cloneBody(m.Body)
	b.methods = append(b.methods, &decl)
	b.methodIndex[qualified] = id
	c.Methods = append(c.Methods, id)
	return id
}

// SetBody replaces the body of a method declared earlier
func (b *Builder) SetBody(class string, method string, body []Statement) {
	id, ok := b.methodIndex[class+"."+method]
	if !ok {
		b.errs = append(b.errs, &LinkError{Where: "body", Ref: "method " + class + "." + method})
		return
	}
	b.methods[id].Body = cloneBody(body)
}

// AddEntryPoint marks a method as an entry point of the program. If no entry point is added, the static methods
// named main or %dflt are the entry points.
func (b *Builder) AddEntryPoint(class string, method string) {
	b.entries = append(b.entries, [2]string{class, method})
}

// Freeze links all the references of the declarations and returns the read-only scene. All the errors found are
// returned, joined. The builder's copies of the statements are updated with their resolved references.
func (b *Builder) Freeze() (*Scene, error) {
	errs := b.errs
	for _, c := range b.classes {
		errs = append(errs, b.linkHierarchy(c)...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if cycleErrs := b.inheritanceCycles(); len(cycleErrs) > 0 {
		return nil, errors.Join(cycleErrs...)
	}

	s := &Scene{
		classes:      b.classes,
		methods:      b.methods,
		classByName:  b.classIndex,
		methodByName: b.methodIndex,
		siteAt:       map[StmtRef]SiteID{},
		nativeSite:   map[MethodID]SiteID{},
		hasBuiltins:  b.builtins,
	}
	for _, m := range s.methods {
		b.setLocalTypes(m)
		errs = append(errs, s.linkBody(m)...)
	}
	errs = append(errs, b.resolveEntryPoints(s)...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	s.buildDispatchTables()
	if err := s.computeSubtypes(); err != nil {
		return nil, fmt.Errorf("failed to compute subtypes: %w", err)
	}
	return s, nil
}

func (b *Builder) linkHierarchy(c *ClassDecl) []error {
	var errs []error
	if c.Super != "" {
		if id, ok := b.classIndex[c.Super]; !ok {
			errs = append(errs, &LinkError{Where: "class " + c.Name, Ref: "superclass " + c.Super})
		} else if b.classes[id].Interface && !c.Interface {
			errs = append(errs, &LinkError{Where: "class " + c.Name, Ref: c.Super,
				Msg: "superclass is an interface"})
		} else {
			c.SuperID = id
		}
	}
	c.InterfaceIDs = nil
	for _, name := range c.Interfaces {
		if id, ok := b.classIndex[name]; !ok {
			errs = append(errs, &LinkError{Where: "class " + c.Name, Ref: "interface " + name})
		} else {
			c.InterfaceIDs = append(c.InterfaceIDs, id)
		}
	}
	return errs
}

// inheritanceCycles returns one error per elementary cycle of the inheritance graph
func (b *Builder) inheritanceCycles() []error {
	g := graphutil.NewIntGraph(len(b.classes))
	for _, c := range b.classes {
		if c.SuperID != NoClass {
			g.AddEdge(int(c.ID), int(c.SuperID))
		}
		for _, i := range c.InterfaceIDs {
			g.AddEdge(int(c.ID), int(i))
		}
	}
	g.Finish()
	if !graphutil.HasCycle(g) {
		return nil
	}
	var errs []error
	for _, cycle := range graphutil.FindAllElementaryCycles(g) {
		// the last node closes the cycle
		names := make([]string, len(cycle)-1)
		for i, id := range cycle[:len(cycle)-1] {
			names[i] = b.classes[id].Name
		}
		errs = append(errs, &InheritanceCycleError{Classes: names})
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errs
}

func (b *Builder) setLocalTypes(m *MethodDecl) {
	m.localTypes = map[string]ClassID{}
	if !m.Static {
		m.localTypes[This] = m.Class
	}
	for _, p := range m.Params {
		if id, ok := b.classIndex[p.Type]; ok {
			m.localTypes[p.Name] = id
		}
	}
	for v, t := range m.Locals {
		if id, ok := b.classIndex[t]; ok {
			m.localTypes[v] = id
		}
	}
}

func (b *Builder) resolveEntryPoints(s *Scene) []error {
	var errs []error
	for _, e := range b.entries {
		id, ok := b.methodIndex[e[0]+"."+e[1]]
		if !ok {
			errs = append(errs, &LinkError{Where: "entry points", Ref: "method " + e[0] + "." + e[1]})
			continue
		}
		s.entries = append(s.entries, id)
	}
	if len(b.entries) == 0 {
		for _, m := range b.methods {
			if m.Static && (m.Name == "main" || m.Name == "%dflt") {
				s.entries = append(s.entries, m.ID)
			}
		}
	}
	return errs
}

// linkBody resolves the references of the statements of m and creates its allocation sites
func (s *Scene) linkBody(m *MethodDecl) []error {
	var errs []error
	where := func(i int) string { return fmt.Sprintf("%s@%d", m.QualifiedName, i) }
	if m.Native && s.hasBuiltins {
		if summary, ok := summaries.SummaryOf(s.classes[m.Class].Name, m.Name); ok {
			if class, allocates := summary.Allocates(); allocates {
				if cid, found := s.classByName[class]; found {
					s.nativeSite[m.ID] = s.newSite(cid, StmtRef{Method: m.ID, Index: -1}, NoMethod, siteLabel(m, -1))
				}
			}
		}
	}
	if !m.HasBody() && len(m.Body) > 0 {
		errs = append(errs, &LinkError{Where: m.QualifiedName, Ref: "body", Msg: "native or abstract method has a"})
	}
	for i, stmt := range m.Body {
		ref := StmtRef{Method: m.ID, Index: i}
		switch st := stmt.(type) {
		case *New:
			cid, ok := s.classByName[st.Class]
			if !ok {
				errs = append(errs, &LinkError{Where: where(i), Ref: "class " + st.Class})
				continue
			}
			st.Allocated = cid
			st.Site = s.newSite(cid, ref, NoMethod, siteLabel(m, i))
		case *Closure:
			target, ok := s.lookupMethod(st.Class, st.Method)
			if !ok {
				errs = append(errs, &LinkError{Where: where(i), Ref: "method " + st.Class + "::" + st.Method})
				continue
			}
			st.Target = target
			st.Site = s.newSite(NoClass, ref, target, siteLabel(m, i))
		case *Call:
			if st.Kind != Static {
				continue
			}
			callee, ok := s.lookupMethod(st.Class, st.Name)
			if !ok {
				errs = append(errs, &LinkError{Where: where(i), Ref: "method " + st.Class + "::" + st.Name})
				continue
			}
			st.Callee = callee
		case *StaticLoad:
			decl, ok := s.lookupStaticField(st.Class, st.Field)
			if !ok {
				errs = append(errs, &LinkError{Where: where(i), Ref: "static field " + st.Class + "::" + st.Field})
				continue
			}
			st.Decl = decl
		case *StaticStore:
			decl, ok := s.lookupStaticField(st.Class, st.Field)
			if !ok {
				errs = append(errs, &LinkError{Where: where(i), Ref: "static field " + st.Class + "::" + st.Field})
				continue
			}
			st.Decl = decl
		case *Branch:
			for _, t := range st.Targets {
				if t < 0 || t > len(m.Body) {
					errs = append(errs, &LinkError{Where: where(i), Ref: fmt.Sprintf("target %d", t),
						Msg: "branch out of the method body"})
				}
			}
			if len(st.Targets) == 0 {
				errs = append(errs, &LinkError{Where: where(i), Ref: "targets", Msg: "branch without"})
			}
		}
	}
	return errs
}

func (s *Scene) newSite(class ClassID, ref StmtRef, closure MethodID, label string) SiteID {
	id := SiteID(len(s.sites))
	s.sites = append(s.sites, &AllocationSite{ID: id, Class: class, Stmt: ref, Closure: closure, label: label})
	if ref.Index >= 0 {
		s.siteAt[ref] = id
	}
	if closure != NoMethod {
		s.addressTaken = append(s.addressTaken, closure)
	}
	return id
}

// lookupMethod finds the method name declared in class or inherited from its superclasses. Abstract methods are
// returned only if no concrete method is found.
func (s *Scene) lookupMethod(class string, name string) (MethodID, bool) {
	cid, ok := s.classByName[class]
	if !ok {
		return NoMethod, false
	}
	abstract := NoMethod
	for c := cid; c != NoClass; c = s.classes[c].SuperID {
		if id, ok := s.methodByName[s.classes[c].Name+"."+name]; ok {
			if !s.methods[id].Abstract {
				return id, true
			}
			if abstract == NoMethod {
				abstract = id
			}
		}
	}
	return abstract, abstract != NoMethod
}

func (s *Scene) lookupStaticField(class string, field string) (ClassID, bool) {
	cid, ok := s.classByName[class]
	if !ok {
		return NoClass, false
	}
	for c := cid; c != NoClass; c = s.classes[c].SuperID {
		if f, ok := s.classes[c].Field(field); ok && f.Static {
			return c, true
		}
	}
	return NoClass, false
}

func (s *Scene) buildDispatchTables() {
	s.dispatch = make([]map[Selector]MethodID, len(s.classes))
	for _, c := range s.classes {
		table := map[Selector]MethodID{}
		if !c.Interface {
			for cur := c.ID; cur != NoClass; cur = s.classes[cur].SuperID {
				for _, mid := range s.classes[cur].Methods {
					m := s.methods[mid]
					if m.Abstract || m.Static {
						continue
					}
					if _, ok := table[m.Selector()]; !ok {
						table[m.Selector()] = mid
					}
				}
			}
		}
		s.dispatch[c.ID] = table
	}
	addressTaken := map[MethodID]bool{}
	for _, m := range s.addressTaken {
		addressTaken[m] = true
	}
	s.addressTaken = s.addressTaken[:0]
	for _, m := range s.methods {
		if addressTaken[m.ID] {
			s.addressTaken = append(s.addressTaken, m.ID)
		}
	}
}

// computeSubtypes computes the reflexive transitive closure of the subtype relation. Each class is processed
// independently, in parallel.
func (s *Scene) computeSubtypes() error {
	children := make([][]ClassID, len(s.classes))
	for _, c := range s.classes {
		if c.SuperID != NoClass {
			children[c.SuperID] = append(children[c.SuperID], c.ID)
		}
		for _, i := range c.InterfaceIDs {
			children[i] = append(children[i], c.ID)
		}
	}
	s.subtypes = make([][]ClassID, len(s.classes))
	var group errgroup.Group
	group.SetLimit(runtime.NumCPU())
	for _, c := range s.classes {
		root := c.ID
		group.Go(func() error {
			seen := map[ClassID]bool{root: true}
			queue := []ClassID{root}
			for len(queue) > 0 {
				cur := queue[0]
				queue = queue[1:]
				for _, child := range children[cur] {
					if !seen[child] {
						seen[child] = true
						queue = append(queue, child)
					}
				}
			}
			res := make([]ClassID, 0, len(seen))
			for id := range seen {
				res = append(res, id)
			}
			sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
			s.subtypes[root] = res
			return nil
		})
	}
	return group.Wait()
}
