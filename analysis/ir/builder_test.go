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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// animals builds the hierarchy Animal <- Dog, Animal <- Cat <- Kitten, with the interface Pet implemented by Dog.
func animals(t *testing.T) *Scene {
	b := NewBuilder()
	b.AddClass(ClassDecl{Name: "Pet", Interface: true})
	b.AddClass(ClassDecl{Name: "Animal", Fields: []FieldDecl{{Name: "name", Type: "string"},
		{Name: "count", Static: true}}})
	b.AddClass(ClassDecl{Name: "Dog", Super: "Animal", Interfaces: []string{"Pet"}})
	b.AddClass(ClassDecl{Name: "Cat", Super: "Animal"})
	b.AddClass(ClassDecl{Name: "Kitten", Super: "Cat"})
	b.AddClass(ClassDecl{Name: "Main"})
	b.AddMethod("Pet", MethodDecl{Name: "play", Abstract: true})
	b.AddMethod("Animal", MethodDecl{Name: "sound", Body: MustParse("return")})
	b.AddMethod("Animal", MethodDecl{Name: "eat", Params: []Param{{Name: "food"}}, Body: MustParse("return")})
	b.AddMethod("Dog", MethodDecl{Name: "sound", Body: MustParse("return")})
	b.AddMethod("Dog", MethodDecl{Name: "play", Body: MustParse("return")})
	b.AddMethod("Cat", MethodDecl{Name: "sound", Abstract: true})
	b.AddMethod("Main", MethodDecl{
		Name:   "main",
		Static: true,
		Locals: map[string]string{"a": "Animal", "n": "string"},
		Body: MustParse(
			"a = new Dog",
			"if a goto 2, 4",
			"a = new Kitten",
			"goto 4",
			"a.sound()",
			"x = Animal::count",
			"Animal::count = x",
			"f = closure Main::helper [a]",
			"f()",
		),
	})
	b.AddMethod("Main", MethodDecl{Name: "helper", Static: true, Body: MustParse("a.sound()", "return a")})
	s, err := b.Freeze()
	require.NoError(t, err)
	return s
}

func classID(t *testing.T, s *Scene, name string) ClassID {
	c, ok := s.Class(name)
	require.True(t, ok, "missing class %s", name)
	return c.ID
}

func methodID(t *testing.T, s *Scene, name string) MethodID {
	m, ok := s.Method(name)
	require.True(t, ok, "missing method %s", name)
	return m.ID
}

func TestSubtypesOf(t *testing.T) {
	s := animals(t)
	names := func(ids []ClassID) []string {
		var res []string
		for _, id := range ids {
			res = append(res, s.ClassByID(id).Name)
		}
		return res
	}
	assert.Equal(t, []string{"Animal", "Dog", "Cat", "Kitten"}, names(s.SubtypesOf(classID(t, s, "Animal"))))
	assert.Equal(t, []string{"Pet", "Dog"}, names(s.SubtypesOf(classID(t, s, "Pet"))))
	assert.Equal(t, []string{"Kitten"}, names(s.SubtypesOf(classID(t, s, "Kitten"))))
	assert.True(t, s.IsSubtype(classID(t, s, "Kitten"), classID(t, s, "Animal")))
	assert.False(t, s.IsSubtype(classID(t, s, "Animal"), classID(t, s, "Kitten")))
}

func TestDispatch(t *testing.T) {
	s := animals(t)
	sound := Selector{Name: "sound", Arity: 0}
	m, ok := s.Dispatch(classID(t, s, "Dog"), sound)
	assert.True(t, ok)
	assert.Equal(t, methodID(t, s, "Dog.sound"), m)

	// the abstract Cat.sound is skipped
	m, ok = s.Dispatch(classID(t, s, "Kitten"), sound)
	assert.True(t, ok)
	assert.Equal(t, methodID(t, s, "Animal.sound"), m)

	_, ok = s.Dispatch(classID(t, s, "Dog"), Selector{Name: "eat", Arity: 0})
	assert.False(t, ok, "arity must match")
	m, ok = s.Dispatch(classID(t, s, "Dog"), Selector{Name: "eat", Arity: 1})
	assert.True(t, ok)
	assert.Equal(t, methodID(t, s, "Animal.eat"), m)

	_, ok = s.Dispatch(classID(t, s, "Pet"), Selector{Name: "play"})
	assert.False(t, ok, "interfaces do not dispatch")
	_, ok = s.Dispatch(classID(t, s, "Main"), Selector{Name: "main"})
	assert.False(t, ok, "static methods do not dispatch")
}

func TestFieldsAndSites(t *testing.T) {
	s := animals(t)
	dog := classID(t, s, "Dog")
	assert.True(t, s.DeclaresField(dog, "name"))
	assert.True(t, s.DeclaresField(dog, "$elem"))
	assert.False(t, s.DeclaresField(dog, "count"), "static fields are not instance fields")
	assert.False(t, s.DeclaresField(dog, "age"))
	decl, ok := s.StaticField(classID(t, s, "Kitten"), "count")
	assert.True(t, ok)
	assert.Equal(t, classID(t, s, "Animal"), decl)
	assert.Equal(t, []StaticFieldRef{{Class: classID(t, s, "Animal"), Field: "count"}}, s.StaticFields())

	sites := s.AllocationSites()
	require.Len(t, sites, 3)
	assert.Equal(t, "Main.main@0", sites[0].Label())
	assert.Equal(t, dog, sites[0].Class)
	assert.Equal(t, "Main.main@2", sites[1].Label())
	assert.True(t, sites[2].IsClosure())
	assert.Equal(t, methodID(t, s, "Main.helper"), sites[2].Closure)
	assert.Equal(t, []MethodID{methodID(t, s, "Main.helper")}, s.AddressTaken())

	main := methodID(t, s, "Main.main")
	site, ok := s.SiteAt(StmtRef{Method: main, Index: 2})
	assert.True(t, ok)
	assert.Equal(t, SiteID(1), site)
	newStmt := s.Statement(StmtRef{Method: main, Index: 0}).(*New)
	assert.Equal(t, SiteID(0), newStmt.Site)
	assert.Equal(t, classID(t, s, "Animal"), s.Statement(StmtRef{Method: main, Index: 5}).(*StaticLoad).Decl)
}

func TestSuccessors(t *testing.T) {
	s := animals(t)
	main := methodID(t, s, "Main.main")
	ref := func(i int) StmtRef { return StmtRef{Method: main, Index: i} }
	assert.Equal(t, []StmtRef{ref(1)}, s.Successors(ref(0)))
	assert.Equal(t, []StmtRef{ref(2), ref(4)}, s.Successors(ref(1)))
	assert.Equal(t, []StmtRef{ref(4)}, s.Successors(ref(3)))
	assert.Equal(t, []StmtRef{ref(9)}, s.Successors(ref(8)), "falls through to the exit")
	assert.Nil(t, s.Successors(ref(9)))
	assert.Nil(t, s.Statement(ref(9)))

	helper := s.MethodByID(methodID(t, s, "Main.helper"))
	assert.Equal(t, []StmtRef{helper.Exit()}, s.Successors(StmtRef{Method: helper.ID, Index: 1}))
}

func TestEntryPointsAndTypes(t *testing.T) {
	s := animals(t)
	assert.Equal(t, []MethodID{methodID(t, s, "Main.main")}, s.EntryPoints())
	main := s.MethodByID(methodID(t, s, "Main.main"))
	typ, ok := main.DeclaredType("a")
	assert.True(t, ok)
	assert.Equal(t, classID(t, s, "Animal"), typ)
	_, ok = main.DeclaredType("n")
	assert.False(t, ok, "primitive types are not classes")
	_, ok = main.DeclaredType("this")
	assert.False(t, ok, "static methods have no receiver")
	sound := s.MethodByID(methodID(t, s, "Dog.sound"))
	typ, ok = sound.DeclaredType("this")
	assert.True(t, ok)
	assert.Equal(t, classID(t, s, "Dog"), typ)
}

func TestExplicitEntryPoints(t *testing.T) {
	b := NewBuilder()
	b.AddClass(ClassDecl{Name: "App"})
	b.AddMethod("App", MethodDecl{Name: "main", Static: true})
	b.AddMethod("App", MethodDecl{Name: "start", Static: true})
	b.AddEntryPoint("App", "start")
	s, err := b.Freeze()
	require.NoError(t, err)
	assert.Equal(t, []MethodID{1}, s.EntryPoints())
}

func TestBuiltins(t *testing.T) {
	b := NewBuilder().WithBuiltins().WithBuiltins()
	b.AddClass(ClassDecl{Name: "Main"})
	b.AddMethod("Main", MethodDecl{Name: "main", Static: true, Body: MustParse("l = new Array", "l.push(l)")})
	s, err := b.Freeze()
	require.NoError(t, err)
	assert.True(t, s.HasBuiltins())
	array := classID(t, s, "Array")
	assert.True(t, s.ClassByID(array).Native)
	assert.True(t, s.DeclaresField(array, "anything"))
	push, ok := s.Dispatch(array, Selector{Name: "push", Arity: 1})
	require.True(t, ok)
	assert.False(t, s.MethodByID(push).HasBody())
	_, ok = s.Summary(push)
	assert.True(t, ok)

	mapMethod := methodID(t, s, "Array.map")
	site, ok := s.NativeSite(mapMethod)
	require.True(t, ok)
	assert.Equal(t, "Array.map@native", s.Site(site).Label())
	assert.Equal(t, array, s.Site(site).Class)
	_, ok = s.NativeSite(push)
	assert.False(t, ok)
}

func TestFreezeErrors(t *testing.T) {
	b := NewBuilder()
	b.AddClass(ClassDecl{Name: "A", Super: "Missing"})
	b.AddClass(ClassDecl{Name: "A"})
	b.AddClass(ClassDecl{Name: "B", Fields: []FieldDecl{{Name: "f"}, {Name: "f"}}})
	b.AddMethod("B", MethodDecl{Name: "m"})
	b.AddMethod("B", MethodDecl{Name: "m"})
	b.AddMethod("Nowhere", MethodDecl{Name: "m"})
	_, err := b.Freeze()
	require.Error(t, err)

	var linkErr *LinkError
	assert.True(t, errors.As(err, &linkErr))
	var dupErr *DuplicateDeclError
	assert.True(t, errors.As(err, &dupErr))
	assert.Contains(t, err.Error(), "duplicate class declaration: A")
	assert.Contains(t, err.Error(), "duplicate field declaration: B.f")
	assert.Contains(t, err.Error(), "duplicate method declaration: B.m")
	assert.Contains(t, err.Error(), "superclass Missing")
	assert.Contains(t, err.Error(), "class Nowhere")
}

func TestFreezeBodyErrors(t *testing.T) {
	b := NewBuilder()
	b.AddClass(ClassDecl{Name: "A", Fields: []FieldDecl{{Name: "f"}}})
	b.AddMethod("A", MethodDecl{Name: "m", Static: true, Body: MustParse(
		"x = new Ghost",
		"x = A::f",
		"A::nope()",
		"x = closure A::nope",
		"goto 9",
	)})
	b.AddEntryPoint("A", "missing")
	_, err := b.Freeze()
	require.Error(t, err)
	for _, ref := range []string{"class Ghost", "static field A::f", "method A::nope", "target 9",
		"method A.missing"} {
		assert.Contains(t, err.Error(), ref)
	}
}

func TestInheritanceCycle(t *testing.T) {
	b := NewBuilder()
	b.AddClass(ClassDecl{Name: "A", Super: "C"})
	b.AddClass(ClassDecl{Name: "B", Super: "A"})
	b.AddClass(ClassDecl{Name: "C", Super: "B"})
	b.AddClass(ClassDecl{Name: "I", Interface: true, Interfaces: []string{"I"}})
	b.AddClass(ClassDecl{Name: "D", Super: "A"})
	_, err := b.Freeze()
	require.Error(t, err)
	var cycleErr *InheritanceCycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.Equal(t, []string{"A", "C", "B"}, cycleErr.Classes)
	assert.Contains(t, err.Error(), "inheritance cycle A -> C -> B -> A")
	assert.Contains(t, err.Error(), "inheritance cycle I -> I")
	assert.NotContains(t, err.Error(), "D")
}

func TestSuperclassIsInterface(t *testing.T) {
	b := NewBuilder()
	b.AddClass(ClassDecl{Name: "I", Interface: true})
	b.AddClass(ClassDecl{Name: "A", Super: "I"})
	_, err := b.Freeze()
	var linkErr *LinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Equal(t, "class A", linkErr.Where)
}

func TestFreezeDoesNotShareStatements(t *testing.T) {
	body := MustParse("x = new A", "return")

	b1 := NewBuilder()
	b1.AddClass(ClassDecl{Name: "A"})
	b1.AddClass(ClassDecl{Name: "Main"})
	b1.AddMethod("Main", MethodDecl{Name: "main", Static: true, Body: body})
	s1, err := b1.Freeze()
	require.NoError(t, err)

	b2 := NewBuilder()
	b2.AddClass(ClassDecl{Name: "A"})
	b2.AddClass(ClassDecl{Name: "Main"})
	b2.AddMethod("Main", MethodDecl{Name: "first", Static: true, Body: MustParse("y = new A", "return")})
	b2.AddMethod("Main", MethodDecl{Name: "main", Static: true, Body: body})
	s2, err := b2.Freeze()
	require.NoError(t, err)

	main1, ok := s1.Method("Main.main")
	require.True(t, ok)
	main2, ok := s2.Method("Main.main")
	require.True(t, ok)
	new1 := s1.Statement(StmtRef{Method: main1.ID, Index: 0}).(*New)
	new2 := s2.Statement(StmtRef{Method: main2.ID, Index: 0}).(*New)
	assert.Equal(t, SiteID(0), new1.Site)
	assert.Equal(t, SiteID(1), new2.Site)
	assert.Len(t, s1.AllocationSites(), 1)
	assert.Equal(t, "Main.main@0", s1.Site(new1.Site).Label())

	// the producer's statements are left untouched
	assert.NotSame(t, body[0], new1)
	assert.Equal(t, NoSite, body[0].(*New).Site)
	assert.Equal(t, "x = new A", body[0].String())
}
