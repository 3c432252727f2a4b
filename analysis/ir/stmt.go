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
	"fmt"
	"strconv"
	"strings"
)

// Statement is one instruction of a method body. The set of statements is closed: every statement is one of the
// types of this file. Names of classes and methods are resolved when the scene is frozen.
//
// Variables are local names of the enclosing method. The receiver of instance methods is named "this".
type Statement interface {
	// String returns the statement in the textual syntax accepted by ParseStatement
	String() string

	// Def returns the variable assigned by the statement, or "" when the statement does not assign any variable
	Def() string

	// Uses returns the variables read by the statement
	Uses() []string

	isStatement()
}

// This is the name of the receiver variable of instance methods
const This = "this"

// Assign is "Dst = Src"
type Assign struct {
	Dst string
	Src string
}

// Const is "Dst = const Value" where the value is not a reference
type Const struct {
	Dst   string
	Value string
}

// Load is the instance field read "Dst = Base.Field"
type Load struct {
	Dst   string
	Base  string
	Field string
}

// Store is the instance field write "Base.Field = Src"
type Store struct {
	Base  string
	Field string
	Src   string
}

// StaticLoad is the static field read "Dst = Class::Field". Decl is the declaring class, resolved at freeze.
type StaticLoad struct {
	Dst   string
	Class string
	Field string
	Decl  ClassID
}

// StaticStore is the static field write "Class::Field = Src". Decl is the declaring class, resolved at freeze.
type StaticStore struct {
	Class string
	Field string
	Src   string
	Decl  ClassID
}

// New is the allocation "Dst = new Class". Each New is one allocation site.
type New struct {
	Dst       string
	Class     string
	Allocated ClassID
	Site      SiteID
}

// Closure creates a function value bound to Class::Method: "Dst = closure Class::Method [captures]". The captured
// variables are copied to the locals of the same name in the bound method. Each Closure is one allocation site.
type Closure struct {
	Dst      string
	Class    string
	Method   string
	Captures []string
	Target   MethodID
	Site     SiteID
}

// CallKind is the kind of a call statement
type CallKind int

const (
	// Static calls are resolved at build time, and may bind a receiver (constructors, super calls)
	Static CallKind = iota
	// Virtual calls dispatch a selector on the receiver
	Virtual
	// Dynamic calls invoke the function value held by a local variable
	Dynamic
)

func (k CallKind) String() string {
	switch k {
	case Static:
		return "static"
	case Virtual:
		return "virtual"
	case Dynamic:
		return "dynamic"
	}
	return "unknown"
}

// Call is a call statement. Dst is empty when the result is dropped.
//   - Static: "Dst = Class::Name(Args)" or "Dst = Recv.Class::Name(Args)"; Callee is resolved at freeze.
//   - Virtual: "Dst = Recv.Name(Args)"
//   - Dynamic: "Dst = Func(Args)"
type Call struct {
	Dst    string
	Kind   CallKind
	Recv   string
	Func   string
	Class  string
	Name   string
	Args   []string
	Callee MethodID
}

// Selector returns the selector of a virtual call
func (c *Call) Selector() Selector {
	return Selector{Name: c.Name, Arity: len(c.Args)}
}

// Return is "return Value"; Value is empty for a return without value
type Return struct {
	Value string
}

// Branch is "goto i" when Cond is empty, otherwise "if Cond goto i, j, ..."
type Branch struct {
	Cond    string
	Targets []int
}

func (*Assign) isStatement()      {}
func (*Const) isStatement()       {}
func (*Load) isStatement()        {}
func (*Store) isStatement()       {}
func (*StaticLoad) isStatement()  {}
func (*StaticStore) isStatement() {}
func (*New) isStatement()         {}
func (*Closure) isStatement()     {}
func (*Call) isStatement()        {}
func (*Return) isStatement()      {}
func (*Branch) isStatement()      {}

func (s *Assign) String() string { return s.Dst + " = " + s.Src }
func (s *Const) String() string  { return s.Dst + " = const " + s.Value }
func (s *Load) String() string   { return fmt.Sprintf("%s = %s.%s", s.Dst, s.Base, s.Field) }
func (s *Store) String() string  { return fmt.Sprintf("%s.%s = %s", s.Base, s.Field, s.Src) }
func (s *StaticLoad) String() string {
	return fmt.Sprintf("%s = %s::%s", s.Dst, s.Class, s.Field)
}
func (s *StaticStore) String() string {
	return fmt.Sprintf("%s::%s = %s", s.Class, s.Field, s.Src)
}
func (s *New) String() string { return s.Dst + " = new " + s.Class }
func (s *Closure) String() string {
	return fmt.Sprintf("%s = closure %s::%s [%s]", s.Dst, s.Class, s.Method, strings.Join(s.Captures, ", "))
}

func (s *Call) String() string {
	var callee string
	switch s.Kind {
	case Static:
		callee = s.Class + "::" + s.Name
		if s.Recv != "" {
			callee = s.Recv + "." + callee
		}
	case Virtual:
		callee = s.Recv + "." + s.Name
	case Dynamic:
		callee = s.Func
	}
	call := fmt.Sprintf("%s(%s)", callee, strings.Join(s.Args, ", "))
	if s.Dst != "" {
		return s.Dst + " = " + call
	}
	return call
}

func (s *Return) String() string {
	if s.Value == "" {
		return "return"
	}
	return "return " + s.Value
}

func (s *Branch) String() string {
	targets := make([]string, len(s.Targets))
	for i, t := range s.Targets {
		targets[i] = strconv.Itoa(t)
	}
	if s.Cond == "" {
		return "goto " + strings.Join(targets, ", ")
	}
	return fmt.Sprintf("if %s goto %s", s.Cond, strings.Join(targets, ", "))
}

func (s *Assign) Def() string      { return s.Dst }
func (s *Const) Def() string       { return s.Dst }
func (s *Load) Def() string        { return s.Dst }
func (s *Store) Def() string       { return "" }
func (s *StaticLoad) Def() string  { return s.Dst }
func (s *StaticStore) Def() string { return "" }
func (s *New) Def() string         { return s.Dst }
func (s *Closure) Def() string     { return s.Dst }
func (s *Call) Def() string        { return s.Dst }
func (s *Return) Def() string      { return "" }
func (s *Branch) Def() string      { return "" }

func (s *Assign) Uses() []string      { return []string{s.Src} }
func (s *Const) Uses() []string       { return nil }
func (s *Load) Uses() []string        { return []string{s.Base} }
func (s *Store) Uses() []string       { return []string{s.Base, s.Src} }
func (s *StaticLoad) Uses() []string  { return nil }
func (s *StaticStore) Uses() []string { return []string{s.Src} }
func (s *New) Uses() []string         { return nil }
func (s *Closure) Uses() []string     { return append([]string(nil), s.Captures...) }
func (s *Return) Uses() []string      { return nonEmpty(s.Value) }
func (s *Branch) Uses() []string      { return nonEmpty(s.Cond) }

func (s *Call) Uses() []string {
	uses := nonEmpty(s.Recv)
	uses = append(uses, nonEmpty(s.Func)...)
	return append(uses, s.Args...)
}

func nonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

// cloneStatement returns a copy of the statement that shares no memory with it. The builder links its own copies, so
// the statements given by the producer of a scene are never written.
func cloneStatement(stmt Statement) Statement {
	switch st := stmt.(type) {
	case *Assign:
		c := *st
		return &c
	case *Const:
		c := *st
		return &c
	case *Load:
		c := *st
		return &c
	case *Store:
		c := *st
		return &c
	case *StaticLoad:
		c := *st
		return &c
	case *StaticStore:
		c := *st
		return &c
	case *New:
		c := *st
		return &c
	case *Closure:
		c := *st
		c.Captures = append([]string(nil), st.Captures...)
		return &c
	case *Call:
		c := *st
		c.Args = append([]string(nil), st.Args...)
		return &c
	case *Return:
		c := *st
		return &c
	case *Branch:
		c := *st
		c.Targets = append([]int(nil), st.Targets...)
		return &c
	}
	return stmt
}

func cloneBody(body []Statement) []Statement {
	if body == nil {
		return nil
	}
	res := make([]Statement, len(body))
	for i, stmt := range body {
		res[i] = cloneStatement(stmt)
	}
	return res
}

// IsTerminator returns true for the statements that do not fall through to the next statement
func IsTerminator(s Statement) bool {
	switch s.(type) {
	case *Return, *Branch:
		return true
	}
	return false
}
