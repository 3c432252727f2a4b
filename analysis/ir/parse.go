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
	"regexp"
	"strconv"
	"strings"
)

// SyntaxError is returned by ParseStatement when a statement does not follow the textual IR syntax
type SyntaxError struct {
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error in %q: %s", e.Text, e.Msg)
}

const ident = `[A-Za-z_$%][A-Za-z0-9_$%]*`

var (
	commentRe     = regexp.MustCompile(`(^|\s)//.*$`)
	identRe       = regexp.MustCompile(`^` + ident + `$`)
	returnRe      = regexp.MustCompile(`^return(?:\s+(` + ident + `))?$`)
	gotoRe        = regexp.MustCompile(`^goto\s+(\d+(?:\s*,\s*\d+)*)$`)
	ifRe          = regexp.MustCompile(`^if\s+(` + ident + `)\s+goto\s+(\d+(?:\s*,\s*\d+)*)$`)
	fieldRe       = regexp.MustCompile(`^(` + ident + `)\.(` + ident + `)$`)
	staticRe      = regexp.MustCompile(`^(` + ident + `)::(` + ident + `)$`)
	constRe       = regexp.MustCompile(`^const\s+(.+)$`)
	newRe         = regexp.MustCompile(`^new\s+(` + ident + `)$`)
	closureRe     = regexp.MustCompile(`^closure\s+(` + ident + `)::(` + ident + `)(?:\s*\[(.*)\])?$`)
	callRe        = regexp.MustCompile(`^([^()]+)\((.*)\)$`)
	recvStaticRe  = regexp.MustCompile(`^(` + ident + `)\.(` + ident + `)::(` + ident + `)$`)
	reservedWords = map[string]bool{"return": true, "goto": true, "if": true, "new": true, "const": true,
		"closure": true}
)

// ParseStatement parses one statement of the textual IR:
//
//	x = y                      x = const 1             x = y.f        y.f = x
//	x = C::f                   C::f = x                x = new C      x = closure C::m [c1, c2]
//	[x =] C::m(args)           [x =] r.C::m(args)      [x =] r.m(args)
//	[x =] f(args)              return [x]              goto i         if c goto i, j
//
// Text after "//" preceded by a space is a comment. The String method of every statement returns text that parses back
// to an equal statement.
func ParseStatement(text string) (Statement, error) {
	s := strings.TrimSpace(commentRe.ReplaceAllString(text, ""))
	fail := func(msg string, args ...any) (Statement, error) {
		return nil, &SyntaxError{Text: text, Msg: fmt.Sprintf(msg, args...)}
	}
	if s == "" {
		return fail("empty statement")
	}
	if m := returnRe.FindStringSubmatch(s); m != nil {
		return &Return{Value: m[1]}, nil
	}
	if m := gotoRe.FindStringSubmatch(s); m != nil {
		return &Branch{Targets: parseTargets(m[1])}, nil
	}
	if m := ifRe.FindStringSubmatch(s); m != nil {
		return &Branch{Cond: m[1], Targets: parseTargets(m[2])}, nil
	}

	eq := strings.Index(s, "=")
	if eq < 0 {
		call, err := parseCall(s)
		if err != nil {
			return fail("%s", err)
		}
		return call, nil
	}
	lhs := strings.TrimSpace(s[:eq])
	rhs := strings.TrimSpace(s[eq+1:])
	if rhs == "" {
		return fail("missing right-hand side")
	}

	if m := fieldRe.FindStringSubmatch(lhs); m != nil {
		if !isVar(rhs) {
			return fail("the value stored in a field must be a variable")
		}
		return &Store{Base: m[1], Field: m[2], Src: rhs}, nil
	}
	if m := staticRe.FindStringSubmatch(lhs); m != nil {
		if !isVar(rhs) {
			return fail("the value stored in a static field must be a variable")
		}
		return &StaticStore{Class: m[1], Field: m[2], Src: rhs, Decl: NoClass}, nil
	}
	if !isVar(lhs) {
		return fail("invalid assignment target %q", lhs)
	}

	if m := constRe.FindStringSubmatch(rhs); m != nil {
		return &Const{Dst: lhs, Value: strings.TrimSpace(m[1])}, nil
	}
	if m := newRe.FindStringSubmatch(rhs); m != nil {
		return &New{Dst: lhs, Class: m[1], Allocated: NoClass, Site: NoSite}, nil
	}
	if m := closureRe.FindStringSubmatch(rhs); m != nil {
		captures, err := parseVars(m[3])
		if err != nil {
			return fail("%s", err)
		}
		return &Closure{Dst: lhs, Class: m[1], Method: m[2], Captures: captures, Target: NoMethod, Site: NoSite}, nil
	}
	if callRe.MatchString(rhs) {
		call, err := parseCall(rhs)
		if err != nil {
			return fail("%s", err)
		}
		call.Dst = lhs
		return call, nil
	}
	if m := staticRe.FindStringSubmatch(rhs); m != nil {
		return &StaticLoad{Dst: lhs, Class: m[1], Field: m[2], Decl: NoClass}, nil
	}
	if m := fieldRe.FindStringSubmatch(rhs); m != nil {
		return &Load{Dst: lhs, Base: m[1], Field: m[2]}, nil
	}
	if isVar(rhs) {
		return &Assign{Dst: lhs, Src: rhs}, nil
	}
	return fail("unrecognized right-hand side %q", rhs)
}

// MustParse parses the statements and panics on the first syntax error. It is meant for tests and static tables.
func MustParse(lines ...string) []Statement {
	body := make([]Statement, len(lines))
	for i, line := range lines {
		s, err := ParseStatement(line)
		if err != nil {
			panic(err)
		}
		body[i] = s
	}
	return body
}

func parseCall(s string) (*Call, error) {
	m := callRe.FindStringSubmatch(s)
	if m == nil {
		return nil, fmt.Errorf("expected a call")
	}
	callee := strings.TrimSpace(m[1])
	args, err := parseVars(m[2])
	if err != nil {
		return nil, err
	}
	call := &Call{Args: args, Callee: NoMethod}
	if args == nil {
		call.Args = []string{}
	}
	if r := recvStaticRe.FindStringSubmatch(callee); r != nil {
		call.Kind, call.Recv, call.Class, call.Name = Static, r[1], r[2], r[3]
	} else if r := staticRe.FindStringSubmatch(callee); r != nil {
		call.Kind, call.Class, call.Name = Static, r[1], r[2]
	} else if r := fieldRe.FindStringSubmatch(callee); r != nil {
		call.Kind, call.Recv, call.Name = Virtual, r[1], r[2]
	} else if isVar(callee) {
		call.Kind, call.Func = Dynamic, callee
	} else {
		return nil, fmt.Errorf("invalid callee %q", callee)
	}
	return call, nil
}

func parseVars(list string) ([]string, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	vars := make([]string, len(parts))
	for i, p := range parts {
		v := strings.TrimSpace(p)
		if !isVar(v) {
			return nil, fmt.Errorf("%q is not a variable", v)
		}
		vars[i] = v
	}
	return vars, nil
}

func parseTargets(list string) []int {
	parts := strings.Split(list, ",")
	targets := make([]int, len(parts))
	for i, p := range parts {
		// the regexp only accepts digits
		targets[i], _ = strconv.Atoi(strings.TrimSpace(p))
	}
	return targets
}

func isVar(s string) bool {
	return identRe.MatchString(s) && !reservedWords[s]
}
