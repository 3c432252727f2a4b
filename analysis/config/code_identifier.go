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

package config

import (
	"fmt"
	"regexp"
)

// CodeIdentifier identifies a code element of the analysed program: a method (by its class and name) or a field (by
// its class and name). Each non-empty string is interpreted as a regular expression when it compiles to one, and as a
// literal string otherwise. An empty string matches anything.
type CodeIdentifier struct {
	// Class is the class declaring the method or field. For instance calls, the class of the resolved callee.
	Class string

	// Method is the name of the method
	Method string

	// Field is the name of the field
	Field string

	// This will not be part of the yaml config
	computedRegexs *codeIdentifierRegex
}

type codeIdentifierRegex struct {
	classRegex  *regexp.Regexp
	methodRegex *regexp.Regexp
	fieldRegex  *regexp.Regexp
}

// compileRegexes returns a copy of cid with its regexes compiled. If any of the strings does not compile, the
// identifier falls back to literal string matching.
func compileRegexes(cid CodeIdentifier) CodeIdentifier {
	classRegex, err := regexp.Compile(cid.Class)
	if err != nil {
		return cid
	}
	methodRegex, err := regexp.Compile(cid.Method)
	if err != nil {
		return cid
	}
	fieldRegex, err := regexp.Compile(cid.Field)
	if err != nil {
		return cid
	}
	cid.computedRegexs = &codeIdentifierRegex{classRegex, methodRegex, fieldRegex}
	return cid
}

// NewCodeIdentifier returns a code identifier with its regexes compiled, ready for matching.
func NewCodeIdentifier(class, method, field string) CodeIdentifier {
	return compileRegexes(CodeIdentifier{Class: class, Method: method, Field: field})
}

// IsMethod returns true when the identifier designates methods rather than fields
func (cid CodeIdentifier) IsMethod() bool {
	return cid.Field == "" && cid.Method != ""
}

// IsField returns true when the identifier designates fields
func (cid CodeIdentifier) IsField() bool {
	return cid.Field != ""
}

func (cid CodeIdentifier) String() string {
	if cid.Field != "" {
		return fmt.Sprintf("%s.%s", cid.Class, cid.Field)
	}
	return fmt.Sprintf("%s.%s()", cid.Class, cid.Method)
}

// equalOnNonEmptyFields returns true when cid matches the specification cidRef on all the fields that are non-empty in
// cidRef.
func (cid CodeIdentifier) equalOnNonEmptyFields(cidRef CodeIdentifier) bool {
	if cidRef.computedRegexs != nil {
		return (cidRef.Class == "" || cidRef.computedRegexs.classRegex.MatchString(cid.Class)) &&
			(cidRef.Method == "" || cidRef.computedRegexs.methodRegex.MatchString(cid.Method)) &&
			(cidRef.Field == "" || cidRef.computedRegexs.fieldRegex.MatchString(cid.Field))
	}
	return (cidRef.Class == "" || cid.Class == cidRef.Class) &&
		(cidRef.Method == "" || cid.Method == cidRef.Method) &&
		(cidRef.Field == "" || cid.Field == cidRef.Field)
}

// MatchesMethod returns true when the identifier designates methods and matches the method name of class.
func (cid CodeIdentifier) MatchesMethod(class, method string) bool {
	return cid.IsMethod() && CodeIdentifier{Class: class, Method: method}.equalOnNonEmptyFields(cid)
}

// MatchesField returns true when the identifier designates fields and matches the field of class.
func (cid CodeIdentifier) MatchesField(class, field string) bool {
	return cid.IsField() && CodeIdentifier{Class: class, Field: field}.equalOnNonEmptyFields(cid)
}

// ExistsCid returns true when f holds for some element of a
func ExistsCid(a []CodeIdentifier, f func(identifier CodeIdentifier) bool) bool {
	for _, x := range a {
		if f(x) {
			return true
		}
	}
	return false
}
