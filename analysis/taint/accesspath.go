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
	"strings"
)

// AccessPath is a local variable followed by a chain of field names, e.g. x.f.g. Paths are limited to a maximum
// number of fields: a longer path is truncated, and stands for all the paths it is a prefix of (x.f.g.*).
//
// Access paths are comparable and can be used as map keys.
type AccessPath struct {
	Var string
	// fields are joined with '.'
	fields    string
	length    int
	Truncated bool
}

// NewAccessPath returns the path of the variable v itself
func NewAccessPath(v string) AccessPath {
	return AccessPath{Var: v}
}

func makeAccessPath(v string, fields []string, truncated bool, k int) AccessPath {
	if len(fields) > k {
		fields = fields[:k]
		truncated = true
	}
	return AccessPath{Var: v, fields: strings.Join(fields, "."), length: len(fields), Truncated: truncated}
}

// Fields returns the field chain of the path
func (p AccessPath) Fields() []string {
	if p.length == 0 {
		return nil
	}
	return strings.Split(p.fields, ".")
}

// Len returns the number of fields of the path
func (p AccessPath) Len() int {
	return p.length
}

// IsZero is true for the empty path, used by the zero fact
func (p AccessPath) IsZero() bool {
	return p.Var == ""
}

// Rebase returns the path with the same fields rooted at v
func (p AccessPath) Rebase(v string) AccessPath {
	p.Var = v
	return p
}

// Append returns the path p.field, limited to k fields
func (p AccessPath) Append(field string, k int) AccessPath {
	if p.Truncated {
		return p
	}
	return makeAccessPath(p.Var, append(p.Fields(), field), p.Truncated, k)
}

// Concat returns the path p followed by the fields of suffix, limited to k fields
func (p AccessPath) Concat(suffix AccessPath, k int) AccessPath {
	if p.Truncated {
		return p
	}
	return makeAccessPath(p.Var, append(p.Fields(), suffix.Fields()...), suffix.Truncated, k)
}

// Strip returns the rest of the path after its first field, when that field is f. A truncated path without field
// stands for all its fields and is returned unchanged.
func (p AccessPath) Strip(f string) (AccessPath, bool) {
	if p.length == 0 {
		return p, p.Truncated
	}
	fields := p.Fields()
	if fields[0] != f {
		return AccessPath{}, false
	}
	return AccessPath{Var: p.Var, fields: strings.Join(fields[1:], "."), length: p.length - 1,
		Truncated: p.Truncated}, true
}

// heapRoot is the root of the paths stored in the heap tables
const heapRoot = "$heap"

// Suffix returns the fields of p, rooted at the heap location they are stored in
func (p AccessPath) Suffix() AccessPath {
	p.Var = heapRoot
	return p
}

func (p AccessPath) String() string {
	var b strings.Builder
	b.WriteString(p.Var)
	if p.length > 0 {
		b.WriteString(".")
		b.WriteString(p.fields)
	}
	if p.Truncated {
		b.WriteString(".*")
	}
	return b.String()
}
