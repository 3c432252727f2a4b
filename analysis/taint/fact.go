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
	"fmt"

	"github.com/awslabs/ar-script-analyzer/analysis/ir"
)

// FactKind distinguishes the values that reach sinks from the values that went through a sanitizer
type FactKind int

const (
	// Tainted values are reported when they reach a sink
	Tainted FactKind = iota
	// Sanitized values come from a source but went through a sanitizer. They are never reported.
	Sanitized
)

func (k FactKind) String() string {
	if k == Sanitized {
		return "sanitized"
	}
	return "tainted"
}

// Fact is a dataflow fact of the taint problem: the value at the access path comes from the source statement
// Origin. The zero fact, with an empty path, holds at every reachable statement.
type Fact struct {
	Path   AccessPath
	Kind   FactKind
	Origin ir.StmtRef
}

// zeroFact is the fact that holds at every reachable statement
var zeroFact = Fact{Origin: ir.StmtRef{Method: ir.NoMethod, Index: -1}}

// IsZero returns true for the zero fact
func (f Fact) IsZero() bool {
	return f.Path.IsZero()
}

// IsTainted returns true if the fact should be reported when it reaches a sink
func (f Fact) IsTainted() bool {
	return !f.IsZero() && f.Kind == Tainted
}

// WithPath returns the fact about another path, with the same kind and origin
func (f Fact) WithPath(p AccessPath) Fact {
	f.Path = p
	return f
}

func (f Fact) String() string {
	if f.IsZero() {
		return "0"
	}
	return fmt.Sprintf("%s[%s@%d:%d]", f.Path, f.Kind, f.Origin.Method, f.Origin.Index)
}
