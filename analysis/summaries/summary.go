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

// Package summaries defines how the builtin library classes of the analysed language are modelled.
// These summaries are only for pre-determined methods (the methods of native classes, which have no body) and are not
// computed during the analysis. The same summaries are used to generate pointer constraints and taint flow functions.
package summaries

import (
	"fmt"
	"strings"
)

// Operand designates a value at a call site: the receiver, the result, or one of the arguments.
// Non-negative operands are argument positions.
type Operand int

const (
	// NoOperand marks a dropped value, e.g. the return value of a callback whose result is ignored
	NoOperand Operand = -3

	// Result is the value returned by the call
	Result Operand = -2

	// Receiver is the object the method is called on
	Receiver Operand = -1
)

// Arg returns the operand of the i-th argument
func Arg(i int) Operand {
	return Operand(i)
}

func (o Operand) String() string {
	switch {
	case o == NoOperand:
		return "_"
	case o == Result:
		return "result"
	case o == Receiver:
		return "recv"
	default:
		return fmt.Sprintf("arg%d", int(o))
	}
}

const (
	// ElemField is the synthetic field holding the elements of collections and the value of promises
	ElemField = "$elem"

	// KeyField is the synthetic field holding the keys of maps
	KeyField = "$key"
)

// IsSyntheticField returns true for the fields introduced by the models. Synthetic fields are considered declared on
// every class.
func IsSyntheticField(name string) bool {
	return strings.HasPrefix(name, "$")
}

// Value is an operand, or a field of the object an operand points to when Field is non-empty.
type Value struct {
	Operand Operand
	Field   string
}

// Direct returns the value of the operand itself
func Direct(o Operand) Value { return Value{Operand: o} }

// Elem returns the elements stored in the operand
func Elem(o Operand) Value { return Value{Operand: o, Field: ElemField} }

// Key returns the keys stored in the operand
func Key(o Operand) Value { return Value{Operand: o, Field: KeyField} }

// IsNone returns true when the value is dropped
func (v Value) IsNone() bool { return v.Operand == NoOperand }

func (v Value) String() string {
	if v.Field == "" {
		return v.Operand.String()
	}
	return v.Operand.String() + "." + v.Field
}

// EffectKind is the kind of effect a builtin method has
type EffectKind int

const (
	// Copy makes Dst point to everything Src points to
	Copy EffectKind = iota
	// Alloc makes Dst point to a new object of Class, allocated at the method's allocation site
	Alloc
	// Invoke calls the function value Src with Args bound to its parameters. The callback's return value flows to
	// Dst, unless Dst is none.
	Invoke
)

func (k EffectKind) String() string {
	switch k {
	case Copy:
		return "copy"
	case Alloc:
		return "alloc"
	case Invoke:
		return "invoke"
	}
	return "unknown"
}

// Effect is one effect of a call to a builtin method
type Effect struct {
	Kind  EffectKind
	Dst   Value
	Src   Value
	Args  []Value
	Class string
}

func (e Effect) String() string {
	switch e.Kind {
	case Alloc:
		return fmt.Sprintf("%s = new %s", e.Dst, e.Class)
	case Invoke:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = a.String()
		}
		return fmt.Sprintf("%s = %s(%s)", e.Dst, e.Src, strings.Join(args, ", "))
	default:
		return fmt.Sprintf("%s = %s", e.Dst, e.Src)
	}
}

// Summary summarizes the data flow and the control flow of a builtin method.
// This makes the analyses aware of the behaviour of methods that do not have a body.
// A summary with no effect means that the result is fresh, untainted data and that no argument escapes.
type Summary struct {
	Effects []Effect
}

// NoDataFlowPropagation is a summary for methods that do not have a data flow. The return value, if used, is a
// sanitized value.
var NoDataFlowPropagation = Summary{}

// Allocates returns the class allocated by the method, if the summary has an Alloc effect
func (s Summary) Allocates() (string, bool) {
	for _, e := range s.Effects {
		if e.Kind == Alloc {
			return e.Class, true
		}
	}
	return "", false
}

// Invokes returns the indexes of the Invoke effects of the summary
func (s Summary) Invokes() []int {
	var res []int
	for i, e := range s.Effects {
		if e.Kind == Invoke {
			res = append(res, i)
		}
	}
	return res
}

// IsSummaryRequired returns true if the summary calls one of its arguments. Such methods must be summarized for the
// call graph to be sound: stubbing them out would only lose the data flow, but skipping them loses call edges.
func (s Summary) IsSummaryRequired() bool {
	return len(s.Invokes()) > 0
}
