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

package summaries

// MethodModel is the signature and summary of a native method
type MethodModel struct {
	Name    string
	Arity   int
	Summary Summary
}

// ClassModel is a native class of the runtime library
type ClassModel struct {
	Name    string
	Super   string
	Methods []MethodModel
}

func store(dst Value, src Value) Effect { return Effect{Kind: Copy, Dst: dst, Src: src} }

func alloc(class string) Effect {
	return Effect{Kind: Alloc, Dst: Direct(Result), Src: Direct(NoOperand), Class: class}
}

func invoke(f Operand, ret Value, args ...Value) Effect {
	return Effect{Kind: Invoke, Src: Direct(f), Dst: ret, Args: args}
}

var none = Direct(NoOperand)

// BuiltinClasses lists the runtime library classes, in declaration order. Superclasses come first.
var BuiltinClasses = []ClassModel{
	{Name: "Object"},
	{
		Name:  "Array",
		Super: "Object",
		Methods: []MethodModel{
			{"push", 1, Summary{[]Effect{store(Elem(Receiver), Direct(Arg(0)))}}},
			{"pop", 0, Summary{[]Effect{store(Direct(Result), Elem(Receiver))}}},
			{"shift", 0, Summary{[]Effect{store(Direct(Result), Elem(Receiver))}}},
			{"get", 1, Summary{[]Effect{store(Direct(Result), Elem(Receiver))}}},
			{"set", 2, Summary{[]Effect{store(Elem(Receiver), Direct(Arg(1)))}}},
			{"indexOf", 1, NoDataFlowPropagation},
			{"join", 1, Summary{[]Effect{store(Direct(Result), Elem(Receiver))}}},
			{"forEach", 1, Summary{[]Effect{invoke(Arg(0), none, Elem(Receiver))}}},
			{"map", 1, Summary{[]Effect{
				alloc("Array"),
				invoke(Arg(0), Elem(Result), Elem(Receiver)),
			}}},
			{"concat", 1, Summary{[]Effect{
				alloc("Array"),
				store(Elem(Result), Elem(Receiver)),
				store(Elem(Result), Elem(Arg(0))),
			}}},
		},
	},
	{
		Name:  "Set",
		Super: "Object",
		Methods: []MethodModel{
			{"add", 1, Summary{[]Effect{
				store(Elem(Receiver), Direct(Arg(0))),
				store(Direct(Result), Direct(Receiver)),
			}}},
			{"has", 1, NoDataFlowPropagation},
			{"delete", 1, NoDataFlowPropagation},
			{"forEach", 1, Summary{[]Effect{invoke(Arg(0), none, Elem(Receiver))}}},
			{"values", 0, Summary{[]Effect{
				alloc("Array"),
				store(Elem(Result), Elem(Receiver)),
			}}},
		},
	},
	{
		Name:  "Map",
		Super: "Object",
		Methods: []MethodModel{
			{"set", 2, Summary{[]Effect{
				store(Key(Receiver), Direct(Arg(0))),
				store(Elem(Receiver), Direct(Arg(1))),
				store(Direct(Result), Direct(Receiver)),
			}}},
			{"get", 1, Summary{[]Effect{store(Direct(Result), Elem(Receiver))}}},
			{"has", 1, NoDataFlowPropagation},
			{"delete", 1, NoDataFlowPropagation},
			{"forEach", 1, Summary{[]Effect{invoke(Arg(0), none, Elem(Receiver), Key(Receiver))}}},
			{"keys", 0, Summary{[]Effect{
				alloc("Array"),
				store(Elem(Result), Key(Receiver)),
			}}},
			{"values", 0, Summary{[]Effect{
				alloc("Array"),
				store(Elem(Result), Elem(Receiver)),
			}}},
		},
	},
	{
		Name:  "Promise",
		Super: "Object",
		Methods: []MethodModel{
			{"resolve", 1, Summary{[]Effect{store(Elem(Receiver), Direct(Arg(0)))}}},
			{"then", 1, Summary{[]Effect{
				alloc("Promise"),
				invoke(Arg(0), Elem(Result), Elem(Receiver)),
			}}},
			{"catch", 1, Summary{[]Effect{
				invoke(Arg(0), none),
				store(Direct(Result), Direct(Receiver)),
			}}},
		},
	},
}

// builtinSummaries maps class names to the map of summaries of the class's methods
var builtinSummaries = func() map[string]map[string]Summary {
	m := make(map[string]map[string]Summary, len(BuiltinClasses))
	for _, c := range BuiltinClasses {
		methods := make(map[string]Summary, len(c.Methods))
		for _, meth := range c.Methods {
			methods[meth.Name] = meth.Summary
		}
		m[c.Name] = methods
	}
	return m
}()

// IsBuiltinClass returns true if name is one of the runtime library classes
func IsBuiltinClass(name string) bool {
	_, ok := builtinSummaries[name]
	return ok
}

// SummaryOf returns the summary of the method of class and true if it has a summary,
// otherwise it returns an empty summary and false.
func SummaryOf(class string, method string) (Summary, bool) {
	if s, ok := builtinSummaries[class]; ok {
		summary, ok := s[method]
		return summary, ok
	}
	return Summary{}, false
}
