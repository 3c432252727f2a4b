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
	"strings"
)

// LinkError is returned when the scene refers to a class, method or field that does not exist, or when the control
// flow of a method is malformed.
type LinkError struct {
	// Where is the declaration or statement containing the reference
	Where string
	// Ref is the unresolved reference
	Ref string
	// Msg gives more details, when not empty
	Msg string
}

func (e *LinkError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("link error in %s: %s: %s", e.Where, e.Msg, e.Ref)
	}
	return fmt.Sprintf("link error in %s: unresolved reference to %s", e.Where, e.Ref)
}

// DuplicateDeclError is returned when a class, a method or a field is declared twice
type DuplicateDeclError struct {
	// Kind is one of class, method or field
	Kind string
	Name string
}

func (e *DuplicateDeclError) Error() string {
	return fmt.Sprintf("duplicate %s declaration: %s", e.Kind, e.Name)
}

// InheritanceCycleError is returned when classes inherit from each other. Each class of Classes extends or
// implements the next one, and the last one the first.
type InheritanceCycleError struct {
	Classes []string
}

func (e *InheritanceCycleError) Error() string {
	return fmt.Sprintf("inheritance cycle %s -> %s", strings.Join(e.Classes, " -> "), e.Classes[0])
}

// AnalysisInternalError is returned by a fixpoint computation on a scene that exceeds its iteration bound. The
// results computed up to that point are discarded.
type AnalysisInternalError struct {
	// Analysis is the name of the analysis that stopped
	Analysis   string
	Iterations int
	Msg        string
}

func (e *AnalysisInternalError) Error() string {
	return fmt.Sprintf("internal error in %s after %d iterations: %s", e.Analysis, e.Iterations, e.Msg)
}
