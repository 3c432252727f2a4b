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
package analysis

import (
	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
)

// Statistics are general statistics about a scene
type Statistics struct {
	NumberOfClasses          uint
	NumberOfMethods          uint
	NumberOfNonemptyMethods  uint
	NumberOfStatements       uint
	NumberOfCallSites        uint
	NumberOfAllocationSites  uint
	NumberOfLiveMethods      uint
	NumberOfDiagnostics      uint
	NumberOfRecursiveMethods uint
}

// SceneStatistics returns general statistics about the scene. When cg is not nil, the statistics also count the
// live methods of the call graph, its diagnostics and the methods in recursive components.
func SceneStatistics(scene *ir.Scene, cg *callgraph.CallGraph) Statistics {
	result := Statistics{
		NumberOfClasses:         uint(len(scene.Classes())),
		NumberOfAllocationSites: uint(len(scene.AllocationSites())),
	}
	for _, m := range scene.Methods() {
		result.NumberOfMethods++
		if len(m.Body) == 0 {
			continue
		}
		result.NumberOfNonemptyMethods++
		for _, s := range m.Body {
			result.NumberOfStatements++
			if _, ok := s.(*ir.Call); ok {
				result.NumberOfCallSites++
			}
		}
	}
	if cg == nil {
		return result
	}
	result.NumberOfLiveMethods = uint(len(cg.LiveMethods()))
	result.NumberOfDiagnostics = uint(len(cg.Diagnostics()))
	for _, c := range cg.RecursiveComponents() {
		result.NumberOfRecursiveMethods += uint(len(c))
	}
	return result
}
