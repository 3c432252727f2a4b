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
	"context"
	"fmt"

	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/analysis/pointer"
)

// CallgraphAnalysisMode selects the construction of the call graph
type CallgraphAnalysisMode uint64

const (
	PointerAnalysis        CallgraphAnalysisMode = iota // PointerAnalysis resolves calls with points-to sets (slow)
	ClassHierarchyAnalysis                              // ClassHierarchyAnalysis is a coarse over-approximation (fast)
	RapidTypeAnalysis                                   // RapidTypeAnalysis prunes CHA with the instantiated classes
)

func (mode CallgraphAnalysisMode) String() string {
	switch mode {
	case PointerAnalysis:
		return "pointer"
	case ClassHierarchyAnalysis:
		return "cha"
	case RapidTypeAnalysis:
		return "rta"
	}
	return "unknown"
}

// ParseCallgraphMode returns the mode named s: cha, rta or pointer
func ParseCallgraphMode(s string) (CallgraphAnalysisMode, error) {
	switch s {
	case "pointer", "":
		return PointerAnalysis, nil
	case "cha":
		return ClassHierarchyAnalysis, nil
	case "rta":
		return RapidTypeAnalysis, nil
	}
	return 0, fmt.Errorf("unsupported callgraph analysis mode %q (expected cha, rta or pointer)", s)
}

// ComputeCallgraph computes the call graph of the scene from the entries using the provided mode.
func (mode CallgraphAnalysisMode) ComputeCallgraph(ctx context.Context, scene *ir.Scene, cfg *config.Config,
	entries []ir.MethodID) (*callgraph.CallGraph, error) {
	switch mode {
	case PointerAnalysis:
		// The pointer analysis builds the call graph on the fly. This function returns only the call graph, and not
		// the points-to sets.
		result, err := pointer.Analyze(ctx, scene, cfg, entries)
		if err != nil {
			return nil, fmt.Errorf("pointer analysis failed: %w", err)
		}
		return result.CallGraph, nil
	case ClassHierarchyAnalysis:
		// See "Optimization of Object-Oriented Programs Using Static Class Hierarchy Analysis",
		// J. Dean, D. Grove, and C. Chambers, ECOOP'95.
		return callgraph.BuildCHA(scene, entries), nil
	case RapidTypeAnalysis:
		// See "Fast Analysis of C++ Virtual Function Calls", D.Bacon & P. Sweeney, OOPSLA'96
		return callgraph.BuildRTA(scene, entries), nil
	default:
		return nil, fmt.Errorf("unsupported callgraph analysis mode %d", mode)
	}
}

// EntryPoints returns the methods matching the entry points of the config, in increasing id order. When the config
// does not list any entry point, the entry points of the scene are returned.
func EntryPoints(scene *ir.Scene, cfg *config.Config) ([]ir.MethodID, error) {
	if cfg == nil || len(cfg.EntryPoints) == 0 {
		return scene.EntryPoints(), nil
	}
	var entries []ir.MethodID
	for _, m := range scene.Methods() {
		if m.HasBody() && cfg.IsEntryPoint(scene.ClassOf(m.ID).Name, m.Name) {
			entries = append(entries, m.ID)
		}
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no method of the scene matches the entry points of the config")
	}
	return entries, nil
}
