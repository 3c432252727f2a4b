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
// Package analysis contains the pipeline running the analyses on a scene: the call graph construction, the pointer
// analysis and the taint analysis.
package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/analysis/pointer"
	"github.com/awslabs/ar-script-analyzer/analysis/taint"
)

// Results holds the results of the analyses of a scene
type Results struct {
	// Mode is the construction used for CallGraph
	Mode CallgraphAnalysisMode

	// CallGraph is the call graph the taint analysis runs on
	CallGraph *callgraph.CallGraph

	// Pointer is the result of the pointer analysis
	Pointer *pointer.Result

	// Taint is the result of the taint analysis, or nil if the config does not have any taint problem
	Taint *taint.Result
}

// RunAnalyses runs the analyses on the scene with the config. The call graph is built with the mode of the config;
// the pointer analysis always runs, since the taint analysis resolves field accesses with its points-to sets.
func RunAnalyses(ctx context.Context, scene *ir.Scene, cfg *config.Config) (*Results, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	logger := config.NewLogGroup(cfg)
	mode, err := ParseCallgraphMode(cfg.CallgraphMode)
	if err != nil {
		return nil, err
	}
	entries, err := EntryPoints(scene, cfg)
	if err != nil {
		return nil, err
	}

	logger.Infof("Starting pointer analysis ...")
	start := time.Now()
	pres, err := pointer.Analyze(ctx, scene, cfg, entries)
	if err != nil {
		return nil, fmt.Errorf("pointer analysis failed: %w", err)
	}
	logger.Infof("Pointer analysis done (%.2f s, %d iterations).", time.Since(start).Seconds(), pres.Iterations)
	for _, d := range pres.Diagnostics {
		logger.Warnf("%s", pres.CallGraph.DiagnosticString(d))
	}

	res := &Results{Mode: mode, Pointer: pres, CallGraph: pres.CallGraph}
	if mode != PointerAnalysis {
		res.CallGraph, err = mode.ComputeCallgraph(ctx, scene, cfg, entries)
		if err != nil {
			return nil, err
		}
	}

	if len(cfg.TaintTrackingProblems) == 0 {
		return res, nil
	}
	logger.Infof("Starting taint analysis (%d problems) ...", len(cfg.TaintTrackingProblems))
	start = time.Now()
	res.Taint, err = taint.Analyze(ctx, scene, cfg, res.CallGraph, pres.PointsTo)
	if err != nil {
		return nil, fmt.Errorf("taint analysis failed: %w", err)
	}
	logger.Infof("Taint analysis done (%.2f s).", time.Since(start).Seconds())
	return res, nil
}
