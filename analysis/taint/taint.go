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
	"context"
	"fmt"

	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/analysis/pointer"
	"golang.org/x/sync/errgroup"
)

// Result is the result of the taint analysis of a scene
type Result struct {
	// Report contains all the flows from the sources to the sinks, for all the problems
	Report *Report

	// Problems contains the report of each taint tracking problem of the config, in order
	Problems []*Report

	// Iterations is the total number of path edges processed
	Iterations int
}

// Analyze runs the taint tracking problems of the config on the scene. The call graph cg determines the callees of
// each call site, and the points-to sets pts determine which heap locations the field reads and writes access; pts
// must be computed on the same scene. Independent problems run in parallel when cfg.Parallel is set.
//
// When the context is cancelled, or a problem exceeds the iteration bound of the config, Analyze returns an error
// and no result.
func Analyze(ctx context.Context, scene *ir.Scene, cfg *config.Config, cg *callgraph.CallGraph,
	pts *pointer.Store) (*Result, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	logger := config.NewLogGroup(cfg)
	problems := make([]*Report, len(cfg.TaintTrackingProblems))
	iterations := make([]int, len(cfg.TaintTrackingProblems))

	g, gctx := errgroup.WithContext(ctx)
	if !cfg.Parallel {
		g.SetLimit(1)
	}
	for i := range cfg.TaintTrackingProblems {
		i := i
		g.Go(func() error {
			p := &problem{spec: cfg.TaintTrackingProblems[i], scene: scene, cg: cg, pts: pts}
			s := newSolver(gctx, p, cfg)
			if err := s.solve(); err != nil {
				return fmt.Errorf("taint problem %d: %w", i, err)
			}
			report := NewReport()
			for _, f := range s.flows {
				report.add(f)
			}
			report.sort()
			problems[i] = report
			iterations[i] = s.iterations
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Report: NewReport(), Problems: problems}
	for i, r := range problems {
		res.Report.Merge(r)
		res.Iterations += iterations[i]
	}
	logger.Infof("Taint analysis found %d flows", res.Report.Len())

	if cfg.ReportPaths {
		for _, f := range res.Report.Flows {
			name, err := writeFlowFile(cfg, scene, f)
			if err != nil {
				logger.Errorf("%v", err)
				continue
			}
			logger.Infof("Report in %s", name)
		}
	}
	return res, nil
}

// AnalyzeWithPointer runs the taint analysis with the call graph and the points-to sets of the pointer analysis
func AnalyzeWithPointer(ctx context.Context, scene *ir.Scene, cfg *config.Config,
	pres *pointer.Result) (*Result, error) {
	return Analyze(ctx, scene, cfg, pres.CallGraph, pres.PointsTo)
}
