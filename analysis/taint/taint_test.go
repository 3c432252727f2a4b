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
package taint_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/analysis/pointer"
	"github.com/awslabs/ar-script-analyzer/analysis/taint"
	"github.com/awslabs/ar-script-analyzer/internal/analysistest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runTaint(t *testing.T, scene *ir.Scene, cfg *config.Config) *taint.Result {
	t.Helper()
	pres, err := pointer.Analyze(context.Background(), scene, cfg, nil)
	require.NoError(t, err)
	res, err := taint.AnalyzeWithPointer(context.Background(), scene, cfg, pres)
	require.NoError(t, err)
	return res
}

func TestTaintField(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_field")
	expected := analysistest.GetExpectedSourceToSink(t, "taint_field")
	require.Len(t, expected, 6)
	res := runTaint(t, scene, cfg)
	assert.Equal(t, expected, res.Report.ToStrings(scene))
}

func TestSanitizedValueDoesNotReachSink(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_field")
	res := runTaint(t, scene, cfg)
	sanitized, _ := scene.Method("Main.main")
	_, ok := res.Report.Sinks[ir.StmtRef{Method: sanitized.ID, Index: 11}]
	assert.False(t, ok, "the sanitized value must not reach the sink")
}

func TestFlowWitness(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_field")
	res := runTaint(t, scene, cfg)
	require.NotEmpty(t, res.Report.Flows)
	for _, f := range res.Report.Flows {
		require.NotEmpty(t, f.Path)
		assert.Equal(t, f.Source, f.Path[0].Stmt, "witness of %s starts at the source", scene.StmtString(f.Sink))
		assert.Equal(t, f.Sink, f.Path[len(f.Path)-1].Stmt, "witness ends at the sink")
	}
}

const singleSourceConfig = `
taint-tracking-problems:
  - sources:
      - class: ^Cred$
        field: ^secret$
    sinks:
      - method: ^sink$
`

func TestMoreSourcesOnlyAddFlows(t *testing.T) {
	scene, full := analysistest.LoadTest(t, "taint_field")
	small, err := config.Parse([]byte(singleSourceConfig))
	require.NoError(t, err)

	fewer := runTaint(t, scene, small).Report.ToStrings(scene)
	more := runTaint(t, scene, full).Report.ToStrings(scene)
	assert.Len(t, fewer, 1)
	for sink, sources := range fewer {
		for source := range sources {
			assert.True(t, more[sink][source], "flow %s -> %s lost when adding sources", source, sink)
		}
	}
	assert.Greater(t, len(more), len(fewer))
}

func TestReportIsDeterministic(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_field")
	// a second problem, so that problems run concurrently
	extra, err := config.Parse([]byte(singleSourceConfig))
	require.NoError(t, err)
	cfg.TaintTrackingProblems = append(cfg.TaintTrackingProblems, extra.TaintTrackingProblems...)

	dump := func(parallel bool) string {
		cfg.Parallel = parallel
		var buf bytes.Buffer
		_, err := runTaint(t, scene, cfg).Report.WriteTo(scene, &buf)
		require.NoError(t, err)
		return buf.String()
	}
	first := dump(true)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, dump(true))
	assert.Equal(t, first, dump(false))
	assert.Contains(t, first, "Main.main@24 -> Main.main@25 | ")
}

func TestProblemsAreReportedSeparately(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_field")
	extra, err := config.Parse([]byte(singleSourceConfig))
	require.NoError(t, err)
	cfg.TaintTrackingProblems = append(cfg.TaintTrackingProblems, extra.TaintTrackingProblems...)
	res := runTaint(t, scene, cfg)
	require.Len(t, res.Problems, 2)
	assert.Equal(t, 1, res.Problems[1].Len())
	assert.Equal(t, res.Problems[0].Len(), res.Report.Len())
}

func TestRTACallGraphFindsSameFlows(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_field")
	pres, err := pointer.Analyze(context.Background(), scene, cfg, nil)
	require.NoError(t, err)
	rta := callgraph.BuildRTA(scene, nil)
	res, err := taint.Analyze(context.Background(), scene, cfg, rta, pres.PointsTo)
	require.NoError(t, err)
	found := res.Report.ToStrings(scene)
	for sink, sources := range analysistest.GetExpectedSourceToSink(t, "taint_field") {
		for source := range sources {
			assert.True(t, found[sink][source], "missing flow %s -> %s", source, sink)
		}
	}
}

func TestReportPaths(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_field")
	cfg.ReportPaths = true
	cfg.ReportsDir = t.TempDir()
	res := runTaint(t, scene, cfg)
	files, err := filepath.Glob(filepath.Join(cfg.ReportsDir, "flow-*.out"))
	require.NoError(t, err)
	assert.Len(t, files, res.Report.Len())
}

func TestTaintWatchdog(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_field")
	pres, err := pointer.Analyze(context.Background(), scene, cfg, nil)
	require.NoError(t, err)
	cfg.MaxIterations = 1
	_, err = taint.AnalyzeWithPointer(context.Background(), scene, cfg, pres)
	var internal *ir.AnalysisInternalError
	require.True(t, errors.As(err, &internal), "expected an internal error, got %v", err)
	assert.Equal(t, "taint analysis", internal.Analysis)
}

func TestTaintCancellation(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_field")
	pres, err := pointer.Analyze(context.Background(), scene, cfg, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = taint.AnalyzeWithPointer(ctx, scene, cfg, pres)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTaintSinks(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_sinks")
	expected := analysistest.GetExpectedSourceToSink(t, "taint_sinks")
	require.Len(t, expected, 3)
	res := runTaint(t, scene, cfg)
	assert.Equal(t, expected, res.Report.ToStrings(scene))
}

func TestSanitizedInCallee(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_sinks")
	res := runTaint(t, scene, cfg)
	main, _ := scene.Method("Main.main")
	// both calls to cleanse share its summary
	for _, i := range []int{10, 13} {
		_, ok := res.Report.Sinks[ir.StmtRef{Method: main.ID, Index: i}]
		assert.False(t, ok, "sanitized value reaches %s", scene.StmtString(ir.StmtRef{Method: main.ID, Index: i}))
	}
}

func TestNoFlowThroughUndeclaredField(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_sinks")
	pres, err := pointer.Analyze(context.Background(), scene, cfg, nil)
	require.NoError(t, err)
	res, err := taint.AnalyzeWithPointer(context.Background(), scene, cfg, pres)
	require.NoError(t, err)
	main, _ := scene.Method("Main.main")
	_, ok := res.Report.Sinks[ir.StmtRef{Method: main.ID, Index: 18}]
	assert.False(t, ok, "A declares no field g")
	// the points-to sets agree: nothing is stored in a.g
	assert.Empty(t, pres.PointsTo.Local(main.ID, "y2"))
}

func TestSourceTaintsArgs(t *testing.T) {
	scene, cfg := analysistest.LoadTest(t, "taint_sinks")
	main, _ := scene.Method("Main.main")
	fillSink := ir.StmtRef{Method: main.ID, Index: 7}

	res := runTaint(t, scene, cfg)
	assert.True(t, res.Report.Sinks[fillSink][ir.StmtRef{Method: main.ID, Index: 6}])

	cfg.SourceTaintsArgs = false
	res = runTaint(t, scene, cfg)
	_, ok := res.Report.Sinks[fillSink]
	assert.False(t, ok, "only the result of a source is tainted without source-taints-args")
	assert.Equal(t, 2, res.Report.Len())
}
