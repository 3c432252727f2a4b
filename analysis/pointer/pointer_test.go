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
package pointer_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/analysis/pointer"
	"github.com/awslabs/ar-script-analyzer/internal/analysistest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, name string) (*ir.Scene, *pointer.Result) {
	t.Helper()
	s, cfg := analysistest.LoadTest(t, name)
	res, err := pointer.Analyze(context.Background(), s, cfg, nil)
	require.NoError(t, err)
	return s, res
}

func method(t *testing.T, s *ir.Scene, name string) ir.MethodID {
	t.Helper()
	m, ok := s.Method(name)
	require.Truef(t, ok, "no method %s", name)
	return m.ID
}

func labels(s *ir.Scene, sites []ir.SiteID) []string {
	res := make([]string, len(sites))
	for i, site := range sites {
		res[i] = s.Site(site).Label()
	}
	return res
}

func TestFieldSensitivityThroughCall(t *testing.T) {
	s, res := analyze(t, "call_field")
	main := method(t, s, "Main.main")
	pts := res.PointsTo
	assert.Equal(t, []string{"B.setC@0"}, labels(s, pts.Local(main, "c")))
	assert.Equal(t, []string{"Main.main@2"}, labels(s, pts.Local(main, "d")))

	b1, ok := s.SiteAt(ir.StmtRef{Method: main, Index: 0})
	require.True(t, ok)
	b2, ok := s.SiteAt(ir.StmtRef{Method: main, Index: 1})
	require.True(t, ok)
	assert.Equal(t, []string{"Main.main@2"}, labels(s, pts.Field(b1, "c")))
	assert.Equal(t, []string{"B.setC@0"}, labels(s, pts.Field(b2, "c")))
	assert.Equal(t, []string{"Main.main@0"}, labels(s, pts.Local(method(t, s, "B.setC"), ir.This)))
}

func TestInstanceFields(t *testing.T) {
	s, res := analyze(t, "instance_field")
	main := method(t, s, "Main.main")
	pts := res.PointsTo
	assert.Equal(t, []string{"Main.main@2"}, labels(s, pts.Local(main, "x")))
	assert.Equal(t, []string{"Main.main@3"}, labels(s, pts.Local(main, "y")))
	assert.Equal(t, []string{"Main.main@2"}, labels(s, pts.Local(main, "z")))

	a1, _ := pts.LocalNode(main, "a1")
	a2, _ := pts.LocalNode(main, "a2")
	a3, _ := pts.LocalNode(main, "a3")
	assert.False(t, pts.MayAlias(a1, a2))
	assert.True(t, pts.MayAlias(a1, a3))
}

func TestSingleton(t *testing.T) {
	s, res := analyze(t, "singleton")
	main := method(t, s, "Main.main")
	for _, v := range []string{"s1", "s2", "s3"} {
		assert.Equal(t, []string{"Singleton.getInstance@2"}, labels(s, res.PointsTo.Local(main, v)), v)
	}
	singleton, _ := s.Class("Singleton")
	assert.Equal(t, []string{"Singleton.getInstance@2"}, labels(s, res.PointsTo.Static(singleton.ID, "instance")))
	assert.Equal(t, []string{"Singleton.hello"},
		[]string{s.MethodByID(res.CallGraph.Callees(ir.StmtRef{Method: main, Index: 3})[0]).QualifiedName})
	assert.Empty(t, res.Diagnostics)
}

func TestRecursiveFactories(t *testing.T) {
	s, res := analyze(t, "static_call")
	main := method(t, s, "Main.main")
	assert.Equal(t, []string{"Main.foo@3"}, labels(s, res.PointsTo.Local(main, "x")))
	assert.Equal(t, []string{"Main.foo@3"}, labels(s, res.PointsTo.Local(main, "y")))
	assert.Len(t, res.CallGraph.RecursiveComponents(), 1)
}

func TestClosureCallback(t *testing.T) {
	s, res := analyze(t, "closure_callback")
	main := method(t, s, "Main.main")
	cg := res.CallGraph
	var callbacks []string
	for _, e := range cg.EdgesAt(ir.StmtRef{Method: main, Index: 5}) {
		if e.Callback {
			assert.Equal(t, callgraph.PointerResolved, e.Kind)
			callbacks = append(callbacks, s.MethodByID(e.Callee).QualifiedName)
		}
	}
	// only the closure given to forEach is called back
	assert.Equal(t, []string{"Main.apply"}, callbacks)

	apply := method(t, s, "Main.apply")
	assert.Equal(t, []string{"Main.main@2"}, labels(s, res.PointsTo.Local(apply, "fn")))
	assert.Equal(t, []ir.MethodID{method(t, s, "Main.work")}, cg.Callees(ir.StmtRef{Method: apply, Index: 0}))
	work := method(t, s, "Main.work")
	assert.Equal(t, []string{"Main.main@1"}, labels(s, res.PointsTo.Local(work, "h")))
	assert.True(t, cg.IsLive(method(t, s, "Handler.handle")))
	assert.False(t, cg.IsLive(method(t, s, "Other.handle")))

	set, ok := s.SiteAt(ir.StmtRef{Method: main, Index: 0})
	require.True(t, ok)
	assert.Equal(t, []string{"Main.main@2"}, labels(s, res.PointsTo.Field(set, "$elem")))
}

func TestDiagnostics(t *testing.T) {
	s, res := analyze(t, "unresolved")
	var kinds []string
	for _, d := range res.Diagnostics {
		kinds = append(kinds, fmt.Sprintf("%s %s", s.StmtString(d.Site), d.Kind))
	}
	assert.Equal(t, []string{
		"Main.main@0 unresolved-receiver",
		"Main.main@2 unmodeled-builtin-call",
		"Main.main@3 unresolved-receiver",
	}, kinds)
}

// Every edge found with the points-to sets is an RTA edge
func TestPointerEdgesAreRTAEdges(t *testing.T) {
	for _, name := range []string{"cha_rta", "call_field", "instance_field", "singleton", "static_call",
		"closure_callback", "unresolved"} {
		t.Run(name, func(t *testing.T) {
			s, res := analyze(t, name)
			rta := callgraph.BuildRTA(s, nil)
			for _, e := range res.CallGraph.Edges() {
				var callees []ir.MethodID
				for _, re := range rta.EdgesAt(e.Site) {
					callees = append(callees, re.Callee)
				}
				assert.Contains(t, callees, e.Callee, res.CallGraph.EdgeString(e))
			}
		})
	}
}

func TestIdempotence(t *testing.T) {
	for _, name := range []string{"call_field", "closure_callback"} {
		_, first := analyze(t, name)
		_, second := analyze(t, name)
		var b1, b2 bytes.Buffer
		_, err := first.PointsTo.WriteTo(&b1)
		require.NoError(t, err)
		_, err = second.PointsTo.WriteTo(&b2)
		require.NoError(t, err)
		assert.Equal(t, b1.String(), b2.String())
		assert.NotEmpty(t, b1.String())

		b1.Reset()
		b2.Reset()
		_, err = first.CallGraph.WriteTo(&b1)
		require.NoError(t, err)
		_, err = second.CallGraph.WriteTo(&b2)
		require.NoError(t, err)
		assert.Equal(t, b1.String(), b2.String())
		assert.Equal(t, first.Iterations, second.Iterations)
	}
}

// syntheticScene has n classes with a method storing and loading its argument, and m call sites in main
func syntheticScene(t *testing.T, n int, m int) *ir.Scene {
	b := ir.NewBuilder()
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("C%d", i)
		b.AddClass(ir.ClassDecl{Name: name, Fields: []ir.FieldDecl{{Name: "f"}}})
		b.AddMethod(name, ir.MethodDecl{
			Name:   "m",
			Params: []ir.Param{{Name: "x"}},
			Body:   ir.MustParse("this.f = x", "r = this.f", "return r"),
		})
	}
	b.AddClass(ir.ClassDecl{Name: "Main"})
	var body []string
	for j := 0; j < m; j++ {
		body = append(body,
			fmt.Sprintf("o%d = new C%d", j, j%n),
			fmt.Sprintf("p%d = new C%d", j, (j+1)%n),
			fmt.Sprintf("r%d = o%d.m(p%d)", j, j, j),
			fmt.Sprintf("all = o%d", j))
	}
	body = append(body, "z = all.m(all)")
	b.AddMethod("Main", ir.MethodDecl{Name: "main", Static: true, Body: ir.MustParse(body...)})
	s, err := b.Freeze()
	require.NoError(t, err)
	return s
}

func TestTerminationBound(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {5, 10}, {20, 50}} {
		s := syntheticScene(t, size[0], size[1])
		res, err := pointer.Analyze(context.Background(), s, nil, nil)
		require.NoError(t, err)
		nodes := len(res.PointsTo.Nodes())
		sites := len(s.AllocationSites())
		assert.LessOrEqual(t, res.Iterations, 2*nodes*(sites+1), "%d classes, %d sites", size[0], size[1])
		main := method(t, s, "Main.main")
		// all the objects reach z through the fields
		assert.Len(t, res.PointsTo.Local(main, "z"), sites)
	}
}

func TestMaxIterations(t *testing.T) {
	s, cfg := analysistest.LoadTest(t, "call_field")
	cfg.MaxIterations = 1
	res, err := pointer.Analyze(context.Background(), s, cfg, nil)
	assert.Nil(t, res)
	var internal *ir.AnalysisInternalError
	require.True(t, errors.As(err, &internal))
	assert.Equal(t, 1, internal.Iterations)

	cfg.MaxIterations = 0
	_, err = pointer.Analyze(context.Background(), s, cfg, nil)
	assert.NoError(t, err)
}

func TestCancellation(t *testing.T) {
	s := analysistest.LoadScene(t, "call_field")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := pointer.Analyze(ctx, s, config.NewDefault(), nil)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, context.Canceled))
}
