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

// This file defines the tabulation algorithm of the IFDS framework, instantiated for the taint problem.
// A path edge (m, d1, n, d2) means that the fact d2 holds at the statement n of the method m when the fact d1 holds
// at the start of m. The end summaries record, for each method and start fact, the facts that hold at the exit of the
// method, and are reused by every call site reaching the method with the same start fact.
//
// The heap is not part of the exploded supergraph: the taint of fields is recorded in global tables keyed by
// abstract object and field, and the reads of a location subscribe to it so that they are processed again when the
// location gets a new fact.

import (
	"context"
	"fmt"

	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/analysis/summaries"
	"github.com/awslabs/ar-script-analyzer/internal/formatutil"
	"github.com/awslabs/ar-script-analyzer/internal/funcutil"
)

// retVar is the variable holding the value returned by a method at its exit node
const retVar = "$ret"

type pathEdge struct {
	method ir.MethodID
	d1     Fact
	n      int
	d2     Fact
}

func (e pathEdge) stmt() ir.StmtRef {
	return ir.StmtRef{Method: e.method, Index: e.n}
}

type summaryKey struct {
	method ir.MethodID
	d1     Fact
}

// incomingEdge is a call site reaching a callee: the path edge at the call statement and the call edge taken
type incomingEdge struct {
	caller pathEdge
	edge   callgraph.Edge
}

type heapKey struct {
	site  ir.SiteID
	field string
}

// factTable is a set of facts in insertion order, with the path edges to process again when a fact is added
type factTable struct {
	facts   []Fact
	has     map[Fact]bool
	subs    []pathEdge
	hasSubs map[pathEdge]bool
}

func newFactTable() *factTable {
	return &factTable{has: map[Fact]bool{}, hasSubs: map[pathEdge]bool{}}
}

type flowKey struct {
	source ir.StmtRef
	sink   ir.StmtRef
}

type solver struct {
	ctx           context.Context
	*problem
	log           *config.LogGroup
	k             int
	taintArgs     bool
	maxIterations int
	iterations    int

	work       []pathEdge
	pathEdges  map[pathEdge]bool
	pred       map[pathEdge]pathEdge
	endSummary map[summaryKey][]Fact
	hasSummary map[summaryKey]map[Fact]bool
	incoming   map[summaryKey][]incomingEdge
	hasInc     map[summaryKey]map[incomingEdge]bool

	heap     map[heapKey]*factTable
	statics  map[ir.StaticFieldRef]*factTable
	captures map[ir.MethodID]*factTable

	flows map[flowKey]Flow
}

func newSolver(ctx context.Context, p *problem, cfg *config.Config) *solver {
	k := cfg.MaxAccessPathLength
	if k <= 0 {
		k = config.DefaultMaxAccessPathLength
	}
	return &solver{
		ctx:           ctx,
		problem:       p,
		log:           config.NewLogGroup(cfg),
		k:             k,
		taintArgs:     cfg.SourceTaintsArgs,
		maxIterations: cfg.MaxIterations,
		pathEdges:     map[pathEdge]bool{},
		pred:          map[pathEdge]pathEdge{},
		endSummary:    map[summaryKey][]Fact{},
		hasSummary:    map[summaryKey]map[Fact]bool{},
		incoming:      map[summaryKey][]incomingEdge{},
		hasInc:        map[summaryKey]map[incomingEdge]bool{},
		heap:          map[heapKey]*factTable{},
		statics:       map[ir.StaticFieldRef]*factTable{},
		captures:      map[ir.MethodID]*factTable{},
		flows:         map[flowKey]Flow{},
	}
}

// solve runs the tabulation from the entry points of the call graph
func (s *solver) solve() error {
	for _, entry := range s.cg.EntryPoints() {
		if s.scene.MethodByID(entry).HasBody() {
			s.propagate(pathEdge{method: entry, d1: zeroFact, n: 0, d2: zeroFact}, nil)
		}
	}
	for len(s.work) > 0 {
		s.iterations++
		if err := s.ctx.Err(); err != nil {
			return fmt.Errorf("taint analysis interrupted: %w", err)
		}
		if s.maxIterations > 0 && s.iterations > s.maxIterations {
			return &ir.AnalysisInternalError{Analysis: "taint analysis", Iterations: s.maxIterations,
				Msg: "maximum number of iterations exceeded"}
		}
		e := s.work[0]
		s.work = s.work[1:]
		s.process(e)
	}
	s.log.Debugf("taint analysis done after %d iterations, %d path edges", s.iterations, len(s.pathEdges))
	return nil
}

// propagate adds the path edge to the worklist if it is new. from is the edge it was derived from, if any.
func (s *solver) propagate(e pathEdge, from *pathEdge) {
	if s.pathEdges[e] {
		return
	}
	s.pathEdges[e] = true
	if from != nil {
		s.pred[e] = *from
	}
	s.work = append(s.work, e)
}

// refire processes a path edge again, because one of the tables it read has changed
func (s *solver) refire(e pathEdge) {
	s.work = append(s.work, e)
}

func (s *solver) process(e pathEdge) {
	m := s.scene.MethodByID(e.method)
	if e.n == 0 && e.d2.IsZero() {
		s.injectCaptures(e)
	}
	if e.n >= len(m.Body) {
		s.processExit(e)
		return
	}
	ref := e.stmt()
	if call, ok := m.Body[e.n].(*ir.Call); ok {
		s.processCall(e, ref, call)
		return
	}
	out := s.normalFlow(e, ref, m.Body[e.n])
	for _, succ := range s.scene.Successors(ref) {
		for _, d := range out {
			s.propagate(pathEdge{method: e.method, d1: e.d1, n: succ.Index, d2: d}, &e)
		}
	}
}

func (s *solver) processExit(e pathEdge) {
	key := summaryKey{method: e.method, d1: e.d1}
	if s.hasSummary[key] == nil {
		s.hasSummary[key] = map[Fact]bool{}
	}
	if s.hasSummary[key][e.d2] {
		return
	}
	s.hasSummary[key][e.d2] = true
	s.endSummary[key] = append(s.endSummary[key], e.d2)
	for _, inc := range s.incoming[key] {
		s.applyReturn(inc, e)
	}
}

// enterCallee records the call site of the incoming edge as reaching the callee with the start fact d3, and applies
// the end summaries already known for that start fact
func (s *solver) enterCallee(caller pathEdge, edge callgraph.Edge, d3 Fact) {
	key := summaryKey{method: edge.Callee, d1: d3}
	inc := incomingEdge{caller: caller, edge: edge}
	if s.hasInc[key] == nil {
		s.hasInc[key] = map[incomingEdge]bool{}
	}
	if !s.hasInc[key][inc] {
		s.hasInc[key][inc] = true
		s.incoming[key] = append(s.incoming[key], inc)
	}
	s.propagate(pathEdge{method: edge.Callee, d1: d3, n: 0, d2: d3}, &caller)
	exit := len(s.scene.MethodByID(edge.Callee).Body)
	for _, d4 := range s.endSummary[key] {
		s.applyReturn(inc, pathEdge{method: edge.Callee, d1: d3, n: exit, d2: d4})
	}
}

// applyReturn maps the fact at the exit of a callee to the return site of the call in the caller
func (s *solver) applyReturn(inc incomingEdge, exit pathEdge) {
	d4 := exit.d2
	if d4.IsZero() {
		return
	}
	caller := inc.caller
	site := caller.stmt()
	call := s.scene.Statement(site).(*ir.Call)
	callee := s.scene.MethodByID(exit.method)
	var out []Fact
	if inc.edge.Callback {
		if d4.Path.Var == retVar {
			effect := s.effectOf(inc.edge)
			out = s.writeValue(site, call, effect.Dst, []Fact{d4.WithPath(d4.Path.Suffix())})
		}
	} else {
		hasFields := d4.Path.Len() > 0 || d4.Path.Truncated
		switch {
		case d4.Path.Var == retVar:
			if call.Dst != "" {
				out = append(out, d4.WithPath(d4.Path.Rebase(call.Dst)))
			}
		case d4.Path.Var == ir.This && hasFields && call.Recv != "" && !callee.Static:
			out = append(out, d4.WithPath(d4.Path.Rebase(call.Recv)))
		case hasFields:
			for i, p := range callee.Params {
				if p.Name == d4.Path.Var && i < len(call.Args) {
					out = append(out, d4.WithPath(d4.Path.Rebase(call.Args[i])))
				}
			}
		}
	}
	for _, succ := range s.scene.Successors(site) {
		for _, d := range out {
			s.propagate(pathEdge{method: caller.method, d1: caller.d1, n: succ.Index, d2: d}, &exit)
		}
	}
}

func (s *solver) effectOf(edge callgraph.Edge) summaries.Effect {
	summary, _ := s.scene.Summary(edge.Via)
	return summary.Effects[edge.Effect]
}

// injectCaptures adds the taint of the variables captured by the closures bound to the method at its start
func (s *solver) injectCaptures(e pathEdge) {
	table := s.captureTable(e.method)
	if !table.hasSubs[e] {
		table.hasSubs[e] = true
		table.subs = append(table.subs, e)
	}
	for _, c := range table.facts {
		s.propagate(pathEdge{method: e.method, d1: e.d1, n: 0, d2: c}, &e)
	}
}

func (s *solver) captureTable(m ir.MethodID) *factTable {
	t, ok := s.captures[m]
	if !ok {
		t = newFactTable()
		s.captures[m] = t
	}
	return t
}

func (s *solver) heapTable(key heapKey) *factTable {
	t, ok := s.heap[key]
	if !ok {
		t = newFactTable()
		s.heap[key] = t
	}
	return t
}

func (s *solver) staticTable(ref ir.StaticFieldRef) *factTable {
	t, ok := s.statics[ref]
	if !ok {
		t = newFactTable()
		s.statics[ref] = t
	}
	return t
}

// read returns the facts of the table and subscribes the path edge to its future facts
func (s *solver) read(table *factTable, e pathEdge) []Fact {
	if !table.hasSubs[e] {
		table.hasSubs[e] = true
		table.subs = append(table.subs, e)
	}
	return table.facts
}

// write adds the fact to the table and processes again the path edges that read it
func (s *solver) write(table *factTable, f Fact) {
	if table.has[f] {
		return
	}
	table.has[f] = true
	table.facts = append(table.facts, f)
	for _, sub := range table.subs {
		s.refire(sub)
	}
}

// heapKeys returns the locations of the field of the objects the variable of the method may point to
func (s *solver) heapKeys(method ir.MethodID, v string, field string) []heapKey {
	var keys []heapKey
	for _, site := range s.pts.Local(method, v) {
		obj := s.scene.Site(site)
		if obj.IsClosure() && !summaries.IsSyntheticField(field) {
			continue
		}
		if !obj.IsClosure() && !s.scene.DeclaresField(obj.Class, field) {
			continue
		}
		keys = append(keys, heapKey{site: site, field: field})
	}
	return keys
}

// mayHaveField returns true if some object v may point to has the field. Access paths through a field no such object
// has are dropped.
func (s *solver) mayHaveField(method ir.MethodID, v string, field string) bool {
	return len(s.heapKeys(method, v, field)) > 0
}

// report records a flow from the origin of the fact to the sink statement, with the path edges leading to e as
// witness
func (s *solver) report(d Fact, sink ir.StmtRef, e pathEdge) {
	key := flowKey{source: d.Origin, sink: sink}
	if _, ok := s.flows[key]; ok {
		return
	}
	flow := Flow{Source: d.Origin, Sink: sink, Path: s.trace(e, d)}
	s.flows[key] = flow
	s.log.Infof(" 💀 Sink reached at %s", formatutil.Red(s.scene.StmtString(sink)))
	s.log.Infof(" Add new path from %s to %s <== ",
		formatutil.Green(s.scene.StmtString(d.Origin)), formatutil.Red(s.scene.StmtString(sink)))
}

// trace returns the statements from the source to the sink, following the predecessors of the path edges
func (s *solver) trace(e pathEdge, d Fact) []Step {
	steps := []Step{{Stmt: e.stmt(), Path: d.Path}}
	cur := e
	for len(steps) <= len(s.pred) {
		prev, ok := s.pred[cur]
		if !ok || prev.d2.IsZero() {
			break
		}
		steps = append(steps, Step{Stmt: prev.stmt(), Path: prev.d2.Path})
		cur = prev
	}
	if last := steps[len(steps)-1]; last.Stmt != d.Origin {
		steps = append(steps, Step{Stmt: d.Origin, Path: cur.d2.Path})
	}
	funcutil.Reverse(steps)
	return steps
}
