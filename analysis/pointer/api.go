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
package pointer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"golang.org/x/tools/container/intsets"
)

// Result is the result of the pointer analysis of a scene
type Result struct {
	// CallGraph is the call graph resolved with the points-to sets. Its non-static sites have the PointerResolved
	// kind.
	CallGraph *callgraph.CallGraph
	// PointsTo holds the final points-to set of each node
	PointsTo *Store
	// Iterations is the number of nodes taken from the worklist
	Iterations int
	// Diagnostics are the call sites the analysis could not resolve
	Diagnostics []callgraph.Diagnostic
}

// Analyze runs the pointer analysis of the scene from the entries, or from the entry points of the scene when
// entries is empty. The options of the config bound the number of iterations; a nil config means the default
// options. When the context is cancelled, or the bound is exceeded, Analyze returns an error and no result.
func Analyze(ctx context.Context, scene *ir.Scene, cfg *config.Config, entries []ir.MethodID) (*Result, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	a := &analysis{
		ctx:           ctx,
		scene:         scene,
		log:           config.NewLogGroup(cfg),
		maxIterations: cfg.MaxIterations,
		nodes:         newNodes(scene),
		builder:       callgraph.NewBuilder(scene, entries, callgraph.PointerResolved),
	}
	for _, e := range a.builder.Entries() {
		a.addLive(e)
	}
	if err := a.solve(); err != nil {
		return nil, err
	}
	cg := a.builder.Build()
	return &Result{
		CallGraph:   cg,
		PointsTo:    a.store(),
		Iterations:  a.iterations,
		Diagnostics: cg.Diagnostics(),
	}, nil
}

// Store is the final points-to set of each node of the constraint graph. Points-to sets are sets of allocation
// sites, returned in increasing id order.
type Store struct {
	scene   *ir.Scene
	nodes   []*Node
	pts     []*intsets.Sparse
	locals  map[localKey]NodeID
	returns map[ir.MethodID]NodeID
	fields  map[fieldKey]NodeID
	statics map[ir.StaticFieldRef]NodeID
}

func (a *analysis) store() *Store {
	s := &Store{
		scene:   a.scene,
		nodes:   a.nodes.all,
		pts:     make([]*intsets.Sparse, len(a.nodes.all)),
		locals:  a.nodes.locals,
		returns: a.nodes.returns,
		fields:  a.nodes.fields,
		statics: a.nodes.statics,
	}
	for i, n := range a.nodes.solve {
		s.pts[i] = &n.pts
	}
	return s
}

// Nodes returns all the nodes, indexed by their ids
func (s *Store) Nodes() []*Node {
	return s.nodes
}

// PointsTo returns the points-to set of the node
func (s *Store) PointsTo(n NodeID) []ir.SiteID {
	if n < 0 || int(n) >= len(s.pts) {
		return nil
	}
	return toSites(s.pts[n])
}

// LocalNode returns the node of the local variable v of the method. Variables of methods that are not live, and
// variables never used, have no node.
func (s *Store) LocalNode(method ir.MethodID, v string) (NodeID, bool) {
	id, ok := s.locals[localKey{method: method, name: v}]
	return id, ok
}

// Local returns the points-to set of the local variable v of the method
func (s *Store) Local(method ir.MethodID, v string) []ir.SiteID {
	id, ok := s.LocalNode(method, v)
	if !ok {
		return nil
	}
	return s.PointsTo(id)
}

// Return returns the points-to set of the values returned by the method
func (s *Store) Return(method ir.MethodID) []ir.SiteID {
	id, ok := s.returns[method]
	if !ok {
		return nil
	}
	return s.PointsTo(id)
}

// Field returns the points-to set of the field of the objects allocated at site
func (s *Store) Field(site ir.SiteID, field string) []ir.SiteID {
	id, ok := s.fields[fieldKey{site: site, field: field}]
	if !ok {
		return nil
	}
	return s.PointsTo(id)
}

// Static returns the points-to set of the static field, looked up from class to its superclasses
func (s *Store) Static(class ir.ClassID, field string) []ir.SiteID {
	decl, ok := s.scene.StaticField(class, field)
	if !ok {
		return nil
	}
	id, ok := s.statics[ir.StaticFieldRef{Class: decl, Field: field}]
	if !ok {
		return nil
	}
	return s.PointsTo(id)
}

// MayAlias returns true if the points-to sets of the two nodes intersect
func (s *Store) MayAlias(a, b NodeID) bool {
	if a < 0 || b < 0 || int(a) >= len(s.pts) || int(b) >= len(s.pts) {
		return false
	}
	return s.pts[a].Intersects(s.pts[b])
}

// WriteTo writes the non-empty points-to sets, one node per line, sorted by node label
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	var lines []string
	for _, n := range s.nodes {
		sites := s.PointsTo(n.ID)
		if len(sites) == 0 {
			continue
		}
		labels := make([]string, len(sites))
		for i, site := range sites {
			labels[i] = s.scene.Site(site).Label()
		}
		lines = append(lines, fmt.Sprintf("%s %s -> {%s}\n", n.Kind, n.label, strings.Join(labels, ", ")))
	}
	sort.Strings(lines)
	var buf bytes.Buffer
	for _, l := range lines {
		buf.WriteString(l)
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

func toSites(set *intsets.Sparse) []ir.SiteID {
	ids := set.AppendTo(nil)
	res := make([]ir.SiteID, len(ids))
	for i, id := range ids {
		res[i] = ir.SiteID(id)
	}
	return res
}
