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

// This file defines a naive Andersen-style solver for the inclusion
// constraint system.

import (
	"context"
	"fmt"

	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/analysis/summaries"
	"golang.org/x/tools/container/intsets"
)

type analysis struct {
	ctx           context.Context
	scene         *ir.Scene
	log           *config.LogGroup
	maxIterations int
	nodes         *nodes
	builder       *callgraph.Builder
	constraints   []constraint   // new constraints, not yet attached to the graph
	work          intsets.Sparse // nodes whose points-to set changed
	iterations    int
}

func (a *analysis) solve() error {
	a.log.Debugf("solving pointer constraints")
	var delta intsets.Sparse
	for {
		// Add new constraints to the graph: the constraints of the entry points on round 1, the constraints of
		// the methods and call edges discovered by solving thereafter.
		a.processNewConstraints()

		var x int
		if !a.work.TakeMin(&x) {
			break // empty worklist
		}
		a.iterations++
		if err := a.ctx.Err(); err != nil {
			return fmt.Errorf("pointer analysis interrupted: %w", err)
		}
		if a.maxIterations > 0 && a.iterations > a.maxIterations {
			return &ir.AnalysisInternalError{Analysis: "pointer analysis", Iterations: a.maxIterations,
				Msg: "maximum number of iterations exceeded"}
		}

		id := NodeID(x)
		n := a.nodes.solve[id]

		// Difference propagation.
		delta.Difference(&n.pts, &n.prevPTS)
		if delta.IsEmpty() {
			continue
		}
		if a.log.LogsTrace() {
			a.log.Tracef("pts(%s) += %s", a.nodes.all[id], &delta)
		}
		n.prevPTS.Copy(&n.pts)

		// Apply all resolution rules attached to n.
		a.solveConstraints(n, &delta)
	}
	a.log.Debugf("pointer analysis done after %d iterations, %d nodes", a.iterations, len(a.nodes.all))
	return nil
}

// processNewConstraints takes the new constraints from a.constraints
// and adds them to the graph, ensuring
// that new constraints are applied to pre-existing labels and
// that pre-existing constraints are applied to new labels.
func (a *analysis) processNewConstraints() {
	// Take the slice of new constraints.
	// (May grow during call to solveConstraints.)
	constraints := a.constraints
	a.constraints = nil

	// Initialize points-to sets from addr-of (base) constraints.
	for _, c := range constraints {
		if c, ok := c.(*addrConstraint); ok {
			if a.addLabel(c.dst, c.site) {
				a.addWork(c.dst)
			}
		}
	}

	// Attach simple (copy) and complex constraints to nodes.
	var stale intsets.Sparse
	for _, c := range constraints {
		var id NodeID
		switch c := c.(type) {
		case *addrConstraint:
			// base constraints handled in previous loop
			continue
		case *copyConstraint:
			// simple (copy) constraint
			id = c.src
			a.nodes.solve[id].copyTo.Insert(int(c.dst))
		default:
			// complex constraint
			id = c.ptr()
			n := a.nodes.solve[id]
			n.complex = append(n.complex, c)
		}

		if n := a.nodes.solve[id]; !n.pts.IsEmpty() {
			if !n.prevPTS.IsEmpty() {
				stale.Insert(int(id))
			}
			a.addWork(id)
		}
	}

	// Apply new constraints to pre-existing PTS labels.
	for _, id := range stale.AppendTo(nil) {
		n := a.nodes.solve[id]
		a.solveConstraints(n, &n.prevPTS)
	}
}

// solveConstraints applies each resolution rule attached to node n to
// the set of labels delta. It may generate new constraints in
// a.constraints.
func (a *analysis) solveConstraints(n *solverState, delta *intsets.Sparse) {
	if delta.IsEmpty() {
		return
	}

	// Process complex constraints dependent on n.
	for _, c := range n.complex {
		c.solve(a, delta)
	}

	// Process copy constraints.
	for _, x := range n.copyTo.AppendTo(nil) {
		if a.nodes.solve[x].pts.UnionWith(delta) {
			a.addWork(NodeID(x))
		}
	}
}

// addLabel adds the object to the points-to set of ptr and reports whether the set grew.
func (a *analysis) addLabel(ptr NodeID, site ir.SiteID) bool {
	return a.nodes.solve[ptr].pts.Insert(int(site))
}

func (a *analysis) addWork(id NodeID) {
	a.work.Insert(int(id))
}

// onlineCopy adds a copy edge. It is called Online, i.e. during
// solving, so it adds edges and pts members directly rather than by
// instantiating a 'constraint'.
// It returns true if pts(dst) changed.
func (a *analysis) onlineCopy(dst, src NodeID) bool {
	if dst != src {
		if nsrc := a.nodes.solve[src]; nsrc.copyTo.Insert(int(dst)) {
			return a.nodes.solve[dst].pts.UnionWith(&nsrc.pts)
		}
	}
	return false
}

// hasField returns true if the objects allocated at the site have the field. Function values only have the
// synthetic fields.
func (a *analysis) hasField(site ir.SiteID, field string) bool {
	obj := a.scene.Site(site)
	if obj.IsClosure() {
		return summaries.IsSyntheticField(field)
	}
	return a.scene.DeclaresField(obj.Class, field)
}
