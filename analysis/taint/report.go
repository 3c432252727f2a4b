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
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"github.com/awslabs/ar-script-analyzer/internal/funcutil"
)

// Step is one statement of the witness of a flow, with the access path tainted before the statement executes
type Step struct {
	Stmt ir.StmtRef
	Path AccessPath
}

// Flow is a taint flow from a source statement to a sink statement
type Flow struct {
	Source ir.StmtRef
	Sink   ir.StmtRef
	// Path is a chain of statements from the source to the sink
	Path []Step
}

// Report contains the taint flows discovered by the analysis
type Report struct {
	// Sinks maps the sink statements to the source statements from which the data flows.
	// More precisely, Sinks[sink][source] <== data from source flows to sink
	Sinks map[ir.StmtRef]map[ir.StmtRef]bool

	// Flows lists each (source, sink) flow once, with its witness, ordered by sink then source
	Flows []Flow
}

// NewReport returns an empty report
func NewReport() *Report {
	return &Report{Sinks: map[ir.StmtRef]map[ir.StmtRef]bool{}}
}

// add records the flow, returning false if a flow between the same source and sink was already in the report
func (r *Report) add(f Flow) bool {
	sources, ok := r.Sinks[f.Sink]
	if !ok {
		sources = map[ir.StmtRef]bool{}
		r.Sinks[f.Sink] = sources
	}
	if sources[f.Source] {
		return false
	}
	sources[f.Source] = true
	r.Flows = append(r.Flows, f)
	return true
}

// Merge merges the flows of b into r. The witness of r is kept for the flows present in both.
// requires r != nil
func (r *Report) Merge(b *Report) {
	for _, f := range b.Flows {
		r.add(f)
	}
	r.sort()
}

func (r *Report) sort() {
	sort.SliceStable(r.Flows, func(i, j int) bool {
		if r.Flows[i].Sink != r.Flows[j].Sink {
			return r.Flows[i].Sink.Less(r.Flows[j].Sink)
		}
		return r.Flows[i].Source.Less(r.Flows[j].Source)
	})
}

// Len returns the number of (source, sink) flows of the report
func (r *Report) Len() int {
	return len(r.Flows)
}

// ToStrings translates the report into a map from sink statement names to the set of source statement names
func (r *Report) ToStrings(scene *ir.Scene) map[string]map[string]bool {
	res := map[string]map[string]bool{}
	for sink, sources := range r.Sinks {
		names := map[string]bool{}
		for source := range sources {
			names[scene.StmtString(source)] = true
		}
		res[scene.StmtString(sink)] = names
	}
	return res
}

// WriteTo writes one line per flow "source -> sink | step, step, ..." in a deterministic order
func (r *Report) WriteTo(scene *ir.Scene, w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, f := range r.Flows {
		steps := funcutil.Map(f.Path, func(s Step) string { return stepString(scene, s) })
		fmt.Fprintf(&buf, "%s -> %s | %s\n", scene.StmtString(f.Source), scene.StmtString(f.Sink),
			strings.Join(steps, ", "))
	}
	return buf.WriteTo(w)
}

func stepString(scene *ir.Scene, s Step) string {
	if s.Path.IsZero() {
		return scene.StmtString(s.Stmt)
	}
	return fmt.Sprintf("%s[%s]", scene.StmtString(s.Stmt), s.Path)
}

// writeFlowFile writes the flow with its trace in a new file flow-*.out of the reports directory, and returns the
// name of the file
func writeFlowFile(cfg *config.Config, scene *ir.Scene, f Flow) (string, error) {
	tmp, err := os.CreateTemp(cfg.ReportsDir, "flow-*.out")
	if err != nil {
		return "", fmt.Errorf("could not write report: %w", err)
	}
	defer tmp.Close()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Source: %s\n", scene.StmtString(f.Source))
	fmt.Fprintf(&buf, "At: %s\n", scene.Statement(f.Source))
	fmt.Fprintf(&buf, "Sink: %s\n", scene.StmtString(f.Sink))
	fmt.Fprintf(&buf, "At: %s\n", scene.Statement(f.Sink))
	buf.WriteString("Trace:\n")
	for _, s := range f.Path {
		fmt.Fprintf(&buf, "%s\n", stepString(scene, s))
	}
	if _, err := buf.WriteTo(tmp); err != nil {
		return "", fmt.Errorf("could not write report: %w", err)
	}
	return tmp.Name(), nil
}
