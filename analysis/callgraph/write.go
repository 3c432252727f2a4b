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

package callgraph

import (
	"bytes"
	"fmt"
	"io"
)

// WriteTo writes a deterministic dump of the call graph: entry points, live methods, edges and diagnostics, one per
// line. Two call graphs of the same scene are equal if and only if their dumps are equal.
func (cg *CallGraph) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	s := cg.Scene
	for _, e := range cg.entries {
		fmt.Fprintf(&buf, "entry %s\n", s.MethodByID(e))
	}
	for _, m := range cg.LiveMethods() {
		fmt.Fprintf(&buf, "live %s\n", s.MethodByID(m))
	}
	for _, e := range cg.edges {
		fmt.Fprintf(&buf, "edge %s\n", cg.EdgeString(e))
	}
	for _, d := range cg.diagnostics {
		fmt.Fprintf(&buf, "diagnostic %s\n", cg.DiagnosticString(d))
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}
