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
// Package render writes the call graph in GraphViz format and the scene in the textual IR.
package render

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
)

// edgeColor defines specific color for specific edges in the callgraph
// - a callback invoked by a native method will be colored with a blue edge
// - a call site resolved with the class hierarchy only will be colored with a gray edge
// - all other call sites will have a default color edge
func edgeColor(edge callgraph.Edge) string {
	if edge.Callback {
		return "[color=blue]"
	}
	if edge.Kind == callgraph.CHA {
		return "[color=gray]"
	}
	return ""
}

// Options filters the edges written
type Options struct {
	// ExcludeBuiltins removes the edges from or to the methods of the runtime library classes
	ExcludeBuiltins bool
}

func (o Options) keep(cg *callgraph.CallGraph, edge callgraph.Edge) bool {
	if !o.ExcludeBuiltins {
		return true
	}
	s := cg.Scene
	return !s.ClassOf(edge.Caller).Builtin && !s.ClassOf(edge.Callee).Builtin
}

// WriteGraphviz writes a graphviz representation the call-graph to w
func WriteGraphviz(opts Options, cg *callgraph.CallGraph, w io.Writer) error {
	var b bytes.Buffer
	b.WriteString("digraph callgraph {\n")
	for _, m := range cg.EntryPoints() {
		fmt.Fprintf(&b, "  %q [shape=box];\n", cg.Scene.MethodByID(m).QualifiedName)
	}
	for _, edge := range cg.Edges() {
		if !opts.keep(cg, edge) {
			continue
		}
		fmt.Fprintf(&b, "  %q -> %q %s;\n",
			cg.Scene.MethodByID(edge.Caller).QualifiedName,
			cg.Scene.MethodByID(edge.Callee).QualifiedName, edgeColor(edge))
	}
	b.WriteString("}\n")
	if _, err := b.WriteTo(w); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	return nil
}

// GraphvizToFile writes the graphviz representation of the call graph in a new file
func GraphvizToFile(opts Options, cg *callgraph.CallGraph, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()

	if err := WriteGraphviz(opts, cg, w); err != nil {
		return fmt.Errorf("error while writing graph: %w", err)
	}
	return nil
}

// OutputScene writes the textual IR of each class of the scene in its own file Class.ir in the directory dirName.
// The classes of the runtime library are not written.
func OutputScene(scene *ir.Scene, dirName string) error {
	if err := os.MkdirAll(dirName, 0700); err != nil {
		return fmt.Errorf("could not create directory %s: %v", dirName, err)
	}
	for _, c := range scene.Classes() {
		if c.Builtin {
			continue
		}
		filename := filepath.Join(dirName, c.Name+".ir")
		if err := classToFile(scene, c, filename); err != nil {
			return err
		}
	}
	return nil
}

func classToFile(scene *ir.Scene, c *ir.ClassDecl, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer file.Close()
	var b bytes.Buffer
	fmt.Fprintf(&b, "class %s", c.Name)
	if c.Super != "" {
		fmt.Fprintf(&b, " extends %s", c.Super)
	}
	b.WriteString("\n")
	for _, f := range c.Fields {
		if f.Static {
			fmt.Fprintf(&b, "  static %s\n", f.Name)
		} else {
			fmt.Fprintf(&b, "  field %s\n", f.Name)
		}
	}
	for _, id := range c.Methods {
		m := scene.MethodByID(id)
		fmt.Fprintf(&b, "  method %s(%d)\n", m.Name, len(m.Params))
		for i, s := range m.Body {
			fmt.Fprintf(&b, "    %d: %s\n", i, s)
		}
	}
	_, err = b.WriteTo(file)
	return err
}
