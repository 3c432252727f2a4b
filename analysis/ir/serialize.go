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

package ir

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// sceneFile is the yaml representation of a scene
type sceneFile struct {
	Builtins bool        `yaml:"builtins,omitempty"`
	Entries  []string    `yaml:"entries,omitempty"`
	Classes  []classFile `yaml:"classes"`
}

type classFile struct {
	Name       string       `yaml:"name"`
	Super      string       `yaml:"super,omitempty"`
	Interfaces []string     `yaml:"interfaces,omitempty"`
	Interface  bool         `yaml:"interface,omitempty"`
	Native     bool         `yaml:"native,omitempty"`
	Fields     []FieldDecl  `yaml:"fields,omitempty"`
	Methods    []methodFile `yaml:"methods,omitempty"`
}

type methodFile struct {
	Name     string            `yaml:"name"`
	Params   []paramFile       `yaml:"params,omitempty"`
	Returns  string            `yaml:"returns,omitempty"`
	Locals   map[string]string `yaml:"locals,omitempty"`
	Static   bool              `yaml:"static,omitempty"`
	Abstract bool              `yaml:"abstract,omitempty"`
	Native   bool              `yaml:"native,omitempty"`
	Body     []string          `yaml:"body,omitempty"`
}

// paramFile is either a scalar (the parameter name) or a mapping with a name and a type
type paramFile Param

func (p *paramFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Name = node.Value
		return nil
	}
	var full struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	}
	if err := node.Decode(&full); err != nil {
		return err
	}
	p.Name, p.Type = full.Name, full.Type
	return nil
}

func (p paramFile) MarshalYAML() (interface{}, error) {
	if p.Type == "" {
		return p.Name, nil
	}
	return map[string]string{"name": p.Name, "type": p.Type}, nil
}

// LoadScene reads and freezes the scene serialized in the yaml file
func LoadScene(filename string) (*Scene, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read scene file: %w", err)
	}
	s, err := ParseScene(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return s, nil
}

// ParseScene reads and freezes a scene serialized in yaml. Statements are written in the textual IR syntax.
func ParseScene(b []byte) (*Scene, error) {
	var file sceneFile
	if err := yaml.Unmarshal(b, &file); err != nil {
		return nil, fmt.Errorf("could not unmarshal scene: %w", err)
	}
	builder := NewBuilder()
	if file.Builtins {
		builder.WithBuiltins()
	}
	// classes first, so that methods and fields can refer to classes declared later
	for _, c := range file.Classes {
		builder.AddClass(ClassDecl{
			Name:       c.Name,
			Super:      c.Super,
			Interfaces: c.Interfaces,
			Interface:  c.Interface,
			Native:     c.Native,
			Fields:     c.Fields,
		})
	}
	for _, c := range file.Classes {
		for _, m := range c.Methods {
			body := make([]Statement, 0, len(m.Body))
			for i, line := range m.Body {
				stmt, err := ParseStatement(line)
				if err != nil {
					return nil, fmt.Errorf("%s.%s@%d: %w", c.Name, m.Name, i, err)
				}
				body = append(body, stmt)
			}
			params := make([]Param, len(m.Params))
			for i, p := range m.Params {
				params[i] = Param(p)
			}
			builder.AddMethod(c.Name, MethodDecl{
				Name:       m.Name,
				Params:     params,
				ReturnType: m.Returns,
				Locals:     m.Locals,
				Static:     m.Static,
				Abstract:   m.Abstract,
				Native:     m.Native,
				Body:       body,
			})
		}
	}
	for _, e := range file.Entries {
		i := strings.LastIndex(e, ".")
		if i < 0 {
			return nil, fmt.Errorf("invalid entry point %q, expected Class.method", e)
		}
		builder.AddEntryPoint(e[:i], e[i+1:])
	}
	return builder.Freeze()
}

// MarshalScene serializes the scene in the yaml format read by ParseScene. The builtin classes are not serialized;
// the builtins flag is set instead.
func MarshalScene(s *Scene) ([]byte, error) {
	file := sceneFile{Builtins: s.hasBuiltins}
	for _, e := range s.entries {
		file.Entries = append(file.Entries, s.methods[e].QualifiedName)
	}
	for _, c := range s.classes {
		if c.Builtin {
			continue
		}
		cf := classFile{
			Name:       c.Name,
			Super:      c.Super,
			Interfaces: c.Interfaces,
			Interface:  c.Interface,
			Native:     c.Native,
			Fields:     c.Fields,
		}
		for _, m := range s.MethodsOf(c.ID) {
			mf := methodFile{
				Name:     m.Name,
				Returns:  m.ReturnType,
				Locals:   m.Locals,
				Static:   m.Static,
				Abstract: m.Abstract,
				Native:   m.Native && !c.Native,
			}
			for _, p := range m.Params {
				mf.Params = append(mf.Params, paramFile(p))
			}
			for _, stmt := range m.Body {
				mf.Body = append(mf.Body, stmt.String())
			}
			cf.Methods = append(cf.Methods, mf)
		}
		file.Classes = append(file.Classes, cf)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file); err != nil {
		return nil, fmt.Errorf("could not marshal scene: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo prints the scene in the textual IR, one class at a time, with the statement indexes and allocation sites.
// The builtin classes are omitted.
func (s *Scene) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, c := range s.classes {
		if c.Builtin {
			continue
		}
		kind := "class"
		if c.Interface {
			kind = "interface"
		}
		if c.Native {
			kind = "native " + kind
		}
		fmt.Fprintf(&buf, "%s %s", kind, c.Name)
		if c.Super != "" {
			fmt.Fprintf(&buf, " extends %s", c.Super)
		}
		if len(c.Interfaces) > 0 {
			fmt.Fprintf(&buf, " implements %s", strings.Join(c.Interfaces, ", "))
		}
		buf.WriteString("\n")
		for _, f := range c.Fields {
			static := ""
			if f.Static {
				static = "static "
			}
			fmt.Fprintf(&buf, "  %sfield %s %s\n", static, f.Name, f.Type)
		}
		for _, m := range s.MethodsOf(c.ID) {
			writeMethod(&buf, s, m)
		}
	}
	if len(s.entries) > 0 {
		names := make([]string, len(s.entries))
		for i, e := range s.entries {
			names[i] = s.methods[e].QualifiedName
		}
		fmt.Fprintf(&buf, "entries: %s\n", strings.Join(names, ", "))
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

func writeMethod(buf *bytes.Buffer, s *Scene, m *MethodDecl) {
	var mods []string
	if m.Static {
		mods = append(mods, "static")
	}
	if m.Abstract {
		mods = append(mods, "abstract")
	}
	if m.Native {
		mods = append(mods, "native")
	}
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = strings.TrimSpace(p.Name + " " + p.Type)
	}
	fmt.Fprintf(buf, "  %s(%s)", strings.TrimSpace(strings.Join(append(mods, "method "+m.Name), " ")),
		strings.Join(params, ", "))
	if m.ReturnType != "" {
		fmt.Fprintf(buf, " %s", m.ReturnType)
	}
	buf.WriteString("\n")
	locals := make([]string, 0, len(m.Locals))
	for v := range m.Locals {
		locals = append(locals, v)
	}
	sort.Strings(locals)
	for _, v := range locals {
		fmt.Fprintf(buf, "    var %s %s\n", v, m.Locals[v])
	}
	for i, stmt := range m.Body {
		fmt.Fprintf(buf, "    %d: %s", i, stmt)
		if site, ok := s.siteAt[StmtRef{Method: m.ID, Index: i}]; ok {
			fmt.Fprintf(buf, "  // site %d", site)
		}
		buf.WriteString("\n")
	}
}
