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
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScene(t *testing.T) {
	s, err := LoadScene(filepath.Join("testdata", "animals.yaml"))
	require.NoError(t, err)
	assert.True(t, s.HasBuiltins())
	main, ok := s.Method("Main.main")
	require.True(t, ok)
	assert.Equal(t, []MethodID{main.ID}, s.EntryPoints())
	assert.Equal(t, []Param{{Name: "args", Type: "Array"}}, main.Params)
	assert.Len(t, main.Body, 9)
	call := main.Body[1].(*Call)
	assert.Equal(t, Virtual, call.Kind)
	assert.Equal(t, Selector{Name: "sound", Arity: 0}, call.Selector())
	typ, ok := main.DeclaredType("args")
	assert.True(t, ok)
	assert.Equal(t, "Array", s.ClassByID(typ).Name)

	registry, ok := s.Class("Registry")
	require.True(t, ok)
	f, ok := registry.Field("instance")
	assert.True(t, ok)
	assert.True(t, f.Static)
}

func TestMarshalSceneRoundTrip(t *testing.T) {
	s, err := LoadScene(filepath.Join("testdata", "animals.yaml"))
	require.NoError(t, err)
	b, err := MarshalScene(s)
	require.NoError(t, err)
	s2, err := ParseScene(b)
	require.NoError(t, err)

	var dump1, dump2 bytes.Buffer
	_, err = s.WriteTo(&dump1)
	require.NoError(t, err)
	_, err = s2.WriteTo(&dump2)
	require.NoError(t, err)
	assert.Equal(t, dump1.String(), dump2.String())

	b2, err := MarshalScene(s2)
	require.NoError(t, err)
	assert.Equal(t, string(b), string(b2))
	assert.Equal(t, len(s.AllocationSites()), len(s2.AllocationSites()))
}

func TestWriteTo(t *testing.T) {
	s, err := LoadScene(filepath.Join("testdata", "animals.yaml"))
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = s.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "class Dog extends Animal\n")
	assert.Contains(t, out, "  static field instance Registry\n")
	assert.Contains(t, out, "  static method main(args Array)\n")
	assert.Contains(t, out, "    var a Animal\n")
	assert.Contains(t, out, "    7: f = closure Main::cb [s]  // site")
	assert.Contains(t, out, "entries: Main.main\n")
	assert.NotContains(t, out, "class Array")
}

func TestParseSceneErrors(t *testing.T) {
	_, err := LoadScene(filepath.Join("testdata", "bad-statement.yaml"))
	var syntaxErr *SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))
	assert.Contains(t, err.Error(), "Main.main@0")

	_, err = ParseScene([]byte("classes: [{name: A, super: B}]"))
	var linkErr *LinkError
	assert.True(t, errors.As(err, &linkErr))

	_, err = ParseScene([]byte("entries: [main]\nclasses: []"))
	assert.ErrorContains(t, err, "invalid entry point")

	_, err = ParseScene([]byte("classes: {"))
	assert.Error(t, err)
}
