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
package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-script-analyzer/analysis/callgraph"
	"github.com/awslabs/ar-script-analyzer/internal/analysistest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteGraphviz(t *testing.T) {
	scene := analysistest.LoadScene(t, "closure_callback")
	cg := callgraph.BuildRTA(scene, nil)

	var all, user bytes.Buffer
	require.NoError(t, WriteGraphviz(Options{}, cg, &all))
	require.NoError(t, WriteGraphviz(Options{ExcludeBuiltins: true}, cg, &user))

	assert.Contains(t, all.String(), "digraph callgraph {\n")
	assert.Contains(t, all.String(), `"Main.main" [shape=box];`)
	assert.Contains(t, all.String(), `"Main.main" -> "Set.forEach" ;`)
	assert.Contains(t, all.String(), `"Main.main" -> "Main.apply" [color=blue];`)
	assert.NotContains(t, user.String(), "Set.forEach")
	assert.Contains(t, user.String(), `"Main.main" -> "Main.apply" [color=blue];`)
}

func TestOutputScene(t *testing.T) {
	scene := analysistest.LoadScene(t, "singleton")
	dir := t.TempDir()
	require.NoError(t, OutputScene(scene, dir))
	b, err := os.ReadFile(filepath.Join(dir, "Singleton.ir"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "class Singleton\n  static instance\n")
	assert.Contains(t, string(b), "    2: n = new Singleton\n")
}
