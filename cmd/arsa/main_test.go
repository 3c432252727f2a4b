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
package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-script-analyzer/internal/analysistest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := buildRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCallgraphCommand(t *testing.T) {
	out, err := run(t, "callgraph", "--mode", "rta", filepath.Join(analysistest.SceneDir("cha_rta"), "scene.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "entry Main.main\n")
	assert.Contains(t, out, "edge Main.main@1 -> Dog.sound [cha+rta]\n")
	assert.NotContains(t, out, "Pig.sound]")
}

func TestTaintCommandReportsFlows(t *testing.T) {
	dir := analysistest.SceneDir("taint_field")
	out, err := run(t, "taint", "--config", filepath.Join(dir, "config.yaml"), filepath.Join(dir, "scene.yaml"))
	assert.ErrorIs(t, err, errFlowsDetected)
	assert.Contains(t, out, "Main.main@24 -> Main.main@25 | ")
}

func TestRenderCommand(t *testing.T) {
	out, err := run(t, "render", filepath.Join(analysistest.SceneDir("singleton"), "scene.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Singleton::instance = n")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "arsa version v")
}

func TestHints(t *testing.T) {
	_, err := run(t, "pointer", "missing.yaml")
	require.Error(t, err)
	assert.NotEmpty(t, hintForErrorMessage(err.Error()))
}

func TestTaintCommandWithoutProblems(t *testing.T) {
	_, err := run(t, "taint", filepath.Join(analysistest.SceneDir("taint_field"), "scene.yaml"))
	assert.ErrorIs(t, err, errNoTaintProblems)
}
