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

// Package analysistest loads the scenes used by the tests of the analyses. Scenes live in the testdata/scenes
// directory at the root of the module, one directory per test program, with a scene.yaml and an optional config.yaml.
package analysistest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
	"gopkg.in/yaml.v3"
)

// TestdataDir returns the testdata directory at the root of the module
func TestdataDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "testdata")
}

// SceneDir returns the directory of the test program name
func SceneDir(name string) string {
	return filepath.Join(TestdataDir(), "scenes", name)
}

// LoadScene loads the scene of the test program name, failing the test on error
func LoadScene(t testing.TB, name string) *ir.Scene {
	t.Helper()
	s, err := ir.LoadScene(filepath.Join(SceneDir(name), "scene.yaml"))
	if err != nil {
		t.Fatalf("error loading scene %s: %v", name, err)
	}
	return s
}

// LoadTest loads the scene and the configuration of the test program name. When the directory has no config.yaml,
// the default configuration is returned.
func LoadTest(t testing.TB, name string) (*ir.Scene, *config.Config) {
	t.Helper()
	s := LoadScene(t, name)
	configFile := filepath.Join(SceneDir(name), "config.yaml")
	if _, err := os.Stat(configFile); err != nil {
		return s, config.NewDefault()
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		t.Fatalf("error loading config of %s: %v", name, err)
	}
	return s, cfg
}

// Match annotations of the form "// @Source(id1, id2, id3)" at the end of statements
var (
	SourceRegex = regexp.MustCompile(`//.*@Source\(((?:\s*\w+\s*,?)+)\)`)
	SinkRegex   = regexp.MustCompile(`//.*@Sink\(((?:\s*\w+\s*,?)+)\)`)
)

type annotatedScene struct {
	Classes []struct {
		Name    string `yaml:"name"`
		Methods []struct {
			Name string   `yaml:"name"`
			Body []string `yaml:"body"`
		} `yaml:"methods"`
	} `yaml:"classes"`
}

// GetExpectedSourceToSink reads the annotations @Source(id) and @Sink(id) in the comments of the statements of the
// test program and returns the expected flows: a map from each sink statement to all the source statements that
// reach that sink. Statements are named Class.method@index.
func GetExpectedSourceToSink(t testing.TB, name string) map[string]map[string]bool {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(SceneDir(name), "scene.yaml"))
	if err != nil {
		t.Fatalf("error reading scene %s: %v", name, err)
	}
	var scene annotatedScene
	if err := yaml.Unmarshal(b, &scene); err != nil {
		t.Fatalf("error reading annotations of %s: %v", name, err)
	}
	sourceIds := map[string]string{}
	type sinkAnnotation struct {
		stmt string
		ids  []string
	}
	var sinks []sinkAnnotation
	for _, c := range scene.Classes {
		for _, m := range c.Methods {
			for i, line := range m.Body {
				stmt := fmt.Sprintf("%s.%s@%d", c.Name, m.Name, i)
				if a := SourceRegex.FindStringSubmatch(line); len(a) > 1 {
					for _, id := range splitIds(a[1]) {
						sourceIds[id] = stmt
					}
				}
				if a := SinkRegex.FindStringSubmatch(line); len(a) > 1 {
					sinks = append(sinks, sinkAnnotation{stmt: stmt, ids: splitIds(a[1])})
				}
			}
		}
	}
	source2sink := map[string]map[string]bool{}
	for _, sink := range sinks {
		for _, id := range sink.ids {
			source, ok := sourceIds[id]
			if !ok {
				t.Fatalf("%s: sink annotation refers to unknown source %s", sink.stmt, id)
			}
			if _, ok := source2sink[sink.stmt]; !ok {
				source2sink[sink.stmt] = map[string]bool{}
			}
			source2sink[sink.stmt][source] = true
		}
	}
	return source2sink
}

func splitIds(list string) []string {
	var ids []string
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
