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
package analysis

import (
	"fmt"

	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/ir"
)

// LoadedProgram is a scene together with the configuration of the analyses
type LoadedProgram struct {
	// Scene is the frozen program
	Scene *ir.Scene
	// Config is the configuration loaded, or the default configuration
	Config *config.Config
}

// LoadProgram loads the scene in sceneFile and the configuration in configFile. When configFile is empty, the
// default configuration is used.
func LoadProgram(sceneFile string, configFile string) (LoadedProgram, error) {
	cfg := config.NewDefault()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return LoadedProgram{}, fmt.Errorf("could not load config %q: %w", configFile, err)
		}
	}
	scene, err := ir.LoadScene(sceneFile)
	if err != nil {
		return LoadedProgram{}, fmt.Errorf("could not load program: %w", err)
	}
	return LoadedProgram{Scene: scene, Config: cfg}, nil
}
