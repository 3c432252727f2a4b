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
	"fmt"
	"os"
	"regexp"

	"github.com/awslabs/ar-script-analyzer/analysis"
	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/internal/formatutil"
	"github.com/spf13/cobra"
)

// commonFlags are the flags shared by all the commands
type commonFlags struct {
	configPath string
	verbose    bool
	noColor    bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "config file path for analysis")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "verbose printing on standard output")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable colors in the output")
}

// load loads the scene of the single argument and the config of the flags
func (f *commonFlags) load(args []string) (analysis.LoadedProgram, error) {
	formatutil.DisableColors(f.noColor)
	program, err := analysis.LoadProgram(args[0], f.configPath)
	if err != nil {
		return program, err
	}
	if f.verbose {
		program.Config.LogLevel = int(config.DebugLevel)
	}
	return program, nil
}

func buildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "arsa",
		Short:         "Automated reasoning tools for scripts: call graphs, points-to sets and taint flows",
		Version:       analysis.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newCallgraphCmd())
	root.AddCommand(newPointerCmd())
	root.AddCommand(newTaintCmd())
	root.AddCommand(newRenderCmd())
	return root
}

func main() {
	if err := buildRoot().Execute(); err != nil {
		errExit(err)
	}
}

// Captures errors happening before any analysis starts (program could not load)
var regexCouldNotLoad = regexp.MustCompile("could not load program")

// Captures errors in the resolution of the entry points
var regexNoEntryPoint = regexp.MustCompile("no method of the scene matches the entry points")

// hintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func hintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		return "make sure the path leads to a scene file, and that all the flags are before it"
	}
	if regexNoEntryPoint.MatchString(errMsg) {
		return "the entry-points of the config should match Class.method names of the scene"
	}
	return ""
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", formatutil.Red("error:"), err)
	if hint := hintForErrorMessage(err.Error()); hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
