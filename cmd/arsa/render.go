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
	"github.com/awslabs/ar-script-analyzer/analysis"
	"github.com/awslabs/ar-script-analyzer/analysis/render"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var (
		flags           commonFlags
		cgOut           string
		irOut           string
		mode            string
		excludeBuiltins bool
	)
	cmd := &cobra.Command{
		Use:   "render [flags] scene.yaml",
		Short: "Print the scene in the textual IR, or write its call graph in GraphViz format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := flags.load(args)
			if err != nil {
				return err
			}
			if irOut != "" {
				if err := render.OutputScene(program.Scene, irOut); err != nil {
					return err
				}
			}
			if cgOut == "" {
				if irOut == "" {
					_, err = program.Scene.WriteTo(cmd.OutOrStdout())
				}
				return err
			}
			if mode == "" {
				mode = program.Config.CallgraphMode
			}
			m, err := analysis.ParseCallgraphMode(mode)
			if err != nil {
				return err
			}
			entries, err := analysis.EntryPoints(program.Scene, program.Config)
			if err != nil {
				return err
			}
			cg, err := m.ComputeCallgraph(cmd.Context(), program.Scene, program.Config, entries)
			if err != nil {
				return err
			}
			return render.GraphvizToFile(render.Options{ExcludeBuiltins: excludeBuiltins}, cg, cgOut)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&cgOut, "cgout", "", "output file for the call graph in GraphViz format")
	cmd.Flags().StringVar(&irOut, "irout", "", "output directory for the textual IR, one file per class")
	cmd.Flags().StringVar(&mode, "mode", "", "call graph construction: cha, rta or pointer (default from config)")
	cmd.Flags().BoolVar(&excludeBuiltins, "exclude-builtins", false, "omit the runtime library from the call graph")
	return cmd
}
