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

	"github.com/awslabs/ar-script-analyzer/analysis"
	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/analysis/pointer"
	"github.com/awslabs/ar-script-analyzer/internal/formatutil"
	"github.com/spf13/cobra"
)

func newCallgraphCmd() *cobra.Command {
	var (
		flags commonFlags
		mode  string
		stats bool
	)
	cmd := &cobra.Command{
		Use:   "callgraph [flags] scene.yaml",
		Short: "Print the call graph of a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := flags.load(args)
			if err != nil {
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
			if _, err := cg.WriteTo(cmd.OutOrStdout()); err != nil {
				return err
			}
			if stats {
				s := analysis.SceneStatistics(program.Scene, cg)
				fmt.Fprintf(cmd.ErrOrStderr(), "%s %d live methods, %d call sites, %d diagnostics\n",
					formatutil.Faint("["+m.String()+"]"), s.NumberOfLiveMethods, s.NumberOfCallSites,
					s.NumberOfDiagnostics)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", "", "call graph construction: cha, rta or pointer (default from config)")
	cmd.Flags().BoolVar(&stats, "stats", false, "print statistics about the scene and the call graph")
	return cmd
}

func newPointerCmd() *cobra.Command {
	var flags commonFlags
	cmd := &cobra.Command{
		Use:   "pointer [flags] scene.yaml",
		Short: "Print the points-to sets of a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := flags.load(args)
			if err != nil {
				return err
			}
			logger := config.NewLogGroup(program.Config)
			entries, err := analysis.EntryPoints(program.Scene, program.Config)
			if err != nil {
				return err
			}
			res, err := pointer.Analyze(cmd.Context(), program.Scene, program.Config, entries)
			if err != nil {
				return err
			}
			logger.Infof("Pointer analysis done after %d iterations", res.Iterations)
			for _, d := range res.Diagnostics {
				logger.Warnf("%s", res.CallGraph.DiagnosticString(d))
			}
			_, err = res.PointsTo.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	flags.register(cmd)
	return cmd
}
