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
	"errors"
	"strings"
	"time"

	"github.com/awslabs/ar-script-analyzer/analysis"
	"github.com/awslabs/ar-script-analyzer/analysis/config"
	"github.com/awslabs/ar-script-analyzer/internal/formatutil"
	"github.com/spf13/cobra"
)

// errFlowsDetected is returned when the taint analysis succeeds and finds flows, so that the exit code is not 0
var errFlowsDetected = errors.New("taint flows detected")

var errNoTaintProblems = errors.New("the config does not define any taint-tracking-problems")

func newTaintCmd() *cobra.Command {
	var flags commonFlags
	cmd := &cobra.Command{
		Use:   "taint [flags] scene.yaml",
		Short: "Run the taint analysis on a scene and print the flows from sources to sinks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := flags.load(args)
			if err != nil {
				return err
			}
			logger := config.NewLogGroup(program.Config)
			if len(program.Config.TaintTrackingProblems) == 0 {
				return errNoTaintProblems
			}
			logger.Infof("%s", formatutil.Faint("Arsa taint tool - "+analysis.Version))

			start := time.Now()
			res, err := analysis.RunAnalyses(cmd.Context(), program.Scene, program.Config)
			if err != nil {
				return err
			}
			logger.Infof("")
			logger.Infof("%s", strings.Repeat("*", 80))
			logger.Infof("Analysis took %3.4f s", time.Since(start).Seconds())
			logger.Infof("")
			if _, err := res.Taint.Report.WriteTo(program.Scene, cmd.OutOrStdout()); err != nil {
				return err
			}
			if res.Taint.Report.Len() == 0 {
				logger.Infof("RESULT:\n\t\t%s", formatutil.Green("No taint flows detected ✓"))
				return nil
			}
			logger.Errorf("RESULT:\n\t\t%s", formatutil.Red("Taint flows detected!"))
			return errFlowsDetected
		},
	}
	flags.register(cmd)
	return cmd
}
