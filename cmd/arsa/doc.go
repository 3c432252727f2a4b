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
/*
Arsa runs the static analyses of the script analyzer on a scene: the call graph construction, the pointer analysis
and the taint analysis.

Usage:

	arsa [command] [flags] scene.yaml

The commands are:

	callgraph   prints the call graph of the scene
	pointer     prints the points-to sets of the scene
	taint       runs the taint analysis and prints the flows from sources to sinks
	render      prints the scene in the textual IR, or the call graph in GraphViz format

The flags common to all commands are:

	-config path    a path to the configuration file containing the options, entry points and taint problems
	-verbose        setting verbose mode, overrides config file options if set
*/
package main
