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
Package taint implements the taint analysis of scenes. The analysis is an instance of the IFDS framework: the facts
are access paths of local variables, tainted by a source statement or sanitized, and the tabulation algorithm computes
which facts hold at each statement reachable in the call graph. The main entry point of the analysis is the
[Analyze] function, which returns a [Result] containing all the taint flows discovered.

Field reads and writes are resolved with the points-to sets of the pointer analysis: the taint stored in a field is
recorded for each abstract object the base variable may point to, and every read of the field from a variable that
may point to the same object observes it. Taint flows through the native methods of the runtime library according to
their models in the summaries package, including the callbacks those methods invoke.

The sources, sinks and sanitizers of each problem are specified by code identifiers in the config. Each problem is
solved independently, and problems may run in parallel.
*/
package taint
