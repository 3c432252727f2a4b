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
// Package pointer implements an inclusion-based (Andersen style) pointer analysis for scenes. The analysis is
// field-sensitive and context-insensitive: each allocation site is one abstract object, each local variable of a
// method is one node, and each field of an abstract object is one node.
//
// The call graph is computed on the fly. Virtual calls are resolved with the points-to sets of their receivers,
// dynamic calls with the points-to sets of the called function values, and the callbacks of native methods with the
// points-to sets of the function values given to them. Each new call edge makes its callee live and binds the
// arguments and the return value, which in turn may grow the points-to sets of other receivers.
//
// The solver applies difference propagation over sparse integer sets. The worklist always takes the smallest node
// first, so two runs on the same scene produce identical results.
package pointer
