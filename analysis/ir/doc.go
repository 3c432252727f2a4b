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

// Package ir defines the program model consumed by the analyses: a scene of classes and methods whose bodies are
// lists of statements forming a control flow graph.
//
// A scene is built with a [Builder] and becomes read-only once frozen. All references are resolved at freeze time,
// and classes, methods and allocation sites are identified by dense integer ids.
//
// Scenes can be serialized in yaml (see [ParseScene] and [MarshalScene]), where method bodies use a small textual
// syntax for statements (see [ParseStatement]).
package ir
