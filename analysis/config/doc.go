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
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename, or [Parse] to read one from memory.

A config file is in yaml format. The top-level fields can be any of the fields defined in the Config
struct type. The other fields are defined by the types of the fields of [Config] and nested struct types.
For example, a valid config file is as follows:

	options:
	  log-level: 5
	  max-access-path-length: 3
	entry-points:
	  - class: Main
	    method: main
	taint-tracking-problems:
	  - sources:
	      - method: ^source$
	    sinks:
	      - class: Console
	        method: log
	    sanitizers:
	      - method: escape

# Identifying code elements

The config uses [CodeIdentifier] to identify specific code entities. Sinks and sources are CodeIdentifiers which
identify methods of classes, or fields of classes. An identifier with a non-empty Field designates field reads (for
sources) and field writes (for sinks).
An important feature of the code identifiers is that the string specifications are seen as regexes if they can be
compiled to regexes, otherwise they are strings.

# Logging

[NewLogGroup] returns the loggers used by the analyses, at the level set by the log-level option.
*/
package config
