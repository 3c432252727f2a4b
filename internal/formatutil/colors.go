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

// Package formatutil contains the terminal formatting helpers used when printing analysis results.
package formatutil

import (
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/term"
)

var (
	Faint = Color("\033[2m%s\033[0m")
	Red   = Color("\033[1;31m%s\033[0m")
	Green = Color("\033[1;32m%s\033[0m")
)

// forceOff disables colors even when stdout is a terminal (reports written to files, tests).
var forceOff atomic.Bool

// DisableColors turns off all escape sequences produced by the color functions.
func DisableColors(off bool) {
	forceOff.Store(off)
}

// Color returns a function that formats its arguments with the escape sequence colorString when the standard output
// is a terminal.
func Color(colorString string) func(...interface{}) string {
	return func(args ...interface{}) string {
		if !forceOff.Load() && term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Sprintf(colorString, fmt.Sprint(args...))
		}
		return fmt.Sprint(args...)
	}
}
