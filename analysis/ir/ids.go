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

package ir

import "fmt"

// ClassID is the dense index of a class in its scene
type ClassID int

// MethodID is the dense index of a method in its scene
type MethodID int

// SiteID is the dense index of an allocation site in its scene
type SiteID int

const (
	// NoClass is the null class id, e.g. the superclass of a root class
	NoClass ClassID = -1
	// NoMethod is the null method id
	NoMethod MethodID = -1
	// NoSite is the null site id
	NoSite SiteID = -1
)

// StmtRef addresses a statement by its method and its index in the method body. The index len(body) is the exit
// node of the method.
type StmtRef struct {
	Method MethodID
	Index  int
}

// Less orders statement references by method, then index
func (r StmtRef) Less(o StmtRef) bool {
	if r.Method != o.Method {
		return r.Method < o.Method
	}
	return r.Index < o.Index
}

// Selector identifies the methods a virtual call may dispatch to: a name and an arity.
type Selector struct {
	Name  string
	Arity int
}

func (s Selector) String() string {
	return fmt.Sprintf("%s/%d", s.Name, s.Arity)
}
