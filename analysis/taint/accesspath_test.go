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
package taint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessPathLimit(t *testing.T) {
	p := NewAccessPath("x").Append("f", 2).Append("g", 2)
	assert.Equal(t, "x.f.g", p.String())
	assert.False(t, p.Truncated)

	q := p.Append("h", 2)
	assert.True(t, q.Truncated)
	assert.Equal(t, 2, q.Len())
	assert.Equal(t, "x.f.g.*", q.String())
	assert.Equal(t, q, q.Append("i", 2), "a truncated path stands for all its extensions")
}

func TestAccessPathStrip(t *testing.T) {
	p := NewAccessPath("x").Append("f", 5).Append("g", 5)
	rest, ok := p.Strip("f")
	assert.True(t, ok)
	assert.Equal(t, "x.g", rest.String())

	_, ok = p.Strip("g")
	assert.False(t, ok)

	_, ok = NewAccessPath("x").Strip("f")
	assert.False(t, ok)

	star := AccessPath{Var: "x", Truncated: true}
	rest, ok = star.Strip("f")
	assert.True(t, ok)
	assert.Equal(t, star, rest)
}

func TestAccessPathConcat(t *testing.T) {
	suffix := NewAccessPath("y").Append("g", 5).Append("h", 5)
	p := NewAccessPath("x").Append("f", 5).Concat(suffix, 5)
	assert.Equal(t, "x.f.g.h", p.String())
	assert.Equal(t, "x.f.*", NewAccessPath("x").Append("f", 5).Concat(suffix, 1).String())
	assert.Equal(t, "$heap.g.h", suffix.Suffix().String())
	assert.Equal(t, "z.g.h", suffix.Rebase("z").String())
}

func TestZeroFact(t *testing.T) {
	assert.True(t, zeroFact.IsZero())
	assert.False(t, zeroFact.IsTainted())
	f := Fact{Path: NewAccessPath("x"), Kind: Tainted}
	assert.False(t, f.IsZero())
	assert.True(t, f.IsTainted())
	assert.False(t, f.WithPath(NewAccessPath("y")).IsZero())
	assert.False(t, Fact{Path: NewAccessPath("x"), Kind: Sanitized}.IsTainted())
}
