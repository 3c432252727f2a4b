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

package funcutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"b": 1, "c": 2, "a": 3}
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(m))
}

func TestDedup(t *testing.T) {
	assert.Equal(t, []int{1, 2, 5}, Dedup([]int{5, 1, 2, 5, 1}))
	assert.Empty(t, Dedup([]int{}))
}

func TestMapExists(t *testing.T) {
	evens := []int{2, 4}
	assert.Equal(t, []int{2, 4}, evens)
	assert.Equal(t, []string{"2", "4"}, Map(evens, func(x int) string { return string(rune('0' + x)) }))
	assert.True(t, Exists(evens, func(x int) bool { return x == 4 }))
	assert.False(t, Contains(evens, 3))
}

func TestReverse(t *testing.T) {
	a := []int{1, 2, 3}
	Reverse(a)
	assert.Equal(t, []int{3, 2, 1}, a)
}

func TestOptional(t *testing.T) {
	assert.Equal(t, 3, Some(3).ValueOr(4))
	assert.Equal(t, 4, None[int]().ValueOr(4))
	assert.True(t, None[string]().IsNone())
}
