// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package collections

import (
	"fmt"
	"slices"
	"strings"
)

// Set is a container that can hold each item only once and has a fast
// lookup time. internal/graph builds its in-degree frontier and
// visited-node tracking on top of it.
//
// You can define a new set like this:
//
//	var validKeyLengths = collections.Set[int]{
//	    16: {},
//	    24: {},
//	    32: {},
//	}
//
// You can also use the constructor to create a new set
//
//	var validKeyLengths = collections.NewSet[int](16,24,32)
type Set[T comparable] map[T]struct{}

// NewSet constructs a new set given the members of type T.
func NewSet[T comparable](members ...T) Set[T] {
	set := Set[T]{}
	for _, member := range members {
		set[member] = struct{}{}
	}
	return set
}

// Has returns true if the item exists in the Set.
func (s Set[T]) Has(value T) bool {
	_, ok := s[value]
	return ok
}

// Add inserts value into the set. The teacher's set.Set is built once
// via NewSet and never mutated again; BuildGraph.seen and
// BuildGraph.selected grow one *model.Task at a time as AddTask and
// Select walk the dependency graph, so Set needs Add where the
// original did not.
func (s Set[T]) Add(value T) {
	s[value] = struct{}{}
}

// Delete removes value from the set. It is a no-op if value is absent.
// Rounds out Set's mutable API alongside Add; BuildGraph itself only
// ever grows its sets, so today this is exercised by set_test.go
// rather than by production code.
func (s Set[T]) Delete(value T) {
	delete(s, value)
}

// Len returns the number of members in the set. kahnOrder calls this
// on each task's inbound set to seed its Kahn's-algorithm in-degree
// counters before walking the frontier.
func (s Set[T]) Len() int {
	return len(s)
}

// String creates a comma-separated list of all values in the set.
func (s Set[T]) String() string {
	parts := make([]string, len(s))
	i := 0
	for v := range s {
		parts[i] = fmt.Sprintf("%v", v)
		i++
	}

	slices.SortStableFunc(parts, func(a, b string) int {
		if a < b {
			return -1
		} else if b > a {
			return 1
		} else {
			return 0
		}
	})
	return strings.Join(parts, ", ")
}
