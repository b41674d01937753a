// Copyright 2026 The Mandlebrot Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package interval

import (
	"github.com/google/btree"
)

// mapDegree is the btree degree used by Map and Set. Tracked interval
// populations are small; a low degree keeps nodes compact.
const mapDegree = 8

type entry[V any] struct {
	key   Interval
	value V
}

func entryLess[V any](a, b entry[V]) bool {
	if a.key.Start != b.key.Start {
		return a.key.Start < b.key.Start
	}
	return a.key.End < b.key.End
}

// A Map is an ordered map from intervals to values. Distinct intervals are
// distinct keys even when they overlap; lookups are by structural equality,
// point containment, or interval containment. The zero value is not usable;
// use NewMap.
//
// Map is not safe for concurrent use.
type Map[V any] struct {
	tree *btree.BTreeG[entry[V]]
}

// NewMap returns an empty Map.
func NewMap[V any]() *Map[V] {
	return &Map[V]{tree: btree.NewG(mapDegree, entryLess[V])}
}

// Len returns the number of intervals in the map.
func (m *Map[V]) Len() int {
	return m.tree.Len()
}

// Set maps key to value, replacing any existing value.
func (m *Map[V]) Set(key Interval, value V) {
	m.tree.ReplaceOrInsert(entry[V]{key: key, value: value})
}

// Get returns the value mapped to key.
func (m *Map[V]) Get(key Interval) (V, bool) {
	e, ok := m.tree.Get(entry[V]{key: key})
	return e.value, ok
}

// Has returns true if key is in the map.
func (m *Map[V]) Has(key Interval) bool {
	return m.tree.Has(entry[V]{key: key})
}

// Delete removes key from the map and returns true if it was present.
func (m *Map[V]) Delete(key Interval) bool {
	_, ok := m.tree.Delete(entry[V]{key: key})
	return ok
}

// ContainingPoint returns every interval in the map that contains addr, in
// ascending key order.
//
// Containment does not nest along the key order, so candidates are every
// interval starting at or below addr; the scan is linear in that prefix.
func (m *Map[V]) ContainingPoint(addr uintptr) []Interval {
	var out []Interval
	m.ascendStartingAtOrBelow(addr, func(e entry[V]) bool {
		if e.key.Contains(addr) {
			out = append(out, e.key)
		}
		return true
	})
	return out
}

// Containing returns every interval in the map that is a superset of i
// (including i itself, if present), in ascending key order.
func (m *Map[V]) Containing(i Interval) []Interval {
	var out []Interval
	m.ascendStartingAtOrBelow(i.Start, func(e entry[V]) bool {
		if e.key.IsSupersetOf(i) {
			out = append(out, e.key)
		}
		return true
	})
	return out
}

// Ascend calls f for each interval/value pair in ascending key order until f
// returns false.
func (m *Map[V]) Ascend(f func(Interval, V) bool) {
	m.tree.Ascend(func(e entry[V]) bool {
		return f(e.key, e.value)
	})
}

// ascendStartingAtOrBelow visits every entry whose key starts at or below
// addr, in ascending order.
func (m *Map[V]) ascendStartingAtOrBelow(addr uintptr, f func(entry[V]) bool) {
	if addr == ^uintptr(0) {
		m.tree.Ascend(f)
		return
	}
	m.tree.AscendLessThan(entry[V]{key: Interval{Start: addr + 1}}, f)
}

// A Set is an ordered set of intervals. The zero value is not usable; use
// NewSet.
//
// Set is not safe for concurrent use.
type Set struct {
	m *Map[struct{}]
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{m: NewMap[struct{}]()}
}

// Len returns the number of intervals in the set.
func (s *Set) Len() int {
	return s.m.Len()
}

// Add inserts i into the set.
func (s *Set) Add(i Interval) {
	s.m.Set(i, struct{}{})
}

// Remove removes i from the set and returns true if it was present.
func (s *Set) Remove(i Interval) bool {
	return s.m.Delete(i)
}

// Has returns true if i is in the set.
func (s *Set) Has(i Interval) bool {
	return s.m.Has(i)
}

// Ascend calls f for each interval in ascending order until f returns
// false.
func (s *Set) Ascend(f func(Interval) bool) {
	s.m.Ascend(func(i Interval, _ struct{}) bool {
		return f(i)
	})
}

// Intervals returns the set's contents in ascending order.
func (s *Set) Intervals() []Interval {
	out := make([]Interval, 0, s.Len())
	s.Ascend(func(i Interval) bool {
		out = append(out, i)
		return true
	})
	return out
}
