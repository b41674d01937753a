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

// Package interval provides half-open address intervals and ordered
// collections keyed by them.
package interval

import "fmt"

// An Interval represents a contiguous range of addresses [Start, End).
type Interval struct {
	// Start is the inclusive start of the interval.
	Start uintptr

	// End is the exclusive end of the interval.
	End uintptr
}

// FromSpan returns the interval [addr, addr+size).
func FromSpan(addr, size uintptr) Interval {
	return Interval{Start: addr, End: addr + size}
}

// WellFormed returns true if i.Start <= i.End. All other methods on an
// Interval require that the Interval is well-formed.
func (i Interval) WellFormed() bool {
	return i.Start <= i.End
}

// Length returns the length of the interval.
func (i Interval) Length() uintptr {
	return i.End - i.Start
}

// IsEmpty returns true if the interval covers no addresses.
func (i Interval) IsEmpty() bool {
	return i.Start == i.End
}

// Contains returns true if i contains x.
func (i Interval) Contains(x uintptr) bool {
	return i.Start <= x && x < i.End
}

// Overlaps returns true if i and i2 overlap.
func (i Interval) Overlaps(i2 Interval) bool {
	return i.Start < i2.End && i2.Start < i.End
}

// IsSupersetOf returns true if i is a superset of i2; that is, the interval
// i2 is contained within i.
func (i Interval) IsSupersetOf(i2 Interval) bool {
	return i.Start <= i2.Start && i.End >= i2.End
}

// Intersect returns an interval consisting of the intersection between i and
// i2. If i and i2 do not overlap, Intersect returns an interval with
// unspecified bounds, but for which Length() == 0.
func (i Interval) Intersect(i2 Interval) Interval {
	if i.Start < i2.Start {
		i.Start = i2.Start
	}
	if i.End > i2.End {
		i.End = i2.End
	}
	if i.End < i.Start {
		i.End = i.Start
	}
	return i
}

// CanSplitAt returns true if it is legal to split the interval at x; that
// is, splitting at x would produce two intervals, both of which have
// non-zero length.
func (i Interval) CanSplitAt(x uintptr) bool {
	return i.Contains(x) && i.Start < x
}

// String implements fmt.Stringer.
func (i Interval) String() string {
	return fmt.Sprintf("[%#x, %#x)", i.Start, i.End)
}
