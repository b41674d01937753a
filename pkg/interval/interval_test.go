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
	"testing"
)

func TestContains(t *testing.T) {
	i := Interval{Start: 0x1000, End: 0x1010}
	for _, test := range []struct {
		addr uintptr
		want bool
	}{
		{0xfff, false},
		{0x1000, true},
		{0x1008, true},
		{0x100f, true},
		{0x1010, false},
	} {
		if got := i.Contains(test.addr); got != test.want {
			t.Errorf("%v.Contains(%#x) = %t, want %t", i, test.addr, got, test.want)
		}
	}
}

func TestEmptyInterval(t *testing.T) {
	i := Interval{Start: 0x1000, End: 0x1000}
	if !i.IsEmpty() {
		t.Errorf("%v.IsEmpty() = false, want true", i)
	}
	if i.Length() != 0 {
		t.Errorf("%v.Length() = %d, want 0", i, i.Length())
	}
	if i.Contains(0x1000) {
		t.Errorf("%v.Contains(%#x) = true, want false", i, uintptr(0x1000))
	}
	if !i.WellFormed() {
		t.Errorf("%v.WellFormed() = false, want true", i)
	}
}

func TestOverlaps(t *testing.T) {
	for _, test := range []struct {
		a, b Interval
		want bool
	}{
		{Interval{0x1000, 0x1010}, Interval{0x1008, 0x1018}, true},
		{Interval{0x1000, 0x1010}, Interval{0x1010, 0x1020}, false},
		{Interval{0x1000, 0x1010}, Interval{0x1000, 0x1010}, true},
		{Interval{0x1000, 0x1010}, Interval{0x1004, 0x1008}, true},
		{Interval{0x1000, 0x1010}, Interval{0x2000, 0x2010}, false},
		{Interval{0x1000, 0x1010}, Interval{0x1008, 0x1008}, true},
	} {
		if got := test.a.Overlaps(test.b); got != test.want {
			t.Errorf("%v.Overlaps(%v) = %t, want %t", test.a, test.b, got, test.want)
		}
		if got := test.b.Overlaps(test.a); got != test.want {
			t.Errorf("%v.Overlaps(%v) = %t, want %t", test.b, test.a, got, test.want)
		}
	}
}

func TestIsSupersetOf(t *testing.T) {
	for _, test := range []struct {
		a, b Interval
		want bool
	}{
		{Interval{0x1000, 0x1010}, Interval{0x1000, 0x1010}, true},
		{Interval{0x1000, 0x1010}, Interval{0x1004, 0x1008}, true},
		{Interval{0x1000, 0x1010}, Interval{0x1004, 0x1018}, false},
		{Interval{0x1004, 0x1008}, Interval{0x1000, 0x1010}, false},
		{Interval{0x1000, 0x1010}, Interval{0x1008, 0x1008}, true},
	} {
		if got := test.a.IsSupersetOf(test.b); got != test.want {
			t.Errorf("%v.IsSupersetOf(%v) = %t, want %t", test.a, test.b, got, test.want)
		}
	}
}

func TestIntersect(t *testing.T) {
	a := Interval{0x1000, 0x1010}
	b := Interval{0x1008, 0x1020}
	if got, want := a.Intersect(b), (Interval{0x1008, 0x1010}); got != want {
		t.Errorf("%v.Intersect(%v) = %v, want %v", a, b, got, want)
	}
	c := Interval{0x2000, 0x2010}
	if got := a.Intersect(c); got.Length() != 0 {
		t.Errorf("%v.Intersect(%v).Length() = %d, want 0", a, c, got.Length())
	}
}

func TestCanSplitAt(t *testing.T) {
	i := Interval{0x1000, 0x1010}
	for _, test := range []struct {
		x    uintptr
		want bool
	}{
		{0x1000, false},
		{0x1008, true},
		{0x1010, false},
	} {
		if got := i.CanSplitAt(test.x); got != test.want {
			t.Errorf("%v.CanSplitAt(%#x) = %t, want %t", i, test.x, got, test.want)
		}
	}
}

func TestFromSpan(t *testing.T) {
	i := FromSpan(0x1000, 0x20)
	if want := (Interval{0x1000, 0x1020}); i != want {
		t.Errorf("FromSpan(0x1000, 0x20) = %v, want %v", i, want)
	}
}
