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

	"github.com/google/go-cmp/cmp"
)

func TestMapBasics(t *testing.T) {
	m := NewMap[string]()
	a := Interval{0x1000, 0x1010}
	b := Interval{0x1000, 0x1008} // same start, different end: distinct key
	m.Set(a, "a")
	m.Set(b, "b")

	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if got, ok := m.Get(a); !ok || got != "a" {
		t.Errorf("Get(%v) = %q, %t; want \"a\", true", a, got, ok)
	}
	if got, ok := m.Get(b); !ok || got != "b" {
		t.Errorf("Get(%v) = %q, %t; want \"b\", true", b, got, ok)
	}

	m.Set(a, "a2")
	if got, _ := m.Get(a); got != "a2" {
		t.Errorf("Get(%v) after replace = %q, want \"a2\"", a, got)
	}
	if m.Len() != 2 {
		t.Errorf("Len() after replace = %d, want 2", m.Len())
	}

	if !m.Delete(b) {
		t.Errorf("Delete(%v) = false, want true", b)
	}
	if m.Has(b) {
		t.Errorf("Has(%v) after delete = true, want false", b)
	}
	if m.Delete(b) {
		t.Errorf("second Delete(%v) = true, want false", b)
	}
}

func TestMapContainingPoint(t *testing.T) {
	m := NewMap[int]()
	outer := Interval{0x1000, 0x1100}
	inner := Interval{0x1040, 0x1080}
	other := Interval{0x2000, 0x2100}
	m.Set(outer, 0)
	m.Set(inner, 1)
	m.Set(other, 2)

	for _, test := range []struct {
		addr uintptr
		want []Interval
	}{
		{0x1000, []Interval{outer}},
		{0x1040, []Interval{outer, inner}},
		{0x107f, []Interval{outer, inner}},
		{0x1080, []Interval{outer}},
		{0x10ff, []Interval{outer}},
		{0x1100, nil},
		{0x2050, []Interval{other}},
		{0x3000, nil},
	} {
		got := m.ContainingPoint(test.addr)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("ContainingPoint(%#x) mismatch (-want +got):\n%s", test.addr, diff)
		}
	}
}

func TestMapContaining(t *testing.T) {
	m := NewMap[int]()
	outer := Interval{0x1000, 0x1100}
	inner := Interval{0x1040, 0x1080}
	m.Set(outer, 0)
	m.Set(inner, 1)

	for _, test := range []struct {
		i    Interval
		want []Interval
	}{
		{Interval{0x1040, 0x1080}, []Interval{outer, inner}},
		{Interval{0x1050, 0x1060}, []Interval{outer, inner}},
		{Interval{0x1000, 0x1100}, []Interval{outer}},
		{Interval{0x1040, 0x1090}, []Interval{outer}},
		{Interval{0x0f00, 0x1000}, nil},
	} {
		got := m.Containing(test.i)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Containing(%v) mismatch (-want +got):\n%s", test.i, diff)
		}
	}
}

func TestMapAscendOrder(t *testing.T) {
	m := NewMap[int]()
	keys := []Interval{
		{0x3000, 0x3010},
		{0x1000, 0x1020},
		{0x1000, 0x1010},
		{0x2000, 0x2010},
	}
	for i, k := range keys {
		m.Set(k, i)
	}

	var got []Interval
	m.Ascend(func(i Interval, _ int) bool {
		got = append(got, i)
		return true
	})
	want := []Interval{
		{0x1000, 0x1010},
		{0x1000, 0x1020},
		{0x2000, 0x2010},
		{0x3000, 0x3010},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Ascend order mismatch (-want +got):\n%s", diff)
	}
}

func TestSet(t *testing.T) {
	s := NewSet()
	a := Interval{0x1000, 0x1010}
	b := Interval{0x1004, 0x1008}
	s.Add(a)
	s.Add(b)
	s.Add(a) // duplicate

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if !s.Has(a) || !s.Has(b) {
		t.Errorf("Has(%v), Has(%v) = %t, %t; want true, true", a, b, s.Has(a), s.Has(b))
	}
	if diff := cmp.Diff([]Interval{a, b}, s.Intervals()); diff != "" {
		t.Errorf("Intervals() mismatch (-want +got):\n%s", diff)
	}
	if !s.Remove(b) {
		t.Errorf("Remove(%v) = false, want true", b)
	}
	if s.Has(b) {
		t.Errorf("Has(%v) after remove = true, want false", b)
	}
}
