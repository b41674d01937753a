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

package memtrack

import (
	"sync/atomic"
	"testing"

	"github.com/frank2/mandlebrot/pkg/interval"
)

// testRegion is a minimal Region over a synthetic address space. The
// registry never dereferences tracked addresses, so tests can use made-up
// ones.
type testRegion struct {
	addr, size uintptr
	id         uint64
}

var testIDs atomic.Uint64

func newTestRegion(addr, size uintptr) *testRegion {
	return &testRegion{addr: addr, size: size, id: testIDs.Add(1) | 1<<63}
}

func (r *testRegion) ID() uint64 { return r.id }

func (r *testRegion) Span() interval.Interval { return interval.FromSpan(r.addr, r.size) }

func (r *testRegion) Relocate(addr, size uintptr) {
	r.addr = addr
	r.size = size
}

// declare registers r and arranges cleanup.
func declare(t *testing.T, m *Manager, addr, size uintptr) *testRegion {
	t.Helper()
	r := newTestRegion(addr, size)
	m.Declare(r)
	t.Cleanup(func() { m.Destroy(r) })
	return r
}

// subsection declares a child region under parent.
func subsection(t *testing.T, m *Manager, parent *testRegion, offset, size uintptr) *testRegion {
	t.Helper()
	c := declare(t, m, parent.addr+offset, size)
	m.DeclareChild(parent.Span(), c)
	return c
}

func checkInvariants(t *testing.T, m *Manager) {
	t.Helper()
	if err := m.CheckInvariants(); err != nil {
		t.Fatalf("invariant violation: %v", err)
	}
}

func TestDeclareAndQueries(t *testing.T) {
	m := Tracker()
	r := declare(t, m, 0x10000, 16)

	if !m.HasInterval(0x10000, 16) {
		t.Error("HasInterval(0x10000, 16) = false, want true")
	}
	if m.HasInterval(0x10000, 8) {
		t.Error("HasInterval(0x10000, 8) = true, want false")
	}
	if !m.ContainsPoint(0x10008) {
		t.Error("ContainsPoint(0x10008) = false, want true")
	}
	if m.ContainsPoint(0x10010) {
		t.Error("ContainsPoint(0x10010) = true, want false")
	}
	if !m.ContainsInterval(0x10004, 8) {
		t.Error("ContainsInterval(0x10004, 8) = false, want true")
	}
	if m.ContainsInterval(0x10004, 32) {
		t.Error("ContainsInterval(0x10004, 32) = true, want false")
	}
	if !m.HasObject(r) {
		t.Error("HasObject = false, want true")
	}
	if _, ok := m.ParentOf(r); ok {
		t.Error("ParentOf = ok, want none")
	}
	checkInvariants(t, m)

	m.Destroy(r)
	if m.HasInterval(0x10000, 16) {
		t.Error("HasInterval after destroy = true, want false")
	}
	if m.HasObject(r) {
		t.Error("HasObject after destroy = true, want false")
	}
	// A second destroy of an untracked region is a silent no-op.
	m.Destroy(r)
	checkInvariants(t, m)
}

func TestSharedInterval(t *testing.T) {
	m := Tracker()
	r1 := declare(t, m, 0x20000, 16)
	r2 := declare(t, m, 0x20000, 16)

	if rc, ok := m.refcountOf(0x20000, 16); !ok || rc != 2 {
		t.Fatalf("refcount = %d, %t; want 2, true", rc, ok)
	}
	checkInvariants(t, m)

	m.Destroy(r1)
	if !m.HasObject(r2) {
		t.Error("HasObject(r2) after destroying r1 = false, want true")
	}
	if rc, _ := m.refcountOf(0x20000, 16); rc != 1 {
		t.Errorf("refcount after one destroy = %d, want 1", rc)
	}

	m.Destroy(r2)
	if m.HasInterval(0x20000, 16) {
		t.Error("HasInterval after both destroys = true, want false")
	}
	checkInvariants(t, m)
}

func TestDeclareChild(t *testing.T) {
	m := Tracker()
	parent := declare(t, m, 0x30000, 32)
	child := subsection(t, m, parent, 8, 8)

	p, ok := m.ParentOf(child)
	if !ok || p != parent.Span() {
		t.Fatalf("ParentOf(child) = %v, %t; want %v, true", p, ok, parent.Span())
	}
	if rc, _ := m.refcountOf(0x30000, 32); rc != 2 {
		t.Errorf("parent refcount = %d, want 2", rc)
	}
	if rc, _ := m.refcountOf(0x30008, 8); rc != 1 {
		t.Errorf("child refcount = %d, want 1", rc)
	}
	checkInvariants(t, m)

	// Declaring the same containment again changes nothing.
	m.DeclareChild(parent.Span(), child)
	if rc, _ := m.refcountOf(0x30000, 32); rc != 2 {
		t.Errorf("parent refcount after duplicate DeclareChild = %d, want 2", rc)
	}
	checkInvariants(t, m)
}

func TestSelfParentNoOp(t *testing.T) {
	m := Tracker()
	parent := declare(t, m, 0x40000, 16)
	// A subsection spanning the whole region shares the parent's record.
	child := subsection(t, m, parent, 0, 16)

	if _, ok := m.ParentOf(child); ok {
		t.Error("ParentOf(full-size child) = ok, want none")
	}
	if rc, _ := m.refcountOf(0x40000, 16); rc != 2 {
		t.Errorf("refcount = %d, want 2", rc)
	}
	checkInvariants(t, m)
}

func TestDestroyChildFirst(t *testing.T) {
	m := Tracker()
	parent := declare(t, m, 0x50000, 32)
	child := subsection(t, m, parent, 0, 8)

	m.Destroy(child)
	if m.HasInterval(0x50000, 8) {
		t.Error("child interval survived destroy")
	}
	if rc, _ := m.refcountOf(0x50000, 32); rc != 1 {
		t.Errorf("parent refcount after child destroy = %d, want 1", rc)
	}
	checkInvariants(t, m)
}

func TestDestroyParentObjectKeepsSubtree(t *testing.T) {
	m := Tracker()
	parent := declare(t, m, 0x60000, 32)
	child := subsection(t, m, parent, 4, 8)

	// Destroying the parent's object leaves the record alive: the child
	// still holds a unit on it.
	m.Destroy(parent)
	if !m.HasInterval(0x60000, 32) {
		t.Fatal("parent interval vanished while a child holds it")
	}
	if rc, _ := m.refcountOf(0x60000, 32); rc != 1 {
		t.Errorf("parent refcount = %d, want 1", rc)
	}
	checkInvariants(t, m)

	// Destroying the child drops the chain to zero and purges both.
	m.Destroy(child)
	if m.HasInterval(0x60000, 32) {
		t.Error("parent interval survived the last deref")
	}
	if m.HasInterval(0x60004, 8) {
		t.Error("child interval survived the last deref")
	}
	checkInvariants(t, m)
}

func TestInvalidateCascade(t *testing.T) {
	m := Tracker()
	a := declare(t, m, 0x70000, 64)
	b := subsection(t, m, a, 16, 32)
	c := subsection(t, m, b, 8, 8)

	m.Invalidate(a)
	for _, r := range []*testRegion{a, b, c} {
		if m.HasObject(r) {
			t.Errorf("HasObject(%v) after cascade = true, want false", r.Span())
		}
		if m.HasInterval(r.addr, r.size) {
			t.Errorf("HasInterval(%v) after cascade = true, want false", r.Span())
		}
	}
	checkInvariants(t, m)

	// Destroying an invalidated region is a silent no-op.
	m.Destroy(b)
	checkInvariants(t, m)
}

func TestInvalidateChildDetaches(t *testing.T) {
	m := Tracker()
	a := declare(t, m, 0x80000, 64)
	b := subsection(t, m, a, 16, 16)

	m.Invalidate(b)
	if m.HasInterval(0x80010, 16) {
		t.Error("child interval survived invalidation")
	}
	if !m.HasInterval(0x80000, 64) {
		t.Fatal("parent interval vanished")
	}
	// Out-of-band invalidation pulls the child's units out of the chain.
	if rc, _ := m.refcountOf(0x80000, 64); rc != 1 {
		t.Errorf("parent refcount = %d, want 1", rc)
	}
	checkInvariants(t, m)
}

func TestViewLockReclaim(t *testing.T) {
	m := Tracker()
	r := declare(t, m, 0x90000, 16)

	m.Lock(r)
	// Destroying while the lock is held leaves the table entry behind.
	m.Destroy(r)
	if _, ok := m.viewLocks.Load(r.ID()); !ok {
		t.Fatal("view lock entry reclaimed while held")
	}
	m.Unlock(r)

	// The next destroy is a registry no-op but retires the entry.
	m.Destroy(r)
	if _, ok := m.viewLocks.Load(r.ID()); ok {
		t.Error("view lock entry survived an unlocked destroy")
	}
	checkInvariants(t, m)
}
