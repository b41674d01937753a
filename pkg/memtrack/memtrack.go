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

// Package memtrack implements a process-wide registry of tracked memory
// regions.
//
// The registry maintains an interval map over the address space, a
// containment forest between tracked regions, and aggregated reference
// counts along the parent chains. When a tracked buffer is reallocated or
// truncated, every dependent region is translated or invalidated in one
// atomic step.
//
// The registry never allocates or frees the memory it tracks; clients
// guarantee that a declared region stays mapped until it is destroyed or
// invalidated.
package memtrack

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/frank2/mandlebrot/pkg/interval"
)

var log = logrus.WithField("subsystem", "memtrack")

// A Region is a tracked handle over a span of memory. Implementations hold
// a base address and a size; the Manager reads the span and rewrites it
// during moves.
type Region interface {
	// ID returns an identity for the region, stable for its lifetime and
	// never reused.
	ID() uint64

	// Span returns the tracked interval.
	Span() interval.Interval

	// Relocate rewrites the region's base address and size. Only the
	// Manager calls Relocate, during a move, with the region's view lock
	// held.
	Relocate(addr, size uintptr)
}

// Manager is the process-wide region registry. All methods are safe for
// concurrent use; each public method is one atomic transition of the
// tracked state.
//
// Lock order: mu, then any view lock. View locks are never held while
// acquiring mu.
type Manager struct {
	// mu protects regions.
	mu sync.Mutex

	// regions maps each tracked interval to its record.
	// +checklocks:mu
	regions *interval.Map[*regionInfo]

	// viewLocks maps Region.ID to that region's view lock (*sync.Mutex).
	// Entries are created on demand and removed when the region is
	// destroyed, unless the lock is held at that point; a held lock means
	// a move is mid-rewrite, so the entry is left behind and reclaimed
	// later.
	viewLocks sync.Map
}

var (
	tracker     *Manager
	trackerOnce sync.Once
)

// Tracker returns the process-wide Manager, creating it on first use.
func Tracker() *Manager {
	trackerOnce.Do(func() {
		tracker = &Manager{regions: interval.NewMap[*regionInfo]()}
	})
	return tracker
}

// Reset drops all tracked state. Every outstanding region becomes dangling.
// Intended for deterministic teardown in tests.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.regions = interval.NewMap[*regionInfo]()
	m.mu.Unlock()
	m.viewLocks.Range(func(key, _ any) bool {
		m.viewLocks.Delete(key)
		return true
	})
}

// HasInterval returns true iff an interval equal to [addr, addr+size) is
// tracked.
func (m *Manager) HasInterval(addr, size uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regions.Has(interval.FromSpan(addr, size))
}

// ContainsPoint returns true iff any tracked interval contains addr.
func (m *Manager) ContainsPoint(addr uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.regions.ContainingPoint(addr)) > 0
}

// ContainsInterval returns true iff some tracked interval contains
// [addr, addr+size).
func (m *Manager) ContainsInterval(addr, size uintptr) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.regions.Containing(interval.FromSpan(addr, size))) > 0
}

// Containing returns every tracked interval containing [addr, addr+size).
func (m *Manager) Containing(addr, size uintptr) []interval.Interval {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regions.Containing(interval.FromSpan(addr, size))
}

// ParentOf returns the parent interval of r's interval, if r is tracked and
// has one.
func (m *Manager) ParentOf(r Region) (interval.Interval, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.regions.Get(r.Span())
	if !ok || !info.hasParent {
		return interval.Interval{}, false
	}
	return info.parent, true
}

// HasObject returns true iff r is currently registered under its span.
func (m *Manager) HasObject(r Region) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.regions.Get(r.Span())
	if !ok {
		return false
	}
	_, ok = info.objects[r.ID()]
	return ok
}

// Declare registers r under its span, creating the interval's record if
// needed, and refs the interval's parent chain.
func (m *Manager) Declare(r Region) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.declareLocked(r)
}

// DeclareChild establishes containment of child's interval beneath parent.
// A region whose interval equals parent is not re-parented; declaring the
// same containment twice is a no-op.
//
// Preconditions: child has been declared; parent contains child's interval.
func (m *Manager) DeclareChild(parent interval.Interval, child Region) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.declareChildLocked(parent, child)
}

// Destroy removes r from its interval's record and derefs the interval's
// parent chain. Destroying a region that is not tracked is a no-op; it may
// have been invalidated first.
func (m *Manager) Destroy(r Region) {
	m.mu.Lock()
	m.destroyLocked(r)
	m.mu.Unlock()
	m.reclaimViewLock(r.ID())
}

// Invalidate removes r's interval and all descendant intervals from the
// registry. The units the interval held on its enclosing parent chain are
// released first, so an ancestor left with no units is purged as well.
// Every region registered under a removed interval becomes dangling. The
// tracked memory itself is not freed.
func (m *Manager) Invalidate(r Region) {
	m.mu.Lock()
	key := r.Span()
	if info, ok := m.regions.Get(key); ok && info.hasParent {
		m.detachLocked(key, info)
	}
	m.invalidateLocked(key)
	m.mu.Unlock()
	m.reclaimViewLock(r.ID())
}

// Move relocates r's tracked interval to [addr, addr+size), translating
// every descendant and invalidating descendants that fall outside a
// truncated range. r and all translated descendants have their pointers
// rewritten under their view locks; external observers see either the
// pre-move or the post-move state.
func (m *Manager) Move(r Region, addr, size uintptr) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moveLocked(r, addr, size)
}

// Lock acquires r's view lock, creating it on demand.
func (m *Manager) Lock(r Region) {
	m.viewLock(r.ID()).Lock()
}

// Unlock releases r's view lock.
func (m *Manager) Unlock(r Region) {
	if l, ok := m.viewLocks.Load(r.ID()); ok {
		l.(*sync.Mutex).Unlock()
	}
}

// viewLock returns the view lock for id, creating it if needed.
func (m *Manager) viewLock(id uint64) *sync.Mutex {
	if l, ok := m.viewLocks.Load(id); ok {
		return l.(*sync.Mutex)
	}
	l, _ := m.viewLocks.LoadOrStore(id, &sync.Mutex{})
	return l.(*sync.Mutex)
}

// reclaimViewLock removes id's view lock if it is not held. A held lock
// means a move is rewriting the region; the entry stays behind, and a later
// destroy of the same region (a no-op on the registry by then) retires it.
func (m *Manager) reclaimViewLock(id uint64) {
	l, ok := m.viewLocks.Load(id)
	if !ok {
		return
	}
	mu := l.(*sync.Mutex)
	if mu.TryLock() {
		mu.Unlock()
		m.viewLocks.Delete(id)
	}
}
