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
	"github.com/frank2/mandlebrot/pkg/interval"
)

// regionInfo is the per-interval record.
//
// Invariants, between any two Manager operations:
//   - refcount == len(objects) + sum of children's refcounts.
//   - parent and children are interval identifiers, never object
//     references; for every child c, c is tracked, c's parent is this
//     interval, and this interval contains c.
type regionInfo struct {
	// refcount aggregates ownership: one unit per registered object, here
	// and transitively below.
	refcount uint64

	// objects holds every Region registered at exactly this interval,
	// keyed by Region.ID.
	objects map[uint64]Region

	// parent is the enclosing interval, valid only when hasParent is set.
	parent    interval.Interval
	hasParent bool

	// children holds the sub-intervals registered beneath this one.
	children *interval.Set
}

func newRegionInfo() *regionInfo {
	return &regionInfo{
		objects:  make(map[uint64]Region),
		children: interval.NewSet(),
	}
}

// infoLocked returns the record for key, creating it if absent.
//
// +checklocks:m.mu
func (m *Manager) infoLocked(key interval.Interval) *regionInfo {
	if info, ok := m.regions.Get(key); ok {
		return info
	}
	info := newRegionInfo()
	m.regions.Set(key, info)
	return info
}

// addRefsLocked adds n ownership units to key and every ancestor on its
// parent chain.
//
// +checklocks:m.mu
func (m *Manager) addRefsLocked(key interval.Interval, n uint64) {
	if n == 0 {
		return
	}
	info := m.infoLocked(key)
	for {
		info.refcount += n
		if !info.hasParent {
			return
		}
		next, ok := m.regions.Get(info.parent)
		if !ok {
			return
		}
		info = next
	}
}

// subRefsLocked removes n ownership units from key and every ancestor,
// then invalidates every interval whose count reached zero. Collection
// happens before invalidation so the walk never chases a link it already
// removed.
//
// +checklocks:m.mu
func (m *Manager) subRefsLocked(key interval.Interval, n uint64) {
	if n == 0 {
		return
	}
	var dead []interval.Interval
	node := key
	for {
		info, ok := m.regions.Get(node)
		if !ok {
			break
		}
		info.refcount -= n
		if info.refcount == 0 {
			dead = append(dead, node)
		}
		if !info.hasParent {
			break
		}
		node = info.parent
	}
	for _, d := range dead {
		m.invalidateLocked(d)
	}
}

// refLocked adds one ownership unit along key's parent chain.
//
// +checklocks:m.mu
func (m *Manager) refLocked(key interval.Interval) {
	m.addRefsLocked(key, 1)
}

// derefLocked removes one ownership unit along key's parent chain.
//
// +checklocks:m.mu
func (m *Manager) derefLocked(key interval.Interval) {
	m.subRefsLocked(key, 1)
}

// declareLocked registers r under its span.
//
// +checklocks:m.mu
func (m *Manager) declareLocked(r Region) {
	key := r.Span()
	log.Tracef("declare %v object %d", key, r.ID())
	info := m.infoLocked(key)
	info.objects[r.ID()] = r
	m.refLocked(key)
}

// declareChildLocked establishes containment of child beneath parentKey.
//
// +checklocks:m.mu
func (m *Manager) declareChildLocked(parentKey interval.Interval, child Region) {
	childKey := child.Span()
	if childKey == parentKey {
		// A region cannot be its own parent; identical intervals already
		// share one record.
		return
	}
	log.Tracef("declare child %v under %v", childKey, parentKey)

	cinfo := m.infoLocked(childKey)
	if cinfo.hasParent {
		if cinfo.parent == parentKey {
			m.infoLocked(parentKey).children.Add(childKey)
			return
		}
		// Detaching can cascade through the old chain, so the new
		// parent's record is fetched only afterwards.
		m.detachLocked(childKey, cinfo)
	}
	pinfo := m.infoLocked(parentKey)
	cinfo.parent = parentKey
	cinfo.hasParent = true
	pinfo.children.Add(childKey)
	// The child's units now also count toward the new chain. In the
	// common declare-then-parent flow this is the single ref the
	// declaration added.
	m.addRefsLocked(parentKey, cinfo.refcount)
}

// detachLocked unlinks key from its current parent, removing its ownership
// units from the old chain.
//
// +checklocks:m.mu
func (m *Manager) detachLocked(key interval.Interval, info *regionInfo) {
	parent := info.parent
	info.hasParent = false
	if pinfo, ok := m.regions.Get(parent); ok {
		pinfo.children.Remove(key)
		m.subRefsLocked(parent, info.refcount)
	}
}

// destroyLocked removes r from its interval's record and derefs the chain.
//
// +checklocks:m.mu
func (m *Manager) destroyLocked(r Region) {
	key := r.Span()
	info, ok := m.regions.Get(key)
	if !ok {
		// Already invalidated; nothing to undo.
		return
	}
	if _, registered := info.objects[r.ID()]; !registered {
		return
	}
	log.Tracef("destroy %v object %d", key, r.ID())
	delete(info.objects, r.ID())
	m.derefLocked(key)
}

// invalidateLocked removes key and every descendant interval from the
// registry. The parent's refcount is deliberately left alone: on the deref
// path the decrement already happened, and on the move path the destination
// counts are rebuilt afterwards.
//
// +checklocks:m.mu
func (m *Manager) invalidateLocked(key interval.Interval) {
	info, ok := m.regions.Get(key)
	if !ok {
		return
	}
	log.Tracef("invalidate %v", key)
	if info.hasParent {
		if pinfo, ok := m.regions.Get(info.parent); ok {
			pinfo.children.Remove(key)
		}
	}
	for _, child := range info.children.Intervals() {
		m.invalidateLocked(child)
	}
	m.regions.Delete(key)
}
