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

// moveLocked relocates r's interval and its descendants to
// [addr, addr+size). Truncation invalidates everything overlapping the
// vanishing tail before translation; the surviving tree is then walked
// breadth-first so no node is visited twice through an ancestor.
//
// +checklocks:m.mu
func (m *Manager) moveLocked(r Region, addr, size uintptr) {
	from := r.Span()
	to := interval.FromSpan(addr, size)
	log.Tracef("move %v -> %v", from, to)

	fromInfo, tracked := m.regions.Get(from)
	if !tracked {
		// Nothing registered at the source; just rewrite the handle.
		m.relocateLocked(r, addr, size)
		return
	}

	// Detach from the enclosing tree; reattachLocked restores the link on
	// the destination side once the counts are final.
	hadParent := fromInfo.hasParent
	oldParent := fromInfo.parent
	if hadParent {
		m.detachLocked(from, fromInfo)
	}

	if to.IsEmpty() {
		// Relocating to nothing: the whole tree vanishes.
		m.invalidateLocked(from)
		m.relocateLocked(r, addr, size)
		return
	}

	delta := addr - from.Start // modular, so downward moves wrap correctly
	truncated := to.Length() < from.Length()
	var deleted interval.Interval
	if truncated {
		deleted = interval.Interval{Start: from.Start + to.Length(), End: from.End}
		m.invalidateTailLocked(from, deleted)
	}

	translate := func(i interval.Interval) interval.Interval {
		switch {
		case i == from:
			return to
		case truncated && i.Contains(deleted.Start):
			// Clip to the surviving portion.
			return interval.Interval{Start: i.Start + delta, End: deleted.Start + delta}
		default:
			return interval.Interval{Start: i.Start + delta, End: i.End + delta}
		}
	}

	queue := []interval.Interval{from}
	for len(queue) > 0 {
		region := queue[0]
		queue = queue[1:]
		old, ok := m.regions.Get(region)
		if !ok {
			continue
		}
		moved := translate(region)
		movingChildren := old.children.Intervals()

		info := old
		if region != moved {
			m.regions.Delete(region)
			if dst, exists := m.regions.Get(moved); exists {
				// Destination key already tracked (address reuse): union
				// the moving record into the existing one. The moving
				// record's parentage wins; the stale record's units are
				// pulled out of its old chain first.
				info = dst
				if info.hasParent {
					m.detachLocked(moved, info)
				}
				for id, obj := range old.objects {
					info.objects[id] = obj
				}
				info.parent = old.parent
				info.hasParent = old.hasParent
			} else {
				m.regions.Set(moved, old)
			}
		}

		for _, obj := range info.objects {
			mu := m.viewLock(obj.ID())
			mu.Lock()
			obj.Relocate(moved.Start, moved.Length())
			mu.Unlock()
		}

		// Enqueue higher children first when moving upward, so a
		// translated image cannot land on a still-unmoved sibling.
		rewired := interval.NewSet()
		relink := func(c interval.Interval) {
			if c == moved {
				// Self-containing child: never enqueued.
				return
			}
			queue = append(queue, c)
			if cinfo, ok := m.regions.Get(c); ok {
				cinfo.parent = moved
				cinfo.hasParent = true
			}
			rewired.Add(translate(c))
		}
		if addr > from.Start {
			for i := len(movingChildren) - 1; i >= 0; i-- {
				relink(movingChildren[i])
			}
		} else {
			for _, c := range movingChildren {
				relink(c)
			}
		}
		if info == old {
			info.children = rewired
		} else {
			rewired.Ascend(func(c interval.Interval) bool {
				info.children.Add(c)
				return true
			})
		}
	}

	// Tail invalidation and merges changed subtree counts without touching
	// the survivors; the destination side is rebuilt from its records.
	m.rebuildLocked(to)
	m.reattachLocked(to, oldParent, hadParent)
}

// relocateLocked rewrites r's handle under its view lock.
//
// +checklocks:m.mu
func (m *Manager) relocateLocked(r Region, addr, size uintptr) {
	mu := m.viewLock(r.ID())
	mu.Lock()
	r.Relocate(addr, size)
	mu.Unlock()
}

// invalidateTailLocked invalidates every tracked interval overlapping the
// vanishing tail of a truncating move. The memory behind the tail is going
// away, so straddlers die with it.
//
// +checklocks:m.mu
func (m *Manager) invalidateTailLocked(from, deleted interval.Interval) {
	var doomed []interval.Interval
	m.regions.Ascend(func(i interval.Interval, _ *regionInfo) bool {
		if i != from && i.Overlaps(deleted) {
			doomed = append(doomed, i)
		}
		return true
	})
	for _, d := range doomed {
		// A d may already be gone through an ancestor's cascade.
		m.invalidateLocked(d)
	}
}

// rebuildLocked recomputes refcounts bottom-up over key's subtree and
// returns key's rebuilt count.
//
// +checklocks:m.mu
func (m *Manager) rebuildLocked(key interval.Interval) uint64 {
	info, ok := m.regions.Get(key)
	if !ok {
		return 0
	}
	rc := uint64(len(info.objects))
	for _, c := range info.children.Intervals() {
		if c == key {
			continue
		}
		rc += m.rebuildLocked(c)
	}
	info.refcount = rc
	return rc
}

// reattachLocked links key back under parent after a move, provided the
// parent still exists and still contains key; a region moved out from
// under its parent becomes a root.
//
// +checklocks:m.mu
func (m *Manager) reattachLocked(key, parent interval.Interval, hadParent bool) {
	info, ok := m.regions.Get(key)
	if !ok {
		return
	}
	if !hadParent {
		info.hasParent = false
		return
	}
	pinfo, ok := m.regions.Get(parent)
	if !ok || parent == key || !parent.IsSupersetOf(key) {
		info.hasParent = false
		return
	}
	info.parent = parent
	info.hasParent = true
	pinfo.children.Add(key)
	m.addRefsLocked(parent, info.refcount)
}
