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
	"fmt"

	"github.com/frank2/mandlebrot/pkg/interval"
)

// CheckInvariants verifies the registry's global invariants: refcount
// accounting and parent/child closure. It returns the first violation
// found, or nil. Intended for tests; it takes the manager lock and walks
// the whole map.
func (m *Manager) CheckInvariants() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	m.regions.Ascend(func(key interval.Interval, info *regionInfo) bool {
		want := uint64(len(info.objects))
		info.children.Ascend(func(c interval.Interval) bool {
			cinfo, ok := m.regions.Get(c)
			if !ok {
				err = fmt.Errorf("%v: child %v is not tracked", key, c)
				return false
			}
			if !cinfo.hasParent || cinfo.parent != key {
				err = fmt.Errorf("%v: child %v does not name it as parent", key, c)
				return false
			}
			if !key.IsSupersetOf(c) {
				err = fmt.Errorf("%v: does not contain child %v", key, c)
				return false
			}
			want += cinfo.refcount
			return true
		})
		if err != nil {
			return false
		}
		if info.refcount != want {
			err = fmt.Errorf("%v: refcount %d, want %d", key, info.refcount, want)
			return false
		}
		if info.hasParent {
			pinfo, ok := m.regions.Get(info.parent)
			if !ok {
				err = fmt.Errorf("%v: parent %v is not tracked", key, info.parent)
				return false
			}
			if !pinfo.children.Has(key) {
				err = fmt.Errorf("%v: absent from parent %v's children", key, info.parent)
				return false
			}
			if !info.parent.IsSupersetOf(key) {
				err = fmt.Errorf("%v: not contained by parent %v", key, info.parent)
				return false
			}
		}
		return true
	})
	return err
}

// refcountOf returns the refcount of [addr, addr+size), if tracked. Test
// helper.
func (m *Manager) refcountOf(addr, size uintptr) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.regions.Get(interval.FromSpan(addr, size))
	if !ok {
		return 0, false
	}
	return info.refcount, true
}
