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

package memview

import (
	"fmt"
	"os"

	"github.com/frank2/mandlebrot/pkg/memtrack"
	"github.com/frank2/mandlebrot/pkg/memutil"
)

// An Allocated is a view that owns its backing buffer. Buffers come from
// an Allocator, mmap-backed by default, so their addresses are outside the
// Go heap and survive garbage collection unmoved.
//
// Reallocation relocates the tracked region: every subsection declared
// beneath the buffer is translated to the new base, and subsections that
// fall outside a shrunken buffer are invalidated.
type Allocated struct {
	View
	alloc memutil.Allocator
}

// NewAllocated returns an owning view over a new zero-filled buffer of
// size bytes.
func NewAllocated(size uintptr) (*Allocated, error) {
	return NewAllocatedWith(memutil.MmapAllocator{}, size)
}

// NewAllocatedWith is NewAllocated with an explicit allocator.
func NewAllocatedWith(alloc memutil.Allocator, size uintptr) (*Allocated, error) {
	a := &Allocated{alloc: alloc}
	a.id = viewIDs.Add(1)
	if err := a.Allocate(size); err != nil {
		return nil, err
	}
	return a, nil
}

// LoadData returns an owning view holding a copy of data.
func LoadData(data []byte) (*Allocated, error) {
	a, err := NewAllocated(uintptr(len(data)))
	if err != nil {
		return nil, err
	}
	if err := a.Write(0, data); err != nil {
		a.Deallocate()
		return nil, err
	}
	return a, nil
}

// LoadFile returns an owning view holding the contents of path, read
// verbatim.
func LoadFile(path string) (*Allocated, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return LoadData(data)
}

// Allocate replaces the buffer with a new zero-filled one of size bytes.
// An existing buffer is deallocated first.
func (a *Allocated) Allocate(size uintptr) error {
	if size == 0 {
		return &ZeroSizeError{}
	}
	if a.addr != 0 {
		if err := a.Deallocate(); err != nil {
			return err
		}
	}
	addr, err := a.allocator().Allocate(size)
	if err != nil {
		return err
	}
	clear(byteSlice(addr, size))
	a.SetMemory(addr, size)
	return nil
}

// Deallocate invalidates the tracked region, scrubs the buffer, and
// returns it to the allocator. Subsections beneath the buffer become
// dangling.
func (a *Allocated) Deallocate() error {
	if a.addr == 0 {
		return &NullPointerError{}
	}
	addr, size := a.addr, a.size
	memtrack.Tracker().Invalidate(a)
	clear(byteSlice(addr, size))
	err := a.allocator().Free(addr, size)
	a.lock()
	a.addr = 0
	a.size = 0
	a.unlock()
	return err
}

// Reallocate resizes the buffer to size bytes, preserving the leading
// min(old, new) bytes, and moves the tracked region so that every
// surviving subsection follows the buffer to its new base.
func (a *Allocated) Reallocate(size uintptr) error {
	if size == 0 {
		return &ZeroSizeError{}
	}
	if a.addr == 0 {
		return a.Allocate(size)
	}
	oldAddr, oldSize := a.addr, a.size
	newAddr, err := a.allocator().Allocate(size)
	if err != nil {
		return err
	}
	newBuf := byteSlice(newAddr, size)
	clear(newBuf)
	copyLen := oldSize
	if size < copyLen {
		copyLen = size
	}
	copy(newBuf, byteSlice(oldAddr, copyLen))

	memtrack.Tracker().Move(a, newAddr, size)

	clear(byteSlice(oldAddr, oldSize))
	return a.allocator().Free(oldAddr, oldSize)
}

// Append grows the buffer by len(data) bytes and writes data at the old
// end.
func (a *Allocated) Append(data []byte) error {
	old := a.size
	if err := a.Reallocate(old + uintptr(len(data))); err != nil {
		return err
	}
	return a.Write(old, data)
}

// Insert grows the buffer by len(data) bytes, writing data at offset and
// shifting the bytes that followed it.
func (a *Allocated) Insert(offset uintptr, data []byte) error {
	if offset > a.size {
		return &OutOfBoundsError{Given: offset, Expected: a.size}
	}
	if offset == a.size {
		return a.Append(data)
	}
	tail, err := a.Read(offset, a.size-offset)
	if err != nil {
		return err
	}
	if err := a.Reallocate(a.size + uintptr(len(data))); err != nil {
		return err
	}
	if err := a.Write(offset, data); err != nil {
		return err
	}
	return a.Write(offset+uintptr(len(data)), tail)
}

// Erase removes n bytes at offset, shifting the bytes that followed them
// and shrinking the buffer. Erasing the whole buffer fails with
// *ZeroSizeError; use Deallocate.
func (a *Allocated) Erase(offset, n uintptr) error {
	end := offset + n
	if end > a.size {
		return &OutOfBoundsError{Given: end, Expected: a.size}
	}
	tail, err := a.Read(end, a.size-end)
	if err != nil {
		return err
	}
	if err := a.Reallocate(a.size - n); err != nil {
		return err
	}
	return a.Write(offset, tail)
}

// SplitOff shrinks the buffer to mid bytes and returns a new owning view
// holding a copy of the bytes that were cut off.
func (a *Allocated) SplitOff(mid uintptr) (*Allocated, error) {
	if mid >= a.size {
		return nil, &OutOfBoundsError{Given: mid, Expected: a.size}
	}
	cut, err := a.Read(mid, a.size-mid)
	if err != nil {
		return nil, err
	}
	split, err := LoadData(cut)
	if err != nil {
		return nil, err
	}
	if err := a.Reallocate(mid); err != nil {
		split.Deallocate()
		return nil, err
	}
	return split, nil
}

// Release deallocates the buffer, if any.
func (a *Allocated) Release() {
	if a.addr != 0 {
		a.Deallocate()
	}
}

func (a *Allocated) allocator() memutil.Allocator {
	if a.alloc == nil {
		a.alloc = memutil.MmapAllocator{}
	}
	return a.alloc
}
