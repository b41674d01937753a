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

// Package memview provides validated byte-level views over raw memory.
//
// A View is a tracked (pointer, length) handle registered with the
// memtrack registry. Dereferences are validation-gated: a view whose
// backing region was invalidated or truncated fails with a typed error
// instead of touching freed memory. Owning containers (Allocated,
// Transparent) and element-typed façades (Pointer, Array, Variadic) build
// on the same base.
//
// Individual views are not safe for concurrent mutation; the registry
// serializes views against concurrent relocations.
package memview

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	atomicfile "github.com/natefinch/atomic"

	"github.com/frank2/mandlebrot/pkg/interval"
	"github.com/frank2/mandlebrot/pkg/memtrack"
)

// A View is a tracked handle over [addr, addr+size).
//
// The zero View is a null view: Ptr returns 0 with no error, and every
// other offset-taking operation fails.
type View struct {
	// addr is the base address; 0 means null. Written only by the owner
	// or, under the view lock, by the registry during a move.
	addr uintptr

	// size is the length in bytes.
	size uintptr

	// id is the registry identity, stable for the view's lifetime.
	id uint64
}

var viewIDs atomic.Uint64

// NewView returns a view over [addr, addr+size), declared with the
// registry unless addr is 0. The caller guarantees the memory stays mapped
// until the view is released or invalidated.
func NewView(addr, size uintptr) *View {
	v := &View{addr: addr, size: size, id: viewIDs.Add(1)}
	if addr != 0 {
		memtrack.Tracker().Declare(v)
	}
	return v
}

// ViewOf returns a view over the bytes of b. The caller must keep b
// reachable for the lifetime of the view.
func ViewOf(b []byte) *View {
	if len(b) == 0 {
		return NewView(0, 0)
	}
	return NewView(sliceAddr(b), uintptr(len(b)))
}

// ID implements memtrack.Region.ID.
func (v *View) ID() uint64 {
	return v.id
}

// Span implements memtrack.Region.Span.
func (v *View) Span() interval.Interval {
	return interval.FromSpan(v.addr, v.size)
}

// Relocate implements memtrack.Region.Relocate. Only the registry calls
// it, during a move, with v's view lock held.
func (v *View) Relocate(addr, size uintptr) {
	v.addr = addr
	v.size = size
}

// Size returns the view's length in bytes.
func (v *View) Size() uintptr {
	return v.size
}

// IsEmpty returns true if the view has zero length.
func (v *View) IsEmpty() bool {
	return v.size == 0
}

// IsNull returns true if the view's pointer is null.
func (v *View) IsNull() bool {
	return v.addr == 0
}

// EOB returns the address one past the end of the view.
func (v *View) EOB() uintptr {
	return v.addr + v.size
}

// IsValid returns true if some tracked interval contains the view's span.
func (v *View) IsValid() bool {
	return memtrack.Tracker().ContainsInterval(v.addr, v.size)
}

// IsDeclared returns true if the view's exact span is tracked.
func (v *View) IsDeclared() bool {
	return memtrack.Tracker().HasInterval(v.addr, v.size)
}

// Parent returns the parent interval of the view's span, if any.
func (v *View) Parent() (interval.Interval, bool) {
	return memtrack.Tracker().ParentOf(v)
}

func (v *View) lock()   { memtrack.Tracker().Lock(v) }
func (v *View) unlock() { memtrack.Tracker().Unlock(v) }

// Ptr returns the raw address at offset. A null view returns 0 with no
// error. A view whose span is no longer tracked fails with
// *InvalidPointerError; an offset at or past the end fails with
// *OutOfBoundsError.
//
// Validity is checked against the registry with the view lock released,
// then the snapshot is rechecked: if a concurrent move rewrote the view in
// between, the check runs again against the new span.
func (v *View) Ptr(offset uintptr) (uintptr, error) {
	for {
		v.lock()
		addr, size := v.addr, v.size
		v.unlock()

		if addr == 0 {
			return 0, nil
		}
		if !memtrack.Tracker().ContainsInterval(addr, size) {
			return 0, &InvalidPointerError{Addr: addr, Size: size}
		}
		if offset >= size {
			return 0, &OutOfBoundsError{Given: offset, Expected: size}
		}

		v.lock()
		ok := v.addr == addr && v.size == size
		v.unlock()
		if ok {
			return addr + offset, nil
		}
	}
}

// Bytes returns the view's whole span as a byte slice aliasing the tracked
// memory. A null view fails with *NullPointerError; an untracked span
// fails with *InvalidPointerError. An empty view returns a nil slice.
//
// The slice is only as durable as the view: a move or invalidation makes
// it dangle.
func (v *View) Bytes() ([]byte, error) {
	for {
		v.lock()
		addr, size := v.addr, v.size
		v.unlock()

		if addr == 0 {
			return nil, &NullPointerError{}
		}
		if !memtrack.Tracker().ContainsInterval(addr, size) {
			return nil, &InvalidPointerError{Addr: addr, Size: size}
		}

		v.lock()
		ok := v.addr == addr && v.size == size
		v.unlock()
		if ok {
			if size == 0 {
				return nil, nil
			}
			return byteSlice(addr, size), nil
		}
	}
}

// Read copies n bytes starting at offset out of the view.
func (v *View) Read(offset, n uintptr) ([]byte, error) {
	if offset+n > v.size {
		return nil, &OutOfBoundsError{Given: offset + n, Expected: v.size}
	}
	b, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b[offset:offset+n])
	return out, nil
}

// Write copies data into the view starting at offset.
func (v *View) Write(offset uintptr, data []byte) error {
	if offset+uintptr(len(data)) > v.size {
		return &OutOfBoundsError{Given: offset + uintptr(len(data)), Expected: v.size}
	}
	b, err := v.Bytes()
	if err != nil {
		return err
	}
	copy(b[offset:], data)
	return nil
}

// ReadAt implements io.ReaderAt over the view's span.
func (v *View) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || uintptr(off) > v.size {
		return 0, &OutOfBoundsError{Given: uintptr(off), Expected: v.size}
	}
	b, err := v.Bytes()
	if err != nil {
		return 0, err
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt over the view's span. Writes crossing the
// end fail without writing.
func (v *View) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, &OutOfBoundsError{Given: uintptr(off), Expected: v.size}
	}
	if err := v.Write(uintptr(off), p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// StartWith writes data at the beginning of the view.
func (v *View) StartWith(data []byte) error {
	return v.Write(0, data)
}

// EndWith writes data flush against the end of the view.
func (v *View) EndWith(data []byte) error {
	n := uintptr(len(data))
	if n > v.size {
		return &OutOfBoundsError{Given: n, Expected: v.size}
	}
	return v.Write(v.size-n, data)
}

// Subsection returns a child view over [offset, offset+size), declared
// beneath this view. A subsection spanning the whole view shares the
// parent's record.
func (v *View) Subsection(offset, size uintptr) (*View, error) {
	if offset+size > v.size {
		return nil, &InsufficientSizeError{Given: offset + size, Expected: v.size}
	}
	addr, err := v.Ptr(offset)
	if err != nil {
		return nil, err
	}
	if addr == 0 {
		return nil, &NullPointerError{}
	}
	child := NewView(addr, size)
	memtrack.Tracker().DeclareChild(v.Span(), child)
	return child, nil
}

// SplitAt returns two subsections covering [0, mid) and [mid, size).
func (v *View) SplitAt(mid uintptr) (*View, *View, error) {
	if mid >= v.size {
		return nil, nil, &OutOfBoundsError{Given: mid, Expected: v.size}
	}
	left, err := v.Subsection(0, mid)
	if err != nil {
		return nil, nil, err
	}
	right, err := v.Subsection(mid, v.size-mid)
	if err != nil {
		left.Release()
		return nil, nil, err
	}
	return left, right, nil
}

// SetMemory rebinds the view to [addr, addr+size): the old span is
// destroyed, the fields are rewritten under the view lock, and the new
// span is declared unless addr is 0.
func (v *View) SetMemory(addr, size uintptr) {
	memtrack.Tracker().Destroy(v)
	v.lock()
	v.addr = addr
	v.size = size
	v.unlock()
	if addr != 0 {
		memtrack.Tracker().Declare(v)
	}
}

// Release destroys the view's registration. Releasing a view that was
// already invalidated is a no-op.
func (v *View) Release() {
	memtrack.Tracker().Destroy(v)
}

// AlignsWith returns true if the view's size and n divide evenly, in
// either direction.
func (v *View) AlignsWith(n uintptr) bool {
	if v.size == 0 || n == 0 {
		return false
	}
	smaller, bigger := v.size, n
	if smaller > bigger {
		smaller, bigger = bigger, smaller
	}
	return bigger%smaller == 0
}

// ValidateRange returns true if [offset, offset+size) lies within the
// view.
func (v *View) ValidateRange(offset, size uintptr) bool {
	return v.Span().IsSupersetOf(interval.Interval{
		Start: v.addr + offset,
		End:   v.addr + offset + size,
	})
}

// Search returns the byte offset of every occurrence of needle in the
// view.
func (v *View) Search(needle []byte) ([]uintptr, error) {
	b, err := v.Bytes()
	if err != nil {
		return nil, err
	}
	return kmpSearch(b, needle), nil
}

// ContainsBytes returns true if needle occurs anywhere in the view.
func (v *View) ContainsBytes(needle []byte) (bool, error) {
	hits, err := v.Search(needle)
	if err != nil {
		return false, err
	}
	return len(hits) > 0, nil
}

// ToHex returns the view's bytes as a hex string.
func (v *View) ToHex(uppercase bool) (string, error) {
	b, err := v.Bytes()
	if err != nil {
		return "", err
	}
	s := hex.EncodeToString(b)
	if uppercase {
		s = strings.ToUpper(s)
	}
	return s, nil
}

// Save writes the view's byte range verbatim to path. The write is
// atomic: path either keeps its old contents or holds the full span.
func (v *View) Save(path string) error {
	b, err := v.Bytes()
	if err != nil {
		return err
	}
	return atomicfile.WriteFile(path, bytes.NewReader(b))
}

// String implements fmt.Stringer.
func (v *View) String() string {
	return fmt.Sprintf("view %v", v.Span())
}
