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

// A Pointer is a single-element typed view over a T. It either borrows
// the element's memory or owns an allocated copy. All element access is
// validation-gated through the underlying view.
type Pointer[T any] struct {
	Transparent
}

// NewPointer returns an owning pointer-view over a new zero T.
func NewPointer[T any]() (*Pointer[T], error) {
	p := &Pointer[T]{}
	p.id = viewIDs.Add(1)
	if err := p.Transparent.Allocate(sizeOf[T]()); err != nil {
		return nil, err
	}
	return p, nil
}

// PointerAt returns a pointer-view borrowing the T at addr.
func PointerAt[T any](addr uintptr) *Pointer[T] {
	p := &Pointer[T]{}
	p.id = viewIDs.Add(1)
	p.View.SetMemory(addr, sizeOf[T]())
	return p
}

// PointerTo returns a pointer-view borrowing *val. The caller must keep
// val reachable for the lifetime of the view, and val's address must be
// stable: heap or off-heap memory, not a stack variable.
func PointerTo[T any](val *T) *Pointer[T] {
	return PointerAt[T](addrOf(val))
}

// PointerFromView returns a pointer-view borrowing the T at offset bytes
// into v. The view must be large enough to hold a T at that offset.
func PointerFromView[T any](v *View, offset uintptr) (*Pointer[T], error) {
	n := sizeOf[T]()
	if n > v.Size() {
		return nil, &InsufficientSizeError{Given: n, Expected: v.Size()}
	}
	if offset+n > v.Size() {
		return nil, &OutOfBoundsError{Given: offset + n, Expected: v.Size()}
	}
	addr, err := v.Ptr(offset)
	if err != nil {
		return nil, err
	}
	if addr == 0 {
		return nil, &NullPointerError{}
	}
	return PointerAt[T](addr), nil
}

// Deref reads the pointed-to value.
func (p *Pointer[T]) Deref() (T, error) {
	var zero T
	addr, err := p.Ptr(0)
	if err != nil {
		return zero, err
	}
	if addr == 0 {
		return zero, &NullPointerError{}
	}
	return deref[T](addr), nil
}

// Set writes the pointed-to value.
func (p *Pointer[T]) Set(val T) error {
	addr, err := p.Ptr(0)
	if err != nil {
		return err
	}
	if addr == 0 {
		return &NullPointerError{}
	}
	store(addr, val)
	return nil
}

// Add returns a borrowing pointer-view offset by n elements; n may be
// negative. Arithmetic on an owning pointer fails with
// *PointerIsAllocatedError, since the neighboring elements of an owned
// buffer are not the caller's.
func (p *Pointer[T]) Add(n int) (*Pointer[T], error) {
	if p.IsAllocated() {
		return nil, &PointerIsAllocatedError{}
	}
	return PointerAt[T](p.addr + uintptr(n)*sizeOf[T]()), nil
}

// Sub is Add(-n).
func (p *Pointer[T]) Sub(n int) (*Pointer[T], error) {
	return p.Add(-n)
}

// At reads the value n elements away, through a transient borrow.
func (p *Pointer[T]) At(n int) (T, error) {
	var zero T
	q, err := p.Add(n)
	if err != nil {
		return zero, err
	}
	defer q.Release()
	return q.Deref()
}

// LoadValue replaces the view's memory with an owned copy of val.
func (p *Pointer[T]) LoadValue(val T) error {
	return p.LoadData(valueBytes(&val))
}

// RecastPointer returns a pointer-view reinterpreting p's element as a U.
// The element must be at least as large as a U.
func RecastPointer[U, T any](p *Pointer[T]) (*Pointer[U], error) {
	n := sizeOf[U]()
	if n > p.Size() {
		return nil, &InsufficientSizeError{Given: n, Expected: p.Size()}
	}
	addr, err := p.Ptr(0)
	if err != nil {
		return nil, err
	}
	if addr == 0 {
		return nil, &NullPointerError{}
	}
	return PointerAt[U](addr), nil
}
