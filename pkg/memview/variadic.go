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

// A Variadic is a view over a header T followed by a trailing array of Us
// beginning at a fixed byte offset into the view, the usual shape of
// length-prefixed wire and file structures. The view must always be at
// least as large as the header.
type Variadic[T, U any] struct {
	Pointer[T]

	// trailingOffset is the byte offset of the first trailing element.
	trailingOffset uintptr
}

// NewVariadic returns an owning variadic view of size bytes with the
// trailing array at trailingOffset. size must cover the header.
func NewVariadic[T, U any](trailingOffset, size uintptr) (*Variadic[T, U], error) {
	if size < sizeOf[T]() {
		return nil, &InsufficientSizeError{Given: size, Expected: sizeOf[T]()}
	}
	v := &Variadic[T, U]{trailingOffset: trailingOffset}
	v.id = viewIDs.Add(1)
	if err := v.Transparent.Allocate(size); err != nil {
		return nil, err
	}
	return v, nil
}

// VariadicAt returns a variadic view borrowing size bytes at addr.
func VariadicAt[T, U any](trailingOffset, addr, size uintptr) (*Variadic[T, U], error) {
	if size < sizeOf[T]() {
		return nil, &InsufficientSizeError{Given: size, Expected: sizeOf[T]()}
	}
	v := &Variadic[T, U]{trailingOffset: trailingOffset}
	v.id = viewIDs.Add(1)
	v.View.SetMemory(addr, size)
	return v, nil
}

// VariadicFromView returns a variadic view borrowing size bytes at offset
// bytes into view.
func VariadicFromView[T, U any](trailingOffset uintptr, view *View, offset, size uintptr) (*Variadic[T, U], error) {
	if offset+size > view.Size() {
		return nil, &InsufficientSizeError{Given: offset + size, Expected: view.Size()}
	}
	addr, err := view.Ptr(offset)
	if err != nil {
		return nil, err
	}
	if addr == 0 {
		return nil, &NullPointerError{}
	}
	return VariadicAt[T, U](trailingOffset, addr, size)
}

// TrailingOffset returns the byte offset of the trailing array.
func (v *Variadic[T, U]) TrailingOffset() uintptr {
	return v.trailingOffset
}

// VariadicLen returns the number of whole trailing elements the view
// holds.
func (v *Variadic[T, U]) VariadicLen() uintptr {
	if v.size < v.trailingOffset {
		return 0
	}
	return (v.size - v.trailingOffset) / sizeOf[U]()
}

// VariadicAt reads trailing element i.
func (v *Variadic[T, U]) VariadicAt(i uintptr) (U, error) {
	var zero U
	addr, err := v.variadicElem(i)
	if err != nil {
		return zero, err
	}
	return deref[U](addr), nil
}

// SetVariadicAt writes trailing element i.
func (v *Variadic[T, U]) SetVariadicAt(i uintptr, val U) error {
	addr, err := v.variadicElem(i)
	if err != nil {
		return err
	}
	store(addr, val)
	return nil
}

func (v *Variadic[T, U]) variadicElem(i uintptr) (uintptr, error) {
	offset := v.trailingOffset + i*sizeOf[U]()
	if i >= v.VariadicLen() {
		return 0, &OutOfBoundsError{Given: offset, Expected: v.size}
	}
	addr, err := v.Ptr(offset)
	if err != nil {
		return 0, err
	}
	if addr == 0 {
		return 0, &NullPointerError{}
	}
	return addr, nil
}

// VariadicArray returns a borrowing array-view over the trailing
// elements.
func (v *Variadic[T, U]) VariadicArray() (*Array[U], error) {
	if v.VariadicLen() == 0 {
		return nil, &InsufficientSizeError{Given: v.size, Expected: v.trailingOffset + sizeOf[U]()}
	}
	addr, err := v.Ptr(v.trailingOffset)
	if err != nil {
		return nil, err
	}
	if addr == 0 {
		return nil, &NullPointerError{}
	}
	return ArrayAt[U](addr, v.VariadicLen()), nil
}

// Allocate replaces the view's memory with an owned buffer of size bytes,
// which must cover the header.
func (v *Variadic[T, U]) Allocate(size uintptr) error {
	if size < sizeOf[T]() {
		return &InsufficientSizeError{Given: size, Expected: sizeOf[T]()}
	}
	return v.Transparent.Allocate(size)
}

// Reallocate resizes the owned buffer; the new size must still cover the
// header.
func (v *Variadic[T, U]) Reallocate(size uintptr) error {
	if size < sizeOf[T]() {
		return &InsufficientSizeError{Given: size, Expected: sizeOf[T]()}
	}
	return v.Transparent.Reallocate(size)
}
