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

// An Array is an element-indexed typed view over a run of Ts. Offsets and
// lengths in its API are in elements; the underlying byte span must stay a
// whole number of elements.
type Array[T any] struct {
	Transparent
}

// NewArray returns an owning array-view over n zeroed Ts.
func NewArray[T any](n uintptr) (*Array[T], error) {
	a := &Array[T]{}
	a.id = viewIDs.Add(1)
	if err := a.Transparent.Allocate(n * sizeOf[T]()); err != nil {
		return nil, err
	}
	return a, nil
}

// ArrayAt returns an array-view borrowing n Ts at addr.
func ArrayAt[T any](addr, n uintptr) *Array[T] {
	a := &Array[T]{}
	a.id = viewIDs.Add(1)
	a.View.SetMemory(addr, n*sizeOf[T]())
	return a
}

// ArrayOf returns an array-view over the elements of s, borrowing them or
// copying them into an owned buffer. A borrowing caller must keep s
// reachable for the lifetime of the view.
func ArrayOf[T any](s []T, copyData bool) (*Array[T], error) {
	a := &Array[T]{}
	a.id = viewIDs.Add(1)
	if copyData {
		if err := a.LoadSlice(s); err != nil {
			return nil, err
		}
		return a, nil
	}
	if len(s) == 0 {
		return a, nil
	}
	a.View.SetMemory(sliceElemAddr(s), uintptr(len(s))*sizeOf[T]())
	return a, nil
}

// ArrayFromView returns an array-view borrowing v's whole span. The span
// must be a whole number of elements; otherwise *BadAlignmentError.
func ArrayFromView[T any](v *View) (*Array[T], error) {
	unit := sizeOf[T]()
	if v.Size()%unit != 0 {
		return nil, &BadAlignmentError{Given: v.Size(), Expected: unit}
	}
	addr, err := v.Ptr(0)
	if err != nil {
		return nil, err
	}
	if addr == 0 {
		return nil, &NullPointerError{}
	}
	return ArrayAt[T](addr, v.Size()/unit), nil
}

// Len returns the number of elements.
func (a *Array[T]) Len() uintptr {
	return a.size / sizeOf[T]()
}

// At reads element i.
func (a *Array[T]) At(i uintptr) (T, error) {
	var zero T
	addr, err := a.elem(i)
	if err != nil {
		return zero, err
	}
	return deref[T](addr), nil
}

// SetAt writes element i.
func (a *Array[T]) SetAt(i uintptr, val T) error {
	addr, err := a.elem(i)
	if err != nil {
		return err
	}
	store(addr, val)
	return nil
}

func (a *Array[T]) elem(i uintptr) (uintptr, error) {
	addr, err := a.Ptr(i * sizeOf[T]())
	if err != nil {
		return 0, err
	}
	if addr == 0 {
		return 0, &NullPointerError{}
	}
	return addr, nil
}

// Subsection returns a child array-view over n elements starting at
// element offset.
func (a *Array[T]) Subsection(offset, n uintptr) (*Array[T], error) {
	unit := sizeOf[T]()
	sub, err := a.View.Subsection(offset*unit, n*unit)
	if err != nil {
		return nil, err
	}
	// Register a fresh typed handle at the child interval; it shares the
	// child's record, so the transient handle can be dropped.
	out := ArrayAt[T](sub.addr, n)
	sub.Release()
	return out, nil
}

// Find returns the element index of every element-aligned occurrence of
// needle; unaligned byte-level hits are discarded.
func (a *Array[T]) Find(needle []T) ([]uintptr, error) {
	unit := sizeOf[T]()
	hits, err := a.Search(sliceBytes(needle))
	if err != nil {
		return nil, err
	}
	var aligned []uintptr
	for _, h := range hits {
		if h%unit == 0 {
			aligned = append(aligned, h/unit)
		}
	}
	return aligned, nil
}

// ContainsValue returns true if val occurs element-aligned in the array.
func (a *Array[T]) ContainsValue(val T) (bool, error) {
	hits, err := a.Find([]T{val})
	if err != nil {
		return false, err
	}
	return len(hits) > 0, nil
}

// ToSlice copies the elements out into a new slice.
func (a *Array[T]) ToSlice() ([]T, error) {
	n := a.Len()
	out := make([]T, 0, n)
	for i := uintptr(0); i < n; i++ {
		val, err := a.At(i)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

// LoadSlice replaces the view's memory with an owned copy of s.
func (a *Array[T]) LoadSlice(s []T) error {
	return a.LoadData(sliceBytes(s))
}

// Front reads the first element.
func (a *Array[T]) Front() (T, error) {
	return a.At(0)
}

// Back reads the last element.
func (a *Array[T]) Back() (T, error) {
	var zero T
	if a.Len() == 0 {
		return zero, &ZeroSizeError{}
	}
	return a.At(a.Len() - 1)
}

// Swap exchanges elements i and j.
func (a *Array[T]) Swap(i, j uintptr) error {
	if i == j {
		return nil
	}
	vi, err := a.At(i)
	if err != nil {
		return err
	}
	vj, err := a.At(j)
	if err != nil {
		return err
	}
	if err := a.SetAt(i, vj); err != nil {
		return err
	}
	return a.SetAt(j, vi)
}

// Reverse reverses the elements in place.
func (a *Array[T]) Reverse() error {
	n := a.Len()
	for i := uintptr(0); i < n/2; i++ {
		if err := a.Swap(i, n-i-1); err != nil {
			return err
		}
	}
	return nil
}

// PushBack appends val, growing the owned buffer by one element.
func (a *Array[T]) PushBack(val T) error {
	return a.Append(valueBytes(&val))
}

// PushFront inserts val at the front, growing the owned buffer by one
// element.
func (a *Array[T]) PushFront(val T) error {
	return a.Insert(0, valueBytes(&val))
}

// PopBack removes and returns the last element. Popping the only element
// leaves the buffer unshrinkable and fails with *ZeroSizeError.
func (a *Array[T]) PopBack() (T, error) {
	var zero T
	n := a.Len()
	if n == 0 {
		return zero, &ZeroSizeError{}
	}
	val, err := a.At(n - 1)
	if err != nil {
		return zero, err
	}
	if err := a.Erase((n-1)*sizeOf[T](), sizeOf[T]()); err != nil {
		return zero, err
	}
	return val, nil
}

// PopFront removes and returns the first element, with the same caveats
// as PopBack.
func (a *Array[T]) PopFront() (T, error) {
	var zero T
	if a.Len() == 0 {
		return zero, &ZeroSizeError{}
	}
	val, err := a.At(0)
	if err != nil {
		return zero, err
	}
	if err := a.Erase(0, sizeOf[T]()); err != nil {
		return zero, err
	}
	return val, nil
}
