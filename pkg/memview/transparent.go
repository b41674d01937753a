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

// A Transparent is a view that either owns its buffer or borrows memory it
// does not own, and can promote a borrow into an owned copy. Owned memory
// is released on Release; borrowed memory is only deregistered.
type Transparent struct {
	Allocated
	owned bool
}

// NewTransparent returns a null, non-owning view.
func NewTransparent() *Transparent {
	t := &Transparent{}
	t.id = viewIDs.Add(1)
	return t
}

// NewTransparentSize returns an owning view over a new zero-filled buffer.
func NewTransparentSize(size uintptr) (*Transparent, error) {
	t := NewTransparent()
	if err := t.Allocate(size); err != nil {
		return nil, err
	}
	return t, nil
}

// TransparentAt returns a view borrowing [addr, addr+size). With copy set,
// the bytes are copied into an owned buffer instead.
func TransparentAt(addr, size uintptr, copyData bool) (*Transparent, error) {
	t := NewTransparent()
	if copyData {
		if err := t.LoadData(byteSlice(addr, size)); err != nil {
			return nil, err
		}
		return t, nil
	}
	t.View.SetMemory(addr, size)
	return t, nil
}

// TransparentOf is TransparentAt over the bytes of b.
func TransparentOf(b []byte, copyData bool) (*Transparent, error) {
	if len(b) == 0 {
		return NewTransparent(), nil
	}
	return TransparentAt(sliceAddr(b), uintptr(len(b)), copyData)
}

// IsAllocated returns true if the view owns its buffer.
func (t *Transparent) IsAllocated() bool {
	return t.owned
}

// SetMemory rebinds the view to borrowed memory, releasing any owned
// buffer first.
func (t *Transparent) SetMemory(addr, size uintptr) error {
	if t.owned {
		if err := t.Deallocate(); err != nil {
			return err
		}
	}
	t.owned = false
	t.View.SetMemory(addr, size)
	return nil
}

// Allocate replaces the view's memory with a new owned zero-filled
// buffer. A borrow is dropped; an owned buffer is deallocated.
func (t *Transparent) Allocate(size uintptr) error {
	if !t.owned && t.addr != 0 {
		t.View.SetMemory(0, 0)
	}
	if err := t.Allocated.Allocate(size); err != nil {
		return err
	}
	t.owned = true
	return nil
}

// Deallocate releases the owned buffer.
func (t *Transparent) Deallocate() error {
	err := t.Allocated.Deallocate()
	t.owned = false
	return err
}

// Reallocate resizes the owned buffer, or allocates one if the view owns
// nothing yet.
func (t *Transparent) Reallocate(size uintptr) error {
	if !t.owned {
		return t.Allocate(size)
	}
	if err := t.Allocated.Reallocate(size); err != nil {
		return err
	}
	t.owned = true
	return nil
}

// LoadData replaces the view's memory with an owned copy of data.
func (t *Transparent) LoadData(data []byte) error {
	if err := t.Allocate(uintptr(len(data))); err != nil {
		return err
	}
	return t.Write(0, data)
}

// Append grows the buffer and writes data at the old end. Appending to a
// borrow fails with *NotAllocatedError.
func (t *Transparent) Append(data []byte) error {
	if t.addr != 0 && !t.owned {
		return &NotAllocatedError{}
	}
	if err := t.Allocated.Append(data); err != nil {
		return err
	}
	t.owned = true
	return nil
}

// Insert grows the buffer and writes data at offset. Inserting into a
// borrow fails with *NotAllocatedError.
func (t *Transparent) Insert(offset uintptr, data []byte) error {
	if t.addr != 0 && !t.owned {
		return &NotAllocatedError{}
	}
	if err := t.Allocated.Insert(offset, data); err != nil {
		return err
	}
	t.owned = true
	return nil
}

// Erase removes n bytes at offset, shrinking the owned buffer. Erasing
// from a borrow fails with *NotAllocatedError.
func (t *Transparent) Erase(offset, n uintptr) error {
	if t.addr != 0 && !t.owned {
		return &NotAllocatedError{}
	}
	return t.Allocated.Erase(offset, n)
}

// SplitOff shrinks the owned buffer to mid bytes and returns an owning
// view holding the cut-off bytes. Splitting a borrow fails with
// *NotAllocatedError.
func (t *Transparent) SplitOff(mid uintptr) (*Transparent, error) {
	if !t.owned {
		return nil, &NotAllocatedError{}
	}
	if mid >= t.size {
		return nil, &OutOfBoundsError{Given: mid, Expected: t.size}
	}
	cut, err := t.Read(mid, t.size-mid)
	if err != nil {
		return nil, err
	}
	split := NewTransparent()
	if err := split.LoadData(cut); err != nil {
		return nil, err
	}
	if err := t.Reallocate(mid); err != nil {
		split.Release()
		return nil, err
	}
	return split, nil
}

// Consume promotes a borrow into an owned copy of the same bytes. A view
// that already owns its buffer is left alone.
func (t *Transparent) Consume() error {
	if t.owned || t.addr == 0 {
		return nil
	}
	data, err := t.Read(0, t.size)
	if err != nil {
		return err
	}
	return t.LoadData(data)
}

// Release deallocates an owned buffer, or deregisters a borrow.
func (t *Transparent) Release() {
	if t.owned {
		t.Deallocate()
		return
	}
	if t.addr != 0 {
		t.View.Release()
		t.lock()
		t.addr = 0
		t.size = 0
		t.unlock()
	}
}
