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

import "fmt"

// NullPointerError indicates a dereference of a view whose stored pointer
// is null.
type NullPointerError struct{}

// Error implements error.Error.
func (*NullPointerError) Error() string {
	return "null pointer: a pointer was null when it shouldn't be"
}

// InvalidPointerError indicates a dereference of a view whose interval is
// no longer tracked: it was never declared, or it was invalidated before
// use.
type InvalidPointerError struct {
	// Addr is the view's stored address.
	Addr uintptr

	// Size is the view's stored size.
	Size uintptr
}

// Error implements error.Error.
func (e *InvalidPointerError) Error() string {
	return fmt.Sprintf("invalid pointer: %#x with size %d was either never valid or was invalidated before use", e.Addr, e.Size)
}

// OutOfBoundsError indicates an access past the end of a view.
type OutOfBoundsError struct {
	// Given is the offending boundary.
	Given uintptr

	// Expected is the boundary that must not be crossed.
	Expected uintptr
}

// Error implements error.Error.
func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("out of bounds: the given boundary is %d, but the expected boundary is %d", e.Given, e.Expected)
}

// InsufficientSizeError indicates a view too small for a requested cast or
// subsection.
type InsufficientSizeError struct {
	// Given is the size that was requested.
	Given uintptr

	// Expected is the size that was available.
	Expected uintptr
}

// Error implements error.Error.
func (e *InsufficientSizeError) Error() string {
	return fmt.Sprintf("insufficient size: the given size is %d, but the expected size is %d", e.Given, e.Expected)
}

// BadAlignmentError indicates an element-sized operation whose byte span is
// not a multiple of the element unit.
type BadAlignmentError struct {
	// Given is the offending offset or size.
	Given uintptr

	// Expected is the element unit.
	Expected uintptr
}

// Error implements error.Error.
func (e *BadAlignmentError) Error() string {
	return fmt.Sprintf("bad alignment: offset/size %d did not align with the expected boundary %d", e.Given, e.Expected)
}

// ZeroSizeError indicates an allocation of size zero.
type ZeroSizeError struct{}

// Error implements error.Error.
func (*ZeroSizeError) Error() string {
	return "zero size: size was zero when expecting a non-zero value"
}

// NotAllocatedError indicates a mutation requiring ownership on a
// non-owning view.
type NotAllocatedError struct{}

// Error implements error.Error.
func (*NotAllocatedError) Error() string {
	return "not allocated: the operation couldn't be completed because the memory object is not allocated"
}

// PointerIsAllocatedError indicates pointer arithmetic on an owning
// pointer-view.
type PointerIsAllocatedError struct{}

// Error implements error.Error.
func (*PointerIsAllocatedError) Error() string {
	return "pointer is allocated: the arithmetic operation could not be completed because the pointer is allocated"
}
