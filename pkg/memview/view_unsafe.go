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
	"unsafe"
)

// byteSlice returns a slice aliasing [addr, addr+size).
func byteSlice(addr, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
}

// sliceAddr returns the address of b's first element.
func sliceAddr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

// deref reads a T at addr.
func deref[T any](addr uintptr) T {
	return *(*T)(unsafe.Pointer(addr))
}

// store writes a T at addr.
func store[T any](addr uintptr, val T) {
	*(*T)(unsafe.Pointer(addr)) = val
}

// addrOf returns the address of *val.
func addrOf[T any](val *T) uintptr {
	return uintptr(unsafe.Pointer(val))
}

// sizeOf returns the byte size of T.
func sizeOf[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

// valueBytes returns a slice aliasing val's representation. The caller
// must keep val reachable while the slice is in use.
func valueBytes[T any](val *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(val)), int(sizeOf[T]()))
}

// sliceElemAddr returns the address of s's first element.
func sliceElemAddr[T any](s []T) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(s)))
}

// sliceBytes returns a slice aliasing the elements of s.
func sliceBytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(sizeOf[T]()))
}
