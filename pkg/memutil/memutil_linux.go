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

// Package memutil provides raw anonymous memory mappings, used to back
// tracked buffers with addresses outside the Go heap.
package memutil

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// An Allocator hands out raw byte buffers addressed outside the Go heap.
// Returned buffers are zero-filled.
type Allocator interface {
	// Allocate returns the address of a new zero-filled buffer of size
	// bytes.
	Allocate(size uintptr) (uintptr, error)

	// Free releases a buffer previously returned by Allocate. addr and
	// size must match the original allocation.
	Free(addr, size uintptr) error
}

// MapAnon maps size bytes of zero-filled anonymous memory and returns its
// address.
func MapAnon(size uintptr) (uintptr, error) {
	if size == 0 {
		return 0, fmt.Errorf("mmap: zero-length mapping")
	}
	addr, _, errno := unix.Syscall6(
		unix.SYS_MMAP,
		0,
		size,
		uintptr(unix.PROT_READ|unix.PROT_WRITE),
		uintptr(unix.MAP_PRIVATE|unix.MAP_ANONYMOUS),
		^uintptr(0), // fd: -1
		0)
	if errno != 0 {
		return 0, fmt.Errorf("mmap of %d bytes failed: %w", size, errno)
	}
	return addr, nil
}

// Unmap unmaps a mapping returned by MapAnon.
func Unmap(addr, size uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_MUNMAP, addr, size, 0); errno != 0 {
		return fmt.Errorf("munmap of [%#x, %#x) failed: %w", addr, addr+size, errno)
	}
	return nil
}

// MmapAllocator is an Allocator backed by anonymous mappings. The kernel
// rounds each allocation up to whole pages, so every allocation costs at
// least one page.
type MmapAllocator struct{}

// Allocate implements Allocator.Allocate.
func (MmapAllocator) Allocate(size uintptr) (uintptr, error) {
	return MapAnon(size)
}

// Free implements Allocator.Free.
func (MmapAllocator) Free(addr, size uintptr) error {
	return Unmap(addr, size)
}
