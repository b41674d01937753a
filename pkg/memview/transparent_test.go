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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransparentBorrow(t *testing.T) {
	backing := testPattern()
	tr, err := TransparentOf(backing, false)
	require.NoError(t, err)

	require.False(t, tr.IsAllocated(), "borrow reported as allocated")
	b, err := tr.Read(0, 4)
	require.NoError(t, err)
	require.Equal(t, backing[:4], b)

	// Writes through a borrow land in the caller's memory.
	require.NoError(t, tr.Write(0, []byte{0x42}))
	require.EqualValues(t, 0x42, backing[0])

	tr.Release()
	// The borrowed memory is untouched by release.
	require.EqualValues(t, 0x42, backing[0])
}

func TestTransparentCopy(t *testing.T) {
	backing := testPattern()
	tr, err := TransparentOf(backing, true)
	require.NoError(t, err)
	defer tr.Release()

	require.True(t, tr.IsAllocated(), "copy reported as borrow")
	require.NoError(t, tr.Write(0, []byte{0x42}))
	// The original is untouched.
	require.EqualValues(t, 0xDE, backing[0])
}

func TestTransparentAppendToBorrow(t *testing.T) {
	backing := testPattern()
	tr, err := TransparentOf(backing, false)
	require.NoError(t, err)
	defer tr.Release()

	var notAlloc *NotAllocatedError
	require.True(t, errors.As(tr.Append([]byte{1}), &notAlloc), "Append to borrow")
	require.True(t, errors.As(tr.Insert(0, []byte{1}), &notAlloc), "Insert into borrow")
	_, err = tr.SplitOff(4)
	require.True(t, errors.As(err, &notAlloc), "SplitOff of borrow")
}

func TestTransparentConsume(t *testing.T) {
	backing := testPattern()
	tr, err := TransparentOf(backing, false)
	require.NoError(t, err)
	defer tr.Release()

	require.NoError(t, tr.Consume())
	require.True(t, tr.IsAllocated(), "Consume did not take ownership")

	// Ownership means appends are legal now, and the original stays
	// untouched.
	require.NoError(t, tr.Append([]byte{0x99}))
	require.EqualValues(t, 17, tr.Size())
	require.EqualValues(t, 16, len(backing))

	b, err := tr.Read(0, 16)
	require.NoError(t, err)
	require.Equal(t, testPattern(), b)

	// Consuming twice is a no-op.
	require.NoError(t, tr.Consume())
	require.EqualValues(t, 17, tr.Size())
}

func TestTransparentSetMemoryDropsOwnership(t *testing.T) {
	tr, err := NewTransparentSize(8)
	require.NoError(t, err)
	require.True(t, tr.IsAllocated())

	backing := []byte{1, 2, 3, 4}
	require.NoError(t, tr.SetMemory(sliceAddr(backing), 4))
	defer tr.Release()

	require.False(t, tr.IsAllocated(), "rebind kept ownership")
	b, err := tr.Read(0, 4)
	require.NoError(t, err)
	require.Equal(t, backing, b)
}

func TestTransparentSplitOff(t *testing.T) {
	tr, err := NewTransparentSize(16)
	require.NoError(t, err)
	defer tr.Release()
	require.NoError(t, tr.Write(0, testPattern()))

	split, err := tr.SplitOff(8)
	require.NoError(t, err)
	defer split.Release()

	require.True(t, split.IsAllocated(), "split-off is not owned")
	require.EqualValues(t, 8, tr.Size())
	b, err := split.Read(0, 8)
	require.NoError(t, err)
	require.Equal(t, testPattern()[8:], b)
}
