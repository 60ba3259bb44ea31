// Copyright 2024 The pevm Authors
// This file is part of the pevm library.
//
// The pevm library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The pevm library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the pevm library. If not, see <http://www.gnu.org/licenses/>.

package vm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestMemoryResizeGrowOnly(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	require.Equal(t, 32, m.Len())

	m.Resize(16)
	require.Equal(t, 32, m.Len(), "Resize must never shrink")

	m.Resize(64)
	require.Equal(t, 64, m.Len())
}

func TestMemorySetAndGetCopy(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	m.Set(0, 5, []byte{1, 2, 3, 4, 5})

	got := m.GetCopy(0, 5)
	require.Equal(t, []byte{1, 2, 3, 4, 5}, got)

	// GetCopy must return an owned slice, independent of the backing store.
	got[0] = 0xff
	require.Equal(t, byte(1), m.Data()[0])
}

func TestMemorySet32(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	val := uint256.NewInt(0xdead)
	m.Set32(0, val)

	b32 := val.Bytes32()
	require.Equal(t, b32[:], m.Data())
}

func TestMemoryGetPtrSharesBackingArray(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	m.Set(0, 1, []byte{0x42})

	ptr := m.GetPtr(0, 1)
	require.Equal(t, byte(0x42), ptr[0])
}

func TestMemoryGetCopyZeroSize(t *testing.T) {
	m := NewMemory()
	m.Resize(32)
	require.Nil(t, m.GetCopy(0, 0))
}
