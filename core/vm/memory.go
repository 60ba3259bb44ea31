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
	"github.com/holiman/uint256"
)

// Memory is the byte-addressable, word-rounded scratch space one Frame
// owns for the lifetime of a single call. It only ever grows (MCOPY,
// RETURN, and friends read/write in place); shrinking happens only by
// discarding the whole Memory when the frame returns.
type Memory struct {
	store       []byte
	lastGasCost uint64
}

// NewMemory creates a new, empty Memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Set writes value into store starting at offset. The caller must have
// already grown the memory (via Resize) to fit offset+len(value).
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	if offset+size > uint64(len(m.store)) {
		panic("invalid memory: store too small")
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes val, left-padded to 32 bytes, at offset. Used by MSTORE.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	if offset+32 > uint64(len(m.store)) {
		panic("invalid memory: store too small")
	}
	b32 := val.Bytes32()
	copy(m.store[offset:offset+32], b32[:])
}

// Resize grows the memory to at least size bytes, rounded up by the
// caller (the gas-cost function) to a whole number of words; it never
// shrinks.
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) < size {
		m.store = append(m.store, make([]byte, size-uint64(len(m.store)))...)
	}
}

// GetCopy returns an owned copy of size bytes starting at offset. Safe to
// retain past the current opcode (used by RETURNDATACOPY-style reads of
// memory headed into a sub-call).
func (m *Memory) GetCopy(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	if len(m.store) > int(offset) {
		cpy := make([]byte, size)
		copy(cpy, m.store[offset:offset+size])
		return cpy
	}
	return nil
}

// GetPtr returns a slice into the live backing array — callers must treat
// it as read-only and must not hold it across a subsequent Resize.
func (m *Memory) GetPtr(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	if len(m.store) > int(offset) {
		return m.store[offset : offset+size]
	}
	return nil
}

// Len returns the current length of the backing store in bytes.
func (m *Memory) Len() int {
	return len(m.store)
}

// Data returns the full backing slice. Callers must not modify it.
func (m *Memory) Data() []byte {
	return m.store
}

// copy returns a deep copy of the store and its lastGasCost. Nothing in
// this module calls it; the debug hooks receive the live ScopeContext.
func (m *Memory) copy() *Memory {
	if m == nil {
		return nil
	}
	cpy := &Memory{store: make([]byte, len(m.store)), lastGasCost: m.lastGasCost}
	copy(cpy.store, m.store)
	return cpy
}
