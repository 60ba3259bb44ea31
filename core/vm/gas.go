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
	"github.com/probechain/pevm/params"
)

// gasFunc computes the dynamic (beyond the opcode's fixed constantGas)
// cost of one instruction, given the memory size it will grow to this
// step. Most opcodes have none (constantGas alone suffices) and leave
// their jump-table entry's dynamicGas nil.
type gasFunc func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error)

// memorySizeFunc returns how large, in bytes, memory must grow to serve
// one instruction, from the still-unpopped stack. The interpreter calls
// this before dynamicGas so the memory-expansion cost is included in the
// same atomic charge.
type memorySizeFunc func(stack *Stack) (uint64, bool)

// memoryGasCost computes the cost of growing memory to newMemSize bytes,
// using the classic quadratic EVM pricing on the word count w: 3·w plus
// w²/512, charged only for the incremental growth beyond the
// memory's current size. Returns ErrGasUintOverflow if any step would
// overflow a uint64.
func memoryGasCost(mem *Memory, newMemSize uint64) (uint64, error) {
	if newMemSize == 0 {
		return 0, nil
	}
	if newMemSize > 0x1FFFFFFFE0 {
		return 0, ErrGasUintOverflow
	}
	newMemSizeWords := toWordSize(newMemSize)
	newMemSize = newMemSizeWords * 32

	if newMemSize > uint64(mem.Len()) {
		square := newMemSizeWords * newMemSizeWords
		linCoef := newMemSizeWords * params.MemoryGas
		quadCoef := square / params.QuadCoeffDiv
		newTotalFee := linCoef + quadCoef

		fee := newTotalFee - mem.lastGasCost
		mem.lastGasCost = newTotalFee
		return fee, nil
	}
	return 0, nil
}

// constGasFunc adapts a flat uint64 cost to the gasFunc signature, for
// opcodes whose dynamic component doesn't depend on stack/memory state
// (e.g. a fork-specific SLOAD price that's otherwise constant).
func constGasFunc(gas uint64) gasFunc {
	return func(_ *EVM, _ *Contract, _ *Stack, _ *Memory, _ uint64) (uint64, error) {
		return gas, nil
	}
}
