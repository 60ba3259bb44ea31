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

import "github.com/holiman/uint256"

// calcMemSize64 adds off and size (both read straight off the stack) as
// uint64, reporting overflow. A zero size needs no memory regardless of
// how large off is — an opcode reading zero bytes at an absurd offset
// shouldn't force a huge allocation.
func calcMemSize64(off, size *uint256.Int) (uint64, bool) {
	if size.IsZero() {
		return 0, false
	}
	return calcMemSize64WithUint(off, size.Uint64())
}

func calcMemSize64WithUint(off *uint256.Int, size64 uint64) (uint64, bool) {
	if !off.IsUint64() {
		return 0, true
	}
	offU64 := off.Uint64()
	if offU64 > 0xFFFFFFFFE0 {
		return 0, true
	}
	return SafeAdd(offU64, size64)
}

// memoryMLoad/memoryMStore/memoryMStore8 compute the bytes of memory an
// opcode touches, for the jump table's memorySize hook.
func memoryMLoad(stack *Stack) (uint64, bool) {
	return calcMemSize64WithUint(stack.Back(0), 32)
}

func memoryMStore8(stack *Stack) (uint64, bool) {
	return calcMemSize64WithUint(stack.Back(0), 1)
}

func memoryMStore(stack *Stack) (uint64, bool) {
	return calcMemSize64WithUint(stack.Back(0), 32)
}

func memoryReturn(stack *Stack) (uint64, bool) {
	return calcMemSize64(stack.Back(0), stack.Back(1))
}

var memoryRevert = memoryReturn

func memoryKeccak256(stack *Stack) (uint64, bool) {
	return calcMemSize64(stack.Back(0), stack.Back(1))
}

// memoryCallDataCopy covers CALLDATACOPY/CODECOPY/RETURNDATACOPY, each of
// which pops (destOffset, srcOffset/or n/a, length) with length always
// third from the top.
func memoryCallDataCopy(stack *Stack) (uint64, bool) {
	return calcMemSize64(stack.Back(0), stack.Back(2))
}

var (
	memoryCodeCopy       = memoryCallDataCopy
	memoryReturnDataCopy = memoryCallDataCopy
)

// memoryExtCodeCopy covers EXTCODECOPY, whose address operand shifts
// every other argument one slot deeper than CODECOPY.
func memoryExtCodeCopy(stack *Stack) (uint64, bool) {
	return calcMemSize64(stack.Back(1), stack.Back(3))
}

func memoryMCopy(stack *Stack) (uint64, bool) {
	mSize, overflow := calcMemSize64(stack.Back(0), stack.Back(2))
	if overflow {
		return 0, true
	}
	sSize, overflow := calcMemSize64(stack.Back(1), stack.Back(2))
	if overflow {
		return 0, true
	}
	if sSize > mSize {
		return sSize, false
	}
	return mSize, false
}

func memoryLog(stack *Stack) (uint64, bool) {
	return calcMemSize64(stack.Back(0), stack.Back(1))
}

func memoryCreate(stack *Stack) (uint64, bool) {
	return calcMemSize64(stack.Back(1), stack.Back(2))
}

var memoryCreate2 = memoryCreate

// memoryCall covers CALL/CALLCODE: the larger of the input-data window
// and the output-data window memory must be resized to.
func memoryCall(stack *Stack) (uint64, bool) {
	x, overflow := calcMemSize64(stack.Back(3), stack.Back(4))
	if overflow {
		return 0, true
	}
	y, overflow := calcMemSize64(stack.Back(5), stack.Back(6))
	if overflow {
		return 0, true
	}
	if x > y {
		return x, false
	}
	return y, false
}

var memoryCallCode = memoryCall

// memoryDelegateCall covers DELEGATECALL/STATICCALL, whose stack layout
// omits the value argument CALL/CALLCODE have.
func memoryDelegateCall(stack *Stack) (uint64, bool) {
	x, overflow := calcMemSize64(stack.Back(2), stack.Back(3))
	if overflow {
		return 0, true
	}
	y, overflow := calcMemSize64(stack.Back(4), stack.Back(5))
	if overflow {
		return 0, true
	}
	if x > y {
		return x, false
	}
	return y, false
}

var memoryStaticCall = memoryDelegateCall
