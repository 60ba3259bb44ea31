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

// SafeAdd returns x+y and reports whether the addition overflowed a
// uint64, so every dynamic-gas computation can surface ErrGasUintOverflow
// rather than silently wrap.
func SafeAdd(x, y uint64) (uint64, bool) {
	sum := x + y
	return sum, sum < x
}

// SafeMul returns x*y and reports whether the multiplication overflowed.
func SafeMul(x, y uint64) (uint64, bool) {
	if x == 0 || y == 0 {
		return 0, false
	}
	p := x * y
	return p, p/y != x
}

// SafeSub returns x-y and reports whether it underflowed.
func SafeSub(x, y uint64) (uint64, bool) {
	return x - y, y > x
}

// toWordSize returns the number of 32-byte words needed to hold size
// bytes, rounding up. Used throughout gas accounting (memory expansion,
// *COPY word costs) and nowhere else, so it stays unexported.
func toWordSize(size uint64) uint64 {
	if size > 0xFFFFFFFFE0 {
		// would overflow when adding 31 below; the memory-expansion gas
		// cost check that calls this rejects such sizes before they get
		// here, but this keeps the helper itself from wrapping silently.
		return 0xFFFFFFFFE0 / 32
	}
	return (size + 31) / 32
}
