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

	"github.com/probechain/pevm/common"
)

// ScopeContext groups the three pieces of mutable state one opcode
// handler touches: its operand stack, its memory, and the contract frame
// it's executing in. Handlers take a *ScopeContext rather than the three
// separately so tracers can snapshot or inspect all of it through one
// value satisfying OpContext.
type ScopeContext struct {
	Memory   *Memory
	Stack    *Stack
	Contract *Contract
}

func (s *ScopeContext) MemoryData() []byte {
	if s.Memory == nil {
		return nil
	}
	return s.Memory.Data()
}

func (s *ScopeContext) StackData() []uint256.Int {
	if s.Stack == nil {
		return nil
	}
	return s.Stack.Data()
}

func (s *ScopeContext) Caller() common.Address {
	return s.Contract.Caller()
}

func (s *ScopeContext) Address() common.Address {
	return s.Contract.Address()
}

func (s *ScopeContext) CallValue() *uint256.Int {
	return s.Contract.Value()
}

func (s *ScopeContext) CallInput() []byte {
	return s.Contract.Input
}
