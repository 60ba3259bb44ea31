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

// Contract is the executable wrapper around one call frame's code: who is
// calling whom with what value and input, plus the jumpdest analysis for
// that code. A Contract is created fresh for every CALL/CREATE-family frame;
// it never outlives the frame it belongs to.
type Contract struct {
	// CallerAddress is the address that initiated this frame. For
	// DELEGATECALL it stays the grandparent's caller, not the delegating
	// contract itself.
	CallerAddress common.Address
	caller        common.Address
	self          common.Address

	jumpdests map[common.Hash]bitvec // shared analysis cache across calls to the same code within one interpreter run
	analysis  bitvec                 // jumpdest bitmap for this contract's own code, lazily filled in

	Code     []byte
	CodeHash common.Hash
	Input    []byte

	value *uint256.Int

	Gas uint64

	IsDeployment bool // true while running CREATE/CREATE2 init code
}

// NewContract returns a new contract environment for the execution of a
// single call/create frame.
func NewContract(caller common.Address, address common.Address, value *uint256.Int, gas uint64, jumpdests map[common.Hash]bitvec) *Contract {
	c := &Contract{CallerAddress: caller, caller: caller, self: address, Gas: gas, value: value}
	if jumpdests != nil {
		c.jumpdests = jumpdests
	} else {
		c.jumpdests = make(map[common.Hash]bitvec)
	}
	return c
}

// validJumpdest reports whether dest is a real JUMPDEST in this contract's
// code, computing and caching the jumpdest bitmap on first use.
func (c *Contract) validJumpdest(dest *uint256.Int) bool {
	udest, overflow := dest.Uint64WithOverflow()
	if overflow || udest >= uint64(len(c.Code)) {
		return false
	}
	if OpCode(c.Code[udest]) != JUMPDEST {
		return false
	}
	if c.analysis == nil {
		if c.CodeHash != (common.Hash{}) {
			if cached, ok := c.jumpdests[c.CodeHash]; ok {
				c.analysis = cached
			}
		}
		if c.analysis == nil {
			c.analysis = codeBitmap(c.Code)
			if c.CodeHash != (common.Hash{}) {
				c.jumpdests[c.CodeHash] = c.analysis
			}
		}
	}
	return c.analysis.codeSegment(udest)
}

// AsDelegate configures the contract to run in the caller's context: the
// caller and value observed by opcodes are copied from parent. The address
// is whatever was passed to NewContract (the parent's own address for
// DELEGATECALL); input is not touched here.
func (c *Contract) AsDelegate(parent *Contract) *Contract {
	c.CallerAddress = parent.CallerAddress
	c.caller = parent.caller
	c.value = parent.value
	return c
}

// GetOp returns the opcode at pc, or STOP if pc runs past the end of the
// code (matching the real machine: falling off the end of a contract halts
// it as if it had executed an explicit STOP).
func (c *Contract) GetOp(pc uint64) OpCode {
	if pc < uint64(len(c.Code)) {
		return OpCode(c.Code[pc])
	}
	return STOP
}

// Caller returns the caller of this contract frame.
func (c *Contract) Caller() common.Address {
	return c.CallerAddress
}

// UseGas deducts gas from the contract's remaining gas and reports whether
// there was enough.
func (c *Contract) UseGas(gas uint64) bool {
	if c.Gas < gas {
		return false
	}
	c.Gas -= gas
	return true
}

// RefundGas adds gas back to the contract's budget, used by the call
// orchestrator to return unused child gas to the parent frame.
func (c *Contract) RefundGas(gas uint64) {
	c.Gas += gas
}

// Address returns the address where this contract's code is executing.
func (c *Contract) Address() common.Address {
	return c.self
}

// Value returns the value supplied with this call.
func (c *Contract) Value() *uint256.Int {
	if c.value == nil {
		return uint256.NewInt(0)
	}
	return c.value
}

// SetCallCode sets the code, code hash, and analysis cache this contract
// runs, used by CALLCODE/DELEGATECALL to load the callee's code while
// keeping the caller's address/value/input context.
func (c *Contract) SetCallCode(hash common.Hash, code []byte) {
	c.Code = code
	c.CodeHash = hash
	c.analysis = nil
}
