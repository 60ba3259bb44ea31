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
	"errors"
	"fmt"
)

// Sentinel errors any opcode handler or the interpreter loop itself may
// return. Every one of them is a stop condition for the running frame;
// whether the caller sees it as REVERT-like (refund unspent gas, keep
// returndata) or OOG-like (consume all remaining gas) is decided by the
// orchestrator per spec.md's Call/Create error classification.
var (
	ErrOutOfGas                 = errors.New("out of gas")
	ErrCodeStoreOutOfGas        = errors.New("contract creation code storage out of gas")
	ErrDepth                    = errors.New("max call depth exceeded")
	ErrInsufficientBalance      = errors.New("insufficient balance for transfer")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrExecutionReverted        = errors.New("execution reverted")
	ErrMaxInitCodeSizeExceeded  = errors.New("max initcode size exceeded")
	ErrMaxCodeSizeExceeded      = errors.New("evm: max code size exceeded")
	ErrInvalidCode              = errors.New("invalid code: must not begin with 0xef")
	ErrInvalidJump              = errors.New("invalid jump destination")
	ErrWriteProtection          = errors.New("write protection")
	ErrReturnDataOutOfBounds    = errors.New("return data out of bounds")
	ErrGasUintOverflow          = errors.New("gas uint64 overflow")
	ErrInvalidRetsize           = errors.New("invalid non-zero retsize")
	ErrNonceUintOverflow        = errors.New("nonce uint64 overflow")
	ErrAddrProhibited           = errors.New("address is prohibited")
	ErrNoCompatibleInterpreter  = errors.New("no compatible interpreter")
	ErrPrecompileUnavailable    = errors.New("precompile body out of scope: dispatch only")
)

// ErrStackUnderflow means the operand stack held fewer items than the
// opcode about to execute requires.
type ErrStackUnderflow struct {
	StackLen int
	Required int
}

func (e *ErrStackUnderflow) Error() string {
	return fmt.Sprintf("stack underflow (%d <=> %d)", e.StackLen, e.Required)
}

// ErrStackOverflow means the operand stack would exceed its 1024-slot
// limit after the opcode about to execute runs.
type ErrStackOverflow struct {
	StackLen int
	Limit    int
}

func (e *ErrStackOverflow) Error() string {
	return fmt.Sprintf("stack limit reached %d (%d)", e.StackLen, e.Limit)
}

// ErrInvalidOpCode is returned for a byte with no entry in the active
// jump table.
type ErrInvalidOpCode struct {
	Opcode OpCode
}

func (e *ErrInvalidOpCode) Error() string {
	return fmt.Sprintf("invalid opcode: %s", e.Opcode.String())
}
