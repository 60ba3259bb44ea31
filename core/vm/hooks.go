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

// OpContext is the read-only view of the current call frame a tracer gets
// at each step: live stack/memory contents plus who is executing.
type OpContext interface {
	MemoryData() []byte
	StackData() []uint256.Int
	Caller() common.Address
	Address() common.Address
	CallValue() *uint256.Int
	CallInput() []byte
}

// CallType distinguishes which opcode/entry point opened a frame, for
// EnterHook/ExitHook.
type CallType byte

const (
	CallTypeCall CallType = iota
	CallTypeCallCode
	CallTypeDelegateCall
	CallTypeStaticCall
	CallTypeCreate
	CallTypeCreate2
)

func (t CallType) String() string {
	switch t {
	case CallTypeCall:
		return "CALL"
	case CallTypeCallCode:
		return "CALLCODE"
	case CallTypeDelegateCall:
		return "DELEGATECALL"
	case CallTypeStaticCall:
		return "STATICCALL"
	case CallTypeCreate:
		return "CREATE"
	case CallTypeCreate2:
		return "CREATE2"
	default:
		return "UNKNOWN"
	}
}

// GasChangeReason tags why GasChangeHook fired, for tracers that want to
// attribute consumption (e.g. "this much went to memory expansion").
type GasChangeReason byte

const (
	GasChangeCallOpCode GasChangeReason = iota
	GasChangeCallFailedExecution
	GasChangeCallLeftOverReturned
	GasChangeCallLeftOverRefunded
	GasChangeCallContractCreation
	GasChangeCallStipend
)

type (
	// EnterHook fires when a new call/create frame is opened.
	EnterHook func(depth int, typ CallType, from, to common.Address, input []byte, gas uint64, value *uint256.Int)

	// ExitHook fires when a call/create frame returns, normally or via revert.
	ExitHook func(depth int, output []byte, gasUsed uint64, err error, reverted bool)

	// OpcodeHook fires immediately before the interpreter executes an opcode.
	OpcodeHook func(pc uint64, op OpCode, gas, cost uint64, scope OpContext, rData []byte, depth int, err error)

	// FaultHook fires when an opcode's execution produced an error.
	FaultHook func(pc uint64, op OpCode, gas, cost uint64, scope OpContext, depth int, err error)

	// GasChangeHook is the type of Hooks.OnGasChange. Nothing in this
	// module invokes OnGasChange: refunds, stipends and leftover returns
	// are not reported through it.
	GasChangeHook func(old, new uint64, reason GasChangeReason)
)

// Hooks bundles every debug/trace callback point the interpreter and call
// orchestrator invoke. A nil field means "no one is listening" — every call
// site nil-checks before invoking, so attaching a Hooks with only one or
// two fields set costs nothing extra for the rest.
type Hooks struct {
	OnEnter     EnterHook
	OnExit      ExitHook
	OnOpcode    OpcodeHook
	OnFault     FaultHook
	OnGasChange GasChangeHook
}
