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

// EVMInterpreter walks one contract's translated instruction stream to
// completion, a revert, or an error. One interpreter is built per EVM and
// reused across every frame of that EVM's call tree; per-call state
// (stack, memory, jump target, return data) lives on the interpreter only
// for the duration of the Run that's using it, never across two Runs of
// the same interpreter concurrently — Run is not reentrant on the same
// receiver from two goroutines.
type EVMInterpreter struct {
	evm *EVM
	jt  *JumpTable

	readOnly   bool
	returnData []byte

	// jumpDest/jumping/jumpDestOverflow/currentPush are the scratch slots
	// opJump/opJumpi/opPush hand results to the dispatch loop through,
	// mirroring the evm.callGasTemp pattern used for the CALL family: the
	// cleanest way to get a value out of an executionFunc without growing
	// its signature for the rare opcodes that need it.
	jumpDest         uint64
	jumpDestOverflow bool
	jumping          bool
	currentPush      uint256.Int
}

// NewEVMInterpreter returns an interpreter bound to evm, with the jump
// table fixed to evm's fork for evm's entire lifetime — the fork is set by
// NewEVM and Reset does not change it, so there is no fork change to
// track.
func NewEVMInterpreter(evm *EVM) *EVMInterpreter {
	return &EVMInterpreter{
		evm: evm,
		jt:  instructionSetForFork(evm.fork),
	}
}

// Run executes contract's code against input, returning its output and
// any error that halted it. readOnly marks a STATICCALL-originated frame
// (and every frame nested under one): SSTORE, LOG*, CREATE*, and
// SELFDESTRUCT all reject with ErrWriteProtection rather than run.
func (in *EVMInterpreter) Run(contract *Contract, input []byte, readOnly bool) ([]byte, error) {
	in.evm.depth++
	defer func() { in.evm.depth-- }()

	prevReadOnly := in.readOnly
	if readOnly && !in.readOnly {
		in.readOnly = true
		defer func() { in.readOnly = prevReadOnly }()
	}

	in.returnData = nil
	contract.Input = input

	if len(contract.Code) == 0 {
		return nil, nil
	}

	analysis := analyze(contract.CodeHash, contract.Code, in.jt)
	stack := newstack()
	mem := NewMemory()
	scope := &ScopeContext{Memory: mem, Stack: stack, Contract: contract}
	defer returnStack(stack)

	idx, ok := analysis.blockHeaderIndex[0]
	if !ok {
		return nil, nil
	}

	var (
		pc          uint64
		cursor      = idx
		output      []byte
		err         error
		mSize       uint64
	)

	for cursor < len(analysis.instructions) {
		instr := &analysis.instructions[cursor]

		if instr.kind == argBlockHeader {
			block := &analysis.blocks[instr.block]
			if err = in.chargeBlock(contract, stack, block); err != nil {
				break
			}
			cursor++
			continue
		}

		pc = instr.pc
		op := instr.op
		opInfo := instr.info
		if opInfo == nil {
			err = &ErrInvalidOpCode{Opcode: op}
			in.reportFault(pc, op, contract, scope, err)
			break
		}

		if opInfo.writes && in.readOnly {
			err = ErrWriteProtection
			in.reportFault(pc, op, contract, scope, err)
			break
		}

		if opInfo.dynamicGas != nil {
			mSize, err = in.memorySizeFor(opInfo, stack)
			if err != nil {
				in.reportFault(pc, op, contract, scope, err)
				break
			}
			// dynamicGas must run before Resize: its memory-expansion
			// component (memoryGasCost) prices the delta between mem's
			// current length and mSize, so resizing first would make
			// every expansion look free.
			var dyn uint64
			dyn, err = opInfo.dynamicGas(in.evm, contract, stack, mem, mSize)
			if err != nil {
				in.reportFault(pc, op, contract, scope, err)
				break
			}
			if !contract.UseGas(dyn) {
				err = ErrOutOfGas
				in.reportFault(pc, op, contract, scope, err)
				break
			}
			if mSize > 0 {
				mem.Resize(mSize)
			}
		}

		if instr.kind == argPush {
			in.currentPush = instr.push
		}

		in.reportStep(pc, op, contract, scope)

		var res []byte
		res, err = opInfo.execute(&pc, in, scope)
		if err != nil {
			// opRevert returns its payload alongside ErrExecutionReverted
			// rather than through a halt, since REVERT must still surface
			// the data it points at even though the frame unwinds as an
			// error. Capture it here before reportFault/break, or the
			// caller sees a successful-looking nil output.
			if err == ErrExecutionReverted {
				output = res
			}
			in.reportFault(pc, op, contract, scope, err)
			break
		}
		if opInfo.halts {
			output = res
			break
		}

		if op == JUMP || (op == JUMPI && in.jumping) {
			in.jumping = false
			if in.jumpDestOverflow {
				err = ErrInvalidJump
				in.reportFault(pc, op, contract, scope, err)
				break
			}
			if instr.kind == argJumpTarget {
				cursor = instr.target
				continue
			}
			target, ok := analysis.resolveJumpDest(contract.Code, in.jumpDest)
			if !ok {
				err = ErrInvalidJump
				in.reportFault(pc, op, contract, scope, err)
				break
			}
			cursor = target
			continue
		}
		in.jumping = false
		cursor++
	}

	if err == ErrExecutionReverted {
		return output, err
	}
	if err != nil {
		return nil, err
	}
	return output, nil
}

// chargeBlock implements spec.md 4.5's per-block-header check: one gas
// subtraction for the whole block's constant cost, then a single stack
// bounds check covering every opcode until the next block header, instead
// of re-deriving and re-checking per opcode.
func (in *EVMInterpreter) chargeBlock(contract *Contract, stack *Stack, block *blockMetrics) error {
	if !contract.UseGas(block.gasCost) {
		return ErrOutOfGas
	}
	size := stack.len()
	if size < block.stackMin {
		return &ErrStackUnderflow{StackLen: size, Required: block.stackMin}
	}
	if size+block.stackMaxGrowth > maxStackSize {
		return &ErrStackOverflow{StackLen: size, Limit: maxStackSize}
	}
	return nil
}

// memorySizeFor computes the word-rounded byte size memory must grow to
// for a dynamic-gas opcode. Run hands it to dynamicGas first, which
// prices the expansion against mem's current length, and resizes mem only
// after that charge succeeds.
func (in *EVMInterpreter) memorySizeFor(op *operation, stack *Stack) (uint64, error) {
	if op.memorySize == nil {
		return 0, nil
	}
	size, overflow := op.memorySize(stack)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	words, overflow := SafeMul(toWordSize(size), 32)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	return words, nil
}

func (in *EVMInterpreter) reportStep(pc uint64, op OpCode, contract *Contract, scope *ScopeContext) {
	if in.evm.Config.Tracer == nil || in.evm.Config.Tracer.OnOpcode == nil {
		return
	}
	in.evm.Config.Tracer.OnOpcode(pc, op, contract.Gas, 0, scope, in.returnData, in.evm.depth, nil)
}

func (in *EVMInterpreter) reportFault(pc uint64, op OpCode, contract *Contract, scope *ScopeContext, err error) {
	if in.evm.Config.Tracer == nil || in.evm.Config.Tracer.OnFault == nil {
		return
	}
	in.evm.Config.Tracer.OnFault(pc, op, contract.Gas, 0, scope, in.evm.depth, err)
}
