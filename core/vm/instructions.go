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
	"github.com/probechain/pevm/crypto"
	"github.com/probechain/pevm/params"
)

// Every opcode handler below follows the same shape the jump table
// expects: pop its operands, compute in place on the stack (mutating the
// new top rather than popping-then-pushing, to save an allocation), and
// return (output, error). Only RETURN/REVERT produce a non-nil output;
// only a halting opcode or an error ends the frame.

func opStop(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	return nil, nil
}

func opAdd(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Add(&x, y)
	return nil, nil
}

func opMul(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Mul(&x, y)
	return nil, nil
}

func opSub(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Sub(&x, y)
	return nil, nil
}

// opDiv and the other div/mod family members rely on uint256.Int's own
// div-by-zero-yields-zero semantics, which already matches the EVM's
// "division by zero is zero, not a fault" rule.
func opDiv(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Div(&x, y)
	return nil, nil
}

func opSdiv(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.SDiv(&x, y)
	return nil, nil
}

func opMod(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Mod(&x, y)
	return nil, nil
}

func opSmod(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.SMod(&x, y)
	return nil, nil
}

func opAddmod(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y, z := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.peek()
	if z.IsZero() {
		z.Clear()
	} else {
		z.AddMod(&x, &y, z)
	}
	return nil, nil
}

func opMulmod(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y, z := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.peek()
	z.MulMod(&x, &y, z)
	return nil, nil
}

func opExp(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	base, exponent := scope.Stack.pop(), scope.Stack.peek()
	exponent.Exp(&base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	back, num := scope.Stack.pop(), scope.Stack.peek()
	num.ExtendSign(num, &back)
	return nil, nil
}

func opLt(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opGt(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSlt(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSgt(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opEq(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opIszero(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x := scope.Stack.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

func opAnd(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.And(&x, y)
	return nil, nil
}

func opOr(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Or(&x, y)
	return nil, nil
}

func opXor(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x, y := scope.Stack.pop(), scope.Stack.peek()
	y.Xor(&x, y)
	return nil, nil
}

func opNot(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x := scope.Stack.peek()
	x.Not(x)
	return nil, nil
}

func opByte(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	th, val := scope.Stack.pop(), scope.Stack.peek()
	val.Byte(&th)
	return nil, nil
}

func opSHL(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	shift, value := scope.Stack.pop(), scope.Stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opSHR(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	shift, value := scope.Stack.pop(), scope.Stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opSAR(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	shift, value := scope.Stack.pop(), scope.Stack.peek()
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return nil, nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil, nil
}

func opSha3(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	offset, size := scope.Stack.pop(), scope.Stack.peek()
	data := scope.Memory.GetPtr(int64(offset.Uint64()), int64(size.Uint64()))
	hash := crypto.Keccak256(data)
	size.SetBytes(hash)
	return nil, nil
}

func opAddress(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetBytes(scope.Contract.Address().Bytes()))
	return nil, nil
}

func opBalance(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	slot := scope.Stack.peek()
	addr := common.Address(slot.Bytes20())
	slot.Set(interp.evm.StateDB.GetBalance(addr))
	return nil, nil
}

func opOrigin(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetBytes(interp.evm.Origin.Bytes()))
	return nil, nil
}

func opCaller(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetBytes(scope.Contract.Caller().Bytes()))
	return nil, nil
}

func opCallValue(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(scope.Contract.Value())
	return nil, nil
}

func opCallDataLoad(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	x := scope.Stack.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(scope.Contract.Input, offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
	return nil, nil
}

func opCallDataSize(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(uint64(len(scope.Contract.Input))))
	return nil, nil
}

func opCallDataCopy(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	var (
		memOffset  = scope.Stack.pop()
		dataOffset = scope.Stack.pop()
		length     = scope.Stack.pop()
	)
	dataOffset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOffset64 = 0xffffffffffffffff
	}
	length64, overflow := length.Uint64WithOverflow()
	if overflow {
		return nil, ErrGasUintOverflow
	}
	data := getData(scope.Contract.Input, dataOffset64, length64)
	scope.Memory.Set(memOffset.Uint64(), length64, data)
	return nil, nil
}

func opCodeSize(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(uint64(len(scope.Contract.Code))))
	return nil, nil
}

func opCodeCopy(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	var (
		memOffset  = scope.Stack.pop()
		codeOffset = scope.Stack.pop()
		length     = scope.Stack.pop()
	)
	codeOffset64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOffset64 = 0xffffffffffffffff
	}
	length64, overflow := length.Uint64WithOverflow()
	if overflow {
		return nil, ErrGasUintOverflow
	}
	data := getData(scope.Contract.Code, codeOffset64, length64)
	scope.Memory.Set(memOffset.Uint64(), length64, data)
	return nil, nil
}

func opGasprice(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(interp.evm.GasPrice)
	return nil, nil
}

func opExtCodeSize(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	slot := scope.Stack.peek()
	addr := common.Address(slot.Bytes20())
	slot.SetUint64(uint64(len(interp.evm.StateDB.GetCode(addr))))
	return nil, nil
}

func opExtCodeCopy(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	var (
		addr       = common.Address(scope.Stack.pop().Bytes20())
		memOffset  = scope.Stack.pop()
		codeOffset = scope.Stack.pop()
		length     = scope.Stack.pop()
	)
	codeOffset64, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOffset64 = 0xffffffffffffffff
	}
	length64, overflow := length.Uint64WithOverflow()
	if overflow {
		return nil, ErrGasUintOverflow
	}
	code := interp.evm.StateDB.GetCode(addr)
	data := getData(code, codeOffset64, length64)
	scope.Memory.Set(memOffset.Uint64(), length64, data)
	return nil, nil
}

func opReturnDataSize(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(uint64(len(interp.returnData))))
	return nil, nil
}

func opReturnDataCopy(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	var (
		memOffset  = scope.Stack.pop()
		dataOffset = scope.Stack.pop()
		length     = scope.Stack.pop()
	)
	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return nil, ErrReturnDataOutOfBounds
	}
	length64, overflow := length.Uint64WithOverflow()
	if overflow {
		return nil, ErrReturnDataOutOfBounds
	}
	end, ovf := SafeAdd(offset64, length64)
	if ovf || uint64(len(interp.returnData)) < end {
		return nil, ErrReturnDataOutOfBounds
	}
	scope.Memory.Set(memOffset.Uint64(), length64, interp.returnData[offset64:end])
	return nil, nil
}

func opExtCodeHash(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	slot := scope.Stack.peek()
	addr := common.Address(slot.Bytes20())
	if !interp.evm.StateDB.AccountExists(addr) || interp.evm.StateDB.Empty(addr) {
		slot.Clear()
		return nil, nil
	}
	slot.SetBytes(interp.evm.StateDB.GetCodeHash(addr).Bytes())
	return nil, nil
}

func opBlockhash(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	num := scope.Stack.peek()
	num64, overflow := num.Uint64WithOverflow()
	if overflow {
		num.Clear()
		return nil, nil
	}
	upper := interp.evm.Context.BlockNumber
	var lower uint64
	if upper < 257 {
		lower = 0
	} else {
		lower = upper - 256
	}
	if num64 >= lower && num64 < upper {
		num.SetBytes(interp.evm.Context.GetHash(num64).Bytes())
	} else {
		num.Clear()
	}
	return nil, nil
}

func opCoinbase(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetBytes(interp.evm.Context.Coinbase.Bytes()))
	return nil, nil
}

func opTimestamp(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(interp.evm.Context.Time))
	return nil, nil
}

func opNumber(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(interp.evm.Context.BlockNumber))
	return nil, nil
}

// opDifficulty serves both DIFFICULTY (pre-merge) and PREVRANDAO
// (post-merge) — same opcode byte, same stack effect, only the source
// value's meaning changes, which BlockContext.Random vs. Difficulty
// already captures for the caller constructing it.
func opDifficulty(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	if interp.evm.Context.Random != nil {
		scope.Stack.push(new(uint256.Int).SetBytes(interp.evm.Context.Random.Bytes()))
		return nil, nil
	}
	scope.Stack.push(interp.evm.Context.Difficulty)
	return nil, nil
}

func opGasLimit(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(interp.evm.Context.GasLimit))
	return nil, nil
}

func opChainID(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(interp.evm.chainID())
	return nil, nil
}

func opSelfBalance(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	balance := interp.evm.StateDB.GetBalance(scope.Contract.Address())
	scope.Stack.push(balance)
	return nil, nil
}

func opBaseFee(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(interp.evm.Context.BaseFee)
	return nil, nil
}

func opBlobHash(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	idx := scope.Stack.peek()
	if i, overflow := idx.Uint64WithOverflow(); !overflow && i < uint64(len(interp.evm.BlobHashes)) {
		idx.SetBytes(interp.evm.BlobHashes[i].Bytes())
	} else {
		idx.Clear()
	}
	return nil, nil
}

func opBlobBaseFee(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(interp.evm.Context.BlobBaseFee)
	return nil, nil
}

func opPop(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.pop()
	return nil, nil
}

func opMload(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	v := scope.Stack.peek()
	offset := v.Uint64()
	v.SetBytes(scope.Memory.GetPtr(int64(offset), 32))
	return nil, nil
}

func opMstore(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	mStart, val := scope.Stack.pop(), scope.Stack.pop()
	scope.Memory.Set32(mStart.Uint64(), &val)
	return nil, nil
}

func opMstore8(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	off, val := scope.Stack.pop(), scope.Stack.pop()
	scope.Memory.store[off.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opSload(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	loc := scope.Stack.peek()
	hash := common.Hash(loc.Bytes32())
	loc.SetBytes(interp.evm.StateDB.GetStorage(scope.Contract.Address(), hash).Bytes())
	return nil, nil
}

func opSstore(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	if interp.readOnly {
		return nil, ErrWriteProtection
	}
	loc, val := scope.Stack.pop(), scope.Stack.pop()
	interp.evm.StateDB.SetStorage(scope.Contract.Address(), common.Hash(loc.Bytes32()), common.Hash(val.Bytes32()))
	return nil, nil
}

func opJump(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	dest := scope.Stack.pop()
	interp.jumpDest = dest.Uint64()
	interp.jumpDestOverflow = !dest.IsUint64()
	return nil, nil
}

func opJumpi(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	dest, cond := scope.Stack.pop(), scope.Stack.pop()
	if !cond.IsZero() {
		interp.jumpDest = dest.Uint64()
		interp.jumpDestOverflow = !dest.IsUint64()
		interp.jumping = true
	}
	return nil, nil
}

func opPc(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(*pc))
	return nil, nil
}

func opMsize(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(uint64(scope.Memory.Len())))
	return nil, nil
}

func opGas(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int).SetUint64(scope.Contract.Gas))
	return nil, nil
}

func opJumpdest(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	return nil, nil
}

func opPush0(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.push(new(uint256.Int))
	return nil, nil
}

// opPush handles PUSH1..PUSH32. The interpreter supplies the decoded
// immediate via the current translated instruction rather than this
// handler re-parsing scope.Contract.Code, since the analyzer already did
// that parsing once per contract rather than once per call.
func opPush(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	val := interp.currentPush
	scope.Stack.push(&val)
	return nil, nil
}

func makeDup(n int) executionFunc {
	return func(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		scope.Stack.dup(n)
		return nil, nil
	}
}

func makeSwap(n int) executionFunc {
	return func(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		scope.Stack.swap(n + 1)
		return nil, nil
	}
}

func makeLog(n int) executionFunc {
	return func(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
		if interp.readOnly {
			return nil, ErrWriteProtection
		}
		mStart, mSize := scope.Stack.pop(), scope.Stack.pop()
		topics := make([]common.Hash, n)
		for i := 0; i < n; i++ {
			t := scope.Stack.pop()
			topics[i] = common.Hash(t.Bytes32())
		}
		data := scope.Memory.GetCopy(int64(mStart.Uint64()), int64(mSize.Uint64()))
		interp.evm.StateDB.AddLog(&Log{
			Address: scope.Contract.Address(),
			Topics:  topics,
			Data:    data,
		})
		return nil, nil
	}
}

func opMcopy(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	dst, src, size := scope.Stack.pop(), scope.Stack.pop(), scope.Stack.pop()
	data := scope.Memory.GetCopy(int64(src.Uint64()), int64(size.Uint64()))
	scope.Memory.Set(dst.Uint64(), size.Uint64(), data)
	return nil, nil
}

func opTload(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	loc := scope.Stack.peek()
	hash := common.Hash(loc.Bytes32())
	loc.SetBytes(interp.evm.StateDB.GetTransientStorage(scope.Contract.Address(), hash).Bytes())
	return nil, nil
}

func opTstore(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	if interp.readOnly {
		return nil, ErrWriteProtection
	}
	loc, val := scope.Stack.pop(), scope.Stack.pop()
	interp.evm.StateDB.SetTransientStorage(scope.Contract.Address(), common.Hash(loc.Bytes32()), common.Hash(val.Bytes32()))
	return nil, nil
}

func opReturn(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	offset, size := scope.Stack.pop(), scope.Stack.pop()
	ret := scope.Memory.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))
	return ret, nil
}

func opRevert(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	offset, size := scope.Stack.pop(), scope.Stack.pop()
	ret := scope.Memory.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))
	return ret, ErrExecutionReverted
}

func opUndefined(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	return nil, &ErrInvalidOpCode{Opcode: scope.Contract.GetOp(*pc)}
}

func opSelfdestruct(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	if interp.readOnly {
		return nil, ErrWriteProtection
	}
	beneficiary := scope.Stack.pop()
	self := scope.Contract.Address()
	balance := interp.evm.StateDB.GetBalance(self)
	addr := common.Address(beneficiary.Bytes20())
	if interp.evm.chainRules.IsCancun && !interp.evm.StateDB.CreatedThisTransaction(self) {
		// EIP-6780: an account not created in this transaction keeps its
		// code and storage; only its balance moves to the beneficiary.
		if addr != self {
			interp.evm.StateDB.SetBalance(self, new(uint256.Int))
		}
	} else {
		interp.evm.StateDB.Selfdestruct(self)
	}
	if addr != self {
		interp.evm.StateDB.SetBalance(addr, new(uint256.Int).Add(interp.evm.StateDB.GetBalance(addr), balance))
	}
	return nil, nil
}

// opCreate, opCreate2, opCall, opCallCode, opDelegateCall, and
// opStaticCall are thin adapters around the call/create orchestrator in
// call.go: they pop their operands, hand off to the orchestrator, and
// translate its result back onto the stack per spec.md 4.7.

func opCreate(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	if interp.readOnly {
		return nil, ErrWriteProtection
	}
	var (
		value  = scope.Stack.pop()
		offset = scope.Stack.pop()
		size   = scope.Stack.pop()
		input  = scope.Memory.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))
		gas    = createGas(interp, scope.Contract)
	)
	scope.Contract.UseGas(gas)
	res, addr, returnGas, suberr := interp.evm.Create(scope.Contract.Address(), input, gas, &value)
	return afterCreate(interp, scope, res, addr, returnGas, suberr)
}

func opCreate2(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	if interp.readOnly {
		return nil, ErrWriteProtection
	}
	var (
		endowment = scope.Stack.pop()
		offset    = scope.Stack.pop()
		size      = scope.Stack.pop()
		salt      = scope.Stack.pop()
		input     = scope.Memory.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))
		gas       = createGas(interp, scope.Contract)
	)
	scope.Contract.UseGas(gas)
	res, addr, returnGas, suberr := interp.evm.Create2(scope.Contract.Address(), input, gas, &endowment, &salt)
	return afterCreate(interp, scope, res, addr, returnGas, suberr)
}

// createGas applies EIP-150's 63/64 retention to CREATE/CREATE2: unlike the
// CALL family (which forwards a caller-requested amount capped at 63/64 of
// what's left), CREATE always forwards everything it's allowed to, so the
// cap itself is the forwarded amount.
func createGas(interp *EVMInterpreter, contract *Contract) uint64 {
	gas := contract.Gas
	if interp.evm.chainRules.IsEIP150 {
		gas -= gas / 64
	}
	return gas
}

func afterCreate(interp *EVMInterpreter, scope *ScopeContext, res []byte, addr common.Address, returnGas uint64, suberr error) ([]byte, error) {
	stackvalue := new(uint256.Int)
	if suberr != nil {
		stackvalue.Clear()
	} else {
		stackvalue.SetBytes(addr.Bytes())
	}
	scope.Stack.push(stackvalue)
	scope.Contract.Gas += returnGas
	interp.returnData = res
	if suberr == ErrExecutionReverted {
		return res, nil
	}
	return nil, nil
}

func opCall(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.pop() // requested gas; evm.callGasTemp already holds what gasCall computed for it
	gas := interp.evm.callGasTemp
	addr, value := scope.Stack.pop(), scope.Stack.pop()
	inOffset, inSize := scope.Stack.pop(), scope.Stack.pop()
	retOffset, retSize := scope.Stack.pop(), scope.Stack.pop()

	if interp.readOnly && !value.IsZero() {
		return nil, ErrWriteProtection
	}
	args := scope.Memory.GetCopy(int64(inOffset.Uint64()), int64(inSize.Uint64()))
	if !value.IsZero() {
		gas += params.CallStipend
	}
	ret, returnGas, err := interp.evm.Call(scope.Contract.Address(), common.Address(addr.Bytes20()), args, gas, &value)
	return afterCall(interp, scope, ret, returnGas, retOffset, retSize, err)
}

func opCallCode(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.pop() // requested gas
	gas := interp.evm.callGasTemp
	addr, value := scope.Stack.pop(), scope.Stack.pop()
	inOffset, inSize := scope.Stack.pop(), scope.Stack.pop()
	retOffset, retSize := scope.Stack.pop(), scope.Stack.pop()

	if !value.IsZero() {
		gas += params.CallStipend
	}
	args := scope.Memory.GetCopy(int64(inOffset.Uint64()), int64(inSize.Uint64()))
	ret, returnGas, err := interp.evm.CallCode(scope.Contract.Address(), common.Address(addr.Bytes20()), args, gas, &value)
	return afterCall(interp, scope, ret, returnGas, retOffset, retSize, err)
}

func opDelegateCall(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.pop() // requested gas
	gas := interp.evm.callGasTemp
	addr := scope.Stack.pop()
	inOffset, inSize := scope.Stack.pop(), scope.Stack.pop()
	retOffset, retSize := scope.Stack.pop(), scope.Stack.pop()

	args := scope.Memory.GetCopy(int64(inOffset.Uint64()), int64(inSize.Uint64()))
	ret, returnGas, err := interp.evm.DelegateCall(scope.Contract, common.Address(addr.Bytes20()), args, gas)
	return afterCall(interp, scope, ret, returnGas, retOffset, retSize, err)
}

func opStaticCall(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error) {
	scope.Stack.pop() // requested gas
	gas := interp.evm.callGasTemp
	addr := scope.Stack.pop()
	inOffset, inSize := scope.Stack.pop(), scope.Stack.pop()
	retOffset, retSize := scope.Stack.pop(), scope.Stack.pop()

	args := scope.Memory.GetCopy(int64(inOffset.Uint64()), int64(inSize.Uint64()))
	ret, returnGas, err := interp.evm.StaticCall(scope.Contract.Address(), common.Address(addr.Bytes20()), args, gas)
	return afterCall(interp, scope, ret, returnGas, retOffset, retSize, err)
}

func afterCall(interp *EVMInterpreter, scope *ScopeContext, ret []byte, returnGas uint64, retOffset, retSize uint256.Int, err error) ([]byte, error) {
	success := new(uint256.Int)
	if err != nil {
		success.Clear()
	} else {
		success.SetOne()
	}
	scope.Stack.push(success)
	if err == nil || err == ErrExecutionReverted {
		scope.Memory.Set(retOffset.Uint64(), minU64(retSize.Uint64(), uint64(len(ret))), ret)
	}
	scope.Contract.Gas += returnGas
	interp.returnData = ret
	return nil, nil
}

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// getData returns size bytes of data starting at offset, zero-padded past
// the end of data — used by CALLDATALOAD/CALLDATACOPY/CODECOPY/
// EXTCODECOPY, every one of which reads past its source's length as zero
// rather than faulting.
func getData(data []byte, offset, size uint64) []byte {
	if offset > uint64(len(data)) {
		offset = uint64(len(data))
	}
	end := offset + size
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	cpy := make([]byte, size)
	copy(cpy, data[offset:end])
	return cpy
}
