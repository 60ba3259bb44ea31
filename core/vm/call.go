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

// Call runs the code at addr as a new child frame with caller as its
// apparent sender, per spec.md 4.7's CALL steps: depth check, value
// transfer, snapshot, execute, and — on any error — revert to the
// snapshot. Only a REVERT hands back the gas the child didn't spend; any
// other error consumes all of it.
func (evm *EVM) Call(caller common.Address, addr common.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	gasBefore := gas
	evm.enter(CallTypeCall, caller, addr, input, gas, value)
	defer func() { evm.exit(ret, gasBefore, leftOverGas, err) }()

	if evm.depth > params.CallCreateDepth {
		return nil, gas, ErrDepth
	}
	if !value.IsZero() && !evm.Context.CanTransfer(evm.StateDB, caller, value) {
		return nil, gas, ErrInsufficientBalance
	}
	snapshot := evm.StateDB.Snapshot()

	if !evm.StateDB.AccountExists(addr) {
		if value.IsZero() && evm.precompile(addr) == nil {
			// A zero-value call to a nonexistent, non-precompile address
			// is a no-op that still burns the gas already charged for it.
			return nil, gas, nil
		}
		evm.StateDB.MarkCreatedThisTransaction(addr)
	}
	evm.Context.Transfer(evm.StateDB, caller, addr, value)

	if pc := evm.precompile(addr); pc != nil {
		ret, gas, err = runPrecompile(pc, input, gas)
	} else {
		code := evm.StateDB.GetCode(addr)
		codeHash := evm.StateDB.GetCodeHash(addr)
		contract := NewContract(caller, addr, value, gas, nil)
		contract.SetCallCode(codeHash, code)
		ret, err = evm.interpreter.Run(contract, input, false)
		gas = contract.Gas
	}
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			gas = 0
		}
	}
	return ret, gas, err
}

// enter reports a new call/create frame to Config.Tracer, if one is set.
func (evm *EVM) enter(typ CallType, from, to common.Address, input []byte, gas uint64, value *uint256.Int) {
	if evm.Config.Tracer == nil || evm.Config.Tracer.OnEnter == nil {
		return
	}
	evm.Config.Tracer.OnEnter(evm.depth, typ, from, to, input, gas, value)
}

// exit reports a call/create frame's outcome to Config.Tracer. gasBefore is
// the gas the frame was given, gasAfter what it returned with unspent — the
// difference is gasUsed, what the tracer actually wants to see.
func (evm *EVM) exit(output []byte, gasBefore, gasAfter uint64, err error) {
	if evm.Config.Tracer == nil || evm.Config.Tracer.OnExit == nil {
		return
	}
	evm.Config.Tracer.OnExit(evm.depth, output, gasBefore-gasAfter, err, err != nil)
}

// CallCode is like Call but runs addr's code against the caller's own
// storage and address — a legacy library-call mechanism superseded by
// DelegateCall, which additionally preserves the caller's msg.value.
func (evm *EVM) CallCode(caller common.Address, addr common.Address, input []byte, gas uint64, value *uint256.Int) (ret []byte, leftOverGas uint64, err error) {
	gasBefore := gas
	evm.enter(CallTypeCallCode, caller, addr, input, gas, value)
	defer func() { evm.exit(ret, gasBefore, leftOverGas, err) }()

	if evm.depth > params.CallCreateDepth {
		return nil, gas, ErrDepth
	}
	if !value.IsZero() && !evm.Context.CanTransfer(evm.StateDB, caller, value) {
		return nil, gas, ErrInsufficientBalance
	}
	snapshot := evm.StateDB.Snapshot()

	if pc := evm.precompile(addr); pc != nil {
		ret, gas, err = runPrecompile(pc, input, gas)
	} else {
		code := evm.StateDB.GetCode(addr)
		codeHash := evm.StateDB.GetCodeHash(addr)
		contract := NewContract(caller, caller, value, gas, nil)
		contract.SetCallCode(codeHash, code)
		ret, err = evm.interpreter.Run(contract, input, false)
		gas = contract.Gas
	}
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			gas = 0
		}
	}
	return ret, gas, err
}

// DelegateCall runs addr's code in parent's frame: same address, same
// value, same caller as parent observed, only the code executing
// changes. No value is (re-)transferred — DELEGATECALL can't carry ether
// of its own.
func (evm *EVM) DelegateCall(parent *Contract, addr common.Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error) {
	gasBefore := gas
	evm.enter(CallTypeDelegateCall, parent.Caller(), addr, input, gas, nil)
	defer func() { evm.exit(ret, gasBefore, leftOverGas, err) }()

	if evm.depth > params.CallCreateDepth {
		return nil, gas, ErrDepth
	}
	snapshot := evm.StateDB.Snapshot()

	if pc := evm.precompile(addr); pc != nil {
		ret, gas, err = runPrecompile(pc, input, gas)
	} else {
		code := evm.StateDB.GetCode(addr)
		codeHash := evm.StateDB.GetCodeHash(addr)
		contract := NewContract(parent.Caller(), parent.Address(), nil, gas, nil).AsDelegate(parent)
		contract.SetCallCode(codeHash, code)
		ret, err = evm.interpreter.Run(contract, input, false)
		gas = contract.Gas
	}
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			gas = 0
		}
	}
	return ret, gas, err
}

// StaticCall runs addr's code under the read-only restriction: SSTORE,
// LOG*, CREATE*, and SELFDESTRUCT all fault rather than run, and no value
// ever moves.
func (evm *EVM) StaticCall(caller common.Address, addr common.Address, input []byte, gas uint64) (ret []byte, leftOverGas uint64, err error) {
	gasBefore := gas
	evm.enter(CallTypeStaticCall, caller, addr, input, gas, nil)
	defer func() { evm.exit(ret, gasBefore, leftOverGas, err) }()

	if evm.depth > params.CallCreateDepth {
		return nil, gas, ErrDepth
	}
	snapshot := evm.StateDB.Snapshot()

	if pc := evm.precompile(addr); pc != nil {
		ret, gas, err = runPrecompile(pc, input, gas)
	} else {
		code := evm.StateDB.GetCode(addr)
		codeHash := evm.StateDB.GetCodeHash(addr)
		contract := NewContract(caller, addr, new(uint256.Int), gas, nil)
		contract.SetCallCode(codeHash, code)
		ret, err = evm.interpreter.Run(contract, input, true)
		gas = contract.Gas
	}
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			gas = 0
		}
	}
	return ret, gas, err
}

// Create deploys new code at an address derived from caller's nonce
// (standard CREATE). See createCommon for the shared post-run code-store
// and collision logic spec.md 4.7 describes.
func (evm *EVM) Create(caller common.Address, code []byte, gas uint64, value *uint256.Int) ([]byte, common.Address, uint64, error) {
	nonce := evm.StateDB.GetNonce(caller)
	addr := crypto.CreateAddress(caller, nonce)
	evm.StateDB.SetNonce(caller, nonce+1)
	return evm.createCommon(CallTypeCreate, caller, code, gas, value, addr)
}

// Create2 deploys new code at an address derived from caller, salt, and
// the init code's hash — deterministic independent of caller's nonce,
// letting a counterfactual address be computed and funded before the
// contract is actually deployed.
func (evm *EVM) Create2(caller common.Address, code []byte, gas uint64, value *uint256.Int, salt *uint256.Int) ([]byte, common.Address, uint64, error) {
	codeHash := crypto.Keccak256(code)
	addr := crypto.CreateAddress2(caller, salt.Bytes32(), codeHash)
	nonce := evm.StateDB.GetNonce(caller)
	evm.StateDB.SetNonce(caller, nonce+1)
	return evm.createCommon(CallTypeCreate2, caller, code, gas, value, addr)
}

func (evm *EVM) createCommon(typ CallType, caller common.Address, initCode []byte, gas uint64, value *uint256.Int, addr common.Address) (ret []byte, _ common.Address, leftOverGas uint64, err error) {
	gasBefore := gas
	evm.enter(typ, caller, addr, initCode, gas, value)
	defer func() { evm.exit(ret, gasBefore, leftOverGas, err) }()

	if evm.depth > params.CallCreateDepth {
		return nil, addr, gas, ErrDepth
	}
	if !value.IsZero() && !evm.Context.CanTransfer(evm.StateDB, caller, value) {
		return nil, addr, gas, ErrInsufficientBalance
	}
	if evm.StateDB.AccountExists(addr) && contractCollision(evm.StateDB, addr) {
		return nil, addr, gas, ErrContractAddressCollision
	}

	snapshot := evm.StateDB.Snapshot()
	evm.StateDB.MarkCreatedThisTransaction(addr)
	evm.StateDB.SetNonce(addr, 1)
	evm.Context.Transfer(evm.StateDB, caller, addr, value)

	contract := NewContract(caller, addr, value, gas, nil)
	contract.IsDeployment = true
	contract.SetCallCode(common.Hash{}, initCode)

	ret, err = evm.interpreter.Run(contract, nil, false)
	if err == nil {
		err = checkCreateResult(ret)
	}
	if err == nil {
		createDataGas, overflow := SafeMul(uint64(len(ret)), params.CreateDataGas)
		if overflow || !contract.UseGas(createDataGas) {
			err = ErrCodeStoreOutOfGas
		} else {
			evm.StateDB.SetCode(addr, ret)
		}
	}
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if err != ErrExecutionReverted {
			contract.Gas = 0
		}
		return ret, addr, contract.Gas, err
	}
	return ret, addr, contract.Gas, nil
}

// checkCreateResult enforces the deployed-code constraints spec.md 4.7
// names: a hard size cap (EIP-170) and the EIP-3541 ban on code starting
// with the 0xEF reserved byte (reserved for a future versioned-code
// format so legacy clients don't try to interpret it as bytecode).
func checkCreateResult(code []byte) error {
	if len(code) > params.MaxCodeSize {
		return ErrMaxCodeSizeExceeded
	}
	if len(code) > 0 && code[0] == 0xEF {
		return ErrInvalidCode
	}
	return nil
}

// contractCollision reports whether addr already looks "used" — has sent
// a transaction or already has code — the condition under which a new
// CREATE/CREATE2 landing on the same address must fail rather than
// silently overwrite an existing contract.
func contractCollision(db StateDB, addr common.Address) bool {
	return db.GetNonce(addr) != 0 || len(db.GetCode(addr)) != 0
}
