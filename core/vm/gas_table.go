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
	"github.com/probechain/pevm/params"
)

// gasSStore implements the pre-Istanbul flat-rate SSTORE pricing: a write
// to a previously-zero slot costs SstoreSetGas, any other write costs
// SstoreResetGas, and clearing a nonzero slot to zero earns a refund.
func gasSStore(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	var (
		y, x = stack.Back(1), stack.peek()
		slot = common.Hash(x.Bytes32())
	)
	current := evm.StateDB.GetStorage(contract.Address(), slot)

	if current == (common.Hash{}) && y.Sign() != 0 {
		return params.SstoreSetGas, nil
	} else if current != (common.Hash{}) && y.Sign() == 0 {
		evm.StateDB.AddRefund(params.SstoreRefundGas)
	}
	return params.SstoreResetGas, nil
}

// gasSStoreEIP2200 implements EIP-2200 net-gas metering (Istanbul on):
// the cost and refund depend on comparing the slot's original value (as
// of this transaction's start), its current value, and the new value
// being written. The EIP-2200 gas sentry forbids SSTORE whenever less
// than SstoreSentryGasEIP2200 gas remains, regardless of what it would
// otherwise cost, so a contract can't be tricked into a state change it
// can't afford to also finish executing after.
func gasSStoreEIP2200(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	if contract.Gas <= params.SstoreSentryGasEIP2200 {
		return 0, ErrOutOfGas
	}
	y, x := stack.Back(1), stack.peek()
	slot := common.Hash(x.Bytes32())
	current := evm.StateDB.GetStorage(contract.Address(), slot)
	value := common.Hash(y.Bytes32())

	if current == value {
		return params.SloadGasEIP2200, nil
	}
	original := evm.StateDB.GetCommittedStorage(contract.Address(), slot)
	if original == current {
		if original == (common.Hash{}) {
			return params.SstoreSetGasEIP2200, nil
		}
		if value == (common.Hash{}) {
			evm.StateDB.AddRefund(params.SstoreClearsScheduleRefundEIP2200)
		}
		return params.SstoreResetGasEIP2200, nil
	}
	if original != (common.Hash{}) {
		if current == (common.Hash{}) {
			evm.StateDB.SubRefund(params.SstoreClearsScheduleRefundEIP2200)
		} else if value == (common.Hash{}) {
			evm.StateDB.AddRefund(params.SstoreClearsScheduleRefundEIP2200)
		}
	}
	if original == value {
		if original == (common.Hash{}) {
			evm.StateDB.AddRefund(params.SstoreSetGasEIP2200 - params.SloadGasEIP2200)
		} else {
			evm.StateDB.AddRefund(params.SstoreResetGasEIP2200 - params.SloadGasEIP2200)
		}
	}
	return params.SloadGasEIP2200, nil
}

// gasSStoreEIP2929 layers the Berlin cold/warm surcharge from EIP-2929 on
// top of gasSStoreEIP2200: accessing a slot for the first time this
// transaction additionally costs ColdSloadCostEIP2929, folded into the
// SSTORE price instead of charged separately (SSTORE's own gasFunc is
// what marks the slot warm, since a bare SLOAD never reaches this code
// path).
func gasSStoreEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	if contract.Gas <= params.SstoreSentryGasEIP2200 {
		return 0, ErrOutOfGas
	}
	y, x := stack.Back(1), stack.peek()
	slot := common.Hash(x.Bytes32())
	addr := contract.Address()

	var coldCost uint64
	if _, slotWarm := evm.StateDB.SlotInAccessList(addr, slot); !slotWarm {
		evm.StateDB.AddSlotToAccessList(addr, slot)
		coldCost = params.ColdSloadCostEIP2929
	}

	current := evm.StateDB.GetStorage(addr, slot)
	value := common.Hash(y.Bytes32())
	if current == value {
		return params.WarmStorageReadCostEIP2929 + coldCost, nil
	}
	// No cap on the total refund (gasUsed/Rules.MaxRefundQuotient) is
	// applied here or anywhere else in this module: the StateDB refund
	// counter accumulates every SSTORE contribution uncapped.
	original := evm.StateDB.GetCommittedStorage(addr, slot)

	if original == current {
		if original == (common.Hash{}) {
			return params.SstoreSetGasEIP2200 + coldCost, nil
		}
		if value == (common.Hash{}) {
			evm.StateDB.AddRefund(params.SstoreClearsScheduleRefundEIP2200)
		}
		return params.SstoreResetGasEIP2200 - params.ColdSloadCostEIP2929 + coldCost, nil
	}
	if original != (common.Hash{}) {
		if current == (common.Hash{}) {
			evm.StateDB.SubRefund(params.SstoreClearsScheduleRefundEIP2200)
		} else if value == (common.Hash{}) {
			evm.StateDB.AddRefund(params.SstoreClearsScheduleRefundEIP2200)
		}
	}
	if original == value {
		if original == (common.Hash{}) {
			evm.StateDB.AddRefund(params.SstoreSetGasEIP2200 - params.WarmStorageReadCostEIP2929)
		} else {
			evm.StateDB.AddRefund(params.SstoreResetGasEIP2200 - params.ColdSloadCostEIP2929 - params.WarmStorageReadCostEIP2929)
		}
	}
	return params.WarmStorageReadCostEIP2929 + coldCost, nil
}

// gasSLoadEIP2929 implements Berlin's cold/warm SLOAD pricing: the first
// access to a slot within a transaction costs ColdSloadCostEIP2929; every
// subsequent access to the same slot costs only WarmStorageReadCostEIP2929.
func gasSLoadEIP2929(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	slot := common.Hash(stack.peek().Bytes32())
	addr := contract.Address()
	if _, slotWarm := evm.StateDB.SlotInAccessList(addr, slot); slotWarm {
		return params.WarmStorageReadCostEIP2929, nil
	}
	evm.StateDB.AddSlotToAccessList(addr, slot)
	return params.ColdSloadCostEIP2929, nil
}

// gasExtCodeCopy prices EXTCODECOPY beyond its constantGas: the
// word-rounded copy cost plus memory expansion, plus from Berlin on the
// EIP-2929 account access cost (before Berlin the flat base cost is the
// jump table's constantGas).
func gasExtCodeCopy(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	words := wordsFromStackLen(stack.Back(3))
	wordGas, overflow := SafeMul(words, params.CopyGas)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	base := extCodeCopyBase(evm, contract, stack)
	if gas, overflow = SafeAdd(gas, base); overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = SafeAdd(gas, wordGas); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

// wordsFromStackLen reads a *COPY opcode's length operand off the stack
// and rounds it up to a word count; a length too large to fit a uint64
// clamps rather than panics (memoryGasCost/the subsequent memory Resize
// already reject sizes this large with ErrGasUintOverflow).
func wordsFromStackLen(length *uint256.Int) uint64 {
	if !length.IsUint64() {
		return toWordSize(0xFFFFFFFFE0)
	}
	return toWordSize(length.Uint64())
}

func extCodeCopyBase(evm *EVM, contract *Contract, stack *Stack) uint64 {
	if !evm.chainRules.IsBerlin {
		return 0
	}
	addr := common.Address(stack.Back(0).Bytes20())
	return coldWarmAccountCost(evm, addr)
}

// coldWarmAccountCost applies EIP-2929: ColdAccountAccessCostEIP2929 on
// first touch of addr this transaction, WarmStorageReadCostEIP2929 after,
// marking addr warm as a side effect.
func coldWarmAccountCost(evm *EVM, addr common.Address) uint64 {
	if evm.StateDB.AddressInAccessList(addr) {
		return params.WarmStorageReadCostEIP2929
	}
	evm.StateDB.AddAddressToAccessList(addr)
	return params.ColdAccountAccessCostEIP2929
}

// gasEip2929AccountCheck is shared by BALANCE/EXTCODESIZE/EXTCODEHASH
// under Berlin: all three take their single address argument straight off
// the top of the stack.
func gasEip2929AccountCheck(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	addr := common.Address(stack.peek().Bytes20())
	return coldWarmAccountCost(evm, addr), nil
}

func makeGasLog(n uint64) gasFunc {
	return func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		requestedSize, overflow := stack.Back(1).Uint64WithOverflow()
		if overflow {
			return 0, ErrGasUintOverflow
		}
		gas, err := memoryGasCost(mem, memorySize)
		if err != nil {
			return 0, err
		}
		if gas, overflow = SafeAdd(gas, params.LogGas); overflow {
			return 0, ErrGasUintOverflow
		}
		if gas, overflow = SafeAdd(gas, n*params.LogTopicGas); overflow {
			return 0, ErrGasUintOverflow
		}
		var memorySizeGas uint64
		if memorySizeGas, overflow = SafeMul(requestedSize, params.LogDataGas); overflow {
			return 0, ErrGasUintOverflow
		}
		if gas, overflow = SafeAdd(gas, memorySizeGas); overflow {
			return 0, ErrGasUintOverflow
		}
		return gas, nil
	}
}

// gasCopyWord covers CALLDATACOPY/CODECOPY/RETURNDATACOPY, each of which
// charges memory expansion plus CopyGas per word copied, with the length
// operand always third from the stack top.
func gasCopyWord(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	words := wordsFromStackLen(stack.Back(2))
	wordGas, overflow := SafeMul(words, params.CopyGas)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = SafeAdd(gas, wordGas); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

var (
	gasCallDataCopy   = gasCopyWord
	gasCodeCopy       = gasCopyWord
	gasReturnDataCopy = gasCopyWord
)

func gasKeccak256(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	wordGas := wordsFromStackLen(stack.Back(1))
	var overflow bool
	if wordGas, overflow = SafeMul(wordGas, params.Keccak256WordGas); overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = SafeAdd(gas, wordGas); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

// pureMemoryGasCost covers every opcode whose only dynamic cost is
// memory expansion: RETURN, REVERT, MLOAD, MSTORE, MSTORE8, CREATE,
// CREATE2 (pre-3860), MCOPY.
func pureMemoryGasCost(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return memoryGasCost(mem, memorySize)
}

var (
	gasReturn  = pureMemoryGasCost
	gasRevert  = pureMemoryGasCost
	gasMLoad   = pureMemoryGasCost
	gasMStore  = pureMemoryGasCost
	gasMStore8 = pureMemoryGasCost
)

func gasMCopy(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	words := wordsFromStackLen(stack.Back(2))
	wordGas, overflow := SafeMul(words, params.CopyGas)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = SafeAdd(gas, wordGas); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

// gasCreate prices CREATE pre-EIP-3860 (init-code size wasn't metered,
// only memory expansion was).
func gasCreate(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return memoryGasCost(mem, memorySize)
}

// gasCreateEip3860 additionally charges InitCodeWordGas per word of
// init code, and rejects code over MaxInitCodeSize outright.
func gasCreateEip3860(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	size, overflow := stack.Back(2).Uint64WithOverflow()
	if overflow || size > params.MaxInitCodeSize {
		return 0, ErrMaxInitCodeSizeExceeded
	}
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	words := toWordSize(size)
	wordGas, overflow := SafeMul(words, params.InitCodeWordGas)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = SafeAdd(gas, wordGas); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

func gasCreate2(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	words := wordsFromStackLen(stack.Back(2))
	wordGas, overflow := SafeMul(words, params.Keccak256WordGas)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = SafeAdd(gas, wordGas); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

func gasCreate2Eip3860(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	size, overflow := stack.Back(2).Uint64WithOverflow()
	if overflow || size > params.MaxInitCodeSize {
		return 0, ErrMaxInitCodeSizeExceeded
	}
	gas, err := gasCreate2(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	words := toWordSize(size)
	wordGas, overflow := SafeMul(words, params.InitCodeWordGas)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = SafeAdd(gas, wordGas); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

func gasExpFrontier(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	expByteLen := uint64((stack.Back(1).BitLen() + 7) / 8)
	gas, overflow := SafeMul(expByteLen, params.ExpByteGas)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = SafeAdd(gas, params.GasSlowStep); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

func gasExpEIP158(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	expByteLen := uint64((stack.Back(1).BitLen() + 7) / 8)
	gas, overflow := SafeMul(expByteLen, params.ExpByteGasEIP158)
	if overflow {
		return 0, ErrGasUintOverflow
	}
	if gas, overflow = SafeAdd(gas, params.GasSlowStep); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

// callGas implements EIP-150's "63/64 retention" rule: a CALL-family
// opcode may request any amount of gas for its callee, but at most
// `remaining - remaining/64` of what's left after this opcode's own base
// cost is ever forwarded — the rest always stays with the caller. Before
// EIP-150 the requested amount (if affordable) was forwarded in full.
func callGas(isEip150 bool, availableGas, base uint64, gasRequested *uint256.Int) (uint64, error) {
	if isEip150 {
		availableGas -= base
		gas := availableGas - availableGas/64
		if !gasRequested.IsUint64() || gasRequested.Uint64() > gas {
			return gas, nil
		}
	}
	if !gasRequested.IsUint64() {
		return 0, ErrGasUintOverflow
	}
	return gasRequested.Uint64(), nil
}

func gasCall(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	var (
		gas            uint64
		transfersValue = !stack.Back(2).IsZero()
		addr           = common.Address(stack.Back(1).Bytes20())
	)
	if evm.chainRules.IsBerlin {
		gas = coldWarmAccountCost(evm, addr)
	} else if evm.chainRules.IsEIP158 {
		if transfersValue && evm.StateDB.Empty(addr) {
			gas += params.CallNewAccountGas
		}
	} else if !evm.StateDB.AccountExists(addr) {
		gas += params.CallNewAccountGas
	}
	if transfersValue {
		gas += params.CallValueTransferGas
	}
	memGas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	var overflow bool
	if gas, overflow = SafeAdd(gas, memGas); overflow {
		return 0, ErrGasUintOverflow
	}
	evm.callGasTemp, err = callGas(evm.chainRules.IsEIP150, contract.Gas, gas, stack.Back(0))
	if err != nil {
		return 0, err
	}
	if gas, overflow = SafeAdd(gas, evm.callGasTemp); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

func gasCallCode(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	var gas uint64
	addr := common.Address(stack.Back(1).Bytes20())
	if evm.chainRules.IsBerlin {
		gas = coldWarmAccountCost(evm, addr)
	}
	if !stack.Back(2).IsZero() {
		gas += params.CallValueTransferGas
	}
	memGas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	var overflow bool
	if gas, overflow = SafeAdd(gas, memGas); overflow {
		return 0, ErrGasUintOverflow
	}
	evm.callGasTemp, err = callGas(evm.chainRules.IsEIP150, contract.Gas, gas, stack.Back(0))
	if err != nil {
		return 0, err
	}
	if gas, overflow = SafeAdd(gas, evm.callGasTemp); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

func gasDelegateCall(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	addr := common.Address(stack.Back(1).Bytes20())
	var overflow bool
	if evm.chainRules.IsBerlin {
		if gas, overflow = SafeAdd(gas, coldWarmAccountCost(evm, addr)); overflow {
			return 0, ErrGasUintOverflow
		}
	}
	evm.callGasTemp, err = callGas(evm.chainRules.IsEIP150, contract.Gas, gas, stack.Back(0))
	if err != nil {
		return 0, err
	}
	if gas, overflow = SafeAdd(gas, evm.callGasTemp); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

func gasStaticCall(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	gas, err := memoryGasCost(mem, memorySize)
	if err != nil {
		return 0, err
	}
	addr := common.Address(stack.Back(1).Bytes20())
	var overflow bool
	if evm.chainRules.IsBerlin {
		if gas, overflow = SafeAdd(gas, coldWarmAccountCost(evm, addr)); overflow {
			return 0, ErrGasUintOverflow
		}
	}
	evm.callGasTemp, err = callGas(evm.chainRules.IsEIP150, contract.Gas, gas, stack.Back(0))
	if err != nil {
		return 0, err
	}
	if gas, overflow = SafeAdd(gas, evm.callGasTemp); overflow {
		return 0, ErrGasUintOverflow
	}
	return gas, nil
}

// gasSelfdestruct prices SELFDESTRUCT: a flat base cost, an EIP-2929 cold
// surcharge on the beneficiary address, and a new-account-creation
// surcharge when the beneficiary didn't previously exist and the
// SELFDESTRUCTing account carries a nonzero balance.
func gasSelfdestruct(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	var gas uint64
	if evm.chainRules.IsEIP158 {
		gas = params.SelfdestructGasEIP150
		beneficiary := common.Address(stack.peek().Bytes20())
		if evm.StateDB.Empty(beneficiary) && !evm.StateDB.GetBalance(contract.Address()).IsZero() {
			gas += params.CreateBySelfdestructGas
		}
	} else if evm.chainRules.IsEIP150 {
		gas = params.SelfdestructGasEIP150
	}
	if evm.chainRules.IsBerlin {
		beneficiary := common.Address(stack.peek().Bytes20())
		if !evm.StateDB.AddressInAccessList(beneficiary) {
			evm.StateDB.AddAddressToAccessList(beneficiary)
			gas += params.ColdAccountAccessCostEIP2929
		}
	}
	return gas, nil
}

// gasTload/gasTstore implement EIP-1153: a flat warm-equivalent price,
// since transient storage carries no cold/warm distinction of its own.
func gasTload(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return params.TransientStorageReadGasEIP1153, nil
}

func gasTstore(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return params.TransientStorageWriteGasEIP1153, nil
}
