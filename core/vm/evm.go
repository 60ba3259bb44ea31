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
	"sync/atomic"

	"github.com/holiman/uint256"

	"github.com/probechain/pevm/common"
	"github.com/probechain/pevm/params"
)

// StateDB is the account/storage view the interpreter and call
// orchestrator program against. core/state.StateDB is the only
// implementation; it lives in its own package (rather than here) to avoid
// state importing vm for its Log/Account types while vm imports state for
// this interface — tests instead supply lightweight fakes.
type StateDB interface {
	GetAccount(addr common.Address) (Account, bool)
	SetAccount(addr common.Address, acct Account)
	DeleteAccount(addr common.Address)
	AccountExists(addr common.Address) bool

	GetStorage(addr common.Address, key common.Hash) common.Hash
	SetStorage(addr common.Address, key, value common.Hash)
	GetCommittedStorage(addr common.Address, key common.Hash) common.Hash

	GetTransientStorage(addr common.Address, key common.Hash) common.Hash
	SetTransientStorage(addr common.Address, key, value common.Hash)

	GetCode(addr common.Address) []byte
	GetCodeHash(addr common.Address) common.Hash
	SetCode(addr common.Address, code []byte)

	GetBalance(addr common.Address) *uint256.Int
	SetBalance(addr common.Address, amount *uint256.Int)
	GetNonce(addr common.Address) uint64
	SetNonce(addr common.Address, nonce uint64)

	AddRefund(gas uint64)
	SubRefund(gas uint64)
	GetRefund() uint64

	AddLog(l *Log)
	GetLogs(txHash common.Hash) []*Log

	AddressInAccessList(addr common.Address) bool
	SlotInAccessList(addr common.Address, slot common.Hash) (bool, bool)
	AddAddressToAccessList(addr common.Address)
	AddSlotToAccessList(addr common.Address, slot common.Hash)

	Snapshot() int
	RevertToSnapshot(id int)

	Selfdestruct(addr common.Address)
	HasSelfdestructed(addr common.Address) bool
	MarkCreatedThisTransaction(addr common.Address)
	CreatedThisTransaction(addr common.Address) bool

	Empty(addr common.Address) bool
}

// Account is the account record exchanged through StateDB.
// core/state.Account is a type alias of it: core/state imports this
// package, so declaring the type here keeps vm free of any import of
// core/state.
type Account struct {
	Nonce    uint64
	Balance  *uint256.Int
	CodeHash common.Hash
}

// Log is aliased as core/state.Log for the same reason.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

type (
	// CanTransferFunc reports whether addr holds at least amount.
	CanTransferFunc func(StateDB, common.Address, *uint256.Int) bool
	// TransferFunc moves amount from sender to recipient.
	TransferFunc func(StateDB, common.Address, common.Address, *uint256.Int)
	// GetHashFunc returns the hash of the n'th ancestor block, for BLOCKHASH.
	GetHashFunc func(uint64) common.Hash
)

// BlockContext carries the block-scoped values every opcode in the 0x40
// range reads; it does not change across calls within one block.
type BlockContext struct {
	CanTransfer CanTransferFunc
	Transfer    TransferFunc
	GetHash     GetHashFunc

	Coinbase    common.Address
	GasLimit    uint64
	BlockNumber uint64
	Time        uint64
	Difficulty  *uint256.Int
	BaseFee     *uint256.Int
	BlobBaseFee *uint256.Int
	Random      *common.Hash // post-merge PREVRANDAO source; nil pre-merge
	ChainID     *uint256.Int
}

// TxContext carries the values that can change between transactions within
// the same block.
type TxContext struct {
	Origin     common.Address
	GasPrice   *uint256.Int
	BlobHashes []common.Hash
}

// Config are the configuration options for the interpreter.
type Config struct {
	Tracer                  *Hooks
	NoBaseFee               bool
	EnablePreimageRecording bool
	ExtraEips               []int
}

// EVM ties together one call tree's block/transaction context, state
// backend, and interpreter. An EVM instance runs one transaction at a time
// and must not be shared between goroutines; Reset prepares it for the
// next transaction in the same block.
type EVM struct {
	Context BlockContext
	TxContext

	StateDB StateDB

	depth int

	fork       params.Fork
	chainRules params.Rules
	Config     Config

	interpreter *EVMInterpreter

	abort int32

	// callGasTemp holds the gas computed by the CALL-family gas functions
	// under the EIP-150 63/64 rule, handed off to the corresponding
	// opCall* execution function because the stack-popped "requested gas"
	// argument and the gas actually forwarded can differ.
	callGasTemp uint64
}

// NewEVM returns an EVM ready to execute one transaction's call tree.
func NewEVM(blockCtx BlockContext, txCtx TxContext, statedb StateDB, fork params.Fork, config Config) *EVM {
	evm := &EVM{
		Context:    blockCtx,
		TxContext:  txCtx,
		StateDB:    statedb,
		fork:       fork,
		chainRules: params.RulesForFork(fork),
		Config:     config,
	}
	evm.interpreter = NewEVMInterpreter(evm)
	return evm
}

// Reset prepares evm for a new transaction within the same block.
func (evm *EVM) Reset(txCtx TxContext, statedb StateDB) {
	evm.TxContext = txCtx
	evm.StateDB = statedb
}

// Cancel sets the abort flag that Cancelled reports. Safe to call from
// another goroutine and safe to call more than once. The interpreter does
// not consult the flag, so a Run already in progress is not stopped.
func (evm *EVM) Cancel() {
	atomic.StoreInt32(&evm.abort, 1)
}

// Cancelled reports whether Cancel has been called.
func (evm *EVM) Cancelled() bool {
	return atomic.LoadInt32(&evm.abort) == 1
}

// ChainRules returns the fork-gated feature set this EVM is executing
// under.
func (evm *EVM) ChainRules() params.Rules {
	return evm.chainRules
}

// chainID returns the CHAINID opcode's operand, defaulting to zero for
// callers (mainly tests) that never populated BlockContext.ChainID.
func (evm *EVM) chainID() *uint256.Int {
	if evm.Context.ChainID == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(evm.Context.ChainID)
}

// Interpreter returns the EVM's bytecode interpreter.
func (evm *EVM) Interpreter() *EVMInterpreter {
	return evm.interpreter
}
