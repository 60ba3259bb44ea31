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
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/probechain/pevm/common"
	"github.com/probechain/pevm/params"
)

// stubStateDB satisfies StateDB with in-memory maps, enough to exercise
// SSTORE/SLOAD/balance/access-list paths without a real backing store.
type stubStateDB struct {
	balances map[common.Address]*uint256.Int
	nonces   map[common.Address]uint64
	code     map[common.Address][]byte
	storage  map[common.Address]map[common.Hash]common.Hash
	access   map[common.Address]bool
}

func newStubStateDB() *stubStateDB {
	return &stubStateDB{
		balances: make(map[common.Address]*uint256.Int),
		nonces:   make(map[common.Address]uint64),
		code:     make(map[common.Address][]byte),
		storage:  make(map[common.Address]map[common.Hash]common.Hash),
		access:   make(map[common.Address]bool),
	}
}

func (s *stubStateDB) GetAccount(addr common.Address) (Account, bool) { return Account{}, false }
func (s *stubStateDB) SetAccount(addr common.Address, acct Account)   {}
func (s *stubStateDB) DeleteAccount(addr common.Address)              {}
func (s *stubStateDB) AccountExists(addr common.Address) bool         { return true }

func (s *stubStateDB) GetStorage(addr common.Address, key common.Hash) common.Hash {
	return s.storage[addr][key]
}
func (s *stubStateDB) SetStorage(addr common.Address, key, value common.Hash) {
	if s.storage[addr] == nil {
		s.storage[addr] = make(map[common.Hash]common.Hash)
	}
	s.storage[addr][key] = value
}
func (s *stubStateDB) GetCommittedStorage(addr common.Address, key common.Hash) common.Hash {
	return common.Hash{}
}

func (s *stubStateDB) GetTransientStorage(addr common.Address, key common.Hash) common.Hash {
	return common.Hash{}
}
func (s *stubStateDB) SetTransientStorage(addr common.Address, key, value common.Hash) {}

func (s *stubStateDB) GetCode(addr common.Address) []byte           { return s.code[addr] }
func (s *stubStateDB) GetCodeHash(addr common.Address) common.Hash  { return common.Hash{} }
func (s *stubStateDB) SetCode(addr common.Address, code []byte)     { s.code[addr] = code }

func (s *stubStateDB) GetBalance(addr common.Address) *uint256.Int {
	if b, ok := s.balances[addr]; ok {
		return b
	}
	return new(uint256.Int)
}
func (s *stubStateDB) SetBalance(addr common.Address, amount *uint256.Int) {
	s.balances[addr] = amount
}
func (s *stubStateDB) GetNonce(addr common.Address) uint64        { return s.nonces[addr] }
func (s *stubStateDB) SetNonce(addr common.Address, nonce uint64) { s.nonces[addr] = nonce }

func (s *stubStateDB) AddRefund(gas uint64)  {}
func (s *stubStateDB) SubRefund(gas uint64)  {}
func (s *stubStateDB) GetRefund() uint64     { return 0 }

func (s *stubStateDB) AddLog(l *Log)                           {}
func (s *stubStateDB) GetLogs(txHash common.Hash) []*Log       { return nil }

func (s *stubStateDB) AddressInAccessList(addr common.Address) bool { return s.access[addr] }
func (s *stubStateDB) SlotInAccessList(addr common.Address, slot common.Hash) (bool, bool) {
	return false, false
}
func (s *stubStateDB) AddAddressToAccessList(addr common.Address) { s.access[addr] = true }
func (s *stubStateDB) AddSlotToAccessList(addr common.Address, slot common.Hash) {}

func (s *stubStateDB) Snapshot() int             { return 0 }
func (s *stubStateDB) RevertToSnapshot(id int)   {}

func (s *stubStateDB) Selfdestruct(addr common.Address)             {}
func (s *stubStateDB) HasSelfdestructed(addr common.Address) bool   { return false }
func (s *stubStateDB) MarkCreatedThisTransaction(addr common.Address) {}
func (s *stubStateDB) CreatedThisTransaction(addr common.Address) bool { return false }

func (s *stubStateDB) Empty(addr common.Address) bool { return false }

func newTestEVM() *EVM {
	return NewEVM(BlockContext{}, TxContext{}, newStubStateDB(), params.Cancun, Config{})
}

func runCode(t *testing.T, code []byte) []byte {
	t.Helper()
	evm := newTestEVM()
	contract := NewContract(common.Address{}, common.Address{}, new(uint256.Int), 1_000_000, nil)
	contract.SetCallCode(common.Hash{}, code)
	out, err := evm.Interpreter().Run(contract, nil, false)
	require.NoError(t, err)
	return out
}

func TestInterpreterAddAndReturn(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x02,
		byte(PUSH1), 0x03,
		byte(ADD),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	out := runCode(t, code)
	require.Len(t, out, 32)
	require.Equal(t, uint64(5), new(uint256.Int).SetBytes(out).Uint64())
}

func TestInterpreterJumpToValidDest(t *testing.T) {
	// PUSH1 5; JUMP; (dead byte skipped); JUMPDEST; PUSH1 1; PUSH1 0; MSTORE;
	// PUSH1 32; PUSH1 0; RETURN
	code := []byte{
		byte(PUSH1), 0x05,
		byte(JUMP),
		byte(INVALID),
		byte(INVALID),
		byte(JUMPDEST),
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	out := runCode(t, code)
	require.Equal(t, uint64(1), new(uint256.Int).SetBytes(out).Uint64())
}

func TestInterpreterInvalidJumpFaults(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x09, // not a JUMPDEST
		byte(JUMP),
	}
	evm := newTestEVM()
	contract := NewContract(common.Address{}, common.Address{}, new(uint256.Int), 1_000_000, nil)
	contract.SetCallCode(common.Hash{}, code)
	_, err := evm.Interpreter().Run(contract, nil, false)
	require.ErrorIs(t, err, ErrInvalidJump)
}

func TestInterpreterOutOfGasOnUnderfundedBlock(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x02,
		byte(ADD),
		byte(STOP),
	}
	evm := newTestEVM()
	contract := NewContract(common.Address{}, common.Address{}, new(uint256.Int), 2, nil)
	contract.SetCallCode(common.Hash{}, code)
	_, err := evm.Interpreter().Run(contract, nil, false)
	require.ErrorIs(t, err, ErrOutOfGas)
}

func TestInterpreterWriteProtectionInReadOnlyMode(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(SSTORE),
	}
	evm := newTestEVM()
	contract := NewContract(common.Address{}, common.Address{}, new(uint256.Int), 1_000_000, nil)
	contract.SetCallCode(common.Hash{}, code)
	_, err := evm.Interpreter().Run(contract, nil, true)
	require.ErrorIs(t, err, ErrWriteProtection)
}
