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

func canTransfer(db StateDB, addr common.Address, amount *uint256.Int) bool {
	return db.GetBalance(addr).Cmp(amount) >= 0
}

func transfer(db StateDB, sender, recipient common.Address, amount *uint256.Int) {
	sdb := db.(*stubStateDB)
	sdb.balances[sender] = new(uint256.Int).Sub(sdb.GetBalance(sender), amount)
	sdb.balances[recipient] = new(uint256.Int).Add(sdb.GetBalance(recipient), amount)
}

func newTransferEVM() (*EVM, *stubStateDB) {
	sdb := newStubStateDB()
	evm := NewEVM(BlockContext{CanTransfer: canTransfer, Transfer: transfer}, TxContext{}, sdb, params.Cancun, Config{})
	return evm, sdb
}

func TestCallTransfersValueToEOA(t *testing.T) {
	evm, sdb := newTransferEVM()
	// Addresses 0x01..0x0a are the fixed precompile range; pick outside it.
	sender := common.HexToAddress("0x11")
	recipient := common.HexToAddress("0x22")
	sdb.balances[sender] = uint256.NewInt(100)

	_, gasLeft, err := evm.Call(sender, recipient, nil, 100_000, uint256.NewInt(40))
	require.NoError(t, err)
	require.Equal(t, uint64(100_000), gasLeft, "a value call to a code-less EOA spends no opcode gas")
	require.Equal(t, uint64(60), sdb.GetBalance(sender).Uint64())
	require.Equal(t, uint64(40), sdb.GetBalance(recipient).Uint64())
}

func TestCallInsufficientBalance(t *testing.T) {
	evm, sdb := newTransferEVM()
	sender := common.HexToAddress("0x11")
	recipient := common.HexToAddress("0x22")
	sdb.balances[sender] = uint256.NewInt(10)

	_, gasLeft, err := evm.Call(sender, recipient, nil, 100_000, uint256.NewInt(40))
	require.ErrorIs(t, err, ErrInsufficientBalance)
	require.Equal(t, uint64(100_000), gasLeft)
}

func TestCallDepthLimit(t *testing.T) {
	evm, _ := newTransferEVM()
	evm.depth = params.CallCreateDepth + 1

	_, gasLeft, err := evm.Call(common.Address{}, common.Address{}, nil, 50, new(uint256.Int))
	require.ErrorIs(t, err, ErrDepth)
	require.Equal(t, uint64(50), gasLeft)
}

func TestCreateDeploysReturnedCode(t *testing.T) {
	evm, sdb := newTransferEVM()
	caller := common.HexToAddress("0x01")
	sdb.balances[caller] = uint256.NewInt(1000)

	// init code: PUSH1 <runtime>; PUSH1 0; MSTORE... simplest: return a
	// single STOP byte as the deployed runtime code.
	runtime := []byte{byte(STOP)}
	initCode := []byte{
		byte(PUSH1), runtime[0],
		byte(PUSH1), 0x00,
		byte(MSTORE8),
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}

	_, addr, _, err := evm.Create(caller, initCode, 1_000_000, new(uint256.Int))
	require.NoError(t, err)
	require.Equal(t, runtime, sdb.GetCode(addr))
	require.Equal(t, uint64(1), sdb.GetNonce(addr))
}

func TestCreateRejectsEip3541ReservedPrefix(t *testing.T) {
	evm, sdb := newTransferEVM()
	caller := common.HexToAddress("0x01")
	sdb.balances[caller] = uint256.NewInt(1000)

	// init code: PUSH1 0xEF; PUSH1 0; MSTORE8; PUSH1 1; PUSH1 0; RETURN
	initCode := []byte{
		byte(PUSH1), 0xEF,
		byte(PUSH1), 0x00,
		byte(MSTORE8),
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}

	_, _, _, err := evm.Create(caller, initCode, 1_000_000, new(uint256.Int))
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestCreate2CollisionRejected(t *testing.T) {
	evm, sdb := newTransferEVM()
	caller := common.HexToAddress("0x01")
	sdb.balances[caller] = uint256.NewInt(1000)

	code := []byte{byte(PUSH1), 0x01, byte(PUSH1), 0x00, byte(RETURN)}
	_, addr, _, err := evm.Create2(caller, code, 1_000_000, new(uint256.Int), new(uint256.Int))
	require.NoError(t, err)

	sdb.nonces[addr] = 1 // simulate the deployed contract having since sent a transaction
	_, _, _, err = evm.Create2(caller, code, 1_000_000, new(uint256.Int), new(uint256.Int))
	require.ErrorIs(t, err, ErrContractAddressCollision)
}
