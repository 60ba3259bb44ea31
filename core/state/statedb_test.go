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

package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/probechain/pevm/common"
)

func TestStateDBBalanceSnapshotRevert(t *testing.T) {
	db := NewStateDB()
	addr := common.HexToAddress("0x01")
	db.SetBalance(addr, uint256.NewInt(100))

	snap := db.Snapshot()
	db.SetBalance(addr, uint256.NewInt(50))
	require.Equal(t, uint64(50), db.GetBalance(addr).Uint64())

	db.RevertToSnapshot(snap)
	require.Equal(t, uint64(100), db.GetBalance(addr).Uint64())
}

func TestStateDBStorageSnapshotRevert(t *testing.T) {
	db := NewStateDB()
	addr := common.HexToAddress("0x01")
	key := common.HexToHash("0x1")

	db.SetStorage(addr, key, common.HexToHash("0xaa"))
	snap := db.Snapshot()
	db.SetStorage(addr, key, common.HexToHash("0xbb"))
	require.Equal(t, common.HexToHash("0xbb"), db.GetStorage(addr, key))

	db.RevertToSnapshot(snap)
	require.Equal(t, common.HexToHash("0xaa"), db.GetStorage(addr, key))
}

func TestStateDBNestedSnapshots(t *testing.T) {
	db := NewStateDB()
	addr := common.HexToAddress("0x01")
	db.SetBalance(addr, uint256.NewInt(1))

	s1 := db.Snapshot()
	db.SetBalance(addr, uint256.NewInt(2))
	s2 := db.Snapshot()
	db.SetBalance(addr, uint256.NewInt(3))

	db.RevertToSnapshot(s2)
	require.Equal(t, uint64(2), db.GetBalance(addr).Uint64())

	db.RevertToSnapshot(s1)
	require.Equal(t, uint64(1), db.GetBalance(addr).Uint64())
}

func TestStateDBAccessList(t *testing.T) {
	db := NewStateDB()
	addr := common.HexToAddress("0x01")
	slot := common.HexToHash("0x1")

	require.False(t, db.AddressInAccessList(addr))
	snap := db.Snapshot()

	db.AddAddressToAccessList(addr)
	require.True(t, db.AddressInAccessList(addr))

	db.AddSlotToAccessList(addr, slot)
	addrWarm, slotWarm := db.SlotInAccessList(addr, slot)
	require.True(t, addrWarm)
	require.True(t, slotWarm)

	db.RevertToSnapshot(snap)
	require.False(t, db.AddressInAccessList(addr))
	addrWarm, slotWarm = db.SlotInAccessList(addr, slot)
	require.False(t, addrWarm)
	require.False(t, slotWarm)
}

func TestStateDBRefundCannotUnderflow(t *testing.T) {
	db := NewStateDB()
	db.AddRefund(10)
	require.Equal(t, uint64(10), db.GetRefund())
	db.SubRefund(10)
	require.Equal(t, uint64(0), db.GetRefund())

	require.Panics(t, func() { db.SubRefund(1) })
}

func TestStateDBLogsRevert(t *testing.T) {
	db := NewStateDB()
	txHash := common.HexToHash("0xt1")
	db.StartTransaction(txHash)

	snap := db.Snapshot()
	db.AddLog(&Log{Address: common.HexToAddress("0x01"), Topics: []common.Hash{common.HexToHash("0xe")}})
	require.Len(t, db.GetLogs(txHash), 1)

	db.RevertToSnapshot(snap)
	require.Len(t, db.GetLogs(txHash), 0)
}

func TestStateDBSelfdestructEIP6780(t *testing.T) {
	db := NewStateDB()
	created := common.HexToAddress("0x01")
	existing := common.HexToAddress("0x02")

	db.SetBalance(created, uint256.NewInt(5))
	db.MarkCreatedThisTransaction(created)
	db.SetBalance(existing, uint256.NewInt(5))

	db.Selfdestruct(created)
	db.Selfdestruct(existing)

	require.True(t, db.HasSelfdestructed(created))
	require.True(t, db.HasSelfdestructed(existing))
	require.True(t, db.CreatedThisTransaction(created))
	require.False(t, db.CreatedThisTransaction(existing))

	// Both selfdestructs zero the balance immediately regardless of fork.
	require.Equal(t, uint64(0), db.GetBalance(created).Uint64())
	require.Equal(t, uint64(0), db.GetBalance(existing).Uint64())
}

func TestStateDBCommitChangesDropsSelfdestructed(t *testing.T) {
	db := NewStateDB()
	addr := common.HexToAddress("0x01")
	db.SetBalance(addr, uint256.NewInt(1))
	db.Selfdestruct(addr)

	_, err := db.CommitChanges()
	require.NoError(t, err)
	require.False(t, db.AccountExists(addr))
}

func TestStateDBStateRootStableAfterRevert(t *testing.T) {
	db := NewStateDB()
	addr := common.HexToAddress("0x01")
	db.SetBalance(addr, uint256.NewInt(42))
	db.SetStorage(addr, common.HexToHash("0x1"), common.HexToHash("0x2"))

	root1 := db.GetStateRoot()

	snap := db.Snapshot()
	db.SetBalance(addr, uint256.NewInt(999))
	db.SetStorage(addr, common.HexToHash("0x1"), common.HexToHash("0x3"))
	require.NotEqual(t, root1, db.GetStateRoot())

	db.RevertToSnapshot(snap)
	require.Equal(t, root1, db.GetStateRoot())
}

func TestStateDBBatchRollback(t *testing.T) {
	db := NewStateDB()
	addr := common.HexToAddress("0x01")
	db.SetBalance(addr, uint256.NewInt(10))

	db.BeginBatch()
	db.SetBalance(addr, uint256.NewInt(20))
	db.RollbackBatch()

	require.Equal(t, uint64(10), db.GetBalance(addr).Uint64())
}

func TestStateDBBatchCommit(t *testing.T) {
	db := NewStateDB()
	addr := common.HexToAddress("0x01")

	db.BeginBatch()
	db.SetBalance(addr, uint256.NewInt(20))
	require.NoError(t, db.CommitBatch())

	require.Equal(t, uint64(20), db.GetBalance(addr).Uint64())
	require.Error(t, db.CommitBatch())
}

func TestStateDBTransientStorageNotJournaled(t *testing.T) {
	db := NewStateDB()
	addr := common.HexToAddress("0x01")
	key := common.HexToHash("0x1")

	snap := db.Snapshot()
	db.SetTransientStorage(addr, key, common.HexToHash("0xaa"))
	db.RevertToSnapshot(snap)

	// Unlike ordinary storage, transient storage is not part of the
	// journal: a revert does not undo a TSTORE.
	require.Equal(t, common.HexToHash("0xaa"), db.GetTransientStorage(addr, key))

	db.StartTransaction(common.HexToHash("0xt2"))
	require.Equal(t, common.Hash{}, db.GetTransientStorage(addr, key))
}

func TestStateDBCodeCaching(t *testing.T) {
	db := NewStateDB()
	addr := common.HexToAddress("0x01")
	code := []byte{0x60, 0x01, 0x60, 0x02, 0x01}

	db.SetCode(addr, code)
	require.Equal(t, code, db.GetCode(addr))
	require.NotEqual(t, common.Hash{}, db.GetCodeHash(addr))
}
