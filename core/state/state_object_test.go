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

func TestStateObjectStorageDirtyOverCommitted(t *testing.T) {
	obj := newStateObject(common.HexToAddress("0x01"))
	key := common.HexToHash("0x1")
	obj.originStorage[key] = common.HexToHash("0xaa")

	require.Equal(t, common.HexToHash("0xaa"), obj.GetState(key))

	obj.SetState(key, common.HexToHash("0xbb"))
	require.Equal(t, common.HexToHash("0xbb"), obj.GetState(key))
	require.Equal(t, common.HexToHash("0xaa"), obj.GetCommittedState(key))

	obj.finalize()
	require.Equal(t, common.HexToHash("0xbb"), obj.GetCommittedState(key))
	require.Empty(t, obj.dirtyStorage)
}

func TestStateObjectEmpty(t *testing.T) {
	obj := newStateObject(common.HexToAddress("0x01"))
	require.True(t, obj.empty())

	obj.setNonce(1)
	require.False(t, obj.empty())

	obj.setNonce(0)
	obj.setBalance(uint256.NewInt(1))
	require.False(t, obj.empty())

	obj.setBalance(new(uint256.Int))
	obj.setCode(common.HexToHash("0xc0de"), []byte{0x60, 0x00})
	require.False(t, obj.empty())
}

func TestStateObjectCopyIsIndependent(t *testing.T) {
	obj := newStateObject(common.HexToAddress("0x01"))
	obj.setBalance(uint256.NewInt(100))
	key := common.HexToHash("0x1")
	obj.SetState(key, common.HexToHash("0x2"))

	cpy := obj.copy()
	cpy.setBalance(uint256.NewInt(200))
	cpy.SetState(key, common.HexToHash("0x3"))

	require.Equal(t, uint64(100), obj.data.Balance.Uint64())
	require.Equal(t, common.HexToHash("0x2"), obj.GetState(key))
	require.Equal(t, uint64(200), cpy.data.Balance.Uint64())
	require.Equal(t, common.HexToHash("0x3"), cpy.GetState(key))
}
