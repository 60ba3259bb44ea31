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

	"github.com/stretchr/testify/require"

	"github.com/probechain/pevm/common"
)

func TestPrecompileRegistryCoversFixedAddresses(t *testing.T) {
	evm := &EVM{}
	for i := byte(1); i <= 10; i++ {
		addr := common.BytesToAddress([]byte{i})
		require.NotNilf(t, evm.precompile(addr), "address 0x%02x must resolve to a precompile", i)
	}
	require.Nil(t, evm.precompile(common.BytesToAddress([]byte{11})))
}

func TestIdentityPrecompileCopiesInput(t *testing.T) {
	evm := &EVM{}
	pc := evm.precompile(common.BytesToAddress([]byte{4}))
	require.NotNil(t, pc)

	input := []byte{1, 2, 3, 4, 5}
	out, gasLeft, err := runPrecompile(pc, input, 1000)
	require.NoError(t, err)
	require.Equal(t, input, out)
	require.Equal(t, uint64(1000-pc.RequiredGas(input)), gasLeft)
}

func TestRunPrecompileOutOfGas(t *testing.T) {
	evm := &EVM{}
	pc := evm.precompile(common.BytesToAddress([]byte{4}))

	_, _, err := runPrecompile(pc, make([]byte, 64), 5)
	require.ErrorIs(t, err, ErrOutOfGas)
}

func TestEcrecoverUnavailable(t *testing.T) {
	evm := &EVM{}
	pc := evm.precompile(common.BytesToAddress([]byte{1}))
	require.Equal(t, uint64(3000), pc.RequiredGas(nil))

	_, _, err := runPrecompile(pc, make([]byte, 128), 10_000)
	require.ErrorIs(t, err, ErrPrecompileUnavailable)
}

func TestBlake2FRequiredGasReadsRoundCountPrefix(t *testing.T) {
	evm := &EVM{}
	pc := evm.precompile(common.BytesToAddress([]byte{9}))

	input := make([]byte, 213)
	input[3] = 12 // 12 rounds, encoded big-endian in the first 4 bytes
	require.Equal(t, uint64(12), pc.RequiredGas(input))

	require.Equal(t, uint64(0), pc.RequiredGas(make([]byte, 10)), "wrong-length input prices as free (and Run will reject it)")
}
