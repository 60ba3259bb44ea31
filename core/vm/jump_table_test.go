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
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/probechain/pevm/params"
)

func TestPush0OnlyFromShanghai(t *testing.T) {
	require.Nil(t, instructionSetForFork(params.London)[PUSH0])
	require.NotNil(t, instructionSetForFork(params.Shanghai)[PUSH0])
	require.NotNil(t, instructionSetForFork(params.Cancun)[PUSH0])
}

func TestTransientStorageOnlyFromCancun(t *testing.T) {
	require.Nil(t, instructionSetForFork(params.Shanghai)[TLOAD])
	require.NotNil(t, instructionSetForFork(params.Cancun)[TLOAD])
	require.NotNil(t, instructionSetForFork(params.Cancun)[TSTORE])
}

func TestCreateUsesEip3860GasFromShanghai(t *testing.T) {
	london := instructionSetForFork(params.London)
	shanghai := instructionSetForFork(params.Shanghai)

	require.NotNil(t, london[CREATE].dynamicGas)
	require.NotNil(t, shanghai[CREATE].dynamicGas)
	require.NotNil(t, shanghai[CREATE2].dynamicGas)

	fn := func(f gasFunc) uintptr { return reflect.ValueOf(f).Pointer() }
	require.Equal(t, fn(gasCreate), fn(london[CREATE].dynamicGas))
	require.Equal(t, fn(gasCreateEip3860), fn(shanghai[CREATE].dynamicGas))
	require.Equal(t, fn(gasCreate2Eip3860), fn(shanghai[CREATE2].dynamicGas))
}

func TestCopyJumpTableIsIndependent(t *testing.T) {
	base := instructionSetForFork(params.Berlin)
	cpy := copyJumpTable(base)

	cpy[ADD].constantGas = 999999
	require.NotEqual(t, cpy[ADD].constantGas, base[ADD].constantGas)
}

func TestForkTablesAllPassValidate(t *testing.T) {
	forks := []params.Fork{
		params.Frontier, params.Homestead, params.TangerineWhistle,
		params.SpuriousDragon, params.Byzantium, params.Constantinople,
		params.Istanbul, params.Berlin, params.London, params.Shanghai,
		params.Cancun,
	}
	for _, f := range forks {
		jt := instructionSetForFork(f)
		for i, op := range jt {
			if op == nil {
				continue
			}
			require.NotNilf(t, op.execute, "fork %s opcode 0x%02x has nil execute", f, i)
		}
	}
}
