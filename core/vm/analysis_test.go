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
	"github.com/probechain/pevm/params"
)

func cancunTable() *JumpTable {
	return instructionSetForFork(params.Cancun)
}

// codeBitmap must mark a byte that is PUSH immediate data, even when its
// value is 0x5b (JUMPDEST), so a jump landing on it is rejected.
func TestCodeBitmapMarksPushDataNotJumpdest(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x5b, // 0x5b here is data, not a real JUMPDEST
		byte(JUMPDEST),
	}
	bits := codeBitmap(code)
	require.False(t, bits.codeSegment(1), "PUSH1 operand must be marked as data")
	require.True(t, bits.codeSegment(2), "the real JUMPDEST at pc=2 must be a code segment")
}

func TestBuildAnalysisSplitsBlocksAtJumpdest(t *testing.T) {
	// PUSH1 0x04; JUMP; JUMPDEST; STOP
	code := []byte{
		byte(PUSH1), 0x04,
		byte(JUMP),
		byte(JUMPDEST),
		byte(STOP),
	}
	a := buildAnalysis(code, cancunTable())

	require.Len(t, a.blocks, 2, "one block at pc=0, one at the JUMPDEST")
	idx, ok := a.blockHeaderIndex[0]
	require.True(t, ok)
	require.Equal(t, argBlockHeader, a.instructions[idx].kind)

	destIdx, ok := a.blockHeaderIndex[3]
	require.True(t, ok, "JUMPDEST at pc=3 must have its own block header")
	require.Equal(t, argBlockHeader, a.instructions[destIdx].kind)
	// The real JUMPDEST instruction follows its synthetic header at the same pc.
	require.Equal(t, JUMPDEST, a.instructions[destIdx+1].op)
	require.Equal(t, uint64(3), a.instructions[destIdx+1].pc)
}

func TestBuildAnalysisResolvesStaticJumpTarget(t *testing.T) {
	code := []byte{
		byte(PUSH1), 0x03,
		byte(JUMP),
		byte(JUMPDEST),
		byte(STOP),
	}
	a := buildAnalysis(code, cancunTable())

	var jumpInstr *instruction
	for i := range a.instructions {
		if a.instructions[i].op == JUMP {
			jumpInstr = &a.instructions[i]
			break
		}
	}
	require.NotNil(t, jumpInstr)
	require.Equal(t, argJumpTarget, jumpInstr.kind)

	destIdx := a.blockHeaderIndex[3]
	require.Equal(t, destIdx, jumpInstr.target)
}

func TestBuildAnalysisAggregatesBlockGasAndStack(t *testing.T) {
	jt := cancunTable()
	// PUSH1 1; PUSH1 2; ADD; STOP — one block, no JUMPDEST.
	code := []byte{
		byte(PUSH1), 0x01,
		byte(PUSH1), 0x02,
		byte(ADD),
		byte(STOP),
	}
	a := buildAnalysis(code, jt)
	require.Len(t, a.blocks, 1)

	want := jt[PUSH1].constantGas*2 + jt[ADD].constantGas + jt[STOP].constantGas
	require.Equal(t, want, a.blocks[0].gasCost)
	require.Equal(t, 0, a.blocks[0].stackMin, "all operands are pushed, nothing pre-existing required")
}

func TestResolveJumpDestRejectsPushData(t *testing.T) {
	code := []byte{
		byte(PUSH1), byte(JUMPDEST), // JUMPDEST byte here is push data
		byte(STOP),
	}
	a := buildAnalysis(code, cancunTable())
	_, ok := a.resolveJumpDest(code, 1)
	require.False(t, ok)
}

func TestResolveJumpDestAcceptsRealJumpdest(t *testing.T) {
	code := []byte{
		byte(JUMPDEST),
		byte(STOP),
	}
	a := buildAnalysis(code, cancunTable())
	idx, ok := a.resolveJumpDest(code, 0)
	require.True(t, ok)
	require.Equal(t, argBlockHeader, a.instructions[idx].kind)
}

func TestAnalyzeCachesByCodeHashAndTable(t *testing.T) {
	code := []byte{byte(STOP)}
	hash := common.HexToHash("0x01")

	a1 := analyze(hash, code, cancunTable())
	a2 := analyze(hash, code, cancunTable())
	require.Same(t, a1, a2, "same hash and the same shared Cancun table pointer hit one cache entry")
}
