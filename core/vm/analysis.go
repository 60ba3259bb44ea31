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
	lru "github.com/hashicorp/golang-lru"
	"github.com/holiman/uint256"

	"github.com/probechain/pevm/common"
)

// bitvec is a bitmap over a code buffer, one bit per byte, set where that
// byte is PUSH immediate data (and therefore not a valid JUMPDEST/opcode
// start even if its value happens to equal 0x5B).
type bitvec []byte

const (
	set2BitsMask = uint16(0b11)
	set3BitsMask = uint16(0b111)
)

func (bits bitvec) set1(pos uint64) {
	bits[pos/8] |= 1 << (pos % 8)
}

func (bits bitvec) setN(flag uint16, pos uint64) {
	a := flag << (pos % 8)
	bits[pos/8] |= byte(a)
	if b := byte(a >> 8); b != 0 {
		bits[pos/8+1] = b
	}
}

func (bits bitvec) set8(pos uint64) {
	a := byte(0xFF << (pos % 8))
	bits[pos/8] |= a
	bits[pos/8+1] = ^a
}

func (bits bitvec) set16(pos uint64) {
	a := byte(0xFF << (pos % 8))
	bits[pos/8] |= a
	bits[pos/8+1] = 0xFF
	bits[pos/8+2] = ^a
}

// codeSegment reports whether pos in the bitmap is a real instruction
// (as opposed to PUSH immediate data).
func (bits bitvec) codeSegment(pos uint64) bool {
	return (bits[pos/8] & (1 << (pos % 8))) == 0
}

// codeBitmap computes a bitmap marking every byte offset that is PUSH
// immediate data, so the analyzer and JUMP/JUMPI validation can tell a
// real opcode apart from a PUSH operand that happens to equal a JUMPDEST
// byte. One bit per byte; a set bit means "this is PUSH data".
func codeBitmap(code []byte) bitvec {
	bits := make(bitvec, len(code)/8+1+4)
	for pc := uint64(0); pc < uint64(len(code)); {
		op := OpCode(code[pc])
		pc++
		if !op.IsPush() || op == PUSH0 {
			continue
		}
		numbits := op.pushSize()
		if numbits >= 8 {
			for ; numbits >= 16; numbits -= 16 {
				bits.set16(pc)
				pc += 16
			}
			for ; numbits >= 8; numbits -= 8 {
				bits.set8(pc)
				pc += 8
			}
		}
		switch numbits {
		case 1:
			bits.set1(pc)
			pc++
		case 2:
			bits.setN(set2BitsMask, pc)
			pc += 2
		case 3:
			bits.setN(set3BitsMask, pc)
			pc += 3
		case 4, 5, 6, 7:
			for i := 0; i < numbits; i++ {
				bits.set1(pc + uint64(i))
			}
			pc += uint64(numbits)
		}
	}
	return bits
}

// argKind tags which field of one translated instruction is meaningful —
// an idiomatic-Go rendering of a tagged sum type (a single struct with a
// discriminant field, rather than an interface or unsafe union) per
// spec.md's analysis-artifact shape.
type argKind uint8

const (
	argNone argKind = iota
	// argBlockHeader marks a synthetic entry at the start of a basic
	// block, carrying the index of its aggregate metrics in
	// codeAnalysis.blocks. Folds the spec's separate gas_cost(u32)
	// variant into the block's own gasCost field rather than giving
	// every constant-gas opcode its own redundant per-instruction tag.
	argBlockHeader
	// argPush carries a PUSH1..PUSH32 opcode's decoded immediate value.
	argPush
	// argJumpTarget marks a JUMP/JUMPI whose destination was a literal
	// PUSH immediately before it and resolved, at analysis time, to a
	// valid JUMPDEST's block-header instruction index.
	argJumpTarget
)

// blockMetrics is one basic block's aggregate cost and stack-shape: the
// sum of every contained opcode's constant gas, and the extremes of
// stack growth needed to validate the whole block's execution with one
// check at its header rather than one check per opcode.
type blockMetrics struct {
	startPC        uint64
	gasCost        uint64
	stackMin       int // minimum stack size required to run the block without underflow
	stackMaxGrowth int // peak stack growth reached inside the block, for the 1024-slot overflow check
}

// instruction is one element of the translated stream: either a real
// opcode (kind == argNone/argPush/argJumpTarget) or a synthetic block
// header (kind == argBlockHeader). info is the jump-table entry for real
// opcodes, nil for headers and for bytes with no entry in the active
// table.
type instruction struct {
	kind   argKind
	op     OpCode
	info   *operation
	pc     uint64
	block  int // valid when kind == argBlockHeader: index into codeAnalysis.blocks
	push   uint256.Int
	target int // valid when kind == argJumpTarget: resolved instruction index
}

// codeAnalysis is the cached result of analyzing one contract's code
// under one jump table: the translated, block-annotated instruction
// stream the interpreter walks, plus the data needed to validate a
// dynamic (stack-computed) jump at runtime.
type codeAnalysis struct {
	jumpdests        bitvec         // PUSH-data bitmap, for validating a candidate JUMPDEST byte isn't push data
	blocks           []blockMetrics
	instructions     []instruction
	blockHeaderIndex map[uint64]int // bytecode pc -> instruction index of that pc's block header, for every valid JUMPDEST
}

// analysisCacheSize caps the analysis-artifact cache. Re-entrant calls
// into the same popular contract (a DEX router, a proxy) are the common
// case this exists for.
const analysisCacheSize = 4096

// analysisCacheKey pairs a code hash with the jump table it was analyzed
// under: the same bytecode analyzed at two different forks produces two
// different instruction streams (different operation pointers, different
// gas costs), so the cache can't be keyed on code hash alone.
type analysisCacheKey struct {
	codeHash common.Hash
	table    *JumpTable
}

var analysisCache, _ = lru.New(analysisCacheSize)

// analyze returns the cached codeAnalysis for codeHash under jt, computing
// and storing it on first use. The code hash, not the code itself, is part
// of the cache key: callers are expected to have already deduplicated
// identical code via GetCodeHash before reaching here.
func analyze(codeHash common.Hash, code []byte, jt *JumpTable) *codeAnalysis {
	key := analysisCacheKey{codeHash: codeHash, table: jt}
	if codeHash != (common.Hash{}) {
		if cached, ok := analysisCache.Get(key); ok {
			return cached.(*codeAnalysis)
		}
	}
	a := buildAnalysis(code, jt)
	if codeHash != (common.Hash{}) {
		analysisCache.Add(key, a)
	}
	return a
}

// buildAnalysis is the single pass described by spec.md 4.4: step over the
// bytecode once, stepping past PUSH immediates, partitioning it into basic
// blocks at offset 0, every JUMPDEST, and immediately after every
// terminator or JUMPI (the fallthrough path is a control-flow merge point
// like any jump target), and translating each real opcode plus a
// synthetic block-header entry at every block start.
func buildAnalysis(code []byte, jt *JumpTable) *codeAnalysis {
	a := &codeAnalysis{
		jumpdests:        codeBitmap(code),
		blockHeaderIndex: make(map[uint64]int),
	}

	type pendingTarget struct {
		instrIdx int
		destPC   uint64
	}
	var pending []pendingTarget

	var (
		curBlockIdx            int
		curDelta               int
		curStackMin            int
		curMaxGrowth           int
		curGas                 uint64
		open                   bool
		needNewBlock           = true
		lastPushValid          bool
		lastPushVal            uint64
		lastPushOverflow       bool
	)

	closeBlock := func() {
		if open {
			b := &a.blocks[curBlockIdx]
			b.gasCost, b.stackMin, b.stackMaxGrowth = curGas, curStackMin, curMaxGrowth
			open = false
		}
	}
	startBlock := func(pc uint64) {
		a.blocks = append(a.blocks, blockMetrics{startPC: pc})
		curBlockIdx = len(a.blocks) - 1
		curDelta, curStackMin, curMaxGrowth, curGas = 0, 0, 0, 0
		a.instructions = append(a.instructions, instruction{kind: argBlockHeader, pc: pc, block: curBlockIdx})
		a.blockHeaderIndex[pc] = len(a.instructions) - 1
		open = true
	}

	pc := uint64(0)
	for pc < uint64(len(code)) {
		op := OpCode(code[pc])

		if needNewBlock || op == JUMPDEST {
			closeBlock()
			startBlock(pc)
		}
		needNewBlock = false

		opInfo := jt[op]
		instr := instruction{kind: argNone, op: op, info: opInfo, pc: pc}

		if opInfo != nil {
			need := opInfo.numPop - curDelta
			if need > curStackMin {
				curStackMin = need
			}
			curDelta += opInfo.numPush - opInfo.numPop
			if curDelta > curMaxGrowth {
				curMaxGrowth = curDelta
			}
			curGas += opInfo.constantGas
		}

		isPush := op.IsPush() && op != PUSH0
		size := op.pushSize()
		if isPush {
			start := pc + 1
			end := start + uint64(size)
			if end > uint64(len(code)) {
				end = uint64(len(code))
			}
			var val uint256.Int
			val.SetBytes(code[start:end])
			instr.kind = argPush
			instr.push = val
			lastPushVal, lastPushOverflow = val.Uint64(), !val.IsUint64()
			lastPushValid = true
		} else {
			if (op == JUMP || op == JUMPI) && lastPushValid && !lastPushOverflow &&
				lastPushVal < uint64(len(code)) && OpCode(code[lastPushVal]) == JUMPDEST &&
				a.jumpdests.codeSegment(lastPushVal) {
				instr.kind = argJumpTarget
				pending = append(pending, pendingTarget{instrIdx: len(a.instructions), destPC: lastPushVal})
			}
			lastPushValid = false
		}

		a.instructions = append(a.instructions, instr)

		if op.isTerminator() || op == JUMPI {
			needNewBlock = true
		}
		if isPush {
			pc += 1 + uint64(size)
		} else {
			pc++
		}
	}
	closeBlock()

	for _, p := range pending {
		if idx, ok := a.blockHeaderIndex[p.destPC]; ok {
			a.instructions[p.instrIdx].target = idx
		} else {
			// Not actually reachable as a block header (shouldn't happen
			// given the JUMPDEST check above, which always starts a
			// block) — leave kind as-is; dynamic resolution at runtime
			// will fail the same way a binary search against jumpdests
			// would.
			a.instructions[p.instrIdx].kind = argNone
		}
	}
	return a
}

// resolveJumpDest validates dest as a genuine JUMPDEST (in range, a real
// opcode start, not PUSH data) and returns the instruction index of its
// block header. This is the runtime path for a jump whose destination
// wasn't known at analysis time (computed, not a literal PUSH operand);
// a hash lookup here serves the same purpose as spec.md's binary search
// over a sorted jumpdest list, at the same asymptotic cost.
func (a *codeAnalysis) resolveJumpDest(code []byte, dest uint64) (int, bool) {
	if dest >= uint64(len(code)) {
		return 0, false
	}
	if OpCode(code[dest]) != JUMPDEST {
		return 0, false
	}
	if !a.jumpdests.codeSegment(dest) {
		return 0, false
	}
	idx, ok := a.blockHeaderIndex[dest]
	return idx, ok
}
