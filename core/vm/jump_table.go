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
	"github.com/probechain/pevm/params"
)

// executionFunc runs one opcode against the current frame. pc is passed by
// pointer so JUMP/JUMPI can redirect control flow; scope bundles the stack,
// memory, and contract the opcode reads and mutates. A non-nil []byte is
// return data (RETURN/REVERT); a non-nil error halts the frame.
type executionFunc func(pc *uint64, interp *EVMInterpreter, scope *ScopeContext) ([]byte, error)

// operation is one jump-table entry: the handler plus the static metadata
// the analyzer and interpreter need to price and validate it without
// executing it. numPop/numPush are the opcode's fixed stack-depth
// contract, used to aggregate each basic block's stack_min and
// stack_max_growth at analysis time rather than re-derived per step.
type operation struct {
	execute     executionFunc
	constantGas uint64
	dynamicGas  gasFunc
	numPop      int
	numPush     int
	memorySize  memorySizeFunc

	halts   bool // terminates the frame (STOP, RETURN, SELFDESTRUCT, ...)
	reverts bool // terminates the frame AND reverts the journal (REVERT)
	jumps   bool // control-flow opcode; interpreter reads interp.jumpDest after execute
	writes  bool // mutates state; forbidden in a static (read-only) context
}

// JumpTable maps every possible opcode byte to its operation. Entries left
// nil are undefined for the active fork and fault with ErrInvalidOpCode.
type JumpTable [256]*operation

// validate panics if any operation in the table was built inconsistently;
// called once per constructed table at package init so a mistake in one of
// the newXInstructionSet builders is caught immediately rather than
// surfacing as a mystifying nil dereference deep in a transaction.
func (jt *JumpTable) validate() {
	for i, op := range jt {
		if op == nil {
			continue
		}
		if op.execute == nil {
			panic("jump table: nil execute for opcode " + OpCode(i).String())
		}
	}
}

var (
	frontierInstructionSet         = newFrontierInstructionSet()
	homesteadInstructionSet        = newHomesteadInstructionSet()
	tangerineWhistleInstructionSet = newTangerineWhistleInstructionSet()
	spuriousDragonInstructionSet   = newSpuriousDragonInstructionSet()
	byzantiumInstructionSet        = newByzantiumInstructionSet()
	constantinopleInstructionSet   = newConstantinopleInstructionSet()
	istanbulInstructionSet         = newIstanbulInstructionSet()
	berlinInstructionSet           = newBerlinInstructionSet()
	londonInstructionSet           = newLondonInstructionSet()
	shanghaiInstructionSet         = newShanghaiInstructionSet()
	cancunInstructionSet           = newCancunInstructionSet()
)

// instructionSetForFork returns the jump table in effect at fork. Tables
// are built once at package init and shared read-only across every EVM
// instance at that fork; copyJumpTable is used instead of sharing whenever
// a fork needs to mutate a handful of entries relative to its parent.
func instructionSetForFork(fork params.Fork) *JumpTable {
	switch {
	case fork >= params.Cancun:
		return cancunInstructionSet
	case fork >= params.Shanghai:
		return shanghaiInstructionSet
	case fork >= params.London:
		return londonInstructionSet
	case fork >= params.Berlin:
		return berlinInstructionSet
	case fork >= params.Istanbul:
		return istanbulInstructionSet
	case fork >= params.Constantinople:
		return constantinopleInstructionSet
	case fork >= params.Byzantium:
		return byzantiumInstructionSet
	case fork >= params.SpuriousDragon:
		return spuriousDragonInstructionSet
	case fork >= params.TangerineWhistle:
		return tangerineWhistleInstructionSet
	case fork >= params.Homestead:
		return homesteadInstructionSet
	default:
		return frontierInstructionSet
	}
}

func copyJumpTable(src *JumpTable) *JumpTable {
	dst := *src
	for i, op := range src {
		if op == nil {
			continue
		}
		cpy := *op
		dst[i] = &cpy
	}
	return &dst
}

func newFrontierInstructionSet() *JumpTable {
	jt := &JumpTable{
		STOP:       {execute: opStop, constantGas: 0, halts: true},
		ADD:        {execute: opAdd, constantGas: params.GasFastestStep, numPop: 2, numPush: 1},
		MUL:        {execute: opMul, constantGas: params.GasFastStep, numPop: 2, numPush: 1},
		SUB:        {execute: opSub, constantGas: params.GasFastestStep, numPop: 2, numPush: 1},
		DIV:        {execute: opDiv, constantGas: params.GasFastStep, numPop: 2, numPush: 1},
		SDIV:       {execute: opSdiv, constantGas: params.GasFastStep, numPop: 2, numPush: 1},
		MOD:        {execute: opMod, constantGas: params.GasFastStep, numPop: 2, numPush: 1},
		SMOD:       {execute: opSmod, constantGas: params.GasFastStep, numPop: 2, numPush: 1},
		ADDMOD:     {execute: opAddmod, constantGas: params.GasMidStep, numPop: 3, numPush: 1},
		MULMOD:     {execute: opMulmod, constantGas: params.GasMidStep, numPop: 3, numPush: 1},
		EXP:        {execute: opExp, dynamicGas: gasExpFrontier, numPop: 2, numPush: 1},
		SIGNEXTEND: {execute: opSignExtend, constantGas: params.GasFastStep, numPop: 2, numPush: 1},

		LT:     {execute: opLt, constantGas: params.GasFastestStep, numPop: 2, numPush: 1},
		GT:     {execute: opGt, constantGas: params.GasFastestStep, numPop: 2, numPush: 1},
		SLT:    {execute: opSlt, constantGas: params.GasFastestStep, numPop: 2, numPush: 1},
		SGT:    {execute: opSgt, constantGas: params.GasFastestStep, numPop: 2, numPush: 1},
		EQ:     {execute: opEq, constantGas: params.GasFastestStep, numPop: 2, numPush: 1},
		ISZERO: {execute: opIszero, constantGas: params.GasFastestStep, numPop: 1, numPush: 1},
		AND:    {execute: opAnd, constantGas: params.GasFastestStep, numPop: 2, numPush: 1},
		OR:     {execute: opOr, constantGas: params.GasFastestStep, numPop: 2, numPush: 1},
		XOR:    {execute: opXor, constantGas: params.GasFastestStep, numPop: 2, numPush: 1},
		NOT:    {execute: opNot, constantGas: params.GasFastestStep, numPop: 1, numPush: 1},
		BYTE:   {execute: opByte, constantGas: params.GasFastestStep, numPop: 2, numPush: 1},

		KECCAK256: {execute: opSha3, constantGas: params.Keccak256Gas, dynamicGas: gasKeccak256, memorySize: memoryKeccak256, numPop: 2, numPush: 1},

		ADDRESS:        {execute: opAddress, constantGas: params.GasQuickStep, numPush: 1},
		BALANCE:        {execute: opBalance, constantGas: params.BalanceGasFrontier, numPop: 1, numPush: 1},
		ORIGIN:         {execute: opOrigin, constantGas: params.GasQuickStep, numPush: 1},
		CALLER:         {execute: opCaller, constantGas: params.GasQuickStep, numPush: 1},
		CALLVALUE:      {execute: opCallValue, constantGas: params.GasQuickStep, numPush: 1},
		CALLDATALOAD:   {execute: opCallDataLoad, constantGas: params.GasFastestStep, numPop: 1, numPush: 1},
		CALLDATASIZE:   {execute: opCallDataSize, constantGas: params.GasQuickStep, numPush: 1},
		CALLDATACOPY:   {execute: opCallDataCopy, constantGas: params.GasFastestStep, dynamicGas: gasCallDataCopy, memorySize: memoryCallDataCopy, numPop: 3},
		CODESIZE:       {execute: opCodeSize, constantGas: params.GasQuickStep, numPush: 1},
		CODECOPY:       {execute: opCodeCopy, constantGas: params.GasFastestStep, dynamicGas: gasCodeCopy, memorySize: memoryCodeCopy, numPop: 3},
		GASPRICE:       {execute: opGasprice, constantGas: params.GasQuickStep, numPush: 1},
		EXTCODESIZE:    {execute: opExtCodeSize, constantGas: params.ExtcodeSizeGasFrontier, numPop: 1, numPush: 1},
		EXTCODECOPY:    {execute: opExtCodeCopy, constantGas: params.ExtcodeCopyBaseFrontier, dynamicGas: gasExtCodeCopy, memorySize: memoryExtCodeCopy, numPop: 4},
		BLOCKHASH:      {execute: opBlockhash, constantGas: params.GasExtStep, numPop: 1, numPush: 1},
		COINBASE:       {execute: opCoinbase, constantGas: params.GasQuickStep, numPush: 1},
		TIMESTAMP:      {execute: opTimestamp, constantGas: params.GasQuickStep, numPush: 1},
		NUMBER:         {execute: opNumber, constantGas: params.GasQuickStep, numPush: 1},
		DIFFICULTY:     {execute: opDifficulty, constantGas: params.GasQuickStep, numPush: 1},
		GASLIMIT:       {execute: opGasLimit, constantGas: params.GasQuickStep, numPush: 1},

		POP:      {execute: opPop, constantGas: params.GasQuickStep, numPop: 1},
		MLOAD:    {execute: opMload, constantGas: params.GasFastestStep, dynamicGas: gasMLoad, memorySize: memoryMLoad, numPop: 1, numPush: 1},
		MSTORE:   {execute: opMstore, constantGas: params.GasFastestStep, dynamicGas: gasMStore, memorySize: memoryMStore, numPop: 2},
		MSTORE8:  {execute: opMstore8, constantGas: params.GasFastestStep, dynamicGas: gasMStore8, memorySize: memoryMStore8, numPop: 2},
		SLOAD:    {execute: opSload, constantGas: params.SloadGasFrontier, numPop: 1, numPush: 1},
		SSTORE:   {execute: opSstore, dynamicGas: gasSStore, numPop: 2, writes: true},
		JUMP:     {execute: opJump, constantGas: params.GasMidStep, numPop: 1, jumps: true},
		JUMPI:    {execute: opJumpi, constantGas: params.GasSlowStep, numPop: 2, jumps: true},
		PC:       {execute: opPc, constantGas: params.GasQuickStep, numPush: 1},
		MSIZE:    {execute: opMsize, constantGas: params.GasQuickStep, numPush: 1},
		GAS:      {execute: opGas, constantGas: params.GasQuickStep, numPush: 1},
		JUMPDEST: {execute: opJumpdest, constantGas: params.JumpdestGas},

		RETURN:       {execute: opReturn, dynamicGas: gasReturn, memorySize: memoryReturn, numPop: 2, halts: true},
		INVALID:      {execute: opUndefined, halts: true},
		SELFDESTRUCT: {execute: opSelfdestruct, dynamicGas: gasSelfdestruct, numPop: 1, halts: true, writes: true},

		CREATE: {execute: opCreate, constantGas: params.CreateGas, dynamicGas: gasCreate, memorySize: memoryCreate, numPop: 3, numPush: 1, writes: true},
		CALL:   {execute: opCall, constantGas: params.CallGasFrontier, dynamicGas: gasCall, memorySize: memoryCall, numPop: 7, numPush: 1},
		CALLCODE: {execute: opCallCode, constantGas: params.CallGasFrontier, dynamicGas: gasCallCode, memorySize: memoryCallCode, numPop: 7, numPush: 1},
	}
	for op := PUSH1; op <= PUSH32; op++ {
		jt[op] = &operation{execute: opPush, constantGas: params.GasFastestStep, numPush: 1}
	}
	for op := DUP1; op <= DUP16; op++ {
		n := int(op-DUP1) + 1
		jt[op] = &operation{execute: makeDup(n), constantGas: params.GasFastestStep, numPop: n, numPush: n + 1}
	}
	for op := SWAP1; op <= SWAP16; op++ {
		n := int(op-SWAP1) + 1
		jt[op] = &operation{execute: makeSwap(n), constantGas: params.GasFastestStep, numPop: n + 1, numPush: n + 1}
	}
	for op := LOG0; op <= LOG4; op++ {
		n := uint64(op - LOG0)
		jt[op] = &operation{execute: makeLog(int(n)), dynamicGas: makeGasLog(n), memorySize: memoryLog, numPop: 2 + int(n), writes: true}
	}
	jt.validate()
	return jt
}

func newHomesteadInstructionSet() *JumpTable {
	jt := copyJumpTable(frontierInstructionSet)
	jt[DELEGATECALL] = &operation{execute: opDelegateCall, constantGas: params.CallGasFrontier, dynamicGas: gasDelegateCall, memorySize: memoryDelegateCall, numPop: 6, numPush: 1}
	jt.validate()
	return jt
}

func newTangerineWhistleInstructionSet() *JumpTable {
	jt := copyJumpTable(homesteadInstructionSet)
	jt[BALANCE].constantGas = params.BalanceGasEIP150
	jt[EXTCODESIZE].constantGas = params.ExtcodeSizeGasEIP150
	jt[EXTCODECOPY].constantGas = params.ExtcodeCopyBaseEIP150
	jt[SLOAD].constantGas = params.SloadGasEIP150
	jt[CALL].constantGas = params.CallGasEIP150
	jt[CALLCODE].constantGas = params.CallGasEIP150
	jt[DELEGATECALL].constantGas = params.CallGasEIP150
	jt[SELFDESTRUCT].constantGas = 0 // priced dynamically from here on
	jt.validate()
	return jt
}

func newSpuriousDragonInstructionSet() *JumpTable {
	jt := copyJumpTable(tangerineWhistleInstructionSet)
	jt[EXP].dynamicGas = gasExpEIP158
	jt.validate()
	return jt
}

func newByzantiumInstructionSet() *JumpTable {
	jt := copyJumpTable(spuriousDragonInstructionSet)
	jt[REVERT] = &operation{execute: opRevert, dynamicGas: gasRevert, memorySize: memoryRevert, numPop: 2, reverts: true}
	jt[RETURNDATASIZE] = &operation{execute: opReturnDataSize, constantGas: params.GasQuickStep, numPush: 1}
	jt[RETURNDATACOPY] = &operation{execute: opReturnDataCopy, constantGas: params.GasFastestStep, dynamicGas: gasReturnDataCopy, memorySize: memoryReturnDataCopy, numPop: 3}
	jt[STATICCALL] = &operation{execute: opStaticCall, constantGas: params.CallGasEIP150, dynamicGas: gasStaticCall, memorySize: memoryStaticCall, numPop: 6, numPush: 1}
	jt.validate()
	return jt
}

func newConstantinopleInstructionSet() *JumpTable {
	jt := copyJumpTable(byzantiumInstructionSet)
	jt[CREATE2] = &operation{execute: opCreate2, constantGas: params.Create2Gas, dynamicGas: gasCreate2, memorySize: memoryCreate2, numPop: 4, numPush: 1, writes: true}
	jt[EXTCODEHASH] = &operation{execute: opExtCodeHash, constantGas: params.ExtcodeHashGasConstantinople, numPop: 1, numPush: 1}
	jt[SHL] = &operation{execute: opSHL, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[SHR] = &operation{execute: opSHR, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt[SAR] = &operation{execute: opSAR, constantGas: params.GasFastestStep, numPop: 2, numPush: 1}
	jt.validate()
	return jt
}

func newIstanbulInstructionSet() *JumpTable {
	jt := copyJumpTable(constantinopleInstructionSet)
	jt[CHAINID] = &operation{execute: opChainID, constantGas: params.GasQuickStep, numPush: 1}
	jt[SELFBALANCE] = &operation{execute: opSelfBalance, constantGas: params.GasFastStep, numPush: 1}
	jt[SSTORE].dynamicGas = gasSStoreEIP2200
	jt[SLOAD].constantGas = 0
	jt[SLOAD].dynamicGas = constGasFunc(params.SloadGasEIP1884)
	jt[EXTCODEHASH].constantGas = params.ExtcodeHashGasEIP1884
	jt[BALANCE].constantGas = params.BalanceGasEIP1884
	jt.validate()
	return jt
}

// berlinize layers EIP-2929's cold/warm dynamic pricing on top of the
// opcodes whose constant-gas entries only ever reflected a flat
// pre-Berlin account/storage access cost. Shared by newBerlinInstructionSet
// and every later fork so the relative pricing isn't accidentally dropped
// when a later fork copies forward.
func berlinize(jt *JumpTable) {
	jt[SLOAD].constantGas = 0
	jt[SLOAD].dynamicGas = gasSLoadEIP2929
	jt[SSTORE].dynamicGas = gasSStoreEIP2929
	jt[EXTCODECOPY].constantGas = 0
	jt[EXTCODECOPY].dynamicGas = gasExtCodeCopy
	jt[EXTCODESIZE].constantGas = 0
	jt[EXTCODESIZE].dynamicGas = gasEip2929AccountCheck
	jt[EXTCODEHASH].constantGas = 0
	jt[EXTCODEHASH].dynamicGas = gasEip2929AccountCheck
	jt[BALANCE].constantGas = 0
	jt[BALANCE].dynamicGas = gasEip2929AccountCheck
	jt[CALL].constantGas = 0
	jt[CALL].dynamicGas = gasCall
	jt[CALLCODE].constantGas = 0
	jt[CALLCODE].dynamicGas = gasCallCode
	jt[DELEGATECALL].constantGas = 0
	jt[DELEGATECALL].dynamicGas = gasDelegateCall
	jt[STATICCALL].constantGas = 0
	jt[STATICCALL].dynamicGas = gasStaticCall
}

func newBerlinInstructionSet() *JumpTable {
	jt := copyJumpTable(istanbulInstructionSet)
	berlinize(jt)
	jt.validate()
	return jt
}

func newLondonInstructionSet() *JumpTable {
	jt := copyJumpTable(berlinInstructionSet)
	jt[BASEFEE] = &operation{execute: opBaseFee, constantGas: params.GasQuickStep, numPush: 1}
	// EIP-3529's refund changes are not modeled: gasSStoreEIP2929 keeps the
	// EIP-2200 clear refund, gasSelfdestruct grants no refund in any fork,
	// and Rules.MaxRefundQuotient() has no caller.
	jt.validate()
	return jt
}

func newShanghaiInstructionSet() *JumpTable {
	jt := copyJumpTable(londonInstructionSet)
	jt[PUSH0] = &operation{execute: opPush0, constantGas: params.GasQuickStep, numPush: 1}
	// EIP-3860: init code now has a hard size cap and is metered per word,
	// on top of whatever CREATE/CREATE2 already charged for memory.
	jt[CREATE].dynamicGas = gasCreateEip3860
	jt[CREATE2].dynamicGas = gasCreate2Eip3860
	jt.validate()
	return jt
}

func newCancunInstructionSet() *JumpTable {
	jt := copyJumpTable(shanghaiInstructionSet)
	jt[TLOAD] = &operation{execute: opTload, dynamicGas: gasTload, numPop: 1, numPush: 1}
	jt[TSTORE] = &operation{execute: opTstore, dynamicGas: gasTstore, numPop: 2, writes: true}
	jt[MCOPY] = &operation{execute: opMcopy, constantGas: params.GasFastestStep, dynamicGas: gasMCopy, memorySize: memoryMCopy, numPop: 3}
	jt[BLOBHASH] = &operation{execute: opBlobHash, constantGas: params.BlobHashGasEIP4844, numPop: 1, numPush: 1}
	jt[BLOBBASEFEE] = &operation{execute: opBlobBaseFee, constantGas: params.BlobBaseFeeGasEIP7516, numPush: 1}
	jt.validate()
	return jt
}
