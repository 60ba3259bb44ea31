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

package params

// Gas schedule. Fork-sensitive costs (e.g. SLOAD, SSTORE, cold/warm access)
// are resolved at runtime against Rules rather than encoded as a single
// constant here; this table holds the costs that never changed across
// forks plus the pre-Berlin baseline values the Rules-aware gas functions
// fall back on.
const (
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10
	GasExtStep     uint64 = 20

	MaximumExtraDataSize uint64 = 32

	TxGas                 uint64 = 21000
	TxGasContractCreation uint64 = 53000
	TxDataZeroGas         uint64 = 4
	TxDataNonZeroGasFrontier uint64 = 68
	TxDataNonZeroGasEIP2028  uint64 = 16

	ExpByteGas       uint64 = 10
	ExpByteGasEIP158 uint64 = 50

	LogGas      uint64 = 375
	LogDataGas  uint64 = 8
	LogTopicGas uint64 = 375

	Keccak256Gas     uint64 = 30
	Keccak256WordGas uint64 = 6

	CopyGas     uint64 = 3
	MemoryGas   uint64 = 3
	QuadCoeffDiv uint64 = 512

	CreateGas             uint64 = 32000
	CreateDataGas         uint64 = 200
	Create2Gas            uint64 = 32000
	InitCodeWordGas       uint64 = 2
	MaxInitCodeSize              = 2 * MaxCodeSize
	MaxCodeSize                  = 24576

	JumpdestGas uint64 = 1

	CallStipend          uint64 = 2300
	CallValueTransferGas uint64 = 9000
	CallNewAccountGas    uint64 = 25000
	CallGasFrontier      uint64 = 40
	CallGasEIP150        uint64 = 700
	BalanceGasFrontier   uint64 = 20
	BalanceGasEIP150     uint64 = 400
	BalanceGasEIP1884    uint64 = 700
	ExtcodeSizeGasFrontier uint64 = 20
	ExtcodeSizeGasEIP150   uint64 = 700
	ExtcodeCopyBaseFrontier uint64 = 20
	ExtcodeCopyBaseEIP150   uint64 = 700
	ExtcodeHashGasConstantinople uint64 = 400
	ExtcodeHashGasEIP1884        uint64 = 700
	SloadGasFrontier  uint64 = 50
	SloadGasEIP150    uint64 = 200
	SloadGasEIP1884   uint64 = 800
	SloadGasEIP2200   uint64 = 800
	SelfdestructGasEIP150 uint64 = 5000
	SelfdestructRefundGas uint64 = 24000

	// Legacy flat-rate SSTORE pricing (Frontier through Constantinople's
	// EIP-1283 net-metering, repealed by Petersburg, is not modeled
	// separately — Rules collapses that brief window back to this flat
	// rate; see DESIGN.md for why).
	SstoreSetGas     uint64 = 20000
	SstoreResetGas   uint64 = 5000
	SstoreClearGas   uint64 = 5000
	SstoreRefundGas  uint64 = 15000

	SstoreSetGasEIP2200     uint64 = 20000
	SstoreResetGasEIP2200   uint64 = 5000
	SstoreClearsScheduleRefundEIP2200 uint64 = 15000
	SstoreSentryGasEIP2200  uint64 = 2300

	CreateBySelfdestructGas uint64 = 25000

	ColdAccountAccessCostEIP2929 uint64 = 2600
	ColdSloadCostEIP2929         uint64 = 2100
	WarmStorageReadCostEIP2929   uint64 = 100

	TxAccessListAddressGasEIP2930 uint64 = 2400
	TxAccessListSlotGasEIP2930    uint64 = 1900

	RefundQuotientEIP2200  uint64 = 2
	RefundQuotientEIP3529  uint64 = 5

	StackLimit          = 1024
	CallCreateDepth     = 1024

	TransientStorageReadGasEIP1153  uint64 = WarmStorageReadCostEIP2929
	TransientStorageWriteGasEIP1153 uint64 = WarmStorageReadCostEIP2929

	BlobHashGasEIP4844    uint64 = GasFastestStep
	BlobBaseFeeGasEIP7516 uint64 = GasQuickStep
)
