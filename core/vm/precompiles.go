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
	"github.com/probechain/pevm/common"
)

// PrecompiledContract is the interface every fixed-address 0x01..0x0A
// pseudo-contract satisfies: RequiredGas prices the call from its input
// alone (no access to the EVM or any state), Run produces its output.
// Grounded on the teacher's dilithiumVerify precompile shape.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

// precompiles is the fixed 0x01..0x0A registry the call orchestrator
// dispatches into. Every address in the range resolves to a contract —
// actually computing ECRECOVER/SHA256/RIPEMD/MODEXP/BN254/BLAKE2F's
// outputs is out of scope (see ErrPrecompileUnavailable). RequiredGas
// uses the current mainnet price for every address except MODEXP, which
// charges a flat 200 whatever its input; no price varies by fork.
var precompiles = map[common.Address]PrecompiledContract{
	common.BytesToAddress([]byte{1}):  &ecrecover{},
	common.BytesToAddress([]byte{2}):  &sha256hash{},
	common.BytesToAddress([]byte{3}):  &ripemd160hash{},
	common.BytesToAddress([]byte{4}):  &identity{},
	common.BytesToAddress([]byte{5}):  &bigModExp{},
	common.BytesToAddress([]byte{6}):  &bn254Add{},
	common.BytesToAddress([]byte{7}):  &bn254ScalarMul{},
	common.BytesToAddress([]byte{8}):  &bn254Pairing{},
	common.BytesToAddress([]byte{9}):  &blake2F{},
	common.BytesToAddress([]byte{10}): &kzgPointEvaluation{},
}

// precompile returns addr's precompiled contract, or nil if addr isn't
// one of the fixed 0x01..0x0A addresses.
func (evm *EVM) precompile(addr common.Address) PrecompiledContract {
	return precompiles[addr]
}

// runPrecompile charges RequiredGas against gas and, if there's enough,
// invokes the contract. Treated as a CALL outcome by the caller: an
// error here reverts exactly like a failed bytecode call would.
func runPrecompile(p PrecompiledContract, input []byte, gas uint64) ([]byte, uint64, error) {
	required := p.RequiredGas(input)
	if gas < required {
		return nil, 0, ErrOutOfGas
	}
	gas -= required
	output, err := p.Run(input)
	if err != nil {
		return nil, gas, err
	}
	return output, gas, nil
}

const (
	ecrecoverGas        = 3000
	sha256PerWordGas    = 12
	sha256BaseGas       = 60
	ripemd160PerWordGas = 120
	ripemd160BaseGas    = 600
	identityPerWordGas  = 3
	identityBaseGas     = 15
	blake2FPerRoundGas  = 1
)

type ecrecover struct{}

func (c *ecrecover) RequiredGas(input []byte) uint64 { return ecrecoverGas }
func (c *ecrecover) Run(input []byte) ([]byte, error) { return nil, ErrPrecompileUnavailable }

type sha256hash struct{}

func (c *sha256hash) RequiredGas(input []byte) uint64 {
	return sha256BaseGas + toWordSize(uint64(len(input)))*sha256PerWordGas
}
func (c *sha256hash) Run(input []byte) ([]byte, error) { return nil, ErrPrecompileUnavailable }

type ripemd160hash struct{}

func (c *ripemd160hash) RequiredGas(input []byte) uint64 {
	return ripemd160BaseGas + toWordSize(uint64(len(input)))*ripemd160PerWordGas
}
func (c *ripemd160hash) Run(input []byte) ([]byte, error) { return nil, ErrPrecompileUnavailable }

// identity is the one precompile simple enough to actually implement: it
// returns its input unchanged.
type identity struct{}

func (c *identity) RequiredGas(input []byte) uint64 {
	return identityBaseGas + toWordSize(uint64(len(input)))*identityPerWordGas
}

func (c *identity) Run(input []byte) ([]byte, error) {
	out := make([]byte, len(input))
	copy(out, input)
	return out, nil
}

type bigModExp struct{}

func (c *bigModExp) RequiredGas(input []byte) uint64 { return 200 }
func (c *bigModExp) Run(input []byte) ([]byte, error) { return nil, ErrPrecompileUnavailable }

type bn254Add struct{}

func (c *bn254Add) RequiredGas(input []byte) uint64 { return 150 }
func (c *bn254Add) Run(input []byte) ([]byte, error) { return nil, ErrPrecompileUnavailable }

type bn254ScalarMul struct{}

func (c *bn254ScalarMul) RequiredGas(input []byte) uint64 { return 6000 }
func (c *bn254ScalarMul) Run(input []byte) ([]byte, error) {
	return nil, ErrPrecompileUnavailable
}

type bn254Pairing struct{}

func (c *bn254Pairing) RequiredGas(input []byte) uint64 {
	const baseGas, perPairGas = 45000, 34000
	return baseGas + uint64(len(input)/192)*perPairGas
}
func (c *bn254Pairing) Run(input []byte) ([]byte, error) { return nil, ErrPrecompileUnavailable }

type blake2F struct{}

func (c *blake2F) RequiredGas(input []byte) uint64 {
	if len(input) != 213 {
		return 0
	}
	rounds := uint64(input[0])<<24 | uint64(input[1])<<16 | uint64(input[2])<<8 | uint64(input[3])
	return rounds * blake2FPerRoundGas
}
func (c *blake2F) Run(input []byte) ([]byte, error) { return nil, ErrPrecompileUnavailable }

type kzgPointEvaluation struct{}

func (c *kzgPointEvaluation) RequiredGas(input []byte) uint64 { return 50000 }
func (c *kzgPointEvaluation) Run(input []byte) ([]byte, error) {
	return nil, ErrPrecompileUnavailable
}
