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

// Fork is a named point in the protocol's evolution. Only the choice of
// jump table (vm's instructionSetForFork) switches on Fork directly; gas
// functions and opcode handlers consult the booleans on Rules instead,
// derived once per EVM via RulesForFork(fork).
type Fork int

const (
	Frontier Fork = iota
	Homestead
	TangerineWhistle // EIP-150: gas repricing for IO-heavy opcodes
	SpuriousDragon   // EIP-158/161: state clearing, EXP repricing
	Byzantium
	Constantinople
	Petersburg
	Istanbul
	Berlin      // EIP-2929/2930: access lists, cold/warm storage
	London      // EIP-3529/3198: refund cap cut, BASEFEE
	ArrowGlacier
	GrayGlacier
	Merge
	Shanghai // EIP-3855: PUSH0
	Cancun   // EIP-1153/4844/5656/6780: transient storage, blobs, MCOPY
)

func (f Fork) String() string {
	switch f {
	case Frontier:
		return "frontier"
	case Homestead:
		return "homestead"
	case TangerineWhistle:
		return "tangerineWhistle"
	case SpuriousDragon:
		return "spuriousDragon"
	case Byzantium:
		return "byzantium"
	case Constantinople:
		return "constantinople"
	case Petersburg:
		return "petersburg"
	case Istanbul:
		return "istanbul"
	case Berlin:
		return "berlin"
	case London:
		return "london"
	case ArrowGlacier:
		return "arrowGlacier"
	case GrayGlacier:
		return "grayGlacier"
	case Merge:
		return "merge"
	case Shanghai:
		return "shanghai"
	case Cancun:
		return "cancun"
	default:
		return "unknown"
	}
}

// Rules is the set of protocol booleans in effect for one EVM. It is
// computed once from a Fork by vm.NewEVM and read by the gas functions,
// the opcode handlers and the call orchestrator.
type Rules struct {
	IsHomestead bool
	IsEIP150    bool
	IsEIP158    bool
	IsByzantium bool
	IsConstantinople bool
	IsPetersburg     bool
	IsIstanbul       bool
	IsBerlin         bool
	IsLondon         bool
	IsMerge          bool
	IsShanghai       bool
	IsCancun         bool
}

// RulesForFork derives the Rules in effect at the named fork. Forks are
// cumulative: every rule active at an earlier fork stays active at every
// later one.
func RulesForFork(fork Fork) Rules {
	return Rules{
		IsHomestead:      fork >= Homestead,
		IsEIP150:         fork >= TangerineWhistle,
		IsEIP158:         fork >= SpuriousDragon,
		IsByzantium:      fork >= Byzantium,
		IsConstantinople: fork >= Constantinople,
		IsPetersburg:     fork >= Petersburg,
		IsIstanbul:       fork >= Istanbul,
		IsBerlin:         fork >= Berlin,
		IsLondon:         fork >= London,
		IsMerge:          fork >= Merge,
		IsShanghai:       fork >= Shanghai,
		IsCancun:         fork >= Cancun,
	}
}

// MaxRefundQuotient returns the divisor applied to gasUsed when capping the
// total gas refund: pre-London the refund may not exceed gasUsed/2
// (EIP-2200), from London on it may not exceed gasUsed/5 (EIP-3529).
func (r Rules) MaxRefundQuotient() uint64 {
	if r.IsLondon {
		return RefundQuotientEIP3529
	}
	return RefundQuotientEIP2200
}
