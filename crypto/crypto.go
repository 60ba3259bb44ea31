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

// Package crypto supplies the one hash primitive the interpreter needs a
// real implementation of: Keccak256, used by the KECCAK256 opcode and by
// CREATE2 address derivation. Elliptic-curve and pairing primitives are out
// of scope (spec §1) and are represented only by call signatures in
// core/vm/precompiles.go.
package crypto

import (
	"hash"
	"sync"

	"github.com/probechain/pevm/common"
	"golang.org/x/crypto/sha3"
)

// KeccakState extends hash.Hash with the Read method exposed by the
// legacy Keccak state, so callers can squeeze a digest out without an
// extra allocation (same trick as go-ethereum's crypto.KeccakState).
type KeccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

// NewKeccakState creates a new Keccak256 hasher.
func NewKeccakState() KeccakState {
	return sha3.NewLegacyKeccak256().(KeccakState)
}

// hasherPool recycles Keccak256 state across calls on the hot opcode path.
var hasherPool = sync.Pool{
	New: func() interface{} { return NewKeccakState() },
}

// Keccak256 computes the Keccak256 hash of the concatenation of data.
func Keccak256(data ...[]byte) []byte {
	h := hasherPool.Get().(KeccakState)
	h.Reset()
	defer hasherPool.Put(h)

	for _, b := range data {
		h.Write(b)
	}
	out := make([]byte, 32)
	h.Read(out)
	return out
}

// Keccak256Hash computes the Keccak256 hash and returns it as a common.Hash.
func Keccak256Hash(data ...[]byte) (h common.Hash) {
	d := NewKeccakState()
	for _, b := range data {
		d.Write(b)
	}
	d.Read(h[:])
	return h
}

// CreateAddress derives the CREATE address: keccak256(rlp(sender, nonce))[12:].
// RLP encoding of the (address, nonce) pair is inlined rather than pulling in
// a general RLP encoder, since this is the only value ever encoded here.
func CreateAddress(sender common.Address, nonce uint64) common.Address {
	data := rlpEncodeSenderNonce(sender, nonce)
	return common.BytesToAddress(Keccak256(data)[12:])
}

// CreateAddress2 derives the CREATE2 address:
// keccak256(0xff ++ sender ++ salt ++ keccak256(initCode))[12:].
func CreateAddress2(sender common.Address, salt [32]byte, initCodeHash []byte) common.Address {
	data := make([]byte, 0, 1+20+32+32)
	data = append(data, 0xff)
	data = append(data, sender.Bytes()...)
	data = append(data, salt[:]...)
	data = append(data, initCodeHash...)
	return common.BytesToAddress(Keccak256(data)[12:])
}

// rlpEncodeSenderNonce encodes the two-element list [sender, nonce] using
// the minimal subset of RLP needed for CREATE address derivation: a
// 20-byte string followed by a minimal big-endian integer, wrapped in a
// short list header (the combined payload never exceeds 55 bytes).
func rlpEncodeSenderNonce(sender common.Address, nonce uint64) []byte {
	nonceBytes := uint64ToMinimalBytes(nonce)

	addrField := append([]byte{0x80 + byte(len(sender))}, sender.Bytes()...)

	var nonceField []byte
	switch {
	case nonce == 0:
		nonceField = []byte{0x80}
	case len(nonceBytes) == 1 && nonceBytes[0] < 0x80:
		nonceField = nonceBytes
	default:
		nonceField = append([]byte{0x80 + byte(len(nonceBytes))}, nonceBytes...)
	}

	payload := append(addrField, nonceField...)
	return append([]byte{0xc0 + byte(len(payload))}, payload...)
}

func uint64ToMinimalBytes(n uint64) []byte {
	if n == 0 {
		return nil
	}
	var buf [8]byte
	for i := 7; i >= 0; i-- {
		buf[i] = byte(n)
		n >>= 8
	}
	i := 0
	for i < 7 && buf[i] == 0 {
		i++
	}
	return buf[i:]
}
