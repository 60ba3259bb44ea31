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

package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/probechain/pevm/common"
)

func TestKeccak256Deterministic(t *testing.T) {
	// The empty-input digest is used throughout the protocol as the
	// canonical "no code" / "no data" hash, so it must be stable and
	// 32 bytes wide.
	a := Keccak256(nil)
	b := Keccak256(nil)
	if len(a) != 32 {
		t.Fatalf("digest length = %d, want 32", len(a))
	}
	if hex.EncodeToString(a) != hex.EncodeToString(b) {
		t.Fatalf("keccak256(\"\") not deterministic: %x != %x", a, b)
	}
	if hex.EncodeToString(Keccak256([]byte("x"))) == hex.EncodeToString(a) {
		t.Fatalf("keccak256 collided between distinct inputs")
	}
}

func TestKeccak256HashMatchesKeccak256(t *testing.T) {
	data := []byte("pevm")
	a := Keccak256(data)
	b := Keccak256Hash(data)
	if common.BytesToHash(a) != b {
		t.Fatalf("Keccak256 and Keccak256Hash disagree: %x != %x", a, b)
	}
}

func TestCreateAddressDeterministic(t *testing.T) {
	sender := common.HexToAddress("0x0000000000000000000000000000000000000001")
	a1 := CreateAddress(sender, 0)
	a2 := CreateAddress(sender, 0)
	if a1 != a2 {
		t.Fatalf("CreateAddress not deterministic: %x != %x", a1, a2)
	}
	if a1 == CreateAddress(sender, 1) {
		t.Fatalf("CreateAddress collided across nonces")
	}
}

func TestCreateAddress2Deterministic(t *testing.T) {
	sender := common.HexToAddress("0x0000000000000000000000000000000000000001")
	var salt [32]byte
	salt[31] = 42
	initCodeHash := Keccak256([]byte{0x60, 0x00})

	a1 := CreateAddress2(sender, salt, initCodeHash)
	a2 := CreateAddress2(sender, salt, initCodeHash)
	if a1 != a2 {
		t.Fatalf("CreateAddress2 not deterministic: %x != %x", a1, a2)
	}
}
