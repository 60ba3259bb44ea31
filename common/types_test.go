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

package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestBytesConversion(t *testing.T) {
	b := []byte{5}
	hash := BytesToHash(b)

	var exp Hash
	exp[31] = 5

	if hash != exp {
		t.Errorf("expected %x got %x", exp, hash)
	}
}

func TestIsHexAddress(t *testing.T) {
	tests := []struct {
		str string
		exp bool
	}{
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"0X5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", true},
		{"0XAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", true},
		{"0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", true},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed1", false},
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beae", false},
		{"5aaeb6053f3e94c9b9a09f33669435e7ef1beaed11", false},
		{"0xxaaeb6053f3e94c9b9a09f33669435e7ef1beaed", false},
	}

	for _, test := range tests {
		if result := IsHexAddress(test.str); result != test.exp {
			t.Errorf("IsHexAddress(%s) == %v; expected %v", test.str, result, test.exp)
		}
	}
}

func TestHashJsonValidation(t *testing.T) {
	var tests = []struct {
		Prefix string
		Size   int
		Error  string
	}{
		{"", 62, "hex string without 0x prefix"},
		{"0x", 66, "hex string has length 66, want 64 for Hash"},
		{"0x", 63, "hex string of odd length"},
		{"0x", 0, "hex string has length 0, want 64 for Hash"},
		{"0x", 64, ""},
		{"0X", 64, ""},
	}
	for _, test := range tests {
		input := `"` + test.Prefix + strings.Repeat("0", test.Size) + `"`
		var v Hash
		err := json.Unmarshal([]byte(input), &v)
		if err == nil {
			if test.Error != "" {
				t.Errorf("%s: error mismatch: have nil, want %q", input, test.Error)
			}
		} else if err.Error() != test.Error {
			t.Errorf("%s: error mismatch: have %q, want %q", input, err, test.Error)
		}
	}
}

func TestAddressUnmarshalJSON(t *testing.T) {
	var tests = []struct {
		Input     string
		ShouldErr bool
	}{
		{"", true},
		{`""`, true},
		{`"0x"`, true},
		{`"0x00"`, true},
		{`"0xG000000000000000000000000000000000000000"`, true},
		{`"0x0000000000000000000000000000000000000000"`, false},
		{`"0x0000000000000000000000000000000000000010"`, false},
	}
	for i, test := range tests {
		var v Address
		err := json.Unmarshal([]byte(test.Input), &v)
		if (err != nil) != test.ShouldErr {
			t.Errorf("test #%d: error mismatch: have %v, shouldErr %v", i, err, test.ShouldErr)
		}
	}
}

func TestAddressHexChecksum(t *testing.T) {
	var tests = []struct {
		Input  string
		Output string
	}{
		{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"},
		{"0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359", "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"},
		{"0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb", "0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB"},
	}
	for i, test := range tests {
		addr := HexToAddress(test.Input)
		if got := addr.Hex(); got != test.Output {
			t.Errorf("test #%d: hex checksum mismatch: have %s, want %s", i, got, test.Output)
		}
		if round := HexToAddress(addr.Hex()); round != addr {
			t.Errorf("test #%d: roundtrip failed: %x != %x", i, round, addr)
		}
	}
}

func BenchmarkAddressHex(b *testing.B) {
	testAddr := HexToAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	for n := 0; n < b.N; n++ {
		testAddr.Hex()
	}
}

func TestHash_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     interface{}
		wantErr bool
	}{
		{"working scan", bytes.Repeat([]byte{0xAB}, 32), false},
		{"non working scan", int64(1234567890), true},
		{"invalid length scan", bytes.Repeat([]byte{0xAB}, 31), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &Hash{}
			if err := h.Scan(tt.src); (err != nil) != tt.wantErr {
				t.Errorf("Hash.Scan() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHash_Value(t *testing.T) {
	b := bytes.Repeat([]byte{0xAB}, 32)
	var h Hash
	h.SetBytes(b)
	got, err := h.Value()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []byte(b)) {
		t.Errorf("Hash.Value() = %v, want %v", got, b)
	}
}

func TestAddress_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     interface{}
		wantErr bool
	}{
		{"working scan", bytes.Repeat([]byte{0xAB}, 20), false},
		{"non working scan", int64(1234567890), true},
		{"invalid length scan", bytes.Repeat([]byte{0xAB}, 19), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Address{}
			if err := a.Scan(tt.src); (err != nil) != tt.wantErr {
				t.Errorf("Address.Scan() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddress_Format(t *testing.T) {
	b := []byte{
		0xb2, 0x6f, 0x2b, 0x34, 0x2a, 0xab, 0x24, 0xbc, 0xf6, 0x3e,
		0xa2, 0x18, 0xc6, 0xa9, 0x27, 0x4d, 0x30, 0xab, 0x9a, 0x15,
	}
	var addr Address
	addr.SetBytes(b)
	checksum := addr.Hex()

	tests := []struct {
		name string
		out  string
		want string
	}{
		{"print", fmt.Sprint(addr), checksum},
		{"printf-q", fmt.Sprintf("%q", addr), `"` + checksum + `"`},
		{"printf-x", fmt.Sprintf("%x", addr), "b26f2b342aab24bcf63ea218c6a9274d30ab9a15"},
		{"printf-X", fmt.Sprintf("%X", addr), "B26F2B342AAB24BCF63EA218C6A9274D30AB9A15"},
		{"printf-#x", fmt.Sprintf("%#x", addr), "0xb26f2b342aab24bcf63ea218c6a9274d30ab9a15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.out != tt.want {
				t.Errorf("%s does not render as expected:\n got %s\nwant %s", tt.name, tt.out, tt.want)
			}
		})
	}
}

func TestHash_Format(t *testing.T) {
	var hash Hash
	hash.SetBytes([]byte{0x10, 0x00})

	want := "0x0000000000000000000000000000000000000000000000000000000000001000"
	if got := fmt.Sprintf("%v", hash); got != want {
		t.Errorf("got %s want %s", got, want)
	}
}

func TestBigToAddressRoundtrip(t *testing.T) {
	addr := HexToAddress("0x73a852B3A0f63397f9f0DA7b8A0f7FF72d790b08")
	big := addr.Hash().Big()
	round := BigToAddress(big)
	if round != addr {
		t.Errorf("BigToAddress(addr.Hash().Big()) = %x, want %x", round, addr)
	}
}
