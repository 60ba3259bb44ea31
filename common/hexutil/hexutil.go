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

// Package hexutil implements hex encoding with 0x prefixes for JSON/text
// marshaling of the fixed-size types in common.
package hexutil

import (
	"encoding/hex"
	"fmt"
	"reflect"
)

var (
	ErrEmptyString  = fmt.Errorf("empty hex string")
	ErrMissingPrefix = fmt.Errorf("hex string without 0x prefix")
	ErrOddLength    = fmt.Errorf("hex string of odd length")
	ErrSyntax       = fmt.Errorf("invalid hex string")
)

// Encode encodes b as a 0x-prefixed hex string.
func Encode(b []byte) string {
	enc := make([]byte, len(b)*2+2)
	copy(enc, "0x")
	hex.Encode(enc[2:], b)
	return string(enc)
}

// Decode decodes a 0x-prefixed hex string into bytes.
func Decode(input string) ([]byte, error) {
	if len(input) == 0 {
		return nil, ErrEmptyString
	}
	if !has0xPrefix(input) {
		return nil, ErrMissingPrefix
	}
	b, err := hex.DecodeString(input[2:])
	if err != nil {
		err = mapError(err)
	}
	return b, err
}

// Bytes marshals/unmarshals as a JSON string with 0x prefix.
type Bytes []byte

// MarshalText implements encoding.TextMarshaler.
func (b Bytes) MarshalText() ([]byte, error) {
	result := make([]byte, len(b)*2+2)
	copy(result, "0x")
	hex.Encode(result[2:], b)
	return result, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *Bytes) UnmarshalText(input []byte) error {
	raw, err := checkText(input)
	if err != nil {
		return err
	}
	dec := make([]byte, len(raw)/2)
	if _, err = hex.Decode(dec, raw); err != nil {
		err = mapError(err)
	} else {
		*b = dec
	}
	return err
}

// UnmarshalFixedText decodes a 0x-prefixed hex string into out, requiring
// an exact length match.
func UnmarshalFixedText(typename string, input, out []byte) error {
	raw, err := checkText(input)
	if err != nil {
		return err
	}
	if len(raw)/2 != len(out) {
		return fmt.Errorf("hex string has length %d, want %d for %s", len(raw), len(out)*2, typename)
	}
	_, err = hex.Decode(out, raw)
	return mapError(err)
}

// UnmarshalFixedUnprefixedText is like UnmarshalFixedText but the 0x
// prefix is optional.
func UnmarshalFixedUnprefixedText(typename string, input, out []byte) error {
	raw := input
	if has0xPrefix(string(input)) {
		raw = input[2:]
	}
	if len(raw)%2 != 0 {
		return ErrOddLength
	}
	if len(raw)/2 != len(out) {
		return fmt.Errorf("hex string has length %d, want %d for %s", len(raw), len(out)*2, typename)
	}
	_, err := hex.Decode(out, raw)
	return mapError(err)
}

// UnmarshalFixedJSON decodes a JSON-quoted hex string into out.
func UnmarshalFixedJSON(typ reflect.Type, input, out []byte) error {
	if !isString(input) {
		return fmt.Errorf("non-string %s", typ)
	}
	return UnmarshalFixedText(typ.String(), input[1:len(input)-1], out)
}

func checkText(input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, nil
	}
	if !has0xPrefix(string(input)) {
		return nil, ErrMissingPrefix
	}
	input = input[2:]
	if len(input)%2 != 0 {
		return nil, ErrOddLength
	}
	return input, nil
}

func isString(input []byte) bool {
	return len(input) >= 2 && input[0] == '"' && input[len(input)-1] == '"'
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(hex.InvalidByteError); ok {
		return ErrSyntax
	}
	if err == hex.ErrLength {
		return ErrOddLength
	}
	return err
}
