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

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestStackPushPop(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	a := uint256.NewInt(1)
	b := uint256.NewInt(2)
	st.push(a)
	st.push(b)
	require.Equal(t, 2, st.len())

	got := st.pop()
	require.Equal(t, *b, got)
	require.Equal(t, 1, st.len())

	got = st.pop()
	require.Equal(t, *a, got)
	require.Equal(t, 0, st.len())
}

func TestStackSwap(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	st.push(uint256.NewInt(1))
	st.push(uint256.NewInt(2))
	st.push(uint256.NewInt(3))

	st.swap(3)
	require.Equal(t, uint256.NewInt(3).Uint64(), st.data[0].Uint64())
	require.Equal(t, uint256.NewInt(1).Uint64(), st.data[2].Uint64())
}

func TestStackDup(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	st.push(uint256.NewInt(7))
	st.dup(1)
	require.Equal(t, 2, st.len())
	require.Equal(t, uint64(7), st.peek().Uint64())
	require.Equal(t, uint64(7), st.Back(1).Uint64())
}

func TestStackBack(t *testing.T) {
	st := newstack()
	defer returnStack(st)

	st.push(uint256.NewInt(10))
	st.push(uint256.NewInt(20))
	st.push(uint256.NewInt(30))

	require.Equal(t, uint64(30), st.Back(0).Uint64())
	require.Equal(t, uint64(20), st.Back(1).Uint64())
	require.Equal(t, uint64(10), st.Back(2).Uint64())
}

func TestReturnStackResetsLength(t *testing.T) {
	st := newstack()
	st.push(uint256.NewInt(1))
	st.push(uint256.NewInt(2))
	returnStack(st)

	st2 := newstack()
	defer returnStack(st2)
	require.Equal(t, 0, st2.len())
}
