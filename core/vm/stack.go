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
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"github.com/probechain/pevm/params"
)

var stackPool = sync.Pool{
	New: func() interface{} {
		return &Stack{data: make([]uint256.Int, 0, 16)}
	},
}

// Stack is the 1024-slot operand stack every opcode pushes to and pops
// from. One Stack lives per Frame; newstack/returnStack recycle the
// backing slice across calls via stackPool.
type Stack struct {
	data []uint256.Int
}

func newstack() *Stack {
	return stackPool.Get().(*Stack)
}

func returnStack(s *Stack) {
	s.data = s.data[:0]
	stackPool.Put(s)
}

// Data returns the live backing slice. Callers must not retain or modify
// it past the current opcode.
func (st *Stack) Data() []uint256.Int {
	return st.data
}

func (st *Stack) push(d *uint256.Int) {
	st.data = append(st.data, *d)
}

func (st *Stack) pop() (ret uint256.Int) {
	ret = st.data[len(st.data)-1]
	st.data = st.data[:len(st.data)-1]
	return
}

func (st *Stack) len() int {
	return len(st.data)
}

func (st *Stack) swap(n int) {
	st.data[st.len()-n], st.data[st.len()-1] = st.data[st.len()-1], st.data[st.len()-n]
}

func (st *Stack) dup(n int) {
	st.push(&st.data[st.len()-n])
}

func (st *Stack) peek() *uint256.Int {
	return &st.data[st.len()-1]
}

// Back returns the n-th deep element without popping, where Back(0) is
// the top of the stack.
func (st *Stack) Back(n int) *uint256.Int {
	return &st.data[st.len()-n-1]
}

func (st *Stack) String() string {
	s := "stack:\n"
	for i, v := range st.data {
		s += fmt.Sprintf("%-3d %v\n", i, v.Hex())
	}
	return s
}

// maxStackSize is params.StackLimit reproduced here for direct comparison
// against Stack.len(); chargeBlock checks it once per basic block (using
// the block's stackMaxGrowth) rather than Stack itself enforcing it on
// every push, to keep push() branch-free on the hot path.
const maxStackSize = params.StackLimit
