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

package state

import "github.com/probechain/pevm/common"

// accessList is the EIP-2929/2930 warm/cold tracking set for the current
// call. addresses maps a warm address to the index of its slot set in
// slots, or -1 if only the address itself (not any of its slots) has been
// touched yet.
type accessList struct {
	addresses map[common.Address]int
	slots     []map[common.Hash]struct{}
}

func newAccessList() *accessList {
	return &accessList{
		addresses: make(map[common.Address]int),
	}
}

// ContainsAddress reports whether the address is warm.
func (al *accessList) ContainsAddress(addr common.Address) bool {
	_, ok := al.addresses[addr]
	return ok
}

// Contains reports whether the address is warm and, if slot-level
// tracking exists for it, whether the slot is also warm.
func (al *accessList) Contains(addr common.Address, slot common.Hash) (addressPresent bool, slotPresent bool) {
	idx, ok := al.addresses[addr]
	if !ok {
		return false, false
	}
	if idx == -1 {
		return true, false
	}
	_, slotOk := al.slots[idx][slot]
	return true, slotOk
}

// AddAddress marks addr warm. Returns true if it was previously cold.
func (al *accessList) AddAddress(addr common.Address) bool {
	if _, ok := al.addresses[addr]; ok {
		return false
	}
	al.addresses[addr] = -1
	return true
}

// AddSlot marks (addr, slot) warm. Returns whether the address and the
// slot were each previously cold, so the caller can journal exactly what
// changed.
func (al *accessList) AddSlot(addr common.Address, slot common.Hash) (addrChange bool, slotChange bool) {
	idx, ok := al.addresses[addr]
	if !ok || idx == -1 {
		al.slots = append(al.slots, map[common.Hash]struct{}{slot: {}})
		al.addresses[addr] = len(al.slots) - 1
		return !ok, true
	}
	if _, ok := al.slots[idx][slot]; ok {
		return false, false
	}
	al.slots[idx][slot] = struct{}{}
	return false, true
}

// DeleteSlot removes a warm slot, used only by journal reverts.
func (al *accessList) DeleteSlot(addr common.Address, slot common.Hash) {
	idx, ok := al.addresses[addr]
	if !ok || idx == -1 {
		panic("reverting slot change, but address not present in list")
	}
	delete(al.slots[idx], slot)
}

// DeleteAddress removes a warm address, used only by journal reverts.
func (al *accessList) DeleteAddress(addr common.Address) {
	delete(al.addresses, addr)
}
