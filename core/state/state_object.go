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

import (
	"github.com/holiman/uint256"

	"github.com/probechain/pevm/common"
)

// stateObject is the in-memory working copy of one account: its ledger
// fields, its code, and both tiers of its storage (committed, from the
// backend, and dirty, written this batch but not yet committed).
type stateObject struct {
	address common.Address
	data    Account

	code      []byte
	dirtyCode bool

	originStorage map[common.Hash]common.Hash
	dirtyStorage  map[common.Hash]common.Hash

	suicided bool
	deleted  bool
}

func newStateObject(addr common.Address) *stateObject {
	return &stateObject{
		address: addr,
		data: Account{
			Balance: new(uint256.Int),
		},
		originStorage: make(map[common.Hash]common.Hash),
		dirtyStorage:  make(map[common.Hash]common.Hash),
	}
}

func (s *stateObject) empty() bool {
	return s.data.Nonce == 0 && s.data.Balance.IsZero() && s.data.CodeHash == (common.Hash{})
}

func (s *stateObject) copy() *stateObject {
	cpy := &stateObject{
		address:       s.address,
		data:          Account{Nonce: s.data.Nonce, Balance: new(uint256.Int).Set(s.data.Balance), CodeHash: s.data.CodeHash},
		code:          s.code,
		dirtyCode:     s.dirtyCode,
		originStorage: make(map[common.Hash]common.Hash, len(s.originStorage)),
		dirtyStorage:  make(map[common.Hash]common.Hash, len(s.dirtyStorage)),
		suicided:      s.suicided,
		deleted:       s.deleted,
	}
	for k, v := range s.originStorage {
		cpy.originStorage[k] = v
	}
	for k, v := range s.dirtyStorage {
		cpy.dirtyStorage[k] = v
	}
	return cpy
}

func (s *stateObject) setBalance(amount *uint256.Int) {
	s.data.Balance = amount
}

func (s *stateObject) setNonce(nonce uint64) {
	s.data.Nonce = nonce
}

func (s *stateObject) setCode(codeHash common.Hash, code []byte) {
	s.code = code
	s.data.CodeHash = codeHash
	s.dirtyCode = true
}

// GetState returns the dirty value for key if one has been written this
// batch, otherwise falls through to the committed value.
func (s *stateObject) GetState(key common.Hash) common.Hash {
	if value, dirty := s.dirtyStorage[key]; dirty {
		return value
	}
	return s.GetCommittedState(key)
}

func (s *stateObject) GetCommittedState(key common.Hash) common.Hash {
	return s.originStorage[key]
}

func (s *stateObject) SetState(key, value common.Hash) {
	s.dirtyStorage[key] = value
}

// finalize folds the dirty storage layer into the committed layer; called
// once a batch commits.
func (s *stateObject) finalize() {
	for k, v := range s.dirtyStorage {
		s.originStorage[k] = v
	}
	s.dirtyStorage = make(map[common.Hash]common.Hash)
	s.dirtyCode = false
}
