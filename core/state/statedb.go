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
	"fmt"

	"github.com/VictoriaMetrics/fastcache"
	mapset "github.com/deckarep/golang-set"
	"github.com/holiman/uint256"

	"github.com/probechain/pevm/common"
	"github.com/probechain/pevm/crypto"
	"github.com/probechain/pevm/log"
)

// codeCacheBytes bounds the fastcache holding immutable contract code
// keyed by code hash, shared by every StateDB so that repeated CALLs into
// the same contract don't re-copy its bytecode out of the backend.
const codeCacheBytes = 32 * 1024 * 1024

var sharedCodeCache = fastcache.New(codeCacheBytes)

// StateDB is the in-memory execution-time view of account and storage
// state: it layers a dirty stateObject set over a committed backend, and
// journals every mutation so it can be unwound to any earlier Snapshot.
// It implements the vm.StateDB interface the interpreter programs
// against. Not safe for concurrent use by multiple goroutines; callers
// processing transactions concurrently give each goroutine its own
// StateDB (and EVM) rather than sharing one.
type StateDB struct {
	stateObjects map[common.Address]*stateObject

	journal        *journal
	validRevisions []revision
	nextRevisionID int

	accessList *accessList

	// transientStorage is EIP-1153 scratch space: live only for the
	// lifetime of one outer transaction, explicitly not part of the
	// journal (it is wiped wholesale by StartTransaction rather than
	// unwound entry-by-entry).
	transientStorage map[common.Address]map[common.Hash]common.Hash

	// selfdestructed holds addresses SELFDESTRUCT has been invoked on
	// this transaction; createdThisTx tracks which of those addresses
	// were also CREATEd this transaction, which is what EIP-6780 makes
	// the precondition for actually erasing the account.
	selfdestructed mapset.Set
	createdThisTx  mapset.Set

	refund uint64

	logs    map[common.Hash][]*Log
	logSize uint

	// thash is the hash of the in-flight transaction, used to key AddLog.
	thash common.Hash

	log *log.Logger
}

type revision struct {
	id           int
	journalIndex int
}

// NewStateDB returns an empty StateDB with no backing accounts, ready for
// a fresh chain of calls.
func NewStateDB() *StateDB {
	return &StateDB{
		stateObjects:     make(map[common.Address]*stateObject),
		journal:          newJournal(),
		accessList:       newAccessList(),
		transientStorage: make(map[common.Address]map[common.Hash]common.Hash),
		selfdestructed:   mapset.NewThreadUnsafeSet(),
		createdThisTx:    mapset.NewThreadUnsafeSet(),
		logs:             make(map[common.Hash][]*Log),
		log:              log.NewWith("pkg", "state"),
	}
}

// StartTransaction resets the per-transaction state (transient storage,
// the selfdestruct/created-this-tx sets, and the thash used to key logs)
// ahead of executing a new top-level transaction through the same
// StateDB.
func (s *StateDB) StartTransaction(txHash common.Hash) {
	s.thash = txHash
	s.transientStorage = make(map[common.Address]map[common.Hash]common.Hash)
	s.selfdestructed = mapset.NewThreadUnsafeSet()
	s.createdThisTx = mapset.NewThreadUnsafeSet()
}

func (s *StateDB) getStateObject(addr common.Address) *stateObject {
	if obj, ok := s.stateObjects[addr]; ok {
		return obj
	}
	return nil
}

func (s *StateDB) getOrNewStateObject(addr common.Address) *stateObject {
	obj := s.getStateObject(addr)
	if obj == nil {
		obj = newStateObject(addr)
		s.stateObjects[addr] = obj
		s.journal.append(createObjectChange{account: &addr})
	}
	return obj
}

// GetAccount returns the account record at addr, and whether it exists.
func (s *StateDB) GetAccount(addr common.Address) (Account, bool) {
	obj := s.getStateObject(addr)
	if obj == nil {
		return Account{}, false
	}
	return obj.data, true
}

// SetAccount installs acct at addr wholesale, used by the orchestrator to
// seed state before a call and to materialize a freshly CREATEd account.
func (s *StateDB) SetAccount(addr common.Address, acct Account) {
	obj := s.getOrNewStateObject(addr)
	if acct.Balance == nil {
		acct.Balance = new(uint256.Int)
	}
	s.journal.append(balanceChange{account: &addr, prev: new(uint256.Int).Set(obj.data.Balance)})
	s.journal.append(nonceChange{account: &addr, prev: obj.data.Nonce})
	obj.data = acct
}

// DeleteAccount removes addr's account record entirely. Used for
// SELFDESTRUCT cleanup once a transaction finishes (post-Cancun, only
// when the account was also created this transaction).
func (s *StateDB) DeleteAccount(addr common.Address) {
	delete(s.stateObjects, addr)
}

// AccountExists reports whether addr has an account record.
func (s *StateDB) AccountExists(addr common.Address) bool {
	return s.getStateObject(addr) != nil
}

// GetStorage returns the current (possibly dirty, uncommitted) value of
// key in addr's storage.
func (s *StateDB) GetStorage(addr common.Address, key common.Hash) common.Hash {
	obj := s.getStateObject(addr)
	if obj == nil {
		return common.Hash{}
	}
	return obj.GetState(key)
}

// SetStorage writes value to key in addr's storage, journaling the prior
// value so SSTORE can be reverted.
func (s *StateDB) SetStorage(addr common.Address, key, value common.Hash) {
	obj := s.getOrNewStateObject(addr)
	prev := obj.GetState(key)
	if prev == value {
		return
	}
	s.journal.append(storageChange{account: &addr, key: key, prevalue: prev})
	obj.SetState(key, value)
}

// GetCommittedStorage returns key's value as of the last commit, ignoring
// any dirty write made so far in the current batch — this is what
// SSTORE's EIP-2200 net-gas metering compares the current value against.
func (s *StateDB) GetCommittedStorage(addr common.Address, key common.Hash) common.Hash {
	obj := s.getStateObject(addr)
	if obj == nil {
		return common.Hash{}
	}
	return obj.GetCommittedState(key)
}

// GetTransientStorage returns addr's EIP-1153 transient value at key.
func (s *StateDB) GetTransientStorage(addr common.Address, key common.Hash) common.Hash {
	m, ok := s.transientStorage[addr]
	if !ok {
		return common.Hash{}
	}
	return m[key]
}

// SetTransientStorage writes addr's EIP-1153 transient value at key. Not
// journaled: TLOAD/TSTORE are explicitly excluded from snapshot/revert by
// EIP-1153 itself, and instead reset wholesale at transaction boundaries
// by StartTransaction.
func (s *StateDB) SetTransientStorage(addr common.Address, key, value common.Hash) {
	m, ok := s.transientStorage[addr]
	if !ok {
		m = make(map[common.Hash]common.Hash)
		s.transientStorage[addr] = m
	}
	m[key] = value
}

// GetCode returns addr's contract code from the state object, falling
// back to the shared byte cache (keyed by code hash) when the object holds
// none.
func (s *StateDB) GetCode(addr common.Address) []byte {
	obj := s.getStateObject(addr)
	if obj == nil {
		return nil
	}
	if obj.code != nil {
		return obj.code
	}
	if cached := sharedCodeCache.Get(nil, obj.data.CodeHash[:]); len(cached) > 0 {
		obj.code = cached
		return cached
	}
	return nil
}

// GetCodeHash returns addr's code hash.
func (s *StateDB) GetCodeHash(addr common.Address) common.Hash {
	obj := s.getStateObject(addr)
	if obj == nil {
		return common.Hash{}
	}
	return obj.data.CodeHash
}

// SetCode installs code at addr, used by CREATE/CREATE2 to deposit the
// returned init-code output.
func (s *StateDB) SetCode(addr common.Address, code []byte) {
	obj := s.getOrNewStateObject(addr)
	hash := crypto.Keccak256Hash(code)
	s.journal.append(codeChange{account: &addr, prevcode: obj.code, prevhash: obj.data.CodeHash[:]})
	obj.setCode(hash, code)
	sharedCodeCache.Set(hash[:], code)
}

// GetBalance returns addr's wei balance.
func (s *StateDB) GetBalance(addr common.Address) *uint256.Int {
	obj := s.getStateObject(addr)
	if obj == nil {
		return new(uint256.Int)
	}
	return obj.data.Balance
}

// SetBalance overwrites addr's balance, journaling the prior value.
func (s *StateDB) SetBalance(addr common.Address, amount *uint256.Int) {
	obj := s.getOrNewStateObject(addr)
	s.journal.append(balanceChange{account: &addr, prev: new(uint256.Int).Set(obj.data.Balance)})
	obj.setBalance(amount)
}

// GetNonce returns addr's nonce.
func (s *StateDB) GetNonce(addr common.Address) uint64 {
	obj := s.getStateObject(addr)
	if obj == nil {
		return 0
	}
	return obj.data.Nonce
}

// SetNonce overwrites addr's nonce, journaling the prior value.
func (s *StateDB) SetNonce(addr common.Address, nonce uint64) {
	obj := s.getOrNewStateObject(addr)
	s.journal.append(nonceChange{account: &addr, prev: obj.data.Nonce})
	obj.setNonce(nonce)
}

// AddRefund increases the pending gas refund counter.
func (s *StateDB) AddRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	s.refund += gas
}

// SubRefund decreases the pending gas refund counter. Panics if it would
// go negative — callers (SSTORE's net-gas accounting) are expected never
// to attempt that, matching go-ethereum's own invariant here.
func (s *StateDB) SubRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	if gas > s.refund {
		panic(fmt.Sprintf("refund counter below zero (gas: %d > refund: %d)", gas, s.refund))
	}
	s.refund -= gas
}

// GetRefund returns the pending gas refund counter.
func (s *StateDB) GetRefund() uint64 {
	return s.refund
}

// AddLog appends a LOG0..LOG4 record to the current transaction's log set.
func (s *StateDB) AddLog(l *Log) {
	s.journal.append(addLogChange{txhash: s.thash})
	s.logs[s.thash] = append(s.logs[s.thash], l)
	s.logSize++
}

// GetLogs returns the logs appended for txHash.
func (s *StateDB) GetLogs(txHash common.Hash) []*Log {
	return s.logs[txHash]
}

// AddressInAccessList reports whether addr is warm.
func (s *StateDB) AddressInAccessList(addr common.Address) bool {
	return s.accessList.ContainsAddress(addr)
}

// SlotInAccessList reports whether addr and/or (addr, slot) are warm.
func (s *StateDB) SlotInAccessList(addr common.Address, slot common.Hash) (bool, bool) {
	return s.accessList.Contains(addr, slot)
}

// AddAddressToAccessList marks addr warm for the rest of the transaction.
func (s *StateDB) AddAddressToAccessList(addr common.Address) {
	if s.accessList.AddAddress(addr) {
		s.journal.append(accessListAddAccountChange{address: &addr})
	}
}

// AddSlotToAccessList marks (addr, slot) warm for the rest of the
// transaction.
func (s *StateDB) AddSlotToAccessList(addr common.Address, slot common.Hash) {
	addrChange, slotChange := s.accessList.AddSlot(addr, slot)
	if addrChange {
		s.journal.append(accessListAddAccountChange{address: &addr})
	}
	if slotChange {
		s.journal.append(accessListAddSlotChange{address: &addr, slot: &slot})
	}
}

// Snapshot returns an opaque token identifying the current journal
// position, to later RevertToSnapshot back to.
func (s *StateDB) Snapshot() int {
	id := s.nextRevisionID
	s.nextRevisionID++
	s.validRevisions = append(s.validRevisions, revision{id: id, journalIndex: s.journal.length()})
	return id
}

// RevertToSnapshot undoes every state mutation recorded since the
// snapshot identified by id.
func (s *StateDB) RevertToSnapshot(id int) {
	idx := len(s.validRevisions)
	for idx > 0 && s.validRevisions[idx-1].id > id {
		idx--
	}
	if idx == 0 || s.validRevisions[idx-1].id != id {
		panic(fmt.Sprintf("revision id %v cannot be reverted", id))
	}
	snapshot := s.validRevisions[idx-1].journalIndex

	s.journal.revert(s, snapshot)
	s.validRevisions = s.validRevisions[:idx-1]
}

// Selfdestruct marks addr for destruction. Whether it is actually erased
// (immediately vs. deferred to end of transaction, and whether EIP-6780
// gates that on same-transaction creation) is the orchestrator's call,
// made with the help of CreatedThisTransaction.
func (s *StateDB) Selfdestruct(addr common.Address) {
	obj := s.getStateObject(addr)
	if obj == nil {
		return
	}
	s.journal.append(selfdestructChange{account: &addr, prevSuicided: obj.suicided})
	obj.suicided = true
	s.selfdestructed.Add(addr)
	s.journal.append(balanceChange{account: &addr, prev: new(uint256.Int).Set(obj.data.Balance)})
	obj.setBalance(new(uint256.Int))
}

// HasSelfdestructed reports whether addr was SELFDESTRUCTed this
// transaction.
func (s *StateDB) HasSelfdestructed(addr common.Address) bool {
	return s.selfdestructed.Contains(addr)
}

// MarkCreatedThisTransaction records that addr was the target of a
// CREATE/CREATE2 within the current transaction, consulted by
// EIP-6780's SELFDESTRUCT gating.
func (s *StateDB) MarkCreatedThisTransaction(addr common.Address) {
	s.createdThisTx.Add(addr)
}

// CreatedThisTransaction reports whether addr was CREATEd within the
// current transaction.
func (s *StateDB) CreatedThisTransaction(addr common.Address) bool {
	return s.createdThisTx.Contains(addr)
}

// Empty reports whether addr is "empty" under EIP-161: zero nonce, zero
// balance, no code.
func (s *StateDB) Empty(addr common.Address) bool {
	obj := s.getStateObject(addr)
	return obj == nil || obj.empty()
}

// GetStateRoot computes a deterministic digest over every account and
// storage slot currently tracked. This is not a Merkle-Patricia root (the
// trie and its proofs are out of scope here); it exists so tests and
// callers can assert "the state didn't change" without comparing whole
// maps by hand.
func (s *StateDB) GetStateRoot() common.Hash {
	addrs := make([]common.Address, 0, len(s.stateObjects))
	for addr := range s.stateObjects {
		addrs = append(addrs, addr)
	}
	sortAddresses(addrs)

	var buf []byte
	for _, addr := range addrs {
		obj := s.stateObjects[addr]
		if obj.suicided {
			continue
		}
		buf = append(buf, addr.Bytes()...)
		buf = append(buf, obj.data.Balance.Bytes()...)
		var nonce [8]byte
		for i := 0; i < 8; i++ {
			nonce[i] = byte(obj.data.Nonce >> (8 * (7 - i)))
		}
		buf = append(buf, nonce[:]...)
		buf = append(buf, obj.data.CodeHash[:]...)

		keys := make([]common.Hash, 0, len(obj.originStorage)+len(obj.dirtyStorage))
		seen := make(map[common.Hash]struct{})
		for k := range obj.originStorage {
			keys = append(keys, k)
			seen[k] = struct{}{}
		}
		for k := range obj.dirtyStorage {
			if _, ok := seen[k]; !ok {
				keys = append(keys, k)
			}
		}
		sortHashes(keys)
		for _, k := range keys {
			v := obj.GetState(k)
			if v == (common.Hash{}) {
				continue
			}
			buf = append(buf, k[:]...)
			buf = append(buf, v[:]...)
		}
	}
	return crypto.Keccak256Hash(buf)
}

// CommitChanges finalizes every dirty stateObject (folding dirty storage
// into committed storage, clearing the dirty-code flag), drops
// SELFDESTRUCTed accounts, and returns the resulting state root.
func (s *StateDB) CommitChanges() (common.Hash, error) {
	for addr, obj := range s.stateObjects {
		if obj.suicided {
			delete(s.stateObjects, addr)
			continue
		}
		obj.finalize()
	}
	return s.GetStateRoot(), nil
}

// BeginBatch starts a new nested change-set by taking a snapshot; callers
// that want all-or-nothing semantics across several operations wrap them
// in BeginBatch/CommitBatch or BeginBatch/RollbackBatch.
func (s *StateDB) BeginBatch() {
	s.Snapshot()
}

// CommitBatch finalizes the outermost open batch. Since every mutation
// is already live in the stateObject set, committing a batch is a no-op
// beyond dropping its snapshot bookkeeping.
func (s *StateDB) CommitBatch() error {
	if len(s.validRevisions) == 0 {
		return fmt.Errorf("state: no open batch to commit")
	}
	s.validRevisions = s.validRevisions[:len(s.validRevisions)-1]
	return nil
}

// RollbackBatch reverts every change made since the matching BeginBatch.
func (s *StateDB) RollbackBatch() {
	if len(s.validRevisions) == 0 {
		s.log.Warn("RollbackBatch called with no open batch")
		return
	}
	last := s.validRevisions[len(s.validRevisions)-1]
	s.journal.revert(s, last.journalIndex)
	s.validRevisions = s.validRevisions[:len(s.validRevisions)-1]
}

func sortAddresses(a []common.Address) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && lessAddress(a[j], a[j-1]); j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

func lessAddress(a, b common.Address) bool {
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func sortHashes(a []common.Hash) {
	for i := 1; i < len(a); i++ {
		for j := i; j > 0 && lessHash(a[j], a[j-1]); j-- {
			a[j], a[j-1] = a[j-1], a[j]
		}
	}
}

func lessHash(a, b common.Hash) bool {
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
