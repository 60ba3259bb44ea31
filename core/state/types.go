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

// Package state implements the StateDB contract the interpreter reads and
// writes through: accounts, storage, transient storage, logs, the
// access list, and the journal that makes all of it revertible to an
// arbitrary earlier snapshot.
package state

import (
	"github.com/probechain/pevm/core/vm"
)

// Account is the account record a StateDB stores per address: balance,
// nonce, and a pointer at the code stored separately by hash. Aliased to
// vm.Account (rather than redeclared) so this package's *StateDB
// structurally satisfies the vm.StateDB interface the interpreter programs
// against without vm needing to import state.
type Account = vm.Account

// Log is a single LOG0..LOG4 record appended during execution, aliased to
// vm.Log for the same reason as Account.
type Log = vm.Log
