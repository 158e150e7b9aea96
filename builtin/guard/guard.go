// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package guard rejects reentrant and overlapping invocations of a component.
package guard

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

var errBusy = reverts.Conflict("reentrant call")

// Latch is held for the duration of one mutating operation.
// A second Enter before Exit fails instead of waiting.
type Latch struct {
	held atomic.Bool
}

// Enter acquires the latch. The returned func releases it.
func (l *Latch) Enter() (func(), error) {
	if !l.held.CompareAndSwap(false, true) {
		return nil, errBusy
	}
	return func() { l.held.Store(false) }, nil
}

func (l *Latch) Held() bool {
	return l.held.Load()
}

// IsBusy reports whether err was returned by a held latch.
func IsBusy(err error) bool {
	return errors.Is(err, errBusy)
}

// Latches hands out one latch per component address.
type Latches struct {
	mu sync.Mutex
	m  map[kickoff.Address]*Latch
}

// For returns the latch of addr, creating it on first use.
func (ls *Latches) For(addr kickoff.Address) *Latch {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if ls.m == nil {
		ls.m = make(map[kickoff.Address]*Latch)
	}
	l, ok := ls.m[addr]
	if !ok {
		l = new(Latch)
		ls.m[addr] = l
	}
	return l
}
