// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/kickoffbase/kickoff-contracts/builtin/guard"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/kv"
	"github.com/kickoffbase/kickoff-contracts/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr kickoff.Address
	key  kickoff.Bytes32
}

// State manages component storage slots on top of a committed kv source.
// All writes are journaled so that any checkpoint can be reverted.
type State struct {
	src     kv.Getter
	sm      *stackedmap.StackedMap[storageKey, rlp.RawValue]
	latches guard.Latches
}

// New create state object reading committed slots from src.
func New(src kv.Getter) *State {
	s := &State{src: src}
	s.sm = stackedmap.New(s.load)
	return s
}

func (s *State) load(key storageKey) (rlp.RawValue, bool, error) {
	raw, err := s.src.Get(slotKey(key.addr, key.key))
	if err != nil {
		if s.src.IsNotFound(err) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return raw, true, nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr kickoff.Address, key kickoff.Bytes32) (kickoff.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return kickoff.Bytes32{}, err
	}
	if len(raw) == 0 {
		return kickoff.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return kickoff.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, expose its digest
		return kickoff.Blake2b(raw), nil
	}
	return kickoff.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr kickoff.Address, key, value kickoff.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr kickoff.Address, key kickoff.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr kickoff.Address, key kickoff.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr kickoff.Address, key kickoff.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
func (s *State) DecodeStorage(addr kickoff.Address, key kickoff.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Latch returns the operation latch of the component at addr. Every handle
// bound to addr over this state shares it.
func (s *State) Latch(addr kickoff.Address) *guard.Latch {
	return s.latches.For(addr)
}

// Release drops the checkpoint specified by revision and every one above it,
// keeping their writes.
func (s *State) Release(revision int) {
	s.sm.MergeTo(revision)
}

// Atomic runs fn under a checkpoint. When fn fails every write it made is reverted.
func (s *State) Atomic(fn func() error) error {
	cp := s.NewCheckpoint()
	if err := fn(); err != nil {
		s.RevertTo(cp)
		return err
	}
	s.Release(cp)
	return nil
}

// Stage collects the net changes made on the state since it was created.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey]rlp.RawValue)
	s.sm.Journal(func(key storageKey, value rlp.RawValue) bool {
		changes[key] = value
		return true
	})
	return &Stage{changes: changes}
}

// slotKey is the kv key of a committed slot: 's' | address | slot.
func slotKey(addr kickoff.Address, key kickoff.Bytes32) []byte {
	k := make([]byte, 0, 1+kickoff.AddressLength+32)
	k = append(k, 's')
	k = append(k, addr.Bytes()...)
	return append(k, key.Bytes()...)
}
