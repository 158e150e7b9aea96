// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/kickoffbase/kickoff-contracts/kv"
)

// Stage abstracts net slot changes ready to be committed.
type Stage struct {
	changes map[storageKey]rlp.RawValue
}

// Len returns the number of changed slots.
func (st *Stage) Len() int {
	return len(st.changes)
}

// Commit writes the changes into the given store in one batch.
func (st *Stage) Commit(store kv.Store) error {
	batch := store.NewBatch()
	if err := st.write(batch); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "commit stage")
	}
	return nil
}

func (st *Stage) write(putter kv.Putter) error {
	for key, raw := range st.changes {
		k := slotKey(key.addr, key.key)
		if len(raw) == 0 {
			if err := putter.Delete(k); err != nil {
				return err
			}
			continue
		}
		if err := putter.Put(k, raw); err != nil {
			return err
		}
	}
	return nil
}
