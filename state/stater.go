// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/kickoffbase/kickoff-contracts/kv"
)

const defaultCacheSize = 4096

// Stater is the state creator. States it creates share an LRU of committed slots.
type Stater struct {
	store kv.Store
	cache *lru.Cache
}

// NewStater create a new stater.
func NewStater(store kv.Store) *Stater {
	cache, _ := lru.New(defaultCacheSize)
	return &Stater{store: store, cache: cache}
}

// NewState create a new state object.
func (s *Stater) NewState() *State {
	return New(&cachedGetter{store: s.store, cache: s.cache})
}

// Commit persists the stage and refreshes the shared cache.
func (s *Stater) Commit(stage *Stage) error {
	if err := stage.Commit(s.store); err != nil {
		return err
	}
	for key, raw := range stage.changes {
		k := string(slotKey(key.addr, key.key))
		if len(raw) == 0 {
			s.cache.Remove(k)
		} else {
			s.cache.Add(k, []byte(raw))
		}
	}
	return nil
}

type cachedGetter struct {
	store kv.Store
	cache *lru.Cache
}

func (g *cachedGetter) Get(key []byte) ([]byte, error) {
	if v, ok := g.cache.Get(string(key)); ok {
		return v.([]byte), nil
	}
	v, err := g.store.Get(key)
	if err != nil {
		return nil, err
	}
	g.cache.Add(string(key), v)
	return v, nil
}

func (g *cachedGetter) Has(key []byte) (bool, error) {
	if _, ok := g.cache.Get(string(key)); ok {
		return true, nil
	}
	return g.store.Has(key)
}

func (g *cachedGetter) IsNotFound(err error) bool {
	return g.store.IsNotFound(err)
}
