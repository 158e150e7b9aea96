// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

// Array is an append-only ordered list, like a dynamic storage array without pop.
// The length lives at pos, items at blake2b(index, pos).
type Array[V any] struct {
	length *Uint256
	items  *Mapping[Index, V]
}

func NewArray[V any](context *Context, pos kickoff.Bytes32) *Array[V] {
	return &Array[V]{
		length: NewUint256(context, pos),
		items:  NewMapping[Index, V](context, pos),
	}
}

func (a *Array[V]) Len() (uint64, error) {
	l, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	return l.Uint64(), nil
}

func (a *Array[V]) At(i uint64) (value V, err error) {
	l, err := a.Len()
	if err != nil {
		return value, err
	}
	if i >= l {
		return value, errors.Errorf("index %d out of range [0, %d)", i, l)
	}
	return a.items.Get(Index(i))
}

func (a *Array[V]) Push(value V) (uint64, error) {
	l, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := a.items.Set(Index(l), value); err != nil {
		return 0, err
	}
	a.length.Set(new(big.Int).SetUint64(l + 1))
	return l, nil
}

// Slice returns items [from, to), clamped to the array length.
func (a *Array[V]) Slice(from, to uint64) ([]V, error) {
	l, err := a.Len()
	if err != nil {
		return nil, err
	}
	if to > l {
		to = l
	}
	if from >= to {
		return nil, nil
	}
	out := make([]V, 0, to-from)
	for i := from; i < to; i++ {
		v, err := a.items.Get(Index(i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
