// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fakes

import (
	"errors"
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/state"
)

var (
	ErrUnknownPosition = errors.New("registry: unknown position")
	ErrNotOwner        = errors.New("registry: from is not owner")
	ErrNotApproved     = errors.New("registry: caller not approved")
)

type operatorKey struct {
	owner    kickoff.Address
	operator kickoff.Address
}

func (k operatorKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.operator.Bytes()...)
}

// Registry is a locked-position NFT registry.
type Registry struct {
	addr      kickoff.Address
	owners    *solidity.Mapping[kickoff.Bytes32, kickoff.Address]
	powers    *solidity.Mapping[kickoff.Bytes32, *big.Int]
	operators *solidity.Mapping[operatorKey, bool]
}

func NewRegistry(addr kickoff.Address, st *state.State) *Registry {
	sctx := solidity.NewContext(addr, st)
	return &Registry{
		addr:      addr,
		owners:    solidity.NewMapping[kickoff.Bytes32, kickoff.Address](sctx, kickoff.BytesToBytes32([]byte("owners"))),
		powers:    solidity.NewMapping[kickoff.Bytes32, *big.Int](sctx, kickoff.BytesToBytes32([]byte("powers"))),
		operators: solidity.NewMapping[operatorKey, bool](sctx, kickoff.BytesToBytes32([]byte("operators"))),
	}
}

func key(id *big.Int) kickoff.Bytes32 {
	return kickoff.BytesToBytes32(id.Bytes())
}

func (r *Registry) Address() kickoff.Address {
	return r.addr
}

// Mint issues position id to owner with the given voting power.
func (r *Registry) Mint(id *big.Int, owner kickoff.Address, power *big.Int) error {
	if err := r.owners.Set(key(id), owner); err != nil {
		return err
	}
	return r.powers.Set(key(id), power)
}

func (r *Registry) OwnerOf(id *big.Int) (kickoff.Address, error) {
	owner, err := r.owners.Get(key(id))
	if err != nil {
		return kickoff.Address{}, err
	}
	if owner.IsZero() {
		return kickoff.Address{}, ErrUnknownPosition
	}
	return owner, nil
}

func (r *Registry) VotingPower(id *big.Int) (*big.Int, error) {
	power, err := r.powers.Get(key(id))
	if err != nil {
		return nil, err
	}
	if power == nil {
		return new(big.Int), nil
	}
	return power, nil
}

func (r *Registry) SetApprovalForAll(owner, operator kickoff.Address, approved bool) error {
	return r.operators.Set(operatorKey{owner, operator}, approved)
}

// TransferFrom moves id from from to to. caller must be from or an approved operator.
func (r *Registry) TransferFrom(caller, from, to kickoff.Address, id *big.Int) error {
	owner, err := r.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner != from {
		return ErrNotOwner
	}
	if caller != from {
		approved, err := r.operators.Get(operatorKey{from, caller})
		if err != nil {
			return err
		}
		if !approved {
			return ErrNotApproved
		}
	}
	return r.owners.Set(key(id), to)
}
