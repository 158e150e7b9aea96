// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token is a fungible asset ledger stored in state. Each asset keeps
// its balances, allowances and supply in the slots of its own address.
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/state"
)

var (
	slotBalances    = kickoff.BytesToBytes32([]byte("balances"))
	slotAllowances  = kickoff.BytesToBytes32([]byte("allowances"))
	slotTotalSupply = kickoff.BytesToBytes32([]byte("total-supply"))

	errInsufficientBalance   = reverts.Invalid("insufficient balance")
	errInsufficientAllowance = reverts.Invalid("insufficient allowance")
)

type allowanceKey struct {
	owner   kickoff.Address
	spender kickoff.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

type asset struct {
	balances   *solidity.Mapping[kickoff.Address, *big.Int]
	allowances *solidity.Mapping[allowanceKey, *big.Int]
	supply     *solidity.Uint256
}

// Ledger moves fungible assets identified by address.
type Ledger struct {
	state *state.State
}

func New(state *state.State) *Ledger {
	return &Ledger{state: state}
}

func (l *Ledger) asset(addr kickoff.Address) *asset {
	ctx := solidity.NewContext(addr, l.state)
	return &asset{
		balances:   solidity.NewMapping[kickoff.Address, *big.Int](ctx, slotBalances),
		allowances: solidity.NewMapping[allowanceKey, *big.Int](ctx, slotAllowances),
		supply:     solidity.NewUint256(ctx, slotTotalSupply),
	}
}

func (a *asset) balance(holder kickoff.Address) (*big.Int, error) {
	bal, err := a.balances.Get(holder)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

func (l *Ledger) BalanceOf(asset, holder kickoff.Address) (*big.Int, error) {
	return l.asset(asset).balance(holder)
}

func (l *Ledger) TotalSupply(asset kickoff.Address) (*big.Int, error) {
	return l.asset(asset).supply.Get()
}

func (l *Ledger) Allowance(asset, owner, spender kickoff.Address) (*big.Int, error) {
	v, err := l.asset(asset).allowances.Get(allowanceKey{owner, spender})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// Mint creates amount of asset for holder.
func (l *Ledger) Mint(asset, holder kickoff.Address, amount *big.Int) error {
	a := l.asset(asset)
	bal, err := a.balance(holder)
	if err != nil {
		return err
	}
	if err := a.balances.Set(holder, bal.Add(bal, amount)); err != nil {
		return err
	}
	return a.supply.Add(amount)
}

// Burn destroys amount of asset held by holder.
func (l *Ledger) Burn(asset, holder kickoff.Address, amount *big.Int) error {
	a := l.asset(asset)
	bal, err := a.balance(holder)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return errInsufficientBalance
	}
	if err := a.balances.Set(holder, bal.Sub(bal, amount)); err != nil {
		return err
	}
	return a.supply.Sub(amount)
}

func (l *Ledger) Transfer(asset, from, to kickoff.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return reverts.Invalid("negative amount")
	}
	a := l.asset(asset)
	fromBal, err := a.balance(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return errors.Wrapf(errInsufficientBalance, "asset %v holder %v", asset, from)
	}
	if err := a.balances.Set(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := a.balance(to)
	if err != nil {
		return err
	}
	return a.balances.Set(to, toBal.Add(toBal, amount))
}

func (l *Ledger) Approve(asset, owner, spender kickoff.Address, amount *big.Int) error {
	return l.asset(asset).allowances.Set(allowanceKey{owner, spender}, new(big.Int).Set(amount))
}

// TransferFrom moves amount from owner to to, spending the allowance granted to spender.
func (l *Ledger) TransferFrom(asset, spender, owner, to kickoff.Address, amount *big.Int) error {
	allowed, err := l.Allowance(asset, owner, spender)
	if err != nil {
		return err
	}
	if allowed.Cmp(amount) < 0 {
		return errors.Wrapf(errInsufficientAllowance, "asset %v owner %v spender %v", asset, owner, spender)
	}
	if err := l.Approve(asset, owner, spender, allowed.Sub(allowed, amount)); err != nil {
		return err
	}
	return l.Transfer(asset, owner, to, amount)
}
