// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fakes

import (
	"errors"
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/builtin/token"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/state"
)

var ErrClaimFees = errors.New("pool: claim fees failed")

// Fees are the unclaimed fees of one share holder.
type Fees struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

// Pool is a two-token pool accruing fees to share holders.
type Pool struct {
	addr           kickoff.Address
	ledger         *token.Ledger
	token0, token1 kickoff.Address
	fees           *solidity.Mapping[kickoff.Address, *Fees]

	// OnClaim runs inside ClaimFees before fees are paid.
	OnClaim func()
	// Fail makes ClaimFees fail.
	Fail bool
}

func NewPool(addr kickoff.Address, st *state.State, ledger *token.Ledger, token0, token1 kickoff.Address) *Pool {
	return &Pool{
		addr:   addr,
		ledger: ledger,
		token0: token0,
		token1: token1,
		fees:   solidity.NewMapping[kickoff.Address, *Fees](solidity.NewContext(addr, st), kickoff.BytesToBytes32([]byte("fees"))),
	}
}

func (p *Pool) Address() kickoff.Address {
	return p.addr
}

func (p *Pool) Tokens() (kickoff.Address, kickoff.Address, error) {
	return p.token0, p.token1, nil
}

func (p *Pool) claimable(holder kickoff.Address) (*Fees, error) {
	f, err := p.fees.Get(holder)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return &Fees{Amount0: new(big.Int), Amount1: new(big.Int)}, nil
	}
	return f, nil
}

// Accrue credits trading fees to holder.
func (p *Pool) Accrue(holder kickoff.Address, amount0, amount1 *big.Int) error {
	f, err := p.claimable(holder)
	if err != nil {
		return err
	}
	f.Amount0.Add(f.Amount0, amount0)
	f.Amount1.Add(f.Amount1, amount1)
	if err := p.ledger.Mint(p.token0, p.addr, amount0); err != nil {
		return err
	}
	if err := p.ledger.Mint(p.token1, p.addr, amount1); err != nil {
		return err
	}
	return p.fees.Set(holder, f)
}

func (p *Pool) ClaimFees(caller kickoff.Address) (*big.Int, *big.Int, error) {
	if p.OnClaim != nil {
		p.OnClaim()
	}
	if p.Fail {
		return nil, nil, ErrClaimFees
	}
	f, err := p.claimable(caller)
	if err != nil {
		return nil, nil, err
	}
	if err := p.ledger.Transfer(p.token0, p.addr, caller, f.Amount0); err != nil {
		return nil, nil, err
	}
	if err := p.ledger.Transfer(p.token1, p.addr, caller, f.Amount1); err != nil {
		return nil, nil, err
	}
	if err := p.fees.Set(caller, &Fees{Amount0: new(big.Int), Amount1: new(big.Int)}); err != nil {
		return nil, nil, err
	}
	return f.Amount0, f.Amount1, nil
}
