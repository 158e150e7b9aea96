// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package liquidity pairs the campaign token with the settlement currency in a pool.
package liquidity

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/conversion"
	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/log"
)

var logger = log.WithContext("pkg", "liquidity")

// DefaultSlippageBps is the liquidity slippage tolerance used when a campaign does not set one.
var DefaultSlippageBps = solidity.NewConfigVariable("liquidity-default-slippage-bps", 100)

// Router is the external liquidity service. AddLiquidity pulls both amounts
// from caller using the allowances granted to the router and mints the pool
// share to caller.
type Router interface {
	Address() kickoff.Address
	AddLiquidity(caller, tokenA, tokenB kickoff.Address, amountA, amountB, minA, minB *big.Int) (liquidity *big.Int, err error)
	PoolFor(tokenA, tokenB kickoff.Address) (kickoff.Address, error)
}

type Assets interface {
	Approve(asset, owner, spender kickoff.Address, amount *big.Int) error
}

// Position is the provisioned liquidity. The pool address is also the
// address of its share asset.
type Position struct {
	Liquidity *big.Int
	Pool      kickoff.Address
}

// Provision supplies tokenAmount of token and settlementAmount of settlement
// from holder. It does nothing and returns nil when settlementAmount is zero.
func Provision(
	assets Assets,
	router Router,
	holder, token, settlement kickoff.Address,
	tokenAmount, settlementAmount *big.Int,
	slippageBps uint32,
) (*Position, error) {
	if settlementAmount.Sign() == 0 {
		logger.Debug("nothing to provision")
		return nil, nil
	}

	minToken, err := conversion.MinOut(tokenAmount, slippageBps)
	if err != nil {
		return nil, err
	}
	minSettlement, err := conversion.MinOut(settlementAmount, slippageBps)
	if err != nil {
		return nil, err
	}

	if err := assets.Approve(token, holder, router.Address(), tokenAmount); err != nil {
		return nil, reverts.Externalf("approve token: %v", err)
	}
	if err := assets.Approve(settlement, holder, router.Address(), settlementAmount); err != nil {
		return nil, reverts.Externalf("approve settlement: %v", err)
	}

	liq, err := router.AddLiquidity(holder, token, settlement, tokenAmount, settlementAmount, minToken, minSettlement)
	if err != nil {
		return nil, reverts.Externalf("add liquidity: %v", err)
	}
	if liq == nil || liq.Sign() == 0 {
		return nil, reverts.Externalf("add liquidity: no liquidity minted")
	}
	pool, err := router.PoolFor(token, settlement)
	if err != nil {
		return nil, errors.Wrap(reverts.Externalf("pool lookup: %v", err), "provision")
	}

	logger.Info("provisioned liquidity", "pool", pool, "liquidity", liq, "token", tokenAmount, "settlement", settlementAmount)
	return &Position{Liquidity: liq, Pool: pool}, nil
}
