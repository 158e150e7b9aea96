// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package conversion swaps collected reward assets into the settlement currency.
package conversion

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/log"
)

var logger = log.WithContext("pkg", "conversion")

// DefaultSlippageBps is the swap slippage tolerance used when a campaign does not set one.
var DefaultSlippageBps = solidity.NewConfigVariable("conversion-default-slippage-bps", 100)

// Route selects the pool type a swap goes through.
type Route uint8

const (
	Volatile Route = iota
	Stable
)

func (r Route) String() string {
	if r == Stable {
		return "stable"
	}
	return "volatile"
}

// Alternate returns the fallback route of r.
func (r Route) Alternate() Route {
	if r == Volatile {
		return Stable
	}
	return Volatile
}

// Router is the external swap service. Swap pulls amountIn from caller using
// the allowance granted to the router.
type Router interface {
	Address() kickoff.Address
	Quote(in, out kickoff.Address, amountIn *big.Int, route Route) (*big.Int, error)
	Swap(caller, in, out kickoff.Address, amountIn, minOut *big.Int, route Route) (*big.Int, error)
}

// Assets is the part of the token ledger the engine needs.
type Assets interface {
	BalanceOf(asset, holder kickoff.Address) (*big.Int, error)
	Approve(asset, owner, spender kickoff.Address, amount *big.Int) error
}

// MinOut returns quote reduced by slippageBps, never less than 1.
func MinOut(quote *big.Int, slippageBps uint32) (*big.Int, error) {
	if slippageBps > kickoff.BasisPoints {
		return nil, reverts.Invalid("slippage above 100%")
	}
	minOut, err := kickoff.ApplyBps(quote, kickoff.BasisPoints-slippageBps)
	if err != nil {
		return nil, err
	}
	if minOut.Sign() == 0 {
		return big.NewInt(1), nil
	}
	return minOut, nil
}

// Engine converts the balances held by one campaign.
type Engine struct {
	cp          reverts.Checkpointer
	assets      Assets
	router      Router
	holder      kickoff.Address
	settlement  kickoff.Address
	token       kickoff.Address
	slippageBps uint32
	primary     Route
}

// New returns an engine converting the balances of holder into settlement.
// The campaign token is never sold.
func New(cp reverts.Checkpointer, assets Assets, router Router, holder, settlement, token kickoff.Address, slippageBps uint32) *Engine {
	return &Engine{
		cp:          cp,
		assets:      assets,
		router:      router,
		holder:      holder,
		settlement:  settlement,
		token:       token,
		slippageBps: slippageBps,
		primary:     Volatile,
	}
}

// Convert swaps the whole balance of each asset into the settlement currency.
// Assets whose swap fails on both routes keep their balance and are recorded
// in report. It returns the resulting settlement balance of the holder.
func (e *Engine) Convert(assets []kickoff.Address, report *reverts.Report) (*big.Int, error) {
	for _, asset := range assets {
		if asset == e.settlement || asset == e.token {
			continue
		}
		balance, err := e.assets.BalanceOf(asset, e.holder)
		if err != nil {
			return nil, reverts.Externalf("balance of %v: %v", asset, err)
		}
		if balance.Sign() == 0 {
			continue
		}
		report.Try(e.cp, "swap "+asset.String(), func() error {
			return e.convert(asset, balance)
		})
	}
	collected, err := e.assets.BalanceOf(e.settlement, e.holder)
	if err != nil {
		return nil, reverts.Externalf("balance of %v: %v", e.settlement, err)
	}
	return collected, nil
}

func (e *Engine) convert(asset kickoff.Address, amount *big.Int) error {
	firstErr := e.attempt(asset, amount, e.primary)
	if firstErr == nil {
		return nil
	}
	logger.Debug("primary route failed, retrying", "asset", asset, "route", e.primary, "error", firstErr)

	alt := e.primary.Alternate()
	if err := e.attempt(asset, amount, alt); err != nil {
		logger.Info("asset left for rescue", "asset", asset, "amount", amount, "error", err)
		return errors.Wrapf(err, "%v route failed after %v", alt, firstErr)
	}
	return nil
}

// attempt quotes and swaps on one route under its own checkpoint.
func (e *Engine) attempt(asset kickoff.Address, amount *big.Int, route Route) error {
	rev := e.cp.NewCheckpoint()
	err := func() error {
		quote, err := e.router.Quote(asset, e.settlement, amount, route)
		if err != nil {
			return errors.Wrap(err, "quote")
		}
		minOut, err := MinOut(quote, e.slippageBps)
		if err != nil {
			return err
		}
		if err := e.assets.Approve(asset, e.holder, e.router.Address(), amount); err != nil {
			return err
		}
		out, err := e.router.Swap(e.holder, asset, e.settlement, amount, minOut, route)
		if err != nil {
			return errors.Wrap(err, "swap")
		}
		logger.Debug("swapped", "asset", asset, "in", amount, "out", out, "minOut", minOut, "route", route)
		return nil
	}()
	if err != nil {
		e.cp.RevertTo(rev)
		return reverts.Externalf("%v", err)
	}
	e.cp.Release(rev)
	return nil
}
