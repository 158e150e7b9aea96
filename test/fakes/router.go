// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fakes

import (
	"bytes"
	"errors"
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/conversion"
	"github.com/kickoffbase/kickoff-contracts/builtin/token"
	"github.com/kickoffbase/kickoff-contracts/builtin/vault"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/state"
)

var (
	ErrNoRoute            = errors.New("router: no route")
	ErrRouteDown          = errors.New("router: route unavailable")
	ErrInsufficientOutput = errors.New("router: insufficient output amount")
	ErrLiquidityDown      = errors.New("router: liquidity unavailable")
	ErrUnknownPool        = errors.New("router: unknown pool")
)

type rate struct {
	num, den *big.Int
}

// SwapAttempt is one call to Swap, successful or not.
type SwapAttempt struct {
	Asset  kickoff.Address
	Route  conversion.Route
	MinOut *big.Int
	OK     bool
}

// Router swaps at fixed rates and provisions pools.
type Router struct {
	addr   kickoff.Address
	state  *state.State
	ledger *token.Ledger

	rates map[kickoff.Address]map[conversion.Route]rate
	down  map[kickoff.Address]map[conversion.Route]bool
	pools map[kickoff.Address]*Pool

	// FailLiquidity makes AddLiquidity fail.
	FailLiquidity bool
	Attempts      []SwapAttempt
}

func NewRouter(addr kickoff.Address, st *state.State, ledger *token.Ledger) *Router {
	return &Router{
		addr:   addr,
		state:  st,
		ledger: ledger,
		rates:  make(map[kickoff.Address]map[conversion.Route]rate),
		down:   make(map[kickoff.Address]map[conversion.Route]bool),
		pools:  make(map[kickoff.Address]*Pool),
	}
}

func (r *Router) Address() kickoff.Address {
	return r.addr
}

// SetRate quotes asset at num/den units of output on both routes.
func (r *Router) SetRate(asset kickoff.Address, num, den int64) {
	r.SetRouteRate(asset, conversion.Volatile, num, den)
	r.SetRouteRate(asset, conversion.Stable, num, den)
}

func (r *Router) SetRouteRate(asset kickoff.Address, route conversion.Route, num, den int64) {
	if r.rates[asset] == nil {
		r.rates[asset] = make(map[conversion.Route]rate)
	}
	r.rates[asset][route] = rate{big.NewInt(num), big.NewInt(den)}
}

// Fail makes swaps of asset on route fail after quoting.
func (r *Router) Fail(asset kickoff.Address, route conversion.Route) {
	if r.down[asset] == nil {
		r.down[asset] = make(map[conversion.Route]bool)
	}
	r.down[asset][route] = true
}

func (r *Router) Quote(in, _ kickoff.Address, amountIn *big.Int, route conversion.Route) (*big.Int, error) {
	rt, ok := r.rates[in][route]
	if !ok {
		return nil, ErrNoRoute
	}
	out := new(big.Int).Mul(amountIn, rt.num)
	return out.Div(out, rt.den), nil
}

func (r *Router) Swap(caller, in, out kickoff.Address, amountIn, minOut *big.Int, route conversion.Route) (*big.Int, error) {
	attempt := SwapAttempt{Asset: in, Route: route, MinOut: new(big.Int).Set(minOut)}
	defer func() { r.Attempts = append(r.Attempts, attempt) }()

	if r.down[in][route] {
		return nil, ErrRouteDown
	}
	amountOut, err := r.Quote(in, out, amountIn, route)
	if err != nil {
		return nil, err
	}
	if amountOut.Cmp(minOut) < 0 {
		return nil, ErrInsufficientOutput
	}
	if err := r.ledger.TransferFrom(in, r.addr, caller, r.addr, amountIn); err != nil {
		return nil, err
	}
	if err := r.ledger.Mint(out, caller, amountOut); err != nil {
		return nil, err
	}
	attempt.OK = true
	return amountOut, nil
}

func sortTokens(a, b kickoff.Address) (kickoff.Address, kickoff.Address) {
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		return b, a
	}
	return a, b
}

func (r *Router) PoolFor(tokenA, tokenB kickoff.Address) (kickoff.Address, error) {
	t0, t1 := sortTokens(tokenA, tokenB)
	return kickoff.CreateAddress("fakes/pool", t0.Bytes(), t1.Bytes()), nil
}

// AddLiquidity deposits both full amounts and mints sqrt(a*b) pool shares to caller.
func (r *Router) AddLiquidity(caller, tokenA, tokenB kickoff.Address, amountA, amountB, minA, minB *big.Int) (*big.Int, error) {
	if r.FailLiquidity {
		return nil, ErrLiquidityDown
	}
	if amountA.Cmp(minA) < 0 || amountB.Cmp(minB) < 0 {
		return nil, ErrInsufficientOutput
	}
	addr, _ := r.PoolFor(tokenA, tokenB)
	pool := r.pools[addr]
	if pool == nil {
		t0, t1 := sortTokens(tokenA, tokenB)
		pool = NewPool(addr, r.state, r.ledger, t0, t1)
		r.pools[addr] = pool
	}
	if err := r.ledger.TransferFrom(tokenA, r.addr, caller, addr, amountA); err != nil {
		return nil, err
	}
	if err := r.ledger.TransferFrom(tokenB, r.addr, caller, addr, amountB); err != nil {
		return nil, err
	}
	liquidity := new(big.Int).Sqrt(new(big.Int).Mul(amountA, amountB))
	if err := r.ledger.Mint(addr, caller, liquidity); err != nil {
		return nil, err
	}
	return liquidity, nil
}

// Pool returns a pool created by AddLiquidity.
func (r *Router) Pool(addr kickoff.Address) (*Pool, error) {
	pool := r.pools[addr]
	if pool == nil {
		return nil, ErrUnknownPool
	}
	return pool, nil
}

type poolSet struct {
	r *Router
}

func (s poolSet) Pool(addr kickoff.Address) (vault.Pool, error) {
	pool, err := s.r.Pool(addr)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// Pools exposes the router's pools to the vault.
func (r *Router) Pools() vault.Pools {
	return poolSet{r}
}
