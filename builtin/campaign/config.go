// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package campaign

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/conversion"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/liquidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

// Config is what the factory supplies when it creates a campaign.
type Config struct {
	Admin       kickoff.Address
	Beneficiary kickoff.Address
	Recovery    kickoff.Address

	// Treasury receives the protocol share of the vault yield.
	Treasury   kickoff.Address
	Token      kickoff.Address
	Settlement kickoff.Address

	TotalAllocation *big.Int
	MinVotingPower  *big.Int

	// zero selects the protocol default
	SwapSlippageBps      uint32
	LiquiditySlippageBps uint32
}

func (c *Config) Validate() error {
	for _, f := range []struct {
		name string
		addr kickoff.Address
	}{
		{"admin", c.Admin},
		{"beneficiary", c.Beneficiary},
		{"recovery", c.Recovery},
		{"treasury", c.Treasury},
		{"token", c.Token},
		{"settlement", c.Settlement},
	} {
		if f.addr.IsZero() {
			return errors.Errorf("%s address is zero", f.name)
		}
	}
	if c.Token == c.Settlement {
		return errors.New("token and settlement currency must differ")
	}
	if c.TotalAllocation == nil || c.TotalAllocation.Sign() <= 0 {
		return errors.New("total allocation must be positive")
	}
	if c.MinVotingPower != nil && c.MinVotingPower.Sign() < 0 {
		return errors.New("minimum voting power is negative")
	}
	if c.SwapSlippageBps > kickoff.BasisPoints || c.LiquiditySlippageBps > kickoff.BasisPoints {
		return errors.New("slippage above 10000 bps")
	}
	return nil
}

// info splits the allocation and fills in defaults.
func (c *Config) info() *Info {
	sale := new(big.Int).Rsh(c.TotalAllocation, 1)
	minVP := new(big.Int)
	if c.MinVotingPower != nil {
		minVP.Set(c.MinVotingPower)
	}
	swapBps := c.SwapSlippageBps
	if swapBps == 0 {
		swapBps = conversion.DefaultSlippageBps.Get()
	}
	liqBps := c.LiquiditySlippageBps
	if liqBps == 0 {
		liqBps = liquidity.DefaultSlippageBps.Get()
	}
	return &Info{
		Admin:                c.Admin,
		Beneficiary:          c.Beneficiary,
		Recovery:             c.Recovery,
		Treasury:             c.Treasury,
		Token:                c.Token,
		Settlement:           c.Settlement,
		TotalAllocation:      new(big.Int).Set(c.TotalAllocation),
		SaleAllocation:       sale,
		LiquidityAllocation:  new(big.Int).Sub(c.TotalAllocation, sale),
		MinVotingPower:       minVP,
		SwapSlippageBps:      swapBps,
		LiquiditySlippageBps: liqBps,
	}
}
