// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package discovery finds the reward assets a campaign's positions have earned
// and claims them best-effort.
//
// Discovery is read-only and costs O(assets × positions) Earned queries per
// source. Very large campaigns may need to page it; that is not done here.
package discovery

import (
	"fmt"
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/log"
)

var logger = log.WithContext("pkg", "discovery")

// MaxListedAssets bounds how many listed assets are read from one source.
var MaxListedAssets = solidity.NewConfigVariable("discovery-max-listed-assets", 32)

// Source is a reward contract attached to a vote target.
type Source interface {
	Address() kickoff.Address
	Earned(positionID *big.Int, asset kickoff.Address) (*big.Int, error)
}

// Lister is implemented by sources that publish their reward asset list.
type Lister interface {
	RewardsListLength() (uint64, error)
	Reward(i uint64) (kickoff.Address, error)
}

// Claimer is implemented by sources that pay out earned rewards.
type Claimer interface {
	GetReward(recipient kickoff.Address, positionID *big.Int, assets []kickoff.Address) error
}

// AsLister probes src for the listing capability.
func AsLister(src Source) (Lister, bool) {
	l, ok := src.(Lister)
	return l, ok
}

// AsClaimer probes src for the claiming capability.
func AsClaimer(src Source) (Claimer, bool) {
	c, ok := src.(Claimer)
	return c, ok
}

// Listed returns up to MaxListedAssets assets published by src, nil when it
// cannot list.
func Listed(src Source) ([]kickoff.Address, error) {
	lister, ok := AsLister(src)
	if !ok {
		logger.Debug("source cannot list rewards", "source", src.Address())
		return nil, nil
	}
	n, err := lister.RewardsListLength()
	if err != nil {
		return nil, err
	}
	n = min(n, uint64(MaxListedAssets.Get()))
	assets := make([]kickoff.Address, 0, n)
	for i := uint64(0); i < n; i++ {
		asset, err := lister.Reward(i)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

// earned treats a failing query as nothing earned.
func earned(src Source, id *big.Int, asset kickoff.Address) *big.Int {
	amount, err := src.Earned(id, asset)
	if err != nil || amount == nil {
		return new(big.Int)
	}
	return amount
}

// Discover returns, in first-seen order without duplicates, the listed assets
// of sources for which at least one position has a non-zero earned balance.
func Discover(sources []Source, positions []*big.Int) []kickoff.Address {
	var (
		seen   = make(map[kickoff.Address]bool)
		result []kickoff.Address
	)
	for _, src := range sources {
		listed, err := Listed(src)
		if err != nil {
			// a broken listing is treated like a missing one
			logger.Debug("failed to list rewards", "source", src.Address(), "error", err)
			continue
		}
		for _, asset := range listed {
			if seen[asset] {
				continue
			}
			for _, id := range positions {
				if earned(src, id, asset).Sign() > 0 {
					seen[asset] = true
					result = append(result, asset)
					break
				}
			}
		}
	}
	logger.Debug("discovered reward assets", "count", len(result))
	return result
}

// Claimable is the total earned of one asset across positions and sources.
type Claimable struct {
	Asset  kickoff.Address
	Amount *big.Int
}

// Preview sums the earned balances of assets over every source and position.
func Preview(sources []Source, positions []*big.Int, assets []kickoff.Address) []Claimable {
	out := make([]Claimable, 0, len(assets))
	for _, asset := range assets {
		total := new(big.Int)
		for _, src := range sources {
			for _, id := range positions {
				total.Add(total, earned(src, id, asset))
			}
		}
		out = append(out, Claimable{Asset: asset, Amount: total})
	}
	return out
}

// Claim asks every claiming source to pay the rewards of one position to
// recipient. Each source call is best-effort: failures are reverted and
// collected in report.
func Claim(
	cp reverts.Checkpointer,
	sources []Source,
	recipient kickoff.Address,
	positionID *big.Int,
	assets []kickoff.Address,
	report *reverts.Report,
) {
	if len(assets) == 0 {
		return
	}
	for _, src := range sources {
		claimer, ok := AsClaimer(src)
		if !ok {
			continue
		}
		report.Try(cp, fmt.Sprintf("claim %v@%v", positionID, src.Address()), func() error {
			return claimer.GetReward(recipient, positionID, assets)
		})
	}
}
