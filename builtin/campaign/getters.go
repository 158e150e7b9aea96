// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package campaign

import (
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/discovery"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/ledger"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

func (c *Campaign) Info() (*Info, error) {
	info, err := c.info.Get()
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errNotCreated
	}
	return info, nil
}

func (c *Campaign) Phase() (Phase, error) {
	return c.phase.Get()
}

// Allocations returns the sale, liquidity and total token allocations.
func (c *Campaign) Allocations() (sale, liq, total *big.Int, err error) {
	info, err := c.Info()
	if err != nil {
		return nil, nil, nil, err
	}
	return info.SaleAllocation, info.LiquidityAllocation, info.TotalAllocation, nil
}

func (c *Campaign) Snapshot() (*Snapshot, error) {
	var (
		s   Snapshot
		err error
	)
	if s.Phase, err = c.Phase(); err != nil {
		return nil, err
	}
	if s.Target, err = c.target.Get(); err != nil {
		return nil, err
	}
	if s.BindingEpoch, err = c.bindingEpoch.Get(); err != nil {
		return nil, err
	}
	if s.TotalVotingPower, err = c.ledger.TotalVotingPower(); err != nil {
		return nil, err
	}
	if s.SettlementCollected, err = c.settlementCollected.Get(); err != nil {
		return nil, err
	}
	if s.LiquidityAmount, err = c.liquidityAmount.Get(); err != nil {
		return nil, err
	}
	if s.LiquidityPool, err = c.liquidityPool.Get(); err != nil {
		return nil, err
	}
	if s.FinalizeStep, err = c.finalizeStep.Get(); err != nil {
		return nil, err
	}
	if s.RewardAssets, err = c.rewardAssets.Get(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Campaign) TotalVotingPower() (*big.Int, error) {
	return c.ledger.TotalVotingPower()
}

func (c *Campaign) VoteProgress() (*Progress, error) {
	return c.votes.Progress()
}

func (c *Campaign) ClaimProgress() (*Progress, error) {
	return c.claims.Progress()
}

func (c *Campaign) RecoveryProgress() (*Progress, error) {
	return c.recovery.Progress()
}

func (c *Campaign) FinalizeSubStep() (Step, error) {
	return c.finalizeStep.Get()
}

// Position returns the locked position record, nil if id was never deposited.
func (c *Campaign) Position(id *big.Int) (*ledger.Position, error) {
	return c.ledger.Position(id)
}

func (c *Campaign) Participant(addr kickoff.Address) (*ledger.Participant, error) {
	return c.ledger.Participant(addr)
}

// PositionIDs returns every deposited position id in deposit order.
func (c *Campaign) PositionIDs() ([]*big.Int, error) {
	return c.ledger.All()
}

// Claimable previews what ClaimAllocation would pay addr now. It is zero
// before completion, after claiming and when nothing was deposited.
func (c *Campaign) Claimable(addr kickoff.Address) (*big.Int, error) {
	phase, err := c.Phase()
	if err != nil {
		return nil, err
	}
	if phase != Complete {
		return new(big.Int), nil
	}
	info, err := c.Info()
	if err != nil {
		return nil, err
	}
	total, err := c.ledger.TotalVotingPower()
	if err != nil {
		return nil, err
	}
	p, err := c.ledger.Participant(addr)
	if err != nil {
		return nil, err
	}
	if total.Sign() == 0 || p.IsEmpty() || p.Claimed {
		return new(big.Int), nil
	}
	return share(info, p.VotingPower, total)
}

// PreviewRewardAssets runs reward discovery for the selected target without
// changing anything.
func (c *Campaign) PreviewRewardAssets() ([]kickoff.Address, error) {
	sources, err := c.rewardSources()
	if err != nil {
		return nil, err
	}
	active, err := c.activePositions()
	if err != nil {
		return nil, err
	}
	return discovery.Discover(sources, active), nil
}

// PreviewClaimableRewards sums what the held positions have earned of each
// discoverable reward asset.
func (c *Campaign) PreviewClaimableRewards() ([]discovery.Claimable, error) {
	sources, err := c.rewardSources()
	if err != nil {
		return nil, err
	}
	active, err := c.activePositions()
	if err != nil {
		return nil, err
	}
	assets := discovery.Discover(sources, active)
	return discovery.Preview(sources, active, assets), nil
}
