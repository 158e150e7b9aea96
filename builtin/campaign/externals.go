// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package campaign

import (
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/conversion"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/discovery"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/liquidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

// PositionRegistry issues the locked positions deposited into campaigns.
type PositionRegistry interface {
	OwnerOf(id *big.Int) (kickoff.Address, error)
	VotingPower(id *big.Int) (*big.Int, error)
	TransferFrom(caller, from, to kickoff.Address, id *big.Int) error
}

// Voter directs position voting power at targets and knows their reward sources.
type Voter interface {
	IsAlive(target kickoff.Address) (bool, error)
	Vote(caller kickoff.Address, id *big.Int, targets []kickoff.Address, weights []*big.Int) error
	LastVoted(id *big.Int) (uint64, error)
	RewardSources(target kickoff.Address) ([]discovery.Source, error)
}

// Assets moves fungible tokens.
type Assets interface {
	BalanceOf(asset, holder kickoff.Address) (*big.Int, error)
	Transfer(asset, from, to kickoff.Address, amount *big.Int) error
	TransferFrom(asset, spender, owner, to kickoff.Address, amount *big.Int) error
	Approve(asset, owner, spender kickoff.Address, amount *big.Int) error
}

// Vault takes the campaign's liquidity forever.
type Vault interface {
	Address() kickoff.Address
	Lock(caller, campaignID, asset, pool, beneficiaryA, beneficiaryB kickoff.Address, amount *big.Int) error
}

// Clock returns the current block time in unix seconds.
type Clock interface {
	Now() uint64
}

// Deps are the external services a campaign uses.
type Deps struct {
	Assets    Assets
	Registry  PositionRegistry
	Voter     Voter
	Swap      conversion.Router
	Liquidity liquidity.Router
	Vault     Vault
	Clock     Clock
}
