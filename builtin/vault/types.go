// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package vault

import (
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

// Record is the liquidity a campaign locked. It is never deleted or reduced.
type Record struct {
	LiquidityAsset kickoff.Address
	Pool           kickoff.Address
	BeneficiaryA   kickoff.Address
	BeneficiaryB   kickoff.Address
	TotalLiquidity *big.Int
	Exists         bool
}

// Payout is what one beneficiary received of one asset.
type Payout struct {
	Asset kickoff.Address
	ToA   *big.Int
	ToB   *big.Int
}

// Pool is the fee-bearing pool behind a locked liquidity asset. ClaimFees
// pays the fees accrued to caller's share in the pool's two tokens.
type Pool interface {
	Tokens() (kickoff.Address, kickoff.Address, error)
	ClaimFees(caller kickoff.Address) (*big.Int, *big.Int, error)
}

// Pools resolves a pool address.
type Pools interface {
	Pool(addr kickoff.Address) (Pool, error)
}

// CampaignRegistry tells whether an address is a campaign deployed by the factory.
type CampaignRegistry interface {
	IsCampaign(addr kickoff.Address) (bool, error)
}

type Assets interface {
	Transfer(asset, from, to kickoff.Address, amount *big.Int) error
	TransferFrom(asset, spender, owner, to kickoff.Address, amount *big.Int) error
}
