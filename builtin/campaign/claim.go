// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package campaign

import (
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

var (
	errNoVotingPower     = reverts.Invalid("no voting power deposited")
	errNoContribution    = reverts.Invalid("participant has no voting power")
	errAlreadyClaimed    = reverts.Conflict("allocation already claimed")
	errUnknownPosition   = reverts.Invalid("unknown position")
	errPositionReturned  = reverts.Conflict("position already returned")
	errCampaignToken     = reverts.Invalid("cannot rescue the campaign token")
	errZeroRescue        = reverts.Invalid("zero rescue recipient or amount")
	errNotPositionOwner  = reverts.Unauthorized("caller is not the position owner")
	errRecipientRequired = reverts.Invalid("zero recipient")
)

// share computes sale * power / total.
func share(info *Info, power, total *big.Int) (*big.Int, error) {
	if total.Sign() == 0 {
		return nil, errNoVotingPower
	}
	amount, err := kickoff.MulDiv(info.SaleAllocation, power, total)
	if err != nil {
		return nil, reverts.Newf(reverts.Validation, "share: %v", err)
	}
	return amount, nil
}

// ClaimAllocation pays the caller its pro rata share of the sale allocation.
func (c *Campaign) ClaimAllocation(caller kickoff.Address) (*big.Int, error) {
	logger.Debug("claiming allocation", "campaign", c.addr, "caller", caller)

	var amount *big.Int
	err := c.guarded("claim-allocation", func(info *Info) error {
		if err := c.requirePhase(Complete); err != nil {
			return err
		}
		total, err := c.ledger.TotalVotingPower()
		if err != nil {
			return err
		}
		if total.Sign() == 0 {
			return errNoVotingPower
		}
		p, err := c.ledger.Participant(caller)
		if err != nil {
			return err
		}
		if p.IsEmpty() {
			return errNoContribution
		}
		if p.Claimed {
			return errAlreadyClaimed
		}
		if amount, err = share(info, p.VotingPower, total); err != nil {
			return err
		}
		if err := c.ledger.MarkClaimed(caller); err != nil {
			return err
		}
		if err := c.deps.Assets.Transfer(info.Token, c.addr, caller, amount); err != nil {
			return reverts.Externalf("allocation transfer: %v", err)
		}
		return nil
	})
	if err != nil {
		logger.Info("claim allocation failed", "campaign", c.addr, "caller", caller, "error", err)
		return nil, err
	}

	metricClaims().Add(1)
	logger.Info("claimed allocation", "campaign", c.addr, "caller", caller, "amount", amount)
	return amount, nil
}

// returnPosition hands id back to its recorded owner.
func (c *Campaign) returnPosition(id *big.Int) (kickoff.Address, error) {
	pos, err := c.ledger.MarkReturned(id)
	if err != nil {
		return kickoff.Address{}, err
	}
	if err := c.deps.Registry.TransferFrom(c.addr, c.addr, pos.Owner, id); err != nil {
		return kickoff.Address{}, reverts.Externalf("position return transfer: %v", err)
	}
	return pos.Owner, nil
}

// ReturnPosition gives a completed campaign's position back to its owner.
func (c *Campaign) ReturnPosition(caller kickoff.Address, id *big.Int) error {
	logger.Debug("returning position", "campaign", c.addr, "id", id)

	err := c.guarded("return-position", func(_ *Info) error {
		if err := c.requirePhase(Complete); err != nil {
			return err
		}
		pos, err := c.ledger.Position(id)
		if err != nil {
			return err
		}
		if pos == nil {
			return errUnknownPosition
		}
		if pos.Owner != caller {
			return errNotPositionOwner
		}
		if pos.Returned {
			return errPositionReturned
		}
		_, err = c.returnPosition(id)
		return err
	})
	if err != nil {
		logger.Info("return position failed", "campaign", c.addr, "id", id, "error", err)
		return err
	}

	logger.Info("returned position", "campaign", c.addr, "id", id, "owner", caller)
	return nil
}

// RescueForeignAsset sends an asset the campaign holds but does not use to to.
// The campaign token can never be rescued.
func (c *Campaign) RescueForeignAsset(caller, asset, to kickoff.Address, amount *big.Int) error {
	logger.Debug("rescuing asset", "campaign", c.addr, "asset", asset, "to", to, "amount", amount)

	err := c.guarded("rescue", func(info *Info) error {
		if err := c.requireRole(caller, info.Admin, "admin"); err != nil {
			return err
		}
		if asset == info.Token {
			return errCampaignToken
		}
		if to.IsZero() {
			return errRecipientRequired
		}
		if amount == nil || amount.Sign() <= 0 {
			return errZeroRescue
		}
		if err := c.deps.Assets.Transfer(asset, c.addr, to, amount); err != nil {
			return reverts.Externalf("rescue transfer: %v", err)
		}
		return nil
	})
	if err != nil {
		logger.Info("rescue failed", "campaign", c.addr, "asset", asset, "error", err)
		return err
	}

	logger.Info("rescued asset", "campaign", c.addr, "asset", asset, "to", to, "amount", amount)
	return nil
}
