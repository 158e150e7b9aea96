// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package campaign

import (
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/epoch"
	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

var (
	errAlreadyVoted = reverts.Invalid("position already voted this epoch")
	errBelowMinimum = reverts.Invalid("voting power below minimum")
	errDuplicate    = reverts.Invalid("position already deposited")
	errNotOwner     = reverts.Unauthorized("caller does not own position")
)

// Activate pulls the token allocation from the admin and opens deposits.
// The current epoch becomes the binding epoch.
func (c *Campaign) Activate(caller kickoff.Address) error {
	logger.Debug("activating", "campaign", c.addr, "caller", caller)

	err := c.guarded("activate", func(info *Info) error {
		if err := c.requireRole(caller, info.Admin, "admin"); err != nil {
			return err
		}
		if err := c.requirePhase(Created); err != nil {
			return err
		}
		if err := c.deps.Assets.TransferFrom(info.Token, c.addr, info.Admin, c.addr, info.TotalAllocation); err != nil {
			return reverts.Externalf("allocation transfer: %v", err)
		}
		if err := c.bindingEpoch.Set(epoch.Index(c.now())); err != nil {
			return err
		}
		return c.setPhase(Open)
	})
	if err != nil {
		logger.Info("activate failed", "campaign", c.addr, "error", err)
		return err
	}

	logger.Info("activated", "campaign", c.addr)
	return nil
}

// DepositPosition takes custody of position id from its owner and credits its
// voting power to the owner.
func (c *Campaign) DepositPosition(caller kickoff.Address, id *big.Int) error {
	logger.Debug("depositing position", "campaign", c.addr, "caller", caller, "id", id)

	var weight *big.Int
	err := c.guarded("deposit", func(info *Info) error {
		if err := c.requirePhase(Open); err != nil {
			return err
		}
		owner, err := c.deps.Registry.OwnerOf(id)
		if err != nil {
			return reverts.Externalf("owner lookup: %v", err)
		}
		if owner != caller {
			return errNotOwner
		}
		lastVoted, err := c.deps.Voter.LastVoted(id)
		if err != nil {
			return reverts.Externalf("last vote lookup: %v", err)
		}
		if lastVoted != 0 && lastVoted >= epoch.Start(c.now()) {
			return errAlreadyVoted
		}
		weight, err = c.deps.Registry.VotingPower(id)
		if err != nil {
			return reverts.Externalf("voting power lookup: %v", err)
		}
		if weight.Sign() == 0 || weight.Cmp(info.MinVotingPower) < 0 {
			return errBelowMinimum
		}
		if pos, err := c.ledger.Position(id); err != nil {
			return err
		} else if pos != nil {
			return errDuplicate
		}

		if err := c.deps.Registry.TransferFrom(c.addr, caller, c.addr, id); err != nil {
			return reverts.Externalf("position custody transfer: %v", err)
		}
		return c.ledger.Record(id, caller, weight)
	})
	if err != nil {
		logger.Info("deposit failed", "campaign", c.addr, "id", id, "error", err)
		return err
	}

	metricDeposits().Add(1)
	logger.Info("deposited position", "campaign", c.addr, "id", id, "owner", caller, "weight", weight)
	return nil
}
