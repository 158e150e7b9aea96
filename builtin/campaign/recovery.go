// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package campaign

import (
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/cursor"
	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

var errRecoveryRunning = reverts.Conflict("recovery batch in progress")

// Emergency recovery works in every phase and never touches the phase or the
// voting power totals.

// recoverAt returns the i-th deposited position unless it is already back.
func (c *Campaign) recoverAt(returned *int) func(i uint64) error {
	return func(i uint64) error {
		id, err := c.ledger.IDAt(i)
		if err != nil {
			return err
		}
		ok, err := c.recoverOne(id)
		if ok {
			*returned++
		}
		return err
	}
}

func (c *Campaign) recoverOne(id *big.Int) (bool, error) {
	pos, err := c.ledger.Position(id)
	if err != nil {
		return false, err
	}
	if pos == nil {
		return false, errUnknownPosition
	}
	if pos.Returned {
		return false, nil
	}
	if _, err := c.returnPosition(id); err != nil {
		return false, err
	}
	return true, nil
}

// RecoverPosition force-returns one position. It reports false when the
// position was already returned.
func (c *Campaign) RecoverPosition(caller kickoff.Address, id *big.Int) (bool, error) {
	logger.Debug("recovering position", "campaign", c.addr, "id", id)

	var returned bool
	err := c.guarded("recover", func(info *Info) error {
		if err := c.requireRole(caller, info.Recovery, "recovery actor"); err != nil {
			return err
		}
		var err error
		returned, err = c.recoverOne(id)
		return err
	})
	if err != nil {
		logger.Info("recover position failed", "campaign", c.addr, "id", id, "error", err)
		return false, err
	}

	logger.Info("recovered position", "campaign", c.addr, "id", id, "returned", returned)
	return returned, nil
}

// RecoverBatch force-returns the next slice of positions, starting a new run
// when none is in progress.
func (c *Campaign) RecoverBatch(caller kickoff.Address, budget uint64) (*BatchResult, error) {
	logger.Debug("recovering batch", "campaign", c.addr, "budget", budget)

	var (
		res      *BatchResult
		returned int
	)
	err := c.guarded("recover-batch", func(info *Info) error {
		if err := c.requireRole(caller, info.Recovery, "recovery actor"); err != nil {
			return err
		}
		if err := cursor.CheckBudget(budget); err != nil {
			return err
		}
		running, err := c.recovery.InProgress()
		if err != nil {
			return err
		}
		if !running {
			count, err := c.ledger.Count()
			if err != nil {
				return err
			}
			if err := c.recovery.Begin(count); err != nil {
				return err
			}
		}
		upTo, done, err := c.recovery.Advance(budget, c.recoverAt(&returned))
		if err != nil {
			return err
		}
		res = &BatchResult{ProcessedUpTo: upTo, Done: done}
		return nil
	})
	if err != nil {
		logger.Info("recover batch failed", "campaign", c.addr, "error", err)
		return nil, err
	}

	metricBatchItems().Observe(int64(returned))
	logger.Info("recovered batch", "campaign", c.addr, "returned", returned, "processed", res.ProcessedUpTo, "done", res.Done)
	return res, nil
}

// RecoverAll force-returns every position still held in one call.
func (c *Campaign) RecoverAll(caller kickoff.Address) (int, error) {
	logger.Debug("recovering all", "campaign", c.addr)

	var returned int
	err := c.guarded("recover-all", func(info *Info) error {
		if err := c.requireRole(caller, info.Recovery, "recovery actor"); err != nil {
			return err
		}
		if running, err := c.recovery.InProgress(); err != nil {
			return err
		} else if running {
			return errRecoveryRunning
		}
		count, err := c.ledger.Count()
		if err != nil {
			return err
		}
		recoverAt := c.recoverAt(&returned)
		for i := uint64(0); i < count; i++ {
			if err := recoverAt(i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Info("recover all failed", "campaign", c.addr, "error", err)
		return 0, err
	}

	logger.Info("recovered all", "campaign", c.addr, "returned", returned)
	return returned, nil
}
