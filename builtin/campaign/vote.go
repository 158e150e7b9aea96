// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package campaign

import (
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/cursor"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/epoch"
	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

// FullWeight directs all of a position's power at one target.
var FullWeight = big.NewInt(kickoff.BasisPoints)

var (
	errDeadTarget    = reverts.Invalid("target is not alive")
	errZeroTarget    = reverts.Invalid("zero target")
	errTargetChanged = reverts.Conflict("target already selected")
	errVoteRunning   = reverts.Conflict("vote batch in progress")
	errNoVoteRun     = reverts.Conflict("no vote batch in progress")
)

// selectTarget validates target and caches it. The cached target never changes.
func (c *Campaign) selectTarget(target kickoff.Address) error {
	if target.IsZero() {
		return errZeroTarget
	}
	cached, err := c.target.Get()
	if err != nil {
		return err
	}
	if !cached.IsZero() {
		if cached != target {
			return errTargetChanged
		}
		return nil
	}
	alive, err := c.deps.Voter.IsAlive(target)
	if err != nil {
		return reverts.Externalf("target lookup: %v", err)
	}
	if !alive {
		return errDeadTarget
	}
	c.target.Set(target)
	return nil
}

// rebind moves the binding epoch to the epoch votes are cast in, so reward
// finality is measured from the epoch that earns the rewards.
func (c *Campaign) rebind() error {
	return c.bindingEpoch.Set(epoch.Index(c.now()))
}

// voteAt votes the i-th deposited position, skipping positions no longer held.
func (c *Campaign) voteAt(target kickoff.Address) func(i uint64) error {
	return func(i uint64) error {
		id, err := c.ledger.IDAt(i)
		if err != nil {
			return err
		}
		pos, err := c.ledger.Position(id)
		if err != nil {
			return err
		}
		if pos.Returned {
			return nil
		}
		if err := c.deps.Voter.Vote(c.addr, id, []kickoff.Address{target}, []*big.Int{FullWeight}); err != nil {
			return reverts.Externalf("vote position %v: %v", id, err)
		}
		return nil
	}
}

// CastVote votes every position for target in one call and commits the campaign.
func (c *Campaign) CastVote(caller, target kickoff.Address) error {
	logger.Debug("casting vote", "campaign", c.addr, "target", target)

	var count uint64
	err := c.guarded("vote", func(info *Info) error {
		if err := c.requireRole(caller, info.Admin, "admin"); err != nil {
			return err
		}
		if running, err := c.votes.InProgress(); err != nil {
			return err
		} else if running {
			return errVoteRunning
		}
		if err := c.requirePhase(Open); err != nil {
			return err
		}
		if err := c.selectTarget(target); err != nil {
			return err
		}
		var err error
		if count, err = c.ledger.Count(); err != nil {
			return err
		}
		vote := c.voteAt(target)
		for i := uint64(0); i < count; i++ {
			if err := vote(i); err != nil {
				return err
			}
		}
		if err := c.rebind(); err != nil {
			return err
		}
		return c.setPhase(Committed)
	})
	if err != nil {
		logger.Info("vote failed", "campaign", c.addr, "error", err)
		return err
	}

	logger.Info("voted", "campaign", c.addr, "target", target, "positions", count)
	return nil
}

// CastVoteBatch starts a resumable vote run. The campaign is committed on this
// first call so no deposits arrive while the run is in progress.
func (c *Campaign) CastVoteBatch(caller, target kickoff.Address, budget uint64) (*BatchResult, error) {
	logger.Debug("starting vote batch", "campaign", c.addr, "target", target, "budget", budget)

	var res *BatchResult
	err := c.guarded("vote-batch", func(info *Info) error {
		if err := c.requireRole(caller, info.Admin, "admin"); err != nil {
			return err
		}
		if err := cursor.CheckBudget(budget); err != nil {
			return err
		}
		if err := c.requirePhase(Open); err != nil {
			return err
		}
		if err := c.selectTarget(target); err != nil {
			return err
		}
		if err := c.setPhase(Committed); err != nil {
			return err
		}
		count, err := c.ledger.Count()
		if err != nil {
			return err
		}
		if err := c.votes.Begin(count); err != nil {
			return err
		}
		res, err = c.advanceVotes(target, budget)
		return err
	})
	if err != nil {
		logger.Info("vote batch failed", "campaign", c.addr, "error", err)
		return nil, err
	}

	logger.Info("vote batch started", "campaign", c.addr, "processed", res.ProcessedUpTo, "done", res.Done)
	return res, nil
}

// ContinueVoteBatch votes the next slice of an in-progress vote run.
func (c *Campaign) ContinueVoteBatch(caller kickoff.Address, budget uint64) (*BatchResult, error) {
	logger.Debug("continuing vote batch", "campaign", c.addr, "budget", budget)

	var res *BatchResult
	err := c.guarded("vote-batch", func(info *Info) error {
		if err := c.requireRole(caller, info.Admin, "admin"); err != nil {
			return err
		}
		if err := c.requirePhase(Committed); err != nil {
			return err
		}
		if running, err := c.votes.InProgress(); err != nil {
			return err
		} else if !running {
			return errNoVoteRun
		}
		target, err := c.target.Get()
		if err != nil {
			return err
		}
		res, err = c.advanceVotes(target, budget)
		return err
	})
	if err != nil {
		logger.Info("continue vote batch failed", "campaign", c.addr, "error", err)
		return nil, err
	}

	logger.Info("vote batch continued", "campaign", c.addr, "processed", res.ProcessedUpTo, "done", res.Done)
	return res, nil
}

func (c *Campaign) advanceVotes(target kickoff.Address, budget uint64) (*BatchResult, error) {
	before, err := c.votes.Progress()
	if err != nil {
		return nil, err
	}
	upTo, done, err := c.votes.Advance(budget, c.voteAt(target))
	if err != nil {
		return nil, err
	}
	metricBatchItems().Observe(int64(upTo - before.Index))
	if err := c.rebind(); err != nil {
		return nil, err
	}
	return &BatchResult{ProcessedUpTo: upTo, Done: done}, nil
}
