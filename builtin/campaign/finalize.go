// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package campaign

import (
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/conversion"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/cursor"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/discovery"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/epoch"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/liquidity"
	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

var (
	errEpochNotElapsed = reverts.Conflict("binding epoch has not elapsed")
	errClaimRunning    = reverts.Conflict("claim batch in progress")
	errNoClaimRun      = reverts.Conflict("no claim batch in progress")
	errNoStepPending   = reverts.Conflict("no finalize step pending")
)

// checkSettleable guards the move from Committed to Settling.
func (c *Campaign) checkSettleable(info *Info, caller kickoff.Address) error {
	if err := c.requireRole(caller, info.Admin, "admin"); err != nil {
		return err
	}
	if err := c.requirePhase(Committed); err != nil {
		return err
	}
	if running, err := c.votes.InProgress(); err != nil {
		return err
	} else if running {
		return errVoteRunning
	}
	bound, err := c.bindingEpoch.Get()
	if err != nil {
		return err
	}
	if !epoch.Elapsed(bound, c.now()) {
		return errEpochNotElapsed
	}
	return nil
}

// beginSettlement enters Settling and caches the reward assets to collect.
func (c *Campaign) beginSettlement(info *Info) ([]kickoff.Address, error) {
	if err := c.setPhase(Settling); err != nil {
		return nil, err
	}
	sources, err := c.rewardSources()
	if err != nil {
		return nil, err
	}
	active, err := c.activePositions()
	if err != nil {
		return nil, err
	}
	assets := withoutAsset(discovery.Discover(sources, active), info.Token)
	if err := c.rewardAssets.Set(assets); err != nil {
		return nil, err
	}
	if err := c.finalizeStep.Set(StepClaim); err != nil {
		return nil, err
	}
	logger.Debug("discovered rewards", "campaign", c.addr, "assets", len(assets), "positions", len(active))
	return assets, nil
}

func withoutAsset(assets []kickoff.Address, drop kickoff.Address) []kickoff.Address {
	kept := assets[:0]
	for _, a := range assets {
		if a != drop {
			kept = append(kept, a)
		}
	}
	return kept
}

// claimAt claims the rewards of the i-th deposited position best-effort.
func (c *Campaign) claimAt(sources []discovery.Source, assets []kickoff.Address, report *reverts.Report) func(i uint64) error {
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
		discovery.Claim(c.state, sources, c.addr, id, assets, report)
		return nil
	}
}

func (c *Campaign) advanceClaims(budget uint64, report *reverts.Report) (*BatchResult, error) {
	sources, err := c.rewardSources()
	if err != nil {
		return nil, err
	}
	assets, err := c.rewardAssets.Get()
	if err != nil {
		return nil, err
	}
	before, err := c.claims.Progress()
	if err != nil {
		return nil, err
	}
	upTo, done, err := c.claims.Advance(budget, c.claimAt(sources, assets, report))
	if err != nil {
		return nil, err
	}
	metricBatchItems().Observe(int64(upTo - before.Index))
	if done {
		if err := c.finalizeStep.Set(StepConvert); err != nil {
			return nil, err
		}
	}
	return &BatchResult{ProcessedUpTo: upTo, Done: done, Report: report}, nil
}

// runStep runs the pending sub-step after claiming and moves to the next one.
func (c *Campaign) runStep(info *Info, report *reverts.Report) (Step, error) {
	step, err := c.finalizeStep.Get()
	if err != nil {
		return 0, err
	}
	switch step {
	case StepConvert:
		err = c.convert(info, report)
	case StepProvision:
		err = c.provision(info)
	case StepLock:
		err = c.lock(info)
	default:
		return step, errNoStepPending
	}
	if err != nil {
		return step, err
	}
	logger.Debug("finalize step done", "campaign", c.addr, "step", step)
	return step, c.finalizeStep.Set(step + 1)
}

func (c *Campaign) convert(info *Info, report *reverts.Report) error {
	assets, err := c.rewardAssets.Get()
	if err != nil {
		return err
	}
	engine := conversion.New(c.state, c.deps.Assets, c.deps.Swap, c.addr, info.Settlement, info.Token, info.SwapSlippageBps)
	collected, err := engine.Convert(assets, report)
	if err != nil {
		return err
	}
	c.settlementCollected.Set(collected)
	return nil
}

func (c *Campaign) provision(info *Info) error {
	collected, err := c.settlementCollected.Get()
	if err != nil {
		return err
	}
	pos, err := liquidity.Provision(
		c.deps.Assets, c.deps.Liquidity,
		c.addr, info.Token, info.Settlement,
		info.LiquidityAllocation, collected,
		info.LiquiditySlippageBps,
	)
	if err != nil {
		return err
	}
	if pos == nil {
		logger.Info("no settlement collected, liquidity allocation stays in campaign", "campaign", c.addr)
		return nil
	}
	c.liquidityAmount.Set(pos.Liquidity)
	c.liquidityPool.Set(pos.Pool)
	return nil
}

func (c *Campaign) lock(info *Info) error {
	amount, err := c.liquidityAmount.Get()
	if err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return nil
	}
	pool, err := c.liquidityPool.Get()
	if err != nil {
		return err
	}
	vault := c.deps.Vault.Address()
	if err := c.deps.Assets.Approve(pool, c.addr, vault, amount); err != nil {
		return reverts.Externalf("approve vault: %v", err)
	}
	if err := c.deps.Vault.Lock(c.addr, c.addr, pool, pool, info.Treasury, info.Beneficiary, amount); err != nil {
		return reverts.Externalf("vault lock: %v", err)
	}
	return nil
}

// complete runs every remaining sub-step and moves to Complete.
func (c *Campaign) complete(info *Info, report *reverts.Report) error {
	for {
		step, err := c.finalizeStep.Get()
		if err != nil {
			return err
		}
		if step == StepDone {
			break
		}
		if _, err := c.runStep(info, report); err != nil {
			return err
		}
	}
	return c.setPhase(Complete)
}

func (c *Campaign) noteSkipped(step string, report *reverts.Report) {
	if report == nil || len(report.Skipped) == 0 {
		return
	}
	metricSkipped().AddWithLabel(int64(len(report.Skipped)), map[string]string{"step": step})
	for _, s := range report.Skipped {
		logger.Debug("skipped", "campaign", c.addr, "step", step, "item", s.Item, "error", s.Err)
	}
}

// Finalize settles the campaign in one call: it claims every position's
// rewards, converts them, provisions liquidity, locks it in the vault and
// completes the campaign.
func (c *Campaign) Finalize(caller kickoff.Address) (*reverts.Report, error) {
	logger.Debug("finalizing", "campaign", c.addr)

	report := &reverts.Report{}
	err := c.guarded("finalize", func(info *Info) error {
		if err := c.checkSettleable(info, caller); err != nil {
			return err
		}
		if running, err := c.claims.InProgress(); err != nil {
			return err
		} else if running {
			return errClaimRunning
		}
		assets, err := c.beginSettlement(info)
		if err != nil {
			return err
		}
		sources, err := c.rewardSources()
		if err != nil {
			return err
		}
		count, err := c.ledger.Count()
		if err != nil {
			return err
		}
		claim := c.claimAt(sources, assets, report)
		for i := uint64(0); i < count; i++ {
			if err := claim(i); err != nil {
				return err
			}
		}
		if err := c.finalizeStep.Set(StepConvert); err != nil {
			return err
		}
		return c.complete(info, report)
	})
	if err != nil {
		logger.Info("finalize failed", "campaign", c.addr, "error", err)
		return nil, err
	}

	c.noteSkipped("finalize", report)
	logger.Info("finalized", "campaign", c.addr, "skipped", len(report.Skipped))
	return report, nil
}

// StartClaimBatch enters Settling, discovers the reward assets and claims the
// first slice of positions.
func (c *Campaign) StartClaimBatch(caller kickoff.Address, budget uint64) (*BatchResult, error) {
	logger.Debug("starting claim batch", "campaign", c.addr, "budget", budget)

	var res *BatchResult
	err := c.guarded("claim-batch", func(info *Info) error {
		if err := c.checkSettleable(info, caller); err != nil {
			return err
		}
		if err := cursor.CheckBudget(budget); err != nil {
			return err
		}
		if _, err := c.beginSettlement(info); err != nil {
			return err
		}
		count, err := c.ledger.Count()
		if err != nil {
			return err
		}
		if err := c.claims.Begin(count); err != nil {
			return err
		}
		res, err = c.advanceClaims(budget, &reverts.Report{})
		return err
	})
	if err != nil {
		logger.Info("claim batch failed", "campaign", c.addr, "error", err)
		return nil, err
	}

	c.noteSkipped("claim", res.Report)
	logger.Info("claim batch started", "campaign", c.addr, "processed", res.ProcessedUpTo, "done", res.Done)
	return res, nil
}

// ContinueClaimBatch claims the next slice of an in-progress claim run.
func (c *Campaign) ContinueClaimBatch(caller kickoff.Address, budget uint64) (*BatchResult, error) {
	logger.Debug("continuing claim batch", "campaign", c.addr, "budget", budget)

	var res *BatchResult
	err := c.guarded("claim-batch", func(info *Info) error {
		if err := c.requireRole(caller, info.Admin, "admin"); err != nil {
			return err
		}
		if err := c.requirePhase(Settling); err != nil {
			return err
		}
		if running, err := c.claims.InProgress(); err != nil {
			return err
		} else if !running {
			return errNoClaimRun
		}
		var err error
		res, err = c.advanceClaims(budget, &reverts.Report{})
		return err
	})
	if err != nil {
		logger.Info("continue claim batch failed", "campaign", c.addr, "error", err)
		return nil, err
	}

	c.noteSkipped("claim", res.Report)
	logger.Info("claim batch continued", "campaign", c.addr, "processed", res.ProcessedUpTo, "done", res.Done)
	return res, nil
}

// FinalizeStep runs exactly one of the convert, provision or lock sub-steps.
// It returns the step it ran.
func (c *Campaign) FinalizeStep(caller kickoff.Address) (Step, *reverts.Report, error) {
	logger.Debug("running finalize step", "campaign", c.addr)

	var (
		ran    Step
		report = &reverts.Report{}
	)
	err := c.guarded("finalize-step", func(info *Info) error {
		if err := c.requireSettlingIdle(info, caller); err != nil {
			return err
		}
		var err error
		ran, err = c.runStep(info, report)
		return err
	})
	if err != nil {
		logger.Info("finalize step failed", "campaign", c.addr, "error", err)
		return ran, nil, err
	}

	c.noteSkipped(ran.String(), report)
	logger.Info("finalize step done", "campaign", c.addr, "step", ran)
	return ran, report, nil
}

// CompleteFinalize runs the remaining sub-steps and completes the campaign.
func (c *Campaign) CompleteFinalize(caller kickoff.Address) (*reverts.Report, error) {
	logger.Debug("completing finalize", "campaign", c.addr)

	report := &reverts.Report{}
	err := c.guarded("complete-finalize", func(info *Info) error {
		if err := c.requireSettlingIdle(info, caller); err != nil {
			return err
		}
		return c.complete(info, report)
	})
	if err != nil {
		logger.Info("complete finalize failed", "campaign", c.addr, "error", err)
		return nil, err
	}

	c.noteSkipped("complete", report)
	logger.Info("completed", "campaign", c.addr)
	return report, nil
}

func (c *Campaign) requireSettlingIdle(info *Info, caller kickoff.Address) error {
	if err := c.requireRole(caller, info.Admin, "admin"); err != nil {
		return err
	}
	if err := c.requirePhase(Settling); err != nil {
		return err
	}
	if running, err := c.claims.InProgress(); err != nil {
		return err
	} else if running {
		return errClaimRunning
	}
	return nil
}
