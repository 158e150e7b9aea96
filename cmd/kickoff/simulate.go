// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/epoch"
	"github.com/kickoffbase/kickoff-contracts/builtin/vault"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/log"
	"github.com/kickoffbase/kickoff-contracts/lvldb"
	"github.com/kickoffbase/kickoff-contracts/state"
)

var logger = log.WithContext("pkg", "simulate")

type claim struct {
	owner  string
	amount *big.Int
}

// outcome is what a simulated campaign ended with.
type outcome struct {
	name     string
	snapshot *campaign.Snapshot
	claimed  []claim
	skipped  int
	yield    []vault.Payout
}

func simulateAction(ctx *cli.Context) error {
	path := ctx.String(scenarioFlag.Name)
	if path == "" {
		return errors.New("-scenario is required")
	}
	sc, err := loadScenario(path)
	if err != nil {
		return err
	}
	dataDir := ctx.GlobalString(dataDirFlag.Name)
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return errors.Wrap(err, "create data dir")
	}

	closeMetrics, err := startMetrics(ctx)
	if err != nil {
		return err
	}
	defer closeMetrics()

	bars := make([]*pb.ProgressBar, len(sc.Campaigns))
	if !ctx.Bool(noProgressFlag.Name) {
		for i, plan := range sc.Campaigns {
			bars[i] = pb.New(2 * len(plan.Positions)).Prefix(plan.Name + " ").SetMaxWidth(90)
		}
		pool, err := pb.StartPool(bars...)
		if err != nil {
			return errors.Wrap(err, "start progress bars")
		}
		defer pool.Stop()
	}

	outcomes, err := simulateAll(handleExitSignal(), dataDir, sc, ctx.Int(parallelFlag.Name), bars)
	if err != nil {
		return err
	}
	for _, o := range outcomes {
		printOutcome(o)
	}
	return nil
}

// simulateAll runs every campaign of sc, up to parallel at a time, each on its
// own leveldb under dataDir. The first failure cancels the rest.
func simulateAll(ctx context.Context, dataDir string, sc *Scenario, parallel int, bars []*pb.ProgressBar) ([]*outcome, error) {
	outcomes := make([]*outcome, len(sc.Campaigns))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i := range sc.Campaigns {
		i := i
		plan := sc.Campaigns[i]
		var bar *pb.ProgressBar
		if i < len(bars) {
			bar = bars[i]
		}
		g.Go(func() error {
			o, err := simulateStored(gctx, filepath.Join(dataDir, plan.Name), plan, bar)
			if err != nil {
				return errors.Wrapf(err, "campaign %q", plan.Name)
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func simulateStored(ctx context.Context, path string, plan CampaignPlan, bar *pb.ProgressBar) (*outcome, error) {
	db, err := lvldb.New(path, lvldb.Options{CacheSize: 16, OpenFilesCacheCapacity: 16})
	if err != nil {
		return nil, err
	}
	defer db.Close()

	stater := state.NewStater(db)
	st := stater.NewState()
	o, err := simulate(ctx, st, plan, bar)
	if err != nil {
		return nil, err
	}
	stage := st.Stage()
	if err := stater.Commit(stage); err != nil {
		return nil, errors.Wrap(err, "commit state")
	}
	logger.Debug("state committed", "campaign", plan.Name, "slots", stage.Len())
	return o, nil
}

// simulate runs one campaign from creation to claimed allocations.
func simulate(ctx context.Context, st *state.State, plan CampaignPlan, bar *pb.ProgressBar) (*outcome, error) {
	w := newWorld(plan.Name, st)
	progress := func(n uint64) {
		if bar != nil {
			bar.Add64(int64(n))
		}
	}

	allocation := new(big.Int).SetUint64(plan.Allocation)
	c, err := campaign.Create(w.campaign, st, campaign.Config{
		Admin:                w.admin,
		Beneficiary:          w.beneficiary,
		Recovery:             w.recovery,
		Treasury:             w.treasury,
		Token:                w.token,
		Settlement:           w.settlement,
		TotalAllocation:      allocation,
		MinVotingPower:       new(big.Int).SetUint64(plan.MinVotingPower),
		SwapSlippageBps:      plan.SwapSlippageBps,
		LiquiditySlippageBps: plan.LiquiditySlippageBps,
	}, w.deps())
	if err != nil {
		return nil, err
	}
	if err := w.env.Ledger.Mint(w.token, w.admin, allocation); err != nil {
		return nil, err
	}
	if err := w.env.Ledger.Approve(w.token, w.admin, w.campaign, allocation); err != nil {
		return nil, err
	}
	if err := c.Activate(w.admin); err != nil {
		return nil, err
	}

	var owners []string
	seen := make(map[string]bool)
	for i, p := range plan.Positions {
		id := big.NewInt(int64(i + 1))
		owner := w.owner(p.Owner)
		if err := w.env.Registry.Mint(id, owner, new(big.Int).SetUint64(p.Power)); err != nil {
			return nil, err
		}
		if err := w.env.Registry.SetApprovalForAll(owner, w.campaign, true); err != nil {
			return nil, err
		}
		if err := c.DepositPosition(owner, id); err != nil {
			return nil, errors.Wrapf(err, "deposit position of %s", p.Owner)
		}
		if p.Rewards > 0 {
			if err := w.source.Accrue(id, w.reward, new(big.Int).SetUint64(p.Rewards)); err != nil {
				return nil, err
			}
		}
		if !seen[p.Owner] {
			seen[p.Owner] = true
			owners = append(owners, p.Owner)
		}
	}
	w.env.Router.SetRate(w.reward, plan.RewardRate.Num, plan.RewardRate.Den)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := vote(ctx, c, w, plan.BatchSize, progress); err != nil {
		return nil, errors.Wrap(err, "vote")
	}

	w.env.Clock.Advance(epoch.Week)
	skipped, err := finalize(ctx, c, w, plan.BatchSize, progress)
	if err != nil {
		return nil, errors.Wrap(err, "finalize")
	}

	o := &outcome{name: plan.Name, skipped: skipped}
	for _, name := range owners {
		amount, err := c.ClaimAllocation(w.owner(name))
		if err != nil {
			return nil, errors.Wrapf(err, "claim of %s", name)
		}
		o.claimed = append(o.claimed, claim{name, amount})
	}

	if o.snapshot, err = c.Snapshot(); err != nil {
		return nil, err
	}
	if plan.Fees > 0 && o.snapshot.LiquidityAmount.Sign() > 0 {
		pool, err := w.env.Router.Pool(o.snapshot.LiquidityPool)
		if err != nil {
			return nil, err
		}
		fees := new(big.Int).SetUint64(plan.Fees)
		if err := pool.Accrue(w.vault.Address(), fees, fees); err != nil {
			return nil, err
		}
		if o.yield, err = w.vault.ClaimYield(w.treasury, w.campaign); err != nil {
			return nil, errors.Wrap(err, "claim yield")
		}
	}
	return o, nil
}

func vote(ctx context.Context, c *campaign.Campaign, w *world, budget uint64, progress func(uint64)) error {
	if budget == 0 {
		if err := c.CastVote(w.admin, w.target); err != nil {
			return err
		}
		ids, err := c.PositionIDs()
		if err != nil {
			return err
		}
		progress(uint64(len(ids)))
		return nil
	}

	res, err := c.CastVoteBatch(w.admin, w.target, budget)
	if err != nil {
		return err
	}
	done := res.ProcessedUpTo
	progress(done)
	for !res.Done {
		if err := ctx.Err(); err != nil {
			return err
		}
		if res, err = c.ContinueVoteBatch(w.admin, budget); err != nil {
			return err
		}
		progress(res.ProcessedUpTo - done)
		done = res.ProcessedUpTo
	}
	return nil
}

// finalize settles the campaign and returns the number of skipped items.
func finalize(ctx context.Context, c *campaign.Campaign, w *world, budget uint64, progress func(uint64)) (int, error) {
	if budget == 0 {
		report, err := c.Finalize(w.admin)
		if err != nil {
			return 0, err
		}
		ids, err := c.PositionIDs()
		if err != nil {
			return 0, err
		}
		progress(uint64(len(ids)))
		return len(report.Skipped), nil
	}

	res, err := c.StartClaimBatch(w.admin, budget)
	if err != nil {
		return 0, err
	}
	skipped := len(res.Report.Skipped)
	done := res.ProcessedUpTo
	progress(done)
	for !res.Done {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if res, err = c.ContinueClaimBatch(w.admin, budget); err != nil {
			return 0, err
		}
		skipped += len(res.Report.Skipped)
		progress(res.ProcessedUpTo - done)
		done = res.ProcessedUpTo
	}
	for {
		step, err := c.FinalizeSubStep()
		if err != nil {
			return 0, err
		}
		if step == campaign.StepDone {
			break
		}
		ran, report, err := c.FinalizeStep(w.admin)
		if err != nil {
			return 0, err
		}
		logger.Debug("finalize step", "campaign", w.name, "step", ran)
		skipped += len(report.Skipped)
	}
	report, err := c.CompleteFinalize(w.admin)
	if err != nil {
		return 0, err
	}
	return skipped + len(report.Skipped), nil
}

func printOutcome(o *outcome) {
	fmt.Printf("campaign %s: %v\n", o.name, o.snapshot.Phase)
	fmt.Printf("  voting power       %v\n", o.snapshot.TotalVotingPower)
	fmt.Printf("  settlement         %v\n", o.snapshot.SettlementCollected)
	fmt.Printf("  liquidity locked   %v\n", o.snapshot.LiquidityAmount)
	fmt.Printf("  skipped items      %d\n", o.skipped)
	for _, c := range o.claimed {
		fmt.Printf("  claimed by %-8s %v\n", c.owner, c.amount)
	}
	for _, p := range o.yield {
		fmt.Printf("  yield %s          %v / %v\n", abbrev(p.Asset), p.ToA, p.ToB)
	}
}

func abbrev(addr kickoff.Address) string {
	s := addr.String()
	return s[:10]
}
