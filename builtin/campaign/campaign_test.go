// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package campaign

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/conversion"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/cursor"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/epoch"
	"github.com/kickoffbase/kickoff-contracts/builtin/guard"
	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/test/datagen"
	"github.com/kickoffbase/kickoff-contracts/test/fakes"
)

func TestCreate(t *testing.T) {
	h := newHarness(t, 1801, 1)

	sale, liq, total, err := h.campaign.Allocations()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(900), sale)
	assert.Equal(t, big.NewInt(901), liq)
	assert.Equal(t, big.NewInt(1801), total)
	assert.Equal(t, total, new(big.Int).Add(sale, liq))

	info, err := h.campaign.Info()
	require.NoError(t, err)
	assert.Equal(t, conversion.DefaultSlippageBps.Get(), info.SwapSlippageBps)

	AssertCampaign(h.campaign).Phase(Created).TotalPower(0).Positions(0).Step(StepNone).Assert(t)

	_, err = Create(h.campaign.Address(), h.env.State, h.config(1801, 1), h.deps)
	assert.Error(t, err)

	loaded, err := Load(h.campaign.Address(), h.env.State, h.deps)
	require.NoError(t, err)
	phase, err := loaded.Phase()
	require.NoError(t, err)
	assert.Equal(t, Created, phase)

	_, err = Load(datagen.RandAddress(), h.env.State, h.deps)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	h := newHarness(t, 100, 1)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero admin", func(c *Config) { c.Admin = kickoff.Address{} }},
		{"zero beneficiary", func(c *Config) { c.Beneficiary = kickoff.Address{} }},
		{"zero recovery", func(c *Config) { c.Recovery = kickoff.Address{} }},
		{"zero treasury", func(c *Config) { c.Treasury = kickoff.Address{} }},
		{"zero token", func(c *Config) { c.Token = kickoff.Address{} }},
		{"token is settlement", func(c *Config) { c.Settlement = c.Token }},
		{"zero allocation", func(c *Config) { c.TotalAllocation = new(big.Int) }},
		{"swap slippage too high", func(c *Config) { c.SwapSlippageBps = kickoff.BasisPoints + 1 }},
		{"liquidity slippage too high", func(c *Config) { c.LiquiditySlippageBps = kickoff.BasisPoints + 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := h.config(100, 1)
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())

			_, err := Create(datagen.RandAddress(), h.env.State, cfg, h.deps)
			assert.Error(t, err)
		})
	}
	cfg := h.config(100, 1)
	assert.NoError(t, cfg.Validate())
}

func TestCampaign_ProRataSettlement(t *testing.T) {
	h := newHarness(t, 1800, 1)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	NewSequence(h).
		Activate().
		Deposit(alice, 100).
		Deposit(bob, 50).
		Vote().
		Accrue(h.reward, 500).
		AdvanceEpoch().
		Finalize().
		Claim(alice, 600).
		Claim(bob, 300).
		Run(t)

	// 1000 reward units at 1/10, paired with the 900 token liquidity allocation
	AssertCampaign(h.campaign).
		Phase(Complete).
		TotalPower(150).
		Collected(100).
		Liquidity(300).
		Step(StepDone).
		Positions(2).
		Assert(t)

	_, err := h.campaign.ClaimAllocation(alice)
	assertKind(t, err, reverts.StateConflict)
	assert.Equal(t, big.NewInt(600), h.balance(t, h.token, alice))

	_, err = h.campaign.ClaimAllocation(datagen.RandAddress())
	assertKind(t, err, reverts.Validation)

	snap, err := h.campaign.Snapshot()
	require.NoError(t, err)
	rec, err := h.vault.Record(h.campaign.Address())
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), rec.TotalLiquidity)
	assert.Equal(t, snap.LiquidityPool, rec.Pool)
	assert.Equal(t, h.treasury, rec.BeneficiaryA)
	assert.Equal(t, h.beneficiary, rec.BeneficiaryB)
	assert.Equal(t, big.NewInt(300), h.balance(t, snap.LiquidityPool, h.vault.Address()))
	assert.Zero(t, h.balance(t, snap.LiquidityPool, h.campaign.Address()).Sign())

	// sale and liquidity allocations are fully spent
	assert.Zero(t, h.balance(t, h.token, h.campaign.Address()).Sign())
	assert.Zero(t, h.balance(t, h.reward, h.campaign.Address()).Sign())
	assert.Zero(t, h.balance(t, h.weth, h.campaign.Address()).Sign())
}

func TestCampaign_TokenRewardNotSold(t *testing.T) {
	h := newHarness(t, 1800, 1)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	bribe := fakes.NewRewardSource(datagen.RandAddress(), h.env.State, h.env.Ledger, h.token)
	h.env.Voter.AddTarget(h.target, h.source, bribe)
	h.env.Router.SetRate(h.token, 1, 10)

	NewSequence(h).
		Activate().
		Deposit(alice, 100).
		Deposit(bob, 50).
		Vote().
		Accrue(h.reward, 500).
		AddFunc(func(t *testing.T) {
			ids, err := h.campaign.PositionIDs()
			require.NoError(t, err)
			for _, id := range ids {
				require.NoError(t, bribe.Accrue(id, h.token, big.NewInt(40)))
			}
		}).
		AdvanceEpoch().
		Finalize().
		Claim(alice, 600).
		Claim(bob, 300).
		Run(t)

	AssertCampaign(h.campaign).Phase(Complete).Collected(100).Liquidity(300).Step(StepDone).Assert(t)

	for _, a := range h.env.Router.Attempts {
		assert.NotEqual(t, h.token, a.Asset)
	}
	assert.Zero(t, h.balance(t, h.token, h.campaign.Address()).Sign())
	assert.Equal(t, big.NewInt(80), h.balance(t, h.token, bribe.Address()))
}

func TestFinalize_LiquidityFailureIsExternal(t *testing.T) {
	h := newHarness(t, 1800, 1)

	NewSequence(h).
		Activate().
		Deposit(datagen.RandAddress(), 100).
		Vote().
		Accrue(h.reward, 500).
		AdvanceEpoch().
		Run(t)

	h.env.Router.FailLiquidity = true
	_, err := h.campaign.Finalize(h.admin)
	assertKind(t, err, reverts.External)
	AssertCampaign(h.campaign).Phase(Committed).Step(StepNone).Assert(t)

	h.env.Router.FailLiquidity = false
	_, err = h.campaign.Finalize(h.admin)
	require.NoError(t, err)
	AssertCampaign(h.campaign).Phase(Complete).Collected(50).Assert(t)
}

func TestCampaign_NoDeposits(t *testing.T) {
	h := newHarness(t, 1800, 1)

	NewSequence(h).
		Activate().
		Vote().
		AdvanceEpoch().
		Finalize().
		Run(t)

	AssertCampaign(h.campaign).Phase(Complete).TotalPower(0).Collected(0).Liquidity(0).Assert(t)

	_, err := h.campaign.ClaimAllocation(datagen.RandAddress())
	assertKind(t, err, reverts.Validation)
	assert.ErrorIs(t, err, errNoVotingPower)

	claimable, err := h.campaign.Claimable(datagen.RandAddress())
	require.NoError(t, err)
	assert.Zero(t, claimable.Sign())

	// both allocations stay with the campaign
	assert.Equal(t, big.NewInt(1800), h.balance(t, h.token, h.campaign.Address()))

	_, err = h.vault.Record(h.campaign.Address())
	assert.Error(t, err)
}

func TestCampaign_NoRewards(t *testing.T) {
	h := newHarness(t, 1800, 1)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	NewSequence(h).
		Activate().
		Deposit(alice, 1).
		Deposit(bob, 2).
		Vote().
		AdvanceEpoch().
		Finalize().
		Claim(alice, 300).
		Claim(bob, 600).
		Run(t)

	AssertCampaign(h.campaign).Phase(Complete).Collected(0).Liquidity(0).Assert(t)
	// liquidity allocation is stranded
	assert.Equal(t, big.NewInt(900), h.balance(t, h.token, h.campaign.Address()))
}

func TestCampaign_PhaseMonotonic(t *testing.T) {
	h := newHarness(t, 1000, 1)
	alice := datagen.RandAddress()

	var phases []Phase
	record := func(t *testing.T) {
		p, err := h.campaign.Phase()
		require.NoError(t, err)
		phases = append(phases, p)
	}
	attempt := func(fn func() error) TestFunc {
		return func(t *testing.T) {
			_ = fn()
			record(t)
		}
	}

	NewSequence(h).
		AddFunc(record).
		AddFunc(attempt(func() error { _, err := h.campaign.Finalize(h.admin); return err })).
		Activate().AddFunc(record).
		AddFunc(attempt(func() error { return h.campaign.Activate(h.admin) })).
		Deposit(alice, 10).AddFunc(record).
		Vote().AddFunc(record).
		AddFunc(attempt(func() error { return h.campaign.DepositPosition(alice, h.mint(t, alice, 5)) })).
		AddFunc(attempt(func() error { _, err := h.campaign.ClaimAllocation(alice); return err })).
		AdvanceEpoch().
		AddFunc(attempt(func() error { _, err := h.campaign.RecoverAll(h.recovery); return err })).
		Finalize().AddFunc(record).
		AddFunc(attempt(func() error { return h.campaign.CastVote(h.admin, h.target) })).
		Run(t)

	for i := 1; i < len(phases); i++ {
		assert.GreaterOrEqual(t, phases[i], phases[i-1], "phase went backwards at step %d", i)
	}
	assert.Equal(t, Complete, phases[len(phases)-1])
}

func TestActivate(t *testing.T) {
	h := newHarness(t, 1000, 1)

	assertKind(t, h.campaign.Activate(datagen.RandAddress()), reverts.Authorization)

	// no allowance for the allocation yet
	require.NoError(t, h.env.Ledger.Approve(h.token, h.admin, h.campaign.Address(), big.NewInt(999)))
	assertKind(t, h.campaign.Activate(h.admin), reverts.External)
	AssertCampaign(h.campaign).Phase(Created).Assert(t)

	require.NoError(t, h.env.Ledger.Approve(h.token, h.admin, h.campaign.Address(), big.NewInt(1000)))
	require.NoError(t, h.campaign.Activate(h.admin))
	AssertCampaign(h.campaign).Phase(Open).Assert(t)
	assert.Equal(t, big.NewInt(1000), h.balance(t, h.token, h.campaign.Address()))

	snap, err := h.campaign.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, epoch.Index(startTime), snap.BindingEpoch)

	assertKind(t, h.campaign.Activate(h.admin), reverts.Phase)
}

func TestDepositPosition(t *testing.T) {
	h := newHarness(t, 1000, 10)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	early := h.mint(t, alice, 10)
	assertKind(t, h.campaign.DepositPosition(alice, early), reverts.Phase)
	require.NoError(t, h.campaign.Activate(h.admin))

	id := h.mint(t, alice, 40)
	assertKind(t, h.campaign.DepositPosition(bob, id), reverts.Authorization)

	require.NoError(t, h.campaign.DepositPosition(alice, id))
	assert.Equal(t, h.campaign.Address(), h.ownerOf(t, id))
	pos, err := h.campaign.Position(id)
	require.NoError(t, err)
	assert.Equal(t, alice, pos.Owner)
	assert.Equal(t, big.NewInt(40), pos.Weight)
	assert.False(t, pos.Returned)

	voted := h.mint(t, bob, 20)
	require.NoError(t, h.env.Voter.SetLastVoted(voted, h.env.Clock.Now()-1))
	err = h.campaign.DepositPosition(bob, voted)
	assertKind(t, err, reverts.Validation)
	assert.ErrorIs(t, err, errAlreadyVoted)

	votedBefore := h.mint(t, bob, 20)
	require.NoError(t, h.env.Voter.SetLastVoted(votedBefore, epoch.Start(startTime)-1))
	require.NoError(t, h.campaign.DepositPosition(bob, votedBefore))

	small := h.mint(t, bob, 9)
	assert.ErrorIs(t, h.campaign.DepositPosition(bob, small), errBelowMinimum)
	empty := h.mint(t, bob, 0)
	assert.ErrorIs(t, h.campaign.DepositPosition(bob, empty), errBelowMinimum)

	// recovered positions cannot be deposited twice
	ok, err := h.campaign.RecoverPosition(h.recovery, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, alice, h.ownerOf(t, id))
	assert.ErrorIs(t, h.campaign.DepositPosition(alice, id), errDuplicate)

	AssertCampaign(h.campaign).TotalPower(60).Positions(2).Phase(Open).Assert(t)
	p, err := h.campaign.Participant(bob)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(20), p.VotingPower)
	assert.Equal(t, bob, h.ownerOf(t, small))
}

func TestCastVote(t *testing.T) {
	h := newHarness(t, 1000, 1)
	alice := datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 10).Deposit(alice, 20).Run(t)

	assertKind(t, h.campaign.CastVote(alice, h.target), reverts.Authorization)
	assert.ErrorIs(t, h.campaign.CastVote(h.admin, kickoff.Address{}), errZeroTarget)

	dead := datagen.RandAddress()
	h.env.Voter.AddTarget(dead)
	h.env.Voter.Kill(dead)
	assert.ErrorIs(t, h.campaign.CastVote(h.admin, dead), errDeadTarget)

	h.env.Clock.Advance(epoch.Week)
	require.NoError(t, h.campaign.CastVote(h.admin, h.target))

	ids, err := h.campaign.PositionIDs()
	require.NoError(t, err)
	for _, id := range ids {
		ballot, err := h.env.Voter.Ballot(id)
		require.NoError(t, err)
		require.NotNil(t, ballot)
		assert.Equal(t, []kickoff.Address{h.target}, ballot.Targets)
		assert.Equal(t, []*big.Int{FullWeight}, ballot.Weights)
	}

	snap, err := h.campaign.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, Committed, snap.Phase)
	assert.Equal(t, h.target, snap.Target)
	// the binding epoch follows the vote
	assert.Equal(t, epoch.Index(startTime)+1, snap.BindingEpoch)

	assertKind(t, h.campaign.CastVote(h.admin, h.target), reverts.Phase)
}

func TestCastVote_RevertsAll(t *testing.T) {
	h := newHarness(t, 1000, 1)
	alice := datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 10).Deposit(alice, 20).Deposit(alice, 30).Run(t)

	calls := 0
	h.env.Voter.OnVote = func(*big.Int) {
		calls++
		if calls == 3 {
			h.env.Voter.Reject = true
		}
	}
	assertKind(t, h.campaign.CastVote(h.admin, h.target), reverts.External)

	ids, err := h.campaign.PositionIDs()
	require.NoError(t, err)
	for _, id := range ids {
		ballot, err := h.env.Voter.Ballot(id)
		require.NoError(t, err)
		assert.Nil(t, ballot)
	}
	snap, err := h.campaign.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, Open, snap.Phase)
	assert.True(t, snap.Target.IsZero())

	h.env.Voter.OnVote = nil
	h.env.Voter.Reject = false
	require.NoError(t, h.campaign.CastVote(h.admin, h.target))
	AssertCampaign(h.campaign).Phase(Committed).Assert(t)
}

func TestCastVote_Reentrancy(t *testing.T) {
	h := newHarness(t, 1000, 1)
	alice := datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 10).Run(t)
	pending := h.mint(t, alice, 10)

	var reentered error
	h.env.Voter.OnVote = func(*big.Int) {
		reentered = h.campaign.DepositPosition(alice, pending)
	}
	require.NoError(t, h.campaign.CastVote(h.admin, h.target))

	assert.True(t, guard.IsBusy(reentered))
	assert.Equal(t, alice, h.ownerOf(t, pending))
	AssertCampaign(h.campaign).Positions(1).TotalPower(10).Assert(t)
}

func TestCastVote_ReentrancyThroughSecondHandle(t *testing.T) {
	h := newHarness(t, 1000, 1)
	alice := datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 10).Run(t)
	pending := h.mint(t, alice, 10)

	other, err := Load(h.campaign.Address(), h.env.State, h.deps)
	require.NoError(t, err)

	var reentered error
	h.env.Voter.OnVote = func(*big.Int) {
		reentered = other.DepositPosition(alice, pending)
	}
	require.NoError(t, h.campaign.CastVote(h.admin, h.target))

	assert.True(t, guard.IsBusy(reentered))
	assert.Equal(t, alice, h.ownerOf(t, pending))
	AssertCampaign(other).Positions(1).TotalPower(10).Assert(t)
}

func TestFinalize_Gating(t *testing.T) {
	h := newHarness(t, 1000, 1)
	alice := datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 10).Run(t)

	_, err := h.campaign.Finalize(h.admin)
	assertKind(t, err, reverts.Phase)

	require.NoError(t, h.campaign.CastVote(h.admin, h.target))

	_, err = h.campaign.Finalize(alice)
	assertKind(t, err, reverts.Authorization)

	_, err = h.campaign.Finalize(h.admin)
	assert.ErrorIs(t, err, errEpochNotElapsed)

	h.env.Clock.Set(epoch.StartOf(epoch.Index(startTime)+1) - 1)
	_, err = h.campaign.Finalize(h.admin)
	assert.ErrorIs(t, err, errEpochNotElapsed)

	h.env.Clock.Set(epoch.StartOf(epoch.Index(startTime) + 1))
	_, err = h.campaign.Finalize(h.admin)
	require.NoError(t, err)

	_, err = h.campaign.Finalize(h.admin)
	assertKind(t, err, reverts.Phase)
}

func TestFinalize_BestEffortClaims(t *testing.T) {
	h := newHarness(t, 1800, 1)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 100).Deposit(bob, 50).Vote().Accrue(h.reward, 500).AdvanceEpoch().Run(t)

	ids, err := h.campaign.PositionIDs()
	require.NoError(t, err)
	h.source.FailFor(ids[0])

	report, err := h.campaign.Finalize(h.admin)
	require.NoError(t, err)
	// two claims and one swap
	assert.Equal(t, 3, report.Attempted)
	require.Len(t, report.Skipped, 1)
	assert.ErrorIs(t, report.Skipped[0].Err, fakes.ErrClaimFailed)

	// the failed claim paid nothing
	earned, err := h.source.Earned(ids[0], h.reward)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), earned)

	// 500 reward units at 1/10 paired with 900 tokens
	AssertCampaign(h.campaign).Phase(Complete).Collected(50).Liquidity(212).Assert(t)
}

func TestFinalize_ConversionAbandoned(t *testing.T) {
	h := newHarness(t, 1800, 1)
	alice := datagen.RandAddress()

	h.env.Router.Fail(h.reward, conversion.Volatile)
	h.env.Router.Fail(h.reward, conversion.Stable)

	NewSequence(h).Activate().Deposit(alice, 100).Vote().Accrue(h.reward, 1000).AdvanceEpoch().Run(t)

	report, err := h.campaign.Finalize(h.admin)
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.Len(t, h.env.Router.Attempts, 2)

	AssertCampaign(h.campaign).Phase(Complete).Collected(0).Liquidity(0).Assert(t)
	assert.Equal(t, big.NewInt(1000), h.balance(t, h.reward, h.campaign.Address()))

	// the unconverted reward can be rescued, the campaign token cannot
	amount := big.NewInt(1000)
	assertKind(t, h.campaign.RescueForeignAsset(alice, h.reward, h.treasury, amount), reverts.Authorization)
	assert.ErrorIs(t, h.campaign.RescueForeignAsset(h.admin, h.token, h.treasury, amount), errCampaignToken)
	assert.ErrorIs(t, h.campaign.RescueForeignAsset(h.admin, h.reward, kickoff.Address{}, amount), errRecipientRequired)
	assert.ErrorIs(t, h.campaign.RescueForeignAsset(h.admin, h.reward, h.treasury, new(big.Int)), errZeroRescue)
	assertKind(t, h.campaign.RescueForeignAsset(h.admin, h.reward, h.treasury, big.NewInt(1001)), reverts.External)

	require.NoError(t, h.campaign.RescueForeignAsset(h.admin, h.reward, h.treasury, amount))
	assert.Equal(t, amount, h.balance(t, h.reward, h.treasury))
	assert.Equal(t, big.NewInt(1800), h.balance(t, h.token, h.campaign.Address()))
}

func TestFinalize_SettlementRewardsNeedNoConversion(t *testing.T) {
	h := newHarness(t, 1800, 1)
	alice := datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 100).Vote().
		Accrue(h.reward, 1000).
		Accrue(h.weth, 20).
		Run(t)

	assets, err := h.campaign.PreviewRewardAssets()
	require.NoError(t, err)
	assert.Equal(t, []kickoff.Address{h.reward, h.weth}, assets)

	claimable, err := h.campaign.PreviewClaimableRewards()
	require.NoError(t, err)
	require.Len(t, claimable, 2)
	assert.Equal(t, big.NewInt(1000), claimable[0].Amount)
	assert.Equal(t, big.NewInt(20), claimable[1].Amount)

	NewSequence(h).AdvanceEpoch().Finalize().Run(t)

	AssertCampaign(h.campaign).Collected(120).Assert(t)
	require.Len(t, h.env.Router.Attempts, 1)
	assert.Equal(t, h.reward, h.env.Router.Attempts[0].Asset)

	snap, err := h.campaign.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []kickoff.Address{h.reward, h.weth}, snap.RewardAssets)
}

func TestBatchedSettlement(t *testing.T) {
	h := newHarness(t, 2400, 1)
	owners := datagen.RandAddresses(2)

	seq := NewSequence(h).Activate()
	for i := 0; i < 120; i++ {
		seq.Deposit(owners[i%2], 1)
	}
	seq.Run(t)

	_, err := h.campaign.CastVoteBatch(h.admin, h.target, 0)
	assertKind(t, err, reverts.Validation)
	_, err = h.campaign.CastVoteBatch(h.admin, h.target, 51)
	assertKind(t, err, reverts.StateConflict)

	res, err := h.campaign.CastVoteBatch(h.admin, h.target, 50)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), res.ProcessedUpTo)
	assert.False(t, res.Done)

	// committed as soon as the run starts
	assertKind(t, h.campaign.DepositPosition(owners[0], h.mint(t, owners[0], 1)), reverts.Phase)
	assert.ErrorIs(t, h.campaign.CastVote(h.admin, h.target), errVoteRunning)

	progress, err := h.campaign.VoteProgress()
	require.NoError(t, err)
	assert.True(t, progress.InProgress)

	for _, want := range []uint64{100, 120} {
		res, err = h.campaign.ContinueVoteBatch(h.admin, 50)
		require.NoError(t, err)
		assert.Equal(t, want, res.ProcessedUpTo)
	}
	assert.True(t, res.Done)
	_, err = h.campaign.ContinueVoteBatch(h.admin, 50)
	assert.ErrorIs(t, err, errNoVoteRun)

	NewSequence(h).Accrue(h.reward, 10).AdvanceEpoch().Run(t)

	res, err = h.campaign.StartClaimBatch(h.admin, 50)
	require.NoError(t, err)
	assert.False(t, res.Done)
	AssertCampaign(h.campaign).Phase(Settling).Step(StepClaim).Assert(t)

	_, _, err = h.campaign.FinalizeStep(h.admin)
	assert.ErrorIs(t, err, errClaimRunning)
	_, err = h.campaign.Finalize(h.admin)
	assertKind(t, err, reverts.Phase)

	for iter := 0; iter < 2; iter++ {
		res, err = h.campaign.ContinueClaimBatch(h.admin, 50)
		require.NoError(t, err)
	}
	assert.True(t, res.Done)
	assert.Equal(t, uint64(120), res.ProcessedUpTo)
	AssertCampaign(h.campaign).Step(StepConvert).Assert(t)

	step, _, err := h.campaign.FinalizeStep(h.admin)
	require.NoError(t, err)
	assert.Equal(t, StepConvert, step)
	AssertCampaign(h.campaign).Collected(120).Step(StepProvision).Assert(t)

	step, _, err = h.campaign.FinalizeStep(h.admin)
	require.NoError(t, err)
	assert.Equal(t, StepProvision, step)

	_, err = h.campaign.CompleteFinalize(h.admin)
	require.NoError(t, err)
	// sqrt(1200 * 120)
	AssertCampaign(h.campaign).Phase(Complete).Liquidity(379).Step(StepDone).Assert(t)

	_, _, err = h.campaign.FinalizeStep(h.admin)
	assertKind(t, err, reverts.Phase)

	for _, owner := range owners {
		amount, err := h.campaign.ClaimAllocation(owner)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(600), amount)
	}
}

func TestVoteBatch_AnyPartition(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for iter := 0; iter < 5; iter++ {
		var n, seed uint8
		f.Fuzz(&n)
		f.Fuzz(&seed)
		count := int(n%40) + 1

		h := newHarness(t, 1000, 1)
		seq := NewSequence(h).Activate()
		for iter := 0; iter < count; iter++ {
			seq.Deposit(datagen.RandAddress(), 1)
		}
		seq.Run(t)

		budget := func() uint64 {
			var b uint8
			f.Fuzz(&b)
			return uint64(b)%uint64(cursor.MaxBatchSize.Get()) + 1
		}
		res, err := h.campaign.CastVoteBatch(h.admin, h.target, budget())
		require.NoError(t, err)
		for !res.Done {
			res, err = h.campaign.ContinueVoteBatch(h.admin, budget())
			require.NoError(t, err)
		}
		assert.Equal(t, uint64(count), res.ProcessedUpTo)

		ids, err := h.campaign.PositionIDs()
		require.NoError(t, err)
		for _, id := range ids {
			ballot, err := h.env.Voter.Ballot(id)
			require.NoError(t, err)
			assert.NotNil(t, ballot, "position %v not voted", id)
		}
	}
}

func TestVoteBatch_RebindsAcrossEpochs(t *testing.T) {
	h := newHarness(t, 1000, 1)
	alice := datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 1).Deposit(alice, 1).Deposit(alice, 1).Run(t)

	_, err := h.campaign.CastVoteBatch(h.admin, h.target, 2)
	require.NoError(t, err)

	_, err = h.campaign.Finalize(h.admin)
	assert.ErrorIs(t, err, errVoteRunning)

	h.env.Clock.Advance(epoch.Week)
	res, err := h.campaign.ContinueVoteBatch(h.admin, 2)
	require.NoError(t, err)
	assert.True(t, res.Done)

	snap, err := h.campaign.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, epoch.Index(startTime)+1, snap.BindingEpoch)

	_, err = h.campaign.Finalize(h.admin)
	assert.ErrorIs(t, err, errEpochNotElapsed)

	h.env.Clock.Advance(epoch.Week)
	_, err = h.campaign.Finalize(h.admin)
	require.NoError(t, err)
}

func TestClaimAllocation(t *testing.T) {
	h := newHarness(t, 1000, 1)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 1).Deposit(bob, 2).Vote().Run(t)

	_, err := h.campaign.ClaimAllocation(alice)
	assertKind(t, err, reverts.Phase)
	claimable, err := h.campaign.Claimable(alice)
	require.NoError(t, err)
	assert.Zero(t, claimable.Sign())

	NewSequence(h).AdvanceEpoch().Finalize().Run(t)

	// 500 * 1 / 3 rounds down, the remainder stays in the campaign
	claimable, err = h.campaign.Claimable(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(166), claimable)

	NewSequence(h).Claim(alice, 166).Claim(bob, 333).Run(t)

	claimable, err = h.campaign.Claimable(alice)
	require.NoError(t, err)
	assert.Zero(t, claimable.Sign())

	p, err := h.campaign.Participant(alice)
	require.NoError(t, err)
	assert.True(t, p.Claimed)
	assert.Equal(t, big.NewInt(1), p.VotingPower)

	// 500 liquidity allocation plus one unit of rounding dust
	assert.Equal(t, big.NewInt(501), h.balance(t, h.token, h.campaign.Address()))
}

func TestReturnPosition(t *testing.T) {
	h := newHarness(t, 1800, 1)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 100).Deposit(bob, 50).Vote().Run(t)
	ids, err := h.campaign.PositionIDs()
	require.NoError(t, err)
	aliceID := ids[0]

	assertKind(t, h.campaign.ReturnPosition(alice, aliceID), reverts.Phase)

	NewSequence(h).AdvanceEpoch().Finalize().Run(t)

	assertKind(t, h.campaign.ReturnPosition(bob, aliceID), reverts.Authorization)
	assert.ErrorIs(t, h.campaign.ReturnPosition(alice, big.NewInt(999)), errUnknownPosition)

	require.NoError(t, h.campaign.ReturnPosition(alice, aliceID))
	assert.Equal(t, alice, h.ownerOf(t, aliceID))
	assert.ErrorIs(t, h.campaign.ReturnPosition(alice, aliceID), errPositionReturned)

	// returning does not shrink the contribution
	AssertCampaign(h.campaign).TotalPower(150).Assert(t)
	NewSequence(h).Claim(alice, 600).Run(t)
	assert.Equal(t, h.campaign.Address(), h.ownerOf(t, ids[1]))
}

func TestRecovery(t *testing.T) {
	h := newHarness(t, 1000, 1)
	alice := datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 1).Deposit(alice, 2).Deposit(alice, 3).Run(t)
	ids, err := h.campaign.PositionIDs()
	require.NoError(t, err)

	_, err = h.campaign.RecoverPosition(h.admin, ids[0])
	assertKind(t, err, reverts.Authorization)
	_, err = h.campaign.RecoverPosition(h.recovery, big.NewInt(999))
	assert.ErrorIs(t, err, errUnknownPosition)

	ok, err := h.campaign.RecoverPosition(h.recovery, ids[0])
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = h.campaign.RecoverPosition(h.recovery, ids[0])
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := h.campaign.RecoverBatch(h.recovery, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.ProcessedUpTo)
	assert.False(t, res.Done)

	_, err = h.campaign.RecoverAll(h.recovery)
	assert.ErrorIs(t, err, errRecoveryRunning)

	res, err = h.campaign.RecoverBatch(h.recovery, 2)
	require.NoError(t, err)
	assert.True(t, res.Done)

	progress, err := h.campaign.RecoveryProgress()
	require.NoError(t, err)
	assert.False(t, progress.InProgress)

	for _, id := range ids {
		assert.Equal(t, alice, h.ownerOf(t, id))
	}
	returned, err := h.campaign.RecoverAll(h.recovery)
	require.NoError(t, err)
	assert.Zero(t, returned)

	// recovery leaves the phase and the totals alone
	AssertCampaign(h.campaign).Phase(Open).TotalPower(6).Positions(3).Assert(t)

	// returned positions are not voted
	require.NoError(t, h.campaign.CastVote(h.admin, h.target))
	for _, id := range ids {
		ballot, err := h.env.Voter.Ballot(id)
		require.NoError(t, err)
		assert.Nil(t, ballot)
	}
}

func TestRecoverAll(t *testing.T) {
	h := newHarness(t, 1000, 1)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 1).Deposit(bob, 2).Vote().AdvanceEpoch().Finalize().Run(t)

	_, err := h.campaign.RecoverAll(alice)
	assertKind(t, err, reverts.Authorization)

	returned, err := h.campaign.RecoverAll(h.recovery)
	require.NoError(t, err)
	assert.Equal(t, 2, returned)

	ids, err := h.campaign.PositionIDs()
	require.NoError(t, err)
	assert.Equal(t, alice, h.ownerOf(t, ids[0]))
	assert.Equal(t, bob, h.ownerOf(t, ids[1]))

	assert.ErrorIs(t, h.campaign.ReturnPosition(alice, ids[0]), errPositionReturned)
	AssertCampaign(h.campaign).Phase(Complete).Assert(t)
}

func TestVaultYieldAfterSettlement(t *testing.T) {
	h := newHarness(t, 1800, 1)
	alice := datagen.RandAddress()

	NewSequence(h).Activate().Deposit(alice, 100).Vote().Accrue(h.reward, 1000).AdvanceEpoch().Finalize().Run(t)

	snap, err := h.campaign.Snapshot()
	require.NoError(t, err)
	pool, err := h.env.Router.Pool(snap.LiquidityPool)
	require.NoError(t, err)
	require.NoError(t, pool.Accrue(h.vault.Address(), big.NewInt(1000), big.NewInt(1000)))

	_, err = h.vault.ClaimYield(alice, h.campaign.Address())
	assertKind(t, err, reverts.Authorization)

	payouts, err := h.vault.ClaimYield(h.beneficiary, h.campaign.Address())
	require.NoError(t, err)
	require.Len(t, payouts, 2)

	ratioA, _ := h.vault.Split()
	toA := big.NewInt(1000 * int64(ratioA) / kickoff.BasisPoints)
	toB := new(big.Int).Sub(big.NewInt(1000), toA)
	for _, asset := range []kickoff.Address{h.token, h.weth} {
		assert.Equal(t, toA, h.balance(t, asset, h.treasury))
		assert.Equal(t, toB, h.balance(t, asset, h.beneficiary))
	}
}
