// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package campaign

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/epoch"
	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/builtin/vault"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/lvldb"
	"github.com/kickoffbase/kickoff-contracts/state"
	"github.com/kickoffbase/kickoff-contracts/test/datagen"
	"github.com/kickoffbase/kickoff-contracts/test/fakes"
)

// startTime is inside the vote window of epoch 100.
var startTime = epoch.StartOf(100) + 2*epoch.VoteWindowMargin

type harness struct {
	env      *fakes.Env
	campaign *Campaign
	vault    *vault.Vault

	admin       kickoff.Address
	beneficiary kickoff.Address
	recovery    kickoff.Address
	treasury    kickoff.Address
	token       kickoff.Address
	weth        kickoff.Address
	target      kickoff.Address
	reward      kickoff.Address
	source      *fakes.RewardSource
	deps        Deps

	nextID int64
}

func newHarness(t *testing.T, total int64, minVP int64) *harness {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env := fakes.NewEnv(state.New(db), startTime)
	h := &harness{
		env:         env,
		admin:       datagen.RandAddress(),
		beneficiary: datagen.RandAddress(),
		recovery:    datagen.RandAddress(),
		treasury:    datagen.RandAddress(),
		token:       datagen.RandAddress(),
		weth:        datagen.RandAddress(),
		target:      datagen.RandAddress(),
		reward:      datagen.RandAddress(),
	}
	h.vault = vault.New(datagen.RandAddress(), env.State, env.Ledger, env.Router.Pools(), env.Campaigns)
	h.source = fakes.NewRewardSource(datagen.RandAddress(), env.State, env.Ledger, h.reward, h.weth)
	env.Voter.AddTarget(h.target, h.source)
	env.Router.SetRate(h.reward, 1, 10)

	addr := datagen.RandAddress()
	env.Campaigns.Add(addr)
	h.deps = Deps{
		Assets:    env.Ledger,
		Registry:  env.Registry,
		Voter:     env.Voter,
		Swap:      env.Router,
		Liquidity: env.Router,
		Vault:     h.vault,
		Clock:     env.Clock,
	}
	h.campaign, err = Create(addr, env.State, h.config(total, minVP), h.deps)
	require.NoError(t, err)

	require.NoError(t, env.Ledger.Mint(h.token, h.admin, big.NewInt(total)))
	require.NoError(t, env.Ledger.Approve(h.token, h.admin, addr, big.NewInt(total)))
	return h
}

func (h *harness) config(total, minVP int64) Config {
	return Config{
		Admin:           h.admin,
		Beneficiary:     h.beneficiary,
		Recovery:        h.recovery,
		Treasury:        h.treasury,
		Token:           h.token,
		Settlement:      h.weth,
		TotalAllocation: big.NewInt(total),
		MinVotingPower:  big.NewInt(minVP),
	}
}

// mint issues a new position to owner and approves the campaign to take it.
func (h *harness) mint(t *testing.T, owner kickoff.Address, power int64) *big.Int {
	h.nextID++
	id := big.NewInt(h.nextID)
	require.NoError(t, h.env.Registry.Mint(id, owner, big.NewInt(power)))
	require.NoError(t, h.env.Registry.SetApprovalForAll(owner, h.campaign.Address(), true))
	return id
}

func (h *harness) balance(t *testing.T, asset, holder kickoff.Address) *big.Int {
	bal, err := h.env.Ledger.BalanceOf(asset, holder)
	require.NoError(t, err)
	return bal
}

func (h *harness) ownerOf(t *testing.T, id *big.Int) kickoff.Address {
	owner, err := h.env.Registry.OwnerOf(id)
	require.NoError(t, err)
	return owner
}

func assertKind(t *testing.T, err error, kind reverts.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind.String(), reverts.KindOf(err).String(), "error: %v", err)
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	h *harness

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(h *harness) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), h: h}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Activate() *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.h.campaign.Activate(st.h.admin); err != nil {
			t.Fatalf("failed to activate: %v", err)
		}
		t.Logf("activated campaign %s", st.h.campaign.Address())
	})
}

func (st *TestSequence) Deposit(owner kickoff.Address, power int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		id := st.h.mint(t, owner, power)
		if err := st.h.campaign.DepositPosition(owner, id); err != nil {
			t.Fatalf("failed to deposit position %v: %v", id, err)
		}
		t.Logf("deposited position %v with power %d", id, power)
	})
}

// Accrue credits every deposited position with amountPerPosition of asset.
func (st *TestSequence) Accrue(asset kickoff.Address, amountPerPosition int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		ids, err := st.h.campaign.PositionIDs()
		if err != nil {
			t.Fatalf("failed to list positions: %v", err)
		}
		for _, id := range ids {
			if err := st.h.source.Accrue(id, asset, big.NewInt(amountPerPosition)); err != nil {
				t.Fatalf("failed to accrue rewards: %v", err)
			}
		}
		t.Logf("accrued %d to %d positions", amountPerPosition, len(ids))
	})
}

func (st *TestSequence) Vote() *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.h.campaign.CastVote(st.h.admin, st.h.target); err != nil {
			t.Fatalf("failed to vote: %v", err)
		}
		t.Logf("voted for %s", st.h.target)
	})
}

func (st *TestSequence) AdvanceEpoch() *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.h.env.Clock.Advance(epoch.Week)
		t.Logf("advanced to epoch %d", epoch.Index(st.h.env.Clock.Now()))
	})
}

func (st *TestSequence) Finalize() *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		report, err := st.h.campaign.Finalize(st.h.admin)
		if err != nil {
			t.Fatalf("failed to finalize: %v", err)
		}
		t.Logf("finalized, skipped %d", len(report.Skipped))
	})
}

func (st *TestSequence) Claim(addr kickoff.Address, expected int64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		amount, err := st.h.campaign.ClaimAllocation(addr)
		if err != nil {
			t.Fatalf("failed to claim for %s: %v", addr, err)
		}
		assert.Equal(t, big.NewInt(expected), amount, "claim of %s", addr)
		t.Logf("%s claimed %v", addr, amount)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}

	t.Logf("All test functions executed successfully")
}

type CampaignAssertions struct {
	c *Campaign

	phase       *Phase
	totalPower  *big.Int
	collected   *big.Int
	liquidity   *big.Int
	step        *Step
	positionsIn *int
}

func AssertCampaign(c *Campaign) *CampaignAssertions {
	return &CampaignAssertions{c: c}
}

func (ca *CampaignAssertions) Phase(expected Phase) *CampaignAssertions {
	ca.phase = &expected
	return ca
}

func (ca *CampaignAssertions) TotalPower(expected int64) *CampaignAssertions {
	ca.totalPower = big.NewInt(expected)
	return ca
}

func (ca *CampaignAssertions) Collected(expected int64) *CampaignAssertions {
	ca.collected = big.NewInt(expected)
	return ca
}

func (ca *CampaignAssertions) Liquidity(expected int64) *CampaignAssertions {
	ca.liquidity = big.NewInt(expected)
	return ca
}

func (ca *CampaignAssertions) Step(expected Step) *CampaignAssertions {
	ca.step = &expected
	return ca
}

func (ca *CampaignAssertions) Positions(expected int) *CampaignAssertions {
	ca.positionsIn = &expected
	return ca
}

func (ca *CampaignAssertions) Assert(t *testing.T) {
	snap, err := ca.c.Snapshot()
	require.NoError(t, err, "failed to get snapshot of %s", ca.c.Address())

	if ca.phase != nil {
		assert.Equal(t, *ca.phase, snap.Phase, "phase mismatch")
	}
	if ca.totalPower != nil {
		assert.Equal(t, 0, ca.totalPower.Cmp(snap.TotalVotingPower), "total power: want %v got %v", ca.totalPower, snap.TotalVotingPower)
	}
	if ca.collected != nil {
		assert.Equal(t, 0, ca.collected.Cmp(snap.SettlementCollected), "collected: want %v got %v", ca.collected, snap.SettlementCollected)
	}
	if ca.liquidity != nil {
		assert.Equal(t, 0, ca.liquidity.Cmp(snap.LiquidityAmount), "liquidity: want %v got %v", ca.liquidity, snap.LiquidityAmount)
	}
	if ca.step != nil {
		assert.Equal(t, *ca.step, snap.FinalizeStep, "finalize step mismatch")
	}
	if ca.positionsIn != nil {
		ids, err := ca.c.PositionIDs()
		require.NoError(t, err)
		assert.Len(t, ids, *ca.positionsIn)
	}
}
