// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package campaign implements the kickoff campaign: a pool of locked voting
// positions that votes for one target, turns the rewards into permanent
// liquidity for the campaign token and sells half of the token allocation
// pro rata to the voting power contributed.
package campaign

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/conversion"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/cursor"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/discovery"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/ledger"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/liquidity"
	"github.com/kickoffbase/kickoff-contracts/builtin/guard"
	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/log"
	"github.com/kickoffbase/kickoff-contracts/state"
)

var logger = log.WithContext("pkg", "campaign")

func SetLogger(l log.Logger) {
	logger = l
}

var (
	slotInfo                = kickoff.BytesToBytes32([]byte("info"))
	slotPhase               = kickoff.BytesToBytes32([]byte("phase"))
	slotTarget              = kickoff.BytesToBytes32([]byte("target"))
	slotBindingEpoch        = kickoff.BytesToBytes32([]byte("binding-epoch"))
	slotSettlementCollected = kickoff.BytesToBytes32([]byte("settlement-collected"))
	slotLiquidityAmount     = kickoff.BytesToBytes32([]byte("liquidity-amount"))
	slotLiquidityPool       = kickoff.BytesToBytes32([]byte("liquidity-pool"))
	slotFinalizeStep        = kickoff.BytesToBytes32([]byte("finalize-step"))
	slotRewardAssets        = kickoff.BytesToBytes32([]byte("reward-assets"))

	errNotCreated = errors.New("campaign not created")
	errExists     = errors.New("campaign already created")
)

// Campaign is one campaign instance. All of its state lives in the slots of
// its address. Mutating operations are atomic and never overlap.
type Campaign struct {
	addr  kickoff.Address
	state *state.State
	deps  Deps

	info                *solidity.Raw[*Info]
	phase               *solidity.Raw[Phase]
	target              *solidity.Address
	bindingEpoch        *solidity.Raw[uint64]
	settlementCollected *solidity.Uint256
	liquidityAmount     *solidity.Uint256
	liquidityPool       *solidity.Address
	finalizeStep        *solidity.Raw[Step]
	rewardAssets        *solidity.Raw[[]kickoff.Address]

	ledger   *ledger.Service
	votes    *cursor.Cursor
	claims   *cursor.Cursor
	recovery *cursor.Cursor

	latch *guard.Latch
}

func bind(addr kickoff.Address, st *state.State, deps Deps) *Campaign {
	sctx := solidity.NewContext(addr, st)

	// debug overrides for testing
	discovery.MaxListedAssets.Override(sctx)
	conversion.DefaultSlippageBps.Override(sctx)
	liquidity.DefaultSlippageBps.Override(sctx)

	return &Campaign{
		addr:  addr,
		state: st,
		deps:  deps,

		info:                solidity.NewRaw[*Info](sctx, slotInfo),
		phase:               solidity.NewRaw[Phase](sctx, slotPhase),
		target:              solidity.NewAddress(sctx, slotTarget),
		bindingEpoch:        solidity.NewRaw[uint64](sctx, slotBindingEpoch),
		settlementCollected: solidity.NewUint256(sctx, slotSettlementCollected),
		liquidityAmount:     solidity.NewUint256(sctx, slotLiquidityAmount),
		liquidityPool:       solidity.NewAddress(sctx, slotLiquidityPool),
		finalizeStep:        solidity.NewRaw[Step](sctx, slotFinalizeStep),
		rewardAssets:        solidity.NewRaw[[]kickoff.Address](sctx, slotRewardAssets),

		ledger:   ledger.New(sctx),
		votes:    cursor.New(sctx, "vote-batch"),
		claims:   cursor.New(sctx, "claim-batch"),
		recovery: cursor.New(sctx, "recovery-batch"),

		latch: st.Latch(addr),
	}
}

// Create initializes a campaign at addr in phase Created.
func Create(addr kickoff.Address, st *state.State, cfg Config, deps Deps) (*Campaign, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid campaign config")
	}
	c := bind(addr, st, deps)
	existing, err := c.info.Get()
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errExists
	}
	info := cfg.info()
	err = st.Atomic(func() error {
		if err := c.info.Set(info); err != nil {
			return err
		}
		return c.phase.Set(Created)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("created campaign", "address", addr, "token", info.Token, "allocation", info.TotalAllocation)
	return c, nil
}

// Load binds to a campaign previously created at addr.
func Load(addr kickoff.Address, st *state.State, deps Deps) (*Campaign, error) {
	c := bind(addr, st, deps)
	info, err := c.info.Get()
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errNotCreated
	}
	return c, nil
}

func (c *Campaign) Address() kickoff.Address {
	return c.addr
}

// guarded runs one mutating operation: it holds the latch, and reverts every
// write made by fn when fn fails.
func (c *Campaign) guarded(op string, fn func(info *Info) error) error {
	exit, err := c.latch.Enter()
	if err != nil {
		return err
	}
	defer exit()

	err = c.state.Atomic(func() error {
		info, err := c.Info()
		if err != nil {
			return err
		}
		return fn(info)
	})
	if err != nil {
		metricFailedOps().AddWithLabel(1, map[string]string{"op": op, "kind": reverts.KindOf(err).String()})
	}
	return err
}

func (c *Campaign) requireRole(caller, role kickoff.Address, name string) error {
	if caller != role {
		return reverts.Unauthorized("caller is not the " + name)
	}
	return nil
}

func (c *Campaign) requirePhase(want Phase) error {
	cur, err := c.Phase()
	if err != nil {
		return err
	}
	if cur != want {
		return reverts.Newf(reverts.Phase, "campaign is %v, requires %v", cur, want)
	}
	return nil
}

// setPhase moves to next, which must directly follow the current phase.
func (c *Campaign) setPhase(next Phase) error {
	cur, err := c.Phase()
	if err != nil {
		return err
	}
	if next != cur+1 {
		return reverts.Newf(reverts.Phase, "illegal transition %v -> %v", cur, next)
	}
	if err := c.phase.Set(next); err != nil {
		return err
	}
	metricPhaseTransitions().AddWithLabel(1, map[string]string{"phase": next.String()})
	logger.Debug("phase transition", "campaign", c.addr, "from", cur, "to", next)
	return nil
}

func (c *Campaign) now() uint64 {
	return c.deps.Clock.Now()
}

// activePositions returns the deposited ids still held by the campaign.
func (c *Campaign) activePositions() ([]*big.Int, error) {
	ids, err := c.ledger.All()
	if err != nil {
		return nil, err
	}
	active := ids[:0]
	for _, id := range ids {
		pos, err := c.ledger.Position(id)
		if err != nil {
			return nil, err
		}
		if !pos.Returned {
			active = append(active, id)
		}
	}
	return active, nil
}

func (c *Campaign) rewardSources() ([]discovery.Source, error) {
	target, err := c.target.Get()
	if err != nil {
		return nil, err
	}
	if target.IsZero() {
		return nil, nil
	}
	sources, err := c.deps.Voter.RewardSources(target)
	if err != nil {
		return nil, reverts.Externalf("reward sources: %v", err)
	}
	return sources, nil
}
