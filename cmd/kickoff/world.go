// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/epoch"
	"github.com/kickoffbase/kickoff-contracts/builtin/vault"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/state"
	"github.com/kickoffbase/kickoff-contracts/test/fakes"
)

// simStart is inside the vote window of a fixed epoch so runs are reproducible.
var simStart = epoch.StartOf(2900) + 2*epoch.VoteWindowMargin

// world is one campaign and the collaborators around it. Every address is
// derived from the campaign name, so a persisted world can be rebuilt.
type world struct {
	name string
	env  *fakes.Env

	campaign    kickoff.Address
	vault       *vault.Vault
	source      *fakes.RewardSource
	admin       kickoff.Address
	beneficiary kickoff.Address
	recovery    kickoff.Address
	treasury    kickoff.Address
	token       kickoff.Address
	settlement  kickoff.Address
	reward      kickoff.Address
	target      kickoff.Address
}

func newWorld(name string, st *state.State) *world {
	addr := func(role string) kickoff.Address {
		return kickoff.CreateAddress("kickoff/sim", []byte(name), []byte(role))
	}
	w := &world{
		name:        name,
		env:         fakes.NewEnv(st, simStart),
		campaign:    addr("campaign"),
		admin:       addr("admin"),
		beneficiary: addr("beneficiary"),
		recovery:    addr("recovery"),
		treasury:    addr("treasury"),
		token:       addr("token"),
		settlement:  kickoff.CreateAddress("kickoff/sim/settlement"),
		reward:      addr("reward"),
		target:      addr("target"),
	}
	w.vault = vault.New(kickoff.CreateAddress("kickoff/sim/vault"), st, w.env.Ledger, w.env.Router.Pools(), w.env.Campaigns)
	w.source = fakes.NewRewardSource(addr("source"), st, w.env.Ledger, w.reward, w.settlement)
	w.env.Voter.AddTarget(w.target, w.source)
	w.env.Campaigns.Add(w.campaign)
	return w
}

func (w *world) owner(name string) kickoff.Address {
	return kickoff.CreateAddress("kickoff/sim/owner", []byte(name))
}

func (w *world) deps() campaign.Deps {
	return campaign.Deps{
		Assets:    w.env.Ledger,
		Registry:  w.env.Registry,
		Voter:     w.env.Voter,
		Swap:      w.env.Router,
		Liquidity: w.env.Router,
		Vault:     w.vault,
		Clock:     w.env.Clock,
	}
}
