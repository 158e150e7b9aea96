// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fakes provides in-state implementations of the external services a
// campaign talks to. Their storage lives in the same journaled state as the
// campaign, so a reverted operation reverts their writes too.
package fakes

import (
	"github.com/kickoffbase/kickoff-contracts/builtin/token"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/state"
)

// Clock is a settable block time.
type Clock struct {
	now uint64
}

func NewClock(now uint64) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() uint64 {
	return c.now
}

func (c *Clock) Set(now uint64) {
	c.now = now
}

func (c *Clock) Advance(seconds uint64) {
	c.now += seconds
}

// Env wires every fake service over one state.
type Env struct {
	State     *state.State
	Ledger    *token.Ledger
	Clock     *Clock
	Registry  *Registry
	Voter     *Voter
	Router    *Router
	Campaigns *CampaignSet
}

func NewEnv(st *state.State, now uint64) *Env {
	ledger := token.New(st)
	clock := NewClock(now)
	registry := NewRegistry(kickoff.CreateAddress("fakes/registry"), st)
	return &Env{
		State:     st,
		Ledger:    ledger,
		Clock:     clock,
		Registry:  registry,
		Voter:     NewVoter(kickoff.CreateAddress("fakes/voter"), st, registry, clock),
		Router:    NewRouter(kickoff.CreateAddress("fakes/router"), st, ledger),
		Campaigns: NewCampaignSet(),
	}
}

// CampaignSet is the factory's record of deployed campaigns.
type CampaignSet struct {
	members map[kickoff.Address]bool
}

func NewCampaignSet() *CampaignSet {
	return &CampaignSet{members: make(map[kickoff.Address]bool)}
}

func (s *CampaignSet) Add(addr kickoff.Address) {
	s.members[addr] = true
}

func (s *CampaignSet) IsCampaign(addr kickoff.Address) (bool, error) {
	return s.members[addr], nil
}
