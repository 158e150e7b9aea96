// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fakes

import (
	"errors"
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/discovery"
	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/epoch"
	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/state"
)

var (
	ErrAlreadyVoted   = errors.New("voter: already voted this epoch")
	ErrOutsideWindow  = errors.New("voter: outside vote window")
	ErrNotVoteOwner   = errors.New("voter: caller does not own position")
	ErrDeadTarget     = errors.New("voter: target not alive")
	ErrVoteRejected   = errors.New("voter: rejected")
	ErrLengthMismatch = errors.New("voter: targets and weights differ in length")
)

// Ballot is the last vote of a position.
type Ballot struct {
	Targets []kickoff.Address
	Weights []*big.Int
}

// Voter directs position voting power to targets.
type Voter struct {
	registry  *Registry
	clock     *Clock
	lastVoted *solidity.Mapping[kickoff.Bytes32, uint64]
	ballots   *solidity.Mapping[kickoff.Bytes32, *Ballot]

	alive   map[kickoff.Address]bool
	sources map[kickoff.Address][]discovery.Source

	// Reject makes every Vote fail.
	Reject bool
	// OnVote runs inside Vote before it records anything.
	OnVote func(id *big.Int)
}

func NewVoter(addr kickoff.Address, st *state.State, registry *Registry, clock *Clock) *Voter {
	sctx := solidity.NewContext(addr, st)
	return &Voter{
		registry:  registry,
		clock:     clock,
		lastVoted: solidity.NewMapping[kickoff.Bytes32, uint64](sctx, kickoff.BytesToBytes32([]byte("last-voted"))),
		ballots:   solidity.NewMapping[kickoff.Bytes32, *Ballot](sctx, kickoff.BytesToBytes32([]byte("ballots"))),
		alive:     make(map[kickoff.Address]bool),
		sources:   make(map[kickoff.Address][]discovery.Source),
	}
}

// AddTarget registers a live target paying rewards through sources.
func (v *Voter) AddTarget(target kickoff.Address, sources ...discovery.Source) {
	v.alive[target] = true
	v.sources[target] = sources
}

func (v *Voter) Kill(target kickoff.Address) {
	v.alive[target] = false
}

func (v *Voter) IsAlive(target kickoff.Address) (bool, error) {
	return v.alive[target], nil
}

func (v *Voter) Vote(caller kickoff.Address, id *big.Int, targets []kickoff.Address, weights []*big.Int) error {
	if v.OnVote != nil {
		v.OnVote(id)
	}
	if v.Reject {
		return ErrVoteRejected
	}
	if len(targets) != len(weights) {
		return ErrLengthMismatch
	}
	now := v.clock.Now()
	if !epoch.InVoteWindow(now) {
		return ErrOutsideWindow
	}
	owner, err := v.registry.OwnerOf(id)
	if err != nil {
		return err
	}
	if owner != caller {
		return ErrNotVoteOwner
	}
	last, err := v.LastVoted(id)
	if err != nil {
		return err
	}
	if last >= epoch.Start(now) && last != 0 {
		return ErrAlreadyVoted
	}
	for _, t := range targets {
		if !v.alive[t] {
			return ErrDeadTarget
		}
	}
	if err := v.lastVoted.Set(key(id), now); err != nil {
		return err
	}
	return v.ballots.Set(key(id), &Ballot{Targets: targets, Weights: weights})
}

func (v *Voter) LastVoted(id *big.Int) (uint64, error) {
	return v.lastVoted.Get(key(id))
}

// SetLastVoted records a vote outside the campaign, as if the owner voted directly.
func (v *Voter) SetLastVoted(id *big.Int, ts uint64) error {
	return v.lastVoted.Set(key(id), ts)
}

func (v *Voter) Ballot(id *big.Int) (*Ballot, error) {
	return v.ballots.Get(key(id))
}

func (v *Voter) RewardSources(target kickoff.Address) ([]discovery.Source, error) {
	return v.sources[target], nil
}
