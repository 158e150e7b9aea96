// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fakes

import (
	"errors"
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/builtin/token"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
	"github.com/kickoffbase/kickoff-contracts/state"
)

var (
	ErrClaimFailed = errors.New("source: claim failed")
	ErrListFailed  = errors.New("source: list failed")
)

type earnedKey struct {
	id    kickoff.Bytes32
	asset kickoff.Address
}

func (k earnedKey) Bytes() []byte {
	return append(k.id.Bytes(), k.asset.Bytes()...)
}

// Source only reports earned balances. It can neither list nor pay out.
type Source struct {
	addr   kickoff.Address
	ledger *token.Ledger
	earned *solidity.Mapping[earnedKey, *big.Int]
}

func NewSource(addr kickoff.Address, st *state.State, ledger *token.Ledger) *Source {
	return &Source{
		addr:   addr,
		ledger: ledger,
		earned: solidity.NewMapping[earnedKey, *big.Int](solidity.NewContext(addr, st), kickoff.BytesToBytes32([]byte("earned"))),
	}
}

func (s *Source) Address() kickoff.Address {
	return s.addr
}

func (s *Source) Earned(id *big.Int, asset kickoff.Address) (*big.Int, error) {
	v, err := s.earned.Get(earnedKey{key(id), asset})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// Accrue credits amount of asset to position id and funds the source with it.
func (s *Source) Accrue(id *big.Int, asset kickoff.Address, amount *big.Int) error {
	cur, err := s.Earned(id, asset)
	if err != nil {
		return err
	}
	if err := s.earned.Set(earnedKey{key(id), asset}, cur.Add(cur, amount)); err != nil {
		return err
	}
	return s.ledger.Mint(asset, s.addr, amount)
}

// ListingSource publishes its reward assets but cannot pay out.
type ListingSource struct {
	*Source
	assets []kickoff.Address

	// FailList makes the length query fail.
	FailList bool
}

func NewListingSource(src *Source, assets ...kickoff.Address) *ListingSource {
	return &ListingSource{Source: src, assets: assets}
}

func (s *ListingSource) RewardsListLength() (uint64, error) {
	if s.FailList {
		return 0, ErrListFailed
	}
	return uint64(len(s.assets)), nil
}

func (s *ListingSource) Reward(i uint64) (kickoff.Address, error) {
	return s.assets[i], nil
}

// RewardSource lists and pays out rewards.
type RewardSource struct {
	*ListingSource
	failing map[string]bool
}

func NewRewardSource(addr kickoff.Address, st *state.State, ledger *token.Ledger, assets ...kickoff.Address) *RewardSource {
	return &RewardSource{
		ListingSource: NewListingSource(NewSource(addr, st, ledger), assets...),
		failing:       make(map[string]bool),
	}
}

// FailFor makes claims of position id fail.
func (s *RewardSource) FailFor(id *big.Int) {
	s.failing[id.String()] = true
}

// GetReward pays everything position id earned of assets to recipient.
func (s *RewardSource) GetReward(recipient kickoff.Address, id *big.Int, assets []kickoff.Address) error {
	for _, asset := range assets {
		amount, err := s.Earned(id, asset)
		if err != nil {
			return err
		}
		if amount.Sign() == 0 {
			continue
		}
		if err := s.ledger.Transfer(asset, s.addr, recipient, amount); err != nil {
			return err
		}
		if err := s.earned.Set(earnedKey{key(id), asset}, new(big.Int)); err != nil {
			return err
		}
	}
	// fail after paying so a reverted claim must undo the transfers
	if s.failing[id.String()] {
		return ErrClaimFailed
	}
	return nil
}
