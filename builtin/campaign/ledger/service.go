// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/builtin/solidity"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

var (
	slotPositions    = kickoff.BytesToBytes32([]byte("positions"))
	slotPositionIDs  = kickoff.BytesToBytes32([]byte("position-ids"))
	slotParticipants = kickoff.BytesToBytes32([]byte("participants"))
	slotTotalPower   = kickoff.BytesToBytes32([]byte("total-voting-power"))

	errDuplicate       = reverts.Invalid("position already deposited")
	errUnknownPosition = reverts.Invalid("unknown position")
	errAlreadyReturned = reverts.Conflict("position already returned")
	errAlreadyClaimed  = reverts.Conflict("allocation already claimed")
)

// ID converts a position id into its mapping key.
func ID(id *big.Int) kickoff.Bytes32 {
	return kickoff.BytesToBytes32(id.Bytes())
}

// Service tracks locked positions and participant contributions of one campaign.
// Voting power is a permanent record of contribution: it is never decremented.
type Service struct {
	positions    *solidity.Mapping[kickoff.Bytes32, *Position]
	ids          *solidity.Array[*big.Int]
	participants *solidity.Mapping[kickoff.Address, *Participant]
	totalPower   *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		positions:    solidity.NewMapping[kickoff.Bytes32, *Position](sctx, slotPositions),
		ids:          solidity.NewArray[*big.Int](sctx, slotPositionIDs),
		participants: solidity.NewMapping[kickoff.Address, *Participant](sctx, slotParticipants),
		totalPower:   solidity.NewUint256(sctx, slotTotalPower),
	}
}

// Record stores a newly deposited position and credits its weight to the
// owner and the campaign total together.
func (s *Service) Record(id *big.Int, owner kickoff.Address, weight *big.Int) error {
	exists, err := s.positions.Exists(ID(id))
	if err != nil {
		return err
	}
	if exists {
		return errDuplicate
	}
	if err := s.positions.Set(ID(id), &Position{Owner: owner, Weight: new(big.Int).Set(weight)}); err != nil {
		return errors.Wrap(err, "failed to set position")
	}
	if _, err := s.ids.Push(new(big.Int).Set(id)); err != nil {
		return errors.Wrap(err, "failed to append position id")
	}

	p, err := s.Participant(owner)
	if err != nil {
		return err
	}
	p.VotingPower.Add(p.VotingPower, weight)
	if err := s.participants.Set(owner, p); err != nil {
		return errors.Wrap(err, "failed to set participant")
	}
	return s.totalPower.Add(weight)
}

// Position returns the position record, nil if it was never deposited.
func (s *Service) Position(id *big.Int) (*Position, error) {
	return s.positions.Get(ID(id))
}

// MarkReturned flags the position as back in its owner's custody and returns the record.
func (s *Service) MarkReturned(id *big.Int) (*Position, error) {
	pos, err := s.positions.Get(ID(id))
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, errUnknownPosition
	}
	if pos.Returned {
		return nil, errAlreadyReturned
	}
	pos.Returned = true
	if err := s.positions.Set(ID(id), pos); err != nil {
		return nil, err
	}
	return pos, nil
}

// Participant returns the record of addr, zero valued when it never deposited.
func (s *Service) Participant(addr kickoff.Address) (*Participant, error) {
	p, err := s.participants.Get(addr)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &Participant{VotingPower: new(big.Int)}, nil
	}
	return p, nil
}

func (s *Service) MarkClaimed(addr kickoff.Address) error {
	p, err := s.Participant(addr)
	if err != nil {
		return err
	}
	if p.Claimed {
		return errAlreadyClaimed
	}
	p.Claimed = true
	return s.participants.Set(addr, p)
}

func (s *Service) TotalVotingPower() (*big.Int, error) {
	return s.totalPower.Get()
}

// Count returns the number of positions ever deposited.
func (s *Service) Count() (uint64, error) {
	return s.ids.Len()
}

// IDAt returns the i-th deposited position id.
func (s *Service) IDAt(i uint64) (*big.Int, error) {
	return s.ids.At(i)
}

// IDs returns deposited position ids in [from, to).
func (s *Service) IDs(from, to uint64) ([]*big.Int, error) {
	return s.ids.Slice(from, to)
}

// All returns every deposited position id in deposit order.
func (s *Service) All() ([]*big.Int, error) {
	n, err := s.Count()
	if err != nil {
		return nil, err
	}
	return s.IDs(0, n)
}
