// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

// Position is a locked position held by the campaign, or returned to its owner once Returned is set.
type Position struct {
	Owner    kickoff.Address
	Weight   *big.Int // voting power captured at deposit
	Returned bool
}

// Participant is the cumulative contribution of one depositor.
type Participant struct {
	VotingPower *big.Int
	Claimed     bool
}

func (p *Participant) IsEmpty() bool {
	return p == nil || p.VotingPower == nil || p.VotingPower.Sign() == 0
}
