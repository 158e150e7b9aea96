// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package campaign

import (
	"fmt"
	"math/big"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/cursor"
	"github.com/kickoffbase/kickoff-contracts/builtin/reverts"
	"github.com/kickoffbase/kickoff-contracts/kickoff"
)

// Phase is the lifecycle stage of a campaign. Phases only move forward.
type Phase uint8

const (
	Created Phase = iota + 1
	Open
	Committed
	Settling
	Complete
)

func (p Phase) String() string {
	switch p {
	case Created:
		return "created"
	case Open:
		return "open"
	case Committed:
		return "committed"
	case Settling:
		return "settling"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Step is the next finalize sub-step to run while Settling.
type Step uint8

const (
	StepNone Step = iota
	StepClaim
	StepConvert
	StepProvision
	StepLock
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepNone:
		return "none"
	case StepClaim:
		return "claim"
	case StepConvert:
		return "convert"
	case StepProvision:
		return "provision"
	case StepLock:
		return "lock"
	case StepDone:
		return "done"
	default:
		return fmt.Sprintf("step(%d)", uint8(s))
	}
}

// Info is the immutable setup of a campaign, fixed at creation.
type Info struct {
	Admin                kickoff.Address
	Beneficiary          kickoff.Address
	Recovery             kickoff.Address
	Treasury             kickoff.Address
	Token                kickoff.Address
	Settlement           kickoff.Address
	TotalAllocation      *big.Int
	SaleAllocation       *big.Int
	LiquidityAllocation  *big.Int
	MinVotingPower       *big.Int
	SwapSlippageBps      uint32
	LiquiditySlippageBps uint32
}

// Snapshot is the mutable state of a campaign at one point.
type Snapshot struct {
	Phase               Phase
	Target              kickoff.Address
	BindingEpoch        uint64
	TotalVotingPower    *big.Int
	SettlementCollected *big.Int
	LiquidityAmount     *big.Int
	LiquidityPool       kickoff.Address
	FinalizeStep        Step
	RewardAssets        []kickoff.Address
}

// BatchResult is the outcome of one call of a resumable bulk operation.
type BatchResult struct {
	ProcessedUpTo uint64
	Done          bool
	Report        *reverts.Report
}

// Progress is the resume point of a bulk operation.
type Progress = cursor.Progress
