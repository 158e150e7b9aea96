// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kickoffbase/kickoff-contracts/builtin/campaign/cursor"
)

// Scenario is a set of independent campaigns to simulate.
type Scenario struct {
	Campaigns []CampaignPlan `yaml:"campaigns"`
}

// CampaignPlan describes one campaign and the positions deposited into it.
type CampaignPlan struct {
	Name                 string         `yaml:"name"`
	Allocation           uint64         `yaml:"allocation"`
	MinVotingPower       uint64         `yaml:"min_voting_power"`
	SwapSlippageBps      uint32         `yaml:"swap_slippage_bps"`
	LiquiditySlippageBps uint32         `yaml:"liquidity_slippage_bps"`
	RewardRate           Rate           `yaml:"reward_rate"`
	BatchSize            uint64         `yaml:"batch_size"` // zero runs single-call operations
	Fees                 uint64         `yaml:"fees"`       // pool fees accrued to the vault after locking
	Positions            []PositionPlan `yaml:"positions"`
}

// Rate is how much settlement currency one reward unit swaps into.
type Rate struct {
	Num int64 `yaml:"num"`
	Den int64 `yaml:"den"`
}

type PositionPlan struct {
	Owner   string `yaml:"owner"`
	Power   uint64 `yaml:"power"`
	Rewards uint64 `yaml:"rewards"`
}

func loadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	return parseScenario(data)
}

func parseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if len(sc.Campaigns) == 0 {
		return errors.New("scenario has no campaigns")
	}
	names := make(map[string]bool)
	for i := range sc.Campaigns {
		c := &sc.Campaigns[i]
		if c.Name == "" {
			return errors.Errorf("campaign #%d: missing name", i)
		}
		if names[c.Name] {
			return errors.Errorf("campaign %q: duplicate name", c.Name)
		}
		names[c.Name] = true

		if c.Allocation == 0 {
			return errors.Errorf("campaign %q: zero allocation", c.Name)
		}
		if c.RewardRate == (Rate{}) {
			c.RewardRate = Rate{Num: 1, Den: 1}
		}
		if c.RewardRate.Num <= 0 || c.RewardRate.Den <= 0 {
			return errors.Errorf("campaign %q: reward rate must be positive", c.Name)
		}
		if c.BatchSize > uint64(cursor.MaxBatchSize.Get()) {
			return errors.Errorf("campaign %q: batch size above %d", c.Name, cursor.MaxBatchSize.Get())
		}
		for j, p := range c.Positions {
			if p.Owner == "" {
				return errors.Errorf("campaign %q position #%d: missing owner", c.Name, j)
			}
		}
	}
	return nil
}
